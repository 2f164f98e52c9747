package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { CloseDB(db) })

	return NewStore(db, nil)
}

func testFriend(name string) *Friend {
	return &Friend{
		Name:                  name,
		Profession:            "Software Engineer",
		ProfessionDescription: sql.NullString{String: "Develops software", Valid: true},
		PhotoURL:              "/media/00000000-0000-0000-0000-000000000000.jpg",
	}
}

func TestCreateFriendAssignsIncreasingIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var lastID int64
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		f := testFriend(name)
		require.NoError(t, store.CreateFriend(ctx, f))
		assert.Greater(t, f.ID, lastID, "ids must be strictly increasing")
		lastID = f.ID
	}
	assert.Equal(t, int64(3), lastID)
}

func TestCreateFriendValidatesRequiredFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		friend *Friend
	}{
		{"nil friend", nil},
		{"empty name", &Friend{Profession: "Artist", PhotoURL: "/media/a.jpg"}},
		{"empty profession", &Friend{Name: "Alice", PhotoURL: "/media/a.jpg"}},
		{"empty photo_url", &Friend{Name: "Alice", Profession: "Artist"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.CreateFriend(ctx, tt.friend))
		})
	}
}

func TestGetFriend(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := testFriend("Alice")
	require.NoError(t, store.CreateFriend(ctx, created))

	got, err := store.GetFriend(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "Software Engineer", got.Profession)
	assert.True(t, got.ProfessionDescription.Valid)
	assert.Equal(t, "Develops software", got.ProfessionDescription.String)

	_, err = store.GetFriend(ctx, 999)
	assert.ErrorIs(t, err, ErrFriendNotFound)

	_, err = store.GetFriend(ctx, 0)
	assert.ErrorIs(t, err, ErrFriendNotFound)
}

func TestListFriendsPreservesCreationOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	empty, err := store.ListFriends(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	names := []string{"Alice", "Bob", "Carol"}
	for _, name := range names {
		require.NoError(t, store.CreateFriend(ctx, testFriend(name)))
	}

	friends, err := store.ListFriends(ctx)
	require.NoError(t, err)
	require.Len(t, friends, len(names))
	for i, f := range friends {
		assert.Equal(t, names[i], f.Name)
		if i > 0 {
			assert.Greater(t, f.ID, friends[i-1].ID)
		}
	}
}

func TestDeleteFriend(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := testFriend("Alice")
	require.NoError(t, store.CreateFriend(ctx, f))

	require.NoError(t, store.DeleteFriend(ctx, f.ID))

	// Freshly deleted id is gone.
	_, err := store.GetFriend(ctx, f.ID)
	assert.ErrorIs(t, err, ErrFriendNotFound)

	// Second delete of the same id reports not found.
	assert.ErrorIs(t, store.DeleteFriend(ctx, f.ID), ErrFriendNotFound)

	// Deleting an id that never existed reports not found.
	assert.ErrorIs(t, store.DeleteFriend(ctx, 999), ErrFriendNotFound)
}

func TestDeletedIDsAreNotReused(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := testFriend("Alice")
	require.NoError(t, store.CreateFriend(ctx, first))
	require.NoError(t, store.DeleteFriend(ctx, first.ID))

	second := testFriend("Bob")
	require.NoError(t, store.CreateFriend(ctx, second))
	assert.Greater(t, second.ID, first.ID)
}
