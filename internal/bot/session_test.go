package bot

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *SessionStore {
	return NewSessionStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func tempPhoto(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	return path
}

func TestBeginStartsAtPhotoState(t *testing.T) {
	store := newTestStore()

	session := store.Begin(1)
	require.NotNil(t, session)
	assert.Equal(t, StatePhoto, session.State)
	assert.Same(t, session, store.Get(1))
}

func TestBeginDiscardsPreviousSession(t *testing.T) {
	store := newTestStore()

	first := store.Begin(1)
	first.PhotoPath = tempPhoto(t)
	first.State = StateName

	second := store.Begin(1)
	assert.NotSame(t, first, second)
	assert.Equal(t, StatePhoto, second.State)
	assert.NoFileExists(t, first.PhotoPath, "previous session's photo must be deleted")
}

func TestGetReturnsNilWithoutSession(t *testing.T) {
	assert.Nil(t, newTestStore().Get(1))
}

func TestSessionsAreIndependentPerUser(t *testing.T) {
	store := newTestStore()

	a := store.Begin(1)
	b := store.Begin(2)
	a.State = StateDescription

	assert.Equal(t, StateDescription, store.Get(1).State)
	assert.Equal(t, StatePhoto, store.Get(2).State)
	assert.NotSame(t, a, b)
}

func TestCancelDeletesPhoto(t *testing.T) {
	store := newTestStore()

	session := store.Begin(1)
	session.PhotoPath = tempPhoto(t)

	assert.True(t, store.Cancel(1))
	assert.Nil(t, store.Get(1))
	assert.NoFileExists(t, session.PhotoPath)

	assert.False(t, store.Cancel(1), "cancelling again reports no session")
}

func TestEndKeepsPhotoFile(t *testing.T) {
	store := newTestStore()

	session := store.Begin(1)
	session.PhotoPath = tempPhoto(t)

	store.End(1)
	assert.Nil(t, store.Get(1))
	assert.FileExists(t, session.PhotoPath, "End leaves the photo for the caller")
}

func TestSweepRemovesOnlyExpiredSessions(t *testing.T) {
	store := newTestStore()

	stale := store.Begin(1)
	stale.PhotoPath = tempPhoto(t)
	stale.UpdatedAt = time.Now().Add(-time.Hour)

	store.Begin(2)

	removed := store.Sweep(30 * time.Minute)
	assert.Equal(t, 1, removed)
	assert.Nil(t, store.Get(1))
	assert.NotNil(t, store.Get(2))
	assert.NoFileExists(t, stale.PhotoPath)
	assert.Equal(t, 1, store.Len())
}

func TestTouchPreventsSweep(t *testing.T) {
	store := newTestStore()

	session := store.Begin(1)
	session.UpdatedAt = time.Now().Add(-time.Hour)

	store.Touch(1)
	assert.Equal(t, 0, store.Sweep(30*time.Minute))
	assert.NotNil(t, store.Get(1))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "photo", StatePhoto.String())
	assert.Equal(t, "name", StateName.String())
	assert.Equal(t, "profession", StateProfession.String())
	assert.Equal(t, "description", StateDescription.String())
	assert.Equal(t, "unknown", State(99).String())
}
