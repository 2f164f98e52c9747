package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrFriendNotFound is returned by lookups and deletes when no record with
// the given id exists. Callers map it to a 404.
var ErrFriendNotFound = errors.New("friend not found")

// Store defines the interface for friends directory database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// CreateFriend inserts a new friend record and fills in its assigned ID
	// and timestamps.
	CreateFriend(ctx context.Context, friend *Friend) error

	// GetFriend retrieves a friend by ID. Returns ErrFriendNotFound if absent.
	GetFriend(ctx context.Context, id int64) (*Friend, error)

	// ListFriends retrieves all friends in ascending ID (creation) order.
	ListFriends(ctx context.Context) ([]Friend, error)

	// DeleteFriend removes the friend with the given ID. Returns
	// ErrFriendNotFound if no record existed. The photo file is not removed.
	DeleteFriend(ctx context.Context, id int64) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateFriend inserts a new friend record inside a transaction and updates
// the struct with the generated ID.
func (s *sqlxStore) CreateFriend(ctx context.Context, friend *Friend) error {
	if friend == nil {
		return fmt.Errorf("cannot save nil friend")
	}
	if friend.Name == "" {
		return fmt.Errorf("friend must have a non-empty name")
	}
	if friend.Profession == "" {
		return fmt.Errorf("friend must have a non-empty profession")
	}
	if friend.PhotoURL == "" {
		return fmt.Errorf("friend must have a non-empty photo_url")
	}

	now := time.Now().UTC()
	friend.CreatedAt = now
	friend.UpdatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for creating friend",
			"name", friend.Name, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	query := `
        INSERT INTO friends (name, profession, profession_description, photo_url, created_at, updated_at)
        VALUES (:name, :profession, :profession_description, :photo_url, :created_at, :updated_at);
    `

	result, err := tx.NamedExecContext(ctx, query, friend)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating friend", "name", friend.Name, "error", err)
		return fmt.Errorf("failed to create friend %q: %w", friend.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		s.logger.ErrorContext(ctx, "Could not retrieve last insert ID after creating friend",
			"name", friend.Name, "error", err)
		return fmt.Errorf("failed to retrieve id for friend %q: %w", friend.Name, err)
	}
	friend.ID = id

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction",
			"name", friend.Name, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	// Successfully committed, set tx to nil to avoid rollback
	tx = nil

	s.logger.DebugContext(ctx, "Friend created successfully", "friend_id", friend.ID, "name", friend.Name)
	return nil
}

// GetFriend retrieves a friend by ID.
func (s *sqlxStore) GetFriend(ctx context.Context, id int64) (*Friend, error) {
	if id <= 0 {
		return nil, ErrFriendNotFound
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var friend Friend
	query := `SELECT id, created_at, updated_at, name, profession, profession_description, photo_url
	          FROM friends WHERE id = ?`

	err := s.db.GetContext(ctx, &friend, query, id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No friend found", "friend_id", id)
		return nil, ErrFriendNotFound

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching friend",
			"friend_id", id, "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting friend by ID", "friend_id", id, "error", err)
		return nil, fmt.Errorf("failed to get friend %d: %w", id, err)
	}

	return &friend, nil
}

// ListFriends retrieves all friends in ascending ID order.
func (s *sqlxStore) ListFriends(ctx context.Context) ([]Friend, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var friends []Friend
	query := `SELECT id, created_at, updated_at, name, profession, profession_description, photo_url
	          FROM friends ORDER BY id ASC`

	err := s.db.SelectContext(ctx, &friends, query)

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while listing friends", "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error listing friends", "error", err)
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}

	s.logger.DebugContext(ctx, "Listed friends successfully", "count", len(friends))
	return friends, nil
}

// DeleteFriend removes the friend with the given ID.
func (s *sqlxStore) DeleteFriend(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrFriendNotFound
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM friends WHERE id = ?`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting friend", "friend_id", id, "error", err)
		return fmt.Errorf("failed to delete friend %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count when deleting friend",
			"friend_id", id, "error", err)
		return fmt.Errorf("failed to confirm delete of friend %d: %w", id, err)
	}
	if affected == 0 {
		return ErrFriendNotFound
	}

	s.logger.DebugContext(ctx, "Friend deleted successfully", "friend_id", id)
	return nil
}
