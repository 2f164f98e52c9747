package bot

import (
	"log/slog"
	"os"
	"sync"
	"time"
)

// State is a step of the add-friend conversation.
type State int

const (
	// StatePhoto waits for the user to send a photo.
	StatePhoto State = iota
	// StateName waits for the friend's name.
	StateName
	// StateProfession waits for the friend's profession.
	StateProfession
	// StateDescription waits for an optional profession description.
	StateDescription
)

func (s State) String() string {
	switch s {
	case StatePhoto:
		return "photo"
	case StateName:
		return "name"
	case StateProfession:
		return "profession"
	case StateDescription:
		return "description"
	default:
		return "unknown"
	}
}

// Session holds the data collected so far in one user's add-friend flow.
type Session struct {
	State       State
	PhotoPath   string
	Name        string
	Profession  string
	Description string
	UpdatedAt   time.Time
}

// SessionStore tracks in-flight add-friend conversations keyed by user ID.
// Only one session per user exists at a time.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	logger   *slog.Logger
}

// NewSessionStore creates an empty session store.
func NewSessionStore(logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		sessions: make(map[int64]*Session),
		logger:   logger.With("component", "sessions"),
	}
}

// Begin starts a fresh session for the user, discarding any previous one
// along with its downloaded photo.
func (s *SessionStore) Begin(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.sessions[userID]; ok {
		s.cleanupLocked(userID, old)
	}

	session := &Session{State: StatePhoto, UpdatedAt: time.Now()}
	s.sessions[userID] = session
	return session
}

// Get returns the user's active session, or nil if none exists.
func (s *SessionStore) Get(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return nil
	}
	return session
}

// Touch records activity on the user's session so it is not swept.
func (s *SessionStore) Touch(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[userID]; ok {
		session.UpdatedAt = time.Now()
	}
}

// End removes the user's session without touching its photo file. The
// caller keeps responsibility for the file, which matters when the photo
// is still being uploaded to the API.
func (s *SessionStore) End(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Cancel removes the user's session and deletes its downloaded photo.
// It reports whether a session existed.
func (s *SessionStore) Cancel(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return false
	}
	s.cleanupLocked(userID, session)
	return true
}

// Sweep removes sessions idle for longer than ttl and deletes their photo
// files. It returns the number of sessions removed.
func (s *SessionStore) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for userID, session := range s.sessions {
		if session.UpdatedAt.Before(cutoff) {
			s.cleanupLocked(userID, session)
			removed++
		}
	}
	return removed
}

// Len returns the number of active sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) cleanupLocked(userID int64, session *Session) {
	if session.PhotoPath != "" {
		if err := os.Remove(session.PhotoPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove session photo", "path", session.PhotoPath, "error", err)
		}
	}
	delete(s.sessions, userID)
}
