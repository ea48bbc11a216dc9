package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Session is a live login record resolved from a bearer token.
type Session struct {
	Token        string
	UserID       string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	LastActiveAt time.Time
}

// Store keeps sessions in process memory. State is lost on restart and
// that is acceptable: clients just log in again.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// SetClock overrides the store's time source. Test hook.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Create issues a new session for the user and returns its token.
func (s *Store) Create(userID string) string {
	token := newToken()
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sessions[token] = &Session{
		Token:        token,
		UserID:       userID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
		LastActiveAt: now,
	}
	return token
}

// Validate resolves a token to its session, refreshing LastActiveAt.
// Unknown and expired tokens both return nil; expired entries are
// deleted on the spot.
func (s *Store) Validate(token string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil
	}
	now := s.now()
	if now.After(sess.ExpiresAt) {
		delete(s.sessions, token)
		return nil
	}
	sess.LastActiveAt = now
	copied := *sess
	return &copied
}

// Invalidate removes a session. Unknown tokens are a no-op.
func (s *Store) Invalidate(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// InvalidateUser removes every session belonging to a user, for bans and
// forced logouts.
func (s *Store) InvalidateUser(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Sweep deletes every expired session and reports how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for token, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Len reports the number of live entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
