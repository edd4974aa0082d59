package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is how long a session may sit idle before it is evicted.
const DefaultTimeout = time.Hour

var ErrNotFound = errors.New("session not found")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a session transcript. Messages are immutable once
// appended; the only removal path is PopLastIfRole for failure rollback.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	ImageURL  string    `json:"image_url,omitempty"`
	Images    []string  `json:"images,omitempty"`
}

// Session holds one user's ongoing conversation.
type Session struct {
	ID         string
	Created    time.Time
	LastActive time.Time
	Messages   []Message
}

// Store maps session id -> Session with TTL eviction. Expired sessions are
// swept at the start of every access rather than by a background task, so a
// stale session is never observable through the public API.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	timeout  time.Duration
	now      func() time.Time
}

func NewStore(timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		now:      time.Now,
	}
}

// cleanup removes every session idle longer than the timeout.
// Callers must hold s.mu.
func (s *Store) cleanup() {
	cutoff := s.now().Add(-s.timeout)
	for id, sess := range s.sessions {
		if sess.LastActive.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

// GetOrCreate returns the session for id, refreshing its last-active time.
// A non-empty id that is unknown creates a session with that exact id
// (client-assigned identifiers are honored). An empty id mints a fresh uuid.
func (s *Store) GetOrCreate(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanup()

	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			sess.LastActive = s.now()
			return sess
		}
	} else {
		id = uuid.NewString()
	}

	now := s.now()
	sess := &Session{ID: id, Created: now, LastActive: now}
	s.sessions[id] = sess
	return sess
}

func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanup()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.LastActive = s.now()
	return sess, nil
}

// Delete removes the session if present. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanup()
	delete(s.sessions, id)
}

func (s *Store) AppendMessage(id string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanup()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.Messages = append(sess.Messages, msg)
	sess.LastActive = s.now()
	return nil
}

// PopLastIfRole removes the final message only when its role matches.
// Used to roll a user turn back out of the transcript when the workflow that
// was supposed to answer it fails. An empty transcript or a mismatched final
// role is not an error.
func (s *Store) PopLastIfRole(id string, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanup()

	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	if n := len(sess.Messages); n > 0 && sess.Messages[n-1].Role == role {
		sess.Messages = sess.Messages[:n-1]
	}
	sess.LastActive = s.now()
}

// Messages returns a copy of the transcript for id.
func (s *Store) Messages(id string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanup()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.LastActive = s.now()
	out := make([]Message, len(sess.Messages))
	copy(out, sess.Messages)
	return out, nil
}

// Count reports how many sessions are currently tracked. Used by the health
// endpoint; sweeps first so the number excludes expired sessions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanup()
	return len(s.sessions)
}

// Sweep evicts expired sessions immediately. The server runs this on a cron
// schedule so an idle process does not hold expired transcripts in memory
// until the next request arrives.
func (s *Store) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanup()
}
