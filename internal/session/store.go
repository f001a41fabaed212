package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

type slot struct {
	mu      sync.Mutex
	session *Session
}

// Store keeps sessions in memory. Work on one session is serialized by With;
// different sessions proceed in parallel.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*slot
}

func NewStore() *Store {
	return &Store{sessions: map[uuid.UUID]*slot{}}
}

func (st *Store) Create() *Session {
	s := New()
	st.mu.Lock()
	st.sessions[s.ID] = &slot{session: s}
	st.mu.Unlock()
	return s
}

// Get returns the session without locking it. Callers that mutate it must use With.
func (st *Store) Get(id uuid.UUID) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sl, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	return sl.session, true
}

func (st *Store) Delete(id uuid.UUID) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// With runs fn while holding the lock of session id.
func (st *Store) With(id uuid.UUID, fn func(*Session) error) error {
	st.mu.RLock()
	sl, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()
	return fn(sl.session)
}
