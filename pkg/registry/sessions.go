package registry

import (
	"sync"
	"sync/atomic"

	"github.com/burstline/core/pkg/models"
)

// UnknownUser is returned for lookups of sessions that no longer exist.
const UnknownUser = "Unknown User"

// SessionRegistry maps session IDs to submitter context. IDs are allocated
// here so they are monotonic across all submissions, starting at 1.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[int64]models.Session
	counter  atomic.Int64
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[int64]models.Session),
	}
}

// Next allocates the next session ID.
func (r *SessionRegistry) Next() int64 {
	return r.counter.Add(1)
}

func (r *SessionRegistry) Create(id int64, username, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = models.Session{ID: id, Username: username, URL: url}
}

// Lookup never fails: absent sessions resolve to the UnknownUser sentinel.
func (r *SessionRegistry) Lookup(id int64) (username, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return UnknownUser, ""
	}
	return session.Username, session.URL
}

func (r *SessionRegistry) Remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
