package chat

import (
	"log/slog"
	"sync"
	"time"
)

// Registry holds the live sessions. A session ends when it has been idle for
// longer than the idle timeout and a sweep runs.
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	log         *slog.Logger
	now         func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(idleTimeout time.Duration, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		log:         log.With("component", "session_registry"),
		now:         time.Now,
	}
}

// Create starts a new session with a random ID.
func (r *Registry) Create() *Session {
	s := NewSession(r.now())

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.log.Debug("Session created", "session_id", s.ID)
	return s
}

// Get returns the live session for id and marks it active.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()

	if ok {
		s.Touch(r.now())
	}
	return s, ok
}

// GetOrCreate returns the session for key, creating it under that key if it
// does not exist.
func (r *Registry) GetOrCreate(key string) *Session {
	r.mu.Lock()
	s, ok := r.sessions[key]
	if !ok {
		s = newSession(key, r.now())
		r.sessions[key] = s
	}
	r.mu.Unlock()

	if ok {
		s.Touch(r.now())
	} else {
		r.log.Debug("Session created", "session_id", key)
	}
	return s
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep ends every idle session whose last activity is older than the idle
// timeout and returns how many were removed. Sessions with a request in
// flight are kept.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.State() != StateIdle || !s.LastActive().Before(cutoff) {
			continue
		}
		delete(r.sessions, id)
		removed++
	}

	if removed > 0 {
		r.log.Info("Expired idle sessions", "removed", removed, "remaining", len(r.sessions))
	}
	return removed
}
