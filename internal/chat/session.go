package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the interaction state of a session.
type State int

const (
	StateIdle State = iota
	StateGenerating
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	default:
		return "unknown"
	}
}

// Service names a backend a session may lose access to.
type Service string

const (
	ServiceGeneration Service = "generation"
	ServiceLogging    Service = "logging"
)

// NoticeLevel is the severity of an inline notice.
type NoticeLevel string

const (
	NoticeError   NoticeLevel = "error"
	NoticeWarning NoticeLevel = "warning"
)

// Notice is a message shown inline next to the conversation.
type Notice struct {
	Level NoticeLevel `json:"level"`
	Text  string      `json:"text"`
}

// Session is the state owned by one user: their conversation, the
// interaction state and the services that failed authentication.
type Session struct {
	ID           string
	Conversation *Conversation

	mu          sync.Mutex
	state       State
	lastActive  time.Time
	unavailable map[Service]bool
	notices     []Notice
}

// NewSession creates an idle session with a random ID.
func NewSession(now time.Time) *Session {
	return newSession(uuid.NewString(), now)
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		Conversation: NewConversation(),
		lastActive:   now,
		unavailable:  make(map[Service]bool),
	}
}

// State returns the current interaction state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// begin moves an idle session to generating. It fails when a request is
// already in flight.
func (s *Session) begin(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return false
	}
	s.state = StateGenerating
	s.lastActive = now
	return true
}

func (s *Session) finish(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.lastActive = now
}

// Touch records activity.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now
}

// LastActive returns the time of the last recorded activity.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Available reports whether svc is still usable in this session.
func (s *Session) Available(svc Service) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.unavailable[svc]
}

func (s *Session) markUnavailable(svc Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable[svc] = true
}

// AddNotices queues notices for the next render.
func (s *Session) AddNotices(notices ...Notice) {
	if len(notices) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, notices...)
}

// TakeNotices returns and clears the pending notices.
func (s *Session) TakeNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}
