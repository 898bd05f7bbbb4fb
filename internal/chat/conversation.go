package chat

import (
	"sync"

	"github.com/edgard/hubermanchat/internal/domain/model"
)

// Conversation is an append-only, ordered list of messages. Insertion order
// is display order. Alternation of roles is not enforced.
type Conversation struct {
	mu       sync.RWMutex
	messages []model.Message
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds msg at the end.
func (c *Conversation) Append(msg model.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []model.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of stored messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}
