// Package model contains the core domain entities of the chat front-end.
// These models are independent of the surfaces and remote services.
package model

// Role tags who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation. It is passed and stored by value,
// so a Message cannot change once created.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
