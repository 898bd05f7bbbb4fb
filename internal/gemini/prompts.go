package gemini

import "strings"

// Turn labels used to flatten a single exchange into one prompt string.
const (
	userLabel      = "User:"
	assistantLabel = "Assistant:"
)

// BuildPrompt concatenates the system prompt, the user label, the user's
// text and the assistant label. Earlier turns are never included, so the
// model has no memory across calls.
func BuildPrompt(systemPrompt, userPrompt string) string {
	var sb strings.Builder
	sb.Grow(len(systemPrompt) + len(userPrompt) + len(userLabel) + len(assistantLabel) + 4)
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\n")
	sb.WriteString(userLabel)
	sb.WriteString(" ")
	sb.WriteString(userPrompt)
	sb.WriteString("\n")
	sb.WriteString(assistantLabel)
	return sb.String()
}
