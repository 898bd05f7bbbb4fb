package model

import "time"

// LogEntry is one exchange written to the conversation log. It is not kept in
// process memory after it has been written.
type LogEntry struct {
	Timestamp   time.Time
	UserMessage string
	BotResponse string
}

// Row returns the entry as a spreadsheet row:
// [ISO-8601 timestamp, user message, bot response].
func (e LogEntry) Row() []any {
	return []any{e.Timestamp.Format(time.RFC3339Nano), e.UserMessage, e.BotResponse}
}
