package chat

//go:generate mockgen -destination=./interfaces_mock_test.go -package=chat -source=interfaces.go

import (
	"context"

	"github.com/edgard/hubermanchat/internal/domain/model"
)

// Generator produces one reply for one flattened turn.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Recorder writes one exchange to the conversation log.
type Recorder interface {
	AppendRow(ctx context.Context, entry model.LogEntry) error
}
