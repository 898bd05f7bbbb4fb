// Package chat implements the conversation store, the per-user session and
// the interaction loop that ties the generation and logging clients together.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/edgard/hubermanchat/internal/domain/model"
	errs "github.com/edgard/hubermanchat/internal/errors"
)

// Submission rejections. Nothing is appended to the conversation when one of
// these is returned.
var (
	ErrEmptyInput         = errors.New("message is empty")
	ErrBusy               = errors.New("a reply is already being generated")
	ErrBackendUnavailable = errors.New("backend services not initialized, cannot process request")
)

const (
	msgGenerationFailed = "Error generating response from Gemini: "
	msgLoggingFailed    = "Error logging to Google Sheet: "
	msgNoRecorder       = "Google Sheets client not initialized. Skipping log."
	msgRecorderDown     = "Google Sheets logging is unavailable for this session. Skipping log."
)

// Turn is the outcome of one accepted submission.
type Turn struct {
	User    model.Message  `json:"user"`
	Reply   *model.Message `json:"reply,omitempty"`
	Notices []Notice       `json:"notices,omitempty"`

	// Err is the generation failure, if any. No reply was stored.
	Err error `json:"-"`
	// LogErr is the logging failure, if any. The reply is still stored.
	LogErr error `json:"-"`
}

// Loop runs one exchange at a time per session: store the user message,
// generate, store the reply, log the exchange.
type Loop struct {
	generator    Generator
	recorder     Recorder
	systemPrompt string
	log          *slog.Logger
	now          func() time.Time
}

// NewLoop creates the interaction loop. recorder may be nil, in which case
// every turn skips logging with a warning.
func NewLoop(generator Generator, recorder Recorder, systemPrompt string, log *slog.Logger) *Loop {
	if log == nil {
		log = slog.Default()
	}
	return &Loop{
		generator:    generator,
		recorder:     recorder,
		systemPrompt: systemPrompt,
		log:          log.With("component", "chat_loop"),
		now:          time.Now,
	}
}

// Submit processes one user input for session s.
//
// onReply, when non-nil, is called with the assistant message after it has
// been stored and before the exchange is logged, so surfaces can show it
// without waiting on the spreadsheet.
//
// Remote failures never surface as the returned error; they are recorded on
// the Turn and as session notices.
func (l *Loop) Submit(ctx context.Context, s *Session, input string, onReply func(model.Message)) (*Turn, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	if !s.begin(l.now()) {
		l.log.WarnContext(ctx, "Rejected overlapping submission", "session_id", s.ID)
		return nil, ErrBusy
	}
	defer func() { s.finish(l.now()) }()

	if !s.Available(ServiceGeneration) {
		s.AddNotices(Notice{Level: NoticeError, Text: "Backend services not initialized. Cannot process request."})
		return nil, ErrBackendUnavailable
	}

	userMsg := model.Message{Role: model.RoleUser, Content: input}
	s.Conversation.Append(userMsg)
	turn := &Turn{User: userMsg}

	l.log.DebugContext(ctx, "Generating reply", "session_id", s.ID, "history_length", s.Conversation.Len())

	reply, err := l.generator.Generate(ctx, l.systemPrompt, input)
	if err != nil {
		l.log.ErrorContext(ctx, "Generation failed", "session_id", s.ID, "error_code", errs.Code(err), "error", err)
		turn.Err = err
		l.disableOnAuth(ctx, s, ServiceGeneration, err)
		turn.Notices = append(turn.Notices, Notice{Level: NoticeError, Text: msgGenerationFailed + err.Error()})
		s.AddNotices(turn.Notices...)
		return turn, nil
	}

	assistantMsg := model.Message{Role: model.RoleAssistant, Content: reply}
	s.Conversation.Append(assistantMsg)
	turn.Reply = &assistantMsg

	if onReply != nil {
		onReply(assistantMsg)
	}

	l.record(ctx, s, turn)
	s.AddNotices(turn.Notices...)
	return turn, nil
}

// record logs the exchange of a successful turn. Failures only add notices.
func (l *Loop) record(ctx context.Context, s *Session, turn *Turn) {
	if l.recorder == nil {
		turn.Notices = append(turn.Notices, Notice{Level: NoticeWarning, Text: msgNoRecorder})
		return
	}
	if !s.Available(ServiceLogging) {
		turn.Notices = append(turn.Notices, Notice{Level: NoticeWarning, Text: msgRecorderDown})
		return
	}

	entry := model.LogEntry{
		Timestamp:   l.now(),
		UserMessage: turn.User.Content,
		BotResponse: turn.Reply.Content,
	}
	// The row is written even if the caller has gone away after seeing the reply.
	if err := l.recorder.AppendRow(context.WithoutCancel(ctx), entry); err != nil {
		l.log.ErrorContext(ctx, "Failed to log exchange", "session_id", s.ID, "error_code", errs.Code(err), "error", err)
		turn.LogErr = err
		l.disableOnAuth(ctx, s, ServiceLogging, err)
		turn.Notices = append(turn.Notices, Notice{Level: NoticeError, Text: msgLoggingFailed + err.Error()})
		return
	}

	l.log.DebugContext(ctx, "Logged exchange", "session_id", s.ID)
}

// disableOnAuth marks svc unavailable for s when err is a credential
// rejection.
func (l *Loop) disableOnAuth(ctx context.Context, s *Session, svc Service, err error) {
	var authErr *errs.AuthError
	if !errors.As(err, &authErr) {
		return
	}
	s.markUnavailable(svc)
	l.log.WarnContext(ctx, "Credentials rejected, service disabled for session",
		"session_id", s.ID, "service", authErr.Service(), "capability", string(svc))
}
