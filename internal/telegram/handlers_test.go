package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/hubermanchat/internal/chat"
	"github.com/edgard/hubermanchat/internal/domain/model"
	errs "github.com/edgard/hubermanchat/internal/errors"
	"github.com/edgard/hubermanchat/internal/logger"
)

// fakeAPI records the messages sent through the Bot API.
type fakeAPI struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		f.mu.Lock()
		f.sent = append(f.sent, r.FormValue("text"))
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`))
	case strings.HasSuffix(r.URL.Path, "/sendChatAction"):
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
	}
}

func (f *fakeAPI) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type stubGenerator struct {
	reply string
	err   error
}

func (g stubGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return g.reply, g.err
}

type stubRecorder struct {
	mu      sync.Mutex
	entries []model.LogEntry
	err     error
}

func (r *stubRecorder) AppendRow(_ context.Context, entry model.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return r.err
}

func setupBot(t *testing.T) (*bot.Bot, *fakeAPI) {
	t.Helper()

	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	b, err := NewTelegramBot("123456:TEST", logger.Discard(), bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	require.NoError(t, err)
	return b, api
}

func setupDeps(gen chat.Generator, rec chat.Recorder) Deps {
	log := logger.Discard()
	return Deps{
		Logger:   log,
		Loop:     chat.NewLoop(gen, rec, "system", log),
		Registry: chat.NewRegistry(time.Hour, log),
		Welcome:  "Welcome!",
	}
}

func textUpdate(chatID int64, text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   10,
			Text: text,
			Chat: models.Chat{ID: chatID},
			From: &models.User{ID: 7, FirstName: "Ada"},
		},
	}
}

func TestNewTelegramBot_EmptyToken(t *testing.T) {
	_, err := NewTelegramBot("", logger.Discard())
	assert.Error(t, err)
}

func TestRegisterHandlers_NilBot(t *testing.T) {
	err := RegisterHandlers(nil, logger.Discard(), RegisterAllCommands(setupDeps(stubGenerator{}, nil)))
	assert.Error(t, err)
}

func TestStartHandler(t *testing.T) {
	b, api := setupBot(t)
	deps := setupDeps(stubGenerator{}, nil)

	NewStartHandler(deps)(context.Background(), b, textUpdate(42, "/start"))

	assert.Equal(t, []string{"Welcome!"}, api.messages())
}

func TestChatHandler_Reply(t *testing.T) {
	b, api := setupBot(t)
	rec := &stubRecorder{}
	deps := setupDeps(stubGenerator{reply: "Morning light sets your circadian clock."}, rec)

	NewChatHandler(deps)(context.Background(), b, textUpdate(42, "How do I sleep better?"))

	assert.Equal(t, []string{"Morning light sets your circadian clock."}, api.messages())

	sess, ok := deps.Registry.Get(SessionKey(42))
	require.True(t, ok)
	assert.Equal(t, 2, sess.Conversation.Len())
	require.Len(t, rec.entries, 1)
	assert.Equal(t, "How do I sleep better?", rec.entries[0].UserMessage)
}

func TestChatHandler_GenerationFailure(t *testing.T) {
	b, api := setupBot(t)
	deps := setupDeps(stubGenerator{err: errs.NewGenerationError("model returned no candidates", nil)}, &stubRecorder{})

	NewChatHandler(deps)(context.Background(), b, textUpdate(42, "Hello"))

	sent := api.messages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "Error generating response from Gemini: model returned no candidates")
}

func TestChatHandler_LoggingWarningFollowsReply(t *testing.T) {
	b, api := setupBot(t)
	deps := setupDeps(stubGenerator{reply: "Dopamine drives motivation."}, &stubRecorder{err: errs.NewLoggingError("append failed", errors.New("quota"))})

	NewChatHandler(deps)(context.Background(), b, textUpdate(42, "What is dopamine?"))

	sent := api.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, "Dopamine drives motivation.", sent[0])
	assert.Contains(t, sent[1], "Error logging to Google Sheet:")
}

func TestChatHandler_ChatsAreIsolated(t *testing.T) {
	b, _ := setupBot(t)
	deps := setupDeps(stubGenerator{reply: "ok"}, nil)
	handler := NewChatHandler(deps)

	handler(context.Background(), b, textUpdate(1, "first"))
	handler(context.Background(), b, textUpdate(2, "second"))

	assert.Equal(t, 2, deps.Registry.Len())
	s1, ok := deps.Registry.Get(SessionKey(1))
	require.True(t, ok)
	assert.Equal(t, "first", s1.Conversation.Messages()[0].Content)
}

func TestChatHandler_IgnoresEmptyText(t *testing.T) {
	b, api := setupBot(t)
	deps := setupDeps(stubGenerator{reply: "unused"}, nil)

	NewChatHandler(deps)(context.Background(), b, &models.Update{ID: 2})
	NewChatHandler(deps)(context.Background(), b, textUpdate(42, "   "))

	assert.Empty(t, api.messages())
}

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	parts := splitMessage("aaaa\nbbbbbbbb", 8)
	assert.Equal(t, []string{"aaaa\n", "bbbbbbbb"}, parts)

	parts = splitMessage(strings.Repeat("x", 25), 10)
	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, parts)

	assert.Equal(t, "ééé", strings.Join(splitMessage("ééé", 2), ""))
}
