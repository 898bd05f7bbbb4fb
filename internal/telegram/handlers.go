package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/hubermanchat/internal/chat"
	"github.com/edgard/hubermanchat/internal/domain/model"
	"github.com/edgard/hubermanchat/internal/sanitize"
)

const msgBusy = "Still thinking about your last message..."

// Deps provides dependencies for the Telegram handlers.
type Deps struct {
	Logger   *slog.Logger
	Loop     *chat.Loop
	Registry *chat.Registry
	Welcome  string
}

// RegisteredHandler describes a command handler and its middleware.
type RegisteredHandler struct {
	HandlerType bot.HandlerType
	Pattern     string
	Handler     bot.HandlerFunc
	Middleware  []bot.Middleware
	MatchType   bot.MatchType
}

// RegisterAllCommands returns the command handlers. Plain text is served by
// the default handler, see NewChatHandler.
func RegisterAllCommands(deps Deps) map[string]RegisteredHandler {
	return map[string]RegisteredHandler{
		"/start": {
			HandlerType: bot.HandlerTypeMessageText,
			Pattern:     "start",
			Handler:     NewStartHandler(deps),
			MatchType:   bot.MatchTypeCommandStartOnly,
		},
	}
}

// SessionKey is the registry key of the session owned by a Telegram chat.
func SessionKey(chatID int64) string {
	return fmt.Sprintf("telegram:%d", chatID)
}

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps Deps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

type startHandler struct {
	deps Deps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil {
		log.WarnContext(ctx, "Start handler received update without message", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Welcome}); err != nil {
		log.ErrorContext(ctx, "Failed to send welcome message", "error", err, "chat_id", chatID)
	}
}

// NewChatHandler returns the default handler: every text message is one
// submission for the chat's session.
func NewChatHandler(deps Deps) bot.HandlerFunc {
	return chatHandler{deps: deps, policy: sanitize.NewPolicy()}.Handle
}

type chatHandler struct {
	deps   Deps
	policy *sanitize.Policy
}

func (h chatHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "chat")

	msg := update.Message
	if msg == nil || msg.Text == "" {
		log.DebugContext(ctx, "Ignoring update without text", "update_id", update.ID)
		return
	}

	chatID := msg.Chat.ID
	sess := h.deps.Registry.GetOrCreate(SessionKey(chatID))

	typingCtx, stopTyping := context.WithCancel(ctx)
	defer stopTyping()
	go keepTyping(typingCtx, b, chatID, log)

	onReply := func(reply model.Message) {
		stopTyping()
		// Telegram shows Markdown markup literally.
		h.send(ctx, b, chatID, h.policy.PlainText(reply.Content), log)
	}

	_, err := h.deps.Loop.Submit(ctx, sess, msg.Text, onReply)
	stopTyping()

	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		return
	case errors.Is(err, chat.ErrBusy):
		h.send(ctx, b, chatID, msgBusy, log)
		return
	case err != nil && !errors.Is(err, chat.ErrBackendUnavailable):
		log.ErrorContext(ctx, "Unexpected submission failure", "error", err, "chat_id", chatID)
		return
	}

	for _, n := range sess.TakeNotices() {
		h.send(ctx, b, chatID, n.Text, log)
	}
}

func (h chatHandler) send(ctx context.Context, b *bot.Bot, chatID int64, text string, log *slog.Logger) {
	for _, part := range splitMessage(text, maxMessageLength) {
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: part}); err != nil {
			log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
			return
		}
	}
}
