package telegram

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Telegram clears a chat action after about five seconds.
const typingInterval = 4 * time.Second

// maxMessageLength is Telegram's limit for one text message, in characters.
const maxMessageLength = 4096

// keepTyping shows the typing action in chatID until ctx is done.
func keepTyping(ctx context.Context, b *bot.Bot, chatID int64, log *slog.Logger) {
	ticker := time.NewTicker(typingInterval)
	defer ticker.Stop()

	for {
		if _, err := b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping}); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.DebugContext(ctx, "Typing action failed", "error", err, "chat_id", chatID)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// splitMessage cuts text into parts of at most limit characters, preferring
// to break after a newline.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i >= limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
