// Package notify tells the agency about new submissions and chat messages.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers a short text to the agency staff.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// LogNotifier writes notifications to the application log. Used when no bot is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, text string) error {
	slog.InfoContext(ctx, "notification", "text", text)
	return nil
}

type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts notifications to one Telegram chat.
type TelegramNotifier struct {
	bot    botSender
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, truncate(text, 4000))
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// FromEnv returns a TelegramNotifier when TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID
// are set, otherwise a LogNotifier.
func FromEnv() Notifier {
	token := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	rawChat := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID"))
	if token == "" || rawChat == "" {
		return LogNotifier{}
	}
	chatID, err := strconv.ParseInt(rawChat, 10, 64)
	if err != nil {
		slog.Warn("invalid TELEGRAM_CHAT_ID, notifications go to the log", "err", err)
		return LogNotifier{}
	}
	n, err := NewTelegramNotifier(token, chatID)
	if err != nil {
		slog.Warn("telegram unavailable, notifications go to the log", "err", err)
		return LogNotifier{}
	}
	return n
}

// Async sends text in the background so request handlers never wait on the notifier.
func Async(n Notifier, text string) {
	if n == nil {
		return
	}
	go func() {
		if err := n.Notify(context.Background(), text); err != nil {
			slog.Error("notification failed", "err", err)
		}
	}()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}
