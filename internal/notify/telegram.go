package notify

import (
	"fmt"
	"html"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskreward/internal/logx"
)

// sender is the part of *tgbotapi.BotAPI we use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram forwards notices at or above a level to one chat.
type Telegram struct {
	api    sender
	chatID int64
	min    Level
	logger *log.Logger
}

// NewTelegram authorises the bot token against the Telegram API.
func NewTelegram(token string, chatID int64, minLevel Level, logger *log.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	logx.Info(logger, "telegram_authorized", logx.Fields{"account": api.Self.UserName})
	return newTelegram(api, chatID, minLevel, logger), nil
}

func newTelegram(api sender, chatID int64, minLevel Level, logger *log.Logger) *Telegram {
	if minLevel == "" {
		minLevel = LevelSuccess
	}
	return &Telegram{api: api, chatID: chatID, min: minLevel, logger: logger}
}

func (t *Telegram) Notify(n Notice) {
	if rank(n.Level) < rank(t.min) {
		return
	}
	msg := tgbotapi.NewMessage(t.chatID, format(n))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.api.Send(msg); err != nil {
		logx.Error(t.logger, "telegram_send_failed", err, logx.Fields{"chat_id": t.chatID})
	}
}

func rank(l Level) int {
	switch l {
	case LevelError:
		return 2
	case LevelSuccess:
		return 1
	default:
		return 0
	}
}

func format(n Notice) string {
	icon := "ℹ️"
	switch n.Level {
	case LevelSuccess:
		icon = "✅"
	case LevelError:
		icon = "⚠️"
	}
	text := fmt.Sprintf("%s <b>%s</b>", icon, html.EscapeString(n.Title))
	if n.Description != "" {
		text += "\n" + html.EscapeString(n.Description)
	}
	return text
}
