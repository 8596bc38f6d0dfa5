package digest

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/floorpulse/floorpulse/internal/logger"
	"github.com/floorpulse/floorpulse/internal/secrets"
)

// TelegramNotifier delivers digests over the Telegram Bot API.
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramNotifier authenticates against the Bot API with the
// given token.
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot auth (%s): %w", secrets.MaskBotToken(token), err)
	}

	logger.WithComponent("digest").Info("Telegram notifier ready", "bot", bot.Self.UserName)
	return &TelegramNotifier{bot: bot}, nil
}

// Send delivers a Markdown message to a chat.
func (n *TelegramNotifier) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return nil
}
