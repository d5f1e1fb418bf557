package notify

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/wedding-gallery/pkg/config"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
	"go.uber.org/fx"
)

// New builds the telegram notifier, or a no-op one when telegram is not
// configured or the bot cannot be reached.
func New(cfg *config.Config, log logger.Logger) Notifier {
	if cfg.Telegram.Token == "" || cfg.Telegram.Channel == 0 {
		return Nop{}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("Error creating telegram bot, notifications disabled", "error", err)
		return Nop{}
	}

	return NewTelegram(bot, cfg.Telegram.Channel, log)
}

var Module = fx.Provide(New)
