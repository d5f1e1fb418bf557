package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/wedding-gallery/internal/domain"
	"github.com/orgball2608/wedding-gallery/pkg/formatter"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
)

const messagePreviewRunes = 200

// Sender is the part of tgbotapi.BotAPI used here.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	bot     Sender
	channel int64
	log     logger.Logger
}

var _ Notifier = (*Telegram)(nil)

func NewTelegram(bot Sender, channel int64, log logger.Logger) *Telegram {
	return &Telegram{
		bot:     bot,
		channel: channel,
		log:     log.WithComponent("TelegramNotifier"),
	}
}

func (t *Telegram) MediaUploaded(_ context.Context, media domain.Media) {
	t.send(uploadText(media))
}

func (t *Telegram) MessagePosted(_ context.Context, msg domain.Message) {
	t.send(messageText(msg))
}

func (t *Telegram) CleanupFinished(_ context.Context, removed int64) {
	if removed == 0 {
		return
	}
	t.send(cleanupText(removed))
}

func (t *Telegram) send(text string) {
	msg := tgbotapi.NewMessage(t.channel, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		t.log.Error("Failed to send telegram notification", "error", err)
	}
}

func uploadText(media domain.Media) string {
	what := "photo"
	if media.IsVideo() {
		what = "video"
	}
	return fmt.Sprintf("📸 *New %s* from %s\n%s",
		what,
		formatter.EscapeMarkdownV2(media.Name),
		formatter.EscapeMarkdownV2(media.URL),
	)
}

func messageText(msg domain.Message) string {
	return fmt.Sprintf("💌 *New message* from %s\n_%s_",
		formatter.EscapeMarkdownV2(msg.Name),
		formatter.EscapeMarkdownV2(formatter.Truncate(msg.Content, messagePreviewRunes)),
	)
}

func cleanupText(removed int64) string {
	noun := "items"
	if removed == 1 {
		noun = "item"
	}
	return fmt.Sprintf("🧹 Removed %s stale gallery %s",
		formatter.EscapeMarkdownV2(formatter.FormatNumber(removed)), noun)
}
