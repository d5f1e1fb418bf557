package board

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/orgball2608/wedding-gallery/internal/domain"
	"github.com/orgball2608/wedding-gallery/internal/live"
	"github.com/orgball2608/wedding-gallery/internal/notify"
	"github.com/orgball2608/wedding-gallery/internal/repositories/message"
	apperrors "github.com/orgball2608/wedding-gallery/pkg/errors"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
	"go.uber.org/fx"
)

const (
	MinNameLength    = 2
	MaxContentLength = 500
)

type Opts struct {
	fx.In

	Repo     message.Repository
	Live     live.Publisher
	Notifier notify.Notifier
	Logger   logger.Logger
}

// Board is the guest message board.
type Board struct {
	repo     message.Repository
	live     live.Publisher
	notifier notify.Notifier
	log      logger.Logger
}

func New(opts Opts) *Board {
	return &Board{
		repo:     opts.Repo,
		live:     opts.Live,
		notifier: opts.Notifier,
		log:      opts.Logger.WithComponent("MessageBoard"),
	}
}

func (b *Board) Post(ctx context.Context, name, content string) (*domain.Message, error) {
	name = strings.TrimSpace(name)
	content = strings.TrimSpace(content)

	if utf8.RuneCountInString(name) < MinNameLength {
		return nil, apperrors.WrapWithCode(apperrors.ErrInvalidInput, "invalid_name",
			fmt.Sprintf("name must be at least %d characters", MinNameLength))
	}
	if n := utf8.RuneCountInString(content); n == 0 || n > MaxContentLength {
		return nil, apperrors.WrapWithCode(apperrors.ErrInvalidInput, "invalid_content",
			fmt.Sprintf("message must be between 1 and %d characters", MaxContentLength))
	}

	msg, err := b.repo.Create(ctx, name, content)
	if err != nil {
		b.log.Error("Error saving message", "name", name, "error", err)
		return nil, fmt.Errorf("post message: %w", err)
	}

	b.log.Info("Message posted", "message_id", msg.ID, "name", msg.Name)

	b.live.Publish(live.Event{Type: live.EventMessagePosted, Message: msg})
	b.notifier.MessagePosted(ctx, *msg)

	return msg, nil
}

// List returns messages newest first, or an empty list when storage fails.
func (b *Board) List(ctx context.Context) []domain.Message {
	msgs, err := b.repo.List(ctx)
	if err != nil {
		b.log.Error("Error fetching messages", "error", err)
		return []domain.Message{}
	}
	return msgs
}

var Module = fx.Module("board", fx.Provide(New))
