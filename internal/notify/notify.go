package notify

import (
	"context"

	"github.com/orgball2608/wedding-gallery/internal/domain"
)

// Notifier tells the couple about guest activity. Implementations must not
// fail the caller; delivery problems are logged.
type Notifier interface {
	MediaUploaded(ctx context.Context, media domain.Media)
	MessagePosted(ctx context.Context, msg domain.Message)
	CleanupFinished(ctx context.Context, removed int64)
}

type Nop struct{}

var _ Notifier = Nop{}

func (Nop) MediaUploaded(context.Context, domain.Media) {}

func (Nop) MessagePosted(context.Context, domain.Message) {}

func (Nop) CleanupFinished(context.Context, int64) {}
