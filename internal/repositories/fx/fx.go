package fx

import (
	"github.com/orgball2608/wedding-gallery/internal/repositories/guest"
	"github.com/orgball2608/wedding-gallery/internal/repositories/media"
	"github.com/orgball2608/wedding-gallery/internal/repositories/message"
	"go.uber.org/fx"
)

var Module = fx.Options(
	media.Module,
	message.Module,
	guest.Module,
)
