package gallery

import (
	"github.com/orgball2608/wedding-gallery/pkg/config"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
	"go.uber.org/fx"
)

func newProber(cfg *config.Config, log logger.Logger) Prober {
	return NewHTTPProber(cfg.Gallery.ProbeTimeout, log)
}

var Module = fx.Module("gallery",
	fx.Provide(New, newProber),
)

// SchedulerModule adds the daily stale-media cleanup job.
var SchedulerModule = fx.Module("gallery_scheduler",
	fx.Invoke(registerScheduler),
)
