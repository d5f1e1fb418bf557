package gallery

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/wedding-gallery/pkg/config"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
	"go.uber.org/fx"
)

// Cleaner is the part of Store the scheduler drives.
type Cleaner interface {
	CleanupStale(ctx context.Context) int64
}

// Scheduler runs CleanupStale once a day.
type Scheduler struct {
	cleaner   Cleaner
	scheduler gocron.Scheduler
	timeout   time.Duration
	log       logger.Logger

	// base is cancelled on shutdown so an in-flight cleanup stops without deleting.
	base   context.Context
	cancel context.CancelFunc
}

func NewScheduler(cleaner Cleaner, cfg *config.Config, log logger.Logger, opts ...gocron.SchedulerOption) (*Scheduler, error) {
	log = log.WithComponent("CleanupScheduler")

	loc, err := time.LoadLocation(cfg.Gallery.Timezone)
	if err != nil {
		loc = time.UTC
		log.Warn("Failed to load cleanup timezone, using UTC", "timezone", cfg.Gallery.Timezone, "error", err)
	}

	scheduler, err := gocron.NewScheduler(append([]gocron.SchedulerOption{gocron.WithLocation(loc)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cleanup scheduler: %w", err)
	}

	base, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cleaner:   cleaner,
		scheduler: scheduler,
		timeout:   cfg.Gallery.CleanupTimeout,
		log:       log,
		base:      base,
		cancel:    cancel,
	}

	_, err = scheduler.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(gocron.NewAtTime(cfg.Gallery.CleanupHour, cfg.Gallery.CleanupMinute, 0)),
		),
		gocron.NewTask(s.RunOnce),
		gocron.WithName("media-cleanup"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to schedule media cleanup: %w", err)
	}

	log.Info("Scheduled media cleanup",
		"hour", cfg.Gallery.CleanupHour,
		"minute", cfg.Gallery.CleanupMinute,
		"timezone", loc.String())

	return s, nil
}

// RunOnce performs a single bounded cleanup pass.
func (s *Scheduler) RunOnce() {
	if s.base.Err() != nil {
		s.log.Info("Scheduler stopped, skipping media cleanup")
		return
	}

	s.log.Info("Starting scheduled media cleanup")

	ctx := s.base
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	removed := s.cleaner.CleanupStale(ctx)
	s.log.Info("Media cleanup completed", "removed", removed)
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	s.cancel()
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop cleanup scheduler: %w", err)
	}
	return nil
}

func registerScheduler(lc fx.Lifecycle, store *Store, cfg *config.Config, log logger.Logger) error {
	s, err := NewScheduler(store, cfg, log)
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			return s.Stop()
		},
	})
	return nil
}
