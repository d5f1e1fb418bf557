package app

import (
	"context"
	"fmt"
	"time"

	"github.com/orgball2608/wedding-gallery/internal/board"
	"github.com/orgball2608/wedding-gallery/internal/cache"
	"github.com/orgball2608/wedding-gallery/internal/db"
	"github.com/orgball2608/wedding-gallery/internal/gallery"
	"github.com/orgball2608/wedding-gallery/internal/guests"
	"github.com/orgball2608/wedding-gallery/internal/live"
	"github.com/orgball2608/wedding-gallery/internal/notify"
	repositories "github.com/orgball2608/wedding-gallery/internal/repositories/fx"
	"github.com/orgball2608/wedding-gallery/internal/server"
	"github.com/orgball2608/wedding-gallery/pkg/config"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
	"github.com/orgball2608/wedding-gallery/pkg/pgx"
	"github.com/orgball2608/wedding-gallery/pkg/retry"
	"go.uber.org/fx"
)

const migrateTimeout = 2 * time.Minute

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
	),
	fx.Invoke(migrate),
	repositories.Module,
	cache.Module,
	live.Module,
	notify.Module,
	gallery.Module,
	gallery.SchedulerModule,
	board.Module,
	guests.Module,
	server.Module,
	fx.Invoke(flushOnStop),
)

// migrate applies pending migrations before anything touches the schema.
func migrate(cfg *config.Config, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	var migrator *db.Migrator
	err := retry.Do(ctx, log, "migration connect", func() error {
		m, err := db.NewMigrator(ctx, cfg.GetDSN())
		if err != nil {
			return err
		}
		migrator = m
		return nil
	}, retry.StartupConfig())
	if err != nil {
		return fmt.Errorf("failed to connect for migrations: %w", err)
	}
	defer migrator.Close()

	if err := migrator.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := migrator.Version(ctx)
	if err != nil {
		log.Warn("Failed to read schema version", "error", err)
	} else {
		log.Info("Database schema up to date", "version", version)
	}
	return nil
}

func flushOnStop(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			logger.Flush()
			return nil
		},
	})
}
