package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/wedding-gallery/internal/cache"
	"github.com/orgball2608/wedding-gallery/internal/gallery"
	"github.com/orgball2608/wedding-gallery/internal/live"
	"github.com/orgball2608/wedding-gallery/internal/notify"
	"github.com/orgball2608/wedding-gallery/internal/repositories/media"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

type discardEvents struct{}

func (discardEvents) Publish(live.Event) {}

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var (
		direct bool
		token  string
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove media whose files can no longer be fetched",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				removed int64
				err     error
			)
			if direct {
				removed, err = cleanupDirect(cmd.Context(), ctx)
			} else {
				if token == "" {
					token = ctx.config().Gallery.OperatorToken
				}
				removed, err = ctx.client().WithOperatorToken(token).CleanupStale(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d stale media\n", removed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&direct, "direct", false, "Run against the database instead of the server")
	cmd.Flags().StringVar(&token, "token", "", "Operator token (defaults to GALLERY_OPERATOR_TOKEN)")

	return cmd
}

// cleanupDirect runs the cleanup in-process. It shares the server's redis
// listing cache when one is configured so the server sees the removal.
func cleanupDirect(ctx context.Context, cc *commandContext) (int64, error) {
	cfg := cc.config()
	log := cc.logger()

	pool, err := pgxpool.New(ctx, cfg.GetDSN())
	if err != nil {
		return 0, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return 0, fmt.Errorf("failed to ping postgres: %w", err)
	}

	var listing cache.Listing = cache.NewMemory(cfg.Redis.TTL)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		listing = cache.NewRedis(client, cfg.Redis.TTL)
	}

	store := gallery.New(gallery.Opts{
		Repo:     media.NewPgx(pool, log),
		Cache:    listing,
		Live:     discardEvents{},
		Notifier: notify.New(cfg, log),
		Prober:   gallery.NewHTTPProber(cfg.Gallery.ProbeTimeout, log),
		Logger:   log,
		Config:   cfg,
	})

	runCtx := ctx
	if cfg.Gallery.CleanupTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Gallery.CleanupTimeout)
		defer cancel()
	}

	return store.CleanupStale(runCtx), nil
}
