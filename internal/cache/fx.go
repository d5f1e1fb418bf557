package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/orgball2608/wedding-gallery/pkg/config"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
	"github.com/orgball2608/wedding-gallery/pkg/retry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	LC     fx.Lifecycle
	Logger logger.Logger
	Config *config.Config
}

// New picks redis when REDIS_ADDR is set and the in-process cache otherwise.
func New(opts Opts) Listing {
	ttl := opts.Config.Redis.TTL
	if opts.Config.Redis.Addr == "" {
		opts.Logger.Info("Redis not configured, using in-memory listing cache")
		return NewMemory(ttl)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Config.Redis.Addr,
		Password: opts.Config.Redis.Password,
		DB:       opts.Config.Redis.DB,
	})

	opts.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			err := retry.Do(ctx, opts.Logger, "redis ping", func() error {
				err := client.Ping(ctx).Err()
				if err != nil && isAuthError(err) {
					return retry.Permanent(err)
				}
				return err
			}, retry.StartupConfig())
			if err != nil {
				return fmt.Errorf("failed to connect to redis: %w", err)
			}
			opts.Logger.Info("Connected to redis", "addr", opts.Config.Redis.Addr)
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return NewRedis(client, ttl)
}

func isAuthError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "NOAUTH") || strings.HasPrefix(msg, "WRONGPASS")
}

var Module = fx.Provide(New)
