package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/orgball2608/wedding-gallery/internal/domain"
	"github.com/redis/go-redis/v9"
)

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Listing = (*Redis)(nil)

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get listing generation: %w", err)
	}
	return gen, nil
}

func (r *Redis) Get(ctx context.Context, gen int64, sort domain.SortOption, filter domain.TypeFilter) ([]domain.Media, bool, error) {
	raw, err := r.client.Get(ctx, listingKey(gen, sort, filter)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get listing: %w", err)
	}

	var items []domain.Media
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("decode listing: %w", err)
	}
	return items, true, nil
}

func (r *Redis) Set(ctx context.Context, gen int64, sort domain.SortOption, filter domain.TypeFilter, items []domain.Media) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}
	return r.client.Set(ctx, listingKey(gen, sort, filter), raw, r.ttl).Err()
}

// Invalidate bumps the generation; entries of older generations expire by TTL.
func (r *Redis) Invalidate(ctx context.Context) error {
	return r.client.Incr(ctx, generationKey).Err()
}
