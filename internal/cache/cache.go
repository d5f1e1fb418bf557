package cache

import (
	"context"
	"fmt"

	"github.com/orgball2608/wedding-gallery/internal/domain"
)

// Listing caches gallery listings per (sort, filter). Entries are written
// under a generation number; Invalidate moves to a new generation so a
// listing read before a write can never be served after it.
type Listing interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, sort domain.SortOption, filter domain.TypeFilter) ([]domain.Media, bool, error)
	Set(ctx context.Context, gen int64, sort domain.SortOption, filter domain.TypeFilter, items []domain.Media) error
	Invalidate(ctx context.Context) error
}

const (
	keyPrefix     = "gallery:media"
	generationKey = keyPrefix + ":gen"
)

func listingKey(gen int64, sort domain.SortOption, filter domain.TypeFilter) string {
	return fmt.Sprintf("%s:%d:%s:%s", keyPrefix, gen, sort, filter)
}
