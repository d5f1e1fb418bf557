package media

import (
	"context"
	"fmt"

	"github.com/orgball2608/wedding-gallery/internal/domain"
	apperrors "github.com/orgball2608/wedding-gallery/pkg/errors"
)

var ErrNotFound = fmt.Errorf("media %w", apperrors.ErrNotFound)

//go:generate go run go.uber.org/mock/mockgen -source=media.go -destination=mocks/mock.go
type Repository interface {
	// List returns media ordered by sort, restricted to the filter's kind.
	List(ctx context.Context, sort domain.SortOption, filter domain.TypeFilter) ([]domain.Media, error)

	// GetByID returns ErrNotFound when no media has the id.
	GetByID(ctx context.Context, id string) (*domain.Media, error)

	// Create stores a new media row with zero likes and returns it.
	Create(ctx context.Context, media domain.Media) (*domain.Media, error)

	// IncrementLike atomically adds one like and returns the new count.
	IncrementLike(ctx context.Context, id string) (int, error)

	// ListRefs returns id, url and kind of every media row.
	ListRefs(ctx context.Context) ([]domain.MediaRef, error)

	// DeleteByIDs removes the given rows and returns how many were deleted.
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}
