package guest

import (
	"context"

	"github.com/orgball2608/wedding-gallery/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=guest.go -destination=mocks/mock.go
type Repository interface {
	// Upsert creates the guest, or renames the existing guest with the same email.
	Upsert(ctx context.Context, name, email string) (*domain.Guest, error)
}
