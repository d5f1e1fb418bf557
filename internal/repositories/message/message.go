package message

import (
	"context"

	"github.com/orgball2608/wedding-gallery/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=mocks/mock.go
type Repository interface {
	// Create stores a message and returns it with id and timestamp set
	Create(ctx context.Context, name, content string) (*domain.Message, error)

	// List returns every message, newest first
	List(ctx context.Context) ([]domain.Message, error)
}
