package guests

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/orgball2608/wedding-gallery/internal/domain"
	"github.com/orgball2608/wedding-gallery/internal/repositories/guest"
	apperrors "github.com/orgball2608/wedding-gallery/pkg/errors"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
	"go.uber.org/fx"
)

const MinNameLength = 2

// Registry records who is uploading. One guest per email address.
type Registry struct {
	repo     guest.Repository
	validate *validator.Validate
	log      logger.Logger
}

func New(repo guest.Repository, log logger.Logger) *Registry {
	return &Registry{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.WithComponent("GuestRegistry"),
	}
}

// Register creates the guest or updates the name stored for the email.
func (r *Registry) Register(ctx context.Context, name, email string) (*domain.Guest, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if utf8.RuneCountInString(name) < MinNameLength {
		return nil, apperrors.WrapWithCode(apperrors.ErrInvalidInput, "invalid_name",
			fmt.Sprintf("name must be at least %d characters", MinNameLength))
	}
	if err := r.validate.Var(email, "required,email"); err != nil {
		return nil, apperrors.WrapWithCode(apperrors.ErrInvalidInput, "invalid_email", "invalid email address")
	}

	g, err := r.repo.Upsert(ctx, name, email)
	if err != nil {
		r.log.Error("Error registering guest", "email", email, "error", err)
		return nil, fmt.Errorf("register guest: %w", err)
	}

	r.log.Info("Guest registered", "guest_id", g.ID, "name", g.Name)
	return g, nil
}

var Module = fx.Module("guests", fx.Provide(New))
