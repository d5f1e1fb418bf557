package guests_test

import (
	"context"
	"errors"
	"testing"

	"github.com/orgball2608/wedding-gallery/internal/domain"
	"github.com/orgball2608/wedding-gallery/internal/guests"
	mock_guest "github.com/orgball2608/wedding-gallery/internal/repositories/guest/mocks"
	apperrors "github.com/orgball2608/wedding-gallery/pkg/errors"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
	"go.uber.org/mock/gomock"
)

func TestRegisterNormalisesEmail(t *testing.T) {
	repo := mock_guest.NewMockRepository(gomock.NewController(t))
	r := guests.New(repo, logger.NewNop())

	repo.EXPECT().Upsert(gomock.Any(), "Hoa", "hoa@example.com").
		Return(&domain.Guest{ID: "g1", Name: "Hoa", Email: "hoa@example.com"}, nil)

	g, err := r.Register(context.Background(), " Hoa ", " Hoa@Example.COM ")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if g.ID != "g1" {
		t.Fatalf("Register() = %+v", g)
	}
}

func TestRegisterValidation(t *testing.T) {
	repo := mock_guest.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	r := guests.New(repo, logger.NewNop())

	cases := []struct{ name, email string }{
		{"H", "h@example.com"},
		{"Hoa", "not-an-email"},
		{"Hoa", "Hoa <hoa@example.com>"},
		{"Hoa", "hoa@@example.com"},
		{"Hoa", ""},
	}
	for _, tc := range cases {
		if _, err := r.Register(context.Background(), tc.name, tc.email); !apperrors.IsInvalidInput(err) {
			t.Errorf("Register(%q, %q) error = %v, want invalid input", tc.name, tc.email, err)
		}
	}
}

func TestRegisterWrapsRepositoryError(t *testing.T) {
	repo := mock_guest.NewMockRepository(gomock.NewController(t))
	r := guests.New(repo, logger.NewNop())

	boom := errors.New("db down")
	repo.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, boom)

	if _, err := r.Register(context.Background(), "Hoa", "hoa@example.com"); !errors.Is(err, boom) {
		t.Fatalf("Register() error = %v, want wrapped %v", err, boom)
	}
}
