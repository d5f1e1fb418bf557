package board_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/orgball2608/wedding-gallery/internal/board"
	"github.com/orgball2608/wedding-gallery/internal/domain"
	"github.com/orgball2608/wedding-gallery/internal/live"
	mock_message "github.com/orgball2608/wedding-gallery/internal/repositories/message/mocks"
	apperrors "github.com/orgball2608/wedding-gallery/pkg/errors"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
	"go.uber.org/mock/gomock"
)

type publisher struct{ events []live.Event }

func (p *publisher) Publish(e live.Event) { p.events = append(p.events, e) }

type notifier struct{ posted []domain.Message }

func (n *notifier) MediaUploaded(context.Context, domain.Media) {}

func (n *notifier) CleanupFinished(context.Context, int64) {}

func (n *notifier) MessagePosted(_ context.Context, m domain.Message) { n.posted = append(n.posted, m) }

func newBoard(t *testing.T) (*board.Board, *mock_message.MockRepository, *publisher, *notifier) {
	t.Helper()
	repo := mock_message.NewMockRepository(gomock.NewController(t))
	pub := &publisher{}
	n := &notifier{}
	b := board.New(board.Opts{Repo: repo, Live: pub, Notifier: n, Logger: logger.NewNop()})
	return b, repo, pub, n
}

func TestPost(t *testing.T) {
	b, repo, pub, n := newBoard(t)

	saved := &domain.Message{ID: "msg-1", Name: "Linh", Content: "Congratulations!", CreatedAt: time.Now()}
	repo.EXPECT().Create(gomock.Any(), "Linh", "Congratulations!").Return(saved, nil)

	got, err := b.Post(context.Background(), "  Linh ", " Congratulations! ")
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if got.ID != "msg-1" {
		t.Fatalf("Post() = %+v", got)
	}
	if len(pub.events) != 1 || pub.events[0].Type != live.EventMessagePosted || pub.events[0].Message.ID != "msg-1" {
		t.Fatalf("events = %+v", pub.events)
	}
	if len(n.posted) != 1 {
		t.Fatalf("notifications = %d, want 1", len(n.posted))
	}
}

func TestPostValidation(t *testing.T) {
	b, repo, _, _ := newBoard(t)
	repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	cases := []struct {
		name, content string
	}{
		{"A", "hello"},
		{"Anna", "   "},
		{"Anna", strings.Repeat("x", board.MaxContentLength+1)},
	}
	for _, tc := range cases {
		if _, err := b.Post(context.Background(), tc.name, tc.content); !apperrors.IsInvalidInput(err) {
			t.Errorf("Post(%q, %d chars) error = %v, want invalid input", tc.name, len(tc.content), err)
		}
	}
}

func TestPostAcceptsMaxLengthInRunes(t *testing.T) {
	b, repo, _, _ := newBoard(t)

	content := strings.Repeat("é", board.MaxContentLength)
	repo.EXPECT().Create(gomock.Any(), "Minh", content).Return(&domain.Message{ID: "m"}, nil)

	if _, err := b.Post(context.Background(), "Minh", content); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
}

func TestListFallsBackToEmpty(t *testing.T) {
	b, repo, _, _ := newBoard(t)
	repo.EXPECT().List(gomock.Any()).Return(nil, errors.New("db down"))

	got := b.List(context.Background())
	if got == nil || len(got) != 0 {
		t.Fatalf("List() = %#v, want empty slice", got)
	}
}
