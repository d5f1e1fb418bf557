package likes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/wedding-gallery/internal/domain"
	apperrors "github.com/orgball2608/wedding-gallery/pkg/errors"
)

// fakeLiker counts server-side likes and can hold or fail requests.
type fakeLiker struct {
	mu      sync.Mutex
	counts  map[string]int
	calls   int
	err     error
	release chan struct{}
	entered chan struct{}
}

func newFakeLiker(counts map[string]int) *fakeLiker {
	return &fakeLiker{counts: counts}
}

func (f *fakeLiker) IncrementLike(ctx context.Context, id string) (int, error) {
	f.mu.Lock()
	f.calls++
	release, entered := f.release, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	n, ok := f.counts[id]
	if !ok {
		return 0, apperrors.ErrNotFound
	}
	f.counts[id] = n + 1
	return n + 1, nil
}

func (f *fakeLiker) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type notices struct {
	mu   sync.Mutex
	msgs []string
}

func (n *notices) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *notices) All() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

func TestLikeEndToEnd(t *testing.T) {
	storage := NewMemoryStorage()
	liker := newFakeLiker(map[string]int{"m1": 3})
	n := &notices{}
	c := New(Opts{Liker: liker, Storage: storage, Notifier: n})

	c.SetMedia([]domain.Media{{ID: "m1", Likes: 3}})
	if c.DisplayCount("m1") != 3 || c.State("m1") != Unliked {
		t.Fatalf("initial count %d state %s", c.DisplayCount("m1"), c.State("m1"))
	}

	likes, err := c.AttemptLike(context.Background(), "m1")
	if err != nil || likes != 4 {
		t.Fatalf("AttemptLike = %d, %v; want 4, nil", likes, err)
	}
	if c.DisplayCount("m1") != 4 || !c.HasLiked("m1") || c.State("m1") != Liked {
		t.Fatalf("after like: count %d liked %v state %s", c.DisplayCount("m1"), c.HasLiked("m1"), c.State("m1"))
	}

	var stored []string
	if ok, err := storage.Load(LikedStorageKey, &stored); !ok || err != nil || len(stored) != 1 || stored[0] != "m1" {
		t.Fatalf("stored liked ids = %v (ok %v, err %v)", stored, ok, err)
	}

	likes, err = c.AttemptLike(context.Background(), "m1")
	if !errors.Is(err, ErrAlreadyLiked) || likes != 4 {
		t.Fatalf("second AttemptLike = %d, %v; want 4, ErrAlreadyLiked", likes, err)
	}
	if liker.Calls() != 1 {
		t.Fatalf("server calls = %d, want 1", liker.Calls())
	}
	if got := n.All(); len(got) != 1 || got[0] != AlreadyLikedNotice {
		t.Fatalf("notices = %v", got)
	}
}

func TestLikedIDsSurviveRestart(t *testing.T) {
	storage := NewMemoryStorage()
	if err := storage.Save(LikedStorageKey, []string{"a", "b", "a"}); err != nil {
		t.Fatal(err)
	}

	liker := newFakeLiker(map[string]int{"a": 1})
	c := New(Opts{Liker: liker, Storage: storage})
	c.SetMedia([]domain.Media{{ID: "a", Likes: 1}})

	if _, err := c.AttemptLike(context.Background(), "a"); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("AttemptLike() error = %v, want ErrAlreadyLiked", err)
	}
	if liker.Calls() != 0 {
		t.Fatal("stored like must not reach the server")
	}
	if got := c.LikedIDs(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("LikedIDs() = %v", got)
	}
	if c.State("b") != Liked {
		t.Fatalf("State(b) = %s, want liked", c.State("b"))
	}
}

func TestLikeRollbackRestoresPreviousState(t *testing.T) {
	storage := NewMemoryStorage()
	liker := newFakeLiker(map[string]int{"m1": 7})
	liker.err = errors.New("network down")
	n := &notices{}
	c := New(Opts{Liker: liker, Storage: storage, Notifier: n})
	c.SetMedia([]domain.Media{{ID: "m1", Likes: 7}})

	if _, err := c.AttemptLike(context.Background(), "m1"); err == nil {
		t.Fatal("AttemptLike() succeeded with failing server")
	}

	if c.DisplayCount("m1") != 7 || c.HasLiked("m1") || c.State("m1") != Unliked {
		t.Fatalf("after rollback: count %d liked %v state %s", c.DisplayCount("m1"), c.HasLiked("m1"), c.State("m1"))
	}
	var stored []string
	if _, err := storage.Load(LikedStorageKey, &stored); err != nil || len(stored) != 0 {
		t.Fatalf("stored after rollback = %v, %v", stored, err)
	}
	if got := n.All(); len(got) != 1 || got[0] != LikeFailedNotice {
		t.Fatalf("notices = %v", got)
	}

	liker.mu.Lock()
	liker.err = nil
	liker.mu.Unlock()
	if likes, err := c.AttemptLike(context.Background(), "m1"); err != nil || likes != 8 {
		t.Fatalf("retry AttemptLike = %d, %v; want 8, nil", likes, err)
	}
}

func TestLikeUnknownMediaRollsBack(t *testing.T) {
	c := New(Opts{Liker: newFakeLiker(map[string]int{})})

	_, err := c.AttemptLike(context.Background(), "ghost")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("AttemptLike() error = %v, want not found", err)
	}
	if c.HasLiked("ghost") || c.DisplayCount("ghost") != 0 {
		t.Fatal("failed like left state behind")
	}
}

func TestOptimisticCountWhileRequestInFlight(t *testing.T) {
	liker := newFakeLiker(map[string]int{"m1": 3})
	liker.release = make(chan struct{})
	liker.entered = make(chan struct{}, 1)
	c := New(Opts{Liker: liker})
	c.SetMedia([]domain.Media{{ID: "m1", Likes: 3}})

	done := make(chan error, 1)
	go func() {
		_, err := c.AttemptLike(context.Background(), "m1")
		done <- err
	}()

	<-liker.entered
	if c.DisplayCount("m1") != 4 || c.State("m1") != Liking {
		t.Fatalf("in flight: count %d state %s", c.DisplayCount("m1"), c.State("m1"))
	}
	if _, err := c.AttemptLike(context.Background(), "m1"); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("concurrent AttemptLike error = %v, want ErrAlreadyLiked", err)
	}

	// Another visitor liked meanwhile; the listing must not clobber the overlay.
	c.SetMedia([]domain.Media{{ID: "m1", Likes: 5}})
	if c.DisplayCount("m1") != 4 {
		t.Fatalf("overlay replaced while liking: %d", c.DisplayCount("m1"))
	}

	liker.mu.Lock()
	liker.counts["m1"] = 5
	liker.mu.Unlock()
	close(liker.release)

	if err := <-done; err != nil {
		t.Fatalf("AttemptLike() error = %v", err)
	}
	if c.DisplayCount("m1") != 6 {
		t.Fatalf("count after reconcile = %d, want server value 6", c.DisplayCount("m1"))
	}
	if liker.Calls() != 1 {
		t.Fatalf("server calls = %d, want 1", liker.Calls())
	}
}

func TestDoubleTapLikes(t *testing.T) {
	clock := clockwork.NewFakeClock()
	opened := make(chan string, 4)
	liker := newFakeLiker(map[string]int{"m1": 0})
	c := New(Opts{Liker: liker, Clock: clock, OnOpen: func(id string) { opened <- id }})
	c.SetMedia([]domain.Media{{ID: "m1"}})

	ctx := context.Background()
	if err := c.HandleTap(ctx, "m1"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(DoubleTapWindow - 50*time.Millisecond)
	if err := c.HandleTap(ctx, "m1"); err != nil {
		t.Fatal(err)
	}

	if !c.HasLiked("m1") || liker.Calls() != 1 {
		t.Fatalf("double tap: liked %v calls %d", c.HasLiked("m1"), liker.Calls())
	}

	clock.Advance(time.Second)
	select {
	case id := <-opened:
		t.Fatalf("detail view opened for %s after double tap", id)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSingleTapOpensAfterWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	opened := make(chan string, 4)
	liker := newFakeLiker(map[string]int{"m1": 0})
	c := New(Opts{Liker: liker, Clock: clock, OnOpen: func(id string) { opened <- id }})
	c.SetMedia([]domain.Media{{ID: "m1"}})

	if err := c.HandleTap(context.Background(), "m1"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(DoubleTapWindow)

	select {
	case id := <-opened:
		if id != "m1" {
			t.Fatalf("opened %s, want m1", id)
		}
	case <-time.After(time.Second):
		t.Fatal("single tap never opened the detail view")
	}
	if liker.Calls() != 0 || c.HasLiked("m1") {
		t.Fatal("single tap must not like")
	}
}

func TestDoubleTapOnLikedItemIsSilent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	storage := NewMemoryStorage()
	_ = storage.Save(LikedStorageKey, []string{"m1"})
	liker := newFakeLiker(map[string]int{"m1": 2})
	n := &notices{}
	c := New(Opts{Liker: liker, Storage: storage, Notifier: n, Clock: clock})
	c.SetMedia([]domain.Media{{ID: "m1", Likes: 2}})

	ctx := context.Background()
	_ = c.HandleTap(ctx, "m1")
	if err := c.HandleTap(ctx, "m1"); err != nil {
		t.Fatalf("HandleTap() error = %v", err)
	}
	if liker.Calls() != 0 || len(n.All()) != 0 {
		t.Fatalf("calls %d notices %v", liker.Calls(), n.All())
	}
}

func TestTapOnUnknownMediaIgnored(t *testing.T) {
	clock := clockwork.NewFakeClock()
	opened := make(chan string, 1)
	c := New(Opts{Liker: newFakeLiker(nil), Clock: clock, OnOpen: func(id string) { opened <- id }})

	_ = c.HandleTap(context.Background(), "ghost")
	_ = c.HandleTap(context.Background(), "ghost")
	clock.Advance(time.Second)

	select {
	case id := <-opened:
		t.Fatalf("opened unknown media %s", id)
	case <-time.After(50 * time.Millisecond):
	}
}
