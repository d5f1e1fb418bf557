package likes

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/wedding-gallery/internal/domain"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
)

const (
	LikedStorageKey     = "userLikedPhotos"
	ThumbnailStorageKey = "videoThumbnails"

	DoubleTapWindow = 300 * time.Millisecond

	AlreadyLikedNotice = "You've already liked this photo!"
	LikeFailedNotice   = "Failed to like photo. Please try again."
)

var ErrAlreadyLiked = errors.New("already liked")

type State int

const (
	Unliked State = iota
	Liking
	Liked
)

func (s State) String() string {
	switch s {
	case Liking:
		return "liking"
	case Liked:
		return "liked"
	default:
		return "unliked"
	}
}

// Liker is the remote like counter.
type Liker interface {
	IncrementLike(ctx context.Context, mediaID string) (int, error)
}

// Notifier shows short notices to the visitor.
type Notifier interface {
	Notify(message string)
}

type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

type Opts struct {
	Liker    Liker
	Storage  Storage
	Notifier Notifier
	Clock    clockwork.Clock
	Logger   logger.Logger

	// OnOpen is called when a single tap resolves into opening the detail view.
	OnOpen func(mediaID string)
}

type pendingTap struct {
	timer clockwork.Timer
}

// Controller tracks one visitor's likes. Each item is liked at most once per
// visitor; the shown count is updated before the server answers and rolled
// back when it fails.
type Controller struct {
	mu sync.Mutex

	liker    Liker
	storage  Storage
	notifier Notifier
	clock    clockwork.Clock
	log      logger.Logger
	onOpen   func(string)

	counts  map[string]int
	overlay map[string]int
	liked   []string
	states  map[string]State
	taps    map[string]*pendingTap
}

func New(opts Opts) *Controller {
	c := &Controller{
		liker:    opts.Liker,
		storage:  opts.Storage,
		notifier: opts.Notifier,
		clock:    opts.Clock,
		log:      opts.Logger,
		onOpen:   opts.OnOpen,
		counts:   make(map[string]int),
		overlay:  make(map[string]int),
		states:   make(map[string]State),
		taps:     make(map[string]*pendingTap),
	}
	if c.storage == nil {
		c.storage = NewMemoryStorage()
	}
	if c.notifier == nil {
		c.notifier = NotifierFunc(func(string) {})
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	c.log = c.log.WithComponent("LikeController")
	if c.onOpen == nil {
		c.onOpen = func(string) {}
	}

	var stored []string
	if _, err := c.storage.Load(LikedStorageKey, &stored); err != nil {
		c.log.Warn("Failed to load liked media, starting empty", "error", err)
	}
	c.liked = uniqueIDs(stored)

	return c
}

// SetMedia records authoritative counts from a listing. Overlays of items that
// are not mid-request are dropped in favour of the listed count.
func (c *Controller) SetMedia(items []domain.Media) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range items {
		c.counts[item.ID] = item.Likes
		if c.states[item.ID] != Liking {
			delete(c.overlay, item.ID)
		}
	}
}

// AttemptLike likes mediaID once. A repeated attempt returns ErrAlreadyLiked
// without contacting the server.
func (c *Controller) AttemptLike(ctx context.Context, mediaID string) (int, error) {
	c.mu.Lock()
	claimed := false
	if !c.hasLikedLocked(mediaID) {
		// Another session of the same visitor may have liked it since we loaded.
		c.updateLikedLocked(func(liked []string) ([]string, bool) {
			claimed = !slices.Contains(liked, mediaID)
			if !claimed {
				return liked, false
			}
			return append(liked, mediaID), true
		})
	}
	if !claimed {
		shown := c.displayCountLocked(mediaID)
		c.mu.Unlock()
		c.notifier.Notify(AlreadyLikedNotice)
		return shown, ErrAlreadyLiked
	}

	prev, hadOverlay := c.overlay[mediaID]
	c.overlay[mediaID] = c.displayCountLocked(mediaID) + 1
	c.states[mediaID] = Liking
	c.mu.Unlock()

	likes, err := c.liker.IncrementLike(ctx, mediaID)

	c.mu.Lock()
	if err != nil {
		if hadOverlay {
			c.overlay[mediaID] = prev
		} else {
			delete(c.overlay, mediaID)
		}
		c.updateLikedLocked(func(liked []string) ([]string, bool) {
			if !slices.Contains(liked, mediaID) {
				return liked, false
			}
			return slices.DeleteFunc(liked, func(id string) bool { return id == mediaID }), true
		})
		c.states[mediaID] = Unliked
		c.mu.Unlock()

		c.log.Error("Error liking media", "media_id", mediaID, "error", err)
		c.notifier.Notify(LikeFailedNotice)
		return 0, fmt.Errorf("like %s: %w", mediaID, err)
	}

	c.overlay[mediaID] = likes
	c.counts[mediaID] = likes
	c.states[mediaID] = Liked
	c.mu.Unlock()

	return likes, nil
}

// HandleTap tells a single tap (open the item) from a double tap (like it).
// Taps on items that were never listed are ignored.
func (c *Controller) HandleTap(ctx context.Context, mediaID string) error {
	c.mu.Lock()
	if _, known := c.counts[mediaID]; !known {
		c.mu.Unlock()
		return nil
	}

	if pending, ok := c.taps[mediaID]; ok {
		pending.timer.Stop()
		delete(c.taps, mediaID)
		liked := c.hasLikedLocked(mediaID)
		c.mu.Unlock()

		if liked {
			return nil
		}
		_, err := c.AttemptLike(ctx, mediaID)
		return err
	}

	tap := &pendingTap{}
	tap.timer = c.clock.AfterFunc(DoubleTapWindow, func() {
		c.mu.Lock()
		current, ok := c.taps[mediaID]
		if !ok || current != tap {
			c.mu.Unlock()
			return
		}
		delete(c.taps, mediaID)
		c.mu.Unlock()

		c.onOpen(mediaID)
	})
	c.taps[mediaID] = tap
	c.mu.Unlock()

	return nil
}

// DisplayCount is the count to show: the optimistic value when one exists.
func (c *Controller) DisplayCount(mediaID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayCountLocked(mediaID)
}

func (c *Controller) HasLiked(mediaID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasLikedLocked(mediaID)
}

func (c *Controller) State(mediaID string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.states[mediaID]; ok {
		return s
	}
	if c.hasLikedLocked(mediaID) {
		return Liked
	}
	return Unliked
}

// LikedIDs returns liked ids in the order they were liked.
func (c *Controller) LikedIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.liked)
}

func (c *Controller) displayCountLocked(mediaID string) int {
	if n, ok := c.overlay[mediaID]; ok {
		return n
	}
	return c.counts[mediaID]
}

func (c *Controller) hasLikedLocked(mediaID string) bool {
	return slices.Contains(c.liked, mediaID)
}

// updateLikedLocked applies change to the stored liked ids under the storage
// lock and adopts the result. change reports whether it modified the list.
// When storage fails the change is applied to the in-memory list instead.
func (c *Controller) updateLikedLocked(change func([]string) ([]string, bool)) {
	var stored []string
	err := c.storage.Update(LikedStorageKey, &stored, func() bool {
		var changed bool
		stored, changed = change(uniqueIDs(stored))
		return changed
	})
	if err == nil {
		c.liked = stored
		return
	}

	c.log.Warn("Failed to update stored liked media, keeping local state", "error", err)
	liked, changed := change(slices.Clone(c.liked))
	c.liked = liked
	if !changed {
		return
	}
	if err := c.storage.Save(LikedStorageKey, c.liked); err != nil {
		c.log.Warn("Failed to persist liked media", "error", err)
	}
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
