package likes

import (
	"context"
	"sync"

	"github.com/orgball2608/wedding-gallery/internal/domain"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// PlaceholderPoster is shown for videos with nothing better to display.
const PlaceholderPoster = "/placeholder.svg"

const thumbnailConcurrency = 3

// FrameExtractor turns a video URL into an image data URL.
type FrameExtractor interface {
	Extract(ctx context.Context, videoURL string) (string, error)
}

// Thumbnailer caches one still frame per video, keyed by media id.
type Thumbnailer struct {
	extractor FrameExtractor
	storage   Storage
	log       logger.Logger

	mu    sync.RWMutex
	cache map[string]string
}

func NewThumbnailer(extractor FrameExtractor, storage Storage, log logger.Logger) *Thumbnailer {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	if log == nil {
		log = logger.NewNop()
	}

	t := &Thumbnailer{
		extractor: extractor,
		storage:   storage,
		log:       log.WithComponent("Thumbnailer"),
		cache:     make(map[string]string),
	}

	if _, err := storage.Load(ThumbnailStorageKey, &t.cache); err != nil {
		t.log.Warn("Failed to load cached thumbnails", "error", err)
	}
	if t.cache == nil {
		t.cache = make(map[string]string)
	}

	return t
}

// Generate extracts thumbnails for videos that have none cached yet and
// returns how many were added. A failing video is logged and skipped.
func (t *Thumbnailer) Generate(ctx context.Context, items []domain.Media) int {
	var pending []domain.Media
	t.mu.RLock()
	for _, item := range items {
		if !item.IsVideo() {
			continue
		}
		if _, ok := t.cache[item.ID]; ok {
			continue
		}
		pending = append(pending, item)
	}
	t.mu.RUnlock()

	if len(pending) == 0 {
		return 0
	}

	var (
		g     errgroup.Group
		mu    sync.Mutex
		added = make(map[string]string)
	)
	g.SetLimit(thumbnailConcurrency)

	for _, item := range pending {
		item := item
		g.Go(func() error {
			dataURL, err := t.extractor.Extract(ctx, item.URL)
			if err != nil {
				t.log.Warn("Error generating thumbnail", "media_id", item.ID, "error", err)
				return nil
			}
			mu.Lock()
			added[item.ID] = dataURL
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(added) == 0 {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Merge with what other sessions stored so their thumbnails survive.
	stored := make(map[string]string)
	err := t.storage.Update(ThumbnailStorageKey, &stored, func() bool {
		if stored == nil {
			stored = make(map[string]string)
		}
		for id, dataURL := range added {
			stored[id] = dataURL
		}
		return true
	})
	if err != nil {
		t.log.Warn("Failed to persist thumbnails", "error", err)
		for id, dataURL := range added {
			t.cache[id] = dataURL
		}
		return len(added)
	}
	for id, dataURL := range stored {
		t.cache[id] = dataURL
	}

	return len(added)
}

func (t *Thumbnailer) Cached(mediaID string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	dataURL, ok := t.cache[mediaID]
	return dataURL, ok
}

// Poster picks the image shown before a video plays.
func (t *Thumbnailer) Poster(item domain.Media) string {
	if dataURL, ok := t.Cached(item.ID); ok {
		return dataURL
	}
	if item.Thumbnail != "" {
		return item.Thumbnail
	}
	if item.URL != "" {
		return item.URL
	}
	return PlaceholderPoster
}
