package gallery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/orgball2608/wedding-gallery/internal/cache"
	"github.com/orgball2608/wedding-gallery/internal/domain"
	"github.com/orgball2608/wedding-gallery/internal/live"
	"github.com/orgball2608/wedding-gallery/internal/notify"
	"github.com/orgball2608/wedding-gallery/internal/repositories/media"
	"github.com/orgball2608/wedding-gallery/pkg/config"
	apperrors "github.com/orgball2608/wedding-gallery/pkg/errors"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned by IncrementLike for unknown media.
var ErrNotFound = media.ErrNotFound

const defaultProbeConcurrency = 4

type Opts struct {
	fx.In

	Repo     media.Repository
	Cache    cache.Listing
	Live     live.Publisher
	Notifier notify.Notifier
	Prober   Prober
	Logger   logger.Logger
	Config   *config.Config
}

// Store owns the persisted media: listing, likes, uploads and stale cleanup.
type Store struct {
	repo             media.Repository
	cache            cache.Listing
	live             live.Publisher
	notifier         notify.Notifier
	prober           Prober
	log              logger.Logger
	probeConcurrency int
}

func New(opts Opts) *Store {
	concurrency := defaultProbeConcurrency
	if opts.Config != nil && opts.Config.Gallery.ProbeConcurrency > 0 {
		concurrency = opts.Config.Gallery.ProbeConcurrency
	}
	if concurrency <= 0 {
		concurrency = defaultProbeConcurrency
	}

	return &Store{
		repo:             opts.Repo,
		cache:            opts.Cache,
		live:             opts.Live,
		notifier:         opts.Notifier,
		prober:           opts.Prober,
		log:              opts.Logger.WithComponent("GalleryStore"),
		probeConcurrency: concurrency,
	}
}

// List never fails: when the database is unavailable the gallery renders empty.
func (s *Store) List(ctx context.Context, sortBy domain.SortOption, filter domain.TypeFilter) []domain.Media {
	gen, err := s.cache.Generation(ctx)
	cacheUsable := err == nil
	if err != nil {
		s.log.Warn("Listing cache unavailable", "error", err)
	}

	if cacheUsable {
		items, ok, err := s.cache.Get(ctx, gen, sortBy, filter)
		if err != nil {
			s.log.Warn("Failed to read listing cache", "error", err)
		} else if ok {
			return items
		}
	}

	items, err := s.repo.List(ctx, sortBy, filter)
	if err != nil {
		s.log.Error("Error fetching media", "sort", sortBy, "type", filter, "error", err)
		return []domain.Media{}
	}

	if cacheUsable {
		if err := s.cache.Set(ctx, gen, sortBy, filter, items); err != nil {
			s.log.Warn("Failed to write listing cache", "error", err)
		}
	}

	return items
}

// Get returns a single media item.
func (s *Store) Get(ctx context.Context, mediaID string) (*domain.Media, error) {
	item, err := s.repo.GetByID(ctx, strings.TrimSpace(mediaID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get media %s: %w", mediaID, err)
	}
	return item, nil
}

// IncrementLike adds one like and returns the authoritative count.
func (s *Store) IncrementLike(ctx context.Context, mediaID string) (int, error) {
	mediaID = strings.TrimSpace(mediaID)
	if mediaID == "" {
		return 0, ErrNotFound
	}

	likes, err := s.repo.IncrementLike(ctx, mediaID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, err
		}
		s.log.Error("Error liking media", "media_id", mediaID, "error", err)
		return 0, fmt.Errorf("like media %s: %w", mediaID, err)
	}

	s.invalidate(ctx)
	s.live.Publish(live.Event{Type: live.EventMediaLiked, MediaID: mediaID, Likes: likes})

	return likes, nil
}

// RecordUpload persists a file reported by the upload provider.
func (s *Store) RecordUpload(ctx context.Context, file domain.UploadedFile) (*domain.Media, error) {
	url := strings.TrimSpace(file.URL)
	if url == "" {
		return nil, apperrors.WrapWithCode(apperrors.ErrInvalidInput, "missing_url", "uploaded file has no url")
	}

	kind, ok := domain.KindFromMIME(file.MIMEType)
	if !ok {
		return nil, apperrors.WrapWithCode(apperrors.ErrInvalidInput, "unsupported_type",
			fmt.Sprintf("unsupported file type %q, only images and videos can be shared", file.MIMEType))
	}

	name := strings.TrimSpace(file.Name)
	if name == "" {
		name = domain.UnknownUploader
	}

	created, err := s.repo.Create(ctx, domain.Media{
		URL:       url,
		Name:      name,
		Kind:      kind,
		FileType:  file.MIMEType,
		Thumbnail: file.Thumbnail,
		Size:      file.Size,
		Duration:  file.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("record upload: %w", err)
	}

	s.log.Info("Saved upload", "media_id", created.ID, "type", created.Kind, "name", created.Name)

	s.invalidate(ctx)
	s.live.Publish(live.Event{Type: live.EventMediaInvalidated})
	s.notifier.MediaUploaded(ctx, *created)

	return created, nil
}

// CleanupStale deletes media whose backing file no longer answers a probe.
// Probe failures count as unreachable. It never returns an error.
func (s *Store) CleanupStale(ctx context.Context) int64 {
	refs, err := s.repo.ListRefs(ctx)
	if err != nil {
		s.log.Error("Error cleaning up media", "error", err)
		return 0
	}

	stale := s.findStale(ctx, refs)

	// A cancelled run would see every probe fail; deleting then would wipe the gallery.
	if err := ctx.Err(); err != nil {
		s.log.Warn("Cleanup interrupted, nothing deleted", "error", err)
		return 0
	}

	if len(stale) == 0 {
		s.log.Info("Cleanup found no stale media", "checked", len(refs))
		return 0
	}

	removed, err := s.repo.DeleteByIDs(ctx, stale)
	if err != nil {
		s.log.Error("Error deleting stale media", "count", len(stale), "error", err)
		return 0
	}

	s.log.Info("Cleaned up stale media", "checked", len(refs), "removed", removed)

	s.invalidate(ctx)
	s.live.Publish(live.Event{Type: live.EventMediaInvalidated})
	s.notifier.CleanupFinished(ctx, removed)

	return removed
}

func (s *Store) findStale(ctx context.Context, refs []domain.MediaRef) []string {
	var (
		mu    sync.Mutex
		stale []string
		g     errgroup.Group
	)
	g.SetLimit(s.probeConcurrency)

	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			if s.prober.Reachable(ctx, ref.URL) {
				return nil
			}
			s.log.Info("Found invalid media URL", "media_id", ref.ID, "type", ref.Kind, "url", ref.URL)
			mu.Lock()
			stale = append(stale, ref.ID)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(stale)
	return stale
}

func (s *Store) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Error("Failed to invalidate listing cache", "error", err)
	}
}
