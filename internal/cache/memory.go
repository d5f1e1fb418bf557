package cache

import (
	"context"
	"sync"
	"time"

	"github.com/orgball2608/wedding-gallery/internal/domain"
)

type memoryEntry struct {
	items   []domain.Media
	expires time.Time
}

// Memory is the in-process Listing used when no redis is configured.
type Memory struct {
	mu      sync.Mutex
	gen     int64
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ Listing = (*Memory)(nil)

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) Generation(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen, nil
}

func (m *Memory) Get(_ context.Context, gen int64, sort domain.SortOption, filter domain.TypeFilter) ([]domain.Media, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := listingKey(gen, sort, filter)
	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.now().After(entry.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}

	return append([]domain.Media(nil), entry.items...), true, nil
}

func (m *Memory) Set(_ context.Context, gen int64, sort domain.SortOption, filter domain.TypeFilter, items []domain.Media) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return nil
	}

	m.entries[listingKey(gen, sort, filter)] = memoryEntry{
		items:   append([]domain.Media(nil), items...),
		expires: m.now().Add(m.ttl),
	}
	return nil
}

func (m *Memory) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	clear(m.entries)
	return nil
}
