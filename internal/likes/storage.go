package likes

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// Storage persists small JSON values for a visitor between sessions.
// Load reports false when nothing is stored under key. Update loads key into v,
// calls fn and saves v when fn returns true, all without another writer
// interleaving.
type Storage interface {
	Load(key string, v any) (bool, error)
	Save(key string, v any) error
	Update(key string, v any, fn func() bool) error
}

type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(key string, v any) (bool, error) {
	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (m *MemoryStorage) Save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Update(key string, v any, fn func() bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if raw, ok := m.data[key]; ok {
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
	}
	if !fn() {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	m.data[key] = raw
	return nil
}

// FileStorage keeps one JSON file per key in dir. A lock file per key lets
// several processes for the same visitor share the directory.
type FileStorage struct {
	dir string
}

var _ Storage = (*FileStorage)(nil)

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStorage) Load(key string, v any) (bool, error) {
	lock := flock.New(f.path(key) + ".lock")
	if err := lock.RLock(); err != nil {
		return false, fmt.Errorf("lock %s: %w", key, err)
	}
	defer lock.Unlock()

	return f.read(key, v)
}

func (f *FileStorage) Save(key string, v any) error {
	lock := flock.New(f.path(key) + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	defer lock.Unlock()

	return f.write(key, v)
}

// Update holds the exclusive lock from read to write, so concurrent updates
// from other processes are never lost.
func (f *FileStorage) Update(key string, v any, fn func() bool) error {
	lock := flock.New(f.path(key) + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	defer lock.Unlock()

	if _, err := f.read(key, v); err != nil {
		return err
	}
	if !fn() {
		return nil
	}
	return f.write(key, v)
}

func (f *FileStorage) read(key string, v any) (bool, error) {
	raw, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (f *FileStorage) write(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}
