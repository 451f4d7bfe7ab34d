// Package assets handles character file loading and caching.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/Faultbox/sffkit/pkg/encoding"
)

// CompressedExt marks a zstd-compressed copy of a file.
const CompressedExt = ".zst"

// ErrNotFound is returned when no root holds the requested file.
var ErrNotFound = errors.New("asset not found")

// Manager reads character files from one or more roots.
// Roots are searched in reverse order (last added = highest priority).
// A file stored only as "<name>.zst" is decompressed transparently.
type Manager struct {
	roots []fs.FS
	cache *Cache
	zstd  *zstd.Decoder
	mu    sync.RWMutex
}

// NewManager creates a new asset manager.
func NewManager() (*Manager, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &Manager{
		cache: NewCache(),
		zstd:  dec,
	}, nil
}

// AddDir adds a directory root.
func (m *Manager) AddDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("opening asset directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("opening asset directory %s: not a directory", dir)
	}
	m.AddFS(os.DirFS(dir))
	return nil
}

// AddFS adds a file system root.
func (m *Manager) AddFS(fsys fs.FS) {
	m.mu.Lock()
	m.roots = append(m.roots, fsys)
	m.mu.Unlock()
}

// Load returns the contents of name, a path as written in a character file.
func (m *Manager) Load(name string) ([]byte, error) {
	key := encoding.NormalizePath(name)
	if data, ok := m.cache.Get(key); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		data, err := m.read(m.roots[i], key)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		m.cache.Set(key, data)
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
}

// Open returns a reader over the contents of name.
func (m *Manager) Open(name string) (io.ReadCloser, error) {
	data, err := m.Load(name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// read tries name as-is, then its compressed copy.
func (m *Manager) read(fsys fs.FS, name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("invalid path %q: %w", name, fs.ErrNotExist)
	}
	data, err := fs.ReadFile(fsys, name)
	if err == nil {
		if strings.HasSuffix(name, CompressedExt) {
			return m.decompress(data)
		}
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || strings.HasSuffix(name, CompressedExt) {
		return nil, err
	}

	data, err = fs.ReadFile(fsys, name+CompressedExt)
	if err != nil {
		return nil, err
	}
	return m.decompress(data)
}

func (m *Manager) decompress(data []byte) ([]byte, error) {
	out, err := m.zstd.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}
	return out, nil
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close releases the decoder and drops cached files.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.roots = nil
	m.cache.Clear()
	m.zstd.Close()
}

// Cache is a simple in-memory cache for loaded files.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
