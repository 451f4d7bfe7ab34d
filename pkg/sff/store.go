package sff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxPixels is the largest sprite a Store decodes unless
// WithMaxPixels says otherwise.
const DefaultMaxPixels = 2048 * 2048

// Store decodes sprites of a loaded container on demand. It is safe for
// concurrent use.
type Store struct {
	c         *Container
	palettes  []Palette
	log       *zap.Logger
	workers   int
	cacheOn   bool
	maxPixels int

	mu     sync.RWMutex
	cache  map[cacheKey]*Image
	flight singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheKey struct {
	index   int
	palette int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and decode diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithPalettes sets the external palettes V1 sprites select from.
func WithPalettes(p []Palette) Option {
	return func(s *Store) { s.palettes = p }
}

// WithWorkers bounds the number of concurrent decodes in LoadAll.
func WithWorkers(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithCache enables or disables caching of decoded images (on by default).
func WithCache(on bool) Option {
	return func(s *Store) { s.cacheOn = on }
}

// WithMaxPixels caps the declared width*height of a sprite the store will
// decode. Values above MaxPixels are clamped to it.
func WithMaxPixels(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxPixels = min(n, MaxPixels)
		}
	}
}

// NewStore wraps a parsed container.
func NewStore(c *Container, opts ...Option) *Store {
	s := &Store{
		c:         c,
		log:       zap.NewNop(),
		workers:   runtime.GOMAXPROCS(0),
		cacheOn:   true,
		maxPixels: DefaultMaxPixels,
		cache:     make(map[cacheKey]*Image),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load reads and parses a container from r. palettes are the external V1
// palettes, selected by index in Get; they are ignored for V2 containers.
func Load(r io.Reader, palettes []Palette, opts ...Option) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, truncated("reading container", err)
	}
	s := NewStore(nil, append([]Option{WithPalettes(palettes)}, opts...)...)
	c, err := parse(data, s.log)
	if err != nil {
		return nil, err
	}
	s.c = c
	s.log.Info("loaded SFF container",
		zap.Stringer("version", c.Version),
		zap.Int("sprites", len(c.Sprites)),
		zap.Int("palettes", s.Palettes()))
	return s, nil
}

// Container returns the parsed container backing the store.
func (s *Store) Container() *Container { return s.c }

// Len returns the number of sprite records.
func (s *Store) Len() int { return len(s.c.Sprites) }

// Palettes returns how many palettes a caller may select from.
func (s *Store) Palettes() int {
	if s.c.V2 != nil {
		return len(s.c.V2.Palettes)
	}
	return len(s.palettes)
}

// Palette returns palette i as a caller would select it: a V2 palette table
// entry (following its link), or the i-th external V1 palette.
func (s *Store) Palette(i int) (*Palette, error) {
	if s.c.V2 != nil {
		return s.c.v2Palette(i)
	}
	if i < 0 || i >= len(s.palettes) {
		return nil, fmt.Errorf("%w: %d", ErrPaletteNotFound, i)
	}
	return &s.palettes[i], nil
}

// Keys returns every sprite key, sorted by group then image.
func (s *Store) Keys() []Key {
	keys := make([]Key, 0, len(s.c.index))
	for k := range s.c.index {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Group != keys[j].Group {
			return keys[i].Group < keys[j].Group
		}
		return keys[i].Image < keys[j].Image
	})
	return keys
}

// Sprite returns the record stored under (group, image).
func (s *Store) Sprite(group, image int) (*Sprite, error) {
	i, err := s.lookup(group, image)
	if err != nil {
		return nil, err
	}
	return &s.c.Sprites[i], nil
}

// CacheStats returns cache hit and miss counts.
func (s *Store) CacheStats() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}

// Get decodes sprite (group, image) with the given palette selector.
func (s *Store) Get(group, image, palette int) (*Image, error) {
	i, err := s.lookup(group, image)
	if err != nil {
		return nil, err
	}
	if !s.cacheOn {
		return s.decode(i, palette)
	}

	key := cacheKey{index: i, palette: palette}
	s.mu.RLock()
	img, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		s.hits.Add(1)
		return img, nil
	}
	s.misses.Add(1)

	v, err, _ := s.flight.Do(strconv.Itoa(i)+"/"+strconv.Itoa(palette), func() (any, error) {
		s.mu.RLock()
		cached, ok := s.cache[key]
		s.mu.RUnlock()
		if ok {
			return cached, nil
		}
		img, err := s.decode(i, palette)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[key] = img
		s.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Image), nil
}

// LoadAll decodes every sprite with one palette selector using a bounded
// worker pool. Sprites that cannot be decoded, or whose link or own palette
// index is broken, are skipped. An unusable selector, cancellation or any
// other failure aborts the whole call.
func (s *Store) LoadAll(ctx context.Context, palette int) (map[Key]*Image, error) {
	if err := s.checkSelector(palette); err != nil {
		return nil, err
	}
	keys := s.Keys()
	out := make(map[Key]*Image, len(keys))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, k := range keys {
		k := k
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := s.Get(int(k.Group), int(k.Image), palette)
			if skippable(err) {
				s.log.Warn("skipping sprite", zap.Stringer("key", k), zap.Error(err))
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			out[k] = img
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// checkSelector fails when palette cannot be resolved as a caller selector.
// V1 containers without external palettes accept any selector.
func (s *Store) checkSelector(palette int) error {
	if s.c.V1 != nil && len(s.palettes) == 0 {
		return nil
	}
	if _, err := s.Palette(palette); err != nil {
		return fmt.Errorf("palette selector %d: %w", palette, err)
	}
	return nil
}

// skippable reports whether LoadAll drops a sprite failing with err instead
// of aborting. Once the selector is known to be valid, a missing palette can
// only come from the sprite's own palette index.
func skippable(err error) bool {
	var de *DecodeError
	if errors.As(err, &de) {
		return true
	}
	var le *LookupError
	if !errors.As(err, &le) {
		return false
	}
	return errors.Is(err, ErrBrokenLink) || errors.Is(err, ErrLinkCycle) || errors.Is(err, ErrPaletteNotFound)
}

// checkSize rejects sprites declaring more pixels than the store allows, and
// sprites declaring a size without carrying any pixel data. PCX sizes come
// from the header in data, as Decode reads them.
func (s *Store) checkSize(src *Sprite, data []byte) error {
	w, h := int(src.Width), int(src.Height)
	if src.Format == FormatPCX {
		if pw, ph, _, ok := pcxHeader(data); ok {
			w, h = pw, ph
		}
	}
	switch {
	case w*h > s.maxPixels:
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImageSize, w, h, s.maxPixels)
	case w*h > 0 && src.DataLen() == 0 && src.Format != FormatInvalid:
		return fmt.Errorf("%w: %dx%d with no pixel data", ErrInvalidImageSize, w, h)
	}
	return nil
}

func (s *Store) lookup(group, image int) (int, error) {
	if group < 0 || group > math.MaxUint16 || image < 0 || image > math.MaxUint16 {
		return 0, &LookupError{Group: group, Image: image, Err: ErrNotFound}
	}
	i, ok := s.c.Lookup(Key{Group: uint16(group), Image: uint16(image)})
	if !ok {
		return 0, &LookupError{Group: group, Image: image, Err: ErrNotFound}
	}
	return i, nil
}

// decode resolves links and the palette for sprite i and runs its codec.
func (s *Store) decode(i, palette int) (*Image, error) {
	req := &s.c.Sprites[i]
	group, image := int(req.Group), int(req.Image)

	owner, err := s.c.resolveLink(i)
	if err != nil {
		return nil, &LookupError{Group: group, Image: image, Err: err}
	}
	src := &s.c.Sprites[owner]
	data := src.Data
	if s.c.V2 != nil {
		data = s.c.V2.spriteData(src)
	}
	if err := s.checkSize(src, data); err != nil {
		return nil, &DecodeError{Group: group, Image: image, Format: src.Format, Err: err}
	}
	pal, err := s.c.resolvePalette(i, owner, palette, s.palettes)
	if err != nil {
		return nil, &LookupError{Group: group, Image: image, Err: fmt.Errorf("%w: selector %d", err, palette)}
	}

	img, err := Decode(src.Format, data, pal, int(src.Width), int(src.Height))
	if err != nil {
		return nil, &DecodeError{Group: group, Image: image, Format: src.Format, Err: err}
	}
	img.AxisX, img.AxisY = req.AxisX, req.AxisY

	if owner != i {
		s.log.Debug("followed sprite link",
			zap.Int("group", group), zap.Int("image", image),
			zap.Stringer("owner", src.Key()))
	}
	if s.c.V2 != nil && uint64(len(data)) < uint64(src.Length) {
		s.log.Debug("sprite data truncated, decoded partially",
			zap.Int("group", group), zap.Int("image", image),
			zap.Int("have", len(data)), zap.Uint32("declared", src.Length))
	}
	return img, nil
}
