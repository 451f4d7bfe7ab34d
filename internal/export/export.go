// Package export writes decoded sprites and palettes to disk.
package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/Faultbox/sffkit/pkg/sff"
)

// Image formats.
const (
	FormatPNG = "png"
	FormatBMP = "bmp"
)

// Options configures an Exporter.
type Options struct {
	Format         string // png or bmp
	Scale          int    // nearest-neighbour upscale factor; 0 or 1 keeps size
	SkipDuplicates bool   // write byte-identical sprites once
}

// Exporter writes sprites below a directory, one subdirectory per palette.
// It is safe for concurrent use.
type Exporter struct {
	dir  string
	opts Options
	log  *zap.Logger

	mu   sync.Mutex
	seen map[uint64]string
}

// New creates an exporter writing below dir.
func New(dir string, opts Options, log *zap.Logger) (*Exporter, error) {
	switch opts.Format {
	case "":
		opts.Format = FormatPNG
	case FormatPNG, FormatBMP:
	default:
		return nil, fmt.Errorf("unsupported image format %q", opts.Format)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		dir:  dir,
		opts: opts,
		log:  log,
		seen: make(map[uint64]string),
	}, nil
}

// SpritePath returns where sprite k decoded with palette is written.
func (e *Exporter) SpritePath(k sff.Key, palette int) string {
	return filepath.Join(e.dir, fmt.Sprintf("pal%02d", palette), fmt.Sprintf("%d-%d.%s", k.Group, k.Image, e.opts.Format))
}

// WriteSprite writes one decoded sprite. When duplicates are skipped and an
// identical image was already written, it returns that file's path and
// written is false.
func (e *Exporter) WriteSprite(k sff.Key, palette int, img *sff.Image) (path string, written bool, err error) {
	path = e.SpritePath(k, palette)
	if e.opts.SkipDuplicates {
		sum := img.Sum64()
		e.mu.Lock()
		prev, dup := e.seen[sum]
		if !dup {
			e.seen[sum] = path
		}
		e.mu.Unlock()
		if dup {
			e.log.Debug("skipping duplicate sprite", zap.Stringer("key", k), zap.String("same_as", prev))
			return prev, false, nil
		}
	}

	if err := writeFile(path, func(w io.Writer) error {
		return Encode(w, e.opts.Format, e.scaled(img))
	}); err != nil {
		return "", false, fmt.Errorf("writing sprite %s: %w", k, err)
	}
	return path, true, nil
}

// WritePalette writes palette n as a 768-byte ACT file.
func (e *Exporter) WritePalette(n int, p *sff.Palette) (string, error) {
	path := filepath.Join(e.dir, fmt.Sprintf("pal%02d.act", n))
	err := writeFile(path, func(w io.Writer) error {
		_, err := w.Write(p.MarshalACT())
		return err
	})
	if err != nil {
		return "", fmt.Errorf("writing palette %d: %w", n, err)
	}
	return path, nil
}

func (e *Exporter) scaled(img *sff.Image) image.Image {
	src := img.RGBA()
	if e.opts.Scale <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, img.Width*e.opts.Scale, img.Height*e.opts.Scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Encode writes img in the given format.
func Encode(w io.Writer, format string, img image.Image) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unsupported image format %q", format)
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
