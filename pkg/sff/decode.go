package sff

import (
	"fmt"
)

const (
	// MaxPixels bounds the size of a single decoded sprite.
	MaxPixels = 4096 * 4096

	// compressedPreamble is the uncompressed-size field that precedes RLE8,
	// RLE5 and LZ5 data.
	compressedPreamble = 4
)

// Decode decodes one sprite's pixel data into an RGBA image of width x height
// pixels. PCX data carries its own size, which takes precedence over width
// and height when the header is readable.
//
// A pixel stream that ends early yields a partially filled image, and
// FormatInvalid yields a fully transparent one. Only an unknown format or an
// oversized image is an error.
func Decode(f Format, src []byte, pal *Palette, width, height int) (*Image, error) {
	if f == FormatPCX {
		if w, h, _, ok := pcxHeader(src); ok {
			width, height = w, h
		}
	}
	idx, err := decodeIndices(f, src, width, height)
	if err != nil {
		return nil, err
	}
	return &Image{
		Width:  width,
		Height: height,
		Pix:    colorize(idx, pal),
	}, nil
}

// decodeIndices decodes src into width*height palette indices. Pixels the
// stream does not reach stay 0.
func decodeIndices(f Format, src []byte, width, height int) ([]byte, error) {
	if width < 0 || height < 0 || width*height > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImageSize, width, height)
	}
	dst := make([]byte, width*height)

	switch f {
	case FormatRaw:
		copy(dst, src)
	case FormatInvalid:
		// Drawn as a blank surface of the declared size.
	case FormatRLE8:
		decodeRLE8(dst, src)
	case FormatRLE5:
		decodeRLE5(dst, src)
	case FormatLZ5:
		decodeLZ5(dst, src)
	case FormatPCX:
		decodePCX(dst, src, width, height)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	return dst, nil
}

// colorize maps palette indices to RGBA. Index 0 is always transparent black.
func colorize(idx []byte, pal *Palette) []byte {
	pix := make([]byte, len(idx)*4)
	for i, v := range idx {
		if v == 0 {
			continue
		}
		c := pal[v]
		o := i * 4
		pix[o] = c.R
		pix[o+1] = c.G
		pix[o+2] = c.B
		pix[o+3] = 255
	}
	return pix
}

// pixelWriter appends indices to a fixed buffer and silently drops anything
// past its end.
type pixelWriter struct {
	dst []byte
	n   int
}

func (w *pixelWriter) full() bool {
	return w.n >= len(w.dst)
}

func (w *pixelWriter) put(v byte) {
	if w.n < len(w.dst) {
		w.dst[w.n] = v
		w.n++
	}
}

func (w *pixelWriter) run(v byte, count int) {
	for ; count > 0 && w.n < len(w.dst); count-- {
		w.dst[w.n] = v
		w.n++
	}
}

// copyBack replays length pixels starting offset pixels behind the write
// position. When length exceeds offset the window repeats. Sources before the
// start of the buffer leave the pixel transparent.
func (w *pixelWriter) copyBack(offset, length int) {
	start := w.n
	for i := 0; i < length && w.n < len(w.dst); i++ {
		src := w.n - offset
		if offset == 0 {
			// Not produced by a valid encoder: repeat the pixel at the copy start.
			src = start
		}
		if src >= 0 {
			w.dst[w.n] = w.dst[src]
		}
		w.n++
	}
}
