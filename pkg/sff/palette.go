package sff

import (
	"fmt"
	"io"
)

const (
	// PaletteColors is the number of entries in every palette.
	PaletteColors = 256

	// ACTSize is the size of a 256-entry RGB palette file.
	ACTSize = PaletteColors * 3

	// MaxPaletteFiles is how many numbered palette files a V1 character may list.
	MaxPaletteFiles = 12

	// embeddedPaletteMarker precedes a PCX palette stored in a sprite's last 768 bytes.
	embeddedPaletteMarker = 0x0C
)

// Color is an opaque RGB palette entry.
type Color struct {
	R, G, B uint8
}

// Palette is a 256-color lookup table. Index 0 always decodes as transparent.
type Palette [PaletteColors]Color

// ReadACT reads a 768-byte RGB palette. Colors are stored in reverse file
// order: the last triple of the file becomes entry 0.
func ReadACT(r io.Reader) (Palette, error) {
	var raw [ACTSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return Palette{}, fmt.Errorf("reading ACT palette: %w", err)
	}
	var p Palette
	for i := 0; i < PaletteColors; i++ {
		p[PaletteColors-1-i] = Color{R: raw[i*3], G: raw[i*3+1], B: raw[i*3+2]}
	}
	return p, nil
}

// MarshalACT encodes p back into the reversed 768-byte layout read by ReadACT.
func (p *Palette) MarshalACT() []byte {
	out := make([]byte, ACTSize)
	for i := 0; i < PaletteColors; i++ {
		c := p[PaletteColors-1-i]
		out[i*3], out[i*3+1], out[i*3+2] = c.R, c.G, c.B
	}
	return out
}

// PaletteOpener opens the n-th auxiliary palette source, counting from 1.
type PaletteOpener func(n int) (io.ReadCloser, error)

// LoadPalettes reads palette sources 1..MaxPaletteFiles in order and stops at
// the first one that cannot be opened or read. Failures are not errors; the
// palettes read so far are returned.
func LoadPalettes(open PaletteOpener) []Palette {
	var pals []Palette
	for n := 1; n <= MaxPaletteFiles; n++ {
		rc, err := open(n)
		if err != nil {
			break
		}
		p, err := ReadACT(rc)
		rc.Close()
		if err != nil {
			break
		}
		pals = append(pals, p)
	}
	return pals
}

// embeddedPalette returns the PCX palette stored at the tail of a V1 sprite's
// data, if the marker byte is present.
func embeddedPalette(data []byte) (*Palette, bool) {
	if len(data) <= ACTSize || data[len(data)-ACTSize-1] != embeddedPaletteMarker {
		return nil, false
	}
	raw := data[len(data)-ACTSize:]
	var p Palette
	for i := range p {
		p[i] = Color{R: raw[i*3], G: raw[i*3+1], B: raw[i*3+2]}
	}
	return &p, true
}

// readV2Palette reads up to rec.NumColors 4-byte entries from the literal
// block. Entries the block does not hold stay black.
func readV2Palette(literal []byte, rec *PaletteRecord) *Palette {
	var p Palette
	n := min(int(rec.NumColors), PaletteColors)
	src := NewCursor(literal).Slice(rec.Offset, uint32(n*v2ColorEntryBytes))
	for i := 0; i < n && (i+1)*v2ColorEntryBytes <= len(src); i++ {
		e := src[i*v2ColorEntryBytes:]
		p[i] = Color{R: e[0], G: e[1], B: e[2]}
	}
	return &p
}
