// Package sff provides a decoder for Elecbyte SFF sprite containers (versions 1 and 2).
package sff

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

const (
	signature  = "ElecbyteSpr\x00"
	headerSize = 16 // signature + version

	// maxV1Subversion is the highest lowest-precedence version byte accepted for V1.
	maxV1Subversion = 1
)

// Version is the 4-byte container version, stored high-to-low at bytes 12-15.
type Version struct {
	Major uint8 // byte 15
	Minor uint8 // byte 14
	Patch uint8 // byte 13
	Build uint8 // byte 12
}

// String returns the version as "Major.Minor.Patch.Build".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Build)
}

// Format is a sprite pixel format tag.
type Format uint8

// Pixel formats. Values 0-4 are the V2 on-disk tags; FormatPCX is used for
// every V1 sprite and never appears on disk.
const (
	FormatRaw     Format = 0
	FormatInvalid Format = 1
	FormatRLE8    Format = 2
	FormatRLE5    Format = 3
	FormatLZ5     Format = 4
	FormatPCX     Format = 0xFF
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatInvalid:
		return "invalid"
	case FormatRLE8:
		return "rle8"
	case FormatRLE5:
		return "rle5"
	case FormatLZ5:
		return "lz5"
	case FormatPCX:
		return "pcx"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// Key is the external identity of a sprite.
type Key struct {
	Group uint16
	Image uint16
}

func (k Key) String() string {
	return fmt.Sprintf("%d,%d", k.Group, k.Image)
}

// Sprite is one sprite record of a container.
type Sprite struct {
	Group  uint16
	Image  uint16
	Width  uint16 // V2 only; V1 sizes come from the PCX header
	Height uint16
	AxisX  int16
	AxisY  int16
	Link   uint16
	Format Format

	// V2 fields.
	ColorDepth uint8
	Offset     uint32
	Length     uint32
	Palette    uint16
	Flags      uint16

	// V1 fields.
	SharedPalette bool
	Data          []byte
}

// Key returns the sprite's (group, image) identity.
func (s *Sprite) Key() Key {
	return Key{Group: s.Group, Image: s.Image}
}

// DataLen returns the declared length of the sprite's own pixel data.
func (s *Sprite) DataLen() int {
	if s.Data != nil {
		return len(s.Data)
	}
	return int(s.Length)
}

// Size returns the sprite's pixel size. V1 sizes are read from the PCX
// header; a sprite without its own data reports 0x0.
func (s *Sprite) Size() (width, height int) {
	if s.Format == FormatPCX {
		w, h, _, _ := pcxHeader(s.Data)
		return w, h
	}
	return int(s.Width), int(s.Height)
}

// Translated reports whether a V2 sprite's data lives in the translated block.
func (s *Sprite) Translated() bool {
	return s.Flags&0x01 != 0
}

// PaletteRecord is a V2 palette table entry.
type PaletteRecord struct {
	Group     uint16
	Item      uint16
	NumColors uint16
	Link      uint16
	Offset    uint32
	Length    uint32
}

// V1 holds the state only a version 1 container has.
type V1 struct {
	Groups        uint32
	Images        uint32
	SubheaderSize uint32
	SharedPalette bool
}

// V2 holds the state only a version 2 container has.
type V2 struct {
	Compat     Version
	Palettes   []PaletteRecord
	Literal    []byte
	Translated []byte
}

// Container is a parsed SFF file. Exactly one of V1 and V2 is set.
// A Container is immutable after Parse and safe for concurrent reads.
type Container struct {
	Version Version
	Sprites []Sprite
	V1      *V1
	V2      *V2

	index map[Key]int
}

// Lookup returns the table position of a sprite.
func (c *Container) Lookup(k Key) (int, bool) {
	i, ok := c.index[k]
	return i, ok
}

// Parse parses a complete SFF file held in memory.
func Parse(data []byte) (*Container, error) {
	return parse(data, zap.NewNop())
}

// ParseFile parses an SFF file from disk.
func ParseFile(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading SFF file: %w", err)
	}
	return Parse(data)
}

// Sniff reads only the signature and version from r.
func Sniff(r io.Reader) (Version, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Version{}, truncated("reading header", err)
	}
	return readHeader(NewCursor(hdr[:]))
}

func readHeader(c *Cursor) (Version, error) {
	sig, err := c.Bytes(len(signature))
	if err != nil {
		return Version{}, truncated("reading signature", err)
	}
	if string(sig) != signature {
		return Version{}, &FormatError{Op: "reading signature", Err: ErrBadSignature}
	}

	ver, err := c.Bytes(4)
	if err != nil {
		return Version{}, truncated("reading version", err)
	}
	v := Version{Major: ver[3], Minor: ver[2], Patch: ver[1], Build: ver[0]}

	switch v.Major {
	case 1:
		if v.Build > maxV1Subversion {
			return v, &FormatError{Op: "reading version", Err: fmt.Errorf("%w: %s", ErrUnsupportedVersion, v)}
		}
	case 2:
	default:
		return v, &FormatError{Op: "reading version", Err: fmt.Errorf("%w: %s", ErrUnsupportedVersion, v)}
	}
	return v, nil
}

func parse(data []byte, log *zap.Logger) (*Container, error) {
	c := NewCursor(data)
	v, err := readHeader(c)
	if err != nil {
		return nil, err
	}

	ct := &Container{Version: v}
	switch v.Major {
	case 1:
		err = parseV1(c, ct, log)
	case 2:
		err = parseV2(c, ct, log)
	}
	if err != nil {
		return nil, err
	}

	ct.index = make(map[Key]int, len(ct.Sprites))
	for i := range ct.Sprites {
		k := ct.Sprites[i].Key()
		if prev, dup := ct.index[k]; dup {
			log.Debug("duplicate sprite key, later record wins",
				zap.Stringer("key", k), zap.Int("previous", prev), zap.Int("index", i))
		}
		ct.index[k] = i
	}

	log.Debug("parsed SFF container",
		zap.Stringer("version", v),
		zap.Int("sprites", len(ct.Sprites)),
		zap.Int("palettes", ct.paletteCount()))
	return ct, nil
}

func (c *Container) paletteCount() int {
	if c.V2 != nil {
		return len(c.V2.Palettes)
	}
	return 0
}
