package sff

import (
	"go.uber.org/zap"
)

const (
	v2ReservedBytes   = 8
	v2SpriteRecord    = 28
	v2PaletteRecord   = 16
	v2MaxPreallocate  = 1 << 16
	v2ColorEntryBytes = 4 // R, G, B, unused
)

// parseV2 reads the V2 header, both data blocks and the sprite and palette
// tables. Tables shorter than their declared counts are accepted.
func parseV2(c *Cursor, ct *Container, log *zap.Logger) error {
	h := &V2{}
	if err := c.Skip(v2ReservedBytes); err != nil {
		return truncated("skipping reserved bytes", err)
	}
	compat, err := c.Bytes(4)
	if err != nil {
		return truncated("reading compatibility version", err)
	}
	h.Compat = Version{Major: compat[3], Minor: compat[2], Patch: compat[1], Build: compat[0]}
	if err := c.Skip(v2ReservedBytes); err != nil {
		return truncated("skipping reserved bytes", err)
	}

	var fields [8]uint32
	names := [8]string{
		"first sprite offset", "sprite count",
		"first palette offset", "palette count",
		"literal block offset", "literal block length",
		"translated block offset", "translated block length",
	}
	for i := range fields {
		if fields[i], err = c.U32(); err != nil {
			return truncated("reading "+names[i], err)
		}
	}
	spriteOff, spriteCount := fields[0], fields[1]
	paletteOff, paletteCount := fields[2], fields[3]

	// Blocks are copied so the container does not pin the caller's buffer.
	h.Literal = cloneBytes(c.Slice(fields[4], fields[5]))
	h.Translated = cloneBytes(c.Slice(fields[6], fields[7]))
	if uint64(len(h.Literal)) < uint64(fields[5]) || uint64(len(h.Translated)) < uint64(fields[7]) {
		log.Debug("V2 data block truncated",
			zap.Int("literal", len(h.Literal)), zap.Uint32("literalDeclared", fields[5]),
			zap.Int("translated", len(h.Translated)), zap.Uint32("translatedDeclared", fields[7]))
	}
	ct.V2 = h

	ct.Sprites = readV2Sprites(c, spriteOff, spriteCount)
	h.Palettes = readV2Palettes(c, paletteOff, paletteCount)

	if uint32(len(ct.Sprites)) != spriteCount || uint32(len(h.Palettes)) != paletteCount {
		log.Debug("V2 table counts differ from header",
			zap.Uint32("spritesDeclared", spriteCount), zap.Int("sprites", len(ct.Sprites)),
			zap.Uint32("palettesDeclared", paletteCount), zap.Int("palettes", len(h.Palettes)))
	}
	return nil
}

func readV2Sprites(c *Cursor, off, count uint32) []Sprite {
	if err := c.Seek(int64(off)); err != nil {
		return nil
	}
	n := min(uint64(count), uint64(c.Len()/v2SpriteRecord), v2MaxPreallocate)
	sprites := make([]Sprite, 0, n)
	for i := uint32(0); i < count && c.Len() >= v2SpriteRecord; i++ {
		var s Sprite
		s.Group, _ = c.U16()
		s.Image, _ = c.U16()
		s.Width, _ = c.U16()
		s.Height, _ = c.U16()
		ax, _ := c.U16()
		ay, _ := c.U16()
		s.AxisX, s.AxisY = int16(ax), int16(ay)
		s.Link, _ = c.U16()
		f, _ := c.U8()
		s.Format = Format(f)
		s.ColorDepth, _ = c.U8()
		s.Offset, _ = c.U32()
		s.Length, _ = c.U32()
		s.Palette, _ = c.U16()
		s.Flags, _ = c.U16()
		sprites = append(sprites, s)
	}
	return sprites
}

func readV2Palettes(c *Cursor, off, count uint32) []PaletteRecord {
	if err := c.Seek(int64(off)); err != nil {
		return nil
	}
	n := min(uint64(count), uint64(c.Len()/v2PaletteRecord), v2MaxPreallocate)
	pals := make([]PaletteRecord, 0, n)
	for i := uint32(0); i < count && c.Len() >= v2PaletteRecord; i++ {
		var p PaletteRecord
		p.Group, _ = c.U16()
		p.Item, _ = c.U16()
		p.NumColors, _ = c.U16()
		p.Link, _ = c.U16()
		p.Offset, _ = c.U32()
		p.Length, _ = c.U32()
		pals = append(pals, p)
	}
	return pals
}

// spriteData returns the byte range a V2 sprite points at, clamped to its block.
func (h *V2) spriteData(s *Sprite) []byte {
	block := h.Literal
	if s.Translated() {
		block = h.Translated
	}
	return NewCursor(block).Slice(s.Offset, s.Length)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
