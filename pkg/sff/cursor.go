package sff

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Cursor is a bounds-checked little-endian reader over a byte slice.
// Reads past the end fail with io.ErrUnexpectedEOF and leave the position
// unchanged.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current read position.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the number of unread bytes.
func (c *Cursor) Len() int { return len(c.buf) - c.pos }

// Size returns the length of the underlying buffer.
func (c *Cursor) Size() int { return len(c.buf) }

// Seek moves to an absolute offset. Seeking to the end is allowed.
func (c *Cursor) Seek(off int64) error {
	if off < 0 || off > int64(len(c.buf)) {
		return fmt.Errorf("seek to %d of %d: %w", off, len(c.buf), io.ErrUnexpectedEOF)
	}
	c.pos = int(off)
	return nil
}

// Skip advances n bytes.
func (c *Cursor) Skip(n int) error {
	if n < 0 || n > c.Len() {
		return io.ErrUnexpectedEOF
	}
	c.pos += n
	return nil
}

// U8 reads one byte.
func (c *Cursor) U8() (uint8, error) {
	if c.pos >= len(c.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// U16 reads a little-endian uint16.
func (c *Cursor) U16() (uint16, error) {
	if c.Len() < 2 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

// U32 reads a little-endian uint32.
func (c *Cursor) U32() (uint32, error) {
	if c.Len() < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

// Bytes returns the next n bytes without copying.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 || n > c.Len() {
		return nil, io.ErrUnexpectedEOF
	}
	b := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return b, nil
}

// Slice returns buf[off:off+n] clamped to the buffer, without moving the
// cursor. It never returns bytes outside the buffer.
func (c *Cursor) Slice(off, n uint32) []byte {
	start := uint64(off)
	end := start + uint64(n)
	if start > uint64(len(c.buf)) {
		return nil
	}
	if end > uint64(len(c.buf)) {
		end = uint64(len(c.buf))
	}
	return c.buf[start:end:end]
}
