package sff

import (
	"go.uber.org/zap"
)

const (
	v1SubheaderSize  = 32
	v1ReservedBytes  = 13
	v1MaxPreallocate = 4096
)

// parseV1 reads the V1 header and walks the linked list of subfiles.
// The walk stops early at end of stream, on a non-positive next offset, on a
// revisited offset, or once the declared image count is reached.
func parseV1(c *Cursor, ct *Container, log *zap.Logger) error {
	h := &V1{}
	var err error
	if h.Groups, err = c.U32(); err != nil {
		return truncated("reading group count", err)
	}
	if h.Images, err = c.U32(); err != nil {
		return truncated("reading image count", err)
	}
	first, err := c.U32()
	if err != nil {
		return truncated("reading first subfile offset", err)
	}
	if h.SubheaderSize, err = c.U32(); err != nil {
		return truncated("reading subheader size", err)
	}
	shared, err := c.U8()
	if err != nil {
		return truncated("reading shared palette flag", err)
	}
	h.SharedPalette = shared != 0
	ct.V1 = h

	ct.Sprites = make([]Sprite, 0, min(int(h.Images), v1MaxPreallocate))
	visited := make(map[int32]struct{})
	next := int32(first)
	for next > 0 && uint32(len(ct.Sprites)) < h.Images {
		if _, seen := visited[next]; seen {
			log.Warn("V1 subfile list loops, stopping", zap.Int32("offset", next))
			break
		}
		visited[next] = struct{}{}

		if err := c.Seek(int64(next)); err != nil {
			log.Debug("V1 subfile offset past end of stream", zap.Int32("offset", next))
			break
		}
		sp, nextOff, ok := readV1Subfile(c)
		if !ok {
			log.Debug("V1 subfile truncated, stopping", zap.Int32("offset", next))
			break
		}
		ct.Sprites = append(ct.Sprites, sp)
		next = int32(nextOff)
	}

	if uint32(len(ct.Sprites)) != h.Images {
		log.Debug("V1 image count differs from header",
			zap.Uint32("declared", h.Images), zap.Int("read", len(ct.Sprites)))
	}
	return nil
}

// readV1Subfile reads one subfile header and its pixel blob. A blob cut short
// by end of stream is kept with the bytes that are available.
func readV1Subfile(c *Cursor) (Sprite, uint32, bool) {
	if c.Len() < v1SubheaderSize {
		return Sprite{}, 0, false
	}
	next, _ := c.U32()
	length, _ := c.U32()
	ax, _ := c.U16()
	ay, _ := c.U16()
	group, _ := c.U16()
	image, _ := c.U16()
	link, _ := c.U16()
	shared, _ := c.U8()
	_ = c.Skip(v1ReservedBytes)

	n := int(min(uint64(length), uint64(c.Len())))
	blob, _ := c.Bytes(n)
	data := make([]byte, n)
	copy(data, blob)

	return Sprite{
		Group:         group,
		Image:         image,
		AxisX:         int16(ax),
		AxisY:         int16(ay),
		Link:          link,
		Format:        FormatPCX,
		SharedPalette: shared != 0,
		Data:          data,
	}, next, true
}
