package sff

// decodeLZ5 decodes LZ5 data. Each control byte describes the next eight
// packets, bit i set meaning packet i is a back-reference (LZ) packet and
// clear meaning a run (RLE) packet.
//
// RLE packet: bits 0-4 color, bits 5-7 run length; a zero run length means the
// next byte holds the length minus 8.
//
// LZ packet: bits 0-5 non-zero is a short reference copying (value+1) pixels.
// Its top two bits are recycled: the first three short packets of every four
// stash them and read an offset byte, the fourth builds its 8-bit offset from
// the stash. Bits 0-5 zero is a long reference: the top two bits and the next
// byte form a 10-bit offset, the byte after that the length minus 3.
func decodeLZ5(dst, src []byte) {
	c := NewCursor(src)
	if c.Skip(compressedPreamble) != nil {
		return
	}
	w := pixelWriter{dst: dst}

	var recycled byte
	short := 1
	for !w.full() {
		ctrl, err := c.U8()
		if err != nil {
			return
		}
		for bit := 0; bit < 8 && !w.full(); bit++ {
			b, err := c.U8()
			if err != nil {
				return
			}

			if ctrl&(1<<bit) == 0 {
				n := int(b >> 5)
				if n == 0 {
					ext, err := c.U8()
					if err != nil {
						return
					}
					n = int(ext) + 8
				}
				w.run(b&0x1F, n)
				continue
			}

			var offset, length int
			if length = int(b & 0x3F); length != 0 {
				length++
				if short%4 == 0 {
					recycled |= (b & 0xC0) >> 6
					offset = int(recycled) + 1
					recycled = 0
				} else {
					recycled |= (b & 0xC0) >> (2 * ((short - 1) % 4))
					ext, err := c.U8()
					if err != nil {
						return
					}
					offset = int(ext) + 1
				}
				short++
			} else {
				lo, err := c.U8()
				if err != nil {
					return
				}
				n, err := c.U8()
				if err != nil {
					return
				}
				offset = (int(b&0xC0)<<2 | int(lo)) + 1
				length = int(n) + 3
			}
			w.copyBack(offset, length)
		}
	}
}
