package sff

// decodeRLE8 decodes RLE8 data. A byte whose top two bits are 01 is a run:
// its low six bits give the length and the next byte the color. Any other
// byte is a single pixel.
func decodeRLE8(dst, src []byte) {
	c := NewCursor(src)
	if c.Skip(compressedPreamble) != nil {
		return
	}
	w := pixelWriter{dst: dst}
	for !w.full() {
		b, err := c.U8()
		if err != nil {
			return
		}
		if b&0xC0 != 0x40 {
			w.put(b)
			continue
		}
		color, err := c.U8()
		if err != nil {
			return
		}
		w.run(color, int(b&0x3F))
	}
}

// decodeRLE5 decodes RLE5 data: a run-length byte and a data-length byte
// (top bit set means a color byte follows, otherwise the color is 0), then
// (data length - 1) bytes each packing a 3-bit run and a 5-bit color.
func decodeRLE5(dst, src []byte) {
	c := NewCursor(src)
	if c.Skip(compressedPreamble) != nil {
		return
	}
	w := pixelWriter{dst: dst}
	for !w.full() {
		runLen, err := c.U8()
		if err != nil {
			return
		}
		dataLen, err := c.U8()
		if err != nil {
			return
		}
		var color byte
		if dataLen&0x80 != 0 {
			if color, err = c.U8(); err != nil {
				return
			}
		}
		w.run(color, int(runLen))

		for i := 0; i < int(dataLen&0x7F)-1; i++ {
			b, err := c.U8()
			if err != nil {
				return
			}
			w.run(b&0x1F, int(b>>5))
		}
	}
}
