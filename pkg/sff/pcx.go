package sff

import "encoding/binary"

const pcxHeaderSize = 128

// pcxHeader reads the image size and scanline stride from the 128-byte PCX
// header embedded in V1 sprite data.
func pcxHeader(src []byte) (width, height, stride int, ok bool) {
	if len(src) < pcxHeaderSize {
		return 0, 0, 0, false
	}
	xmin := int(binary.LittleEndian.Uint16(src[4:]))
	ymin := int(binary.LittleEndian.Uint16(src[6:]))
	xmax := int(binary.LittleEndian.Uint16(src[8:]))
	ymax := int(binary.LittleEndian.Uint16(src[10:]))
	if xmax < xmin || ymax < ymin {
		return 0, 0, 0, false
	}
	width = xmax - xmin + 1
	height = ymax - ymin + 1

	planes := max(int(src[65]), 1)
	stride = int(binary.LittleEndian.Uint16(src[66:])) * planes
	if stride < width || stride*height > MaxPixels {
		stride = width
	}
	return width, height, stride, true
}

// decodePCX decodes PCX run-length data starting after the header. A byte
// with both top bits set is a run of (b & 0x3F) copies of the next byte;
// anything else is one pixel. Scanline padding beyond width is dropped, as is
// a trailing embedded palette.
func decodePCX(dst, src []byte, width, height int) {
	_, _, stride, ok := pcxHeader(src)
	if !ok {
		return
	}
	end := len(src)
	if _, has := embeddedPalette(src); has {
		end -= ACTSize + 1
	}
	if end < pcxHeaderSize {
		return
	}

	lines := dst
	if stride != width {
		lines = make([]byte, stride*height)
	}
	c := NewCursor(src[pcxHeaderSize:end])
	w := pixelWriter{dst: lines}
	for !w.full() {
		b, err := c.U8()
		if err != nil {
			break
		}
		if b&0xC0 != 0xC0 {
			w.put(b)
			continue
		}
		color, err := c.U8()
		if err != nil {
			break
		}
		w.run(color, int(b&0x3F))
	}

	if stride != width {
		for y := 0; y < height; y++ {
			copy(dst[y*width:(y+1)*width], lines[y*stride:])
		}
	}
}
