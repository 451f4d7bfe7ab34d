package sff

import (
	"bytes"
	"encoding/binary"
)

// v1Sub describes one V1 subfile for buildV1.
type v1Sub struct {
	group, image uint16
	axisX, axisY int16
	link         uint16
	shared       bool
	data         []byte
}

// buildV1 creates a synthetic V1 container with subfiles laid out in order.
func buildV1(sharedPalette bool, subs ...v1Sub) []byte {
	var buf bytes.Buffer

	buf.WriteString(signature)
	buf.Write([]byte{0, 1, 0, 1}) // 1.0.1.0

	binary.Write(&buf, binary.LittleEndian, uint32(1))         // groups
	binary.Write(&buf, binary.LittleEndian, uint32(len(subs))) // images
	binary.Write(&buf, binary.LittleEndian, uint32(64))        // first subfile
	binary.Write(&buf, binary.LittleEndian, uint32(32))        // subheader size
	if sharedPalette {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	buf.Write(make([]byte, 64-buf.Len()))

	for i, s := range subs {
		next := uint32(0)
		if i < len(subs)-1 {
			next = uint32(buf.Len() + 32 + len(s.data))
		}
		binary.Write(&buf, binary.LittleEndian, next)
		binary.Write(&buf, binary.LittleEndian, uint32(len(s.data)))
		binary.Write(&buf, binary.LittleEndian, s.axisX)
		binary.Write(&buf, binary.LittleEndian, s.axisY)
		binary.Write(&buf, binary.LittleEndian, s.group)
		binary.Write(&buf, binary.LittleEndian, s.image)
		binary.Write(&buf, binary.LittleEndian, s.link)
		if s.shared {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		buf.Write(make([]byte, 13))
		buf.Write(s.data)
	}
	return buf.Bytes()
}

// buildPCX creates PCX sprite data of width x height with the given encoded
// pixel bytes and scanline stride. A non-nil palette is appended after the
// 0x0C marker.
func buildPCX(width, height, stride int, pixels []byte, pal *Palette) []byte {
	hdr := make([]byte, pcxHeaderSize)
	hdr[0] = 0x0A // manufacturer
	hdr[1] = 5    // version
	hdr[2] = 1    // RLE
	hdr[3] = 8    // bits per pixel
	binary.LittleEndian.PutUint16(hdr[8:], uint16(width-1))
	binary.LittleEndian.PutUint16(hdr[10:], uint16(height-1))
	hdr[65] = 1
	binary.LittleEndian.PutUint16(hdr[66:], uint16(stride))

	out := append(hdr, pixels...)
	if pal != nil {
		out = append(out, embeddedPaletteMarker)
		for _, c := range pal {
			out = append(out, c.R, c.G, c.B)
		}
	}
	return out
}

type v2Spr struct {
	group, image  uint16
	width, height uint16
	axisX, axisY  int16
	link          uint16
	format        Format
	offset        uint32
	length        uint32
	palette       uint16
	flags         uint16
}

type v2Pal struct {
	group, item uint16
	numColors   uint16
	link        uint16
	offset      uint32
	length      uint32
}

// buildV2 creates a synthetic V2 container: header, sprite table, palette
// table, literal block, translated block.
func buildV2(sprites []v2Spr, pals []v2Pal, literal, translated []byte) []byte {
	const hdrSize = 68
	spriteOff := uint32(hdrSize)
	palOff := spriteOff + uint32(len(sprites)*v2SpriteRecord)
	litOff := palOff + uint32(len(pals)*v2PaletteRecord)
	transOff := litOff + uint32(len(literal))

	var buf bytes.Buffer
	buf.WriteString(signature)
	buf.Write([]byte{0, 0, 1, 2}) // 2.1.0.0
	buf.Write(make([]byte, 8))
	buf.Write([]byte{0, 0, 1, 2})
	buf.Write(make([]byte, 8))
	for _, v := range []uint32{
		spriteOff, uint32(len(sprites)),
		palOff, uint32(len(pals)),
		litOff, uint32(len(literal)),
		transOff, uint32(len(translated)),
	} {
		binary.Write(&buf, binary.LittleEndian, v)
	}

	for _, s := range sprites {
		binary.Write(&buf, binary.LittleEndian, s.group)
		binary.Write(&buf, binary.LittleEndian, s.image)
		binary.Write(&buf, binary.LittleEndian, s.width)
		binary.Write(&buf, binary.LittleEndian, s.height)
		binary.Write(&buf, binary.LittleEndian, s.axisX)
		binary.Write(&buf, binary.LittleEndian, s.axisY)
		binary.Write(&buf, binary.LittleEndian, s.link)
		buf.WriteByte(byte(s.format))
		buf.WriteByte(8)
		binary.Write(&buf, binary.LittleEndian, s.offset)
		binary.Write(&buf, binary.LittleEndian, s.length)
		binary.Write(&buf, binary.LittleEndian, s.palette)
		binary.Write(&buf, binary.LittleEndian, s.flags)
	}
	for _, p := range pals {
		binary.Write(&buf, binary.LittleEndian, p.group)
		binary.Write(&buf, binary.LittleEndian, p.item)
		binary.Write(&buf, binary.LittleEndian, p.numColors)
		binary.Write(&buf, binary.LittleEndian, p.link)
		binary.Write(&buf, binary.LittleEndian, p.offset)
		binary.Write(&buf, binary.LittleEndian, p.length)
	}
	buf.Write(literal)
	buf.Write(translated)
	return buf.Bytes()
}

// v2PaletteBytes encodes colors as 4-byte literal block entries.
func v2PaletteBytes(colors ...Color) []byte {
	out := make([]byte, 0, len(colors)*4)
	for _, c := range colors {
		out = append(out, c.R, c.G, c.B, 0)
	}
	return out
}

// withPreamble prefixes compressed data with its 4-byte size field.
func withPreamble(size int, data ...byte) []byte {
	out := make([]byte, 4, 4+len(data))
	binary.LittleEndian.PutUint32(out, uint32(size))
	return append(out, data...)
}
