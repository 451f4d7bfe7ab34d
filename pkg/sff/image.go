package sff

import (
	"image"

	"github.com/cespare/xxhash/v2"
)

// Image is a decoded sprite. Pix holds Width*Height RGBA pixels, 4 bytes
// each, row-major. Images returned by a Store are shared and must not be
// modified.
type Image struct {
	Width  int
	Height int
	AxisX  int16
	AxisY  int16
	Pix    []byte
}

// At returns the RGBA bytes of pixel (x, y).
func (img *Image) At(x, y int) [4]byte {
	var px [4]byte
	if x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return px
	}
	copy(px[:], img.Pix[(y*img.Width+x)*4:])
	return px
}

// Sum64 fingerprints the image size and pixels.
func (img *Image) Sum64() uint64 {
	d := xxhash.New()
	var dims [8]byte
	dims[0], dims[1], dims[2], dims[3] = byte(img.Width), byte(img.Width>>8), byte(img.Width>>16), byte(img.Width>>24)
	dims[4], dims[5], dims[6], dims[7] = byte(img.Height), byte(img.Height>>8), byte(img.Height>>16), byte(img.Height>>24)
	_, _ = d.Write(dims[:])
	_, _ = d.Write(img.Pix)
	return d.Sum64()
}

// RGBA returns a copy of the image as an *image.RGBA.
func (img *Image) RGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	copy(out.Pix, img.Pix)
	return out
}
