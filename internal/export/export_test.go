package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/sffkit/pkg/sff"
)

func testImage(color byte) *sff.Image {
	return &sff.Image{
		Width:  2,
		Height: 1,
		Pix:    []byte{0, 0, 0, 0, color, 20, 30, 255},
	}
}

func TestWriteSprite_PNG(t *testing.T) {
	dir := t.TempDir()
	e, err := New(dir, Options{Format: FormatPNG}, zaptest.NewLogger(t))
	require.NoError(t, err)

	path, written, err := e.WriteSprite(sff.Key{Group: 9000, Image: 1}, 2, testImage(10))
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, filepath.Join(dir, "pal02", "9000-1.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, 2, img.Bounds().Dx())
	r, g, b, a := img.At(1, 0).RGBA()
	assert.Equal(t, []uint32{10, 20, 30, 255}, []uint32{r >> 8, g >> 8, b >> 8, a >> 8})
	_, _, _, a = img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), a)
}

func TestWriteSprite_BMPScaled(t *testing.T) {
	dir := t.TempDir()
	e, err := New(dir, Options{Format: FormatBMP, Scale: 3}, nil)
	require.NoError(t, err)

	path, _, err := e.WriteSprite(sff.Key{Group: 0, Image: 0}, 0, testImage(10))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := bmp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
}

func TestWriteSprite_SkipDuplicates(t *testing.T) {
	dir := t.TempDir()
	e, err := New(dir, Options{SkipDuplicates: true}, nil)
	require.NoError(t, err)

	first, written, err := e.WriteSprite(sff.Key{Group: 1, Image: 0}, 0, testImage(10))
	require.NoError(t, err)
	require.True(t, written)

	again, written, err := e.WriteSprite(sff.Key{Group: 1, Image: 1}, 0, testImage(10))
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, first, again)
	assert.NoFileExists(t, e.SpritePath(sff.Key{Group: 1, Image: 1}, 0))

	_, written, err = e.WriteSprite(sff.Key{Group: 1, Image: 2}, 0, testImage(11))
	require.NoError(t, err)
	assert.True(t, written)
}

func TestWritePalette(t *testing.T) {
	var p sff.Palette
	p[1] = sff.Color{R: 1, G: 2, B: 3}

	e, err := New(t.TempDir(), Options{}, nil)
	require.NoError(t, err)
	path, err := e.WritePalette(1, &p)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := sff.ReadACT(f)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(t.TempDir(), Options{Format: "gif"}, nil)
	assert.Error(t, err)
	assert.Error(t, Encode(&bytes.Buffer{}, "tga", testImage(1).RGBA()))
}
