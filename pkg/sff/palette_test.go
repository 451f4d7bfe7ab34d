package sff

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadACT_Reversed(t *testing.T) {
	raw := make([]byte, ACTSize)
	// First triple of the file is the last palette entry.
	raw[0], raw[1], raw[2] = 1, 2, 3
	raw[ACTSize-3], raw[ACTSize-2], raw[ACTSize-1] = 7, 8, 9

	p, err := ReadACT(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, Color{1, 2, 3}, p[255])
	assert.Equal(t, Color{7, 8, 9}, p[0])
	assert.Equal(t, raw, p.MarshalACT(), "MarshalACT does not reproduce the file")
}

func TestReadACT_Short(t *testing.T) {
	_, err := ReadACT(bytes.NewReader(make([]byte, 100)))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestLoadPalettes_StopsAtFirstMissing(t *testing.T) {
	var opened []int
	open := func(n int) (io.ReadCloser, error) {
		opened = append(opened, n)
		if n == 2 {
			return nil, os.ErrNotExist
		}
		raw := make([]byte, ACTSize)
		raw[ACTSize-3] = byte(n)
		return io.NopCloser(bytes.NewReader(raw)), nil
	}

	pals := LoadPalettes(open)
	require.Len(t, pals, 1)
	assert.Equal(t, uint8(1), pals[0][0].R)
	assert.Equal(t, []int{1, 2}, opened)
}

func TestLoadPalettes_ShortFileStops(t *testing.T) {
	open := func(n int) (io.ReadCloser, error) {
		size := ACTSize
		if n == 3 {
			size = 10
		}
		return io.NopCloser(bytes.NewReader(make([]byte, size))), nil
	}
	assert.Len(t, LoadPalettes(open), 2)
}

func TestLoadPalettes_AtMostTwelve(t *testing.T) {
	open := func(n int) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(make([]byte, ACTSize))), nil
	}
	assert.Len(t, LoadPalettes(open), MaxPaletteFiles)
}

func TestEmbeddedPalette(t *testing.T) {
	var pal Palette
	pal[1] = Color{10, 20, 30}
	data := buildPCX(1, 1, 1, []byte{1}, &pal)

	got, ok := embeddedPalette(data)
	require.True(t, ok, "embedded palette not detected")
	assert.Equal(t, pal[1], got[1])

	_, ok = embeddedPalette(buildPCX(1, 1, 1, []byte{1}, nil))
	assert.False(t, ok, "palette detected without marker")
	_, ok = embeddedPalette(make([]byte, ACTSize))
	assert.False(t, ok, "palette detected in too short data")
}

func TestReadV2Palette_Clamped(t *testing.T) {
	literal := v2PaletteBytes(Color{1, 1, 1}, Color{2, 2, 2})
	rec := &PaletteRecord{NumColors: 256, Offset: 0}

	p := readV2Palette(literal, rec)
	assert.Equal(t, Color{2, 2, 2}, p[1])
	assert.Equal(t, Color{}, p[2])

	p = readV2Palette(literal, &PaletteRecord{NumColors: 4, Offset: 1000})
	assert.Equal(t, Palette{}, *p)
}
