package sff

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func FuzzParseAndGet(f *testing.F) {
	var pal Palette
	pal[1] = Color{1, 2, 3}
	f.Add(buildV1(false,
		v1Sub{group: 0, image: 0, data: buildPCX(2, 2, 2, []byte{0xC4, 1}, &pal)},
		v1Sub{group: 0, image: 1, link: 0, shared: true},
	))
	f.Add(buildV2(
		[]v2Spr{
			{group: 0, image: 0, width: 4, height: 1, format: FormatLZ5, length: 8},
			{group: 0, image: 1, width: 2, height: 2, format: FormatRLE8, length: 8},
			{group: 0, image: 2, link: 1},
			{group: 0, image: 3, width: 4096, height: 4096, format: FormatRaw},
		},
		[]v2Pal{{numColors: 2}},
		withPreamble(4, 0x00, 0x82, 0x21, 0x22), nil,
	))
	f.Add([]byte(signature))

	f.Fuzz(func(t *testing.T, data []byte) {
		s, err := Load(bytes.NewReader(data), []Palette{pal}, WithCache(false), WithMaxPixels(256*256))
		if err != nil {
			var fe *FormatError
			require.ErrorAs(t, err, &fe, "load error is not a FormatError")
			return
		}
		for _, k := range s.Keys() {
			img, err := s.Get(int(k.Group), int(k.Image), 0)
			if err != nil {
				var le *LookupError
				var de *DecodeError
				require.True(t, errors.As(err, &le) || errors.As(err, &de), "Get(%s): unexpected error type %T", k, err)
				continue
			}
			require.Len(t, img.Pix, img.Width*img.Height*4, "Get(%s)", k)
			require.LessOrEqual(t, img.Width*img.Height, 256*256)
		}
	})
}
