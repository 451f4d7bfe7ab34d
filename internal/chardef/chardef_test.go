package chardef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/sffkit/pkg/encoding"
)

const kfmDef = `; Kung Fu Man definition
[Info]
name = "Kung Fu Man"
displayname = "Kung Fu Man"
versiondate = 04,14,2002
mugenversion = 04,14,2001
author = "Elecbyte"
pal.defaults = 1,3, x, 14

[Files]
cmd     = kfm.cmd
cns     = kfm.cns
Sprite  = kfm.sff     ;Sprite file
anim    = kfm.air
pal1    = kfm.act
pal2    = pal\kfm2.act
pal4    = "kfm4.act"

[Arcade]
intro.storyboard = intro.def
`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(kfmDef))
	require.NoError(t, err)

	assert.Equal(t, "Kung Fu Man", d.Name)
	assert.Equal(t, "Kung Fu Man", d.DisplayName)
	assert.Equal(t, "Elecbyte", d.Author)
	assert.Equal(t, "04,14,2002", d.VersionDate)
	assert.Equal(t, []int{1, 3}, d.PaletteDefaults)
	assert.Equal(t, 0, d.DefaultPalette())

	assert.Equal(t, "kfm.sff", d.Sprite)
	assert.Equal(t, "kfm.air", d.Files["anim"])
	assert.Equal(t, "kfm.act", d.Palettes[0])
	assert.Equal(t, "pal/kfm2.act", d.Palettes[1])
	assert.Equal(t, "", d.Palettes[2])
	assert.Equal(t, "kfm4.act", d.Palettes[3])
}

func TestParse_ShiftJIS(t *testing.T) {
	src := append([]byte("[Info]\nname = "), encoding.UTF8ToShiftJIS("カンフーマン")...)
	src = append(src, "\n[Files]\nsprite = kfm.sff\n"...)

	d, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, "カンフーマン", d.Name)
	assert.Equal(t, "カンフーマン", d.DisplayName)
}

func TestParse_MissingFiles(t *testing.T) {
	_, err := Parse([]byte("[Info]\nname = nobody\n"))
	assert.Error(t, err)
}

func TestSpritePath(t *testing.T) {
	d, err := Parse([]byte(kfmDef))
	require.NoError(t, err)
	assert.Equal(t, "chars/kfm/kfm.sff", d.SpritePath(`chars\kfm\kfm.def`))

	d, err = Parse([]byte("[Files]\ncmd = a.cmd\n"))
	require.NoError(t, err)
	assert.Equal(t, "chars/kfm/kfm.sff", d.SpritePath("chars/kfm/kfm.def"))
	assert.Equal(t, "solo.sff", d.SpritePath("solo.def"))
}

func TestPalettePath(t *testing.T) {
	d, err := Parse([]byte(kfmDef))
	require.NoError(t, err)

	assert.Equal(t, "chars/kfm/pal/kfm2.act", d.PalettePath("chars/kfm/kfm.def", 2))
	assert.Equal(t, "", d.PalettePath("chars/kfm/kfm.def", 3))
	assert.Equal(t, "", d.PalettePath("chars/kfm/kfm.def", 0))
	assert.Equal(t, "", d.PalettePath("chars/kfm/kfm.def", 13))
}
