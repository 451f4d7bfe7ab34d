// Package chardef reads MUGEN character definition (.def) files.
//
// Only the parts needed to locate a character's sprites are interpreted:
// the [Info] identity keys and the file references in [Files].
package chardef

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/Faultbox/sffkit/pkg/encoding"
	"github.com/Faultbox/sffkit/pkg/sff"
)

// Definition is the interpreted content of a character .def file.
type Definition struct {
	Name            string
	DisplayName     string
	Author          string
	VersionDate     string
	MugenVersion    string
	PaletteDefaults []int // 1-based palette numbers from pal.defaults

	// Sprite is the sprite container path relative to the .def file.
	Sprite string

	// Palettes holds pal1..pal12; entry n-1 is empty when palN is not set.
	Palettes [sff.MaxPaletteFiles]string

	// Files holds every [Files] entry by lower-case key.
	Files map[string]string
}

var loadOptions = ini.LoadOptions{
	Insensitive:             true,
	IgnoreInlineComment:     false,
	SkipUnrecognizableLines: true,
	AllowShadows:            false,
}

// Parse parses the contents of a .def file. Shift-JIS text is accepted.
func Parse(data []byte) (*Definition, error) {
	f, err := ini.LoadSources(loadOptions, []byte(encoding.DecodeText(data)))
	if err != nil {
		return nil, fmt.Errorf("parsing character definition: %w", err)
	}

	info := f.Section("info")
	d := &Definition{
		Name:         info.Key("name").String(),
		DisplayName:  info.Key("displayname").String(),
		Author:       info.Key("author").String(),
		VersionDate:  info.Key("versiondate").String(),
		MugenVersion: info.Key("mugenversion").String(),
		Files:        make(map[string]string),
	}
	if d.DisplayName == "" {
		d.DisplayName = d.Name
	}
	d.PaletteDefaults = parseDefaults(info.Key("pal.defaults").String())

	if !f.HasSection("files") {
		return nil, fmt.Errorf("parsing character definition: missing [Files] section")
	}
	for _, k := range f.Section("files").Keys() {
		d.Files[k.Name()] = encoding.NormalizePath(k.String())
	}
	d.Sprite = d.Files["sprite"]
	for i := range d.Palettes {
		d.Palettes[i] = d.Files["pal"+strconv.Itoa(i+1)]
	}
	return d, nil
}

// parseDefaults reads a comma-separated list of palette numbers, dropping
// anything that is not a number in 1..12.
func parseDefaults(s string) []int {
	var out []int
	for _, field := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || n < 1 || n > sff.MaxPaletteFiles {
			continue
		}
		out = append(out, n)
	}
	return out
}

// SpritePath returns the sprite container path relative to the directory
// holding defPath. Without a sprite entry the container is assumed to sit
// next to the .def with the same base name.
func (d *Definition) SpritePath(defPath string) string {
	dir := path.Dir(encoding.NormalizePath(defPath))
	if d.Sprite != "" {
		return path.Join(dir, d.Sprite)
	}
	base := strings.TrimSuffix(path.Base(encoding.NormalizePath(defPath)), path.Ext(defPath))
	return path.Join(dir, base+".sff")
}

// PalettePath returns the path of palette n (1-based) relative to the
// directory holding defPath, or "" when palN is not set.
func (d *Definition) PalettePath(defPath string, n int) string {
	if n < 1 || n > len(d.Palettes) || d.Palettes[n-1] == "" {
		return ""
	}
	return path.Join(path.Dir(encoding.NormalizePath(defPath)), d.Palettes[n-1])
}

// DefaultPalette returns the 0-based selector of the first pal.defaults
// entry, or 0.
func (d *Definition) DefaultPalette() int {
	if len(d.PaletteDefaults) == 0 {
		return 0
	}
	return d.PaletteDefaults[0] - 1
}
