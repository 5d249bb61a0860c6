package palette

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// paletteFile is the on-disk TOML representation of a palette.
//
//	[[color]]
//	id = "wht"
//	name = "White"
//	hex = "#FFFFFF"
type paletteFile struct {
	Colors []colorEntry `toml:"color"`
}

type colorEntry struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
	Hex  string `toml:"hex"`
}

// Load reads a palette from a TOML file.
// Each [[color]] table needs an id, a display name, and a #RRGGBB hex
// value. Entry order in the file becomes palette order, so the first
// entry is the background color.
func Load(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read palette file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a TOML palette document.
func Parse(data []byte) (*Palette, error) {
	var f paletteFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse palette file: %w", err)
	}
	if len(f.Colors) == 0 {
		return nil, fmt.Errorf("palette file defines no [[color]] entries")
	}

	colors := make([]Color, 0, len(f.Colors))
	for i, e := range f.Colors {
		c, err := colorful.Hex(e.Hex)
		if err != nil {
			return nil, fmt.Errorf("color %d (%q): invalid hex %q: %w", i, e.ID, e.Hex, err)
		}
		r, g, b := c.RGB255()
		colors = append(colors, Color{ID: e.ID, Name: e.Name, R: r, G: g, B: b})
	}
	return New(colors)
}
