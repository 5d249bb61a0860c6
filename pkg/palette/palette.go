// Package palette defines the fixed catalog of buildable brick colors.
//
// A Palette is an ordered, immutable sequence of colors loaded once at
// startup. Order matters: the first entry is the background color used
// for fully transparent regions, and nearest-color ties during
// quantization resolve to the lowest palette index.
//
// # Usage
//
// Use the built-in catalog or load one from a TOML file:
//
//	pal := palette.Default()
//
//	pal, err := palette.Load("colors.toml")
//	if err != nil {
//	    return err
//	}
//
//	c, _ := pal.Nearest(200, 30, 10)
//	fmt.Println(c.Name, c.Code())
package palette

import (
	"fmt"
	"strings"
)

// Color is a single buildable brick color.
// The ID is a short stable slug (e.g. "wht") used for legend codes and
// parts manifests; it never changes between runs.
type Color struct {
	ID   string
	Name string
	R    uint8
	G    uint8
	B    uint8
}

// Code returns the stable legend code for the color, derived from its ID.
func (c Color) Code() string {
	return strings.ToUpper(c.ID)
}

// Hex returns the color as an uppercase #RRGGBB string.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Luminance returns the perceived brightness in [0,255], used to pick a
// readable text color on top of a swatch.
func (c Color) Luminance() float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// Palette is an ordered set of colors with unique IDs and unique RGB
// values. It is immutable after construction.
type Palette struct {
	colors []Color
	byID   map[string]int
}

// New builds a palette from an ordered list of colors.
// It returns an error if the list is empty, or if any ID or RGB triple
// appears twice.
func New(colors []Color) (*Palette, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("palette must contain at least one color")
	}

	byID := make(map[string]int, len(colors))
	byRGB := make(map[[3]uint8]string, len(colors))
	for i, c := range colors {
		if c.ID == "" {
			return nil, fmt.Errorf("palette color %d (%q) has empty id", i, c.Name)
		}
		if _, ok := byID[c.ID]; ok {
			return nil, fmt.Errorf("duplicate palette color id %q", c.ID)
		}
		rgb := [3]uint8{c.R, c.G, c.B}
		if other, ok := byRGB[rgb]; ok {
			return nil, fmt.Errorf("palette colors %q and %q share rgb %s", other, c.ID, c.Hex())
		}
		byID[c.ID] = i
		byRGB[rgb] = c.ID
	}

	return &Palette{colors: append([]Color(nil), colors...), byID: byID}, nil
}

// Len returns the number of colors in the palette.
func (p *Palette) Len() int {
	return len(p.colors)
}

// Colors returns a copy of the ordered color list.
func (p *Palette) Colors() []Color {
	return append([]Color(nil), p.colors...)
}

// At returns the color at palette index i.
func (p *Palette) At(i int) Color {
	return p.colors[i]
}

// Background returns the designated background color, by convention the
// first palette entry. It fills grid cells with no opaque source pixels.
func (p *Palette) Background() Color {
	return p.colors[0]
}

// ByID looks up a color by its stable identifier.
func (p *Palette) ByID(id string) (Color, bool) {
	i, ok := p.byID[id]
	if !ok {
		return Color{}, false
	}
	return p.colors[i], true
}

// Nearest returns the palette color closest to (r, g, b) by squared
// Euclidean distance in RGB space, along with its palette index.
// Ties resolve to the lowest index, which keeps quantization
// deterministic across runs.
func (p *Palette) Nearest(r, g, b uint8) (Color, int) {
	best := 0
	bestDist := distSq(p.colors[0], r, g, b)
	for i := 1; i < len(p.colors); i++ {
		if d := distSq(p.colors[i], r, g, b); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return p.colors[best], best
}

func distSq(c Color, r, g, b uint8) int {
	dr := int(c.R) - int(r)
	dg := int(c.G) - int(g)
	db := int(c.B) - int(b)
	return dr*dr + dg*dg + db*db
}

// Default returns the built-in buildable-brick catalog.
// White is first so it serves as the background color for transparent
// regions. The values follow common brick colors and are perceptually
// distinct to avoid nearest-color ties.
func Default() *Palette {
	p, err := New([]Color{
		{ID: "wht", Name: "White", R: 255, G: 255, B: 255},
		{ID: "blk", Name: "Black", R: 27, G: 42, B: 52},
		{ID: "lgy", Name: "Light Grey", R: 160, G: 165, B: 169},
		{ID: "dgy", Name: "Dark Grey", R: 108, G: 110, B: 104},
		{ID: "red", Name: "Red", R: 201, G: 26, B: 9},
		{ID: "drd", Name: "Dark Red", R: 114, G: 14, B: 15},
		{ID: "blu", Name: "Blue", R: 0, G: 85, B: 191},
		{ID: "dbl", Name: "Dark Blue", R: 10, G: 52, B: 99},
		{ID: "ylw", Name: "Yellow", R: 242, G: 205, B: 55},
		{ID: "orn", Name: "Orange", R: 254, G: 138, B: 24},
		{ID: "grn", Name: "Green", R: 35, G: 120, B: 65},
		{ID: "lim", Name: "Lime", R: 165, G: 202, B: 24},
		{ID: "brn", Name: "Brown", R: 88, G: 42, B: 18},
		{ID: "tan", Name: "Tan", R: 228, G: 205, B: 158},
		{ID: "nug", Name: "Nougat", R: 204, G: 142, B: 105},
		{ID: "pnk", Name: "Bright Pink", R: 228, G: 173, B: 200},
	})
	if err != nil {
		// The built-in catalog is validated by tests; a failure here is
		// a programming error.
		panic(err)
	}
	return p
}
