// Package mosaic converts a raster image into an N×N grid of palette
// colors, the central artifact of the conversion pipeline.
//
// The flow is: decode the source bytes, quantize onto a Grid, then wrap
// the Grid in a Model that carries derived per-color counts. A Model is
// read-only once built; every downstream renderer (preview PNG, PDF
// plan, parts manifest) consumes it without copying.
//
// # Usage
//
//	img, err := mosaic.Decode(data)
//	if err != nil {
//	    return err
//	}
//	grid, err := mosaic.Quantize(img, 32, palette.Default())
//	if err != nil {
//	    return err
//	}
//	m := mosaic.Build(grid)
package mosaic

import (
	"github.com/mhuisman/brickmosaic/pkg/palette"
)

// Supported grid size bounds for the public conversion operations.
// Quantize itself accepts any positive size so small fixtures stay
// testable; the pipeline enforces this range on caller input.
const (
	MinGridSize = 8
	MaxGridSize = 128
)

// Grid is a square matrix of palette-color references produced by
// Quantize. Cells are stored as palette indices in row-major order;
// the grid keeps a reference to the palette it was built against so
// lookups stay consistent. A Grid is immutable once produced.
type Grid struct {
	n     int
	pal   *palette.Palette
	cells []int
}

// Size returns the grid dimension N.
func (g Grid) Size() int {
	return g.n
}

// Palette returns the palette the grid was quantized against.
func (g Grid) Palette() *palette.Palette {
	return g.pal
}

// At returns the palette color of the cell at (row, col).
func (g Grid) At(row, col int) palette.Color {
	return g.pal.At(g.cells[row*g.n+col])
}

// ColorCount pairs a palette color with the number of grid cells that
// reference it.
type ColorCount struct {
	Color palette.Color
	Count int
}

// Model is the mosaic grid plus its derived per-color counts.
// The counts are computed once from the grid and never mutated
// independently, so sum(counts) == N*N always holds.
type Model struct {
	grid   Grid
	counts map[string]int
}

// Build computes per-color counts in one pass over the grid and returns
// the read-only model.
func Build(g Grid) *Model {
	counts := make(map[string]int)
	for _, idx := range g.cells {
		counts[g.pal.At(idx).ID]++
	}
	return &Model{grid: g, counts: counts}
}

// Grid returns the underlying grid.
func (m *Model) Grid() Grid {
	return m.grid
}

// Size returns the grid dimension N.
func (m *Model) Size() int {
	return m.grid.n
}

// Count returns the number of cells referencing the color with the
// given ID.
func (m *Model) Count(colorID string) int {
	return m.counts[colorID]
}

// Counts returns a copy of the per-color counts keyed by color ID.
func (m *Model) Counts() map[string]int {
	out := make(map[string]int, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out
}

// UsedColors returns the colors that appear at least once, in palette
// order, each with its count. Palette order keeps legends and manifests
// stable across runs.
func (m *Model) UsedColors() []ColorCount {
	var used []ColorCount
	for _, c := range m.grid.pal.Colors() {
		if n := m.counts[c.ID]; n > 0 {
			used = append(used, ColorCount{Color: c, Count: n})
		}
	}
	return used
}
