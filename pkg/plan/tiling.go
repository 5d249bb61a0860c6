// Package plan lays out a mosaic model as a printable, paginated PDF
// build document.
//
// The N×N grid is split into tiles that each fit one A4 page at the
// requested physical cell size. Tile boundaries always align on cell
// edges, and every page is labeled with its absolute row/column range
// so printed pages can be assembled unambiguously. A legend page lists
// every color that appears in the mosaic with its code, name and count.
package plan

import (
	"fmt"

	"github.com/mhuisman/brickmosaic/pkg/mosaic"
)

// Physical page layout constants, in millimeters. A4 portrait matches
// the medium the original plans were printed on.
const (
	pageWidthMm  = 210.0
	pageHeightMm = 297.0
	marginMm     = 15.0

	// rulerGutterMm reserves space for the row/column coordinate rulers
	// to the left of and above the grid.
	rulerGutterMm = 8.0

	// headerHeightMm reserves space for the per-page tile label.
	headerHeightMm = 12.0
)

// Supported physical cell sizes. Below MinCellSizeMm a printed cell is
// too small to read its legend code or place a brick against.
const (
	MinCellSizeMm = 2.0
	MaxCellSizeMm = 20.0
)

// MaxPlanGridSize is the largest grid the paginator accepts.
const MaxPlanGridSize = mosaic.MaxGridSize

// Config controls plan generation. It has no effect on the grid.
type Config struct {
	// CellSizeMm is the printed size of one cell.
	CellSizeMm float64

	// Title is printed on the legend page. Empty picks a default.
	Title string
}

// PlanError reports a pagination or physical-size constraint violation.
type PlanError struct {
	Param  string
	Reason string
}

// Error implements the error interface.
func (e *PlanError) Error() string {
	return fmt.Sprintf("plan: %s: %s", e.Param, e.Reason)
}

// Tile is one page's worth of contiguous grid cells.
// Row/column bounds are half-open cell indices into the full grid.
type Tile struct {
	RowStart, RowEnd int
	ColStart, ColEnd int
}

// Rows returns the number of cell rows in the tile.
func (t Tile) Rows() int { return t.RowEnd - t.RowStart }

// Cols returns the number of cell columns in the tile.
func (t Tile) Cols() int { return t.ColEnd - t.ColStart }

// tileCapacity returns how many cell columns and rows fit on one page
// at the given cell size.
func tileCapacity(cellMm float64) (cols, rows int) {
	gridW := pageWidthMm - 2*marginMm - rulerGutterMm
	gridH := pageHeightMm - 2*marginMm - rulerGutterMm - headerHeightMm
	return int(gridW / cellMm), int(gridH / cellMm)
}

// tiles splits an n×n grid into row-major page tiles at the given cell
// size. The split is a pure function of (n, cellMm): the union of all
// tiles covers the grid exactly once, and no cell spans two tiles.
func tiles(n int, cellMm float64) ([]Tile, error) {
	cols, rows := tileCapacity(cellMm)
	if cols < 1 || rows < 1 {
		return nil, &PlanError{
			Param:  "cellSizeMm",
			Reason: fmt.Sprintf("cell size %.1f mm leaves no room for cells on a page", cellMm),
		}
	}

	var out []Tile
	for r0 := 0; r0 < n; r0 += rows {
		r1 := min(r0+rows, n)
		for c0 := 0; c0 < n; c0 += cols {
			c1 := min(c0+cols, n)
			out = append(out, Tile{RowStart: r0, RowEnd: r1, ColStart: c0, ColEnd: c1})
		}
	}
	return out, nil
}
