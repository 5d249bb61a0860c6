// Package render rasterizes a mosaic model into a viewable PNG preview.
//
// Every grid cell becomes a solid square of its palette color with no
// blending between neighbors, so the preview shows exact color swatches
// rather than smoothed imagery. Optional grid lines are a presentation
// choice and do not affect cell colors.
package render

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"

	"github.com/mhuisman/brickmosaic/pkg/mosaic"
)

// Supported cell pixel sizes. The upper bound caps the output at
// 128*64 = 8192 px per side, which keeps memory use practical.
const (
	MinCellSizePx = 1
	MaxCellSizePx = 64
)

// Config controls preview rendering. It has no effect on the grid.
type Config struct {
	// CellSizePx is the output pixel size of each grid cell.
	CellSizePx int

	// GridLines draws thin separators between cells.
	GridLines bool
}

// RenderError reports a preview request outside the supported output
// bounds.
type RenderError struct {
	Param  string
	Reason string
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render: %s: %s", e.Param, e.Reason)
}

// Preview rasterizes the model as a PNG of exactly
// N*CellSizePx × N*CellSizePx pixels.
func Preview(m *mosaic.Model, cfg Config) ([]byte, error) {
	if cfg.CellSizePx < MinCellSizePx || cfg.CellSizePx > MaxCellSizePx {
		return nil, &RenderError{
			Param:  "cellSizePx",
			Reason: fmt.Sprintf("cell size %d outside supported range %d-%d", cfg.CellSizePx, MinCellSizePx, MaxCellSizePx),
		}
	}

	n := m.Size()
	cell := cfg.CellSizePx
	dc := gg.NewContext(n*cell, n*cell)

	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			c := m.Grid().At(row, col)
			dc.SetRGB255(int(c.R), int(c.G), int(c.B))
			dc.DrawRectangle(float64(col*cell), float64(row*cell), float64(cell), float64(cell))
			dc.Fill()
		}
	}

	if cfg.GridLines && cell > 2 {
		dc.SetRGBA255(0, 0, 0, 70)
		dc.SetLineWidth(1)
		for i := 1; i < n; i++ {
			p := float64(i * cell)
			dc.DrawLine(p, 0, p, float64(n*cell))
			dc.DrawLine(0, p, float64(n*cell), p)
		}
		dc.Stroke()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
