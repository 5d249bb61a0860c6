package plan

import (
	"bytes"
	"fmt"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"github.com/mhuisman/brickmosaic/pkg/mosaic"
)

// creationDate pins the PDF metadata timestamp so identical inputs
// produce byte-identical documents.
var creationDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// defaultTitle is used when Config.Title is empty.
const defaultTitle = "Brick Mosaic Build Plan"

// Build renders the model as a paginated PDF: a legend page followed by
// one grid page per tile. Output is deterministic for a given model and
// config.
func Build(m *mosaic.Model, cfg Config) ([]byte, error) {
	if cfg.CellSizeMm < MinCellSizeMm || cfg.CellSizeMm > MaxCellSizeMm {
		return nil, &PlanError{
			Param:  "cellSizeMm",
			Reason: fmt.Sprintf("cell size %.1f mm outside supported range %.1f-%.1f mm", cfg.CellSizeMm, MinCellSizeMm, MaxCellSizeMm),
		}
	}
	n := m.Size()
	if n > MaxPlanGridSize {
		return nil, &PlanError{
			Param:  "gridSize",
			Reason: fmt.Sprintf("grid size %d exceeds pagination maximum %d", n, MaxPlanGridSize),
		}
	}

	pageTiles, err := tiles(n, cfg.CellSizeMm)
	if err != nil {
		return nil, err
	}

	title := cfg.Title
	if title == "" {
		title = defaultTitle
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(creationDate)
	pdf.SetModificationDate(creationDate)
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(false, marginMm)

	writeLegendPage(pdf, m, cfg, title, len(pageTiles))
	for i, tile := range pageTiles {
		writeGridPage(pdf, m, cfg, tile, i+1, len(pageTiles))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// writeLegendPage renders the cover: title, build parameters, a small
// mosaic thumbnail, and the per-color parts table.
func writeLegendPage(pdf *fpdf.Fpdf, m *mosaic.Model, cfg Config, title string, pages int) {
	n := m.Size()
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(marginMm, marginMm+5, title)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.Text(marginMm, marginMm+12,
		fmt.Sprintf("%dx%d bricks, %.1f mm per cell, %d grid pages", n, n, cfg.CellSizeMm, pages))
	pdf.SetTextColor(0, 0, 0)

	// Thumbnail: the whole mosaic scaled into a fixed box, drawn as
	// per-cell rectangles like the grid pages.
	const thumbSizeMm = 60.0
	thumbX := pageWidthMm - marginMm - thumbSizeMm
	thumbY := marginMm + 10.0
	cell := thumbSizeMm / float64(n)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			c := m.Grid().At(row, col)
			pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
			pdf.Rect(thumbX+float64(col)*cell, thumbY+float64(row)*cell, cell, cell, "F")
		}
	}
	pdf.SetDrawColor(120, 120, 120)
	pdf.SetLineWidth(0.2)
	pdf.Rect(thumbX, thumbY, thumbSizeMm, thumbSizeMm, "D")

	// Parts table, palette order.
	y := thumbY + thumbSizeMm + 12.0
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Text(marginMm, y, "Bricks needed")
	y += 7

	pdf.SetFont("Helvetica", "", 10)
	for _, cc := range m.UsedColors() {
		if y > pageHeightMm-marginMm {
			pdf.AddPage()
			y = marginMm + 5
			pdf.SetFont("Helvetica", "", 10)
		}
		pdf.SetFillColor(int(cc.Color.R), int(cc.Color.G), int(cc.Color.B))
		pdf.SetDrawColor(120, 120, 120)
		pdf.Rect(marginMm, y-3.5, 4.5, 4.5, "FD")
		pdf.Text(marginMm+7, y, fmt.Sprintf("%s  %s", cc.Color.Code(), cc.Color.Name))
		pdf.Text(marginMm+70, y, fmt.Sprintf("%d", cc.Count))
		y += 6
	}
}

// writeGridPage renders one tile: header with the tile's absolute cell
// range, coordinate rulers, and the color swatches with legend codes.
func writeGridPage(pdf *fpdf.Fpdf, m *mosaic.Model, cfg Config, tile Tile, page, pages int) {
	pdf.AddPage()
	cell := cfg.CellSizeMm

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(marginMm, marginMm+5, fmt.Sprintf("Section %d of %d", page, pages))
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.Text(marginMm, marginMm+10,
		fmt.Sprintf("rows %d-%d, columns %d-%d", tile.RowStart+1, tile.RowEnd, tile.ColStart+1, tile.ColEnd))
	pdf.SetTextColor(0, 0, 0)

	originX := marginMm + rulerGutterMm
	originY := marginMm + headerHeightMm + rulerGutterMm

	// Coordinate rulers with absolute 1-based indices. Dense grids
	// label every fifth cell to keep the ruler readable.
	step := 1
	if cell < 4 {
		step = 5
	}
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(90, 90, 90)
	for col := tile.ColStart; col < tile.ColEnd; col++ {
		if (col+1)%step != 0 && step > 1 {
			continue
		}
		label := fmt.Sprintf("%d", col+1)
		x := originX + (float64(col-tile.ColStart)+0.5)*cell - pdf.GetStringWidth(label)/2
		pdf.Text(x, originY-2, label)
	}
	for row := tile.RowStart; row < tile.RowEnd; row++ {
		if (row+1)%step != 0 && step > 1 {
			continue
		}
		label := fmt.Sprintf("%d", row+1)
		x := originX - 2 - pdf.GetStringWidth(label)
		y := originY + (float64(row-tile.RowStart)+0.5)*cell + 1.2
		pdf.Text(x, y, label)
	}
	pdf.SetTextColor(0, 0, 0)

	// Cells: filled swatch, thin border, legend code when it fits.
	showCodes := cell >= 4
	codeSize := cell * 1.6
	if codeSize > 9 {
		codeSize = 9
	}
	pdf.SetLineWidth(0.1)
	pdf.SetDrawColor(120, 120, 120)
	for row := tile.RowStart; row < tile.RowEnd; row++ {
		for col := tile.ColStart; col < tile.ColEnd; col++ {
			c := m.Grid().At(row, col)
			x := originX + float64(col-tile.ColStart)*cell
			y := originY + float64(row-tile.RowStart)*cell
			pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
			pdf.Rect(x, y, cell, cell, "FD")

			if !showCodes {
				continue
			}
			pdf.SetFont("Helvetica", "", codeSize)
			if c.Luminance() > 140 {
				pdf.SetTextColor(30, 30, 30)
			} else {
				pdf.SetTextColor(235, 235, 235)
			}
			code := c.Code()
			tx := x + cell/2 - pdf.GetStringWidth(code)/2
			ty := y + cell/2 + codeSize*0.12
			pdf.Text(tx, ty, code)
		}
	}
	pdf.SetTextColor(0, 0, 0)
}
