package mosaic

import (
	"image"
	"runtime"
	"sync"

	"github.com/mhuisman/brickmosaic/pkg/palette"
)

// squareTolerancePx is the allowed width/height mismatch before an
// image is rejected as non-square. Cropping UIs routinely produce
// off-by-one crops; anything beyond that is a caller error.
const squareTolerancePx = 1

// Quantize maps a source image onto an n×n grid of palette colors.
//
// The image is partitioned into n×n equal-area cells. Each cell's
// representative color is the alpha-weighted mean of its pixels; fully
// transparent pixels are excluded, and a cell with no opaque pixels
// falls back to the palette's background color. The representative is
// then mapped to the nearest palette color by squared Euclidean RGB
// distance, ties resolving to the lowest palette index.
//
// The result is a pure function of (pixels, n, palette): identical
// inputs always produce an identical Grid. Cell averaging runs across
// available CPUs, which does not affect the result because cells are
// independent.
//
// The source must be square within a one-pixel tolerance; cropping to
// square is the caller's responsibility.
func Quantize(src image.Image, n int, pal *palette.Palette) (Grid, error) {
	if pal == nil || pal.Len() == 0 {
		return Grid{}, invalidInput("palette", "palette must be non-empty")
	}
	if n < 1 {
		return Grid{}, invalidInput("gridSize", "grid size must be positive, got %d", n)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return Grid{}, invalidInput("image", "image has no pixels (%dx%d)", w, h)
	}
	if diff := w - h; diff > squareTolerancePx || diff < -squareTolerancePx {
		return Grid{}, invalidInput("image", "image must be square, got %dx%d", w, h)
	}
	if w < n || h < n {
		return Grid{}, invalidInput("image", "image %dx%d smaller than grid size %d", w, h, n)
	}

	cells := make([]int, n*n)

	// One worker per CPU, handing out whole rows. Each cell writes to
	// its own slot, so the output is independent of scheduling.
	rows := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < runtime.NumCPU(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range rows {
				for col := 0; col < n; col++ {
					r, g, b, opaque := cellMean(src, bounds, n, row, col)
					if !opaque {
						cells[row*n+col] = 0 // background
						continue
					}
					_, idx := pal.Nearest(r, g, b)
					cells[row*n+col] = idx
				}
			}
		}()
	}
	for row := 0; row < n; row++ {
		rows <- row
	}
	close(rows)
	wg.Wait()

	return Grid{n: n, pal: pal, cells: cells}, nil
}

// cellMean computes the alpha-weighted mean color of one grid cell.
// It returns opaque=false when every pixel in the cell is fully
// transparent.
func cellMean(src image.Image, bounds image.Rectangle, n, row, col int) (r, g, b uint8, opaque bool) {
	w, h := bounds.Dx(), bounds.Dy()
	x0 := bounds.Min.X + col*w/n
	x1 := bounds.Min.X + (col+1)*w/n
	y0 := bounds.Min.Y + row*h/n
	y1 := bounds.Min.Y + (row+1)*h/n

	var sumR, sumG, sumB, sumA uint64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			pr, pg, pb, pa := src.At(x, y).RGBA()
			// RGBA returns alpha-premultiplied 16-bit channels, so
			// summing them and dividing by the alpha sum yields the
			// alpha-weighted mean with transparent pixels excluded.
			sumR += uint64(pr)
			sumG += uint64(pg)
			sumB += uint64(pb)
			sumA += uint64(pa)
		}
	}
	if sumA == 0 {
		return 0, 0, 0, false
	}

	r = uint8((sumR*255 + sumA/2) / sumA)
	g = uint8((sumG*255 + sumA/2) / sumA)
	b = uint8((sumB*255 + sumA/2) / sumA)
	return r, g, b, true
}
