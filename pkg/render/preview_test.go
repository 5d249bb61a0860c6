package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/mhuisman/brickmosaic/pkg/mosaic"
	"github.com/mhuisman/brickmosaic/pkg/palette"
)

// buildModel quantizes a flat red n×n source against a red/white
// palette, yielding an all-red model.
func buildModel(t *testing.T, n int) *mosaic.Model {
	t.Helper()
	pal, err := palette.New([]palette.Color{
		{ID: "wht", Name: "White", R: 255, G: 255, B: 255},
		{ID: "red", Name: "Red", R: 255, G: 0, B: 0},
	})
	if err != nil {
		t.Fatal(err)
	}

	img := image.NewRGBA(image.Rect(0, 0, n*2, n*2))
	for y := 0; y < n*2; y++ {
		for x := 0; x < n*2; x++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	grid, err := mosaic.Quantize(img, n, pal)
	if err != nil {
		t.Fatal(err)
	}
	return mosaic.Build(grid)
}

func TestPreviewDimensions(t *testing.T) {
	tests := []struct {
		n, cell int
	}{
		{8, 1},
		{16, 4},
		{32, 10}, // 320x320
	}
	for _, tt := range tests {
		m := buildModel(t, tt.n)
		data, err := Preview(m, Config{CellSizePx: tt.cell})
		if err != nil {
			t.Fatalf("Preview(n=%d, cell=%d): %v", tt.n, tt.cell, err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("output is not a PNG: %v", err)
		}
		want := tt.n * tt.cell
		if img.Bounds().Dx() != want || img.Bounds().Dy() != want {
			t.Errorf("output %dx%d, want %dx%d", img.Bounds().Dx(), img.Bounds().Dy(), want, want)
		}
	}
}

func TestPreviewExactSwatches(t *testing.T) {
	m := buildModel(t, 8)
	data, err := Preview(m, Config{CellSizePx: 4})
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	// Every pixel must be the exact palette red, no blending.
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
				t.Fatalf("pixel (%d,%d) = %d,%d,%d, want 255,0,0", x, y, r>>8, g>>8, b>>8)
			}
		}
	}
}

func TestPreviewBounds(t *testing.T) {
	m := buildModel(t, 8)
	for _, cell := range []int{0, -1, MaxCellSizePx + 1} {
		_, err := Preview(m, Config{CellSizePx: cell})
		if err == nil {
			t.Errorf("cell size %d should fail", cell)
			continue
		}
		var renderErr *RenderError
		if !errors.As(err, &renderErr) {
			t.Errorf("error %v is not a RenderError", err)
		}
	}
}

func TestPreviewGridLines(t *testing.T) {
	m := buildModel(t, 8)
	plain, err := Preview(m, Config{CellSizePx: 8})
	if err != nil {
		t.Fatal(err)
	}
	lined, err := Preview(m, Config{CellSizePx: 8, GridLines: true})
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(plain, lined) {
		t.Error("grid lines should change the output")
	}

	// Dimensions are unchanged by grid lines.
	img, err := png.Decode(bytes.NewReader(lined))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 {
		t.Errorf("lined output width %d, want 64", img.Bounds().Dx())
	}
}
