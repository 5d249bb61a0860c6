package mosaic

import (
	"errors"
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/mhuisman/brickmosaic/pkg/palette"
)

// testPalette returns a small palette with exact primaries.
// White first so it doubles as the background color.
func testPalette(t *testing.T) *palette.Palette {
	t.Helper()
	p, err := palette.New([]palette.Color{
		{ID: "wht", Name: "White", R: 255, G: 255, B: 255},
		{ID: "red", Name: "Red", R: 255, G: 0, B: 0},
		{ID: "blu", Name: "Blue", R: 0, G: 0, B: 255},
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestQuantizeRedBlueHalves(t *testing.T) {
	// 2x2 fully opaque image: top row red, bottom row blue.
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{255, 0, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{0, 0, 255, 255})

	grid, err := Quantize(img, 2, testPalette(t))
	if err != nil {
		t.Fatalf("Quantize error: %v", err)
	}

	want := [2][2]string{{"red", "red"}, {"blu", "blu"}}
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			if got := grid.At(row, col).ID; got != want[row][col] {
				t.Errorf("cell (%d,%d) = %q, want %q", row, col, got, want[row][col])
			}
		}
	}

	m := Build(grid)
	if m.Count("red") != 2 || m.Count("blu") != 2 {
		t.Errorf("counts = %v, want red:2 blu:2", m.Counts())
	}
}

func TestQuantizeAllTransparent(t *testing.T) {
	// Zero-opaque cells fall back to the palette background.
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))

	grid, err := Quantize(img, 8, testPalette(t))
	if err != nil {
		t.Fatalf("Quantize error: %v", err)
	}

	m := Build(grid)
	if got := m.Count("wht"); got != 64 {
		t.Errorf("Count(wht) = %d, want 64", got)
	}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if grid.At(row, col).ID != "wht" {
				t.Fatalf("cell (%d,%d) not background", row, col)
			}
		}
	}
}

func TestQuantizeAlphaWeighting(t *testing.T) {
	// A cell holding one opaque red pixel and three fully transparent
	// pixels averages to pure red, not red diluted toward black.
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})

	grid, err := Quantize(img, 1, testPalette(t))
	if err != nil {
		t.Fatalf("Quantize error: %v", err)
	}
	if got := grid.At(0, 0).ID; got != "red" {
		t.Errorf("cell = %q, want red", got)
	}
}

func TestQuantizeDeterminism(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), uint8((x + y) * 2), 255})
		}
	}
	pal := testPalette(t)

	g1, err := Quantize(img, 16, pal)
	if err != nil {
		t.Fatal(err)
	}
	g2, err := Quantize(img, 16, pal)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(g1.cells, g2.cells) {
		t.Error("identical inputs produced different grids")
	}
}

func TestQuantizeCountsInvariant(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 96, 96))
	for y := 0; y < 96; y++ {
		for x := 0; x < 96; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), uint8(x ^ y), 255})
		}
	}
	pal := palette.Default()

	grid, err := Quantize(img, 12, pal)
	if err != nil {
		t.Fatal(err)
	}
	m := Build(grid)

	total := 0
	for id, n := range m.Counts() {
		if n < 0 {
			t.Errorf("negative count for %q", id)
		}
		if _, ok := pal.ByID(id); !ok {
			t.Errorf("count for color %q not in palette", id)
		}
		total += n
	}
	if total != 12*12 {
		t.Errorf("sum(counts) = %d, want %d", total, 12*12)
	}

	// UsedColors agrees with Counts and follows palette order.
	used := m.UsedColors()
	seen := -1
	for _, cc := range used {
		if cc.Count != m.Count(cc.Color.ID) {
			t.Errorf("UsedColors count mismatch for %q", cc.Color.ID)
		}
		idx := paletteIndex(pal, cc.Color.ID)
		if idx <= seen {
			t.Error("UsedColors not in palette order")
		}
		seen = idx
	}
}

func paletteIndex(p *palette.Palette, id string) int {
	for i, c := range p.Colors() {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func TestQuantizeRejectsBadInput(t *testing.T) {
	pal := testPalette(t)
	square := image.NewRGBA(image.Rect(0, 0, 32, 32))

	tests := []struct {
		name string
		img  image.Image
		n    int
	}{
		{"non-square", image.NewRGBA(image.Rect(0, 0, 64, 32)), 8},
		{"zero grid", square, 0},
		{"negative grid", square, -4},
		{"image smaller than grid", image.NewRGBA(image.Rect(0, 0, 4, 4)), 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Quantize(tt.img, tt.n, pal)
			if err == nil {
				t.Fatal("expected error")
			}
			var inputErr *InvalidInputError
			if !errors.As(err, &inputErr) {
				t.Errorf("error %v is not an InvalidInputError", err)
			}
		})
	}

	// Nil palette
	if _, err := Quantize(square, 8, nil); err == nil {
		t.Error("nil palette should fail")
	}

	// One-pixel tolerance: a 33x32 crop still passes.
	if _, err := Quantize(image.NewRGBA(image.Rect(0, 0, 33, 32)), 8, pal); err != nil {
		t.Errorf("off-by-one crop should pass, got %v", err)
	}
}

func TestDecode(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Error("empty data should fail")
	}
	if _, err := Decode([]byte("not an image")); err == nil {
		t.Error("garbage data should fail")
	}

	var inputErr *InvalidInputError
	_, err := Decode([]byte{0x00, 0x01})
	if !errors.As(err, &inputErr) {
		t.Errorf("decode failure should be InvalidInputError, got %v", err)
	}
}
