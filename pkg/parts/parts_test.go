package parts

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"image"
	"image/color"
	"io"
	"strconv"
	"testing"

	"github.com/mhuisman/brickmosaic/pkg/mosaic"
	"github.com/mhuisman/brickmosaic/pkg/palette"
)

// quadrantModel builds an 8x8 model from a source split into four solid
// quadrants, so several palette colors appear with known counts.
func quadrantModel(t *testing.T) *mosaic.Model {
	t.Helper()
	pal, err := palette.New([]palette.Color{
		{ID: "wht", Name: "White", R: 255, G: 255, B: 255},
		{ID: "red", Name: "Red", R: 255, G: 0, B: 0},
		{ID: "blu", Name: "Blue", R: 0, G: 0, B: 255},
		{ID: "grn", Name: "Green", R: 0, G: 200, B: 0},
	})
	if err != nil {
		t.Fatal(err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			switch {
			case x < 8 && y < 8:
				img.Set(x, y, color.RGBA{255, 0, 0, 255})
			case y < 8:
				img.Set(x, y, color.RGBA{0, 0, 255, 255})
			default:
				img.Set(x, y, color.RGBA{0, 200, 0, 255})
			}
		}
	}
	grid, err := mosaic.Quantize(img, 8, pal)
	if err != nil {
		t.Fatal(err)
	}
	return mosaic.Build(grid)
}

func TestExportCSV(t *testing.T) {
	m := quadrantModel(t)
	data, err := ExportCSV(m)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 4 { // header + 3 colors (white never appears)
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	if rows[0][0] != "color_id" || rows[0][3] != "quantity" {
		t.Errorf("unexpected header %v", rows[0])
	}

	// Green fills half the grid (32), red and blue a quarter each (16).
	// Descending quantity, ties by ID: grn, blu, red.
	wantOrder := []string{"grn", "blu", "red"}
	wantCount := []int{32, 16, 16}
	for i, id := range wantOrder {
		row := rows[i+1]
		if row[0] != id {
			t.Errorf("row %d id = %q, want %q", i+1, row[0], id)
		}
		qty, err := strconv.Atoi(row[3])
		if err != nil || qty != wantCount[i] {
			t.Errorf("row %d quantity = %q, want %d", i+1, row[3], wantCount[i])
		}
	}
}

func TestExportCSVDeterminism(t *testing.T) {
	m := quadrantModel(t)
	a, err := ExportCSV(m)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ExportCSV(m)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical models produced different manifests")
	}
}

func TestPackage(t *testing.T) {
	planData := []byte("%PDF-1.4 fake plan")
	csvData := []byte("color_id,color_name,rgb_hex,quantity\n")

	data, err := Package(planData, csvData)
	if err != nil {
		t.Fatalf("Package: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("archive has %d entries, want 2", len(zr.File))
	}

	want := map[string][]byte{
		PlanEntryName:  planData,
		PartsEntryName: csvData,
	}
	for _, f := range zr.File {
		expected, ok := want[f.Name]
		if !ok {
			t.Errorf("unexpected entry %q", f.Name)
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		got, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, expected) {
			t.Errorf("entry %q content mismatch", f.Name)
		}
	}
}

func TestPackageDeterminism(t *testing.T) {
	// Entry count and bytes are stable regardless of payload size.
	big := bytes.Repeat([]byte{0xAB}, 1<<16)
	a, err := Package(big, []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Package(big, []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical inputs produced different archives")
	}

	zr, err := zip.NewReader(bytes.NewReader(a), int64(len(a)))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 2 {
		t.Errorf("archive has %d entries, want 2", len(zr.File))
	}
}
