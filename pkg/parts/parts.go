// Package parts exports the per-color brick counts of a mosaic as an
// orderable manifest, and bundles it with the build document on request.
package parts

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"github.com/mhuisman/brickmosaic/pkg/mosaic"
)

// csvHeader is the fixed manifest header row.
var csvHeader = []string{"color_id", "color_name", "rgb_hex", "quantity"}

// ExportCSV writes the parts manifest: one row per color with a
// non-zero count, sorted by descending quantity and then by color ID.
// The ordering is total, so identical models yield byte-identical
// output.
func ExportCSV(m *mosaic.Model) ([]byte, error) {
	used := m.UsedColors()
	sort.Slice(used, func(i, j int) bool {
		if used[i].Count != used[j].Count {
			return used[i].Count > used[j].Count
		}
		return used[i].Color.ID < used[j].Color.ID
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write manifest header: %w", err)
	}
	for _, cc := range used {
		row := []string{cc.Color.ID, cc.Color.Name, cc.Color.Hex(), strconv.Itoa(cc.Count)}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write manifest row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush manifest: %w", err)
	}
	return buf.Bytes(), nil
}
