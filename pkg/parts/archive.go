package parts

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Fixed entry names inside the delivery archive.
const (
	PlanEntryName  = "plan.pdf"
	PartsEntryName = "parts.csv"
)

// Package bundles the build document and the parts manifest into a zip
// archive with exactly two entries under fixed names. It is a pure
// function over the two byte buffers; no filesystem is involved, and
// entry metadata is pinned so identical inputs produce identical
// archives.
func Package(planPDF, partsCSV []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := []struct {
		name string
		data []byte
	}{
		{PlanEntryName, planPDF},
		{PartsEntryName, partsCSV},
	}
	for _, e := range entries {
		// A zero Modified time keeps the archive bytes deterministic.
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("create archive entry %s: %w", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			return nil, fmt.Errorf("write archive entry %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
