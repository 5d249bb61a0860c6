package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/mhuisman/brickmosaic/pkg/mosaic"
	"github.com/mhuisman/brickmosaic/pkg/pipeline"
	"github.com/mhuisman/brickmosaic/pkg/plan"
	"github.com/mhuisman/brickmosaic/pkg/render"
)

// handleHealth reports liveness.
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// paletteEntry is one color in the palette listing.
type paletteEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
	Hex  string `json:"hex"`
}

// handlePalette returns the brick color catalog. The first entry is
// the background color used for fully transparent regions.
func (s *server) handlePalette(w http.ResponseWriter, r *http.Request) {
	colors := s.runner.Palette().Colors()
	entries := make([]paletteEntry, len(colors))
	for i, c := range colors {
		entries[i] = paletteEntry{ID: c.ID, Name: c.Name, Code: c.Code(), Hex: c.Hex()}
	}
	writeJSON(w, http.StatusOK, map[string]any{"colors": entries})
}

// handleConvertPNG converts an uploaded image into the mosaic preview.
func (s *server) handleConvertPNG(w http.ResponseWriter, r *http.Request) {
	imageBytes, opts, err := s.parseConvertRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, err := s.runner.ConvertToPreview(r.Context(), imageBytes, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `inline; filename="mosaic.png"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// handleConvertPDF converts an uploaded image into the printable build
// plan, optionally bundled with the parts manifest.
func (s *server) handleConvertPDF(w http.ResponseWriter, r *http.Request) {
	imageBytes, opts, err := s.parseConvertRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.runner.ConvertToPlan(r.Context(), imageBytes, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if result.Archived {
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="mosaic_plan.zip"`)
	} else {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="mosaic_plan.pdf"`)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Write(result.Data)
}

// parseConvertRequest reads the multipart upload shared by both
// conversion endpoints. The image arrives in the "file" part; the
// remaining form fields map onto pipeline options and fall back to the
// pipeline defaults when absent.
func (s *server) parseConvertRequest(r *http.Request) ([]byte, pipeline.Options, error) {
	var opts pipeline.Options

	r.Body = http.MaxBytesReader(nil, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		return nil, opts, &mosaic.InvalidInputError{Param: "file", Reason: "request is not a valid multipart upload"}
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, opts, &mosaic.InvalidInputError{Param: "file", Reason: "missing file upload"}
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, opts, fmt.Errorf("read upload: %w", err)
	}

	if v := r.FormValue("bricks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, opts, &mosaic.InvalidInputError{Param: "bricks", Reason: fmt.Sprintf("not an integer: %q", v)}
		}
		opts.GridSize = n
	}
	if v := r.FormValue("cell_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, opts, &mosaic.InvalidInputError{Param: "cell_size", Reason: fmt.Sprintf("not an integer: %q", v)}
		}
		opts.CellSizePx = n
	}
	if v := r.FormValue("cell_size_mm"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, opts, &mosaic.InvalidInputError{Param: "cell_size_mm", Reason: fmt.Sprintf("not a number: %q", v)}
		}
		opts.CellSizeMm = f
	}
	opts.GridLines = formBool(r, "grid_lines")
	opts.IncludeCSV = formBool(r, "include_csv")
	opts.Refresh = formBool(r, "refresh")
	opts.Title = r.FormValue("title")
	opts.Logger = s.logger

	return imageBytes, opts, nil
}

func formBool(r *http.Request, name string) bool {
	switch r.FormValue(name) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// writeError maps pipeline errors onto HTTP status codes. Invalid
// uploads and parameters are 400, values that decode fine but cannot
// be rendered are 422, everything else is 500.
func (s *server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var invalid *mosaic.InvalidInputError
	var renderErr *render.RenderError
	var planErr *plan.PlanError
	switch {
	case errors.As(err, &invalid):
		status = http.StatusBadRequest
	case errors.As(err, &renderErr), errors.As(err, &planErr):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("conversion failed", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
