// Package pipeline wires the conversion stages into the two operations
// the outside world calls.
//
// This package implements the complete decode → quantize → render
// pipeline used by both the CLI and the HTTP server. Centralizing it
// keeps behavior identical across entry points: the same validation,
// the same defaults, the same caching.
//
// # Architecture
//
// A conversion runs three stages:
//
//  1. Decode: parse the source image bytes
//  2. Quantize: map the image onto an N×N grid of palette colors
//  3. Render: produce the requested artifact (PNG preview, PDF plan,
//     or plan-plus-manifest archive)
//
// Each request is self-contained: no state is shared between
// conversions, so concurrent requests need no locking.
//
// # Usage
//
// Create a Runner and convert:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	png, err := runner.ConvertToPreview(ctx, imageBytes, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
package pipeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/mhuisman/brickmosaic/pkg/mosaic"
	"github.com/mhuisman/brickmosaic/pkg/plan"
	"github.com/mhuisman/brickmosaic/pkg/render"
)

// Default values shared by the CLI and the HTTP server. The grid and
// cell defaults match the classic 32x32 plate preview at 16 px per
// brick and a 7 mm printed cell.
const (
	DefaultGridSize   = 32
	DefaultCellSizePx = 16
	DefaultCellSizeMm = 7.0
)

// Options contains all configuration for a conversion request.
// This struct supports JSON serialization for API requests.
type Options struct {
	// GridSize is the mosaic dimension N (bricks per side).
	GridSize int `json:"grid_size,omitempty"`

	// Preview options
	CellSizePx int  `json:"cell_size_px,omitempty"`
	GridLines  bool `json:"grid_lines,omitempty"`

	// Plan options
	CellSizeMm float64 `json:"cell_size_mm,omitempty"`
	IncludeCSV bool    `json:"include_csv,omitempty"`
	Title      string  `json:"title,omitempty"`

	// Refresh bypasses the artifact cache for this request.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// ValidateForPreview checks option values used by ConvertToPreview and
// applies defaults for unset fields.
func (o *Options) ValidateForPreview() error {
	if err := o.validateGridSize(); err != nil {
		return err
	}
	if o.CellSizePx == 0 {
		o.CellSizePx = DefaultCellSizePx
	}
	o.setLoggerDefault()
	return nil
}

// ValidateForPlan checks option values used by ConvertToPlan and
// applies defaults for unset fields.
func (o *Options) ValidateForPlan() error {
	if err := o.validateGridSize(); err != nil {
		return err
	}
	if o.CellSizeMm == 0 {
		o.CellSizeMm = DefaultCellSizeMm
	}
	o.setLoggerDefault()
	return nil
}

func (o *Options) validateGridSize() error {
	if o.GridSize == 0 {
		o.GridSize = DefaultGridSize
	}
	if o.GridSize < mosaic.MinGridSize || o.GridSize > mosaic.MaxGridSize {
		return &mosaic.InvalidInputError{
			Param:  "gridSize",
			Reason: fmt.Sprintf("grid size %d outside supported range %d-%d", o.GridSize, mosaic.MinGridSize, mosaic.MaxGridSize),
		}
	}
	return nil
}

func (o *Options) setLoggerDefault() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// renderConfig returns the preview renderer configuration.
func (o *Options) renderConfig() render.Config {
	return render.Config{CellSizePx: o.CellSizePx, GridLines: o.GridLines}
}

// planConfig returns the plan builder configuration.
func (o *Options) planConfig() plan.Config {
	return plan.Config{CellSizeMm: o.CellSizeMm, Title: o.Title}
}
