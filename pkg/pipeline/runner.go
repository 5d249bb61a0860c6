package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mhuisman/brickmosaic/pkg/cache"
	"github.com/mhuisman/brickmosaic/pkg/mosaic"
	"github.com/mhuisman/brickmosaic/pkg/palette"
	"github.com/mhuisman/brickmosaic/pkg/parts"
	"github.com/mhuisman/brickmosaic/pkg/plan"
	"github.com/mhuisman/brickmosaic/pkg/render"
)

// cacheTTL bounds how long converted artifacts stay cached. The
// pipeline is deterministic, so the TTL only limits storage growth.
const cacheTTL = 24 * time.Hour

// Runner executes conversions against a fixed palette with optional
// artifact caching. A Runner is safe for concurrent use: every request
// operates only on its own inputs.
type Runner struct {
	pal    *palette.Palette
	cache  cache.Cache
	logger *log.Logger
}

// PlanResult is the outcome of ConvertToPlan.
type PlanResult struct {
	// Data holds the PDF document, or the zip archive when the request
	// asked for the parts manifest as well.
	Data []byte

	// Archived reports whether Data is a zip archive rather than a
	// bare PDF.
	Archived bool
}

// NewRunner creates a pipeline runner. A nil palette selects the
// built-in catalog, a nil cache disables caching, and a nil logger
// discards log output.
func NewRunner(pal *palette.Palette, c cache.Cache, logger *log.Logger) *Runner {
	if pal == nil {
		pal = palette.Default()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{pal: pal, cache: c, logger: logger}
}

// Palette returns the palette conversions run against.
func (r *Runner) Palette() *palette.Palette {
	return r.pal
}

// ConvertToPreview quantizes the image and renders the mosaic preview
// PNG. Errors are InvalidInputError (bad image or grid size) or
// RenderError (cell size out of range).
func (r *Runner) ConvertToPreview(ctx context.Context, imageBytes []byte, opts Options) ([]byte, error) {
	if err := opts.ValidateForPreview(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	key := cache.PreviewKey(cache.Hash(imageBytes), opts.GridSize, opts.CellSizePx, opts.GridLines)
	if data, ok := r.cacheGet(ctx, key, opts, logger); ok {
		return data, nil
	}

	start := time.Now()
	m, err := r.quantize(imageBytes, opts.GridSize)
	if err != nil {
		return nil, err
	}
	data, err := render.Preview(m, opts.renderConfig())
	if err != nil {
		return nil, err
	}
	logger.Debug("preview rendered",
		"grid", opts.GridSize, "cell_px", opts.CellSizePx,
		"bytes", len(data), "took", time.Since(start).Round(time.Millisecond))

	r.cacheSet(ctx, key, data, logger)
	return data, nil
}

// ConvertToPlan quantizes the image and builds the printable
// instruction document. With IncludeCSV the document and the parts
// manifest are bundled into a two-entry archive. Errors are
// InvalidInputError or PlanError.
func (r *Runner) ConvertToPlan(ctx context.Context, imageBytes []byte, opts Options) (*PlanResult, error) {
	if err := opts.ValidateForPlan(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	key := cache.PlanKey(cache.Hash(imageBytes), opts.GridSize, opts.CellSizeMm, opts.IncludeCSV)
	if data, ok := r.cacheGet(ctx, key, opts, logger); ok {
		return &PlanResult{Data: data, Archived: opts.IncludeCSV}, nil
	}

	start := time.Now()
	m, err := r.quantize(imageBytes, opts.GridSize)
	if err != nil {
		return nil, err
	}
	doc, err := plan.Build(m, opts.planConfig())
	if err != nil {
		return nil, err
	}

	result := &PlanResult{Data: doc}
	if opts.IncludeCSV {
		manifest, err := parts.ExportCSV(m)
		if err != nil {
			return nil, err
		}
		archive, err := parts.Package(doc, manifest)
		if err != nil {
			return nil, err
		}
		result = &PlanResult{Data: archive, Archived: true}
	}
	logger.Debug("plan built",
		"grid", opts.GridSize, "cell_mm", opts.CellSizeMm, "archived", result.Archived,
		"bytes", len(result.Data), "took", time.Since(start).Round(time.Millisecond))

	r.cacheSet(ctx, key, result.Data, logger)
	return result, nil
}

// quantize runs decode → quantize → build for one request.
func (r *Runner) quantize(imageBytes []byte, gridSize int) (*mosaic.Model, error) {
	img, err := mosaic.Decode(imageBytes)
	if err != nil {
		return nil, err
	}
	grid, err := mosaic.Quantize(img, gridSize, r.pal)
	if err != nil {
		return nil, err
	}
	return mosaic.Build(grid), nil
}

// cacheGet looks up a finished artifact. Cache failures degrade to a
// miss; the conversion still runs.
func (r *Runner) cacheGet(ctx context.Context, key string, opts Options, logger *log.Logger) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	data, hit, err := r.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache get failed", "err", err)
		return nil, false
	}
	if hit {
		logger.Debug("cache hit", "key", key[:16])
	}
	return data, hit
}

// cacheSet stores a finished artifact. Failures are logged, not fatal.
func (r *Runner) cacheSet(ctx context.Context, key string, data []byte, logger *log.Logger) {
	if err := r.cache.Set(ctx, key, data, cacheTTL); err != nil {
		logger.Warn("cache set failed", "err", err)
	}
}
