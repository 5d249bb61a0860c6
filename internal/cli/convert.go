package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhuisman/brickmosaic/pkg/pipeline"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	output      string // output PNG path, derived from input when empty
	bricks      int    // grid size N (bricks per side)
	cellSize    int    // preview pixels per brick
	gridLines   bool   // draw separators between cells
	palettePath string // TOML palette file, built-in catalog when empty
	useCache    bool   // reuse cached artifacts from ~/.cache/brickmosaic
	refresh     bool   // bypass the cache for this run
}

// newConvertCmd creates the convert command for rendering mosaic
// previews. The source image must be square (cropped by the caller);
// the output is a PNG of exactly bricks*cell-size pixels per side.
func newConvertCmd() *cobra.Command {
	opts := convertOpts{
		bricks:   pipeline.DefaultGridSize,
		cellSize: pipeline.DefaultCellSizePx,
	}

	cmd := &cobra.Command{
		Use:   "convert [image]",
		Short: "Render a mosaic preview PNG from a square source image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>_mosaic.png)")
	cmd.Flags().IntVarP(&opts.bricks, "bricks", "b", opts.bricks, "grid size in bricks per side (8-128)")
	cmd.Flags().IntVar(&opts.cellSize, "cell-size", opts.cellSize, "preview pixels per brick")
	cmd.Flags().BoolVar(&opts.gridLines, "grid-lines", false, "draw grid lines between cells")
	cmd.Flags().StringVar(&opts.palettePath, "palette", "", "TOML palette file (default: built-in catalog)")
	cmd.Flags().BoolVar(&opts.useCache, "cache", false, "cache converted artifacts")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts")

	return cmd
}

// runConvert reads the source image, runs the conversion pipeline, and
// writes the preview PNG.
func runConvert(ctx context.Context, input string, opts *convertOpts) error {
	logger := loggerFromContext(ctx)

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	runner, cleanup, err := buildRunner(ctx, opts.palettePath, opts.useCache)
	if err != nil {
		return err
	}
	defer cleanup()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Converting %s...", input))
	spinner.Start()

	prog := newProgress(logger)
	png, err := runner.ConvertToPreview(ctx, data, pipeline.Options{
		GridSize:   opts.bricks,
		CellSizePx: opts.cellSize,
		GridLines:  opts.gridLines,
		Refresh:    opts.refresh,
		Logger:     logger,
	})
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Conversion failed: %v", err))
		return err
	}

	out := outputPath(opts.output, input, "_mosaic.png")
	if err := os.WriteFile(out, png, 0644); err != nil {
		spinner.StopWithError(fmt.Sprintf("Write failed: %v", err))
		return err
	}

	spinner.StopWithSuccess(fmt.Sprintf("Converted %dx%d mosaic", opts.bricks, opts.bricks))
	prog.done(fmt.Sprintf("Rendered %d bytes", len(png)))
	printDetail("%d px per side", opts.bricks*opts.cellSize)
	printFile(out)
	return nil
}
