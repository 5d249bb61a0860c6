package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhuisman/brickmosaic/pkg/pipeline"
)

// planOpts holds the command-line flags for the plan command.
type planOpts struct {
	output      string  // output path, derived from input when empty
	bricks      int     // grid size N (bricks per side)
	cellMm      float64 // printed cell size in millimeters
	includeCSV  bool    // bundle the parts manifest into a zip
	title       string  // plan title on the legend page
	palettePath string  // TOML palette file, built-in catalog when empty
	useCache    bool    // reuse cached artifacts
	refresh     bool    // bypass the cache for this run
}

// newPlanCmd creates the plan command for generating the printable PDF
// build document. With --csv the document and the parts manifest are
// bundled into a single zip archive.
func newPlanCmd() *cobra.Command {
	opts := planOpts{
		bricks: pipeline.DefaultGridSize,
		cellMm: pipeline.DefaultCellSizeMm,
	}

	cmd := &cobra.Command{
		Use:   "plan [image]",
		Short: "Generate a printable PDF build plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>_plan.pdf or .zip)")
	cmd.Flags().IntVarP(&opts.bricks, "bricks", "b", opts.bricks, "grid size in bricks per side (8-128)")
	cmd.Flags().Float64Var(&opts.cellMm, "cell-mm", opts.cellMm, "printed cell size in millimeters")
	cmd.Flags().BoolVar(&opts.includeCSV, "csv", false, "bundle a parts manifest CSV with the plan")
	cmd.Flags().StringVar(&opts.title, "title", "", "plan title on the legend page")
	cmd.Flags().StringVar(&opts.palettePath, "palette", "", "TOML palette file (default: built-in catalog)")
	cmd.Flags().BoolVar(&opts.useCache, "cache", false, "cache converted artifacts")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts")

	return cmd
}

// runPlan reads the source image, runs the conversion pipeline, and
// writes the plan document or archive.
func runPlan(ctx context.Context, input string, opts *planOpts) error {
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

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Building plan for %s...", input))
	spinner.Start()

	prog := newProgress(logger)
	result, err := runner.ConvertToPlan(ctx, data, pipeline.Options{
		GridSize:   opts.bricks,
		CellSizeMm: opts.cellMm,
		IncludeCSV: opts.includeCSV,
		Title:      opts.title,
		Refresh:    opts.refresh,
		Logger:     logger,
	})
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Plan failed: %v", err))
		return err
	}

	suffix := "_plan.pdf"
	if result.Archived {
		suffix = "_plan.zip"
	}
	out := outputPath(opts.output, input, suffix)
	if err := os.WriteFile(out, result.Data, 0644); err != nil {
		spinner.StopWithError(fmt.Sprintf("Write failed: %v", err))
		return err
	}

	spinner.StopWithSuccess(fmt.Sprintf("Planned %dx%d build at %.1f mm per brick", opts.bricks, opts.bricks, opts.cellMm))
	prog.done(fmt.Sprintf("Wrote %d bytes", len(result.Data)))
	if result.Archived {
		printDetail("archive contains plan.pdf and parts.csv")
	}
	printFile(out)
	return nil
}
