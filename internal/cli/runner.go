package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mhuisman/brickmosaic/pkg/cache"
	"github.com/mhuisman/brickmosaic/pkg/palette"
	"github.com/mhuisman/brickmosaic/pkg/pipeline"
)

// defaultCacheDir returns the artifact cache location for CLI usage,
// ~/.cache/brickmosaic.
func defaultCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "brickmosaic"), nil
}

// loadPalette returns the palette for a conversion: the built-in
// catalog, or the TOML file given via --palette.
func loadPalette(path string) (*palette.Palette, error) {
	if path == "" {
		return palette.Default(), nil
	}
	return palette.Load(path)
}

// buildRunner assembles a pipeline runner for a CLI conversion.
// Caching is opt-in via --cache and uses the file backend. The
// returned cleanup closes the cache.
func buildRunner(ctx context.Context, palettePath string, useCache bool) (*pipeline.Runner, func(), error) {
	pal, err := loadPalette(palettePath)
	if err != nil {
		return nil, nil, err
	}

	store := cache.NewNullCache()
	if useCache {
		dir, err := defaultCacheDir()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve cache dir: %w", err)
		}
		store, err = cache.NewFileCache(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open cache: %w", err)
		}
	}

	runner := pipeline.NewRunner(pal, store, loggerFromContext(ctx))
	cleanup := func() { _ = store.Close() }
	return runner, cleanup, nil
}

// outputPath derives the output file from the input name when -o is
// not given: photo.jpg becomes photo<suffix>.
func outputPath(output, input, suffix string) string {
	if output != "" {
		return output
	}
	base := input[:len(input)-len(filepath.Ext(input))]
	return base + suffix
}
