// Package cache provides optional byte-artifact caching for the
// conversion pipeline.
//
// The pipeline is deterministic, so a finished preview or plan can be
// reused whenever the same image bytes arrive with the same options.
// Caching is a pure performance layer: a cache hit returns the exact
// bytes a fresh conversion would produce, and the null backend disables
// caching entirely without changing behavior.
//
// Backends:
//   - null: no-op, the default
//   - file: directory-backed, for CLI usage
//   - redis: shared cache for multi-instance server deployments
package cache

import (
	"context"
	"time"
)

// Cache stores rendered artifacts keyed by content-derived strings.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a time-to-live. A TTL of 0 means the
	// entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// PreviewKey derives the cache key for a preview render from the source
// image hash and the options that affect the output.
func PreviewKey(imageHash string, gridSize, cellSizePx int, gridLines bool) string {
	return hashKey("preview", imageHash, gridSize, cellSizePx, gridLines)
}

// PlanKey derives the cache key for a plan document from the source
// image hash and the options that affect the output.
func PlanKey(imageHash string, gridSize int, cellSizeMm float64, includeCSV bool) string {
	return hashKey("plan", imageHash, gridSize, cellSizeMm, includeCSV)
}
