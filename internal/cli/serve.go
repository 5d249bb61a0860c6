package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhuisman/brickmosaic/internal/server"
	"github.com/mhuisman/brickmosaic/pkg/cache"
	"github.com/mhuisman/brickmosaic/pkg/pipeline"
)

// newServeCmd creates the serve command, which runs the HTTP
// conversion API until interrupted.
func newServeCmd() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr, configPath)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML server config file")
	return cmd
}

// runServe loads configuration, assembles the pipeline, and serves
// until the context is cancelled.
func runServe(ctx context.Context, addr, configPath string) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadServerConfig(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Listen = addr
	}

	store, err := buildServerCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer store.Close()

	pal, err := loadPalette(cfg.Palette)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(pal, store, logger)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(runner, logger, server.Config{MaxUploadBytes: int64(cfg.Limits.MaxUploadMB) << 20}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen, "cache", cfg.Cache.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// buildServerCache creates the configured cache backend. Redis
// connections are retried with backoff so the server can start while
// its backend is still coming up.
func buildServerCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "", "none":
		return cache.NewNullCache(), nil
	case "file":
		dir := cfg.Dir
		if dir == "" {
			d, err := defaultCacheDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	case "redis":
		var store cache.Cache
		err := cache.RetryWithBackoff(ctx, func() error {
			var err error
			store, err = cache.NewRedisCache(ctx, cache.RedisConfig{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
