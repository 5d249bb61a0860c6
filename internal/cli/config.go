package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ServerConfig is the TOML configuration for the serve command.
//
//	listen = ":8080"
//	palette = "colors.toml"
//
//	[cache]
//	backend = "redis"        # none | file | redis
//	dir = "/var/cache/brickmosaic"
//	redis_addr = "localhost:6379"
//
//	[limits]
//	max_upload_mb = 20
type ServerConfig struct {
	Listen  string            `toml:"listen"`
	Palette string            `toml:"palette"`
	Cache   CacheConfig       `toml:"cache"`
	Limits  ServerLimitConfig `toml:"limits"`
}

// CacheConfig selects and configures the artifact cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServerLimitConfig bounds request sizes.
type ServerLimitConfig struct {
	MaxUploadMB int `toml:"max_upload_mb"`
}

// defaultServerConfig returns the configuration used when no file is
// given: listen on :8080, no caching, 20 MB uploads.
func defaultServerConfig() ServerConfig {
	return ServerConfig{
		Listen: ":8080",
		Cache:  CacheConfig{Backend: "none"},
		Limits: ServerLimitConfig{MaxUploadMB: 20},
	}
}

// loadServerConfig reads a TOML server configuration, filling unset
// fields with defaults.
func loadServerConfig(path string) (ServerConfig, error) {
	cfg := defaultServerConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	switch cfg.Cache.Backend {
	case "", "none", "file", "redis":
	default:
		return cfg, fmt.Errorf("unknown cache backend %q (must be none, file, or redis)", cfg.Cache.Backend)
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.Limits.MaxUploadMB <= 0 {
		cfg.Limits.MaxUploadMB = 20
	}
	return cfg, nil
}
