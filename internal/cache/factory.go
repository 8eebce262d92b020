package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"heirloom-go/internal/config"
	"heirloom-go/internal/heirloom"
)

// NewCacheFromConfig creates a Cache implementation based on the cache config type.
func NewCacheFromConfig(cfg config.CacheConfig) (heirloom.Cache, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryCache(), nil
	case "sqlite", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite cache requires data_dir to be set")
		}
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
		return NewSQLiteCache(filepath.Join(cfg.DataDir, "cache.db"))
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}
