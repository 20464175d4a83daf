package cache

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Vodeneev/footodds/internal/pkg/config"
)

// Open builds the backend named by cfg.Cache.Backend. The close func is never nil.
func Open(cfg *config.Config) (Cache, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(cfg.Cache.Backend) {
	case "", "memory":
		return NewMemoryCache(cfg.Cache.TTL), noop, nil
	case "redis":
		if cfg.Redis.URL == "" {
			return nil, noop, fmt.Errorf("cache backend redis requires redis.url")
		}
		c, err := NewRedisCache(cfg.Redis.URL, cfg.Cache.TTL)
		if err != nil {
			return nil, noop, err
		}
		slog.Info("Redis cache connected", "ttl", cfg.Cache.TTL)
		return c, c.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
