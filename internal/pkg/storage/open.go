package storage

import (
	"log/slog"
	"strings"

	"github.com/Vodeneev/footodds/internal/pkg/config"
)

// Open returns a PostgresStore when a DSN is configured, otherwise a MemoryStore.
func Open(cfg *config.PostgresConfig) (Store, error) {
	if cfg == nil || strings.TrimSpace(cfg.DSN) == "" {
		slog.Warn("postgres.dsn not set, odds are kept in memory only")
		return NewMemoryStore(), nil
	}
	return NewPostgresStore(cfg)
}
