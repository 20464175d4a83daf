// Package cache keeps recent scrape results keyed by bookmaker and league set.
package cache

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Vodeneev/footodds/internal/pkg/models"
)

// DefaultTTL is how long a scrape result is served from cache.
const DefaultTTL = 300 * time.Second

const keyPrefix = "odds:"

// Entry is a cached scrape result.
type Entry struct {
	Records    []models.OddsRecord `json:"records"`
	CapturedAt time.Time           `json:"captured_at"`
}

// Stats describes cache contents.
type Stats struct {
	Size       int      `json:"cache_size"`
	Keys       []string `json:"cached_keys"`
	TTLSeconds int      `json:"cache_duration"`
}

// Cache is implemented by MemoryCache and RedisCache.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, records []models.OddsRecord) error
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
	Stats(ctx context.Context) (Stats, error)
}

// Key builds the cache key for a bookmaker set and league set. Order, case
// and duplicates do not change the key.
func Key(bookmakers, leagues []string) string {
	return keyPrefix + setPart(bookmakers) + ":" + setPart(leagues)
}

func setPart(items []string) string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.ToLower(strings.TrimSpace(it))
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}
