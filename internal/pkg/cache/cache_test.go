package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Vodeneev/footodds/internal/pkg/config"
	"github.com/Vodeneev/footodds/internal/pkg/models"
)

func TestKey(t *testing.T) {
	a := Key([]string{"Tipico", "rabona"}, []string{"serie-a", "bundesliga"})
	b := Key([]string{" rabona", "tipico", "TIPICO"}, []string{"Bundesliga", "serie-a", ""})
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}
	if a != "odds:rabona,tipico:bundesliga,serie-a" {
		t.Errorf("Key = %q", a)
	}
	if Key([]string{"tipico"}, nil) == Key([]string{"tipico"}, []string{"serie-a"}) {
		t.Error("league set must be part of the key")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(300 * time.Second).WithClock(func() time.Time { return now })
	ctx := context.Background()

	rec, _ := models.NewOddsRecord(models.RecordInput{HomeTeam: "A", AwayTeam: "B", HomeOdds: 2, AwayOdds: 2})
	if err := c.Set(ctx, "k", []models.OddsRecord{rec}); err != nil {
		t.Fatal(err)
	}

	now = now.Add(299 * time.Second)
	e, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || len(e.Records) != 1 {
		t.Fatalf("Get before TTL = %v, %v, %v", e, ok, err)
	}

	now = now.Add(time.Second)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("entry must expire after TTL")
	}
	if st, _ := c.Stats(ctx); st.Size != 0 {
		t.Errorf("expired entry still counted: %+v", st)
	}
}

func TestMemoryCache_ClearAndStats(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()
	c.Set(ctx, "odds:b", nil)
	c.Set(ctx, "odds:a", nil)

	st, err := c.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Size != 2 || st.Keys[0] != "odds:a" || st.TTLSeconds != 300 {
		t.Errorf("Stats = %+v", st)
	}

	n, err := c.Clear(ctx)
	if err != nil || n != 2 {
		t.Errorf("Clear = %d, %v", n, err)
	}
	if _, ok, _ := c.Get(ctx, "odds:a"); ok {
		t.Error("entry survived Clear")
	}
}

func TestOpen(t *testing.T) {
	cfg := &config.Config{Cache: config.CacheConfig{TTL: time.Minute}}
	c, closeFn, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()
	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("default backend = %T, want *MemoryCache", c)
	}

	cfg.Cache.Backend = "redis"
	if _, _, err := Open(cfg); err == nil {
		t.Error("redis without url must fail")
	}
	cfg.Cache.Backend = "memcached"
	if _, _, err := Open(cfg); err == nil {
		t.Error("unknown backend must fail")
	}
}
