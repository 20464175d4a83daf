package parsers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Vodeneev/footodds/internal/parser/scraper"
	"github.com/Vodeneev/footodds/internal/pkg/config"
	"github.com/Vodeneev/footodds/internal/pkg/fetch"
)

// Factory returns a bookmaker's site profile.
type Factory func() scraper.Profile

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, f Factory) {
	n := normalizeName(name)
	if n == "" {
		panic("parsers: empty name in Register")
	}
	if f == nil {
		panic("parsers: nil factory in Register for " + n)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[n]; exists {
		panic("parsers: duplicate registration for " + n)
	}
	registry[n] = f
}

func FactoryByName(name string) (Factory, bool) {
	n := normalizeName(name)
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[n]
	return f, ok
}

func AvailableNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ProfileFor returns the registered profile with the bookmaker's config overrides applied.
func ProfileFor(name string, cfg *config.ScraperConfig) (scraper.Profile, error) {
	f, ok := FactoryByName(name)
	if !ok {
		return scraper.Profile{}, fmt.Errorf("parsers: unknown bookmaker %q (available: %v)", name, AvailableNames())
	}
	p := f()
	p.Key = normalizeName(name)
	if cfg == nil {
		return p, nil
	}
	if o, ok := cfg.Bookmakers[p.Key]; ok {
		if o.BaseURL != "" {
			p.BaseURL = o.BaseURL
		}
		if len(o.Leagues) > 0 {
			p.Leagues = o.Leagues
		}
		if o.MaxURLs > 0 {
			p.MaxURLs = o.MaxURLs
		}
	}
	return p, nil
}

// FetcherFactory opens a fetch session for one scraper.
type FetcherFactory func() (fetch.Fetcher, error)

// Build creates a scraper for every enabled registered bookmaker, each with
// its own fetch session. Scrapers are returned in name order.
func Build(cfg *config.ScraperConfig, newFetcher FetcherFactory, opts scraper.Options) ([]*scraper.Scraper, error) {
	var out []*scraper.Scraper
	for _, name := range AvailableNames() {
		if cfg != nil && !cfg.IsEnabled(name) {
			continue
		}
		p, err := ProfileFor(name, cfg)
		if err != nil {
			return nil, err
		}
		f, err := newFetcher()
		if err != nil {
			closeAll(out)
			return nil, fmt.Errorf("open fetcher for %s: %w", name, err)
		}
		s, err := scraper.New(p, f, opts)
		if err != nil {
			f.Close()
			closeAll(out)
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func closeAll(scrapers []*scraper.Scraper) {
	for _, s := range scrapers {
		s.Close()
	}
}
