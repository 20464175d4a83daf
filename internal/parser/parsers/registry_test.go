package parsers_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Vodeneev/footodds/internal/parser/parsers"
	_ "github.com/Vodeneev/footodds/internal/parser/parsers/all"
	"github.com/Vodeneev/footodds/internal/parser/scraper"
	"github.com/Vodeneev/footodds/internal/pkg/config"
	"github.com/Vodeneev/footodds/internal/pkg/fetch"
)

type nopFetcher struct{ closed *int }

func (nopFetcher) Fetch(_ context.Context, _ string, _ fetch.Options) (fetch.Page, error) {
	return nil, errors.New("offline")
}

func (f nopFetcher) Close() error {
	*f.closed++
	return nil
}

func TestAvailableNames(t *testing.T) {
	if got := parsers.AvailableNames(); !reflect.DeepEqual(got, []string{"rabona", "tipico"}) {
		t.Errorf("AvailableNames = %v", got)
	}
	if _, ok := parsers.FactoryByName(" Tipico "); !ok {
		t.Error("lookup must ignore case and spaces")
	}
}

func TestProfileFor_Overrides(t *testing.T) {
	cfg := &config.ScraperConfig{Bookmakers: map[string]config.BookmakerConfig{
		"rabona": {BaseURL: "https://mirror.example", MaxURLs: 4, Leagues: []string{"serie-a"}},
	}}
	p, err := parsers.ProfileFor("Rabona", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.BaseURL != "https://mirror.example" || p.MaxURLs != 4 || p.Key != "rabona" || len(p.Leagues) != 1 {
		t.Errorf("profile = %+v", p)
	}
	if _, err := parsers.ProfileFor("bet365", cfg); err == nil {
		t.Error("expected error for unknown bookmaker")
	}
}

func TestBuild(t *testing.T) {
	closed := 0
	cfg := &config.ScraperConfig{Enabled: []string{"tipico"}}
	scrapers, err := parsers.Build(cfg, func() (fetch.Fetcher, error) { return nopFetcher{closed: &closed}, nil }, scraper.Options{NoPacing: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(scrapers) != 1 || scrapers[0].Key() != "tipico" || scrapers[0].Name() != "Tipico" {
		t.Fatalf("scrapers = %v", scrapers)
	}
	scrapers[0].Close()
	if closed != 1 {
		t.Errorf("closed = %d, want 1", closed)
	}
}
