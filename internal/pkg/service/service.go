// Package service answers odds queries: it scrapes on demand behind a
// short-lived cache, persists fresh results and compares stored prices.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Vodeneev/footodds/internal/pkg/cache"
	"github.com/Vodeneev/footodds/internal/pkg/leagues"
	"github.com/Vodeneev/footodds/internal/pkg/metrics"
	"github.com/Vodeneev/footodds/internal/pkg/models"
	"github.com/Vodeneev/footodds/internal/pkg/parserutil"
	"github.com/Vodeneev/footodds/internal/pkg/storage"
)

// ErrUnknownBookmaker is returned for bookmaker ids with no registered scraper.
var ErrUnknownBookmaker = errors.New("unknown bookmaker")

// DefaultArbitrageHours is the look-back window of Arbitrage.
const DefaultArbitrageHours = 24

// Notifier receives arbitrage opportunities found after a fresh scrape.
type Notifier interface {
	NotifyArbitrage(ctx context.Context, opps []models.ArbitrageOpportunity) error
}

type Options struct {
	// DefaultMaxMatches applies when a request sets no cap.
	DefaultMaxMatches int
	Metrics           *metrics.Recorder
	Notifier          Notifier
	Now               func() time.Time
}

// OddsRequest is one /api/odds query.
type OddsRequest struct {
	Bookmakers   []string
	Leagues      []string
	MaxMatches   int
	ForceRefresh bool
}

// OddsData is the cacheable part of an odds response.
type OddsData struct {
	Odds       []models.OddsRecord `json:"odds"`
	Count      int                 `json:"count"`
	Bookmakers []string            `json:"bookmakers"`
	Errors     []string            `json:"errors"`
}

type OddsResponse struct {
	Data      OddsData  `json:"data"`
	Cached    bool      `json:"cached"`
	Timestamp time.Time `json:"timestamp"`
}

// Comparison is one match with the best price per outcome.
type Comparison struct {
	models.MatchComparison
	Bookmakers []string                     `json:"bookmakers"`
	BestHome   *models.OddsRecord           `json:"best_home,omitempty"`
	BestDraw   *models.OddsRecord           `json:"best_draw,omitempty"`
	BestAway   *models.OddsRecord           `json:"best_away,omitempty"`
	Arbitrage  *models.ArbitrageOpportunity `json:"arbitrage,omitempty"`
}

type Service struct {
	bookmakers map[string]parserutil.Bookmaker
	keys       []string
	cache      cache.Cache
	store      storage.Store
	opts       Options
}

func New(bookmakers []parserutil.Bookmaker, c cache.Cache, s storage.Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	svc := &Service{
		bookmakers: make(map[string]parserutil.Bookmaker, len(bookmakers)),
		cache:      c,
		store:      s,
		opts:       opts,
	}
	for _, b := range bookmakers {
		key := strings.ToLower(b.Key())
		svc.bookmakers[key] = b
		svc.keys = append(svc.keys, key)
	}
	sort.Strings(svc.keys)
	return svc
}

// Bookmakers returns the registered bookmaker keys in sorted order.
func (s *Service) Bookmakers() []string {
	return append([]string(nil), s.keys...)
}

func (s *Service) Leagues() []leagues.Entry {
	return leagues.Catalogue()
}

func (s *Service) lookup(name string) (parserutil.Bookmaker, error) {
	b, ok := s.bookmakers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBookmaker, name)
	}
	return b, nil
}

// GetOdds serves the request from cache or scrapes the requested
// bookmakers one after another. Unknown bookmakers are reported in
// Data.Errors; an empty bookmaker list means every registered one.
func (s *Service) GetOdds(ctx context.Context, req OddsRequest) (OddsResponse, error) {
	requested := req.Bookmakers
	if len(requested) == 0 {
		requested = s.keys
	}

	var (
		selected []parserutil.Bookmaker
		keys     []string
		errs     []string
	)
	for _, name := range requested {
		b, err := s.lookup(name)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		selected = append(selected, b)
		keys = append(keys, b.Key())
	}

	cacheKey := cache.Key(keys, req.Leagues)
	if !req.ForceRefresh && len(selected) > 0 {
		entry, ok, err := s.cache.Get(ctx, cacheKey)
		if err != nil {
			slog.Warn("Cache lookup failed", "key", cacheKey, "error", err)
		}
		s.opts.Metrics.CacheLookup(ok)
		if ok {
			slog.Info("Serving cached odds", "key", cacheKey, "records", len(entry.Records))
			return OddsResponse{
				Data:      s.oddsData(entry.Records, keys, errs),
				Cached:    true,
				Timestamp: s.opts.Now(),
			}, nil
		}
	}

	maxMatches := req.MaxMatches
	if maxMatches <= 0 {
		maxMatches = s.opts.DefaultMaxMatches
	}

	var records []models.OddsRecord
	for _, b := range selected {
		recs, err := parserutil.ScrapeAll(ctx, b, parserutil.ScrapeOptions{
			MaxMatches: maxMatches,
			Leagues:    req.Leagues,
			Metrics:    s.opts.Metrics,
		})
		if err != nil {
			if ctx.Err() != nil {
				return OddsResponse{}, ctx.Err()
			}
			errs = append(errs, fmt.Sprintf("%s: %v", b.Key(), err))
			continue
		}
		records = append(records, recs...)
	}

	if len(selected) > 0 {
		if err := s.cache.Set(ctx, cacheKey, records); err != nil {
			slog.Warn("Failed to cache odds", "key", cacheKey, "error", err)
		}
	}
	s.persist(ctx, records)

	return OddsResponse{
		Data:      s.oddsData(records, keys, errs),
		Timestamp: s.opts.Now(),
	}, nil
}

// GetBookmakerOdds is GetOdds for one bookmaker. It fails with
// ErrUnknownBookmaker instead of reporting the name in Data.Errors.
func (s *Service) GetBookmakerOdds(ctx context.Context, name string, req OddsRequest) (OddsResponse, error) {
	if _, err := s.lookup(name); err != nil {
		return OddsResponse{}, err
	}
	req.Bookmakers = []string{name}
	return s.GetOdds(ctx, req)
}

func (s *Service) oddsData(records []models.OddsRecord, keys, errs []string) OddsData {
	if records == nil {
		records = []models.OddsRecord{}
	}
	if keys == nil {
		keys = []string{}
	}
	return OddsData{Odds: records, Count: len(records), Bookmakers: keys, Errors: errs}
}

// persist saves fresh records and alerts on arbitrage among them. Failures
// are logged; the caller still gets its records.
func (s *Service) persist(ctx context.Context, records []models.OddsRecord) {
	if len(records) == 0 {
		return
	}
	if s.store != nil {
		if err := s.store.Save(ctx, records); err != nil {
			slog.Error("Failed to save odds", "records", len(records), "error", err)
		}
	}

	opps := FindArbitrage(records)
	s.opts.Metrics.ArbitrageFound(len(opps))
	if len(opps) == 0 || s.opts.Notifier == nil {
		return
	}
	if err := s.opts.Notifier.NotifyArbitrage(ctx, opps); err != nil {
		slog.Warn("Failed to queue arbitrage alerts", "count", len(opps), "error", err)
	}
}

// Compare groups stored odds whose match name contains query.
func (s *Service) Compare(ctx context.Context, query string) ([]Comparison, error) {
	records, err := s.store.MatchOdds(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load match odds: %w", err)
	}
	groups := models.GroupByMatch(Latest(records))
	out := make([]Comparison, 0, len(groups))
	for _, g := range groups {
		out = append(out, newComparison(g))
	}
	return out, nil
}

// Arbitrage scans odds stored within the last hours and returns the
// opportunities, most profitable first.
func (s *Service) Arbitrage(ctx context.Context, hours int) ([]models.ArbitrageOpportunity, error) {
	if hours <= 0 {
		hours = DefaultArbitrageHours
	}
	records, err := s.store.Query(ctx, storage.Filter{
		Since: s.opts.Now().Add(-time.Duration(hours) * time.Hour),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent odds: %w", err)
	}
	return FindArbitrage(records), nil
}

func (s *Service) Stats(ctx context.Context) (storage.Statistics, error) {
	return s.store.Statistics(ctx)
}

func (s *Service) CacheStats(ctx context.Context) (cache.Stats, error) {
	return s.cache.Stats(ctx)
}

func (s *Service) ClearCache(ctx context.Context) (int, error) {
	n, err := s.cache.Clear(ctx)
	if err != nil {
		return 0, err
	}
	slog.Info("Cache cleared", "removed", n)
	return n, nil
}

// FindArbitrage groups records by match, keeps each bookmaker's newest
// price and returns the opportunities sorted by profit, highest first.
func FindArbitrage(records []models.OddsRecord) []models.ArbitrageOpportunity {
	var opps []models.ArbitrageOpportunity
	for _, g := range models.GroupByMatch(Latest(records)) {
		if arb := g.Arbitrage(); arb != nil {
			opps = append(opps, *arb)
		}
	}
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ProfitMargin > opps[j].ProfitMargin
	})
	return opps
}

// Latest keeps the newest record per (match, bookmaker), preserving the
// order in which the kept records first appear.
func Latest(records []models.OddsRecord) []models.OddsRecord {
	type id struct{ match, bookmaker string }
	idx := make(map[id]int, len(records))
	var out []models.OddsRecord
	for _, r := range records {
		k := id{r.Key(), strings.ToLower(r.Bookmaker)}
		if i, ok := idx[k]; ok {
			if r.Timestamp.After(out[i].Timestamp) {
				out[i] = r
			}
			continue
		}
		idx[k] = len(out)
		out = append(out, r)
	}
	return out
}

func newComparison(g models.MatchComparison) Comparison {
	c := Comparison{MatchComparison: g, Bookmakers: g.Bookmakers()}
	if r, ok := g.BestHome(); ok {
		c.BestHome = &r
	}
	c.BestDraw = g.BestDraw()
	if r, ok := g.BestAway(); ok {
		c.BestAway = &r
	}
	c.Arbitrage = g.Arbitrage()
	return c
}
