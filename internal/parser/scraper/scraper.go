// Package scraper implements the match discovery and per-match scraping
// shared by every bookmaker. Sites differ only in their Profile.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Vodeneev/footodds/internal/pkg/fetch"
	"github.com/Vodeneev/footodds/internal/pkg/leagues"
	"github.com/Vodeneev/footodds/internal/pkg/metrics"
	"github.com/Vodeneev/footodds/internal/pkg/models"
)

// ErrDiscoveryFailed is returned when no listing page produced a match link.
var ErrDiscoveryFailed = errors.New("match discovery failed")

const (
	DefaultRetries      = 3
	DefaultRetryBackoff = 5 * time.Second
	DefaultPacingMin    = 2 * time.Second
	DefaultPacingMax    = 6 * time.Second
)

// Options tune retries and pacing. Zero values take the defaults; NoPacing
// turns the pacing delay off.
type Options struct {
	Retries      int
	RetryBackoff time.Duration
	PacingMin    time.Duration
	PacingMax    time.Duration
	NoPacing     bool

	// Sleep waits for d or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
	Rand  *rand.Rand
	Now   func() time.Time

	Metrics *metrics.Recorder
}

func (o Options) withDefaults() Options {
	if o.Retries <= 0 {
		o.Retries = DefaultRetries
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = DefaultRetryBackoff
	}
	if o.NoPacing {
		o.PacingMin, o.PacingMax = 0, 0
	} else if o.PacingMin <= 0 && o.PacingMax <= 0 {
		o.PacingMin, o.PacingMax = DefaultPacingMin, DefaultPacingMax
	}
	if o.PacingMax < o.PacingMin {
		o.PacingMax = o.PacingMin
	}
	if o.Sleep == nil {
		o.Sleep = sleepCtx
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Scraper scrapes one bookmaker through its own Fetcher. Lock/Unlock let a
// caller hold the site for a whole batch.
type Scraper struct {
	profile Profile
	fetcher fetch.Fetcher
	opts    Options
	base    *url.URL

	mu     sync.Mutex
	randMu sync.Mutex
}

// New validates the profile and builds a scraper that owns fetcher.
func New(profile Profile, fetcher fetch.Fetcher, opts Options) (*Scraper, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, fmt.Errorf("%w: %s has no fetcher", errInvalidProfile, profile.Name)
	}
	profile = profile.withDefaults()
	base, err := url.Parse(profile.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", profile.BaseURL, err)
	}
	return &Scraper{
		profile: profile,
		fetcher: fetcher,
		opts:    opts.withDefaults(),
		base:    base,
	}, nil
}

func (s *Scraper) Name() string     { return s.profile.Name }
func (s *Scraper) Key() string      { return s.profile.Key }
func (s *Scraper) Profile() Profile { return s.profile }

func (s *Scraper) Lock()   { s.mu.Lock() }
func (s *Scraper) Unlock() { s.mu.Unlock() }

// Close releases the fetch session.
func (s *Scraper) Close() error {
	return s.fetcher.Close()
}

// listing is one page to discover matches on.
type listing struct {
	url    string
	league string
}

func (s *Scraper) listings(requested []string) []listing {
	var out []listing
	add := func(names []string) {
		for _, name := range names {
			c := leagues.Resolve(name)
			if path, ok := s.profile.LeaguePaths[c]; ok {
				out = append(out, listing{url: s.resolve(path), league: c})
			}
		}
	}

	add(requested)
	if len(out) == 0 && len(requested) == 0 {
		add(s.profile.Leagues)
	}
	if len(out) == 0 && s.profile.ListingPath != "" {
		out = append(out, listing{url: s.resolve(s.profile.ListingPath)})
	}
	return out
}

// GetMatchURLs discovers match pages for the requested leagues. With no
// league, the profile's default leagues or the site-wide listing are used.
func (s *Scraper) GetMatchURLs(ctx context.Context, requested []string) ([]models.MatchTarget, error) {
	pages := s.listings(requested)
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s has no listing for %v", ErrDiscoveryFailed, s.profile.Name, requested)
	}

	seen := make(map[string]bool)
	var (
		targets []models.MatchTarget
		lastErr error
	)
	for _, l := range pages {
		page, err := s.fetcher.Fetch(ctx, l.url, s.profile.ListingFetch)
		if perr := s.pace(ctx); perr != nil {
			return nil, perr
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("Listing fetch failed", "bookmaker", s.profile.Name, "url", l.url, "error", err)
			lastErr = err
			continue
		}

		links := s.discover(page)
		if len(links) == 0 {
			slog.Warn("No match links on listing", "bookmaker", s.profile.Name, "url", l.url)
			continue
		}
		for _, link := range links {
			abs := s.resolve(link)
			if abs == "" || seen[abs] {
				continue
			}
			seen[abs] = true
			targets = append(targets, models.MatchTarget{URL: abs, League: l.league})
		}
	}

	if len(targets) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDiscoveryFailed, s.profile.Name, lastErr)
		}
		return nil, fmt.Errorf("%w: %s: no links matched", ErrDiscoveryFailed, s.profile.Name)
	}
	if len(targets) > s.profile.MaxURLs {
		targets = targets[:s.profile.MaxURLs]
	}

	slog.Info("Discovered matches", "bookmaker", s.profile.Name, "count", len(targets))
	return targets, nil
}

// discover returns the links of the first strategy that finds any.
func (s *Scraper) discover(page fetch.Page) []string {
	for i, ls := range s.profile.LinkStrategies {
		if links := ls.links(page); len(links) > 0 {
			slog.Debug("Link strategy matched", "bookmaker", s.profile.Name, "strategy", i, "selector", ls.Selector, "links", len(links))
			return links
		}
	}
	return nil
}

func (s *Scraper) resolve(link string) string {
	ref, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	return s.base.ResolveReference(ref).String()
}

// ScrapeMatch fetches one match page with retries and builds its record.
// A nil record with a nil error means the page produced nothing; errors are
// returned only when ctx is done.
func (s *Scraper) ScrapeMatch(ctx context.Context, target models.MatchTarget) (*models.OddsRecord, error) {
	name := s.profile.Name
	for attempt := 1; attempt <= s.opts.Retries; attempt++ {
		slog.Info("Scraping match", "bookmaker", name, "url", target.URL, "attempt", attempt)

		page, err := s.fetcher.Fetch(ctx, target.URL, s.profile.MatchFetch)
		s.opts.Metrics.FetchAttempt(name, err)
		if perr := s.pace(ctx); perr != nil {
			return nil, perr
		}

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Error("Match fetch failed", "bookmaker", name, "url", target.URL, "attempt", attempt, "error", err)
			if attempt == s.opts.Retries {
				slog.Error("Max retries exceeded", "bookmaker", name, "url", target.URL)
				s.opts.Metrics.RecordRejected(name, "fetch")
				return nil, nil
			}
			wait := time.Duration(attempt) * s.opts.RetryBackoff
			slog.Info("Retrying match", "bookmaker", name, "url", target.URL, "wait", wait)
			if err := s.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		fields := s.ExtractFields(page, target)
		if fields == nil {
			s.opts.Metrics.RecordRejected(name, "extraction")
			return nil, nil
		}
		rec := s.BuildRecord(fields, target.URL)
		if rec == nil {
			s.opts.Metrics.RecordRejected(name, "validation")
			return nil, nil
		}
		s.opts.Metrics.RecordProduced(name)
		slog.Info("Scraped match", "bookmaker", name, "match", rec.MatchName)
		return rec, nil
	}
	return nil, nil
}

// BuildRecord turns extracted fields into a record, or nil when they fail validation.
func (s *Scraper) BuildRecord(f *Fields, pageURL string) *models.OddsRecord {
	if f == nil {
		return nil
	}
	rec, err := models.NewOddsRecord(models.RecordInput{
		Bookmaker: s.profile.Name,
		HomeTeam:  f.HomeTeam,
		AwayTeam:  f.AwayTeam,
		HomeOdds:  f.Home,
		DrawOdds:  f.Draw,
		AwayOdds:  f.Away,
		League:    f.League,
		URL:       pageURL,
		Timestamp: s.opts.Now(),
	})
	if err != nil {
		slog.Warn("Discarding match", "bookmaker", s.profile.Name, "url", pageURL, "error", err)
		return nil
	}
	return &rec
}

// pace waits a random delay within the pacing bounds.
func (s *Scraper) pace(ctx context.Context) error {
	lo, hi := s.opts.PacingMin, s.opts.PacingMax
	if hi <= 0 {
		return ctx.Err()
	}
	d := lo
	if hi > lo {
		s.randMu.Lock()
		d += time.Duration(s.opts.Rand.Int63n(int64(hi - lo)))
		s.randMu.Unlock()
	}
	return s.sleep(ctx, d)
}

func (s *Scraper) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	return s.opts.Sleep(ctx, d)
}
