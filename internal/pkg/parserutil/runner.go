package parserutil

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vodeneev/footodds/internal/pkg/leagues"
	"github.com/Vodeneev/footodds/internal/pkg/metrics"
	"github.com/Vodeneev/footodds/internal/pkg/models"
)

// DefaultBookmakerPause separates consecutive bookmakers in a run.
const DefaultBookmakerPause = 10 * time.Second

// Bookmaker is the scraping contract ScrapeAll drives. Implementations that
// also satisfy sync.Locker are held for the whole batch.
type Bookmaker interface {
	Name() string
	Key() string
	GetMatchURLs(ctx context.Context, leagues []string) ([]models.MatchTarget, error)
	ScrapeMatch(ctx context.Context, target models.MatchTarget) (*models.OddsRecord, error)
}

// ScrapeOptions configure one bookmaker scrape.
type ScrapeOptions struct {
	// MaxMatches caps the discovered matches; 0 means no cap.
	MaxMatches int
	// Leagues filters discovery and results; empty keeps everything.
	Leagues []string
	Metrics *metrics.Recorder
}

// ScrapeAll discovers matches once and scrapes them sequentially, returning
// records in discovery order. One match failing never stops the batch. On
// cancellation partial results are discarded and ctx.Err() is returned.
func ScrapeAll(ctx context.Context, b Bookmaker, opts ScrapeOptions) ([]models.OddsRecord, error) {
	if l, ok := b.(sync.Locker); ok {
		l.Lock()
		defer l.Unlock()
	}

	start := time.Now()
	defer func() { opts.Metrics.ScrapeFinished(b.Name(), time.Since(start)) }()

	wanted := leagues.ResolveAll(opts.Leagues)

	targets, err := b.GetMatchURLs(ctx, wanted)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Error("Match discovery failed", "bookmaker", b.Name(), "error", err)
		return nil, err
	}
	slog.Info("Found matches", "bookmaker", b.Name(), "count", len(targets))

	if opts.MaxMatches > 0 && len(targets) > opts.MaxMatches {
		targets = targets[:opts.MaxMatches]
	}

	records := make([]models.OddsRecord, 0, len(targets))
	for _, t := range targets {
		rec, err := b.ScrapeMatch(ctx, t)
		if err != nil {
			slog.Warn("Scrape cancelled, discarding partial results", "bookmaker", b.Name(), "collected", len(records))
			return nil, err
		}
		if rec == nil {
			continue
		}
		if !inLeagues(rec.League, wanted) {
			slog.Debug("Dropping record outside requested leagues", "bookmaker", b.Name(), "match", rec.MatchName, "league", rec.League)
			continue
		}
		records = append(records, *rec)
	}

	slog.Info("Scrape finished", "bookmaker", b.Name(), "records", len(records), "matches", len(targets), "duration", time.Since(start))
	return records, nil
}

func inLeagues(league string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	c := leagues.Canonical(league)
	for _, w := range wanted {
		if w == c {
			return true
		}
	}
	return false
}

// RunOptions configure a multi-bookmaker run.
type RunOptions struct {
	ScrapeOptions
	// Pause is waited between bookmakers.
	Pause time.Duration
	// Sleep waits for d or until ctx is done; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// RunResult aggregates one run.
type RunResult struct {
	RunID    string
	Records  []models.OddsRecord
	Counts   map[string]int   // records per bookmaker name
	Errors   map[string]error // failures per bookmaker name
	Started  time.Time
	Duration time.Duration
}

// Runner scrapes several bookmakers one after another.
type Runner struct {
	opts RunOptions
}

func NewRunner(opts RunOptions) *Runner {
	if opts.Pause < 0 {
		opts.Pause = 0
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepCtx
	}
	return &Runner{opts: opts}
}

// Run scrapes each bookmaker sequentially, pausing between them. A bookmaker
// that fails contributes no records and does not stop the others.
func (r *Runner) Run(ctx context.Context, bookmakers []Bookmaker) RunResult {
	res := RunResult{
		RunID:   uuid.NewString(),
		Counts:  make(map[string]int, len(bookmakers)),
		Errors:  make(map[string]error),
		Started: time.Now(),
	}
	log := slog.With("run_id", res.RunID)
	log.Info("Starting scrape run", "bookmakers", len(bookmakers))

	for i, b := range bookmakers {
		if i > 0 && r.opts.Pause > 0 {
			log.Info("Pausing before next bookmaker", "pause", r.opts.Pause)
			if err := r.opts.Sleep(ctx, r.opts.Pause); err != nil {
				res.Errors[b.Name()] = err
				break
			}
		}

		log.Info("Starting bookmaker", "bookmaker", b.Name())
		records, err := ScrapeAll(ctx, b, r.opts.ScrapeOptions)
		if err != nil {
			res.Errors[b.Name()] = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		res.Counts[b.Name()] = len(records)
		res.Records = append(res.Records, records...)
	}

	res.Duration = time.Since(res.Started)
	log.Info("Scrape run finished", "records", len(res.Records), "errors", len(res.Errors), "duration", res.Duration)
	return res
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
