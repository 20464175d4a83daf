package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Vodeneev/footodds/internal/parser/parsers"
	"github.com/Vodeneev/footodds/internal/parser/scraper"
	pkgconfig "github.com/Vodeneev/footodds/internal/pkg/config"
	"github.com/Vodeneev/footodds/internal/pkg/fetch"
	"github.com/Vodeneev/footodds/internal/pkg/logging"
	"github.com/Vodeneev/footodds/internal/pkg/metrics"
	"github.com/Vodeneev/footodds/internal/pkg/notify"
	"github.com/Vodeneev/footodds/internal/pkg/parserutil"
	"github.com/Vodeneev/footodds/internal/pkg/service"
	"github.com/Vodeneev/footodds/internal/pkg/storage"

	// Register all supported bookmakers via init().
	_ "github.com/Vodeneev/footodds/internal/parser/parsers/all"
)

var errNoRecords = errors.New("no odds scraped")

type flags struct {
	configPath  string
	bookmaker   string
	leagues     string
	maxMatches  int
	schedule    string
	runFor      time.Duration
	metricsAddr string
}

func main() {
	if err := run(); err != nil {
		slog.Error("Scraper failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	f := parseFlags()

	appConfig, err := pkgconfig.Load(f.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(appConfig, f)

	_, closeLog, err := logging.SetupLogger(&appConfig.Logging, "scraper")
	if err != nil {
		slog.Warn("Failed to setup logging, continuing with default logger", "error", err)
	} else {
		defer closeLog()
	}
	slog.Info("Config loaded", "path", f.configPath, "fetcher", appConfig.Scraper.Fetcher)

	ctx, cancel := createContext(f.runFor)
	defer cancel()
	setupSignalHandler(ctx, cancel)

	rec := metrics.NewRecorder()
	if f.metricsAddr != "" {
		go serveMetrics(ctx, f.metricsAddr, rec)
	}

	scrapers, err := buildScrapers(&appConfig.Scraper, rec)
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range scrapers {
			s.Close()
		}
	}()

	store, err := storage.Open(&appConfig.Postgres)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	var notifier *notify.TelegramNotifier
	if appConfig.Telegram.BotToken != "" {
		notifier, err = notify.NewTelegramNotifier(&appConfig.Telegram)
		if err != nil {
			slog.Warn("Telegram alerts disabled", "error", err)
		} else {
			defer notifier.Stop()
		}
	}

	job := &scrapeJob{
		bookmakers: bookmakersOf(scrapers),
		runner: parserutil.NewRunner(parserutil.RunOptions{
			ScrapeOptions: parserutil.ScrapeOptions{
				MaxMatches: appConfig.Scraper.MaxMatches,
				Leagues:    splitList(f.leagues),
				Metrics:    rec,
			},
			Pause: appConfig.Scraper.BookmakerPause,
		}),
		store:    store,
		notifier: notifier,
		metrics:  rec,
	}

	if appConfig.Scraper.Schedule == "" {
		return job.runOnce(ctx)
	}
	return runScheduled(ctx, appConfig.Scraper.Schedule, job)
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", pkgconfig.Path(pkgconfig.DefaultConfigPath), "Path to config file (can be set via CONFIG_PATH env var)")
	flag.StringVar(&f.bookmaker, "bookmaker", "", "Comma-separated bookmakers to scrape (e.g. 'tipico,rabona'). Empty = use config")
	flag.StringVar(&f.leagues, "leagues", "", "Comma-separated league filter (e.g. 'bundesliga,premier-league')")
	flag.IntVar(&f.maxMatches, "max-matches", 0, "Matches per bookmaker. 0 = use config")
	flag.StringVar(&f.schedule, "schedule", "", "Cron spec for repeated runs (e.g. '@every 30m'). Empty = use config")
	flag.DurationVar(&f.runFor, "run-for", 0, "Auto-stop after duration (e.g. 10m). 0 = run until done or SIGINT/SIGTERM")
	flag.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. ':9100')")
	flag.Parse()
	return f
}

func applyFlags(cfg *pkgconfig.Config, f flags) {
	if bs := splitList(f.bookmaker); len(bs) > 0 {
		cfg.Scraper.Enabled = bs
	}
	if f.maxMatches > 0 {
		cfg.Scraper.MaxMatches = f.maxMatches
	}
	if f.schedule != "" {
		cfg.Scraper.Schedule = f.schedule
	}
}

func buildScrapers(cfg *pkgconfig.ScraperConfig, rec *metrics.Recorder) ([]*scraper.Scraper, error) {
	settings := fetch.Settings{
		Kind:      fetch.Kind(cfg.Fetcher),
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Headless:  cfg.HeadlessEnabled(),
	}
	scrapers, err := parsers.Build(cfg, func() (fetch.Fetcher, error) {
		return fetch.New(settings)
	}, scraper.Options{
		Retries:      cfg.Retries,
		RetryBackoff: cfg.RetryBackoff,
		PacingMin:    cfg.PacingMin,
		PacingMax:    cfg.PacingMax,
		Metrics:      rec,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build scrapers: %w", err)
	}
	if len(scrapers) == 0 {
		return nil, fmt.Errorf("no bookmakers selected (scraper.enabled=%v, available: %v)", cfg.Enabled, parsers.AvailableNames())
	}

	names := make([]string, 0, len(scrapers))
	for _, s := range scrapers {
		names = append(names, s.Name())
	}
	slog.Info("Using bookmakers", "bookmakers", strings.Join(names, ", "))
	return scrapers, nil
}

func bookmakersOf(scrapers []*scraper.Scraper) []parserutil.Bookmaker {
	out := make([]parserutil.Bookmaker, len(scrapers))
	for i, s := range scrapers {
		out[i] = s
	}
	return out
}

type scrapeJob struct {
	bookmakers []parserutil.Bookmaker
	runner     *parserutil.Runner
	store      storage.Store
	notifier   *notify.TelegramNotifier
	metrics    *metrics.Recorder
}

func (j *scrapeJob) runOnce(ctx context.Context) error {
	res := j.runner.Run(ctx, j.bookmakers)
	for name, err := range res.Errors {
		slog.Error("Bookmaker failed", "run_id", res.RunID, "bookmaker", name, "error", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if len(res.Records) == 0 {
		printRunSummary(os.Stdout, res)
		return errNoRecords
	}

	if err := j.store.Save(ctx, res.Records); err != nil {
		slog.Error("Failed to save odds", "run_id", res.RunID, "error", err)
	}

	opps := service.FindArbitrage(res.Records)
	j.metrics.ArbitrageFound(len(opps))
	if len(opps) > 0 && j.notifier != nil {
		if err := j.notifier.NotifyArbitrage(ctx, opps); err != nil {
			slog.Warn("Failed to queue arbitrage alerts", "error", err)
		}
	}

	printRunSummary(os.Stdout, res)
	printArbitrage(os.Stdout, opps)

	stats, err := j.store.Statistics(ctx)
	if err != nil {
		slog.Warn("Failed to read statistics", "error", err)
		return nil
	}
	latest, err := j.store.Query(ctx, storage.Filter{Limit: latestLimit})
	if err != nil {
		slog.Warn("Failed to read latest odds", "error", err)
	}
	printStoreSummary(os.Stdout, stats, latest)
	return nil
}

func runScheduled(ctx context.Context, spec string, job *scrapeJob) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		if err := job.runOnce(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Scheduled scrape failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	slog.Info("Starting scheduled scraping", "schedule", spec)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("Scraper stopped gracefully")
	return nil
}

func serveMetrics(ctx context.Context, addr string, rec *metrics.Recorder) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Metrics server failed", "error", err)
	}
}

func createContext(runFor time.Duration) (context.Context, context.CancelFunc) {
	if runFor > 0 {
		return context.WithTimeout(context.Background(), runFor)
	}
	return context.WithCancel(context.Background())
}

func setupSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal, stopping scraper...", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
