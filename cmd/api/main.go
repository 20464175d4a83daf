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
	"syscall"
	"time"

	"github.com/Vodeneev/footodds/internal/api"
	"github.com/Vodeneev/footodds/internal/parser/parsers"
	"github.com/Vodeneev/footodds/internal/parser/scraper"
	"github.com/Vodeneev/footodds/internal/pkg/cache"
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

func main() {
	if err := run(); err != nil {
		slog.Error("API server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", pkgconfig.Path(pkgconfig.DefaultConfigPath), "Path to config file (can be set via CONFIG_PATH env var)")
	addr := flag.String("addr", "", "Listen address. Empty = use config")
	flag.Parse()

	appConfig, err := pkgconfig.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *addr != "" {
		appConfig.API.Addr = *addr
	}

	_, closeLog, err := logging.SetupLogger(&appConfig.Logging, "api")
	if err != nil {
		slog.Warn("Failed to setup logging, continuing with default logger", "error", err)
	} else {
		defer closeLog()
	}

	rec := metrics.NewRecorder()

	sc := &appConfig.Scraper
	settings := fetch.Settings{
		Kind:      fetch.Kind(sc.Fetcher),
		UserAgent: sc.UserAgent,
		Timeout:   sc.Timeout,
		Headless:  sc.HeadlessEnabled(),
	}
	scrapers, err := parsers.Build(sc, func() (fetch.Fetcher, error) {
		return fetch.New(settings)
	}, scraper.Options{
		Retries:      sc.Retries,
		RetryBackoff: sc.RetryBackoff,
		PacingMin:    sc.PacingMin,
		PacingMax:    sc.PacingMax,
		Metrics:      rec,
	})
	if err != nil {
		return fmt.Errorf("failed to build scrapers: %w", err)
	}
	defer func() {
		for _, s := range scrapers {
			s.Close()
		}
	}()
	bookmakers := make([]parserutil.Bookmaker, len(scrapers))
	for i, s := range scrapers {
		bookmakers[i] = s
	}

	store, err := storage.Open(&appConfig.Postgres)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	oddsCache, closeCache, err := cache.Open(appConfig)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer closeCache()

	opts := service.Options{
		DefaultMaxMatches: appConfig.API.DefaultMaxMatches,
		Metrics:           rec,
	}
	if appConfig.Telegram.BotToken != "" {
		notifier, err := notify.NewTelegramNotifier(&appConfig.Telegram)
		if err != nil {
			slog.Warn("Telegram alerts disabled", "error", err)
		} else {
			defer notifier.Stop()
			opts.Notifier = notifier
		}
	}

	svc := service.New(bookmakers, oddsCache, store, opts)
	srv := api.NewServer(api.NewRouter(svc, rec, appConfig.API), appConfig.API)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", srv.Addr, "bookmakers", svc.Bookmakers(), "cache", appConfig.Cache.Backend)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("Shutting down API server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	slog.Info("API server stopped gracefully")
	return nil
}
