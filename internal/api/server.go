// Package api exposes the odds service over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Vodeneev/footodds/internal/pkg/config"
	"github.com/Vodeneev/footodds/internal/pkg/metrics"
	"github.com/Vodeneev/footodds/internal/pkg/service"
)

// NewRouter wires every endpoint onto a chi router.
func NewRouter(svc *service.Service, rec *metrics.Recorder, cfg config.APIConfig) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", rec.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/leagues", h.Leagues)

		r.Get("/odds", h.GetOdds)
		r.Get("/odds/{bookmaker}", h.GetBookmakerOdds)
		r.Get("/compare/{match}", h.Compare)
		r.Get("/arbitrage", h.Arbitrage)
		r.Get("/stats", h.Stats)

		r.Post("/cache/clear", h.ClearCache)
		r.Get("/cache/stats", h.CacheStats)
	})

	return r
}

// NewServer builds the http.Server for cfg.
func NewServer(handler http.Handler, cfg config.APIConfig) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       60 * time.Second,
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}
