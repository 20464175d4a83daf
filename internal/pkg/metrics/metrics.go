// Package metrics records scraper and API activity for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "footodds"

// Fetch outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder owns a private registry. A nil *Recorder drops every observation.
type Recorder struct {
	reg *prometheus.Registry

	fetchAttempts   *prometheus.CounterVec
	recordsProduced *prometheus.CounterVec
	recordsRejected *prometheus.CounterVec
	scrapeDuration  *prometheus.HistogramVec
	cacheRequests   *prometheus.CounterVec
	arbitrageFound  prometheus.Counter
}

func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Match page fetch attempts by bookmaker and outcome.",
		}, []string{"bookmaker", "outcome"}),
		recordsProduced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_produced_total",
			Help:      "Odds records built from match pages.",
		}, []string{"bookmaker"}),
		recordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_rejected_total",
			Help:      "Match pages that yielded no record, by reason.",
		}, []string{"bookmaker", "reason"}),
		scrapeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scrape_duration_seconds",
			Help:      "Duration of a full bookmaker scrape.",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600},
		}, []string{"bookmaker"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Odds cache lookups by result.",
		}, []string{"result"}),
		arbitrageFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arbitrage_opportunities_total",
			Help:      "Arbitrage opportunities detected in fresh scrapes.",
		}),
	}
	r.reg.MustRegister(
		r.fetchAttempts,
		r.recordsProduced,
		r.recordsRejected,
		r.scrapeDuration,
		r.cacheRequests,
		r.arbitrageFound,
		collectors.NewGoCollector(),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Recorder) FetchAttempt(bookmaker string, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	r.fetchAttempts.WithLabelValues(bookmaker, outcome).Inc()
}

func (r *Recorder) RecordProduced(bookmaker string) {
	if r == nil {
		return
	}
	r.recordsProduced.WithLabelValues(bookmaker).Inc()
}

func (r *Recorder) RecordRejected(bookmaker, reason string) {
	if r == nil {
		return
	}
	r.recordsRejected.WithLabelValues(bookmaker, reason).Inc()
}

func (r *Recorder) ScrapeFinished(bookmaker string, d time.Duration) {
	if r == nil {
		return
	}
	r.scrapeDuration.WithLabelValues(bookmaker).Observe(d.Seconds())
}

func (r *Recorder) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheRequests.WithLabelValues(result).Inc()
}

func (r *Recorder) ArbitrageFound(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.arbitrageFound.Add(float64(n))
}
