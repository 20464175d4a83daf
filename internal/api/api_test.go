package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Vodeneev/footodds/internal/api"
	"github.com/Vodeneev/footodds/internal/pkg/cache"
	"github.com/Vodeneev/footodds/internal/pkg/config"
	"github.com/Vodeneev/footodds/internal/pkg/metrics"
	"github.com/Vodeneev/footodds/internal/pkg/models"
	"github.com/Vodeneev/footodds/internal/pkg/parserutil"
	"github.com/Vodeneev/footodds/internal/pkg/service"
	"github.com/Vodeneev/footodds/internal/pkg/storage"
)

type stubBookmaker struct {
	name, key string
	records   []models.OddsRecord
}

func (s *stubBookmaker) Name() string { return s.name }
func (s *stubBookmaker) Key() string  { return s.key }

func (s *stubBookmaker) GetMatchURLs(context.Context, []string) ([]models.MatchTarget, error) {
	out := make([]models.MatchTarget, len(s.records))
	for i, r := range s.records {
		out[i] = models.MatchTarget{URL: r.URL}
	}
	return out, nil
}

func (s *stubBookmaker) ScrapeMatch(_ context.Context, t models.MatchTarget) (*models.OddsRecord, error) {
	for _, r := range s.records {
		if r.URL == t.URL {
			rec := r
			return &rec, nil
		}
	}
	return nil, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	draw := 3.40
	rec, err := models.NewOddsRecord(models.RecordInput{
		Bookmaker: "Tipico", HomeTeam: "Team A", AwayTeam: "Team B",
		HomeOdds: 2.10, DrawOdds: &draw, AwayOdds: 3.80,
		League: "Premier League", URL: "https://www.tipico.at/m/1", Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}

	recorder := metrics.NewRecorder()
	svc := service.New(
		[]parserutil.Bookmaker{&stubBookmaker{name: "Tipico", key: "tipico", records: []models.OddsRecord{rec}}},
		cache.NewMemoryCache(cache.DefaultTTL),
		storage.NewMemoryStore(),
		service.Options{DefaultMaxMatches: 5, Metrics: recorder},
	)
	cfg := config.APIConfig{CORSOrigins: []string{"*"}, RequestTimeout: 5 * time.Second}
	srv := httptest.NewServer(api.NewRouter(svc, recorder, cfg))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	var body struct {
		Status   string   `json:"status"`
		Scrapers []string `json:"scrapers"`
	}
	if code := getJSON(t, srv.URL+"/api/health", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body.Status != "ok" || len(body.Scrapers) != 1 || body.Scrapers[0] != "tipico" {
		t.Errorf("body = %+v", body)
	}
}

func TestLeagues(t *testing.T) {
	srv := newTestServer(t)
	var body []struct {
		ID, Name, Country string
	}
	getJSON(t, srv.URL+"/api/leagues", &body)
	if len(body) != 7 || body[0].ID != "bundesliga" || body[0].Name != "Austrian Bundesliga" {
		t.Errorf("leagues = %+v", body)
	}
}

func TestGetOdds(t *testing.T) {
	srv := newTestServer(t)

	var body service.OddsResponse
	if code := getJSON(t, srv.URL+"/api/odds?bookmakers=tipico,bet365&max_matches=3", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body.Cached || body.Data.Count != 1 {
		t.Errorf("cached=%v count=%d", body.Cached, body.Data.Count)
	}
	r := body.Data.Odds[0]
	if r.HomeOdds != 2.10 || r.Draw() != 3.40 || r.AwayOdds != 3.80 || r.MatchName != "Team A vs Team B" {
		t.Errorf("record = %+v", r)
	}
	if len(body.Data.Errors) != 1 || body.Data.Errors[0] != "unknown bookmaker: bet365" {
		t.Errorf("errors = %v", body.Data.Errors)
	}

	getJSON(t, srv.URL+"/api/odds?bookmakers=TIPICO,bet365", &body)
	if !body.Cached {
		t.Error("second request should be served from cache")
	}
}

func TestGetBookmakerOdds_NotFound(t *testing.T) {
	srv := newTestServer(t)
	var body struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	}
	if code := getJSON(t, srv.URL+"/api/odds/bet365", &body); code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
	if body.Message != "unknown bookmaker: bet365" || body.Code != http.StatusNotFound {
		t.Errorf("body = %+v", body)
	}
}

func TestCompareAndStats(t *testing.T) {
	srv := newTestServer(t)
	getJSON(t, srv.URL+"/api/odds/tipico?force_refresh=true", nil)

	var cmp struct {
		Count       int `json:"count"`
		Comparisons []struct {
			MatchName string   `json:"match_name"`
			Bookmaker []string `json:"bookmakers"`
		} `json:"comparisons"`
	}
	getJSON(t, srv.URL+"/api/compare/team%20a", &cmp)
	if cmp.Count != 1 || cmp.Comparisons[0].MatchName != "Team A vs Team B" {
		t.Errorf("compare = %+v", cmp)
	}

	var st storage.Statistics
	getJSON(t, srv.URL+"/api/stats", &st)
	if st.TotalOdds != 1 || st.TotalBookmakers != 1 {
		t.Errorf("stats = %+v", st)
	}

	var arb struct {
		Count int `json:"count"`
		Hours int `json:"hours"`
	}
	getJSON(t, srv.URL+"/api/arbitrage?hours=6", &arb)
	if arb.Count != 0 || arb.Hours != 6 {
		t.Errorf("arbitrage = %+v", arb)
	}
}

func TestCacheEndpoints(t *testing.T) {
	srv := newTestServer(t)
	getJSON(t, srv.URL+"/api/odds?bookmakers=tipico", nil)

	var st cache.Stats
	getJSON(t, srv.URL+"/api/cache/stats", &st)
	if st.Size != 1 || st.TTLSeconds != 300 || st.Keys[0] != "odds:tipico:" {
		t.Errorf("cache stats = %+v", st)
	}

	resp, err := http.Post(srv.URL+"/api/cache/clear", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear status = %d", resp.StatusCode)
	}

	getJSON(t, srv.URL+"/api/cache/stats", &st)
	if st.Size != 0 {
		t.Errorf("cache size after clear = %d", st.Size)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	getJSON(t, srv.URL+"/api/odds?bookmakers=tipico", nil)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "footodds_cache_requests_total") {
		t.Errorf("metrics output missing cache counter")
	}
}
