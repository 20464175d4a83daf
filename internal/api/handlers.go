package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Vodeneev/footodds/internal/pkg/service"
)

type Handler struct {
	svc *service.Service
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"scrapers":  h.svc.Bookmakers(),
	})
}

func (h *Handler) Leagues(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Leagues())
}

// GetOdds query params: bookmakers, leagues (comma-separated), max_matches, force_refresh.
func (h *Handler) GetOdds(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetOdds(r.Context(), oddsRequest(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get odds", err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetBookmakerOdds(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "bookmaker")
	resp, err := h.svc.GetBookmakerOdds(r.Context(), name, oddsRequest(r))
	if err != nil {
		if errors.Is(err, service.ErrUnknownBookmaker) {
			respondError(w, http.StatusNotFound, err.Error(), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get odds", err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	match := strings.TrimSpace(chi.URLParam(r, "match"))
	if match == "" {
		respondError(w, http.StatusBadRequest, "match is required", nil)
		return
	}
	comps, err := h.svc.Compare(r.Context(), match)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compare odds", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"match":       match,
		"comparisons": comps,
		"count":       len(comps),
		"timestamp":   time.Now().UTC(),
	})
}

// Arbitrage query params: hours (default 24).
func (h *Handler) Arbitrage(w http.ResponseWriter, r *http.Request) {
	hours := parseIntParam(r, "hours", service.DefaultArbitrageHours)
	opps, err := h.svc.Arbitrage(r.Context(), hours)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to find arbitrage", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"opportunities": opps,
		"count":         len(opps),
		"hours":         hours,
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read statistics", err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearCache(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to clear cache", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "Cache cleared", "removed": n})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.CacheStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read cache stats", err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func oddsRequest(r *http.Request) service.OddsRequest {
	q := r.URL.Query()
	force, _ := strconv.ParseBool(q.Get("force_refresh"))
	return service.OddsRequest{
		Bookmakers:   splitList(q.Get("bookmakers")),
		Leagues:      splitList(q.Get("leagues")),
		MaxMatches:   parseIntParam(r, "max_matches", 0),
		ForceRefresh: force,
	}
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

func parseIntParam(r *http.Request, param string, defaultValue int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(param))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		slog.Error(message, "error", err)
	}
	respondJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
