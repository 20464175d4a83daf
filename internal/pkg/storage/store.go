package storage

import (
	"context"
	"time"

	"github.com/Vodeneev/footodds/internal/pkg/models"
)

// DefaultQueryLimit caps Query when the filter sets no limit.
const DefaultQueryLimit = 1000

// Filter narrows a Query. Zero fields match everything.
type Filter struct {
	Bookmaker     string
	League        string
	MatchContains string
	Since         time.Time
	Limit         int
}

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return DefaultQueryLimit
	}
	return f.Limit
}

// Statistics summarizes the stored odds.
type Statistics struct {
	TotalOdds       int `json:"total_odds"`
	TotalBookmakers int `json:"total_bookmakers"`
	TotalMatches    int `json:"total_matches"`
	OddsToday       int `json:"odds_today"`
}

// Store persists scraped odds records.
type Store interface {
	// Save appends records; existing rows are never updated.
	Save(ctx context.Context, records []models.OddsRecord) error

	// Query returns matching records, newest first.
	Query(ctx context.Context, filter Filter) ([]models.OddsRecord, error)

	// MatchOdds returns records whose match name contains name (case-insensitive).
	MatchOdds(ctx context.Context, name string) ([]models.OddsRecord, error)

	Statistics(ctx context.Context) (Statistics, error)

	Close() error
}
