package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Vodeneev/footodds/internal/pkg/models"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a process-local Store, used when no DSN is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.OddsRecord
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// WithClock replaces the clock used for OddsToday.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Save(_ context.Context, records []models.OddsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, filter Filter) ([]models.OddsRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var out []models.OddsRecord
	needle := strings.ToLower(filter.MatchContains)
	for _, r := range s.records {
		if filter.Bookmaker != "" && !strings.EqualFold(r.Bookmaker, filter.Bookmaker) {
			continue
		}
		if filter.League != "" && r.League != filter.League {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(r.MatchName), needle) {
			continue
		}
		if !filter.Since.IsZero() && r.Timestamp.Before(filter.Since) {
			continue
		}
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit := filter.limit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) MatchOdds(ctx context.Context, name string) ([]models.OddsRecord, error) {
	return s.Query(ctx, Filter{MatchContains: name})
}

func (s *MemoryStore) Statistics(_ context.Context) (Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	bookmakers := make(map[string]struct{})
	matches := make(map[string]struct{})
	st := Statistics{TotalOdds: len(s.records)}
	for _, r := range s.records {
		bookmakers[r.Bookmaker] = struct{}{}
		matches[r.MatchName] = struct{}{}
		if !r.Timestamp.Before(startOfDay) {
			st.OddsToday++
		}
	}
	st.TotalBookmakers = len(bookmakers)
	st.TotalMatches = len(matches)
	return st, nil
}

func (s *MemoryStore) Close() error { return nil }
