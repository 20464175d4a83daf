package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Vodeneev/footodds/internal/pkg/odds"
)

// UnknownLeague is used when a page carries no league label.
const UnknownLeague = "Unknown"

var (
	// ErrInvalidOdds is returned when a price is below odds.MinValid.
	ErrInvalidOdds = errors.New("invalid odds")
	// ErrMissingTeams is returned when a team name is empty.
	ErrMissingTeams = errors.New("missing team names")
)

// Side is one outcome of a match-result market.
type Side string

const (
	SideHome Side = "home"
	SideDraw Side = "draw"
	SideAway Side = "away"
)

// OddsRecord is one bookmaker's quoted price for one match at one point in time.
// Build it with NewOddsRecord; a record that exists has validated prices.
type OddsRecord struct {
	Bookmaker string    `json:"bookmaker"`
	MatchName string    `json:"match_name"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	HomeOdds  float64   `json:"home_odds"`
	DrawOdds  *float64  `json:"draw_odds"`
	AwayOdds  float64   `json:"away_odds"`
	League    string    `json:"league"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordInput carries the fields extracted from a match page.
type RecordInput struct {
	Bookmaker string
	HomeTeam  string
	AwayTeam  string
	HomeOdds  float64
	DrawOdds  *float64
	AwayOdds  float64
	League    string
	URL       string
	Timestamp time.Time
}

// NewOddsRecord validates the input and builds a record.
func NewOddsRecord(in RecordInput) (OddsRecord, error) {
	home := strings.TrimSpace(in.HomeTeam)
	away := strings.TrimSpace(in.AwayTeam)
	if home == "" || away == "" {
		return OddsRecord{}, ErrMissingTeams
	}
	if in.HomeOdds < odds.MinValid || in.AwayOdds < odds.MinValid {
		return OddsRecord{}, fmt.Errorf("%w: home=%.2f away=%.2f", ErrInvalidOdds, in.HomeOdds, in.AwayOdds)
	}
	var draw *float64
	if in.DrawOdds != nil {
		if *in.DrawOdds < odds.MinValid {
			return OddsRecord{}, fmt.Errorf("%w: draw=%.2f", ErrInvalidOdds, *in.DrawOdds)
		}
		d := *in.DrawOdds
		draw = &d
	}
	league := strings.TrimSpace(in.League)
	if league == "" {
		league = UnknownLeague
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	return OddsRecord{
		Bookmaker: in.Bookmaker,
		MatchName: MatchName(home, away),
		HomeTeam:  home,
		AwayTeam:  away,
		HomeOdds:  in.HomeOdds,
		DrawOdds:  draw,
		AwayOdds:  in.AwayOdds,
		League:    league,
		URL:       in.URL,
		Timestamp: ts,
	}, nil
}

// MatchName formats the display label of a match.
func MatchName(home, away string) string {
	return home + " vs " + away
}

// HasDraw reports whether the record quotes a draw price.
func (r OddsRecord) HasDraw() bool {
	return r.DrawOdds != nil
}

// Draw returns the draw price or 0 when the market has no draw.
func (r OddsRecord) Draw() float64 {
	if r.DrawOdds == nil {
		return 0
	}
	return *r.DrawOdds
}

// Price returns the price for one side.
func (r OddsRecord) Price(side Side) float64 {
	switch side {
	case SideHome:
		return r.HomeOdds
	case SideDraw:
		return r.Draw()
	case SideAway:
		return r.AwayOdds
	}
	return 0
}

// BestOdds returns the highest price on the record and its side.
func (r OddsRecord) BestOdds() (float64, Side) {
	best, side := r.HomeOdds, SideHome
	if d := r.Draw(); d > best {
		best, side = d, SideDraw
	}
	if r.AwayOdds > best {
		best, side = r.AwayOdds, SideAway
	}
	return best, side
}

// Key returns the cross-bookmaker grouping key of the record's match.
func (r OddsRecord) Key() string {
	return CanonicalMatchKey(r.HomeTeam, r.AwayTeam)
}

// MatchTarget is a candidate match page found during discovery.
type MatchTarget struct {
	URL    string `json:"url"`
	League string `json:"league,omitempty"`
}
