package scraper

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/Vodeneev/footodds/internal/pkg/fetch"
	"github.com/Vodeneev/footodds/internal/pkg/leagues"
	"github.com/Vodeneev/footodds/internal/pkg/models"
	"github.com/Vodeneev/footodds/internal/pkg/odds"
)

var (
	// "Team A vs Team B - Site", "Team A vs. Team B | Site"
	titleTeams = regexp.MustCompile(`(?i)^\s*(.+?)\s+vs\.?\s+(.+?)(?:\s+[-|–]\s+.*)?\s*$`)
	// "Team A vs Team B event"
	ariaTeams = regexp.MustCompile(`(?i)^\s*(.+?)\s+vs\.?\s+(.+?)\s+event\s*$`)
)

// Fields are the values extracted from one match page.
type Fields struct {
	HomeTeam string
	AwayTeam string
	League   string
	Home     float64
	Draw     *float64
	Away     float64
}

// ExtractFields reads teams, league and prices from a match page. It returns
// nil when teams or enough valid prices cannot be found.
func (s *Scraper) ExtractFields(page fetch.Page, target models.MatchTarget) *Fields {
	home, away, ok := s.extractTeams(page)
	if !ok {
		slog.Warn("Could not find team names", "bookmaker", s.profile.Name, "url", target.URL)
		return nil
	}

	prices := s.extractPrices(page)
	if prices == nil {
		slog.Warn("Could not find odds values", "bookmaker", s.profile.Name, "url", target.URL)
		return nil
	}

	f := &Fields{
		HomeTeam: home,
		AwayTeam: away,
		League:   s.extractLeague(page, target),
		Home:     prices[0],
		Away:     prices[len(prices)-1],
	}
	if len(prices) == 3 {
		d := prices[1]
		f.Draw = &d
	}
	return f
}

func (s *Scraper) extractTeams(page fetch.Page) (string, string, bool) {
	for _, sel := range s.profile.TeamSelectors {
		if teams := page.Texts(sel); len(teams) >= 2 {
			return teams[0], teams[1], true
		}
	}
	if m := titleTeams.FindStringSubmatch(page.First(s.profile.TitleSelector)); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}
	if s.profile.AriaSelector != "" {
		for _, label := range page.Attrs(s.profile.AriaSelector, "aria-label") {
			if m := ariaTeams.FindStringSubmatch(label); m != nil {
				return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
			}
		}
	}
	return "", "", false
}

// extractLeague prefers the league of the listing the match came from, then
// the page label.
func (s *Scraper) extractLeague(page fetch.Page, target models.MatchTarget) string {
	if target.League != "" {
		return leagues.Canonical(target.League)
	}
	label := ""
	if s.profile.LeagueSelector != "" {
		label = page.First(s.profile.LeagueSelector)
	}
	if label == "" {
		return models.UnknownLeague
	}
	return leagues.Canonical(label)
}

// extractPrices returns the first prices of the first selector quoting
// enough valid ones: two for a two-way market, three otherwise.
func (s *Scraper) extractPrices(page fetch.Page) []float64 {
	switch s.profile.Market {
	case TwoWay:
		return s.firstPrices(page, 2)
	case ThreeWay:
		return s.firstPrices(page, 3)
	default:
		if p := s.firstPrices(page, 3); p != nil {
			return p
		}
		return s.firstPrices(page, 2)
	}
}

func (s *Scraper) firstPrices(page fetch.Page, n int) []float64 {
	for _, sel := range s.profile.OddsSelectors {
		if prices := odds.ValidPrices(page.Texts(sel)); len(prices) >= n {
			return prices[:n]
		}
	}
	return nil
}
