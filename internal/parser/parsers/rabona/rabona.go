// Package rabona describes the Rabona football pages.
package rabona

import (
	"github.com/Vodeneev/footodds/internal/parser/parsers"
	"github.com/Vodeneev/footodds/internal/parser/scraper"
	"github.com/Vodeneev/footodds/internal/pkg/fetch"
)

const (
	Name    = "Rabona"
	BaseURL = "https://rabona.com"
)

func init() {
	parsers.Register("rabona", Profile)
}

var eventLinks = []string{"/event/", "/match/"}

// Profile returns the Rabona site profile. Rabona has no league listings,
// so discovery always uses the football page.
func Profile() scraper.Profile {
	return scraper.Profile{
		Name:        Name,
		BaseURL:     BaseURL,
		ListingPath: "/en/sports/football",
		LinkStrategies: []scraper.LinkStrategy{
			{Selector: `a[href*="/sports/event/"]`, Include: eventLinks},
			{Selector: ".event-link", Include: eventLinks},
			{Selector: `[data-testid="match-link"]`, Include: eventLinks},
			{Selector: ".match-row a", Include: eventLinks},
			{Selector: "[data-match-id]", Attr: "data-match-id", Template: "/en/sports/event/{id}"},
		},
		TeamSelectors: []string{
			".event-teams .team-name",
			".match-teams .team",
			`[data-testid="team-name"]`,
			".participant-name",
		},
		AriaSelector:   "[aria-label]",
		LeagueSelector: ".sport-league",
		OddsSelectors: []string{
			".odd-value",
			".market-odds .value",
			`[data-testid="odd-button"]`,
			".selection-odd-value",
		},
		Market:       scraper.Auto,
		MaxURLs:      15,
		ListingFetch: fetch.Options{NetworkIdle: true, SolveChallenge: true},
		MatchFetch:   fetch.Options{NetworkIdle: true},
	}
}
