// Package tipico describes the Tipico Austria football pages.
package tipico

import (
	"github.com/Vodeneev/footodds/internal/parser/parsers"
	"github.com/Vodeneev/footodds/internal/parser/scraper"
	"github.com/Vodeneev/footodds/internal/pkg/fetch"
	"github.com/Vodeneev/footodds/internal/pkg/leagues"
)

const (
	Name    = "Tipico"
	BaseURL = "https://www.tipico.at"
)

const footballPath = "/de/online-sportwetten/fussball"

func init() {
	parsers.Register("tipico", Profile)
}

// Profile returns the Tipico site profile.
func Profile() scraper.Profile {
	return scraper.Profile{
		Name:        Name,
		BaseURL:     BaseURL,
		ListingPath: footballPath,
		LeaguePaths: map[string]string{
			leagues.AustrianBundesliga:  footballPath + "/oesterreich/bundesliga",
			leagues.GermanBundesliga:    footballPath + "/deutschland/bundesliga",
			leagues.PremierLeague:       footballPath + "/england/premier-league",
			leagues.LaLiga:              footballPath + "/spanien/laliga",
			leagues.SerieA:              footballPath + "/italien/serie-a",
			leagues.Ligue1:              footballPath + "/frankreich/ligue-1",
			leagues.UEFAChampionsLeague: footballPath + "/international/champions-league",
			leagues.UEFAEuropaLeague:    footballPath + "/international/europa-league",
		},
		LinkStrategies: linkStrategies(
			`a[href*="/de/online-sportwetten/fussball/"]`,
			".EventSelectionLink",
			`[data-testid="event-link"]`,
			".event-title a",
		),
		TeamSelectors: []string{
			".EventHeaderTitle",
			`[data-testid="event-title"]`,
			".event-participant",
			".team-name",
		},
		AriaSelector:   "[aria-label]",
		LeagueSelector: ".BreadcrumbItem",
		OddsSelectors: []string{
			".OddsButton .OddsValue",
			`[data-testid="odd-value"]`,
			".odd-button .value",
			".selection-odd",
		},
		Market:       scraper.ThreeWay,
		MaxURLs:      15,
		ListingFetch: fetch.Options{NetworkIdle: true, SolveChallenge: true},
		MatchFetch:   fetch.Options{NetworkIdle: true},
	}
}

// linkStrategies keeps football links and drops live betting ones.
func linkStrategies(selectors ...string) []scraper.LinkStrategy {
	out := make([]scraper.LinkStrategy, 0, len(selectors))
	for _, sel := range selectors {
		out = append(out, scraper.LinkStrategy{
			Selector: sel,
			Include:  []string{"/fussball/"},
			Exclude:  []string{"/live/"},
		})
	}
	return out
}
