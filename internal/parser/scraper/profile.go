package scraper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Vodeneev/footodds/internal/pkg/fetch"
)

// Market tells the extractor how many prices a match page quotes.
type Market int

const (
	// ThreeWay is a 1X2 market: home, draw, away.
	ThreeWay Market = iota
	// TwoWay has no draw.
	TwoWay
	// Auto takes three prices when a selector yields them and falls back to two.
	Auto
)

func (m Market) String() string {
	switch m {
	case ThreeWay:
		return "1x2"
	case TwoWay:
		return "12"
	case Auto:
		return "auto"
	}
	return fmt.Sprintf("Market(%d)", int(m))
}

// DefaultMaxURLs caps discovery when a profile does not set MaxURLs.
const DefaultMaxURLs = 15

// LinkStrategy finds match links on a listing page.
type LinkStrategy struct {
	Selector string
	// Attr holds the link; defaults to href.
	Attr string
	// Template turns the attribute value into a path; "{id}" is replaced.
	Template string
	// Include keeps links containing any of these substrings.
	Include []string
	// Exclude drops links containing any of these substrings.
	Exclude []string
}

func (ls LinkStrategy) attr() string {
	if ls.Attr == "" {
		return "href"
	}
	return ls.Attr
}

// links returns the raw links this strategy accepts on a page, in document order.
func (ls LinkStrategy) links(p fetch.Page) []string {
	var out []string
	for _, v := range p.Attrs(ls.Selector, ls.attr()) {
		if ls.Template != "" {
			v = strings.ReplaceAll(ls.Template, "{id}", v)
		}
		if ls.accepts(v) {
			out = append(out, v)
		}
	}
	return out
}

func (ls LinkStrategy) accepts(link string) bool {
	for _, ex := range ls.Exclude {
		if strings.Contains(link, ex) {
			return false
		}
	}
	if len(ls.Include) == 0 {
		return true
	}
	for _, in := range ls.Include {
		if strings.Contains(link, in) {
			return true
		}
	}
	return false
}

// Profile describes one bookmaker site. The scraping algorithm is shared;
// everything site-specific lives here.
type Profile struct {
	Name    string // display name stored on records
	Key     string // registry key, lower case
	BaseURL string

	// ListingPath is the site-wide football listing.
	ListingPath string
	// LeaguePaths maps canonical league names to listing paths.
	LeaguePaths map[string]string
	// Leagues are scraped when a request names no league.
	Leagues []string

	LinkStrategies []LinkStrategy

	TeamSelectors []string
	// TitleSelector holds "Home vs Away - Site"; defaults to title.
	TitleSelector string
	// AriaSelector holds aria-labels like "Home vs Away event".
	AriaSelector   string
	LeagueSelector string
	OddsSelectors  []string
	Market         Market

	MaxURLs int

	ListingFetch fetch.Options
	MatchFetch   fetch.Options
}

var errInvalidProfile = errors.New("invalid profile")

// Validate checks the fields the scraper cannot work without.
func (p Profile) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: empty name", errInvalidProfile)
	case p.BaseURL == "":
		return fmt.Errorf("%w: %s has no base url", errInvalidProfile, p.Name)
	case p.ListingPath == "" && len(p.LeaguePaths) == 0:
		return fmt.Errorf("%w: %s has no listing", errInvalidProfile, p.Name)
	case len(p.LinkStrategies) == 0:
		return fmt.Errorf("%w: %s has no link strategies", errInvalidProfile, p.Name)
	case len(p.OddsSelectors) == 0:
		return fmt.Errorf("%w: %s has no odds selectors", errInvalidProfile, p.Name)
	}
	return nil
}

func (p Profile) withDefaults() Profile {
	if p.Key == "" {
		p.Key = strings.ToLower(p.Name)
	}
	p.BaseURL = strings.TrimRight(p.BaseURL, "/")
	if p.TitleSelector == "" {
		p.TitleSelector = "title"
	}
	if p.MaxURLs <= 0 {
		p.MaxURLs = DefaultMaxURLs
	}
	return p
}
