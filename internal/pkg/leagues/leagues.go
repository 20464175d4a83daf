// Package leagues holds the football competitions the scrapers target and the
// spellings bookmakers use for them.
package leagues

import (
	"sort"
	"strings"
)

// Canonical league names.
const (
	AustrianBundesliga  = "Austrian Bundesliga"
	Austrian2Liga       = "Austrian 2. Liga"
	GermanBundesliga    = "German Bundesliga"
	German2Bundesliga   = "German 2. Bundesliga"
	PremierLeague       = "Premier League"
	Championship        = "Championship"
	LeagueOne           = "League One"
	LeagueTwo           = "League Two"
	LaLiga              = "La Liga"
	LaLiga2             = "La Liga 2"
	SerieA              = "Serie A"
	SerieB              = "Serie B"
	Ligue1              = "Ligue 1"
	Ligue2              = "Ligue 2"
	UEFAChampionsLeague = "UEFA Champions League"
	UEFAEuropaLeague    = "UEFA Europa League"
	UEFANationsLeague   = "UEFA Nations League"
)

// Targets lists every league the scrapers keep, in priority order.
var Targets = []string{
	UEFAChampionsLeague,
	UEFAEuropaLeague,
	UEFANationsLeague,
	PremierLeague,
	GermanBundesliga,
	LaLiga,
	SerieA,
	Ligue1,
	AustrianBundesliga,
	Championship,
	German2Bundesliga,
	LaLiga2,
	SerieB,
	Ligue2,
	Austrian2Liga,
	LeagueOne,
	LeagueTwo,
}

// Countries the targets belong to. International covers UEFA competitions.
var Countries = []string{"Austria", "Germany", "England", "Spain", "Italy", "France", "International"}

// aliases maps lower-cased bookmaker labels to canonical names.
var aliases = map[string]string{
	"österreichische bundesliga": AustrianBundesliga,
	"öbl":                        AustrianBundesliga,
	"2. liga":                    Austrian2Liga,
	"1. bundesliga":              GermanBundesliga,
	"bundesliga":                 GermanBundesliga,
	"2. bundesliga":              German2Bundesliga,
	"epl":                        PremierLeague,
	"english premier league":     PremierLeague,
	"efl championship":           Championship,
	"efl league one":             LeagueOne,
	"efl league two":             LeagueTwo,
	"primera división":           LaLiga,
	"laliga":                     LaLiga,
	"laliga santander":           LaLiga,
	"segunda división":           LaLiga2,
	"laliga smartbank":           LaLiga2,
	"serie a tim":                SerieA,
	"serie bkt":                  SerieB,
	"ligue 1 uber eats":          Ligue1,
	"ligue 2 bkt":                Ligue2,
	"ucl":                        UEFAChampionsLeague,
	"champions":                  UEFAChampionsLeague,
	"champions league":           UEFAChampionsLeague,
	"uel":                        UEFAEuropaLeague,
	"europa":                     UEFAEuropaLeague,
	"europa league":              UEFAEuropaLeague,
	"unl":                        UEFANationsLeague,
	"nations league":             UEFANationsLeague,
}

// Entry is one league exposed to API clients.
type Entry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

var catalogue = []Entry{
	{ID: "bundesliga", Name: AustrianBundesliga, Country: "AT"},
	{ID: "2-liga", Name: Austrian2Liga, Country: "AT"},
	{ID: "bundesliga-de", Name: GermanBundesliga, Country: "DE"},
	{ID: "premier-league", Name: PremierLeague, Country: "EN"},
	{ID: "la-liga", Name: LaLiga, Country: "ES"},
	{ID: "serie-a", Name: SerieA, Country: "IT"},
	{ID: "ligue-1", Name: Ligue1, Country: "FR"},
}

// Catalogue returns the leagues clients can filter by.
func Catalogue() []Entry {
	return append([]Entry(nil), catalogue...)
}

// Canonical maps a bookmaker's league label to its canonical name.
// Unrecognised labels are returned trimmed.
func Canonical(label string) string {
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return ""
	}
	lower := strings.ToLower(label)
	for _, t := range Targets {
		if strings.ToLower(t) == lower {
			return t
		}
	}
	if c, ok := aliases[lower]; ok {
		return c
	}
	return label
}

// Resolve maps an API league parameter to a canonical name. Catalogue ids
// win over aliases, so "bundesliga" is the Austrian one.
func Resolve(param string) string {
	id := strings.ToLower(strings.TrimSpace(param))
	for _, e := range catalogue {
		if e.ID == id {
			return e.Name
		}
	}
	return Canonical(param)
}

// ResolveAll resolves every parameter, dropping empties and duplicates.
func ResolveAll(params []string) []string {
	seen := make(map[string]bool, len(params))
	var out []string
	for _, p := range params {
		name := Resolve(p)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// IsTarget reports whether the label names a targeted league.
func IsTarget(label string) bool {
	return Priority(label) < unranked
}

const unranked = 999

// Priority returns the display rank of a league; lower comes first.
func Priority(label string) int {
	c := Canonical(label)
	for i, t := range Targets {
		if t == c {
			return i + 1
		}
	}
	return unranked
}

// SortByPriority orders labels by Priority, keeping input order among equals.
func SortByPriority(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		return Priority(labels[i]) < Priority(labels[j])
	})
}
