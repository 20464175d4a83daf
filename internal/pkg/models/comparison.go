package models

import (
	"sort"
)

// MatchComparison groups records of one match quoted by different bookmakers.
type MatchComparison struct {
	Key       string       `json:"key"`
	MatchName string       `json:"match_name"`
	HomeTeam  string       `json:"home_team"`
	AwayTeam  string       `json:"away_team"`
	League    string       `json:"league"`
	Odds      []OddsRecord `json:"odds"`
}

// Bet is one leg of an arbitrage position.
type Bet struct {
	Bookmaker string  `json:"bookmaker"`
	Side      Side    `json:"side"`
	Odd       float64 `json:"odd"`
	Stake     float64 `json:"stake"`  // percent of bank
	Return    float64 `json:"return"` // payout per 100 units of bank
}

// ArbitrageOpportunity is a price combination whose implied probabilities sum below 1.
type ArbitrageOpportunity struct {
	MatchName    string      `json:"match_name"`
	ProfitMargin float64     `json:"profit_margin"`
	ImpliedSum   float64     `json:"implied_sum"`
	BestHome     OddsRecord  `json:"best_home"`
	BestDraw     *OddsRecord `json:"best_draw,omitempty"`
	BestAway     OddsRecord  `json:"best_away"`
	Bets         []Bet       `json:"bets"`
}

// NewMatchComparison builds a comparison from records of one match.
func NewMatchComparison(records []OddsRecord) MatchComparison {
	c := MatchComparison{Odds: append([]OddsRecord(nil), records...)}
	if len(records) > 0 {
		first := records[0]
		c.Key = first.Key()
		c.MatchName = first.MatchName
		c.HomeTeam = first.HomeTeam
		c.AwayTeam = first.AwayTeam
		c.League = first.League
		for _, r := range records {
			if c.League == UnknownLeague && r.League != UnknownLeague {
				c.League = r.League
			}
		}
	}
	return c
}

// GroupByMatch groups records by canonical match key, keeping first-seen order.
func GroupByMatch(records []OddsRecord) []MatchComparison {
	var keys []string
	byKey := make(map[string][]OddsRecord)
	for _, r := range records {
		k := r.Key()
		if _, ok := byKey[k]; !ok {
			keys = append(keys, k)
		}
		byKey[k] = append(byKey[k], r)
	}
	out := make([]MatchComparison, 0, len(keys))
	for _, k := range keys {
		out = append(out, NewMatchComparison(byKey[k]))
	}
	return out
}

// Bookmakers returns the distinct bookmakers quoting the match, sorted.
func (c MatchComparison) Bookmakers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range c.Odds {
		if !seen[r.Bookmaker] {
			seen[r.Bookmaker] = true
			out = append(out, r.Bookmaker)
		}
	}
	sort.Strings(out)
	return out
}

// BestHome returns the record with the highest home price.
func (c MatchComparison) BestHome() (OddsRecord, bool) {
	return c.best(SideHome)
}

// BestAway returns the record with the highest away price.
func (c MatchComparison) BestAway() (OddsRecord, bool) {
	return c.best(SideAway)
}

// BestDraw returns the record with the highest draw price, nil if no record has a draw.
func (c MatchComparison) BestDraw() *OddsRecord {
	r, ok := c.best(SideDraw)
	if !ok {
		return nil
	}
	return &r
}

func (c MatchComparison) best(side Side) (OddsRecord, bool) {
	var (
		best  OddsRecord
		found bool
	)
	for _, r := range c.Odds {
		p := r.Price(side)
		if p <= 0 {
			continue
		}
		if !found || p > best.Price(side) {
			best, found = r, true
		}
	}
	return best, found
}

// Arbitrage checks the best prices per outcome. It returns nil when the
// implied probability sum is not below 1.
func (c MatchComparison) Arbitrage() *ArbitrageOpportunity {
	home, okHome := c.BestHome()
	away, okAway := c.BestAway()
	if !okHome || !okAway {
		return nil
	}
	draw := c.BestDraw()

	legs := []leg{{home, SideHome}}
	if draw != nil {
		legs = append(legs, leg{*draw, SideDraw})
	}
	legs = append(legs, leg{away, SideAway})

	total := ImpliedSum(home.HomeOdds, away.AwayOdds, drawPrice(draw))
	if total >= 1 {
		return nil
	}

	bets := make([]Bet, 0, len(legs))
	for _, l := range legs {
		price := l.rec.Price(l.side)
		stake := (1 / price) / total * 100
		bets = append(bets, Bet{
			Bookmaker: l.rec.Bookmaker,
			Side:      l.side,
			Odd:       price,
			Stake:     stake,
			Return:    stake * price,
		})
	}

	return &ArbitrageOpportunity{
		MatchName:    c.MatchName,
		ProfitMargin: (1 - total) * 100,
		ImpliedSum:   total,
		BestHome:     home,
		BestDraw:     draw,
		BestAway:     away,
		Bets:         bets,
	}
}

type leg struct {
	rec  OddsRecord
	side Side
}

func drawPrice(r *OddsRecord) float64 {
	if r == nil {
		return 0
	}
	return r.Draw()
}

// ImpliedSum returns 1/home + 1/away, plus 1/draw when draw > 0.
func ImpliedSum(home, away, draw float64) float64 {
	sum := 1/home + 1/away
	if draw > 0 {
		sum += 1 / draw
	}
	return sum
}
