package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/Vodeneev/footodds/internal/pkg/models"
	"github.com/Vodeneev/footodds/internal/pkg/parserutil"
	"github.com/Vodeneev/footodds/internal/pkg/storage"
)

const (
	topPerBookmaker = 5
	latestLimit     = 20
)

var rule = strings.Repeat("=", 60)

func formatOdds(r models.OddsRecord) string {
	draw := "-"
	if r.HasDraw() {
		draw = fmt.Sprintf("%.2f", r.Draw())
	}
	return fmt.Sprintf("%s | %.2f / %s / %.2f", r.MatchName, r.HomeOdds, draw, r.AwayOdds)
}

// printRunSummary lists counts and the first few records of every bookmaker.
func printRunSummary(w io.Writer, res parserutil.RunResult) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Run %s: %d odds in %s\n", res.RunID, len(res.Records), res.Duration.Round(time.Second))
	fmt.Fprintln(w, rule)

	byBookmaker := groupByBookmaker(res.Records)
	for _, name := range sortedKeys(byBookmaker) {
		recs := byBookmaker[name]
		fmt.Fprintf(w, "\n%s: %d matches\n", name, len(recs))
		for i, r := range recs {
			if i == topPerBookmaker {
				fmt.Fprintf(w, "  ... and %d more\n", len(recs)-topPerBookmaker)
				break
			}
			fmt.Fprintf(w, "  %s\n", formatOdds(r))
		}
	}

	errNames := make([]string, 0, len(res.Errors))
	for name := range res.Errors {
		errNames = append(errNames, name)
	}
	sort.Strings(errNames)
	for _, name := range errNames {
		fmt.Fprintf(w, "\n%s: failed: %v\n", name, res.Errors[name])
	}
}

func printArbitrage(w io.Writer, opps []models.ArbitrageOpportunity) {
	if len(opps) == 0 {
		return
	}
	fmt.Fprintf(w, "\nArbitrage opportunities: %d\n", len(opps))
	for _, o := range opps {
		fmt.Fprintf(w, "  %s  %.2f%%\n", o.MatchName, o.ProfitMargin)
		for _, b := range o.Bets {
			fmt.Fprintf(w, "    %-5s %.2f @ %s (stake %.1f%%)\n", b.Side, b.Odd, b.Bookmaker, b.Stake)
		}
	}
}

// printStoreSummary prints totals and the newest stored odds per bookmaker.
func printStoreSummary(w io.Writer, st storage.Statistics, latest []models.OddsRecord) {
	fmt.Fprintf(w, "\n%s\nDatabase statistics\n%s\n", rule, rule)
	fmt.Fprintf(w, "Total odds:       %d\n", st.TotalOdds)
	fmt.Fprintf(w, "Bookmakers:       %d\n", st.TotalBookmakers)
	fmt.Fprintf(w, "Unique matches:   %d\n", st.TotalMatches)
	fmt.Fprintf(w, "Odds today:       %d\n", st.OddsToday)

	if len(latest) == 0 {
		return
	}
	fmt.Fprintf(w, "\nLatest odds\n")
	byBookmaker := groupByBookmaker(latest)
	for _, name := range sortedKeys(byBookmaker) {
		fmt.Fprintf(w, "\n%s:\n", name)
		for _, r := range byBookmaker[name] {
			fmt.Fprintf(w, "  %s  (%s)\n", formatOdds(r), r.Timestamp.Format("2006-01-02 15:04"))
		}
	}
}

func groupByBookmaker(records []models.OddsRecord) map[string][]models.OddsRecord {
	out := make(map[string][]models.OddsRecord)
	for _, r := range records {
		out[r.Bookmaker] = append(out[r.Bookmaker], r)
	}
	return out
}

func sortedKeys(m map[string][]models.OddsRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
