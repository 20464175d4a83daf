package models

import (
	"math"
	"testing"
)

func mustRecord(t *testing.T, bookmaker, home, away string, h float64, d *float64, a float64) OddsRecord {
	t.Helper()
	r, err := NewOddsRecord(RecordInput{
		Bookmaker: bookmaker,
		HomeTeam:  home,
		AwayTeam:  away,
		HomeOdds:  h,
		DrawOdds:  d,
		AwayOdds:  a,
	})
	if err != nil {
		t.Fatalf("NewOddsRecord: %v", err)
	}
	return r
}

func TestArbitrage_NoneWhenSumAboveOne(t *testing.T) {
	c := NewMatchComparison([]OddsRecord{
		mustRecord(t, "Tipico", "Team A", "Team B", 2.10, ptr(3.40), 3.80),
	})
	if got := ImpliedSum(2.10, 3.80, 3.40); math.Abs(got-1.0335) > 0.0005 {
		t.Errorf("ImpliedSum = %.4f, want ~1.0335", got)
	}
	if arb := c.Arbitrage(); arb != nil {
		t.Errorf("expected no arbitrage, got %+v", arb)
	}
}

func TestArbitrage_AcrossBookmakers(t *testing.T) {
	c := NewMatchComparison([]OddsRecord{
		mustRecord(t, "A", "Team A", "Team B", 2.50, ptr(3.00), 2.00),
		mustRecord(t, "B", "Team A", "Team B", 1.80, ptr(4.00), 2.20),
		mustRecord(t, "C", "Team A", "Team B", 1.90, ptr(3.10), 4.50),
	})

	arb := c.Arbitrage()
	if arb == nil {
		t.Fatal("expected arbitrage")
	}
	if math.Abs(arb.ProfitMargin-12.78) > 0.01 {
		t.Errorf("ProfitMargin = %.4f, want ~12.78", arb.ProfitMargin)
	}
	if arb.BestHome.Bookmaker != "A" || arb.BestDraw == nil || arb.BestDraw.Bookmaker != "B" || arb.BestAway.Bookmaker != "C" {
		t.Errorf("best picks = %s/%v/%s", arb.BestHome.Bookmaker, arb.BestDraw, arb.BestAway.Bookmaker)
	}
	if len(arb.Bets) != 3 {
		t.Fatalf("bets = %d, want 3", len(arb.Bets))
	}

	var stakes float64
	for _, b := range arb.Bets {
		stakes += b.Stake
		// Every leg pays the same amount.
		if math.Abs(b.Return-arb.Bets[0].Return) > 1e-9 {
			t.Errorf("leg %s returns %.4f, want %.4f", b.Side, b.Return, arb.Bets[0].Return)
		}
	}
	if math.Abs(stakes-100) > 1e-9 {
		t.Errorf("stakes sum = %.6f, want 100", stakes)
	}
}

func TestArbitrage_TwoWay(t *testing.T) {
	c := NewMatchComparison([]OddsRecord{
		mustRecord(t, "A", "X", "Y", 2.10, nil, 1.80),
		mustRecord(t, "B", "X", "Y", 1.70, nil, 2.20),
	})
	arb := c.Arbitrage()
	if arb == nil {
		t.Fatal("expected arbitrage")
	}
	if arb.BestDraw != nil {
		t.Error("two-way market must not pick a draw")
	}
	if len(arb.Bets) != 2 {
		t.Errorf("bets = %d, want 2", len(arb.Bets))
	}
}

func TestGroupByMatch(t *testing.T) {
	records := []OddsRecord{
		mustRecord(t, "Tipico", "FC Barcelona", "Real Madrid", 2.0, ptr(3.5), 3.2),
		mustRecord(t, "Tipico", "Liverpool", "Chelsea", 1.9, ptr(3.6), 4.0),
		mustRecord(t, "Rabona", "Barcelona", "Real Madrid", 2.1, ptr(3.4), 3.1),
	}

	groups := GroupByMatch(records)
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].MatchName != "FC Barcelona vs Real Madrid" {
		t.Errorf("first group = %q", groups[0].MatchName)
	}
	if got := groups[0].Bookmakers(); len(got) != 2 || got[0] != "Rabona" || got[1] != "Tipico" {
		t.Errorf("Bookmakers = %v", got)
	}
	best, ok := groups[0].BestHome()
	if !ok || best.Bookmaker != "Rabona" {
		t.Errorf("BestHome = %s", best.Bookmaker)
	}
}

func TestMatchComparison_Empty(t *testing.T) {
	c := NewMatchComparison(nil)
	if c.Arbitrage() != nil {
		t.Error("empty comparison must not report arbitrage")
	}
	if c.BestDraw() != nil {
		t.Error("empty comparison has no draw")
	}
}
