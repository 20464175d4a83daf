package models

import (
	"errors"
	"testing"
	"time"
)

func ptr(v float64) *float64 { return &v }

func TestNewOddsRecord(t *testing.T) {
	ts := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	rec, err := NewOddsRecord(RecordInput{
		Bookmaker: "Tipico",
		HomeTeam:  " Team A ",
		AwayTeam:  "Team B",
		HomeOdds:  2.10,
		DrawOdds:  ptr(3.40),
		AwayOdds:  3.80,
		URL:       "https://example.com/m/1",
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("NewOddsRecord: %v", err)
	}
	if rec.MatchName != "Team A vs Team B" {
		t.Errorf("MatchName = %q", rec.MatchName)
	}
	if rec.HomeTeam != "Team A" {
		t.Errorf("HomeTeam = %q, want trimmed", rec.HomeTeam)
	}
	if rec.League != UnknownLeague {
		t.Errorf("League = %q, want %q", rec.League, UnknownLeague)
	}
	if !rec.HasDraw() || rec.Draw() != 3.40 {
		t.Errorf("draw = %v", rec.DrawOdds)
	}
	if !rec.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v", rec.Timestamp)
	}
}

func TestNewOddsRecord_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   RecordInput
		want error
	}{
		{"home below gate", RecordInput{HomeTeam: "A", AwayTeam: "B", HomeOdds: 1.00, AwayOdds: 2.0}, ErrInvalidOdds},
		{"away below gate", RecordInput{HomeTeam: "A", AwayTeam: "B", HomeOdds: 2.0, AwayOdds: 0}, ErrInvalidOdds},
		{"draw below gate", RecordInput{HomeTeam: "A", AwayTeam: "B", HomeOdds: 2.0, DrawOdds: ptr(0.5), AwayOdds: 2.0}, ErrInvalidOdds},
		{"missing team", RecordInput{HomeTeam: "A", AwayTeam: " ", HomeOdds: 2.0, AwayOdds: 2.0}, ErrMissingTeams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOddsRecord(tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewOddsRecord_CopiesDraw(t *testing.T) {
	d := 3.0
	rec, err := NewOddsRecord(RecordInput{HomeTeam: "A", AwayTeam: "B", HomeOdds: 2, DrawOdds: &d, AwayOdds: 4})
	if err != nil {
		t.Fatal(err)
	}
	d = 9
	if rec.Draw() != 3.0 {
		t.Errorf("record draw changed with input: %v", rec.Draw())
	}
}

func TestBestOdds(t *testing.T) {
	rec, _ := NewOddsRecord(RecordInput{HomeTeam: "A", AwayTeam: "B", HomeOdds: 2.1, DrawOdds: ptr(3.4), AwayOdds: 3.8})
	v, side := rec.BestOdds()
	if v != 3.8 || side != SideAway {
		t.Errorf("BestOdds = %v %s, want 3.8 away", v, side)
	}

	twoWay, _ := NewOddsRecord(RecordInput{HomeTeam: "A", AwayTeam: "B", HomeOdds: 1.5, AwayOdds: 1.4})
	v, side = twoWay.BestOdds()
	if v != 1.5 || side != SideHome {
		t.Errorf("BestOdds = %v %s, want 1.5 home", v, side)
	}
}
