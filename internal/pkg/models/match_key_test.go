package models

import (
	"testing"
)

func TestNormalizeTeamName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"bayern munich", "bayern"},
		{"FC Bayern Munich", "bayern"},
		{"fc bayern", "bayern"},
		{"Bayern", "bayern"},
		{"Man United", "manchester united"},
		{"Liverpool FC", "liverpool"},
		{"  Rapid   Wien ", "rapid vienna"},
		{"SK Rapid Wien", "rapid vienna"},
		{"Red Bull Salzburg", "red bull salzburg"},
		{"", ""},
	}

	for _, tt := range tests {
		result := normalizeTeamName(tt.input)
		if result != tt.expected {
			t.Errorf("normalizeTeamName(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestCanonicalMatchKey_CrossBookmakerMatching(t *testing.T) {
	tests := []struct {
		name  string
		home1 string
		away1 string
		home2 string
		away2 string
	}{
		{"Prefix", "FC Barcelona", "Real Madrid", "Barcelona", "Real Madrid"},
		{"Suffix", "Liverpool FC", "Chelsea", "Liverpool", "Chelsea FC"},
		{"Alias", "Man Utd", "Arsenal", "Manchester United", "Arsenal"},
		{"Hyphen", "Austria-Wien", "Sturm Graz", "Austria Wien", "Sturm Graz"},
		{"Case and spaces", "  LASK ", "WAC", "lask", "wac"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k1 := CanonicalMatchKey(tt.home1, tt.away1)
			k2 := CanonicalMatchKey(tt.home2, tt.away2)
			if k1 != k2 {
				t.Errorf("keys should match:\n  %s vs %s → %s\n  %s vs %s → %s",
					tt.home1, tt.away1, k1, tt.home2, tt.away2, k2)
			}
		})
	}
}

func TestCanonicalMatchKey_OrderMatters(t *testing.T) {
	if CanonicalMatchKey("Team A", "Team B") == CanonicalMatchKey("Team B", "Team A") {
		t.Error("home and away must not be interchangeable")
	}
}
