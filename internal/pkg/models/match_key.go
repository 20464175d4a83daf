package models

import (
	"strings"
)

// teamNamePrefixes are stripped for grouping so "FC Barcelona" and "Barcelona" match.
var teamNamePrefixes = []string{
	"r.c. ", "rc ", "f.c. ", "fc ", "f.k. ", "fk ", "c.f. ", "cf ", "s.c. ", "sc ",
	"s.s.c. ", "ssc ", "a.c. ", "ac ", "a.s. ", "as ", "u.d. ", "ud ", "c.d. ", "cd ",
	"s.k. ", "sk ", "sv ", "vfb ", "vfl ", "tsg ", "1. ",
}

// teamNameSuffixes are stripped for grouping so "Liverpool FC" and "Liverpool" match.
var teamNameSuffixes = []string{" fc", " f.c.", " cf", " sc", " afc", " ac"}

// teamAliases maps common bookmaker spellings to one form.
var teamAliases = map[string]string{
	"man united":     "manchester united",
	"man utd":        "manchester united",
	"man city":       "manchester city",
	"bayern munich":  "bayern",
	"bayern münchen": "bayern",
	"rapid wien":     "rapid vienna",
	"austria wien":   "austria vienna",
	"inter milan":    "inter",
	"internazionale": "inter",
}

// CanonicalMatchKey builds a stable cross-bookmaker match key: home|away.
func CanonicalMatchKey(homeTeam, awayTeam string) string {
	return normalizeTeamName(homeTeam) + "|" + normalizeTeamName(awayTeam)
}

func normalizeTeamName(s string) string {
	s = normalizeKeyPart(s)
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.Join(strings.Fields(s), " ")
	for _, p := range teamNamePrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}
	for _, suf := range teamNameSuffixes {
		if strings.HasSuffix(s, suf) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suf))
			break
		}
	}
	if alias, ok := teamAliases[s]; ok {
		return alias
	}
	return s
}

func normalizeKeyPart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "|", " ")
	return strings.Join(strings.Fields(s), " ")
}
