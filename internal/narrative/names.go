package narrative

import (
	"fmt"
	"sort"
	"strings"
)

// themeTitles maps catalog categories to display names used by the
// theme-based generator.
var themeTitles = map[string]string{
	"animal":    "Animal Meta",
	"ai":        "AI Tokens",
	"meme":      "Meme Wave",
	"food":      "Food Coins",
	"politics":  "PolitiFi",
	"gaming":    "GameFi",
	"finance":   "DeFi Plays",
	"rwa":       "RWA Narrative",
	"celebrity": "Celebrity Coins",
	"seasonal":  "Seasonal Meta",
}

// generateNames runs the four generators, merges their candidates and keeps
// the top five by confidence.
func generateNames(a *analysis, primaryTheme string, themeScore float64) []NameCandidate {
	var candidates []NameCandidate
	candidates = append(candidates, themeName(primaryTheme, themeScore)...)
	candidates = append(candidates, keywordName(a)...)
	candidates = append(candidates, patternName(a)...)
	candidates = append(candidates, behaviorName(a)...)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > 5 {
		candidates = candidates[:5]
	}
	return candidates
}

func themeName(theme string, score float64) []NameCandidate {
	if theme == "" {
		return nil
	}
	title, ok := themeTitles[theme]
	if !ok {
		title = strings.Title(theme) + " Tokens"
	}
	conf := 0.5 + score/20
	if conf > 0.95 {
		conf = 0.95
	}
	return []NameCandidate{{Name: title, Confidence: conf, Source: "theme"}}
}

func keywordName(a *analysis) []NameCandidate {
	words := a.topWords(2)
	if len(words) == 0 {
		return nil
	}
	name := strings.Title(words[0])
	if len(words) > 1 && a.wordFreq[words[1]] >= 2 {
		name += " " + strings.Title(words[1])
	}
	freq := float64(a.wordFreq[words[0]])
	conf := 0.3 + 0.1*freq
	if conf > 0.8 {
		conf = 0.8
	}
	return []NameCandidate{{Name: name + " Cluster", Confidence: conf, Source: "keyword"}}
}

func patternName(a *analysis) []NameCandidate {
	var affix string
	switch {
	case len(a.prefixes) > 0:
		affix = a.prefixes[0]
	case len(a.suffixes) > 0:
		affix = a.suffixes[0]
	default:
		return nil
	}
	return []NameCandidate{{
		Name:       fmt.Sprintf("%s* Family", strings.Title(affix)),
		Confidence: 0.45 + 0.05*float64(len(affix)),
		Source:     "pattern",
	}}
}

func behaviorName(a *analysis) []NameCandidate {
	switch {
	case a.absChange > 50 && a.avgChange > 0:
		return []NameCandidate{{Name: "Breakout Runners", Confidence: 0.4, Source: "behavior"}}
	case a.absChange > 50:
		return []NameCandidate{{Name: "High Volatility Basket", Confidence: 0.4, Source: "behavior"}}
	case a.avgVolume > 1e6:
		return []NameCandidate{{Name: "High Volume Movers", Confidence: 0.35, Source: "behavior"}}
	case a.emergence == "burst":
		return []NameCandidate{{Name: "Fresh Launch Wave", Confidence: 0.35, Source: "behavior"}}
	}
	return []NameCandidate{{Name: "Mixed Basket", Confidence: 0.1, Source: "behavior"}}
}
