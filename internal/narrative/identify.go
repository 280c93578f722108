package narrative

import (
	"sort"

	"github.com/driftcap/narrativescan/internal/themes"
)

// identifyThemes scores every catalog theme against the cluster's content
// and ranks them. Keyword hits are scaled by relative frequency and theme
// weight; regex pattern hits count double.
func identifyThemes(a *analysis, catalog *themes.Catalog) (primary string, secondary []string, scores map[string]float64) {
	scores = make(map[string]float64, len(catalog.Categories))
	if a.tokenCount == 0 {
		return "", nil, scores
	}
	n := float64(a.tokenCount)

	for _, cat := range catalog.Categories {
		kw := float64(a.themeHits[cat.Name]) / n * cat.Weight
		rx := float64(a.patternHits[cat.Name]) / n * cat.Weight * 2
		if s := kw + rx; s > 0 {
			scores[cat.Name] = s
		}
	}

	ranked := make([]string, 0, len(scores))
	for name := range scores {
		ranked = append(ranked, name)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	if len(ranked) > 0 {
		primary = ranked[0]
	}
	if len(ranked) > 1 {
		end := 3
		if len(ranked) < end {
			end = len(ranked)
		}
		secondary = ranked[1:end]
	}
	return primary, secondary, scores
}
