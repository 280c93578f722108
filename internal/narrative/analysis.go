package narrative

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/driftcap/narrativescan/internal/features"
	"github.com/driftcap/narrativescan/internal/themes"
)

// analysis is the intermediate content view of one cluster that the name
// generators, theme identification and assessments all read from.
type analysis struct {
	wordFreq    map[string]int
	themeHits   map[string]int // keyword hits per category
	patternHits map[string]int // regex hits per category
	prefixes    []string       // common name prefixes, most shared first
	suffixes    []string

	totalVolume    float64
	avgVolume      float64
	totalLiquidity float64
	avgMarketCap   float64
	avgHolders     float64
	avgMentions    float64
	avgChange      float64 // signed mean of 24h price change
	absChange      float64 // mean of |24h price change|

	avgAgeHours float64
	ageSpread   float64 // max-min age in hours
	emergence   string  // burst | rapid | gradual | extended
	tokenCount  int
}

func analyze(members []*features.Record, catalog *themes.Catalog, now time.Time) *analysis {
	a := &analysis{
		wordFreq:    make(map[string]int),
		themeHits:   make(map[string]int),
		patternHits: make(map[string]int),
		tokenCount:  len(members),
	}
	if len(members) == 0 {
		return a
	}

	minAge, maxAge := math.Inf(1), 0.0
	names := make([]string, 0, len(members))
	for _, rec := range members {
		tok := rec.Token
		text := strings.ToLower(tok.Name + " " + tok.Symbol)
		names = append(names, strings.ToLower(tok.Name))

		for _, w := range strings.Fields(text) {
			w = strings.Trim(w, "$#@!.,-_")
			if len(w) >= 2 {
				a.wordFreq[w]++
			}
		}
		for _, cat := range catalog.Categories {
			a.themeHits[cat.Name] += catalog.KeywordHits(cat, text)
			a.patternHits[cat.Name] += catalog.PatternHits(cat, text)
		}

		a.totalVolume += tok.Volume24h
		a.totalLiquidity += tok.Liquidity
		a.avgMarketCap += tok.MarketCap
		a.avgHolders += tok.Holders
		a.avgMentions += tok.SocialMentions
		a.avgChange += tok.PriceChange24h
		a.absChange += math.Abs(tok.PriceChange24h)

		age := tok.AgeHours(now)
		if age < minAge {
			minAge = age
		}
		if age > maxAge {
			maxAge = age
		}
		a.avgAgeHours += age
	}

	n := float64(len(members))
	a.avgVolume = a.totalVolume / n
	a.avgMarketCap /= n
	a.avgHolders /= n
	a.avgMentions /= n
	a.avgChange /= n
	a.absChange /= n
	a.avgAgeHours /= n
	a.ageSpread = maxAge - minAge

	// Emergence pattern from the age-range width: a narrow window means the
	// members appeared together.
	switch {
	case a.ageSpread <= 6:
		a.emergence = "burst"
	case a.ageSpread <= 48:
		a.emergence = "rapid"
	case a.ageSpread <= 24*14:
		a.emergence = "gradual"
	default:
		a.emergence = "extended"
	}

	a.prefixes = commonAffixes(names, true)
	a.suffixes = commonAffixes(names, false)
	return a
}

// topWords returns the most frequent words, ties broken alphabetically for
// stable output.
func (a *analysis) topWords(n int) []string {
	type wf struct {
		w string
		f int
	}
	all := make([]wf, 0, len(a.wordFreq))
	for w, f := range a.wordFreq {
		all = append(all, wf{w, f})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].f != all[j].f {
			return all[i].f > all[j].f
		}
		return all[i].w < all[j].w
	})
	if len(all) > n {
		all = all[:n]
	}
	out := make([]string, len(all))
	for i, e := range all {
		out[i] = e.w
	}
	return out
}

// commonAffixes mines 3+ character prefixes (or suffixes) shared by at least
// a third of the names.
func commonAffixes(names []string, prefix bool) []string {
	if len(names) < 2 {
		return nil
	}
	counts := make(map[string]int)
	for _, name := range names {
		name = strings.ReplaceAll(name, " ", "")
		for l := 3; l <= 6 && l <= len(name); l++ {
			var affix string
			if prefix {
				affix = name[:l]
			} else {
				affix = name[len(name)-l:]
			}
			counts[affix]++
		}
	}
	threshold := (len(names) + 2) / 3
	if threshold < 2 {
		threshold = 2
	}
	var out []string
	for affix, c := range counts {
		if c >= threshold {
			out = append(out, affix)
		}
	}
	// Longer affixes first, then count-independent alphabetical for
	// determinism.
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
