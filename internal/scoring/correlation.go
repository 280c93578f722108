package scoring

import (
	"math"

	"github.com/driftcap/narrativescan/internal/narrative"
)

// pairCorrelation estimates how much two narratives compete for the same
// flow. Four signed factors, averaged over the ones that were active:
// shared primary theme, lifecycle stage alignment, strength similarity and
// member overlap. Result is in [-1,1]; positive means competitors.
func pairCorrelation(a, b *narrative.Profile) float64 {
	sum, active := 0.0, 0

	if a.PrimaryTheme != "" && b.PrimaryTheme != "" {
		if a.PrimaryTheme == b.PrimaryTheme {
			sum += 0.6
		} else {
			sum -= 0.6
		}
		active++
	}

	switch {
	case a.Stage == b.Stage:
		sum += 0.3
		active++
	case opposed(a.Stage, b.Stage):
		sum -= 0.3
		active++
	}

	switch d := math.Abs(a.Strength - b.Strength); {
	case d < 10:
		sum += 0.2
		active++
	case d > 40:
		sum -= 0.2
		active++
	}

	if j := memberJaccard(a, b); j > 0 {
		sum += 0.4 * j
		active++
	}

	if active == 0 {
		return 0
	}
	return sum / float64(active)
}

// opposed reports lifecycle stages at opposite ends of the cycle.
func opposed(a, b narrative.Stage) bool {
	early := func(s narrative.Stage) bool {
		return s == narrative.StageEmerging || s == narrative.StageGrowing
	}
	late := func(s narrative.Stage) bool {
		return s == narrative.StageDeclining || s == narrative.StageMature
	}
	return early(a) && late(b) || late(a) && early(b)
}

func memberJaccard(a, b *narrative.Profile) float64 {
	set := make(map[string]bool, len(a.Members))
	for _, m := range a.Members {
		set[m.Address] = true
	}
	shared := 0
	for _, m := range b.Members {
		if set[m.Address] {
			shared++
		}
	}
	union := len(a.Members) + len(b.Members) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// correlationAdjustment sums the penalty/bonus of one narrative against all
// others. Pairs above the threshold are penalized proportionally; pairs
// below the negative threshold earn a complement bonus. Capped at ±10.
func correlationAdjustment(idx int, profiles []*narrative.Profile, threshold float64) float64 {
	adj := 0.0
	for j, other := range profiles {
		if j == idx {
			continue
		}
		corr := pairCorrelation(profiles[idx], other)
		if corr > threshold {
			adj -= (corr - threshold) * 8
		} else if corr < -threshold {
			adj += (-corr - threshold) * 8
		}
	}
	return clamp(adj, -10, 10)
}
