package narrative

import "math"

// LifecycleThresholds bucket the lifecycle score into stages. Scores below
// EmergingMax are emerging, below GrowingMax growing, below PeakMax peak,
// and above PeakMax overextended and treated as declining.
type LifecycleThresholds struct {
	EmergingMax float64 `yaml:"emerging_max"`
	GrowingMax  float64 `yaml:"growing_max"`
	PeakMax     float64 `yaml:"peak_max"`

	// YoungAgeHours / MatureAgeHours bound the age adjustment applied to
	// the lifecycle score before bucketing.
	YoungAgeHours  float64 `yaml:"young_age_hours"`
	MatureAgeHours float64 `yaml:"mature_age_hours"`
}

// DefaultLifecycleThresholds returns the built-in stage boundaries.
func DefaultLifecycleThresholds() LifecycleThresholds {
	return LifecycleThresholds{
		EmergingMax:    35,
		GrowingMax:     65,
		PeakMax:        90,
		YoungAgeHours:  48,
		MatureAgeHours: 24 * 30,
	}
}

// classifyLifecycle buckets the cluster into a stage with a confidence.
// momentum and growth are signed signals in [-1,1]; a peak-range score with
// both negative reclassifies to declining.
func classifyLifecycle(t LifecycleThresholds, strength, momentum, growth, avgAgeHours float64) (Stage, float64) {
	score := strength + momentum*20 + growth*15

	switch {
	case avgAgeHours < t.YoungAgeHours:
		score *= 0.8
	case avgAgeHours > t.MatureAgeHours:
		score *= 1.1
	}

	var stage Stage
	switch {
	case score < t.EmergingMax:
		stage = StageEmerging
	case score < t.GrowingMax:
		stage = StageGrowing
	case score < t.PeakMax:
		stage = StagePeak
	default:
		stage = StageDeclining
	}

	if stage == StagePeak && momentum < 0 && growth < 0 {
		stage = StageDeclining
	}

	// Confidence shrinks near bucket boundaries.
	conf := 0.6
	dist := boundaryDistance(t, score)
	conf += math.Min(dist/20, 0.35)
	if conf > 1 {
		conf = 1
	}
	return stage, conf
}

func boundaryDistance(t LifecycleThresholds, score float64) float64 {
	d := math.Inf(1)
	for _, b := range []float64{t.EmergingMax, t.GrowingMax, t.PeakMax} {
		if dd := math.Abs(score - b); dd < d {
			d = dd
		}
	}
	return d
}

// stageStrengthMultiplier scales the overall-strength bonuses by stage.
func stageStrengthMultiplier(s Stage) float64 {
	switch s {
	case StageEmerging:
		return 0.8
	case StageGrowing:
		return 1.2
	case StagePeak:
		return 1.0
	case StageDeclining:
		return 0.6
	default:
		return 1.0
	}
}
