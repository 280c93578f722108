package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftcap/narrativescan/internal/models"
	"github.com/driftcap/narrativescan/internal/narrative"
)

func profile(id, theme string, stage narrative.Stage, strength float64, members ...string) *narrative.Profile {
	p := &narrative.Profile{
		ID:           id,
		Name:         id,
		PrimaryTheme: theme,
		Stage:        stage,
		Strength:     strength,
		Aggregates: narrative.Aggregates{
			TotalVolume:    1e6,
			AvgVolume:      2e5,
			TotalLiquidity: 3e5,
			AvgMarketCap:   1e6,
			AvgHolders:     1500,
			AvgMentions:    800,
			AvgChange:      25,
			AbsChange:      25,
		},
	}
	for _, addr := range members {
		p.Members = append(p.Members, models.MemberSummary{
			Address:        addr,
			Symbol:         addr,
			Volume24h:      2e5,
			MarketCap:      1e6,
			PriceChange24h: 25,
		})
	}
	return p
}

func TestScore_BoundsAndRanks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdaptEnabled = false
	s := NewScorer(cfg)

	profiles := []*narrative.Profile{
		profile("nar_a", "ai", narrative.StageGrowing, 60, "0x1", "0x2"),
		profile("nar_b", "animal", narrative.StageEmerging, 40, "0x3", "0x4"),
		profile("nar_c", "rwa", narrative.StageDeclining, 30, "0x5"),
	}
	res := s.Score(profiles)

	require.Len(t, res.Records, 3)
	assert.False(t, res.Fallback)
	for i, rec := range res.Records {
		assert.Equal(t, i+1, rec.Rank)
		assert.GreaterOrEqual(t, rec.FinalScore, 0.0)
		assert.LessOrEqual(t, rec.FinalScore, 100.0)
		if i > 0 {
			assert.GreaterOrEqual(t, res.Records[i-1].FinalScore, rec.FinalScore, "ranking must be descending")
		}
	}
}

func TestScore_EmptyBatch(t *testing.T) {
	s := NewScorer(DefaultConfig())
	res := s.Score(nil)
	assert.Empty(t, res.Records)
	assert.False(t, res.Fallback)
}

func TestScore_PanicFallsBackToStrengthOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdaptEnabled = false
	// A scorer built without NewScorer has a nil priors map, so the trend
	// stage panics on its first write.
	s := &Scorer{cfg: cfg}

	profiles := []*narrative.Profile{
		profile("nar_a", "ai", narrative.StageGrowing, 40, "0x1"),
		profile("nar_b", "animal", narrative.StagePeak, 80, "0x2"),
		profile("nar_c", "rwa", narrative.StageEmerging, 55, "0x3"),
	}
	res := s.Score(profiles)

	require.True(t, res.Fallback)
	assert.Contains(t, res.Diagnostic, "panic")
	require.Len(t, res.Records, 3)
	assert.Equal(t, "nar_b", res.Records[0].NarrativeID)
	assert.Equal(t, "nar_c", res.Records[1].NarrativeID)
	assert.Equal(t, "nar_a", res.Records[2].NarrativeID)
	for i, rec := range res.Records {
		assert.Equal(t, i+1, rec.Rank)
		assert.Equal(t, "stable", rec.Trend)
	}
	assert.Equal(t, 80.0, res.Records[0].FinalScore)
}

func TestCorrelation_FullOverlapIsPenalized(t *testing.T) {
	a := profile("nar_a", "ai", narrative.StagePeak, 70, "0x1", "0x2", "0x3")
	b := profile("nar_b", "ai", narrative.StagePeak, 72, "0x1", "0x2", "0x3")

	corr := pairCorrelation(a, b)
	assert.Greater(t, corr, 0.3, "identical narratives should correlate strongly")

	adj := correlationAdjustment(0, []*narrative.Profile{a, b}, 0.3)
	assert.Negative(t, adj, "full overlap with identical theme/lifecycle must be penalized")
}

func TestCorrelation_OpposedNarrativesStayBelowThreshold(t *testing.T) {
	a := profile("nar_a", "ai", narrative.StageEmerging, 70, "0x1", "0x2")
	b := profile("nar_b", "rwa", narrative.StageDeclining, 20, "0x8", "0x9")
	a.Aggregates.AvgChange = 40
	b.Aggregates.AvgChange = -40

	corr := pairCorrelation(a, b)
	assert.Less(t, corr, 0.3, "disjoint opposed narratives must not trigger the penalty")
}

func TestAdapt_WeightsStayNormalizedAndBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdaptEnabled = true
	s := NewScorer(cfg)

	profiles := make([]*narrative.Profile, 0, 6)
	for i := 0; i < 6; i++ {
		p := profile(fmt.Sprintf("nar_%d", i), "meme", narrative.StageGrowing, 50, fmt.Sprintf("0x%d", i))
		p.Aggregates.TotalVolume = float64(i+1) * 1e5
		p.Aggregates.AvgMentions = float64(6-i) * 100
		profiles = append(profiles, p)
	}

	res := s.Score(profiles)
	require.NotNil(t, res.WeightDeltas)

	w := s.Weights()
	assert.InDelta(t, 1.0, w.Sum(), 0.01, "adapted weights must renormalize to 1")
	for name, v := range map[string]float64{
		"volume": w.Volume, "social": w.Social, "liquidity": w.Liquidity,
		"holders": w.Holders, "volatility": w.Volatility,
	} {
		assert.GreaterOrEqual(t, v, cfg.MinWeight, "weight %s below bound", name)
		assert.LessOrEqual(t, v, cfg.MaxWeight, "weight %s above bound", name)
	}
}

func TestAdapt_ZeroCorrelationIsIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	before := cfg.Base
	after := cfg.adapt(map[string]float64{
		"volume": 0, "social": 0, "liquidity": 0, "holders": 0, "volatility": 0,
	})
	assert.InDelta(t, before.Volume, after.Volume, 1e-9)
	assert.InDelta(t, before.Social, after.Social, 1e-9)
	assert.InDelta(t, 1.0, after.Sum(), 1e-6)
}

func TestTrend_Labels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdaptEnabled = false
	s := NewScorer(cfg)

	p := profile("nar_t", "ai", narrative.StageGrowing, 50, "0x1")
	first := s.Score([]*narrative.Profile{p})
	require.Len(t, first.Records, 1)
	assert.Equal(t, "stable", first.Records[0].Trend, "no prior score defaults to stable")

	// Same inputs again: unchanged score stays stable.
	second := s.Score([]*narrative.Profile{p})
	assert.Equal(t, "stable", second.Records[0].Trend)
	assert.InDelta(t, 0, second.Records[0].Delta, 1e-9)
}

func TestBaseScore_FloorKeepsLowScorersVisible(t *testing.T) {
	cfg := DefaultConfig()
	s := NewScorer(cfg)

	v := s.baseScore(Components{})
	assert.InDelta(t, 5, v, 1e-9, "zero components should score the floor")
	v = s.baseScore(Components{Volume: 1, Social: 1, Liquidity: 1, Holders: 1, Volatility: 1})
	assert.InDelta(t, 95, v, 1e-6, "max components should score the ceiling")
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Base.Volume = 0.9
	assert.Error(t, bad.Validate(), "weights not summing to 1 must be rejected")

	bad = cfg
	bad.MinWeight = 0.7
	assert.Error(t, bad.Validate(), "inverted bounds must be rejected")
}

func TestPearson(t *testing.T) {
	up := []float64{1, 2, 3, 4}
	down := []float64{4, 3, 2, 1}
	assert.InDelta(t, 1, pearson(up, up), 1e-9)
	assert.InDelta(t, -1, pearson(up, down), 1e-9)
	assert.InDelta(t, 0, pearson(up, []float64{2, 2, 2, 2}), 1e-9)
}
