package scoring

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/driftcap/narrativescan/internal/narrative"
)

// Components are one narrative's normalized base metrics, each in [0,1]
// relative to the batch maximum.
type Components struct {
	Volume     float64 `json:"volume"`
	Social     float64 `json:"social"`
	Liquidity  float64 `json:"liquidity"`
	Holders    float64 `json:"holders"`
	Volatility float64 `json:"volatility"`
}

// Record is the ephemeral scoring view of one narrative for this pass.
type Record struct {
	NarrativeID string     `json:"narrative_id"`
	Name        string     `json:"name"`
	Components  Components `json:"components"`

	BaseScore      float64 `json:"base_score"`
	ThemeAdj       float64 `json:"theme_adj"`
	LifecycleAdj   float64 `json:"lifecycle_adj"`
	SecondaryBonus float64 `json:"secondary_bonus"`
	CorrelationAdj float64 `json:"correlation_adj"`

	FinalScore float64 `json:"final_score"` // [0,100]
	Rank       int     `json:"rank"`
	Delta      float64 `json:"delta"`
	Trend      string  `json:"trend"` // rising | falling | stable
}

// Result is one scoring pass over the batch.
type Result struct {
	Records      []*Record          `json:"records"`
	WeightDeltas map[string]float64 `json:"weight_deltas,omitempty"`
	Fallback     bool               `json:"fallback"`
	Diagnostic   string             `json:"diagnostic,omitempty"`
}

// Scorer ranks narratives with the five-stage adjusted composite. It keeps
// one scalar per narrative (the previous final score) for trend labels.
type Scorer struct {
	mu     sync.Mutex
	cfg    Config
	priors map[string]float64
}

// NewScorer builds a scorer over the config.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg, priors: make(map[string]float64)}
}

// Weights exposes a copy of the current base weights.
func (s *Scorer) Weights() Weights {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Base
}

// Score runs all five stages and, when enabled, the weight adaptation.
// Any panic inside the stages degrades to a strength-ordered fallback
// ranking so consumers always get some ordering.
func (s *Scorer) Score(profiles []*narrative.Profile) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("scoring failed, falling back to strength ranking")
			res = s.fallback(profiles, fmt.Sprintf("scoring panic: %v", r))
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	res = &Result{}
	if len(profiles) == 0 {
		return res
	}

	maxes := batchMaxes(profiles)
	records := make([]*Record, len(profiles))
	for i, p := range profiles {
		rec := &Record{NarrativeID: p.ID, Name: p.Name}
		rec.Components = normalizeComponents(p, maxes)

		rec.BaseScore = s.baseScore(rec.Components)
		rec.ThemeAdj = s.themeAdjustment(p, rec.Components)
		rec.LifecycleAdj = s.lifecycleAdjustment(p, rec.Components, rec.BaseScore+rec.ThemeAdj)
		rec.SecondaryBonus = secondaryBonus(p)
		records[i] = rec
	}

	for i := range records {
		records[i].CorrelationAdj = correlationAdjustment(i, profiles, s.cfg.CorrelationThreshold)
		sum := records[i].BaseScore + records[i].ThemeAdj + records[i].LifecycleAdj +
			records[i].SecondaryBonus + records[i].CorrelationAdj
		records[i].FinalScore = clamp(sum, 0, 100)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].FinalScore > records[j].FinalScore
	})
	for i, rec := range records {
		rec.Rank = i + 1
		s.applyTrend(rec)
	}

	if s.cfg.AdaptEnabled {
		res.WeightDeltas = s.adaptWeights(records)
	}

	res.Records = records
	return res
}

// fallback ranks by unadjusted profile strength.
func (s *Scorer) fallback(profiles []*narrative.Profile, diag string) *Result {
	ordered := append([]*narrative.Profile(nil), profiles...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Strength > ordered[j].Strength
	})
	records := make([]*Record, len(ordered))
	for i, p := range ordered {
		records[i] = &Record{
			NarrativeID: p.ID,
			Name:        p.Name,
			FinalScore:  clamp(p.Strength, 0, 100),
			Rank:        i + 1,
			Trend:       "stable",
		}
	}
	return &Result{Records: records, Fallback: true, Diagnostic: diag}
}

type maxes struct {
	volume, social, liquidity, holders, volatility float64
}

func batchMaxes(profiles []*narrative.Profile) maxes {
	var m maxes
	for _, p := range profiles {
		m.volume = math.Max(m.volume, p.Aggregates.TotalVolume)
		m.social = math.Max(m.social, p.Aggregates.AvgMentions)
		m.liquidity = math.Max(m.liquidity, p.Aggregates.TotalLiquidity)
		m.holders = math.Max(m.holders, p.Aggregates.AvgHolders)
		m.volatility = math.Max(m.volatility, p.Aggregates.AbsChange)
	}
	return m
}

func ratio(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return clamp(v/max, 0, 1)
}

func normalizeComponents(p *narrative.Profile, m maxes) Components {
	return Components{
		Volume:     ratio(p.Aggregates.TotalVolume, m.volume),
		Social:     ratio(p.Aggregates.AvgMentions, m.social),
		Liquidity:  ratio(p.Aggregates.TotalLiquidity, m.liquidity),
		Holders:    ratio(p.Aggregates.AvgHolders, m.holders),
		Volatility: ratio(p.Aggregates.AbsChange, m.volatility),
	}
}

// baseScore combines the normalized components and scales to [5,95] so the
// weakest narratives stay visible in output.
func (s *Scorer) baseScore(c Components) float64 {
	w := s.cfg.Base
	v := c.Volume*w.Volume + c.Social*w.Social + c.Liquidity*w.Liquidity +
		c.Holders*w.Holders + c.Volatility*w.Volatility
	return 5 + v*90
}

// themeAdjustment applies the registered multiplier table for the primary
// theme, if any.
func (s *Scorer) themeAdjustment(p *narrative.Profile, c Components) float64 {
	m, ok := s.cfg.ThemeMultipliers[p.PrimaryTheme]
	if !ok {
		return 0
	}
	growth := 0.0
	if p.Aggregates.AvgChange > 0 {
		growth = clamp(p.Aggregates.AvgChange/50, 0, 1)
	}
	return c.Volatility*2*m.Volatility +
		c.Social*2*m.Social +
		c.Holders*1.5*m.Community +
		growth*1.5*m.Growth
}

// lifecycleAdjustment adds the stage's per-component deltas and applies the
// stage base multiplier to the running score.
func (s *Scorer) lifecycleAdjustment(p *narrative.Profile, c Components, running float64) float64 {
	m, ok := s.cfg.StageMultipliers[string(p.Stage)]
	if !ok {
		return 0
	}
	deltas := m.Volume*c.Volume + m.Social*c.Social + m.Volatility*c.Volatility
	return deltas + running*(m.Base-1)
}

// secondaryBonus scans member tokens for turnover spikes and large price
// swings as a proxy activity signal. Both halves are capped at +5 each so a
// single crowded narrative cannot buy more than +10 total from activity
// alone.
func secondaryBonus(p *narrative.Profile) float64 {
	spikes, swings := 0.0, 0.0
	for _, m := range p.Members {
		if m.MarketCap > 0 {
			switch turnover := m.Volume24h / m.MarketCap; {
			case turnover > 0.5:
				spikes += 3
			case turnover > 0.2:
				spikes++
			}
		}
		switch change := math.Abs(m.PriceChange24h); {
		case change > 50:
			swings += 2
		case change > 20:
			swings++
		}
	}
	return math.Min(spikes, 5) + math.Min(swings, 5)
}

func (s *Scorer) applyTrend(rec *Record) {
	prior, ok := s.priors[rec.NarrativeID]
	if !ok {
		prior = rec.FinalScore
	}
	rec.Delta = rec.FinalScore - prior

	relative := 0.0
	if prior > 0 {
		relative = rec.Delta / prior
	}
	switch {
	case rec.Delta > 5 || relative > 0.10:
		rec.Trend = "rising"
	case rec.Delta < -5 || relative < -0.10:
		rec.Trend = "falling"
	default:
		rec.Trend = "stable"
	}
	s.priors[rec.NarrativeID] = rec.FinalScore
}

// adaptWeights correlates each component with rank goodness and nudges the
// base weights, returning the per-component deltas for telemetry.
func (s *Scorer) adaptWeights(records []*Record) map[string]float64 {
	n := len(records)
	if n < 2 {
		return nil
	}

	goodness := make([]float64, n)
	values := map[string][]float64{
		"volume": make([]float64, n), "social": make([]float64, n),
		"liquidity": make([]float64, n), "holders": make([]float64, n),
		"volatility": make([]float64, n),
	}
	for i, rec := range records {
		goodness[i] = float64(n - rec.Rank)
		values["volume"][i] = rec.Components.Volume
		values["social"][i] = rec.Components.Social
		values["liquidity"][i] = rec.Components.Liquidity
		values["holders"][i] = rec.Components.Holders
		values["volatility"][i] = rec.Components.Volatility
	}

	correlations := make(map[string]float64, len(values))
	for name, v := range values {
		correlations[name] = pearson(v, goodness)
	}

	before := s.cfg.Base.asMap()
	after := s.cfg.adapt(correlations).asMap()
	deltas := make(map[string]float64, len(after))
	for name := range after {
		deltas[name] = after[name] - before[name]
	}
	log.Debug().Fields(map[string]interface{}{"deltas": deltas}).Msg("adapted base weights")
	return deltas
}

func pearson(x, y []float64) float64 {
	n := float64(len(x))
	if n < 2 {
		return 0
	}
	var sx, sy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
	}
	mx, my := sx/n, sy/n

	var cov, vx, vy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}
