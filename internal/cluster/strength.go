package cluster

import (
	"math"

	"github.com/driftcap/narrativescan/internal/features"
	"github.com/driftcap/narrativescan/internal/history"
)

// Strength is the per-cluster signal bundle carried downstream with every
// cluster.
type Strength struct {
	Strength  float64 `json:"strength"`  // [0,100]
	Coherence float64 `json:"coherence"` // [0,1]
	Stability float64 `json:"stability"` // [0,1], from the history provider
	Growth    float64 `json:"growth"`    // [0,1], from the history provider
}

// Evaluator computes cluster strength and coherence. Stability and growth
// come from the injected historical provider; see history.Neutral for the
// default.
type Evaluator struct {
	provider history.Provider
}

// NewEvaluator builds an evaluator; a nil provider falls back to neutral.
func NewEvaluator(p history.Provider) *Evaluator {
	if p == nil {
		p = history.Neutral{}
	}
	return &Evaluator{provider: p}
}

// Evaluate computes the four signals for one cluster.
func (e *Evaluator) Evaluate(c Cluster, records []*features.Record) Strength {
	n := float64(len(c.Members))
	if n == 0 {
		return Strength{}
	}

	var vol, holders, change, mentions float64
	addrs := make([]string, 0, len(c.Members))
	for _, i := range c.Members {
		tok := records[i].Token
		vol += tok.Volume24h
		holders += tok.Holders
		change += math.Abs(tok.PriceChange24h)
		mentions += tok.SocialMentions
		addrs = append(addrs, tok.Address)
	}

	components := []float64{
		cap100(math.Log10(vol/n+1) * 12),
		cap100(math.Log10(holders/n+1) * 15),
		cap100(change / n),
		cap100(math.Log10(mentions/n+1) * 18),
	}
	strength := 0.0
	for _, c := range components {
		strength += c
	}
	strength /= float64(len(components))

	return Strength{
		Strength:  strength,
		Coherence: coherence(c, records),
		Stability: e.provider.LiquidityStability(addrs),
		Growth:    e.provider.HolderGrowth(addrs),
	}
}

// coherence is the mean pairwise similarity (1 − normalized distance) over
// members, clamped at zero.
func coherence(c Cluster, records []*features.Record) float64 {
	if len(c.Members) < 2 {
		return 1
	}
	maxDist := math.Sqrt(float64(len(records[c.Members[0]].Combined)))
	sum, pairs := 0.0, 0
	for i := 0; i < len(c.Members); i++ {
		for j := i + 1; j < len(c.Members); j++ {
			d := euclidean(records[c.Members[i]].Combined, records[c.Members[j]].Combined)
			sum += 1 - d/maxDist
			pairs++
		}
	}
	coh := sum / float64(pairs)
	if coh < 0 {
		return 0
	}
	return coh
}

func cap100(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}
