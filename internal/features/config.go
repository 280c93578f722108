package features

import "math"

// Range maps a raw metric onto [0,1]. Log ranges compress heavy-tailed
// quantities (volume, holders, market cap) before scaling. Out-of-range
// values clamp, never reject.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
	Log bool    `yaml:"log"`
}

// Normalize maps v into [0,1] under the range.
func (r Range) Normalize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	min, max := r.Min, r.Max
	if r.Log {
		v = math.Log10(math.Max(v, 0) + 1)
		min = math.Log10(math.Max(min, 0) + 1)
		max = math.Log10(math.Max(max, 0) + 1)
	}
	if max <= min {
		return 0
	}
	n := (v - min) / (max - min)
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// GroupWeights scales each feature group's sub-vector inside the combined
// vector.
type GroupWeights struct {
	Textual float64 `yaml:"textual"`
	OnChain float64 `yaml:"onchain"`
	Social  float64 `yaml:"social"`
	Market  float64 `yaml:"market"`
}

// Config holds the extractor knobs. Zero-value fields fall back to
// DefaultConfig at construction.
type Config struct {
	Weights GroupWeights `yaml:"weights"`

	// BagDim is the dimension of the hashed bag-of-words embedding.
	BagDim int `yaml:"bag_dim"`

	Volume    Range `yaml:"volume"`
	Holders   Range `yaml:"holders"`
	Liquidity Range `yaml:"liquidity"`
	MarketCap Range `yaml:"market_cap"`
	Mentions  Range `yaml:"mentions"`
	Change    Range `yaml:"change"`
	AgeHours  Range `yaml:"age_hours"`

	// CacheSize bounds the feature cache; oldest entries evict first.
	CacheSize int `yaml:"cache_size"`
}

// DefaultConfig returns ranges tuned for small-cap token batches.
func DefaultConfig() Config {
	return Config{
		Weights:   GroupWeights{Textual: 0.3, OnChain: 0.3, Social: 0.2, Market: 0.2},
		BagDim:    16,
		Volume:    Range{Min: 0, Max: 1e8, Log: true},
		Holders:   Range{Min: 0, Max: 1e6, Log: true},
		Liquidity: Range{Min: 0, Max: 1e7, Log: true},
		MarketCap: Range{Min: 0, Max: 1e9, Log: true},
		Mentions:  Range{Min: 0, Max: 1e5, Log: true},
		Change:    Range{Min: 0, Max: 200},
		AgeHours:  Range{Min: 0, Max: 24 * 90},
		CacheSize: 4096,
	}
}
