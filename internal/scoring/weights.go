package scoring

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights allocate the five base score components. They must sum to 1
// within tolerance and each stays inside [MinWeight, MaxWeight] of the
// owning config.
type Weights struct {
	Volume     float64 `yaml:"volume" json:"volume"`
	Social     float64 `yaml:"social" json:"social"`
	Liquidity  float64 `yaml:"liquidity" json:"liquidity"`
	Holders    float64 `yaml:"holders" json:"holders"`
	Volatility float64 `yaml:"volatility" json:"volatility"`
}

// DefaultWeights returns the stock allocation.
func DefaultWeights() Weights {
	return Weights{
		Volume:     0.35,
		Social:     0.25,
		Liquidity:  0.20,
		Holders:    0.10,
		Volatility: 0.10,
	}
}

// Sum totals the five components.
func (w Weights) Sum() float64 {
	return w.Volume + w.Social + w.Liquidity + w.Holders + w.Volatility
}

func (w Weights) asMap() map[string]float64 {
	return map[string]float64{
		"volume":     w.Volume,
		"social":     w.Social,
		"liquidity":  w.Liquidity,
		"holders":    w.Holders,
		"volatility": w.Volatility,
	}
}

func weightsFromMap(m map[string]float64) Weights {
	return Weights{
		Volume:     m["volume"],
		Social:     m["social"],
		Liquidity:  m["liquidity"],
		Holders:    m["holders"],
		Volatility: m["volatility"],
	}
}

// Config is the full scorer configuration.
type Config struct {
	Base Weights `yaml:"base_weights"`

	// AdaptEnabled switches the online weight feedback loop. Disable it
	// for deterministic runs.
	AdaptEnabled   bool    `yaml:"adapt_enabled"`
	AdaptationRate float64 `yaml:"adaptation_rate"`
	MinWeight      float64 `yaml:"min_weight"`
	MaxWeight      float64 `yaml:"max_weight"`

	CorrelationThreshold float64 `yaml:"correlation_threshold"`

	// ThemeMultipliers and StageMultipliers are data tables; extend them
	// via config rather than code.
	ThemeMultipliers map[string]ThemeMultipliers `yaml:"theme_multipliers"`
	StageMultipliers map[string]StageMultipliers `yaml:"stage_multipliers"`
}

// ThemeMultipliers scale the theme-adjustment bonuses for one theme.
type ThemeMultipliers struct {
	Volatility float64 `yaml:"volatility"`
	Social     float64 `yaml:"social"`
	Community  float64 `yaml:"community"`
	Growth     float64 `yaml:"growth"`
}

// StageMultipliers hold the lifecycle adjustment for one stage: additive
// per-component deltas plus the stage base multiplier.
type StageMultipliers struct {
	Base       float64 `yaml:"base"`
	Volume     float64 `yaml:"volume"`
	Social     float64 `yaml:"social"`
	Volatility float64 `yaml:"volatility"`
}

// DefaultConfig returns the stock scorer settings.
func DefaultConfig() Config {
	return Config{
		Base:                 DefaultWeights(),
		AdaptEnabled:         true,
		AdaptationRate:       0.02,
		MinWeight:            0.05,
		MaxWeight:            0.60,
		CorrelationThreshold: 0.30,
		ThemeMultipliers: map[string]ThemeMultipliers{
			"ai":       {Volatility: 1.2, Social: 1.5, Community: 1.3, Growth: 1.4},
			"animal":   {Volatility: 1.4, Social: 1.3, Community: 1.1, Growth: 1.0},
			"meme":     {Volatility: 1.5, Social: 1.4, Community: 1.0, Growth: 0.9},
			"politics": {Volatility: 1.3, Social: 1.2, Community: 0.9, Growth: 0.8},
			"rwa":      {Volatility: 0.7, Social: 0.8, Community: 1.2, Growth: 1.3},
		},
		StageMultipliers: map[string]StageMultipliers{
			"emerging":  {Base: 1.1, Volume: 1, Social: 2, Volatility: 1},
			"growing":   {Base: 1.2, Volume: 2, Social: 1, Volatility: 0},
			"peak":      {Base: 1.0, Volume: 0, Social: 0, Volatility: -1},
			"declining": {Base: 0.8, Volume: -1, Social: -1, Volatility: -2},
			"mature":    {Base: 0.9, Volume: 0, Social: -1, Volatility: -1},
		},
	}
}

// LoadConfig overlays a YAML file on the defaults and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read scoring config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse scoring config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the weight-sum invariant and the bound ordering.
func (c Config) Validate() error {
	if math.Abs(c.Base.Sum()-1.0) > 0.01 {
		return fmt.Errorf("base weights sum to %.4f, expected 1.0", c.Base.Sum())
	}
	if c.MinWeight < 0 || c.MaxWeight <= c.MinWeight {
		return fmt.Errorf("invalid weight bounds [%.3f, %.3f]", c.MinWeight, c.MaxWeight)
	}
	if c.AdaptationRate < 0 || c.AdaptationRate > 0.5 {
		return fmt.Errorf("adaptation rate %.3f outside [0, 0.5]", c.AdaptationRate)
	}
	for name, w := range c.Base.asMap() {
		if w < c.MinWeight || w > c.MaxWeight {
			return fmt.Errorf("base weight %s (%.3f) outside bounds [%.3f, %.3f]",
				name, w, c.MinWeight, c.MaxWeight)
		}
	}
	return nil
}

// adapt nudges each weight toward the sign of its component's correlation
// with the resulting rank, then clamps and renormalizes. Zero correlations
// leave the weights untouched.
func (c *Config) adapt(correlations map[string]float64) Weights {
	m := c.Base.asMap()
	for name, corr := range correlations {
		switch {
		case corr > 0:
			m[name] += c.AdaptationRate
		case corr < 0:
			m[name] -= c.AdaptationRate
		}
	}

	// Clamp then renormalize; a second pass keeps the result inside the
	// bounds after scaling.
	for i := 0; i < 2; i++ {
		sum := 0.0
		for name := range m {
			m[name] = clamp(m[name], c.MinWeight, c.MaxWeight)
			sum += m[name]
		}
		if sum > 0 {
			for name := range m {
				m[name] /= sum
			}
		}
	}
	c.Base = weightsFromMap(m)
	return c.Base
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
