// Package config aggregates every tunable of the pipeline into one
// YAML-loadable structure with validated defaults.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/driftcap/narrativescan/internal/cluster"
	"github.com/driftcap/narrativescan/internal/features"
	"github.com/driftcap/narrativescan/internal/narrative"
	"github.com/driftcap/narrativescan/internal/scoring"
	"github.com/driftcap/narrativescan/internal/themes"
)

// Config is the root configuration. Every section has working defaults and
// can be overridden independently from a YAML file.
type Config struct {
	Features  features.Config   `yaml:"features"`
	Cluster   cluster.Config    `yaml:"cluster"`
	Narrative narrative.Config  `yaml:"narrative"`
	Scoring   scoring.Config    `yaml:"scoring"`
	Themes    []themes.Category `yaml:"themes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Features:  features.DefaultConfig(),
		Cluster:   cluster.DefaultConfig(),
		Narrative: narrative.DefaultConfig(),
		Scoring:   scoring.DefaultConfig(),
	}
}

// Load overlays a YAML file on the defaults and validates the result. An
// empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cross-field invariants.
func (c Config) Validate() error {
	if c.Cluster.MinClusterSize < 1 {
		return fmt.Errorf("min_cluster_size must be >= 1, got %d", c.Cluster.MinClusterSize)
	}
	if c.Cluster.MaxClusters < 2 {
		return fmt.Errorf("max_clusters must be >= 2, got %d", c.Cluster.MaxClusters)
	}
	if c.Cluster.DensityRadius <= 0 {
		return fmt.Errorf("density_radius must be positive, got %f", c.Cluster.DensityRadius)
	}
	lt := c.Narrative.Lifecycle
	if !(lt.EmergingMax < lt.GrowingMax && lt.GrowingMax < lt.PeakMax) {
		return fmt.Errorf("lifecycle thresholds must be strictly increasing, got %.1f/%.1f/%.1f",
			lt.EmergingMax, lt.GrowingMax, lt.PeakMax)
	}
	w := c.Features.Weights
	if sum := w.Textual + w.OnChain + w.Social + w.Market; math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("feature group weights sum to %.3f, expected 1.0", sum)
	}
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	return nil
}

// Catalog builds the theme catalog, custom categories taking precedence
// over the default set when provided.
func (c Config) Catalog() *themes.Catalog {
	if len(c.Themes) > 0 {
		return themes.NewCatalog(c.Themes)
	}
	return themes.Default()
}
