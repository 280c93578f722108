package narrative

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/driftcap/narrativescan/internal/cluster"
	"github.com/driftcap/narrativescan/internal/features"
	"github.com/driftcap/narrativescan/internal/history"
	"github.com/driftcap/narrativescan/internal/models"
	"github.com/driftcap/narrativescan/internal/themes"
)

// Config holds the characterizer knobs.
type Config struct {
	Lifecycle    LifecycleThresholds `yaml:"lifecycle"`
	RegistrySize int                 `yaml:"registry_size"`
}

// DefaultConfig returns the built-in characterizer settings.
func DefaultConfig() Config {
	return Config{
		Lifecycle:    DefaultLifecycleThresholds(),
		RegistrySize: 256,
	}
}

// Characterizer turns evaluated clusters into narrative profiles and keeps
// their cross-run identity through the registry.
type Characterizer struct {
	cfg      Config
	catalog  *themes.Catalog
	registry *Registry
	provider history.Provider
	now      func() time.Time
}

// NewCharacterizer wires a characterizer. Nil catalog or provider fall back
// to the defaults.
func NewCharacterizer(cfg Config, catalog *themes.Catalog, provider history.Provider) *Characterizer {
	if catalog == nil {
		catalog = themes.Default()
	}
	if provider == nil {
		provider = history.Neutral{}
	}
	return &Characterizer{
		cfg:      cfg,
		catalog:  catalog,
		registry: NewRegistry(cfg.RegistrySize),
		provider: provider,
		now:      time.Now,
	}
}

// Registry exposes the retained profiles.
func (c *Characterizer) Registry() *Registry { return c.registry }

// Characterize produces (or refreshes) the profile for one cluster. Any
// panic inside the per-cluster work is converted to an error so a bad
// cluster never aborts the batch.
func (c *Characterizer) Characterize(cl cluster.Cluster, records []*features.Record, sig cluster.Strength) (p *Profile, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = fmt.Errorf("characterize cluster %d: panic: %v", cl.ID, r)
		}
	}()

	members := make([]*features.Record, 0, len(cl.Members))
	summaries := make([]models.MemberSummary, 0, len(cl.Members))
	addrs := make([]string, 0, len(cl.Members))
	for _, i := range cl.Members {
		members = append(members, records[i])
		summaries = append(summaries, models.Summarize(records[i].Token))
		addrs = append(addrs, records[i].Token.Address)
	}

	now := c.now()
	a := analyze(members, c.catalog, now)
	primary, secondary, scores := identifyThemes(a, c.catalog)
	names := generateNames(a, primary, scores[primary])

	momentum := clamp(a.avgChange/100, -1, 1)
	growth := (c.provider.CommunityGrowth(addrs) - 0.5) * 2
	stage, stageConf := classifyLifecycle(c.cfg.Lifecycle, sig.Strength, momentum, growth, a.avgAgeHours)

	overall := overallStrength(sig.Strength, scores, a, stage)
	confidence := confidenceScore(a, primary, secondary, scores)

	prev := c.registry.Match(addrs)
	if prev == nil {
		p = &Profile{
			ID:        DeriveID(summaries, primary, now),
			CreatedAt: now,
			Version:   1,
		}
	} else {
		p = prev
		p.Version++
		p.LastChanges = significantChanges(prev, overall, stage, primary)
	}

	p.Name = bestName(names)
	p.NameCandidates = names
	p.PrimaryTheme = primary
	p.SecondaryThemes = secondary
	p.ThemeScores = scores
	p.Characteristics = assess(a)
	p.Stage = stage
	p.StageConfidence = stageConf
	p.Strength = overall
	p.Confidence = confidence
	p.Coherence = sig.Coherence
	p.Aggregates = Aggregates{
		TotalVolume:    a.totalVolume,
		AvgVolume:      a.avgVolume,
		TotalLiquidity: a.totalLiquidity,
		AvgMarketCap:   a.avgMarketCap,
		AvgHolders:     a.avgHolders,
		AvgMentions:    a.avgMentions,
		AvgChange:      a.avgChange,
		AbsChange:      a.absChange,
		AvgAgeHours:    a.avgAgeHours,
	}
	p.Members = summaries
	p.UpdatedAt = now

	c.registry.Store(p)
	log.Debug().
		Str("narrative", p.ID).
		Str("name", p.Name).
		Str("theme", p.PrimaryTheme).
		Str("stage", string(p.Stage)).
		Float64("strength", p.Strength).
		Int("version", p.Version).
		Msg("characterized cluster")
	return p, nil
}

func bestName(names []NameCandidate) string {
	if len(names) == 0 {
		return "Unnamed Narrative"
	}
	return names[0].Name
}

// overallStrength adds the bonus terms onto the cluster strength and scales
// by the stage multiplier, clamped to [0,100].
func overallStrength(base float64, scores map[string]float64, a *analysis, stage Stage) float64 {
	bonus := 0.0
	for _, s := range scores {
		bonus += s * 2
	}
	if bonus > 15 {
		bonus = 15
	}
	if a.avgVolume > 1e6 {
		bonus += 8
	} else if a.avgVolume > 1e5 {
		bonus += 4
	}
	if a.avgHolders > 1000 {
		bonus += 5
	}
	if a.avgMentions > 1000 {
		bonus += 6
	}
	if a.absChange > 20 {
		bonus += 4
	}

	return clamp((base+bonus)*stageStrengthMultiplier(stage), 0, 100)
}

// confidenceScore starts at 0.5 and adds capped bumps for corroborating
// evidence.
func confidenceScore(a *analysis, primary string, secondary []string, scores map[string]float64) float64 {
	conf := 0.5
	if scores[primary] >= 1.0 {
		conf += 0.3
	}
	if len(secondary) > 0 {
		conf += 0.1
	}
	if a.tokenCount >= 5 {
		conf += 0.1
	}
	if a.totalVolume >= 1e6 {
		conf += 0.1
	}
	if len(a.prefixes) > 0 || len(a.suffixes) > 0 {
		conf += 0.1
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

// significantChanges reports the diffs worth surfacing after a
// re-characterization.
func significantChanges(prev *Profile, strength float64, stage Stage, theme string) []Change {
	var out []Change
	if d := strength - prev.Strength; d > 15 || d < -15 {
		out = append(out, Change{
			Field: "strength",
			From:  fmt.Sprintf("%.1f", prev.Strength),
			To:    fmt.Sprintf("%.1f", strength),
		})
	}
	if stage != prev.Stage {
		out = append(out, Change{Field: "stage", From: string(prev.Stage), To: string(stage)})
	}
	if theme != prev.PrimaryTheme {
		out = append(out, Change{Field: "primary_theme", From: prev.PrimaryTheme, To: theme})
	}
	return out
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
