package narrative

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/driftcap/narrativescan/internal/models"
)

// Stage is a narrative's lifecycle phase.
type Stage string

const (
	StageEmerging  Stage = "emerging"
	StageGrowing   Stage = "growing"
	StagePeak      Stage = "peak"
	StageDeclining Stage = "declining"
	StageMature    Stage = "mature"
)

// NameCandidate is one generated name with its generator confidence.
type NameCandidate struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Assessment is one categorical read of the cluster with a human
// description.
type Assessment struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Characteristics bundles the five categorical assessments.
type Characteristics struct {
	Volatility Assessment `json:"volatility"`
	Community  Assessment `json:"community"`
	Market     Assessment `json:"market"`
	Social     Assessment `json:"social"`
	Temporal   Assessment `json:"temporal"`
}

// Aggregates are the cluster-level market metrics computed during content
// analysis, carried on the profile for downstream scoring.
type Aggregates struct {
	TotalVolume    float64 `json:"total_volume"`
	AvgVolume      float64 `json:"avg_volume"`
	TotalLiquidity float64 `json:"total_liquidity"`
	AvgMarketCap   float64 `json:"avg_market_cap"`
	AvgHolders     float64 `json:"avg_holders"`
	AvgMentions    float64 `json:"avg_mentions"`
	AvgChange      float64 `json:"avg_change"`
	AbsChange      float64 `json:"abs_change"`
	AvgAgeHours    float64 `json:"avg_age_hours"`
}

// Change records one significant difference found on re-characterization.
type Change struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Profile is the durable description of one narrative. It is mutated in
// place on re-characterization; Version increments each time.
type Profile struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	NameCandidates  []NameCandidate        `json:"name_candidates"`
	PrimaryTheme    string                 `json:"primary_theme"`
	SecondaryThemes []string               `json:"secondary_themes"`
	ThemeScores     map[string]float64     `json:"theme_scores"`
	Characteristics Characteristics        `json:"characteristics"`
	Stage           Stage                  `json:"stage"`
	StageConfidence float64                `json:"stage_confidence"`
	Strength        float64                `json:"strength"`   // [0,100]
	Confidence      float64                `json:"confidence"` // [0,1]
	Coherence       float64                `json:"coherence"`
	Aggregates      Aggregates             `json:"aggregates"`
	Members         []models.MemberSummary `json:"members"`
	Version         int                    `json:"version"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	LastChanges     []Change               `json:"last_changes,omitempty"`
}

// DeriveID builds the deterministic narrative id from sample member symbols,
// the dominant theme and the creation time. Stable for the profile's life.
func DeriveID(members []models.MemberSummary, theme string, createdAt time.Time) string {
	symbols := make([]string, 0, 3)
	for _, m := range members {
		symbols = append(symbols, strings.ToLower(m.Symbol))
		if len(symbols) == 3 {
			break
		}
	}
	sort.Strings(symbols)
	seed := fmt.Sprintf("%s|%s|%d", strings.Join(symbols, ","), theme, createdAt.Unix())
	sum := sha256.Sum256([]byte(seed))
	return "nar_" + hex.EncodeToString(sum[:])[:12]
}

// Registry retains profiles across runs, bounded by size with the least
// recently updated profile evicted first. Single-writer discipline: the
// pipeline is the only mutator.
type Registry struct {
	mu       sync.Mutex
	profiles map[string]*Profile
	limit    int
}

// NewRegistry creates a registry retaining at most limit profiles.
func NewRegistry(limit int) *Registry {
	if limit <= 0 {
		limit = 256
	}
	return &Registry{profiles: make(map[string]*Profile), limit: limit}
}

// Match finds the retained profile whose membership overlaps the given
// addresses the most, requiring at least half overlap. Returns nil when no
// profile qualifies.
func (r *Registry) Match(addresses []string) *Profile {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := make(map[string]bool, len(addresses))
	for _, a := range addresses {
		current[a] = true
	}

	var best *Profile
	bestOverlap := 0.0
	for _, p := range r.profiles {
		shared := 0
		for _, m := range p.Members {
			if current[m.Address] {
				shared++
			}
		}
		union := len(p.Members) + len(addresses) - shared
		if union == 0 {
			continue
		}
		jaccard := float64(shared) / float64(union)
		if jaccard >= 0.5 && jaccard > bestOverlap {
			best, bestOverlap = p, jaccard
		}
	}
	return best
}

// Store inserts or refreshes a profile, evicting the stalest entry when over
// capacity.
func (r *Registry) Store(p *Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[p.ID] = p
	for len(r.profiles) > r.limit {
		var oldest *Profile
		for _, cand := range r.profiles {
			if oldest == nil || cand.UpdatedAt.Before(oldest.UpdatedAt) {
				oldest = cand
			}
		}
		delete(r.profiles, oldest.ID)
	}
}

// Len returns the number of retained profiles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.profiles)
}
