package narrative

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftcap/narrativescan/internal/cluster"
	"github.com/driftcap/narrativescan/internal/features"
	"github.com/driftcap/narrativescan/internal/models"
	"github.com/driftcap/narrativescan/internal/themes"
)

func aiRecords(t *testing.T, n int) []*features.Record {
	t.Helper()
	e := features.NewExtractor(features.DefaultConfig(), nil)
	names := []string{"GPT Doge", "Neural Pepe", "AI Agent", "DeepBrain", "Sentient GPT", "AI Oracle"}
	records := make([]*features.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, e.Extract(models.TokenDescriptor{
			Address:        fmt.Sprintf("0xai%02d", i),
			Name:           names[i%len(names)],
			Symbol:         fmt.Sprintf("AI%d", i),
			Volume24h:      500000,
			Holders:        2000,
			Liquidity:      90000,
			MarketCap:      2000000,
			PriceChange24h: 30,
			SocialMentions: 1500,
			CreatedAt:      time.Now().Add(-36 * time.Hour),
			UpdatedAt:      time.Now(),
		}))
	}
	return records
}

func wholeCluster(records []*features.Record) cluster.Cluster {
	members := make([]int, len(records))
	for i := range members {
		members[i] = i
	}
	return cluster.Cluster{ID: 0, Members: members}
}

func TestCharacterize_AICluster(t *testing.T) {
	c := NewCharacterizer(DefaultConfig(), nil, nil)
	records := aiRecords(t, 5)

	p, err := c.Characterize(wholeCluster(records), records, cluster.Strength{Strength: 55, Coherence: 0.9})
	require.NoError(t, err)

	assert.Equal(t, "ai", p.PrimaryTheme)
	assert.NotEmpty(t, p.Name)
	assert.NotEmpty(t, p.NameCandidates)
	assert.LessOrEqual(t, len(p.NameCandidates), 5)
	assert.GreaterOrEqual(t, p.Strength, 0.0)
	assert.LessOrEqual(t, p.Strength, 100.0)
	assert.GreaterOrEqual(t, p.Confidence, 0.0)
	assert.LessOrEqual(t, p.Confidence, 1.0)
	assert.Equal(t, 1, p.Version)
	assert.Len(t, p.Members, 5)
}

func TestCharacterize_UnchangedClusterIsStable(t *testing.T) {
	c := NewCharacterizer(DefaultConfig(), nil, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	records := aiRecords(t, 5)
	cl := wholeCluster(records)
	sig := cluster.Strength{Strength: 55, Coherence: 0.9}

	first, err := c.Characterize(cl, records, sig)
	require.NoError(t, err)
	firstID, firstCreated := first.ID, first.CreatedAt
	firstTheme, firstStage := first.PrimaryTheme, first.Stage

	second, err := c.Characterize(cl, records, sig)
	require.NoError(t, err)

	assert.Equal(t, firstID, second.ID, "same membership should keep identity")
	assert.Equal(t, 2, second.Version)
	assert.Equal(t, firstCreated, second.CreatedAt)
	assert.Equal(t, firstTheme, second.PrimaryTheme)
	assert.Equal(t, firstStage, second.Stage)
	assert.Empty(t, second.LastChanges, "unchanged cluster should produce no significant changes")
}

func TestCharacterize_BadMemberIndexReturnsError(t *testing.T) {
	c := NewCharacterizer(DefaultConfig(), nil, nil)
	records := aiRecords(t, 2)

	// Member index beyond the record slice panics inside the per-cluster
	// work; it must surface as an error without touching the registry.
	p, err := c.Characterize(cluster.Cluster{ID: 7, Members: []int{0, 99}}, records, cluster.Strength{Strength: 50})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
	assert.Nil(t, p)
	assert.Equal(t, 0, c.Registry().Len())
}

func TestDeriveID_Deterministic(t *testing.T) {
	members := []models.MemberSummary{
		{Symbol: "AAA", Address: "0x1"},
		{Symbol: "BBB", Address: "0x2"},
	}
	at := time.Unix(1700000000, 0)

	assert.Equal(t, DeriveID(members, "ai", at), DeriveID(members, "ai", at))
	assert.NotEqual(t, DeriveID(members, "ai", at), DeriveID(members, "meme", at))
}

func TestClassifyLifecycle_PeakOverride(t *testing.T) {
	th := DefaultLifecycleThresholds()

	stage, _ := classifyLifecycle(th, 80, 0.2, 0.2, 200)
	assert.Equal(t, StagePeak, stage)

	stage, _ = classifyLifecycle(th, 80, -0.2, -0.2, 200)
	assert.Equal(t, StageDeclining, stage, "negative momentum and growth reclassify peak to declining")
}

func TestClassifyLifecycle_Buckets(t *testing.T) {
	th := DefaultLifecycleThresholds()
	cases := []struct {
		strength float64
		want     Stage
	}{
		{10, StageEmerging},
		{50, StageGrowing},
		{80, StagePeak},
		{120, StageDeclining},
	}
	for _, tc := range cases {
		stage, conf := classifyLifecycle(th, tc.strength, 0, 0, 200)
		assert.Equal(t, tc.want, stage, "strength %.0f", tc.strength)
		assert.GreaterOrEqual(t, conf, 0.0)
		assert.LessOrEqual(t, conf, 1.0)
	}
}

func TestRegistry_BoundedEviction(t *testing.T) {
	r := NewRegistry(2)
	base := time.Now()
	for i := 0; i < 3; i++ {
		r.Store(&Profile{
			ID:        fmt.Sprintf("nar_%d", i),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	assert.Equal(t, 2, r.Len(), "registry should evict the stalest profile")
}

func TestEmergencePattern(t *testing.T) {
	e := features.NewExtractor(features.DefaultConfig(), nil)
	now := time.Now()
	var records []*features.Record
	for i := 0; i < 3; i++ {
		records = append(records, e.Extract(models.TokenDescriptor{
			Address:   fmt.Sprintf("0x%d", i),
			Name:      "Burst Token",
			Symbol:    "BRST",
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
			UpdatedAt: now,
		}))
	}

	a := analyze(records, themes.Default(), now)
	assert.Equal(t, "burst", a.emergence)
}
