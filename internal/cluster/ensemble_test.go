package cluster

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftcap/narrativescan/internal/features"
	"github.com/driftcap/narrativescan/internal/models"
)

func identicalRecords(n int) []*features.Record {
	e := features.NewExtractor(features.DefaultConfig(), nil)
	records := make([]*features.Record, n)
	for i := 0; i < n; i++ {
		tok := models.TokenDescriptor{
			Address:        fmt.Sprintf("0x%04d", i),
			Name:           "Moon Dog",
			Symbol:         "MDOG",
			Volume24h:      250000,
			Holders:        900,
			Liquidity:      60000,
			MarketCap:      1200000,
			PriceChange24h: 22,
			SocialMentions: 700,
			CreatedAt:      time.Now().Add(-24 * time.Hour),
			UpdatedAt:      time.Now(),
		}
		records[i] = e.Extract(tok)
	}
	return records
}

func TestEnsemble_SmallBatchShortCircuits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinClusterSize = 3
	ens := NewEnsemble(cfg)

	sel := ens.Run(identicalRecords(2))

	assert.Empty(t, sel.Clusters, "batch below minimum should produce no clusters")
	assert.Len(t, sel.Outliers, 2, "full batch should be outliers")
	assert.Equal(t, "none", sel.Strategy)
}

func TestEnsemble_EmptyBatch(t *testing.T) {
	ens := NewEnsemble(DefaultConfig())
	sel := ens.Run(nil)

	assert.Empty(t, sel.Clusters)
	assert.Empty(t, sel.Outliers)
}

func TestSelectionScore_FewerOutliersPreferred(t *testing.T) {
	ens := NewEnsemble(DefaultConfig())
	groups := [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}}

	// Same partition, only the batch size (and so the outlier fraction)
	// differs between the two candidates.
	clean := ens.selectionScore(Result{}, groups, 8)
	noisy := ens.selectionScore(Result{}, groups, 10)

	assert.Greater(t, clean, noisy, "candidate with fewer outliers should score higher")
}

func TestEnsemble_IdenticalTokensSingleCohesiveCluster(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 42
	ens := NewEnsemble(cfg)
	records := identicalRecords(10)

	sel := ens.Run(records)

	require.Len(t, sel.Clusters, 1, "identical tokens should form one cluster")
	assert.Len(t, sel.Clusters[0].Members, 10)

	sig := NewEvaluator(nil).Evaluate(sel.Clusters[0], records)
	assert.InDelta(t, 1.0, sig.Coherence, 0.01, "identical members should be maximally coherent")
}

func TestDensity_Deterministic(t *testing.T) {
	records := identicalRecords(6)
	vectors := make([][]float64, len(records))
	for i, r := range records {
		vectors[i] = r.Combined
	}

	d := NewDensity(DefaultConfig())
	first := d.Partition(vectors)
	second := d.Partition(vectors)
	assert.Equal(t, first.Labels, second.Labels)
}

func TestKMeans_TooFewForTwoClusters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinClusterSize = 3
	cfg.Seed = 1
	k := NewKMeans(cfg)

	res := k.Partition([][]float64{{0.1, 0.2}, {0.1, 0.2}, {0.2, 0.3}})
	assert.Empty(t, res.Labels, "k<2 should yield an empty result")
}

func TestHierarchical_RecordsMergeHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinClusterSize = 2
	h := NewHierarchical(cfg)

	vectors := [][]float64{{0, 0}, {0.01, 0}, {0, 0.01}, {0.01, 0.01}}
	res := h.Partition(vectors)

	require.NotEmpty(t, res.Labels)
	assert.NotEmpty(t, h.History, "agglomeration should log merges")
}

func TestStrength_Bounded(t *testing.T) {
	records := identicalRecords(5)
	members := []int{0, 1, 2, 3, 4}
	c := Cluster{ID: 0, Members: members}

	sig := NewEvaluator(nil).Evaluate(c, records)
	assert.GreaterOrEqual(t, sig.Strength, 0.0)
	assert.LessOrEqual(t, sig.Strength, 100.0)
	assert.GreaterOrEqual(t, sig.Coherence, 0.0)
	assert.LessOrEqual(t, sig.Coherence, 1.0)
	assert.Equal(t, 0.5, sig.Stability, "neutral provider should report 0.5")
}

func TestHistory_EvolutionCounts(t *testing.T) {
	h := NewHistory(4)
	records := identicalRecords(6)

	c1 := Cluster{ID: 0, Members: []int{0, 1, 2}}
	c2 := Cluster{ID: 1, Members: []int{3, 4, 5}}

	ev := h.Observe([]Signature{SignCluster(c1, records), SignCluster(c2, records)})
	assert.Equal(t, 2, ev.New, "first run clusters are all new")

	ev = h.Observe([]Signature{SignCluster(c1, records)})
	assert.Equal(t, 1, ev.Disappeared)
	assert.Equal(t, 1, ev.Stable)
}
