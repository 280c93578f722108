package cluster

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/driftcap/narrativescan/internal/features"
)

// Cluster is one group from the selected partition, scoped to a single run.
type Cluster struct {
	ID       int
	Members  []int
	Centroid []float64
	Quality  float64
}

// Selection is the ensemble's output for one batch.
type Selection struct {
	Strategy string
	Clusters []Cluster
	Outliers []int

	// SelectionScore is the composite score of the winning candidate.
	SelectionScore float64
}

// Ensemble runs the three partitioning strategies and picks the best
// candidate by a composite quality score.
type Ensemble struct {
	cfg        Config
	strategies []Partitioner
}

// NewEnsemble wires the default three strategies.
func NewEnsemble(cfg Config) *Ensemble {
	return &Ensemble{
		cfg: cfg,
		strategies: []Partitioner{
			NewKMeans(cfg),
			NewDensity(cfg),
			NewHierarchical(cfg),
		},
	}
}

// Run partitions the records' combined vectors. Batches below the minimum
// cluster size short-circuit to an all-outliers selection.
func (e *Ensemble) Run(records []*features.Record) Selection {
	n := len(records)
	if n < e.cfg.MinClusterSize {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return Selection{Strategy: "none", Outliers: out}
	}

	vectors := make([][]float64, n)
	for i, r := range records {
		vectors[i] = r.Combined
	}

	results := make([]Result, 0, len(e.strategies))
	for _, s := range e.strategies {
		res := s.Partition(vectors)
		results = append(results, res)
		log.Debug().
			Str("strategy", s.Name()).
			Int("clusters", len(res.Clusters(e.cfg.MinClusterSize))).
			Int("outliers", len(res.Outliers)).
			Float64("quality", res.Quality).
			Msg("partition candidate")
	}

	best, bestScore := -1, math.Inf(-1)
	for i, res := range results {
		groups := res.Clusters(e.cfg.MinClusterSize)
		if len(groups) == 0 {
			continue
		}
		score := e.selectionScore(res, groups, n)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		// Nothing valid anywhere: surface the first raw result as an
		// explicit empty outcome.
		return e.toSelection(results[0], vectors, 0)
	}
	return e.toSelection(results[best], vectors, bestScore)
}

// selectionScore blends cluster count, mean size, size evenness and the
// outlier fraction. Higher is better.
func (e *Ensemble) selectionScore(res Result, groups [][]int, n int) float64 {
	count := float64(len(groups))
	total := 0.0
	for _, g := range groups {
		total += float64(len(g))
	}
	mean := total / count

	variance := 0.0
	for _, g := range groups {
		d := float64(len(g)) - mean
		variance += d * d
	}
	variance /= count

	outlierFrac := float64(n-int(total)) / float64(n)

	return 0.20*math.Min(count/float64(e.cfg.MaxClusters), 1) +
		0.35*math.Min(mean/10, 1) +
		0.25*(1/(1+variance)) -
		0.20*outlierFrac
}

func (e *Ensemble) toSelection(res Result, vectors [][]float64, score float64) Selection {
	sel := Selection{Strategy: res.Strategy, SelectionScore: score}
	groups := res.Clusters(e.cfg.MinClusterSize)
	member := make(map[int]bool)
	for id, g := range groups {
		for _, i := range g {
			member[i] = true
		}
		sel.Clusters = append(sel.Clusters, Cluster{
			ID:       id,
			Members:  g,
			Centroid: Centroid(vectors, g),
			Quality:  res.Quality,
		})
	}
	for i := range vectors {
		if !member[i] {
			sel.Outliers = append(sel.Outliers, i)
		}
	}
	return sel
}
