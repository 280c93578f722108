package cluster

import (
	"fmt"
	"math"
)

// Merge records one agglomeration step for diagnostics.
type Merge struct {
	A, B     string
	Distance float64
}

// Hierarchical is the average-linkage agglomeration strategy: repeatedly
// merge the nearest pair of groups until the minimum remaining distance
// exceeds MergeThreshold. Deterministic given input order.
type Hierarchical struct {
	cfg Config

	// History of the last run's merges, observational only.
	History []Merge
}

func NewHierarchical(cfg Config) *Hierarchical { return &Hierarchical{cfg: cfg} }

func (h *Hierarchical) Name() string { return "hierarchical" }

func (h *Hierarchical) Partition(vectors [][]float64) Result {
	res := Result{Strategy: h.Name()}
	n := len(vectors)
	if n == 0 {
		return res
	}
	h.History = h.History[:0]

	dist := distanceMatrix(vectors)
	groups := make([][]int, n)
	for i := range groups {
		groups[i] = []int{i}
	}

	avgLinkage := func(a, b []int) float64 {
		sum := 0.0
		for _, i := range a {
			for _, j := range b {
				sum += dist[i][j]
			}
		}
		return sum / float64(len(a)*len(b))
	}

	for len(groups) > 1 {
		bi, bj, best := -1, -1, math.Inf(1)
		for i := 0; i < len(groups); i++ {
			for j := i + 1; j < len(groups); j++ {
				if d := avgLinkage(groups[i], groups[j]); d < best {
					bi, bj, best = i, j, d
				}
			}
		}
		if best > h.cfg.MergeThreshold {
			break
		}
		h.History = append(h.History, Merge{
			A:        fmt.Sprintf("g%d(%d)", bi, len(groups[bi])),
			B:        fmt.Sprintf("g%d(%d)", bj, len(groups[bj])),
			Distance: best,
		})
		groups[bi] = append(groups[bi], groups[bj]...)
		groups = append(groups[:bj], groups[bj+1:]...)
	}

	res.Labels = make([]int, n)
	label := 0
	clustered := 0
	for _, g := range groups {
		if len(g) < h.cfg.MinClusterSize {
			for _, i := range g {
				res.Labels[i] = -1
				res.Outliers = append(res.Outliers, i)
			}
			continue
		}
		for _, i := range g {
			res.Labels[i] = label
		}
		clustered += len(g)
		label++
	}
	if label == 0 {
		// No group reached minimum size; report everything as outliers.
		res.Quality = 0
		return res
	}
	res.Quality = float64(clustered) / float64(n)
	return res
}
