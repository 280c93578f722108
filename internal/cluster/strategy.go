package cluster

import "math"

// Config holds the clustering thresholds shared by all strategies.
type Config struct {
	MinClusterSize int     `yaml:"min_cluster_size"`
	MaxClusters    int     `yaml:"max_clusters"`
	MaxIterations  int     `yaml:"max_iterations"`
	DensityRadius  float64 `yaml:"density_radius"`
	MinNeighbors   int     `yaml:"min_neighbors"`
	MergeThreshold float64 `yaml:"merge_threshold"`

	// Seed fixes the centroid strategy's randomness; 0 means time-seeded.
	Seed int64 `yaml:"seed"`

	// HistoryDepth bounds the signature history ring.
	HistoryDepth int `yaml:"history_depth"`
}

// DefaultConfig returns thresholds tuned for batches of a few hundred tokens.
func DefaultConfig() Config {
	return Config{
		MinClusterSize: 3,
		MaxClusters:    10,
		MaxIterations:  50,
		DensityRadius:  0.45,
		MinNeighbors:   2,
		MergeThreshold: 0.50,
		HistoryDepth:   32,
	}
}

// Result is one strategy's partition of the input vectors. Labels[i] is the
// cluster index of vector i or -1 for outliers; Outliers lists the -1
// indices. Quality is strategy-specific and only comparable through the
// ensemble's composite selection score.
type Result struct {
	Strategy string
	Labels   []int
	Outliers []int
	Quality  float64
}

// Clusters groups the labeled indices. Entries smaller than minSize are
// demoted to outliers.
func (r Result) Clusters(minSize int) [][]int {
	byLabel := map[int][]int{}
	maxLabel := -1
	for i, l := range r.Labels {
		if l < 0 {
			continue
		}
		byLabel[l] = append(byLabel[l], i)
		if l > maxLabel {
			maxLabel = l
		}
	}
	var out [][]int
	for l := 0; l <= maxLabel; l++ {
		members := byLabel[l]
		if len(members) >= minSize {
			out = append(out, members)
		}
	}
	return out
}

// Partitioner is the common contract for the three strategies.
type Partitioner interface {
	Name() string
	Partition(vectors [][]float64) Result
}

func euclidean(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// distanceMatrix computes the full symmetric pairwise matrix.
func distanceMatrix(vectors [][]float64) [][]float64 {
	n := len(vectors)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := euclidean(vectors[i], vectors[j])
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}
