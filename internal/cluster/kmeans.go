package cluster

import (
	"math"
	"math/rand"
	"time"
)

// KMeans is the randomized centroid-partitioning strategy. k derives from
// the batch size and the configured cluster bounds; k<2 yields an empty
// result so the ensemble can fall through to the other strategies.
type KMeans struct {
	cfg Config
	rng *rand.Rand
}

// NewKMeans builds the strategy. Seed 0 means time-seeded, which is the
// production default; tests pin a seed for reproducibility.
func NewKMeans(cfg Config) *KMeans {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &KMeans{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

func (k *KMeans) Name() string { return "kmeans" }

// Partition runs iterative assign/update until inertia stops improving or
// the iteration cap is hit.
func (k *KMeans) Partition(vectors [][]float64) Result {
	res := Result{Strategy: k.Name()}
	n := len(vectors)
	if n == 0 || k.cfg.MinClusterSize <= 0 {
		return res
	}

	kk := n / k.cfg.MinClusterSize
	if kk > k.cfg.MaxClusters {
		kk = k.cfg.MaxClusters
	}
	if kk < 2 {
		return res
	}

	centroids := make([][]float64, kk)
	for i, p := range k.rng.Perm(n)[:kk] {
		centroids[i] = append([]float64(nil), vectors[p]...)
	}

	labels := make([]int, n)
	prevInertia := math.Inf(1)
	for iter := 0; iter < k.cfg.MaxIterations; iter++ {
		inertia := 0.0
		for i, v := range vectors {
			best, bestDist := 0, math.Inf(1)
			for c, cent := range centroids {
				if d := euclidean(v, cent); d < bestDist {
					best, bestDist = c, d
				}
			}
			labels[i] = best
			inertia += bestDist * bestDist
		}

		for c := range centroids {
			sum := make([]float64, len(vectors[0]))
			count := 0
			for i, l := range labels {
				if l != c {
					continue
				}
				for d, v := range vectors[i] {
					sum[d] += v
				}
				count++
			}
			if count == 0 {
				continue
			}
			for d := range sum {
				sum[d] /= float64(count)
			}
			centroids[c] = sum
		}

		if prevInertia-inertia < 1e-6 {
			break
		}
		prevInertia = inertia
	}

	res.Labels = labels
	res.Quality = 1 / (1 + prevInertia/float64(n))
	return res
}

// Centroid returns the mean vector of the given members.
func Centroid(vectors [][]float64, members []int) []float64 {
	if len(members) == 0 {
		return nil
	}
	out := make([]float64, len(vectors[members[0]]))
	for _, i := range members {
		for d, v := range vectors[i] {
			out[d] += v
		}
	}
	for d := range out {
		out[d] /= float64(len(members))
	}
	return out
}
