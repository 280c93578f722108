package cluster

// Density is the fixed-radius neighborhood-expansion strategy. Points with
// fewer than MinNeighbors within DensityRadius are labeled outliers unless
// reached from a denser point. Deterministic given input order.
type Density struct {
	cfg Config
}

func NewDensity(cfg Config) *Density { return &Density{cfg: cfg} }

func (d *Density) Name() string { return "density" }

func (d *Density) Partition(vectors [][]float64) Result {
	res := Result{Strategy: d.Name()}
	n := len(vectors)
	if n == 0 {
		return res
	}

	dist := distanceMatrix(vectors)
	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && dist[i][j] <= d.cfg.DensityRadius {
				neighbors[i] = append(neighbors[i], j)
			}
		}
	}

	const (
		unvisited = 0
		noise     = -1
	)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = unvisited
	}

	next := 1
	for i := 0; i < n; i++ {
		if labels[i] != unvisited {
			continue
		}
		if len(neighbors[i]) < d.cfg.MinNeighbors {
			labels[i] = noise
			continue
		}
		// Grow the cluster via reachable-point expansion.
		labels[i] = next
		queue := append([]int(nil), neighbors[i]...)
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			if labels[p] == noise {
				labels[p] = next
			}
			if labels[p] != unvisited {
				continue
			}
			labels[p] = next
			if len(neighbors[p]) >= d.cfg.MinNeighbors {
				queue = append(queue, neighbors[p]...)
			}
		}
		next++
	}

	res.Labels = make([]int, n)
	clustered := 0
	for i, l := range labels {
		if l == noise {
			res.Labels[i] = -1
			res.Outliers = append(res.Outliers, i)
			continue
		}
		res.Labels[i] = l - 1
		clustered++
	}
	res.Quality = float64(clustered) / float64(n)
	return res
}
