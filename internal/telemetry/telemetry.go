// Package telemetry exposes the pipeline's observability surface as
// Prometheus collectors.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry owns every collector the pipeline updates. A nil *Registry is a
// valid no-op sink, so callers never guard their updates.
type Registry struct {
	RunsTotal       prometheus.Counter
	RunDuration     prometheus.Histogram
	ClustersFound   prometheus.Gauge
	Narratives      prometheus.Gauge
	Outliers        prometheus.Gauge
	Evolution       *prometheus.CounterVec
	BaseWeights     *prometheus.GaugeVec
	ScoringFallback prometheus.Counter
	SkippedClusters prometheus.Counter
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
}

// NewRegistry builds and registers the collectors on reg. A nil registerer
// returns a nil Registry, disabling telemetry.
func NewRegistry(reg prometheus.Registerer) *Registry {
	if reg == nil {
		return nil
	}
	r := &Registry{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narrativescan_runs_total",
			Help: "Total number of pipeline passes",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "narrativescan_run_duration_seconds",
			Help:    "Duration of one pipeline pass",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ClustersFound: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "narrativescan_clusters",
			Help: "Clusters selected in the last pass",
		}),
		Narratives: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "narrativescan_narratives",
			Help: "Narratives produced in the last pass",
		}),
		Outliers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "narrativescan_outliers",
			Help: "Tokens left unclustered in the last pass",
		}),
		Evolution: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "narrativescan_cluster_evolution_total",
			Help: "Cluster evolution events by kind",
		}, []string{"kind"}),
		BaseWeights: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "narrativescan_base_weight",
			Help: "Current adaptive base weight per component",
		}, []string{"component"}),
		ScoringFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narrativescan_scoring_fallbacks_total",
			Help: "Passes that fell back to strength-ordered ranking",
		}),
		SkippedClusters: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narrativescan_skipped_clusters_total",
			Help: "Clusters dropped by per-narrative failures",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narrativescan_feature_cache_hits_total",
			Help: "Feature cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narrativescan_feature_cache_misses_total",
			Help: "Feature cache misses",
		}),
	}
	reg.MustRegister(
		r.RunsTotal, r.RunDuration, r.ClustersFound, r.Narratives, r.Outliers,
		r.Evolution, r.BaseWeights, r.ScoringFallback, r.SkippedClusters,
		r.CacheHits, r.CacheMisses,
	)
	return r
}

// ObserveRun records one completed pass.
func (r *Registry) ObserveRun(seconds float64, clusters, narratives, outliers int) {
	if r == nil {
		return
	}
	r.RunsTotal.Inc()
	r.RunDuration.Observe(seconds)
	r.ClustersFound.Set(float64(clusters))
	r.Narratives.Set(float64(narratives))
	r.Outliers.Set(float64(outliers))
}

// ObserveCache publishes cumulative feature-cache counters as deltas.
func (r *Registry) ObserveCache(hits, misses int64) {
	if r == nil {
		return
	}
	r.CacheHits.Add(float64(hits))
	r.CacheMisses.Add(float64(misses))
}

// CountFallback records a scoring fallback.
func (r *Registry) CountFallback() {
	if r == nil {
		return
	}
	r.ScoringFallback.Inc()
}

// CountSkipped records clusters dropped by per-narrative failures.
func (r *Registry) CountSkipped(n int) {
	if r == nil || n == 0 {
		return
	}
	r.SkippedClusters.Add(float64(n))
}

// ObserveEvolution records one evolution diff.
func (r *Registry) ObserveEvolution(newC, merged, split, disappeared int) {
	if r == nil {
		return
	}
	r.Evolution.WithLabelValues("new").Add(float64(newC))
	r.Evolution.WithLabelValues("merged").Add(float64(merged))
	r.Evolution.WithLabelValues("split").Add(float64(split))
	r.Evolution.WithLabelValues("disappeared").Add(float64(disappeared))
}

// ObserveWeights publishes the current base weights.
func (r *Registry) ObserveWeights(weights map[string]float64) {
	if r == nil {
		return
	}
	for component, w := range weights {
		r.BaseWeights.WithLabelValues(component).Set(w)
	}
}
