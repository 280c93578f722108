// Package pipeline wires the full batch flow: feature extraction,
// clustering ensemble, strength evaluation, characterization and adaptive
// scoring. A Pipeline owns all of its mutable state (feature cache,
// signature history, narrative registry), so independent pipelines never
// cross-talk.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/driftcap/narrativescan/internal/cluster"
	"github.com/driftcap/narrativescan/internal/config"
	"github.com/driftcap/narrativescan/internal/features"
	"github.com/driftcap/narrativescan/internal/history"
	"github.com/driftcap/narrativescan/internal/models"
	"github.com/driftcap/narrativescan/internal/narrative"
	"github.com/driftcap/narrativescan/internal/scoring"
	"github.com/driftcap/narrativescan/internal/telemetry"
)

// extractWorkers bounds the feature-extraction fan-out.
const extractWorkers = 8

// RankedNarrative pairs a durable profile with its ephemeral score view.
type RankedNarrative struct {
	Profile *narrative.Profile `json:"profile"`
	Score   *scoring.Record    `json:"score"`
}

// RunResult is the complete, well-formed output of one pass. Failed stages
// leave diagnostics rather than aborting.
type RunResult struct {
	RunID      string                 `json:"run_id"`
	TokenCount int                    `json:"token_count"`
	Strategy   string                 `json:"strategy"`
	Narratives []RankedNarrative      `json:"narratives"`
	Outliers   []models.MemberSummary `json:"outliers"`
	Evolution  cluster.Evolution      `json:"evolution"`

	WeightDeltas map[string]float64 `json:"weight_deltas,omitempty"`
	Weights      scoring.Weights    `json:"weights"`

	ScoringFallback bool          `json:"scoring_fallback"`
	Diagnostics     []string      `json:"diagnostics,omitempty"`
	Duration        time.Duration `json:"duration"`
}

// Pipeline is the explicit run context. Sequential single-writer use;
// concurrent Run calls need external synchronization.
type Pipeline struct {
	cfg config.Config

	extractor     *features.Extractor
	cache         *features.Cache
	ensemble      *cluster.Ensemble
	sigHistory    *cluster.History
	evaluator     *cluster.Evaluator
	characterizer *narrative.Characterizer
	scorer        *scoring.Scorer
	tele          *telemetry.Registry

	prevHits, prevMisses int64
}

// New assembles a pipeline. provider may be nil (neutral history); reg may
// be nil (telemetry disabled).
func New(cfg config.Config, provider history.Provider, reg prometheus.Registerer) *Pipeline {
	catalog := cfg.Catalog()
	return &Pipeline{
		cfg:           cfg,
		extractor:     features.NewExtractor(cfg.Features, catalog),
		cache:         features.NewCache(cfg.Features.CacheSize),
		ensemble:      cluster.NewEnsemble(cfg.Cluster),
		sigHistory:    cluster.NewHistory(cfg.Cluster.HistoryDepth),
		evaluator:     cluster.NewEvaluator(provider),
		characterizer: narrative.NewCharacterizer(cfg.Narrative, catalog, provider),
		scorer:        scoring.NewScorer(cfg.Scoring),
		tele:          telemetry.NewRegistry(reg),
	}
}

// Registry exposes the narrative registry for inspection.
func (p *Pipeline) Registry() *narrative.Registry { return p.characterizer.Registry() }

// Run executes one full pass over the batch. It never fails on per-item
// errors; the only error is context cancellation between stages.
func (p *Pipeline) Run(ctx context.Context, batch []models.TokenDescriptor) (*RunResult, error) {
	start := time.Now()
	res := &RunResult{
		RunID:      uuid.NewString(),
		TokenCount: len(batch),
	}
	log.Info().Str("run", res.RunID).Int("tokens", len(batch)).Msg("pipeline pass started")

	records := p.extract(ctx, batch)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s canceled after extraction: %w", res.RunID, err)
	}

	sel := p.ensemble.Run(records)
	res.Strategy = sel.Strategy
	for _, i := range sel.Outliers {
		res.Outliers = append(res.Outliers, models.Summarize(records[i].Token))
	}

	sigs := make([]cluster.Signature, len(sel.Clusters))
	for i, cl := range sel.Clusters {
		sigs[i] = cluster.SignCluster(cl, records)
	}
	res.Evolution = p.sigHistory.Observe(sigs)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s canceled after clustering: %w", res.RunID, err)
	}

	profiles := make([]*narrative.Profile, 0, len(sel.Clusters))
	skipped := 0
	for _, cl := range sel.Clusters {
		strength := p.evaluator.Evaluate(cl, records)
		profile, err := p.characterizer.Characterize(cl, records, strength)
		if err != nil {
			skipped++
			res.Diagnostics = append(res.Diagnostics, err.Error())
			log.Warn().Err(err).Int("cluster", cl.ID).Msg("cluster skipped")
			continue
		}
		profiles = append(profiles, profile)
	}

	scored := p.scorer.Score(profiles)
	res.ScoringFallback = scored.Fallback
	if scored.Diagnostic != "" {
		res.Diagnostics = append(res.Diagnostics, scored.Diagnostic)
	}
	res.WeightDeltas = scored.WeightDeltas
	res.Weights = p.scorer.Weights()

	byID := make(map[string]*narrative.Profile, len(profiles))
	for _, pr := range profiles {
		byID[pr.ID] = pr
	}
	for _, rec := range scored.Records {
		res.Narratives = append(res.Narratives, RankedNarrative{
			Profile: byID[rec.NarrativeID],
			Score:   rec,
		})
	}

	res.Duration = time.Since(start)
	p.observe(res, len(sel.Clusters), skipped)
	log.Info().
		Str("run", res.RunID).
		Str("strategy", res.Strategy).
		Int("narratives", len(res.Narratives)).
		Int("outliers", len(res.Outliers)).
		Dur("took", res.Duration).
		Msg("pipeline pass finished")
	return res, nil
}

// extract fans the batch out over a bounded worker pool; the cache dedupes
// unchanged tokens across runs.
func (p *Pipeline) extract(ctx context.Context, batch []models.TokenDescriptor) []*features.Record {
	records := make([]*features.Record, len(batch))
	if len(batch) == 0 {
		return records
	}

	workers := extractWorkers
	if len(batch) < workers {
		workers = len(batch)
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				records[i] = p.cache.GetOrExtract(batch[i], p.extractor)
			}
		}()
	}
feed:
	for i := range batch {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	// A canceled context can leave gaps; fill them synchronously so the
	// result stays well-formed.
	for i, rec := range records {
		if rec == nil {
			records[i] = p.cache.GetOrExtract(batch[i], p.extractor)
		}
	}
	return records
}

func (p *Pipeline) observe(res *RunResult, clusters, skipped int) {
	p.tele.ObserveRun(res.Duration.Seconds(), clusters, len(res.Narratives), len(res.Outliers))
	p.tele.ObserveEvolution(res.Evolution.New, res.Evolution.Merged, res.Evolution.Split, res.Evolution.Disappeared)
	p.tele.CountSkipped(skipped)
	if res.ScoringFallback {
		p.tele.CountFallback()
	}
	p.tele.ObserveWeights(map[string]float64{
		"volume":     res.Weights.Volume,
		"social":     res.Weights.Social,
		"liquidity":  res.Weights.Liquidity,
		"holders":    res.Weights.Holders,
		"volatility": res.Weights.Volatility,
	})

	hits, misses := p.cache.Stats()
	p.tele.ObserveCache(hits-p.prevHits, misses-p.prevMisses)
	p.prevHits, p.prevMisses = hits, misses
}
