package features

import (
	"hash/fnv"
	"strings"
	"time"

	"github.com/driftcap/narrativescan/internal/models"
	"github.com/driftcap/narrativescan/internal/themes"
)

// Record holds the four feature groups and the combined vector for one token.
type Record struct {
	Token    models.TokenDescriptor
	Textual  []float64
	OnChain  []float64
	Social   []float64
	Market   []float64
	Combined []float64
}

// Extractor turns token descriptors into feature records. Extraction never
// fails: missing numerics read as zero and out-of-range values clamp.
type Extractor struct {
	cfg     Config
	catalog *themes.Catalog
	now     func() time.Time
}

// NewExtractor builds an extractor over the given catalog. A nil catalog
// falls back to the default one.
func NewExtractor(cfg Config, catalog *themes.Catalog) *Extractor {
	if catalog == nil {
		catalog = themes.Default()
	}
	if cfg.BagDim <= 0 {
		cfg.BagDim = DefaultConfig().BagDim
	}
	return &Extractor{cfg: cfg, catalog: catalog, now: time.Now}
}

// Extract computes all four groups plus the combined vector.
func (e *Extractor) Extract(tok models.TokenDescriptor) *Record {
	rec := &Record{
		Token:   tok,
		Textual: e.textual(tok),
		OnChain: e.onChain(tok),
		Social:  e.social(tok),
		Market:  e.market(tok),
	}
	rec.Combined = e.combine(rec)
	return rec
}

func (e *Extractor) textual(tok models.TokenDescriptor) []float64 {
	text := strings.ToLower(tok.Name + " " + tok.Symbol)

	vec := make([]float64, 0, len(e.catalog.Categories)+e.cfg.BagDim)
	for _, cat := range e.catalog.Categories {
		if e.catalog.HasAny(cat, text) {
			vec = append(vec, 1)
		} else {
			vec = append(vec, 0)
		}
	}

	// Hashed bag-of-words: cheap, reproducible stand-in for a semantic
	// embedding.
	bag := make([]float64, e.cfg.BagDim)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		bag[int(h.Sum32())%e.cfg.BagDim]++
	}
	if n := float64(len(words)); n > 0 {
		for i := range bag {
			bag[i] /= n
		}
	}
	return append(vec, bag...)
}

func (e *Extractor) onChain(tok models.TokenDescriptor) []float64 {
	return []float64{
		e.cfg.Holders.Normalize(tok.Holders),
		e.cfg.Liquidity.Normalize(tok.Liquidity),
		e.cfg.MarketCap.Normalize(tok.MarketCap),
		e.cfg.AgeHours.Normalize(tok.AgeHours(e.now())),
	}
}

func (e *Extractor) social(tok models.TokenDescriptor) []float64 {
	age := tok.AgeHours(e.now())
	velocity := tok.SocialMentions
	if age > 1 {
		velocity = tok.SocialMentions / age
	}
	return []float64{
		e.cfg.Mentions.Normalize(tok.SocialMentions),
		e.cfg.Mentions.Normalize(velocity * 24),
	}
}

func (e *Extractor) market(tok models.TokenDescriptor) []float64 {
	turnover := 0.0
	if tok.MarketCap > 0 {
		turnover = tok.Volume24h / tok.MarketCap
		if turnover > 1 {
			turnover = 1
		}
	}
	change := tok.PriceChange24h
	if change < 0 {
		change = -change
	}
	direction := 0.5
	if tok.PriceChange24h > 0 {
		direction = 1
	} else if tok.PriceChange24h < 0 {
		direction = 0
	}
	return []float64{
		e.cfg.Volume.Normalize(tok.Volume24h),
		e.cfg.Change.Normalize(change),
		turnover,
		direction,
	}
}

func (e *Extractor) combine(rec *Record) []float64 {
	out := make([]float64, 0, len(rec.Textual)+len(rec.OnChain)+len(rec.Social)+len(rec.Market))
	for _, v := range rec.Textual {
		out = append(out, v*e.cfg.Weights.Textual)
	}
	for _, v := range rec.OnChain {
		out = append(out, v*e.cfg.Weights.OnChain)
	}
	for _, v := range rec.Social {
		out = append(out, v*e.cfg.Weights.Social)
	}
	for _, v := range rec.Market {
		out = append(out, v*e.cfg.Weights.Market)
	}
	return out
}
