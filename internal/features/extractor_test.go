package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftcap/narrativescan/internal/models"
)

func testToken(name, symbol string) models.TokenDescriptor {
	return models.TokenDescriptor{
		Address:        "0x" + symbol,
		Name:           name,
		Symbol:         symbol,
		Price:          0.002,
		Volume24h:      150000,
		Holders:        1200,
		Liquidity:      80000,
		MarketCap:      900000,
		PriceChange24h: 35,
		SocialMentions: 400,
		CreatedAt:      time.Now().Add(-72 * time.Hour),
		UpdatedAt:      time.Now(),
	}
}

func TestExtract_VectorIsFiniteAndBounded(t *testing.T) {
	e := NewExtractor(DefaultConfig(), nil)
	rec := e.Extract(testToken("Neural Doge", "NDOGE"))

	require.NotEmpty(t, rec.Combined)
	for i, v := range rec.Combined {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "component %d not finite", i)
		assert.GreaterOrEqual(t, v, 0.0, "component %d below range", i)
		assert.LessOrEqual(t, v, 1.0, "component %d above range", i)
	}
}

func TestExtract_MissingFieldsNeverFail(t *testing.T) {
	e := NewExtractor(DefaultConfig(), nil)
	rec := e.Extract(models.TokenDescriptor{Address: "0x0"})

	require.NotNil(t, rec)
	for _, v := range rec.Combined {
		assert.False(t, math.IsNaN(v))
	}
}

func TestExtract_ThemeIndicators(t *testing.T) {
	e := NewExtractor(DefaultConfig(), nil)

	ai := e.Extract(testToken("GPT Brain", "AGI"))
	plain := e.Extract(testToken("Generic Coin", "GEN"))

	// Indicator slots lead the textual vector in catalog order; "ai" is the
	// second default category.
	assert.Equal(t, 1.0, ai.Textual[1], "ai indicator should fire")
	assert.Equal(t, 0.0, plain.Textual[1], "ai indicator should stay off")
}

func TestRange_Normalize(t *testing.T) {
	cases := []struct {
		name string
		r    Range
		in   float64
		want float64
	}{
		{"below min clamps", Range{Min: 10, Max: 20}, 5, 0},
		{"above max clamps", Range{Min: 10, Max: 20}, 50, 1},
		{"midpoint", Range{Min: 0, Max: 10}, 5, 0.5},
		{"nan is zero", Range{Min: 0, Max: 10}, math.NaN(), 0},
		{"log zero", Range{Min: 0, Max: 1e6, Log: true}, 0, 0},
		{"log max", Range{Min: 0, Max: 1e6, Log: true}, 1e6, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, tc.r.Normalize(tc.in), 1e-9)
		})
	}
}

func TestCache_KeyedByAddressAndUpdateTime(t *testing.T) {
	e := NewExtractor(DefaultConfig(), nil)
	c := NewCache(10)

	tok := testToken("Pepe Classic", "PEPC")
	first := c.GetOrExtract(tok, e)
	second := c.GetOrExtract(tok, e)
	assert.Same(t, first, second, "unchanged token should hit the cache")

	tok.UpdatedAt = tok.UpdatedAt.Add(time.Minute)
	third := c.GetOrExtract(tok, e)
	assert.NotSame(t, first, third, "updated token should recompute")

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestCache_Eviction(t *testing.T) {
	e := NewExtractor(DefaultConfig(), nil)
	c := NewCache(2)

	c.GetOrExtract(testToken("A", "AAA"), e)
	c.GetOrExtract(testToken("B", "BBB"), e)
	c.GetOrExtract(testToken("C", "CCC"), e)

	assert.Equal(t, 2, c.Len(), "cache should stay bounded")
}
