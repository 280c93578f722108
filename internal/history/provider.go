// Package history defines the port for historical time-series signals that
// the core pipeline does not compute itself.
package history

// Provider supplies per-token-set signals derived from historical series.
// All methods return values in [0,1] where 0.5 is neutral. Implementations
// live outside the core; the pipeline only reads.
type Provider interface {
	// HolderGrowth is the recent holder-count growth signal for the set.
	HolderGrowth(addresses []string) float64
	// LiquidityStability is the inverse of recent liquidity variance.
	LiquidityStability(addresses []string) float64
	// SentimentVolatility is the recent swing in social sentiment.
	SentimentVolatility(addresses []string) float64
	// CommunityGrowth is the recent growth in community activity.
	CommunityGrowth(addresses []string) float64
}

// Neutral is the default Provider. It returns 0.5 for every signal: no real
// historical series are wired yet, and a fixed neutral value keeps runs
// reproducible where a random stand-in would not. Replace it with a real
// provider once per-token history is available.
type Neutral struct{}

func (Neutral) HolderGrowth([]string) float64        { return 0.5 }
func (Neutral) LiquidityStability([]string) float64  { return 0.5 }
func (Neutral) SentimentVolatility([]string) float64 { return 0.5 }
func (Neutral) CommunityGrowth([]string) float64     { return 0.5 }
