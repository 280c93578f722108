package models

import "time"

// TokenDescriptor is an immutable snapshot of one token supplied by the
// data-acquisition layer. The core never fetches or refreshes it.
type TokenDescriptor struct {
	Address        string             `json:"address"`
	Name           string             `json:"name"`
	Symbol         string             `json:"symbol"`
	Price          float64            `json:"price"`
	Volume24h      float64            `json:"volume_24h"`
	Holders        float64            `json:"holders"`
	Liquidity      float64            `json:"liquidity"`
	MarketCap      float64            `json:"market_cap"`
	PriceChange24h float64            `json:"price_change_24h"`
	SocialMentions float64            `json:"social_mentions"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Extended       map[string]float64 `json:"extended,omitempty"`
}

// AgeHours returns the token age relative to now, never negative.
func (t TokenDescriptor) AgeHours(now time.Time) float64 {
	if t.CreatedAt.IsZero() || t.CreatedAt.After(now) {
		return 0
	}
	return now.Sub(t.CreatedAt).Hours()
}

// Ext reads an extended metric, zero when absent.
func (t TokenDescriptor) Ext(key string) float64 {
	if t.Extended == nil {
		return 0
	}
	return t.Extended[key]
}

// MemberSummary is the per-token view embedded in ranked output.
type MemberSummary struct {
	Address        string  `json:"address"`
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Volume24h      float64 `json:"volume_24h"`
	MarketCap      float64 `json:"market_cap"`
	PriceChange24h float64 `json:"price_change_24h"`
}

// Summarize projects a descriptor into its output summary.
func Summarize(t TokenDescriptor) MemberSummary {
	return MemberSummary{
		Address:        t.Address,
		Symbol:         t.Symbol,
		Name:           t.Name,
		Volume24h:      t.Volume24h,
		MarketCap:      t.MarketCap,
		PriceChange24h: t.PriceChange24h,
	}
}
