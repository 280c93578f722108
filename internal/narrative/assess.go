package narrative

import "fmt"

// assess derives the five categorical characteristic assessments from the
// cluster's aggregate metrics. Thresholds are fixed heuristics.
func assess(a *analysis) Characteristics {
	return Characteristics{
		Volatility: assessVolatility(a),
		Community:  assessCommunity(a),
		Market:     assessMarket(a),
		Social:     assessSocial(a),
		Temporal:   assessTemporal(a),
	}
}

func assessVolatility(a *analysis) Assessment {
	switch {
	case a.absChange > 50:
		return Assessment{"extreme", fmt.Sprintf("average 24h move of %.0f%%", a.absChange)}
	case a.absChange > 20:
		return Assessment{"high", fmt.Sprintf("average 24h move of %.0f%%", a.absChange)}
	case a.absChange > 5:
		return Assessment{"moderate", "typical small-cap intraday swings"}
	default:
		return Assessment{"low", "price action quiet across members"}
	}
}

func assessCommunity(a *analysis) Assessment {
	switch {
	case a.avgHolders > 10000:
		return Assessment{"established", fmt.Sprintf("%.0f holders on average", a.avgHolders)}
	case a.avgHolders > 1000:
		return Assessment{"growing", fmt.Sprintf("%.0f holders on average", a.avgHolders)}
	case a.avgHolders > 100:
		return Assessment{"early", "holder base still forming"}
	default:
		return Assessment{"nascent", "very few holders per token"}
	}
}

func assessMarket(a *analysis) Assessment {
	switch {
	case a.avgMarketCap > 1e8:
		return Assessment{"large", fmt.Sprintf("average market cap $%.0fM", a.avgMarketCap/1e6)}
	case a.avgMarketCap > 1e6:
		return Assessment{"mid", fmt.Sprintf("average market cap $%.1fM", a.avgMarketCap/1e6)}
	case a.avgMarketCap > 1e4:
		return Assessment{"micro", "micro-cap members dominate"}
	default:
		return Assessment{"dust", "negligible market value"}
	}
}

func assessSocial(a *analysis) Assessment {
	switch {
	case a.avgMentions > 5000:
		return Assessment{"viral", fmt.Sprintf("%.0f mentions per token", a.avgMentions)}
	case a.avgMentions > 500:
		return Assessment{"active", fmt.Sprintf("%.0f mentions per token", a.avgMentions)}
	case a.avgMentions > 50:
		return Assessment{"quiet", "limited social traction"}
	default:
		return Assessment{"silent", "no meaningful social signal"}
	}
}

func assessTemporal(a *analysis) Assessment {
	desc := fmt.Sprintf("%s emergence, average age %.0fh", a.emergence, a.avgAgeHours)
	switch {
	case a.avgAgeHours < 24:
		return Assessment{"new", desc}
	case a.avgAgeHours < 24*7:
		return Assessment{"recent", desc}
	case a.avgAgeHours < 24*30:
		return Assessment{"settling", desc}
	default:
		return Assessment{"aged", desc}
	}
}
