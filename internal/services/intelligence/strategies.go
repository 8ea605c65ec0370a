package intelligence

import (
	"fmt"
	"sort"
	"strings"

	"MarketMind/internal/domain/models"
)

// The strategy book is an explicit ordered list: registration order breaks
// score ties, so reordering entries changes ranking reproducibility.
var strategyBook = []struct {
	name    string
	optimal string
}{
	{"Short Strangle", "High IV, range-bound market"},
	{"Iron Condor", "High IV, defined-risk range play"},
	{"Short Straddle", "Very high IV, pinned underlying"},
	{"Long Straddle", "Cheap IV ahead of a breakout"},
	{"Long Strangle", "Cheap IV, wide expected move"},
	{"Bull Call Spread", "Rising market, moderate IV"},
	{"Bear Put Spread", "Falling market, moderate IV"},
	{"Long Call", "Strong uptrend, low IV"},
	{"Long Put", "Strong downtrend, low IV"},
	{"Calendar Spread", "Moderate IV, slow drift"},
}

// Rule themes used to deduplicate justification text.
const (
	themeVolatility = "volatility"
	themeTrend      = "trend"
	themeProximity  = "proximity"
	themeMomentum   = "momentum"
)

// Scorer ranks option strategies with additive weighted rules.
type Scorer struct{}

func NewScorer() *Scorer { return &Scorer{} }

type tally struct {
	score   int
	reasons map[string]string // theme -> first reason for that theme
	order   []string          // themes in contribution order
}

// Score evaluates every condition rule in order, accumulates per-strategy
// scores and returns the top three with score > 0, descending. Confidence is
// a pure function of score (>=50 high, >=30 medium, else low).
func (s *Scorer) Score(c *models.MarketConditions) []models.StrategyRecommendation {
	tallies := make(map[string]*tally, len(strategyBook))
	for _, def := range strategyBook {
		tallies[def.name] = &tally{reasons: make(map[string]string)}
	}
	add := func(theme, reason string, points map[string]int) {
		for name, pts := range points {
			t := tallies[name]
			if t == nil {
				continue
			}
			t.score += pts
			if _, seen := t.reasons[theme]; !seen {
				t.reasons[theme] = reason
				t.order = append(t.order, theme)
			}
		}
	}

	// Volatility band rules.
	switch {
	case c.VIX >= 20:
		add(themeVolatility, fmt.Sprintf("High VIX (%.1f): rich premiums favor selling", c.VIX), map[string]int{
			"Short Strangle": 30, "Iron Condor": 25, "Short Straddle": 20,
		})
		if c.VIX >= 25 {
			add(themeVolatility, fmt.Sprintf("Very high VIX (%.1f): premium sellers strongly favored", c.VIX), map[string]int{
				"Short Strangle": 10, "Iron Condor": 10,
			})
		}
	case c.VIX < 15:
		add(themeVolatility, fmt.Sprintf("Low VIX (%.1f): cheap premiums favor buying", c.VIX), map[string]int{
			"Long Call": 20, "Long Put": 15, "Bull Call Spread": 15,
			"Bear Put Spread": 15, "Long Straddle": 10, "Long Strangle": 10,
		})
	default:
		add(themeVolatility, fmt.Sprintf("Moderate VIX (%.1f): balanced premium environment", c.VIX), map[string]int{
			"Iron Condor": 10, "Calendar Spread": 10,
		})
	}

	// Trend and strength rules.
	switch c.Trend {
	case models.TrendBullish:
		switch c.TrendStrength {
		case "strong":
			add(themeTrend, "Strong bullish trend", map[string]int{
				"Long Call": 30, "Bull Call Spread": 25,
			})
		case "moderate":
			add(themeTrend, "Moderate bullish trend", map[string]int{
				"Bull Call Spread": 20, "Long Call": 10,
			})
		default:
			add(themeTrend, "Weak bullish bias", map[string]int{"Bull Call Spread": 10})
		}
	case models.TrendBearish:
		switch c.TrendStrength {
		case "strong":
			add(themeTrend, "Strong bearish trend", map[string]int{
				"Long Put": 30, "Bear Put Spread": 25,
			})
		case "moderate":
			add(themeTrend, "Moderate bearish trend", map[string]int{
				"Bear Put Spread": 20, "Long Put": 10,
			})
		default:
			add(themeTrend, "Weak bearish bias", map[string]int{"Bear Put Spread": 10})
		}
	default:
		add(themeTrend, "Sideways market: non-directional structures preferred", map[string]int{
			"Short Strangle": 20, "Iron Condor": 20, "Short Straddle": 10, "Calendar Spread": 10,
		})
	}

	// Proximity to the day's extremes.
	if c.Indicators.NearSupport {
		add(themeProximity, "Price near day support", map[string]int{
			"Bull Call Spread": 10, "Long Call": 10,
		})
	}
	if c.Indicators.NearResistance {
		add(themeProximity, "Price near day resistance", map[string]int{
			"Bear Put Spread": 10, "Long Put": 10,
		})
	}

	// Momentum magnitude.
	if c.Indicators.MomentumStrength > 1.0 {
		add(themeMomentum, fmt.Sprintf("Strong momentum (%.2f%%)", c.Indicators.Momentum), map[string]int{
			"Long Straddle": 15, "Long Strangle": 15,
		})
		if c.Indicators.Momentum > 0 {
			add(themeMomentum, "Momentum continuation upward", map[string]int{"Long Call": 10})
		} else {
			add(themeMomentum, "Momentum continuation downward", map[string]int{"Long Put": 10})
		}
	}

	// Collect, filter, rank. Stable sort preserves book order on ties.
	recs := make([]models.StrategyRecommendation, 0, 3)
	for _, def := range strategyBook {
		t := tallies[def.name]
		if t.score <= 0 {
			continue
		}
		parts := make([]string, 0, len(t.order))
		for _, theme := range t.order {
			parts = append(parts, t.reasons[theme])
		}
		recs = append(recs, models.StrategyRecommendation{
			Strategy:          def.name,
			Score:             t.score,
			Confidence:        confidenceForScore(t.score),
			Reasoning:         strings.Join(parts, "; "),
			OptimalConditions: def.optimal,
		})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > 3 {
		recs = recs[:3]
	}
	for i := range recs {
		recs[i].Priority = i + 1
	}
	return recs
}

func confidenceForScore(score int) string {
	switch {
	case score >= 50:
		return models.ConfidenceHigh
	case score >= 30:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
