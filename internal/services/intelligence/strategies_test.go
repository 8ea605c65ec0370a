package intelligence

import (
	"strings"
	"testing"

	"MarketMind/internal/domain/models"
)

func TestScoreHighVIXSideways(t *testing.T) {
	s := NewScorer()
	recs := s.Score(&models.MarketConditions{
		VIX:           27,
		Trend:         models.TrendSideways,
		TrendStrength: "weak",
	})
	if len(recs) != 3 {
		t.Fatalf("want 3 recommendations, got %d", len(recs))
	}
	if recs[0].Strategy != "Short Strangle" || recs[0].Score != 60 {
		t.Fatalf("top rec %+v want Short Strangle/60", recs[0])
	}
	if recs[0].Confidence != models.ConfidenceHigh {
		t.Fatalf("confidence %q want high", recs[0].Confidence)
	}
	if recs[1].Strategy != "Iron Condor" || recs[1].Score != 55 {
		t.Fatalf("second rec %+v want Iron Condor/55", recs[1])
	}
	if recs[2].Strategy != "Short Straddle" || recs[2].Score != 30 {
		t.Fatalf("third rec %+v want Short Straddle/30", recs[2])
	}
	if recs[2].Confidence != models.ConfidenceMedium {
		t.Fatalf("confidence %q want medium", recs[2].Confidence)
	}
	for i, r := range recs {
		if r.Priority != i+1 {
			t.Fatalf("priority %d at index %d", r.Priority, i)
		}
	}
}

func TestScoreLowVIXStrongBullish(t *testing.T) {
	s := NewScorer()
	recs := s.Score(&models.MarketConditions{
		VIX:           11,
		Trend:         models.TrendBullish,
		TrendStrength: "strong",
	})
	if recs[0].Strategy != "Long Call" || recs[0].Score != 50 {
		t.Fatalf("top rec %+v want Long Call/50", recs[0])
	}
	if recs[0].Confidence != models.ConfidenceHigh {
		t.Fatalf("confidence %q want high", recs[0].Confidence)
	}
	if recs[1].Strategy != "Bull Call Spread" || recs[1].Score != 40 {
		t.Fatalf("second rec %+v want Bull Call Spread/40", recs[1])
	}
}

func TestScoreTiesFollowBookOrder(t *testing.T) {
	s := NewScorer()
	recs := s.Score(&models.MarketConditions{
		VIX:           17,
		Trend:         models.TrendBearish,
		TrendStrength: "moderate",
		Indicators:    models.TechnicalIndicators{Momentum: -1.5, MomentumStrength: 1.5},
	})
	// Bear Put Spread and Long Put both land on 20; book order decides.
	if recs[0].Strategy != "Bear Put Spread" || recs[0].Score != 20 {
		t.Fatalf("top rec %+v want Bear Put Spread/20", recs[0])
	}
	if recs[1].Strategy != "Long Put" || recs[1].Score != 20 {
		t.Fatalf("second rec %+v want Long Put/20", recs[1])
	}
	if recs[2].Strategy != "Long Straddle" || recs[2].Score != 15 {
		t.Fatalf("third rec %+v want Long Straddle/15", recs[2])
	}
}

func TestScoreProximityRules(t *testing.T) {
	s := NewScorer()
	recs := s.Score(&models.MarketConditions{
		VIX:           17,
		Trend:         models.TrendBullish,
		TrendStrength: "weak",
		Indicators:    models.TechnicalIndicators{NearSupport: true},
	})
	if recs[0].Strategy != "Bull Call Spread" || recs[0].Score != 20 {
		t.Fatalf("top rec %+v want Bull Call Spread/20", recs[0])
	}
	if !strings.Contains(recs[0].Reasoning, "support") {
		t.Fatalf("reasoning should mention support: %q", recs[0].Reasoning)
	}
}

func TestScoreReasoningJoinsThemesOnce(t *testing.T) {
	s := NewScorer()
	recs := s.Score(&models.MarketConditions{
		VIX:           27,
		Trend:         models.TrendSideways,
		TrendStrength: "weak",
	})
	r := recs[0]
	// Two volatility rules fired, but the theme keeps only its first reason.
	if strings.Count(r.Reasoning, "VIX") != 1 {
		t.Fatalf("expected one volatility clause, got %q", r.Reasoning)
	}
	parts := strings.Split(r.Reasoning, "; ")
	if len(parts) != 2 {
		t.Fatalf("expected volatility and trend clauses, got %q", r.Reasoning)
	}
}

func TestScoreCapsAtThree(t *testing.T) {
	s := NewScorer()
	recs := s.Score(&models.MarketConditions{
		VIX:           12,
		Trend:         models.TrendSideways,
		TrendStrength: "weak",
		Indicators:    models.TechnicalIndicators{NearSupport: true, NearResistance: true},
	})
	if len(recs) != 3 {
		t.Fatalf("want at most 3 recommendations, got %d", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			t.Fatalf("recommendations not sorted: %+v", recs)
		}
	}
}

func TestConfidenceForScore(t *testing.T) {
	if got := confidenceForScore(55); got != models.ConfidenceHigh {
		t.Fatalf("55 -> %q", got)
	}
	if got := confidenceForScore(50); got != models.ConfidenceHigh {
		t.Fatalf("50 -> %q", got)
	}
	if got := confidenceForScore(30); got != models.ConfidenceMedium {
		t.Fatalf("30 -> %q", got)
	}
	if got := confidenceForScore(29); got != models.ConfidenceLow {
		t.Fatalf("29 -> %q", got)
	}
}
