package intelligence

import (
	"testing"

	"MarketMind/internal/domain/models"
)

func TestClassifyDecisiveMoveShortCircuits(t *testing.T) {
	c := NewClassifier()

	trend, strength, sentiment, _ := c.Classify(0.5, -0.3, 17, models.TechnicalIndicators{})
	if trend != models.TrendBullish {
		t.Fatalf("trend %q want bullish", trend)
	}
	if strength != "moderate" {
		t.Fatalf("strength %q want moderate", strength)
	}
	if sentiment != "positive" {
		t.Fatalf("sentiment %q want positive", sentiment)
	}

	trend, strength, _, _ = c.Classify(-0.7, 0, 17, models.TechnicalIndicators{})
	if trend != models.TrendBearish || strength != "strong" {
		t.Fatalf("got %q/%q want bearish/strong", trend, strength)
	}
}

func TestClassifyVoteFallback(t *testing.T) {
	c := NewClassifier()

	// Spot too small to short-circuit; bank and momentum vote bullish.
	ind := models.TechnicalIndicators{Momentum: 0.35}
	trend, strength, _, _ := c.Classify(0.1, 0.3, 17, ind)
	if trend != models.TrendBullish {
		t.Fatalf("trend %q want bullish", trend)
	}
	if strength != "moderate" {
		t.Fatalf("two votes should give moderate, got %q", strength)
	}

	// Single bearish vote.
	trend, strength, sentiment, _ := c.Classify(0, -0.3, 17, models.TechnicalIndicators{})
	if trend != models.TrendBearish || strength != "weak" {
		t.Fatalf("got %q/%q want bearish/weak", trend, strength)
	}
	if sentiment != "negative" {
		t.Fatalf("sentiment %q want negative", sentiment)
	}
}

func TestClassifySideways(t *testing.T) {
	c := NewClassifier()
	trend, strength, sentiment, confidence := c.Classify(0.1, -0.1, 17, models.TechnicalIndicators{})
	if trend != models.TrendSideways || strength != "weak" {
		t.Fatalf("got %q/%q want sideways/weak", trend, strength)
	}
	if sentiment != "neutral" {
		t.Fatalf("sentiment %q want neutral", sentiment)
	}
	if confidence != models.ConfidenceLow {
		t.Fatalf("confidence %q want low", confidence)
	}
}

func TestClassifyConfidenceScalesWithVolatility(t *testing.T) {
	c := NewClassifier()

	// Three bullish votes (spot, bank, momentum) in a calm market: margin 3
	// is lifted past the high bar only because vix < 15 adds a fourth vote
	// and the 1.2 factor.
	ind := models.TechnicalIndicators{Momentum: 0.5}
	_, _, _, confidence := c.Classify(0.3, 0.3, 12, ind)
	if confidence != models.ConfidenceHigh {
		t.Fatalf("confidence %q want high", confidence)
	}

	// Same directional picture in a stressed market: vix > 20 votes bearish
	// and the 0.8 factor drags the margin down.
	_, _, _, confidence = c.Classify(0.3, 0.3, 22, ind)
	if confidence != models.ConfidenceLow {
		t.Fatalf("confidence %q want low", confidence)
	}
}

func TestClassifyVIXVote(t *testing.T) {
	c := NewClassifier()
	// Only signal is the low vix itself.
	trend, _, _, _ := c.Classify(0, 0, 12, models.TechnicalIndicators{})
	if trend != models.TrendBullish {
		t.Fatalf("low vix alone should vote bullish, got %q", trend)
	}
	trend, _, _, _ = c.Classify(0, 0, 24, models.TechnicalIndicators{})
	if trend != models.TrendBearish {
		t.Fatalf("high vix alone should vote bearish, got %q", trend)
	}
}
