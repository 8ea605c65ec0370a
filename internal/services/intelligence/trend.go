package intelligence

import (
	"math"

	"MarketMind/internal/domain/models"
)

// Classifier fuses index changes, the volatility level and technical
// indicators into a trend call.
type Classifier struct{}

func NewClassifier() *Classifier { return &Classifier{} }

// Classify returns trend, strength, sentiment and a confidence tier.
//
// A decisive move in the primary index short-circuits the signal vote;
// otherwise bullish and bearish signal counts decide, with sideways as the
// fallback. Confidence scales the vote margin by a volatility factor: calm
// markets make the vote more trustworthy, stressed ones less.
func (c *Classifier) Classify(spotChangePct, bankChangePct, vix float64, ind models.TechnicalIndicators) (trend, strength, sentiment, confidence string) {
	var bullish, bearish int

	if spotChangePct > 0.2 {
		bullish++
	} else if spotChangePct < -0.2 {
		bearish++
	}
	if bankChangePct > 0.2 {
		bullish++
	} else if bankChangePct < -0.2 {
		bearish++
	}
	if ind.Momentum > 0.3 {
		bullish++
	} else if ind.Momentum < -0.3 {
		bearish++
	}
	if vix < 15 {
		bullish++
	} else if vix > 20 {
		bearish++
	}

	switch {
	case math.Abs(spotChangePct) > 0.4:
		if spotChangePct > 0 {
			trend = models.TrendBullish
		} else {
			trend = models.TrendBearish
		}
		strength = "moderate"
		if math.Abs(spotChangePct) > 0.6 {
			strength = "strong"
		}
	case bullish > bearish && bullish >= 1:
		trend = models.TrendBullish
		strength = "weak"
		if bullish >= 2 {
			strength = "moderate"
		}
	case bearish > bullish && bearish >= 1:
		trend = models.TrendBearish
		strength = "weak"
		if bearish >= 2 {
			strength = "moderate"
		}
	default:
		trend = models.TrendSideways
		strength = "weak"
	}

	switch trend {
	case models.TrendBullish:
		sentiment = "positive"
	case models.TrendBearish:
		sentiment = "negative"
	default:
		sentiment = "neutral"
	}

	volFactor := 1.0
	if vix < 15 {
		volFactor = 1.2
	} else if vix > 20 {
		volFactor = 0.8
	}
	score := math.Abs(float64(bullish-bearish)) * volFactor
	switch {
	case score >= 3:
		confidence = models.ConfidenceHigh
	case score >= 2:
		confidence = models.ConfidenceMedium
	default:
		confidence = models.ConfidenceLow
	}

	return trend, strength, sentiment, confidence
}
