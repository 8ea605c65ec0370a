package intelligence

import (
	"math"

	"MarketMind/internal/domain/models"
)

// ComputeIndicators derives normalized technical indicators from a single
// quote snapshot. Pure function, no side effects; all numeric outputs are
// rounded to two decimals.
//
// The oscillator is a two-point momentum proxy clamped to [30, 70], not a
// multi-period RSI. It only sees the current session's percent change, so it
// cannot capture multi-day overbought/oversold structure. Kept deliberately.
func ComputeIndicators(s *models.MarketSnapshot) models.TechnicalIndicators {
	ind := models.TechnicalIndicators{
		Momentum:         round2(s.ChangePercent),
		MomentumStrength: round2(math.Abs(s.ChangePercent)),
	}

	// Position of last price in the day range. A zero range (no trades or a
	// fully flat day) defaults to the midpoint.
	if r := s.High - s.Low; r > 0 {
		ind.PricePosition = round2((s.LastPrice - s.Low) / r * 100)
	} else {
		ind.PricePosition = 50
	}

	if s.PrevClose != 0 {
		ind.Volatility = round2((s.High - s.Low) / s.PrevClose * 100)
	}

	if s.ChangePercent > 0 {
		ind.Oscillator = round2(math.Min(70, 50+2*s.ChangePercent))
	} else {
		ind.Oscillator = round2(math.Max(30, 50+2*s.ChangePercent))
	}

	switch {
	case (ind.PricePosition > 70 && ind.Momentum > 0.5) ||
		(ind.PricePosition < 30 && ind.Momentum < -0.5):
		ind.TrendStrength = "strong"
	case ind.PricePosition > 60 || ind.PricePosition < 40:
		ind.TrendStrength = "moderate"
	default:
		ind.TrendStrength = "weak"
	}

	ind.NearSupport = s.LastPrice <= s.Low*1.01
	ind.NearResistance = s.LastPrice >= s.High*0.99

	return ind
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
