package intelligence

import (
	"fmt"

	"MarketMind/internal/domain/models"
)

// AnalyzeGap compares the session open against the previous close.
// Magnitude bands: <0.3% small, <0.8% medium, else large.
func AnalyzeGap(openPrice, prevClose float64) *models.GapAnalysis {
	if prevClose == 0 {
		return nil
	}
	gap := openPrice - prevClose
	pct := gap / prevClose * 100

	g := &models.GapAnalysis{
		Gap:        round2(gap),
		GapPercent: round2(pct),
		Type:       "none",
	}
	abs := pct
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs < 0.3:
		g.Magnitude = "small"
	case abs < 0.8:
		g.Magnitude = "medium"
	default:
		g.Magnitude = "large"
	}

	switch {
	case gap > 0:
		g.Type = "up"
		if g.Magnitude == "large" {
			g.Interpretation = "Large gap up: strong overnight buying, watch for gap fill"
		} else {
			g.Interpretation = "Gap up open: positive overnight sentiment"
		}
	case gap < 0:
		g.Type = "down"
		if g.Magnitude == "large" {
			g.Interpretation = "Large gap down: heavy overnight selling, expect volatility"
		} else {
			g.Interpretation = "Gap down open: negative overnight sentiment"
		}
	default:
		g.Interpretation = "Flat open, no overnight gap"
	}
	return g
}

// PredictFromGlobalCues emits a directional prediction per tracked foreign
// index whose move exceeds the reaction threshold (1% strong, 0.5% moderate)
// and aggregates them into an overall sentiment by majority vote.
func PredictFromGlobalCues(cues []models.GlobalCue) *models.CrossMarketView {
	view := &models.CrossMarketView{Sentiment: "neutral", Confidence: models.ConfidenceLow}

	var up, down int
	for _, cue := range cues {
		pct := cue.ChangePercent
		abs := pct
		if abs < 0 {
			abs = -abs
		}
		if abs <= 0.5 {
			continue
		}
		strength := "moderate"
		if abs > 1.0 {
			strength = "strong"
		}
		direction := models.TrendBullish
		if pct < 0 {
			direction = models.TrendBearish
		}
		view.Predictions = append(view.Predictions, models.CrossMarketPrediction{
			Index:     cue.Symbol,
			Direction: direction,
			Strength:  strength,
			Reason:    fmt.Sprintf("%s moved %.2f%% overnight", cue.Symbol, pct),
		})
		if pct > 0 {
			up++
		} else {
			down++
		}
	}

	if len(view.Predictions) > 0 {
		view.Confidence = models.ConfidenceMedium
		if up > down {
			view.Sentiment = models.TrendBullish
		} else if down > up {
			view.Sentiment = models.TrendBearish
		}
	}
	return view
}
