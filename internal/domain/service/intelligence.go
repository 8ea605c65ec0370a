package service

import (
	"context"
	"time"

	"MarketMind/internal/domain/models"
)

// SessionEvaluator gates assessment cycles on trading-session state and
// supplies calendar/volatility context.
type SessionEvaluator interface {
	SessionState(now time.Time) models.SessionState
	DetectEvents(date time.Time) []models.MarketEvent
	InterpretVIX(level, change float64, events []models.MarketEvent) models.VIXView
	ShouldSkip(now time.Time) (bool, models.SessionState)
}

// TrendClassifier fuses indicators and cross-asset changes into a trend call.
type TrendClassifier interface {
	Classify(spotChangePct, bankChangePct, vix float64, ind models.TechnicalIndicators) (trend, strength, sentiment, confidence string)
}

// StrategyScorer ranks candidate option strategies for the given conditions.
type StrategyScorer interface {
	Score(c *models.MarketConditions) []models.StrategyRecommendation
}

// Advisor augments an assessment with an external reasoning service. A
// malformed or failed response must degrade to the deterministic path, so
// implementations return an error instead of partial advice.
type Advisor interface {
	Review(ctx context.Context, r *models.MarketIntelligenceResult) (string, error)
}
