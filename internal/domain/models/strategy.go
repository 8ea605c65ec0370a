package models

import "time"

// StrategyRecommendation is one ranked candidate strategy for the current
// market state. Never persisted on its own; embedded in the intelligence
// result and in HistoricalSnapshot.
type StrategyRecommendation struct {
	Strategy          string
	Score             int
	Confidence        string // derived from score: >=50 high, >=30 medium, else low
	Priority          int    // 1-based rank after sorting
	Reasoning         string
	OptimalConditions string
}

// HistoricalSnapshot is one calendar day's distilled market state plus the
// top recommendation of that day. Outcome is filled in later and stays nil
// until a realized P&L is reported.
type HistoricalSnapshot struct {
	Date             time.Time
	VIX              float64
	Spot             float64
	ChangePercent    float64
	Trend            string
	VolatilityRegime string
	PricePosition    float64
	TopStrategy      string
	TopScore         int
	Outcome          *float64
}

// SimilarDay pairs a stored day with its similarity score against the
// current conditions.
type SimilarDay struct {
	Snapshot   HistoricalSnapshot
	Similarity int
}

// MomentumSummary is the rolling-window analytics over the historical store.
type MomentumSummary struct {
	SampleDays        int
	AvgChangePercent  float64
	StdDevChange      float64
	TrendDistribution map[string]int
	DominantTrend     string
	VIXRising         bool
	SuccessRate       float64 // fraction of resolved outcomes > 0
	AvgOutcome        float64
	OutcomeSamples    int
}

// SchedulerState is the single process-wide scheduler status. Mutated only
// by the scheduler loop, read by status reporting.
type SchedulerState struct {
	IntervalMinutes int // one of 5, 10, 15
	Reason          string
	LastAssessment  time.Time
	NextRun         time.Time
	ActivePositions int
	MarketOpen      bool
}

// MarketIntelligenceResult is the outward-facing product of one analyze()
// call. When the market is closed the last cached result is returned with
// MarketClosed set instead of an error. A nil Conditions with a non-empty
// Error marks an authentication or upstream failure.
type MarketIntelligenceResult struct {
	Conditions      *MarketConditions
	Recommendations []StrategyRecommendation
	CrossMarket     *CrossMarketView
	Events          []MarketEvent
	History         *MomentumSummary
	SchedulingMode  string
	MarketClosed    bool
	NextOpenTime    *time.Time
	GeneratedAt     time.Time
	FromCache       bool
	Advice          string
	Error           string
}
