package models

// Requests for intelligence HTTP endpoints. Defined in domain for consistency and reuse.

type IntelligenceRequest struct {
	Refresh bool `query:"refresh" json:"refresh" default:"false"`
}

type SimilarDaysRequest struct {
	Lookback int `query:"lookback" json:"lookback" default:"30" validate:"gte=1,lte=365"`
}

type MomentumRequest struct {
	Lookback int `query:"lookback" json:"lookback" default:"10" validate:"gte=1,lte=365"`
}

type PositionsRequest struct {
	Count int `json:"count" validate:"gte=0,lte=500"`
}

type OutcomeRequest struct {
	Date string  `json:"date" validate:"required"`
	PnL  float64 `json:"pnl"`
}
