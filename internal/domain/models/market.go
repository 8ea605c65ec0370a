package models

import "time"

// Trend labels produced by the classifier.
const (
	TrendBullish  = "bullish"
	TrendBearish  = "bearish"
	TrendSideways = "sideways"
)

// Volatility regime bands derived from the volatility index level.
const (
	RegimeHigh     = "high"     // VIX >= 20
	RegimeLow      = "low"      // VIX < 15
	RegimeModerate = "moderate" // otherwise
)

// Confidence tiers shared by trend, strategy and cross-market outputs.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// MarketSnapshot is a point-in-time quote for one symbol as delivered by the
// broker feed. Immutable once fetched.
type MarketSnapshot struct {
	Symbol        string
	LastPrice     float64
	Change        float64
	ChangePercent float64
	Open          float64
	High          float64
	Low           float64
	PrevClose     float64
	Volume        float64
	FetchedAt     time.Time
}

// TechnicalIndicators are derived from a single MarketSnapshot. All values
// are rounded to two decimals for presentation.
type TechnicalIndicators struct {
	PricePosition    float64 // 0-100, position of last price in the day range
	Momentum         float64 // = percent change
	MomentumStrength float64 // |momentum|
	Volatility       float64 // (high-low)/close * 100
	Oscillator       float64 // two-point momentum proxy, see indicator calculator
	TrendStrength    string  // strong | moderate | weak
	NearSupport      bool
	NearResistance   bool
}

// VIXView is the qualitative interpretation of the volatility index.
type VIXView struct {
	Level          float64
	Trend          string // rising | falling | flat
	Change         float64
	Meaning        string
	Context        string
	Caution        bool
	Recommendation string
}

// GapAnalysis describes the open-versus-previous-close gap.
type GapAnalysis struct {
	Gap            float64
	GapPercent     float64
	Type           string // up | down | none
	Magnitude      string // small | medium | large
	Interpretation string
}

// GlobalCue is the latest reading for one tracked foreign index.
type GlobalCue struct {
	Symbol        string
	Price         float64
	Change        float64
	ChangePercent float64
}

// CrossMarketPrediction is a directional call for the local market derived
// from one foreign index move.
type CrossMarketPrediction struct {
	Index     string
	Direction string // bullish | bearish
	Strength  string // strong | moderate
	Reason    string
}

// CrossMarketView aggregates per-index predictions into one sentiment.
type CrossMarketView struct {
	Predictions []CrossMarketPrediction
	Sentiment   string // bullish | bearish | neutral
	Confidence  string
}

// Headline is one news item pulled from an external feed.
type Headline struct {
	Title   string
	Link    string
	PubDate time.Time
	Source  string
}

// MarketEvent is a calendar or news-derived occurrence relevant to options
// positioning. Events carry no identity; they are recomputed every cycle.
type MarketEvent struct {
	Type        string // budget | monthly_expiry | weekly_expiry | rbi_policy | news event categories
	Name        string
	Date        time.Time
	DaysUntil   int
	Impact      string // low | medium | high
	Description string
}

// SessionState reports whether the trading session is open.
type SessionState struct {
	Open          bool
	Reason        string
	NextOpen      *time.Time
	MinutesToOpen int
}

// MarketConditions is the conglomerate assessment for one cycle. Created once
// per cycle and treated as immutable afterwards.
type MarketConditions struct {
	Timestamp        time.Time
	VIX              float64
	VIXChange        float64
	Spot             float64
	BankSpot         float64
	Trend            string
	TrendStrength    string
	Sentiment        string // positive | negative | neutral
	TrendConfidence  string
	VolatilityRegime string
	Indicators       TechnicalIndicators
	VIXInterpret     VIXView
	Gap              *GapAnalysis
	GlobalCues       []GlobalCue
}
