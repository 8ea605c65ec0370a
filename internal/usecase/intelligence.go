package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"MarketMind/internal/domain/models"
	domrepo "MarketMind/internal/domain/repository"
	domsvc "MarketMind/internal/domain/service"
	icache "MarketMind/internal/service/cache"
	"MarketMind/internal/services/intelligence"
	"MarketMind/internal/services/news"
	"MarketMind/pkg/logger"
	"MarketMind/pkg/util"
)

// Symbols names the local instruments the engine assesses.
type Symbols struct {
	Spot string // benchmark index, e.g. NIFTY 50
	Bank string // correlated sector index, e.g. NIFTY BANK
	VIX  string // volatility index
}

// IntelligenceEngine runs the assessment pipeline: session gate, aggregation,
// indicators, trend, strategy scoring, history append. One engine instance
// owns its cache slot and history; there are no package-level singletons.
type IntelligenceEngine struct {
	quotes     domrepo.QuoteSource
	agg        *MarketAggregator
	evaluator  domsvc.SessionEvaluator
	classifier domsvc.TrendClassifier
	scorer     domsvc.StrategyScorer
	advisor    domsvc.Advisor // optional
	history    *HistoryStore
	publisher  domrepo.Publisher // optional
	metrics    domrepo.Metrics
	cache      *icache.ResultCache
	log        *logger.Logger
	symbols    Symbols
	sched      *Scheduler // optional back-reference for mode reporting

	// runMu serializes assessment cycles: HTTP-triggered refreshes and the
	// scheduler loop must never run the pipeline concurrently.
	runMu         sync.Mutex
	lastVIX       float64
	haveLastVIX   bool
	lastTimestamp time.Time
}

func NewIntelligenceEngine(
	quotes domrepo.QuoteSource,
	agg *MarketAggregator,
	evaluator domsvc.SessionEvaluator,
	classifier domsvc.TrendClassifier,
	scorer domsvc.StrategyScorer,
	history *HistoryStore,
	publisher domrepo.Publisher,
	metrics domrepo.Metrics,
	cache *icache.ResultCache,
	log *logger.Logger,
	symbols Symbols,
) *IntelligenceEngine {
	return &IntelligenceEngine{
		quotes:     quotes,
		agg:        agg,
		evaluator:  evaluator,
		classifier: classifier,
		scorer:     scorer,
		history:    history,
		publisher:  publisher,
		metrics:    metrics,
		cache:      cache,
		log:        log,
		symbols:    symbols,
	}
}

// AttachScheduler links the scheduler so results can report the scheduling
// mode. Set once during wiring, before the loop starts.
func (e *IntelligenceEngine) AttachScheduler(s *Scheduler) { e.sched = s }

// SetAdvisor wires the optional external reasoning service.
func (e *IntelligenceEngine) SetAdvisor(a domsvc.Advisor) { e.advisor = a }

// History exposes the pattern store for handlers.
func (e *IntelligenceEngine) History() *HistoryStore { return e.history }

// Latest returns the most recent assessment regardless of cache TTL, or nil
// when none has run yet.
func (e *IntelligenceEngine) Latest() *models.MarketIntelligenceResult {
	if last, ok := e.cache.Last(); ok {
		return last
	}
	return nil
}

// Analyze runs one assessment, or returns the cached result when the TTL
// window has not elapsed. With refresh set, the cache is bypassed.
//
// Closed market is a normal state, not a fault: the last known result comes
// back annotated MarketClosed with the next-open time.
func (e *IntelligenceEngine) Analyze(ctx context.Context, refresh bool) (*models.MarketIntelligenceResult, error) {
	if !refresh {
		if cached, ok := e.cache.Get(ctx); ok {
			out := *cached
			out.FromCache = true
			return &out, nil
		}
	}

	now := time.Now()
	if skip, st := e.evaluator.ShouldSkip(now); skip {
		if last, ok := e.cache.Last(); ok {
			out := *last
			out.FromCache = true
			out.MarketClosed = true
			out.NextOpenTime = st.NextOpen
			return &out, nil
		}
		// Nothing cached yet (cold start while shut): run the pipeline on
		// whatever data is available and annotate it.
		res, err := e.assess(ctx, now)
		if err != nil {
			return nil, err
		}
		res.MarketClosed = true
		res.NextOpenTime = st.NextOpen
		return res, nil
	}

	res, err := e.assess(ctx, now)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// assess executes the full pipeline and caches, stores and publishes the
// outcome.
func (e *IntelligenceEngine) assess(ctx context.Context, now time.Time) (*models.MarketIntelligenceResult, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	start := time.Now()

	spot, err := e.quotes.GetSnapshot(ctx, e.symbols.Spot)
	if errors.Is(err, domrepo.ErrUnauthorized) {
		// Auth failures surface as an explicit error result, not a Go error.
		e.metrics.RecordCycle("auth_error")
		return &models.MarketIntelligenceResult{
			GeneratedAt: now,
			Error:       fmt.Sprintf("authentication failed: %v", err),
		}, nil
	}
	if err != nil {
		e.metrics.RecordSourceError("spot")
		spot = &models.MarketSnapshot{Symbol: e.symbols.Spot, LastPrice: DefaultSpot, PrevClose: DefaultSpot}
	}

	vixLevel := DefaultVIX
	vixChange := 0.0
	if vix, verr := e.quotes.GetSnapshot(ctx, e.symbols.VIX); verr == nil {
		vixLevel = vix.LastPrice
		vixChange = vix.Change
	} else {
		e.metrics.RecordSourceError("vix")
	}
	if e.haveLastVIX && vixChange == 0 {
		vixChange = vixLevel - e.lastVIX
	}
	e.lastVIX = vixLevel
	e.haveLastVIX = true

	bankChangePct := 0.0
	bankSpot := 0.0
	if bank, berr := e.quotes.GetSnapshot(ctx, e.symbols.Bank); berr == nil {
		bankChangePct = bank.ChangePercent
		bankSpot = bank.LastPrice
	} else {
		e.metrics.RecordSourceError("bank")
	}

	inputs := e.agg.Collect(ctx)

	ind := intelligence.ComputeIndicators(spot)
	events := e.evaluator.DetectEvents(now)
	events = append(events, news.ExtractEvents(inputs.Headlines, now)...)
	vixView := e.evaluator.InterpretVIX(vixLevel, vixChange, events)

	trend, strength, sentiment, confidence := e.classifier.Classify(spot.ChangePercent, bankChangePct, vixLevel, ind)

	cond := &models.MarketConditions{
		Timestamp:        e.monotonicNow(now),
		VIX:              vixLevel,
		VIXChange:        vixChange,
		Spot:             spot.LastPrice,
		BankSpot:         bankSpot,
		Trend:            trend,
		TrendStrength:    strength,
		Sentiment:        sentiment,
		TrendConfidence:  confidence,
		VolatilityRegime: regimeForVIX(vixLevel),
		Indicators:       ind,
		VIXInterpret:     vixView,
		Gap:              intelligence.AnalyzeGap(spot.Open, spot.PrevClose),
		GlobalCues:       inputs.GlobalCues,
	}

	recs := e.scorer.Score(cond)
	cross := intelligence.PredictFromGlobalCues(inputs.GlobalCues)

	res := &models.MarketIntelligenceResult{
		Conditions:      cond,
		Recommendations: recs,
		CrossMarket:     cross,
		Events:          events,
		History:         e.history.MomentumSummary(10),
		SchedulingMode:  e.schedulingMode(now, cond),
		GeneratedAt:     now,
	}

	if e.advisor != nil {
		// External reasoning augments the deterministic result; a failed or
		// malformed response just leaves the rule-based output in place.
		if advice, aerr := e.advisor.Review(ctx, res); aerr == nil {
			res.Advice = advice
		} else {
			e.log.Debug("advisor unavailable, using rule-based analysis", logger.Error(aerr))
		}
	}

	e.cache.Put(ctx, res)
	e.appendHistory(ctx, now, cond, recs)

	if e.publisher != nil {
		if perr := e.publisher.PublishAssessment(ctx, res); perr != nil {
			e.log.Warn("assessment publish failed", logger.Error(perr))
		}
	}

	e.metrics.RecordCycle("ok")
	e.metrics.RecordVIX(vixLevel)
	e.metrics.RecordCycleDuration(time.Since(start).Seconds())
	e.log.Info("assessment complete",
		logger.String("trend", cond.Trend),
		logger.Float64("vix", vixLevel),
		logger.Float64("spot", spot.LastPrice),
		logger.Int("recommendations", len(recs)),
		logger.Duration("took", time.Since(start)))
	return res, nil
}

// appendHistory records at most one snapshot per calendar day, keyed on the
// assessment date.
func (e *IntelligenceEngine) appendHistory(ctx context.Context, now time.Time, cond *models.MarketConditions, recs []models.StrategyRecommendation) {
	snap := models.HistoricalSnapshot{
		Date:             util.TradingDay(now, nil),
		VIX:              cond.VIX,
		Spot:             cond.Spot,
		ChangePercent:    cond.Indicators.Momentum,
		Trend:            cond.Trend,
		VolatilityRegime: cond.VolatilityRegime,
		PricePosition:    cond.Indicators.PricePosition,
	}
	if len(recs) > 0 {
		snap.TopStrategy = recs[0].Strategy
		snap.TopScore = recs[0].Score
	}
	e.history.AppendDaily(ctx, snap)
}

func (e *IntelligenceEngine) schedulingMode(now time.Time, cond *models.MarketConditions) string {
	if e.sched == nil {
		return "15m (normal conditions)"
	}
	minutes, reason := e.sched.DetermineInterval(now, cond)
	return fmt.Sprintf("%dm (%s)", minutes, reason)
}

// monotonicNow guarantees strictly increasing condition timestamps even if
// two cycles land on the same wall-clock reading.
func (e *IntelligenceEngine) monotonicNow(now time.Time) time.Time {
	if !now.After(e.lastTimestamp) {
		now = e.lastTimestamp.Add(time.Nanosecond)
	}
	e.lastTimestamp = now
	return now
}

func regimeForVIX(vix float64) string {
	switch {
	case vix >= 20:
		return models.RegimeHigh
	case vix < 15:
		return models.RegimeLow
	default:
		return models.RegimeModerate
	}
}
