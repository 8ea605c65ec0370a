package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"MarketMind/internal/domain/models"
)

func daySnap(date time.Time, changePct float64, trend string) models.HistoricalSnapshot {
	return models.HistoricalSnapshot{
		Date:          date,
		VIX:           15,
		Spot:          24000,
		ChangePercent: changePct,
		Trend:         trend,
		PricePosition: 50,
	}
}

func TestHistoryStoreEvictsOldest(t *testing.T) {
	h := NewHistoryStore(nil, nil)
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < maxWindowDays+1; i++ {
		h.Append(ctx, daySnap(start.AddDate(0, 0, i), 0.1, models.TrendSideways))
	}
	if h.Len() != maxWindowDays {
		t.Fatalf("window length %d want %d", h.Len(), maxWindowDays)
	}
	// The first day must have been evicted.
	h.mu.RLock()
	oldest := h.window[0].Date
	h.mu.RUnlock()
	if !oldest.Equal(start.AddDate(0, 0, 1)) {
		t.Fatalf("oldest %v want %v", oldest, start.AddDate(0, 0, 1))
	}
}

func TestHistoryStoreAppendDailyReplacesSameDay(t *testing.T) {
	h := NewHistoryStore(nil, nil)
	ctx := context.Background()
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	first := daySnap(day, 0.2, models.TrendBullish)
	h.AppendDaily(ctx, first)
	h.RecordOutcome(ctx, day, 1500)

	second := daySnap(day, 0.6, models.TrendBullish)
	second.TopStrategy = "Long Call"
	h.AppendDaily(ctx, second)

	if h.Len() != 1 {
		t.Fatalf("same-day append should replace, length %d", h.Len())
	}
	h.mu.RLock()
	got := h.window[0]
	h.mu.RUnlock()
	if got.ChangePercent != 0.6 || got.TopStrategy != "Long Call" {
		t.Fatalf("latest assessment should win: %+v", got)
	}
	if got.Outcome == nil || *got.Outcome != 1500 {
		t.Fatalf("replacement must preserve the recorded outcome: %+v", got.Outcome)
	}
}

func TestHistoryStoreAppendDailyNewDayAppends(t *testing.T) {
	h := NewHistoryStore(nil, nil)
	ctx := context.Background()
	h.AppendDaily(ctx, daySnap(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), 0.2, models.TrendBullish))
	h.AppendDaily(ctx, daySnap(time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), -0.1, models.TrendBearish))
	if h.Len() != 2 {
		t.Fatalf("length %d want 2", h.Len())
	}
}

func TestHistoryStoreRecordOutcomeUnknownDate(t *testing.T) {
	h := NewHistoryStore(nil, nil)
	ctx := context.Background()
	h.AppendDaily(ctx, daySnap(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), 0.2, models.TrendBullish))
	h.RecordOutcome(ctx, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), -300)
	h.mu.RLock()
	got := h.window[0]
	h.mu.RUnlock()
	if got.Outcome != nil {
		t.Fatalf("mismatched date must not set an outcome")
	}
}

func TestFindSimilarScoring(t *testing.T) {
	h := NewHistoryStore(nil, nil)
	ctx := context.Background()
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	// Perfect match on every dimension: 20+15+10+15+10 = 70.
	match := models.HistoricalSnapshot{
		Date: day, VIX: 16, ChangePercent: 0.5,
		Trend: models.TrendBullish, VolatilityRegime: models.RegimeModerate, PricePosition: 60,
	}
	// Only trend and regime match: 25, below the floor.
	weak := models.HistoricalSnapshot{
		Date: day.AddDate(0, 0, 1), VIX: 25, ChangePercent: -2,
		Trend: models.TrendBullish, VolatilityRegime: models.RegimeModerate, PricePosition: 10,
	}
	h.Append(ctx, match)
	h.Append(ctx, weak)

	current := &models.MarketConditions{
		VIX:              15,
		Trend:            models.TrendBullish,
		VolatilityRegime: models.RegimeModerate,
		Indicators:       models.TechnicalIndicators{Momentum: 0.4, PricePosition: 55},
	}
	sims := h.FindSimilar(current, 30)
	if len(sims) != 1 {
		t.Fatalf("want 1 similar day, got %d: %+v", len(sims), sims)
	}
	if sims[0].Similarity != 70 {
		t.Fatalf("similarity %d want 70", sims[0].Similarity)
	}
}

func TestFindSimilarCapsAtTen(t *testing.T) {
	h := NewHistoryStore(nil, nil)
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		h.Append(ctx, models.HistoricalSnapshot{
			Date: start.AddDate(0, 0, i), VIX: 15, ChangePercent: 0.4,
			Trend: models.TrendBullish, VolatilityRegime: models.RegimeModerate, PricePosition: 55,
		})
	}
	current := &models.MarketConditions{
		VIX:              15,
		Trend:            models.TrendBullish,
		VolatilityRegime: models.RegimeModerate,
		Indicators:       models.TechnicalIndicators{Momentum: 0.4, PricePosition: 55},
	}
	sims := h.FindSimilar(current, 365)
	if len(sims) != 10 {
		t.Fatalf("want 10 similar days, got %d", len(sims))
	}
}

func TestFindSimilarNilInputs(t *testing.T) {
	h := NewHistoryStore(nil, nil)
	if got := h.FindSimilar(nil, 30); got != nil {
		t.Fatalf("nil conditions should return nil")
	}
	if got := h.FindSimilar(&models.MarketConditions{}, 0); got != nil {
		t.Fatalf("zero lookback should return nil")
	}
}

func TestMomentumSummaryMinimumSample(t *testing.T) {
	h := NewHistoryStore(nil, nil)
	ctx := context.Background()
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < minSummaryDays-1; i++ {
		h.Append(ctx, daySnap(start.AddDate(0, 0, i), 0.1, models.TrendSideways))
	}
	if ms := h.MomentumSummary(30); ms != nil {
		t.Fatalf("fewer than %d days should return nil", minSummaryDays)
	}
}

func TestMomentumSummaryStats(t *testing.T) {
	h := NewHistoryStore(nil, nil)
	ctx := context.Background()
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	changes := []float64{1, -1, 1, -1, 1}
	for i, chg := range changes {
		s := daySnap(start.AddDate(0, 0, i), chg, models.TrendBullish)
		s.VIX = 14 + float64(i) // rising across the window
		if i == 4 {
			s.Trend = models.TrendBearish
		}
		h.Append(ctx, s)
	}
	h.RecordOutcome(ctx, start, 500)
	h.RecordOutcome(ctx, start.AddDate(0, 0, 1), -250)

	ms := h.MomentumSummary(30)
	if ms == nil {
		t.Fatalf("expected summary")
	}
	if ms.SampleDays != 5 {
		t.Fatalf("sample days %d want 5", ms.SampleDays)
	}
	if math.Abs(ms.AvgChangePercent-0.2) > 1e-9 {
		t.Fatalf("avg change %v want 0.2", ms.AvgChangePercent)
	}
	// Population variance of {1,-1,1,-1,1} around 0.2 is 0.96.
	if math.Abs(ms.StdDevChange-math.Sqrt(0.96)) > 1e-9 {
		t.Fatalf("stddev %v want %v", ms.StdDevChange, math.Sqrt(0.96))
	}
	if ms.DominantTrend != models.TrendBullish {
		t.Fatalf("dominant trend %q want bullish", ms.DominantTrend)
	}
	if ms.TrendDistribution[models.TrendBullish] != 4 || ms.TrendDistribution[models.TrendBearish] != 1 {
		t.Fatalf("unexpected distribution %+v", ms.TrendDistribution)
	}
	if !ms.VIXRising {
		t.Fatalf("vix should be rising across the window")
	}
	if ms.OutcomeSamples != 2 {
		t.Fatalf("outcome samples %d want 2", ms.OutcomeSamples)
	}
	if ms.SuccessRate != 0.5 {
		t.Fatalf("success rate %v want 0.5", ms.SuccessRate)
	}
	if ms.AvgOutcome != 125 {
		t.Fatalf("avg outcome %v want 125", ms.AvgOutcome)
	}
}
