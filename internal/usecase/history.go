package usecase

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"MarketMind/internal/domain/models"
	domrepo "MarketMind/internal/domain/repository"
	"MarketMind/pkg/logger"
)

// maxWindowDays bounds the rolling history window. Insertion past the cap
// evicts the oldest entry.
const maxWindowDays = 365

// minSummaryDays is the smallest sample the momentum summary will work with.
const minSummaryDays = 5

// HistoryStore keeps the bounded rolling window of daily snapshots and
// mirrors appends to the durable sink when one is configured. The window is
// authoritative for similarity search and momentum analytics; the sink only
// provides warm-up after restart.
type HistoryStore struct {
	mu     sync.RWMutex
	window []models.HistoricalSnapshot
	sink   domrepo.SnapshotStore
	log    *logger.Logger
}

func NewHistoryStore(sink domrepo.SnapshotStore, log *logger.Logger) *HistoryStore {
	return &HistoryStore{sink: sink, log: log}
}

// Warmup loads the most recent days from the sink into the window.
func (h *HistoryStore) Warmup(ctx context.Context) error {
	if h.sink == nil {
		return nil
	}
	snaps, err := h.sink.LoadRecent(ctx, maxWindowDays)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.window = snaps
	if len(h.window) > maxWindowDays {
		h.window = h.window[len(h.window)-maxWindowDays:]
	}
	h.mu.Unlock()
	return nil
}

// Append pushes a snapshot onto the window, evicting the oldest entry once
// the cap is exceeded. The durable write is best effort.
func (h *HistoryStore) Append(ctx context.Context, s models.HistoricalSnapshot) {
	h.mu.Lock()
	h.window = append(h.window, s)
	if len(h.window) > maxWindowDays {
		h.window = h.window[1:]
	}
	h.mu.Unlock()

	if h.sink != nil {
		if err := h.sink.Store(ctx, &s); err != nil && h.log != nil {
			h.log.Warn("history sink store failed", logger.Error(err))
		}
	}
}

// AppendDaily keeps one entry per calendar day: the latest assessment of a
// day replaces that day's entry, preserving any recorded outcome.
func (h *HistoryStore) AppendDaily(ctx context.Context, s models.HistoricalSnapshot) {
	y, m, d := s.Date.Date()
	h.mu.Lock()
	if n := len(h.window); n > 0 {
		wy, wm, wd := h.window[n-1].Date.Date()
		if wy == y && wm == m && wd == d {
			s.Outcome = h.window[n-1].Outcome
			h.window[n-1] = s
			h.mu.Unlock()
			if h.sink != nil {
				if err := h.sink.Store(ctx, &s); err != nil && h.log != nil {
					h.log.Warn("history sink store failed", logger.Error(err))
				}
			}
			return
		}
	}
	h.mu.Unlock()
	h.Append(ctx, s)
}

// RecordOutcome sets the realized P&L for the snapshot of the given date.
func (h *HistoryStore) RecordOutcome(ctx context.Context, date time.Time, pnl float64) {
	y, m, d := date.Date()
	h.mu.Lock()
	for i := range h.window {
		wy, wm, wd := h.window[i].Date.Date()
		if wy == y && wm == m && wd == d {
			v := pnl
			h.window[i].Outcome = &v
			break
		}
	}
	h.mu.Unlock()

	if h.sink != nil {
		if err := h.sink.RecordOutcome(ctx, date, pnl); err != nil && h.log != nil {
			h.log.Warn("history sink outcome failed", logger.Error(err))
		}
	}
}

// Len returns the current window length.
func (h *HistoryStore) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.window)
}

// Similarity point values per matching dimension.
const (
	ptsVIXClose      = 20 // VIX level within 2 points
	ptsSameTrend     = 15
	ptsSameRegime    = 10
	ptsChangeClose   = 15 // percent change within 0.3
	ptsPositionClose = 10 // price position within 10
	minSimilarity    = 30
	maxSimilarDays   = 10
)

// FindSimilar scores the last lookbackDays stored days against the current
// conditions and returns at most ten entries scoring at least 30, best first.
func (h *HistoryStore) FindSimilar(current *models.MarketConditions, lookbackDays int) []models.SimilarDay {
	if current == nil || lookbackDays <= 0 {
		return nil
	}
	h.mu.RLock()
	start := len(h.window) - lookbackDays
	if start < 0 {
		start = 0
	}
	candidates := make([]models.HistoricalSnapshot, len(h.window[start:]))
	copy(candidates, h.window[start:])
	h.mu.RUnlock()

	var out []models.SimilarDay
	for _, c := range candidates {
		score := 0
		if math.Abs(c.VIX-current.VIX) <= 2 {
			score += ptsVIXClose
		}
		if c.Trend == current.Trend {
			score += ptsSameTrend
		}
		if c.VolatilityRegime == current.VolatilityRegime {
			score += ptsSameRegime
		}
		if math.Abs(c.ChangePercent-current.Indicators.Momentum) <= 0.3 {
			score += ptsChangeClose
		}
		if math.Abs(c.PricePosition-current.Indicators.PricePosition) <= 10 {
			score += ptsPositionClose
		}
		if score >= minSimilarity {
			out = append(out, models.SimilarDay{Snapshot: c, Similarity: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > maxSimilarDays {
		out = out[:maxSimilarDays]
	}
	return out
}

// MomentumSummary computes rolling-window analytics over the last
// lookbackDays entries. Returns nil when fewer than five entries exist.
func (h *HistoryStore) MomentumSummary(lookbackDays int) *models.MomentumSummary {
	h.mu.RLock()
	start := len(h.window) - lookbackDays
	if start < 0 {
		start = 0
	}
	win := make([]models.HistoricalSnapshot, len(h.window[start:]))
	copy(win, h.window[start:])
	h.mu.RUnlock()

	if len(win) < minSummaryDays {
		return nil
	}

	sum := 0.0
	for _, s := range win {
		sum += s.ChangePercent
	}
	mean := sum / float64(len(win))

	variance := 0.0
	for _, s := range win {
		d := s.ChangePercent - mean
		variance += d * d
	}
	variance /= float64(len(win)) // population variance

	dist := map[string]int{}
	dominant := ""
	best := 0
	for _, s := range win {
		dist[s.Trend]++
		if dist[s.Trend] > best {
			best = dist[s.Trend]
			dominant = s.Trend
		}
	}

	wins, samples := 0, 0
	outcomeSum := 0.0
	for _, s := range win {
		if s.Outcome == nil {
			continue
		}
		samples++
		outcomeSum += *s.Outcome
		if *s.Outcome > 0 {
			wins++
		}
	}

	ms := &models.MomentumSummary{
		SampleDays:        len(win),
		AvgChangePercent:  mean,
		StdDevChange:      math.Sqrt(variance),
		TrendDistribution: dist,
		DominantTrend:     dominant,
		VIXRising:         win[len(win)-1].VIX > win[0].VIX,
		OutcomeSamples:    samples,
	}
	if samples > 0 {
		ms.SuccessRate = float64(wins) / float64(samples)
		ms.AvgOutcome = outcomeSum / float64(samples)
	}
	return ms
}
