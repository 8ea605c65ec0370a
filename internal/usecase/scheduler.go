package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"MarketMind/internal/domain/models"
	domrepo "MarketMind/internal/domain/repository"
	domsvc "MarketMind/internal/domain/service"
	"MarketMind/pkg/logger"
)

// Assessment intervals in minutes. The scheduler only ever picks one of
// these three.
const (
	intervalFast   = 5
	intervalMedium = 10
	intervalNormal = 15
)

// Local-time windows (minutes of day) that force the medium cadence.
const (
	openWindowStart  = 9*60 + 15  // 09:15
	openWindowEnd    = 10 * 60    // 10:00
	closeWindowStart = 14*60 + 30 // 14:30
	closeWindowEnd   = 15*60 + 30 // 15:30
)

// closedPollFallback is used when the next session open cannot be computed.
const closedPollFallback = time.Hour

// Assessor runs one assessment cycle on behalf of the scheduler.
type Assessor interface {
	Analyze(ctx context.Context, refresh bool) (*models.MarketIntelligenceResult, error)
}

// Scheduler is the self-rescheduling assessment loop. It owns the only
// SchedulerState instance and re-arms a single timer after every cycle, so
// cycles never overlap. Stopping cancels the pending timer only; an
// in-flight cycle finishes undisturbed.
type Scheduler struct {
	assess    Assessor
	evaluator domsvc.SessionEvaluator
	metrics   domrepo.Metrics
	log       *logger.Logger
	loc       *time.Location

	mu      sync.RWMutex
	state   models.SchedulerState
	running bool
	stopCh  chan struct{}
}

func NewScheduler(engine *IntelligenceEngine, evaluator domsvc.SessionEvaluator, metrics domrepo.Metrics, log *logger.Logger, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	s := &Scheduler{
		assess:    engine,
		evaluator: evaluator,
		metrics:   metrics,
		log:       log,
		loc:       loc,
		state:     models.SchedulerState{IntervalMinutes: intervalNormal, Reason: "normal conditions"},
		stopCh:    make(chan struct{}),
	}
	engine.AttachScheduler(s)
	return s
}

// DetermineInterval picks the next assessment cadence from live conditions.
// Rules are priority ordered; the first match wins. A nil conditions value
// skips the volatility and trend rules.
func (s *Scheduler) DetermineInterval(now time.Time, cond *models.MarketConditions) (int, string) {
	minute := now.In(s.loc).Hour()*60 + now.In(s.loc).Minute()

	switch {
	case minute >= openWindowStart && minute <= openWindowEnd:
		return intervalMedium, "opening window"
	case minute >= closeWindowStart && minute <= closeWindowEnd:
		return intervalMedium, "closing window"
	}

	if s.ActivePositions() > 0 {
		return intervalMedium, "active positions"
	}

	if cond != nil {
		if cond.VIX >= 20 || math.Abs(cond.VIXChange) > 2 {
			return intervalFast, "high volatility"
		}
		if cond.TrendStrength == "strong" && cond.Indicators.MomentumStrength > 1.0 {
			return intervalMedium, "strong trend"
		}
	}

	return intervalNormal, "normal conditions"
}

// Start launches the loop. The first fire happens almost immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.loop(ctx)
}

// Stop cancels the pending fire. It never interrupts a running cycle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()
	close(s.stopCh)
}

// Status returns a copy of the scheduler state.
func (s *Scheduler) Status() models.SchedulerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetActivePositions records the caller-reported open position count used by
// the cadence decision.
func (s *Scheduler) SetActivePositions(n int) {
	s.mu.Lock()
	s.state.ActivePositions = n
	s.mu.Unlock()
}

// ActivePositions returns the last reported open position count.
func (s *Scheduler) ActivePositions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ActivePositions
}

func (s *Scheduler) loop(ctx context.Context) {
	timer := time.NewTimer(time.Second)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-timer.C:
		}

		delay := s.runOnce(ctx)

		s.mu.Lock()
		s.state.NextRun = time.Now().Add(delay)
		s.mu.Unlock()
		timer.Reset(delay)
	}
}

// runOnce executes one cycle and returns the delay until the next fire. The
// loop never dies: a failed cycle falls back to the normal interval with no
// market conditions.
func (s *Scheduler) runOnce(ctx context.Context) time.Duration {
	now := time.Now()

	if skip, st := s.evaluator.ShouldSkip(now); skip {
		s.mu.Lock()
		s.state.MarketOpen = false
		s.mu.Unlock()
		if st.NextOpen != nil {
			d := time.Until(*st.NextOpen)
			if d > 0 {
				s.log.Info("market closed, sleeping until open",
					logger.String("reason", st.Reason),
					logger.Duration("sleep", d))
				return d
			}
		}
		return closedPollFallback
	}

	res, err := s.safeAssess(ctx)

	var cond *models.MarketConditions
	var minutes int
	var reason string
	if err != nil {
		s.metrics.RecordCycle("error")
		s.log.Error("assessment cycle failed, falling back to normal interval", logger.Error(err))
		minutes, reason = intervalNormal, "error fallback"
	} else {
		if res != nil {
			cond = res.Conditions
		}
		minutes, reason = s.DetermineInterval(time.Now(), cond)
	}

	s.transition(minutes, reason, now)
	return time.Duration(minutes) * time.Minute
}

// safeAssess converts a panicking cycle into an error so the loop survives.
func (s *Scheduler) safeAssess(ctx context.Context) (res *models.MarketIntelligenceResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("assessment panic: %v", r)
		}
	}()
	return s.assess.Analyze(ctx, false)
}

func (s *Scheduler) transition(minutes int, reason string, firedAt time.Time) {
	s.mu.Lock()
	old := s.state.IntervalMinutes
	s.state.IntervalMinutes = minutes
	s.state.Reason = reason
	s.state.LastAssessment = firedAt
	s.state.MarketOpen = true
	s.mu.Unlock()

	s.metrics.RecordInterval(minutes)
	if old != minutes {
		s.log.Info("assessment interval changed",
			logger.Int("from_minutes", old),
			logger.Int("to_minutes", minutes),
			logger.String("reason", reason))
	}
}
