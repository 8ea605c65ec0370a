package usecase

import (
	"context"
	"testing"
	"time"

	"MarketMind/internal/domain/models"
)

var istTZ = time.FixedZone("IST", int(5.5*3600))

func newTestScheduler() *Scheduler {
	return &Scheduler{
		loc:   istTZ,
		state: models.SchedulerState{IntervalMinutes: intervalNormal, Reason: "normal conditions"},
	}
}

func midday(hour, min int) time.Time {
	return time.Date(2026, 1, 7, hour, min, 0, 0, istTZ)
}

func TestDetermineIntervalOpeningWindow(t *testing.T) {
	s := newTestScheduler()
	minutes, reason := s.DetermineInterval(midday(9, 30), nil)
	if minutes != intervalMedium || reason != "opening window" {
		t.Fatalf("got %d/%q", minutes, reason)
	}
	// Window edges included.
	if m, _ := s.DetermineInterval(midday(9, 15), nil); m != intervalMedium {
		t.Fatalf("09:15 should be medium, got %d", m)
	}
	if m, _ := s.DetermineInterval(midday(10, 0), nil); m != intervalMedium {
		t.Fatalf("10:00 should be medium, got %d", m)
	}
	if m, _ := s.DetermineInterval(midday(10, 1), nil); m != intervalNormal {
		t.Fatalf("10:01 should be normal, got %d", m)
	}
}

func TestDetermineIntervalClosingWindow(t *testing.T) {
	s := newTestScheduler()
	minutes, reason := s.DetermineInterval(midday(15, 0), nil)
	if minutes != intervalMedium || reason != "closing window" {
		t.Fatalf("got %d/%q", minutes, reason)
	}
}

func TestDetermineIntervalActivePositions(t *testing.T) {
	s := newTestScheduler()
	s.SetActivePositions(3)
	minutes, reason := s.DetermineInterval(midday(11, 30), nil)
	if minutes != intervalMedium || reason != "active positions" {
		t.Fatalf("got %d/%q", minutes, reason)
	}
	if s.ActivePositions() != 3 {
		t.Fatalf("active positions %d want 3", s.ActivePositions())
	}
}

func TestDetermineIntervalHighVolatility(t *testing.T) {
	s := newTestScheduler()
	cond := &models.MarketConditions{VIX: 22}
	minutes, reason := s.DetermineInterval(midday(11, 30), cond)
	if minutes != intervalFast || reason != "high volatility" {
		t.Fatalf("got %d/%q", minutes, reason)
	}

	// A sharp vix move triggers the fast cadence even at a calm level.
	cond = &models.MarketConditions{VIX: 16, VIXChange: -2.5}
	if m, _ := s.DetermineInterval(midday(11, 30), cond); m != intervalFast {
		t.Fatalf("vix spike should be fast, got %d", m)
	}
}

func TestDetermineIntervalStrongTrend(t *testing.T) {
	s := newTestScheduler()
	cond := &models.MarketConditions{
		VIX:           16,
		TrendStrength: "strong",
		Indicators:    models.TechnicalIndicators{MomentumStrength: 1.3},
	}
	minutes, reason := s.DetermineInterval(midday(11, 30), cond)
	if minutes != intervalMedium || reason != "strong trend" {
		t.Fatalf("got %d/%q", minutes, reason)
	}

	// Strong label without momentum does not qualify.
	cond.Indicators.MomentumStrength = 0.5
	if m, _ := s.DetermineInterval(midday(11, 30), cond); m != intervalNormal {
		t.Fatalf("weak momentum should be normal, got %d", m)
	}
}

func TestDetermineIntervalDefaults(t *testing.T) {
	s := newTestScheduler()
	minutes, reason := s.DetermineInterval(midday(11, 30), nil)
	if minutes != intervalNormal || reason != "normal conditions" {
		t.Fatalf("got %d/%q", minutes, reason)
	}
	cond := &models.MarketConditions{VIX: 16}
	if m, _ := s.DetermineInterval(midday(13, 0), cond); m != intervalNormal {
		t.Fatalf("calm conditions should be normal, got %d", m)
	}
}

func TestDetermineIntervalWindowBeatsVolatility(t *testing.T) {
	s := newTestScheduler()
	// Window rules rank above the volatility rule.
	cond := &models.MarketConditions{VIX: 25}
	minutes, reason := s.DetermineInterval(midday(9, 45), cond)
	if minutes != intervalMedium || reason != "opening window" {
		t.Fatalf("got %d/%q", minutes, reason)
	}
}

type panicAssessor struct {
	calls int
}

func (p *panicAssessor) Analyze(context.Context, bool) (*models.MarketIntelligenceResult, error) {
	p.calls++
	panic("assessment blew up")
}

func newLoopScheduler(t *testing.T, assess Assessor, eval *fakeEvaluator, m *fakeMetrics) *Scheduler {
	t.Helper()
	return &Scheduler{
		assess:    assess,
		evaluator: eval,
		metrics:   m,
		log:       testLogger(t),
		loc:       istTZ,
		state:     models.SchedulerState{IntervalMinutes: intervalFast, Reason: "high volatility"},
		stopCh:    make(chan struct{}),
	}
}

func TestRunOnceErrorFallback(t *testing.T) {
	m := &fakeMetrics{}
	a := &panicAssessor{}
	s := newLoopScheduler(t, a, &fakeEvaluator{open: true}, m)

	delay := s.runOnce(context.Background())
	if delay != 15*time.Minute {
		t.Fatalf("delay %v want 15m", delay)
	}
	if a.calls != 1 {
		t.Fatalf("assessment calls %d want 1", a.calls)
	}
	st := s.Status()
	if st.IntervalMinutes != intervalNormal || st.Reason != "error fallback" {
		t.Fatalf("state %d/%q want %d/error fallback", st.IntervalMinutes, st.Reason, intervalNormal)
	}
	if st.LastAssessment.IsZero() {
		t.Fatalf("failed cycle must still stamp the last assessment time")
	}
	if m.cycles["error"] != 1 {
		t.Fatalf("cycle metrics %v want one error", m.cycles)
	}
}

func TestRunOnceClosedMarketSleepsToOpen(t *testing.T) {
	next := time.Now().Add(42 * time.Minute)
	a := &panicAssessor{}
	s := newLoopScheduler(t, a, &fakeEvaluator{open: false, nextOpen: &next}, &fakeMetrics{})

	delay := s.runOnce(context.Background())
	if delay < 41*time.Minute || delay > 42*time.Minute {
		t.Fatalf("delay %v want about 42m", delay)
	}
	if a.calls != 0 {
		t.Fatalf("closed market must not run an assessment")
	}
	if s.Status().MarketOpen {
		t.Fatalf("closed market must clear the open flag")
	}
}

func TestSchedulerLoopSurvivesPanicAndReschedules(t *testing.T) {
	m := &fakeMetrics{}
	s := newLoopScheduler(t, &panicAssessor{}, &fakeEvaluator{open: true}, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	// The loop fires once shortly after start, survives the panic, and
	// re-arms the timer at the fallback interval.
	deadline := time.Now().Add(3 * time.Second)
	for s.Status().NextRun.IsZero() {
		if time.Now().After(deadline) {
			t.Fatalf("loop never completed a cycle")
		}
		time.Sleep(10 * time.Millisecond)
	}

	st := s.Status()
	if st.Reason != "error fallback" {
		t.Fatalf("reason %q want error fallback", st.Reason)
	}
	until := time.Until(st.NextRun)
	if until < 14*time.Minute || until > 15*time.Minute+time.Second {
		t.Fatalf("next run %v away, want about 15m", until)
	}
	if m.cycles["error"] == 0 {
		t.Fatalf("expected an error cycle, got %v", m.cycles)
	}

	// Stopping twice is safe; the second call hits the running guard.
	s.Stop()
	s.Stop()
}
