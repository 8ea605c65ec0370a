package intelligence

import (
	"testing"
	"time"

	"MarketMind/internal/domain/models"
)

var ist = time.FixedZone("IST", int(5.5*3600))

func TestSessionStateOpen(t *testing.T) {
	e := NewContextEvaluator(ist)
	// Wednesday 11:00 IST
	now := time.Date(2026, 1, 7, 11, 0, 0, 0, ist)
	st := e.SessionState(now)
	if !st.Open {
		t.Fatalf("expected open, got %+v", st)
	}
	if st.NextOpen != nil {
		t.Fatalf("open session should not carry next open")
	}
}

func TestSessionStateOpenBoundaries(t *testing.T) {
	e := NewContextEvaluator(ist)
	open := time.Date(2026, 1, 7, 9, 15, 0, 0, ist)
	if st := e.SessionState(open); !st.Open {
		t.Fatalf("09:15 should be open")
	}
	closeT := time.Date(2026, 1, 7, 15, 30, 59, 0, ist)
	if st := e.SessionState(closeT); !st.Open {
		t.Fatalf("15:30 should still be open")
	}
	after := time.Date(2026, 1, 7, 15, 31, 0, 0, ist)
	if st := e.SessionState(after); st.Open {
		t.Fatalf("15:31 should be closed")
	}
}

func TestSessionStateBeforeOpen(t *testing.T) {
	e := NewContextEvaluator(ist)
	now := time.Date(2026, 1, 7, 8, 0, 0, 0, ist)
	st := e.SessionState(now)
	if st.Open {
		t.Fatalf("expected closed")
	}
	if st.Reason != "outside market hours" {
		t.Fatalf("unexpected reason %q", st.Reason)
	}
	want := time.Date(2026, 1, 7, 9, 15, 0, 0, ist)
	if st.NextOpen == nil || !st.NextOpen.Equal(want) {
		t.Fatalf("next open %v want %v", st.NextOpen, want)
	}
	if st.MinutesToOpen != 75 {
		t.Fatalf("minutes to open %d want 75", st.MinutesToOpen)
	}
}

func TestSessionStateAfterCloseRollsToNextDay(t *testing.T) {
	e := NewContextEvaluator(ist)
	now := time.Date(2026, 1, 7, 16, 0, 0, 0, ist)
	st := e.SessionState(now)
	if st.Open {
		t.Fatalf("expected closed")
	}
	want := time.Date(2026, 1, 8, 9, 15, 0, 0, ist)
	if st.NextOpen == nil || !st.NextOpen.Equal(want) {
		t.Fatalf("next open %v want %v", st.NextOpen, want)
	}
}

func TestSessionStateWeekend(t *testing.T) {
	e := NewContextEvaluator(ist)
	// Saturday midday
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, ist)
	st := e.SessionState(now)
	if st.Open {
		t.Fatalf("expected closed on saturday")
	}
	if st.Reason != "weekend" {
		t.Fatalf("unexpected reason %q", st.Reason)
	}
	// Must skip both weekend days and land on Monday.
	want := time.Date(2026, 1, 12, 9, 15, 0, 0, ist)
	if st.NextOpen == nil || !st.NextOpen.Equal(want) {
		t.Fatalf("next open %v want %v", st.NextOpen, want)
	}
}

func TestSessionStateFridayEveningSkipsToMonday(t *testing.T) {
	e := NewContextEvaluator(ist)
	now := time.Date(2026, 1, 9, 18, 0, 0, 0, ist)
	st := e.SessionState(now)
	want := time.Date(2026, 1, 12, 9, 15, 0, 0, ist)
	if st.NextOpen == nil || !st.NextOpen.Equal(want) {
		t.Fatalf("next open %v want %v", st.NextOpen, want)
	}
}

func TestShouldSkip(t *testing.T) {
	e := NewContextEvaluator(ist)
	skip, st := e.ShouldSkip(time.Date(2026, 1, 10, 12, 0, 0, 0, ist))
	if !skip || st.Open {
		t.Fatalf("weekend should skip")
	}
	skip, _ = e.ShouldSkip(time.Date(2026, 1, 7, 11, 0, 0, 0, ist))
	if skip {
		t.Fatalf("open session should not skip")
	}
}

func findEvent(events []models.MarketEvent, typ string) *models.MarketEvent {
	for i := range events {
		if events[i].Type == typ {
			return &events[i]
		}
	}
	return nil
}

func TestDetectEventsBudget(t *testing.T) {
	e := NewContextEvaluator(ist)
	// Jan 20: 12 days before Feb 1.
	events := e.DetectEvents(time.Date(2026, 1, 20, 10, 0, 0, 0, ist))
	ev := findEvent(events, "budget")
	if ev == nil {
		t.Fatalf("expected budget event, got %+v", events)
	}
	if ev.DaysUntil != 12 {
		t.Fatalf("days until %d want 12", ev.DaysUntil)
	}
	if ev.Impact != "medium" {
		t.Fatalf("impact %q want medium", ev.Impact)
	}

	// Jan 28: 4 days out, high impact.
	events = e.DetectEvents(time.Date(2026, 1, 28, 10, 0, 0, 0, ist))
	ev = findEvent(events, "budget")
	if ev == nil || ev.Impact != "high" {
		t.Fatalf("expected high impact budget, got %+v", ev)
	}

	// Mid-year: too far out.
	events = e.DetectEvents(time.Date(2026, 7, 15, 10, 0, 0, 0, ist))
	if findEvent(events, "budget") != nil {
		t.Fatalf("no budget event expected in july")
	}
}

func TestDetectEventsMonthlyExpiry(t *testing.T) {
	e := NewContextEvaluator(ist)
	// Last Thursday of January 2026 is the 29th.
	events := e.DetectEvents(time.Date(2026, 1, 26, 10, 0, 0, 0, ist))
	ev := findEvent(events, "monthly_expiry")
	if ev == nil {
		t.Fatalf("expected monthly expiry, got %+v", events)
	}
	if ev.DaysUntil != 3 || ev.Impact != "medium" {
		t.Fatalf("unexpected event %+v", ev)
	}

	// On expiry day itself, high impact.
	events = e.DetectEvents(time.Date(2026, 1, 29, 10, 0, 0, 0, ist))
	ev = findEvent(events, "monthly_expiry")
	if ev == nil || ev.DaysUntil != 0 || ev.Impact != "high" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestDetectEventsWeeklyExpiry(t *testing.T) {
	e := NewContextEvaluator(ist)
	// Tuesday Jan 6 2026: Thursday is 2 days away.
	events := e.DetectEvents(time.Date(2026, 1, 6, 10, 0, 0, 0, ist))
	ev := findEvent(events, "weekly_expiry")
	if ev == nil {
		t.Fatalf("expected weekly expiry, got %+v", events)
	}
	if ev.DaysUntil != 2 || ev.Impact != "medium" {
		t.Fatalf("unexpected event %+v", ev)
	}

	// Monday: 3 days out, outside the window.
	events = e.DetectEvents(time.Date(2026, 1, 5, 10, 0, 0, 0, ist))
	if findEvent(events, "weekly_expiry") != nil {
		t.Fatalf("no weekly expiry expected on monday")
	}
}

func TestDetectEventsRBIPolicy(t *testing.T) {
	e := NewContextEvaluator(ist)
	events := e.DetectEvents(time.Date(2026, 2, 3, 10, 0, 0, 0, ist))
	ev := findEvent(events, "rbi_policy")
	if ev == nil {
		t.Fatalf("expected rbi policy event in february")
	}
	if ev.DaysUntil != 4 || ev.Impact != "high" {
		t.Fatalf("unexpected event %+v", ev)
	}

	events = e.DetectEvents(time.Date(2026, 3, 3, 10, 0, 0, 0, ist))
	if findEvent(events, "rbi_policy") != nil {
		t.Fatalf("no rbi policy event expected in march")
	}
}

func TestInterpretVIXHigh(t *testing.T) {
	e := NewContextEvaluator(ist)
	v := e.InterpretVIX(22, 1.0, nil)
	if v.Trend != "rising" {
		t.Fatalf("trend %q want rising", v.Trend)
	}
	if v.Meaning != "High fear, rich option premiums" {
		t.Fatalf("unexpected meaning %q", v.Meaning)
	}
	if v.Context != "Fear still building; expect wider intraday ranges" {
		t.Fatalf("rising override missing, got %q", v.Context)
	}
	if v.Caution {
		t.Fatalf("high band alone should not set caution")
	}
}

func TestInterpretVIXLowRisingSetsCaution(t *testing.T) {
	e := NewContextEvaluator(ist)
	v := e.InterpretVIX(12, 0.7, nil)
	if !v.Caution {
		t.Fatalf("low but rising should set caution")
	}
	if v.Recommendation != "Favor directional debit strategies" {
		t.Fatalf("unexpected recommendation %q", v.Recommendation)
	}
}

func TestInterpretVIXModerate(t *testing.T) {
	e := NewContextEvaluator(ist)
	v := e.InterpretVIX(17, -0.2, nil)
	if v.Trend != "flat" {
		t.Fatalf("trend %q want flat", v.Trend)
	}
	if v.Meaning != "Moderate volatility" {
		t.Fatalf("unexpected meaning %q", v.Meaning)
	}
}

func TestInterpretVIXEventOverride(t *testing.T) {
	e := NewContextEvaluator(ist)
	events := []models.MarketEvent{
		{Type: "gdp", Name: "GDP Data", Impact: "medium", DaysUntil: 1},
		{Type: "budget", Name: "Union Budget", Impact: "high", DaysUntil: 3},
	}
	v := e.InterpretVIX(17, 0, events)
	if !v.Caution {
		t.Fatalf("high-impact event within 7 days should set caution")
	}
	want := "Union Budget within 7 days: reduce size, expect volatility expansion"
	if v.Recommendation != want {
		t.Fatalf("recommendation %q want %q", v.Recommendation, want)
	}
}

func TestLastThursday(t *testing.T) {
	got := lastThursday(2026, time.January, ist)
	want := time.Date(2026, 1, 29, 0, 0, 0, 0, ist)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestNextThursdayRollsOverOnThursday(t *testing.T) {
	thu := time.Date(2026, 1, 8, 0, 0, 0, 0, ist)
	got := nextThursday(thu)
	want := time.Date(2026, 1, 15, 0, 0, 0, 0, ist)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
