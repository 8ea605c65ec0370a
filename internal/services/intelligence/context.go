package intelligence

import (
	"fmt"
	"time"

	"MarketMind/internal/domain/models"
)

// Session window in exchange local time (NSE): 09:15 to 15:30, Mon-Fri.
const (
	sessionOpenMinute  = 9*60 + 15
	sessionCloseMinute = 15*60 + 30
)

// RBI policy meetings are placeholders on a fixed even-month calendar; the
// day-of-month is an approximation, not sourced from an official schedule.
var policyMonths = map[time.Month]bool{
	time.February: true, time.April: true, time.June: true,
	time.August: true, time.October: true, time.December: true,
}

const policyDayOfMonth = 7

// ContextEvaluator determines session state, detects calendar events and
// interprets the volatility index.
type ContextEvaluator struct {
	loc *time.Location
}

// NewContextEvaluator creates an evaluator pinned to the given exchange
// timezone. Pass nil to default to Asia/Kolkata.
func NewContextEvaluator(loc *time.Location) *ContextEvaluator {
	if loc == nil {
		var err error
		loc, err = time.LoadLocation("Asia/Kolkata")
		if err != nil {
			loc = time.FixedZone("IST", 5*3600+1800)
		}
	}
	return &ContextEvaluator{loc: loc}
}

// SessionState reports whether the session is open at the given instant and,
// when closed, when it opens next. Weekends are skipped by rolling forward
// one day at a time.
func (e *ContextEvaluator) SessionState(now time.Time) models.SessionState {
	now = now.In(e.loc)
	minute := now.Hour()*60 + now.Minute()
	wd := now.Weekday()
	weekday := wd != time.Saturday && wd != time.Sunday

	if weekday && minute >= sessionOpenMinute && minute <= sessionCloseMinute {
		return models.SessionState{Open: true, Reason: "market open"}
	}

	reason := "outside market hours"
	if !weekday {
		reason = "weekend"
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), 9, 15, 0, 0, e.loc)
	if !weekday || minute > sessionCloseMinute || !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}

	return models.SessionState{
		Open:          false,
		Reason:        reason,
		NextOpen:      &next,
		MinutesToOpen: int(next.Sub(now).Minutes()),
	}
}

// ShouldSkip reports whether the assessment cycle should be skipped because
// the session is closed.
func (e *ContextEvaluator) ShouldSkip(now time.Time) (bool, models.SessionState) {
	st := e.SessionState(now)
	return !st.Open, st
}

// DetectEvents evaluates every calendar rule independently and returns all
// matching events for the given date.
func (e *ContextEvaluator) DetectEvents(date time.Time) []models.MarketEvent {
	date = date.In(e.loc)
	today := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, e.loc)
	var events []models.MarketEvent

	// Union budget: February 1, looked at up to 30 days ahead.
	budget := time.Date(today.Year(), time.February, 1, 0, 0, 0, 0, e.loc)
	if budget.Before(today) {
		budget = budget.AddDate(1, 0, 0)
	}
	if d := daysBetween(today, budget); d >= 0 && d <= 30 {
		impact := "low"
		switch {
		case d <= 7:
			impact = "high"
		case d <= 14:
			impact = "medium"
		}
		events = append(events, models.MarketEvent{
			Type:        "budget",
			Name:        "Union Budget",
			Date:        budget,
			DaysUntil:   d,
			Impact:      impact,
			Description: "Annual budget announcement, expect elevated volatility",
		})
	}

	// Monthly expiry: last Thursday of the current month.
	monthly := lastThursday(today.Year(), today.Month(), e.loc)
	if d := daysBetween(today, monthly); d >= 0 && d <= 7 {
		impact := "medium"
		if d <= 2 {
			impact = "high"
		}
		events = append(events, models.MarketEvent{
			Type:        "monthly_expiry",
			Name:        "Monthly F&O Expiry",
			Date:        monthly,
			DaysUntil:   d,
			Impact:      impact,
			Description: "Monthly derivatives expiry, theta decay accelerates",
		})
	}

	// Weekly expiry: next Thursday, where a Thursday today counts as 7 days out.
	weekly := nextThursday(today)
	if d := daysBetween(today, weekly); d >= 0 && d <= 2 {
		impact := "medium"
		if d == 0 {
			impact = "high"
		}
		events = append(events, models.MarketEvent{
			Type:        "weekly_expiry",
			Name:        "Weekly Expiry",
			Date:        weekly,
			DaysUntil:   d,
			Impact:      impact,
			Description: "Weekly index options expiry",
		})
	}

	// RBI policy placeholder: fires whenever the current month is a meeting month.
	if policyMonths[today.Month()] {
		policy := time.Date(today.Year(), today.Month(), policyDayOfMonth, 0, 0, 0, 0, e.loc)
		events = append(events, models.MarketEvent{
			Type:        "rbi_policy",
			Name:        "RBI Policy Meeting",
			Date:        policy,
			DaysUntil:   daysBetween(today, policy),
			Impact:      "high",
			Description: "Monetary policy announcement window (approximate date)",
		})
	}

	return events
}

// InterpretVIX produces the qualitative reading of the volatility index for
// the given level and short-term change, modulated by upcoming high-impact
// events.
func (e *ContextEvaluator) InterpretVIX(level, change float64, events []models.MarketEvent) models.VIXView {
	v := models.VIXView{Level: level, Change: change, Trend: "flat"}
	if change > 0.5 {
		v.Trend = "rising"
	} else if change < -0.5 {
		v.Trend = "falling"
	}

	eventSoon := false
	eventName := ""
	for _, ev := range events {
		if ev.Impact == "high" && ev.DaysUntil >= 0 && ev.DaysUntil <= 7 {
			eventSoon = true
			eventName = ev.Name
			break
		}
	}

	switch {
	case level >= 20:
		v.Meaning = "High fear, rich option premiums"
		v.Context = "Market pricing large swings; sellers are compensated for risk"
		v.Recommendation = "Favor premium collection with defined risk"
		if v.Trend == "rising" {
			v.Context = "Fear still building; expect wider intraday ranges"
		}
	case level < 15:
		v.Meaning = "Complacency, cheap option premiums"
		v.Context = "Low expected movement; premium selling pays little"
		v.Recommendation = "Favor directional debit strategies"
		if v.Trend == "rising" {
			v.Caution = true
			v.Context = "Volatility waking up from low base; watch for regime shift"
		}
	default:
		v.Meaning = "Moderate volatility"
		v.Context = "Balanced premium environment"
		v.Recommendation = "Neutral spreads or small directional bets"
	}

	if eventSoon {
		v.Caution = true
		v.Recommendation = fmt.Sprintf("%s within 7 days: reduce size, expect volatility expansion", eventName)
	}

	return v
}

// lastThursday walks backward from month end to the first Thursday.
func lastThursday(year int, month time.Month, loc *time.Location) time.Time {
	d := time.Date(year, month+1, 0, 0, 0, 0, 0, loc) // last day of month
	for d.Weekday() != time.Thursday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// nextThursday walks forward at least one day, so a Thursday rolls to the
// following week.
func nextThursday(today time.Time) time.Time {
	d := today.AddDate(0, 0, 1)
	for d.Weekday() != time.Thursday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
