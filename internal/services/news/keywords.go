package news

import (
	"strings"
	"time"

	"MarketMind/internal/domain/models"
)

// Category keyword table for event extraction. A headline is tagged with a
// category when its lowercased title contains any keyword of that category.
var eventKeywords = []struct {
	category string
	name     string
	impact   string
	keywords []string
}{
	{"budget", "Budget News", "high", []string{"budget", "fiscal deficit", "finance bill"}},
	{"rbi_policy", "RBI Policy News", "high", []string{"rbi", "repo rate", "monetary policy", "mpc"}},
	{"elections", "Election News", "medium", []string{"election", "exit poll", "lok sabha"}},
	{"gdp", "GDP Data", "medium", []string{"gdp", "growth rate", "economic growth"}},
	{"inflation", "Inflation Data", "medium", []string{"inflation", "cpi", "wpi", "price index"}},
	{"fii_dii", "Foreign Flows", "medium", []string{"fii", "dii", "foreign investor", "fpi"}},
	{"earnings", "Earnings", "low", []string{"earnings", "quarterly results", "q1 results", "q2 results", "q3 results", "q4 results"}},
}

// ExtractEvents tags headlines against the keyword table. Each headline can
// produce at most one event per category.
func ExtractEvents(headlines []models.Headline, now time.Time) []models.MarketEvent {
	var events []models.MarketEvent
	for _, cat := range eventKeywords {
		for _, h := range headlines {
			title := strings.ToLower(h.Title)
			if !containsAny(title, cat.keywords) {
				continue
			}
			events = append(events, models.MarketEvent{
				Type:        cat.category,
				Name:        cat.name,
				Date:        now,
				DaysUntil:   0,
				Impact:      cat.impact,
				Description: h.Title,
			})
			break
		}
	}
	return events
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
