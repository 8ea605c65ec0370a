package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"MarketMind/internal/domain/models"
)

type fakeNews struct {
	headlines []models.Headline
	err       error
}

func (f *fakeNews) Headlines(context.Context) ([]models.Headline, error) {
	return f.headlines, f.err
}

func TestCollectGathersAllSources(t *testing.T) {
	now := time.Now()
	quotes := &fakeQuotes{snaps: map[string]*models.MarketSnapshot{
		"GIFT NIFTY": {Symbol: "GIFT NIFTY", LastPrice: 24200, ChangePercent: 0.4, FetchedAt: now},
		"S&P 500":    {Symbol: "S&P 500", LastPrice: 6100, ChangePercent: 0.8, FetchedAt: now},
	}}
	news := &fakeNews{headlines: []models.Headline{{Title: "RBI holds repo rate"}}}
	a := NewMarketAggregator(quotes, news, &fakeMetrics{}, []string{"GIFT NIFTY", "S&P 500"})

	in := a.Collect(context.Background())
	if len(in.GlobalCues) != 2 {
		t.Fatalf("want 2 cues, got %d", len(in.GlobalCues))
	}
	if len(in.Headlines) != 1 {
		t.Fatalf("want 1 headline, got %d", len(in.Headlines))
	}
	if in.Errors != nil {
		t.Fatalf("unexpected errors %v", in.Errors)
	}
}

func TestCollectNewsFailureKeepsCues(t *testing.T) {
	now := time.Now()
	quotes := &fakeQuotes{snaps: map[string]*models.MarketSnapshot{
		"S&P 500": {Symbol: "S&P 500", LastPrice: 6100, ChangePercent: 0.8, FetchedAt: now},
	}}
	news := &fakeNews{err: errors.New("feed unreachable")}
	m := &fakeMetrics{}
	a := NewMarketAggregator(quotes, news, m, []string{"S&P 500"})

	in := a.Collect(context.Background())
	if len(in.GlobalCues) != 1 {
		t.Fatalf("news failure must not drop cues, got %d", len(in.GlobalCues))
	}
	if in.Errors["news"] == "" {
		t.Fatalf("expected news error, got %v", in.Errors)
	}
	if m.sources["news"] != 1 {
		t.Fatalf("source error metric %v", m.sources)
	}
}

func TestCollectSkipsFailedForeignSymbols(t *testing.T) {
	now := time.Now()
	quotes := &fakeQuotes{snaps: map[string]*models.MarketSnapshot{
		"S&P 500": {Symbol: "S&P 500", LastPrice: 6100, ChangePercent: 0.8, FetchedAt: now},
	}}
	m := &fakeMetrics{}
	a := NewMarketAggregator(quotes, nil, m, []string{"S&P 500", "NIKKEI 225"})

	in := a.Collect(context.Background())
	if len(in.GlobalCues) != 1 {
		t.Fatalf("want 1 cue, got %d", len(in.GlobalCues))
	}
	if m.sources["foreign_NIKKEI 225"] != 1 {
		t.Fatalf("source error metric %v", m.sources)
	}
}

func TestCollectWithoutNewsSource(t *testing.T) {
	a := NewMarketAggregator(&fakeQuotes{}, nil, &fakeMetrics{}, nil)
	in := a.Collect(context.Background())
	if len(in.Headlines) != 0 || len(in.GlobalCues) != 0 {
		t.Fatalf("unexpected inputs %+v", in)
	}
	if in.Errors != nil {
		t.Fatalf("unexpected errors %v", in.Errors)
	}
}
