package usecase

import (
	"context"
	"sync"
	"time"

	"MarketMind/internal/domain/models"
	domrepo "MarketMind/internal/domain/repository"
)

// Defaults applied when an external source fails. Missing sources omit their
// contribution rather than failing the cycle.
const (
	DefaultVIX  = 15.0
	DefaultSpot = 22000.0
)

// AggregateInputs carries the best-effort auxiliary signals for one cycle.
// Errors maps source name to failure message; absent keys mean success.
type AggregateInputs struct {
	GlobalCues []models.GlobalCue
	Headlines  []models.Headline
	NewsEvents []models.MarketEvent
	Errors     map[string]string
}

// MarketAggregator fans out fetches to independent external sources and
// joins them with all-settled semantics: every source gets to finish, and a
// failure only drops that source's contribution.
type MarketAggregator struct {
	quotes         domrepo.QuoteSource
	news           domrepo.NewsSource
	metrics        domrepo.Metrics
	foreignSymbols []string
	timeout        time.Duration
}

func NewMarketAggregator(quotes domrepo.QuoteSource, news domrepo.NewsSource, metrics domrepo.Metrics, foreignSymbols []string) *MarketAggregator {
	return &MarketAggregator{
		quotes:         quotes,
		news:           news,
		metrics:        metrics,
		foreignSymbols: foreignSymbols,
		timeout:        10 * time.Second,
	}
}

// Collect gathers foreign-market cues and news headlines concurrently.
func (a *MarketAggregator) Collect(ctx context.Context) *AggregateInputs {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	res := &AggregateInputs{Errors: map[string]string{}}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := a.foreignSnapshot(ctx)
		ch <- item{"global_cues", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		var v []models.Headline
		var err error
		if a.news != nil {
			v, err = a.news.Headlines(ctx)
		}
		ch <- item{"news", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			a.metrics.RecordSourceError(it.name)
			continue
		}
		switch it.name {
		case "global_cues":
			res.GlobalCues = it.val.([]models.GlobalCue)
		case "news":
			res.Headlines = it.val.([]models.Headline)
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res
}

// foreignSnapshot reads each tracked foreign index independently; one
// symbol's failure does not block the others.
func (a *MarketAggregator) foreignSnapshot(ctx context.Context) ([]models.GlobalCue, error) {
	cues := make([]models.GlobalCue, 0, len(a.foreignSymbols))
	for _, sym := range a.foreignSymbols {
		snap, err := a.quotes.GetSnapshot(ctx, sym)
		if err != nil {
			a.metrics.RecordSourceError("foreign_" + sym)
			continue
		}
		cues = append(cues, models.GlobalCue{
			Symbol:        snap.Symbol,
			Price:         snap.LastPrice,
			Change:        snap.Change,
			ChangePercent: snap.ChangePercent,
		})
	}
	return cues, nil
}
