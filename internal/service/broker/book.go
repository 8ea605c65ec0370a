package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"MarketMind/internal/domain/models"
	drepo "MarketMind/internal/domain/repository"
)

// LatestBook keeps the most recent snapshot per symbol from the live
// stream and serves them through the QuoteSource interface. Snapshots
// older than maxAge are refused so the engine falls back to defaults
// rather than assessing on a dead feed.
type LatestBook struct {
	mu     sync.RWMutex
	quotes map[string]*models.MarketSnapshot
	stream drepo.QuoteStream
	maxAge time.Duration
	now    func() time.Time
}

// NewLatestBook creates a book over the given stream. maxAge <= 0 disables
// the staleness guard.
func NewLatestBook(stream drepo.QuoteStream, maxAge time.Duration) *LatestBook {
	return &LatestBook{
		quotes: make(map[string]*models.MarketSnapshot),
		stream: stream,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Update stores the latest snapshot for its symbol.
func (b *LatestBook) Update(s *models.MarketSnapshot) {
	if s == nil || s.Symbol == "" {
		return
	}
	b.mu.Lock()
	b.quotes[s.Symbol] = s
	b.mu.Unlock()
}

// Accept satisfies the pipeline sink interface.
func (b *LatestBook) Accept(ctx context.Context, s *models.MarketSnapshot) error {
	b.Update(s)
	return nil
}

// GetSnapshot returns the latest snapshot for a symbol.
func (b *LatestBook) GetSnapshot(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	b.mu.RLock()
	s, ok := b.quotes[symbol]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no quote for %s", symbol)
	}
	if b.maxAge > 0 && b.now().Sub(s.FetchedAt) > b.maxAge {
		return nil, fmt.Errorf("%s: %w", symbol, drepo.ErrStaleQuote)
	}
	cp := *s
	return &cp, nil
}

// GetSnapshots returns whatever fresh snapshots exist for the requested
// symbols. Missing or stale symbols are simply absent from the result.
func (b *LatestBook) GetSnapshots(ctx context.Context, symbols []string) (map[string]*models.MarketSnapshot, error) {
	out := make(map[string]*models.MarketSnapshot, len(symbols))
	for _, sym := range symbols {
		s, err := b.GetSnapshot(ctx, sym)
		if err != nil {
			continue
		}
		out[sym] = s
	}
	return out, nil
}

// IsConnected reports the underlying stream state.
func (b *LatestBook) IsConnected() bool {
	return b.stream != nil && b.stream.IsConnected()
}
