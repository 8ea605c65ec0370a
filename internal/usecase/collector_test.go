package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"MarketMind/internal/domain/models"
	"MarketMind/internal/service/broker"
)

// scriptedStream hands out one quote batch per Read call. Every batch but
// the last ends with a read error and closed channels, the way the real
// stream behaves when the connection drops.
type scriptedStream struct {
	mu         sync.Mutex
	batches    [][]*models.MarketSnapshot
	reads      int
	reconnects int
}

func (f *scriptedStream) Connect(context.Context) error   { return nil }
func (f *scriptedStream) Subscribe(context.Context) error { return nil }
func (f *scriptedStream) Close() error                    { return nil }
func (f *scriptedStream) IsConnected() bool               { return true }

func (f *scriptedStream) Reconnect(context.Context) error {
	f.mu.Lock()
	f.reconnects++
	f.mu.Unlock()
	return nil
}

func (f *scriptedStream) Read(context.Context) (<-chan *models.MarketSnapshot, <-chan error) {
	f.mu.Lock()
	i := f.reads
	f.reads++
	f.mu.Unlock()

	quotes := make(chan *models.MarketSnapshot, 8)
	errs := make(chan error, 1)
	if i < len(f.batches) {
		for _, s := range f.batches[i] {
			quotes <- s
		}
	}
	if i < len(f.batches)-1 {
		errs <- errors.New("connection reset")
		close(quotes)
		close(errs)
	}
	return quotes, errs
}

func (f *scriptedStream) counts() (reads, reconnects int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads, f.reconnects
}

func TestCollectorReattachesAfterStreamError(t *testing.T) {
	now := time.Now()
	stream := &scriptedStream{batches: [][]*models.MarketSnapshot{
		{{Symbol: "NIFTY 50", LastPrice: 24000, FetchedAt: now}},
		{{Symbol: "NIFTY 50", LastPrice: 24100, FetchedAt: now}},
	}}
	book := broker.NewLatestBook(stream, time.Minute)
	c := NewQuoteCollector(stream, book, &fakeMetrics{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	// The book must end up serving a quote from the second connection.
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap, err := book.GetSnapshot(ctx, "NIFTY 50")
		if err == nil && snap.LastPrice == 24100 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("book never saw the post-reconnect quote (last: %+v, err: %v)", snap, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	reads, reconnects := stream.counts()
	if reads != 2 {
		t.Fatalf("read calls %d want 2", reads)
	}
	if reconnects != 1 {
		t.Fatalf("reconnects %d want 1", reconnects)
	}
}

func TestCollectorStopsOnCancelDuringReattach(t *testing.T) {
	stream := &scriptedStream{}
	c := NewQuoteCollector(stream, broker.NewLatestBook(stream, time.Minute), &fakeMetrics{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if q, e := c.reattach(ctx); q != nil || e != nil {
		t.Fatalf("cancelled reattach must return nil channels")
	}
}
