package usecase

import (
	"context"
	"time"

	"MarketMind/internal/domain/models"
	drepo "MarketMind/internal/domain/repository"
	mid "MarketMind/internal/middleware"
	"MarketMind/internal/service/broker"
)

// QuoteCollector wires the broker stream into the quote book through the
// validation pipeline, reconnecting on stream errors.
type QuoteCollector struct {
	stream  drepo.QuoteStream
	book    *broker.LatestBook
	metrics drepo.Metrics
	pipe    *mid.QuotePipeline
}

// NewQuoteCollector creates a new QuoteCollector instance.
func NewQuoteCollector(stream drepo.QuoteStream, book *broker.LatestBook, metrics drepo.Metrics, pipe *mid.QuotePipeline) *QuoteCollector {
	return &QuoteCollector{stream: stream, book: book, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the broker stream is connected.
func (c *QuoteCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *QuoteCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	go c.run(ctx)
	return nil
}

// run consumes the stream until ctx is cancelled. The stream closes both
// channels after a read error, so either a received error or a closed
// channel means the connection is dead and the feed must be re-acquired
// from a fresh Read.
func (c *QuoteCollector) run(ctx context.Context) {
	qCh, errCh := c.stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if ok && err != nil {
				c.metrics.RecordSourceError("stream")
			}
			if qCh, errCh = c.reattach(ctx); qCh == nil {
				return
			}
		case s, ok := <-qCh:
			if !ok {
				if qCh, errCh = c.reattach(ctx); qCh == nil {
					return
				}
				continue
			}
			if s == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, s)
			} else {
				c.book.Update(s)
				c.metrics.RecordQuote(s.Symbol, s.LastPrice)
			}
		}
	}
}

// reattach reconnects with exponential backoff and returns the replacement
// connection's channels. Both returns are nil once ctx is cancelled.
func (c *QuoteCollector) reattach(ctx context.Context) (<-chan *models.MarketSnapshot, <-chan error) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return nil, nil
		}
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordSourceError("stream")
			select {
			case <-ctx.Done():
				return nil, nil
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		return c.stream.Read(ctx)
	}
}

// Book returns the quote book the collector feeds.
func (c *QuoteCollector) Book() *broker.LatestBook { return c.book }

// Shutdown stops the pipeline and closes the stream.
func (c *QuoteCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
