package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"MarketMind/internal/domain/models"
	domrepo "MarketMind/internal/domain/repository"
)

// Sink is the minimal downstream interface the pipeline needs.
type Sink interface {
	Accept(ctx context.Context, s *models.MarketSnapshot) error
}

// QuotePipeline sits between the broker stream and the quote book.
// It validates frames and throttles per-symbol update rates so a bursty
// feed cannot flood the book with sub-tick noise.
type QuotePipeline struct {
	sink    Sink
	metrics domrepo.Metrics
	maxRPS  int
	mu      sync.Mutex
	stopped bool
	// per-symbol last accepted time
	lastSeen map[string]time.Time
}

type PipelineOption func(*QuotePipeline)

// WithMaxRPS sets the max accepted quotes per second per symbol.
func WithMaxRPS(n int) PipelineOption {
	return func(p *QuotePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// NewQuotePipeline creates a new pipeline.
func NewQuotePipeline(sink Sink, metrics domrepo.Metrics, opts ...PipelineOption) *QuotePipeline {
	p := &QuotePipeline{
		sink:     sink,
		metrics:  metrics,
		maxRPS:   5, // default throttle per symbol
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start marks the pipeline running. Start after Stop resumes the flow.
func (p *QuotePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = false
}

// Stop stops the pipeline. Quotes processed after Stop are dropped.
func (p *QuotePipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
}

// Process validates, throttles, and forwards a snapshot downstream.
func (p *QuotePipeline) Process(ctx context.Context, s *models.MarketSnapshot) error {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return nil
	}
	now := time.Now()
	if err := validateSnapshot(s); err != nil {
		p.metrics.RecordSourceError("pipeline_validate")
		return err
	}
	if !p.allow(s.Symbol, now) {
		// throttled, drop silently
		return nil
	}
	if err := p.sink.Accept(ctx, s); err != nil {
		p.metrics.RecordSourceError("pipeline_sink")
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordQuote(s.Symbol, s.LastPrice)
	return nil
}

func validateSnapshot(s *models.MarketSnapshot) error {
	if s == nil {
		return fmt.Errorf("snapshot nil")
	}
	if s.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if s.FetchedAt.IsZero() {
		return fmt.Errorf("timestamp invalid")
	}
	if s.LastPrice < 0 || s.Volume < 0 {
		return fmt.Errorf("negative price/volume")
	}
	return nil
}

func (p *QuotePipeline) allow(symbol string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[symbol]
	if last.IsZero() || now.Sub(last) >= time.Second/time.Duration(p.maxRPS) {
		p.lastSeen[symbol] = now
		return true
	}
	return false
}
