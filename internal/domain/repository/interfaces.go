package repository

import (
	"context"
	"time"

	"MarketMind/internal/domain/models"
)

// QuoteSource supplies point-in-time quote snapshots for the configured
// symbols. Implementations must serve the volatility index and at least one
// benchmark index.
type QuoteSource interface {
	GetSnapshot(ctx context.Context, symbol string) (*models.MarketSnapshot, error)
	GetSnapshots(ctx context.Context, symbols []string) (map[string]*models.MarketSnapshot, error)
	IsConnected() bool
}

// QuoteStream is the live broker feed backing a QuoteSource.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.MarketSnapshot, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// NewsSource returns recent headlines from external feeds, best effort.
type NewsSource interface {
	Headlines(ctx context.Context) ([]models.Headline, error)
}

// SnapshotStore is the durable persistence sink for daily historical
// snapshots. The store only needs append semantics; the 365-day window is
// enforced by the in-memory history.
type SnapshotStore interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, s *models.HistoricalSnapshot) error
	RecordOutcome(ctx context.Context, date time.Time, pnl float64) error
	LoadRecent(ctx context.Context, days int) ([]models.HistoricalSnapshot, error)
	Health(ctx context.Context) error
	Close() error
}

// Publisher emits completed assessments for downstream consumers.
type Publisher interface {
	PublishAssessment(ctx context.Context, r *models.MarketIntelligenceResult) error
	Close() error
}

// Metrics records operational measurements for the intelligence engine.
type Metrics interface {
	RecordCycle(outcome string)
	RecordSourceError(source string)
	RecordVIX(level float64)
	RecordInterval(minutes int)
	RecordCycleDuration(seconds float64)
	RecordQuote(symbol string, price float64)
}
