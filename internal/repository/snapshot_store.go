package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"MarketMind/internal/domain/models"
	domrepo "MarketMind/internal/domain/repository"
	applogger "MarketMind/pkg/logger"
)

// CHSnapshotStore implements SnapshotStore backed by ClickHouse. One row per
// trading day, deduplicated by the ReplacingMergeTree on (date, version).
type CHSnapshotStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewCHSnapshotStore creates ClickHouse snapshot storage.
func NewCHSnapshotStore(db *sql.DB, table string) domrepo.SnapshotStore {
	return &CHSnapshotStore{db: db, table: table}
}

// SetLogger injects a structured logger.
func (s *CHSnapshotStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSnapshotStore) Init(ctx context.Context) error {
	q := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            date Date,
            vix Float64,
            spot Float64,
            change_pct Float64,
            trend LowCardinality(String),
            regime LowCardinality(String),
            price_position Float64,
            top_strategy String,
            top_score Int32,
            outcome Nullable(Float64),
            version DateTime DEFAULT now()
        ) ENGINE = ReplacingMergeTree(version)
        ORDER BY date
    `, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("init snapshot table: %w", err)
	}
	return nil
}

func (s *CHSnapshotStore) Store(ctx context.Context, snap *models.HistoricalSnapshot) error {
	q := fmt.Sprintf(`INSERT INTO %s (date, vix, spot, change_pct, trend, regime, price_position, top_strategy, top_score, outcome) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	var outcome interface{}
	if snap.Outcome != nil {
		outcome = *snap.Outcome
	}
	_, err := s.db.ExecContext(ctx, q,
		snap.Date,
		snap.VIX,
		snap.Spot,
		snap.ChangePercent,
		snap.Trend,
		snap.VolatilityRegime,
		snap.PricePosition,
		snap.TopStrategy,
		int32(snap.TopScore),
		outcome,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse snapshot insert error",
				applogger.String("date", snap.Date.Format("2006-01-02")),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// RecordOutcome re-inserts the day's row with the outcome filled in. The
// replacing engine keeps the newer version on merge.
func (s *CHSnapshotStore) RecordOutcome(ctx context.Context, date time.Time, pnl float64) error {
	snap, err := s.loadDay(ctx, date)
	if err != nil {
		return err
	}
	snap.Outcome = &pnl
	return s.Store(ctx, snap)
}

func (s *CHSnapshotStore) loadDay(ctx context.Context, date time.Time) (*models.HistoricalSnapshot, error) {
	q := fmt.Sprintf(`SELECT date, vix, spot, change_pct, trend, regime, price_position, top_strategy, top_score, outcome FROM %s FINAL WHERE date = ? LIMIT 1`, s.table)
	row := s.db.QueryRowContext(ctx, q, date)
	snap, err := scanSnapshot(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no snapshot for %s", date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

func (s *CHSnapshotStore) LoadRecent(ctx context.Context, days int) ([]models.HistoricalSnapshot, error) {
	if days <= 0 {
		return nil, nil
	}
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT date, vix, spot, change_pct, trend, regime, price_position, top_strategy, top_score, outcome
        FROM %s FINAL
        WHERE date >= today() - ?
        ORDER BY date ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, days)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse load_recent query error",
				applogger.Int("days", days),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("load recent: %w", err)
	}
	defer rows.Close()

	out := make([]models.HistoricalSnapshot, 0, days)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse load_recent ok",
			applogger.Int("days", days),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(r rowScanner) (*models.HistoricalSnapshot, error) {
	var snap models.HistoricalSnapshot
	var topScore int32
	var outcome sql.NullFloat64
	if err := r.Scan(&snap.Date, &snap.VIX, &snap.Spot, &snap.ChangePercent, &snap.Trend, &snap.VolatilityRegime, &snap.PricePosition, &snap.TopStrategy, &topScore, &outcome); err != nil {
		return nil, err
	}
	snap.TopScore = int(topScore)
	if outcome.Valid {
		v := outcome.Float64
		snap.Outcome = &v
	}
	return &snap, nil
}

func (s *CHSnapshotStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHSnapshotStore) Close() error {
	return nil // Managed by pkg
}
