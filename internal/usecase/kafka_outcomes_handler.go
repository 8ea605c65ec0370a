package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domrepo "MarketMind/internal/domain/repository"
	pkgkafka "MarketMind/pkg/kafka"
)

// KafkaOutcomesHandler consumes realized trade outcomes and attaches them
// to the matching day's historical snapshot.
type KafkaOutcomesHandler struct {
	topic   string
	history *HistoryStore
	metrics domrepo.Metrics
}

func NewKafkaOutcomesHandler(topic string, history *HistoryStore, metrics domrepo.Metrics) *KafkaOutcomesHandler {
	return &KafkaOutcomesHandler{topic: topic, history: history, metrics: metrics}
}

func (h *KafkaOutcomesHandler) Topic() string { return h.topic }

// incoming message schema: {date: "2006-01-02", pnl: float}
func (h *KafkaOutcomesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Date string  `json:"date"`
		PnL  float64 `json:"pnl"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordSourceError("consumer_unmarshal")
		return err
	}
	date, err := time.Parse("2006-01-02", m.Date)
	if err != nil {
		h.metrics.RecordSourceError("consumer_date")
		return fmt.Errorf("outcome date %q: %w", m.Date, err)
	}
	h.history.RecordOutcome(ctx, date, m.PnL)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaOutcomesHandler)(nil)
