package repository

import (
	"context"

	"MarketMind/internal/domain/models"
	domrepo "MarketMind/internal/domain/repository"
	pkgkafka "MarketMind/pkg/kafka"
)

// KafkaPublisher emits completed assessments to Kafka for downstream
// consumers (alerting, journaling, dashboards).
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka assessment publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) domrepo.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishAssessment(ctx context.Context, r *models.MarketIntelligenceResult) error {
	if r == nil || r.Conditions == nil {
		return nil
	}
	payload := map[string]interface{}{
		"ts":         r.GeneratedAt.Unix(),
		"spot":       r.Conditions.Spot,
		"vix":        r.Conditions.VIX,
		"trend":      r.Conditions.Trend,
		"sentiment":  r.Conditions.Sentiment,
		"regime":     r.Conditions.VolatilityRegime,
		"interval_m": r.SchedulingMode,
	}
	if len(r.Recommendations) > 0 {
		payload["top_strategy"] = r.Recommendations[0].Strategy
		payload["top_score"] = r.Recommendations[0].Score
	}
	key := []byte(r.GeneratedAt.Format("2006-01-02"))
	return p.producer.Publish(ctx, p.topic, key, payload)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
