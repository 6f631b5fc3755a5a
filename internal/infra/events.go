package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// EventPublisher publishes catalog mutation events to Kafka. If disabled or
// no brokers are configured, publishes are no-ops; catalog mutations never
// depend on the broker being up.
type EventPublisher struct {
	writer  *kafka.Writer
	topic   string
	logger  *slog.Logger
	enabled bool
}

// NewEventPublisher creates a Kafka event publisher.
func NewEventPublisher(brokers, topic string, enabled bool, logger *slog.Logger) *EventPublisher {
	if !enabled || brokers == "" {
		logger.Info("event publisher disabled")
		return &EventPublisher{enabled: false, logger: logger}
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("event publisher initialized", "brokers", brokers, "topic", topic)
	return &EventPublisher{writer: w, topic: topic, logger: logger, enabled: true}
}

type mutationEvent struct {
	Action     string    `json:"action"`
	VideoID    uuid.UUID `json:"video_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PublishMutation sends a catalog mutation event. No-op if disabled.
func (p *EventPublisher) PublishMutation(ctx context.Context, action string, videoID uuid.UUID) error {
	if !p.enabled {
		return nil
	}

	value, err := json.Marshal(mutationEvent{
		Action:     action,
		VideoID:    videoID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(videoID.String()),
		Value: value,
	})
}

// Close shuts down the Kafka writer.
func (p *EventPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
