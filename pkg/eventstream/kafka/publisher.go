// Package kafka publishes usage events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/eventstream"
)

// Publisher writes usage events as JSON messages keyed by user id, so
// one user's events land in order on a single partition.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// Config holds Kafka publisher settings.
type Config struct {
	// Brokers is a comma-separated list of broker addresses.
	Brokers string

	// Topic is the destination topic.
	Topic string
}

// NewPublisher creates a Kafka-backed usage event publisher.
func NewPublisher(c Config, logger *zap.Logger) (*Publisher, error) {
	if c.Brokers == "" {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if c.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(c.Brokers, ",")...),
		Topic:    c.Topic,
		Balancer: &kafka.Hash{},
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}, nil
}

// Publish serializes the event and writes it to the topic.
func (p *Publisher) Publish(ctx context.Context, event *eventstream.UsageEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling usage event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("writing usage event: %w", err)
	}

	p.logger.Debug("published usage event",
		zap.String("event_type", event.EventType),
		zap.String("event_id", event.EventID),
	)

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
