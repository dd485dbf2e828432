// Package kafka publishes ledger events to Kafka.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
)

// Header names set on every published message.
const (
	HeaderEventType = "event_type"
	HeaderOutboxID  = "outbox_id"
)

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher writes outbox messages to the ledger events topic, keyed by
// org id so an org's events stay on one partition.
type EventPublisher struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewEventPublisher ensures the topic exists and returns a synchronous publisher.
func NewEventPublisher(logger *slog.Logger, cfg config.KafkaConfig) (*EventPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are not configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka ledger events topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers[0])
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	if err := ensureTopic(conn, cfg.Topic, logger); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.WriteTimeout,
	}
	return &EventPublisher{logger: logger, writer: writer, topic: cfg.Topic}, nil
}

// ensureTopic creates the topic when the broker reports no partitions for it.
func ensureTopic(conn *kafka.Conn, topic string, logger *slog.Logger) error {
	partitions, err := conn.ReadPartitions(topic)
	if err == nil && len(partitions) > 0 {
		logger.Info("Kafka topic already exists", "topic", topic, "partitions", len(partitions))
		return nil
	}

	logger.Info("Kafka topic does not exist or is not accessible, attempting to create it", "topic", topic, "read_error", err)
	if err := conn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topic, err)
	}
	return nil
}

func toKafkaMessage(msg domain.OutboxMessage) kafka.Message {
	return kafka.Message{
		Key:   []byte(msg.OrgID),
		Value: msg.Payload,
		Time:  msg.CreatedAt,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(msg.EventType)},
			{Key: HeaderOutboxID, Value: []byte(strconv.FormatInt(msg.ID, 10))},
		},
	}
}

// Publish blocks until the brokers acknowledge the message.
func (p *EventPublisher) Publish(ctx context.Context, msg domain.OutboxMessage) error {
	start := time.Now()
	if err := p.writer.WriteMessages(ctx, toKafkaMessage(msg)); err != nil {
		return fmt.Errorf("failed to publish outbox message %d to %s: %w", msg.ID, p.topic, err)
	}

	p.logger.Debug("Published ledger event",
		"topic", p.topic,
		"org_id", msg.OrgID,
		"event_type", string(msg.EventType),
		"outbox_id", msg.ID,
		"latency", time.Since(start),
	)
	return nil
}

func (p *EventPublisher) Close() error {
	p.logger.Info("Closing Kafka ledger event publisher", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
