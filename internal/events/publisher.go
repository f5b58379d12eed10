package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Publisher publishes domain events to out-of-process consumers.
type Publisher interface {
	PublishResultRecorded(ctx context.Context, event *ResultRecordedEvent) error
	Close() error
}

// KafkaPublisher implements Publisher using Watermill with Kafka.
type KafkaPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	topic     string
}

// PublisherConfig holds configuration for the event publisher.
type PublisherConfig struct {
	KafkaBrokers []string
	Topic        string
	Logger       *slog.Logger
}

func NewKafkaPublisher(config PublisherConfig) (*KafkaPublisher, error) {
	logger := watermill.NewSlogLogger(config.Logger)

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   config.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return &KafkaPublisher{
		publisher: publisher,
		logger:    config.Logger,
		topic:     config.Topic,
	}, nil
}

func (p *KafkaPublisher) PublishResultRecorded(ctx context.Context, event *ResultRecordedEvent) error {
	if event.EventID == "" {
		event.EventID = watermill.NewUUID()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal result event: %w", err)
	}

	msg := message.NewMessage(event.EventID, payload)
	msg.Metadata.Set("event_type", "quiz.result_recorded")
	msg.Metadata.Set("user_id", fmt.Sprintf("%d", event.UserID))
	msg.Metadata.Set("quiz_id", fmt.Sprintf("%d", event.QuizID))

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		p.logger.Error("Failed to publish result event",
			"event_id", event.EventID,
			"user_id", event.UserID,
			"error", err)
		return fmt.Errorf("failed to publish result event: %w", err)
	}

	p.logger.Info("Published result event",
		"event_id", event.EventID,
		"user_id", event.UserID,
		"quiz_id", event.QuizID,
		"topic", p.topic)

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.publisher.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (*NoopPublisher) PublishResultRecorded(ctx context.Context, event *ResultRecordedEvent) error {
	return nil
}

func (*NoopPublisher) Close() error {
	return nil
}

// MemoryPublisher stores events in memory for tests.
type MemoryPublisher struct {
	Events []ResultRecordedEvent
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{Events: make([]ResultRecordedEvent, 0)}
}

func (m *MemoryPublisher) PublishResultRecorded(ctx context.Context, event *ResultRecordedEvent) error {
	m.Events = append(m.Events, *event)
	return nil
}

func (m *MemoryPublisher) Close() error {
	return nil
}
