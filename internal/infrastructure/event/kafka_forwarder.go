package event

import (
	"context"
	"fmt"
	"time"

	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/infrastructure/config"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the part of *kafka.Writer the forwarder needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds a synchronous writer keyed by aggregate so events of
// one order or purchase order land on one partition in order
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
	}
}

// KafkaForwarder subscribes to every domain event and republishes it on a topic
type KafkaForwarder struct {
	writer  MessageWriter
	timeout time.Duration
	logger  *zap.Logger
}

// NewKafkaForwarder creates a forwarder over writer
func NewKafkaForwarder(writer MessageWriter, logger *zap.Logger) *KafkaForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaForwarder{
		writer:  writer,
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

// EventTypes returns nil so the forwarder receives all events
func (f *KafkaForwarder) EventTypes() []string {
	return nil
}

// Handle writes the event envelope. The write is detached from request
// cancellation but bounded by the forwarder timeout.
func (f *KafkaForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	envelope, err := NewEnvelope(event)
	if err != nil {
		return err
	}
	value, err := envelope.Marshal()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()

	err = f.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(event.AggregateID().String()),
		Value: value,
		Time:  event.OccurredAt(),
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.EventType())},
			{Key: "workspace-id", Value: []byte(event.WorkspaceID().String())},
		},
	})
	if err != nil {
		return fmt.Errorf("forward %s to kafka: %w", event.EventType(), err)
	}

	f.logger.Debug("Event forwarded",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
	)
	return nil
}

// Close flushes and closes the writer
func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}

// Ensure KafkaForwarder implements EventHandler
var _ shared.EventHandler = (*KafkaForwarder)(nil)
