package inventory

import (
	"context"
	"fmt"

	"inventoryapi/internal/config"
	"inventoryapi/internal/platform/kafka"
	"inventoryapi/internal/platform/observability"
	"inventoryapi/internal/platform/schemaregistry"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// EventIDHeader carries a unique id per published event.
const EventIDHeader = "event_id"

// PublishStatus tags which branch of the publish policy was taken.
type PublishStatus int

const (
	PublishDelivered PublishStatus = iota
	// PublishSoftFailed: the attempt failed and was logged, the caller proceeds.
	PublishSoftFailed
	// PublishFailed: the attempt failed and strict mode requires surfacing it.
	PublishFailed
)

func (s PublishStatus) String() string {
	switch s {
	case PublishDelivered:
		return "delivered"
	case PublishSoftFailed:
		return "soft_failed"
	case PublishFailed:
		return "failed"
	default:
		return fmt.Sprintf("PublishStatus(%d)", int(s))
	}
}

// PublishOutcome is the result of one publish attempt. Err is nil only when
// Status is PublishDelivered.
type PublishOutcome struct {
	Status PublishStatus
	Err    error
}

// Publisher emits an inventory change event on topic.
type Publisher interface {
	Publish(ctx context.Context, rec Record, topic string) PublishOutcome
}

// Encoder turns a datum into a schema-registry framed payload.
type Encoder interface {
	Encode(subject string, datum map[string]any) ([]byte, error)
}

// OutcomeRecorder receives publish outcomes and store failures for metrics.
type OutcomeRecorder interface {
	PublishOutcome(outcome string)
	StoreError(operation string)
}

// EventPublisher encodes records with Avro and writes them to Kafka through a
// producer opened for the single publish.
type EventPublisher struct {
	encoder          Encoder
	producers        kafka.ProducerFactory
	failOnDisconnect bool
	logger           observability.Logger
	tracer           observability.Tracer
	recorder         OutcomeRecorder
}

func NewEventPublisher(
	encoder Encoder,
	producers kafka.ProducerFactory,
	failOnDisconnect bool,
	logger observability.Logger,
	tracer observability.Tracer,
	recorder OutcomeRecorder,
) *EventPublisher {
	return &EventPublisher{
		encoder:          encoder,
		producers:        producers,
		failOnDisconnect: failOnDisconnect,
		logger:           logger,
		tracer:           tracer,
		recorder:         recorder,
	}
}

// Publish never panics. In soft mode every failure becomes PublishSoftFailed.
func (p *EventPublisher) Publish(ctx context.Context, rec Record, topic string) PublishOutcome {
	ctx, span := p.tracer.Start(ctx, "inventory.publish")
	defer span.End()

	span.SetAttributes(
		attribute.String("inventory.sku", rec.SKU),
		attribute.String("messaging.destination.name", topic),
		attribute.Bool("inventory.publish.strict", p.failOnDisconnect),
	)

	outcome := PublishOutcome{Status: PublishDelivered}
	if err := p.attempt(ctx, rec, topic); err != nil {
		outcome = PublishOutcome{Status: PublishSoftFailed, Err: err}
		if p.failOnDisconnect {
			outcome.Status = PublishFailed
		}
	}
	p.recorder.PublishOutcome(outcome.Status.String())

	switch outcome.Status {
	case PublishDelivered:
		span.SetStatus(codes.Ok, "event published")
		p.logger.Info("📤 Inventory activity streamed to kafka",
			zap.String("sku", rec.SKU),
			zap.String("topic", topic),
		)
	case PublishSoftFailed:
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, "publish failed, continuing")
		p.logger.Error("❌ Failed to stream inventory event, continuing without it",
			zap.Error(outcome.Err),
			zap.String("sku", rec.SKU),
			zap.String("topic", topic),
		)
	case PublishFailed:
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, "publish failed")
		p.logger.Error("❌ Failed to stream inventory event",
			zap.Error(outcome.Err),
			zap.String("sku", rec.SKU),
			zap.String("topic", topic),
		)
	}
	return outcome
}

// attempt runs encode, connect and send, turning a panic in any of them into an error.
func (p *EventPublisher) attempt(ctx context.Context, rec Record, topic string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("publish panicked: %v", r)
		}
	}()

	subject := schemaregistry.SubjectName(topic, config.SchemaValueSuffix)
	payload, err := p.encoder.Encode(subject, rec.avroDatum())
	if err != nil {
		return fmt.Errorf("encode inventory using schema: %w", err)
	}

	producer, err := p.producers.NewProducer(topic)
	if err != nil {
		return fmt.Errorf("initiate producer: %w", err)
	}
	defer func() {
		if closeErr := producer.Close(); closeErr != nil {
			p.logger.Warn("Failed to close kafka producer", zap.Error(closeErr), zap.String("topic", topic))
		}
	}()

	msg := kafkago.Message{
		Key:   []byte(rec.SKU),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: EventIDHeader, Value: []byte(uuid.NewString())},
		},
	}
	if err := producer.WriteMessage(ctx, msg); err != nil {
		return fmt.Errorf("post inventory event at topic %s: %w", topic, err)
	}
	return nil
}
