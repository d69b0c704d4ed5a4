package kafka

import (
	"inventoryapi/internal/config"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// WriterFactory builds a fresh traced kafka-go writer per call. Nothing is
// pooled: each writer dials the broker on first write and is torn down by Close.
type WriterFactory struct {
	broker string
	tp     trace.TracerProvider
}

func NewWriterFactory(broker string, tp trace.TracerProvider) *WriterFactory {
	return &WriterFactory{broker: broker, tp: tp}
}

func (f *WriterFactory) NewProducer(topic string) (Producer, error) {
	baseWriter := &kafka.Writer{
		Addr:         kafka.TCP(f.broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: config.BatchTimeout,
		BatchSize:    config.BatchSize,
		WriteTimeout: config.WriteTimeout,
		MaxAttempts:  config.WriteMaxAttempts,
		RequiredAcks: kafka.RequireOne,
	}

	// WriteMessage (singular) keeps the producer span attached to the caller's trace
	// See: https://github.com/Trendyol/otel-kafka-konsumer/issues/4
	writer, err := otelkafka.NewWriter(baseWriter,
		otelkafka.WithTracerProvider(f.tp),
		otelkafka.WithPropagator(propagation.TraceContext{}),
		otelkafka.WithAttributes(
			[]attribute.KeyValue{
				semconv.MessagingDestinationNameKey.String(topic),
				attribute.String("messaging.kafka.client_id", config.ServiceName),
			},
		),
	)
	if err != nil {
		_ = baseWriter.Close()
		return nil, err
	}
	return writer, nil
}
