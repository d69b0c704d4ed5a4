package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Producer is a single-topic message writer.
type Producer interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

// ProducerFactory opens a producer bound to topic. Callers own the returned
// producer and must close it.
type ProducerFactory interface {
	NewProducer(topic string) (Producer, error)
}

// Consumer reads messages in order, committing offsets for its group.
type Consumer interface {
	ReadMessage(ctx context.Context) (*kafka.Message, error)
	Close() error
}
