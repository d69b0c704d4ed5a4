package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"inventoryapi/internal/platform/kafka"
	"inventoryapi/internal/platform/observability"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Decoder unwraps a schema-registry framed payload.
type Decoder interface {
	Decode(payload []byte) (int, map[string]any, error)
}

// ChangeEvent is one decoded inventory change as printed by EventTail.
type ChangeEvent struct {
	EventID   string `json:"eventId,omitempty"`
	SchemaID  int    `json:"schemaId"`
	Topic     string `json:"topic"`
	Partition int    `json:"partition"`
	Offset    int64  `json:"offset"`
	Record    Record `json:"record"`
}

// EventTail follows the change topic and writes every event as a JSON line.
type EventTail struct {
	consumer kafka.Consumer
	decoder  Decoder
	out      io.Writer
	logger   observability.Logger
}

func NewEventTail(consumer kafka.Consumer, decoder Decoder, out io.Writer, logger observability.Logger) *EventTail {
	return &EventTail{
		consumer: consumer,
		decoder:  decoder,
		out:      out,
		logger:   logger,
	}
}

// Start blocks until ctx is done or the consumer is closed. Undecodable
// messages are logged and skipped.
func (t *EventTail) Start(ctx context.Context) error {
	t.logger.Info("Kafka consumer started. Waiting for inventory events...")
	enc := json.NewEncoder(t.out)

	for {
		msg, err := t.consumer.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				t.logger.Info("Context done, exiting Kafka read loop.", zap.Error(err))
				break
			}
			t.logger.Error("❌ Error reading from Kafka", zap.Error(err))
			continue
		}

		event, err := t.decode(msg)
		if err != nil {
			t.logger.Error("❌ Skipping undecodable inventory event",
				zap.Error(err),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			continue
		}
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
	}

	t.logger.Info("Event tail finished. Shutting down...")
	return nil
}

func (t *EventTail) decode(msg *kafkago.Message) (ChangeEvent, error) {
	schemaID, datum, err := t.decoder.Decode(msg.Value)
	if err != nil {
		return ChangeEvent{}, err
	}
	rec, err := RecordFromAvro(datum)
	if err != nil {
		return ChangeEvent{}, err
	}

	event := ChangeEvent{
		SchemaID:  schemaID,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Record:    rec,
	}
	for _, h := range msg.Headers {
		if h.Key == EventIDHeader {
			event.EventID = string(h.Value)
		}
	}
	return event, nil
}
