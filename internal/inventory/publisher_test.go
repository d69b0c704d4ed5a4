package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"inventoryapi/internal/inventory"
	"inventoryapi/internal/inventory/inventorytest"
	"inventoryapi/internal/platform/kafka"
	"inventoryapi/internal/platform/schemaregistry"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type stubEncoder struct {
	err      error
	panicMsg string
	subjects []string
}

func (e *stubEncoder) Encode(subject string, datum map[string]any) ([]byte, error) {
	if e.panicMsg != "" {
		panic(e.panicMsg)
	}
	e.subjects = append(e.subjects, subject)
	if e.err != nil {
		return nil, e.err
	}
	return []byte("encoded:" + datum["sku"].(string)), nil
}

type stubProducer struct {
	mu       sync.Mutex
	writeErr error
	messages []kafkago.Message
	closed   bool
}

func (p *stubProducer) WriteMessage(ctx context.Context, msg kafkago.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return p.writeErr
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *stubProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

type stubFactory struct {
	producer *stubProducer
	err      error
	topics   []string
}

func (f *stubFactory) NewProducer(topic string) (kafka.Producer, error) {
	f.topics = append(f.topics, topic)
	if f.err != nil {
		return nil, f.err
	}
	return f.producer, nil
}

type staticRegistry struct{}

func (staticRegistry) Register(subject, schema string) (int, error) { return 7, nil }

func newPublisher(enc inventory.Encoder, factory kafka.ProducerFactory, strict bool, rec *inventorytest.Recorder) *inventory.EventPublisher {
	return inventory.NewEventPublisher(enc, factory, strict, zap.NewNop(), noop.NewTracerProvider().Tracer("test"), rec)
}

var widget = inventory.Record{
	SKU:               "42",
	Title:             "Widget",
	Description:       2.5,
	Quantity:          3,
	Expiry:            1700000060000,
	CurrencyCode:      "USD",
	Currency:          "$",
	CurrencyAffixSide: "left",
	Amount:            500,
}

func TestPublish_Delivered(t *testing.T) {
	enc := &stubEncoder{}
	producer := &stubProducer{}
	factory := &stubFactory{producer: producer}
	rec := inventorytest.NewRecorder()

	outcome := newPublisher(enc, factory, false, rec).Publish(context.Background(), widget, "inventory_events")

	assert.Equal(t, inventory.PublishDelivered, outcome.Status)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, []string{"inventory_events-value"}, enc.subjects)
	assert.Equal(t, []string{"inventory_events"}, factory.topics)
	assert.True(t, producer.closed, "producer is scoped to the publish call")

	require.Len(t, producer.messages, 1)
	msg := producer.messages[0]
	assert.Equal(t, []byte("42"), msg.Key)
	assert.Equal(t, []byte("encoded:42"), msg.Value)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_id", msg.Headers[0].Key)
	assert.NotEmpty(t, msg.Headers[0].Value)

	assert.Equal(t, 1, rec.Outcomes["delivered"])
}

func TestPublish_FailurePolicy(t *testing.T) {
	boom := errors.New("broker unreachable")

	tests := []struct {
		name    string
		encoder *stubEncoder
		factory *stubFactory
	}{
		{"encode failure", &stubEncoder{err: boom}, &stubFactory{producer: &stubProducer{}}},
		{"connect failure", &stubEncoder{}, &stubFactory{err: boom}},
		{"send failure", &stubEncoder{}, &stubFactory{producer: &stubProducer{writeErr: boom}}},
		{"panic during attempt", &stubEncoder{panicMsg: "codec exploded"}, &stubFactory{producer: &stubProducer{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/soft", func(t *testing.T) {
			rec := inventorytest.NewRecorder()
			outcome := newPublisher(tt.encoder, tt.factory, false, rec).Publish(context.Background(), widget, "topic")

			assert.Equal(t, inventory.PublishSoftFailed, outcome.Status)
			assert.Error(t, outcome.Err)
			assert.Equal(t, 1, rec.Outcomes["soft_failed"])
		})
		t.Run(tt.name+"/strict", func(t *testing.T) {
			rec := inventorytest.NewRecorder()
			outcome := newPublisher(tt.encoder, tt.factory, true, rec).Publish(context.Background(), widget, "topic")

			assert.Equal(t, inventory.PublishFailed, outcome.Status)
			assert.Error(t, outcome.Err)
			assert.Equal(t, 1, rec.Outcomes["failed"])
		})
	}
}

func TestPublish_SendFailureStillClosesProducer(t *testing.T) {
	producer := &stubProducer{writeErr: errors.New("leader not available")}
	outcome := newPublisher(&stubEncoder{}, &stubFactory{producer: producer}, false, inventorytest.NewRecorder()).
		Publish(context.Background(), widget, "topic")

	assert.Equal(t, inventory.PublishSoftFailed, outcome.Status)
	assert.True(t, producer.closed)
}

func TestPublish_AvroPayloadMatchesRecord(t *testing.T) {
	enc, err := schemaregistry.NewEncoder(staticRegistry{}, inventory.RecordSchema)
	require.NoError(t, err)
	producer := &stubProducer{}

	outcome := newPublisher(enc, &stubFactory{producer: producer}, true, inventorytest.NewRecorder()).
		Publish(context.Background(), widget, "inventory_events")
	require.Equal(t, inventory.PublishDelivered, outcome.Status)
	require.Len(t, producer.messages, 1)

	id, datum, err := enc.Decode(producer.messages[0].Value)
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	assert.Equal(t, "42", datum["sku"])
	assert.Equal(t, "Widget", datum["title"])
	assert.Equal(t, float32(2.5), datum["description"])
	assert.Equal(t, int64(3), datum["quantity"])
	assert.Equal(t, int64(1700000060000), datum["expiry"])
	assert.Equal(t, "USD", datum["currencyCode"])
	assert.Equal(t, "$", datum["currency"])
	assert.Equal(t, "left", datum["currencyAffixSide"])
	assert.Equal(t, int64(500), datum["amount"])
}

func TestPublishStatus_String(t *testing.T) {
	assert.Equal(t, "delivered", inventory.PublishDelivered.String())
	assert.Equal(t, "soft_failed", inventory.PublishSoftFailed.String())
	assert.Equal(t, "failed", inventory.PublishFailed.String())
	assert.Equal(t, "PublishStatus(9)", inventory.PublishStatus(9).String())
}
