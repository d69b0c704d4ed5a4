package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestWriterFactory_NewProducerIsLazy(t *testing.T) {
	factory := NewWriterFactory("127.0.0.1:1", noop.NewTracerProvider())

	producer, err := factory.NewProducer("inventory_events")
	require.NoError(t, err)
	require.NotNil(t, producer)

	assert.NoError(t, producer.Close())
}

func TestWriterFactory_UnreachableBrokerFailsWrite(t *testing.T) {
	if testing.Short() {
		t.Skip("dials a closed port")
	}
	factory := NewWriterFactory("127.0.0.1:1", noop.NewTracerProvider())

	producer, err := factory.NewProducer("inventory_events")
	require.NoError(t, err)
	defer producer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = producer.WriteMessage(ctx, kafka.Message{Key: []byte("42"), Value: []byte("payload")})
	assert.Error(t, err)
}

func TestNewReader_IsLazy(t *testing.T) {
	reader, err := NewReader("127.0.0.1:1", "inventory_events", "inventory-tail", noop.NewTracerProvider())
	require.NoError(t, err)
	require.NotNil(t, reader)

	assert.NoError(t, reader.Close())
}
