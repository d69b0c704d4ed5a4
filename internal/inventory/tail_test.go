package inventory_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"inventoryapi/internal/inventory"
	"inventoryapi/internal/inventory/inventorytest"
	"inventoryapi/internal/platform/schemaregistry"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedConsumer replays messages, then reports cancellation.
type scriptedConsumer struct {
	messages []kafkago.Message
	errs     []error
}

func (c *scriptedConsumer) ReadMessage(ctx context.Context) (*kafkago.Message, error) {
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		return nil, err
	}
	if len(c.messages) == 0 {
		return nil, context.Canceled
	}
	msg := c.messages[0]
	c.messages = c.messages[1:]
	return &msg, nil
}

func (c *scriptedConsumer) Close() error { return nil }

func TestEventTail_DecodesPublishedEvents(t *testing.T) {
	enc, err := schemaregistry.NewEncoder(staticRegistry{}, inventory.RecordSchema)
	require.NoError(t, err)

	producer := &stubProducer{}
	outcome := newPublisher(enc, &stubFactory{producer: producer}, true, inventorytest.NewRecorder()).
		Publish(context.Background(), widget, "inventory_events")
	require.Equal(t, inventory.PublishDelivered, outcome.Status)
	require.Len(t, producer.messages, 1)

	published := producer.messages[0]
	published.Topic = "inventory_events"
	published.Offset = 12

	consumer := &scriptedConsumer{
		errs:     []error{errors.New("coordinator not available")},
		messages: []kafkago.Message{{Value: []byte("not avro")}, published},
	}
	var out bytes.Buffer

	require.NoError(t, inventory.NewEventTail(consumer, enc, &out, zap.NewNop()).Start(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1, "undecodable message is skipped")

	var event inventory.ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &event))
	assert.Equal(t, widget, event.Record)
	assert.Equal(t, 7, event.SchemaID)
	assert.Equal(t, "inventory_events", event.Topic)
	assert.Equal(t, int64(12), event.Offset)
	assert.Equal(t, string(published.Headers[0].Value), event.EventID)
}

func TestRecordFromAvro_RejectsWrongTypes(t *testing.T) {
	_, err := inventory.RecordFromAvro(map[string]any{"sku": 42})
	assert.Error(t, err)
}
