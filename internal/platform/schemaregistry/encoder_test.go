package schemaregistry

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "record",
  "name": "Probe",
  "fields": [
    {"name": "sku", "type": "string"},
    {"name": "amount", "type": "long"}
  ]
}`

type fakeRegistry struct {
	mu       sync.Mutex
	calls    int
	subjects []string
	err      error
}

func (f *fakeRegistry) Register(subject, schema string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.subjects = append(f.subjects, subject)
	if f.err != nil {
		return 0, f.err
	}
	return 258, nil
}

func TestSubjectName(t *testing.T) {
	assert.Equal(t, "inventory_events-value", SubjectName("inventory_events", "value"))
}

func TestEncoder_ConfluentFraming(t *testing.T) {
	registry := &fakeRegistry{}
	enc, err := NewEncoder(registry, testSchema)
	require.NoError(t, err)

	payload, err := enc.Encode("inventory_events-value", map[string]any{"sku": "42", "amount": int64(500)})
	require.NoError(t, err)

	require.Greater(t, len(payload), 5)
	assert.Equal(t, byte(0), payload[0])
	assert.Equal(t, []byte{0, 0, 1, 2}, payload[1:5])

	id, datum, err := enc.Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, 258, id)
	assert.Equal(t, "42", datum["sku"])
	assert.Equal(t, int64(500), datum["amount"])
}

func TestEncoder_CachesSchemaIDPerSubject(t *testing.T) {
	registry := &fakeRegistry{}
	enc, err := NewEncoder(registry, testSchema)
	require.NoError(t, err)

	datum := map[string]any{"sku": "1", "amount": int64(1)}
	for i := 0; i < 3; i++ {
		_, err := enc.Encode("a-value", datum)
		require.NoError(t, err)
	}
	_, err = enc.Encode("b-value", datum)
	require.NoError(t, err)

	assert.Equal(t, 2, registry.calls)
	assert.Equal(t, []string{"a-value", "b-value"}, registry.subjects)
}

func TestEncoder_RegistryFailure(t *testing.T) {
	registry := &fakeRegistry{err: errors.New("connection refused")}
	enc, err := NewEncoder(registry, testSchema)
	require.NoError(t, err)

	_, err = enc.Encode("a-value", map[string]any{"sku": "1", "amount": int64(1)})
	assert.ErrorContains(t, err, "connection refused")
}

func TestEncoder_BadDatum(t *testing.T) {
	enc, err := NewEncoder(&fakeRegistry{}, testSchema)
	require.NoError(t, err)

	_, err = enc.Encode("a-value", map[string]any{"sku": "1"})
	assert.Error(t, err)
}

func TestNewEncoder_InvalidSchema(t *testing.T) {
	_, err := NewEncoder(&fakeRegistry{}, `{"type": "nope"}`)
	assert.Error(t, err)
}

func TestDecode_RejectsUnframedPayload(t *testing.T) {
	enc, err := NewEncoder(&fakeRegistry{}, testSchema)
	require.NoError(t, err)

	_, _, err = enc.Decode([]byte{1, 2})
	assert.Error(t, err)
}
