package schemaregistry

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/linkedin/goavro/v2"
	"github.com/riferrei/srclient"
)

// magicByte opens every Confluent-framed payload.
const magicByte byte = 0

// Registry resolves the id of schema under subject, registering it when the
// subject does not know it yet.
type Registry interface {
	Register(subject, schema string) (int, error)
}

// Client is the srclient-backed Registry.
type Client struct {
	client srclient.ISchemaRegistryClient
}

func NewClient(url string) *Client {
	return &Client{client: srclient.CreateSchemaRegistryClient(url)}
}

func (c *Client) Register(subject, schema string) (int, error) {
	s, err := c.client.CreateSchema(subject, schema, srclient.Avro)
	if err != nil {
		return 0, fmt.Errorf("register schema for subject %s: %w", subject, err)
	}
	return s.ID(), nil
}

// SubjectName applies the topic-record-name strategy: <topic>-<suffix>.
func SubjectName(topic, suffix string) string {
	return topic + "-" + suffix
}

// Encoder writes Avro binary in the Confluent wire format for one schema.
// Resolved schema ids are remembered per subject.
type Encoder struct {
	registry Registry
	schema   string
	codec    *goavro.Codec
	ids      sync.Map // subject -> int
}

func NewEncoder(registry Registry, schema string) (*Encoder, error) {
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return nil, fmt.Errorf("compile avro schema: %w", err)
	}
	return &Encoder{registry: registry, schema: schema, codec: codec}, nil
}

// Encode frames datum as magic byte, big-endian schema id, Avro body.
func (e *Encoder) Encode(subject string, datum map[string]any) ([]byte, error) {
	id, err := e.schemaID(subject)
	if err != nil {
		return nil, err
	}

	header := make([]byte, 5, 64)
	header[0] = magicByte
	binary.BigEndian.PutUint32(header[1:], uint32(id))

	payload, err := e.codec.BinaryFromNative(header, datum)
	if err != nil {
		return nil, fmt.Errorf("encode avro datum: %w", err)
	}
	return payload, nil
}

// Decode is the inverse of Encode and returns the schema id found in the frame.
func (e *Encoder) Decode(payload []byte) (int, map[string]any, error) {
	if len(payload) < 5 || payload[0] != magicByte {
		return 0, nil, fmt.Errorf("payload is not confluent framed")
	}
	id := int(binary.BigEndian.Uint32(payload[1:5]))

	native, _, err := e.codec.NativeFromBinary(payload[5:])
	if err != nil {
		return 0, nil, fmt.Errorf("decode avro datum: %w", err)
	}
	datum, ok := native.(map[string]any)
	if !ok {
		return 0, nil, fmt.Errorf("decoded datum is %T, not a record", native)
	}
	return id, datum, nil
}

func (e *Encoder) schemaID(subject string) (int, error) {
	if id, ok := e.ids.Load(subject); ok {
		return id.(int), nil
	}
	id, err := e.registry.Register(subject, e.schema)
	if err != nil {
		return 0, err
	}
	e.ids.Store(subject, id)
	return id, nil
}
