package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ServiceName    = "inventory-service"
	ServiceVersion = "0.2.0"
)

// Kafka producer settings. A writer lives for a single publish, so batching
// is kept tight.
const (
	BatchTimeout      = 10 * time.Millisecond
	BatchSize         = 1
	WriteTimeout      = 10 * time.Second
	WriteMaxAttempts  = 3
	SchemaValueSuffix = "value"
)

const (
	LogsPath      = "/otlp/v1/logs"   // Grafana Cloud OTLP path
	TracesPath    = "/otlp/v1/traces" // Grafana Cloud OTLP path
	ExportTimeout = 30 * time.Second
	MaxQueueSize  = 2048
)

const (
	RegionLocal          = "local"
	DefaultDynamoDBLocal = "http://localhost:8000"
	DefaultTable         = "inventory"
	DefaultAffixSide     = "left"
	DefaultServiceHost   = "0.0.0.0"
	DefaultServicePort   = 9999
	ReadinessTimeout     = 3 * time.Second
	MaxFormBytes         = 32 * 1024
)

const (
	BackendDynamoDB = "dynamodb"
	BackendRedis    = "redis"
)

var regionPattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d+$`)

// Config is loaded once at startup and never mutated afterwards.
type Config struct {
	Region           string `yaml:"aws_default_region"`
	DynamoDBLocalURL string `yaml:"dynamodb_local_url"`
	Table            string `yaml:"inventory_table"`
	SKUIndex         string `yaml:"sku_index"`
	TitleIndex       string `yaml:"title_index"`

	StoreBackend string `yaml:"store_backend"`
	RedisAddr    string `yaml:"redis_addr"`

	KafkaEndpoint          string `yaml:"kafka_endpoint"`
	SchemaRegistryEndpoint string `yaml:"schema_registry_endpoint"`
	InventoryUpdatedTopic  string `yaml:"inventory_updated_topic"`
	FailOnDisconnect       bool   `yaml:"fail_on_disconnect"`

	CurrencyAffixSide string `yaml:"currency_affix_side"`

	OtelEndpoint   string `yaml:"otel_endpoint"`
	OtelAuthHeader string `yaml:"otel_auth_header"`

	ServiceHost string `yaml:"service_host"`
	ServicePort int    `yaml:"service_port"`

	// RegionDefaulted is set when no region was configured and local was assumed.
	RegionDefaulted bool `yaml:"-"`
}

// LoadConfig reads the optional YAML overlay at path, then applies environment
// variables on top of it. An empty path skips the overlay.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"AWS_DEFAULT_REGION":       &c.Region,
		"DYNAMODB_LOCAL_URL":       &c.DynamoDBLocalURL,
		"INVENTORY_TABLE":          &c.Table,
		"SKU_INDEX":                &c.SKUIndex,
		"TITLE_INDEX":              &c.TitleIndex,
		"STORE_BACKEND":            &c.StoreBackend,
		"REDIS_ADDR":               &c.RedisAddr,
		"KAFKA_ENDPOINT":           &c.KafkaEndpoint,
		"SCHEMA_REGISTRY_ENDPOINT": &c.SchemaRegistryEndpoint,
		"INVENTORY_UPDATED_TOPIC":  &c.InventoryUpdatedTopic,
		"CURRENCY_AFFIX_SIDE":      &c.CurrencyAffixSide,
		"OTEL_ENDPOINT":            &c.OtelEndpoint,
		"OTEL_AUTH_HEADER":         &c.OtelAuthHeader,
		"SERVICE_HOST":             &c.ServiceHost,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("FAIL_ON_DISCONNECT"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FAIL_ON_DISCONNECT must be a boolean, got %q", v)
		}
		c.FailOnDisconnect = b
	}
	if v, ok := lookup("SERVICE_PORT"); ok && v != "" {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("SERVICE_PORT must be a port number, got %q", v)
		}
		c.ServicePort = int(port)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = RegionLocal
		c.RegionDefaulted = true
	}
	if c.DynamoDBLocalURL == "" {
		c.DynamoDBLocalURL = DefaultDynamoDBLocal
	}
	if c.Table == "" {
		c.Table = DefaultTable
	}
	if c.StoreBackend == "" {
		c.StoreBackend = BackendDynamoDB
	}
	if c.CurrencyAffixSide == "" {
		c.CurrencyAffixSide = DefaultAffixSide
	}
	if c.ServiceHost == "" {
		c.ServiceHost = DefaultServiceHost
	}
	if c.ServicePort == 0 {
		c.ServicePort = DefaultServicePort
	}
}

// Validate reports configuration the service cannot boot with.
func (c *Config) Validate() error {
	if c.Region != RegionLocal && !regionPattern.MatchString(c.Region) {
		return fmt.Errorf("unparsable AWS region %q", c.Region)
	}

	switch c.StoreBackend {
	case BackendDynamoDB:
		if c.SKUIndex == "" {
			return fmt.Errorf("SKU_INDEX is required for the dynamodb backend")
		}
		if c.TitleIndex == "" {
			return fmt.Errorf("TITLE_INDEX is required for the dynamodb backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.KafkaEndpoint == "" {
		return fmt.Errorf("KAFKA_ENDPOINT is required")
	}
	if c.SchemaRegistryEndpoint == "" {
		return fmt.Errorf("SCHEMA_REGISTRY_ENDPOINT is required")
	}
	if c.InventoryUpdatedTopic == "" {
		return fmt.Errorf("INVENTORY_UPDATED_TOPIC is required")
	}
	if c.CurrencyAffixSide != "left" && c.CurrencyAffixSide != "right" {
		return fmt.Errorf("CURRENCY_AFFIX_SIDE must be left or right, got %q", c.CurrencyAffixSide)
	}
	return nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServiceHost, c.ServicePort)
}

// DynamoDBEndpoint returns the store endpoint: the local URL for the local
// region, the public regional endpoint otherwise.
func (c *Config) DynamoDBEndpoint() string {
	if c.Region == RegionLocal {
		return c.DynamoDBLocalURL
	}
	return fmt.Sprintf("https://dynamodb.%s.amazonaws.com", c.Region)
}
