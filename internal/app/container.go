package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"inventoryapi/internal/config"
	"inventoryapi/internal/health"
	"inventoryapi/internal/httpapi"
	"inventoryapi/internal/inventory"
	"inventoryapi/internal/platform/kafka"
	"inventoryapi/internal/platform/metrics"
	"inventoryapi/internal/platform/observability"
	"inventoryapi/internal/platform/schemaregistry"
	"inventoryapi/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container holds expensive-to-create singleton resources and dependencies
type Container struct {
	config  *config.Config
	logger  observability.Logger
	tracer  observability.Tracer
	sdk     *observability.SDK
	metrics *metrics.Metrics

	store   inventory.Store
	closers []func() error

	service *inventory.Service
	probe   *health.Probe
	server  *httpapi.Server
}

// NewContainer loads configuration and wires every component
func NewContainer(ctx context.Context, configPath string) (*Container, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	c := &Container{config: cfg}

	if err := c.setupLogger(); err != nil {
		return nil, err
	}
	c.setupObservability(ctx)

	if err := c.setupStore(ctx); err != nil {
		return nil, err
	}
	if err := c.setupPipeline(); err != nil {
		return nil, err
	}
	c.setupServer()

	return c, nil
}

// setupLogger starts with a plain production logger until OTel is configured
func (c *Container) setupLogger() error {
	logger, err := observability.NewBootstrapLogger()
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

// setupObservability configures OpenTelemetry logging and tracing, then
// swaps in the bridged logger. Exporter failures are logged, not fatal.
func (c *Container) setupObservability(ctx context.Context) {
	sdk, err := observability.SetupSDK(ctx, c.config)
	if err != nil {
		c.logger.Error("Failed to setup OpenTelemetry", zap.Error(err))
	}
	c.sdk = sdk

	c.logger = observability.NewLogger()
	c.logger.Info("Logger re-initialized with OpenTelemetry bridge")
	c.tracer = sdk.TracerProvider.Tracer(config.ServiceName)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.metrics = metrics.New(reg)
}

func (c *Container) setupStore(ctx context.Context) error {
	if c.config.RegionDefaulted {
		c.logger.Error("AWS_DEFAULT_REGION is not set, falling back to local DynamoDB",
			zap.String("endpoint", c.config.DynamoDBLocalURL))
	}

	switch c.config.StoreBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: c.config.RedisAddr})
		c.closers = append(c.closers, client.Close)
		c.store = storage.NewRedisStore(client, config.DefaultTable, c.logger)
		c.logger.Info("Using Redis store", zap.String("addr", c.config.RedisAddr))
	default:
		client, err := storage.NewDynamoClient(ctx, c.config)
		if err != nil {
			return fmt.Errorf("failed to create DynamoDB client: %w", err)
		}
		c.store = storage.NewDynamoStore(client, storage.DynamoTable{
			Name:       c.config.Table,
			SKUIndex:   c.config.SKUIndex,
			TitleIndex: c.config.TitleIndex,
			PingURL:    storage.DynamoPingURL(c.config),
		}, &http.Client{Timeout: config.ReadinessTimeout}, c.logger)
		c.logger.Info("Using DynamoDB store",
			zap.String("region", c.config.Region),
			zap.String("endpoint", c.config.DynamoDBEndpoint()),
			zap.String("table", c.config.Table),
		)
	}
	return nil
}

func (c *Container) setupPipeline() error {
	encoder, err := schemaregistry.NewEncoder(
		schemaregistry.NewClient(c.config.SchemaRegistryEndpoint),
		inventory.RecordSchema,
	)
	if err != nil {
		return fmt.Errorf("failed to build Avro encoder: %w", err)
	}

	publisher := inventory.NewEventPublisher(
		encoder,
		kafka.NewWriterFactory(c.config.KafkaEndpoint, c.sdk.TracerProvider),
		c.config.FailOnDisconnect,
		c.logger,
		c.tracer,
		c.metrics,
	)

	c.service = inventory.NewService(c.store, publisher, inventory.Settings{
		Topic:            c.config.InventoryUpdatedTopic,
		DefaultAffixSide: c.config.CurrencyAffixSide,
	}, c.logger, c.tracer, c.metrics)

	c.probe = health.NewProbe(c.store, c.config.SchemaRegistryEndpoint, http.DefaultClient, config.ReadinessTimeout, c.logger)

	c.logger.Info("Inventory pipeline ready",
		zap.String("kafka", c.config.KafkaEndpoint),
		zap.String("schema_registry", c.config.SchemaRegistryEndpoint),
		zap.String("topic", c.config.InventoryUpdatedTopic),
		zap.Bool("fail_on_disconnect", c.config.FailOnDisconnect),
	)
	return nil
}

func (c *Container) setupServer() {
	handler := httpapi.NewHandler(c.service, c.probe, c.metrics, c.metrics.Handler(), c.logger)
	c.server = httpapi.NewServer(c.config.Addr(), handler, c.sdk.TracerProvider, c.logger)
}

// Shutdown closes store clients and flushes telemetry
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down infrastructure...")

	var errs error
	for _, closeFn := range c.closers {
		errs = errors.Join(errs, closeFn())
	}
	if c.sdk != nil {
		if err := c.sdk.Shutdown(ctx); err != nil {
			c.logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			errs = errors.Join(errs, err)
		}
	}

	c.logger.Info("Infrastructure shutdown complete")
	// Sync on stdout returns EINVAL on some platforms
	_ = c.logger.Sync()
	return errs
}

func (c *Container) Config() *config.Config       { return c.config }
func (c *Container) Logger() observability.Logger { return c.logger }
func (c *Container) Server() *httpapi.Server      { return c.server }
