package cli

import (
	"fmt"

	"inventoryapi/internal/config"
	"inventoryapi/internal/inventory"
	"inventoryapi/internal/platform/kafka"
	"inventoryapi/internal/platform/observability"
	"inventoryapi/internal/platform/schemaregistry"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

func newTailCmd() *cobra.Command {
	var groupID string

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print inventory change events from the configured topic as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger, err := observability.NewBootstrapLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			decoder, err := schemaregistry.NewEncoder(schemaregistry.NewClient(cfg.SchemaRegistryEndpoint), inventory.RecordSchema)
			if err != nil {
				return err
			}
			consumer, err := kafka.NewReader(cfg.KafkaEndpoint, cfg.InventoryUpdatedTopic, groupID, noop.NewTracerProvider())
			if err != nil {
				return fmt.Errorf("failed to create kafka reader: %w", err)
			}
			defer func() {
				if err := consumer.Close(); err != nil {
					logger.Error("Failed to close message consumer", zap.Error(err))
				}
			}()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			return inventory.NewEventTail(consumer, decoder, cmd.OutOrStdout(), logger).Start(ctx)
		},
	}
	cmd.Flags().StringVar(&groupID, "group", "inventory-tail", "consumer group id")
	return cmd
}
