package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"inventoryapi/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var commit = "none"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           config.ServiceName,
		Short:         "Inventory lifecycle HTTP service",
		Long:          "Serves inventory records backed by DynamoDB or Redis and publishes an Avro change event to Kafka on every write and delete.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return loadEnvFile(envFile)
		},
	}
	cmd.PersistentFlags().String("config", "", "optional YAML overlay; environment variables take precedence")
	cmd.PersistentFlags().String("env-file", "", "dotenv file to load; defaults to ./.env when present")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newTailCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func Execute() error {
	return newRootCmd().Execute()
}

// loadEnvFile never overrides variables already set in the environment. An
// explicit path must exist, the default .env may be absent.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}
