package cli

import (
	"fmt"

	"inventoryapi/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Validate the configuration and print the effective values as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if cfg.OtelAuthHeader != "" {
				cfg.OtelAuthHeader = redacted
			}

			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("rendering configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
