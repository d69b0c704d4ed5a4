package cli

import (
	"fmt"

	"inventoryapi/internal/config"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the service version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", config.ServiceName, config.ServiceVersion, commit)
			return nil
		},
	}
}
