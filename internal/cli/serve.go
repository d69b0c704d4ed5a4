package cli

import (
	"inventoryapi/internal/app"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			application, err := app.NewApplication(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			return application.Run()
		},
	}
}
