package cli

import (
	"github.com/spf13/cobra"

	"booklake/internal/app"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations to the configured warehouse",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}

			// Opening the executor applies migrations for either backend.
			_, closer, err := app.OpenExecutor(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer() //nolint:errcheck
			}

			logger.Info("migrations applied")
			return nil
		},
	}
}
