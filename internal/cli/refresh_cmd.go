package cli

import (
	"github.com/spf13/cobra"

	"booklake/internal/app"
	"booklake/internal/loader"
)

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Rebuild the pre-aggregated summary tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}

			exec, closer, err := app.OpenExecutor(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer() //nolint:errcheck
			}

			if err := loader.New(exec, logger).RefreshSummaries(cmd.Context()); err != nil {
				return err
			}
			logger.Info("summary tables refreshed")
			return nil
		},
	}
}
