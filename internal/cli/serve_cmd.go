package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"booklake/internal/app"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the analytics API and dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}

			exec, closer, err := app.OpenExecutor(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer() //nolint:errcheck
			}

			a, err := app.New(app.Deps{Cfg: cfg, Exec: exec, Logger: logger})
			if err != nil {
				return err
			}

			if err := app.RunServer(ctx, a, cfg, logger); err != nil {
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}
}
