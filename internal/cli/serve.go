package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hrms/internal/app/server"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduler",
		Long: `Run the HTTP API, the SPA and the payroll scheduler.

Migrations and seed data are applied first unless RUN_MIGRATIONS or
RUN_SEED are false. SIGINT and SIGTERM shut the server down gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := server.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Run(ctx)
		},
	}
}

// background is the context used when cobra was executed without one.
func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
