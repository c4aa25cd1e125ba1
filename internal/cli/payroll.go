package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"hrms/internal/app/server"
	"hrms/internal/domain/payroll"
	"hrms/internal/platform/jobs"
)

func NewPayrollCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Run payroll batch operations",
	}
	cmd.AddCommand(newPayrollGenerateCommand(rootOpts))
	cmd.AddCommand(newPayrollNotifyCommand(rootOpts))
	return cmd
}

func newPayrollGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create DRAFT ledgers for every active employee",
		Long: `Create a DRAFT ledger for every ACTIVE employee that has none for the
period. Runs under the same lock as the scheduled job.

Example:
  hrms payroll generate --period 2024-03`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *server.App) (any, error) {
				if period == "" {
					return app.Jobs.RunNow(ctx, jobs.JobPayrollGenerate, func(ctx context.Context) (any, error) {
						return app.Payroll.GenerateCurrentPeriod(ctx)
					})
				}
				if _, err := payroll.ParsePeriod(period); err != nil {
					return nil, err
				}
				return app.Jobs.RunNow(ctx, jobs.JobPayrollGenerate, func(ctx context.Context) (any, error) {
					return app.Payroll.GenerateForPeriod(ctx, period)
				})
			})
		},
	}
	cmd.Flags().StringVar(&period, "period", "", "pay period YYYY-MM (default current month)")
	return cmd
}

func newPayrollNotifyCommand(rootOpts *RootOptions) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Email every PAID employee of a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *server.App) (any, error) {
				return app.Payroll.NotifyPaid(ctx, period)
			})
		},
	}
	cmd.Flags().StringVar(&period, "period", "", "pay period YYYY-MM")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

// withApp builds the application, runs fn and prints its result as JSON.
func withApp(cmd *cobra.Command, rootOpts *RootOptions, fn func(context.Context, *server.App) (any, error)) error {
	cfg, logger, err := bootstrap(rootOpts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := background(cmd)
	app, err := server.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := fn(ctx, app)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
