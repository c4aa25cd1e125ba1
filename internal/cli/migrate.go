package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hrms/internal/domain/auth"
	"hrms/internal/platform/db"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := background(cmd)
			pool, err := db.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := db.Migrate(ctx, pool, dir, logger); err != nil {
				return err
			}
			logger.Info("migrations applied", zap.String("dir", dir))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (default MIGRATIONS_DIR)")
	return cmd
}

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install default roles, resources and the admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := background(cmd)
			pool, err := db.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			return auth.Seed(ctx, pool, cfg, logger)
		},
	}
}
