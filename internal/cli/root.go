package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hrms/internal/platform/config"
	"hrms/internal/platform/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	LogLevel   string
}

// NewRootCommand creates the hrms command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "hrms",
		Short:         "HR management server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.ConfigFile != "" {
				return os.Setenv("CONFIG_FILE", opts.ConfigFile)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to a YAML config file (default ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override LOG_LEVEL")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewPayrollCommand(opts))
	cmd.AddCommand(NewMailCommand(opts))

	return cmd
}

// bootstrap loads and validates the configuration and builds the logger.
// The logger also replaces zap's global so package-level logging agrees.
func bootstrap(opts *RootOptions) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid config: %w", err)
	}
	logger, err := logging.New(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	zap.ReplaceGlobals(logger)
	return cfg, logger, nil
}
