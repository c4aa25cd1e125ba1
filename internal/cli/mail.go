package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hrms/internal/platform/email"
)

func NewMailCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Check outgoing mail settings",
	}
	cmd.AddCommand(newMailTestCommand(rootOpts))
	return cmd
}

func newMailTestCommand(rootOpts *RootOptions) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Send a plain text message through the configured SMTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if !cfg.EmailEnabled {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "EMAIL_ENABLED is false; nothing sent")
				return err
			}
			renderer, err := email.NewRenderer()
			if err != nil {
				return err
			}
			sender := email.NewSender(email.NewMailer(cfg), renderer, cfg.EmailFrom, 1, logger, nil)
			body := fmt.Sprintf("Test message from hrms sent at %s via %s:%d.",
				time.Now().Format(time.RFC3339), cfg.SMTPHost, cfg.SMTPPort)
			if err := sender.SendText(background(cmd), to, "hrms mail test", body); err != nil {
				return fmt.Errorf("send test mail: %w", err)
			}
			logger.Info("test mail sent", zap.String("to", to))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "sent to %s\n", to)
			return err
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient address")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
