package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qj0r9j0vc2/alert-insights/internal/app"
)

var digestOpts struct {
	account  int64
	duration string
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Post the alert quality scorecard of an account to Slack.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDigest(cmd.OutOrStdout(), digestOpts.account, digestOpts.duration)
	},
}

func init() {
	digestCmd.Flags().Int64Var(&digestOpts.account, "account", 0, "account id")
	digestCmd.Flags().StringVar(&digestOpts.duration, "duration", "", "trailing window, e.g. 1h or 7d (default views.default_duration)")
}

func runDigest(out io.Writer, account int64, rawDuration string) error {
	if account <= 0 {
		return &exitError{code: 2, err: errors.New("--account is required")}
	}
	duration, err := parseDurationFlag(rawDuration)
	if err != nil {
		return &exitError{code: 2, err: err}
	}

	application, err := app.New(resolveConfigPath(), app.WithLogOutput(os.Stderr))
	if err != nil {
		return err
	}
	defer application.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := application.Digest(ctx, account, duration)
	if err != nil {
		return err
	}
	return printJSON(out, result)
}
