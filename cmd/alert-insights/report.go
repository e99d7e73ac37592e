package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/qj0r9j0vc2/alert-insights/internal/adapter/handler"
	"github.com/qj0r9j0vc2/alert-insights/internal/app"
)

type reportFlags struct {
	account   int64
	duration  string
	policy    string
	condition string
	filters   []string
	search    string
}

var reportOpts reportFlags

var reportCmd = &cobra.Command{
	Use:       "report <view>",
	Short:     "Print one insight view of an account as JSON.",
	Long:      "Print one insight view of an account as JSON. Views: " + strings.Join(app.ReportViews, ", ") + ".",
	Args:      cobra.ExactArgs(1),
	ValidArgs: app.ReportViews,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd.OutOrStdout(), args[0], reportOpts)
	},
}

func init() {
	f := reportCmd.Flags()
	f.Int64Var(&reportOpts.account, "account", 0, "account id (ignored by overview)")
	f.StringVar(&reportOpts.duration, "duration", "", "trailing window, e.g. 1h or 7d (default views.default_duration)")
	f.StringVar(&reportOpts.policy, "policy", "", "policy id for the conditions view")
	f.StringVar(&reportOpts.condition, "condition", "", "condition id for the timeline view")
	f.StringArrayVar(&reportOpts.filters, "filter", nil, "incident filter key=value, repeatable")
	f.StringVar(&reportOpts.search, "search", "", "keep incident rows whose policy or condition contains this text")
}

func runReport(out io.Writer, view string, flags reportFlags) error {
	if view != "overview" && flags.account <= 0 {
		return &exitError{code: 2, err: errors.New("--account is required")}
	}
	duration, err := parseDurationFlag(flags.duration)
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

	body, err := application.Report(ctx, app.ReportOptions{
		View:        view,
		Account:     flags.account,
		Duration:    duration,
		PolicyID:    flags.policy,
		ConditionID: flags.condition,
		Filters:     flags.filters,
		Search:      flags.search,
	})
	if err != nil {
		if errors.Is(err, app.ErrUnknownView) {
			return &exitError{code: 2, err: err}
		}
		return err
	}
	return printJSON(out, body)
}

func parseDurationFlag(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := handler.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("--duration %q: %w", raw, err)
	}
	return d, nil
}

func printJSON(out io.Writer, body any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(body)
}
