package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/scrapmetrics/internal/config"
	"github.com/JaimeStill/scrapmetrics/internal/dashboard"
	"github.com/JaimeStill/scrapmetrics/internal/period"
	"github.com/JaimeStill/scrapmetrics/internal/records"
)

type options struct {
	csv     string
	period  string
	ref     string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "scrapctl",
		Short:         "Scrap rate metrics from a ledger CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(config.DotEnvFile)
		},
	}

	root.PersistentFlags().StringVar(&opts.csv, "csv", "", "Ledger CSV file")
	root.PersistentFlags().StringVar(&opts.period, "period", "last", "Period (last, week:W:Y, month:M:Y, quarter:Q:Y, year:Y, custom:START:END)")
	root.PersistentFlags().StringVar(&opts.ref, "ref", "", "Reference date YYYY-MM-DD (default today)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newSnapshotCmd(opts),
		newReportCmd(opts),
		newTopCmd(opts),
		newValidateCmd(opts),
		newResolveCmd(opts),
	)

	return root
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (o *options) spec() (period.Spec, error) {
	return period.Parse(o.period)
}

func (o *options) refTime() (time.Time, error) {
	if o.ref == "" {
		return period.Day(time.Now()), nil
	}
	t, err := time.Parse(period.DateLayout, o.ref)
	if err != nil {
		return time.Time{}, &period.InvalidPeriodError{
			Field:  "ref",
			Value:  o.ref,
			Reason: "is not a YYYY-MM-DD date",
		}
	}
	return t, nil
}

func (o *options) loader() (records.CSVLoader, error) {
	if o.csv == "" {
		return records.CSVLoader{}, errMissingCSV
	}
	return records.CSVLoader{Path: o.csv}, nil
}

// dashboard builds a dashboard over the CSV using metrics and dashboard
// settings from the environment.
func (o *options) dashboard(cmd *cobra.Command) (dashboard.System, error) {
	loader, err := o.loader()
	if err != nil {
		return nil, err
	}

	var mc config.MetricsConfig
	if err := mc.Finalize(); err != nil {
		return nil, err
	}
	var dc config.DashboardConfig
	if err := dc.Finalize(); err != nil {
		return nil, err
	}

	logger := o.logger(cmd)
	source := records.NewSource(loader, logger)
	return dashboard.New(source, mc.Value(), dc.Options(), logger), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
