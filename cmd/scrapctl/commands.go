package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/scrapmetrics/internal/metrics"
	"github.com/JaimeStill/scrapmetrics/internal/period"
	"github.com/JaimeStill/scrapmetrics/internal/records"
)

var errMissingCSV = errors.New("--csv is required")

func newSnapshotCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the full dashboard snapshot for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := opts.dashboard(cmd)
			if err != nil {
				return err
			}
			spec, err := opts.spec()
			if err != nil {
				return err
			}
			ref, err := opts.refTime()
			if err != nil {
				return err
			}

			snap, err := dash.Snapshot(cmd.Context(), spec, ref)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), snap)
		},
	}
}

func newReportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the KPI and comparison for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := opts.dashboard(cmd)
			if err != nil {
				return err
			}
			spec, err := opts.spec()
			if err != nil {
				return err
			}
			ref, err := opts.refTime()
			if err != nil {
				return err
			}

			report, err := dash.Report(cmd.Context(), spec, ref)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
}

func newTopCmd(opts *options) *cobra.Command {
	var (
		dimension string
		n         int
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank the largest scrap contributors in a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := metrics.ParseDimension(dimension)
			if err != nil {
				return err
			}
			if n < 1 {
				return errors.New("-n must be positive")
			}

			dash, err := opts.dashboard(cmd)
			if err != nil {
				return err
			}
			spec, err := opts.spec()
			if err != nil {
				return err
			}
			ref, err := opts.refTime()
			if err != nil {
				return err
			}

			top, err := dash.Top(cmd.Context(), spec, ref, dim, n)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), top)
		},
	}

	cmd.Flags().StringVar(&dimension, "dimension", string(metrics.DimensionItem), "Grouping dimension (item, location)")
	cmd.Flags().IntVarP(&n, "n", "n", 10, "Number of contributors")

	return cmd
}

type validation struct {
	File    string          `json:"file"`
	Records int             `json:"records"`
	Valid   bool            `json:"valid"`
	Issues  []records.Issue `json:"issues"`
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a ledger CSV and list data quality issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := opts.loader()
			if err != nil {
				return err
			}

			ds, issues, err := loader.LoadWithIssues(cmd.Context())
			if err != nil && !errors.Is(err, records.ErrInvalidImport) {
				return err
			}

			out := validation{
				File:   loader.Path,
				Valid:  !records.HasErrors(issues),
				Issues: issues,
			}
			if out.Issues == nil {
				out.Issues = []records.Issue{}
			}
			if ds != nil {
				out.Records = ds.Len()
			}

			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if !out.Valid {
				return records.ErrInvalidImport
			}
			return nil
		},
	}
}

type resolution struct {
	Fingerprint         string `json:"fingerprint"`
	PreviousFingerprint string `json:"previous_fingerprint"`
	period.Resolution
}

func newResolveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Print the current and previous ranges of a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := opts.spec()
			if err != nil {
				return err
			}
			ref, err := opts.refTime()
			if err != nil {
				return err
			}

			res, err := period.Resolve(spec, ref)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resolution{
				Fingerprint:         res.Spec.Fingerprint(),
				PreviousFingerprint: res.PreviousSpec.Fingerprint(),
				Resolution:          res,
			})
		},
	}
}
