// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kriete/station-series/internal/assemble"
	"github.com/kriete/station-series/internal/pipeline"
	"github.com/kriete/station-series/internal/store"
)

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Fetch and assemble a station time series",
	Long: `Series resolves every candidate dataset URL for the query window, reads
the variable (and its QC companion with --qc) from each dataset that exists
and merges the samples into one series sorted by time.

Datasets that do not exist or cannot be reached are skipped. An empty series
is a valid result. Use --output to export and --save to keep the run in the
local store.`,
	RunE: runSeries,
}

func init() {
	addQueryFlags(seriesCmd.Flags())
	seriesCmd.Flags().StringP("output", "o", "", "export the series to a .json or .yaml file")
	seriesCmd.Flags().Bool("save", false, "persist the run to the local store")

	rootCmd.AddCommand(seriesCmd)
}

func runSeries(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	res, err := newPipeline(cfg).Run(cmd.Context(), cfg.Query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSummary(out, res)

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := store.Export(path, store.NewDocument(res.Metadata, res.Series)); err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported to %s\n", path)
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		st, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.SaveRun(cmd.Context(), res.Metadata, res.Series)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved run %s\n", run.ID)
	}
	return nil
}

func printSummary(w io.Writer, res pipeline.Result) {
	s := res.Summary
	fmt.Fprintf(w, "%s\n", res.Metadata.Title)
	fmt.Fprintf(w, "  variable:    %s", res.Metadata.Variable)
	if res.Metadata.Units != "" {
		fmt.Fprintf(w, " [%s]", res.Metadata.Units)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  months:      %d\n", s.Months)
	fmt.Fprintf(w, "  stations:    %d\n", s.Stations)
	fmt.Fprintf(w, "  candidates:  %d\n", s.Candidates)
	fmt.Fprintf(w, "  resolved:    %d (not found %d, unreachable %d, failed %d)\n",
		s.Resolved, s.NotFound, s.Unreachable, s.Failed)
	if s.Samples == 0 {
		fmt.Fprintln(w, "No samples assembled.")
		return
	}
	fmt.Fprintf(w, "  samples:     %d (%d valid)\n", s.Samples, assemble.Valid(res.Series))
	if first, last, ok := assemble.Span(res.Series); ok {
		fmt.Fprintf(w, "  span:        %s to %s\n", formatEpoch(first), formatEpoch(last))
	}
	for _, r := range res.Representatives {
		fmt.Fprintf(w, "  source:      %s %s\n", r.Station, r.URL)
	}
}

func formatEpoch(sec float64) string {
	return time.Unix(int64(sec), 0).UTC().Format(time.RFC3339)
}
