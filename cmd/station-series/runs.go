// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kriete/station-series/internal/assemble"
	"github.com/kriete/station-series/internal/store"
	"github.com/kriete/station-series/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect series runs saved with series --save",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *store.Store) error {
			runs, err := st.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			jsonOutput, _ := cmd.Flags().GetBool("json")
			return formatRuns(cmd.OutOrStdout(), runs, jsonOutput)
		})
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved run, optionally exporting it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *store.Store) error {
			run, err := st.LoadRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if path, _ := cmd.Flags().GetString("output"); path != "" {
				if err := store.Export(path, run.Document()); err != nil {
					return err
				}
				fmt.Fprintf(out, "Exported to %s\n", path)
				return nil
			}
			return formatRun(out, run)
		})
	},
}

func init() {
	runsListCmd.Flags().Bool("json", false, "output runs as JSON")
	runsShowCmd.Flags().StringP("output", "o", "", "export the run to a .json or .yaml file")

	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func withStore(cmd *cobra.Command, fn func(*store.Store) error) error {
	st, err := store.Open(types.StoreConfig{Path: viper.GetString("store.path")})
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func formatRuns(w io.Writer, runs []store.Run, jsonOutput bool) error {
	if jsonOutput {
		if runs == nil {
			runs = []store.Run{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No saved runs.")
		return nil
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.ID,
			r.CreatedAt.Local().Format(time.DateTime),
			r.Metadata.Variable,
			r.Metadata.Title,
			strconv.Itoa(r.Samples),
		}
	}
	fmt.Fprint(w, renderTable([]string{"ID", "Created", "Variable", "Title", "Samples"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight}))
	return nil
}

func formatRun(w io.Writer, run store.StoredRun) error {
	fmt.Fprintf(w, "Run %s (%s)\n", run.ID, run.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "  title:    %s\n", run.Metadata.Title)
	fmt.Fprintf(w, "  variable: %s %s\n", run.Metadata.Variable, run.Metadata.Units)
	fmt.Fprintf(w, "  stations: %s\n", strings.Join(run.Metadata.Stations, ", "))
	fmt.Fprintf(w, "  qc:       %t\n", run.Metadata.QC)
	fmt.Fprintf(w, "  samples:  %d\n", run.Series.Len())
	if first, last, ok := assemble.Span(run.Series); ok {
		fmt.Fprintf(w, "  span:     %s to %s\n", formatEpoch(first), formatEpoch(last))
	}
	return nil
}
