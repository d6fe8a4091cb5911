// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kriete/station-series/pkg/types"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "List candidate dataset URLs without fetching them",
	Long: `Links walks the catalog for the query window and prints every synthesized
dataset URL, including all deployment (and, for the multi layout,
instrument) variants. No dataset is opened, so most listed URLs may not
exist.`,
	RunE: runLinks,
}

func init() {
	addQueryFlags(linksCmd.Flags())
	linksCmd.Flags().Bool("json", false, "output links as JSON")

	rootCmd.AddCommand(linksCmd)
}

func runLinks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	links, err := newPipeline(cfg).Links(cmd.Context(), cfg.Query)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatLinks(cmd.OutOrStdout(), links, jsonOutput)
}

func formatLinks(w io.Writer, links []types.CandidateLink, jsonOutput bool) error {
	if jsonOutput {
		if links == nil {
			links = []types.CandidateLink{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(links)
	}

	if len(links) == 0 {
		fmt.Fprintln(w, "No candidate links.")
		return nil
	}

	rows := make([][]string, len(links))
	for i, l := range links {
		dep := "-"
		if l.Deployment > 0 {
			dep = strconv.Itoa(l.Deployment)
		}
		rows[i] = []string{l.Station, fmt.Sprintf("%04d-%02d", l.Year, l.Month), dep, l.URL}
	}
	fmt.Fprint(w, renderTable([]string{"Station", "Month", "Dep", "URL"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	fmt.Fprintf(w, "%d links\n", len(links))
	return nil
}
