// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kriete/station-series/internal/httputil"
	"github.com/kriete/station-series/internal/pipeline"
	"github.com/kriete/station-series/internal/secrets"
	"github.com/kriete/station-series/internal/store"
	"github.com/kriete/station-series/pkg/types"
)

// setDefaults registers the values used when neither the config file, the
// environment nor a flag sets a key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("layout", string(types.LayoutSingle))
	v.SetDefault("http.user_agent", types.DefaultUserAgent)
	v.SetDefault("http.timeout", 0)
	v.SetDefault("http.requests_per_second", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("store.path", store.DefaultPath)
}

// queryFlags maps command-line flags to viper keys for the commands that
// take a station query.
var queryFlags = map[string]string{
	"base-url":    "base_url",
	"stations":    "stations",
	"start-year":  "start_year",
	"end-year":    "end_year",
	"start-month": "start_month",
	"end-month":   "end_month",
	"variable":    "variable",
	"qc":          "qc",
	"layout":      "layout",
}

// addQueryFlags registers the station query flags on fs.
func addQueryFlags(fs *pflag.FlagSet) {
	fs.String("base-url", "", "top-level catalog page listing the stations")
	fs.String("stations", "", "comma-separated station names (default: all stations)")
	fs.Int("start-year", 0, "first year of the window")
	fs.Int("end-year", 0, "last year of the window")
	fs.Int("start-month", 1, "first month of the window (1-12)")
	fs.Int("end-month", 12, "last month of the window (1-12)")
	fs.String("variable", "", "variable to read, e.g. AIR_TEM")
	fs.Bool("qc", false, "drop samples whose QC_<variable> flag is not good")
	fs.String("layout", "", "catalog layout: single or multi")
}

// bindQueryFlags binds cmd's query flags to viper. Binding happens at run
// time because several commands share the same keys.
func bindQueryFlags(cmd *cobra.Command) error {
	for flag, key := range queryFlags {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig assembles the run configuration from viper and the loaded
// secrets.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	if err := bindQueryFlags(cmd); err != nil {
		return types.Config{}, err
	}

	var stations []string
	for _, s := range viper.GetStringSlice("stations") {
		stations = append(stations, types.ParseStationList(s)...)
	}

	cfg := types.Config{
		Query: types.StationQuery{
			BaseURL:    viper.GetString("base_url"),
			Stations:   stations,
			StartYear:  viper.GetInt("start_year"),
			EndYear:    viper.GetInt("end_year"),
			StartMonth: viper.GetInt("start_month"),
			EndMonth:   viper.GetInt("end_month"),
			Variable:   viper.GetString("variable"),
			QC:         viper.GetBool("qc"),
			Layout:     types.Layout(viper.GetString("layout")),
		},
		Catalog: types.CatalogConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:           viper.GetDuration("http.timeout"),
				UserAgent:         viper.GetString("http.user_agent"),
				RequestsPerSecond: viper.GetFloat64("http.requests_per_second"),
			},
		},
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
		Store: types.StoreConfig{
			Path: viper.GetString("store.path"),
		},
	}
	if cfg.Query.EndYear == 0 {
		cfg.Query.EndYear = cfg.Query.StartYear
	}
	if secrets.ApplyHTTP(loadedSecrets, &cfg.Catalog.HTTPConfig) {
		logger.Debug("using basic auth for catalog requests")
	}

	return cfg, cfg.Query.Validate()
}

// newPipeline wires a pipeline for cfg using the shared logger.
func newPipeline(cfg types.Config) *pipeline.Pipeline {
	client := httputil.NewClient(&http.Client{}, cfg.Catalog.HTTPConfig)
	return pipeline.New(client, cfg.Catalog, logger)
}
