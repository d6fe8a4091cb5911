// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the station-series CLI. It resolves
// monthly dataset links from a THREDDS catalog, reads one variable from
// every dataset that exists and assembles a single time-sorted series.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kriete/station-series/internal/logging"
	"github.com/kriete/station-series/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// logger is built from log.level and log.format before any subcommand runs.
	logger = logging.Discard()

	// loadedSecrets holds credentials read from .secrets/ at startup.
	loadedSecrets map[string]string
)

// rootCmd is the base command for the station-series CLI.
var rootCmd = &cobra.Command{
	Use:   "station-series",
	Short: "Assemble station time series from a THREDDS catalog",
	Long: `station-series walks a THREDDS catalog of monitoring stations, synthesizes
the monthly OPeNDAP URLs of every deployment, reads one variable from each
dataset that exists and merges the results into one time-sorted series.

Missing months and deployments are expected and skipped. Progress goes to
stderr as structured logs; results go to stdout.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(logging.Options{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
			Output: cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		logger = l
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", "path", f)
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./station-series.yaml or ~/.config/station-series/config.yaml)")
	pf.String("secrets-dir", secrets.DefaultDir, "directory of credential files")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text, json, auto")

	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", pf.Lookup("log-format"))
}

func initConfig() {
	_ = godotenv.Load() // a missing .env is fine

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("station-series")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "station-series"))
		}
	}

	viper.SetEnvPrefix("STATION_SERIES")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
