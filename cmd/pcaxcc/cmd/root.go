/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eaydin/pcaxcc/config"
	"github.com/eaydin/pcaxcc/stats"
	"github.com/eaydin/pcaxcc/xcc"
)

// RootCmd is a main entry point. It's exported so pcaxcc could be easily extended without touching core functionality.
var RootCmd = &cobra.Command{
	Use:   "pcaxcc",
	Short: "RXTE clock correction and MET to UTC conversion",
}

// flags
var (
	rootVerboseFlag bool
	rootConfigFlag  string
	rootTableFlag   string
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&rootVerboseFlag, "verbose", "v", false, "verbose output")
	RootCmd.PersistentFlags().StringVarP(&rootConfigFlag, "config", "c", "", "path to yaml config file")
	RootCmd.PersistentFlags().StringVarP(&rootTableFlag, "table", "t", "", fmt.Sprintf("calibration table, overrides config (default %q)", xcc.DefaultTablePath))
}

// ConfigureVerbosity configures log verbosity based on parsed flags. Needs to be called by any subcommand.
func ConfigureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if rootVerboseFlag {
		log.SetLevel(log.DebugLevel)
	}
}

// loadConfig reads config file if given and applies root flags on top of it
func loadConfig(configPath, tablePath string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.ReadConfig(configPath); err != nil {
			return nil, err
		}
	}
	if tablePath != "" {
		cfg.Table = tablePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadTable reads calibration table and records its stats
func loadTable(cfg *config.Config, st *stats.Stats) (*xcc.Table, error) {
	table, warnings, err := xcc.LoadTable(cfg.Table)
	if err != nil {
		return nil, err
	}
	st.ObserveTable(table, len(warnings))
	return table, nil
}

// writeMetrics dumps run metrics if configured to
func writeMetrics(cfg *config.Config, st *stats.Stats) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := st.WriteTextfile(cfg.MetricsFile); err != nil {
		log.Errorf("writing metrics to %s: %v", cfg.MetricsFile, err)
	}
}

// Execute is the main entry point for CLI interface
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
