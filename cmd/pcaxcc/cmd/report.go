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
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eaydin/pcaxcc/config"
	"github.com/eaydin/pcaxcc/fitshdr"
	"github.com/eaydin/pcaxcc/report"
	"github.com/eaydin/pcaxcc/stats"
	"github.com/eaydin/pcaxcc/xcc"
)

var (
	reportJSONFlag        bool
	reportWorkersFlag     int
	reportFineClockFlag   string
	reportUTCFlag         string
	reportMetricsFileFlag string
)

func init() {
	RootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolVarP(&reportJSONFlag, "json", "j", false, "produce json output")
	reportCmd.Flags().IntVarP(&reportWorkersFlag, "workers", "w", 0, "files processed concurrently, overrides config")
	reportCmd.Flags().StringVar(&reportFineClockFlag, "fineclock-unit", "", "unit PCA fineclock is added to MET in: s or us, overrides config")
	reportCmd.Flags().StringVar(&reportUTCFlag, "utc", "", "MJD(TT) to UTC conversion: direct or leapseconds, overrides config")
	reportCmd.Flags().StringVar(&reportMetricsFileFlag, "metrics-file", "", "write prometheus metrics to this file, overrides config")
}

// applyReportFlags puts flags which were set on top of cfg
func applyReportFlags(cfg *config.Config) error {
	if reportWorkersFlag > 0 {
		cfg.Workers = reportWorkersFlag
	}
	if reportFineClockFlag != "" {
		cfg.FineClockUnit = reportFineClockFlag
	}
	if reportUTCFlag != "" {
		cfg.UTC = reportUTCFlag
	}
	if reportMetricsFileFlag != "" {
		cfg.MetricsFile = reportMetricsFileFlag
	}
	return cfg.Validate()
}

type fileResult struct {
	report *report.Report
	err    error
}

func processFile(path string, reader fitshdr.Reader, evaluator *xcc.Evaluator, table *xcc.Table, opts report.Options, st *stats.Stats) (*report.Report, error) {
	hdr, err := reader.Read(path)
	if err != nil {
		return nil, err
	}
	res, err := evaluator.Evaluate(hdr.TStart, table)
	st.ObserveLookup(res, err)
	if err != nil {
		return nil, fmt.Errorf("%s: evaluating clock correction: %w", path, err)
	}
	return report.Build(hdr, table, res, opts), nil
}

// reportRun prints reports for all files, keeping their order.
// Files are processed concurrently; failure of one doesn't stop the others.
func reportRun(w io.Writer, cfg *config.Config, reader fitshdr.Reader, table *xcc.Table, files []string, isJSON bool, st *stats.Stats) error {
	// formulas are shared by workers, parse them upfront
	if err := cfg.Instruments.Prepare(); err != nil {
		return err
	}
	evaluator := xcc.NewEvaluator(&cfg.Instruments)
	opts := report.OptionsFromConfig(cfg)
	results := make([]fileResult, len(files))

	eg := new(errgroup.Group)
	eg.SetLimit(cfg.Workers)
	for i, path := range files {
		i, path := i, path
		eg.Go(func() error {
			r, err := processFile(path, reader, evaluator, table, opts, st)
			results[i] = fileResult{report: r, err: err}
			return nil
		})
	}
	_ = eg.Wait()

	var errs []error
	var reports []*report.Report
	for _, res := range results {
		if res.err != nil {
			log.Errorf("%v", res.err)
			errs = append(errs, res.err)
			continue
		}
		reports = append(reports, res.report)
		if isJSON {
			continue
		}
		if len(reports) > 1 {
			fmt.Fprintln(w)
		}
		report.Write(w, res.report)
	}
	if isJSON {
		if err := report.WriteJSON(w, reports); err != nil {
			return err
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d files failed: %w", len(errs), len(files), errors.Join(errs...))
	}
	return nil
}

// reportMain loads the table, reports on files and writes metrics whatever the outcome
func reportMain(w io.Writer, cfg *config.Config, reader fitshdr.Reader, files []string, isJSON bool) error {
	st := stats.New()
	defer writeMetrics(cfg, st)
	table, err := loadTable(cfg, st)
	if err != nil {
		return err
	}
	return reportRun(w, cfg, reader, table, files, isJSON, st)
}

var reportCmd = &cobra.Command{
	Use:   "report FILE...",
	Short: "Print clock correction, MJD(TT) and UTC for FITS files",
	Long:  "Read TSTART, TIMEZERO and MJDREF from primary header of each FITS file, look up clock correction and print the resulting MJD(TT) and UTC.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()
		cfg, err := loadConfig(rootConfigFlag, rootTableFlag)
		if err != nil {
			log.Fatal(err)
		}
		if err := applyReportFlags(cfg); err != nil {
			log.Fatal(err)
		}
		if err := reportMain(os.Stdout, cfg, fitshdr.FileReader{}, args, reportJSONFlag); err != nil {
			log.Fatal(err)
		}
	},
}
