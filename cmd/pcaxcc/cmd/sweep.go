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
	"io"
	"math"
	"os"

	"github.com/eclesh/welford"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eaydin/pcaxcc/config"
	"github.com/eaydin/pcaxcc/stats"
	"github.com/eaydin/pcaxcc/xcc"
)

// maxSweepRows keeps a mistyped step from flooding the terminal
const maxSweepRows = 100000

var (
	sweepStartFlag float64
	sweepStopFlag  float64
	sweepStepFlag  float64
)

func init() {
	RootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().Float64VarP(&sweepStartFlag, "start", "s", 0, "first MET, seconds")
	sweepCmd.Flags().Float64VarP(&sweepStopFlag, "stop", "e", 0, "last MET, seconds (inclusive)")
	sweepCmd.Flags().Float64VarP(&sweepStepFlag, "step", "d", xcc.SecondsPerDay, "MET step, seconds")
}

type sweepSummary struct {
	rows     int
	found    int
	mean     float64
	stddev   float64
	min, max float64
}

func sweepMETs(start, stop, step float64) ([]float64, error) {
	for _, v := range []float64{start, stop, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("start, stop and step must be finite, got %v, %v, %v", start, stop, step)
		}
	}
	if step <= 0 {
		return nil, fmt.Errorf("step must be >0, got %v", step)
	}
	if stop < start {
		return nil, fmt.Errorf("stop %v is before start %v", stop, start)
	}
	// stop-start can overflow to +Inf, and the quotient can exceed int
	steps := math.Floor((stop - start) / step)
	if math.IsInf(steps, 0) || steps >= maxSweepRows {
		return nil, fmt.Errorf("%v rows requested, max is %d", steps+1, maxSweepRows)
	}
	n := int(steps) + 1
	mets := make([]float64, n)
	for i := 0; i < n; i++ {
		mets[i] = start + float64(i)*step
	}
	return mets, nil
}

func sweepRun(w io.Writer, cfg *config.Config, table *xcc.Table, mets []float64, st *stats.Stats) (*sweepSummary, error) {
	evaluator := xcc.NewEvaluator(&cfg.Instruments)
	s := welford.New()
	summary := &sweepSummary{min: math.Inf(1), max: math.Inf(-1)}

	tw := tablewriter.NewWriter(w)
	tw.Header([]string{"met", "days", "timezero", "correction(us)", "pca(us)", "hexte(us)", "segment"})
	for _, met := range mets {
		res, err := evaluator.Evaluate(met, table)
		st.ObserveLookup(res, err)
		if err != nil {
			return nil, fmt.Errorf("MET %v: %w", met, err)
		}
		summary.rows++
		if !res.Found {
			if err := tw.Append([]string{fmt.Sprintf("%.3f", met), "", "", "", "", "", "none"}); err != nil {
				return nil, fmt.Errorf("adding row for MET %v: %w", met, err)
			}
			continue
		}
		summary.found++
		s.Add(res.Correction)
		summary.min = math.Min(summary.min, res.Correction)
		summary.max = math.Max(summary.max, res.Correction)
		row := []string{
			fmt.Sprintf("%.3f", met),
			fmt.Sprintf("%.6f", res.ReducedTime),
			fmt.Sprintf("%v", res.EpochReference),
			fmt.Sprintf("%.3f", res.Correction),
			fmt.Sprintf("%.3f", res.PCAOffset),
			fmt.Sprintf("%.3f", res.HEXTEOffset),
			fmt.Sprintf("line %d", res.Segment.Line),
		}
		if err := tw.Append(row); err != nil {
			return nil, fmt.Errorf("adding row for MET %v: %w", met, err)
		}
	}
	if err := tw.Render(); err != nil {
		return nil, fmt.Errorf("rendering table: %w", err)
	}

	if summary.found == 0 {
		fmt.Fprintf(w, "%d METs, no clock correction applies to any of them\n", summary.rows)
		return summary, nil
	}
	summary.mean = s.Mean()
	if summary.found > 1 {
		summary.stddev = s.Stddev()
	}
	fmt.Fprintf(w, "%d METs, %d corrected: mean %.3f us, stddev %.3f us, min %.3f us, max %.3f us\n",
		summary.rows, summary.found, summary.mean, summary.stddev, summary.min, summary.max)
	return summary, nil
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Tabulate clock corrections over a range of mission elapsed times",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		mets, err := sweepMETs(sweepStartFlag, sweepStopFlag, sweepStepFlag)
		if err != nil {
			log.Fatal(err)
		}
		cfg, err := loadConfig(rootConfigFlag, rootTableFlag)
		if err != nil {
			log.Fatal(err)
		}
		st := stats.New()
		table, err := loadTable(cfg, st)
		if err != nil {
			log.Fatal(err)
		}
		_, err = sweepRun(os.Stdout, cfg, table, mets, st)
		writeMetrics(cfg, st)
		if err != nil {
			log.Fatal(err)
		}
	},
}
