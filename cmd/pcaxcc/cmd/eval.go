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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eaydin/pcaxcc/config"
	"github.com/eaydin/pcaxcc/stats"
	"github.com/eaydin/pcaxcc/xcc"
)

var evalJSONFlag bool

func init() {
	RootCmd.AddCommand(evalCmd)
	evalCmd.Flags().BoolVarP(&evalJSONFlag, "json", "j", false, "produce json output")
}

type evalResult struct {
	MET            float64 `json:"met"`
	Found          bool    `json:"found"`
	EpochReference float64 `json:"timezero"`
	PCAOffset      float64 `json:"pca_us"`
	HEXTEOffset    float64 `json:"hexte_us"`
}

func parseMETs(args []string) ([]float64, error) {
	mets := make([]float64, 0, len(args))
	for _, a := range args {
		met, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing MET %q: %w", a, err)
		}
		mets = append(mets, met)
	}
	return mets, nil
}

func evalRun(w io.Writer, cfg *config.Config, table *xcc.Table, mets []float64, isJSON bool, st *stats.Stats) error {
	evaluator := xcc.NewEvaluator(&cfg.Instruments)
	results := make([]evalResult, 0, len(mets))
	for _, met := range mets {
		res, err := evaluator.Evaluate(met, table)
		st.ObserveLookup(res, err)
		if err != nil {
			return fmt.Errorf("MET %v: %w", met, err)
		}
		results = append(results, evalResult{
			MET:            met,
			Found:          res.Found,
			EpochReference: res.EpochReference,
			PCAOffset:      res.PCAOffset,
			HEXTEOffset:    res.HEXTEOffset,
		})
	}
	if isJSON {
		str, err := json.Marshal(results)
		if err != nil {
			return fmt.Errorf("marshaling json: %w", err)
		}
		fmt.Fprintln(w, string(str))
		return nil
	}
	for _, r := range results {
		if !r.Found {
			log.Warningf("MET %v: no clock correction applies", r.MET)
		}
		fmt.Fprintf(w, "MET: %v TIMEZERO: %v PCA: %v microseconds HEXTE: %v microseconds\n", r.MET, r.EpochReference, r.PCAOffset, r.HEXTEOffset)
	}
	return nil
}

var evalCmd = &cobra.Command{
	Use:   "eval MET...",
	Short: "Print TIMEZERO, PCA and HEXTE clock offsets for mission elapsed times",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()
		mets, err := parseMETs(args)
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
		err = evalRun(os.Stdout, cfg, table, mets, evalJSONFlag, st)
		writeMetrics(cfg, st)
		if err != nil {
			log.Fatal(err)
		}
	},
}
