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
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eaydin/pcaxcc/stats"
	"github.com/eaydin/pcaxcc/xcc"
)

var tableDumpFlag bool

func init() {
	RootCmd.AddCommand(tableCmd)
	tableCmd.Flags().BoolVarP(&tableDumpFlag, "dump", "d", false, "dump raw parsed records instead of a table")
}

func recordRow(r xcc.Record) []string {
	switch {
	case r.IsTerminator():
		return []string{fmt.Sprint(r.Line), "terminator", "", "", "", ""}
	case r.IsEpochMarker():
		return []string{fmt.Sprint(r.Line), "epoch", fmt.Sprintf("subday %v", r.SubdayOffset()), fmt.Sprintf("timezero %v", r.EpochReference()), "", ""}
	}
	return []string{
		fmt.Sprint(r.Line),
		"segment",
		fmt.Sprint(r.Coeff0),
		fmt.Sprint(r.Coeff1),
		fmt.Sprint(r.Coeff2),
		fmt.Sprintf("< %v", r.SegmentEnd),
	}
}

func tableRun(w io.Writer, table *xcc.Table, dump bool) error {
	markers, segments := table.Markers()
	fmt.Fprintf(w, "%s: %d records (%d epoch markers, %d segments), xxhash %016x\n", table.Source, len(table.Records), markers, segments, table.Checksum)
	if dump {
		spew.Fdump(w, table.Records)
		return nil
	}
	tw := tablewriter.NewWriter(w)
	tw.Header([]string{"line", "kind", "c0", "c1", "c2", "days"})
	for _, r := range table.Records {
		if err := tw.Append(recordRow(r)); err != nil {
			return fmt.Errorf("adding row for line %d: %w", r.Line, err)
		}
	}
	if err := tw.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	return nil
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print parsed calibration table",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		cfg, err := loadConfig(rootConfigFlag, rootTableFlag)
		if err != nil {
			log.Fatal(err)
		}
		table, err := loadTable(cfg, stats.New())
		if err != nil {
			log.Fatal(err)
		}
		if err := tableRun(os.Stdout, table, tableDumpFlag); err != nil {
			log.Fatal(err)
		}
	},
}
