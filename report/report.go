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

// Package report combines a FITS header with a clock correction into MJD and UTC
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/eaydin/pcaxcc/config"
	"github.com/eaydin/pcaxcc/fitshdr"
	"github.com/eaydin/pcaxcc/leapsec"
	"github.com/eaydin/pcaxcc/mjd"
	"github.com/eaydin/pcaxcc/xcc"
)

// Options control how corrections are composed into dates
type Options struct {
	FineClockUnit string
	UTC           string
	Leaps         *leapsec.Table
	DiffWarnUS    float64
	DiffFailUS    float64
}

// OptionsFromConfig builds Options from Config, loading leap seconds if needed
func OptionsFromConfig(c *config.Config) Options {
	o := Options{
		FineClockUnit: c.FineClockUnit,
		UTC:           c.UTC,
		DiffWarnUS:    c.DiffWarnUS,
		DiffFailUS:    c.DiffFailUS,
	}
	if c.UTC == config.UTCLeapSeconds {
		o.Leaps = leapsec.Load(c.LeapFile)
	}
	return o
}

// Report is everything we print for one data file
type Report struct {
	Path          string    `json:"path"`
	Object        string    `json:"object"`
	DateObs       string    `json:"date_obs"`
	MJDRefI       float64   `json:"mjdrefi"`
	MJDRefF       float64   `json:"mjdreff"`
	MET           float64   `json:"met"`
	Table         string    `json:"table"`
	TableChecksum string    `json:"table_xxhash"`
	Found         bool      `json:"correction_found"`
	TimeZero      *float64  `json:"timezero,omitempty"`
	TimeZeroCalc  float64   `json:"timezero_calculated"`
	TimeZeroDiff  *float64  `json:"timezero_diff_us,omitempty"`
	DiffStatus    *Status   `json:"timezero_diff_status,omitempty"`
	PCAFineClock  float64   `json:"pca_fineclock_us"`
	HEXTEFineClk  float64   `json:"hexte_fineclock_us"`
	MJDTT         float64   `json:"mjd_tt"`
	UTC           time.Time `json:"utc"`
}

// Build computes Report for header hdr and lookup result res from table
func Build(hdr *fitshdr.Header, table *xcc.Table, res *xcc.Result, opts Options) *Report {
	r := &Report{
		Path:          hdr.Path,
		Object:        hdr.Object,
		DateObs:       hdr.DateObs,
		MJDRefI:       hdr.MJDRefI,
		MJDRefF:       hdr.MJDRefF,
		MET:           hdr.TStart,
		Table:         table.Source,
		TableChecksum: fmt.Sprintf("%016x", table.Checksum),
		Found:         res.Found,
		TimeZeroCalc:  res.EpochReference,
		PCAFineClock:  res.PCAOffset,
		HEXTEFineClk:  res.HEXTEOffset,
	}
	if r.Path != "" {
		if abs, err := filepath.Abs(r.Path); err == nil {
			r.Path = abs
		}
	}
	if !res.Found {
		log.Warningf("%s: no clock correction applies to MET %f", hdr.Path, hdr.TStart)
	}

	timezero := res.EpochReference
	if hdr.TimeZero != nil {
		timezero = *hdr.TimeZero
		tz := *hdr.TimeZero
		diff := (tz - res.EpochReference) * 1e6
		st, msg := checkTimeZeroDiff(diff, opts.DiffWarnUS, opts.DiffFailUS)
		if st != OK {
			log.Warningf("%s: %s", hdr.Path, msg)
		}
		r.TimeZero = &tz
		r.TimeZeroDiff = &diff
		r.DiffStatus = &st
	}
	fineclock := res.PCAOffset
	if opts.FineClockUnit == config.FineClockMicroseconds {
		fineclock /= 1e6
	}
	r.MJDTT = mjd.Compose(hdr.MJDRefI, hdr.MJDRefF, hdr.TStart, timezero, fineclock)
	if opts.UTC == config.UTCLeapSeconds && opts.Leaps != nil {
		r.UTC = mjd.TTToUTC(r.MJDTT, opts.Leaps)
	} else {
		r.UTC = mjd.ToTime(r.MJDTT)
	}
	return r
}

const labelWidth = 21

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func line(w io.Writer, label string, value any) {
	if f, ok := value.(float64); ok {
		value = num(f)
	}
	fmt.Fprintf(w, "%-*s: %v\n", labelWidth, label, value)
}

// Write prints r in human readable form
func Write(w io.Writer, r *Report) {
	line(w, "FILE PATH", r.Path)
	line(w, "OBJECT", r.Object)
	line(w, "DATE", r.DateObs)
	line(w, "MJDREFI", r.MJDRefI)
	line(w, "MJDREFF", r.MJDRefF)
	line(w, "MET", r.MET)
	line(w, "TABLE", fmt.Sprintf("%s (xxhash %s)", r.Table, r.TableChecksum))
	if r.TimeZero != nil {
		line(w, "TIMEZERO", *r.TimeZero)
		line(w, "TIMEZERO (Calculated)", r.TimeZeroCalc)
		line(w, "TIMEZERO (Diff)", fmt.Sprintf("%s microseconds %s", num(*r.TimeZeroDiff), r.DiffStatus.Colored()))
	} else {
		line(w, "TIMEZERO (Calculated)", r.TimeZeroCalc)
	}
	line(w, "PCA Fineclock", r.PCAFineClock)
	line(w, "HEXTE Fineclock", r.HEXTEFineClk)
	fmt.Fprintln(w, strings.Repeat("-", labelWidth+1))
	line(w, "MJD [TT]", r.MJDTT)
	line(w, "UTC", mjd.Format(r.UTC))
}

// WriteJSON prints reports as a json list
func WriteJSON(w io.Writer, reports []*Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("marshaling json: %w", err)
	}
	return nil
}
