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

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/eaydin/pcaxcc/config"
	"github.com/eaydin/pcaxcc/fitshdr"
	"github.com/eaydin/pcaxcc/leapsec"
	"github.com/eaydin/pcaxcc/mjd"
	"github.com/eaydin/pcaxcc/xcc"
)

func init() {
	color.NoColor = true
}

func lookup(t *testing.T, met float64) (*xcc.Table, *xcc.Result) {
	table, _, err := xcc.ParseTable(strings.NewReader("0 100 0 -1\n5 0 0 999999\n"), "tdc.dat")
	require.NoError(t, err)
	res, err := xcc.Evaluate(met, table)
	require.NoError(t, err)
	return table, res
}

func defaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig())
}

func TestBuildCalculatedTimeZero(t *testing.T) {
	hdr := &fitshdr.Header{MJDRefI: 49353, MJDRefF: 0, TStart: 86400, Object: "CRAB"}
	table, res := lookup(t, hdr.TStart)
	r := Build(hdr, table, res, defaultOptions())
	require.True(t, r.Found)
	require.Nil(t, r.TimeZero)
	require.Nil(t, r.DiffStatus)
	require.Equal(t, 100.0, r.TimeZeroCalc)
	require.Equal(t, -11.0, r.PCAFineClock)
	require.Equal(t, 5.0, r.HEXTEFineClk)
	want := 49353 + (86400.0+100-11)/86400
	require.InDelta(t, want, r.MJDTT, 1e-10)
	require.Equal(t, mjd.ToTime(r.MJDTT), r.UTC)
	require.InDelta(t, 0, r.UTC.Sub(time.Date(1994, time.January, 2, 0, 1, 29, 0, time.UTC)).Seconds(), 1e-5)
}

func TestBuildRecordedTimeZero(t *testing.T) {
	tz := 100.00002
	hdr := &fitshdr.Header{MJDRefI: 49353, MJDRefF: 0.5, TStart: 86400, TimeZero: &tz}
	table, res := lookup(t, hdr.TStart)
	r := Build(hdr, table, res, defaultOptions())
	require.NotNil(t, r.TimeZero)
	require.InDelta(t, 20, *r.TimeZeroDiff, 1e-6)
	require.Equal(t, WARN, *r.DiffStatus)
	want := 49353.5 + (86400+tz-11)/86400
	require.InDelta(t, want, r.MJDTT, 1e-10)
}

func TestBuildMicrosecondFineClock(t *testing.T) {
	hdr := &fitshdr.Header{MJDRefI: 49353, TStart: 86400}
	table, res := lookup(t, hdr.TStart)
	opts := defaultOptions()
	opts.FineClockUnit = config.FineClockMicroseconds
	r := Build(hdr, table, res, opts)
	want := 49353 + (86400+100-11e-6)/86400
	require.InDelta(t, want, r.MJDTT, 1e-10)
}

func TestBuildLeapSeconds(t *testing.T) {
	hdr := &fitshdr.Header{MJDRefI: 49353, TStart: 86400}
	table, res := lookup(t, hdr.TStart)
	opts := defaultOptions()
	opts.UTC = config.UTCLeapSeconds
	opts.Leaps = leapsec.Default()
	r := Build(hdr, table, res, opts)
	// TT-UTC was 32.184 + 28 s in January 1994
	direct := mjd.ToTime(r.MJDTT)
	require.InDelta(t, 60.184, direct.Sub(r.UTC).Seconds(), 1e-5)
}

func TestBuildNotFound(t *testing.T) {
	hdr := &fitshdr.Header{MJDRefI: 49353, TStart: 1e12}
	table, res := lookup(t, hdr.TStart)
	r := Build(hdr, table, res, defaultOptions())
	require.False(t, r.Found)
	require.Zero(t, r.TimeZeroCalc)
	require.Zero(t, r.PCAFineClock)
	require.InDelta(t, 49353+1e12/86400, r.MJDTT, 1e-6)
}

func TestWrite(t *testing.T) {
	tz := 100.0
	r := &Report{
		Path:          "/data/obs.fits",
		Object:        "CRAB",
		DateObs:       "1994-01-02",
		MJDRefI:       49353,
		MJDRefF:       0.000696574074,
		MET:           86400,
		Table:         "tdc.dat",
		TableChecksum: "0123456789abcdef",
		Found:         true,
		TimeZero:      &tz,
		TimeZeroCalc:  100,
		PCAFineClock:  -11,
		HEXTEFineClk:  5,
		MJDTT:         49354.5,
		UTC:           time.Date(1994, time.January, 2, 12, 0, 0, 0, time.UTC),
	}
	diff := 0.0
	st := OK
	r.TimeZeroDiff = &diff
	r.DiffStatus = &st
	buf := new(bytes.Buffer)
	Write(buf, r)
	want := `FILE PATH            : /data/obs.fits
OBJECT               : CRAB
DATE                 : 1994-01-02
MJDREFI              : 49353
MJDREFF              : 0.000696574074
MET                  : 86400
TABLE                : tdc.dat (xxhash 0123456789abcdef)
TIMEZERO             : 100
TIMEZERO (Calculated): 100
TIMEZERO (Diff)      : 0 microseconds [ OK ]
PCA Fineclock        : -11
HEXTE Fineclock      : 5
----------------------
MJD [TT]             : 49354.5
UTC                  : 1994-01-02 12:00:00.000
`
	require.Equal(t, want, buf.String())

	r.TimeZero = nil
	buf.Reset()
	Write(buf, r)
	require.NotContains(t, buf.String(), "TIMEZERO (Diff)")
	require.Contains(t, buf.String(), "TIMEZERO (Calculated): 100\n")
}

func TestWriteJSON(t *testing.T) {
	hdr := &fitshdr.Header{MJDRefI: 49353, TStart: 86400}
	tz := 101.0
	hdr.TimeZero = &tz
	table, res := lookup(t, hdr.TStart)
	r := Build(hdr, table, res, defaultOptions())
	require.Equal(t, FAIL, *r.DiffStatus)
	buf := new(bytes.Buffer)
	require.NoError(t, WriteJSON(buf, []*Report{r}))
	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 1)
	require.Equal(t, "FAIL", out[0]["timezero_diff_status"])
	require.Equal(t, true, out[0]["correction_found"])
	require.Equal(t, -11.0, out[0]["pca_fineclock_us"])
}

func TestCheckTimeZeroDiff(t *testing.T) {
	tests := []struct {
		name   string
		diffUS float64
		want   Status
		msg    string
	}{
		{"within", 1.5, OK, "recorded TIMEZERO is 1.5 microseconds off the calculated one, expected within 10"},
		{"negative within", -10, OK, "recorded TIMEZERO is -10 microseconds off the calculated one, expected within 10"},
		{"warn", 50, WARN, "recorded TIMEZERO is 50 microseconds off the calculated one, expected within 10"},
		{"negative warn", -50, WARN, "recorded TIMEZERO is -50 microseconds off the calculated one, expected within 10"},
		{"fail", -101, FAIL, "recorded TIMEZERO is -101 microseconds off the calculated one, expected within 10 (fail limit 100)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, msg := checkTimeZeroDiff(tt.diffUS, 10, 100)
			require.Equal(t, tt.want, st)
			require.Equal(t, tt.msg, msg)
		})
	}
}

func TestGrade(t *testing.T) {
	require.Equal(t, OK, grade(2, 2, 3))
	require.Equal(t, WARN, grade(3, 2, 3))
	require.Equal(t, FAIL, grade(4, 2, 3))
	require.Equal(t, "UNKNOWN(7)", Status(7).String())
	require.Equal(t, "[FAIL]", FAIL.Colored())
}
