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

// Package mjd converts between Modified Julian Dates and calendar time
package mjd

import (
	"math"
	"time"

	"github.com/eaydin/pcaxcc/leapsec"
)

const (
	secondsPerDay = 86400.0
	// TTMinusTAI is the fixed offset between Terrestrial Time and TAI
	TTMinusTAI = 32184 * time.Millisecond
	// ISOFormat is the calendar format used when printing dates
	ISOFormat = "2006-01-02 15:04:05.000"
)

// Epoch is MJD 0
var Epoch = time.Date(1858, time.November, 17, 0, 0, 0, 0, time.UTC)

// Compose returns MJD of an event at met seconds after the mission reference MJD (refI + refF),
// with timezero and fineclock added to met as is
func Compose(refI, refF, met, timezero, fineclock float64) float64 {
	return refI + refF + (met+timezero+fineclock)/secondsPerDay
}

// ToTime converts MJD into time without any change of time scale
func ToTime(mjd float64) time.Time {
	days := math.Floor(mjd)
	ns := math.Round((mjd - days) * secondsPerDay * 1e9)
	return Epoch.AddDate(0, 0, int(days)).Add(time.Duration(ns))
}

// FromTime converts time into MJD without any change of time scale
func FromTime(t time.Time) float64 {
	d := t.UTC().Sub(Epoch)
	days := math.Floor(d.Hours() / 24)
	rest := d - time.Duration(days)*24*time.Hour
	return days + rest.Seconds()/secondsPerDay
}

// TTToUTC converts MJD in Terrestrial Time into UTC using leap seconds from leaps
func TTToUTC(mjdTT float64, leaps *leapsec.Table) time.Time {
	tai := ToTime(mjdTT).Add(-TTMinusTAI)
	utc := tai.Add(-time.Duration(leaps.TAIMinusUTC(tai)) * time.Second)
	// around a leap second the first guess may land on the wrong side of it
	return tai.Add(-time.Duration(leaps.TAIMinusUTC(utc)) * time.Second)
}

// Format prints t in ISOFormat
func Format(t time.Time) string {
	return t.UTC().Format(ISOFormat)
}
