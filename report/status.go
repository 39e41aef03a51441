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
	"fmt"
	"math"

	"github.com/fatih/color"
	"golang.org/x/exp/constraints"
)

// Status is a verdict of a threshold check
type Status int

// possible check results
const (
	OK Status = iota
	WARN
	FAIL
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case WARN:
		return "WARN"
	case FAIL:
		return "FAIL"
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

func (s Status) paint(format string, a ...any) string {
	switch s {
	case OK:
		return color.GreenString(format, a...)
	case WARN:
		return color.YellowString(format, a...)
	case FAIL:
		return color.RedString(format, a...)
	}
	return fmt.Sprintf(format, a...)
}

// Colored returns the status in a terminal-friendly form
func (s Status) Colored() string {
	switch s {
	case OK:
		return s.paint("[ OK ]")
	case WARN:
		return s.paint("[WARN]")
	case FAIL:
		return s.paint("[FAIL]")
	}
	return s.String()
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// grade returns FAIL above fail limit, WARN above warn limit, OK otherwise
func grade[T constraints.Ordered](value, warn, fail T) Status {
	switch {
	case value > fail:
		return FAIL
	case value > warn:
		return WARN
	}
	return OK
}

// checkTimeZeroDiff grades recorded TIMEZERO against the calculated one.
// diffUS is signed, limits apply to its magnitude.
func checkTimeZeroDiff(diffUS, warnUS, failUS float64) (Status, string) {
	st := grade(math.Abs(diffUS), warnUS, failUS)
	msg := fmt.Sprintf("recorded TIMEZERO is %s microseconds off the calculated one, expected within %s",
		st.paint("%s", num(diffUS)), color.BlueString("%s", num(warnUS)))
	if st == FAIL {
		msg += fmt.Sprintf(" (fail limit %s)", num(failUS))
	}
	return st, msg
}
