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

package xcc

import (
	"errors"
	"fmt"
)

// ErrTableUnreadable is returned when the calibration table can't be opened or read
var ErrTableUnreadable = errors.New("calibration table unreadable")

var errFieldCount = errors.New("expected 4 fields")

// MalformedRecordError describes a table line which doesn't parse into a Record.
// It is not fatal: the line is skipped and scanning goes on.
type MalformedRecordError struct {
	Line int
	Text string
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("line %d: malformed record %q: %v", e.Line, e.Text, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// MissingEpochMarkerError is returned when a polynomial segment is reached
// before any epoch marker was seen
type MissingEpochMarkerError struct {
	Line int
}

func (e *MissingEpochMarkerError) Error() string {
	return fmt.Sprintf("line %d: polynomial segment before any epoch marker", e.Line)
}
