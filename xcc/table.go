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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"
	log "github.com/sirupsen/logrus"
)

// DefaultTablePath is where the calibration table is looked up when nothing else is given
const DefaultTablePath = "tdc.dat"

// Record is a single calibration table entry.
// For epoch markers (SegmentEnd < 0) Coeff0 holds the subday offset and
// Coeff1 the epoch reference, Coeff2 is unused.
type Record struct {
	Coeff0     float64
	Coeff1     float64
	Coeff2     float64
	SegmentEnd float64
	// Line is the 1-based line number in the source table
	Line int
}

// IsEpochMarker tells if record establishes a new epoch instead of describing a polynomial
func (r Record) IsEpochMarker() bool {
	return r.SegmentEnd < 0
}

// SubdayOffset is the fractional-day baseline of an epoch marker
func (r Record) SubdayOffset() float64 {
	return r.Coeff0
}

// EpochReference is the reference time carried by an epoch marker
func (r Record) EpochReference() float64 {
	return r.Coeff1
}

// IsTerminator tells if record is an epoch marker which ends the table
func (r Record) IsTerminator() bool {
	return r.IsEpochMarker() && r.SubdayOffset() < 0
}

// Polynomial evaluates the quadratic of a segment record at reduced time t
func (r Record) Polynomial(t float64) float64 {
	return r.Coeff0 + r.Coeff1*t + r.Coeff2*t*t
}

// Table is an ordered calibration table as read from its source
type Table struct {
	Records []Record
	// Source is a path or other human readable name of the table
	Source string
	// Checksum is xxhash64 of the raw table bytes
	Checksum uint64
}

// Markers returns number of epoch markers and polynomial segments in the table
func (t *Table) Markers() (markers, segments int) {
	for _, r := range t.Records {
		if r.IsEpochMarker() {
			markers++
		} else {
			segments++
		}
	}
	return markers, segments
}

func parseRecord(line string, lineNo int) (Record, *MalformedRecordError) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Record{}, &MalformedRecordError{Line: lineNo, Text: line, Err: fmt.Errorf("%w, got %d", errFieldCount, len(fields))}
	}
	var v [4]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Record{}, &MalformedRecordError{Line: lineNo, Text: line, Err: err}
		}
		v[i] = x
	}
	return Record{Coeff0: v[0], Coeff1: v[1], Coeff2: v[2], SegmentEnd: v[3], Line: lineNo}, nil
}

// ParseTable reads calibration table from r.
// Comments and blank lines are skipped. Lines which fail to parse are
// reported back as warnings and otherwise ignored.
func ParseTable(r io.Reader, source string) (*Table, []*MalformedRecordError, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading %s: %w", ErrTableUnreadable, source, err)
	}
	t := &Table{
		Source:   source,
		Checksum: xxhash.Sum64(data),
	}
	var warnings []*MalformedRecordError
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		rec, merr := parseRecord(line, lineNo)
		if merr != nil {
			log.Warningf("%s: %v, skipping", source, merr)
			warnings = append(warnings, merr)
			continue
		}
		t.Records = append(t.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, warnings, fmt.Errorf("%w: scanning %s: %w", ErrTableUnreadable, source, err)
	}
	log.Debugf("%s: read %d records, checksum %016x", source, len(t.Records), t.Checksum)
	return t, warnings, nil
}

// LoadTable reads calibration table from file at path
func LoadTable(path string) (*Table, []*MalformedRecordError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrTableUnreadable, err)
	}
	defer f.Close()
	return ParseTable(f, path)
}
