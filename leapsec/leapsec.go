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

// Package leapsec provides TAI-UTC offsets, read from the system timezone
// database or taken from a built-in list
package leapsec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultFile is a tzfile containing leap second information
const DefaultFile = "/usr/share/zoneinfo/right/UTC"

// taiUTCAt1972 is TAI-UTC when leap seconds were introduced
const taiUTCAt1972 = 10

var errBadData = errors.New("malformed time zone information")
var errUnsupportedVersion = errors.New("unsupported version")
var errNoLeapSeconds = errors.New("no leap seconds information found")

// Step is a change of TAI-UTC, effective from Start
type Step struct {
	Start  time.Time
	TAIUTC int
}

// Table is a chronologically ordered list of TAI-UTC steps
type Table struct {
	Steps []Step
}

// builtin is valid until the next leap second gets announced
var builtin = []Step{
	{time.Date(1972, time.January, 1, 0, 0, 0, 0, time.UTC), 10},
	{time.Date(1972, time.July, 1, 0, 0, 0, 0, time.UTC), 11},
	{time.Date(1973, time.January, 1, 0, 0, 0, 0, time.UTC), 12},
	{time.Date(1974, time.January, 1, 0, 0, 0, 0, time.UTC), 13},
	{time.Date(1975, time.January, 1, 0, 0, 0, 0, time.UTC), 14},
	{time.Date(1976, time.January, 1, 0, 0, 0, 0, time.UTC), 15},
	{time.Date(1977, time.January, 1, 0, 0, 0, 0, time.UTC), 16},
	{time.Date(1978, time.January, 1, 0, 0, 0, 0, time.UTC), 17},
	{time.Date(1979, time.January, 1, 0, 0, 0, 0, time.UTC), 18},
	{time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC), 19},
	{time.Date(1981, time.July, 1, 0, 0, 0, 0, time.UTC), 20},
	{time.Date(1982, time.July, 1, 0, 0, 0, 0, time.UTC), 21},
	{time.Date(1983, time.July, 1, 0, 0, 0, 0, time.UTC), 22},
	{time.Date(1985, time.July, 1, 0, 0, 0, 0, time.UTC), 23},
	{time.Date(1988, time.January, 1, 0, 0, 0, 0, time.UTC), 24},
	{time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC), 25},
	{time.Date(1991, time.January, 1, 0, 0, 0, 0, time.UTC), 26},
	{time.Date(1992, time.July, 1, 0, 0, 0, 0, time.UTC), 27},
	{time.Date(1993, time.July, 1, 0, 0, 0, 0, time.UTC), 28},
	{time.Date(1994, time.July, 1, 0, 0, 0, 0, time.UTC), 29},
	{time.Date(1996, time.January, 1, 0, 0, 0, 0, time.UTC), 30},
	{time.Date(1997, time.July, 1, 0, 0, 0, 0, time.UTC), 31},
	{time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC), 32},
	{time.Date(2006, time.January, 1, 0, 0, 0, 0, time.UTC), 33},
	{time.Date(2009, time.January, 1, 0, 0, 0, 0, time.UTC), 34},
	{time.Date(2012, time.July, 1, 0, 0, 0, 0, time.UTC), 35},
	{time.Date(2015, time.July, 1, 0, 0, 0, 0, time.UTC), 36},
	{time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC), 37},
}

// Default returns the built-in table
func Default() *Table {
	steps := make([]Step, len(builtin))
	copy(steps, builtin)
	return &Table{Steps: steps}
}

// Load reads table from tzfile at path, falling back to the built-in table if it can't be read.
// Pass "" to use DefaultFile.
func Load(path string) *Table {
	if path == "" {
		path = DefaultFile
	}
	t, err := Parse(path)
	if err != nil {
		log.Warningf("reading leap seconds from %s: %v, using built-in table", path, err)
		return Default()
	}
	return t
}

// Parse reads table from tzfile at path
func Parse(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// TAIMinusUTC returns TAI-UTC in seconds at t. Before 1972 it's 0.
func (t *Table) TAIMinusUTC(at time.Time) int {
	i := sort.Search(len(t.Steps), func(i int) bool {
		return t.Steps[i].Start.After(at)
	})
	if i == 0 {
		return 0
	}
	return t.Steps[i-1].TAIUTC
}

// header of the tzfile, see tzfile(5)
type header struct {
	IsUtcCnt uint32
	IsStdCnt uint32
	LeapCnt  uint32
	TimeCnt  uint32
	TypeCnt  uint32
	CharCnt  uint32
}

func readHeader(r io.Reader) (byte, header, error) {
	var hdr header
	// 4-byte magic "TZif", 1-byte version, 15 bytes of padding
	pre := make([]byte, 20)
	if _, err := io.ReadFull(r, pre); err != nil {
		return 0, hdr, errBadData
	}
	if string(pre[:4]) != "TZif" {
		return 0, hdr, errBadData
	}
	version := pre[4]
	if version != 0 && version != '2' && version != '3' && version != '4' {
		return 0, hdr, errUnsupportedVersion
	}
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return 0, hdr, fmt.Errorf("%w: %w", errBadData, err)
	}
	return version, hdr, nil
}

func skip(r io.Reader, n int) error {
	if m, _ := io.CopyN(io.Discard, r, int64(n)); m != int64(n) {
		return errBadData
	}
	return nil
}

// Read parses tzfile data from r.
// Version 2+ files have the 32-bit block skipped and the 64-bit one used.
func Read(r io.Reader) (*Table, error) {
	version, hdr, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	timeSize := 4
	if version != 0 {
		// skip the whole v1 block, then read v2 header
		v1 := int(hdr.TimeCnt)*5 + int(hdr.TypeCnt)*6 + int(hdr.CharCnt) + int(hdr.LeapCnt)*8 + int(hdr.IsUtcCnt) + int(hdr.IsStdCnt)
		if err := skip(r, v1); err != nil {
			return nil, err
		}
		if _, hdr, err = readHeader(r); err != nil {
			return nil, err
		}
		timeSize = 8
	}
	// transition times, their type indices, local time types, zone abbreviations
	if err := skip(r, int(hdr.TimeCnt)*(timeSize+1)+int(hdr.TypeCnt)*6+int(hdr.CharCnt)); err != nil {
		return nil, err
	}

	t := &Table{Steps: []Step{{Start: builtin[0].Start, TAIUTC: taiUTCAt1972}}}
	for i := 0; i < int(hdr.LeapCnt); i++ {
		var occur int64
		var corr int32
		if timeSize == 4 {
			var v uint32
			if err := binary.Read(r, binary.BigEndian, &v); err != nil {
				return nil, fmt.Errorf("%w: %w", errBadData, err)
			}
			occur = int64(v)
		} else if err := binary.Read(r, binary.BigEndian, &occur); err != nil {
			return nil, fmt.Errorf("%w: %w", errBadData, err)
		}
		if err := binary.Read(r, binary.BigEndian, &corr); err != nil {
			return nil, fmt.Errorf("%w: %w", errBadData, err)
		}
		// occur counts leap seconds inserted so far, including this one
		start := time.Unix(occur-int64(corr)+1, 0).UTC()
		t.Steps = append(t.Steps, Step{Start: start, TAIUTC: taiUTCAt1972 + int(corr)})
	}
	if len(t.Steps) == 1 {
		return nil, errNoLeapSeconds
	}
	return t, nil
}
