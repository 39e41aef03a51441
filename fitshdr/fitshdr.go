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

// Package fitshdr extracts timing keywords from the primary header of FITS data files
package fitshdr

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/astrogo/fitsio"
	log "github.com/sirupsen/logrus"
)

// Keywords read from the primary header
const (
	KeyObject   = "OBJECT"
	KeyDateObs  = "DATE-OBS"
	KeyMJDRefI  = "MJDREFI"
	KeyMJDRefF  = "MJDREFF"
	KeyMJDRef   = "MJDREF"
	KeyTStart   = "TSTART"
	KeyTimeZero = "TIMEZERO"
)

// MissingKeywordError is returned when a required keyword is absent
type MissingKeywordError struct {
	Keyword string
}

func (e *MissingKeywordError) Error() string {
	return fmt.Sprintf("keyword %s not found", e.Keyword)
}

// Header holds what we need from a FITS primary header
type Header struct {
	Path    string
	Object  string
	DateObs string
	MJDRefI float64
	MJDRefF float64
	// TStart is the mission elapsed time of the observation start, seconds
	TStart float64
	// TimeZero is the recorded clock offset, nil if the file doesn't have one
	TimeZero *float64
}

// MJDRef returns the full reference MJD
func (h *Header) MJDRef() float64 {
	return h.MJDRefI + h.MJDRefF
}

// cards is the subset of fitsio.Header we use
type cards interface {
	Get(name string) *fitsio.Card
}

func number(hdr cards, key string) (float64, bool, error) {
	card := hdr.Get(key)
	if card == nil {
		return 0, false, nil
	}
	switch v := card.Value.(type) {
	case float64:
		return v, true, nil
	case float32:
		return float64(v), true, nil
	case int:
		return float64(v), true, nil
	case int64:
		return float64(v), true, nil
	case int32:
		return float64(v), true, nil
	default:
		return 0, false, fmt.Errorf("keyword %s: expected number, got %T (%v)", key, card.Value, card.Value)
	}
}

func str(hdr cards, key string) string {
	card := hdr.Get(key)
	if card == nil {
		return ""
	}
	if s, ok := card.Value.(string); ok {
		return s
	}
	return fmt.Sprint(card.Value)
}

func required(hdr cards, key string) (float64, error) {
	v, ok, err := number(hdr, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &MissingKeywordError{Keyword: key}
	}
	return v, nil
}

func fromCards(hdr cards) (*Header, error) {
	h := &Header{
		Object:  str(hdr, KeyObject),
		DateObs: str(hdr, KeyDateObs),
	}
	var err error
	if h.TStart, err = required(hdr, KeyTStart); err != nil {
		return nil, err
	}
	refI, okI, err := number(hdr, KeyMJDRefI)
	if err != nil {
		return nil, err
	}
	refF, okF, err := number(hdr, KeyMJDRefF)
	if err != nil {
		return nil, err
	}
	switch {
	case okI && okF:
		h.MJDRefI, h.MJDRefF = refI, refF
	case okI || okF:
		if !okI {
			return nil, &MissingKeywordError{Keyword: KeyMJDRefI}
		}
		return nil, &MissingKeywordError{Keyword: KeyMJDRefF}
	default:
		ref, err := required(hdr, KeyMJDRef)
		if err != nil {
			return nil, fmt.Errorf("%w (neither %s/%s)", err, KeyMJDRefI, KeyMJDRefF)
		}
		i, f := math.Modf(ref)
		h.MJDRefI, h.MJDRefF = i, f
		log.Debugf("using %s=%f split into %f + %f", KeyMJDRef, ref, i, f)
	}
	tz, ok, err := number(hdr, KeyTimeZero)
	if err != nil {
		return nil, err
	}
	if ok {
		h.TimeZero = &tz
	}
	return h, nil
}

// Parse reads FITS data from r and extracts timing keywords from its primary header
func Parse(r io.Reader) (*Header, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("opening FITS: %w", err)
	}
	defer f.Close()
	return fromCards(f.HDU(0).Header())
}

// Read parses primary header of FITS file at path
func Read(path string) (*Header, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	h, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	h.Path = path
	return h, nil
}

// Reader reads headers of data files
type Reader interface {
	Read(path string) (*Header, error)
}

// FileReader is a Reader for FITS files on disk
type FileReader struct{}

// Read implements Reader
func (FileReader) Read(path string) (*Header, error) {
	return Read(path)
}
