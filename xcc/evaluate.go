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
	log "github.com/sirupsen/logrus"
)

// SecondsPerDay converts MET seconds into days
const SecondsPerDay = 86400.0

// PCABias is the fixed PCA offset relative to the base correction, in microseconds
const PCABias = 16.0

// Offsets are per-instrument clock offsets in microseconds
type Offsets struct {
	PCA   float64
	HEXTE float64
}

// Deriver derives instrument offsets from a base correction
type Deriver interface {
	Derive(correction float64) (Offsets, error)
}

// StandardDeriver applies the fixed instrument biases
type StandardDeriver struct{}

// Derive returns PCA offset as correction minus PCABias and HEXTE offset as correction itself
func (StandardDeriver) Derive(correction float64) (Offsets, error) {
	return Offsets{PCA: correction - PCABias, HEXTE: correction}, nil
}

// Result of a correction lookup.
// If Found is false no segment applies and all values are zero.
type Result struct {
	Found          bool
	EpochReference float64
	Correction     float64
	PCAOffset      float64
	HEXTEOffset    float64
	// ReducedTime is days since the subday offset of the active epoch marker
	ReducedTime float64
	// Segment is the matched polynomial segment
	Segment *Record
}

// scanState is what carries over from an epoch marker to the segments following it
type scanState struct {
	seen           bool
	subdayOffset   float64
	epochReference float64
	reducedTime    float64
}

func (s *scanState) enter(marker Record, met float64) {
	s.seen = true
	s.subdayOffset = marker.SubdayOffset()
	s.epochReference = marker.EpochReference()
	s.reducedTime = met/SecondsPerDay - s.subdayOffset
}

// Evaluator looks up clock corrections in a calibration table
type Evaluator struct {
	Deriver Deriver
}

// NewEvaluator returns Evaluator using d to derive instrument offsets.
// Nil d means StandardDeriver.
func NewEvaluator(d Deriver) *Evaluator {
	if d == nil {
		d = StandardDeriver{}
	}
	return &Evaluator{Deriver: d}
}

// Evaluate finds the correction for met (mission elapsed time, seconds) in table
// using the fixed instrument biases
func Evaluate(met float64, table *Table) (*Result, error) {
	return NewEvaluator(nil).Evaluate(met, table)
}

// Evaluate scans the table in order and evaluates the first segment covering met.
// Segments are expected in increasing SegmentEnd order, which is not verified.
// Running out of records or hitting a terminator yields a Result with Found=false.
func (e *Evaluator) Evaluate(met float64, table *Table) (*Result, error) {
	var state scanState
	for i := range table.Records {
		rec := &table.Records[i]
		if rec.IsEpochMarker() {
			if rec.IsTerminator() {
				log.Debugf("met %f: terminator at line %d", met, rec.Line)
				return &Result{}, nil
			}
			state.enter(*rec, met)
			log.Debugf("met %f: epoch marker at line %d, reduced time %f", met, rec.Line, state.reducedTime)
			continue
		}
		if !state.seen {
			return nil, &MissingEpochMarkerError{Line: rec.Line}
		}
		if state.reducedTime < rec.SegmentEnd {
			correction := rec.Polynomial(state.reducedTime)
			offsets, err := e.Deriver.Derive(correction)
			if err != nil {
				return nil, err
			}
			log.Debugf("met %f: segment at line %d, correction %f", met, rec.Line, correction)
			return &Result{
				Found:          true,
				EpochReference: state.epochReference,
				Correction:     correction,
				PCAOffset:      offsets.PCA,
				HEXTEOffset:    offsets.HEXTE,
				ReducedTime:    state.reducedTime,
				Segment:        rec,
			}, nil
		}
	}
	log.Debugf("met %f: no applicable segment", met)
	return &Result{}, nil
}
