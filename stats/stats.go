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

// Package stats collects pcaxcc run metrics and dumps them in prometheus text format
package stats

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eaydin/pcaxcc/xcc"
)

// Lookup outcomes
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Stats holds run metrics in a dedicated registry
type Stats struct {
	registry       *prometheus.Registry
	lookups        *prometheus.CounterVec
	malformed      prometheus.Counter
	lastCorrection prometheus.Gauge
	tableRecords   prometheus.Gauge
}

// New creates Stats with all metrics registered
func New() *Stats {
	s := &Stats{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pcaxcc_lookups_total",
			Help: "Clock correction lookups by outcome",
		}, []string{"outcome"}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcaxcc_malformed_lines_total",
			Help: "Calibration table lines skipped as malformed",
		}),
		lastCorrection: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pcaxcc_last_correction_us",
			Help: "Base clock correction of the last successful lookup, microseconds",
		}),
		tableRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pcaxcc_table_records",
			Help: "Records in the calibration table",
		}),
	}
	s.registry.MustRegister(s.lookups, s.malformed, s.lastCorrection, s.tableRecords)
	return s
}

// Registry returns the underlying registry
func (s *Stats) Registry() *prometheus.Registry {
	return s.registry
}

// ObserveTable records table size and number of skipped lines
func (s *Stats) ObserveTable(t *xcc.Table, malformed int) {
	s.tableRecords.Set(float64(len(t.Records)))
	s.malformed.Add(float64(malformed))
}

// ObserveLookup records outcome of a single Evaluate call
func (s *Stats) ObserveLookup(res *xcc.Result, err error) {
	switch {
	case err != nil:
		s.lookups.WithLabelValues(OutcomeError).Inc()
	case res.Found:
		s.lookups.WithLabelValues(OutcomeFound).Inc()
		s.lastCorrection.Set(res.Correction)
	default:
		s.lookups.WithLabelValues(OutcomeNotFound).Inc()
	}
}

// WriteTextfile dumps metrics to path, for node_exporter textfile collector
func (s *Stats) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, s.registry)
}
