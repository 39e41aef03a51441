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

// Package config holds pcaxcc settings read from a yaml file
package config

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"

	"github.com/eaydin/pcaxcc/instrument"
	"github.com/eaydin/pcaxcc/leapsec"
	"github.com/eaydin/pcaxcc/xcc"
)

// Fine clock units
const (
	FineClockSeconds      = "s"
	FineClockMicroseconds = "us"
)

// UTC conversion modes
const (
	UTCDirect      = "direct"
	UTCLeapSeconds = "leapseconds"
)

// Config represents configuration we expect to read from file
type Config struct {
	Table         string              // calibration table
	Instruments   instrument.Formulas // formulas for PCA and HEXTE offsets
	FineClockUnit string              // unit the PCA offset is added to MET in: s or us
	UTC           string              // how MJD(TT) becomes calendar time: direct or leapseconds
	LeapFile      string              // tzfile with leap seconds, for UTC=leapseconds
	DiffWarnUS    float64             // TIMEZERO difference above which we warn, microseconds
	DiffFailUS    float64             // TIMEZERO difference above which we fail, microseconds
	MetricsFile   string              // prometheus textfile to write, empty means none
	Workers       int                 // files processed concurrently
}

// DefaultConfig returns Config with defaults matching the reference conversion
func DefaultConfig() *Config {
	return &Config{
		Table:         xcc.DefaultTablePath,
		Instruments:   instrument.DefaultFormulas(),
		FineClockUnit: FineClockSeconds,
		UTC:           UTCDirect,
		LeapFile:      leapsec.DefaultFile,
		DiffWarnUS:    10,
		DiffFailUS:    100,
		Workers:       4,
	}
}

// Validate makes sure config is valid and prepares instrument formulas
func (c *Config) Validate() error {
	if c.Table == "" {
		return fmt.Errorf("bad config: 'table' must be specified")
	}
	switch c.FineClockUnit {
	case FineClockSeconds, FineClockMicroseconds:
	default:
		return fmt.Errorf("bad config: 'fineclockunit' must be %q or %q, got %q", FineClockSeconds, FineClockMicroseconds, c.FineClockUnit)
	}
	switch c.UTC {
	case UTCDirect, UTCLeapSeconds:
	default:
		return fmt.Errorf("bad config: 'utc' must be %q or %q, got %q", UTCDirect, UTCLeapSeconds, c.UTC)
	}
	if c.DiffWarnUS < 0 || c.DiffFailUS < c.DiffWarnUS {
		return fmt.Errorf("bad config: need 0 <= 'diffwarnus' <= 'difffailus'")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("bad config: 'workers' must be >0")
	}
	if err := c.Instruments.Prepare(); err != nil {
		return fmt.Errorf("bad config: %w", err)
	}
	keeps, err := c.Instruments.KeepsPCABias()
	if err != nil {
		return fmt.Errorf("bad config: instrument formulas: %w", err)
	}
	if !keeps {
		log.Warningf("instrument formulas PCA %q, HEXTE %q don't keep PCA %v microseconds below HEXTE", c.Instruments.PCA, c.Instruments.HEXTE, xcc.PCABias)
	}
	return nil
}

// ReadConfig reads config and unmarshals it from yaml on top of defaults
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return c, nil
}
