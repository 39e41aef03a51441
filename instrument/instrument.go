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

// Package instrument derives per-instrument clock offsets from the base correction
// using configurable formulas.
package instrument

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"

	"github.com/eaydin/pcaxcc/xcc"
)

// Help is a help message used by flags and config docs
const Help = `Instrument formulas are evaluated with govaluate, see https://github.com/Knetic/govaluate/blob/master/MANUAL.md
supported variables:
  correction (base clock correction from the table, in microseconds)
supported functions:
  abs(value) - absolute value of single float64, for example abs(-1) = 1`

const (
	// DefaultPCA is the default formula for the PCA offset
	DefaultPCA = "correction - 16"
	// DefaultHEXTE is the default formula for the HEXTE offset
	DefaultHEXTE = "correction"
)

const varCorrection = "correction"

var functions = map[string]govaluate.ExpressionFunction{
	"abs": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("abs: wrong number of arguments: want 1, got %d", len(args))
		}
		val, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("abs: argument is not a number: %v", args[0])
		}
		return math.Abs(val), nil
	},
}

// Formulas stores expressions for instrument offsets in two forms: string and parsed
type Formulas struct {
	PCA       string
	pcaExpr   *govaluate.EvaluableExpression
	HEXTE     string
	hexteExpr *govaluate.EvaluableExpression
}

// DefaultFormulas returns formulas matching the fixed instrument biases
func DefaultFormulas() Formulas {
	return Formulas{PCA: DefaultPCA, HEXTE: DefaultHEXTE}
}

func prepareExpression(exprStr string) (*govaluate.EvaluableExpression, error) {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(exprStr, functions)
	if err != nil {
		return nil, err
	}
	for _, v := range expr.Vars() {
		if v != varCorrection {
			return nil, fmt.Errorf("unsupported variable %q", v)
		}
	}
	return expr, nil
}

// Prepare parses both formulas. Empty formulas fall back to defaults.
func (f *Formulas) Prepare() error {
	if f.PCA == "" {
		f.PCA = DefaultPCA
	}
	if f.HEXTE == "" {
		f.HEXTE = DefaultHEXTE
	}
	var err error
	f.pcaExpr, err = prepareExpression(f.PCA)
	if err != nil {
		return fmt.Errorf("evaluating PCA formula: %w", err)
	}
	f.hexteExpr, err = prepareExpression(f.HEXTE)
	if err != nil {
		return fmt.Errorf("evaluating HEXTE formula: %w", err)
	}
	return nil
}

func evaluate(expr *govaluate.EvaluableExpression, correction float64) (float64, error) {
	raw, err := expr.Evaluate(map[string]interface{}{varCorrection: correction})
	if err != nil {
		return 0, err
	}
	v, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("formula %q returned %T, expected number", expr.String(), raw)
	}
	return v, nil
}

// biasProbes are corrections, in microseconds, the PCA bias is verified at
var biasProbes = []float64{-1000, 0, xcc.PCABias, 1234.5}

// KeepsPCABias reports whether formulas keep PCA offset exactly
// xcc.PCABias microseconds below HEXTE offset, as the defaults do
func (f *Formulas) KeepsPCABias() (bool, error) {
	for _, c := range biasProbes {
		o, err := f.Derive(c)
		if err != nil {
			return false, err
		}
		if math.Abs(o.HEXTE-o.PCA-xcc.PCABias) > 1e-9 {
			return false, nil
		}
	}
	return true, nil
}

// Derive implements xcc.Deriver
func (f *Formulas) Derive(correction float64) (xcc.Offsets, error) {
	if f.pcaExpr == nil || f.hexteExpr == nil {
		if err := f.Prepare(); err != nil {
			return xcc.Offsets{}, err
		}
	}
	pca, err := evaluate(f.pcaExpr, correction)
	if err != nil {
		return xcc.Offsets{}, fmt.Errorf("PCA: %w", err)
	}
	hexte, err := evaluate(f.hexteExpr, correction)
	if err != nil {
		return xcc.Offsets{}, fmt.Errorf("HEXTE: %w", err)
	}
	return xcc.Offsets{PCA: pca, HEXTE: hexte}, nil
}
