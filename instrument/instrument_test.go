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

package instrument

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eaydin/pcaxcc/xcc"
)

func TestDefaultFormulasMatchStandard(t *testing.T) {
	f := DefaultFormulas()
	require.NoError(t, f.Prepare())
	for _, c := range []float64{-20, 0, 5, 16, 123.456} {
		got, err := f.Derive(c)
		require.NoError(t, err)
		want, err := xcc.StandardDeriver{}.Derive(c)
		require.NoError(t, err)
		require.InDelta(t, want.PCA, got.PCA, 1e-12)
		require.InDelta(t, want.HEXTE, got.HEXTE, 1e-12)
	}
}

func TestPrepareEmptyUsesDefaults(t *testing.T) {
	f := Formulas{}
	require.NoError(t, f.Prepare())
	require.Equal(t, DefaultPCA, f.PCA)
	require.Equal(t, DefaultHEXTE, f.HEXTE)
}

func TestCustomFormulas(t *testing.T) {
	f := Formulas{PCA: "abs(correction) - 20", HEXTE: "correction * 2"}
	got, err := f.Derive(-5)
	require.NoError(t, err)
	require.Equal(t, -15.0, got.PCA)
	require.Equal(t, -10.0, got.HEXTE)
}

func TestPrepareErrors(t *testing.T) {
	f := Formulas{PCA: "offset - 16"}
	err := f.Prepare()
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "evaluating PCA formula"))

	f = Formulas{HEXTE: "correction +"}
	err = f.Prepare()
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "evaluating HEXTE formula"))
}

func TestDeriveNonNumeric(t *testing.T) {
	f := Formulas{PCA: "correction > 1"}
	_, err := f.Derive(5)
	require.Error(t, err)
}

func TestKeepsPCABias(t *testing.T) {
	tests := []struct {
		name    string
		f       Formulas
		want    bool
		wantErr bool
	}{
		{"defaults", DefaultFormulas(), true, false},
		{"scaled", Formulas{PCA: "correction * 3 - 16", HEXTE: "correction * 3"}, true, false},
		{"shifted pca", Formulas{PCA: "correction - 15"}, false, false},
		{"abs", Formulas{PCA: "abs(correction) - 16"}, false, false},
		{"non numeric", Formulas{HEXTE: "correction == 0"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.f.KeepsPCABias()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFormulasWithEvaluator(t *testing.T) {
	table, _, err := xcc.ParseTable(strings.NewReader("0 100 0 -1\n5 0 0 999999\n"), "test")
	require.NoError(t, err)
	f := Formulas{PCA: "correction - 10", HEXTE: "correction + 1"}
	res, err := xcc.NewEvaluator(&f).Evaluate(86400, table)
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Equal(t, -5.0, res.PCAOffset)
	require.Equal(t, 6.0, res.HEXTEOffset)
	require.Equal(t, 5.0, res.Correction)
}
