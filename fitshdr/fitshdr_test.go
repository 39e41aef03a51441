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

package fitshdr

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/stretchr/testify/require"
)

const blockSize = 2880

func card(key, value string) string {
	return fmt.Sprintf("%-80s", fmt.Sprintf("%-8s= %20s", key, value))
}

func strCard(key, value string) string {
	return fmt.Sprintf("%-80s", fmt.Sprintf("%-8s= %-20s", key, "'"+value+"'"))
}

// primary builds a data-less primary HDU with extra cards
func primary(extra ...string) []byte {
	var b strings.Builder
	b.WriteString(card("SIMPLE", "T"))
	b.WriteString(card("BITPIX", "8"))
	b.WriteString(card("NAXIS", "0"))
	for _, c := range extra {
		b.WriteString(c)
	}
	b.WriteString(fmt.Sprintf("%-80s", "END"))
	for b.Len()%blockSize != 0 {
		b.WriteByte(' ')
	}
	return []byte(b.String())
}

func TestParse(t *testing.T) {
	data := primary(
		strCard("OBJECT", "CRAB"),
		strCard("DATE-OBS", "1996-03-05T01:02:03"),
		card("MJDREFI", "49353"),
		card("MJDREFF", "6.965740740000000E-04"),
		card("TSTART", "6.9926400E+07"),
		card("TIMEZERO", "3.37843167"),
	)
	h, err := Parse(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "CRAB", h.Object)
	require.Equal(t, "1996-03-05T01:02:03", h.DateObs)
	require.Equal(t, 49353.0, h.MJDRefI)
	require.InDelta(t, 6.96574074e-4, h.MJDRefF, 1e-15)
	require.InDelta(t, 49353.000696574074, h.MJDRef(), 1e-9)
	require.Equal(t, 69926400.0, h.TStart)
	require.NotNil(t, h.TimeZero)
	require.InDelta(t, 3.37843167, *h.TimeZero, 1e-12)
}

func TestParseNoTimeZero(t *testing.T) {
	data := primary(
		card("MJDREFI", "49353"),
		card("MJDREFF", "0.5"),
		card("TSTART", "100.0"),
	)
	h, err := Parse(bytes.NewReader(data))
	require.NoError(t, err)
	require.Nil(t, h.TimeZero)
	require.Equal(t, "", h.Object)
}

func TestParseMissingTStart(t *testing.T) {
	data := primary(
		card("MJDREFI", "49353"),
		card("MJDREFF", "0.5"),
	)
	_, err := Parse(bytes.NewReader(data))
	var merr *MissingKeywordError
	require.ErrorAs(t, err, &merr)
	require.Equal(t, KeyTStart, merr.Keyword)
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte("not a fits file")))
	require.Error(t, err)
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.fits")
	require.NoError(t, os.WriteFile(path, primary(
		card("MJDREFI", "49353"),
		card("MJDREFF", "0.5"),
		card("TSTART", "100.0"),
	), 0o644))
	h, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, path, h.Path)
	require.Equal(t, 100.0, h.TStart)

	_, err = Read(filepath.Join(t.TempDir(), "missing.fits"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

type fakeCards map[string]interface{}

func (f fakeCards) Get(name string) *fitsio.Card {
	v, ok := f[name]
	if !ok {
		return nil
	}
	return &fitsio.Card{Name: name, Value: v}
}

func TestFromCards(t *testing.T) {
	tests := []struct {
		name    string
		cards   fakeCards
		want    *Header
		wantErr string
	}{
		{
			name:  "int refs",
			cards: fakeCards{"MJDREFI": 49353, "MJDREFF": float32(0.5), "TSTART": int64(10)},
			want:  &Header{MJDRefI: 49353, MJDRefF: 0.5, TStart: 10},
		},
		{
			name:  "single mjdref",
			cards: fakeCards{"MJDREF": 49353.25, "TSTART": 10.0},
			want:  &Header{MJDRefI: 49353, MJDRefF: 0.25, TStart: 10},
		},
		{
			name:    "only mjdrefi",
			cards:   fakeCards{"MJDREFI": 49353, "TSTART": 10.0},
			wantErr: "keyword MJDREFF not found",
		},
		{
			name:    "only mjdreff",
			cards:   fakeCards{"MJDREFF": 0.1, "TSTART": 10.0},
			wantErr: "keyword MJDREFI not found",
		},
		{
			name:    "no reference",
			cards:   fakeCards{"TSTART": 10.0},
			wantErr: "keyword MJDREF not found (neither MJDREFI/MJDREFF)",
		},
		{
			name:    "string tstart",
			cards:   fakeCards{"TSTART": "soon", "MJDREF": 1.0},
			wantErr: "keyword TSTART: expected number, got string (soon)",
		},
		{
			name:    "bool timezero",
			cards:   fakeCards{"TSTART": 1.0, "MJDREF": 1.0, "TIMEZERO": true},
			wantErr: "keyword TIMEZERO: expected number, got bool (true)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := fromCards(tt.cards)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, h)
		})
	}
}
