// Copyright 2025 Greenmask
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package insert

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenmaskio/dumpinsert/internal/db/postgres/pgcopy"
	"github.com/greenmaskio/dumpinsert/internal/domains"
)

var districtColumns = []string{"id", "name", "code", "state", "created_at"}

func newDistrictTable() *domains.Table {
	return &domains.Table{
		Source: pgcopy.Identifier{Schema: "public", Name: "District"},
		Target: "district",
	}
}

func TestEmitter_Emit(t *testing.T) {
	e, err := NewEmitter(nil)
	require.NoError(t, err)

	buf := bytes.NewBuffer(nil)
	err = e.Emit(buf, newDistrictTable(), districtColumns, [][]string{
		{"1", "'Alpha'", "'ALP'", "'NY'", "'2020-01-01'"},
	})
	require.NoError(t, err)

	expected := `-- Data for Name: district; Source: public."District"; Rows: 1
INSERT INTO district (id, name, code, state, created_at) VALUES
(1, 'Alpha', 'ALP', 'NY', '2020-01-01');
SELECT setval('district_id_seq', COALESCE((SELECT MAX(id) FROM district), 0) + 1, false);

`
	assert.Equal(t, expected, buf.String())
}

func TestEmitter_Emit_noRows(t *testing.T) {
	e, err := NewEmitter(nil)
	require.NoError(t, err)

	buf := bytes.NewBuffer(nil)
	require.NoError(t, e.Emit(buf, newDistrictTable(), districtColumns, nil))
	assert.Equal(t, "-- No data for district\n\n", buf.String())
	assert.NotContains(t, buf.String(), "INSERT")
	assert.NotContains(t, buf.String(), "setval")
}

func TestEmitter_Emit_options(t *testing.T) {
	rows := [][]string{
		{"1", "'a'"},
		{"2", "'b'"},
		{"3", "'c'"},
	}
	table := &domains.Table{
		Source: pgcopy.Identifier{Name: "Role"},
		Target: "role",
		Sequences: []*domains.Sequence{
			{Name: "role_seq"},
			{Name: "role_code_seq", Column: "code"},
		},
	}

	tests := []struct {
		name     string
		opts     *Options
		table    *domains.Table
		expected string
	}{
		{
			name: "chunks and on conflict",
			opts: &Options{
				OnConflictDoNothing: true,
				RowsPerStatement:    2,
				HeaderTemplate:      `-- {{ .Target | upper }} {{ join ", " .Columns }}`,
			},
			table: table,
			expected: "-- ROLE id, name\n" +
				"INSERT INTO role (id, name) VALUES\n(1, 'a'),\n(2, 'b') ON CONFLICT DO NOTHING;\n" +
				"INSERT INTO role (id, name) VALUES\n(3, 'c') ON CONFLICT DO NOTHING;\n" +
				"SELECT setval('role_seq', COALESCE((SELECT MAX(id) FROM role), 0) + 1, false);\n" +
				"SELECT setval('role_code_seq', COALESCE((SELECT MAX(code) FROM role), 0) + 1, false);\n\n",
		},
		{
			name: "skip sequences",
			opts: &Options{},
			table: &domains.Table{
				Source:        pgcopy.Identifier{Name: "role"},
				SkipSequences: true,
			},
			expected: "-- Data for Name: role; Source: role; Rows: 3\n" +
				"INSERT INTO role (id, name) VALUES\n(1, 'a'),\n(2, 'b'),\n(3, 'c');\n\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEmitter(tt.opts)
			require.NoError(t, err)
			buf := bytes.NewBuffer(nil)
			require.NoError(t, e.Emit(buf, tt.table, []string{"id", "name"}, rows))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestEmitter_Emit_tokenMismatch(t *testing.T) {
	e, err := NewEmitter(nil)
	require.NoError(t, err)
	buf := bytes.NewBuffer(nil)
	err = e.Emit(buf, newDistrictTable(), districtColumns, [][]string{{"1"}})
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestEmitter_EmitMissing(t *testing.T) {
	e, err := NewEmitter(nil)
	require.NoError(t, err)
	buf := bytes.NewBuffer(nil)
	require.NoError(t, e.EmitMissing(buf, newDistrictTable()))
	assert.Equal(t, "-- Section public.\"District\" not found, skipping district\n\n", buf.String())
}

func TestNewEmitter_errors(t *testing.T) {
	_, err := NewEmitter(&Options{HeaderTemplate: "{{ .Target "})
	require.Error(t, err)
	_, err = NewEmitter(&Options{RowsPerStatement: -1})
	require.Error(t, err)
}

type failWriter struct{}

func (fw *failWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

func TestEmitter_Emit_writeError(t *testing.T) {
	e, err := NewEmitter(nil)
	require.NoError(t, err)
	err = e.Emit(&failWriter{}, newDistrictTable(), districtColumns, nil)
	require.Error(t, err)
}
