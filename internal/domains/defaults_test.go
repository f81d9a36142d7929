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

package domains

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenmaskio/dumpinsert/internal/db/postgres/pgcopy"
)

func TestDefaultTables(t *testing.T) {
	tables, err := DefaultTables()
	require.NoError(t, err)

	var targets []string
	required := map[string]bool{}
	for _, table := range tables {
		targets = append(targets, table.TargetName())
		required[table.TargetName()] = table.Required
		require.NotEmpty(t, table.Columns, table.TargetName())
	}
	assert.Equal(t, []string{"district", "school", "department", "role", "users", "staff"}, targets)
	assert.True(t, required["users"])
	assert.True(t, required["staff"])
	assert.False(t, required["district"])

	district := tables[0]
	assert.Equal(t, pgcopy.Identifier{Name: "District"}, district.Source)
	require.Len(t, district.Columns, 5)
	assert.Equal(t, "created_at", district.Columns[4].Name)
	assert.Equal(t, "quoted", district.Columns[4].Rule)
}

func TestParseTables(t *testing.T) {
	data := []byte(`
- source: public."School"
  min_fields: 6
  when: record.id != nil
  columns:
    - name: id
      rule: passthrough
    - name: status
      rule: constant
      value: "'open'"
    - name: name
      rule: quoted
      source: 2
  sequences:
    - name: school_seq
`)
	tables, err := ParseTables(data)
	require.NoError(t, err)
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, pgcopy.Identifier{Schema: "public", Name: "School"}, table.Source)
	assert.Equal(t, "School", table.TargetName())
	assert.Equal(t, 6, table.MinFields)
	assert.Equal(t, "record.id != nil", table.When)
	require.Len(t, table.Columns, 3)
	require.NotNil(t, table.Columns[1].Value)
	assert.Equal(t, "'open'", *table.Columns[1].Value)
	require.NotNil(t, table.Columns[2].Source)
	assert.Equal(t, 2, *table.Columns[2].Source)
	assert.Nil(t, table.Columns[0].Source)
	require.Len(t, table.Sequences, 1)
	assert.Equal(t, "school_seq", table.Sequences[0].Name)
}

func TestParseTables_errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "yaml", data: "- source: [\n"},
		{name: "identifier", data: "- source: 'public.\"School'\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTables([]byte(tt.data))
			require.Error(t, err)
		})
	}
}
