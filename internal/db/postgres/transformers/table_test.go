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

package transformers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenmaskio/dumpinsert/internal/db/postgres/pgcopy"
	"github.com/greenmaskio/dumpinsert/internal/domains"
)

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func newDistrictTable() *domains.Table {
	return &domains.Table{
		Source: pgcopy.Identifier{Schema: "public", Name: "District"},
		Target: "district",
		Columns: []*domains.Column{
			{Name: "id", Rule: PassthroughRuleName},
			{Name: "name", Rule: QuotedRuleName},
			{Name: "code", Rule: QuotedRuleName},
			{Name: "state", Rule: QuotedRuleName},
			{Name: "created_at", Rule: QuotedRuleName},
		},
	}
}

func TestNewTableTransformer(t *testing.T) {
	t.Run("min fields", func(t *testing.T) {
		tests := []struct {
			name     string
			table    *domains.Table
			expected int
		}{
			{
				name:     "columns count",
				table:    newDistrictTable(),
				expected: 5,
			},
			{
				name: "declared min fields",
				table: &domains.Table{
					Source:    pgcopy.Identifier{Name: "users"},
					MinFields: 4,
					Columns:   []*domains.Column{{Name: "id", Rule: PassthroughRuleName}},
				},
				expected: 4,
			},
			{
				name: "explicit source",
				table: &domains.Table{
					Source: pgcopy.Identifier{Name: "users"},
					Columns: []*domains.Column{
						{Name: "id", Rule: PassthroughRuleName},
						{Name: "email", Rule: QuotedRuleName, Source: intPtr(6)},
					},
				},
				expected: 7,
			},
			{
				name: "constant is not counted",
				table: &domains.Table{
					Source: pgcopy.Identifier{Name: "users"},
					Columns: []*domains.Column{
						{Name: "id", Rule: PassthroughRuleName},
						{Name: "status", Rule: ConstantRuleName, Value: strPtr("'active'")},
					},
				},
				expected: 1,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tr, err := NewTableTransformer(tt.table, DefaultRuleRegistry)
				require.NoError(t, err)
				assert.Equal(t, tt.expected, tr.MinFields())
			})
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name  string
			table *domains.Table
			err   error
		}{
			{
				name:  "empty source",
				table: &domains.Table{Columns: []*domains.Column{{Name: "id", Rule: PassthroughRuleName}}},
				err:   ErrInvalidTable,
			},
			{
				name:  "no columns",
				table: &domains.Table{Source: pgcopy.Identifier{Name: "users"}},
				err:   ErrInvalidTable,
			},
			{
				name: "unknown rule",
				table: &domains.Table{
					Source:  pgcopy.Identifier{Name: "users"},
					Columns: []*domains.Column{{Name: "id", Rule: "uuid"}},
				},
				err: ErrUnknownRule,
			},
			{
				name: "negative source",
				table: &domains.Table{
					Source:  pgcopy.Identifier{Name: "users"},
					Columns: []*domains.Column{{Name: "id", Rule: PassthroughRuleName, Source: intPtr(-1)}},
				},
				err: ErrInvalidTable,
			},
			{
				name: "duplicate column",
				table: &domains.Table{
					Source: pgcopy.Identifier{Name: "users"},
					Columns: []*domains.Column{
						{Name: "id", Rule: PassthroughRuleName},
						{Name: "id", Rule: QuotedRuleName},
					},
				},
				err: ErrInvalidTable,
			},
			{
				name: "constant without value",
				table: &domains.Table{
					Source:  pgcopy.Identifier{Name: "users"},
					Columns: []*domains.Column{{Name: "status", Rule: ConstantRuleName}},
				},
				err: errConstantValueRequired,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewTableTransformer(tt.table, DefaultRuleRegistry)
				require.ErrorIs(t, err, tt.err)
			})
		}
	})

	t.Run("invalid when", func(t *testing.T) {
		table := newDistrictTable()
		table.When = "record.id +"
		_, err := NewTableTransformer(table, DefaultRuleRegistry)
		require.Error(t, err)
	})
}

func TestTableTransformer_Transform(t *testing.T) {
	tr, err := NewTableTransformer(newDistrictTable(), DefaultRuleRegistry)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "code", "state", "created_at"}, tr.ColumnNames())

	t.Run("exact min fields", func(t *testing.T) {
		res, err := tr.Transform([]string{"1", "Alpha", "ALP", "NY", "2020-01-01"})
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "'Alpha'", "'ALP'", "'NY'", "'2020-01-01'"}, res)
	})

	t.Run("one field fewer", func(t *testing.T) {
		_, err := tr.Transform([]string{"1", "Alpha", "ALP", "NY"})
		require.ErrorIs(t, err, ErrInsufficientColumns)
	})

	t.Run("extra fields are ignored", func(t *testing.T) {
		res, err := tr.Transform([]string{"1", "Alpha", "ALP", "NY", "2020-01-01", "extra"})
		require.NoError(t, err)
		assert.Len(t, res, 5)
	})

	t.Run("null values", func(t *testing.T) {
		res, err := tr.Transform([]string{"2", `\N`, "", "NY", `\N`})
		require.NoError(t, err)
		assert.Equal(t, []string{"2", "NULL", "''", "'NY'", "NULL"}, res)
	})
}

func TestTableTransformer_Transform_sourceAndConstant(t *testing.T) {
	table := &domains.Table{
		Source: pgcopy.Identifier{Name: "users"},
		Target: "users",
		Columns: []*domains.Column{
			{Name: "email", Rule: QuotedRuleName, Source: intPtr(2)},
			{Name: "id", Rule: PassthroughRuleName, Source: intPtr(0)},
			{Name: "status", Rule: ConstantRuleName, Value: strPtr("'active'")},
			{Name: "is_active", Rule: BooleanRuleName, Source: intPtr(3)},
		},
	}
	tr, err := NewTableTransformer(table, DefaultRuleRegistry)
	require.NoError(t, err)
	assert.Equal(t, 4, tr.MinFields())
	assert.Equal(t, []int{2, 0, -1, 3}, tr.ColumnSources())

	res, err := tr.Transform([]string{"10", "skipped", "a@b.c", "t"})
	require.NoError(t, err)
	assert.Equal(t, []string{"'a@b.c'", "10", "'active'", "true"}, res)
}

func TestTableTransformer_Process(t *testing.T) {
	table := &domains.Table{
		Source: pgcopy.Identifier{Name: "users"},
		Target: "users",
		When:   `record.is_active == "t" && record.school_id != nil`,
		Columns: []*domains.Column{
			{Name: "id", Rule: PassthroughRuleName},
			{Name: "school_id", Rule: PassthroughNullableRuleName},
			{Name: "is_active", Rule: BooleanRuleName},
		},
	}
	tr, err := NewTableTransformer(table, DefaultRuleRegistry)
	require.NoError(t, err)

	tests := []struct {
		name     string
		line     string
		expected []string
		err      error
	}{
		{name: "accepted", line: "1\t5\tt", expected: []string{"1", "5", "true"}},
		{name: "filtered by boolean", line: "2\t5\tf", err: ErrRowFiltered},
		{name: "filtered by null", line: "3\t\\N\tt", err: ErrRowFiltered},
		{name: "insufficient", line: "4\t5", err: ErrInsufficientColumns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tr.Process(tt.line)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res)
		})
	}
}

func TestTableTransformer_unsafeQuoteReportedOnce(t *testing.T) {
	tr, err := NewTableTransformer(newDistrictTable(), DefaultRuleRegistry)
	require.NoError(t, err)

	res, err := tr.Transform([]string{"1", "O'Hara", "OH", "NY", "2020-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "'O'Hara'", res[1])
	assert.True(t, tr.unsafeQuoteReported)
}
