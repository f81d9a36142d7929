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
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/greenmaskio/dumpinsert/internal/db/postgres/pgcopy"
	"github.com/greenmaskio/dumpinsert/internal/domains"
)

var (
	ErrInsufficientColumns = errors.New("insufficient columns")
	ErrRowFiltered         = errors.New("row filtered by when condition")
	ErrUnknownRule         = errors.New("unknown rule")
	ErrInvalidTable        = errors.New("invalid table definition")
)

const noSource = -1

type column struct {
	name       string
	source     int
	definition *RuleDefinition
	config     *domains.Column
}

// TableTransformer - the compiled table definition. It converts the raw COPY rows into the SQL literal tokens
type TableTransformer struct {
	table     *domains.Table
	columns   []*column
	minFields int
	when      *WhenCond
	row       *pgcopy.Row
	// unsafeQuoteReported - the warning about unescaped quote is logged once per table
	unsafeQuoteReported bool
}

func NewTableTransformer(table *domains.Table, registry *RuleRegistry) (*TableTransformer, error) {
	if table.Source.IsEmpty() {
		return nil, fmt.Errorf("%w: source is required", ErrInvalidTable)
	}
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("%w: table %s: columns are required", ErrInvalidTable, table.Source)
	}

	columns := make([]*column, 0, len(table.Columns))
	names := make(map[string]struct{}, len(table.Columns))
	var consumed int
	maxSource := noSource
	for _, c := range table.Columns {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: table %s: column name is required", ErrInvalidTable, table.Source)
		}
		if _, ok := names[c.Name]; ok {
			return nil, fmt.Errorf("%w: table %s: duplicate column %s", ErrInvalidTable, table.Source, c.Name)
		}
		names[c.Name] = struct{}{}

		def, ok := registry.Get(c.Rule)
		if !ok {
			return nil, fmt.Errorf("table %s: column %s: rule %q: %w", table.Source, c.Name, c.Rule, ErrUnknownRule)
		}
		if def.Validate != nil {
			if err := def.Validate(c); err != nil {
				return nil, fmt.Errorf("table %s: column %s: %w", table.Source, c.Name, err)
			}
		}

		source := noSource
		if def.Properties.ConsumesField {
			source = consumed
			if c.Source != nil {
				if *c.Source < 0 {
					return nil, fmt.Errorf("%w: table %s: column %s: negative source", ErrInvalidTable, table.Source, c.Name)
				}
				source = *c.Source
			}
			consumed++
			maxSource = max(maxSource, source)
		}

		columns = append(columns, &column{
			name:       c.Name,
			source:     source,
			definition: def,
			config:     c,
		})
	}

	when, err := NewWhenCond(table.When)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", table.Source, err)
	}

	return &TableTransformer{
		table:     table,
		columns:   columns,
		minFields: max(consumed, table.MinFields, maxSource+1),
		when:      when,
		row:       pgcopy.NewRow(consumed),
	}, nil
}

func (tt *TableTransformer) Table() *domains.Table {
	return tt.table
}

// MinFields - the minimal amount of raw fields in the row
func (tt *TableTransformer) MinFields() int {
	return tt.minFields
}

func (tt *TableTransformer) ColumnNames() []string {
	res := make([]string, len(tt.columns))
	for idx, c := range tt.columns {
		res[idx] = c.name
	}
	return res
}

// ColumnSources - raw field index per column. Columns that do not consume a field have -1
func (tt *TableTransformer) ColumnSources() []int {
	res := make([]int, len(tt.columns))
	for idx, c := range tt.columns {
		res[idx] = c.source
	}
	return res
}

// Process - split the raw line and transform it. Returns ErrInsufficientColumns or ErrRowFiltered when the row
// must be dropped
func (tt *TableTransformer) Process(line string) ([]string, error) {
	if err := tt.row.Decode([]byte(line)); err != nil {
		return nil, fmt.Errorf("unable to decode row: %w", err)
	}
	fields := tt.row.Fields()
	res, err := tt.Transform(fields)
	if err != nil {
		return nil, err
	}
	ok, err := tt.Accept(fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRowFiltered
	}
	return res, nil
}

// Transform - produce exactly one token per column. The row must have at least MinFields raw fields
func (tt *TableTransformer) Transform(fields []string) ([]string, error) {
	if len(fields) < tt.minFields {
		return nil, fmt.Errorf(
			"%w: got %d fields expected at least %d", ErrInsufficientColumns, len(fields), tt.minFields,
		)
	}

	res := make([]string, len(tt.columns))
	for idx, c := range tt.columns {
		var raw []byte
		if c.source != noSource {
			raw = []byte(fields[c.source])
		}
		if c.definition.Properties.QuotesValue {
			tt.reportUnsafeQuote(c, raw)
		}
		token, err := c.definition.Apply(raw, c.config)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.name, err)
		}
		res[idx] = token
	}
	return res, nil
}

// Accept - evaluate when condition of the table
func (tt *TableTransformer) Accept(fields []string) (bool, error) {
	if tt.when.IsEmpty() {
		return true, nil
	}
	record := make(map[string]any, len(tt.columns))
	for _, c := range tt.columns {
		if c.source == noSource || c.source >= len(fields) {
			continue
		}
		v, isNull, err := pgcopy.DecodeAttr([]byte(fields[c.source]), nil)
		if err != nil {
			return false, fmt.Errorf("column %s: unable to decode field: %w", c.name, err)
		}
		if isNull {
			record[c.name] = nil
			continue
		}
		record[c.name] = string(v)
	}
	return tt.when.Evaluate(record, fields)
}

func (tt *TableTransformer) reportUnsafeQuote(c *column, raw []byte) {
	if tt.unsafeQuoteReported || !strings.ContainsRune(string(raw), '\'') {
		return
	}
	tt.unsafeQuoteReported = true
	log.Warn().
		Str("Table", tt.table.Source.String()).
		Str("Column", c.name).
		Msg("value contains single quote: it is embedded without escaping and may break the statement")
}
