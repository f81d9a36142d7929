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
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/greenmaskio/dumpinsert/internal/domains"
)

const (
	DefaultHeaderTemplate = `-- Data for Name: {{ .Target }}; Source: {{ .Source }}; Rows: {{ .Rows }}`

	defaultSequenceColumn = "id"
	defaultSequenceSuffix = "_id_seq"

	rowsSeparator       = ",\n"
	tokensSeparator     = ", "
	statementEnd        = ";\n"
	onConflictDoNothing = " ON CONFLICT DO NOTHING"
	setvalStatementTmpl = "SELECT setval('%s', COALESCE((SELECT MAX(%s) FROM %s), 0) + 1, false);\n"
	noDataCommentTmpl   = "-- No data for %s\n"
	missingSectionTmpl  = "-- Section %s not found, skipping %s\n"
	insertStatementTmpl = "INSERT INTO %s (%s) VALUES\n"
	rowTokensOpen       = '('
	rowTokensClose      = ')'
)

type Options struct {
	OnConflictDoNothing bool
	// RowsPerStatement - max amount of rows in a single INSERT. 0 is unlimited
	RowsPerStatement int
	// HeaderTemplate - text/template of the comment written before the table data. Sprig functions are available
	HeaderTemplate string
}

// HeaderData - the data available in the header template
type HeaderData struct {
	Target  string
	Source  string
	Rows    int
	Columns []string
}

// Emitter - writes the transformed rows of the table as INSERT statement followed by the sequence resync
type Emitter struct {
	opts   *Options
	header *template.Template
}

func NewEmitter(opts *Options) (*Emitter, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.RowsPerStatement < 0 {
		return nil, fmt.Errorf("rows per statement must be positive or zero: got %d", opts.RowsPerStatement)
	}
	text := opts.HeaderTemplate
	if text == "" {
		text = DefaultHeaderTemplate
	}
	header, err := template.New("header").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("unable to parse header template: %w", err)
	}
	return &Emitter{
		opts:   opts,
		header: header,
	}, nil
}

// Emit - write the table block. Each row must contain exactly one token per column. When there are no rows only
// the comment is written
func (e *Emitter) Emit(w io.Writer, table *domains.Table, columns []string, rows [][]string) error {
	target := table.TargetName()
	buf := bytes.NewBuffer(nil)

	if len(rows) == 0 {
		fmt.Fprintf(buf, noDataCommentTmpl, target)
		buf.WriteByte('\n')
		return flush(w, buf)
	}

	err := e.header.Execute(buf, &HeaderData{
		Target:  target,
		Source:  table.Source.String(),
		Rows:    len(rows),
		Columns: columns,
	})
	if err != nil {
		return fmt.Errorf("unable to render header: %w", err)
	}
	buf.WriteByte('\n')

	for _, chunk := range e.chunks(rows) {
		if err = e.writeInsert(buf, target, columns, chunk); err != nil {
			return err
		}
	}

	for _, seq := range Sequences(table) {
		fmt.Fprintf(buf, setvalStatementTmpl, seq.Name, seq.Column, target)
	}
	buf.WriteByte('\n')
	return flush(w, buf)
}

// EmitMissing - write the comment about the skipped table
func (e *Emitter) EmitMissing(w io.Writer, table *domains.Table) error {
	buf := bytes.NewBuffer(nil)
	fmt.Fprintf(buf, missingSectionTmpl, table.Source.String(), table.TargetName())
	buf.WriteByte('\n')
	return flush(w, buf)
}

func (e *Emitter) writeInsert(buf *bytes.Buffer, target string, columns []string, rows [][]string) error {
	fmt.Fprintf(buf, insertStatementTmpl, target, strings.Join(columns, tokensSeparator))
	for idx, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf(
				"row %d of %s: got %d tokens expected %d", idx, target, len(row), len(columns),
			)
		}
		if idx > 0 {
			buf.WriteString(rowsSeparator)
		}
		buf.WriteByte(rowTokensOpen)
		buf.WriteString(strings.Join(row, tokensSeparator))
		buf.WriteByte(rowTokensClose)
	}
	if e.opts.OnConflictDoNothing {
		buf.WriteString(onConflictDoNothing)
	}
	buf.WriteString(statementEnd)
	return nil
}

func (e *Emitter) chunks(rows [][]string) [][][]string {
	size := e.opts.RowsPerStatement
	if size == 0 || size >= len(rows) {
		return [][][]string{rows}
	}
	res := make([][][]string, 0, len(rows)/size+1)
	for start := 0; start < len(rows); start += size {
		res = append(res, rows[start:min(start+size, len(rows))])
	}
	return res
}

// Sequences - the sequences to resync for the table. Returns <target>_id_seq on id when nothing is configured
func Sequences(table *domains.Table) []*domains.Sequence {
	if table.SkipSequences {
		return nil
	}
	if len(table.Sequences) == 0 {
		return []*domains.Sequence{
			{
				Name:   table.TargetName() + defaultSequenceSuffix,
				Column: defaultSequenceColumn,
			},
		}
	}
	res := make([]*domains.Sequence, 0, len(table.Sequences))
	for _, s := range table.Sequences {
		seq := &domains.Sequence{Name: s.Name, Column: s.Column}
		if seq.Column == "" {
			seq.Column = defaultSequenceColumn
		}
		res = append(res, seq)
	}
	return res
}

func flush(w io.Writer, buf *bytes.Buffer) error {
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("unable to write statement: %w", err)
	}
	return nil
}
