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

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/greenmaskio/dumpinsert/internal/db/postgres/insert"
	"github.com/greenmaskio/dumpinsert/internal/db/postgres/pgcopy"
	"github.com/greenmaskio/dumpinsert/internal/db/postgres/transformers"
	"github.com/greenmaskio/dumpinsert/internal/domains"
)

var (
	ErrUnknownTable        = errors.New("unknown table")
	ErrNoTablesToTransform = errors.New("no tables to transform")
)

// TableReport - per table counters of the run
type TableReport struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Found  bool   `json:"found"`
	// Rows - data rows of the section
	Rows     int `json:"rows"`
	Emitted  int `json:"emitted"`
	Dropped  int `json:"dropped"`
	Filtered int `json:"filtered"`
}

type Report struct {
	Tables []*TableReport `json:"tables"`
}

func (r *Report) Emitted() int {
	var res int
	for _, t := range r.Tables {
		res += t.Emitted
	}
	return res
}

// Converter - runs the table transformers over the dump and writes the statements in the configured table order
type Converter struct {
	tables  []*transformers.TableTransformer
	emitter *insert.Emitter
}

func NewConverter(cfg *domains.Convert, registry *transformers.RuleRegistry) (*Converter, error) {
	tables := cfg.Tables
	if len(tables) == 0 {
		var err error
		tables, err = domains.DefaultTables()
		if err != nil {
			return nil, fmt.Errorf("unable to load default tables: %w", err)
		}
	}

	tables, err := filterTables(tables, cfg.OnlyTables)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, ErrNoTablesToTransform
	}

	tts := make([]*transformers.TableTransformer, 0, len(tables))
	for _, t := range tables {
		tt, err := transformers.NewTableTransformer(t, registry)
		if err != nil {
			return nil, fmt.Errorf("unable to init table transformer: %w", err)
		}
		tts = append(tts, tt)
	}

	emitter, err := insert.NewEmitter(&insert.Options{
		OnConflictDoNothing: cfg.OnConflictDoNothing,
		RowsPerStatement:    cfg.RowsPerStatement,
		HeaderTemplate:      cfg.HeaderTemplate,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to init emitter: %w", err)
	}

	return &Converter{
		tables:  tts,
		emitter: emitter,
	}, nil
}

// Convert - transform the dump. The output is written to w only when all the tables were processed successfully
func (c *Converter) Convert(ctx context.Context, doc []byte, w io.Writer) (*Report, error) {
	buf := bytes.NewBuffer(nil)
	report := &Report{}
	for _, tt := range c.tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tr, err := c.convertTable(tt, doc, buf)
		if err != nil {
			return nil, err
		}
		report.Tables = append(report.Tables, tr)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("unable to write output: %w", err)
	}
	return report, nil
}

func (c *Converter) convertTable(tt *transformers.TableTransformer, doc []byte, w io.Writer) (*TableReport, error) {
	table := tt.Table()
	tr := &TableReport{
		Source: table.Source.String(),
		Target: table.TargetName(),
	}

	section, err := pgcopy.FindSection(doc, table.Source)
	if err != nil {
		if !errors.Is(err, pgcopy.ErrSectionNotFound) || table.Required {
			return nil, err
		}
		log.Warn().
			Str("Table", tr.Source).
			Msg("section not found: skipping")
		if err = c.emitter.EmitMissing(w, table); err != nil {
			return nil, err
		}
		return tr, nil
	}
	tr.Found = true
	if !section.Terminated {
		log.Warn().
			Str("Table", tr.Source).
			Msg("section is not terminated: rows are collected up to the end of the dump")
	}

	lines := section.Rows()
	tr.Rows = len(lines)
	rows := make([][]string, 0, len(lines))
	for idx, line := range lines {
		tokens, err := tt.Process(line)
		switch {
		case errors.Is(err, transformers.ErrInsufficientColumns):
			log.Debug().
				Err(err).
				Str("Table", tr.Source).
				Int("Row", idx).
				Msg("row dropped")
			tr.Dropped++
			continue
		case errors.Is(err, transformers.ErrRowFiltered):
			tr.Filtered++
			continue
		case err != nil:
			return nil, fmt.Errorf("table %s row %d: %w", tr.Source, idx, err)
		}
		rows = append(rows, tokens)
	}
	tr.Emitted = len(rows)

	if err = c.emitter.Emit(w, table, tt.ColumnNames(), rows); err != nil {
		return nil, err
	}
	log.Debug().
		Str("Table", tr.Source).
		Int("Rows", tr.Rows).
		Int("Emitted", tr.Emitted).
		Int("Dropped", tr.Dropped).
		Int("Filtered", tr.Filtered).
		Msg("table converted")
	return tr, nil
}

// filterTables - keep the tables listed in only preserving the configured order. A table is selected by its
// target name or by the source identifier
func filterTables(tables []*domains.Table, only []string) ([]*domains.Table, error) {
	if len(only) == 0 {
		return tables, nil
	}
	selected := make(map[*domains.Table]struct{}, len(only))
	for _, name := range only {
		id, err := pgcopy.ParseIdentifier(name)
		if err != nil {
			return nil, fmt.Errorf("unable to parse table name: %w", err)
		}
		var found bool
		for _, t := range tables {
			if t.TargetName() == name || id.Match(t.Source) {
				selected[t] = struct{}{}
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
		}
	}
	res := make([]*domains.Table, 0, len(selected))
	for _, t := range tables {
		if _, ok := selected[t]; ok {
			res = append(res, t)
		}
	}
	return res, nil
}
