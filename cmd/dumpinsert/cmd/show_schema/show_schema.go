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

package show_schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/greenmaskio/dumpinsert/internal/db/postgres/insert"
	"github.com/greenmaskio/dumpinsert/internal/db/postgres/transformers"
	"github.com/greenmaskio/dumpinsert/internal/domains"
	"github.com/greenmaskio/dumpinsert/internal/utils/logger"
)

const (
	JsonFormatName = "json"
	YamlFormatName = "yaml"
	TextFormatName = "text"
)

var (
	Cmd = &cobra.Command{
		Use:   "show-schema",
		Short: "validate and show the configured tables with column rules",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Fatal().Err(err).Msg("")
			}

			if err := run(os.Stdout); err != nil {
				log.Fatal().Err(err).Msg("")
			}
		},
	}
	Config = domains.NewConfig()
	format string
)

func run(w io.Writer) error {
	tables := Config.Convert.Tables
	if len(tables) == 0 {
		var err error
		if tables, err = domains.DefaultTables(); err != nil {
			return err
		}
	}

	tts := make([]*transformers.TableTransformer, 0, len(tables))
	for _, t := range tables {
		tt, err := transformers.NewTableTransformer(t, transformers.DefaultRuleRegistry)
		if err != nil {
			return err
		}
		tts = append(tts, tt)
	}

	switch format {
	case JsonFormatName:
		return json.NewEncoder(w).Encode(tables)
	case YamlFormatName:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tables); err != nil {
			return err
		}
		return enc.Close()
	case TextFormatName:
		renderText(w, tts)
		return nil
	}
	return fmt.Errorf("unknown format %s", format)
}

func renderText(w io.Writer, tts []*transformers.TableTransformer) {
	var data [][]string
	for _, tt := range tts {
		t := tt.Table()
		target := t.TargetName()
		tableName := fmt.Sprintf("%s -> %s", t.Source.String(), target)
		data = append(data, []string{tableName, "required", strconv.FormatBool(t.Required), ""})
		data = append(data, []string{tableName, "min_fields", strconv.Itoa(tt.MinFields()), ""})
		if t.When != "" {
			data = append(data, []string{tableName, "when", t.When, ""})
		}
		sources := tt.ColumnSources()
		for idx, name := range tt.ColumnNames() {
			c := t.Columns[idx]
			field := strconv.Itoa(sources[idx])
			if sources[idx] < 0 {
				field = "-"
			}
			data = append(data, []string{tableName, "columns", fmt.Sprintf("%s (field %s)", name, field), c.Rule})
		}
		for _, seq := range insert.Sequences(t) {
			data = append(data, []string{tableName, "sequences", seq.Name, seq.Column})
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"table", "property", "value", "rule"})
	table.AppendBulk(data)
	table.SetRowLine(true)
	table.SetAutoMergeCellsByColumnIndex([]int{0, 1})
	table.Render()
}

func init() {
	Cmd.Flags().StringVarP(&format, "format", "f", TextFormatName, "output format [text|yaml|json]")
}
