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

package list_sections

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/greenmaskio/dumpinsert/cmd/dumpinsert/cmd/convert"
	internalConvert "github.com/greenmaskio/dumpinsert/internal/convert"
	"github.com/greenmaskio/dumpinsert/internal/db/postgres/pgcopy"
	"github.com/greenmaskio/dumpinsert/internal/domains"
	"github.com/greenmaskio/dumpinsert/internal/storages/builder"
	"github.com/greenmaskio/dumpinsert/internal/utils/logger"
)

const (
	JsonFormatName = "json"
	TextFormatName = "text"
)

var (
	Cmd = &cobra.Command{
		Use:   "list-sections",
		Short: "list COPY blocks of the dump with row counts",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Fatal().Err(err).Msg("")
			}

			if err := run(); err != nil {
				log.Fatal().Err(err).Msg("")
			}
		},
	}
	Config = domains.NewConfig()
	format string
)

type sectionView struct {
	*pgcopy.SectionInfo
	Configured bool `json:"configured"`
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	st, err := builder.GetStorage(ctx, &Config.Storage, &Config.Log)
	if err != nil {
		return fmt.Errorf("error building storage: %w", err)
	}
	doc, err := internalConvert.ReadDump(ctx, st, Config.Convert.File, Config.Convert.Compressed, Config.Convert.UsePgzip)
	if err != nil {
		return err
	}

	tables := Config.Convert.Tables
	if len(tables) == 0 {
		if tables, err = domains.DefaultTables(); err != nil {
			return err
		}
	}

	var sections []*sectionView
	for _, s := range pgcopy.ListSections(doc) {
		sections = append(sections, &sectionView{
			SectionInfo: s,
			Configured:  isConfigured(tables, s.Identifier),
		})
	}

	switch format {
	case JsonFormatName:
		return json.NewEncoder(os.Stdout).Encode(sections)
	case TextFormatName:
		renderText(os.Stdout, sections)
		return nil
	}
	return fmt.Errorf("unknown format %s", format)
}

func isConfigured(tables []*domains.Table, id pgcopy.Identifier) bool {
	for _, t := range tables {
		if t.Source.Match(id) {
			return true
		}
	}
	return false
}

func renderText(w io.Writer, sections []*sectionView) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"table", "line", "rows", "terminated", "configured"})
	for _, s := range sections {
		table.Append([]string{
			s.Identifier.String(),
			strconv.Itoa(s.Line),
			strconv.Itoa(s.Rows),
			strconv.FormatBool(s.Terminated),
			strconv.FormatBool(s.Configured),
		})
	}
	table.Render()
}

func init() {
	for _, flagName := range []string{"file", "compressed", "use-pgzip"} {
		Cmd.Flags().AddFlag(convert.Flags.Lookup(flagName))
	}
	Cmd.Flags().StringVarP(&format, "format", "", TextFormatName, "output format [text|json]")
}
