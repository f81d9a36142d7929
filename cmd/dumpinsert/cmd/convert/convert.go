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
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	internalConvert "github.com/greenmaskio/dumpinsert/internal/convert"
	"github.com/greenmaskio/dumpinsert/internal/domains"
	"github.com/greenmaskio/dumpinsert/internal/storages/builder"
	"github.com/greenmaskio/dumpinsert/internal/utils/logger"
)

var (
	Cmd = &cobra.Command{
		Use:   "convert",
		Short: "convert COPY blocks of the dump into INSERT statements",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Fatal().Err(err).Msg("")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			st, err := builder.GetStorage(ctx, &Config.Storage, &Config.Log)
			if err != nil {
				log.Fatal().Err(err).Msg("error building storage")
			}

			report, err := internalConvert.Run(ctx, &Config.Convert, st, os.Stdout)
			if err != nil {
				log.Fatal().Err(err).Msg("cannot convert dump")
			}
			LogReport(report)
		},
	}
	Config = domains.NewConfig()

	// Flags - the dump options shared with apply and list-sections commands
	Flags = pflag.NewFlagSet("convert", pflag.ExitOnError)
)

// flagKeys - viper keys of the convert flags
var flagKeys = map[string]string{
	"file":                   "convert.file",
	"compressed":             "convert.compressed",
	"use-pgzip":              "convert.use_pgzip",
	"output":                 "convert.output",
	"table":                  "convert.only_tables",
	"on-conflict-do-nothing": "convert.on_conflict_do_nothing",
	"rows-per-statement":     "convert.rows_per_statement",
	"header-template":        "convert.header_template",
}

// LogReport - log the counters of every converted table
func LogReport(report *internalConvert.Report) {
	for _, t := range report.Tables {
		if !t.Found {
			log.Info().
				Str("Table", t.Source).
				Msg("skipped: section not found")
			continue
		}
		log.Info().
			Str("Table", t.Source).
			Str("Target", t.Target).
			Int("Rows", t.Rows).
			Int("Emitted", t.Emitted).
			Int("Dropped", t.Dropped).
			Int("Filtered", t.Filtered).
			Msg("converted")
	}
}

func init() {
	Flags.StringP("file", "f", "", "dump file path within the storage")
	Flags.BoolP("compressed", "z", false, "dump is gzip compressed (detected by .gz extension otherwise)")
	Flags.BoolP("use-pgzip", "", false, "use pgzip decompression instead of gzip")
	Flags.StringP("output", "o", "", "store the script in the storage object instead of stdout")
	Flags.StringSliceP("table", "t", nil, "convert only the listed tables (target name or source identifier)")
	Flags.BoolP("on-conflict-do-nothing", "", false, "add ON CONFLICT DO NOTHING to INSERT statements")
	Flags.IntP("rows-per-statement", "", 0, "max amount of rows in a single INSERT statement (0 - unlimited)")
	Flags.StringP("header-template", "", "", "text/template of the comment written before the table data")

	for flagName, key := range flagKeys {
		if err := viper.BindPFlag(key, Flags.Lookup(flagName)); err != nil {
			log.Fatal().Err(err).Msg("")
		}
	}

	Cmd.Flags().AddFlagSet(Flags)
}
