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

package apply

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/greenmaskio/dumpinsert/cmd/dumpinsert/cmd/convert"
	internalConvert "github.com/greenmaskio/dumpinsert/internal/convert"
	internalApply "github.com/greenmaskio/dumpinsert/internal/db/postgres/apply"
	"github.com/greenmaskio/dumpinsert/internal/domains"
	"github.com/greenmaskio/dumpinsert/internal/storages/builder"
	"github.com/greenmaskio/dumpinsert/internal/utils/logger"
)

var (
	Cmd = &cobra.Command{
		Use:   "apply",
		Short: "convert the dump and execute the script against the target database in one transaction",
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

			script, report, err := internalConvert.Generate(ctx, &Config.Convert, st)
			if err != nil {
				log.Fatal().Err(err).Msg("cannot convert dump")
			}
			convert.LogReport(report)

			if err = internalApply.Apply(ctx, Config.Apply.Dsn, script); err != nil {
				log.Fatal().Err(err).Msg("cannot apply script")
			}
		},
	}
	Config = domains.NewConfig()
)

func init() {
	for _, flagName := range []string{
		"file", "compressed", "use-pgzip", "table", "on-conflict-do-nothing", "rows-per-statement",
	} {
		Cmd.Flags().AddFlag(convert.Flags.Lookup(flagName))
	}
	Cmd.Flags().StringP("dsn", "", "", "target database connection string")

	if err := viper.BindPFlag("apply.dsn", Cmd.Flags().Lookup("dsn")); err != nil {
		log.Fatal().Err(err).Msg("")
	}
	if err := viper.BindEnv("apply.dsn", "DATABASE_URL"); err != nil {
		panic(err)
	}
}
