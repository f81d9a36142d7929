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

package cmd

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/greenmaskio/dumpinsert/cmd/dumpinsert/cmd/apply"
	"github.com/greenmaskio/dumpinsert/cmd/dumpinsert/cmd/convert"
	"github.com/greenmaskio/dumpinsert/cmd/dumpinsert/cmd/list_rules"
	"github.com/greenmaskio/dumpinsert/cmd/dumpinsert/cmd/list_sections"
	"github.com/greenmaskio/dumpinsert/cmd/dumpinsert/cmd/show_schema"
	"github.com/greenmaskio/dumpinsert/internal/domains"
	configUtils "github.com/greenmaskio/dumpinsert/internal/utils/config"
)

var (
	Version    string
	Commit     string
	CommitDate string

	RootCmd = &cobra.Command{
		Use:   "dumpinsert",
		Short: "dumpinsert converts COPY blocks of a plain pg_dump file into INSERT statements",
		Long: "A one-shot migration tool that reads a plain-text PostgreSQL dump, finds the COPY blocks " +
			"of the declared tables, transforms every row according to the declarative column rules " +
			"and emits INSERT statements followed by sequence resync. The script is written to stdout, " +
			"to a storage object (directory and S3) or applied to the target database",
	}
	cfgFile string
	Config  = domains.NewConfig()
)

func Execute() error {
	return RootCmd.Execute()
}

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				Commit = setting.Value
			}
			if setting.Key == "vcs.time" {
				CommitDate = setting.Value
			}
		}
	}
	if Version != "" {
		RootCmd.Version = fmt.Sprintf("%s %s %s", Version, Commit, CommitDate)
	} else {
		RootCmd.Version = fmt.Sprintf("%s %s", Commit, CommitDate)
	}

	cobra.OnInitialize(initConfig)
	// Removing short help flag from default
	RootCmd.PersistentFlags().BoolP("help", "", false, "help for dumpinsert")
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file ")
	RootCmd.PersistentFlags().StringP("log-format", "", "text", "logging format [text|json]")
	RootCmd.PersistentFlags().StringP("log-level", "", zerolog.LevelInfoValue,
		fmt.Sprintf(
			"logging level %s|%s|%s",
			zerolog.LevelDebugValue,
			zerolog.LevelInfoValue,
			zerolog.LevelWarnValue,
		),
	)

	RootCmd.AddCommand(convert.Cmd)
	RootCmd.AddCommand(apply.Cmd)
	RootCmd.AddCommand(list_sections.Cmd)
	RootCmd.AddCommand(show_schema.Cmd)
	RootCmd.AddCommand(list_rules.Cmd)

	if err := viper.BindPFlag("log.format", RootCmd.PersistentFlags().Lookup("log-format")); err != nil {
		log.Fatal().Err(err).Msg("")
	}

	if err := viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		log.Fatal().Err(err).Msg("")
	}

	RootCmd.InitDefaultCompletionCmd()
	RootCmd.InitDefaultHelpCmd()
	RootCmd.InitDefaultVersionFlag()

	for _, c := range RootCmd.Commands() {
		if c.Name() == "completion" || c.Name() == "help" {
			c.DisableFlagParsing = true
			for _, subc := range c.Commands() {
				subc.DisableFlagParsing = true
			}
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal().Err(err).Msg("error reading from config file")
		}
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.Unmarshal(Config, configUtils.DecoderConfig); err != nil {
		log.Fatal().Err(err).Msg("")
	}
}
