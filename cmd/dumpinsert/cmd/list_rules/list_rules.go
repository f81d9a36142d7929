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

package list_rules

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/greenmaskio/dumpinsert/internal/db/postgres/transformers"
	"github.com/greenmaskio/dumpinsert/internal/domains"
	"github.com/greenmaskio/dumpinsert/internal/utils/logger"
	"github.com/greenmaskio/dumpinsert/internal/utils/strings"
)

const (
	JsonFormatName = "json"
	TextFormatName = "text"

	descriptionWidth = 60
)

var (
	Cmd = &cobra.Command{
		Use:   "list-rules [flags] [rule ...]",
		Short: "list of the column rules with documentation",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Err(err).Msg("")
			}

			if err := run(os.Stdout, transformers.DefaultRuleRegistry, args); err != nil {
				log.Fatal().Err(err).Msg("")
			}
		},
	}
	Config = domains.NewConfig()
	format string
)

func run(w io.Writer, registry *transformers.RuleRegistry, ruleNames []string) error {
	rules, err := getRules(registry, ruleNames)
	if err != nil {
		return err
	}
	switch format {
	case JsonFormatName:
		return json.NewEncoder(w).Encode(rules)
	case TextFormatName:
		renderText(w, rules)
		return nil
	}
	return fmt.Errorf("unknown format %s", format)
}

func getRules(registry *transformers.RuleRegistry, ruleNames []string) ([]*transformers.RuleDefinition, error) {
	if len(ruleNames) == 0 {
		return registry.List(), nil
	}
	res := make([]*transformers.RuleDefinition, 0, len(ruleNames))
	for _, name := range ruleNames {
		def, ok := registry.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown rule name \"%s\"", name)
		}
		res = append(res, def)
	}
	return res, nil
}

func renderText(w io.Writer, rules []*transformers.RuleDefinition) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"name", "description", "consumes field"})
	table.SetAutoWrapText(false)
	for _, def := range rules {
		table.Append([]string{
			def.Properties.Name,
			strings.WrapString(def.Properties.Description, descriptionWidth),
			strconv.FormatBool(def.Properties.ConsumesField),
		})
	}
	table.SetRowLine(true)
	table.Render()
}

func init() {
	Cmd.Flags().StringVarP(&format, "format", "f", TextFormatName, "output format [text|json]")
}
