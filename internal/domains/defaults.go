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

package domains

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/greenmaskio/dumpinsert/internal/utils/config"
)

//go:embed default_tables.yml
var defaultTablesYaml []byte

// DefaultTables - the embedded schema table used when nothing is configured
func DefaultTables() ([]*Table, error) {
	return ParseTables(defaultTablesYaml)
}

// ParseTables - parse the YAML list of table definitions
func ParseTables(data []byte) ([]*Table, error) {
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unable to parse tables yaml: %w", err)
	}
	var res []*Table
	if err := config.Decode(raw, &res); err != nil {
		return nil, fmt.Errorf("unable to decode tables: %w", err)
	}
	return res, nil
}
