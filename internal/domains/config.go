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
	"sync"

	"github.com/greenmaskio/dumpinsert/internal/db/postgres/pgcopy"
	"github.com/greenmaskio/dumpinsert/internal/storages/directory"
	"github.com/greenmaskio/dumpinsert/internal/storages/s3"
)

var (
	Cfg  *Config
	once sync.Once
)

const (
	defaultDirectoryStoragePath = "."
	defaultStorageType          = "directory"
)

func NewConfig() *Config {
	once.Do(
		func() {
			Cfg = &Config{
				Log: LogConfig{
					Format: "text",
					Level:  "info",
				},
				Storage: StorageConfig{
					Type: defaultStorageType,
					S3:   s3.NewConfig(),
					Directory: &directory.Config{
						Path: defaultDirectoryStoragePath,
					},
				},
			}
		},
	)
	return Cfg
}

type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log" json:"log"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage" json:"storage"`
	Convert Convert       `mapstructure:"convert" yaml:"convert" json:"convert"`
	Apply   Apply         `mapstructure:"apply" yaml:"apply" json:"apply"`
}

type StorageConfig struct {
	Type      string            `mapstructure:"type" yaml:"type" json:"type,omitempty"`
	S3        *s3.Config        `mapstructure:"s3"  json:"s3,omitempty" yaml:"s3"`
	Directory *directory.Config `mapstructure:"directory" json:"directory,omitempty" yaml:"directory"`
}

type LogConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format,omitempty"`
	Level  string `mapstructure:"level" yaml:"level" json:"level,omitempty"`
}

type Convert struct {
	// File - dump file path within the storage
	File string `mapstructure:"file" yaml:"file" json:"file,omitempty"`
	// Output - object path within the storage the SQL is written to. Stdout is used when empty
	Output string `mapstructure:"output" yaml:"output" json:"output,omitempty"`
	// Compressed - dump is gzip compressed. Files with .gz extension are always treated as compressed
	Compressed          bool     `mapstructure:"compressed" yaml:"compressed" json:"compressed,omitempty"`
	UsePgzip            bool     `mapstructure:"use_pgzip" yaml:"use_pgzip" json:"use_pgzip,omitempty"`
	OnlyTables          []string `mapstructure:"only_tables" yaml:"only_tables" json:"only_tables,omitempty"`
	OnConflictDoNothing bool     `mapstructure:"on_conflict_do_nothing" yaml:"on_conflict_do_nothing" json:"on_conflict_do_nothing,omitempty"`
	// RowsPerStatement - split INSERT into several statements. 0 means single statement per table
	RowsPerStatement int    `mapstructure:"rows_per_statement" yaml:"rows_per_statement" json:"rows_per_statement,omitempty"`
	HeaderTemplate   string `mapstructure:"header_template" yaml:"header_template" json:"header_template,omitempty"`
	// Tables - declarative schema table. The embedded default is used when empty
	Tables []*Table `mapstructure:"tables" yaml:"tables" json:"tables,omitempty"`
}

type Apply struct {
	Dsn string `mapstructure:"dsn" yaml:"dsn" json:"dsn,omitempty"`
}

// Table - the mapping of one COPY block to the INSERT statement
type Table struct {
	Source pgcopy.Identifier `mapstructure:"source" yaml:"source" json:"source"`
	Target string            `mapstructure:"target" yaml:"target" json:"target"`
	// Required - missing section aborts the run. Otherwise the table is skipped with a comment
	Required bool `mapstructure:"required" yaml:"required" json:"required,omitempty"`
	// MinFields - minimal amount of raw fields in a row. Rows with less fields are dropped
	MinFields int         `mapstructure:"min_fields" yaml:"min_fields" json:"min_fields,omitempty"`
	When      string      `mapstructure:"when" yaml:"when" json:"when,omitempty"`
	Columns   []*Column   `mapstructure:"columns" yaml:"columns" json:"columns"`
	Sequences []*Sequence `mapstructure:"sequences" yaml:"sequences" json:"sequences,omitempty"`
	// SkipSequences - do not resync sequences. By default <target>_id_seq on id column is used
	SkipSequences bool `mapstructure:"skip_sequences" yaml:"skip_sequences" json:"skip_sequences,omitempty"`
}

type Column struct {
	Name string `mapstructure:"name" yaml:"name" json:"name"`
	Rule string `mapstructure:"rule" yaml:"rule" json:"rule"`
	// Source - raw field index. By default it is the position among the columns that consume a field
	Source *int `mapstructure:"source" yaml:"source" json:"source,omitempty"`
	// Value - literal of the constant rule
	Value *string `mapstructure:"value" yaml:"value" json:"value,omitempty"`
}

// Sequence - setval target. Column defaults to id
type Sequence struct {
	Name   string `mapstructure:"name" yaml:"name" json:"name"`
	Column string `mapstructure:"column" yaml:"column" json:"column,omitempty"`
}

// TargetName - the target table name. Source table name is used when target is not set
func (t *Table) TargetName() string {
	if t.Target != "" {
		return t.Target
	}
	return t.Source.Name
}
