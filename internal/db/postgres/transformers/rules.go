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

package transformers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/greenmaskio/dumpinsert/internal/db/postgres/pgcopy"
	"github.com/greenmaskio/dumpinsert/internal/domains"
)

const (
	PassthroughRuleName                  = "passthrough"
	PassthroughNullableRuleName          = "passthrough_nullable"
	QuotedRuleName                       = "quoted"
	QuotedDefaultEmptyCollectionRuleName = "quoted_default_empty_collection"
	BooleanRuleName                      = "boolean"
	JsonRuleName                         = "json"
	ConstantRuleName                     = "constant"
)

const (
	sqlNull            = "NULL"
	sqlTrue            = "true"
	sqlFalse           = "false"
	emptyCollection    = "'{}'"
	copyBooleanTrueSeq = "t"
)

var errConstantValueRequired = errors.New("constant rule requires value")

var PassthroughRuleDefinition = NewRuleDefinition(
	NewRuleProperties(
		PassthroughRuleName,
		"Emit the raw field unchanged. Used for integer identifiers and foreign keys",
	),
	func(raw []byte, _ *domains.Column) (string, error) {
		return string(raw), nil
	},
)

var PassthroughNullableRuleDefinition = NewRuleDefinition(
	NewRuleProperties(
		PassthroughNullableRuleName,
		"Emit the raw field unchanged. The dump NULL marker \\N becomes NULL",
	),
	func(raw []byte, _ *domains.Column) (string, error) {
		if isNull(raw) {
			return sqlNull, nil
		}
		return string(raw), nil
	},
)

var QuotedRuleDefinition = NewRuleDefinition(
	NewRuleProperties(
		QuotedRuleName,
		"Wrap the raw field in single quotes. The dump NULL marker \\N becomes bare NULL. "+
			"Quotes and backslashes inside the value are not escaped",
	).SetQuotesValue(true),
	func(raw []byte, _ *domains.Column) (string, error) {
		if isNull(raw) {
			return sqlNull, nil
		}
		return quote(raw), nil
	},
)

var QuotedDefaultEmptyCollectionRuleDefinition = NewRuleDefinition(
	NewRuleProperties(
		QuotedDefaultEmptyCollectionRuleName,
		"Wrap the raw field in single quotes. The dump NULL marker \\N becomes the empty array literal '{}'",
	).SetQuotesValue(true),
	func(raw []byte, _ *domains.Column) (string, error) {
		if isNull(raw) {
			return emptyCollection, nil
		}
		return quote(raw), nil
	},
)

// BooleanRuleDefinition - there is no tri-state, all values except t are false
var BooleanRuleDefinition = NewRuleDefinition(
	NewRuleProperties(
		BooleanRuleName,
		"Raw field t becomes true, any other value including \\N becomes false",
	),
	func(raw []byte, _ *domains.Column) (string, error) {
		if string(raw) == copyBooleanTrueSeq {
			return sqlTrue, nil
		}
		return sqlFalse, nil
	},
)

var JsonRuleDefinition = NewRuleDefinition(
	NewRuleProperties(
		JsonRuleName,
		"Wrap the raw field in single quotes when it is a valid JSON document. \\N and invalid JSON become NULL",
	).SetQuotesValue(true),
	func(raw []byte, column *domains.Column) (string, error) {
		if isNull(raw) {
			return sqlNull, nil
		}
		decoded, _, err := pgcopy.DecodeAttr(raw, nil)
		if err != nil {
			return "", fmt.Errorf("unable to decode field: %w", err)
		}
		if !gjson.ValidBytes(decoded) {
			log.Warn().
				Str("Column", column.Name).
				Msg("invalid json value: replaced with NULL")
			return sqlNull, nil
		}
		return quote(raw), nil
	},
)

var ConstantRuleDefinition = NewRuleDefinition(
	NewRuleProperties(
		ConstantRuleName,
		"Emit the configured value verbatim without reading a raw field. Used for columns that "+
			"do not exist in the dump",
	).SetConsumesField(false),
	func(_ []byte, column *domains.Column) (string, error) {
		return *column.Value, nil
	},
).SetValidate(func(column *domains.Column) error {
	if column.Value == nil {
		return errConstantValueRequired
	}
	return nil
})

func init() {
	DefaultRuleRegistry.MustRegister(PassthroughRuleDefinition)
	DefaultRuleRegistry.MustRegister(PassthroughNullableRuleDefinition)
	DefaultRuleRegistry.MustRegister(QuotedRuleDefinition)
	DefaultRuleRegistry.MustRegister(QuotedDefaultEmptyCollectionRuleDefinition)
	DefaultRuleRegistry.MustRegister(BooleanRuleDefinition)
	DefaultRuleRegistry.MustRegister(JsonRuleDefinition)
	DefaultRuleRegistry.MustRegister(ConstantRuleDefinition)
}

func isNull(raw []byte) bool {
	return bytes.Equal(raw, pgcopy.DefaultNullSeq)
}

// quote - wrap into single quotes as is. The value is not escaped, a quote inside it breaks the literal
func quote(raw []byte) string {
	res := make([]byte, 0, len(raw)+2)
	res = append(res, '\'')
	res = append(res, raw...)
	res = append(res, '\'')
	return string(res)
}
