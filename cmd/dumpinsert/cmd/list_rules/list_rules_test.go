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
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenmaskio/dumpinsert/internal/db/postgres/transformers"
)

func TestRun(t *testing.T) {
	origFormat := format
	defer func() {
		format = origFormat
	}()

	t.Run("text", func(t *testing.T) {
		format = TextFormatName
		buf := bytes.NewBuffer(nil)
		require.NoError(t, run(buf, transformers.DefaultRuleRegistry, nil))
		assert.Contains(t, buf.String(), transformers.QuotedDefaultEmptyCollectionRuleName)
		assert.Contains(t, buf.String(), transformers.ConstantRuleName)
	})

	t.Run("json selected", func(t *testing.T) {
		format = JsonFormatName
		buf := bytes.NewBuffer(nil)
		require.NoError(t, run(buf, transformers.DefaultRuleRegistry, []string{transformers.BooleanRuleName}))
		var res []map[string]map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
		require.Len(t, res, 1)
		assert.Equal(t, transformers.BooleanRuleName, res[0]["properties"]["name"])
	})

	t.Run("unknown rule", func(t *testing.T) {
		format = TextFormatName
		err := run(bytes.NewBuffer(nil), transformers.DefaultRuleRegistry, []string{"uuid"})
		require.Error(t, err)
	})

	t.Run("unknown format", func(t *testing.T) {
		format = "xml"
		err := run(bytes.NewBuffer(nil), transformers.DefaultRuleRegistry, nil)
		require.Error(t, err)
	})
}
