// Copyright 2023 Greenmask
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

package pgcopy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAttr(t *testing.T) {
	tests := []struct {
		name     string
		original []byte
		expected []byte
		isNull   bool
	}{
		{
			name:     "simple",
			original: []byte("123"),
			expected: []byte("123"),
		},
		{
			name:     "back slash escaping",
			original: []byte("\\\\"),
			expected: []byte("\\"),
		},
		{
			name:     "ASCII control chars escaping",
			original: []byte("\\b\\f\\n\\n\\t\\v"),
			expected: []byte("\b\f\n\n\t\v"),
		},
		{
			name:     "pgcopy termination symbol",
			original: []byte("\\\\."),
			expected: []byte("\\."),
		},
		{
			name:     "delimiter escaping",
			original: []byte("hello\\tnoname"),
			expected: []byte(fmt.Sprintf("hello%cnoname", DefaultCopyDelimiter)),
		},
		{
			name:     "Null value",
			original: []byte("\\N"),
			isNull:   true,
		},
		{
			name:     "Null sequence in text value",
			original: []byte("\\\\N"),
			expected: []byte("\\N"),
		},
		{
			name:     "Cyrillic",
			original: []byte("здравствуйте"),
			expected: []byte("здравствуйте"),
		},
		{
			name:     "Cyrillic octal format",
			original: []byte("\\320\\275\\320\\260"),
			expected: []byte("на"),
		},
		{
			name:     "Cyrillic hex format",
			original: []byte("\\xD0\\xBd\\xD0\\xB0"),
			expected: []byte("на"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, isNull, err := DecodeAttr(tt.original, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.isNull, isNull)
			if !isNull {
				assert.Equal(t, tt.expected, res, "wrong escaped bytes")
			}
		})
	}
}

func TestDecodeAttr_lone_backslash(t *testing.T) {
	_, _, err := DecodeAttr([]byte("\\"), nil)
	require.ErrorIs(t, err, ErrLoneBackslash)
}

func TestDecodeAttr_invalid_utf8(t *testing.T) {
	_, _, err := DecodeAttr([]byte("\\320"), nil)
	require.ErrorIs(t, err, ErrInvalidUtf8)
}
