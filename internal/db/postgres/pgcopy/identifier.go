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

package pgcopy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyIdentifier     = errors.New("empty identifier")
	ErrMalformedIdentifier = errors.New("malformed identifier")
)

// Identifier - table identifier as it is written in the dump. Quoted parts keep the case and may contain dots,
// unquoted parts are kept as written without case folding.
type Identifier struct {
	Schema string `json:"schema,omitempty"`
	Name   string `json:"name"`
}

// ParseIdentifier - parse identifier such as users, public.users or public."District"
func ParseIdentifier(s string) (Identifier, error) {
	parts, err := splitIdentifier(strings.TrimSpace(s))
	if err != nil {
		return Identifier{}, fmt.Errorf("cannot parse identifier %q: %w", s, err)
	}
	switch len(parts) {
	case 1:
		return Identifier{Name: parts[0]}, nil
	case 2:
		return Identifier{Schema: parts[0], Name: parts[1]}, nil
	}
	return Identifier{}, fmt.Errorf("cannot parse identifier %q: %w: too many parts", s, ErrMalformedIdentifier)
}

// Match - check that the identifier found in the dump is the requested one. Identifier without schema matches
// a table in any schema.
func (id Identifier) Match(found Identifier) bool {
	if id.Name != found.Name {
		return false
	}
	return id.Schema == "" || id.Schema == found.Schema
}

func (id Identifier) IsEmpty() bool {
	return id.Name == ""
}

// String - render identifier the way pg_dump does it
func (id Identifier) String() string {
	if id.Schema == "" {
		return quoteIdent(id.Name)
	}
	return quoteIdent(id.Schema) + "." + quoteIdent(id.Name)
}

// MarshalYAML - identifier is written in the same form it is parsed from
func (id Identifier) MarshalYAML() (interface{}, error) {
	return id.String(), nil
}

func splitIdentifier(s string) ([]string, error) {
	if s == "" {
		return nil, ErrEmptyIdentifier
	}

	var (
		parts     []string
		cur       []byte
		inQuotes  bool
		wasQuoted bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuotes && c == '"':
			// "" inside quotes is an escaped quote
			if i+1 < len(s) && s[i+1] == '"' {
				cur = append(cur, '"')
				i++
				continue
			}
			inQuotes = false
		case inQuotes:
			cur = append(cur, c)
		case c == '"':
			if len(cur) > 0 || wasQuoted {
				return nil, fmt.Errorf("%w: unexpected quote at position %d", ErrMalformedIdentifier, i)
			}
			inQuotes = true
			wasQuoted = true
		case c == '.':
			if len(cur) == 0 && !wasQuoted {
				return nil, fmt.Errorf("%w: empty part at position %d", ErrMalformedIdentifier, i)
			}
			parts = append(parts, string(cur))
			cur = cur[:0]
			wasQuoted = false
		default:
			if wasQuoted {
				return nil, fmt.Errorf("%w: unexpected symbol after closing quote at position %d", ErrMalformedIdentifier, i)
			}
			cur = append(cur, c)
		}
	}

	if inQuotes {
		return nil, fmt.Errorf("%w: unterminated quote", ErrMalformedIdentifier)
	}
	if len(cur) == 0 && !wasQuoted {
		return nil, fmt.Errorf("%w: empty part at the end", ErrMalformedIdentifier)
	}
	return append(parts, string(cur)), nil
}

func quoteIdent(s string) string {
	if isPlainIdent(s) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func isPlainIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c == '_':
		case i > 0 && (c >= '0' && c <= '9' || c == '$'):
		default:
			return false
		}
	}
	return true
}
