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

const (
	DefaultCopyDelimiter byte = '\t'
	copyStmtPrefix            = "COPY "
	fromStdinClause           = "FROM stdin"
)

var (
	DefaultNullSeq            = []byte("\\N")
	DefaultCopyTerminationSeq = []byte("\\.")
)

var ErrSectionNotFound = errors.New("section not found")

// Section - the data of one COPY block
type Section struct {
	// Identifier - table identifier from the COPY header
	Identifier Identifier
	// Header - the COPY header line as is
	Header string
	// Lines - raw lines between the header and the terminator. Leading and trailing blank lines are trimmed,
	// internal blank lines are kept
	Lines []string
	// Terminated - the block was closed with \. line. Otherwise it was collected until EOF
	Terminated bool
}

// Rows - data lines of the section in the original order without blank lines
func (s *Section) Rows() []string {
	res := make([]string, 0, len(s.Lines))
	for _, l := range s.Lines {
		if l == "" {
			continue
		}
		res = append(res, l)
	}
	return res
}

// SectionInfo - short description of a COPY block found in the dump
type SectionInfo struct {
	Identifier Identifier `json:"identifier"`
	Header     string     `json:"header"`
	// Line - 1-based line number of the header
	Line       int  `json:"line"`
	Rows       int  `json:"rows"`
	Terminated bool `json:"terminated"`
}

// FindSection - find the first COPY block of the table in the dump text. The column list between the table name and
// FROM stdin is not parsed.
func FindSection(doc []byte, id Identifier) (*Section, error) {
	var res *Section
	walkSections(splitLines(doc), func(s *Section, _ int) bool {
		if id.Match(s.Identifier) {
			res = s
			return false
		}
		return true
	})
	if res == nil {
		return nil, fmt.Errorf("table %s: %w", id, ErrSectionNotFound)
	}
	return res, nil
}

// ListSections - list all COPY blocks in the dump text
func ListSections(doc []byte) []*SectionInfo {
	var res []*SectionInfo
	walkSections(splitLines(doc), func(s *Section, line int) bool {
		res = append(res, &SectionInfo{
			Identifier: s.Identifier,
			Header:     s.Header,
			Line:       line,
			Rows:       len(s.Rows()),
			Terminated: s.Terminated,
		})
		return true
	})
	return res
}

func walkSections(lines []string, fn func(s *Section, line int) bool) {
	for idx := 0; idx < len(lines); idx++ {
		id, ok := parseCopyHeader(lines[idx])
		if !ok {
			continue
		}
		body, terminated, consumed := collectBlock(lines[idx+1:])
		s := &Section{
			Identifier: id,
			Header:     lines[idx],
			Lines:      body,
			Terminated: terminated,
		}
		if !fn(s, idx+1) {
			return
		}
		idx += consumed
	}
}

// parseCopyHeader - parse line like COPY public."District" (id, name) FROM stdin;
func parseCopyHeader(line string) (Identifier, bool) {
	if !strings.HasPrefix(line, copyStmtPrefix) {
		return Identifier{}, false
	}
	rest := strings.TrimRight(line, " ")
	if !strings.HasSuffix(rest, fromStdinClause+";") && !strings.HasSuffix(rest, fromStdinClause+".") {
		return Identifier{}, false
	}
	rest = rest[len(copyStmtPrefix) : len(rest)-len(fromStdinClause)-1]

	id, err := ParseIdentifier(scanQualifiedName(rest))
	if err != nil {
		return Identifier{}, false
	}
	return id, true
}

// scanQualifiedName - return the leading qualified name up to the first unquoted space or bracket
func scanQualifiedName(s string) string {
	var inQuotes bool
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"':
			inQuotes = !inQuotes
		case !inQuotes && (c == ' ' || c == '('):
			return s[:i]
		}
	}
	return s
}

// collectBlock - collect lines up to the terminator. consumed is the number of lines including the terminator
func collectBlock(lines []string) (body []string, terminated bool, consumed int) {
	end := len(lines)
	for idx, l := range lines {
		if l == string(DefaultCopyTerminationSeq) {
			end = idx
			terminated = true
			break
		}
	}
	consumed = end
	if terminated {
		consumed++
	}

	body = lines[:end]
	start := 0
	for start < len(body) && body[start] == "" {
		start++
	}
	stop := len(body)
	for stop > start && body[stop-1] == "" {
		stop--
	}
	return body[start:stop], terminated, consumed
}

func splitLines(doc []byte) []string {
	lines := strings.Split(string(doc), "\n")
	for idx, l := range lines {
		lines[idx] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
