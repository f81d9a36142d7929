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
	"errors"
	"slices"
)

var ErrIndexOutOfRage = errors.New("wrong column idx: index out of range")

type columnPos struct {
	start int
	end   int
}

// Row - the row driver that works with vanilla COPY format. It only splits the line by the delimiter, the field
// values are never unescaped
type Row struct {
	// raw - the line received from the dump
	raw []byte
	// columnPos - list of the column pos within the raw data. It may be longer than the current row
	columnPos []*columnPos
	// length - amount of fields in the current row
	length int
}

// NewRow - create row. sizeHint is the expected amount of fields, the row grows when a line has more
func NewRow(sizeHint int) *Row {
	if sizeHint < 0 {
		sizeHint = 0
	}
	pos := make([]*columnPos, sizeHint)
	for idx := range pos {
		pos[idx] = &columnPos{}
	}
	return &Row{
		columnPos: pos,
	}
}

func (r *Row) Decode(raw []byte) error {
	var colStartPos, colEndPos int

	// Building column position slice. Empty fields are kept
	idx := 0
	for colStartPos <= len(raw) {

		colEndPos = slices.Index(raw[colStartPos:], DefaultCopyDelimiter)
		if colEndPos == -1 {
			colEndPos = len(raw)
		} else {
			colEndPos = colStartPos + colEndPos
		}
		if idx >= len(r.columnPos) {
			r.columnPos = append(r.columnPos, &columnPos{})
		}

		p := r.columnPos[idx]
		p.start = colStartPos
		p.end = colEndPos

		colStartPos = colEndPos + 1
		idx++
	}
	r.raw = raw
	r.length = idx
	return nil
}

func (r *Row) GetColumnRaw(idx int) ([]byte, error) {
	if idx < 0 || r.length <= idx {
		return nil, ErrIndexOutOfRage
	}
	pos := r.columnPos[idx]
	return r.raw[pos.start:pos.end], nil
}

// Fields - all raw fields of the current row
func (r *Row) Fields() []string {
	res := make([]string, r.length)
	for idx := 0; idx < r.length; idx++ {
		pos := r.columnPos[idx]
		res[idx] = string(r.raw[pos.start:pos.end])
	}
	return res
}

func (r *Row) Length() int {
	return r.length
}
