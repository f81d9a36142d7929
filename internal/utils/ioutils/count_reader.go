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

package ioutils

import "io"

// CountReader - counts the bytes read from the underlying reader
type CountReader struct {
	r     io.ReadCloser
	count int64
}

func NewCountReader(r io.ReadCloser) *CountReader {
	return &CountReader{
		r: r,
	}
}

func (r *CountReader) Read(p []byte) (n int, err error) {
	c, err := r.r.Read(p)
	r.count += int64(c)
	return c, err
}

func (r *CountReader) Close() error {
	return r.r.Close()
}

func (r *CountReader) GetCount() int64 {
	return r.count
}
