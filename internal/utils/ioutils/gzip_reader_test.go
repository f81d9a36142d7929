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

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipData(t *testing.T, data string) []byte {
	buf := bytes.NewBuffer(nil)
	w := gzip.NewWriter(buf)
	_, err := w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestGzipReader(t *testing.T) {
	tests := []struct {
		name     string
		usePgzip bool
	}{
		{name: "gzip", usePgzip: false},
		{name: "pgzip", usePgzip: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed := gzipData(t, "COPY t (id) FROM stdin;\n1\n\\.\n")
			r, err := NewGzipReader(io.NopCloser(bytes.NewReader(compressed)), tt.usePgzip)
			require.NoError(t, err)
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, "COPY t (id) FROM stdin;\n1\n\\.\n", string(data))
		})
	}
}

func TestGzipReader_not_compressed(t *testing.T) {
	_, err := NewGzipReader(io.NopCloser(bytes.NewReader([]byte("plain text"))), false)
	require.Error(t, err)
}

func TestCountReader(t *testing.T) {
	r := NewCountReader(io.NopCloser(bytes.NewReader([]byte("12345"))))
	_, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, int64(5), r.GetCount())
}
