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

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/greenmaskio/dumpinsert/internal/db/postgres/transformers"
	"github.com/greenmaskio/dumpinsert/internal/domains"
	"github.com/greenmaskio/dumpinsert/internal/storages"
	"github.com/greenmaskio/dumpinsert/internal/utils/ioutils"
)

const gzipExt = ".gz"

var ErrDumpFileRequired = errors.New("dump file is required")

// ReadDump - read the whole dump into memory. The dump is decompressed when it has .gz extension or compressed is
// set
func ReadDump(ctx context.Context, st storages.Storager, fileName string, compressed, usePgzip bool) ([]byte, error) {
	if fileName == "" {
		return nil, ErrDumpFileRequired
	}
	obj, err := st.GetObject(ctx, fileName)
	if err != nil {
		return nil, fmt.Errorf("unable to open dump file: %w", err)
	}
	cr := ioutils.NewCountReader(obj)
	var r io.ReadCloser = cr
	if compressed || strings.HasSuffix(fileName, gzipExt) {
		r, err = ioutils.NewGzipReader(cr, usePgzip)
		if err != nil {
			return nil, err
		}
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Warn().
				Err(err).
				Msg("error closing dump file")
		}
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read dump file: %w", err)
	}
	log.Debug().
		Str("File", fileName).
		Int64("ReadBytes", cr.GetCount()).
		Int("DumpBytes", len(data)).
		Msg("dump loaded")
	return data, nil
}

// Generate - read the dump from the storage and produce the SQL script
func Generate(ctx context.Context, cfg *domains.Convert, st storages.Storager) ([]byte, *Report, error) {
	c, err := NewConverter(cfg, transformers.DefaultRuleRegistry)
	if err != nil {
		return nil, nil, err
	}
	doc, err := ReadDump(ctx, st, cfg.File, cfg.Compressed, cfg.UsePgzip)
	if err != nil {
		return nil, nil, err
	}
	buf := bytes.NewBuffer(nil)
	report, err := c.Convert(ctx, doc, buf)
	if err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), report, nil
}

// Run - generate the script and write it to the output object. The script is written to stdout when output is not
// set
func Run(ctx context.Context, cfg *domains.Convert, st storages.Storager, stdout io.Writer) (*Report, error) {
	script, report, err := Generate(ctx, cfg, st)
	if err != nil {
		return nil, err
	}
	if cfg.Output == "" {
		if _, err = stdout.Write(script); err != nil {
			return nil, fmt.Errorf("unable to write script: %w", err)
		}
		return report, nil
	}
	if err = st.PutObject(ctx, cfg.Output, bytes.NewReader(script)); err != nil {
		return nil, fmt.Errorf("unable to store script: %w", err)
	}
	log.Info().
		Str("Output", cfg.Output).
		Int("Rows", report.Emitted()).
		Msg("script stored")
	return report, nil
}
