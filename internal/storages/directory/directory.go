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

package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sync"
	"syscall"

	"github.com/greenmaskio/dumpinsert/internal/storages"
)

var errPathIsRequired = errors.New("path is required")

const (
	dirMode  os.FileMode = 0750
	fileMode os.FileMode = 0640
)

type Storage struct {
	dirMode  os.FileMode
	fileMode os.FileMode
	cwd      string
	mx       *sync.Mutex
}

func NewStorage(cfg *Config) (*Storage, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, errPathIsRequired
	}
	fileInfo, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, err
	}
	if !fileInfo.IsDir() {
		return nil, errors.New("received directory path is file")
	}
	return &Storage{
		dirMode:  dirMode,
		fileMode: fileMode,
		cwd:      cfg.Path,
		mx:       &sync.Mutex{},
	}, nil
}

func (s *Storage) GetCwd() string {
	return s.cwd
}

func (s *Storage) GetObject(ctx context.Context, filePath string) (reader io.ReadCloser, err error) {
	reader, err = os.Open(s.fullPath(filePath))
	return
}

func (s *Storage) PutObject(ctx context.Context, filePath string, body io.Reader) error {
	dirPath := path.Dir(s.fullPath(filePath))
	_, err := os.Stat(dirPath)
	var errNo syscall.Errno
	if err != nil && errors.As(err, &errNo) && errNo == syscall.ENOENT {
		s.mx.Lock()
		if err = os.MkdirAll(dirPath, s.dirMode); err != nil {
			s.mx.Unlock()
			return fmt.Errorf("error creating directory: %w", err)
		}
		s.mx.Unlock()
	} else if err != nil {
		return fmt.Errorf("error getting file stat: %w", err)
	}
	f, err := os.OpenFile(s.fullPath(filePath), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, s.fileMode)
	if err != nil {
		return fmt.Errorf("unable to create file: %w", err)
	}
	defer f.Close()

	done := make(chan struct{})
	go func() {
		_, err = io.Copy(f, body)
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	if err != nil {
		return fmt.Errorf("error writing data: %w", err)
	}
	return nil
}

func (s *Storage) Exists(ctx context.Context, fileName string) (bool, error) {
	_, err := os.Stat(s.fullPath(fileName))
	if err != nil {
		if errors.Is(err, syscall.ENOENT) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Storage) SubStorage(dp string, relative bool) storages.Storager {
	dirPath := dp
	if relative {
		dirPath = path.Join(s.cwd, dp)
	}
	return &Storage{
		cwd:      dirPath,
		dirMode:  s.dirMode,
		fileMode: s.fileMode,
		mx:       s.mx,
	}
}

// fullPath - absolute paths are used as is, relative ones are joined with cwd
func (s *Storage) fullPath(filePath string) string {
	if path.IsAbs(filePath) {
		return filePath
	}
	return path.Join(s.cwd, filePath)
}
