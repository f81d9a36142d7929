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

package config

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"github.com/greenmaskio/dumpinsert/internal/db/postgres/pgcopy"
)

// StringToIdentifierHookFunc - decode table identifier written as public."District"
func StringToIdentifierHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(pgcopy.Identifier{}) {
			return data, nil
		}
		id, err := pgcopy.ParseIdentifier(data.(string))
		if err != nil {
			return nil, err
		}
		return id, nil
	}
}

// DecoderConfig - decoder options shared by viper unmarshalling and embedded defaults decoding
func DecoderConfig(cfg *mapstructure.DecoderConfig) {
	cfg.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		StringToIdentifierHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// Decode - decode raw structure using DecoderConfig options
func Decode(input any, output any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           output,
		WeaklyTypedInput: true,
	}
	DecoderConfig(cfg)
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
