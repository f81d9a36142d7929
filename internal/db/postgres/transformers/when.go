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

package transformers

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"
)

const (
	recordExprNamespace    = "record"
	rawRecordExprNamespace = "raw"
)

// WhenCond - A condition that should be evaluated to determine if the row should be emitted. The record namespace
// contains decoded values by the target column name (NULL is nil), raw contains the raw fields of the row.
type WhenCond struct {
	whenCond *vm.Program
	when     string
}

// NewWhenCond - compile the condition. If the condition is empty, the WhenCond object will always return true.
func NewWhenCond(when string) (*WhenCond, error) {
	wc := &WhenCond{
		when: when,
	}
	if when == "" {
		return wc, nil
	}
	log.Debug().
		Str("WhenCond", when).
		Msg("found when condition: compiling")

	env := map[string]any{
		recordExprNamespace:    map[string]any{},
		rawRecordExprNamespace: []string{},
	}
	cond, err := expr.Compile(when, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("unable to compile when condition: %w", err)
	}
	wc.whenCond = cond
	return wc, nil
}

// Evaluate - evaluate the condition. If the condition is empty, it will always return true.
func (wc *WhenCond) Evaluate(record map[string]any, raw []string) (bool, error) {
	if wc.whenCond == nil {
		return true, nil
	}

	output, err := expr.Run(wc.whenCond, map[string]any{
		recordExprNamespace:    record,
		rawRecordExprNamespace: raw,
	})
	if err != nil {
		return false, fmt.Errorf("unable to evaluate when condition: %w", err)
	}

	cond, ok := output.(bool)
	if ok {
		return cond, nil
	}

	return false, fmt.Errorf("when condition should return boolean, got (%T) and value %+v", output, output)
}

func (wc *WhenCond) IsEmpty() bool {
	return wc.whenCond == nil
}
