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

	"github.com/greenmaskio/dumpinsert/internal/domains"
)

var DefaultRuleRegistry = NewRuleRegistry()

// ApplyFunc - convert the raw COPY field into SQL literal token
type ApplyFunc func(raw []byte, column *domains.Column) (string, error)

// ValidateFunc - check the column settings required by the rule
type ValidateFunc func(column *domains.Column) error

type RuleProperties struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// ConsumesField - rule reads a raw field. Rules that do not consume a field are not counted in the minimal
	// amount of fields
	ConsumesField bool `json:"consumes_field"`
	// QuotesValue - rule embeds the raw field into a string literal
	QuotesValue bool `json:"quotes_value"`
}

func NewRuleProperties(name, description string) *RuleProperties {
	return &RuleProperties{
		Name:          name,
		Description:   description,
		ConsumesField: true,
	}
}

func (rp *RuleProperties) SetConsumesField(v bool) *RuleProperties {
	rp.ConsumesField = v
	return rp
}

func (rp *RuleProperties) SetQuotesValue(v bool) *RuleProperties {
	rp.QuotesValue = v
	return rp
}

type RuleDefinition struct {
	Properties *RuleProperties `json:"properties"`
	Apply      ApplyFunc       `json:"-"`
	Validate   ValidateFunc    `json:"-"`
}

func NewRuleDefinition(properties *RuleProperties, apply ApplyFunc) *RuleDefinition {
	return &RuleDefinition{
		Properties: properties,
		Apply:      apply,
	}
}

func (d *RuleDefinition) SetValidate(v ValidateFunc) *RuleDefinition {
	d.Validate = v
	return d
}

type RuleRegistry struct {
	M     map[string]*RuleDefinition
	order []string
}

func NewRuleRegistry() *RuleRegistry {
	return &RuleRegistry{
		M: make(map[string]*RuleDefinition),
	}
}

func (rr *RuleRegistry) Register(definition *RuleDefinition) error {
	if _, ok := rr.M[definition.Properties.Name]; ok {
		return fmt.Errorf("unable to register rule: rule with Name %s already exists",
			definition.Properties.Name)
	}
	rr.M[definition.Properties.Name] = definition
	rr.order = append(rr.order, definition.Properties.Name)
	return nil
}

func (rr *RuleRegistry) MustRegister(definition *RuleDefinition) {
	if err := rr.Register(definition); err != nil {
		panic(err.Error())
	}
}

func (rr *RuleRegistry) Get(name string) (*RuleDefinition, bool) {
	d, ok := rr.M[name]
	return d, ok
}

// List - definitions in the registration order
func (rr *RuleRegistry) List() []*RuleDefinition {
	res := make([]*RuleDefinition, 0, len(rr.order))
	for _, name := range rr.order {
		res = append(res, rr.M[name])
	}
	return res
}
