/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package datasource

import (
	"fmt"
	"strings"

	"github.com/tomoncle/crudkit/model"
)

// PropertySpec is the data source's own notation for a model property.
// Array types are written as "[item]", for example "[string]".
type PropertySpec struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	ID        bool   `json:"id,omitempty"`
	Generated bool   `json:"generated,omitempty"`
	Required  bool   `json:"required,omitempty"`
	Column    string `json:"column,omitempty"`
}

// SpecsFromDefinition translates entity property definitions into data source
// notation, in declaration order.
func SpecsFromDefinition(def *model.ModelDefinition) []PropertySpec {
	names := def.PropertyNames()
	specs := make([]PropertySpec, 0, len(names))
	for _, name := range names {
		p, _ := def.Property(name)
		typ := p.Type.String()
		if p.Type == model.TypeArray {
			typ = "[" + p.ItemType.String() + "]"
		}
		specs = append(specs, PropertySpec{
			Name:      name,
			Type:      typ,
			ID:        p.ID,
			Generated: p.Generated,
			Required:  p.Required,
			Column:    p.Column,
		})
	}
	return specs
}

// buildDefinition turns property specs and settings into the definition the
// connector works with.
func buildDefinition(name string, specs []PropertySpec, settings model.Settings) (*model.ModelDefinition, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: model name is empty", ErrInvalidData)
	}
	def := model.NewModelDefinition(name)
	def.Settings = model.MergeSettings(settings)
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("%w: property without a name on model %s", ErrInvalidData, name)
		}
		prop := model.PropertyDefinition{
			ID:        spec.ID,
			Generated: spec.Generated,
			Required:  spec.Required,
			Column:    spec.Column,
		}
		typ := strings.TrimSpace(spec.Type)
		if strings.HasPrefix(typ, "[") && strings.HasSuffix(typ, "]") {
			prop.Type = model.TypeArray
			prop.ItemType = model.ParsePropertyType(typ[1 : len(typ)-1])
		} else {
			prop.Type = model.ParsePropertyType(typ)
		}
		def.AddProperty(spec.Name, prop)
	}
	return def, nil
}
