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

package model

import (
	"strings"

	"github.com/tomoncle/crudkit/types"
)

// PropertyType is the schema-level type of a model property.
type PropertyType int

const (
	TypeAny PropertyType = iota
	TypeString
	TypeNumber
	TypeBoolean
	TypeDate
	TypeObject
	TypeArray
)

var propertyTypeNames = [...]string{"any", "string", "number", "boolean", "date", "object", "array"}

var _ types.BaseEnum = TypeAny

func (t PropertyType) IsValid() bool { return t >= TypeAny && t <= TypeArray }

func (t PropertyType) Number() int {
	if !t.IsValid() {
		return types.IllegalValue
	}
	return int(t)
}

func (t PropertyType) Name() string {
	if !t.IsValid() {
		return types.IllegalName
	}
	return propertyTypeNames[t]
}

func (t PropertyType) String() string { return t.Name() }

// ParsePropertyType maps a type name to a PropertyType. Unknown names map to TypeAny.
func ParsePropertyType(s string) PropertyType {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range propertyTypeNames {
		if name == s {
			return PropertyType(i)
		}
	}
	return TypeAny
}

// PropertyDefinition describes one property of a model.
type PropertyDefinition struct {
	Type PropertyType
	// ItemType is the element type of an array property.
	ItemType  PropertyType
	ID        bool
	Generated bool
	Required  bool
	// Column overrides the storage column name. Empty means the property name.
	Column string
}

// ColumnName returns the storage column for a property called name.
func (p PropertyDefinition) ColumnName(name string) string {
	if p.Column != "" {
		return p.Column
	}
	return name
}
