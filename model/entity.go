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
	"fmt"
	"reflect"

	"github.com/tomoncle/crudkit/types"
)

// Entity is an identity-bearing record that can project itself to plain data.
type Entity interface {
	ToObject() types.DataObject
}

// EntityClass binds an entity type to its schema and constructor.
type EntityClass[T Entity] struct {
	Name       string
	Definition *ModelDefinition
	// New builds a fresh entity from plain data.
	New func(data types.DataObject) (T, error)
}

// NewEntityClass derives the definition of T from its struct tags, overlays
// settings, and uses Hydrate as the constructor.
func NewEntityClass[T Entity](name string, settings Settings) (*EntityClass[T], error) {
	def, err := DefinitionOf[T](name)
	if err != nil {
		return nil, err
	}
	for k, v := range settings {
		def.AddSetting(k, v)
	}
	return &EntityClass[T]{
		Name:       def.Name,
		Definition: def,
		New:        Hydrate[T],
	}, nil
}

// MustEntityClass is like NewEntityClass but panics on error. It is meant for
// package-level class variables.
func MustEntityClass[T Entity](name string, settings Settings) *EntityClass[T] {
	c, err := NewEntityClass[T](name, settings)
	if err != nil {
		panic(err)
	}
	return c
}

// IDOf returns the identifier of entity. A single id property yields its value,
// a composite id yields a DataObject of id values. Nil means the id is unset.
func (c *EntityClass[T]) IDOf(entity T) interface{} {
	if c.Definition == nil {
		return nil
	}
	ids := c.Definition.IDProperties()
	if len(ids) == 0 {
		return nil
	}
	obj := entity.ToObject()
	if len(ids) == 1 {
		v := obj[ids[0]]
		if IsUnset(v) {
			return nil
		}
		return v
	}
	composite := make(types.DataObject, len(ids))
	set := false
	for _, name := range ids {
		v := obj[name]
		if !IsUnset(v) {
			set = true
		}
		composite[name] = v
	}
	if !set {
		return nil
	}
	return composite
}

func (c *EntityClass[T]) String() string {
	return fmt.Sprintf("EntityClass(%s)", c.Name)
}

// IsUnset reports whether v is nil, a nil pointer, or a zero value.
func IsUnset(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsUnset(rv.Elem().Interface())
	}
	return rv.IsZero()
}
