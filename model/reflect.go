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
	"strings"
	"time"

	"github.com/tomoncle/crudkit/types"
)

var timeType = reflect.TypeOf(time.Time{})

// DefinitionOf derives a ModelDefinition from the struct tags of T.
//
// Property names come from the json tag (or the field name). The bun tag
// supplies the column name and the options pk, autoincrement/identity and
// notnull; a "table:" option on an embedded bun.BaseModel becomes the table
// setting. The crudkit tag accepts "generated" and "required".
func DefinitionOf[T any](name string) (*ModelDefinition, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model: %s is not a struct type", t)
	}
	if name == "" {
		name = t.Name()
	}
	def := NewModelDefinition(name)
	collectProperties(t, def)
	return def, nil
}

func collectProperties(t reflect.Type, def *ModelDefinition) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		bunTag := f.Tag.Get("bun")
		if f.Type.Name() == "BaseModel" && strings.Contains(f.Type.PkgPath(), "uptrace/bun") {
			for _, part := range strings.Split(bunTag, ",") {
				part = strings.TrimSpace(part)
				if strings.HasPrefix(part, "table:") {
					def.AddSetting(SettingTable, strings.TrimPrefix(part, "table:"))
				}
			}
			continue
		}
		if f.Anonymous && f.Tag.Get("json") == "" {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				collectProperties(ft, def)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		name, ok := propertyName(f)
		if !ok || bunTag == "-" || strings.Contains(bunTag, "rel:") || strings.Contains(bunTag, "m2m:") {
			continue
		}

		prop := PropertyDefinition{}
		prop.Type, prop.ItemType = inferPropertyType(f.Type)
		parts := strings.Split(bunTag, ",")
		if col := strings.TrimSpace(parts[0]); col != "" && col != name {
			prop.Column = col
		}
		for _, p := range parts[1:] {
			switch strings.TrimSpace(p) {
			case "pk":
				prop.ID = true
			case "autoincrement", "identity":
				prop.Generated = true
			case "notnull":
				prop.Required = true
			}
		}
		for _, p := range strings.Split(f.Tag.Get("crudkit"), ",") {
			switch strings.TrimSpace(p) {
			case "generated":
				prop.Generated = true
			case "required":
				prop.Required = true
			}
		}
		def.AddProperty(name, prop)
	}
}

// propertyName returns the json name of a field, or false when the field is
// excluded from json.
func propertyName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	if name := strings.Split(tag, ",")[0]; name != "" {
		return name, true
	}
	return f.Name, true
}

func inferPropertyType(rt reflect.Type) (PropertyType, PropertyType) {
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt == timeType {
		return TypeDate, TypeAny
	}
	switch rt.Kind() {
	case reflect.String:
		return TypeString, TypeAny
	case reflect.Bool:
		return TypeBoolean, TypeAny
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return TypeNumber, TypeAny
	case reflect.Slice, reflect.Array:
		if rt.Elem().Kind() == reflect.Uint8 {
			return TypeAny, TypeAny
		}
		item, _ := inferPropertyType(rt.Elem())
		return TypeArray, item
	case reflect.Map, reflect.Struct:
		return TypeObject, TypeAny
	default:
		return TypeAny, TypeAny
	}
}

// ObjectOf projects a struct (or pointer to struct) to plain data keyed by
// property name. Nil pointers, slices and maps are omitted and non-nil pointers are dereferenced.
func ObjectOf(v interface{}) types.DataObject {
	out := types.DataObject{}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return out
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return out
	}
	collectValues(rv, out)
	return out
}

func collectValues(rv reflect.Value, out types.DataObject) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fv := rv.Field(i)
		if f.Type.Name() == "BaseModel" && strings.Contains(f.Type.PkgPath(), "uptrace/bun") {
			continue
		}
		if f.Anonymous && f.Tag.Get("json") == "" {
			for fv.Kind() == reflect.Ptr {
				if fv.IsNil() {
					break
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				collectValues(fv, out)
				continue
			}
		}
		if !f.IsExported() || f.Tag.Get("bun") == "-" {
			continue
		}
		name, ok := propertyName(f)
		if !ok {
			continue
		}
		switch fv.Kind() {
		case reflect.Ptr:
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		case reflect.Slice, reflect.Map:
			if fv.IsNil() {
				continue
			}
		}
		out[name] = fv.Interface()
	}
}
