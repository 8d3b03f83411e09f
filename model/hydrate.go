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
	"encoding/json"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/tomoncle/crudkit/types"
)

// Hydrate builds a T from plain data keyed by json property names. T may be a
// struct or a pointer to a struct. Input is weakly typed, so values coming
// back from SQL drivers (int64 booleans, []byte strings, RFC 3339 text dates,
// JSON text arrays) decode into the declared field types.
func Hydrate[T any](data types.DataObject) (T, error) {
	var out T
	target := reflect.ValueOf(&out).Elem()
	result := interface{}(&out)
	if target.Kind() == reflect.Ptr {
		target.Set(reflect.New(target.Type().Elem()))
		result = target.Interface()
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           result,
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonTextHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return out, err
	}
	if err := decoder.Decode(map[string]interface{}(data)); err != nil {
		return out, err
	}
	return out, nil
}

// jsonTextHook decodes JSON text into slice, map and non-time struct fields.
func jsonTextHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	for to.Kind() == reflect.Ptr {
		to = to.Elem()
	}
	switch to.Kind() {
	case reflect.Slice:
		if to.Elem().Kind() == reflect.Uint8 {
			return data, nil
		}
	case reflect.Map:
	case reflect.Struct:
		if to == timeType {
			return data, nil
		}
	default:
		return data, nil
	}
	var raw []byte
	switch v := data.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return data, nil
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}
