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

package types

// DataObject is a partial, write-oriented plain-data view of an entity.
// Keys are property names.
type DataObject map[string]interface{}

// AnyObject is an untyped result returned by backend-native commands.
type AnyObject map[string]interface{}

// Options carries per-operation settings through to the backend.
type Options map[string]interface{}

// Command is either a raw command string or a structured AnyObject.
type Command interface{}

// Parameters is implemented by NamedParameters and PositionalParameters.
type Parameters interface {
	isParameters()
}

// NamedParameters binds command parameters by name.
type NamedParameters map[string]interface{}

// PositionalParameters binds command parameters by position.
type PositionalParameters []interface{}

func (NamedParameters) isParameters() {}
func (PositionalParameters) isParameters() {}

// Clone returns a shallow copy. A nil object clones to an empty one.
func (d DataObject) Clone() DataObject {
	out := make(DataObject, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Pick returns a copy holding only the given keys that are present.
func (d DataObject) Pick(keys ...string) DataObject {
	out := make(DataObject, len(keys))
	for _, k := range keys {
		if v, ok := d[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Keys returns the property names present in the object, in no particular order.
func (d DataObject) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	return keys
}

// Get returns an option value, or nil when the options are nil.
func (o Options) Get(key string) interface{} {
	if o == nil {
		return nil
	}
	return o[key]
}
