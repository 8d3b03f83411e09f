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

import "github.com/tomoncle/crudkit/types"

// ModelInstance is a raw record as returned by a persisted model.
type ModelInstance struct {
	model string
	data  types.DataObject
}

func newModelInstance(modelName string, data types.DataObject) *ModelInstance {
	return &ModelInstance{model: modelName, data: data.Clone()}
}

// ModelName is the name of the persisted model the record belongs to.
func (m *ModelInstance) ModelName() string { return m.model }

// ToObject returns a copy of the record's plain data.
func (m *ModelInstance) ToObject() types.DataObject { return m.data.Clone() }
