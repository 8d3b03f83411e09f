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

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONArray stores an array-typed property as JSON text.
type JSONArray []interface{}

// Value implements driver.Valuer for DataObject.
func (d DataObject) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for DataObject.
func (d *DataObject) Scan(value interface{}) error {
	if value == nil {
		*d = make(DataObject)
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, d)
}

// Value implements driver.Valuer for JSONArray.
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSONArray.
func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONArray, 0)
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, j)
}

// sqlite drivers hand TEXT columns back as string, mysql and postgres as []byte.
func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("cannot scan %T into a JSON value", value)
	}
}
