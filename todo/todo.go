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

// Package todo is a small application built on crudkit: a Todo entity, its
// repository and a controller.
package todo

import (
	"github.com/uptrace/bun"

	"github.com/tomoncle/crudkit/model"
	"github.com/tomoncle/crudkit/types"
)

// Todo is a task with an optional reminder location.
type Todo struct {
	bun.BaseModel `bun:"table:todos"`

	ID              *int64  `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Title           string  `bun:"title,notnull" json:"title"`
	Desc            *string `bun:"description" json:"desc,omitempty"`
	IsComplete      *bool   `bun:"is_complete" json:"isComplete,omitempty"`
	RemindAtAddress *string `bun:"remind_at_address" json:"remindAtAddress,omitempty"` // address,city,zipcode
	RemindAtGeo     *string `bun:"remind_at_geo" json:"remindAtGeo,omitempty"`         // latitude,longitude
}

func (t *Todo) ToObject() types.DataObject { return model.ObjectOf(t) }

// TodoClass is the entity class of Todo.
var TodoClass = model.MustEntityClass[*Todo]("Todo", nil)
