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

package todo

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomoncle/crudkit"
)

// Error is a constant error value.
type Error string

func (e Error) Error() string { return string(e) }

const ErrTitleRequired Error = "todo: title is required"

// TodoController is the entry point for todo use cases.
type TodoController struct {
	service crudkit.Service[*Todo, int64]
}

func NewTodoController(repo *TodoRepository) *TodoController {
	return &TodoController{service: crudkit.NewService[*Todo, int64]("Todo", repo)}
}

func (c *TodoController) CreateTodo(ctx context.Context, todo *Todo) (*Todo, error) {
	if err := validate(todo); err != nil {
		return nil, err
	}
	return c.service.Create(ctx, todo.ToObject())
}

// ReplaceTodo reports whether a todo with id existed and was replaced.
func (c *TodoController) ReplaceTodo(ctx context.Context, id int64, todo *Todo) (bool, error) {
	if err := validate(todo); err != nil {
		return false, err
	}
	data := todo.ToObject()
	delete(data, "id")
	return c.service.Replace(ctx, id, data)
}

// SaveTodo creates todo when it has no id and replaces it otherwise. A nil
// todo with a nil error means there was nothing to replace.
func (c *TodoController) SaveTodo(ctx context.Context, todo *Todo) (*Todo, error) {
	if err := validate(todo); err != nil {
		return nil, err
	}
	saved, ok, err := c.service.Save(ctx, todo)
	if err != nil || !ok {
		return nil, err
	}
	return saved, nil
}

func validate(todo *Todo) error {
	if todo == nil || strings.TrimSpace(todo.Title) == "" {
		return ErrTitleRequired
	}
	if todo.ID != nil && *todo.ID <= 0 {
		return fmt.Errorf("todo: invalid id %d", *todo.ID)
	}
	return nil
}
