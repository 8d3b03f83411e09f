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

package todo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/crudkit/datasource"
	"github.com/tomoncle/crudkit/model"
	"github.com/tomoncle/crudkit/todo"
)

func newController(t *testing.T) (*todo.TodoController, *datasource.MemoryConnector) {
	t.Helper()
	conn := datasource.NewMemoryConnector()
	repo, err := todo.NewTodoRepository(datasource.New("db", conn))
	require.NoError(t, err)
	return todo.NewTodoController(repo), conn
}

func ptr[V any](v V) *V { return &v }

func TestTodoClass(t *testing.T) {
	def := todo.TodoClass.Definition
	assert.Equal(t, "Todo", def.Name)
	assert.Equal(t, "todos", def.TableName())
	assert.Equal(t, []string{"id"}, def.IDProperties())
	assert.Equal(t, []string{"id", "title", "desc", "isComplete", "remindAtAddress", "remindAtGeo"}, def.PropertyNames())

	complete, ok := def.Property("isComplete")
	require.True(t, ok)
	assert.Equal(t, model.TypeBoolean, complete.Type)
	assert.Equal(t, "is_complete", complete.ColumnName("isComplete"))
}

func TestTodoController_CreateTodo(t *testing.T) {
	ctx := context.Background()
	c, conn := newController(t)

	created, err := c.CreateTodo(ctx, &todo.Todo{Title: "buy milk", Desc: ptr("2 litres"), RemindAtAddress: ptr("1 Main St,Springfield,12345")})
	require.NoError(t, err)
	require.NotNil(t, created.ID)
	assert.Equal(t, "buy milk", created.Title)
	assert.Equal(t, "2 litres", *created.Desc)
	assert.Equal(t, "1 Main St,Springfield,12345", *created.RemindAtAddress)
	assert.Nil(t, created.IsComplete)
	assert.Equal(t, 1, conn.Len("Todo"))

	_, err = c.CreateTodo(ctx, &todo.Todo{Title: "  "})
	assert.ErrorIs(t, err, todo.ErrTitleRequired)
	_, err = c.CreateTodo(ctx, nil)
	assert.ErrorIs(t, err, todo.ErrTitleRequired)
	assert.Equal(t, 1, conn.Len("Todo"))
}

func TestTodoController_ReplaceTodo(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t)

	created, err := c.CreateTodo(ctx, &todo.Todo{Title: "buy milk"})
	require.NoError(t, err)

	replaced, err := c.ReplaceTodo(ctx, *created.ID, &todo.Todo{Title: "buy bread", IsComplete: ptr(true)})
	require.NoError(t, err)
	assert.True(t, replaced)

	replaced, err = c.ReplaceTodo(ctx, 9999999, &todo.Todo{Title: "x"})
	require.NoError(t, err)
	assert.False(t, replaced)

	_, err = c.ReplaceTodo(ctx, *created.ID, &todo.Todo{})
	assert.ErrorIs(t, err, todo.ErrTitleRequired)
}

func TestTodoController_SaveTodo(t *testing.T) {
	ctx := context.Background()
	c, conn := newController(t)

	saved, err := c.SaveTodo(ctx, &todo.Todo{Title: "walk dog"})
	require.NoError(t, err)
	require.NotNil(t, saved.ID)

	saved.IsComplete = ptr(true)
	resaved, err := c.SaveTodo(ctx, saved)
	require.NoError(t, err)
	require.NotNil(t, resaved)
	assert.Equal(t, saved.ToObject(), resaved.ToObject())
	assert.Equal(t, 1, conn.Len("Todo"))

	gone, err := c.SaveTodo(ctx, &todo.Todo{ID: ptr(int64(42)), Title: "ghost"})
	require.NoError(t, err)
	assert.Nil(t, gone)

	_, err = c.SaveTodo(ctx, &todo.Todo{ID: ptr(int64(-1)), Title: "bad"})
	assert.Error(t, err)
}
