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

package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/crudkit/datasource"
	"github.com/tomoncle/crudkit/model"
	"github.com/tomoncle/crudkit/repository"
	"github.com/tomoncle/crudkit/types"
)

type task struct {
	ID    *int64   `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
}

func (t *task) ToObject() types.DataObject { return model.ObjectOf(t) }

type label struct {
	Title string `json:"title"`
}

func (l *label) ToObject() types.DataObject { return model.ObjectOf(l) }

var taskClass = model.MustEntityClass[*task]("Task", nil)

func newTaskRepository(t *testing.T, ds *datasource.DataSource) *repository.DefaultCrudRepository[*task, int64] {
	t.Helper()
	repo, err := repository.NewDefaultCrudRepository[*task, int64](taskClass, ds)
	require.NoError(t, err)
	return repo
}

func TestNewDefaultCrudRepository_RejectsInvalidClasses(t *testing.T) {
	ds := datasource.NewMemory("db")

	repo, err := repository.NewDefaultCrudRepository[*label, string](model.MustEntityClass[*label]("Label", nil), ds)
	assert.ErrorIs(t, err, repository.ErrNoIDProperty)
	assert.Nil(t, repo)

	repo, err = repository.NewDefaultCrudRepository[*label, string](nil, ds)
	assert.ErrorIs(t, err, repository.ErrMissingDefinition)
	assert.Nil(t, repo)

	repo, err = repository.NewDefaultCrudRepository[*label, string](&model.EntityClass[*label]{Name: "Label"}, ds)
	assert.ErrorIs(t, err, repository.ErrMissingDefinition)
	assert.Nil(t, repo)

	assert.Empty(t, ds.Models())
}

func TestNewDefaultCrudRepository_SharesPersistedModel(t *testing.T) {
	ds := datasource.NewMemory("db")
	first := newTaskRepository(t, ds)
	second := newTaskRepository(t, ds)

	assert.Same(t, first.ModelClass(), second.ModelClass())
	assert.Same(t, ds, first.DataSource())
	assert.Same(t, taskClass, first.EntityClass())
	assert.Len(t, ds.Models(), 1)
	assert.True(t, first.ModelClass().Definition().Settings.Strict())

	tags, ok := first.ModelClass().Definition().Property("tags")
	require.True(t, ok)
	assert.Equal(t, model.TypeArray, tags.Type)
	assert.Equal(t, model.TypeString, tags.ItemType)
}

func TestNewDefaultCrudRepository_ConcurrentConstruction(t *testing.T) {
	ds := datasource.NewMemory("db")
	const n = 16
	models := make([]datasource.PersistedModelClass, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			repo, err := repository.NewDefaultCrudRepository[*task, int64](taskClass, ds)
			if assert.NoError(t, err) {
				models[i] = repo.ModelClass()
			}
		}(i)
	}
	wg.Wait()
	for _, m := range models {
		assert.Same(t, models[0], m)
	}
	assert.Len(t, ds.Models(), 1)
}

func TestDefaultCrudRepository_Scenario(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepository(t, datasource.NewMemory("db"))

	created, err := repo.Create(ctx, types.DataObject{"title": "buy milk"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", created.Title)
	require.NotNil(t, created.ID)

	replaced, err := repo.ReplaceByID(ctx, *created.ID, types.DataObject{"title": "buy bread"}, nil)
	require.NoError(t, err)
	assert.True(t, replaced)

	replaced, err = repo.ReplaceByID(ctx, 9999999, types.DataObject{"title": "x"}, nil)
	require.NoError(t, err)
	assert.False(t, replaced)
}

func TestDefaultCrudRepository_CreateKeepsInputFields(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepository(t, datasource.NewMemory("db"))

	input := types.DataObject{"title": "pack", "tags": []string{"trip", "bags"}}
	created, err := repo.Create(ctx, input, nil)
	require.NoError(t, err)

	out := created.ToObject()
	for k, v := range input {
		assert.Equal(t, v, out[k], k)
	}
	assert.Contains(t, out, "id")
}

func TestDefaultCrudRepository_CreateAll(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepository(t, datasource.NewMemory("db"))

	tasks, err := repo.CreateAll(ctx, []types.DataObject{{"title": "a"}, {"title": "b"}, {"title": "c"}}, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for i, title := range []string{"a", "b", "c"} {
		assert.Equal(t, title, tasks[i].Title)
		require.NotNil(t, tasks[i].ID)
		assert.Equal(t, int64(i+1), *tasks[i].ID)
	}

	tasks, err = repo.CreateAll(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestDefaultCrudRepository_StrictByDefault(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepository(t, datasource.NewMemory("db"))
	_, err := repo.Create(ctx, types.DataObject{"title": "x", "priority": 1}, nil)
	assert.ErrorIs(t, err, datasource.ErrUnknownProperty)

	loose := model.MustEntityClass[*task]("Task", model.Settings{model.SettingStrict: false})
	looseRepo, err := repository.NewDefaultCrudRepository[*task, int64](loose, datasource.NewMemory("db"))
	require.NoError(t, err)
	created, err := looseRepo.Create(ctx, types.DataObject{"title": "x", "priority": 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, "x", created.Title)
}

func TestDefaultCrudRepository_Save(t *testing.T) {
	ctx := context.Background()
	conn := datasource.NewMemoryConnector()
	repo := newTaskRepository(t, datasource.New("db", conn))

	saved, ok, err := repo.Save(ctx, &task{Title: "buy milk"}, nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, saved.ID)
	assert.Equal(t, 1, conn.Len("Task"))

	saved.Title = "buy bread"
	resaved, ok, err := repo.Save(ctx, saved, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, saved.ToObject(), resaved.ToObject())
	assert.NotSame(t, saved, resaved)
	assert.Equal(t, 1, conn.Len("Task"))

	missing := int64(9999999)
	gone, ok, err := repo.Save(ctx, &task{ID: &missing, Title: "x"}, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, gone)
	assert.Equal(t, 1, conn.Len("Task"))

	_, _, err = repo.Save(ctx, nil, nil)
	assert.ErrorIs(t, err, datasource.ErrInvalidData)
}

func TestDefaultCrudRepository_ExecuteIsNotImplemented(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepository(t, datasource.NewMemory("db"))

	var executable repository.ExecutableRepository[*task] = repo
	for _, params := range []types.Parameters{nil, types.NamedParameters{"id": 1}, types.PositionalParameters{1, "x"}} {
		out, err := executable.Execute(ctx, "SELECT 1", params, nil)
		assert.ErrorIs(t, err, repository.ErrNotImplemented)
		assert.Nil(t, out)
	}
	_, err := repo.Execute(ctx, types.AnyObject{"find": "tasks"}, nil, types.Options{"tx": true})
	assert.ErrorIs(t, err, repository.ErrNotImplemented)
}

func TestDefaultCrudRepository_Contracts(t *testing.T) {
	var repo repository.EntityCrudRepository[*task, int64] = newTaskRepository(t, datasource.NewMemory("db"))
	var _ repository.CrudRepository[*task] = repo
	var _ repository.EntityRepository[*task, int64] = repo
	assert.NotNil(t, repo)
}

// fakeModel is a persisted model whose results are scripted per test.
type fakeModel struct {
	def      *model.ModelDefinition
	create   func(data interface{}) interface{}
	replace  func(id interface{}, data types.DataObject) interface{}
	creates  int
	replaces int
}

func newFakeModel() *fakeModel {
	def := taskClass.Definition.Clone()
	return &fakeModel{def: def}
}

func (f *fakeModel) Name() string { return f.def.Name }
func (f *fakeModel) Definition() *model.ModelDefinition { return f.def }
func (f *fakeModel) AttachTo(*datasource.DataSource) error { return nil }
func (f *fakeModel) DataSource() *datasource.DataSource { return nil }
func (f *fakeModel) Create(_ context.Context, data interface{}, _ types.Options) interface{} {
	f.creates++
	return f.create(data)
}
func (f *fakeModel) ReplaceByID(_ context.Context, id interface{}, data types.DataObject, _ types.Options) interface{} {
	f.replaces++
	return f.replace(id, data)
}

type rawRecord types.DataObject

func (r rawRecord) ToObject() types.DataObject { return types.DataObject(r).Clone() }

func newFakeRepository(t *testing.T, fake *fakeModel) *repository.DefaultCrudRepository[*task, int64] {
	t.Helper()
	ds := datasource.NewMemory("db")
	_, loaded := ds.Registry().LoadOrRegister(fake)
	require.False(t, loaded)
	repo := newTaskRepository(t, ds)
	require.Same(t, fake, repo.ModelClass())
	return repo
}

func TestDefaultCrudRepository_NormalisesPromises(t *testing.T) {
	ctx := context.Background()
	record := rawRecord{"id": int64(7), "title": "t"}

	cases := map[string]interface{}{}
	cases["future"] = datasource.Resolved(record)
	ch := make(chan datasource.Settlement, 1)
	ch <- datasource.Settlement{Value: record}
	cases["settlement channel"] = (<-chan datasource.Settlement)(ch)
	cases["thunk"] = func(context.Context) (interface{}, error) { return record, nil }
	cases["await func"] = repository.AwaitFunc(func(context.Context) (interface{}, error) {
		return record, nil
	})
	for name, promise := range cases {
		t.Run(name, func(t *testing.T) {
			fake := newFakeModel()
			fake.create = func(interface{}) interface{} { return promise }
			created, err := newFakeRepository(t, fake).Create(ctx, types.DataObject{"title": "t"}, nil)
			require.NoError(t, err)
			assert.Equal(t, types.DataObject{"id": int64(7), "title": "t"}, created.ToObject())
		})
	}
}

func TestDefaultCrudRepository_RejectsNonPromises(t *testing.T) {
	ctx := context.Background()
	var nilFuture *datasource.Future
	for name, value := range map[string]interface{}{
		"number":     42,
		"nil":        nil,
		"nil future": nilFuture,
		"raw record": rawRecord{"id": int64(1)},
	} {
		t.Run(name, func(t *testing.T) {
			fake := newFakeModel()
			fake.create = func(interface{}) interface{} { return value }
			_, err := newFakeRepository(t, fake).Create(ctx, types.DataObject{"title": "t"}, nil)
			assert.ErrorIs(t, err, repository.ErrNotPromise)
		})
	}

	fake := newFakeModel()
	fake.create = func(interface{}) interface{} { return 42 }
	_, err := newFakeRepository(t, fake).Create(ctx, nil, nil)
	assert.EqualError(t, err, "repository: the value should be a promise: 42")
}

func TestDefaultCrudRepository_PropagatesBackendErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("backend down")
	fake := newFakeModel()
	fake.create = func(interface{}) interface{} { return datasource.Rejected(boom) }
	fake.replace = func(interface{}, types.DataObject) interface{} { return datasource.Rejected(boom) }
	repo := newFakeRepository(t, fake)

	_, err := repo.Create(ctx, types.DataObject{"title": "t"}, nil)
	assert.Equal(t, boom, err)
	_, err = repo.CreateAll(ctx, []types.DataObject{{"title": "t"}}, nil)
	assert.Equal(t, boom, err)
	_, err = repo.ReplaceByID(ctx, 1, types.DataObject{"title": "t"}, nil)
	assert.Equal(t, boom, err)
	assert.Equal(t, 2, fake.creates)
	assert.Equal(t, 1, fake.replaces)
}

func TestDefaultCrudRepository_RejectsUnexpectedRecords(t *testing.T) {
	ctx := context.Background()
	fake := newFakeModel()
	fake.create = func(interface{}) interface{} { return datasource.Resolved("not a record") }
	fake.replace = func(interface{}, types.DataObject) interface{} { return datasource.Resolved("yes") }
	repo := newFakeRepository(t, fake)

	_, err := repo.Create(ctx, types.DataObject{"title": "t"}, nil)
	assert.ErrorIs(t, err, repository.ErrUnexpectedRecord)
	_, err = repo.CreateAll(ctx, []types.DataObject{{"title": "t"}}, nil)
	assert.ErrorIs(t, err, repository.ErrUnexpectedRecord)
	_, err = repo.ReplaceByID(ctx, 1, types.DataObject{"title": "t"}, nil)
	assert.ErrorIs(t, err, repository.ErrUnexpectedRecord)
}

func TestDefaultCrudRepository_SaveNeverCreatesWithID(t *testing.T) {
	ctx := context.Background()
	fake := newFakeModel()
	fake.create = func(interface{}) interface{} { return datasource.Rejected(errors.New("unexpected create")) }
	var gotID interface{}
	var gotData types.DataObject
	fake.replace = func(id interface{}, data types.DataObject) interface{} {
		gotID, gotData = id, data
		return datasource.Resolved(true)
	}
	repo := newFakeRepository(t, fake)

	id := int64(5)
	input := &task{ID: &id, Title: "kept", Tags: []string{"x"}}
	saved, ok, err := repo.Save(ctx, input, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, fake.creates)
	assert.Equal(t, 1, fake.replaces)
	assert.Equal(t, int64(5), gotID)
	assert.Equal(t, input.ToObject(), gotData)
	assert.Equal(t, input.ToObject(), saved.ToObject())
}

func TestDefaultCrudRepository_SaveWithoutIDCreates(t *testing.T) {
	ctx := context.Background()
	fake := newFakeModel()
	var gotData interface{}
	fake.create = func(data interface{}) interface{} {
		gotData = data
		return datasource.Resolved(rawRecord{"id": int64(1), "title": "new"})
	}
	repo := newFakeRepository(t, fake)

	saved, ok, err := repo.Save(ctx, &task{Title: "new"}, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.DataObject{"title": "new"}, gotData)
	assert.Equal(t, 1, fake.creates)
	assert.Equal(t, 0, fake.replaces)
	assert.Equal(t, int64(1), *saved.ID)
}
