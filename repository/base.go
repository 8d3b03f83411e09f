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

package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/tomoncle/crudkit/datasource"
	"github.com/tomoncle/crudkit/model"
	"github.com/tomoncle/crudkit/types"
)

// record is the plain-data projection every raw backend record exposes.
type record interface {
	ToObject() types.DataObject
}

// DefaultCrudRepository binds one entity class to one data source and
// implements EntityCrudRepository by delegating to the persisted model.
// It holds no mutable state after construction.
type DefaultCrudRepository[T model.Entity, ID any] struct {
	entityClass *model.EntityClass[T]
	modelClass  datasource.PersistedModelClass
	dataSource  *datasource.DataSource
}

// NewDefaultCrudRepository returns a repository for class on ds. The persisted
// model registered under the class's model name is reused when present and
// defined (strict by default) otherwise.
func NewDefaultCrudRepository[T model.Entity, ID any](class *model.EntityClass[T], ds *datasource.DataSource) (*DefaultCrudRepository[T, ID], error) {
	if class == nil || class.Definition == nil {
		return nil, ErrMissingDefinition
	}
	def := class.Definition
	if len(def.IDProperties()) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoIDProperty, def.Name)
	}
	if ds == nil {
		return nil, fmt.Errorf("%w: %s", datasource.ErrNotAttached, def.Name)
	}
	modelClass, err := ensurePersistedModel(ds, def)
	if err != nil {
		return nil, err
	}
	return &DefaultCrudRepository[T, ID]{
		entityClass: class,
		modelClass:  modelClass,
		dataSource:  ds,
	}, nil
}

func ensurePersistedModel(ds *datasource.DataSource, def *model.ModelDefinition) (datasource.PersistedModelClass, error) {
	if m := ds.GetModel(def.Name); m != nil {
		return m, nil
	}
	settings := model.MergeSettings(model.Settings{model.SettingStrict: true}, def.Settings)
	m, err := ds.CreateModel(def.Name, datasource.SpecsFromDefinition(def), settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create persisted model %s: %w", def.Name, err)
	}
	if err := m.AttachTo(ds); err != nil {
		return nil, fmt.Errorf("failed to attach persisted model %s: %w", def.Name, err)
	}
	return m, nil
}

func (r *DefaultCrudRepository[T, ID]) EntityClass() *model.EntityClass[T] { return r.entityClass }

func (r *DefaultCrudRepository[T, ID]) ModelClass() datasource.PersistedModelClass { return r.modelClass }

func (r *DefaultCrudRepository[T, ID]) DataSource() *datasource.DataSource { return r.dataSource }

func (r *DefaultCrudRepository[T, ID]) Create(ctx context.Context, data types.DataObject, opts types.Options) (T, error) {
	var zero T
	value, err := await(ctx, r.modelClass.Create(ctx, data, opts))
	if err != nil {
		return zero, err
	}
	return r.toEntity(value)
}

func (r *DefaultCrudRepository[T, ID]) CreateAll(ctx context.Context, data []types.DataObject, opts types.Options) ([]T, error) {
	if data == nil {
		data = []types.DataObject{}
	}
	value, err := await(ctx, r.modelClass.Create(ctx, data, opts))
	if err != nil {
		return nil, err
	}
	return r.toEntities(value)
}

// Save delegates to Create when the id of entity is unset. Otherwise the
// record is replaced and entity itself, re-hydrated, is returned; false means
// there was nothing to replace.
func (r *DefaultCrudRepository[T, ID]) Save(ctx context.Context, entity T, opts types.Options) (T, bool, error) {
	var zero T
	if isNil(entity) {
		return zero, false, fmt.Errorf("%w: nil %s entity", datasource.ErrInvalidData, r.modelClass.Name())
	}
	data := entity.ToObject()
	id := r.entityClass.IDOf(entity)
	if id == nil {
		created, err := r.Create(ctx, data, opts)
		if err != nil {
			return zero, false, err
		}
		return created, true, nil
	}
	replaced, err := r.replaceByID(ctx, id, data, opts)
	if err != nil || !replaced {
		return zero, false, err
	}
	saved, err := r.entityClass.New(data)
	if err != nil {
		return zero, false, fmt.Errorf("failed to hydrate %s: %w", r.modelClass.Name(), err)
	}
	return saved, true, nil
}

func (r *DefaultCrudRepository[T, ID]) ReplaceByID(ctx context.Context, id ID, data types.DataObject, opts types.Options) (bool, error) {
	return r.replaceByID(ctx, id, data, opts)
}

func (r *DefaultCrudRepository[T, ID]) replaceByID(ctx context.Context, id interface{}, data types.DataObject, opts types.Options) (bool, error) {
	value, err := await(ctx, r.modelClass.ReplaceByID(ctx, id, data, opts))
	if err != nil {
		return false, err
	}
	replaced, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: replace on %s settled with %T", ErrUnexpectedRecord, r.modelClass.Name(), value)
	}
	return replaced, nil
}

// Execute is not supported.
func (r *DefaultCrudRepository[T, ID]) Execute(context.Context, types.Command, types.Parameters, types.Options) (types.AnyObject, error) {
	return nil, ErrNotImplemented
}

func (r *DefaultCrudRepository[T, ID]) toEntity(value interface{}) (T, error) {
	var zero T
	rec, ok := value.(record)
	if !ok || isNil(value) {
		return zero, fmt.Errorf("%w: %s settled with %T", ErrUnexpectedRecord, r.modelClass.Name(), value)
	}
	entity, err := r.entityClass.New(rec.ToObject())
	if err != nil {
		return zero, fmt.Errorf("failed to hydrate %s: %w", r.modelClass.Name(), err)
	}
	return entity, nil
}

func (r *DefaultCrudRepository[T, ID]) toEntities(value interface{}) ([]T, error) {
	rv := reflect.ValueOf(value)
	if value == nil || rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: %s batch settled with %T", ErrUnexpectedRecord, r.modelClass.Name(), value)
	}
	entities := make([]T, rv.Len())
	for i := range entities {
		entity, err := r.toEntity(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		entities[i] = entity
	}
	return entities, nil
}
