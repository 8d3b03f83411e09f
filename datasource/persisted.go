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

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomoncle/crudkit/model"
	"github.com/tomoncle/crudkit/types"
)

// PersistedModelClass is the dynamically typed backend representation of a model.
//
// Create accepts a types.DataObject or a []types.DataObject and returns a
// promise-like value resolving to a *ModelInstance or []*ModelInstance.
// ReplaceByID returns a promise-like value resolving to a bool.
type PersistedModelClass interface {
	Name() string
	Definition() *model.ModelDefinition
	AttachTo(ds *DataSource) error
	DataSource() *DataSource
	Create(ctx context.Context, data interface{}, opts types.Options) interface{}
	ReplaceByID(ctx context.Context, id interface{}, data types.DataObject, opts types.Options) interface{}
}

type persistedModel struct {
	def *model.ModelDefinition
	mu  sync.RWMutex
	ds  *DataSource
}

// DefineModel builds a persisted model class that is not yet attached to a
// data source.
func DefineModel(name string, properties []PropertySpec, settings model.Settings) (PersistedModelClass, error) {
	def, err := buildDefinition(name, properties, settings)
	if err != nil {
		return nil, err
	}
	return &persistedModel{def: def}, nil
}

func (m *persistedModel) Name() string { return m.def.Name }

func (m *persistedModel) Definition() *model.ModelDefinition { return m.def.Clone() }

func (m *persistedModel) DataSource() *DataSource {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ds
}

// AttachTo binds the model to ds and defines it on the connector. Attaching to
// a data source that already holds another model of the same name is an error.
func (m *persistedModel) AttachTo(ds *DataSource) error {
	if ds == nil {
		return ErrNotAttached
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ds == ds {
		return nil
	}
	actual, _, err := ds.registry.loadOrBuild(m.def.Name, func() (PersistedModelClass, error) {
		if err := ds.connector.Define(m.def); err != nil {
			return nil, fmt.Errorf("failed to define model %s on %s: %w", m.def.Name, ds.name, err)
		}
		return m, nil
	})
	if err != nil {
		return err
	}
	if actual != PersistedModelClass(m) {
		return fmt.Errorf("data source %s already has a model named %s", ds.name, m.def.Name)
	}
	m.ds = ds
	return nil
}

func (m *persistedModel) Create(ctx context.Context, data interface{}, opts types.Options) interface{} {
	ds := m.DataSource()
	if ds == nil {
		return Rejected(fmt.Errorf("%w: %s", ErrNotAttached, m.def.Name))
	}
	switch v := data.(type) {
	case types.DataObject:
		return m.createOne(ctx, ds, v, opts)
	case map[string]interface{}:
		return m.createOne(ctx, ds, types.DataObject(v), opts)
	case []types.DataObject:
		return m.createMany(ctx, ds, v, opts)
	default:
		return Rejected(fmt.Errorf("%w: cannot create %s from %T", ErrInvalidData, m.def.Name, data))
	}
}

func (m *persistedModel) createOne(ctx context.Context, ds *DataSource, data types.DataObject, opts types.Options) *Future {
	if err := m.checkProperties(data); err != nil {
		return Rejected(err)
	}
	return Go(ctx, func(ctx context.Context) (interface{}, error) {
		row, err := ds.connector.Create(ctx, m.def, m.writable(data), opts)
		if err != nil {
			return nil, err
		}
		return newModelInstance(m.def.Name, row), nil
	})
}

func (m *persistedModel) createMany(ctx context.Context, ds *DataSource, data []types.DataObject, opts types.Options) *Future {
	batch := make([]types.DataObject, len(data))
	for i, d := range data {
		if err := m.checkProperties(d); err != nil {
			return Rejected(err)
		}
		batch[i] = m.writable(d)
	}
	return Go(ctx, func(ctx context.Context) (interface{}, error) {
		rows, err := ds.connector.CreateAll(ctx, m.def, batch, opts)
		if err != nil {
			return nil, err
		}
		instances := make([]*ModelInstance, len(rows))
		for i, row := range rows {
			instances[i] = newModelInstance(m.def.Name, row)
		}
		return instances, nil
	})
}

func (m *persistedModel) ReplaceByID(ctx context.Context, id interface{}, data types.DataObject, opts types.Options) interface{} {
	ds := m.DataSource()
	if ds == nil {
		return Rejected(fmt.Errorf("%w: %s", ErrNotAttached, m.def.Name))
	}
	if model.IsUnset(id) {
		return Rejected(fmt.Errorf("%w: replace on %s", ErrMissingID, m.def.Name))
	}
	if err := m.checkProperties(data); err != nil {
		return Rejected(err)
	}
	payload := m.writable(data)
	return Go(ctx, func(ctx context.Context) (interface{}, error) {
		return ds.connector.ReplaceByID(ctx, m.def, id, payload, opts)
	})
}

// checkProperties rejects properties the definition does not declare when the
// model is strict.
func (m *persistedModel) checkProperties(data types.DataObject) error {
	if !m.def.Settings.Strict() {
		return nil
	}
	for key := range data {
		if _, ok := m.def.Property(key); !ok {
			return fmt.Errorf("%w %q on model %s", ErrUnknownProperty, key, m.def.Name)
		}
	}
	return nil
}

// writable copies data so the connector never aliases caller maps.
func (m *persistedModel) writable(data types.DataObject) types.DataObject {
	return data.Clone()
}
