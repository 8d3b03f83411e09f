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

	"github.com/tomoncle/crudkit/model"
	"github.com/tomoncle/crudkit/utils"
)

// DataSource is a named handle over a Connector. It owns the registry of
// persisted model classes defined on it, one per model name.
type DataSource struct {
	name      string
	connector Connector
	registry  *modelRegistry
	logger    Logger
}

// Option configures a DataSource.
type Option func(*DataSource)

// WithLogger replaces the default logger.
func WithLogger(logger Logger) Option {
	return func(ds *DataSource) {
		if logger != nil {
			ds.logger = logger
		}
	}
}

// New returns a data source called name backed by connector.
func New(name string, connector Connector, opts ...Option) *DataSource {
	ds := &DataSource{
		name:      name,
		connector: connector,
		registry:  newModelRegistry(),
		logger:    utils.NewFieldLogger("DATASOURCE"),
	}
	for _, opt := range opts {
		opt(ds)
	}
	return ds
}

// NewMemory returns a data source backed by a fresh MemoryConnector.
func NewMemory(name string, opts ...Option) *DataSource {
	return New(name, NewMemoryConnector(), opts...)
}

func (ds *DataSource) Name() string { return ds.name }

func (ds *DataSource) Connector() Connector { return ds.connector }

func (ds *DataSource) Registry() ModelRegistry { return ds.registry }

// GetModel returns the persisted model called name, or nil.
func (ds *DataSource) GetModel(name string) PersistedModelClass {
	m, ok := ds.registry.Lookup(name)
	if !ok {
		return nil
	}
	return m
}

// CreateModel defines a persisted model and attaches it. When a model with the
// same name is already registered, that model is returned and nothing is
// redefined.
func (ds *DataSource) CreateModel(name string, properties []PropertySpec, settings model.Settings) (PersistedModelClass, error) {
	def, err := buildDefinition(name, properties, settings)
	if err != nil {
		return nil, err
	}
	m, loaded, err := ds.registry.loadOrBuild(name, func() (PersistedModelClass, error) {
		if err := ds.connector.Define(def); err != nil {
			return nil, fmt.Errorf("failed to define model %s on %s: %w", name, ds.name, err)
		}
		return &persistedModel{def: def, ds: ds}, nil
	})
	if err != nil {
		return nil, err
	}
	if loaded {
		ds.logger.Debug("Reusing persisted model", "model", name, "datasource", ds.name)
	} else {
		ds.logger.Debug("Persisted model created", "model", name, "datasource", ds.name, "connector", ds.connector.Name(), "properties", len(properties))
	}
	return m, nil
}

// Models returns the registered model classes sorted by name.
func (ds *DataSource) Models() []PersistedModelClass {
	return ds.registry.Models()
}

// Automigrate (re)creates storage for the named models, or for every
// registered model when no names are given.
func (ds *DataSource) Automigrate(ctx context.Context, names ...string) error {
	defs, err := ds.definitions(names)
	if err != nil {
		return err
	}
	if err := ds.connector.Automigrate(ctx, defs...); err != nil {
		return fmt.Errorf("automigrate on %s failed: %w", ds.name, err)
	}
	ds.logger.Info("Automigrate completed", "datasource", ds.name, "models", len(defs))
	return nil
}

// Autoupdate creates missing storage and adds missing columns for the named
// models, keeping existing data. The connector must implement Autoupdater.
func (ds *DataSource) Autoupdate(ctx context.Context, names ...string) error {
	updater, ok := ds.connector.(Autoupdater)
	if !ok {
		return fmt.Errorf("%w: autoupdate on %s", ErrNotSupported, ds.connector.Name())
	}
	defs, err := ds.definitions(names)
	if err != nil {
		return err
	}
	if err := updater.Autoupdate(ctx, defs...); err != nil {
		return fmt.Errorf("autoupdate on %s failed: %w", ds.name, err)
	}
	ds.logger.Info("Autoupdate completed", "datasource", ds.name, "models", len(defs))
	return nil
}

func (ds *DataSource) definitions(names []string) ([]*model.ModelDefinition, error) {
	var defs []*model.ModelDefinition
	if len(names) == 0 {
		for _, m := range ds.registry.Models() {
			defs = append(defs, m.Definition())
		}
		return defs, nil
	}
	for _, name := range names {
		m := ds.GetModel(name)
		if m == nil {
			return nil, fmt.Errorf("%w: %s", ErrModelNotDefined, name)
		}
		defs = append(defs, m.Definition())
	}
	return defs, nil
}

// Disconnect closes the underlying connector.
func (ds *DataSource) Disconnect() error {
	if err := ds.connector.Close(); err != nil {
		ds.logger.Error("Failed to close connector", "datasource", ds.name, "error", err)
		return err
	}
	ds.logger.Info("Data source disconnected", "datasource", ds.name)
	return nil
}
