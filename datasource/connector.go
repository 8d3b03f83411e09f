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

	"github.com/tomoncle/crudkit/model"
	"github.com/tomoncle/crudkit/types"
)

// Connector performs storage operations for the models of a DataSource.
// Implementations receive the backend model definition with every call.
type Connector interface {
	Name() string
	// Define makes the connector aware of a model. It must be idempotent.
	Define(def *model.ModelDefinition) error
	// Create stores data and returns the stored record including generated ids.
	Create(ctx context.Context, def *model.ModelDefinition, data types.DataObject, opts types.Options) (types.DataObject, error)
	// CreateAll stores each record in order.
	CreateAll(ctx context.Context, def *model.ModelDefinition, data []types.DataObject, opts types.Options) ([]types.DataObject, error)
	// ReplaceByID replaces the record with the given id and reports whether it existed.
	ReplaceByID(ctx context.Context, def *model.ModelDefinition, id interface{}, data types.DataObject, opts types.Options) (bool, error)
	// Automigrate (re)creates storage for the given models.
	Automigrate(ctx context.Context, defs ...*model.ModelDefinition) error
	Close() error
}

// Autoupdater is implemented by connectors that can bring existing storage
// up to date with a model definition without dropping data.
type Autoupdater interface {
	Autoupdate(ctx context.Context, defs ...*model.ModelDefinition) error
}

// Logger is the key/value logger used by data sources.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}
