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

	"github.com/tomoncle/crudkit/model"
	"github.com/tomoncle/crudkit/types"
)

// Repository is the marker contract every repository of T satisfies.
type Repository[T model.Entity] interface{}

// ExecutableRepository runs raw commands against the underlying data source.
// Implementations without raw execution return ErrNotImplemented.
type ExecutableRepository[T model.Entity] interface {
	Repository[T]
	Execute(ctx context.Context, command types.Command, parameters types.Parameters, opts types.Options) (types.AnyObject, error)
}

// EntityRepository is a repository of identity-bearing entities.
type EntityRepository[T model.Entity, ID any] interface {
	ExecutableRepository[T]
}

// CrudRepository defines the create operations for a generic entity type.
type CrudRepository[T model.Entity] interface {
	Repository[T]

	Create(ctx context.Context, data types.DataObject, opts types.Options) (T, error)

	CreateAll(ctx context.Context, data []types.DataObject, opts types.Options) ([]T, error)
}

// EntityCrudRepository adds identity-based operations to CrudRepository.
type EntityCrudRepository[T model.Entity, ID any] interface {
	EntityRepository[T, ID]
	CrudRepository[T]

	// Save creates entity when its id is unset and replaces it otherwise. The
	// boolean is false when the record to replace does not exist.
	Save(ctx context.Context, entity T, opts types.Options) (T, bool, error)

	// ReplaceByID reports whether a record with id existed and was replaced.
	ReplaceByID(ctx context.Context, id ID, data types.DataObject, opts types.Options) (bool, error)
}
