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

package crudkit

import (
	"context"

	"github.com/tomoncle/crudkit/database"
	"github.com/tomoncle/crudkit/model"
	"github.com/tomoncle/crudkit/repository"
	"github.com/tomoncle/crudkit/types"
)

type Service[T model.Entity, ID any] interface {
	// Create persists data and returns the stored entity.
	Create(ctx context.Context, data types.DataObject) (T, error)

	// CreateAll persists every element of data, in order.
	CreateAll(ctx context.Context, data []types.DataObject) ([]T, error)

	// Save creates entity when its id is unset and replaces it otherwise.
	// The boolean is false when there was nothing to replace.
	Save(ctx context.Context, entity T) (T, bool, error)

	// Replace overwrites the entity stored under id.
	Replace(ctx context.Context, id ID, data types.DataObject) (bool, error)

	// Repository returns the underlying repository.
	Repository() repository.EntityCrudRepository[T, ID]
}

type baseServiceImpl[T model.Entity, ID any] struct {
	repo   repository.EntityCrudRepository[T, ID]
	name   string
	logger database.Logger
}

// NewService returns a Service that delegates to repo and logs each outcome
// through the database logger.
func NewService[T model.Entity, ID any](name string, repo repository.EntityCrudRepository[T, ID]) Service[T, ID] {
	return &baseServiceImpl[T, ID]{repo: repo, name: name, logger: database.GetLogger()}
}

func (s *baseServiceImpl[T, ID]) Repository() repository.EntityCrudRepository[T, ID] {
	return s.repo
}

func (s *baseServiceImpl[T, ID]) Create(ctx context.Context, data types.DataObject) (T, error) {
	entity, err := s.repo.Create(ctx, data, nil)
	if err != nil {
		s.logger.Error("Create failed", "model", s.name, "error", err)
		return entity, err
	}
	s.logger.Debug("Created", "model", s.name, "id", idOf(entity))
	return entity, nil
}

func (s *baseServiceImpl[T, ID]) CreateAll(ctx context.Context, data []types.DataObject) ([]T, error) {
	entities, err := s.repo.CreateAll(ctx, data, nil)
	if err != nil {
		s.logger.Error("CreateAll failed", "model", s.name, "count", len(data), "error", err)
		return nil, err
	}
	s.logger.Debug("Created all", "model", s.name, "count", len(entities))
	return entities, nil
}

func (s *baseServiceImpl[T, ID]) Save(ctx context.Context, entity T) (T, bool, error) {
	saved, ok, err := s.repo.Save(ctx, entity, nil)
	if err != nil {
		s.logger.Error("Save failed", "model", s.name, "error", err)
		return saved, false, err
	}
	if !ok {
		s.logger.Warn("Save found nothing to replace", "model", s.name, "id", idOf(entity))
		return saved, false, nil
	}
	s.logger.Debug("Saved", "model", s.name, "id", idOf(saved))
	return saved, true, nil
}

func (s *baseServiceImpl[T, ID]) Replace(ctx context.Context, id ID, data types.DataObject) (bool, error) {
	replaced, err := s.repo.ReplaceByID(ctx, id, data, nil)
	if err != nil {
		s.logger.Error("Replace failed", "model", s.name, "id", id, "error", err)
		return false, err
	}
	s.logger.Debug("Replaced", "model", s.name, "id", id, "matched", replaced)
	return replaced, nil
}

// idOf reads the "id" property for log fields only.
func idOf(entity model.Entity) interface{} {
	if model.IsUnset(entity) {
		return nil
	}
	return entity.ToObject()["id"]
}
