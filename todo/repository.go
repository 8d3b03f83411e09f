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
	"github.com/tomoncle/crudkit/datasource"
	"github.com/tomoncle/crudkit/repository"
)

// TodoRepository persists todos.
type TodoRepository struct {
	*repository.DefaultCrudRepository[*Todo, int64]
}

func NewTodoRepository(ds *datasource.DataSource) (*TodoRepository, error) {
	repo, err := repository.NewDefaultCrudRepository[*Todo, int64](TodoClass, ds)
	if err != nil {
		return nil, err
	}
	return &TodoRepository{DefaultCrudRepository: repo}, nil
}
