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
	"sort"
	"sync"
)

// ModelRegistry stores the persisted model classes of one data source, keyed by name.
type ModelRegistry interface {
	Lookup(name string) (PersistedModelClass, bool)
	// LoadOrRegister stores m unless a model with the same name exists, and
	// returns whichever model is registered afterwards. loaded is true when the
	// existing model was kept.
	LoadOrRegister(m PersistedModelClass) (actual PersistedModelClass, loaded bool)
	Models() []PersistedModelClass
}

type modelRegistry struct {
	models map[string]PersistedModelClass
	mutex  sync.RWMutex
}

func newModelRegistry() *modelRegistry {
	return &modelRegistry{
		models: make(map[string]PersistedModelClass),
	}
}

func (r *modelRegistry) Lookup(name string) (PersistedModelClass, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	m, ok := r.models[name]
	return m, ok
}

func (r *modelRegistry) LoadOrRegister(m PersistedModelClass) (PersistedModelClass, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if existing, ok := r.models[m.Name()]; ok {
		return existing, true
	}
	r.models[m.Name()] = m
	return m, false
}

// loadOrBuild is LoadOrRegister with construction under the write lock, so a
// model is built and defined at most once per name.
func (r *modelRegistry) loadOrBuild(name string, build func() (PersistedModelClass, error)) (PersistedModelClass, bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if existing, ok := r.models[name]; ok {
		return existing, true, nil
	}
	m, err := build()
	if err != nil {
		return nil, false, err
	}
	r.models[name] = m
	return m, false, nil
}

// Models returns the registered models sorted by name.
func (r *modelRegistry) Models() []PersistedModelClass {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]PersistedModelClass, 0, len(r.models))
	for _, m := range r.models {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}
