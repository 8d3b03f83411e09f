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
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tomoncle/crudkit/model"
	"github.com/tomoncle/crudkit/types"
)

// MemoryConnector keeps records in process memory. Numeric ids are assigned
// from a per-model sequence, generated string ids are random UUIDs.
type MemoryConnector struct {
	mu     sync.RWMutex
	tables map[string]*memoryTable
	closed bool
}

type memoryTable struct {
	rows map[string]types.DataObject
	seq  int64
}

var (
	_ Connector   = (*MemoryConnector)(nil)
	_ Autoupdater = (*MemoryConnector)(nil)
)

func NewMemoryConnector() *MemoryConnector {
	return &MemoryConnector{tables: make(map[string]*memoryTable)}
}

func (c *MemoryConnector) Name() string { return "memory" }

func (c *MemoryConnector) Define(def *model.ModelDefinition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if _, ok := c.tables[def.Name]; !ok {
		c.tables[def.Name] = &memoryTable{rows: make(map[string]types.DataObject)}
	}
	return nil
}

func (c *MemoryConnector) Create(ctx context.Context, def *model.ModelDefinition, data types.DataObject, _ types.Options) (types.DataObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	table, err := c.table(def)
	if err != nil {
		return nil, err
	}
	return table.insert(def, data)
}

func (c *MemoryConnector) CreateAll(ctx context.Context, def *model.ModelDefinition, data []types.DataObject, _ types.Options) ([]types.DataObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	table, err := c.table(def)
	if err != nil {
		return nil, err
	}
	out := make([]types.DataObject, 0, len(data))
	for _, d := range data {
		row, err := table.insert(def, d)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (c *MemoryConnector) ReplaceByID(ctx context.Context, def *model.ModelDefinition, id interface{}, data types.DataObject, _ types.Options) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	table, err := c.table(def)
	if err != nil {
		return false, err
	}
	key, err := idKey(def, id)
	if err != nil {
		return false, err
	}
	current, ok := table.rows[key]
	if !ok {
		return false, nil
	}
	row := data.Clone()
	for _, name := range def.IDProperties() {
		row[name] = current[name]
	}
	table.rows[key] = row
	return true, nil
}

// Automigrate drops every record of the given models.
func (c *MemoryConnector) Automigrate(_ context.Context, defs ...*model.ModelDefinition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	for _, def := range defs {
		c.tables[def.Name] = &memoryTable{rows: make(map[string]types.DataObject)}
	}
	return nil
}

// Autoupdate creates tables for models that have none. Records are schemaless,
// so existing tables are left alone.
func (c *MemoryConnector) Autoupdate(_ context.Context, defs ...*model.ModelDefinition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	for _, def := range defs {
		if _, ok := c.tables[def.Name]; !ok {
			c.tables[def.Name] = &memoryTable{rows: make(map[string]types.DataObject)}
		}
	}
	return nil
}

func (c *MemoryConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Len returns the number of records stored for a model.
func (c *MemoryConnector) Len(modelName string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t, ok := c.tables[modelName]; ok {
		return len(t.rows)
	}
	return 0
}

func (c *MemoryConnector) table(def *model.ModelDefinition) (*memoryTable, error) {
	if c.closed {
		return nil, ErrClosed
	}
	t, ok := c.tables[def.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotDefined, def.Name)
	}
	return t, nil
}

func (t *memoryTable) insert(def *model.ModelDefinition, data types.DataObject) (types.DataObject, error) {
	row := data.Clone()
	for _, name := range def.IDProperties() {
		if !model.IsUnset(row[name]) {
			if n, ok := integral(row[name]); ok && n > t.seq {
				t.seq = n
			}
			continue
		}
		prop, _ := def.Property(name)
		switch {
		case prop.Type == model.TypeNumber || prop.Type == model.TypeAny:
			t.seq++
			row[name] = t.seq
		case prop.Type == model.TypeString && prop.Generated:
			row[name] = uuid.NewString()
		default:
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingID, def.Name, name)
		}
	}
	key, err := idKey(def, idValue(def, row))
	if err != nil {
		return nil, err
	}
	if _, exists := t.rows[key]; exists {
		return nil, fmt.Errorf("%w: %s %s", ErrDuplicateID, def.Name, key)
	}
	t.rows[key] = row
	return row.Clone(), nil
}

// idValue extracts the id of row in the shape ReplaceByID receives it.
func idValue(def *model.ModelDefinition, row types.DataObject) interface{} {
	ids := def.IDProperties()
	if len(ids) == 1 {
		return row[ids[0]]
	}
	return row.Pick(ids...)
}

// idKey normalises an id so 7, int64(7) and 7.0 address the same record.
func idKey(def *model.ModelDefinition, id interface{}) (string, error) {
	ids := def.IDProperties()
	if len(ids) == 0 {
		return "", fmt.Errorf("%w: model %s has no id property", ErrMissingID, def.Name)
	}
	if len(ids) == 1 {
		return scalarKey(id), nil
	}
	var composite map[string]interface{}
	switch v := id.(type) {
	case types.DataObject:
		composite = v
	case map[string]interface{}:
		composite = v
	default:
		return "", fmt.Errorf("%w: model %s needs a composite id, got %T", ErrInvalidData, def.Name, id)
	}
	parts := make([]string, len(ids))
	for i, name := range ids {
		parts[i] = scalarKey(composite[name])
	}
	return strings.Join(parts, "\x00"), nil
}

func scalarKey(v interface{}) string {
	if n, ok := integral(v); ok {
		return strconv.FormatInt(n, 10)
	}
	return fmt.Sprint(v)
}

func integral(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		if float32(int64(n)) == n {
			return int64(n), true
		}
	case float64:
		if float64(int64(n)) == n {
			return int64(n), true
		}
	}
	return 0, false
}
