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

package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"

	"github.com/tomoncle/crudkit/datasource"
	"github.com/tomoncle/crudkit/model"
	"github.com/tomoncle/crudkit/types"
)

// Connector stores persisted models in SQL tables through bun. Each model maps
// to one table and each property to one column. Array and object properties
// are stored as JSON text.
type Connector struct {
	manager Manager
	logger  Logger
}

var _ datasource.Connector = (*Connector)(nil)

func NewConnector(manager Manager) *Connector {
	return &Connector{manager: manager, logger: GetLogger()}
}

// NewDataSource returns a data source called name backed by manager.
func NewDataSource(name string, manager Manager) *datasource.DataSource {
	c := NewConnector(manager)
	return datasource.New(name, c, datasource.WithLogger(c.logger))
}

func (c *Connector) Name() string { return "sql/" + c.dialect() }

func (c *Connector) dialect() string { return c.manager.Config().NormalizedType() }

func (c *Connector) db() (*bun.DB, error) {
	db := c.manager.GetDB()
	if db == nil {
		return nil, datasource.ErrClosed
	}
	return db, nil
}

// Define checks that def can be mapped to a table in the current dialect.
func (c *Connector) Define(def *model.ModelDefinition) error {
	_, err := CreateTableSQL(c.dialect(), def)
	return err
}

func (c *Connector) Create(ctx context.Context, def *model.ModelDefinition, data types.DataObject, _ types.Options) (types.DataObject, error) {
	db, err := c.db()
	if err != nil {
		return nil, err
	}
	row, err := encodeRow(def, data)
	if err != nil {
		return nil, err
	}
	out, err := c.insert(ctx, db, db, def, row)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Record created", "model", def.Name, "table", def.TableName())
	return decodeRow(def, out)
}

// CreateAll inserts every record in one transaction.
func (c *Connector) CreateAll(ctx context.Context, def *model.ModelDefinition, data []types.DataObject, _ types.Options) ([]types.DataObject, error) {
	db, err := c.db()
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]interface{}, len(data))
	for i, d := range data {
		if rows[i], err = encodeRow(def, d); err != nil {
			return nil, err
		}
	}
	out := make([]types.DataObject, 0, len(rows))
	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, row := range rows {
			inserted, err := c.insert(ctx, db, tx, def, row)
			if err != nil {
				return err
			}
			record, err := decodeRow(def, inserted)
			if err != nil {
				return err
			}
			out = append(out, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Records created", "model", def.Name, "table", def.TableName(), "count", len(out))
	return out, nil
}

func (c *Connector) insert(ctx context.Context, db *bun.DB, idb bun.IDB, def *model.ModelDefinition, row map[string]interface{}) (map[string]interface{}, error) {
	if len(row) == 0 {
		return nil, fmt.Errorf("%w: nothing to insert into %s", datasource.ErrInvalidData, def.Name)
	}
	q := idb.NewInsert().Model(&row).TableExpr("?", bun.Ident(def.TableName()))
	if db.HasFeature(feature.InsertReturning) {
		out := map[string]interface{}{}
		if err := q.Returning("*").Scan(ctx, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, err
	}
	ids := def.IDProperties()
	if len(ids) == 1 {
		prop, _ := def.Property(ids[0])
		col := prop.ColumnName(ids[0])
		if _, ok := row[col]; !ok && prop.Generated {
			id, err := res.LastInsertId()
			if err != nil {
				return nil, fmt.Errorf("failed to read generated id of %s: %w", def.Name, err)
			}
			row[col] = id
		}
	}
	return row, nil
}

// ReplaceByID overwrites every non-id column of the matching row. Properties
// missing from data are set to NULL.
func (c *Connector) ReplaceByID(ctx context.Context, def *model.ModelDefinition, id interface{}, data types.DataObject, _ types.Options) (bool, error) {
	db, err := c.db()
	if err != nil {
		return false, err
	}
	where, err := idColumns(def, id)
	if err != nil {
		return false, err
	}
	row, err := encodeRow(def, data)
	if err != nil {
		return false, err
	}
	for _, name := range def.IDProperties() {
		prop, _ := def.Property(name)
		delete(row, prop.ColumnName(name))
	}
	for _, name := range def.PropertyNames() {
		prop, _ := def.Property(name)
		if col := prop.ColumnName(name); !prop.ID {
			if _, ok := row[col]; !ok {
				row[col] = nil
			}
		}
	}

	table := bun.Ident(def.TableName())
	if len(row) == 0 {
		q := db.NewSelect().TableExpr("?", table)
		for col, v := range where {
			q = q.Where("? = ?", bun.Ident(col), v)
		}
		return q.Exists(ctx)
	}

	q := db.NewUpdate().Model(&row).TableExpr("?", table)
	for col, v := range where {
		q = q.Where("? = ?", bun.Ident(col), v)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	c.logger.Debug("Record replaced", "model", def.Name, "table", def.TableName(), "matched", n > 0)
	return n > 0, nil
}

// Automigrate drops and recreates the tables of defs. Query logging is muted
// meanwhile unless BUNDEBUG_MIGRATION is set.
func (c *Connector) Automigrate(ctx context.Context, defs ...*model.ModelDefinition) error {
	db, err := c.db()
	if err != nil {
		return err
	}
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		SetQueryLogSilent(true)
		defer SetQueryLogSilent(false)
	}
	dialect := c.dialect()
	for _, def := range defs {
		create, err := CreateTableSQL(dialect, def)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, DropTableSQL(dialect, def)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", def.TableName(), err)
		}
		if _, err := db.ExecContext(ctx, create); err != nil {
			return fmt.Errorf("failed to create table %s: %w", def.TableName(), err)
		}
		c.logger.Info("Table migrated", "model", def.Name, "table", def.TableName())
	}
	return nil
}

func (c *Connector) Close() error {
	return c.manager.Disconnect()
}

// idColumns maps the id columns of def to the values in id.
func idColumns(def *model.ModelDefinition, id interface{}) (map[string]interface{}, error) {
	ids := def.IDProperties()
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: model %s has no id property", datasource.ErrMissingID, def.Name)
	}
	where := make(map[string]interface{}, len(ids))
	if len(ids) == 1 {
		prop, _ := def.Property(ids[0])
		where[prop.ColumnName(ids[0])] = id
		return where, nil
	}
	var composite map[string]interface{}
	switch v := id.(type) {
	case types.DataObject:
		composite = v
	case map[string]interface{}:
		composite = v
	default:
		return nil, fmt.Errorf("%w: model %s needs a composite id, got %T", datasource.ErrInvalidData, def.Name, id)
	}
	for _, name := range ids {
		prop, _ := def.Property(name)
		where[prop.ColumnName(name)] = composite[name]
	}
	return where, nil
}

// encodeRow turns property values into column values. Undeclared properties
// have no column and are dropped. Unset ids are left out so the database can
// generate them.
func encodeRow(def *model.ModelDefinition, data types.DataObject) (map[string]interface{}, error) {
	row := make(map[string]interface{}, len(data))
	for name, v := range data {
		prop, declared := def.Property(name)
		if !declared {
			continue
		}
		if prop.ID && model.IsUnset(v) {
			continue
		}
		encoded, err := encodeValue(prop, v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", datasource.ErrInvalidData, def.Name, name, err)
		}
		row[prop.ColumnName(name)] = encoded
	}
	return row, nil
}

func encodeValue(prop model.PropertyDefinition, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch prop.Type {
	case model.TypeArray:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("expected an array, got %T", v)
		}
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		arr := make(types.JSONArray, rv.Len())
		for i := range arr {
			arr[i] = rv.Index(i).Interface()
		}
		return arr.Value()
	case model.TypeObject:
		switch o := v.(type) {
		case types.DataObject:
			return o.Value()
		case map[string]interface{}:
			return types.DataObject(o).Value()
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return v, nil
	}
}

// decodeRow maps a scanned row back to property names. JSON text columns are
// decoded and driver byte slices become strings.
func decodeRow(def *model.ModelDefinition, row map[string]interface{}) (types.DataObject, error) {
	byColumn := make(map[string]string, len(row))
	for _, name := range def.PropertyNames() {
		prop, _ := def.Property(name)
		byColumn[prop.ColumnName(name)] = name
	}
	out := make(types.DataObject, len(row))
	for col, v := range row {
		name, declared := byColumn[col]
		if !declared {
			out[col] = v
			continue
		}
		prop, _ := def.Property(name)
		decoded, err := decodeValue(prop, v)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s.%s: %w", def.Name, name, err)
		}
		out[name] = decoded
	}
	return out, nil
}

func decodeValue(prop model.PropertyDefinition, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch prop.Type {
	case model.TypeArray:
		var arr types.JSONArray
		if err := arr.Scan(v); err != nil {
			return nil, err
		}
		return []interface{}(arr), nil
	case model.TypeObject:
		var obj types.DataObject
		if err := obj.Scan(v); err != nil {
			return nil, err
		}
		return obj, nil
	}
	if b, ok := v.([]byte); ok {
		return string(b), nil
	}
	return v, nil
}
