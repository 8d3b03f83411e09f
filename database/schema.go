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
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/uptrace/bun"

	"github.com/tomoncle/crudkit/datasource"
	"github.com/tomoncle/crudkit/model"
)

var _ datasource.Autoupdater = (*Connector)(nil)

// AddColumnSQL builds an ALTER TABLE statement adding the column of property
// name. Added columns are always nullable so existing rows stay valid.
func AddColumnSQL(dialect string, def *model.ModelDefinition, name string) (string, error) {
	prop, ok := def.Property(name)
	if !ok {
		return "", fmt.Errorf("model %s has no property %s", def.Name, name)
	}
	if prop.ID {
		return "", fmt.Errorf("cannot add id column %s to existing table %s", name, def.TableName())
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
		quoteIdent(dialect, def.TableName()),
		quoteIdent(dialect, prop.ColumnName(name)),
		columnType(dialect, prop)), nil
}

// Autoupdate creates missing tables and adds the columns of new properties.
// Columns are never dropped or altered.
func (c *Connector) Autoupdate(ctx context.Context, defs ...*model.ModelDefinition) error {
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
		if _, err := db.ExecContext(ctx, create); err != nil {
			return fmt.Errorf("failed to create table %s: %w", def.TableName(), err)
		}
		existing, err := existingColumns(ctx, db, dialect, def.TableName())
		if err != nil {
			return fmt.Errorf("failed to inspect table %s: %w", def.TableName(), err)
		}
		var added []string
		for _, name := range def.PropertyNames() {
			prop, _ := def.Property(name)
			column := prop.ColumnName(name)
			if existing[strings.ToLower(column)] {
				continue
			}
			stmt, err := AddColumnSQL(dialect, def, name)
			if err != nil {
				return err
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to add column %s.%s: %w", def.TableName(), column, err)
			}
			added = append(added, column)
		}
		c.logger.Info("Table updated", "model", def.Name, "table", def.TableName(), "added", added)
	}
	return nil
}

// existingColumns returns the lower-cased column names of table.
func existingColumns(ctx context.Context, db bun.IDB, dialect, table string) (map[string]bool, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch dialect {
	case TypePostgres:
		rows, err = db.QueryContext(ctx,
			"SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = ?", table)
	case TypeMySQL:
		rows, err = db.QueryContext(ctx,
			"SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?", table)
	default:
		rows, err = db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	}
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	cols := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}
