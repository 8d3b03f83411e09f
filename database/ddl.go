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
	"fmt"
	"strings"

	"github.com/tomoncle/crudkit/model"
)

// CreateTableSQL builds a CREATE TABLE IF NOT EXISTS statement for def in the
// given dialect. Arrays and objects are stored as JSON text. A single generated
// numeric id becomes an auto-increment primary key.
func CreateTableSQL(dialect string, def *model.ModelDefinition) (string, error) {
	names := def.PropertyNames()
	if len(names) == 0 {
		return "", fmt.Errorf("model %s has no properties", def.Name)
	}
	ids := def.IDProperties()
	inlinePK := len(ids) == 1

	columns := make([]string, 0, len(names)+1)
	for _, name := range names {
		prop, _ := def.Property(name)
		col := quoteIdent(dialect, prop.ColumnName(name)) + " " + columnType(dialect, prop)
		switch {
		case prop.ID && inlinePK && prop.Generated && isNumeric(prop):
			col += autoIncrement(dialect)
		case prop.ID && inlinePK:
			col += " PRIMARY KEY"
		case prop.ID || prop.Required:
			col += " NOT NULL"
		}
		columns = append(columns, col)
	}
	if len(ids) > 1 {
		keys := make([]string, len(ids))
		for i, name := range ids {
			prop, _ := def.Property(name)
			keys[i] = quoteIdent(dialect, prop.ColumnName(name))
		}
		columns = append(columns, "PRIMARY KEY ("+strings.Join(keys, ", ")+")")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdent(dialect, def.TableName()), strings.Join(columns, ", ")), nil
}

// DropTableSQL builds a DROP TABLE IF EXISTS statement for def.
func DropTableSQL(dialect string, def *model.ModelDefinition) string {
	return "DROP TABLE IF EXISTS " + quoteIdent(dialect, def.TableName())
}

func isNumeric(prop model.PropertyDefinition) bool {
	return prop.Type == model.TypeNumber || prop.Type == model.TypeAny
}

func autoIncrement(dialect string) string {
	switch dialect {
	case TypeMySQL:
		return " PRIMARY KEY AUTO_INCREMENT"
	case TypePostgres:
		return " GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	default:
		return " PRIMARY KEY AUTOINCREMENT"
	}
}

func columnType(dialect string, prop model.PropertyDefinition) string {
	switch prop.Type {
	case model.TypeNumber:
		if prop.ID {
			switch dialect {
			case TypeMySQL, TypePostgres:
				return "bigint"
			default:
				return "INTEGER"
			}
		}
		switch dialect {
		case TypeMySQL:
			return "double"
		case TypePostgres:
			return "double precision"
		default:
			return "REAL"
		}
	case model.TypeString:
		switch dialect {
		case TypeMySQL:
			return "varchar(255)"
		case TypePostgres:
			return "text"
		default:
			return "TEXT"
		}
	case model.TypeBoolean:
		switch dialect {
		case TypeMySQL:
			return "tinyint(1)"
		case TypePostgres:
			return "boolean"
		default:
			return "BOOLEAN"
		}
	case model.TypeDate:
		switch dialect {
		case TypeMySQL:
			return "datetime(6)"
		case TypePostgres:
			return "timestamptz"
		default:
			return "TIMESTAMP"
		}
	case model.TypeAny:
		switch {
		case prop.ID && dialect == TypeMySQL, prop.ID && dialect == TypePostgres:
			return "bigint"
		case prop.ID:
			return "INTEGER"
		case dialect == TypeMySQL, dialect == TypePostgres:
			return "text"
		default:
			return "TEXT"
		}
	default:
		switch dialect {
		case TypeMySQL:
			return "json"
		case TypePostgres:
			return "jsonb"
		default:
			return "TEXT"
		}
	}
}

func quoteIdent(dialect, s string) string {
	switch dialect {
	case TypeMySQL:
		return "`" + strings.ReplaceAll(s, "`", "``") + "`"
	default:
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
}
