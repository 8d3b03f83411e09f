// Package database provides connection management, health checks, query
// logging, SQL error classification and a bun backed datasource.Connector that
// stores persisted models in MySQL, PostgreSQL or SQLite tables.
package database
