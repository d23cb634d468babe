// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package sqlstore

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Dialect holds the engine specific SQL of a workspace
type Dialect struct {
	Name string

	// Driver is the database/sql driver name
	Driver string

	placeholder  func(n int) string
	tableQuery   string
	fieldsQuery  string
	implicitRow  string
	objectIDType string
	integerType  string
}

// SQLite is the dialect of SQLite workspaces, using the modernc.org/sqlite
// driver
var SQLite = Dialect{
	Name:         "sqlite",
	Driver:       "sqlite",
	placeholder:  func(int) string { return "?" },
	tableQuery:   `SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name = ? COLLATE NOCASE`,
	fieldsQuery:  `SELECT name FROM pragma_table_info(?) ORDER BY cid`,
	implicitRow:  "rowid",
	objectIDType: "INTEGER PRIMARY KEY",
	integerType:  "INTEGER",
}

// Postgres is the dialect of PostgreSQL workspaces, using the pgx driver.
// Relations are looked up in the current schema.
var Postgres = Dialect{
	Name:         "postgres",
	Driver:       "pgx",
	placeholder:  func(n int) string { return "$" + strconv.Itoa(n) },
	tableQuery:   `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND lower(table_name) = lower($1)`,
	fieldsQuery:  `SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1 ORDER BY ordinal_position`,
	objectIDType: "BIGSERIAL PRIMARY KEY",
	integerType:  "BIGINT",
}

// quote quotes an identifier
func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// isPostgresDSN is true for postgres:// and postgresql:// URLs
func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// IsWorkspace is true for PostgreSQL DSNs and SQLite database files, by
// their extension
func IsWorkspace(path string) bool {
	if isPostgresDSN(path) {
		return true
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".sqlite3", ".db", ".gpkg":
		return true
	}

	return false
}
