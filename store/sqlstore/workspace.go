// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/patrickbr/routeshaper/datamodel"
	"github.com/patrickbr/routeshaper/geom"
	_ "modernc.org/sqlite"
	"os"
	"time"
)

// SpatialRefTable holds the spatial reference of geometry tables, one row
// per table
const SpatialRefTable = "spatial_refs"

// Workspace is a SQL database holding transit data model tables, traversal
// results and output routes. Geometries are stored as GeoJSON geometry
// text.
type Workspace struct {
	db      *sql.DB
	dialect Dialect

	// GeometryField is the name of the geometry column of every table
	GeometryField string
}

// New creates a workspace over an open database
func New(db *sql.DB, dialect Dialect) *Workspace {
	return &Workspace{db: db, dialect: dialect, GeometryField: "Shape"}
}

// Open opens a PostgreSQL workspace for postgres:// DSNs and a SQLite
// workspace otherwise. SQLite files are created if missing.
func Open(ctx context.Context, dsn string) (*Workspace, error) {
	if isPostgresDSN(dsn) {
		return OpenPostgres(ctx, dsn)
	}
	return OpenSQLite(ctx, dsn, false)
}

// OpenSQLite opens a SQLite workspace. If mustExist is set, a missing
// database file is an error instead of being created.
func OpenSQLite(ctx context.Context, path string, mustExist bool) (*Workspace, error) {
	if mustExist && path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("workspace %s does not exist: %w", path, err)
		}
	}

	// lookups run while the edge cursor is open, so more than one
	// connection is needed. In-memory databases are not shared between
	// connections and cannot be used here.
	db, err := sql.Open(SQLite.Driver, path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(db, SQLite), nil
}

// OpenPostgres opens a PostgreSQL workspace
func OpenPostgres(ctx context.Context, dsn string) (*Workspace, error) {
	db, err := sql.Open(Postgres.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(db, Postgres), nil
}

// Close closes the database
func (w *Workspace) Close() error {
	return w.db.Close()
}

// DB returns the underlying database
func (w *Workspace) DB() *sql.DB {
	return w.db
}

// Dialect returns the SQL dialect of the workspace
func (w *Workspace) Dialect() Dialect {
	return w.dialect
}

// Exists reports whether the table or view exists, matching its name
// case-insensitively
func (w *Workspace) Exists(ctx context.Context, relation string) (bool, error) {
	_, ok, err := w.tableName(ctx, relation)
	return ok, err
}

// Fields returns the column names of the relation
func (w *Workspace) Fields(ctx context.Context, relation string) ([]string, error) {
	table, ok, err := w.tableName(ctx, relation)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("relation %s does not exist", relation)
	}

	rows, err := w.db.QueryContext(ctx, w.dialect.fieldsQuery, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	return fields, rows.Err()
}

// SpatialReference returns the spatial reference registered for the
// relation, or the empty reference if none is registered
func (w *Workspace) SpatialReference(ctx context.Context, relation string) (geom.SpatialReference, error) {
	reg, ok, err := w.tableName(ctx, SpatialRefTable)
	if err != nil || !ok {
		return "", err
	}

	q := fmt.Sprintf("SELECT srs FROM %s WHERE lower(table_name) = lower(%s)", quote(reg), w.dialect.placeholder(1))

	var srs sql.NullString
	err = w.db.QueryRowContext(ctx, q, relation).Scan(&srs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return geom.SpatialReference(srs.String), nil
}

// RegisterSpatialReference records the spatial reference of a table,
// creating the registry table if needed
func (w *Workspace) RegisterSpatialReference(ctx context.Context, relation string, sr geom.SpatialReference) error {
	_, err := w.db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (table_name TEXT PRIMARY KEY, srs TEXT)", quote(SpatialRefTable)))
	if err != nil {
		return err
	}

	reg, _, err := w.tableName(ctx, SpatialRefTable)
	if err != nil {
		return err
	}

	_, err = w.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE lower(table_name) = lower(%s)", quote(reg), w.dialect.placeholder(1)), relation)
	if err != nil {
		return err
	}

	_, err = w.db.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (table_name, srs) VALUES (%s, %s)", quote(reg), w.dialect.placeholder(1), w.dialect.placeholder(2)), relation, string(sr))
	return err
}

// tableName returns the stored spelling of a relation name
func (w *Workspace) tableName(ctx context.Context, relation string) (string, bool, error) {
	var name string
	err := w.db.QueryRowContext(ctx, w.dialect.tableQuery, relation).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

// columns resolves the stored spelling of the given fields of a relation
func (w *Workspace) columns(ctx context.Context, relation string, names ...string) (string, []string, error) {
	table, ok, err := w.tableName(ctx, relation)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, fmt.Errorf("relation %s does not exist", relation)
	}

	fields, err := w.Fields(ctx, table)
	if err != nil {
		return "", nil, err
	}

	ret := make([]string, len(names))
	for i, n := range names {
		f, ok := datamodel.ResolveField(fields, n)
		if !ok {
			return "", nil, fmt.Errorf("relation %s has no field %s", table, n)
		}
		ret[i] = f
	}

	return table, ret, nil
}
