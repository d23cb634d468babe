// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/patrickbr/routeshaper/geom"
	"github.com/patrickbr/routeshaper/replacer"
)

// OutputTable is a workspace table receiving merged routes
type OutputTable struct {
	ws    *Workspace
	table string

	// Overwrite drops an existing table of the same name
	Overwrite bool

	// RouteIDField names the route id column
	RouteIDField string
}

// OutputTable returns an output target writing to table
func (w *Workspace) OutputTable(table string) *OutputTable {
	return &OutputTable{ws: w, table: table, RouteIDField: "RouteID"}
}

// Create creates the table, registers its spatial reference and opens a
// transaction that is committed on Close
func (o *OutputTable) Create(ctx context.Context, sr geom.SpatialReference) (replacer.RouteWriter, error) {
	w := o.ws

	existing, exists, err := w.tableName(ctx, o.table)
	if err != nil {
		return nil, err
	}

	if exists {
		if !o.Overwrite {
			return nil, fmt.Errorf("output table %s already exists", existing)
		}
		if _, err := w.db.ExecContext(ctx, "DROP TABLE "+quote(existing)); err != nil {
			return nil, fmt.Errorf("could not drop %s: %w", existing, err)
		}
	}

	create := fmt.Sprintf("CREATE TABLE %s (%s %s, %s TEXT, %s %s)",
		quote(o.table),
		quote("ObjectID"), w.dialect.objectIDType,
		quote(w.GeometryField),
		quote(o.RouteIDField), w.dialect.integerType)

	if _, err := w.db.ExecContext(ctx, create); err != nil {
		return nil, fmt.Errorf("could not create %s: %w", o.table, err)
	}

	if err := w.RegisterSpatialReference(ctx, o.table, sr); err != nil {
		return nil, fmt.Errorf("could not register spatial reference of %s: %w", o.table, err)
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (%s, %s)",
		quote(o.table), quote(w.GeometryField), quote(o.RouteIDField),
		w.dialect.placeholder(1), w.dialect.placeholder(2))

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	return &tableWriter{tx: tx, stmt: stmt, table: o.table}, nil
}

type tableWriter struct {
	tx    *sql.Tx
	stmt  *sql.Stmt
	table string
}

func (tw *tableWriter) Write(ctx context.Context, route replacer.OutputRoute) error {
	var shape sql.NullString
	if !route.Geometry.IsNull() {
		b, err := geom.ToGeoJSON(route.Geometry).MarshalJSON()
		if err != nil {
			return err
		}
		shape = sql.NullString{String: string(b), Valid: true}
	}

	if _, err := tw.stmt.ExecContext(ctx, shape, route.RouteID); err != nil {
		return fmt.Errorf("could not insert route %d into %s: %w", route.RouteID, tw.table, err)
	}

	return nil
}

func (tw *tableWriter) Close() error {
	if err := tw.stmt.Close(); err != nil {
		tw.tx.Rollback()
		return err
	}
	return tw.tx.Commit()
}
