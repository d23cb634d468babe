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
	"strings"
)

// EdgeTable is a traversal result stored as a workspace table
type EdgeTable struct {
	ws    *Workspace
	table string

	// ObjectIDField orders the edges. If the table lacks it, SQLite
	// workspaces fall back to the row id.
	ObjectIDField string
}

// EdgeTable returns the traversal result stored in table
func (w *Workspace) EdgeTable(table string) *EdgeTable {
	return &EdgeTable{ws: w, table: table, ObjectIDField: "ObjectID"}
}

// Name returns the table name
func (t *EdgeTable) Name() string {
	return t.table
}

// Exists reports whether the table exists
func (t *EdgeTable) Exists(ctx context.Context) (bool, error) {
	return t.ws.Exists(ctx, t.table)
}

// Fields returns the columns of the table
func (t *EdgeTable) Fields(ctx context.Context) ([]string, error) {
	return t.ws.Fields(ctx, t.table)
}

// SpatialReference returns the registered spatial reference of the table
func (t *EdgeTable) SpatialReference(ctx context.Context) (geom.SpatialReference, error) {
	return t.ws.SpatialReference(ctx, t.table)
}

// Edges queries the edges in object id order
func (t *EdgeTable) Edges(ctx context.Context, fields replacer.EdgeFields) (replacer.EdgeReader, error) {
	table, cols, err := t.ws.columns(ctx, t.table, t.ws.GeometryField, fields.RouteID, fields.SourceName, fields.SourceOID)
	if err != nil {
		return nil, err
	}

	order, err := t.ws.objectIDColumn(ctx, table, t.ObjectIDField)
	if err != nil {
		return nil, err
	}

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
	}

	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", strings.Join(quoted, ", "), quote(table), order)

	rows, err := t.ws.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("could not query %s: %w", table, err)
	}

	return &edgeRows{rows: rows, table: table}, nil
}

type edgeRows struct {
	rows  *sql.Rows
	table string
	cur   replacer.Edge
	err   error
}

func (r *edgeRows) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}

	var (
		shape   sql.NullString
		routeID sql.NullInt64
		srcName sql.NullString
		srcOID  sql.NullInt64
	)

	if err := r.rows.Scan(&shape, &routeID, &srcName, &srcOID); err != nil {
		r.err = fmt.Errorf("%s: %w", r.table, err)
		return false
	}

	if !routeID.Valid {
		r.err = fmt.Errorf("%s: edge without route id", r.table)
		return false
	}

	var pl *geom.Polyline
	if shape.Valid {
		var err error
		if pl, err = geom.ParseGeoJSON([]byte(shape.String)); err != nil {
			r.err = fmt.Errorf("%s: %w", r.table, err)
			return false
		}
	}

	r.cur = replacer.Edge{
		RouteID:        routeID.Int64,
		Geometry:       pl,
		SourceName:     srcName.String,
		SourceObjectID: srcOID.Int64,
	}

	return true
}

func (r *edgeRows) Edge() replacer.Edge {
	return r.cur
}

func (r *edgeRows) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func (r *edgeRows) Close() error {
	return r.rows.Close()
}
