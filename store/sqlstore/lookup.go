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
	"github.com/patrickbr/routeshaper/datamodel"
	"github.com/patrickbr/routeshaper/geom"
	"github.com/patrickbr/routeshaper/replacer"
)

// Links prepares the object id to LVEShapes id lookup on the line variant
// elements relation
func (w *Workspace) Links(ctx context.Context, dm *datamodel.TransitDataModel) (replacer.LinkLookup, error) {
	table, cols, err := w.columns(ctx, dm.LineVariantElements, dm.LVEShapeIDField)
	if err != nil {
		return nil, err
	}

	oid, err := w.objectIDColumn(ctx, table, dm.ObjectIDField)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s", quote(cols[0]), quote(table), oid, w.dialect.placeholder(1))

	stmt, err := w.db.PrepareContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("could not prepare lookup on %s: %w", table, err)
	}

	return &linkLookup{stmt: stmt}, nil
}

// Shapes prepares the LVEShapes id to geometry lookup
func (w *Workspace) Shapes(ctx context.Context, dm *datamodel.TransitDataModel) (replacer.ShapeLookup, error) {
	table, cols, err := w.columns(ctx, dm.LVEShapes, dm.ShapeIDField, w.GeometryField)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s LIMIT 1", quote(cols[1]), quote(table), quote(cols[0]), w.dialect.placeholder(1))

	stmt, err := w.db.PrepareContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("could not prepare lookup on %s: %w", table, err)
	}

	return &shapeLookup{stmt: stmt}, nil
}

// objectIDColumn returns the quoted object id column of a table, falling
// back to the implicit row id if the dialect has one
func (w *Workspace) objectIDColumn(ctx context.Context, table string, name string) (string, error) {
	fields, err := w.Fields(ctx, table)
	if err != nil {
		return "", err
	}

	if f, ok := datamodel.ResolveField(fields, name); ok {
		return quote(f), nil
	}

	if w.dialect.implicitRow != "" {
		return w.dialect.implicitRow, nil
	}

	return "", fmt.Errorf("relation %s has no field %s", table, name)
}

type linkLookup struct {
	stmt *sql.Stmt
}

func (l *linkLookup) Lookup(ctx context.Context, objectID int64) (int64, bool, error) {
	var id sql.NullInt64
	err := l.stmt.QueryRowContext(ctx, objectID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	// a null link is treated like a missing one
	return id.Int64, id.Valid, nil
}

func (l *linkLookup) Close() error {
	return l.stmt.Close()
}

type shapeLookup struct {
	stmt *sql.Stmt
}

func (l *shapeLookup) Lookup(ctx context.Context, shapeID int64) (*geom.Polyline, bool, error) {
	var text sql.NullString
	err := l.stmt.QueryRowContext(ctx, shapeID).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if !text.Valid {
		return nil, true, nil
	}

	pl, err := geom.ParseGeoJSON([]byte(text.String))
	if err != nil {
		return nil, true, fmt.Errorf("shape %d: %w", shapeID, err)
	}

	return pl, true, nil
}

func (l *shapeLookup) Close() error {
	return l.stmt.Close()
}
