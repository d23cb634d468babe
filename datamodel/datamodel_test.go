// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package datamodel

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type testCatalog struct {
	tables map[string][]string
	err    error
}

func (c testCatalog) Exists(ctx context.Context, relation string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	_, ok := c.tables[relation]
	return ok, nil
}

func (c testCatalog) Fields(ctx context.Context, relation string) ([]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.tables[relation], nil
}

func TestValidateTablesExist(t *testing.T) {
	dm := New(testCatalog{tables: map[string][]string{"LVEShapes": {"ID"}}}, DefaultNames())

	err := dm.ValidateTablesExist(context.Background())

	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}

	if !strings.Contains(err.Error(), "LineVariantElements") || !strings.Contains(err.Error(), "LVEShapes") {
		t.Error(err)
	}
}

func TestValidateRequiredFieldsCaseInsensitive(t *testing.T) {
	cat := testCatalog{tables: map[string][]string{
		"LineVariantElements": {"objectid", "lveshapeid"},
		"LVEShapes":           {"OBJECTID", "SHAPE", "ID"},
	}}
	dm := New(cat, DefaultNames())

	if err := dm.Validate(context.Background()); err != nil {
		t.Error(err)
	}
}

func TestValidateRequiredFieldsMissing(t *testing.T) {
	cat := testCatalog{tables: map[string][]string{
		"LineVariantElements": {"ObjectID", "LVEShapeID"},
		"LVEShapes":           {"ObjectID", "ShapeName"},
	}}
	dm := New(cat, DefaultNames())

	err := dm.ValidateRequiredFields(context.Background())

	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}

	if se.Relation != "LVEShapes" || len(se.Missing) != 1 || se.Missing[0] != "ID" {
		t.Error(se)
	}

	if !strings.Contains(err.Error(), "LVEShapes") || !strings.Contains(err.Error(), "Required fields: ID") {
		t.Error(err)
	}
}

func TestCatalogErrorsAreNotSchemaErrors(t *testing.T) {
	boom := errors.New("boom")
	dm := New(testCatalog{err: boom}, DefaultNames())

	err := dm.Validate(context.Background())

	if !errors.Is(err, boom) {
		t.Error(err)
	}

	var se *SchemaError
	if errors.As(err, &se) {
		t.Error("catalog failure reported as schema error")
	}
}

func TestResolveField(t *testing.T) {
	f, ok := ResolveField([]string{"objectid", "LveShapeId"}, "LVEShapeID")
	if !ok || f != "LveShapeId" {
		t.Error(f, ok)
	}

	if _, ok := ResolveField(nil, "ID"); ok {
		t.Error("expected no match")
	}

	missing := MissingFields([]string{"routeid", "SOURCENAME"}, []string{"RouteID", "SourceName", "SourceOID"})
	if len(missing) != 1 || missing[0] != "SourceOID" {
		t.Error(missing)
	}
}
