// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package datamodel

import (
	"context"
	"fmt"
	"golang.org/x/exp/slices"
	"strings"
)

// Catalog gives access to the relations of a backing store
type Catalog interface {
	// Exists reports whether the relation exists
	Exists(ctx context.Context, relation string) (bool, error)

	// Fields returns the field names of the relation, in the spelling the
	// backing store uses
	Fields(ctx context.Context, relation string) ([]string, error)
}

// Names holds the relation and field names of the public transit data
// model used for shape replacement
type Names struct {
	LineVariantElements string
	LVEShapes           string
	LVEShapeIDField     string
	ShapeIDField        string
	ObjectIDField       string
}

// DefaultNames returns the names of the public transit data model
func DefaultNames() Names {
	return Names{
		LineVariantElements: "LineVariantElements",
		LVEShapes:           "LVEShapes",
		LVEShapeIDField:     "LVEShapeID",
		ShapeIDField:        "ID",
		ObjectIDField:       "ObjectID",
	}
}

// TransitDataModel validates that a catalog holds the transit data model
// relations needed to replace route shapes
type TransitDataModel struct {
	Names
	catalog Catalog
}

// New creates a TransitDataModel over the given catalog
func New(catalog Catalog, names Names) *TransitDataModel {
	return &TransitDataModel{Names: names, catalog: catalog}
}

// RequiredTables returns the required relations, in validation order
func (dm *TransitDataModel) RequiredTables() []string {
	return []string{dm.LineVariantElements, dm.LVEShapes}
}

// RequiredFields returns the required fields of a required relation
func (dm *TransitDataModel) RequiredFields(relation string) []string {
	switch relation {
	case dm.LineVariantElements:
		return []string{dm.LVEShapeIDField}
	case dm.LVEShapes:
		return []string{dm.ShapeIDField}
	}
	return nil
}

// ValidateTablesExist checks that every required relation exists
func (dm *TransitDataModel) ValidateTablesExist(ctx context.Context) error {
	allExist := true
	for _, table := range dm.RequiredTables() {
		exists, err := dm.catalog.Exists(ctx, table)
		if err != nil {
			return fmt.Errorf("could not check for relation %s: %w", table, err)
		}
		if !exists {
			allExist = false
		}
	}

	if !allExist {
		return &SchemaError{Required: dm.RequiredTables()}
	}

	return nil
}

// ValidateRequiredFields checks that every required relation has its
// required fields. Field names are compared case-insensitively, backing
// stores normalize case differently.
func (dm *TransitDataModel) ValidateRequiredFields(ctx context.Context) error {
	for _, table := range dm.RequiredTables() {
		fields, err := dm.catalog.Fields(ctx, table)
		if err != nil {
			return fmt.Errorf("could not list fields of %s: %w", table, err)
		}

		required := dm.RequiredFields(table)
		if missing := MissingFields(fields, required); len(missing) > 0 {
			return &SchemaError{Relation: table, Required: required, Missing: missing}
		}
	}

	return nil
}

// Validate runs ValidateTablesExist, then ValidateRequiredFields
func (dm *TransitDataModel) Validate(ctx context.Context) error {
	if err := dm.ValidateTablesExist(ctx); err != nil {
		return err
	}
	return dm.ValidateRequiredFields(ctx)
}

// ResolveField returns the spelling of name in fields, matched
// case-insensitively
func ResolveField(fields []string, name string) (string, bool) {
	i := slices.IndexFunc(fields, func(f string) bool {
		return strings.EqualFold(f, name)
	})
	if i < 0 {
		return "", false
	}
	return fields[i], true
}

// MissingFields returns the entries of required not present in fields
func MissingFields(fields []string, required []string) []string {
	var missing []string
	for _, r := range required {
		if _, ok := ResolveField(fields, r); !ok {
			missing = append(missing, r)
		}
	}
	return missing
}
