// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package replacer

import (
	"context"
	"github.com/patrickbr/routeshaper/datamodel"
	"github.com/patrickbr/routeshaper/geom"
)

// Edge is a single traversed edge of a traversal result
type Edge struct {
	RouteID        int64
	Geometry       *geom.Polyline
	SourceName     string
	SourceObjectID int64
}

// EdgeFields names the fields of a traversal result
type EdgeFields struct {
	RouteID    string
	SourceName string
	SourceOID  string
}

// DefaultEdgeFields returns the field names of a Route or Closest Facility
// traversal result
func DefaultEdgeFields() EdgeFields {
	return EdgeFields{RouteID: "RouteID", SourceName: "SourceName", SourceOID: "SourceOID"}
}

// List returns the field names in a fixed order
func (f EdgeFields) List() []string {
	return []string{f.SourceName, f.SourceOID, f.RouteID}
}

// EdgeReader iterates over traversed edges in traversal order
type EdgeReader interface {
	Next() bool
	Edge() Edge
	Err() error
	Close() error
}

// EdgeSource is a traversal result
type EdgeSource interface {
	Name() string
	Exists(ctx context.Context) (bool, error)
	Fields(ctx context.Context) ([]string, error)
	SpatialReference(ctx context.Context) (geom.SpatialReference, error)

	// Edges opens a reader over the edges, in the order the traversal
	// produced them
	Edges(ctx context.Context, fields EdgeFields) (EdgeReader, error)
}

// LinkLookup maps a line variant element object id to its LVEShapes id
type LinkLookup interface {
	Lookup(ctx context.Context, objectID int64) (shapeID int64, found bool, err error)
	Close() error
}

// ShapeLookup maps an LVEShapes id to its geometry. A found record may
// still carry a null geometry.
type ShapeLookup interface {
	Lookup(ctx context.Context, shapeID int64) (shape *geom.Polyline, found bool, err error)
	Close() error
}

// ShapeReference is a store holding the transit data model relations
type ShapeReference interface {
	datamodel.Catalog
	Links(ctx context.Context, dm *datamodel.TransitDataModel) (LinkLookup, error)
	Shapes(ctx context.Context, dm *datamodel.TransitDataModel) (ShapeLookup, error)
}

// OutputRoute is a merged route geometry
type OutputRoute struct {
	RouteID  int64
	Geometry *geom.Polyline
}

// RouteWriter receives merged routes
type RouteWriter interface {
	Write(ctx context.Context, route OutputRoute) error
	Close() error
}

// OutputTarget creates the output collection
type OutputTarget interface {
	Create(ctx context.Context, sr geom.SpatialReference) (RouteWriter, error)
}
