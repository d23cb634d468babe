// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package replacer

import (
	"context"
	"errors"
	"fmt"
	"github.com/patrickbr/routeshaper/datamodel"
	"github.com/patrickbr/routeshaper/geom"
	"go.uber.org/zap"
)

// Options configure a RouteShapeReplacer. Zero values are replaced by the
// defaults of DefaultOptions.
type Options struct {
	Fields EdgeFields
	Names  datamodel.Names

	// LineVariantSource is the source name of traversed edges that
	// originate from line variant elements
	LineVariantSource string

	Multipart MultipartMode

	// Logger receives debug events for shape fallbacks
	Logger *zap.Logger
}

// DefaultOptions returns the options for a Route or Closest Facility
// traversal result over the public transit data model
func DefaultOptions() Options {
	return Options{
		Fields:            DefaultEdgeFields(),
		Names:             datamodel.DefaultNames(),
		LineVariantSource: "LineVariantElements",
		Multipart:         Concatenate,
		Logger:            zap.NewNop(),
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()

	if o.Fields.RouteID == "" {
		o.Fields.RouteID = def.Fields.RouteID
	}
	if o.Fields.SourceName == "" {
		o.Fields.SourceName = def.Fields.SourceName
	}
	if o.Fields.SourceOID == "" {
		o.Fields.SourceOID = def.Fields.SourceOID
	}
	if o.Names.LineVariantElements == "" {
		o.Names.LineVariantElements = def.Names.LineVariantElements
	}
	if o.Names.LVEShapes == "" {
		o.Names.LVEShapes = def.Names.LVEShapes
	}
	if o.Names.LVEShapeIDField == "" {
		o.Names.LVEShapeIDField = def.Names.LVEShapeIDField
	}
	if o.Names.ShapeIDField == "" {
		o.Names.ShapeIDField = def.Names.ShapeIDField
	}
	if o.Names.ObjectIDField == "" {
		o.Names.ObjectIDField = def.Names.ObjectIDField
	}
	if o.LineVariantSource == "" {
		o.LineVariantSource = def.LineVariantSource
	}
	if o.Logger == nil {
		o.Logger = def.Logger
	}

	return o
}

// Summary holds the statistics of a replacement pass
type Summary struct {
	Edges       int
	Routes      int
	Vertices    int
	Substituted int

	// Length is the planar length of all written routes, in units of the
	// spatial reference
	Length float64

	// fallbacks to the traversed edge geometry, by cause
	MissingLinks  int
	MissingShapes int
	NullShapes    int
}

// Fallbacks returns the number of line variant segments that kept their
// own geometry
func (s Summary) Fallbacks() int {
	return s.MissingLinks + s.MissingShapes + s.NullShapes
}

// RouteShapeReplacer replaces the geometry of traversed line variant
// elements with their LVEShapes geometry and merges the segments into one
// polyline per route
type RouteShapeReplacer struct {
	edges  EdgeSource
	ref    ShapeReference
	out    OutputTarget
	dm     *datamodel.TransitDataModel
	opts   Options
	logger *zap.Logger
}

// New creates a RouteShapeReplacer. The shape reference is validated
// against the transit data model first, then the traversed edges are checked
// for existence and required fields. No edge is read.
func New(ctx context.Context, edges EdgeSource, ref ShapeReference, out OutputTarget, opts Options) (*RouteShapeReplacer, error) {
	opts = opts.withDefaults()

	dm := datamodel.New(ref, opts.Names)
	if err := dm.ValidateTablesExist(ctx); err != nil {
		return nil, err
	}
	if err := dm.ValidateRequiredFields(ctx); err != nil {
		return nil, err
	}

	exists, err := edges.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not check for traversed edges %s: %w", edges.Name(), err)
	}
	if !exists {
		return nil, &InputNotFoundError{Name: edges.Name()}
	}

	fields, err := edges.Fields(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list fields of traversed edges %s: %w", edges.Name(), err)
	}

	required := opts.Fields.List()
	if missing := datamodel.MissingFields(fields, required); len(missing) > 0 {
		return nil, &datamodel.SchemaError{Relation: edges.Name(), Required: required, Missing: missing}
	}

	return &RouteShapeReplacer{
		edges:  edges,
		ref:    ref,
		out:    out,
		dm:     dm,
		opts:   opts,
		logger: opts.Logger,
	}, nil
}

// ReplaceRouteShapes streams through the traversed edges once, resolves
// every segment geometry and writes one merged polyline per route, in the
// order routes first appear in the traversal result.
func (r *RouteShapeReplacer) ReplaceRouteShapes(ctx context.Context) (Summary, error) {
	var sum Summary

	sr, err := r.edges.SpatialReference(ctx)
	if err != nil {
		return sum, fail("read spatial reference", err)
	}

	links, err := r.ref.Links(ctx, r.dm)
	if err != nil {
		return sum, fail("open line variant element lookup", err)
	}
	defer links.Close()

	shapes, err := r.ref.Shapes(ctx, r.dm)
	if err != nil {
		return sum, fail("open shape lookup", err)
	}
	defer shapes.Close()

	edges, err := r.edges.Edges(ctx, r.opts.Fields)
	if err != nil {
		return sum, fail("read traversed edges", err)
	}
	defer edges.Close()

	acc := newRouteAccumulator(r.opts.Multipart)

	for i := 0; edges.Next(); i++ {
		e := edges.Edge()

		if err := ctx.Err(); err != nil {
			return sum, &GeometryResolutionError{Op: "resolve segment geometry", Edge: i, RouteID: e.RouteID, Err: err}
		}

		segment, err := r.resolve(ctx, links, shapes, e, &sum)
		if err == nil && segment == nil {
			err = errors.New("segment geometry is null")
		}
		if err == nil && r.opts.Multipart == Reject && segment.IsMultipart() {
			err = fmt.Errorf("segment geometry has %d parts", segment.NumParts())
		}
		if err != nil {
			return sum, &GeometryResolutionError{Op: "resolve segment geometry", Edge: i, RouteID: e.RouteID, Err: err}
		}

		acc.add(e.RouteID, segment)
		sum.Edges++
	}

	if err := edges.Err(); err != nil {
		return sum, fail("read traversed edges", err)
	}

	w, err := r.out.Create(ctx, sr)
	if err != nil {
		return sum, fail("create output", err)
	}

	err = acc.each(func(route OutputRoute) error {
		if err := w.Write(ctx, route); err != nil {
			return &GeometryResolutionError{Op: "write route", Edge: -1, RouteID: route.RouteID, Err: err}
		}
		sum.Routes++
		sum.Vertices += route.Geometry.PointCount()
		sum.Length += route.Geometry.Length()
		return nil
	})

	if err != nil {
		w.Close()
		return sum, err
	}

	if err := w.Close(); err != nil {
		return sum, fail("finish output", err)
	}

	return sum, nil
}

// resolve returns the geometry to use for the segment of e
func (r *RouteShapeReplacer) resolve(ctx context.Context, links LinkLookup, shapes ShapeLookup, e Edge, sum *Summary) (*geom.Polyline, error) {
	if e.SourceName != r.opts.LineVariantSource {
		return e.Geometry, nil
	}

	shapeID, found, err := links.Lookup(ctx, e.SourceObjectID)
	if err != nil {
		return nil, err
	}
	if !found {
		sum.MissingLinks++
		r.logger.Debug("no LVEShapes link for line variant element", zap.Int64("objectID", e.SourceObjectID), zap.Int64("routeID", e.RouteID))
		return e.Geometry, nil
	}

	shape, found, err := shapes.Lookup(ctx, shapeID)
	if err != nil {
		return nil, err
	}
	if !found {
		sum.MissingShapes++
		r.logger.Debug("LVEShapes record not found", zap.Int64("shapeID", shapeID), zap.Int64("objectID", e.SourceObjectID))
		return e.Geometry, nil
	}
	if shape == nil {
		sum.NullShapes++
		r.logger.Debug("LVEShapes geometry is null", zap.Int64("shapeID", shapeID), zap.Int64("objectID", e.SourceObjectID))
		return e.Geometry, nil
	}

	sum.Substituted++
	return shape, nil
}

func fail(op string, err error) error {
	return &GeometryResolutionError{Op: op, Edge: -1, Err: err}
}
