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

type memEdges struct {
	name    string
	missing bool
	fields  []string
	sr      geom.SpatialReference
	edges   []Edge
	iterErr error

	opened int
	closed int
}

func (m *memEdges) Name() string { return m.name }

func (m *memEdges) Exists(ctx context.Context) (bool, error) { return !m.missing, nil }

func (m *memEdges) Fields(ctx context.Context) ([]string, error) { return m.fields, nil }

func (m *memEdges) SpatialReference(ctx context.Context) (geom.SpatialReference, error) {
	return m.sr, nil
}

func (m *memEdges) Edges(ctx context.Context, fields EdgeFields) (EdgeReader, error) {
	m.opened++
	return &memEdgeReader{src: m, i: -1}, nil
}

type memEdgeReader struct {
	src *memEdges
	i   int
	err error
}

func (r *memEdgeReader) Next() bool {
	if r.i+1 >= len(r.src.edges) {
		r.err = r.src.iterErr
		return false
	}
	r.i++
	return true
}

func (r *memEdgeReader) Edge() Edge { return r.src.edges[r.i] }

func (r *memEdgeReader) Err() error { return r.err }

func (r *memEdgeReader) Close() error {
	r.src.closed++
	return nil
}

// memShape is an LVEShapes record, a nil g is a null geometry
type memShape struct {
	g *geom.Polyline
}

type memRef struct {
	tables map[string][]string
	links  map[int64]int64
	shapes map[int64]memShape

	linkLookups  int
	shapeLookups int
	closed       int
}

func newMemRef() *memRef {
	return &memRef{
		tables: map[string][]string{
			"LineVariantElements": {"ObjectID", "LVEShapeID"},
			"LVEShapes":           {"ObjectID", "ID", "Shape"},
		},
		links:  map[int64]int64{},
		shapes: map[int64]memShape{},
	}
}

func (m *memRef) Exists(ctx context.Context, relation string) (bool, error) {
	_, ok := m.tables[relation]
	return ok, nil
}

func (m *memRef) Fields(ctx context.Context, relation string) ([]string, error) {
	return m.tables[relation], nil
}

func (m *memRef) Links(ctx context.Context, dm *datamodel.TransitDataModel) (LinkLookup, error) {
	return &memLinks{m}, nil
}

func (m *memRef) Shapes(ctx context.Context, dm *datamodel.TransitDataModel) (ShapeLookup, error) {
	return &memShapes{m}, nil
}

type memLinks struct{ ref *memRef }

func (l *memLinks) Lookup(ctx context.Context, oid int64) (int64, bool, error) {
	l.ref.linkLookups++
	id, ok := l.ref.links[oid]
	return id, ok, nil
}

func (l *memLinks) Close() error {
	l.ref.closed++
	return nil
}

type memShapes struct{ ref *memRef }

func (s *memShapes) Lookup(ctx context.Context, id int64) (*geom.Polyline, bool, error) {
	s.ref.shapeLookups++
	shp, ok := s.ref.shapes[id]
	return shp.g, ok, nil
}

func (s *memShapes) Close() error {
	s.ref.closed++
	return nil
}

type memOut struct {
	sr       geom.SpatialReference
	routes   []OutputRoute
	writeErr error
	created  bool
	closed   bool
}

func (m *memOut) Create(ctx context.Context, sr geom.SpatialReference) (RouteWriter, error) {
	m.sr = sr
	m.created = true
	return m, nil
}

func (m *memOut) Write(ctx context.Context, r OutputRoute) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.routes = append(m.routes, r)
	return nil
}

func (m *memOut) Close() error {
	m.closed = true
	return nil
}

func line(coords ...float64) *geom.Polyline {
	part := geom.Part{}
	for i := 0; i+1 < len(coords); i += 2 {
		part = append(part, geom.Point{X: coords[i], Y: coords[i+1]})
	}
	return geom.NewPolyline(part)
}

func newMemEdges(edges ...Edge) *memEdges {
	return &memEdges{
		name:   "TraversedEdges",
		fields: []string{"ObjectID", "Shape", "SourceName", "SourceOID", "RouteID"},
		sr:     "EPSG:4326",
		edges:  edges,
	}
}
