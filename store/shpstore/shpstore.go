// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package shpstore reads traversal results from ESRI shapefiles and writes
// merged routes to a POLYLINE shapefile
package shpstore

import (
	"context"
	"errors"
	"fmt"
	"github.com/jonas-p/go-shp"
	"github.com/patrickbr/routeshaper/datamodel"
	"github.com/patrickbr/routeshaper/geom"
	"github.com/patrickbr/routeshaper/replacer"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
)

// prjPath returns the path of the projection sidecar of a shapefile
func prjPath(path string) string {
	return strings.TrimSuffix(path, ".shp") + ".prj"
}

// EdgeFile is a traversal result stored as a polyline shapefile
type EdgeFile struct {
	Path string
}

// NewEdgeFile returns the traversal result stored in the shapefile at path
func NewEdgeFile(path string) *EdgeFile {
	return &EdgeFile{Path: path}
}

// Name returns the shapefile path
func (e *EdgeFile) Name() string {
	return e.Path
}

// Exists reports whether the .shp file exists
func (e *EdgeFile) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(e.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Fields returns the attribute names of the .dbf table
func (e *EdgeFile) Fields(ctx context.Context) ([]string, error) {
	r, err := shp.Open(e.Path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return fieldNames(r.Fields()), nil
}

// SpatialReference returns the content of the .prj sidecar, or the empty
// reference if there is none
func (e *EdgeFile) SpatialReference(ctx context.Context) (geom.SpatialReference, error) {
	data, err := os.ReadFile(prjPath(e.Path))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return geom.SpatialReference(strings.TrimSpace(string(data))), nil
}

// Edges iterates over the shapes in record order
func (e *EdgeFile) Edges(ctx context.Context, fields replacer.EdgeFields) (replacer.EdgeReader, error) {
	r, err := shp.Open(e.Path)
	if err != nil {
		return nil, err
	}

	names := fieldNames(r.Fields())
	idx := make([]int, 0, 3)

	for _, f := range []string{fields.RouteID, fields.SourceName, fields.SourceOID} {
		name, ok := datamodel.ResolveField(names, f)
		if !ok {
			r.Close()
			return nil, fmt.Errorf("%s has no field %s", e.Path, f)
		}
		for i, n := range names {
			if n == name {
				idx = append(idx, i)
				break
			}
		}
	}

	return &shpEdges{r: r, name: e.Path, routeID: idx[0], srcName: idx[1], srcOID: idx[2]}, nil
}

func fieldNames(fields []shp.Field) []string {
	ret := make([]string, len(fields))
	for i, f := range fields {
		ret[i] = attribute(f.String())
	}
	return ret
}

type shpEdges struct {
	r    *shp.Reader
	name string

	routeID int
	srcName int
	srcOID  int

	cur replacer.Edge
	err error
}

func (s *shpEdges) Next() bool {
	if s.err != nil || !s.r.Next() {
		return false
	}

	row, shape := s.r.Shape()

	routeID, ok, err := parseInt(s.r.ReadAttribute(row, s.routeID))
	if err == nil && !ok {
		err = errors.New("edge without route id")
	}
	if err != nil {
		s.err = fmt.Errorf("%s: record %d: %w", s.name, row, err)
		return false
	}

	oid, _, err := parseInt(s.r.ReadAttribute(row, s.srcOID))
	if err != nil {
		s.err = fmt.Errorf("%s: record %d: %w", s.name, row, err)
		return false
	}

	pl, err := toPolyline(shape)
	if err != nil {
		s.err = fmt.Errorf("%s: record %d: %w", s.name, row, err)
		return false
	}

	s.cur = replacer.Edge{
		RouteID:        routeID,
		Geometry:       pl,
		SourceName:     attribute(s.r.ReadAttribute(row, s.srcName)),
		SourceObjectID: oid,
	}

	return true
}

func (s *shpEdges) Edge() replacer.Edge {
	return s.cur
}

func (s *shpEdges) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.r.Err()
}

func (s *shpEdges) Close() error {
	s.r.Close()
	return nil
}

// parseInt parses a dbf number attribute. Blank attributes are not ok.
func parseInt(s string) (int64, bool, error) {
	s = attribute(s)
	if s == "" || strings.Trim(s, "*") == "" {
		return 0, false, nil
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false, fmt.Errorf("%q is not an integer", s)
	}

	return int64(f), true, nil
}

// attribute strips the padding of a dbf attribute
func attribute(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\x00 "))
}

// toPolyline converts polyline shapes, dropping z and m values
func toPolyline(shape shp.Shape) (*geom.Polyline, error) {
	switch s := shape.(type) {
	case *shp.Null:
		return nil, nil
	case *shp.PolyLine:
		return fromParts(s.Parts, s.Points)
	case *shp.PolyLineZ:
		return fromParts(s.Parts, s.Points)
	case *shp.PolyLineM:
		return fromParts(s.Parts, s.Points)
	}

	return nil, fmt.Errorf("unsupported shape type %T, expected a polyline", shape)
}

// fromParts splits points at the part start indices. Start indices must
// be ascending and within the points.
func fromParts(parts []int32, points []shp.Point) (*geom.Polyline, error) {
	pl := &geom.Polyline{Parts: make([]geom.Part, 0, len(parts))}

	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}

		if start < 0 || start > end || int(end) > len(points) {
			return nil, fmt.Errorf("part %d spans points %d to %d, but the shape has %d points", i, start, end, len(points))
		}

		part := make(geom.Part, 0, end-start)
		for _, p := range points[start:end] {
			part = append(part, geom.Point{X: p.X, Y: p.Y})
		}
		pl.Parts = append(pl.Parts, part)
	}

	return pl, nil
}

// toParts is the inverse of fromParts
func toParts(pl *geom.Polyline) [][]shp.Point {
	if pl == nil {
		return nil
	}

	ret := make([][]shp.Point, 0, pl.NumParts())
	for _, part := range pl.Parts {
		pts := make([]shp.Point, len(part))
		for i, p := range part {
			pts[i] = shp.Point{X: p.X, Y: p.Y}
		}
		ret = append(ret, pts)
	}
	return ret
}
