// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package geom

import (
	"golang.org/x/exp/slices"
)

// SpatialReference identifies the coordinate system of a geometry collection.
// It is carried through verbatim (WKT, URN or EPSG:n), never interpreted.
type SpatialReference string

// Point is a single vertex
type Point struct {
	X float64
	Y float64
}

// Part is an ordered run of vertices
type Part []Point

// Polyline is an ordered sequence of parts. A nil *Polyline is a null
// geometry.
type Polyline struct {
	Parts []Part
}

// NewPolyline creates a polyline from the given parts
func NewPolyline(parts ...Part) *Polyline {
	return &Polyline{Parts: parts}
}

// NewPolylineFromCoords creates a single part polyline from [x, y] pairs
func NewPolylineFromCoords(coords [][]float64) *Polyline {
	return &Polyline{Parts: []Part{PartFromCoords(coords)}}
}

// PartFromCoords converts [x, y, ...] coordinate slices into a Part. Any
// dimension beyond the second is dropped.
func PartFromCoords(coords [][]float64) Part {
	part := make(Part, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		part = append(part, Point{X: c[0], Y: c[1]})
	}
	return part
}

// IsNull is true for the nil polyline
func (pl *Polyline) IsNull() bool {
	return pl == nil
}

// NumParts returns the number of parts
func (pl *Polyline) NumParts() int {
	if pl == nil {
		return 0
	}
	return len(pl.Parts)
}

// IsMultipart is true if the polyline has more than one non-empty part
func (pl *Polyline) IsMultipart() bool {
	n := 0
	for _, p := range pl.parts() {
		if len(p) > 0 {
			n++
		}
	}
	return n > 1
}

// PointCount returns the total number of vertices over all parts
func (pl *Polyline) PointCount() int {
	n := 0
	for _, p := range pl.parts() {
		n += len(p)
	}
	return n
}

// Vertices flattens all parts, in part order, into one vertex sequence
func (pl *Polyline) Vertices() []Point {
	ret := make([]Point, 0, pl.PointCount())
	for _, p := range pl.parts() {
		ret = append(ret, p...)
	}
	return ret
}

// Equal is true if both polylines have the same parts and vertices
func (pl *Polyline) Equal(o *Polyline) bool {
	if pl == nil || o == nil {
		return pl == nil && o == nil
	}
	if len(pl.Parts) != len(o.Parts) {
		return false
	}
	for i := range pl.Parts {
		if !slices.Equal(pl.Parts[i], o.Parts[i]) {
			return false
		}
	}
	return true
}

// Coords returns the parts as nested [x, y] slices, the layout used by
// GeoJSON line strings
func (pl *Polyline) Coords() [][][]float64 {
	ret := make([][][]float64, 0, pl.NumParts())
	for _, p := range pl.parts() {
		line := make([][]float64, len(p))
		for i, pt := range p {
			line[i] = []float64{pt.X, pt.Y}
		}
		ret = append(ret, line)
	}
	return ret
}

// Length returns the planar length over all parts, in coordinate units.
// Gaps between parts are not counted.
func (pl *Polyline) Length() float64 {
	l := 0.0
	for _, p := range pl.parts() {
		for i := 1; i < len(p); i++ {
			l += dist(p[i-1].X, p[i-1].Y, p[i].X, p[i].Y)
		}
	}
	return l
}

// GeodesicDistance returns the distance in meters between two lon/lat
// points
func GeodesicDistance(a Point, b Point) float64 {
	return haversine(a.Y, a.X, b.Y, b.X)
}

func (pl *Polyline) parts() []Part {
	if pl == nil {
		return nil
	}
	return pl.Parts
}
