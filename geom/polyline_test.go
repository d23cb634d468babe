// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package geom

import (
	"math"
	"testing"
)

func TestVerticesFlattensParts(t *testing.T) {
	pl := NewPolyline(Part{{0, 0}, {1, 0}}, Part{{5, 5}}, Part{}, Part{{6, 6}, {7, 7}})

	v := pl.Vertices()
	exp := []Point{{0, 0}, {1, 0}, {5, 5}, {6, 6}, {7, 7}}

	if len(v) != len(exp) {
		t.Fatalf("expected %d vertices, got %d", len(exp), len(v))
	}

	for i := range exp {
		if v[i] != exp[i] {
			t.Errorf("vertex %d: expected %v, got %v", i, exp[i], v[i])
		}
	}

	if pl.PointCount() != 5 {
		t.Error(pl.PointCount())
	}

	if !pl.IsMultipart() {
		t.Error("expected multipart")
	}
}

func TestNullPolyline(t *testing.T) {
	var pl *Polyline

	if !pl.IsNull() {
		t.Error("expected null")
	}

	if pl.PointCount() != 0 || len(pl.Vertices()) != 0 || pl.NumParts() != 0 {
		t.Error("null polyline should have no vertices")
	}

	if !pl.Equal(nil) {
		t.Error("null should equal null")
	}

	if pl.Equal(NewPolyline()) {
		t.Error("null should not equal empty")
	}
}

func TestSinglePartIsNotMultipart(t *testing.T) {
	pl := NewPolyline(Part{}, Part{{1, 1}, {2, 2}})
	if pl.IsMultipart() {
		t.Error("empty parts should not count")
	}
}

func TestPartFromCoordsDropsExtraDimensions(t *testing.T) {
	p := PartFromCoords([][]float64{{1, 2, 3}, {4}, {5, 6}})

	if len(p) != 2 || p[0] != (Point{1, 2}) || p[1] != (Point{5, 6}) {
		t.Error(p)
	}
}

func TestLength(t *testing.T) {
	pl := NewPolyline(Part{{0, 0}, {3, 4}}, Part{{10, 10}, {10, 11}})

	if math.Abs(pl.Length()-6) > 1e-9 {
		t.Error(pl.Length())
	}

	// one degree of latitude is roughly 111.3 km
	if d := GeodesicDistance(Point{0, 0}, Point{0, 1}); d < 111000 || d > 111400 {
		t.Error(d)
	}
}

func TestCoords(t *testing.T) {
	pl := NewPolyline(Part{{0, 1}, {2, 3}}, Part{{4, 5}})
	c := pl.Coords()

	if len(c) != 2 || len(c[0]) != 2 || len(c[1]) != 1 {
		t.Fatal(c)
	}

	if c[0][1][0] != 2 || c[0][1][1] != 3 || c[1][0][1] != 5 {
		t.Error(c)
	}
}
