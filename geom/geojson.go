// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package geom

import (
	"fmt"
	"github.com/paulmach/go.geojson"
)

// FromGeoJSON converts a LineString or MultiLineString geometry. A nil
// geometry converts to the null polyline.
func FromGeoJSON(g *geojson.Geometry) (*Polyline, error) {
	if g == nil {
		return nil, nil
	}

	switch g.Type {
	case geojson.GeometryLineString:
		return NewPolyline(PartFromCoords(g.LineString)), nil
	case geojson.GeometryMultiLineString:
		pl := &Polyline{Parts: make([]Part, 0, len(g.MultiLineString))}
		for _, line := range g.MultiLineString {
			pl.Parts = append(pl.Parts, PartFromCoords(line))
		}
		return pl, nil
	}

	return nil, fmt.Errorf("unsupported geometry type %q, expected a line geometry", g.Type)
}

// ParseGeoJSON decodes a GeoJSON geometry object. Empty input or a JSON
// null is the null polyline.
func ParseGeoJSON(data []byte) (*Polyline, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, err
	}

	return FromGeoJSON(g)
}

// ToGeoJSON converts a polyline to a LineString if it has exactly one part,
// and to a MultiLineString otherwise
func ToGeoJSON(pl *Polyline) *geojson.Geometry {
	if pl == nil {
		return nil
	}

	coords := pl.Coords()
	if len(coords) == 1 {
		return geojson.NewLineStringGeometry(coords[0])
	}

	return geojson.NewMultiLineStringGeometry(coords...)
}
