// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package gtfsstore

import (
	"context"
	"fmt"
	"github.com/patrickbr/gtfsparser"
	gtfs "github.com/patrickbr/gtfsparser/gtfs"
	"github.com/patrickbr/gtfswriter"
	"github.com/patrickbr/routeshaper/geom"
	"github.com/patrickbr/routeshaper/replacer"
	"math"
	"os"
	"path"
)

// OutputFeed writes merged routes as the shapes of a GTFS feed, one shape
// per route with the route id as shape_id. Coordinates are written as is,
// they must be WGS84 longitude/latitude.
type OutputFeed struct {
	// Path is a directory or a zip file (must end with .zip)
	Path string

	// Measure fills shape_dist_traveled with the distance in meters along
	// the shape
	Measure bool

	ZipCompressionLevel int
}

// NewOutputFeed returns an output target writing the feed at path
func NewOutputFeed(path string) *OutputFeed {
	return &OutputFeed{Path: path, ZipCompressionLevel: 9}
}

// Create starts an empty feed, it is written on Close
func (o *OutputFeed) Create(ctx context.Context, sr geom.SpatialReference) (replacer.RouteWriter, error) {
	return &feedWriter{out: o, feed: gtfsparser.NewFeed()}, nil
}

type feedWriter struct {
	out  *OutputFeed
	feed *gtfsparser.Feed
}

func (w *feedWriter) Write(ctx context.Context, route replacer.OutputRoute) error {
	id := fmt.Sprintf("%d", route.RouteID)
	if _, ok := w.feed.Shapes[id]; ok {
		return fmt.Errorf("shape %s already written", id)
	}

	w.feed.Shapes[id] = &gtfs.Shape{Id: id, Points: toShapePoints(route.Geometry, w.out.Measure)}
	return nil
}

func (w *feedWriter) Close() error {
	if _, err := os.Stat(w.out.Path); os.IsNotExist(err) {
		if path.Ext(w.out.Path) == ".zip" {
			f, err := os.Create(w.out.Path)
			if err != nil {
				return err
			}
			f.Close()
		} else if err := os.MkdirAll(w.out.Path, os.ModePerm); err != nil {
			return err
		}
	}

	gw := gtfswriter.Writer{ZipCompressionLevel: w.out.ZipCompressionLevel, Sorted: true}
	if err := gw.Write(w.feed, w.out.Path); err != nil {
		return fmt.Errorf("could not write GTFS feed %s: %w", w.out.Path, err)
	}

	return nil
}

// toShapePoints flattens the polyline into one point sequence. Without
// measuring, shape_dist_traveled is left empty.
func toShapePoints(pl *geom.Polyline, measure bool) gtfs.ShapePoints {
	verts := pl.Vertices()
	ret := make(gtfs.ShapePoints, len(verts))

	d := 0.0
	for i, v := range verts {
		if i > 0 {
			d += geom.GeodesicDistance(verts[i-1], v)
		}

		dist := float32(math.NaN())
		if measure {
			dist = float32(d)
		}

		ret[i] = gtfs.ShapePoint{Lat: float32(v.Y), Lon: float32(v.X), Sequence: uint32(i), Dist_traveled: dist}
	}

	return ret
}
