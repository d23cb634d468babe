// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package geojsonstore

import (
	"context"
	"github.com/patrickbr/routeshaper/geom"
	"github.com/patrickbr/routeshaper/replacer"
	"github.com/paulmach/go.geojson"
	"os"
)

// OutputFile writes merged routes as a FeatureCollection, one feature per
// route with a RouteID property
type OutputFile struct {
	Path string

	// RouteIDField names the route id property
	RouteIDField string
}

// NewOutputFile returns an output target writing to path
func NewOutputFile(path string) *OutputFile {
	return &OutputFile{Path: path, RouteIDField: "RouteID"}
}

// Create starts a new collection, the file is written on Close
func (o *OutputFile) Create(ctx context.Context, sr geom.SpatialReference) (replacer.RouteWriter, error) {
	fc := geojson.NewFeatureCollection()
	fc.CRS = namedCRS(sr)
	return &collectionWriter{fc: fc, path: o.Path, field: o.RouteIDField}, nil
}

type collectionWriter struct {
	fc    *geojson.FeatureCollection
	path  string
	field string
}

func (w *collectionWriter) Write(ctx context.Context, route replacer.OutputRoute) error {
	f := geojson.NewFeature(geom.ToGeoJSON(route.Geometry))
	f.SetProperty(w.field, route.RouteID)
	w.fc.AddFeature(f)
	return nil
}

func (w *collectionWriter) Close() error {
	data, err := w.fc.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(w.path, data, 0o644)
}
