// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package shpstore

import (
	"context"
	"fmt"
	"github.com/jonas-p/go-shp"
	"github.com/patrickbr/routeshaper/geom"
	"github.com/patrickbr/routeshaper/replacer"
	"os"
	"strconv"
)

// OutputFile writes merged routes to a POLYLINE shapefile with a numeric
// RouteID attribute
type OutputFile struct {
	Path string

	// RouteIDField names the route id attribute, at most 10 characters
	RouteIDField string
}

// NewOutputFile returns an output target writing the shapefile at path
func NewOutputFile(path string) *OutputFile {
	return &OutputFile{Path: path, RouteIDField: "RouteID"}
}

// Create creates the shapefile and writes the spatial reference to its
// .prj sidecar
func (o *OutputFile) Create(ctx context.Context, sr geom.SpatialReference) (replacer.RouteWriter, error) {
	if len(o.RouteIDField) > 10 {
		return nil, fmt.Errorf("shapefile field name %s is longer than 10 characters", o.RouteIDField)
	}

	if sr != "" {
		if err := os.WriteFile(prjPath(o.Path), []byte(sr), 0o644); err != nil {
			return nil, err
		}
	}

	w, err := shp.Create(o.Path, shp.POLYLINE)
	if err != nil {
		return nil, err
	}

	if err := w.SetFields([]shp.Field{shp.NumberField(o.RouteIDField, 18)}); err != nil {
		w.Close()
		return nil, err
	}

	return &shpWriter{w: w}, nil
}

type shpWriter struct {
	w *shp.Writer
}

func (sw *shpWriter) Write(ctx context.Context, route replacer.OutputRoute) error {
	row := sw.w.Write(shp.NewPolyLine(toParts(route.Geometry)))
	return sw.w.WriteAttribute(int(row), 0, strconv.FormatInt(route.RouteID, 10))
}

func (sw *shpWriter) Close() error {
	sw.w.Close()
	return nil
}
