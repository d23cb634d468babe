// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package geojsonstore

import (
	"context"
	"errors"
	"fmt"
	"github.com/patrickbr/routeshaper/geom"
	"github.com/patrickbr/routeshaper/replacer"
	"github.com/paulmach/go.geojson"
	"io/fs"
	"os"
)

// EdgeFile is a traversal result stored as a FeatureCollection. Features
// are read in file order.
type EdgeFile struct {
	Path string

	fc *geojson.FeatureCollection
}

// NewEdgeFile returns the traversal result stored at path
func NewEdgeFile(path string) *EdgeFile {
	return &EdgeFile{Path: path}
}

// Name returns the file path
func (e *EdgeFile) Name() string {
	return e.Path
}

// Exists reports whether the file exists
func (e *EdgeFile) Exists(ctx context.Context) (bool, error) {
	st, err := os.Stat(e.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !st.IsDir(), nil
}

// Fields returns the union of the feature property names
func (e *EdgeFile) Fields(ctx context.Context) ([]string, error) {
	fc, err := e.collection()
	if err != nil {
		return nil, err
	}
	return fieldNames(fc), nil
}

// SpatialReference returns the name of the collection's crs member
func (e *EdgeFile) SpatialReference(ctx context.Context) (geom.SpatialReference, error) {
	fc, err := e.collection()
	if err != nil {
		return "", err
	}
	return spatialReference(fc.CRS), nil
}

// Edges iterates over the features
func (e *EdgeFile) Edges(ctx context.Context, fields replacer.EdgeFields) (replacer.EdgeReader, error) {
	fc, err := e.collection()
	if err != nil {
		return nil, err
	}
	return &featureEdges{features: fc.Features, fields: fields, name: e.Path, i: -1}, nil
}

func (e *EdgeFile) collection() (*geojson.FeatureCollection, error) {
	if e.fc == nil {
		fc, err := loadCollection(e.Path)
		if err != nil {
			return nil, err
		}
		e.fc = fc
	}
	return e.fc, nil
}

type featureEdges struct {
	features []*geojson.Feature
	fields   replacer.EdgeFields
	name     string
	i        int
	cur      replacer.Edge
	err      error
}

func (r *featureEdges) Next() bool {
	if r.err != nil || r.i+1 >= len(r.features) {
		return false
	}
	r.i++

	f := r.features[r.i]

	routeID, ok, err := intProperty(f, r.fields.RouteID)
	if err == nil && !ok {
		err = fmt.Errorf("property %s is missing", r.fields.RouteID)
	}
	if err != nil {
		r.err = fmt.Errorf("%s: feature %d: %w", r.name, r.i, err)
		return false
	}

	oid, _, err := intProperty(f, r.fields.SourceOID)
	if err != nil {
		r.err = fmt.Errorf("%s: feature %d: %w", r.name, r.i, err)
		return false
	}

	pl, err := geom.FromGeoJSON(f.Geometry)
	if err != nil {
		r.err = fmt.Errorf("%s: feature %d: %w", r.name, r.i, err)
		return false
	}

	r.cur = replacer.Edge{
		RouteID:        routeID,
		Geometry:       pl,
		SourceName:     stringProperty(f, r.fields.SourceName),
		SourceObjectID: oid,
	}

	return true
}

func (r *featureEdges) Edge() replacer.Edge {
	return r.cur
}

func (r *featureEdges) Err() error {
	return r.err
}

func (r *featureEdges) Close() error {
	r.features = nil
	return nil
}
