// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package geojsonstore

import (
	"context"
	"fmt"
	"github.com/patrickbr/routeshaper/datamodel"
	"github.com/patrickbr/routeshaper/geom"
	"github.com/patrickbr/routeshaper/replacer"
	"github.com/paulmach/go.geojson"
)

// Dir is a directory holding one <relation>.geojson FeatureCollection per
// transit data model relation
type Dir struct {
	Path string
}

// NewDir returns the relations stored in the directory at path
func NewDir(path string) *Dir {
	return &Dir{Path: path}
}

// Exists reports whether the relation file exists
func (d *Dir) Exists(ctx context.Context, relation string) (bool, error) {
	_, ok, err := relationPath(d.Path, relation)
	return ok, err
}

// Fields returns the union of the property names of the relation's
// features
func (d *Dir) Fields(ctx context.Context, relation string) ([]string, error) {
	fc, err := d.load(relation)
	if err != nil {
		return nil, err
	}
	return fieldNames(fc), nil
}

// Links indexes the line variant elements by object id. Elements without
// a shape id are left out.
func (d *Dir) Links(ctx context.Context, dm *datamodel.TransitDataModel) (replacer.LinkLookup, error) {
	fc, err := d.load(dm.LineVariantElements)
	if err != nil {
		return nil, err
	}

	idx := make(linkIndex, len(fc.Features))

	for i, f := range fc.Features {
		oid, ok, err := featureID(f, dm.ObjectIDField)
		if err != nil {
			return nil, fmt.Errorf("%s: feature %d: %w", dm.LineVariantElements, i, err)
		}
		if !ok {
			continue
		}

		shapeID, ok, err := intProperty(f, dm.LVEShapeIDField)
		if err != nil {
			return nil, fmt.Errorf("%s: feature %d: %w", dm.LineVariantElements, i, err)
		}
		if !ok {
			continue
		}

		if _, dup := idx[oid]; !dup {
			idx[oid] = shapeID
		}
	}

	return idx, nil
}

// Shapes indexes the shape geometries by shape id. A shape with a null
// geometry is indexed as found with a nil polyline.
func (d *Dir) Shapes(ctx context.Context, dm *datamodel.TransitDataModel) (replacer.ShapeLookup, error) {
	fc, err := d.load(dm.LVEShapes)
	if err != nil {
		return nil, err
	}

	idx := make(shapeIndex, len(fc.Features))

	for i, f := range fc.Features {
		id, ok, err := intProperty(f, dm.ShapeIDField)
		if err != nil {
			return nil, fmt.Errorf("%s: feature %d: %w", dm.LVEShapes, i, err)
		}
		if !ok {
			continue
		}

		if _, dup := idx[id]; dup {
			continue
		}

		pl, err := geom.FromGeoJSON(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("%s: shape %d: %w", dm.LVEShapes, id, err)
		}

		idx[id] = pl
	}

	return idx, nil
}

func (d *Dir) load(relation string) (*geojson.FeatureCollection, error) {
	path, ok, err := relationPath(d.Path, relation)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("relation %s does not exist in %s", relation, d.Path)
	}
	return loadCollection(path)
}

type linkIndex map[int64]int64

func (idx linkIndex) Lookup(ctx context.Context, objectID int64) (int64, bool, error) {
	id, ok := idx[objectID]
	return id, ok, nil
}

func (idx linkIndex) Close() error {
	return nil
}

type shapeIndex map[int64]*geom.Polyline

func (idx shapeIndex) Lookup(ctx context.Context, shapeID int64) (*geom.Polyline, bool, error) {
	pl, ok := idx[shapeID]
	return pl, ok, nil
}

func (idx shapeIndex) Close() error {
	return nil
}
