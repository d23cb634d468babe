// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package geojsonstore reads traversal results and transit data model
// relations from GeoJSON FeatureCollections and writes merged routes to one
package geojsonstore

import (
	"fmt"
	"github.com/patrickbr/routeshaper/geom"
	"github.com/paulmach/go.geojson"
	"golang.org/x/exp/slices"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Ext is the file extension of GeoJSON relations
const Ext = ".geojson"

func loadCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}

	return fc, nil
}

// fieldNames returns the union of the property names of all features,
// sorted
func fieldNames(fc *geojson.FeatureCollection) []string {
	seen := make(map[string]bool)
	fields := make([]string, 0)

	for _, f := range fc.Features {
		for k := range f.Properties {
			if !seen[k] {
				seen[k] = true
				fields = append(fields, k)
			}
		}
	}

	slices.Sort(fields)
	return fields
}

// property returns the value of a property, matching its name
// case-insensitively
func property(f *geojson.Feature, name string) (interface{}, bool) {
	if v, ok := f.Properties[name]; ok {
		return v, true
	}
	for k, v := range f.Properties {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// intProperty returns an integer property. Absent and null properties are
// not ok.
func intProperty(f *geojson.Feature, name string) (int64, bool, error) {
	v, ok := property(f, name)
	if !ok || v == nil {
		return 0, false, nil
	}

	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) {
			return 0, false, fmt.Errorf("property %s is not an integer: %v", name, val)
		}
		return int64(val), true, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("property %s is not an integer: %q", name, val)
		}
		return i, true, nil
	}

	return 0, false, fmt.Errorf("property %s has unsupported type %T", name, v)
}

// stringProperty returns a string property, formatting numbers
func stringProperty(f *geojson.Feature, name string) string {
	v, ok := property(f, name)
	if !ok || v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}

	return fmt.Sprint(v)
}

// featureID returns the integer object id of a feature, taken from the
// given property or the feature id member
func featureID(f *geojson.Feature, field string) (int64, bool, error) {
	id, ok, err := intProperty(f, field)
	if err != nil || ok {
		return id, ok, err
	}

	switch val := f.ID.(type) {
	case float64:
		if val != math.Trunc(val) {
			return 0, false, fmt.Errorf("feature id is not an integer: %v", val)
		}
		return int64(val), true, nil
	case string:
		i, err := strconv.ParseInt(val, 10, 64)
		if err == nil {
			return i, true, nil
		}
	}

	return 0, false, nil
}

// spatialReference returns the name of a named crs member
func spatialReference(crs map[string]interface{}) geom.SpatialReference {
	if crs == nil {
		return ""
	}

	props, ok := crs["properties"].(map[string]interface{})
	if !ok {
		return ""
	}

	name, _ := props["name"].(string)
	return geom.SpatialReference(name)
}

// namedCRS builds a named crs member
func namedCRS(sr geom.SpatialReference) map[string]interface{} {
	if sr == "" {
		return nil
	}

	return map[string]interface{}{
		"type":       "name",
		"properties": map[string]interface{}{"name": string(sr)},
	}
}

// relationPath finds the file of a relation in dir, matching the relation
// name case-insensitively
func relationPath(dir string, relation string) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, err
	}

	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || !strings.EqualFold(ext, Ext) {
			continue
		}
		if strings.EqualFold(strings.TrimSuffix(e.Name(), ext), relation) {
			return filepath.Join(dir, e.Name()), true, nil
		}
	}

	return "", false, nil
}
