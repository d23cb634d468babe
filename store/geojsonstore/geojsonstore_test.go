// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package geojsonstore

import (
	"context"
	"errors"
	"github.com/patrickbr/routeshaper/datamodel"
	"github.com/patrickbr/routeshaper/geom"
	"github.com/patrickbr/routeshaper/replacer"
	"github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

const testEdges = `{"type":"FeatureCollection",
"crs":{"type":"name","properties":{"name":"urn:ogc:def:crs:EPSG::4326"}},
"features":[
{"type":"Feature","properties":{"RouteID":1,"SourceName":"LineVariantElements","SourceOID":10},"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]}},
{"type":"Feature","properties":{"RouteID":2,"SourceName":"Streets","SourceOID":5},"geometry":{"type":"LineString","coordinates":[[9,9],[8,8]]}},
{"type":"Feature","properties":{"RouteID":1,"SourceName":"LineVariantElements","SourceOID":11},"geometry":{"type":"LineString","coordinates":[[1,1],[2,2]]}},
{"type":"Feature","properties":{"RouteID":1,"SourceName":"LineVariantElements","SourceOID":12},"geometry":{"type":"LineString","coordinates":[[2,2],[3,3]]}}
]}`

const testLVE = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"ObjectID":10,"LVEShapeID":100},"geometry":null},
{"type":"Feature","properties":{"ObjectID":11,"LVEShapeID":101},"geometry":null},
{"type":"Feature","id":12,"properties":{"LVEShapeID":null},"geometry":null}
]}`

const testShapes = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"ID":100},"geometry":{"type":"MultiLineString","coordinates":[[[0,0],[0.5,0.5]],[[0.5,0.5],[1,1]]]}},
{"type":"Feature","properties":{"id":101},"geometry":null}
]}`

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "edges.geojson"), testEdges)
	writeFile(t, filepath.Join(dir, "LineVariantElements.geojson"), testLVE)
	writeFile(t, filepath.Join(dir, "lveshapes.GeoJSON"), testShapes)
	return dir
}

func TestReplaceRouteShapes(t *testing.T) {
	ctx := context.Background()
	dir := testDir(t)
	outPath := filepath.Join(dir, "routes.geojson")

	r, err := replacer.New(ctx, NewEdgeFile(filepath.Join(dir, "edges.geojson")), NewDir(dir), NewOutputFile(outPath), replacer.DefaultOptions())
	require.NoError(t, err)

	sum, err := r.ReplaceRouteShapes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Edges)
	assert.Equal(t, 2, sum.Routes)
	assert.Equal(t, 1, sum.Substituted)
	assert.Equal(t, 1, sum.NullShapes)
	assert.Equal(t, 1, sum.MissingLinks)

	out := NewEdgeFile(outPath)

	sr, err := out.SpatialReference(ctx)
	require.NoError(t, err)
	assert.Equal(t, geom.SpatialReference("urn:ogc:def:crs:EPSG::4326"), sr)

	routes, err := out.Edges(ctx, replacer.EdgeFields{RouteID: "RouteID"})
	require.NoError(t, err)
	defer routes.Close()

	require.True(t, routes.Next())
	assert.Equal(t, int64(1), routes.Edge().RouteID)
	assert.Equal(t, []geom.Point{{0, 0}, {0.5, 0.5}, {0.5, 0.5}, {1, 1}, {1, 1}, {2, 2}, {2, 2}, {3, 3}}, routes.Edge().Geometry.Vertices())

	// concatenation merges the parts of the substituted shape
	assert.Equal(t, 1, routes.Edge().Geometry.NumParts())

	require.True(t, routes.Next())
	assert.Equal(t, int64(2), routes.Edge().RouteID)
	assert.Equal(t, []geom.Point{{9, 9}, {8, 8}}, routes.Edge().Geometry.Vertices())

	assert.False(t, routes.Next())
	assert.NoError(t, routes.Err())
}

func TestDirCatalog(t *testing.T) {
	ctx := context.Background()
	d := NewDir(testDir(t))

	ok, err := d.Exists(ctx, "LVEShapes")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Exists(ctx, "Stops")
	require.NoError(t, err)
	assert.False(t, ok)

	fields, err := d.Fields(ctx, "LVEShapes")
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "id"}, fields)

	dm := datamodel.New(d, datamodel.DefaultNames())
	assert.NoError(t, dm.Validate(ctx))

	shapes, err := d.Shapes(ctx, dm)
	require.NoError(t, err)

	pl, found, err := shapes.Lookup(ctx, 101)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Nil(t, pl)

	_, found, err = shapes.Lookup(ctx, 102)
	require.NoError(t, err)
	assert.False(t, found)

	links, err := d.Links(ctx, dm)
	require.NoError(t, err)

	_, found, err = links.Lookup(ctx, 12)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDirMissingRelation(t *testing.T) {
	ctx := context.Background()
	dir := testDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "LineVariantElements.geojson")))

	_, err := replacer.New(ctx, NewEdgeFile(filepath.Join(dir, "edges.geojson")), NewDir(dir), NewOutputFile(filepath.Join(dir, "out.geojson")), replacer.DefaultOptions())

	var se *datamodel.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "", se.Relation)
}

func TestEdgeFileNotFound(t *testing.T) {
	ctx := context.Background()
	dir := testDir(t)

	_, err := replacer.New(ctx, NewEdgeFile(filepath.Join(dir, "nope.geojson")), NewDir(dir), NewOutputFile(filepath.Join(dir, "out.geojson")), replacer.DefaultOptions())

	var nf *replacer.InputNotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestEdgeFileMissingRouteID(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "edges.geojson")
	writeFile(t, path, `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"RouteID":1.5,"SourceName":"x","SourceOID":1},"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]}}
]}`)

	r, err := NewEdgeFile(path).Edges(ctx, replacer.DefaultEdgeFields())
	require.NoError(t, err)

	assert.False(t, r.Next())
	assert.Error(t, r.Err())
}

func TestEdgeFileFields(t *testing.T) {
	ctx := context.Background()
	e := NewEdgeFile(filepath.Join(testDir(t), "edges.geojson"))

	fields, err := e.Fields(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"RouteID", "SourceName", "SourceOID"}, fields)
}

func TestOutputWithoutSpatialReference(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.geojson")

	w, err := NewOutputFile(path).Create(ctx, "")
	require.NoError(t, err)
	require.NoError(t, w.Write(ctx, replacer.OutputRoute{RouteID: 3, Geometry: geom.NewPolylineFromCoords([][]float64{{1, 2}, {3, 4}})}))
	require.NoError(t, w.Close())

	out := NewEdgeFile(path)
	sr, err := out.SpatialReference(ctx)
	require.NoError(t, err)
	assert.Equal(t, geom.SpatialReference(""), sr)

	fields, err := out.Fields(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"RouteID"}, fields)
}

func TestFractionalFeatureID(t *testing.T) {
	ctx := context.Background()
	dir := testDir(t)
	writeFile(t, filepath.Join(dir, "LineVariantElements.geojson"), `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"ObjectID":10,"LVEShapeID":100},"geometry":null},
{"type":"Feature","id":11.5,"properties":{"LVEShapeID":101},"geometry":null}
]}`)

	r, err := replacer.New(ctx, NewEdgeFile(filepath.Join(dir, "edges.geojson")), NewDir(dir), NewOutputFile(filepath.Join(dir, "out.geojson")), replacer.DefaultOptions())
	require.NoError(t, err)

	_, err = r.ReplaceRouteShapes(ctx)

	var ge *replacer.GeometryResolutionError
	assert.True(t, errors.As(err, &ge))
}

func TestFeatureID(t *testing.T) {
	id, ok, err := featureID(&geojson.Feature{ID: float64(12), Properties: map[string]interface{}{}}, "ObjectID")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	_, _, err = featureID(&geojson.Feature{ID: 12.5, Properties: map[string]interface{}{}}, "ObjectID")
	assert.Error(t, err)

	_, ok, err = featureID(&geojson.Feature{ID: "abc", Properties: map[string]interface{}{}}, "ObjectID")
	require.NoError(t, err)
	assert.False(t, ok)
}
