// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package store

import (
	"context"
	"errors"
	"github.com/patrickbr/gtfsparser"
	gtfs "github.com/patrickbr/gtfsparser/gtfs"
	"github.com/patrickbr/routeshaper/datamodel"
	"github.com/patrickbr/routeshaper/geom"
	"github.com/patrickbr/routeshaper/replacer"
	"github.com/patrickbr/routeshaper/store/geojsonstore"
	"github.com/patrickbr/routeshaper/store/gtfsstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testSplit(t *testing.T) (string, *Split) {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "LineVariantElements.geojson"), `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"ObjectID":1,"LVEShapeID":10},"geometry":null},
{"type":"Feature","properties":{"ObjectID":2,"LVEShapeID":11},"geometry":null}]}`)

	writeFile(t, filepath.Join(dir, "edges.geojson"), `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"RouteID":5,"SourceName":"LineVariantElements","SourceOID":1},"geometry":{"type":"LineString","coordinates":[[7,47],[7.1,47.1]]}},
{"type":"Feature","properties":{"RouteID":5,"SourceName":"LineVariantElements","SourceOID":2},"geometry":{"type":"LineString","coordinates":[[7.1,47.1],[7.2,47.2]]}}]}`)

	feed := gtfsparser.NewFeed()
	feed.Shapes["10"] = &gtfs.Shape{Id: "10", Points: gtfs.ShapePoints{
		{Lat: 47, Lon: 7, Sequence: 0},
		{Lat: 47.05, Lon: 7.04, Sequence: 1},
		{Lat: 47.1, Lon: 7.1, Sequence: 2},
	}}

	return dir, NewSplit(geojsonstore.NewDir(dir), gtfsstore.NewShapeSource(feed), "LVEShapes")
}

func TestSplitCatalog(t *testing.T) {
	ctx := context.Background()
	_, s := testSplit(t)

	dm := datamodel.New(s, datamodel.DefaultNames())
	require.NoError(t, dm.Validate(ctx))

	ok, err := s.Exists(ctx, "lveshapes")
	require.NoError(t, err)
	assert.True(t, ok)

	fields, err := s.Fields(ctx, "LineVariantElements")
	require.NoError(t, err)
	assert.Equal(t, []string{"LVEShapeID", "ObjectID"}, fields)
}

func TestSplitReplaceRouteShapes(t *testing.T) {
	ctx := context.Background()
	dir, s := testSplit(t)
	outPath := filepath.Join(dir, "routes.geojson")

	r, err := replacer.New(ctx, geojsonstore.NewEdgeFile(filepath.Join(dir, "edges.geojson")), s, geojsonstore.NewOutputFile(outPath), replacer.DefaultOptions())
	require.NoError(t, err)

	sum, err := r.ReplaceRouteShapes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Routes)
	assert.Equal(t, 1, sum.Substituted)
	assert.Equal(t, 1, sum.MissingShapes)

	routes, err := geojsonstore.NewEdgeFile(outPath).Edges(ctx, replacer.EdgeFields{RouteID: "RouteID"})
	require.NoError(t, err)
	defer routes.Close()

	require.True(t, routes.Next())
	verts := routes.Edge().Geometry.Vertices()
	require.Len(t, verts, 5)
	assert.InDelta(t, 7.04, verts[1].X, 1e-5)
	assert.InDelta(t, 47.05, verts[1].Y, 1e-5)
	assert.Equal(t, geom.Point{X: 7.2, Y: 47.2}, verts[4])
}

func TestSplitMissingShapes(t *testing.T) {
	ctx := context.Background()
	dir, _ := testSplit(t)

	s := NewSplit(geojsonstore.NewDir(dir), geojsonstore.NewDir(dir), "LVEShapes")

	_, err := replacer.New(ctx, geojsonstore.NewEdgeFile(filepath.Join(dir, "edges.geojson")), s, geojsonstore.NewOutputFile(filepath.Join(dir, "out.geojson")), replacer.DefaultOptions())

	var se *datamodel.SchemaError
	assert.True(t, errors.As(err, &se))
}
