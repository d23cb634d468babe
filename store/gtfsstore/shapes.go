// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package gtfsstore serves LVEShapes geometries from the shapes of a GTFS
// feed and writes merged routes as GTFS shapes
package gtfsstore

import (
	"context"
	"fmt"
	"github.com/patrickbr/gtfsparser"
	gtfs "github.com/patrickbr/gtfsparser/gtfs"
	"github.com/patrickbr/routeshaper/datamodel"
	"github.com/patrickbr/routeshaper/geom"
	"github.com/patrickbr/routeshaper/replacer"
	"golang.org/x/exp/slices"
	"strconv"
	"strings"
)

// ShapeSource is a single relation store standing in for LVEShapes. Its
// records are the feed's shapes, keyed by their shape_id. Shapes whose id
// is not an integer cannot be addressed and are skipped.
type ShapeSource struct {
	feed *gtfsparser.Feed

	// Relation is the relation name the feed's shapes are served under
	Relation string

	// IDField is the field name reported for the shape id
	IDField string

	// Skipped holds the ids of shapes that were not indexed
	Skipped []string
}

// NewShapeSource creates a ShapeSource over a parsed feed
func NewShapeSource(feed *gtfsparser.Feed) *ShapeSource {
	names := datamodel.DefaultNames()
	return &ShapeSource{feed: feed, Relation: names.LVEShapes, IDField: names.ShapeIDField}
}

// LoadShapeSource parses the GTFS feed at path, a directory or zip file
func LoadShapeSource(path string) (*ShapeSource, error) {
	feed := gtfsparser.NewFeed()
	feed.SetParseOpts(gtfsparser.ParseOptions{UseDefValueOnError: true, DropErroneous: true, DryRun: false, CheckNullCoordinates: false, EmptyStringRepl: "", ZipFix: false})

	if err := feed.Parse(path); err != nil {
		return nil, fmt.Errorf("could not parse GTFS feed %s: %w", path, err)
	}

	return NewShapeSource(feed), nil
}

// Feed returns the underlying feed
func (s *ShapeSource) Feed() *gtfsparser.Feed {
	return s.feed
}

// Exists is true for the shapes relation only
func (s *ShapeSource) Exists(ctx context.Context, relation string) (bool, error) {
	return strings.EqualFold(relation, s.Relation), nil
}

// Fields returns the id and geometry field of the shapes relation
func (s *ShapeSource) Fields(ctx context.Context, relation string) ([]string, error) {
	if !strings.EqualFold(relation, s.Relation) {
		return nil, fmt.Errorf("relation %s does not exist in GTFS feed", relation)
	}
	return []string{s.IDField, "Shape"}, nil
}

// Shapes indexes the feed's shapes by their integer shape id
func (s *ShapeSource) Shapes(ctx context.Context, dm *datamodel.TransitDataModel) (replacer.ShapeLookup, error) {
	idx := make(shapeIndex, len(s.feed.Shapes))
	s.Skipped = s.Skipped[:0]

	for id, shape := range s.feed.Shapes {
		key, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			s.Skipped = append(s.Skipped, id)
			continue
		}
		idx[key] = toPolyline(shape.Points)
	}

	slices.Sort(s.Skipped)

	return idx, nil
}

// toPolyline converts shape points into a single part polyline, ordered by
// sequence. X is the longitude.
func toPolyline(points gtfs.ShapePoints) *geom.Polyline {
	pts := slices.Clone(points)
	slices.SortStableFunc(pts, func(a, b gtfs.ShapePoint) int {
		switch {
		case a.Sequence < b.Sequence:
			return -1
		case a.Sequence > b.Sequence:
			return 1
		}
		return 0
	})

	part := make(geom.Part, len(pts))
	for i, p := range pts {
		part[i] = geom.Point{X: float64(p.Lon), Y: float64(p.Lat)}
	}

	return geom.NewPolyline(part)
}

type shapeIndex map[int64]*geom.Polyline

func (idx shapeIndex) Lookup(ctx context.Context, shapeID int64) (*geom.Polyline, bool, error) {
	pl, ok := idx[shapeID]
	return pl, ok, nil
}

func (idx shapeIndex) Close() error {
	return nil
}
