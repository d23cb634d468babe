// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package store combines backing stores into a single shape reference
package store

import (
	"context"
	"github.com/patrickbr/routeshaper/datamodel"
	"github.com/patrickbr/routeshaper/replacer"
	"strings"
)

// LinkStore holds the line variant elements relation
type LinkStore interface {
	datamodel.Catalog
	Links(ctx context.Context, dm *datamodel.TransitDataModel) (replacer.LinkLookup, error)
}

// ShapeStore holds the LVEShapes relation
type ShapeStore interface {
	datamodel.Catalog
	Shapes(ctx context.Context, dm *datamodel.TransitDataModel) (replacer.ShapeLookup, error)
}

// Split is a shape reference taking the line variant elements from one
// store and the shape geometries from another
type Split struct {
	links  LinkStore
	shapes ShapeStore

	// shapesRelation is answered by the shape store, every other relation
	// by the link store
	shapesRelation string
}

// NewSplit combines a link store and a shape store. Catalog requests for
// shapesRelation go to the shape store.
func NewSplit(links LinkStore, shapes ShapeStore, shapesRelation string) *Split {
	return &Split{links: links, shapes: shapes, shapesRelation: shapesRelation}
}

func (s *Split) catalog(relation string) datamodel.Catalog {
	if strings.EqualFold(relation, s.shapesRelation) {
		return s.shapes
	}
	return s.links
}

// Exists asks the store responsible for the relation
func (s *Split) Exists(ctx context.Context, relation string) (bool, error) {
	return s.catalog(relation).Exists(ctx, relation)
}

// Fields asks the store responsible for the relation
func (s *Split) Fields(ctx context.Context, relation string) ([]string, error) {
	return s.catalog(relation).Fields(ctx, relation)
}

// Links opens the link lookup of the link store
func (s *Split) Links(ctx context.Context, dm *datamodel.TransitDataModel) (replacer.LinkLookup, error) {
	return s.links.Links(ctx, dm)
}

// Shapes opens the shape lookup of the shape store
func (s *Split) Shapes(ctx context.Context, dm *datamodel.TransitDataModel) (replacer.ShapeLookup, error) {
	return s.shapes.Shapes(ctx, dm)
}
