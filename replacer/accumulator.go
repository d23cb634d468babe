// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package replacer

import (
	"fmt"
	"github.com/patrickbr/routeshaper/geom"
	"strings"
)

// MultipartMode controls how part breaks inside a single segment geometry
// are carried into the merged route geometry
type MultipartMode int

const (
	// Concatenate merges all parts of a segment into one continuous vertex
	// run
	Concatenate MultipartMode = iota

	// Split starts a new output part at every part break inside a segment
	Split

	// Reject fails on segments with more than one non-empty part
	Reject
)

// ParseMultipartMode parses "concatenate", "split" or "reject"
func ParseMultipartMode(s string) (MultipartMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "concatenate":
		return Concatenate, nil
	case "split":
		return Split, nil
	case "reject":
		return Reject, nil
	}
	return Concatenate, fmt.Errorf("unknown multipart mode '%s', expected concatenate, split or reject", s)
}

func (m MultipartMode) String() string {
	switch m {
	case Split:
		return "split"
	case Reject:
		return "reject"
	}
	return "concatenate"
}

// routeAccumulator collects vertex runs per route, keeping routes in the
// order they were first seen. It lives for exactly one replacement pass.
type routeAccumulator struct {
	mode   MultipartMode
	order  []int64
	routes map[int64]*vertexRun
}

type vertexRun struct {
	parts []geom.Part
}

func newRouteAccumulator(mode MultipartMode) *routeAccumulator {
	return &routeAccumulator{mode: mode, routes: make(map[int64]*vertexRun)}
}

// add appends the vertices of segment to the route
func (a *routeAccumulator) add(routeID int64, segment *geom.Polyline) {
	run, ok := a.routes[routeID]
	if !ok {
		run = &vertexRun{parts: []geom.Part{{}}}
		a.routes[routeID] = run
		a.order = append(a.order, routeID)
	}

	first := true
	for _, p := range segment.Parts {
		if len(p) == 0 {
			continue
		}
		if a.mode == Split && !first {
			run.parts = append(run.parts, geom.Part{})
		}
		last := len(run.parts) - 1
		run.parts[last] = append(run.parts[last], p...)
		first = false
	}
}

// each calls fn for every route in first-seen order, releasing each run
// after fn returned
func (a *routeAccumulator) each(fn func(OutputRoute) error) error {
	for _, id := range a.order {
		run := a.routes[id]
		if err := fn(OutputRoute{RouteID: id, Geometry: geom.NewPolyline(run.parts...)}); err != nil {
			return err
		}
		delete(a.routes, id)
	}
	return nil
}
