// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package replacer

import (
	"fmt"
)

// InputNotFoundError is returned if the traversed edges do not exist
type InputNotFoundError struct {
	Name string
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("the input traversed edges %s do not exist", e.Name)
}

// GeometryResolutionError is returned for any failure while streaming,
// resolving or writing route geometries. Edge is the 0-based index of the
// edge in traversal order, or -1 if the failure is not tied to an edge.
type GeometryResolutionError struct {
	Op      string
	Edge    int
	RouteID int64
	Err     error
}

func (e *GeometryResolutionError) Error() string {
	if e.Edge < 0 {
		return fmt.Sprintf("could not %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("could not %s (edge #%d, route %d): %v", e.Op, e.Edge, e.RouteID, e.Err)
}

func (e *GeometryResolutionError) Unwrap() error {
	return e.Err
}
