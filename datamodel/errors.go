// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package datamodel

import (
	"fmt"
	"strings"
)

// SchemaError is returned if a required relation or field is missing.
// If Relation is empty, one or more required relations do not exist.
type SchemaError struct {
	Relation string
	Required []string
	Missing  []string
}

func (e *SchemaError) Error() string {
	if e.Relation == "" {
		return fmt.Sprintf("one or more required relations do not exist. Required: %s", strings.Join(e.Required, ", "))
	}
	return fmt.Sprintf("%s is missing one or more required fields (missing: %s). Required fields: %s",
		e.Relation, strings.Join(e.Missing, ", "), strings.Join(e.Required, ", "))
}
