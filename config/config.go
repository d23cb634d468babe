// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package config

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/patrickbr/routeshaper/datamodel"
	"github.com/patrickbr/routeshaper/replacer"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"os"
	"strings"
)

// EdgesConfig names the fields of the traversed edges
type EdgesConfig struct {
	RouteIDField    string `yaml:"route_id_field" validate:"required"`
	SourceNameField string `yaml:"source_name_field" validate:"required"`
	SourceOIDField  string `yaml:"source_oid_field" validate:"required"`
}

// TransitConfig names the public transit data model relations and fields
type TransitConfig struct {
	LineVariantElements string `yaml:"line_variant_elements" validate:"required"`
	LVEShapes           string `yaml:"lve_shapes" validate:"required"`
	LVEShapeIDField     string `yaml:"lve_shape_id_field" validate:"required"`
	ShapeIDField        string `yaml:"shape_id_field" validate:"required"`
	ObjectIDField       string `yaml:"object_id_field" validate:"required"`
	LineVariantSource   string `yaml:"line_variant_source" validate:"required"`
}

// Config is the routeshaper configuration
type Config struct {
	Edges     EdgesConfig   `yaml:"edges" validate:"required"`
	Transit   TransitConfig `yaml:"transit" validate:"required"`
	Multipart string        `yaml:"multipart" validate:"omitempty,oneof=concatenate split reject"`
}

// Default returns the configuration for a Route or Closest Facility
// traversal result over the public transit data model
func Default() Config {
	fields := replacer.DefaultEdgeFields()
	names := datamodel.DefaultNames()

	return Config{
		Edges: EdgesConfig{
			RouteIDField:    fields.RouteID,
			SourceNameField: fields.SourceName,
			SourceOIDField:  fields.SourceOID,
		},
		Transit: TransitConfig{
			LineVariantElements: names.LineVariantElements,
			LVEShapes:           names.LVEShapes,
			LVEShapeIDField:     names.LVEShapeIDField,
			ShapeIDField:        names.ShapeIDField,
			ObjectIDField:       names.ObjectIDField,
			LineVariantSource:   names.LineVariantElements,
		},
		Multipart: replacer.Concatenate.String(),
	}
}

// Load reads a YAML file on top of the defaults and validates the result
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that no name is empty and the multipart mode is known.
// The multipart mode is matched case-insensitively.
func (c Config) Validate() error {
	c.Multipart = strings.ToLower(strings.TrimSpace(c.Multipart))
	return validator.New().Struct(c)
}

// Options converts the configuration into replacer options
func (c Config) Options(logger *zap.Logger) (replacer.Options, error) {
	mode, err := replacer.ParseMultipartMode(c.Multipart)
	if err != nil {
		return replacer.Options{}, err
	}

	return replacer.Options{
		Fields: replacer.EdgeFields{
			RouteID:    c.Edges.RouteIDField,
			SourceName: c.Edges.SourceNameField,
			SourceOID:  c.Edges.SourceOIDField,
		},
		Names: datamodel.Names{
			LineVariantElements: c.Transit.LineVariantElements,
			LVEShapes:           c.Transit.LVEShapes,
			LVEShapeIDField:     c.Transit.LVEShapeIDField,
			ShapeIDField:        c.Transit.ShapeIDField,
			ObjectIDField:       c.Transit.ObjectIDField,
		},
		LineVariantSource: c.Transit.LineVariantSource,
		Multipart:         mode,
		Logger:            logger,
	}, nil
}
