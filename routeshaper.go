// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package main

import (
	"context"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/patrickbr/routeshaper/config"
	"github.com/patrickbr/routeshaper/datamodel"
	"github.com/patrickbr/routeshaper/replacer"
	"github.com/patrickbr/routeshaper/store"
	"github.com/patrickbr/routeshaper/store/geojsonstore"
	"github.com/patrickbr/routeshaper/store/gtfsstore"
	"github.com/patrickbr/routeshaper/store/shpstore"
	"github.com/patrickbr/routeshaper/store/sqlstore"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type options struct {
	edges        string
	edgesTable   string
	transit      string
	gtfsShapes   string
	output       string
	outputFormat string
	outputTable  string
	overwrite    bool
	measure      bool
	configPath   string
	routeIDField string
	multipart    string
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "routeshaper - (C) 2016-2024 by Patrick Brosi <info@patrickbrosi.de>\n\nUsage:\n\n  %s [<options>] -e <traversed edges> -t <transit workspace> -o <output>\n\nAllowed options:\n\n", os.Args[0])
		flag.PrintDefaults()
	}

	_ = godotenv.Load()

	var o options

	flag.StringVarP(&o.edges, "edges", "e", os.Getenv("ROUTESHAPER_EDGES"), "traversed edges: GeoJSON (.geojson, .json), shapefile (.shp), SQLite file (.sqlite, .db, .gpkg) or postgres:// DSN")
	flag.StringVarP(&o.edgesTable, "edges-table", "", "Edges", "traversed edges table in SQL workspaces")
	flag.StringVarP(&o.transit, "transit", "t", os.Getenv("ROUTESHAPER_TRANSIT"), "transit data model workspace: directory of GeoJSON relations, SQLite file or postgres:// DSN")
	flag.StringVarP(&o.gtfsShapes, "gtfs-shapes", "", "", "take LVEShapes geometries from the shapes of this GTFS feed (directory or zip)")
	flag.StringVarP(&o.output, "output", "o", "", "output: .geojson, .shp, GTFS directory or zip file (must end with .zip), SQLite file or postgres:// DSN")
	flag.StringVarP(&o.outputFormat, "output-format", "", "", "output format (geojson, shp, gtfs, sql), guessed from the output path if empty")
	flag.StringVarP(&o.outputTable, "output-table", "", "Routes", "output table in SQL workspaces")
	flag.BoolVarP(&o.overwrite, "overwrite", "", false, "replace an existing output table")
	flag.BoolVarP(&o.measure, "measure", "m", false, "write shape_dist_traveled (in meters) to GTFS output")
	flag.StringVarP(&o.configPath, "config", "c", "", "YAML configuration file")
	flag.StringVarP(&o.routeIDField, "route-id-field", "", "", "route id field of the traversed edges (FacilityID for service areas)")
	flag.StringVarP(&o.multipart, "multipart", "", "", "handling of multipart segments (concatenate, split, reject)")
	verbose := flag.BoolP("verbose", "v", false, "log every shape fallback")
	help := flag.BoolP("help", "?", false, "this message")

	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	if o.edges == "" || o.transit == "" || o.output == "" {
		fmt.Fprintln(os.Stderr, "Missing traversed edges, transit workspace or output, see --help.")
		os.Exit(1)
	}

	logCfg := zap.NewProductionConfig()
	if *verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := logCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not initialize logger: %s\n", err.Error())
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(context.Background(), o, os.Stdout, logger); err != nil {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "\nError: %s\n", err.Error())
		os.Exit(1)
	}
}

// workspaces opens every SQL workspace once, so edges, transit data model
// and output may share a database
type workspaces map[string]*sqlstore.Workspace

func (ws workspaces) open(ctx context.Context, dsn string, mustExist bool) (*sqlstore.Workspace, error) {
	if w, ok := ws[dsn]; ok {
		return w, nil
	}

	var (
		w   *sqlstore.Workspace
		err error
	)

	if mustExist && !strings.Contains(dsn, "://") {
		w, err = sqlstore.OpenSQLite(ctx, dsn, true)
	} else {
		w, err = sqlstore.Open(ctx, dsn)
	}
	if err != nil {
		return nil, err
	}

	ws[dsn] = w
	return w, nil
}

func (ws workspaces) close() {
	for _, w := range ws {
		w.Close()
	}
}

// run opens the inputs and the output named in o and replaces the route
// shapes, printing progress to out
func run(ctx context.Context, o options, out io.Writer, logger *zap.Logger) error {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
	}

	if o.routeIDField != "" {
		cfg.Edges.RouteIDField = o.routeIDField
	}
	if o.multipart != "" {
		cfg.Multipart = o.multipart
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts, err := cfg.Options(logger)
	if err != nil {
		return err
	}

	ws := make(workspaces)
	defer ws.close()

	edges, err := openEdges(ctx, ws, o)
	if err != nil {
		return err
	}

	ref, err := openReference(ctx, ws, o, cfg, out, logger)
	if err != nil {
		return err
	}

	target, err := openOutput(ctx, ws, o)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Checking transit data model and traversed edges '%s'...", edges.Name())

	r, err := replacer.New(ctx, edges, ref, target, opts)
	if err != nil {
		fmt.Fprintln(out)
		return err
	}

	fmt.Fprintf(out, " done.\n")
	fmt.Fprintf(out, "Replacing route shapes... ")

	sum, err := r.ReplaceRouteShapes(ctx)
	if err != nil {
		fmt.Fprintln(out)
		return err
	}

	fmt.Fprintf(out, "done. (%d routes from %d edges, %d segments substituted, %d kept their own geometry, %d vertices of total length %.4f written to '%s')\n",
		sum.Routes, sum.Edges, sum.Substituted, sum.Fallbacks(), sum.Vertices, sum.Length, o.output)

	if sum.Fallbacks() > 0 {
		logger.Info("segments kept their own geometry",
			zap.Int("missingLinks", sum.MissingLinks),
			zap.Int("missingShapes", sum.MissingShapes),
			zap.Int("nullShapes", sum.NullShapes))
	}

	return nil
}

func openEdges(ctx context.Context, ws workspaces, o options) (replacer.EdgeSource, error) {
	switch ext := strings.ToLower(filepath.Ext(o.edges)); {
	case sqlstore.IsWorkspace(o.edges):
		w, err := ws.open(ctx, o.edges, true)
		if err != nil {
			return nil, err
		}
		return w.EdgeTable(o.edgesTable), nil
	case ext == ".shp":
		return shpstore.NewEdgeFile(o.edges), nil
	case ext == geojsonstore.Ext || ext == ".json":
		return geojsonstore.NewEdgeFile(o.edges), nil
	}

	return nil, fmt.Errorf("unknown traversed edges format of '%s'", o.edges)
}

func openReference(ctx context.Context, ws workspaces, o options, cfg config.Config, out io.Writer, logger *zap.Logger) (replacer.ShapeReference, error) {
	var ref replacer.ShapeReference

	if sqlstore.IsWorkspace(o.transit) {
		w, err := ws.open(ctx, o.transit, true)
		if err != nil {
			return nil, err
		}
		ref = w
	} else if st, err := os.Stat(o.transit); err == nil && st.IsDir() {
		ref = geojsonstore.NewDir(o.transit)
	} else {
		return nil, fmt.Errorf("transit workspace '%s' is neither a SQL workspace nor a directory", o.transit)
	}

	if o.gtfsShapes == "" {
		return ref, nil
	}

	fmt.Fprintf(out, "Parsing GTFS feed in '%s'...", o.gtfsShapes)

	shapes, err := gtfsstore.LoadShapeSource(o.gtfsShapes)
	if err != nil {
		fmt.Fprintln(out)
		return nil, err
	}

	shapes.Relation = cfg.Transit.LVEShapes
	shapes.IDField = cfg.Transit.ShapeIDField

	fmt.Fprintf(out, " done. (%d shapes)\n", len(shapes.Feed().Shapes))

	return store.NewSplit(ref, &skipLogger{shapes, logger}, cfg.Transit.LVEShapes), nil
}

// skipLogger warns about GTFS shapes that cannot be addressed
type skipLogger struct {
	*gtfsstore.ShapeSource
	logger *zap.Logger
}

func (s *skipLogger) Shapes(ctx context.Context, dm *datamodel.TransitDataModel) (replacer.ShapeLookup, error) {
	l, err := s.ShapeSource.Shapes(ctx, dm)
	if err == nil && len(s.Skipped) > 0 {
		s.logger.Warn("GTFS shapes without integer shape_id cannot be referenced", zap.Int("count", len(s.Skipped)), zap.Strings("shapeIDs", s.Skipped))
	}
	return l, err
}

func openOutput(ctx context.Context, ws workspaces, o options) (replacer.OutputTarget, error) {
	format := o.outputFormat
	if format == "" {
		format = guessFormat(o.output)
	}

	switch format {
	case "sql":
		w, err := ws.open(ctx, o.output, false)
		if err != nil {
			return nil, err
		}
		t := w.OutputTable(o.outputTable)
		t.Overwrite = o.overwrite
		return t, nil
	case "shp":
		return shpstore.NewOutputFile(o.output), nil
	case "geojson":
		return geojsonstore.NewOutputFile(o.output), nil
	case "gtfs":
		f := gtfsstore.NewOutputFeed(o.output)
		f.Measure = o.measure
		return f, nil
	}

	return nil, fmt.Errorf("unknown output format '%s'", format)
}

// guessFormat derives the output format from the output path. Paths
// without extension are GTFS directories.
func guessFormat(path string) string {
	if sqlstore.IsWorkspace(path) {
		return "sql"
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return "shp"
	case geojsonstore.Ext, ".json":
		return "geojson"
	case ".zip", "":
		return "gtfs"
	}

	return ""
}
