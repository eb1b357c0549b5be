package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"planar_router/pkg/graph"
	"planar_router/pkg/logger"
	"planar_router/pkg/mapfile"
	osmparser "planar_router/pkg/osm"
)

type options struct {
	input   string
	output  string
	format  string
	largest bool
	bbox    orb.Bound
}

func main() {
	var opt options
	var bbox string
	flag.StringVar(&opt.input, "input", "", "Input map: text map (.txt) or OpenStreetMap extract (.osm.pbf)")
	flag.StringVar(&opt.output, "output", "map.bin", "Output file path")
	flag.StringVar(&opt.format, "format", mapfile.FormatBinary, "Output format: binary or text")
	flag.BoolVar(&opt.largest, "largest", false, "Keep only the largest connected component")
	flag.StringVar(&bbox, "bbox", "", "OSM bounding box filter: minLat,minLng,maxLat,maxLng (e.g. 1.15,103.6,1.48,104.1)")
	flag.Parse()

	if opt.input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess -input <map.txt|file.osm.pbf> [-output map.bin] [-format binary|text] [-largest] [-bbox minLat,minLng,maxLat,maxLng]")
		os.Exit(2)
	}
	if opt.format != mapfile.FormatBinary && opt.format != mapfile.FormatText {
		fmt.Fprintf(os.Stderr, "unknown -format %q\n", opt.format)
		os.Exit(2)
	}
	if bbox != "" {
		b, err := parseBBox(bbox)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -bbox: %v\n", err)
			os.Exit(2)
		}
		opt.bbox = b
	}

	log, err := logger.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(context.Background(), opt, log); err != nil {
		log.Error("preprocess failed", zap.Error(err))
		os.Exit(1)
	}
}

// parseBBox reads "minLat,minLng,maxLat,maxLng" into a (lon, lat) bound.
func parseBBox(s string) (orb.Bound, error) {
	var minLat, minLng, maxLat, maxLng float64
	if _, err := fmt.Sscanf(s, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng); err != nil {
		return orb.Bound{}, fmt.Errorf("expected minLat,minLng,maxLat,maxLng: %w", err)
	}
	if minLat > maxLat || minLng > maxLng {
		return orb.Bound{}, fmt.Errorf("min exceeds max in %q", s)
	}
	return orb.Bound{Min: orb.Point{minLng, minLat}, Max: orb.Point{maxLng, maxLat}}, nil
}

func run(ctx context.Context, opt options, log *zap.Logger) error {
	start := time.Now()

	in, err := readInput(ctx, opt, log)
	if err != nil {
		return err
	}

	// Building validates every connection.
	g, err := graph.Build(in)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}
	_, components := graph.Components(g)
	log.Info("graph built",
		zap.Uint32("nodes", g.NumNodes),
		zap.Int("connections", len(in.Connections)),
		zap.Int("components", components),
	)

	if opt.largest && g.NumNodes > 0 {
		nodes := graph.LargestComponent(g)
		in = graph.FilterInput(in, nodes)
		log.Info("kept largest component",
			zap.Int("nodes", len(nodes)),
			zap.Float64("percent", float64(len(nodes))/float64(g.NumNodes)*100),
			zap.Int("connections", len(in.Connections)),
		)
	}

	log.Info("writing output", zap.String("path", opt.output), zap.String("format", opt.format))
	if opt.format == mapfile.FormatText {
		err = mapfile.WriteFile(opt.output, in)
	} else {
		err = graph.WriteBinary(opt.output, in)
	}
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	info, err := os.Stat(opt.output)
	if err != nil {
		return err
	}
	log.Info("done",
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
		zap.Int64("bytes", info.Size()),
	)
	return nil
}

func readInput(ctx context.Context, opt options, log *zap.Logger) (*graph.Input, error) {
	if !strings.HasSuffix(strings.ToLower(opt.input), ".pbf") {
		log.Info("parsing text map", zap.String("path", opt.input))
		return mapfile.ParseFile(opt.input)
	}

	f, err := os.Open(opt.input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	log.Info("parsing OSM data", zap.String("path", opt.input))
	in, err := osmparser.Parse(ctx, f, osmparser.ParseOptions{BBox: opt.bbox, Log: log})
	if err != nil {
		return nil, fmt.Errorf("parse OSM data: %w", err)
	}
	return in, nil
}
