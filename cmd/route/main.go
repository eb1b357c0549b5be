package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"planar_router/pkg/guidance"
	"planar_router/pkg/logger"
	"planar_router/pkg/mapfile"
	"planar_router/pkg/routing"
)

// queryList collects repeated -query flags.
type queryList []routing.Query

func (q *queryList) String() string {
	parts := make([]string, len(*q))
	for i, x := range *q {
		parts[i] = fmt.Sprintf("%d:%d", x.Start, x.Goal)
	}
	return strings.Join(parts, ",")
}

func (q *queryList) Set(s string) error {
	from, to, ok := strings.Cut(s, ":")
	if !ok {
		return errors.New("expected from:to")
	}
	start, err := strconv.ParseUint(from, 10, 32)
	if err != nil {
		return fmt.Errorf("start %q: %w", from, err)
	}
	goal, err := strconv.ParseUint(to, 10, 32)
	if err != nil {
		return fmt.Errorf("goal %q: %w", to, err)
	}
	*q = append(*q, routing.Query{Start: uint32(start), Goal: uint32(goal)})
	return nil
}

func main() {
	mapPath := flag.String("map", "", "Path to text map file")
	graphPath := flag.String("graph", "", "Path to binary map file (alternative to -map)")
	workers := flag.Int("workers", 0, "Concurrent queries (0 = GOMAXPROCS)")
	geojsonDir := flag.String("geojson", "", "If set, write one GeoJSON file per route into this directory")
	verbose := flag.Bool("v", false, "Verbose logging")
	var queries queryList
	flag.Var(&queries, "query", "Route query as from:to (repeatable)")
	flag.Parse()

	if (*mapPath == "") == (*graphPath == "") || len(queries) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: route (-map <file.txt> | -graph <file.bin>) -query from:to [-query from:to ...] [-workers n] [-geojson dir]")
		os.Exit(2)
	}

	log := zap.NewNop()
	if *verbose {
		var err error
		if log, err = logger.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer log.Sync()

	path, format := *mapPath, mapfile.FormatText
	if *graphPath != "" {
		path, format = *graphPath, mapfile.FormatBinary
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	failed, err := run(ctx, os.Stdout, path, format, queries, *workers, *geojsonDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "route: %v\n", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// run answers every query and prints one table per route. It returns the
// number of queries that produced no route.
func run(ctx context.Context, w io.Writer, path, format string, queries []routing.Query,
	workers int, geojsonDir string, log *zap.Logger) (int, error) {
	g, err := mapfile.LoadGraph(path, format)
	if err != nil {
		return 0, err
	}
	engine := routing.NewEngine(g, log, routing.WithSnapRadius(0))

	if geojsonDir != "" {
		if err := os.MkdirAll(geojsonDir, 0o755); err != nil {
			return 0, fmt.Errorf("create geojson dir: %w", err)
		}
	}

	failed := 0
	for i, res := range engine.RouteBatch(ctx, queries, workers) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Route %d -> %d\n", res.Query.Start, res.Query.Goal)
		if res.Err != nil {
			failed++
			fmt.Fprintf(w, "no route: %v\n", res.Err)
			continue
		}

		fmt.Fprintf(w, "Cost: %.2f\n", res.Result.Cost)
		if err := guidance.RenderTable(w, res.Result.Nodes, res.Result.Turns); err != nil {
			return failed, err
		}

		if geojsonDir != "" {
			name := filepath.Join(geojsonDir, fmt.Sprintf("route_%d_%d.geojson", res.Query.Start, res.Query.Goal))
			data, err := json.MarshalIndent(res.Result.GeoJSON(), "", "  ")
			if err != nil {
				return failed, fmt.Errorf("encode geojson: %w", err)
			}
			if err := os.WriteFile(name, data, 0o644); err != nil {
				return failed, fmt.Errorf("write geojson: %w", err)
			}
		}
	}
	return failed, nil
}
