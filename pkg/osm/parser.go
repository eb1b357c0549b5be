// Package osm imports drivable roads from OpenStreetMap PBF extracts into a
// planar map.
package osm

import (
	"context"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"

	"planar_router/pkg/geo"
	"planar_router/pkg/graph"
)

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// isCarAccessible returns true if the way is drivable by car.
func isCarAccessible(tags osm.Tags) bool {
	if !carHighways[tags.Find("highway")] {
		return false
	}

	// Skip area highways (pedestrian plazas).
	if tags.Find("area") == "yes" {
		return false
	}

	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	return tags.Find("motor_vehicle") != "no"
}

// ParseOptions configures the OSM import.
type ParseOptions struct {
	// BBox, when non-zero, keeps only segments with both ends inside.
	// Min/Max hold (lon, lat).
	BBox orb.Bound
	Log  *zap.Logger
}

// Parse reads an OSM PBF file and returns the drivable road network as planar
// map input. Ways become chains of undirected connections; one-way tags are
// ignored. Coordinates are projected to meters around the mean latitude of
// the imported nodes.
//
// The reader is consumed twice (seeks back to start for the second pass),
// so it must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*graph.Input, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	log := opt.Log
	if log == nil {
		log = zap.NewNop()
	}

	// Pass 1: Scan ways to collect referenced node IDs.
	referenced := make(map[osm.NodeID]struct{})
	var ways [][]osm.NodeID

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || len(w.Nodes) < 2 || !isCarAccessible(w.Tags) {
			continue
		}

		ids := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			ids[i] = wn.ID
			referenced[wn.ID] = struct{}{}
		}
		ways = append(ways, ids)
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.Info("pass 1 complete", zap.Int("ways", len(ways)), zap.Int("referenced_nodes", len(referenced)))

	// Pass 2: Scan nodes to collect coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	coords := make(map[osm.NodeID]orb.Point, len(referenced))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referenced[n.ID]; needed {
			coords[n.ID] = n.Point()
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	log.Info("pass 2 complete", zap.Int("coordinates", len(coords)))

	return buildInput(ways, coords, opt.BBox, log), nil
}

// buildInput numbers the nodes of kept segments densely, in order of first
// use, and projects them. coords holds (lon, lat) per OSM node.
func buildInput(ways [][]osm.NodeID, coords map[osm.NodeID]orb.Point, bbox orb.Bound, log *zap.Logger) *graph.Input {
	useBBox := !bbox.IsZero()

	index := make(map[osm.NodeID]uint32)
	var lonLat []orb.Point
	nodeIndex := func(id osm.NodeID) uint32 {
		if i, ok := index[id]; ok {
			return i
		}
		i := uint32(len(lonLat))
		index[id] = i
		lonLat = append(lonLat, coords[id])
		return i
	}

	type pair struct{ a, b uint32 }
	seen := make(map[pair]struct{})

	in := &graph.Input{}
	var missing, outside, duplicate int

	for _, w := range ways {
		for i := 0; i+1 < len(w); i++ {
			fromID, toID := w[i], w[i+1]
			if fromID == toID {
				continue
			}

			from, fromOk := coords[fromID]
			to, toOk := coords[toID]
			if !fromOk || !toOk {
				missing++
				continue
			}

			// Bounding box filter: skip segments with any endpoint outside.
			if useBBox && (!bbox.Contains(from) || !bbox.Contains(to)) {
				outside++
				continue
			}

			a, b := nodeIndex(fromID), nodeIndex(toID)
			key := pair{min(a, b), max(a, b)}
			if _, dup := seen[key]; dup {
				duplicate++
				continue
			}
			seen[key] = struct{}{}
			in.Connections = append(in.Connections, graph.Connection{From: a, To: b})
		}
	}

	if missing > 0 {
		log.Warn("skipped segments with missing node coordinates", zap.Int("count", missing))
	}
	if outside > 0 {
		log.Info("filtered segments outside bounding box", zap.Int("count", outside))
	}
	if duplicate > 0 {
		log.Debug("dropped duplicate segments", zap.Int("count", duplicate))
	}

	in.Points = project(lonLat)

	log.Info("osm import complete",
		zap.Int("nodes", len(in.Points)),
		zap.Int("connections", len(in.Connections)),
	)
	return in
}

// project maps (lon, lat) points to planar meters around their mean latitude.
func project(lonLat []orb.Point) []geo.Point {
	if len(lonLat) == 0 {
		return nil
	}

	var sumLat float64
	for _, p := range lonLat {
		sumLat += p.Lat()
	}
	proj := geo.NewProjection(sumLat / float64(len(lonLat)))

	out := make([]geo.Point, len(lonLat))
	for i, p := range lonLat {
		out[i] = proj.Project(p.Lat(), p.Lon())
	}
	return out
}
