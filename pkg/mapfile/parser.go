// Package mapfile reads and writes the plain-text map format: a header line,
// one "<id> <x> <y>" line per node, then one "<i> <j>" line per connection.
package mapfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"planar_router/pkg/geo"
	"planar_router/pkg/graph"
)

const maxLineBytes = 1 << 20

// Parse reads a text map. The first line is a header and is skipped.
// Coordinate lines follow until the first line that is not one; that line is
// skipped as a section header unless it already parses as a connection.
// Node ids are positional: the id written on a coordinate line is not used.
func Parse(r io.Reader) (*graph.Input, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	in := &graph.Input{}
	lineNo := 0

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return in, nil
	}
	lineNo++

	inNodes := true
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		if inNodes {
			if p, ok := parsePoint(fields); ok {
				if !geo.IsFinite(p) {
					return nil, fmt.Errorf("%w: line %d: coordinates must be finite, got %q",
						graph.ErrMalformedInput, lineNo, line)
				}
				in.Points = append(in.Points, p)
				continue
			}
			inNodes = false
			if _, ok := parseConnection(fields); !ok {
				continue // section header
			}
		}

		c, ok := parseConnection(fields)
		if !ok {
			return nil, fmt.Errorf("%w: line %d: expected \"<i> <j>\", got %q",
				graph.ErrMalformedInput, lineNo, line)
		}
		if int(c.From) >= len(in.Points) || int(c.To) >= len(in.Points) {
			return nil, fmt.Errorf("%w: line %d: connection (%d, %d) references a node outside [0, %d)",
				graph.ErrMalformedInput, lineNo, c.From, c.To, len(in.Points))
		}
		in.Connections = append(in.Connections, c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", lineNo+1, err)
	}

	return in, nil
}

// ParseFile opens path and parses it with Parse.
func ParseFile(path string) (*graph.Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map: %w", err)
	}
	defer f.Close()

	in, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return in, nil
}

func parsePoint(fields []string) (geo.Point, bool) {
	if len(fields) != 3 {
		return geo.Point{}, false
	}
	if _, err := strconv.ParseInt(fields[0], 10, 64); err != nil {
		return geo.Point{}, false
	}
	x, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return geo.Point{}, false
	}
	y, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return geo.Point{}, false
	}
	return geo.NewPoint(x, y), true
}

func parseConnection(fields []string) (graph.Connection, bool) {
	if len(fields) != 2 {
		return graph.Connection{}, false
	}
	from, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return graph.Connection{}, false
	}
	to, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return graph.Connection{}, false
	}
	return graph.Connection{From: uint32(from), To: uint32(to)}, true
}
