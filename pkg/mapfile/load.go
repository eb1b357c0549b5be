package mapfile

import (
	"fmt"
	"path/filepath"
	"strings"

	"planar_router/pkg/graph"
)

// Formats understood by Load.
const (
	FormatText   = "text"
	FormatBinary = "binary"
)

// Load reads map input from path in the given format. An empty format is
// inferred from the extension: ".bin" is binary, anything else text.
func Load(path, format string) (*graph.Input, error) {
	if format == "" {
		format = FormatText
		if strings.EqualFold(filepath.Ext(path), ".bin") {
			format = FormatBinary
		}
	}

	switch format {
	case FormatText:
		return ParseFile(path)
	case FormatBinary:
		return graph.ReadBinary(path)
	default:
		return nil, fmt.Errorf("unknown map format %q", format)
	}
}

// LoadGraph loads map input and builds the routing graph from it.
func LoadGraph(path, format string) (*graph.Graph, error) {
	in, err := Load(path, format)
	if err != nil {
		return nil, err
	}
	g, err := graph.Build(in)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", path, err)
	}
	return g, nil
}
