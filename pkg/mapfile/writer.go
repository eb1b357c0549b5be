package mapfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"planar_router/pkg/graph"
)

// Write emits in in the text map format. The output parses back to an equal Input.
func Write(w io.Writer, in *graph.Input) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(bw, "NODES:"); err != nil {
		return err
	}
	for i, p := range in.Points {
		if _, err := fmt.Fprintf(bw, "%d %s %s\n", i, formatFloat(p[0]), formatFloat(p[1])); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(bw, "EDGES:"); err != nil {
		return err
	}
	for _, c := range in.Connections {
		if _, err := fmt.Fprintf(bw, "%d %d\n", c.From, c.To); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes in to path, replacing the file atomically.
func WriteFile(path string, in *graph.Input) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	if err := Write(f, in); err != nil {
		return fmt.Errorf("write map: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// formatFloat uses the shortest representation that round-trips exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
