package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"planar_router/pkg/mapfile"
	"planar_router/pkg/routing"
)

const testMap = `NODES:
0 0 0
1 1 0
2 1 1
3 9 9
EDGES:
0 1
1 2
0 2
`

func TestQueryListSet(t *testing.T) {
	var q queryList
	require.NoError(t, q.Set("0:2"))
	require.NoError(t, q.Set("5:1"))
	assert.Equal(t, queryList{{Start: 0, Goal: 2}, {Start: 5, Goal: 1}}, q)
	assert.Equal(t, "0:2,5:1", q.String())

	assert.Error(t, q.Set("3"))
	assert.Error(t, q.Set("a:1"))
	assert.Error(t, q.Set("1:-2"))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.txt")
	require.NoError(t, os.WriteFile(path, []byte(testMap), 0o644))
	geoDir := filepath.Join(dir, "out")

	var out bytes.Buffer
	queries := []routing.Query{{Start: 0, Goal: 2}, {Start: 0, Goal: 3}}
	failed, err := run(context.Background(), &out, path, mapfile.FormatText, queries, 2, geoDir, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	want := "" +
		"Route 0 -> 2\n" +
		"Cost: 1.41\n" +
		"Node |      Go      \n" +
		"====================\n" +
		"  0  |Straight\n" +
		"  2  |Straight\n" +
		"\n" +
		"Route 0 -> 3\n"
	assert.Contains(t, out.String(), want)
	assert.Contains(t, out.String(), "no route: goal not reachable")

	_, err = os.Stat(filepath.Join(geoDir, "route_0_2.geojson"))
	assert.NoError(t, err)
}

func TestRunMissingMap(t *testing.T) {
	_, err := run(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), "nope.txt"),
		mapfile.FormatText, []routing.Query{{Start: 0, Goal: 1}}, 1, "", zap.NewNop())
	assert.Error(t, err)
}
