package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "map.txt", cfg.Graph.Path)
	assert.Equal(t, FormatText, cfg.Graph.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 100.0, cfg.Routing.SnapRadius, 0)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planar.yaml")
	content := `
graph:
  path: /data/city.bin
  format: BINARY
server:
  port: 9000
  request_timeout: 250ms
  cors_origins: ["https://maps.example.com"]
routing:
  snap_radius: 12.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("PLANAR_SERVER_PORT", "9100")
	t.Setenv("PLANAR_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/city.bin", cfg.Graph.Path)
	assert.Equal(t, FormatBinary, cfg.Graph.Format)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"https://maps.example.com"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 12.5, cfg.Routing.SnapRadius, 0)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("PLANAR_GRAPH_FORMAT", "xml")
	t.Setenv("PLANAR_SERVER_PORT", "70000")

	_, err := Load("")
	require.Error(t, err)
	assert.ErrorContains(t, err, "graph.format")
	assert.ErrorContains(t, err, "server.port")
}
