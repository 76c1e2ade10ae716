package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadBasicRouting(t *testing.T) {
	path := writeConfig(t, `
listen_address: "0.0.0.0:8000"
routes:
  - name: index
    match_path: /index
    rewrite_path: /index-proxied
    upstreams:
      - { host: localhost, port: 5000 }
  - name: home
    match_path: /home
    rewrite_path: /home-proxied
    upstreams:
      - { host: localhost, port: 5001 }
      - { host: localhost, port: 5002 }
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.ListenAddress)
	assert.Equal(t, "/metrics", cfg.MetricsPath)
	require.Len(t, cfg.Routes, 2)
	assert.Equal(t, "index", cfg.Routes[0].Name)
	assert.Equal(t, "http", cfg.Routes[0].Upstreams[0].Scheme)
	require.Len(t, cfg.Routes[1].Upstreams, 2)
}

func TestLoadMetricsPathOverride(t *testing.T) {
	path := writeConfig(t, `
listen_address: "0.0.0.0:8000"
metrics_path: "/stats"
routes:
  - name: ROOT
    match_path: /
    upstreams:
      - { host: localhost, port: 5000 }
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/stats", cfg.MetricsPath)
}

func TestLoadRejectsMissingListenAddress(t *testing.T) {
	path := writeConfig(t, `
routes:
  - name: ROOT
    match_path: /
    upstreams:
      - { host: localhost, port: 5000 }
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsEmptyUpstreams(t *testing.T) {
	path := writeConfig(t, `
listen_address: "0.0.0.0:8000"
routes:
  - name: ROOT
    match_path: /
    upstreams: []
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsDuplicateRouteNames(t *testing.T) {
	path := writeConfig(t, `
listen_address: "0.0.0.0:8000"
routes:
  - name: ROOT
    match_path: /a
    upstreams:
      - { host: localhost, port: 5000 }
  - name: ROOT
    match_path: /b
    upstreams:
      - { host: localhost, port: 5001 }
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidMetricNameComponent(t *testing.T) {
	path := writeConfig(t, `
listen_address: "0.0.0.0:8000"
routes:
  - name: "not valid!"
    match_path: /a
    upstreams:
      - { host: localhost, port: 5000 }
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
