package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	path := writeFile(t, "config.yaml", `
dimensions: [lng, lat]
metric: haversine
neighbors: 3
radius: 1000
log_level: debug
`)
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"lng", "lat"}, cfg.Dimensions)
	assert.Equal(t, "haversine", cfg.Metric)
	assert.Equal(t, uint(3), cfg.Neighbors)
	assert.Equal(t, 1000.0, cfg.Radius)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "gob", cfg.Format)
	assert.NoError(t, cfg.validate())

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = loadConfig(writeFile(t, "broken.yaml", "neighbors: [1"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "metric", modify: func(cfg *Config) { cfg.Metric = "cosine" }},
		{name: "format", modify: func(cfg *Config) { cfg.Format = "xml" }},
		{name: "neighbors", modify: func(cfg *Config) { cfg.Neighbors = 0 }},
		{name: "radius", modify: func(cfg *Config) { cfg.Radius = -1 }},
		{name: "threshold", modify: func(cfg *Config) { cfg.RebuildThreshold = 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(&cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestConfigFromContextPrefersFlags(t *testing.T) {
	path := writeFile(t, "config.yaml", "metric: manhattan\nneighbors: 4\nformat: json\n")

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range flags(commonFlags(), searchFlags()) {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse([]string{"--config", path, "--neighbors", "2"}))

	cfg, err := configFromContext(cli.NewContext(cli.NewApp(), set, nil))
	require.NoError(t, err)
	assert.Equal(t, "manhattan", cfg.Metric)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, uint(2), cfg.Neighbors)
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"text", "json", ""} {
		_, err := NewLogger(os.Stderr, format, "warn")
		assert.NoError(t, err, format)
	}

	_, err := NewLogger(os.Stderr, "xml", "info")
	assert.Error(t, err)
	_, err = NewLogger(os.Stderr, "text", "loud")
	assert.Error(t, err)
}
