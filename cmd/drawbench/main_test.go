package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/benoitkugler/drawbench/bench"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	var out bytes.Buffer
	cfg, err := parseConfig([]string{"--dir", "assets"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "assets", cfg.Dir)
	assert.Equal(t, 1, cfg.Loop)
	assert.Equal(t, 1, cfg.Scale)
	assert.Equal(t, 512, cfg.Size)
	assert.Equal(t, bench.DefaultOutput, cfg.Out)
	assert.True(t, cfg.Path && cfg.Raster && cfg.Text && cfg.SVG && cfg.Save)

	cfg, err = parseConfig([]string{"--dir", "assets", "--svg", "--scale", "3", "--loop=2"}, &out)
	require.NoError(t, err)
	assert.True(t, cfg.SVG)
	assert.False(t, cfg.Path || cfg.Raster || cfg.Text || cfg.Save)
	assert.Equal(t, 3, cfg.Scale)
	assert.Equal(t, 2, cfg.Loop)
}

func TestParseConfigErrors(t *testing.T) {
	var out bytes.Buffer
	for _, args := range [][]string{
		{},                             // missing dir
		{"--dir", "d", "--scale", "0"}, // invalid scale
		{"--dir", "d", "--scale", "36028797018963969"},
		{"--dir", "d", "--unknown"},
		{"--dir", "d", "extra"},
		{"--dir", "d", "--config", "missing.toml"},
	} {
		_, err := parseConfig(args, &out)
		assert.Error(t, err, "%v", args)
	}
}

func TestConfigFileUnderFlags(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bench.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
dir = "from-file"
scale = 2
loop = 5
text = true
`), 0o644))

	var out bytes.Buffer
	cfg, err := parseConfig([]string{"--config", file, "--scale", "4"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Dir)
	assert.Equal(t, 4, cfg.Scale) // the flag wins
	assert.Equal(t, 5, cfg.Loop)
	assert.True(t, cfg.Text)
	assert.False(t, cfg.Save)
}

func TestRunExitCodes(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), []string{"--loop", "x"}, &stderr))
	assert.Equal(t, 0, run(context.Background(), []string{"-h"}, &stderr))

	dir := t.TempDir()
	stderr.Reset()
	assert.Equal(t, 1, run(context.Background(), []string{"--dir", dir, "--raster"}, &stderr))
	assert.Contains(t, stderr.String(), bench.ImageFile)

	stderr.Reset()
	assert.Equal(t, 0, run(context.Background(), []string{"--dir", dir, "--save", "--size", "64", "--verbose"}, &stderr))
	_, err := os.Stat(filepath.Join(dir, bench.DefaultOutput))
	assert.NoError(t, err)
	assert.Contains(t, stderr.String(), "frame saved")
}
