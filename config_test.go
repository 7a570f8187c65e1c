package dxhost

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/esimov/dxhost/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Decode(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	err := DecodeConfig(strings.NewReader(`
title = "Cubes"
width = 1024
clear_color = [1.0, 0.5, 0.0, 1.0]
snapshot_format = "jpg"
`), &cfg)
	require.NoError(t, err)
	assert.Equal("Cubes", cfg.Title)
	assert.Equal(1024, cfg.Width)
	assert.Equal(600, cfg.Height)
	assert.Equal([4]float32{1, 0.5, 0, 1}, cfg.ClearColor)
	assert.True(cfg.Debug)

	require.NoError(t, cfg.Validate())
	assert.Equal(".jpg", cfg.SnapshotFormat)
}

func TestConfig_UnknownKey(t *testing.T) {
	cfg := DefaultConfig()
	err := DecodeConfig(strings.NewReader(`fullscreen = true`), &cfg)
	assert.Error(t, err)
}

func TestConfig_Load(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(err, fs.ErrNotExist)

	path := filepath.Join(dir, "dxhost.toml")
	require.NoError(t, os.WriteFile(path, []byte("debug = false\nheight = 480\n"), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(cfg.Debug)
	assert.Equal(480, cfg.Height)
	assert.Equal("Example App", cfg.Title)

	require.NoError(t, os.WriteFile(path, []byte("height = \"tall\"\n"), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorContains(err, path)
}

func TestConfig_Validate(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	cfg.Width = 10
	cfg.Height = 100000
	cfg.ClearColor = [4]float32{-1, 0.25, 2, 1}
	cfg.SnapshotScale = 0
	cfg.SnapshotFormat = "PNG"
	require.NoError(t, cfg.Validate())
	assert.Equal(MinWidth, cfg.Width)
	assert.Equal(MaxHeight, cfg.Height)
	assert.Equal([4]float32{0, 0.25, 1, 1}, cfg.ClearColor)
	assert.Equal(1.0, cfg.SnapshotScale)
	assert.Equal(".png", cfg.SnapshotFormat)

	cfg.SnapshotScale = 10
	require.NoError(t, cfg.Validate())
	assert.Equal(4.0, cfg.SnapshotScale)

	cfg.SnapshotFormat = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(".jpg", cfg.SnapshotFormat)

	cfg.SnapshotFormat = ".gif"
	assert.ErrorIs(cfg.Validate(), snapshot.ErrUnsupportedFormat)

	cfg = DefaultConfig()
	cfg.Title = "  "
	assert.Error(cfg.Validate())
}
