package dxhost

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/esimov/dxhost/snapshot"
	"github.com/esimov/dxhost/utils"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/slices"
)

// Window size limits accepted by Validate.
const (
	MinWidth  = 200
	MinHeight = 150
	MaxWidth  = 7680
	MaxHeight = 4320
)

// Config holds the settings of an App. It is read from a TOML file and
// then overridden by the command line flags.
type Config struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	// Debug enables the graphics debug layer, per frame diagnostics and the
	// run statistics printed at exit.
	Debug      bool       `toml:"debug"`
	ClearColor [4]float32 `toml:"clear_color"`
	// ShaderDir is resolved relative to the executable when not absolute.
	ShaderDir      string  `toml:"shader_dir"`
	SnapshotDir    string  `toml:"snapshot_dir"`
	SnapshotFormat string  `toml:"snapshot_format"`
	SnapshotScale  float64 `toml:"snapshot_scale"`
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		Title:          "Example App",
		Width:          800,
		Height:         600,
		Debug:          true,
		ShaderDir:      "shaders",
		SnapshotDir:    "snapshots",
		SnapshotFormat: ".png",
		SnapshotScale:  1,
	}
}

// LoadConfig decodes the TOML file at path over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	if err := DecodeConfig(f, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig decodes TOML from r into cfg. Keys missing from the input
// keep their current value; unknown keys are an error.
func DecodeConfig(r io.Reader, cfg *Config) error {
	return toml.NewDecoder(r).DisallowUnknownFields().Decode(cfg)
}

// Validate clamps the numeric settings to their ranges and rejects the
// values that cannot be fixed.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("the window title cannot be empty")
	}
	c.Width = utils.Clamp(c.Width, MinWidth, MaxWidth)
	c.Height = utils.Clamp(c.Height, MinHeight, MaxHeight)
	for i, v := range c.ClearColor {
		c.ClearColor[i] = utils.Clamp(v, 0, 1)
	}
	if c.SnapshotScale <= 0 {
		c.SnapshotScale = 1
	}
	c.SnapshotScale = utils.Clamp(c.SnapshotScale, 0.05, 4)

	c.SnapshotFormat = strings.ToLower(c.SnapshotFormat)
	if c.SnapshotFormat == "" {
		// Same default as snapshot.Encode.
		c.SnapshotFormat = ".jpg"
	}
	if !strings.HasPrefix(c.SnapshotFormat, ".") {
		c.SnapshotFormat = "." + c.SnapshotFormat
	}
	if !slices.Contains(snapshot.Extensions, c.SnapshotFormat) {
		return fmt.Errorf("%w: %q", snapshot.ErrUnsupportedFormat, c.SnapshotFormat)
	}
	return nil
}
