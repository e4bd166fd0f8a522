// Package bench implements the drawing benchmark: it composes a frame
// made of a filled path, a down-scaled bitmap, a styled paragraph and an
// SVG document, then saves it as a PNG file.
package bench

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default values of the configuration.
const (
	DefaultSize   = 512
	DefaultOutput = "output-rust.png"
)

// maxSurfaceSide is the side of the largest square surface
// fitting in canvas.MaxSurfaceBytes.
const maxSurfaceSide = 1 << 14

// ErrInvalidConfig is returned (wrapped) by [Config.Validate].
var ErrInvalidConfig = errors.New("bench: invalid configuration")

// Stage identifies one of the drawing stages.
type Stage uint8

const (
	StagePath Stage = iota
	StageRaster
	StageText
	StageSVG
)

// Stages lists the drawing stages, in drawing order.
var Stages = [...]Stage{StagePath, StageRaster, StageText, StageSVG}

func (s Stage) String() string {
	switch s {
	case StagePath:
		return "path"
	case StageRaster:
		return "raster"
	case StageText:
		return "text"
	case StageSVG:
		return "svg"
	default:
		return fmt.Sprintf("<stage %d>", s)
	}
}

// Config is the configuration of a benchmark run.
// It is built once and passed by value.
type Config struct {
	Dir      string `toml:"dir"`       // assets directory, also receiving the output
	Loop     int    `toml:"loop"`      // number of runs
	Scale    int    `toml:"scale"`     // surface scale factor
	Size     int    `toml:"size"`      // base surface size, before scaling
	PathFile string `toml:"path_file"` // optional path data file, relative to Dir
	Out      string `toml:"out"`       // output file name, relative to Dir

	Path   bool `toml:"path"`
	Raster bool `toml:"raster"`
	Text   bool `toml:"text"`
	SVG    bool `toml:"svg"`
	Save   bool `toml:"save"`

	Verbose bool `toml:"verbose"`
}

// DefaultConfig returns the configuration used when nothing is specified.
// Note that no stage is enabled: see [Config.Normalize].
func DefaultConfig() Config {
	return Config{
		Loop:  1,
		Scale: 1,
		Size:  DefaultSize,
		Out:   DefaultOutput,
	}
}

// LoadConfig reads a TOML document on top of base.
// Keys missing in the document keep the value of base,
// unknown keys are rejected.
func LoadConfig(r io.Reader, base Config) (Config, error) {
	cfg := base
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return base, fmt.Errorf("%w: line %d, column %d: %s", ErrInvalidConfig, row, col, derr)
		}
		return base, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// LoadConfigFile is like [LoadConfig], reading the given file.
func LoadConfigFile(filename string, base Config) (Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return base, err
	}
	defer f.Close()
	cfg, err := LoadConfig(f, base)
	if err != nil {
		return base, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

// Normalize enables every stage and the output when none is enabled.
func (c Config) Normalize() Config {
	if !(c.Path || c.Raster || c.Text || c.SVG || c.Save) {
		c.Path, c.Raster, c.Text, c.SVG, c.Save = true, true, true, true, true
	}
	return c
}

// Validate checks the numeric fields and the presence of Dir.
// The scaled surface must be at most maxSurfaceSide pixels wide.
func (c Config) Validate() error {
	switch {
	case c.Dir == "":
		return fmt.Errorf("%w: missing directory", ErrInvalidConfig)
	case c.Loop < 0:
		return fmt.Errorf("%w: negative loop count %d", ErrInvalidConfig, c.Loop)
	case c.Scale < 1:
		return fmt.Errorf("%w: scale must be positive, got %d", ErrInvalidConfig, c.Scale)
	case c.Size < 1:
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidConfig, c.Size)
	case c.Scale > maxSurfaceSide/c.Size:
		// also catches products overflowing int
		return fmt.Errorf("%w: surface of %d pixels scaled by %d is larger than %d pixels",
			ErrInvalidConfig, c.Size, c.Scale, maxSurfaceSide)
	case c.Out == "":
		return fmt.Errorf("%w: missing output name", ErrInvalidConfig)
	}
	return nil
}

// Enabled returns true if the stage is drawn.
func (c Config) Enabled(s Stage) bool {
	switch s {
	case StagePath:
		return c.Path
	case StageRaster:
		return c.Raster
	case StageText:
		return c.Text
	case StageSVG:
		return c.SVG
	}
	return false
}

// SurfaceSize returns the side of the (square) surface, in pixels.
func (c Config) SurfaceSize() int { return c.Size * c.Scale }

// OutputPath returns the path of the PNG file.
func (c Config) OutputPath() string { return filepath.Join(c.Dir, c.Out) }
