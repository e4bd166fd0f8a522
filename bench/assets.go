package bench

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Asset file names, looked up in the configured directory.
const (
	ImageFile = "mars.jpg"
	FontFile  = "Adigiana_Ultra.ttf"
	SVGFile   = "pinocchio.svg"

	// FontFamily is the family the font file is registered under.
	FontFamily = "Adigiana"
)

// ErrMissingAsset is returned (wrapped) when a file required
// by an enabled stage does not exist.
var ErrMissingAsset = errors.New("bench: missing asset")

// Assets holds the inputs of the enabled stages.
// Paths are empty for disabled stages.
type Assets struct {
	PathData  string // path description; see [DefaultPathData]
	ImagePath string
	FontPath  string
	SVGPath   string
}

// CheckAssets resolves the files needed by the enabled stages of cfg,
// and loads the path data file, if any.
// It fails with [ErrMissingAsset] before anything is drawn.
func CheckAssets(cfg Config) (Assets, error) {
	assets := Assets{PathData: DefaultPathData}
	var err error
	if cfg.Path && cfg.PathFile != "" {
		name := filepath.Join(cfg.Dir, cfg.PathFile)
		if err = checkFile(name); err != nil {
			return Assets{}, err
		}
		data, err := os.ReadFile(name)
		if err != nil {
			return Assets{}, fmt.Errorf("%w: %s", ErrMissingAsset, err)
		}
		assets.PathData = string(data)
	}
	if cfg.Raster {
		assets.ImagePath = filepath.Join(cfg.Dir, ImageFile)
		if err = checkFile(assets.ImagePath); err != nil {
			return Assets{}, err
		}
	}
	if cfg.Text {
		assets.FontPath = filepath.Join(cfg.Dir, FontFile)
		if err = checkFile(assets.FontPath); err != nil {
			return Assets{}, err
		}
	}
	if cfg.SVG {
		assets.SVGPath = filepath.Join(cfg.Dir, SVGFile)
		if err = checkFile(assets.SVGPath); err != nil {
			return Assets{}, err
		}
	}
	return assets, nil
}

func checkFile(name string) error {
	info, err := os.Stat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: file doesn't exist: %s", ErrMissingAsset, name)
	} else if err != nil {
		return fmt.Errorf("%w: %s", ErrMissingAsset, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrMissingAsset, name)
	}
	return nil
}
