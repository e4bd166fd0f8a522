package bench

import (
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/benoitkugler/drawbench/canvas"
)

// ErrEncode is returned (wrapped) when the frame can't be saved.
var ErrEncode = errors.New("bench: saving frame")

// Encode writes a PNG snapshot of s to filename, replacing any
// existing file. The data is written to a temporary file in the
// same directory, then renamed, so that filename is never partial.
func Encode(s *canvas.Surface, filename string) (err error) {
	img := s.Snapshot()

	tmp, err := os.CreateTemp(filepath.Dir(filename), ".drawbench-*.png")
	if err != nil {
		return fmt.Errorf("%w: %s", ErrEncode, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = png.Encode(tmp, img); err != nil {
		return fmt.Errorf("%w: encoding: %s", ErrEncode, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %s", ErrEncode, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s", ErrEncode, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("%w: %s", ErrEncode, err)
	}
	if err = os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("%w: %s", ErrEncode, err)
	}
	return nil
}
