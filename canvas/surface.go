// Package canvas implements an in-memory raster drawing surface,
// with a transform stack, anti-aliased path filling (by wrapping rasterx),
// image blitting and a rasterizer for SVG documents.
package canvas

import (
	"errors"
	"fmt"
	"image"
)

// MaxSurfaceBytes is the largest pixel buffer NewSurface accepts.
const MaxSurfaceBytes = 1 << 30

// ErrSurfaceSize is returned when the requested surface is empty or too large.
var ErrSurfaceSize = errors.New("canvas: invalid surface size")

// Surface owns a premultiplied RGBA pixel buffer, and the Canvas
// drawing into it.
type Surface struct {
	img    *image.RGBA
	canvas *Canvas
}

// NewSurface allocates a transparent surface of the given size.
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSurfaceSize, width, height)
	}
	if int64(width)*int64(height)*4 > MaxSurfaceBytes {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d bytes", ErrSurfaceSize, width, height, MaxSurfaceBytes)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	s := &Surface{img: img}
	s.canvas = newCanvas(img)
	return s, nil
}

// Canvas returns the drawing context bound to the surface.
// The same Canvas is returned for the lifetime of the surface.
func (s *Surface) Canvas() *Canvas { return s.canvas }

// Width returns the width in pixels.
func (s *Surface) Width() int { return s.img.Rect.Dx() }

// Height returns the height in pixels.
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// Bounds returns the pixel rectangle of the surface.
func (s *Surface) Bounds() image.Rectangle { return s.img.Rect }

// Snapshot returns a copy of the current pixels, which is not
// affected by further drawing.
func (s *Surface) Snapshot() *image.RGBA {
	out := &image.RGBA{
		Pix:    append([]uint8(nil), s.img.Pix...),
		Stride: s.img.Stride,
		Rect:   s.img.Rect,
	}
	return out
}
