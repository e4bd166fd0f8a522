package bench

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/benoitkugler/drawbench/canvas"
	"github.com/benoitkugler/drawbench/svgdoc"
	"github.com/benoitkugler/drawbench/svgpath"
	"github.com/benoitkugler/drawbench/text"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// RenderWarning is an error absorbed by a stage: the
// element is missing from the frame but the run goes on.
type RenderWarning struct {
	Stage Stage
	Err   error
}

func (w *RenderWarning) Error() string { return fmt.Sprintf("%s stage: %s", w.Stage, w.Err) }

func (w *RenderWarning) Unwrap() error { return w.Err }

// Each stage draws in its own scope, so that the transforms
// it applies don't leak into the next stages.

func drawPath(c *canvas.Canvas, data string) error {
	defer c.Scope().Exit()
	c.Translate(12, 12)
	c.Scale(0.45, 0.45)

	path, err := svgpath.Parse(data)
	if err != nil {
		return err
	}
	c.FillPath(path, canvas.Paint{Color: canvas.Black, AntiAlias: true})
	return nil
}

func drawImage(c *canvas.Canvas, filename string) error {
	defer c.Scope().Exit()
	c.Translate(250, 0)
	c.Scale(0.05, 0.05)

	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", filename, err)
	}
	bounds := img.Bounds()
	rect := canvas.RectFromImage(bounds)
	c.DrawImageRect(img, bounds, rect,
		canvas.Sampling{Filter: canvas.FilterLinear, Mipmap: canvas.MipmapLinear},
		canvas.Paint{AntiAlias: true})
	return nil
}

// drawText draws the paragraph even if the font can't be
// registered, using the fallback font. The registration error
// is still returned.
func drawText(c *canvas.Canvas, filename string) error {
	defer c.Scope().Exit()

	fonts := text.NewFontCollection()
	data, err := os.ReadFile(filename)
	if err == nil {
		err = fonts.RegisterTypeface(data, FontFamily)
	}

	base := text.Style{Family: FontFamily, Size: TextSize, Color: canvas.Black}
	paragraph := text.NewParagraph(fonts, base, LoremRuns())
	paragraph.Layout(TextWidth)
	paragraph.Paint(c, 25, 275)
	return err
}

func drawSVG(c *canvas.Canvas, filename string) error {
	defer c.Scope().Exit()
	c.Translate(350, 275)
	c.Scale(0.22, 0.22)

	doc, err := svgdoc.Open(filename, svgdoc.Options{
		ErrorMode: svgdoc.WarnErrorMode,
		Logger:    Logger(),
	})
	if err != nil {
		return err
	}
	c.DrawDocument(doc, 1)
	return nil
}
