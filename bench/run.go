package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/benoitkugler/drawbench/canvas"
)

// StageResult is the outcome of one drawing stage.
type StageResult struct {
	Stage    Stage
	Duration time.Duration
	Warning  *RenderWarning // nil on success
}

// Report describes a benchmark run.
type Report struct {
	Stages   []StageResult // enabled stages, in drawing order
	Width    int
	Height   int
	Output   string // empty if the frame was not saved
	Duration time.Duration
}

// Warnings returns the warnings of the stages, in order.
func (r Report) Warnings() []*RenderWarning {
	var out []*RenderWarning
	for _, st := range r.Stages {
		if st.Warning != nil {
			out = append(out, st.Warning)
		}
	}
	return out
}

// Compose clears the canvas to white, scales it by cfg.Scale and draws
// the enabled stages, in order. Stage failures are recorded in the
// returned report; the only error is the cancellation of ctx, which is
// checked before each stage.
func Compose(ctx context.Context, c *canvas.Canvas, cfg Config, assets Assets) (Report, error) {
	var report Report
	c.Clear(canvas.White)

	defer c.Scope().Exit()
	c.Scale(float64(cfg.Scale), float64(cfg.Scale))

	for _, stage := range Stages {
		if !cfg.Enabled(stage) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		start := time.Now()
		var err error
		switch stage {
		case StagePath:
			err = drawPath(c, assets.PathData)
		case StageRaster:
			err = drawImage(c, assets.ImagePath)
		case StageText:
			err = drawText(c, assets.FontPath)
		case StageSVG:
			err = drawSVG(c, assets.SVGPath)
		}
		res := StageResult{Stage: stage, Duration: time.Since(start)}
		if err != nil {
			res.Warning = &RenderWarning{Stage: stage, Err: err}
			Logger().Debug("stage skipped", "stage", stage, "err", err)
		}
		Logger().Debug("stage done", "stage", stage, "duration", res.Duration)
		report.Stages = append(report.Stages, res)
	}
	return report, nil
}

// Run performs one benchmark run: it checks the assets, allocates
// the surface, composes the frame and saves it if cfg.Save is set.
// cfg is expected to be normalized.
func Run(ctx context.Context, cfg Config) (Report, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	assets, err := CheckAssets(cfg)
	if err != nil {
		return Report{}, err
	}
	size := cfg.SurfaceSize()
	surface, err := canvas.NewSurface(size, size)
	if err != nil {
		return Report{}, err
	}

	report, err := Compose(ctx, surface.Canvas(), cfg, assets)
	report.Width, report.Height = surface.Width(), surface.Height()
	if err != nil {
		return report, err
	}

	if cfg.Save {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out := cfg.OutputPath()
		if err := Encode(surface, out); err != nil {
			return report, err
		}
		report.Output = out
		Logger().Info("frame saved", "file", out, "width", report.Width, "height", report.Height)
	}
	report.Duration = time.Since(start)
	return report, nil
}

// RunLoop performs cfg.Loop independent runs, stopping at the first error.
func RunLoop(ctx context.Context, cfg Config) ([]Report, error) {
	reports := make([]Report, 0, cfg.Loop)
	for i := 0; i < cfg.Loop; i++ {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := Run(ctx, cfg)
		if err != nil {
			return reports, fmt.Errorf("run %d: %w", i+1, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}
