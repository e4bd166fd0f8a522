package bench

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/drawbench/canvas"
	"github.com/benoitkugler/drawbench/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="400" height="400">
	<title>test</title>
	<rect x="10" y="10" width="80" height="80" fill="#3050c0" stroke="black" stroke-width="4"/>
	<circle cx="50" cy="50" r="20" fill="orange"/>
</svg>`

// newAssetsDir writes valid assets in a temporary directory.
func newAssetsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	for y := 0; y < 600; y++ {
		for x := 0; x < 800; x++ {
			img.Set(x, y, color.RGBA{uint8(x / 4), 60, uint8(y / 3), 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, ImageFile))
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, img, nil))
	require.NoError(t, f.Close())

	writeFile(t, dir, FontFile, goregular.TTF)
	writeFile(t, dir, SVGFile, []byte(testSVG))
	return dir
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func readPNG(t *testing.T, filename string) image.Image {
	t.Helper()
	f, err := os.Open(filename)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func testConfig(dir string) Config {
	cfg := DefaultConfig()
	cfg.Dir = dir
	return cfg
}

func assertSameImage(t *testing.T, want, got image.Image) {
	t.Helper()
	require.Equal(t, want.Bounds(), got.Bounds())
	b := want.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if want.At(x, y) != got.At(x, y) {
				t.Fatalf("pixel (%d, %d) differs: %v != %v", x, y, want.At(x, y), got.At(x, y))
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	cfg := DefaultConfig().Normalize()
	assert.True(t, cfg.Path && cfg.Raster && cfg.Text && cfg.SVG && cfg.Save)

	cfg = DefaultConfig()
	cfg.Text = true
	cfg = cfg.Normalize()
	assert.True(t, cfg.Text)
	assert.False(t, cfg.Path || cfg.Raster || cfg.SVG || cfg.Save)

	cfg = DefaultConfig()
	cfg.Save = true
	assert.False(t, cfg.Normalize().Enabled(StagePath))
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, DefaultConfig().Validate(), ErrInvalidConfig)

	cfg := testConfig("dir")
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 512, cfg.SurfaceSize())
	assert.Equal(t, filepath.Join("dir", "output-rust.png"), cfg.OutputPath())

	largest := cfg
	largest.Scale = 32
	assert.NoError(t, largest.Validate())
	side := int64(largest.SurfaceSize())
	assert.LessOrEqual(t, side*side*4, int64(canvas.MaxSurfaceBytes))

	for _, mutate := range []func(*Config){
		func(c *Config) { c.Scale = 0 },
		func(c *Config) { c.Size = -3 },
		func(c *Config) { c.Loop = -1 },
		func(c *Config) { c.Out = "" },
		func(c *Config) { c.Scale = 1<<55 + 1 }, // Size*Scale wraps to 512
		func(c *Config) { c.Scale = 33 },
		func(c *Config) { c.Size = 1 << 20 },
	} {
		c := cfg
		mutate(&c)
		assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
	}
}

func TestLoadConfig(t *testing.T) {
	base := testConfig("flags")
	cfg, err := LoadConfig(strings.NewReader(`
dir = "assets"
scale = 2
path_file = "globe.txt"
svg = true
`), base)
	require.NoError(t, err)
	assert.Equal(t, "assets", cfg.Dir)
	assert.Equal(t, 2, cfg.Scale)
	assert.Equal(t, "globe.txt", cfg.PathFile)
	assert.True(t, cfg.SVG)
	assert.Equal(t, 1, cfg.Loop) // kept from base
	assert.Equal(t, DefaultOutput, cfg.Out)

	_, err = LoadConfig(strings.NewReader(`colour = "red"`), base)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = LoadConfig(strings.NewReader(`scale = "big"`), base)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	dir := t.TempDir()
	writeFile(t, dir, "bench.toml", []byte("loop = 4\n"))
	cfg, err = LoadConfigFile(filepath.Join(dir, "bench.toml"), base)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Loop)
	_, err = LoadConfigFile(filepath.Join(dir, "missing.toml"), base)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoremRuns(t *testing.T) {
	runs := LoremRuns()
	require.Len(t, runs, 6)
	var sb strings.Builder
	for _, run := range runs {
		sb.WriteString(run.Text)
		assert.Empty(t, run.Style.Family)
		assert.Zero(t, run.Style.Size)
	}
	assert.Equal(t, LoremText, sb.String())
	assert.True(t, strings.HasPrefix(LoremText, "Lorem ipsum dolor sit amet"))
	assert.True(t, strings.HasSuffix(LoremText, "id est laborum.\n"))

	p := text.NewParagraph(text.NewFontCollection(), text.Style{Size: TextSize}, runs)
	assert.Equal(t, LoremText, p.Text())
	p.Layout(TextWidth)
	assert.Greater(t, p.LineCount(), 3)
	assert.LessOrEqual(t, p.MaxLineWidth(), float64(TextWidth))
}

func TestCheckAssets(t *testing.T) {
	dir := newAssetsDir(t)
	cfg := testConfig(dir).Normalize()
	assets, err := CheckAssets(cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultPathData, assets.PathData)
	assert.Equal(t, filepath.Join(dir, ImageFile), assets.ImagePath)

	for _, name := range []string{ImageFile, FontFile, SVGFile} {
		empty := t.TempDir()
		for _, other := range []string{ImageFile, FontFile, SVGFile} {
			if other != name {
				writeFile(t, empty, other, []byte("x"))
			}
		}
		_, err := CheckAssets(testConfig(empty).Normalize())
		assert.ErrorIs(t, err, ErrMissingAsset, name)
		assert.Contains(t, err.Error(), name)
	}

	// disabled stages don't need their files
	cfg = testConfig(t.TempDir())
	cfg.Path, cfg.Save = true, true
	_, err = CheckAssets(cfg)
	assert.NoError(t, err)

	cfg.PathFile = "missing.txt"
	_, err = CheckAssets(cfg)
	assert.ErrorIs(t, err, ErrMissingAsset)
}

func TestRunAllStages(t *testing.T) {
	dir := newAssetsDir(t)
	cfg := testConfig(dir)
	cfg.Scale = 2
	cfg = cfg.Normalize()

	report, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, report.Warnings())
	require.Len(t, report.Stages, 4)
	for i, st := range report.Stages {
		assert.Equal(t, Stages[i], st.Stage)
	}
	assert.Equal(t, cfg.OutputPath(), report.Output)

	img := readPNG(t, cfg.OutputPath())
	assert.Equal(t, image.Rect(0, 0, 1024, 1024), img.Bounds())

	// the globe is black, in the top left corner
	_, g, _, _ := img.At(2*(12+5), 2*(12+115)).RGBA()
	assert.Less(t, g, uint32(0x1000))
	// the SVG rectangle: (350 + 0.22*4*50) * 2
	r, g, b, _ := img.At(2*(350+44), 2*(275+20)).RGBA()
	assert.Greater(t, b, r)
	assert.Greater(t, b, g)
}

func TestSaveOnlyIsBlank(t *testing.T) {
	dir := t.TempDir() // no asset needed
	cfg := testConfig(dir)
	cfg.Save = true

	report, err := Run(context.Background(), cfg.Normalize())
	require.NoError(t, err)
	assert.Empty(t, report.Stages)

	img := readPNG(t, cfg.OutputPath())
	b := img.Bounds()
	assert.Equal(t, 512, b.Dx())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			require.Equal(t, [4]uint32{0xffff, 0xffff, 0xffff, 0xffff}, [4]uint32{r, g, bl, a})
		}
	}
}

func TestLogger(t *testing.T) {
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))

	var logs bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	cfg := testConfig(t.TempDir())
	cfg.Save = true
	_, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "frame saved")
	assert.Contains(t, logs.String(), "width=512")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}

func TestCorruptAssetsAreSkipped(t *testing.T) {
	for _, tc := range []struct {
		file  string
		stage Stage
	}{
		{ImageFile, StageRaster},
		{SVGFile, StageSVG},
	} {
		dir := newAssetsDir(t)
		writeFile(t, dir, tc.file, []byte("corrupted content"))

		cfg := testConfig(dir)
		cfg.Path, cfg.Raster, cfg.SVG, cfg.Save = true, true, true, true
		report, err := Run(context.Background(), cfg)
		require.NoError(t, err)
		warnings := report.Warnings()
		require.Len(t, warnings, 1)
		assert.Equal(t, tc.stage, warnings[0].Stage)
		withStage := readPNG(t, cfg.OutputPath())

		switch tc.stage {
		case StageRaster:
			cfg.Raster = false
		case StageSVG:
			cfg.SVG = false
		}
		_, err = Run(context.Background(), cfg)
		require.NoError(t, err)
		assertSameImage(t, readPNG(t, cfg.OutputPath()), withStage)
	}
}

func TestInvalidPathData(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.txt", []byte("M 10 10 L garbage"))
	cfg := testConfig(dir)
	cfg.Path, cfg.Save, cfg.PathFile = true, true, "bad.txt"

	report, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, report.Warnings(), 1)
	var w *RenderWarning
	require.True(t, errors.As(error(report.Warnings()[0]), &w))
	assert.Equal(t, StagePath, w.Stage)
	assert.Contains(t, w.Error(), "path stage")
}

func TestCorruptFontFallsBack(t *testing.T) {
	dir := newAssetsDir(t)
	writeFile(t, dir, FontFile, []byte("not a font"))
	cfg := testConfig(dir)
	cfg.Text, cfg.Save = true, true

	report, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	warnings := report.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, StageText, warnings[0].Stage)
	assert.ErrorIs(t, warnings[0], text.ErrInvalidFont)

	// the paragraph is still drawn with the fallback font
	img := readPNG(t, cfg.OutputPath())
	painted := 0
	for y := 275; y < 400; y++ {
		for x := 25; x < 250; x++ {
			if r, g, b, _ := img.At(x, y).RGBA(); r != 0xffff || g != 0xffff || b != 0xffff {
				painted++
			}
		}
	}
	assert.Greater(t, painted, 500)
}

func TestPathFileMatchesEmbeddedData(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "globe.txt", []byte(DefaultPathData))
	cfg := testConfig(dir)
	cfg.Path, cfg.Save = true, true

	cfg.Out = "embedded.png"
	_, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Out, cfg.PathFile = "file.png", "globe.txt"
	_, err = Run(context.Background(), cfg)
	require.NoError(t, err)

	assertSameImage(t, readPNG(t, filepath.Join(dir, "embedded.png")), readPNG(t, filepath.Join(dir, "file.png")))
}

func TestMissingAssetWritesNothing(t *testing.T) {
	dir := newAssetsDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, SVGFile)))
	cfg := testConfig(dir).Normalize()

	_, err := Run(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrMissingAsset)
	_, err = os.Stat(cfg.OutputPath())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRunLoop(t *testing.T) {
	dir := newAssetsDir(t)
	cfg := testConfig(dir)
	cfg.Loop = 3
	cfg.Path, cfg.Save = true, true

	reports, err := RunLoop(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, reports, 3)
	readPNG(t, cfg.OutputPath())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".drawbench-"), "leftover temporary file %s", e.Name())
	}

	cfg.Loop = 0
	reports, err = RunLoop(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestCancellation(t *testing.T) {
	dir := newAssetsDir(t)
	cfg := testConfig(dir).Normalize()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = os.Stat(cfg.OutputPath())
	assert.True(t, errors.Is(err, os.ErrNotExist))

	reports, err := RunLoop(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
}

func TestEncodeFailure(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Save = true
	cfg.Out = filepath.Join("missing", "out.png")

	_, err := Run(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrEncode)
}
