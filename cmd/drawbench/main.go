// Command drawbench draws a test frame (a path, an image, a paragraph
// and an SVG document) and saves it as a PNG file, optionally
// several times in a row, to benchmark the rendering stack.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/benoitkugler/drawbench/bench"
)

// errUsage marks command line errors.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run returns the exit status: 0 on success, 1 on failure,
// 2 for invalid arguments.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	cfg, err := parseConfig(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	} else if err != nil {
		fmt.Fprintf(stderr, "drawbench: %s\n", err)
		return 2
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	bench.SetLogger(logger)
	defer bench.SetLogger(nil)

	start := time.Now()
	reports, err := bench.RunLoop(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "drawbench: %s\n", err)
		return 1
	}
	for i, report := range reports {
		for _, w := range report.Warnings() {
			logger.Debug("element skipped", "run", i+1, "stage", w.Stage, "err", w.Err)
		}
	}
	logger.Debug("done", "runs", len(reports), "duration", time.Since(start))
	return 0
}

// setters copy the value of a flag from src to dst.
var setters = map[string]func(dst *bench.Config, src bench.Config){
	"dir":       func(dst *bench.Config, src bench.Config) { dst.Dir = src.Dir },
	"loop":      func(dst *bench.Config, src bench.Config) { dst.Loop = src.Loop },
	"scale":     func(dst *bench.Config, src bench.Config) { dst.Scale = src.Scale },
	"size":      func(dst *bench.Config, src bench.Config) { dst.Size = src.Size },
	"path-file": func(dst *bench.Config, src bench.Config) { dst.PathFile = src.PathFile },
	"out":       func(dst *bench.Config, src bench.Config) { dst.Out = src.Out },
	"path":      func(dst *bench.Config, src bench.Config) { dst.Path = src.Path },
	"raster":    func(dst *bench.Config, src bench.Config) { dst.Raster = src.Raster },
	"text":      func(dst *bench.Config, src bench.Config) { dst.Text = src.Text },
	"svg":       func(dst *bench.Config, src bench.Config) { dst.SVG = src.SVG },
	"save":      func(dst *bench.Config, src bench.Config) { dst.Save = src.Save },
	"verbose":   func(dst *bench.Config, src bench.Config) { dst.Verbose = src.Verbose },
}

// parseConfig builds the configuration from the command line and the
// optional configuration file. Flags given explicitly take precedence
// over the file.
func parseConfig(args []string, output io.Writer) (bench.Config, error) {
	fs := flag.NewFlagSet("drawbench", flag.ContinueOnError)
	fs.SetOutput(output)

	cfg := bench.DefaultConfig()
	var configFile string
	fs.StringVar(&cfg.Dir, "dir", cfg.Dir, "directory with the assets, receiving the output (required)")
	fs.IntVar(&cfg.Loop, "loop", cfg.Loop, "number of runs")
	fs.IntVar(&cfg.Scale, "scale", cfg.Scale, "scale factor of the surface")
	fs.IntVar(&cfg.Size, "size", cfg.Size, "size of the surface before scaling, in pixels")
	fs.StringVar(&cfg.PathFile, "path-file", cfg.PathFile, "file in `dir` with the path data to draw instead of the default one")
	fs.StringVar(&cfg.Out, "out", cfg.Out, "name of the PNG file written in `dir`")
	fs.StringVar(&configFile, "config", "", "TOML `file` providing defaults for the other flags")
	fs.BoolVar(&cfg.Path, "path", false, "draw the path")
	fs.BoolVar(&cfg.Raster, "raster", false, "draw the image")
	fs.BoolVar(&cfg.Text, "text", false, "draw the text")
	fs.BoolVar(&cfg.SVG, "svg", false, "draw the SVG document")
	fs.BoolVar(&cfg.Save, "save", false, "save the frame; when no stage is selected, every one is enabled")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "log stage timings and skipped elements")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() != 0 {
		return cfg, fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}

	if configFile != "" {
		fromFile, err := bench.LoadConfigFile(configFile, bench.DefaultConfig())
		if err != nil {
			return cfg, err
		}
		fs.Visit(func(f *flag.Flag) {
			if set := setters[f.Name]; set != nil {
				set(&fromFile, cfg)
			}
		})
		cfg = fromFile
	}

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
