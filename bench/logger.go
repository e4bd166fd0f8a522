package bench

import (
	"log/slog"
	"sync/atomic"
)

var discard = slog.New(slog.DiscardHandler)

var logger atomic.Pointer[slog.Logger]

// SetLogger installs the logger receiving the benchmark records,
// which is silent by default. A nil logger restores the default.
//
// Records emitted by Run and Compose:
//   - "stage done" (debug): stage, duration
//   - "stage skipped" (debug): stage, err, for inputs the frame goes without
//   - "frame saved" (info): file, width, height
//
// The SVG stage also forwards the parser warnings (warn level)
// about unsupported elements and attributes.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// Logger returns the logger installed by [SetLogger].
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return discard
}
