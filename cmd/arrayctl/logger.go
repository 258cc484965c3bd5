package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// newLogger returns a tinted logger on w. Colour is off when w is not a
// terminal or when disabled explicitly.
func newLogger(w *os.File, verbose, noColor bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	var out io.Writer = w
	color := !noColor && isatty.IsTerminal(w.Fd())
	if color {
		out = colorable.NewColorable(w)
	}
	return slog.New(tint.NewHandler(out, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !color,
	}))
}
