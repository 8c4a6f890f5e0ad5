package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type LogConfig struct {
	Level  string
	Pretty bool
}

// NewLogger builds the process logger. Pretty switches to the console
// writer for local runs.
func NewLogger(cfg LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if w == nil {
		w = os.Stderr
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
