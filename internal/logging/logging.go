// Package logging builds the zerolog logger used across revgrowth.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/revgrowth/internal/config"
)

// New returns a logger writing to w. Format "json" emits one JSON object per
// line; anything else uses a human-readable console writer. An unknown
// level falls back to info.
func New(cfg config.LoggingConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: true}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
