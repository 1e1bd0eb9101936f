package gologger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog logger writing JSON to stdout, with the level
// taken from the LOG_LEVEL env var (debug by default). Every package keeps
// its own instance so log context never leaks across packages.
func NewLogger() zerolog.Logger {
	zerolog.TimestampFieldName = "time"
	zerolog.LevelFieldName = "level"
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := zerolog.DebugLevel
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}
