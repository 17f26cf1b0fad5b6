// Package logging builds the zerolog logger shared by the commands.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a timestamped stdout logger; dev runs log at debug level.
func New(stage string) zerolog.Logger {
	level := zerolog.InfoLevel
	if stage == "dev" {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
}
