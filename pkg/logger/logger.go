// Package logger provides the shared zerolog sink for the hexapod stack.
package logger

import (
	"os"

	"github.com/rs/zerolog"
	logger "github.com/rs/zerolog/log"
)

// Log is the base logger; components derive their own sub-logger from it
// with .With().Str("component", name).Logger() rather than logging directly
// through this value.
var Log = logger.With().Caller().Logger().Output(zerolog.ConsoleWriter{Out: os.Stderr})

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// For returns a logger tagged with the given component name.
func For(component string) zerolog.Logger {
	return Log.With().Str("component", component).Logger()
}
