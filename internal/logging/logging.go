package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a component-tagged logger. APP_ENV=dev switches to the human
// readable console writer; anything else emits JSON lines for collectors.
// LOG_LEVEL overrides the default info level.
func New(component string) zerolog.Logger {
	env := strings.ToLower(os.Getenv("APP_ENV"))
	var logger zerolog.Logger
	if env == "dev" {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		logger = zerolog.New(writer).With().Timestamp().Str("component", component).Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", component).Logger()
	}

	if lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && lvl != zerolog.NoLevel {
		logger = logger.Level(lvl)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}
	return logger
}
