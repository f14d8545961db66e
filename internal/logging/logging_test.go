package logging

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewDevConsoleLogger(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer os.Unsetenv("APP_ENV")

	logger := New("test")
	logger.Info().Msg("console output")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNewHonorsLogLevel(t *testing.T) {
	assert.NoError(t, os.Setenv("LOG_LEVEL", "warn"))
	defer os.Unsetenv("LOG_LEVEL")

	logger := New("test")
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}
