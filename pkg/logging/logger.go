package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// InitLogging initializes logging. Debug mode gets a human readable console
// writer, every other mode emits JSON lines.
func InitLogging(mode string) {
	var out io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if mode == "debug" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// SetOutput redirects log output, used by tests to capture messages.
func SetOutput(w io.Writer) {
	logger = logger.Output(w)
}

// Logger returns the underlying zerolog logger
func Logger() *zerolog.Logger {
	return &logger
}

// Debugf logs debug level messages
func Debugf(format string, v ...interface{}) {
	logger.Debug().Msgf(format, v...)
}

// Infof logs info level messages
func Infof(format string, v ...interface{}) {
	logger.Info().Msgf(format, v...)
}

// Warnf logs warning level messages
func Warnf(format string, v ...interface{}) {
	logger.Warn().Msgf(format, v...)
}

// Errorf logs error level messages
func Errorf(format string, v ...interface{}) {
	logger.Error().Msgf(format, v...)
}
