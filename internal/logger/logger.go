// Package logger provides structured logging using zerolog.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// serviceName tags every JSON log line so aggregated streams can be
// filtered per service.
const serviceName = "schoolfin"

// Log is the global logger instance. The default is a human-readable
// console logger at debug level; Setup reconfigures it from config.
var Log zerolog.Logger

func init() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	Log = consoleLogger()
}

// Setup configures the global logger: the level from config and either
// console output for development or JSON for production.
func Setup(level string, json bool) {
	zerolog.SetGlobalLevel(parseLevel(level))
	if json {
		Log = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Str("service", serviceName).
			Logger()
		return
	}
	Log = consoleLogger()
}

func consoleLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger()
}

// parseLevel maps a config string to a zerolog level. Unknown values
// fall back to info rather than failing startup.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
