package logger

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Setup configures the global logger: JSON with ISO 8601 timestamps on stdout.
// An unknown level falls back to info.
func Setup(level string) {
	log.SetFormatter(&log.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
	log.SetOutput(os.Stdout)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
