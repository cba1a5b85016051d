// Package logger builds the logrus instances used across the pool service
// and carries the audit trail for ballot mutations.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a logger at the requested level, falling back to info
// when the level string is unknown. Production emits JSON for log
// aggregation; everything else gets colored text with full timestamps.
func NewLogger(logLevel string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		level = logrus.InfoLevel
		log.WithField("log_level", logLevel).Warn("Unknown log level, using info")
	}
	log.SetLevel(level)

	if strings.EqualFold(os.Getenv("GOLD_ENVELOPE_ENVIRONMENT"), "production") {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			ForceColors:     true,
			TimestampFormat: time.RFC3339,
		})
	}

	return log
}
