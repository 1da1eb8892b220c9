// Package logger configures the process-wide logrus logger.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Setup applies level and format ("text" or "json"). Unknown levels fall back
// to info; the returned error only reports that fallback.
func Setup(level, format string) error {
	switch strings.ToLower(format) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.SetLevel(log.InfoLevel)
		return fmt.Errorf("unknown log level %q, using info", level)
	}
	log.SetLevel(parsed)
	return nil
}

// ToFile sends log output to path, creating parent directories. Interactive
// front-ends use it so log lines do not tear the screen.
func ToFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}
