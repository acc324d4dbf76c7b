package config

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// LogConfig controls diagnostic logging. Reports are not logs and always
// go to stdout.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

// DefaultLogConfig returns sensible defaults for logging.
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "info", Format: "text"}
}

// NewLogger builds a logger writing to w. verbose forces debug level.
func (c LogConfig) NewLogger(w io.Writer, verbose bool) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)

	level := logrus.InfoLevel
	if c.Level != "" {
		var err error
		if level, err = logrus.ParseLevel(c.Level); err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
	}
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	switch c.Format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("log.format: unknown format %q (supported: text, json)", c.Format)
	}
	return log, nil
}
