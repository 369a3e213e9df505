package logger

import (
	"io"
	"os"
	"path/filepath"
	"whisp-chat-svc/src/internal/config"

	"github.com/sirupsen/logrus"
)

// Init configures the standard logrus logger from the logs section.
func Init(cfg *config.Configuration) {
	level, err := logrus.ParseLevel(cfg.Logs.Level)
	if err != nil {
		logrus.WithField("level", cfg.Logs.Level).Warn("Unknown log level, falling back to info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Logs.EnableJSONOutput {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logrus.SetOutput(output(cfg.Logs.Path))

	logrus.WithFields(logrus.Fields{
		"level": level.String(),
		"json":  cfg.Logs.EnableJSONOutput,
	}).Debug("Logger initialized")
}

func output(path string) io.Writer {
	if path == "" {
		return os.Stdout
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logrus.WithError(err).WithField("path", path).Error("Failed to create log directory, using stdout")
		return os.Stdout
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Error("Failed to open log file, using stdout")
		return os.Stdout
	}

	return io.MultiWriter(os.Stdout, file)
}
