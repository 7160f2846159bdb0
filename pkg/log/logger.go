// Package log builds the diagnostics logger. Archive listings and progress go
// to stdout; everything written here goes to stderr or the configured file.
package log

import (
	"io"
	"os"
	"path/filepath"

	"bsab/pkg/conf"

	"github.com/sirupsen/logrus"
)

// Logger configures logger and returns it as a FieldLogger. An unknown level
// falls back to warn, although conf.Load rejects one before it gets here. A log file that cannot be opened leaves output on the
// logger's current writer.
func Logger(logger *logrus.Logger, outputFile, level, format string) logrus.FieldLogger {
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	logger.SetLevel(lvl)

	if outputFile != "" {
		if file, err := os.OpenFile(filepath.Clean(outputFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640); err == nil {
			logger.SetOutput(file)
		} else {
			logger.Warnf("Failed to open log file %s. Will use stderr. %s", outputFile, err.Error())
		}
	}
	return logger
}

// FromSettings returns a logger writing to stderr unless s names a log file.
func FromSettings(s conf.Settings, stderr io.Writer) logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(stderr)
	return Logger(l, s.LogFile, s.LogLevel, s.LogFormat)
}
