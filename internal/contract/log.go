package contract

import (
	"os"

	"github.com/sirupsen/logrus"
)

// DefaultLogLevel is used when no log-level is configured.
const DefaultLogLevel = "warn"

// Logger is the process-wide logger. Everything writes to stderr so stdout stays
// reserved for results.
var Logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	return l
}

// SetLogLevel parses level and applies it to Logger.
func SetLogLevel(level string) error {
	if level == "" {
		level = DefaultLogLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger.WithError(err).Error(msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Logger.WithError(err).Warn(msg)
}

// LogInfo logs an informational message with optional structured fields.
func LogInfo(msg string, fields logrus.Fields) {
	Logger.WithFields(fields).Info(msg)
}

// LogDebug logs a debug message with optional structured fields.
func LogDebug(msg string, fields logrus.Fields) {
	Logger.WithFields(fields).Debug(msg)
}
