package common

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel is a string-keyed logging level, kept distinct from logrus.Level so
// configuration files and flags can use plain lowercase words.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

// LoggerConfig configures a logger built by NewLogger.
type LoggerConfig struct {
	Level      LogLevel
	Format     string // "json" or "text"
	AddCaller  bool
	TimeFormat string
}

// DefaultLoggerConfig returns sensible defaults for interactive/CLI usage.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:      LogLevelInfo,
		Format:     "text",
		TimeFormat: time.RFC3339,
	}
}

// NewLogger builds a logrus.Logger per config, routed through OutputSplitter.
func NewLogger(config LoggerConfig) *logrus.Logger {
	logger := logrus.New()

	switch config.Level {
	case LogLevelDebug:
		logger.SetLevel(logrus.DebugLevel)
	case LogLevelWarn:
		logger.SetLevel(logrus.WarnLevel)
	case LogLevelError:
		logger.SetLevel(logrus.ErrorLevel)
	case LogLevelFatal:
		logger.SetLevel(logrus.FatalLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if config.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: config.TimeFormat})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{TimestampFormat: config.TimeFormat, FullTimestamp: true})
	}

	logger.SetReportCaller(config.AddCaller)
	logger.SetOutput(&OutputSplitter{})
	return logger
}

// ContextLogger carries a fixed set of structured fields (resource, group, step, ...)
// through a chain of calls without re-specifying them at every log line.
type ContextLogger struct {
	logger *logrus.Logger
	fields logrus.Fields
}

// NewContextLogger creates a ContextLogger seeded with the given fields. A nil
// logger falls back to the package-level Logger.
func NewContextLogger(logger *logrus.Logger, fields map[string]interface{}) *ContextLogger {
	if logger == nil {
		logger = Logger
	}
	base := make(logrus.Fields, len(fields))
	for k, v := range fields {
		base[k] = v
	}
	return &ContextLogger{logger: logger, fields: base}
}

func (cl *ContextLogger) clone() logrus.Fields {
	newFields := make(logrus.Fields, len(cl.fields))
	for k, v := range cl.fields {
		newFields[k] = v
	}
	return newFields
}

// WithField returns a derived logger with one additional field.
func (cl *ContextLogger) WithField(key string, value interface{}) *ContextLogger {
	f := cl.clone()
	f[key] = value
	return &ContextLogger{logger: cl.logger, fields: f}
}

// WithFields returns a derived logger with several additional fields.
func (cl *ContextLogger) WithFields(fields map[string]interface{}) *ContextLogger {
	f := cl.clone()
	for k, v := range fields {
		f[k] = v
	}
	return &ContextLogger{logger: cl.logger, fields: f}
}

// WithError attaches an error and its dynamic type to the logger context.
func (cl *ContextLogger) WithError(err error) *ContextLogger {
	return cl.WithFields(map[string]interface{}{
		"error":      err.Error(),
		"error_type": fmt.Sprintf("%T", err),
	})
}

func (cl *ContextLogger) Debug(msg string)                          { cl.logger.WithFields(cl.fields).Debug(msg) }
func (cl *ContextLogger) Debugf(format string, args ...interface{}) { cl.logger.WithFields(cl.fields).Debugf(format, args...) }
func (cl *ContextLogger) Info(msg string)                           { cl.logger.WithFields(cl.fields).Info(msg) }
func (cl *ContextLogger) Infof(format string, args ...interface{})  { cl.logger.WithFields(cl.fields).Infof(format, args...) }
func (cl *ContextLogger) Warn(msg string)                           { cl.logger.WithFields(cl.fields).Warn(msg) }
func (cl *ContextLogger) Warnf(format string, args ...interface{})  { cl.logger.WithFields(cl.fields).Warnf(format, args...) }
func (cl *ContextLogger) Error(msg string)                          { cl.logger.WithFields(cl.fields).Error(msg) }
func (cl *ContextLogger) Errorf(format string, args ...interface{}) { cl.logger.WithFields(cl.fields).Errorf(format, args...) }
func (cl *ContextLogger) Fatal(msg string)                          { cl.logger.WithFields(cl.fields).Fatal(msg) }
