package coordinator

import (
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogrusHook is a logrus hook that forwards log entries to when-v3.
// Use this to automatically forward all log messages from your service
// to the centralized log aggregation system in when-v3.
type LogrusHook struct {
	coordinator *Coordinator
	levels      []logrus.Level
	minLevel    logrus.Level
}

// NewLogrusHook creates a new logrus hook for forwarding logs to when-v3.
// The minLevel parameter specifies the minimum log level to forward (default: Info).
func NewLogrusHook(coordinator *Coordinator, minLevel logrus.Level) *LogrusHook {
	levels := make([]logrus.Level, 0)
	for _, level := range logrus.AllLevels {
		if level <= minLevel {
			levels = append(levels, level)
		}
	}

	return &LogrusHook{
		coordinator: coordinator,
		levels:      levels,
		minLevel:    minLevel,
	}
}

// Levels returns the log levels this hook fires for.
func (h *LogrusHook) Levels() []logrus.Level {
	return h.levels
}

// Fire is called when a log entry is made.
func (h *LogrusHook) Fire(entry *logrus.Entry) error {
	// Don't forward if coordinator is not connected
	if !h.coordinator.IsConnected() {
		return nil
	}

	// Convert logrus level to our level string
	level := logrusLevelToString(entry.Level)

	// Extract known fields
	logEntry := LogEntry{
		Timestamp: entry.Time,
		Level:     level,
		Message:   entry.Message,
		Fields:    make(map[string]interface{}),
	}

	// Extract known run/trace context from fields if present
	for k, v := range entry.Data {
		switch k {
		case "trace_id", "traceID", "traceId":
			if s, ok := v.(string); ok {
				logEntry.TraceID = s
			}
		case "span_id", "spanID", "spanId":
			if s, ok := v.(string); ok {
				logEntry.SpanID = s
			}
		case "run_id", "runID", "runId":
			if s, ok := v.(string); ok {
				logEntry.RunID = s
			}
		case "correlation_id", "correlationID", "correlationId":
			if s, ok := v.(string); ok {
				logEntry.CorrelationID = s
			}
		default:
			// Store other fields as additional context
			logEntry.Fields[k] = v
		}
	}

	// Try to get source file and line
	if entry.HasCaller() && entry.Caller != nil {
		logEntry.SourceFile = entry.Caller.File
		logEntry.SourceLine = entry.Caller.Line
	} else {
		// Manually get caller info if not available
		if _, file, line, ok := runtime.Caller(7); ok {
			// Skip internal logrus/hook frames
			if !strings.Contains(file, "logrus") {
				logEntry.SourceFile = file
				logEntry.SourceLine = line
			}
		}
	}

	// Send the log entry asynchronously
	go h.coordinator.SendLog(logEntry)

	return nil
}

// logrusLevelToString converts a logrus level to our string format.
func logrusLevelToString(level logrus.Level) string {
	switch level {
	case logrus.TraceLevel, logrus.DebugLevel:
		return "debug"
	case logrus.InfoLevel:
		return "info"
	case logrus.WarnLevel:
		return "warn"
	case logrus.ErrorLevel:
		return "error"
	case logrus.FatalLevel, logrus.PanicLevel:
		return "fatal"
	default:
		return "info"
	}
}
