package logger

import (
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger captures log messages for assertions in tests.
type TestLogger struct {
	mu       sync.Mutex
	messages []CapturedMessage
	zerolog  *zerolog.Logger
	fields   map[string]interface{}
}

// CapturedMessage is one recorded log entry.
type CapturedMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger creates a logger that records instead of printing.
func NewTestLogger() *TestLogger {
	nop := zerolog.Nop()
	return &TestLogger{zerolog: &nop, fields: map[string]interface{}{}}
}

func (l *TestLogger) record(level, msg string, fields map[string]interface{}) {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, CapturedMessage{Level: level, Message: msg, Fields: merged})
}

func (l *TestLogger) Debug(msg string) { l.record("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.record("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.record("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.record("ERROR", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.record("DEBUG", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.record("INFO", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.record("WARN", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.record("ERROR", msg, fields)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	// Derived loggers record into the parent's message slice.
	return &sharedTestLogger{parent: l, fields: merged}
}

func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *TestLogger) GetZerolog() *zerolog.Logger {
	return l.zerolog
}

// Messages returns a copy of everything recorded so far.
func (l *TestLogger) Messages() []CapturedMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]CapturedMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// HasMessage reports whether a message with the given text was logged.
func (l *TestLogger) HasMessage(text string) bool {
	for _, m := range l.Messages() {
		if m.Message == text {
			return true
		}
	}
	return false
}

// sharedTestLogger records into its parent, carrying bound fields.
type sharedTestLogger struct {
	parent *TestLogger
	fields map[string]interface{}
}

func (l *sharedTestLogger) merge(fields map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}

func (l *sharedTestLogger) Debug(msg string) { l.parent.record("DEBUG", msg, l.fields) }
func (l *sharedTestLogger) Info(msg string)  { l.parent.record("INFO", msg, l.fields) }
func (l *sharedTestLogger) Warn(msg string)  { l.parent.record("WARN", msg, l.fields) }
func (l *sharedTestLogger) Error(msg string) { l.parent.record("ERROR", msg, l.fields) }

func (l *sharedTestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.parent.record("DEBUG", msg, l.merge(fields))
}

func (l *sharedTestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.parent.record("INFO", msg, l.merge(fields))
}

func (l *sharedTestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.parent.record("WARN", msg, l.merge(fields))
}

func (l *sharedTestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.parent.record("ERROR", msg, l.merge(fields))
}

func (l *sharedTestLogger) WithField(key string, value interface{}) Logger {
	return &sharedTestLogger{parent: l.parent, fields: l.merge(map[string]interface{}{key: value})}
}

func (l *sharedTestLogger) WithFields(fields map[string]interface{}) Logger {
	return &sharedTestLogger{parent: l.parent, fields: l.merge(fields)}
}

func (l *sharedTestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *sharedTestLogger) GetZerolog() *zerolog.Logger {
	return l.parent.zerolog
}
