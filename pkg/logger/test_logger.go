package logger

import (
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger captures log calls for assertions in tests. Derived loggers
// created with WithField/WithFields/WithError share the same capture buffer.
type TestLogger struct {
	state   *testLogState
	fields  map[string]interface{}
	err     error
	zerolog *zerolog.Logger
}

type testLogState struct {
	mu       sync.Mutex
	messages []LogMessage
}

// LogMessage is a single captured log entry.
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Error   error
}

// NewTestLogger creates a logger that records instead of writing.
func NewTestLogger() *TestLogger {
	nop := zerolog.Nop()
	return &TestLogger{state: &testLogState{}, zerolog: &nop}
}

func (l *TestLogger) record(level, msg string, fields map[string]interface{}) {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.messages = append(l.state.messages, LogMessage{
		Level:   level,
		Message: msg,
		Fields:  merged,
		Error:   l.err,
	})
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
	return &TestLogger{state: l.state, fields: merged, err: l.err, zerolog: l.zerolog}
}

func (l *TestLogger) WithError(err error) Logger {
	return &TestLogger{state: l.state, fields: l.fields, err: err, zerolog: l.zerolog}
}

func (l *TestLogger) GetZerolog() *zerolog.Logger {
	return l.zerolog
}

// Messages returns a copy of all captured entries.
func (l *TestLogger) Messages() []LogMessage {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	out := make([]LogMessage, len(l.state.messages))
	copy(out, l.state.messages)
	return out
}

// MessagesByLevel returns captured entries with the given level.
func (l *TestLogger) MessagesByLevel(level string) []LogMessage {
	var filtered []LogMessage
	for _, m := range l.Messages() {
		if m.Level == level {
			filtered = append(filtered, m)
		}
	}
	return filtered
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
