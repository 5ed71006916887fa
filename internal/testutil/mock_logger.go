// Package testutil holds test doubles and fixtures shared across packages.
package testutil

import (
	"strings"
	"sync"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger and records every entry.  Child
// loggers from With and Named record into the same sink.
type MockLogger struct {
	sink   *sink
	name   string
	fields []logging.Field
}

type sink struct {
	mu       sync.Mutex
	messages []LogMessage
}

// LogMessage is one recorded entry.  Fields include those added with With.
type LogMessage struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// Field returns the value of the first field named key.
func (m LogMessage) Field(key string) (interface{}, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func NewMockLogger() *MockLogger {
	return &MockLogger{sink: &sink{}}
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(m.fields)+len(fields))
	all = append(append(all, m.fields...), fields...)
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.messages = append(m.sink.messages, LogMessage{Level: level, Logger: m.name, Message: msg, Fields: all})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log("error", msg, fields) }

// Fatal records the entry and does not exit.
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	child := *m
	child.fields = append(append([]logging.Field(nil), m.fields...), fields...)
	return &child
}

func (m *MockLogger) Named(name string) logging.Logger {
	child := *m
	if m.name == "" {
		child.name = name
	} else {
		child.name = m.name + "." + name
	}
	return &child
}

func (m *MockLogger) Sync() error { return nil }

// Messages returns a copy of the recorded entries.
func (m *MockLogger) Messages() []LogMessage {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	out := make([]LogMessage, len(m.sink.messages))
	copy(out, m.sink.messages)
	return out
}

// Clear drops the recorded entries.
func (m *MockLogger) Clear() {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.messages = nil
}

// Find returns the first entry with level and message.
func (m *MockLogger) Find(level, msg string) (LogMessage, bool) {
	for _, e := range m.Messages() {
		if e.Level == level && e.Message == msg {
			return e, true
		}
	}
	return LogMessage{}, false
}

// HasMessage reports whether an entry with level and message was recorded.
func (m *MockLogger) HasMessage(level, msg string) bool {
	_, ok := m.Find(level, msg)
	return ok
}

// Contains reports whether any entry message contains substr.
func (m *MockLogger) Contains(substr string) bool {
	for _, e := range m.Messages() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

var _ logging.Logger = (*MockLogger)(nil)
