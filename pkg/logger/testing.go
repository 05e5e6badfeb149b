package logger

import "sync"

// TestLogger captures log messages for assertions in tests.
type TestLogger struct {
	mu       sync.Mutex
	messages []CapturedMessage
	fields   map[string]interface{}
}

// CapturedMessage is a single log entry recorded by a TestLogger.
type CapturedMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger creates a logger that records messages instead of printing them.
func NewTestLogger() *TestLogger {
	return &TestLogger{}
}

// Messages returns a copy of all captured messages.
func (l *TestLogger) Messages() []CapturedMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]CapturedMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// HasMessage reports whether a message with the given level and text was logged.
func (l *TestLogger) HasMessage(level, msg string) bool {
	for _, m := range l.Messages() {
		if m.Level == level && m.Message == msg {
			return true
		}
	}
	return false
}

func (l *TestLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	l.messages = append(l.messages, CapturedMessage{Level: level, Message: msg, Fields: merged})
}

func (l *TestLogger) Debug(msg string) { l.record("debug", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.record("info", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.record("warn", msg, nil) }
func (l *TestLogger) Error(msg string) { l.record("error", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.record("fatal", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.record("debug", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.record("info", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.record("warn", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.record("error", msg, fields)
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
	return &sharedTestLogger{parent: l, fields: merged}
}

func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// sharedTestLogger routes child logger writes back to the parent recorder.
type sharedTestLogger struct {
	parent *TestLogger
	fields map[string]interface{}
}

func (s *sharedTestLogger) Debug(msg string) { s.parent.record("debug", msg, s.fields) }
func (s *sharedTestLogger) Info(msg string)  { s.parent.record("info", msg, s.fields) }
func (s *sharedTestLogger) Warn(msg string)  { s.parent.record("warn", msg, s.fields) }
func (s *sharedTestLogger) Error(msg string) { s.parent.record("error", msg, s.fields) }
func (s *sharedTestLogger) Fatal(msg string) { s.parent.record("fatal", msg, s.fields) }

func (s *sharedTestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	s.parent.record("debug", msg, s.merge(fields))
}

func (s *sharedTestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	s.parent.record("info", msg, s.merge(fields))
}

func (s *sharedTestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	s.parent.record("warn", msg, s.merge(fields))
}

func (s *sharedTestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	s.parent.record("error", msg, s.merge(fields))
}

func (s *sharedTestLogger) WithField(key string, value interface{}) Logger {
	return s.WithFields(map[string]interface{}{key: value})
}

func (s *sharedTestLogger) WithFields(fields map[string]interface{}) Logger {
	return &sharedTestLogger{parent: s.parent, fields: s.merge(fields)}
}

func (s *sharedTestLogger) WithError(err error) Logger {
	if err == nil {
		return s
	}
	return s.WithField("error", err.Error())
}

func (s *sharedTestLogger) merge(fields map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(s.fields)+len(fields))
	for k, v := range s.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}
