package convert

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/goliatone/go-confluence/pkg/interfaces"
)

type logEntry struct {
	level  string
	msg    string
	args   []any
	fields map[string]any
}

type entryLog struct {
	mu      sync.Mutex
	entries []logEntry
}

// recordingLogger captures entries so tests can assert on diagnostics.
type recordingLogger struct {
	log    *entryLog
	fields map[string]any
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{log: &entryLog{}, fields: map[string]any{}}
}

func (l *recordingLogger) record(level, msg string, args ...any) {
	l.log.mu.Lock()
	defer l.log.mu.Unlock()
	l.log.entries = append(l.log.entries, logEntry{
		level:  level,
		msg:    msg,
		args:   args,
		fields: maps.Clone(l.fields),
	})
}

func (l *recordingLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *recordingLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := maps.Clone(l.fields)
	maps.Copy(merged, fields)
	return &recordingLogger{log: l.log, fields: merged}
}

func (l *recordingLogger) find(level, contains string) []logEntry {
	l.log.mu.Lock()
	defer l.log.mu.Unlock()
	var out []logEntry
	for _, entry := range l.log.entries {
		if entry.level == level && strings.Contains(entry.msg, contains) {
			out = append(out, entry)
		}
	}
	return out
}
