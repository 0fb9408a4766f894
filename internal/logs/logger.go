package logs

import (
	"sync"
	"time"
)

type Level string

const (
	DEBUG Level = "DEBUG"
	INFO  Level = "INFO"
	WARN  Level = "WARN"
	ERROR Level = "ERROR"
)

// levelPriority orders levels by severity; higher value = more severe.
var levelPriority = map[Level]int{
	DEBUG: 1,
	INFO:  2,
	WARN:  3,
	ERROR: 4,
}

// Entry is one recorded log line. Component names the subsystem that
// produced it (scheduler, notify, api, ...).
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Component string    `json:"component"`
	Message   string    `json:"message"`
}

// Logger is an in-memory ring buffer of leveled log entries. Besides
// operator visibility it feeds the analytics layer, which scans recent
// entries for failure signals.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
	maxSize int
	level   Level
}

// NewLogger creates a logger keeping at most maxSize entries at or
// above the given minimum level.
func NewLogger(maxSize int, level Level) *Logger {
	return &Logger{
		entries: make([]Entry, 0, maxSize),
		maxSize: maxSize,
		level:   level,
	}
}

func (l *Logger) log(level Level, component, msg string) {
	if levelPriority[level] < levelPriority[l.level] {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.maxSize {
		// drop the oldest entry (ring behavior)
		l.entries = l.entries[1:]
	}

	l.entries = append(l.entries, Entry{
		Timestamp: time.Now(),
		Level:     level,
		Component: component,
		Message:   msg,
	})
}

func (l *Logger) Debug(component, msg string) {
	l.log(DEBUG, component, msg)
}

func (l *Logger) Info(component, msg string) {
	l.log(INFO, component, msg)
}

func (l *Logger) Warn(component, msg string) {
	l.log(WARN, component, msg)
}

func (l *Logger) Error(component, msg string) {
	l.log(ERROR, component, msg)
}

// GetLast returns a copy of the newest n entries, oldest first.
func (l *Logger) GetLast(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}
