package logger

import (
	"fmt"
	"strings"
	"sync"
)

// Line is one message captured by a Memory logger.
type Line struct {
	Level   string
	Message string
}

// Memory records every message. It is used by tests to assert that a
// skipped file or rejected entry left a trace.
type Memory struct {
	mu    sync.Mutex
	lines []Line
}

// NewMemory returns an empty recording logger.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Debugf(format string, args ...any) { m.add("debug", format, args) }
func (m *Memory) Infof(format string, args ...any)  { m.add("info", format, args) }
func (m *Memory) Warnf(format string, args ...any)  { m.add("warn", format, args) }
func (m *Memory) Errorf(format string, args ...any) { m.add("error", format, args) }

func (m *Memory) add(level, format string, args []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, Line{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Lines returns a copy of the captured lines at the given level, or all lines
// when level is empty.
func (m *Memory) Lines(level string) []Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Line
	for _, l := range m.lines {
		if level == "" || l.Level == level {
			out = append(out, l)
		}
	}
	return out
}

// Contains reports whether any line at level mentions substr.
func (m *Memory) Contains(level, substr string) bool {
	for _, l := range m.Lines(level) {
		if strings.Contains(l.Message, substr) {
			return true
		}
	}
	return false
}
