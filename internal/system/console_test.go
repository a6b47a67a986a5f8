package system

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordLogger struct{ lines []string }

func (l *recordLogger) Infof(c, f string, args ...interface{}) {
	l.lines = append(l.lines, "info "+c+": "+fmt.Sprintf(f, args...))
}

func (l *recordLogger) Errorf(c, f string, args ...interface{}) {
	l.lines = append(l.lines, "error "+c+": "+fmt.Sprintf(f, args...))
}

func TestTakeConsoleLogsEachStep(t *testing.T) {
	l := &recordLogger{}
	restore := TakeConsole(l)
	assert.Len(t, l.lines, 2)
	restore()
	assert.Len(t, l.lines, 4)
	for _, line := range l.lines {
		assert.Contains(t, line, "tty: ")
	}
}

func TestLogStep(t *testing.T) {
	l := &recordLogger{}
	logStep(l, nil, "done", "failed")
	logStep(l, fmt.Errorf("boom"), "done", "failed")
	logStep(nil, nil, "done", "failed")
	assert.Equal(t, []string{"info tty: done", "error tty: failed: boom"}, l.lines)
}
