package app

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Logger is the component-tagged logger every subsystem reports through.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

// CharmLogger writes leveled, timestamped lines with a component key.
type CharmLogger struct{ l *log.Logger }

// NewCharmLogger logs at info level, or debug when debug is set.
func NewCharmLogger(w io.Writer, debug bool) *CharmLogger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "squarebg",
	})
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return &CharmLogger{l: l}
}

func (c *CharmLogger) Infof(component string, format string, args ...interface{}) {
	c.l.Info(fmt.Sprintf(format, args...), "component", component)
}

func (c *CharmLogger) Errorf(component string, format string, args ...interface{}) {
	c.l.Error(fmt.Sprintf(format, args...), "component", component)
}

// FileLogger appends plain lines to w, for the --debug log file.
type FileLogger struct{ w io.Writer }

func NewFileLogger(w io.Writer) FileLogger { return FileLogger{w: w} }

func (l FileLogger) Infof(component string, format string, args ...interface{}) {
	writeLog(l.w, "INFO", component, format, args...)
}

func (l FileLogger) Errorf(component string, format string, args ...interface{}) {
	writeLog(l.w, "ERROR", component, format, args...)
}

func writeLog(w io.Writer, level, component, format string, args ...interface{}) {
	timestamp := time.Now().Format(time.RFC3339)
	msg := fmt.Sprintf(format, args...)
	_, _ = io.WriteString(w, timestamp+" ["+level+"] "+component+": "+msg+"\n")
}

// Tee sends every line to each logger in turn.
func Tee(loggers ...Logger) Logger { return teeLogger(loggers) }

type teeLogger []Logger

func (t teeLogger) Infof(component string, format string, args ...interface{}) {
	for _, l := range t {
		l.Infof(component, format, args...)
	}
}

func (t teeLogger) Errorf(component string, format string, args ...interface{}) {
	for _, l := range t {
		l.Errorf(component, format, args...)
	}
}
