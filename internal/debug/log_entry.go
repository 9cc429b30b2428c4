package debug

import (
	"fmt"
	"time"
)

// LogLevel represents the severity of a log entry.
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelNone:
		return "NONE"
	case LogLevelError:
		return "ERROR"
	case LogLevelWarning:
		return "WARNING"
	case LogLevelInfo:
		return "INFO"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Component identifies which subsystem produced a log entry.
type Component string

const (
	ComponentCPU    Component = "CPU"
	ComponentPPU    Component = "PPU"
	ComponentMemory Component = "Memory"
	ComponentUI     Component = "UI"
	ComponentSystem Component = "System"
)

// Components lists every component, for front ends that enable them all.
var Components = []Component{
	ComponentCPU, ComponentPPU, ComponentMemory, ComponentUI, ComponentSystem,
}

// LogEntry is a single log record.
type LogEntry struct {
	Timestamp time.Time
	Component Component
	Level     LogLevel
	Message   string
}

// Format renders the entry as one line.
func (e *LogEntry) Format() string {
	return fmt.Sprintf("[%s] [%s] %s: %s",
		e.Timestamp.Format("15:04:05.000"), e.Component, e.Level, e.Message)
}
