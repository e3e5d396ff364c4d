package pwio

import (
	"fmt"
	"io"
	"strings"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelHint
	LevelWarning
	LevelError
	LevelFatal
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelHint:
		return "hint"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// LogFormat defines the output format for log messages
type LogFormat int

const (
	LogFormatProgram LogFormat = iota // Default: "prog: error: message"
	LogFormatTagged                   // "[ERROR] message"
	LogFormatPlain                    // message only
)

// Logger writes one-line diagnostics with a program-name prefix and semantic
// colors.
type Logger struct {
	io           *IOManager
	program      string
	format       LogFormat
	prefixes     map[LogLevel]string
	errorsStderr bool
	theme        Theme
}

// NewLogger creates a new logger bound to the given IOManager
func NewLogger(io *IOManager) *Logger {
	return &Logger{
		io:           io,
		format:       LogFormatProgram,
		errorsStderr: true,
		theme:        DefaultTheme(io),
		prefixes:     defaultPrefixes(),
	}
}

func defaultPrefixes() map[LogLevel]string {
	return map[LogLevel]string{
		LevelHint:    "hint",
		LevelWarning: "warning",
		LevelError:   "error",
		LevelFatal:   "fatal",
	}
}

// WithProgram sets the name that prefixes every message.
func (l *Logger) WithProgram(name string) *Logger {
	l.program = name
	return l
}

// WithFormat sets the log format and returns the logger for chaining
func (l *Logger) WithFormat(format LogFormat) *Logger {
	l.format = format
	return l
}

// SetPrefix sets the label printed for a specific log level
func (l *Logger) SetPrefix(level LogLevel, prefix string) *Logger {
	l.prefixes[level] = prefix
	return l
}

// ErrorsToStderr controls whether hints, warnings and errors go to stderr
func (l *Logger) ErrorsToStderr(enabled bool) *Logger {
	l.errorsStderr = enabled
	return l
}

// WithTheme sets a custom theme for semantic colors
func (l *Logger) WithTheme(theme Theme) *Logger {
	l.theme = theme
	return l
}

// Log outputs a log message at the specified level
func (l *Logger) Log(level LogLevel, format string, args ...any) {
	writer := l.selectWriter(level)
	fmt.Fprintln(writer, l.formatMessage(level, fmt.Sprintf(format, args...), writer))
}

func (l *Logger) formatMessage(level LogLevel, msg string, w io.Writer) string {
	if strings.TrimSpace(msg) == "" {
		return msg
	}

	var label string
	switch l.format {
	case LogFormatProgram:
		if p := l.prefixes[level]; p != "" {
			label = p + ":"
		}
	case LogFormatTagged:
		label = "[" + strings.ToUpper(level.String()) + "]"
	case LogFormatPlain:
	}
	if label != "" {
		label = l.colorizeByLevel(level, label, w)
	}

	parts := make([]string, 0, 3)
	if l.format == LogFormatProgram && l.program != "" {
		parts = append(parts, l.program+":")
	}
	if label != "" {
		parts = append(parts, label)
	}
	return strings.Join(append(parts, msg), " ")
}

// colorizeByLevel applies semantic color based on log level
func (l *Logger) colorizeByLevel(level LogLevel, text string, w io.Writer) string {
	var color ColorSpec
	switch level {
	case LevelDebug:
		color = l.theme.Debug
	case LevelInfo:
		color = l.theme.Info
	case LevelHint:
		color = l.theme.Hint
	case LevelWarning:
		color = l.theme.Warning
	case LevelError:
		color = l.theme.Error
	case LevelFatal:
		color = l.theme.Fatal
	}
	if color.IsZero() {
		return text
	}
	style := NewStyle().Fg(color)
	if level >= LevelError {
		style.Bold()
	}
	return style.SprintTo(l.io, w, text)
}

// selectWriter chooses stdout or stderr based on log level and configuration
func (l *Logger) selectWriter(level LogLevel) io.Writer {
	if l.errorsStderr && level >= LevelHint {
		return l.io.Err()
	}
	return l.io.Out()
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...any) { l.Log(LevelDebug, format, args...) }

// Info logs an informational message
func (l *Logger) Info(format string, args ...any) { l.Log(LevelInfo, format, args...) }

// Hint logs a suggestion that follows an error
func (l *Logger) Hint(format string, args ...any) { l.Log(LevelHint, format, args...) }

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...any) { l.Log(LevelWarning, format, args...) }

// Error logs an error message
func (l *Logger) Error(format string, args ...any) { l.Log(LevelError, format, args...) }

// Fatal logs an unrecoverable error. It does not exit.
func (l *Logger) Fatal(format string, args ...any) { l.Log(LevelFatal, format, args...) }
