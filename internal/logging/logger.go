// Package logging provides the leveled structured logger shared by the
// capture producers, telemetry, and the probe commands.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// Level represents a logging severity.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a Level. An empty string means Info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, nil
	case "info", "":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	default:
		return Level(0), fmt.Errorf("unsupported log level %q", s)
	}
}

// Format controls how log entries are rendered.
type Format int

const (
	Text Format = iota
	JSON
)

// ParseFormat converts a string to a Format. An empty string means Text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "text", "":
		return Text, nil
	default:
		return Format(0), fmt.Errorf("unsupported log format %q", s)
	}
}

// Field is a structured key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for building a Field.
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger defines leveled structured logging operations.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

var defaultLogger Logger = New(Info, Text, io.Discard)

// Default returns the process-wide logger.
func Default() Logger { return defaultLogger }

// SetDefault replaces the process-wide logger.
func SetDefault(l Logger) {
	if l != nil {
		defaultLogger = l
	}
}

type stdLogger struct {
	level  Level
	format Format
	fields []Field
	out    *log.Logger
}

// New constructs a Logger with the given level, format, and output writer.
func New(level Level, format Format, w io.Writer) Logger {
	return &stdLogger{
		level:  level,
		format: format,
		out:    log.New(w, "", log.LstdFlags),
	}
}

func (l *stdLogger) With(fields ...Field) Logger {
	combined := make([]Field, 0, len(l.fields)+len(fields))
	combined = append(combined, l.fields...)
	combined = append(combined, fields...)
	return &stdLogger{
		level:  l.level,
		format: l.format,
		fields: combined,
		out:    l.out,
	}
}

func (l *stdLogger) Debug(msg string, fields ...Field) { l.emit(Debug, msg, fields) }
func (l *stdLogger) Info(msg string, fields ...Field)  { l.emit(Info, msg, fields) }
func (l *stdLogger) Warn(msg string, fields ...Field)  { l.emit(Warn, msg, fields) }
func (l *stdLogger) Error(msg string, fields ...Field) { l.emit(Error, msg, fields) }

func (l *stdLogger) emit(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}
	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	if l.format == JSON {
		payload := map[string]any{
			"time":  time.Now().Format(time.RFC3339Nano),
			"level": level.String(),
			"msg":   msg,
		}
		for _, f := range all {
			if f.Key != "" {
				payload[f.Key] = f.Value
			}
		}
		data, err := json.Marshal(payload)
		if err != nil {
			l.out.Printf("[ERROR] marshal log payload failed: %v", err)
			return
		}
		l.out.Print(string(data))
		return
	}

	var b strings.Builder
	for _, f := range all {
		if f.Key == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", f.Key, f.Value)
	}
	if b.Len() == 0 {
		l.out.Printf("[%s] %s", level.String(), msg)
		return
	}
	l.out.Printf("[%s] %s %s", level.String(), msg, b.String())
}
