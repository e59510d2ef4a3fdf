// Package logger provides a logger abstraction for writing log messages in
// configurable formats to different outputs, such as a console, plain text
// file, or a JSON output.
//
// It is intended for internal use by secrets-to-env only.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	nocolor   = "0"
	red       = "31"
	green     = "38;5;48"
	yellow    = "33"
	gray      = "38;5;251"
	lightgray = "38;5;243"
	cyan      = "1;36"
)

const (
	DateFormat = "2006-01-02 15:04:05"
)

var windowsColors bool

type Logger interface {
	Debug(format string, v ...any)
	Error(format string, v ...any)
	Fatal(format string, v ...any)
	Notice(format string, v ...any)
	Warn(format string, v ...any)
	Info(format string, v ...any)

	WithFields(fields ...Field) Logger
	SetLevel(level Level)
	Level() Level
}

// ConsoleLogger is a logger that sends each message to a Printer if its
// level is at or above the configured level.
type ConsoleLogger struct {
	level   Level
	exitFn  func(int)
	fields  Fields
	printer Printer
}

// NewConsoleLogger returns a ConsoleLogger at NOTICE level. exitFn is called
// after a Fatal message is printed.
func NewConsoleLogger(printer Printer, exitFn func(int)) Logger {
	return &ConsoleLogger{
		level:   NOTICE,
		printer: printer,
		exitFn:  exitFn,
	}
}

// WithFields returns a copy of the logger with the provided fields
func (l *ConsoleLogger) WithFields(fields ...Field) Logger {
	clone := *l
	clone.fields = make(Fields, 0, len(l.fields)+len(fields))
	clone.fields.Add(l.fields...)
	clone.fields.Add(fields...)
	return &clone
}

// SetLevel sets the level for the logger
func (l *ConsoleLogger) SetLevel(level Level) {
	l.level = level
}

// Level returns the current level for the logger
func (l *ConsoleLogger) Level() Level {
	return l.level
}

func (l *ConsoleLogger) Debug(format string, v ...any) {
	if l.level == DEBUG {
		l.printer.Print(DEBUG, fmt.Sprintf(format, v...), l.fields)
	}
}

func (l *ConsoleLogger) Error(format string, v ...any) {
	l.printer.Print(ERROR, fmt.Sprintf(format, v...), l.fields)
}

func (l *ConsoleLogger) Fatal(format string, v ...any) {
	l.printer.Print(FATAL, fmt.Sprintf(format, v...), l.fields)
	l.exitFn(1)
}

func (l *ConsoleLogger) Notice(format string, v ...any) {
	if l.level <= NOTICE {
		l.printer.Print(NOTICE, fmt.Sprintf(format, v...), l.fields)
	}
}

func (l *ConsoleLogger) Info(format string, v ...any) {
	if l.level <= INFO {
		l.printer.Print(INFO, fmt.Sprintf(format, v...), l.fields)
	}
}

func (l *ConsoleLogger) Warn(format string, v ...any) {
	if l.level <= WARN {
		l.printer.Print(WARN, fmt.Sprintf(format, v...), l.fields)
	}
}

// Printer formats and writes a single log message.
type Printer interface {
	Print(level Level, msg string, fields Fields)
}

// TextPrinter writes human readable lines, optionally coloured.
type TextPrinter struct {
	Colors bool

	mu     sync.Mutex
	writer io.Writer
}

func NewTextPrinter(w io.Writer) *TextPrinter {
	return &TextPrinter{
		writer: w,
		Colors: ColorsAvailable(),
	}
}

func (l *TextPrinter) Print(level Level, msg string, fields Fields) {
	now := time.Now().Format(DateFormat)

	var line strings.Builder

	if l.Colors {
		levelColor := green
		messageColor := nocolor

		switch level {
		case DEBUG:
			levelColor = gray
			messageColor = gray
		case NOTICE:
			levelColor = cyan
		case WARN:
			levelColor = yellow
		case ERROR:
			levelColor = red
		case FATAL:
			levelColor = red
			messageColor = red
		}

		fmt.Fprintf(&line, "\x1b[%sm%s %-6s\x1b[0m \x1b[%sm%s\x1b[0m", levelColor, now, level, messageColor, msg)
		for _, field := range fields {
			fmt.Fprintf(&line, " \x1b[%sm%s=\x1b[0m%s", lightgray, field.Key(), field.String())
		}
	} else {
		fmt.Fprintf(&line, "%s %-6s %s", now, level, msg)
		for _, field := range fields {
			fmt.Fprintf(&line, " %s=%s", field.Key(), field.String())
		}
	}
	line.WriteString("\n")

	// Make sure we're only outputting a line one at a time
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.writer, line.String())
}

// JSONPrinter writes one JSON object per message.
type JSONPrinter struct {
	mu     sync.Mutex
	writer io.Writer
}

func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

func (p *JSONPrinter) Print(level Level, msg string, fields Fields) {
	obj := make(map[string]string, len(fields)+3)
	for _, field := range fields {
		obj[field.Key()] = field.String()
	}
	obj["ts"] = time.Now().Format(time.RFC3339)
	obj["level"] = level.String()
	obj["msg"] = msg

	b, err := json.Marshal(obj)
	if err != nil {
		b = fmt.Appendf(nil, `{"level":"ERROR","msg":%q}`, "failed to marshal log message: "+err.Error())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = p.writer.Write(append(b, '\n'))
}

// ColorsAvailable reports whether stdout is a terminal that can show colours.
func ColorsAvailable() bool {
	// Color support for windows is set in init
	if runtime.GOOS == "windows" && !windowsColors {
		return false
	}

	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Discard is a logger that throws everything away.
var Discard = NewConsoleLogger(NewTextPrinter(io.Discard), func(int) {})
