// Package log is prgrip's levelled file logger. Output goes through
// tea.LogToFile so the terminal owned by bubbletea is never written to.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatApp       Category = "app"       // startup and shutdown
	CatConfig    Category = "config"    // configuration loading/saving
	CatSource    Category = "source"    // gh CLI and fixture file access
	CatBus       Category = "bus"       // event bus
	CatSelection Category = "selection" // selection holder notifications
	CatUI        Category = "ui"        // UI updates
)

type logger struct {
	mu       sync.Mutex
	writer   io.Writer
	closer   io.Closer
	enabled  bool
	minLevel Level
}

var std = &logger{minLevel: LevelInfo}

// Init opens path for appending and enables logging.
// The returned func closes the file.
func Init(path string, prefix string) (func(), error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	std.mu.Lock()
	std.writer = f
	std.closer = f
	std.enabled = true
	std.mu.Unlock()
	return func() {
		std.mu.Lock()
		defer std.mu.Unlock()
		if std.closer != nil {
			_ = std.closer.Close()
			std.closer = nil
		}
		std.writer = nil
		std.enabled = false
	}, nil
}

// SetOutput redirects log output, mainly for tests. A nil writer disables logging.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.writer = w
	std.enabled = w != nil
}

// SetMinLevel sets the minimum level that is written.
func SetMinLevel(level Level) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.minLevel = level
}

// DebugEnabled reports whether the PRGRIP_DEBUG environment variable is set.
func DebugEnabled() bool {
	v := strings.ToLower(os.Getenv("PRGRIP_DEBUG"))
	return v != "" && v != "0" && v != "false"
}

func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs msg at error level with err attached as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if !std.enabled || std.writer == nil || level < std.minLevel {
		return
	}

	// 2026-01-02T15:04:05 [WARN] [selection] message key=value
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", time.Now().Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	_, _ = io.WriteString(std.writer, b.String())
}
