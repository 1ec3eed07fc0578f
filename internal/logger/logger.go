package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultPath is the log file relative to the working directory (project root when run via go run ./cmd/mycad).
const DefaultPath = "logs/mycad.txt"

// maxLines bounds the in-memory history shown by the terminal. The file keeps everything.
const maxLines = 1000

// Level is the severity of a log line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (lv Level) String() string {
	switch lv {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL%d", int(lv))
}

// Logger stores lines of text (terminal input, editor events) in memory and appends them to a file on disk.
// It is safe for concurrent use; the config watcher logs from its own goroutine.
type Logger struct {
	mu    sync.Mutex
	lines []string
	path  string
	debug bool
	now   func() time.Time
}

// New returns a Logger that appends to path. An empty path keeps lines in memory only.
// The directory of path is created if needed.
func New(path string) *Logger {
	if path != "" {
		_ = os.MkdirAll(filepath.Dir(path), 0755)
	}
	return &Logger{path: path, now: time.Now}
}

// SetDebug turns debug-level lines on or off. They are dropped by default.
func (l *Logger) SetDebug(on bool) {
	l.mu.Lock()
	l.debug = on
	l.mu.Unlock()
}

// Log appends a line to the logger and to the log file. Each entry is prefixed with [timestamp] using computer time.
func (l *Logger) Log(line string) {
	l.mu.Lock()
	stamped := "[" + l.now().Format("2006-01-02 15:04:05") + "] " + line
	l.lines = append(l.lines, stamped)
	if len(l.lines) > maxLines {
		l.lines = l.lines[len(l.lines)-maxLines:]
	}
	path := l.path
	l.mu.Unlock()

	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	_, _ = f.WriteString(stamped + "\n")
	_ = f.Close()
}

// Logf logs a formatted line tagged with its level. Debug lines are skipped unless SetDebug(true).
func (l *Logger) Logf(lv Level, format string, args ...any) {
	if lv == LevelDebug {
		l.mu.Lock()
		on := l.debug
		l.mu.Unlock()
		if !on {
			return
		}
	}
	l.Log(lv.String() + " " + fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...any) { l.Logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.Logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.Logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.Logf(LevelError, format, args...) }

// LevelOf reads the level tag back from a stored line. Untagged lines count as info.
func LevelOf(line string) Level {
	if _, rest, ok := strings.Cut(line, "] "); ok {
		line = rest
	}
	tag, _, _ := strings.Cut(line, " ")
	for lv := LevelDebug; lv <= LevelError; lv++ {
		if tag == lv.String() {
			return lv
		}
	}
	return LevelInfo
}

// Lines returns a copy of all stored lines.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Last returns the most recent line, or "" when nothing was logged.
func (l *Logger) Last() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.lines) == 0 {
		return ""
	}
	return l.lines[len(l.lines)-1]
}
