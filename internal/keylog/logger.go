// Package keylog tallies key presses and maintains the session log file.
//
// While a session runs the log file is append-only, one key name per line.
// Finalize replaces its whole content with the frequency report.
package keylog

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/verte-zerg/keytally/internal/model"
	"github.com/verte-zerg/keytally/internal/stats"
)

// Header is the first line of a newly created log file.
const Header = "Key Log:"

const fileMode = 0o644

// Logger owns the per-session tally, the ordered key sequence and the log file.
// It is safe for concurrent use.
type Logger struct {
	path string

	mu      sync.Mutex
	counter *stats.Counter
	keys    []string
}

// New returns a logger writing to path.
func New(path string) *Logger {
	return &Logger{
		path:    path,
		counter: stats.NewCounter(),
	}
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Initialize creates the log file with the header line when it does not exist yet.
// An existing file is never truncated.
func (l *Logger) Initialize() error {
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return &IOError{Op: "create", Path: l.path, Err: err}
	}
	if _, err := f.WriteString(Header + "\n"); err != nil {
		_ = f.Close()
		return &IOError{Op: "create", Path: l.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "create", Path: l.path, Err: err}
	}
	return nil
}

// OnKeyPress records ev and appends its key to the log file.
// The tally is updated even when the append fails.
func (l *Logger) OnKeyPress(ev model.KeyEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.keys = append(l.keys, ev.Key)
	l.counter.Add(ev.Key)
	return l.appendLine(ev.Key)
}

func (l *Logger) appendLine(key string) error {
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, fileMode)
	if err != nil {
		return &IOError{Op: "append", Path: l.path, Err: err}
	}
	if _, err := f.WriteString(key + "\n"); err != nil {
		_ = f.Close()
		return &IOError{Op: "append", Path: l.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "append", Path: l.path, Err: err}
	}
	return nil
}

// Finalize replaces the log file content with the frequency report of the current tally.
func (l *Logger) Finalize() (stats.Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	report := stats.BuildReport(l.counter)
	if err := WriteReportFile(l.path, report); err != nil {
		return report, err
	}
	return report, nil
}

// WriteReportFile truncates path and writes the rendered report to it.
func WriteReportFile(path string, report stats.Report) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := stats.WriteReport(f, report); err != nil {
		_ = f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Snapshot returns the report of the current tally without touching the file.
func (l *Logger) Snapshot() stats.Report {
	l.mu.Lock()
	defer l.mu.Unlock()
	return stats.BuildReport(l.counter)
}

// Recent returns up to n of the most recently pressed keys, oldest first.
func (l *Logger) Recent(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 {
		return nil
	}
	start := len(l.keys) - n
	if start < 0 {
		start = 0
	}
	out := make([]string, len(l.keys)-start)
	copy(out, l.keys[start:])
	return out
}
