// Package logging provides structured logging for the av1an driver.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config controls logger construction.
type Config struct {
	Level  slog.Level
	Output io.Writer
	// LogDir, if non-empty, additionally writes to a timestamped file under
	// this directory. Output still goes to Output.
	LogDir string
}

// Logger wraps slog.Logger with a package-level singleton and an optional
// file sink, mirroring how the reference driver threads one logger through
// the whole job.
type Logger struct {
	*slog.Logger
	file *os.File
}

var (
	global     *Logger
	globalOnce sync.Once
)

// New constructs a Logger per cfg. If cfg.LogDir is set, a timestamped log
// file is created and written to in addition to cfg.Output.
func New(cfg Config) (*Logger, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var file *os.File
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
			return nil, err
		}
		name := "av1an_" + time.Now().Format("20060102_150405") + ".log"
		f, err := os.OpenFile(filepath.Join(cfg.LogDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		file = f
		out = io.MultiWriter(out, f)
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.Level})
	return &Logger{Logger: slog.New(handler), file: file}, nil
}

// Close closes the underlying log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// WithPrefix returns a logger that tags every record with the given
// component name, grouped as a slog attribute.
func (l *Logger) WithPrefix(component string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("component", component)), file: l.file}
}

// Init installs l as the process-wide default logger. Safe to call once;
// subsequent calls are no-ops.
func Init(l *Logger) {
	globalOnce.Do(func() {
		global = l
		slog.SetDefault(l.Logger)
	})
}

func current() *Logger {
	if global == nil {
		global = &Logger{Logger: slog.Default()}
	}
	return global
}

func Debug(msg string, args ...any) { current().Debug(msg, args...) }
func Info(msg string, args ...any)  { current().Info(msg, args...) }
func Warn(msg string, args ...any)  { current().Warn(msg, args...) }
func Error(msg string, args ...any) { current().Error(msg, args...) }
