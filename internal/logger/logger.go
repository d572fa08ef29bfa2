package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logging interface used across the server.
// Implementations never write to stdout: stdout carries the MCP stdio transport.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)

	// With returns a child logger carrying the given fields on every entry
	With(fields ...Field) Logger

	Close() error
}

// Config controls level, format and destination
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Output string // "stderr" or a file path

	// Writer overrides Output when set
	Writer io.Writer
}

// DefaultConfig logs text at info level to stderr
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text", Output: "stderr"}
}

type logrusLogger struct {
	base   *logrus.Logger
	file   *os.File
	fields []Field
}

// New builds a logrus-backed Logger
func New(cfg Config) (Logger, error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(defaultString(cfg.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	l.SetLevel(level)

	switch strings.ToLower(defaultString(cfg.Format, "text")) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	var file *os.File
	switch {
	case cfg.Writer != nil:
		l.SetOutput(cfg.Writer)
	case cfg.Output == "" || strings.EqualFold(cfg.Output, "stderr"):
		l.SetOutput(os.Stderr)
	case strings.EqualFold(cfg.Output, "stdout"):
		return nil, fmt.Errorf("log output stdout is reserved for the MCP transport")
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Output), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		//nolint:gosec // G304: path comes from configuration
		file, err = os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.SetOutput(file)
	}

	return &logrusLogger{base: l, file: file}, nil
}

// NewNoop returns a Logger that discards everything
func NewNoop() Logger { return noop{} }

type noop struct{}

func (noop) Debug(string, ...Field)        {}
func (noop) Info(string, ...Field)         {}
func (noop) Warn(string, ...Field)         {}
func (noop) Error(string, error, ...Field) {}
func (n noop) With(...Field) Logger        { return n }
func (noop) Close() error                  { return nil }

func (l *logrusLogger) entry(fields []Field) *logrus.Entry {
	all := make(logrus.Fields, len(l.fields)+len(fields))
	for _, f := range l.fields {
		all[f.Key] = f.Value
	}
	for _, f := range fields {
		all[f.Key] = f.Value
	}
	return l.base.WithFields(all)
}

func (l *logrusLogger) Debug(msg string, fields ...Field) { l.entry(fields).Debug(msg) }
func (l *logrusLogger) Info(msg string, fields ...Field)  { l.entry(fields).Info(msg) }
func (l *logrusLogger) Warn(msg string, fields ...Field)  { l.entry(fields).Warn(msg) }

func (l *logrusLogger) Error(msg string, err error, fields ...Field) {
	e := l.entry(fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(msg)
}

func (l *logrusLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	// child shares the base logger; only the root owns the file
	return &logrusLogger{base: l.base, fields: merged}
}

func (l *logrusLogger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
