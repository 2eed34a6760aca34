package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// consoleHandler writes bare messages, without timestamps or level prefixes
type consoleHandler struct {
	writer    io.Writer
	debugMode bool
	quiet     *bool
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	if level == slog.LevelDebug {
		return h.debugMode
	}
	return true
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if *h.quiet {
		return nil
	}
	_, err := fmt.Fprintln(h.writer, record.Message)
	return err
}

func (h *consoleHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *consoleHandler) WithGroup(_ string) slog.Handler {
	return h
}

// fanoutHandler sends each record to every handler that accepts its level
type fanoutHandler struct {
	handlers []slog.Handler
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: next}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &fanoutHandler{handlers: next}
}

// Splog provides structured logging and output
type Splog struct {
	logger    *slog.Logger
	writer    io.Writer
	logWriter io.WriteCloser
	runID     string
	quiet     bool
}

// NewSplog creates a console-only splog writing to stdout.
// Debug messages are enabled when the DEBUG environment variable is set.
func NewSplog() *Splog {
	splog, _ := NewSplogWithWriter(os.Stdout, "")
	return splog
}

// NewSplogWithConfig creates a splog writing to stdout and, when logFilePath
// is non-empty, to a rotating log file
func NewSplogWithConfig(logFilePath string) (*Splog, error) {
	return NewSplogWithWriter(os.Stdout, logFilePath)
}

// NewSplogWithWriter creates a splog writing console output to w
func NewSplogWithWriter(w io.Writer, logFilePath string) (*Splog, error) {
	splog := &Splog{
		writer: w,
		runID:  uuid.NewString(),
	}

	handlers := []slog.Handler{&consoleHandler{
		writer:    w,
		debugMode: os.Getenv("DEBUG") != "",
		quiet:     &splog.quiet,
	}}

	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		rotating := newRotatingWriter(logFilePath)
		splog.logWriter = rotating

		fileHandler := slog.NewTextHandler(rotating, &slog.HandlerOptions{
			Level: slog.LevelDebug, // the file always gets everything
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String(a.Key, a.Value.Time().Format("2006-01-02 15:04:05.000"))
				}
				return a
			},
		}).WithAttrs([]slog.Attr{slog.String("run", splog.runID)})
		handlers = append(handlers, fileHandler)
	}

	splog.logger = slog.New(&fanoutHandler{handlers: handlers})
	return splog, nil
}

// RunID identifies this invocation in the log file
func (s *Splog) RunID() string {
	return s.runID
}

// SetQuiet suppresses console output while quiet is true
func (s *Splog) SetQuiet(quiet bool) {
	s.quiet = quiet
}

func (s *Splog) log(level slog.Level, prefix, format string, args ...interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	s.logger.Log(context.Background(), level, prefix+msg)
}

// Info writes an info message
func (s *Splog) Info(format string, args ...interface{}) {
	s.log(slog.LevelInfo, "", format, args...)
}

// Warn writes a warning message
func (s *Splog) Warn(format string, args ...interface{}) {
	s.log(slog.LevelWarn, "⚠️  ", format, args...)
}

// Error writes an error message
func (s *Splog) Error(format string, args ...interface{}) {
	s.log(slog.LevelError, "❌ ", format, args...)
}

// Debug writes a message shown only with DEBUG set; the log file always records it
func (s *Splog) Debug(format string, args ...interface{}) {
	s.log(slog.LevelDebug, "", format, args...)
}

// Tip writes a tip message
func (s *Splog) Tip(format string, args ...interface{}) {
	s.log(slog.LevelInfo, "💡 ", format, args...)
}

// Success writes a message prefixed with a check mark
func (s *Splog) Success(format string, args ...interface{}) {
	s.log(slog.LevelInfo, ColorGreen("✓")+" ", format, args...)
}

// Page writes raw content
func (s *Splog) Page(content string) {
	if s.quiet {
		return
	}
	_, _ = fmt.Fprint(s.writer, content)
}

// Newline writes a newline
func (s *Splog) Newline() {
	if s.quiet {
		return
	}
	_, _ = fmt.Fprintln(s.writer)
}

// Close closes the log file if one was opened
func (s *Splog) Close() error {
	if s.logWriter != nil {
		return s.logWriter.Close()
	}
	return nil
}
