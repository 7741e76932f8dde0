// Package cli implements the gremlin command-line interface.
//
// This package provides an interactive search browser for npm packages, a
// one-shot search command and configuration inspection. The CLI is built
// using cobra and bubbletea and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - browse: Search npm packages interactively as you type
//   - search: Run a single search and print a table or JSON
//   - config: Show the effective configuration and its file location
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// surfaces request lifecycle events. Loggers are passed through
// context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at debug level with the elapsed time, e.g. "Found 25 packages (312ms)".
func (p *progress) done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks implements observability.FetchHooks and observability.HTTPHooks
// on top of a logger.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnTrigger(_ context.Context, id, method, target string) {
	h.logger.Debug("Search triggered", "id", id, "method", method, "url", target)
}

func (h *logHooks) OnPublish(_ context.Context, id, phase string, d time.Duration) {
	h.logger.Debug("Search settled", "id", id, "phase", phase, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnDiscard(_ context.Context, id, reason string) {
	h.logger.Debug("Search discarded", "id", id, "reason", reason)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("HTTP request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("HTTP response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("HTTP error", "method", method, "host", host, "path", path, "err", err)
}
