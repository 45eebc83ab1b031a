package wizard

import (
	"context"
	"log/slog"
	"time"

	"github.com/amp-labs/amp-wizard/logger"
)

// Logger provides logging hooks for a run.
type Logger interface {
	RunStarted(ctx context.Context, name string, fields int)
	RunFinished(ctx context.Context, name string, outcome Outcome, duration time.Duration, err error)
	StepShown(ctx context.Context, path string, current, total int)
	StepSkipped(ctx context.Context, path string, reason SkipReason)
	StepAnswered(ctx context.Context, path string, duration time.Duration)
	StepRewound(ctx context.Context, from, to string)
}

// DefaultLogger implements Logger using slog. The run's run_id and wizard
// name travel in the context, so every record carries them.
type DefaultLogger struct {
	base *slog.Logger
}

// NewDefaultLogger creates a logger that writes through logger.Get.
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{}
}

// NewSlogLogger creates a logger that writes to base instead of the default
// logger, e.g. a per-test logger.
func NewSlogLogger(base *slog.Logger) *DefaultLogger {
	return &DefaultLogger{base: base}
}

func (l *DefaultLogger) get(ctx context.Context) *slog.Logger {
	if l.base == nil {
		return logger.Get(ctx)
	}

	return logger.Enrich(ctx, l.base)
}

func (l *DefaultLogger) RunStarted(ctx context.Context, name string, fields int) {
	l.get(ctx).InfoContext(ctx, "Wizard started", "fields", fields)
}

func (l *DefaultLogger) RunFinished(
	ctx context.Context, name string, outcome Outcome, duration time.Duration, err error,
) {
	fields := []any{
		"outcome", string(outcome),
		"duration_ms", duration.Milliseconds(),
	}

	if err != nil {
		l.get(ctx).ErrorContext(ctx, "Wizard failed", append(fields, "error", err)...)

		return
	}

	l.get(ctx).InfoContext(ctx, "Wizard finished", fields...)
}

func (l *DefaultLogger) StepShown(ctx context.Context, path string, current, total int) {
	l.get(ctx).DebugContext(ctx, "Step shown",
		"field", path,
		"step", current,
		"total", total,
	)
}

func (l *DefaultLogger) StepSkipped(ctx context.Context, path string, reason SkipReason) {
	l.get(ctx).DebugContext(ctx, "Step skipped",
		"field", path,
		"reason", string(reason),
	)
}

func (l *DefaultLogger) StepAnswered(ctx context.Context, path string, duration time.Duration) {
	l.get(ctx).DebugContext(ctx, "Step answered",
		"field", path,
		"duration_ms", duration.Milliseconds(),
	)
}

func (l *DefaultLogger) StepRewound(ctx context.Context, from, to string) {
	l.get(ctx).InfoContext(ctx, "Step rewound",
		"from", from,
		"to", to,
	)
}

// noopLogger discards everything.
type noopLogger struct{}

func (noopLogger) RunStarted(context.Context, string, int) {}
func (noopLogger) RunFinished(context.Context, string, Outcome, time.Duration, error) {}
func (noopLogger) StepShown(context.Context, string, int, int) {}
func (noopLogger) StepSkipped(context.Context, string, SkipReason) {}
func (noopLogger) StepAnswered(context.Context, string, time.Duration) {}
func (noopLogger) StepRewound(context.Context, string, string) {}
