package observability

import (
	"context"
	"io"
	"log/slog"

	"github.com/jarmon/jarmonbuild/internal/logfields"
)

// Reporter is the narrow logging capability handed to build steps at
// construction. *slog.Logger satisfies it.
type Reporter interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// NewReporter returns a Reporter that tags every record with the build ID.
func NewReporter(logger *slog.Logger, buildID string) Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if buildID == "" {
		return logger
	}
	return logger.With(logfields.BuildID(buildID))
}

// Discard returns a Reporter that drops everything.
func Discard() Reporter {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ForStep scopes r to a single step.
func ForStep(r Reporter, step string) Reporter {
	if r == nil {
		return Discard()
	}
	if l, ok := r.(*slog.Logger); ok {
		return l.With(logfields.Step(step))
	}
	return &scoped{parent: r, args: []any{logfields.Step(step)}}
}

type scoped struct {
	parent Reporter
	args   []any
}

func (s *scoped) Debug(msg string, args ...any) {
	s.parent.Debug(msg, append(append([]any{}, s.args...), args...)...)
}

func (s *scoped) Info(msg string, args ...any) {
	s.parent.Info(msg, append(append([]any{}, s.args...), args...)...)
}

// LogContext holds structured logging context information.
type LogContext struct {
	BuildID string
	Step    string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithBuildID adds a build ID to the context.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	lc := extractLogContext(ctx)
	lc.BuildID = buildID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStep adds a step name to the context.
func WithStep(ctx context.Context, step string) context.Context {
	lc := extractLogContext(ctx)
	lc.Step = step
	return context.WithValue(ctx, logContextKey, lc)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// GetContext returns the structured log context from the provided context.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}
