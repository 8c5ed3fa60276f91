package steps

import (
	"context"
	"time"

	"github.com/jarmon/jarmonbuild/internal/build"
	"github.com/jarmon/jarmonbuild/internal/logfields"
	"github.com/jarmon/jarmonbuild/internal/metrics"
	"github.com/jarmon/jarmonbuild/internal/observability"
)

// Middleware wraps a step with a cross-cutting concern.
type Middleware func(Step) Step

// Chain applies middlewares so the first one runs outermost.
func Chain(s Step, middlewares ...Middleware) Step {
	for i := len(middlewares) - 1; i >= 0; i-- {
		s = middlewares[i](s)
	}
	return s
}

// wrapped delegates everything but Run to the inner step.
type wrapped struct {
	Step
	run func(ctx context.Context, bc build.Context) error
}

func (w *wrapped) Run(ctx context.Context, bc build.Context) error { return w.run(ctx, bc) }

// Timing records step duration and result.
func Timing(rec metrics.Recorder) Middleware {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return func(s Step) Step {
		return &wrapped{Step: s, run: func(ctx context.Context, bc build.Context) error {
			start := time.Now()
			err := s.Run(ctx, bc)
			rec.ObserveStepDuration(string(s.ID()), time.Since(start))
			result := metrics.ResultSuccess
			if err != nil {
				result = metrics.ResultFailed
			}
			rec.IncStepResult(string(s.ID()), result)
			return err
		}}
	}
}

// Logging narrates the start and end of a step.
func Logging(r observability.Reporter) Middleware {
	if r == nil {
		r = observability.Discard()
	}
	return func(s Step) Step {
		return &wrapped{Step: s, run: func(ctx context.Context, bc build.Context) error {
			ctx = observability.WithStep(ctx, string(s.ID()))
			r.Info("Starting step", logfields.Step(string(s.ID())), logfields.Version(bc.Version()))
			start := time.Now()
			err := s.Run(ctx, bc)
			if err != nil {
				r.Debug("Step failed", logfields.Step(string(s.ID())), logfields.Error(err))
				return err
			}
			r.Info("Step completed",
				logfields.Step(string(s.ID())),
				logfields.DurationMS(float64(time.Since(start).Milliseconds())))
			return nil
		}}
	}
}
