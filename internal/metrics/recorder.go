package metrics

import "time"

// ResultLabel enumerates step result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for step and fetch metrics.
type Recorder interface {
	ObserveStepDuration(step string, d time.Duration)
	IncStepResult(step string, result ResultLabel)
	AddFetchedBytes(n int64)
	IncCacheLookup(hit bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, time.Duration) {}
func (NoopRecorder) IncStepResult(string, ResultLabel)         {}
func (NoopRecorder) AddFetchedBytes(int64)                     {}
func (NoopRecorder) IncCacheLookup(bool)                       {}
