package metrics

import (
	"testing"
	"time"
)

type testRecorder struct {
	stepDurations map[string]int
	stepResults   map[string]map[ResultLabel]int
	bytes         int64
	hits, misses  int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{stepDurations: map[string]int{}, stepResults: map[string]map[ResultLabel]int{}}
}

func (t *testRecorder) ObserveStepDuration(step string, _ time.Duration) {
	t.stepDurations[step]++
}

func (t *testRecorder) IncStepResult(step string, result ResultLabel) {
	m, ok := t.stepResults[step]
	if !ok {
		m = map[ResultLabel]int{}
		t.stepResults[step] = m
	}
	m[result]++
}

func (t *testRecorder) AddFetchedBytes(n int64) { t.bytes += n }

func (t *testRecorder) IncCacheLookup(hit bool) {
	if hit {
		t.hits++
		return
	}
	t.misses++
}

func TestRecorderInterfaceSatisfied(t *testing.T) {
	var _ Recorder = NoopRecorder{}
	var _ Recorder = (*PrometheusRecorder)(nil)
	var _ Recorder = newTestRecorder()
}

func TestTestRecorderCounts(t *testing.T) {
	r := newTestRecorder()
	r.ObserveStepDuration("apidocs", time.Second)
	r.IncStepResult("apidocs", ResultSuccess)
	r.IncStepResult("apidocs", ResultFailed)
	r.AddFetchedBytes(10)
	r.IncCacheLookup(true)
	r.IncCacheLookup(false)

	if r.stepDurations["apidocs"] != 1 {
		t.Fatalf("expected one duration, got %d", r.stepDurations["apidocs"])
	}
	if r.stepResults["apidocs"][ResultSuccess] != 1 || r.stepResults["apidocs"][ResultFailed] != 1 {
		t.Fatalf("unexpected results %+v", r.stepResults)
	}
	if r.bytes != 10 || r.hits != 1 || r.misses != 1 {
		t.Fatalf("unexpected fetch counters bytes=%d hits=%d misses=%d", r.bytes, r.hits, r.misses)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStepDuration("x", time.Millisecond)
	r.IncStepResult("x", ResultSuccess)
	r.AddFetchedBytes(1)
	r.IncCacheLookup(true)
}
