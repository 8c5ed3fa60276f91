package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stepDuration *prom.HistogramVec
	stepResults  *prom.CounterVec
	fetchedBytes prom.Counter
	cacheLookups *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the collectors on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stepDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "jarmonbuild",
			Name:      "step_duration_seconds",
			Help:      "Duration of build steps",
			Buckets:   prom.DefBuckets,
		}, []string{"step"}),
		stepResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "jarmonbuild",
			Name:      "step_results_total",
			Help:      "Step result counts by outcome",
		}, []string{"step", "result"}),
		fetchedBytes: prom.NewCounter(prom.CounterOpts{
			Namespace: "jarmonbuild",
			Name:      "fetched_bytes_total",
			Help:      "Bytes streamed by the fetcher, from network or cache",
		}),
		cacheLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "jarmonbuild",
			Name:      "fetch_cache_lookups_total",
			Help:      "Fetch cache lookups by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.stepDuration, pr.stepResults, pr.fetchedBytes, pr.cacheLookups)
	return pr
}

func (p *PrometheusRecorder) ObserveStepDuration(step string, d time.Duration) {
	if p == nil || p.stepDuration == nil {
		return
	}
	p.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStepResult(step string, result ResultLabel) {
	if p == nil || p.stepResults == nil {
		return
	}
	p.stepResults.WithLabelValues(step, string(result)).Inc()
}

func (p *PrometheusRecorder) AddFetchedBytes(n int64) {
	if p == nil || p.fetchedBytes == nil || n <= 0 {
		return
	}
	p.fetchedBytes.Add(float64(n))
}

func (p *PrometheusRecorder) IncCacheLookup(hit bool) {
	if p == nil || p.cacheLookups == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.cacheLookups.WithLabelValues(res).Inc()
}

// WriteTextfile writes everything gathered from g to path in the text
// exposition format. The file is replaced atomically.
func WriteTextfile(path string, g prom.Gatherer) error {
	return prom.WriteToTextfile(path, g)
}
