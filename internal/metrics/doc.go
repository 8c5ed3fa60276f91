// Package metrics records step and fetch metrics for a jarmonbuild invocation.
//
// Components receive a Recorder through their constructors. NoopRecorder is the
// default, so metrics cost nothing unless --metrics-file is given. In that case
// a PrometheusRecorder collects into a private registry and WriteTextfile dumps
// it in the text exposition format understood by the node exporter textfile
// collector:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	...
//	_ = metrics.WriteTextfile(path, reg)
package metrics
