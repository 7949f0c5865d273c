// Package metrics provides runtime.Observer implementations that export
// scheduler activity: a Prometheus collector and an OpenTelemetry tracer.
//
// Both can be installed on one scheduler with runtime.Observers:
//
//	reg := prometheus.NewRegistry()
//	sched := runtime.NewScheduler(loop, runtime.WithObserver(runtime.Observers(
//	    metrics.NewCollector(metrics.WithRegistry(reg)),
//	    metrics.NewTracer(),
//	)))
package metrics
