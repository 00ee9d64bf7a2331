// Package metrics provides build and preview metrics for studysite.
//
// Components receive a Recorder through dependency injection. The default is
// NoopRecorder, so callers never need nil checks:
//
//	builder := site.NewBuilder(cfg) // records nothing
//	builder.WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// The preview server exposes the registry of a PrometheusRecorder at the
// configured metrics path.
package metrics
