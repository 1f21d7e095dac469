// Package metrics provides observability hooks for newsletter runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check. The daemon swaps in a
// PrometheusRecorder and serves its registry through HTTPHandler.
package metrics
