// Package metrics publishes per-run collection metrics to a Prometheus
// Pushgateway.
//
// The collector is a batch process that exits when a job completes, so
// there is no process to scrape. Each run instead pushes its job outcome,
// per-provider attempt counts, and published record counts, grouped by the
// job's logical date. Pushing is optional and a delivery failure never
// affects the job result.
package metrics
