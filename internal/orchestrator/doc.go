// Package orchestrator coordinates one collection job across all enabled
// cloud providers.
//
// Every pipeline runs concurrently and always runs to its own terminal
// state; a failing provider never short-circuits the others. A pipeline
// that fetches successfully publishes its snapshot immediately, without
// waiting for the remaining providers. The job outcome aggregates the
// per-provider results:
//
//   - SUCCESS: every pipeline fetched and published
//   - PARTIAL: at least one pipeline succeeded, at least one did not
//   - FAILURE: no pipeline succeeded
//
// Job.ExitCode returns 0 only for SUCCESS, so cron or any other external
// scheduler can alert on anything less than a fully clean run.
package orchestrator
