// Package retry implements the bounded fixed-delay retry loop around a
// single provider fetch.
//
// The loop is a small state machine: each attempt either succeeds
// (terminal SUCCESS), or fails and sleeps the fixed delay before the next
// attempt, until MaxAttempts is reached (terminal FAILED). Exactly one
// terminal outcome is produced per run and no error escapes to the caller;
// the orchestrator only ever sees an Outcome.
//
// The delay is deliberately constant rather than exponential. The job runs
// once a day, unattended, and provider billing APIs recover on human-scale
// windows; a flat delay keeps total worst-case runtime predictable
// ((MaxAttempts-1) * Delay) and the policy trivially testable. Swapping in
// a different backoff only touches this package.
package retry
