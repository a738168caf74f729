// Package snapshot builds and publishes the cost artifacts the dashboard
// reads.
//
// A snapshot is the full normalized record set for one provider and one
// logical date, JSON-encoded with summary metadata (record count, total
// amount, currency). Publication is keyed <prefix>/<provider>/<date>.json
// and is idempotent: republishing the same key replaces the artifact with
// last-writer-wins semantics, never merging.
//
// Publish is a single attempt. Failures are classified (connectivity,
// authorization, serialization, validation) into *PublishError and degrade
// the provider's contribution to the collection job without touching the
// other provider's pipeline.
//
// Read and ListDates form the dashboard reader boundary over the store's
// get/list operations.
package snapshot
