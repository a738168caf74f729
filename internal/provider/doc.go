// Package provider defines the cloud provider abstraction layer.
//
// This package provides a generic interface for pulling cost data from
// different cloud billing APIs (AWS Cost Explorer, Azure Cost Management).
// It allows the collection pipeline to treat each provider as an opaque
// fetch function without knowing its auth or pagination details.
//
// The CostFetcher interface must be implemented by each cloud-specific package:
//
//	type CostFetcher interface {
//		Fetch(ctx context.Context, tf Timeframe, gran Granularity) ([]CostRecord, error)
//		Name() ProviderType
//	}
//
// Fetchers are pure fetch-or-fail: they carry no retry logic, and a failure
// mid-pagination fails the entire call rather than returning a partial row
// set. Every error returned is a *FetchError classified as auth, throttled,
// network or malformed, so the retry layer and the logs can tell failure
// modes apart.
//
// The CostRecord structure is the normalized record shape shared by all
// providers and by the published snapshots:
//
//   - Provider, Service, Account, PeriodStart, PeriodEnd, Amount, Currency
//   - Tags (optional provider tag groupings, e.g. the "project" tag)
//
// Records are validated before publication: a negative amount or an
// inverted period is a normalization failure, never silently coerced.
package provider
