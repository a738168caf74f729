// Package aws implements the AWS side of the provider abstraction using
// the Cost Explorer API.
//
// The client authenticates with explicit static credentials from the
// configuration, queries cost-and-usage grouped by service and linked
// account (plus one query per configured tag key, mirroring the dashboard's
// tag breakdowns), follows NextPageToken pagination to completion, and
// normalizes the results into provider.CostRecord values.
//
// The client is pure fetch-or-fail: no retries, and a failure on any page
// or sub-query fails the entire Fetch call. API errors are classified into
// the FetchError taxonomy by their Cost Explorer error code (throttling,
// auth) with everything else treated as a transient network failure.
package aws
