package provider

import (
	"errors"
	"fmt"
)

// FetchErrorKind classifies a failed fetch. Every kind is transient from the
// caller's point of view; the retry loop treats them uniformly, the
// classification exists for logs and post-hoc diagnosis.
type FetchErrorKind string

// Fetch failure classes
const (
	FetchErrAuth      FetchErrorKind = "auth"      // Credential rejected or expired
	FetchErrThrottled FetchErrorKind = "throttled" // Rate limit / 429
	FetchErrNetwork   FetchErrorKind = "network"   // Transport-level failure
	FetchErrMalformed FetchErrorKind = "malformed" // Unexpected response shape or invalid rows
)

// FetchError is the only error type a CostFetcher returns. It carries the
// provider it came from and a kind so a failed CollectionJob can be
// reconstructed from logs alone.
type FetchError struct {
	Provider ProviderType
	Kind     FetchErrorKind
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError wraps err as a classified fetch failure
func NewFetchError(p ProviderType, kind FetchErrorKind, err error) *FetchError {
	return &FetchError{Provider: p, Kind: kind, Err: err}
}

// AsFetchError extracts a *FetchError from an error chain
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
