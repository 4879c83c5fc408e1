package domain

import "errors"

var (
	// ErrInvalidArgument is fatal to the single call and returned to the caller.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUpstreamUnavailable marks store, cache or enrichment failures.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrDataInconsistency marks malformed persisted state (negative counters etc).
	// It is clamped and logged, never returned to API callers.
	ErrDataInconsistency = errors.New("data inconsistency")

	ErrNotFound = errors.New("not found")
)
