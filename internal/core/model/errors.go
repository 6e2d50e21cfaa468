package model

import "errors"

// Error taxonomy shared across the engine and its collaborators. A private or
// never-played profile is not an error: providers report it with a nil result
// and callers treat that as a valid "no data" outcome.
var (
	// ErrNotConfigured means a required Steam Web API key is missing.
	ErrNotConfigured = errors.New("steam api key not configured")

	// ErrProviderUnavailable means transport failure, a non-200 status or a
	// request that exceeded its deadline.
	ErrProviderUnavailable = errors.New("steam api unavailable")

	// ErrMalformedResponse means the provider answered with an unexpected
	// payload shape.
	ErrMalformedResponse = errors.New("malformed steam api response")
)
