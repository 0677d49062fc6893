package domain

import "errors"

var (
	// ErrInvalidIndicator is returned when an indicator code cannot be a
	// World Bank series identifier.
	ErrInvalidIndicator = errors.New("invalid indicator code")

	// ErrInvalidYearRange is returned when a year range starts after it ends.
	ErrInvalidYearRange = errors.New("invalid year range")

	// ErrUpstream wraps failures reported by the statistical API itself.
	ErrUpstream = errors.New("upstream api error")

	// ErrMalformedResponse marks a response body that does not have the
	// expected envelope shape.
	ErrMalformedResponse = errors.New("malformed upstream response")
)
