package bucketfront

import "errors"

var (
	// ErrNotFound is returned when neither the requested key nor any fallback candidate exists
	ErrNotFound = errors.New("not found")
	// ErrSigning is returned when the storage backend fails to sign an access URL
	ErrSigning = errors.New("upstream signing error")
	// ErrUpstreamFetch is returned when storage cannot be reached or probed
	ErrUpstreamFetch = errors.New("upstream fetch error")
	// ErrTimeout is joined with ErrSigning or ErrUpstreamFetch when a deadline expires
	ErrTimeout = errors.New("upstream timeout")
	// ErrResponseBuild is returned when the outgoing response cannot be constructed
	ErrResponseBuild = errors.New("response build error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
