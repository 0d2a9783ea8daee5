package completion

import "errors"

var (
	// ErrSerialization indicates request parameters or a cached payload
	// could not be canonically (de)serialized.
	ErrSerialization = errors.New("completion: serialization failed")

	// ErrUpstreamCall indicates the upstream call failed after the
	// retry policy was exhausted.
	ErrUpstreamCall = errors.New("completion: upstream call failed")

	// ErrUnsupportedResult indicates extraction was attempted on a
	// result matching no known variant or with zero choices.
	ErrUnsupportedResult = errors.New("completion: unsupported result")

	// ErrSchemaValidation indicates a cached structured choice no
	// longer conforms to the request's response schema.
	ErrSchemaValidation = errors.New("completion: schema validation failed")

	// ErrNilCaller indicates the gateway was constructed without an
	// upstream caller.
	ErrNilCaller = errors.New("completion: upstream caller is required")
)
