package usecase

import "errors"

// Sentinel errors returned by the services. The HTTP layer maps these to
// response codes; everything else surfaces as an internal error.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrDataUnavailable       = errors.New("source data unavailable")
	ErrComputeFailure        = errors.New("artifact computation failed")
	ErrTimeout               = errors.New("artifact computation timed out")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
