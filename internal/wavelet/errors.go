package wavelet

import "errors"

var (
	// ErrInvalidArgument is returned when data or a transform has the wrong
	// shape or variant for the requested operation.
	ErrInvalidArgument = errors.New("wavelet: invalid argument")

	// ErrUnsupported is returned by the continuous transform stub.
	ErrUnsupported = errors.New("wavelet: unsupported operation")
)
