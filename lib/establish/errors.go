package establish

import "github.com/samber/oops"

var (
	ErrUnexpectedPhase    = oops.Errorf("establish: packet received in unexpected phase")
	ErrSignatureFailed    = oops.Errorf("establish: DSA signature verification failed")
	ErrTimeout            = oops.Errorf("establish: handshake deadline exceeded")
	ErrAlreadyEstablishing = oops.Errorf("establish: an establishment with this endpoint is already in progress")
	ErrUnknownEndpoint    = oops.Errorf("establish: no in-progress state for endpoint")
	ErrRateLimited        = oops.Errorf("establish: remote IP exceeded concurrent establishment limit")
)

// WrapError attaches an operation label to an underlying establish error.
func WrapError(err error, operation string) error {
	return oops.Wrapf(err, "establish %s failed", operation)
}
