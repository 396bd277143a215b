package peer

import "github.com/samber/oops"

var (
	ErrFragmentOutOfRange  = oops.Errorf("peer: fragment number exceeds last_fragment after got_last")
	ErrNotAssemblable      = oops.Errorf("peer: assemble called before all fragments received")
	ErrTooManyInbound      = oops.Errorf("peer: inbound message state limit exceeded for this peer")
	ErrRetransmitExhausted = oops.Errorf("peer: outbound fragment exhausted retransmit attempts")
)

// WrapError attaches an operation label to an underlying peer error.
func WrapError(err error, operation string) error {
	return oops.Wrapf(err, "peer %s failed", operation)
}
