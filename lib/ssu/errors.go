// Package ssu glues the packet codec (lib/ssuwire), the establishment
// manager (lib/establish), and per-peer reassembly (lib/peer) into the
// single-event-loop UDP transport spec §2 and §5 describe: one worker
// reads datagrams, decrypts/parses them, and dispatches strictly in
// per-endpoint arrival order.
package ssu

import "github.com/samber/oops"

var (
	ErrNoSession      = oops.Errorf("ssu: no established session for this peer")
	ErrShortDataFrame = oops.Errorf("ssu: data payload too short to contain a fragment header")
)

// WrapError attaches an operation label to an underlying ssu error.
func WrapError(err error, operation string) error {
	return oops.Wrapf(err, "ssu %s failed", operation)
}
