// Package ssuwire implements the SSU packet codec and MAC framing described
// in the core transport specification §4.A: frame, encrypt, authenticate,
// and parse on-wire UDP datagrams. The codec is pure — it holds no state
// beyond the (session key, MAC key) pair handed to it on each call.
package ssuwire

import "github.com/samber/oops"

// Sentinel errors the session layer above this package type-switches on
// (spec §7: MAC failures and malformed datagrams are recoverable locally,
// never terminal on their own).
var (
	ErrBadMac       = oops.Errorf("ssuwire: MAC verification failed")
	ErrShortPacket  = oops.Errorf("ssuwire: packet shorter than minimum frame size")
	ErrBadTimestamp = oops.Errorf("ssuwire: packet timestamp outside acceptable clock skew")
	ErrDecryptFail  = oops.Errorf("ssuwire: AES-CBC decryption failed")
)

// WrapError attaches an operation label to an underlying ssuwire error.
func WrapError(err error, operation string) error {
	return oops.Wrapf(err, "ssuwire %s failed", operation)
}
