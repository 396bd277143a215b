package context

import "github.com/samber/oops"

var (
	ErrMissingSigningKey    = oops.Errorf("context: routerdb has no private_signing_key entry")
	ErrMissingEncryptionKey = oops.Errorf("context: routerdb has no private_encryption_key entry")
	ErrWrongKeyKind         = oops.Errorf("context: decoded private key is not the expected kind")
)

// WrapError attaches an operation label to an underlying context error.
func WrapError(err error, operation string) error {
	return oops.Wrapf(err, "context %s failed", operation)
}
