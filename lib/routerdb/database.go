// Package routerdb models the external-collaborator database of spec §1
// and §6: a key-value store returning PEM-encoded keys and router
// descriptors. This package defines the narrow interface the core
// consumes, so RouterContext (lib/context) depends on an explicit
// contract rather than a concrete storage engine (spec §9 "Shared
// mutable context"), plus FileDatabase, a minimal file-per-entry
// implementation of it.
package routerdb

import (
	common "github.com/go-i2p/common/data"
)

// Well-known config keys (spec §6 "Database").
const (
	KeyPrivateEncryptionKey = "private_encryption_key"
	KeyPrivateSigningKey    = "private_signing_key"
	// KeyIntroductionKey stores this router's own published 32-byte SSU
	// introduction key (spec §4.B "the responder's introduction key from
	// its published router info") as a raw value, not PEM/PKCS#8.
	KeyIntroductionKey = "ssu_introduction_key"
	// KeyLocalRouterIdentity stores this router's own published
	// RouterIdentity (KeysAndCert wire bytes), the one piece of config
	// cmd/routerd needs before it can construct a RouterContext at all.
	KeyLocalRouterIdentity = "local_router_identity"
)

// Database is the set of operations the core needs from the router
// database (spec §6). Implementations own the storage format;
// FileDatabase in this package keeps one file per entry on disk.
type Database interface {
	GetConfigValue(name string) ([]byte, error)
	SetConfigValue(name string, value []byte) error
	GetRouterInfo(hash common.Hash) ([]byte, error)
	SetRouterInfo(hash common.Hash, info []byte) error
	GetAllHashes() ([]common.Hash, error)
}
