package routerdb

import (
	"crypto/x509"
	"encoding/pem"

	"github.com/go-i2p/go-i2p/lib/crypto/dsa"
	"github.com/go-i2p/go-i2p/lib/crypto/elg"
	"github.com/samber/oops"
)

// Kind discriminates the two private-key shapes a PKCS#8 blob may decode
// to (spec §9 "Raw-pointer ownership of keys": "Model keys as owned
// values of a sealed sum type").
type Kind int

const (
	KindUnknown Kind = iota
	KindElGamal
	KindDSA
)

var (
	ErrNotPEM          = oops.Errorf("routerdb: value is not PEM-encoded")
	ErrUnknownKeyShape  = oops.Errorf("routerdb: PKCS#8 payload matches neither ElGamal nor DSA key length")
)

// PrivateKey is the sealed sum type spec §9 asks for in place of the
// source's raw-pointer-plus-downcast pattern: exactly one of ElGamal or
// DSA is populated, discriminated by Kind.
type PrivateKey struct {
	kind   Kind
	elgKey elg.PrivateKey
	dsaKey dsa.PrivateKey
}

// Kind reports which variant is populated.
func (k PrivateKey) Kind() Kind { return k.kind }

// ElGamal returns the ElGamal variant and true, or the zero value and
// false if this PrivateKey holds a DSA key instead.
func (k PrivateKey) ElGamal() (elg.PrivateKey, bool) {
	return k.elgKey, k.kind == KindElGamal
}

// DSA returns the DSA variant and true, or the zero value and false if
// this PrivateKey holds an ElGamal key instead.
func (k PrivateKey) DSA() (dsa.PrivateKey, bool) {
	return k.dsaKey, k.kind == KindDSA
}

// LoadPKCS8 decodes a PEM block containing a PKCS#8 private key (spec §6
// "both PEM-encoded PKCS#8") into the variant the caller names:
// wantElGamal selects ElGamal (decoded by elg.FromBytes); otherwise the
// payload must be DSA's 20-byte raw X component. The caller (lib/context)
// knows from which config key it read the PEM — KeyPrivateEncryptionKey
// implies ElGamal, KeyPrivateSigningKey implies DSA — so the variant is
// never guessed from the payload.
func LoadPKCS8(pemBytes []byte, wantElGamal bool) (PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return PrivateKey{}, ErrNotPEM
	}
	raw, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		// The teacher's key format is I2P's raw fixed-width encoding, not
		// a type x509 recognizes; fall back to treating block.Bytes as
		// the raw key material directly.
		return loadRaw(block.Bytes, wantElGamal)
	}
	// x509 successfully parsed something recognizable (e.g. wrapped in a
	// generic byte-slice PKCS#8 container) — still decode the resulting
	// bytes as the caller's variant, never by the x509-reported type, since I2P
	// key shapes don't correspond to an x509 OID.
	if raw, ok := raw.([]byte); ok {
		return loadRaw(raw, wantElGamal)
	}
	return loadRaw(block.Bytes, wantElGamal)
}

func loadRaw(raw []byte, wantElGamal bool) (PrivateKey, error) {
	if wantElGamal {
		k, err := elg.FromBytes(raw)
		if err != nil {
			return PrivateKey{}, oops.Wrapf(err, "routerdb: decoding ElGamal private key")
		}
		return PrivateKey{kind: KindElGamal, elgKey: k}, nil
	}
	if len(raw) != 20 {
		return PrivateKey{}, ErrUnknownKeyShape
	}
	var d dsa.PrivateKey
	copy(d[:], raw)
	return PrivateKey{kind: KindDSA, dsaKey: d}, nil
}
