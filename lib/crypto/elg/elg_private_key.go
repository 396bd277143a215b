// Package elg models the I2P ElGamal private key and its garlic-layer
// decryption, adapted from the teacher's lib/crypto/elg package.
package elg

import (
	"crypto/sha256"
	"crypto/subtle"
	"math/big"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// PrivateKey is a 256-byte I2P ElGamal decryption private key (the raw X
// component, big-endian).
type PrivateKey [256]byte

var ErrInvalidKeyLength = oops.Errorf("elg: private key must be exactly 256 bytes")

// ErrDecryptFailed is returned when an ElGamal ciphertext's embedded digest
// doesn't match, meaning either the key is wrong or the data is corrupt.
var ErrDecryptFailed = oops.Errorf("elg: failed to decrypt data")

// elgp is I2P's 2048-bit ElGamal prime modulus — the well-known RFC 3526
// Group 14 MODP prime that I2P's crypto constants reuse for ElGamal.
var elgp, _ = new(big.Int).SetString(
	"FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E088A67CC74"+
		"020BBEA63B139B22514A08798E3404DDEF9519B3CD3A431B302B0A6DF25F1437"+
		"4FE1356D6D51C245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED"+
		"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3DC2007CB8A163BF05"+
		"98DA48361C55D39A69163FA8FD24CF5F83655D23DCA3AD961C62F356208552BB"+
		"9ED529077096966D670C354E4ABC9804F1746C08CA18217C32905E462E36CE3B"+
		"E39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9DE2BCBF695581718"+
		"3995497CEA956AE515D2261898FA051015728E5A8AACAA68FFFFFFFFFFFFFFFF",
	16,
)

var elgOne = big.NewInt(1)

// FromBytes validates and wraps a raw 256-byte ElGamal private key.
func FromBytes(b []byte) (PrivateKey, error) {
	var k PrivateKey
	if len(b) != len(k) {
		return k, ErrInvalidKeyLength
	}
	copy(k[:], b)
	return k, nil
}

// Bytes returns the raw 256-byte key.
func (k PrivateKey) Bytes() []byte {
	out := make([]byte, len(k))
	copy(out, k[:])
	return out
}

// Decrypt decrypts an I2P-formatted, zero-padded ElGamal ciphertext: a
// 257-byte a-component (leading zero byte + 256-byte big-endian integer)
// followed by a 257-byte b-component, 514 bytes total. This is the wire
// format of a garlic message's outer encrypted layer (spec §4.D Garlic).
//
// On success it returns the 222-byte cleartext block with the leading
// digest and random-padding bytes stripped. Decryption failure (wrong key
// or corrupt data) is reported via ErrDecryptFailed, checked in constant
// time the way the teacher's elgamalDecrypt does.
func (k PrivateKey) Decrypt(data []byte) ([]byte, error) {
	if len(data) != 514 {
		return nil, oops.Errorf("elg: ciphertext must be 514 bytes, got %d", len(data))
	}

	a := new(big.Int).SetBytes(data[1:257])
	b := new(big.Int).SetBytes(data[258:514])
	x := new(big.Int).SetBytes(k[:])

	exp := new(big.Int).Sub(new(big.Int).Sub(elgp, x), elgOne)
	m := new(big.Int).Mod(new(big.Int).Mul(b, new(big.Int).Exp(a, exp, elgp)), elgp).Bytes()

	// big.Int.Bytes() strips leading zeros; restore the fixed 255-byte
	// cleartext layout before slicing the digest/payload at fixed offsets.
	if len(m) < 255 {
		padded := make([]byte, 255)
		copy(padded[255-len(m):], m)
		m = padded
	}

	digest := sha256.Sum256(m[33:255])
	good := subtle.ConstantTimeCompare(digest[:], m[1:33])

	decrypted := make([]byte, 222)
	subtle.ConstantTimeCopy(good, decrypted, m[33:255])
	if good == 0 {
		log.Debug("elg: decryption digest mismatch")
		return nil, ErrDecryptFailed
	}
	return decrypted, nil
}
