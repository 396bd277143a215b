package dsa

import (
	gdsa "crypto/dsa"
	"crypto/sha1"
	"math/big"

	"github.com/go-i2p/logger"
)

// Verify checks a signature over data, hashing it with SHA-1 first.
func (k PublicKey) Verify(data, sig []byte) error {
	h := sha1.Sum(data)
	return k.VerifyHash(h[:], sig)
}

// VerifyHash checks a signature over a pre-hashed 20-byte digest.
func (k PublicKey) VerifyHash(h, sig []byte) error {
	log.WithFields(logger.Fields{
		"hash_length": len(h),
		"sig_length":  len(sig),
	}).Debug("verifying DSA signature")

	if len(sig) != 40 {
		log.Error("bad DSA signature size")
		return ErrBadSignatureSize
	}

	pub := createDSAPublicKey(new(big.Int).SetBytes(k[:]))
	r := new(big.Int).SetBytes(sig[:20])
	s := new(big.Int).SetBytes(sig[20:])
	if !gdsa.Verify(pub, h, r, s) {
		log.Warn("invalid DSA signature")
		return ErrInvalidSignature
	}
	return nil
}
