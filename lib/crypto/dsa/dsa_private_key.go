package dsa

import (
	gdsa "crypto/dsa"
	"crypto/rand"
	"crypto/sha1"
	"math/big"

	"github.com/samber/oops"
)

// PrivateKey is a 20-byte I2P DSA signing private key (the raw X component).
type PrivateKey [20]byte

// PublicKey is a 128-byte I2P DSA signing public key (the raw Y component).
type PublicKey [128]byte

var (
	ErrInvalidKeyFormat = oops.Errorf("invalid DSA key format")
	ErrBadSignatureSize = oops.Errorf("bad DSA signature size")
	ErrInvalidSignature = oops.Errorf("invalid DSA signature")
)

// Public derives the public component of this private key.
func (k PrivateKey) Public() (pk PublicKey, err error) {
	p := createDSAPrivkey(new(big.Int).SetBytes(k[:]))
	if p == nil {
		log.Error("invalid DSA private key format")
		return pk, ErrInvalidKeyFormat
	}
	yBytes := p.Y.Bytes()
	copy(pk[128-len(yBytes):], yBytes)
	return pk, nil
}

// Generate creates a new random I2P DSA private key.
func Generate() (PrivateKey, error) {
	var k PrivateKey
	dk := new(gdsa.PrivateKey)
	if err := generateDSA(dk, rand.Reader); err != nil {
		return k, err
	}
	xBytes := dk.X.Bytes()
	copy(k[20-len(xBytes):], xBytes)
	return k, nil
}

// Sign signs data with this private key, hashing it with SHA-1 first
// (the hash I2P's DSA signatures have always used).
func (k PrivateKey) Sign(data []byte) ([]byte, error) {
	h := sha1.Sum(data)
	return k.SignHash(h[:])
}

// SignHash signs a pre-hashed 20-byte digest, returning the fixed 40-byte
// (r ‖ s) signature I2P uses on the wire.
func (k PrivateKey) SignHash(h []byte) ([]byte, error) {
	priv := createDSAPrivkey(new(big.Int).SetBytes(k[:]))
	if priv == nil {
		return nil, ErrInvalidKeyFormat
	}
	r, s, err := gdsa.Sign(rand.Reader, priv, h)
	if err != nil {
		log.WithError(err).Error("failed to create DSA signature")
		return nil, err
	}
	sig := make([]byte, 40)
	rb := r.Bytes()
	copy(sig[20-len(rb):20], rb)
	sb := s.Bytes()
	copy(sig[40-len(sb):], sb)
	return sig, nil
}
