package dsa

// Bytes returns the raw 128-byte Y component of this public key.
func (k PublicKey) Bytes() []byte {
	return k[:]
}

// Len returns the length in bytes of this public key.
func (k PublicKey) Len() int {
	return len(k)
}

// Len returns the length in bytes of this private key.
func (k PrivateKey) Len() int {
	return len(k)
}
