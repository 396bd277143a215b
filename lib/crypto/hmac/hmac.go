package hmac

import (
	"crypto/md5"
)

type (
	HMACKey    [32]byte
	HMACDigest [16]byte
)

// I2PHMAC computes I2P's HMAC-MD5-128: the 32-byte key is zero-padded to the
// 64-byte MD5 block, and the 16-byte inner digest is zero-padded to 32 bytes
// before the outer hash.
func I2PHMAC(data []byte, k HMACKey) HMACDigest {
	var ipad, opad [64]byte
	for i := range ipad {
		ipad[i], opad[i] = 0x36, 0x5c
	}
	for i, b := range k {
		ipad[i] ^= b
		opad[i] ^= b
	}
	inner := md5.Sum(append(ipad[:], data...))
	outer := make([]byte, 96)
	copy(outer, opad[:])
	copy(outer[64:], inner[:])
	return HMACDigest(md5.Sum(outer))
}
