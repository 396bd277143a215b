package ssuwire

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"net"
	"time"

	i2phmac "github.com/go-i2p/go-i2p/lib/crypto/hmac"
	"github.com/go-i2p/go-i2p/lib/util/time/skew"
	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// Payload types, identified by the low nibble of the plaintext flag byte
// (spec §4.A).
const (
	PayloadSessionRequest   byte = 0
	PayloadSessionCreated   byte = 1
	PayloadSessionConfirmed byte = 2
	PayloadRelayRequest     byte = 3
	PayloadData             byte = 4
	PayloadPeerTest         byte = 5
	PayloadSessionDestroyed byte = 8
)

// MaxTimestampSkew is the maximum tolerated difference between a packet's
// embedded timestamp and the local clock (spec §4.A).
const MaxTimestampSkew = 10 * time.Minute

const (
	ivSize     = 16
	macSize    = 16
	minPacket  = ivSize + macSize + 5 // IV + MAC + 1-byte flag + 4-byte timestamp
	protoVersion uint16 = 0
)

// SessionKey is the AES-256-CBC key used to encrypt/decrypt a packet's
// ciphertext region.
type SessionKey [32]byte

// MacKey is the HMAC-MD5 key used to authenticate a packet.
type MacKey [32]byte

// Encode frames, encrypts and authenticates a plaintext I2NP/handshake
// payload into an on-wire SSU datagram: IV(16) ‖ ciphertext ‖ MAC(16).
//
// remoteIP/remotePort identify the peer the datagram is addressed to (or,
// symmetrically, the peer decoding it is addressed from) — they're folded
// into the MAC per spec §4.A so a datagram can't be replayed at a
// different endpoint.
func Encode(payloadType byte, plaintext []byte, sessionKey SessionKey, macKey MacKey, remoteIP net.IP, remotePort uint16, now time.Time) ([]byte, error) {
	full := make([]byte, 5+len(plaintext))
	full[0] = payloadType & 0x0f
	binary.BigEndian.PutUint32(full[1:5], uint32(now.Unix()))
	copy(full[5:], plaintext)

	padded := pkcs7Pad(full, aes.BlockSize)

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, WrapError(err, "iv generation")
	}

	block, err := aes.NewCipher(sessionKey[:])
	if err != nil {
		return nil, WrapError(err, "aes key setup")
	}
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	mac := macInput(ciphertext, iv, remoteIP, remotePort)
	digest := i2phmac.I2PHMAC(mac, i2phmac.HMACKey(macKey))

	out := make([]byte, 0, ivSize+len(ciphertext)+macSize)
	out = append(out, iv...)
	out = append(out, ciphertext...)
	out = append(out, digest[:]...)
	return out, nil
}

// Decode authenticates and decrypts an on-wire SSU datagram, returning the
// payload type and plaintext (sans the 1-byte flag and 4-byte timestamp).
//
// localIP/localPort are this router's own address, i.e. the values the
// remote peer would have folded into the MAC when it encoded the packet.
func Decode(packet []byte, sessionKey SessionKey, macKey MacKey, localIP net.IP, localPort uint16, now time.Time) (payloadType byte, plaintext []byte, err error) {
	if len(packet) < minPacket {
		log.WithField("len", len(packet)).Debug("ssuwire: short packet")
		return 0, nil, ErrShortPacket
	}

	iv := packet[:ivSize]
	ciphertext := packet[ivSize : len(packet)-macSize]
	gotMac := packet[len(packet)-macSize:]

	mac := macInput(ciphertext, iv, localIP, localPort)
	digest := i2phmac.I2PHMAC(mac, i2phmac.HMACKey(macKey))
	if subtle.ConstantTimeCompare(digest[:], gotMac) != 1 {
		log.Debug("ssuwire: bad MAC")
		return 0, nil, ErrBadMac
	}

	block, err := aes.NewCipher(sessionKey[:])
	if err != nil {
		return 0, nil, WrapError(err, "aes key setup")
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return 0, nil, ErrDecryptFail
	}
	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	full, err := pkcs7Unpad(padded)
	if err != nil {
		return 0, nil, WrapError(err, "pkcs7 unpad")
	}
	if len(full) < 5 {
		return 0, nil, ErrShortPacket
	}

	ts := time.Unix(int64(binary.BigEndian.Uint32(full[1:5])), 0)
	if verr := skew.ValidateTimestampWithSkewAt(ts, MaxTimestampSkew, now); verr != nil {
		log.WithError(verr).Debug("ssuwire: bad timestamp")
		return 0, nil, ErrBadTimestamp
	}

	payloadType = full[0] & 0x0f
	plaintext = append([]byte(nil), full[5:]...)
	return payloadType, plaintext, nil
}

// macInput builds the material HMAC-MD5 authenticates: encrypted payload,
// IV, protocol version, IP bytes, and port, all per spec §4.A.
func macInput(ciphertext, iv []byte, ip net.IP, port uint16) []byte {
	ipBytes := ip.To16()
	if v4 := ip.To4(); v4 != nil {
		ipBytes = v4
	}
	buf := make([]byte, 0, len(ciphertext)+len(iv)+2+len(ipBytes)+2)
	buf = append(buf, ciphertext...)
	buf = append(buf, iv...)
	var verBuf [2]byte
	binary.LittleEndian.PutUint16(verBuf[:], protoVersion)
	buf = append(buf, verBuf[:]...)
	buf = append(buf, ipBytes...)
	var portBuf [2]byte
	binary.LittleEndian.PutUint16(portBuf[:], port)
	buf = append(buf, portBuf[:]...)
	return buf
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - (len(data) % blockSize)
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrDecryptFail
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) || padLen > aes.BlockSize {
		return nil, ErrDecryptFail
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrDecryptFail
		}
	}
	return data[:len(data)-padLen], nil
}
