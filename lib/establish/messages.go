package establish

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"net"

	"github.com/samber/oops"
)

// SessionRequest is the initiator's first handshake message (spec §4.B).
type SessionRequest struct {
	X     [DHKeySize]byte
	BobIP net.IP
}

// SessionCreated is the responder's reply (spec §4.B). Signature is
// encrypted under the DH-derived session key so passive observers can't
// correlate signatures across handshakes.
type SessionCreated struct {
	Y                  [DHKeySize]byte
	AliceIP            net.IP
	AlicePort          uint16
	BobIP              net.IP
	BobPort            uint16
	RelayTag           uint32
	SignedOnTime       uint32
	EncryptedSignature []byte // 40-byte DSA signature, AES-CBC encrypted
}

// SessionConfirmed is the initiator's final handshake message (spec §4.B).
type SessionConfirmed struct {
	IdentityBytes []byte
	SignedOnTime  uint32
	Signature     []byte // 40-byte DSA signature
}

func ipBytes(ip net.IP) []byte {
	if v4 := ip.To4(); v4 != nil {
		return v4
	}
	return ip.To16()
}

// canonicalSignedMaterial builds the byte string both SessionCreated's and
// SessionConfirmed's DSA signatures cover (spec §4.B): X ‖ Y ‖ Alice_IP ‖
// Alice_port ‖ Bob_IP ‖ Bob_port ‖ relay_tag ‖ signed_on_time.
func canonicalSignedMaterial(x, y [DHKeySize]byte, aliceIP net.IP, alicePort uint16, bobIP net.IP, bobPort uint16, relayTag, signedOnTime uint32) []byte {
	buf := make([]byte, 0, DHKeySize*2+32)
	buf = append(buf, x[:]...)
	buf = append(buf, y[:]...)
	buf = append(buf, ipBytes(aliceIP)...)
	buf = appendUint16(buf, alicePort)
	buf = append(buf, ipBytes(bobIP)...)
	buf = appendUint16(buf, bobPort)
	buf = appendUint32(buf, relayTag)
	buf = appendUint32(buf, signedOnTime)
	return buf
}

func appendUint16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

// MarshalBinary encodes the SessionRequest plaintext payload.
func (m SessionRequest) MarshalBinary() []byte {
	ip := ipBytes(m.BobIP)
	out := make([]byte, 0, DHKeySize+1+len(ip))
	out = append(out, m.X[:]...)
	out = append(out, byte(len(ip)))
	out = append(out, ip...)
	return out
}

func UnmarshalSessionRequest(data []byte) (SessionRequest, error) {
	var m SessionRequest
	if len(data) < DHKeySize+1 {
		return m, oops.Errorf("establish: SessionRequest too short")
	}
	copy(m.X[:], data[:DHKeySize])
	ipLen := int(data[DHKeySize])
	if len(data) < DHKeySize+1+ipLen {
		return m, oops.Errorf("establish: SessionRequest IP truncated")
	}
	m.BobIP = net.IP(append([]byte(nil), data[DHKeySize+1:DHKeySize+1+ipLen]...))
	return m, nil
}

// MarshalBinary encodes the SessionCreated plaintext payload.
func (m SessionCreated) MarshalBinary() []byte {
	aip := ipBytes(m.AliceIP)
	bip := ipBytes(m.BobIP)
	out := make([]byte, 0, DHKeySize+1+len(aip)+2+1+len(bip)+2+4+4+2+len(m.EncryptedSignature))
	out = append(out, m.Y[:]...)
	out = append(out, byte(len(aip)))
	out = append(out, aip...)
	out = appendUint16(out, m.AlicePort)
	out = append(out, byte(len(bip)))
	out = append(out, bip...)
	out = appendUint16(out, m.BobPort)
	out = appendUint32(out, m.RelayTag)
	out = appendUint32(out, m.SignedOnTime)
	out = appendUint16(out, uint16(len(m.EncryptedSignature)))
	out = append(out, m.EncryptedSignature...)
	return out
}

func UnmarshalSessionCreated(data []byte) (SessionCreated, error) {
	var m SessionCreated
	if len(data) < DHKeySize+1 {
		return m, oops.Errorf("establish: SessionCreated too short")
	}
	copy(m.Y[:], data[:DHKeySize])
	off := DHKeySize

	aLen := int(data[off])
	off++
	if len(data) < off+aLen+2 {
		return m, oops.Errorf("establish: SessionCreated alice IP truncated")
	}
	m.AliceIP = net.IP(append([]byte(nil), data[off:off+aLen]...))
	off += aLen
	m.AlicePort = binary.BigEndian.Uint16(data[off : off+2])
	off += 2

	if len(data) < off+1 {
		return m, oops.Errorf("establish: SessionCreated truncated")
	}
	bLen := int(data[off])
	off++
	if len(data) < off+bLen+2+4+4+2 {
		return m, oops.Errorf("establish: SessionCreated bob section truncated")
	}
	m.BobIP = net.IP(append([]byte(nil), data[off:off+bLen]...))
	off += bLen
	m.BobPort = binary.BigEndian.Uint16(data[off : off+2])
	off += 2
	m.RelayTag = binary.BigEndian.Uint32(data[off : off+4])
	off += 4
	m.SignedOnTime = binary.BigEndian.Uint32(data[off : off+4])
	off += 4
	sigLen := int(binary.BigEndian.Uint16(data[off : off+2]))
	off += 2
	if len(data) < off+sigLen {
		return m, oops.Errorf("establish: SessionCreated signature truncated")
	}
	m.EncryptedSignature = append([]byte(nil), data[off:off+sigLen]...)
	return m, nil
}

// MarshalBinary encodes the SessionConfirmed plaintext payload.
func (m SessionConfirmed) MarshalBinary() []byte {
	out := make([]byte, 0, 2+len(m.IdentityBytes)+4+2+len(m.Signature))
	out = appendUint16(out, uint16(len(m.IdentityBytes)))
	out = append(out, m.IdentityBytes...)
	out = appendUint32(out, m.SignedOnTime)
	out = appendUint16(out, uint16(len(m.Signature)))
	out = append(out, m.Signature...)
	return out
}

func UnmarshalSessionConfirmed(data []byte) (SessionConfirmed, error) {
	var m SessionConfirmed
	if len(data) < 2 {
		return m, oops.Errorf("establish: SessionConfirmed too short")
	}
	idLen := int(binary.BigEndian.Uint16(data[:2]))
	off := 2
	if len(data) < off+idLen+4+2 {
		return m, oops.Errorf("establish: SessionConfirmed identity truncated")
	}
	m.IdentityBytes = append([]byte(nil), data[off:off+idLen]...)
	off += idLen
	m.SignedOnTime = binary.BigEndian.Uint32(data[off : off+4])
	off += 4
	sigLen := int(binary.BigEndian.Uint16(data[off : off+2]))
	off += 2
	if len(data) < off+sigLen {
		return m, oops.Errorf("establish: SessionConfirmed signature truncated")
	}
	m.Signature = append([]byte(nil), data[off:off+sigLen]...)
	return m, nil
}

// encryptSignature AES-CBC encrypts a 40-byte DSA signature under the
// DH-derived session key so passive observers can't correlate signatures
// across handshakes (spec §4.B). The IV is zero because this ciphertext
// is never reused across packets or keys: each handshake derives a fresh
// session key before this runs.
func encryptSignature(sessionKey [32]byte, sig []byte) ([]byte, error) {
	block, err := aes.NewCipher(sessionKey[:])
	if err != nil {
		return nil, oops.Wrapf(err, "establish: signature cipher setup")
	}
	padded := pkcs7Pad(sig, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, make([]byte, aes.BlockSize)).CryptBlocks(out, padded)
	return out, nil
}

func decryptSignature(sessionKey [32]byte, enc []byte) ([]byte, error) {
	if len(enc) == 0 || len(enc)%aes.BlockSize != 0 {
		return nil, oops.Errorf("establish: malformed encrypted signature")
	}
	block, err := aes.NewCipher(sessionKey[:])
	if err != nil {
		return nil, oops.Wrapf(err, "establish: signature cipher setup")
	}
	padded := make([]byte, len(enc))
	cipher.NewCBCDecrypter(block, make([]byte, aes.BlockSize)).CryptBlocks(padded, enc)
	return pkcs7Unpad(padded)
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
		return nil, oops.Errorf("establish: empty padded data")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) || padLen > aes.BlockSize {
		return nil, oops.Errorf("establish: bad pkcs7 padding")
	}
	return data[:len(data)-padLen], nil
}
