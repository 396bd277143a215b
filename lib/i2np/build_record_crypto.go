package i2np

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/go-i2p/common/session_key"
	"github.com/go-i2p/logger"
)

// BuildRecordCrypto encrypts and decrypts tunnel build response records
// with ChaCha20-Poly1305 AEAD (I2P 0.9.44+).
type BuildRecordCrypto struct{}

func NewBuildRecordCrypto() *BuildRecordCrypto {
	return &BuildRecordCrypto{}
}

// EncryptReplyRecord serializes record to its 528-byte cleartext form
// (hash(32) random_data(495) reply(1)) and seals it with replyKey/replyIV,
// producing 544 bytes (ciphertext + 16-byte auth tag). The reply key and IV
// come from the corresponding BuildRequestRecord.
func (c *BuildRecordCrypto) EncryptReplyRecord(
	record BuildResponseRecord,
	replyKey session_key.SessionKey,
	replyIV [16]byte,
) ([]byte, error) {
	cleartext, err := c.serializeResponseRecord(record)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize response record: %w", err)
	}

	encrypted, err := c.encryptChaCha20Poly1305(cleartext, replyKey, replyIV)
	if err != nil {
		return nil, fmt.Errorf("ChaCha20-Poly1305 encryption failed: %w", err)
	}

	log.WithFields(logger.Fields{"encryption": "ChaCha20-Poly1305", "size": len(encrypted)}).
		Debug("encrypted build response record")
	return encrypted, nil
}

// DecryptReplyRecord is EncryptReplyRecord's inverse: it opens a 544-byte
// sealed record, parses the 528-byte cleartext, and verifies its embedded
// hash before returning it.
func (c *BuildRecordCrypto) DecryptReplyRecord(
	encryptedData []byte,
	replyKey session_key.SessionKey,
	replyIV [16]byte,
) (BuildResponseRecord, error) {
	// ChaCha20-Poly1305 AEAD decryption
	// Expected size: 528 bytes plaintext + 16 bytes auth tag = 544 bytes
	if len(encryptedData) != 544 {
		return BuildResponseRecord{}, fmt.Errorf("invalid encrypted data size: expected 544 bytes, got %d", len(encryptedData))
	}

	cleartext, err := c.decryptChaCha20Poly1305(encryptedData, replyKey, replyIV)
	if err != nil {
		return BuildResponseRecord{}, fmt.Errorf("ChaCha20-Poly1305 decryption failed: %w", err)
	}

	if len(cleartext) != 528 {
		return BuildResponseRecord{}, fmt.Errorf("invalid decrypted data size: expected 528 bytes, got %d", len(cleartext))
	}

	record, err := ReadBuildResponseRecord(cleartext)
	if err != nil {
		return BuildResponseRecord{}, fmt.Errorf("failed to parse decrypted record: %w", err)
	}

	if err := c.verifyResponseRecordHash(record); err != nil {
		return BuildResponseRecord{}, fmt.Errorf("hash verification failed: %w", err)
	}

	return record, nil
}

// serializeResponseRecord converts a BuildResponseRecord to its 528-byte
// wire format: hash(32) random_data(495) reply(1).
func (c *BuildRecordCrypto) serializeResponseRecord(record BuildResponseRecord) ([]byte, error) {
	buf := make([]byte, 528)
	copy(buf[0:32], record.Hash[:])
	copy(buf[32:527], record.RandomData[:])
	buf[527] = record.Reply
	return buf, nil
}

// verifyResponseRecordHash checks that record.Hash is the SHA-256 of its
// random data plus reply byte.
func (c *BuildRecordCrypto) verifyResponseRecordHash(record BuildResponseRecord) error {
	data := make([]byte, 495+1)
	copy(data[0:495], record.RandomData[:])
	data[495] = record.Reply

	expectedHash := sha256.Sum256(data)

	// Compare with the hash in the record
	if record.Hash != expectedHash {
		log.WithFields(logger.Fields{
			"expected": fmt.Sprintf("%x", expectedHash[:8]),
			"actual":   fmt.Sprintf("%x", record.Hash[:8]),
		}).Warn("Build response record hash mismatch")
		return fmt.Errorf("hash verification failed")
	}

	return nil
}

// encryptChaCha20Poly1305 seals 528 bytes of plaintext under key, using the
// first 12 bytes of iv as the nonce, producing 544 bytes (ciphertext + tag).
func (c *BuildRecordCrypto) encryptChaCha20Poly1305(
	plaintext []byte,
	key session_key.SessionKey,
	iv [16]byte,
) ([]byte, error) {
	if len(plaintext) != 528 {
		return nil, fmt.Errorf("plaintext must be 528 bytes, got %d", len(plaintext))
	}

	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	ciphertext := aead.Seal(nil, iv[:12], plaintext, nil)
	if len(ciphertext) != 544 {
		return nil, fmt.Errorf("unexpected ciphertext length: %d", len(ciphertext))
	}
	return ciphertext, nil
}

// decryptChaCha20Poly1305 is encryptChaCha20Poly1305's inverse.
func (c *BuildRecordCrypto) decryptChaCha20Poly1305(
	ciphertext []byte,
	key session_key.SessionKey,
	iv [16]byte,
) ([]byte, error) {
	if len(ciphertext) != 544 {
		return nil, fmt.Errorf("ciphertext must be 544 bytes (528 + 16 tag), got %d", len(ciphertext))
	}

	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, iv[:12], ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (authentication error): %w", err)
	}
	if len(plaintext) != 528 {
		return nil, fmt.Errorf("unexpected plaintext length: %d", len(plaintext))
	}
	return plaintext, nil
}

// CreateBuildResponseRecord builds a BuildResponseRecord with its hash
// field computed from randomData and reply, for participants replying to a
// tunnel build request.
func CreateBuildResponseRecord(reply byte, randomData [495]byte) BuildResponseRecord {
	data := make([]byte, 496)
	copy(data[0:495], randomData[:])
	data[495] = reply

	hash := sha256.Sum256(data)

	return BuildResponseRecord{
		Hash:       hash,
		RandomData: randomData,
		Reply:      reply,
	}
}
