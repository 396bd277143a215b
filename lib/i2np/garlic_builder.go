package i2np

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-i2p/crypto/rand"
	"github.com/go-i2p/logger"

	"github.com/go-i2p/common/certificate"
	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/session_key"
	"github.com/samber/oops"
)

// GarlicBuilder accumulates cloves (each wrapping an I2NP message with its
// own delivery instructions) and builds them into a Garlic message.
// It does not encrypt the resulting plaintext.
type GarlicBuilder struct {
	cloves      []GarlicClove
	certificate certificate.Certificate
	messageID   int
	expiration  time.Time
}

// NewGarlicBuilder creates a new garlic message builder.
// messageID: Unique identifier for this garlic message (for tracking/ACKs)
// expiration: Time when this garlic message should no longer be processed
func NewGarlicBuilder(messageID int, expiration time.Time) *GarlicBuilder {
	return &GarlicBuilder{
		cloves:      make([]GarlicClove, 0),
		certificate: *certificate.NewCertificate(),
		messageID:   messageID,
		expiration:  expiration,
	}
}

// NewGarlicBuilderWithDefaults creates a garlic builder with a random
// message ID and an expiration 10 seconds from now.
func NewGarlicBuilderWithDefaults() (*GarlicBuilder, error) {
	msgIDBytes := make([]byte, 4)
	if _, err := rand.Read(msgIDBytes); err != nil {
		return nil, oops.Wrapf(err, "failed to generate random message ID")
	}
	messageID := int(binary.BigEndian.Uint32(msgIDBytes))
	expiration := time.Now().Add(10 * time.Second)
	return NewGarlicBuilder(messageID, expiration), nil
}

// AddClove wraps message in a clove with the given delivery instructions.
// cloveExpiration must not be after the garlic message's own expiration.
func (gb *GarlicBuilder) AddClove(
	deliveryInstructions GarlicCloveDeliveryInstructions,
	message I2NPMessage,
	cloveID int,
	cloveExpiration time.Time,
) error {
	if message == nil {
		return oops.Errorf("cannot add nil I2NP message to garlic clove")
	}

	if cloveExpiration.After(gb.expiration) {
		return oops.Errorf("clove expiration (%v) cannot be after garlic message expiration (%v)",
			cloveExpiration, gb.expiration)
	}

	clove := GarlicClove{
		DeliveryInstructions: deliveryInstructions,
		I2NPMessage:          message,
		CloveID:              cloveID,
		Expiration:           cloveExpiration,
		Certificate:          *certificate.NewCertificate(),
	}

	gb.cloves = append(gb.cloves, clove)
	log.WithFields(logger.Fields{
		"at":       "AddClove",
		"clove_id": cloveID,
		"flag":     fmt.Sprintf("0x%02x", deliveryInstructions.Flag),
	}).Debug("added clove to garlic message")
	return nil
}

// AddLocalDeliveryClove adds a clove processed locally by the recipient.
func (gb *GarlicBuilder) AddLocalDeliveryClove(message I2NPMessage, cloveID int) error {
	instructions := GarlicCloveDeliveryInstructions{
		Flag: 0x00, // Delivery type: LOCAL (bits 6-5 = 0x00)
	}

	return gb.AddClove(instructions, message, cloveID, gb.expiration)
}

// AddTunnelDeliveryClove adds a clove forwarded through tunnelID at
// gatewayHash.
func (gb *GarlicBuilder) AddTunnelDeliveryClove(
	message I2NPMessage,
	cloveID int,
	gatewayHash common.Hash,
	tunnelID TunnelID,
) error {
	instructions := GarlicCloveDeliveryInstructions{
		Flag:     0x60, // Delivery type: TUNNEL (bits 6-5 = 0x11 = 0x60)
		Hash:     gatewayHash,
		TunnelID: tunnelID,
	}

	return gb.AddClove(instructions, message, cloveID, gb.expiration)
}

// AddDestinationDeliveryClove adds a clove delivered to destinationHash.
func (gb *GarlicBuilder) AddDestinationDeliveryClove(
	message I2NPMessage,
	cloveID int,
	destinationHash common.Hash,
) error {
	instructions := GarlicCloveDeliveryInstructions{
		Flag: 0x20, // Delivery type: DESTINATION (bits 6-5 = 0x01 = 0x20)
		Hash: destinationHash,
	}

	return gb.AddClove(instructions, message, cloveID, gb.expiration)
}

// AddRouterDeliveryClove adds a clove delivered to routerHash.
func (gb *GarlicBuilder) AddRouterDeliveryClove(
	message I2NPMessage,
	cloveID int,
	routerHash common.Hash,
) error {
	instructions := GarlicCloveDeliveryInstructions{
		Flag: 0x40, // Delivery type: ROUTER (bits 6-5 = 0x10 = 0x40)
		Hash: routerHash,
	}

	return gb.AddClove(instructions, message, cloveID, gb.expiration)
}

// Build constructs the unencrypted Garlic message structure.
// This produces a Garlic object ready for encryption; Build itself does
// not encrypt it, and no garlic encryption exists in this module.
func (gb *GarlicBuilder) Build() (*Garlic, error) {
	if len(gb.cloves) == 0 {
		return nil, oops.Errorf("cannot build garlic message with zero cloves")
	}
	if len(gb.cloves) > 255 {
		return nil, oops.Errorf("garlic message cannot contain more than 255 cloves, got %d", len(gb.cloves))
	}

	garlic := &Garlic{
		Count:       len(gb.cloves),
		Cloves:      gb.cloves,
		Certificate: gb.certificate,
		MessageID:   gb.messageID,
		Expiration:  gb.expiration,
	}

	log.WithFields(logger.Fields{"at": "Build", "clove_count": garlic.Count, "message_id": garlic.MessageID}).
		Debug("built garlic message")
	return garlic, nil
}

// BuildAndSerialize constructs the garlic message and serializes it to
// the plaintext payload ready for encryption.
func (gb *GarlicBuilder) BuildAndSerialize() ([]byte, error) {
	garlic, err := gb.Build()
	if err != nil {
		return nil, oops.Wrapf(err, "failed to build garlic message")
	}

	payload, err := serializeGarlic(garlic)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to serialize garlic message")
	}
	return payload, nil
}

// serializeGarlic converts a Garlic structure to its wire format
// (unencrypted): num(1) cloves(variable) certificate(3) message_id(4)
// expiration(8, ms since epoch).
func serializeGarlic(garlic *Garlic) ([]byte, error) {
	if garlic == nil {
		return nil, oops.Errorf("cannot serialize nil garlic message")
	}

	// Estimate buffer size (cloves are variable length, so this is approximate)
	estimatedSize := 1 + (len(garlic.Cloves) * 100) + 3 + 4 + 8
	buf := make([]byte, 0, estimatedSize)

	// Write clove count (1 byte)
	buf = append(buf, byte(garlic.Count))

	// Serialize each clove
	for i, clove := range garlic.Cloves {
		cloveBytes, err := serializeGarlicClove(&clove)
		if err != nil {
			return nil, oops.Wrapf(err, "failed to serialize garlic clove %d", i)
		}
		buf = append(buf, cloveBytes...)
	}

	// Write certificate (3 bytes - always NULL)
	certBytes := garlic.Certificate.Bytes()
	buf = append(buf, certBytes...)

	// Write message ID (4 bytes, big-endian)
	msgIDBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(msgIDBytes, uint32(garlic.MessageID))
	buf = append(buf, msgIDBytes...)

	// Write expiration (8 bytes, milliseconds since epoch)
	expirationBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(expirationBytes, uint64(garlic.Expiration.UnixMilli()))
	buf = append(buf, expirationBytes...)

	return buf, nil
}

// serializeGarlicClove converts a GarlicClove to its wire format:
// delivery_instructions(1/33/37) i2np_message(variable) clove_id(4)
// expiration(8) certificate(3).
func serializeGarlicClove(clove *GarlicClove) ([]byte, error) {
	if clove == nil {
		return nil, oops.Errorf("cannot serialize nil garlic clove")
	}

	buf := make([]byte, 0, 128)

	// Serialize delivery instructions
	instructionsBytes, err := serializeDeliveryInstructions(&clove.DeliveryInstructions)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to serialize delivery instructions")
	}
	buf = append(buf, instructionsBytes...)

	// Serialize I2NP message
	if clove.I2NPMessage == nil {
		return nil, oops.Errorf("garlic clove contains nil I2NP message")
	}
	messageBytes, err := clove.I2NPMessage.MarshalBinary()
	if err != nil {
		return nil, oops.Wrapf(err, "failed to serialize I2NP message")
	}
	buf = append(buf, messageBytes...)

	// Write clove ID (4 bytes)
	cloveIDBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(cloveIDBytes, uint32(clove.CloveID))
	buf = append(buf, cloveIDBytes...)

	// Write expiration (8 bytes, milliseconds since epoch)
	expirationBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(expirationBytes, uint64(clove.Expiration.UnixMilli()))
	buf = append(buf, expirationBytes...)

	// Write certificate (3 bytes - always NULL)
	certBytes := clove.Certificate.Bytes()
	buf = append(buf, certBytes...)

	return buf, nil
}

// serializeDeliveryInstructions converts delivery instructions to wire
// format: flag(1) [session_key(32) if encrypted] [to_hash(32) if
// DESTINATION/ROUTER/TUNNEL] [tunnel_id(4) if TUNNEL] [delay(4) if delayed].
// Typical lengths: 1 byte (LOCAL), 33 bytes (DESTINATION/ROUTER), 37 bytes
// (TUNNEL).
func serializeDeliveryInstructions(di *GarlicCloveDeliveryInstructions) ([]byte, error) {
	if di == nil {
		return nil, oops.Errorf("cannot serialize nil delivery instructions")
	}

	buf := initializeBufferWithFlag(di.Flag)
	deliveryType := extractDeliveryType(di.Flag)

	if err := appendEncryptionKeyIfNeeded(di, &buf); err != nil {
		return nil, err
	}

	if err := appendHashForDeliveryType(di, deliveryType, &buf); err != nil {
		return nil, err
	}

	appendTunnelIDIfNeeded(di, deliveryType, &buf)
	appendDelayIfNeeded(di, &buf)

	return buf, nil
}

// initializeBufferWithFlag creates a buffer with the flag byte.
func initializeBufferWithFlag(flag byte) []byte {
	buf := make([]byte, 0, 37) // Max possible size
	return append(buf, flag)
}

// extractDeliveryType extracts the delivery type from flag bits 6-5.
func extractDeliveryType(flag byte) byte {
	return (flag >> 5) & 0x03
}

// appendEncryptionKeyIfNeeded adds session key to buffer if encryption flag is set.
func appendEncryptionKeyIfNeeded(di *GarlicCloveDeliveryInstructions, buf *[]byte) error {
	encrypted := (di.Flag >> 7) & 0x01
	if encrypted == 1 {
		if len(di.SessionKey) != session_key.SESSION_KEY_SIZE {
			return oops.Errorf("session key must be %d bytes when encryption flag is set",
				session_key.SESSION_KEY_SIZE)
		}
		*buf = append(*buf, di.SessionKey[:]...)
	}
	return nil
}

// appendHashForDeliveryType adds hash to buffer for DESTINATION, ROUTER, or TUNNEL delivery.
func appendHashForDeliveryType(di *GarlicCloveDeliveryInstructions, deliveryType byte, buf *[]byte) error {
	if deliveryType == 0x01 || deliveryType == 0x02 || deliveryType == 0x03 {
		if len(di.Hash) != 32 {
			return oops.Errorf("hash must be 32 bytes for delivery type %d", deliveryType)
		}
		*buf = append(*buf, di.Hash[:]...)
	}
	return nil
}

// appendTunnelIDIfNeeded adds tunnel ID to buffer for TUNNEL delivery type.
func appendTunnelIDIfNeeded(di *GarlicCloveDeliveryInstructions, deliveryType byte, buf *[]byte) {
	if deliveryType == 0x03 {
		tunnelIDBytes := make([]byte, 4)
		binary.BigEndian.PutUint32(tunnelIDBytes, uint32(di.TunnelID))
		*buf = append(*buf, tunnelIDBytes...)
	}
}

// appendDelayIfNeeded adds delay to buffer if delay flag is set.
func appendDelayIfNeeded(di *GarlicCloveDeliveryInstructions, buf *[]byte) {
	delayIncluded := (di.Flag >> 4) & 0x01
	if delayIncluded == 1 {
		delayBytes := make([]byte, 4)
		binary.BigEndian.PutUint32(delayBytes, uint32(di.Delay))
		*buf = append(*buf, delayBytes...)
	}
}

// Helper functions for creating common delivery instruction patterns

// NewLocalDeliveryInstructions creates delivery instructions for local processing.
func NewLocalDeliveryInstructions() GarlicCloveDeliveryInstructions {
	return GarlicCloveDeliveryInstructions{
		Flag: 0x00, // LOCAL delivery (bits 6-5 = 0x00)
	}
}

// NewTunnelDeliveryInstructions creates delivery instructions for tunnel delivery.
// gatewayHash: SHA256 hash of the tunnel gateway router
// tunnelID: Destination tunnel ID
func NewTunnelDeliveryInstructions(gatewayHash common.Hash, tunnelID TunnelID) GarlicCloveDeliveryInstructions {
	return GarlicCloveDeliveryInstructions{
		Flag:     0x60, // TUNNEL delivery (bits 6-5 = 0x11 = 0x60)
		Hash:     gatewayHash,
		TunnelID: tunnelID,
	}
}

// NewDestinationDeliveryInstructions creates delivery instructions for destination delivery.
// destinationHash: SHA256 hash of the destination
func NewDestinationDeliveryInstructions(destinationHash common.Hash) GarlicCloveDeliveryInstructions {
	return GarlicCloveDeliveryInstructions{
		Flag: 0x20, // DESTINATION delivery (bits 6-5 = 0x01 = 0x20)
		Hash: destinationHash,
	}
}

// NewRouterDeliveryInstructions creates delivery instructions for router delivery.
// routerHash: SHA256 hash of the destination router
func NewRouterDeliveryInstructions(routerHash common.Hash) GarlicCloveDeliveryInstructions {
	return GarlicCloveDeliveryInstructions{
		Flag: 0x40, // ROUTER delivery (bits 6-5 = 0x10 = 0x40)
		Hash: routerHash,
	}
}

// DeserializeGarlic parses a decrypted garlic message from bytes, enforcing
// a maximum clove count and nesting depth against resource exhaustion from
// a maliciously deep or wide recursive garlic.
func DeserializeGarlic(data []byte, nestingDepth int) (*Garlic, error) {
	const (
		MaxGarlicCloves       = 64
		MaxGarlicNestingDepth = 3
		MinGarlicSize         = 1 + 3 + 4 + 8 // num(1) + cert(3) + msgID(4) + exp(8)
	)

	if err := validateGarlicStructure(data, nestingDepth, MinGarlicSize, MaxGarlicNestingDepth); err != nil {
		return nil, err
	}

	garlic, err := parseGarlicStructure(data, nestingDepth, MaxGarlicCloves)
	if err != nil {
		return nil, err
	}

	log.WithFields(logger.Fields{"at": "DeserializeGarlic", "clove_count": garlic.Count, "message_id": garlic.MessageID}).
		Debug("deserialized garlic message")
	return garlic, nil
}

// validateGarlicStructure validates nesting depth and data size.
func validateGarlicStructure(data []byte, nestingDepth, minSize, maxDepth int) error {
	if err := validateGarlicNestingDepth(nestingDepth, maxDepth); err != nil {
		return err
	}
	return validateGarlicDataSize(data, minSize)
}

// parseGarlicStructure parses all garlic components and builds the structure.
func parseGarlicStructure(data []byte, nestingDepth, maxCloves int) (*Garlic, error) {
	cloveCount, offset, err := parseGarlicCloveCount(data, maxCloves)
	if err != nil {
		return nil, err
	}

	cloves, offset, err := parseGarlicCloves(data, offset, cloveCount, nestingDepth)
	if err != nil {
		return nil, err
	}

	cert, messageID, expiration, err := parseGarlicMetadata(data, offset)
	if err != nil {
		return nil, err
	}

	return &Garlic{
		Count:       cloveCount,
		Cloves:      cloves,
		Certificate: cert,
		MessageID:   messageID,
		Expiration:  expiration,
	}, nil
}

// validateGarlicNestingDepth checks if the nesting depth exceeds the maximum allowed.
func validateGarlicNestingDepth(nestingDepth, maxDepth int) error {
	if nestingDepth > maxDepth {
		return oops.Errorf("garlic nesting depth exceeded: %d > %d", nestingDepth, maxDepth)
	}
	return nil
}

// validateGarlicDataSize checks if the data buffer meets the minimum size requirement.
func validateGarlicDataSize(data []byte, minSize int) error {
	if len(data) < minSize {
		return oops.Errorf("garlic data too short: need at least %d bytes, got %d", minSize, len(data))
	}
	return nil
}

// parseGarlicCloveCount reads and validates the clove count from the data buffer.
func parseGarlicCloveCount(data []byte, maxCloves int) (int, int, error) {
	cloveCount := int(data[0])
	if cloveCount > maxCloves {
		return 0, 0, oops.Errorf("garlic clove count too high: %d > %d (possible resource exhaustion attack)", cloveCount, maxCloves)
	}
	return cloveCount, 1, nil
}

// parseGarlicCloves parses all cloves from the data buffer starting at the given offset.
func parseGarlicCloves(data []byte, offset, cloveCount, nestingDepth int) ([]GarlicClove, int, error) {
	cloves := make([]GarlicClove, cloveCount)
	for i := 0; i < cloveCount; i++ {
		clove, bytesRead, err := deserializeGarlicClove(data[offset:], nestingDepth)
		if err != nil {
			return nil, 0, oops.Wrapf(err, "failed to parse clove %d", i)
		}
		cloves[i] = *clove
		offset += bytesRead
	}
	return cloves, offset, nil
}

// parseGarlicMetadata parses the certificate, message ID, and expiration from the data buffer.
func parseGarlicMetadata(data []byte, offset int) (certificate.Certificate, int, time.Time, error) {
	const metadataSize = 3 + 4 + 8 // cert(3) + msgID(4) + exp(8)

	if len(data) < offset+metadataSize {
		return certificate.Certificate{}, 0, time.Time{}, oops.Errorf("insufficient data for garlic trailer: need %d bytes, have %d", metadataSize, len(data)-offset)
	}

	cert := *certificate.NewCertificate()
	offset += 3

	messageID := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4

	expirationMs := binary.BigEndian.Uint64(data[offset : offset+8])
	expiration := time.UnixMilli(int64(expirationMs))

	return cert, messageID, expiration, nil
}

// deserializeGarlicClove parses a single garlic clove from bytes.
// Returns the clove, number of bytes consumed, and any error.
func deserializeGarlicClove(data []byte, nestingDepth int) (*GarlicClove, int, error) {
	if len(data) < 1 {
		return nil, 0, oops.Errorf("clove data too short")
	}

	offset := 0

	// Parse delivery instructions
	di, bytesRead, err := deserializeDeliveryInstructions(data[offset:])
	if err != nil {
		return nil, 0, oops.Wrapf(err, "failed to parse delivery instructions")
	}
	offset += bytesRead

	// Parse the wrapped I2NP message's length and keep its raw bytes so a
	// dispatcher can re-parse it by type once the garlic layer is peeled off.
	messageLength, err := readI2NPMessageLength(data, offset)
	if err != nil {
		return nil, 0, err
	}
	rawMessage := append([]byte(nil), data[offset:offset+messageLength]...)
	offset += messageLength

	// Parse clove metadata
	cloveID, expiration, cert, err := parseCloveMetadata(data, offset)
	if err != nil {
		return nil, 0, err
	}
	offset += 4 + 8 + 3 // clove ID + expiration + certificate

	return &GarlicClove{
		DeliveryInstructions: *di,
		RawMessage:           rawMessage,
		CloveID:              cloveID,
		Expiration:           expiration,
		Certificate:          cert,
	}, offset, nil
}

// readI2NPMessageLength validates I2NP message header and returns total message length.
// Standard I2NP header structure:
//   - type (1 byte) at offset 0
//   - msg_id (4 bytes) at offset 1-4
//   - expiration (8 bytes) at offset 5-12
//   - size (2 bytes) at offset 13-14
//   - checksum (1 byte) at offset 15
//   - data (size bytes) at offset 16+
func readI2NPMessageLength(data []byte, offset int) (int, error) {
	if len(data) < offset+16 {
		return 0, oops.Errorf("insufficient data for I2NP message header (need %d bytes, have %d)", offset+16, len(data))
	}

	// Read message size from I2NP header (bytes 13-14 from start of message)
	messageSize, err := ReadI2NPNTCPMessageSize(data[offset:])
	if err != nil {
		return 0, oops.Wrapf(err, "failed to read I2NP message size")
	}

	// Total I2NP message length = 16-byte header + message data
	messageLength := 16 + messageSize

	// Validate we have enough data for the complete message
	if len(data) < offset+messageLength {
		return 0, oops.Errorf("insufficient data for I2NP message (need %d bytes, have %d)", offset+messageLength, len(data))
	}

	return messageLength, nil
}

// parseCloveMetadata extracts clove ID, expiration, and certificate from clove trailer.
func parseCloveMetadata(data []byte, offset int) (int, time.Time, certificate.Certificate, error) {
	// Ensure enough data for clove ID + expiration + certificate
	if len(data) < offset+4+8+3 {
		return 0, time.Time{}, certificate.Certificate{}, oops.Errorf("insufficient data for clove trailer")
	}

	// Read clove ID (4 bytes)
	cloveID := int(binary.BigEndian.Uint32(data[offset : offset+4]))

	// Read expiration (8 bytes)
	expirationMs := binary.BigEndian.Uint64(data[offset+4 : offset+12])
	expiration := time.UnixMilli(int64(expirationMs))

	// Read certificate (3 bytes)
	cert := *certificate.NewCertificate()

	return cloveID, expiration, cert, nil
}

// deserializeDeliveryInstructions parses delivery instructions from bytes.
// Returns the instructions, number of bytes consumed, and any error.
func deserializeDeliveryInstructions(data []byte) (*GarlicCloveDeliveryInstructions, int, error) {
	if len(data) < 1 {
		return nil, 0, oops.Errorf("delivery instructions data too short")
	}

	flag := data[0]
	offset := 1

	di := &GarlicCloveDeliveryInstructions{
		Flag: flag,
	}

	deliveryType := (flag >> 5) & 0x03
	bytesRead, err := parseDeliveryTypeData(di, deliveryType, data[offset:])
	if err != nil {
		return nil, 0, err
	}
	offset += bytesRead

	bytesRead, err = parseOptionalDelayField(di, flag, data[offset:])
	if err != nil {
		return nil, 0, err
	}
	offset += bytesRead

	return di, offset, nil
}

// parseDeliveryTypeData parses the delivery type specific data from bytes.
// Returns the number of bytes consumed and any error.
func parseDeliveryTypeData(di *GarlicCloveDeliveryInstructions, deliveryType byte, data []byte) (int, error) {
	switch deliveryType {
	case 0x00: // LOCAL - no additional data
		return 0, nil
	case 0x01: // DESTINATION - 32 byte hash
		return parseHashData(di, data, "DESTINATION")
	case 0x02: // ROUTER - 32 byte hash
		return parseHashData(di, data, "ROUTER")
	case 0x03: // TUNNEL - 32 byte hash + 4 byte tunnel ID
		return parseTunnelData(di, data)
	default:
		return 0, nil
	}
}

// parseHashData parses a 32-byte hash for DESTINATION or ROUTER delivery types.
// Returns the number of bytes consumed and any error.
func parseHashData(di *GarlicCloveDeliveryInstructions, data []byte, deliveryTypeName string) (int, error) {
	if len(data) < 32 {
		return 0, oops.Errorf("insufficient data for %s hash", deliveryTypeName)
	}
	copy(di.Hash[:], data[0:32])
	return 32, nil
}

// parseTunnelData parses TUNNEL delivery type data (32-byte hash + 4-byte tunnel ID).
// Returns the number of bytes consumed and any error.
func parseTunnelData(di *GarlicCloveDeliveryInstructions, data []byte) (int, error) {
	if len(data) < 36 {
		return 0, oops.Errorf("insufficient data for TUNNEL hash and ID")
	}
	copy(di.Hash[:], data[0:32])
	di.TunnelID = TunnelID(binary.BigEndian.Uint32(data[32:36]))
	return 36, nil
}

// parseOptionalDelayField parses the optional delay field if present.
// Returns the number of bytes consumed and any error.
func parseOptionalDelayField(di *GarlicCloveDeliveryInstructions, flag byte, data []byte) (int, error) {
	delayIncluded := (flag >> 4) & 0x01
	if delayIncluded != 1 {
		return 0, nil
	}

	if len(data) < 4 {
		return 0, oops.Errorf("insufficient data for delay field")
	}
	di.Delay = int(binary.BigEndian.Uint32(data[0:4]))
	return 4, nil
}
