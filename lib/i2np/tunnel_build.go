package i2np

import (
	"github.com/go-i2p/crypto/rand"
	"github.com/samber/oops"
)

// TunnelBuild is eight BuildRequestRecords back to back, 528 bytes each
// (4224 bytes total) — https://geti2p.net/spec/i2np#tunnelbuild.
//
// TunnelBuild represents the raw 8 build request records
type TunnelBuild [8]BuildRequestRecord

// TunnelBuildMessage wraps TunnelBuild to implement I2NPMessage interface
type TunnelBuildMessage struct {
	*BaseI2NPMessage
	Records TunnelBuild
}

// GetBuildRecords returns the build request records
func (t *TunnelBuild) GetBuildRecords() []BuildRequestRecord {
	return t[:]
}

// GetRecordCount returns the number of build records
func (t *TunnelBuild) GetRecordCount() int {
	return 8
}

// NewTunnelBuilder creates a new TunnelBuild and returns it as TunnelBuilder interface
func NewTunnelBuilder(records [8]BuildRequestRecord) TunnelBuilder {
	tb := TunnelBuild(records)
	return &tb
}

// NewTunnelBuildMessage creates a new TunnelBuild I2NP message from eight
// build request records. Records are written cleartext; encrypting each
// one against its hop's key is the caller's job (build_record_crypto.go's
// EncryptReplyRecord covers the reply side of that exchange).
func NewTunnelBuildMessage(records [8]BuildRequestRecord) *TunnelBuildMessage {
	msg := &TunnelBuildMessage{
		BaseI2NPMessage: NewBaseI2NPMessage(I2NP_MESSAGE_TYPE_TUNNEL_BUILD),
		Records:         TunnelBuild(records),
	}

	// Serialize cleartext records (NOT specification-compliant for network transmission)
	// Each record: 222 bytes cleartext + 306 bytes padding = 528 bytes total
	data := make([]byte, 8*528)
	for i := 0; i < 8; i++ {
		cleartext := records[i].Bytes() // 222 bytes cleartext per I2P spec
		copy(data[i*528:i*528+222], cleartext)
		// Remaining 306 bytes: random padding
		if _, err := rand.Read(data[i*528+222 : (i+1)*528]); err != nil {
			log.WithError(err).Error("failed to generate build record padding")
		}
	}
	msg.SetData(data)

	return msg
}

// GetBuildRecords implements TunnelBuilder interface
func (msg *TunnelBuildMessage) GetBuildRecords() []BuildRequestRecord {
	return msg.Records[:]
}

// GetRecordCount implements TunnelBuilder interface
func (msg *TunnelBuildMessage) GetRecordCount() int {
	return 8
}

// MarshalBinary serializes the TunnelBuild message using BaseI2NPMessage
func (msg *TunnelBuildMessage) MarshalBinary() ([]byte, error) {
	return msg.BaseI2NPMessage.MarshalBinary()
}

// UnmarshalBinary deserializes the TunnelBuild message. Each of the eight
// 528-byte records is parsed as cleartext; callers that receive these off
// the wire must decrypt each chunk with DecryptBuildRequestRecord first.
func (msg *TunnelBuildMessage) UnmarshalBinary(data []byte) error {
	if err := msg.BaseI2NPMessage.UnmarshalBinary(data); err != nil {
		return oops.Wrapf(err, "failed to unmarshal base I2NP message")
	}
	records, err := parseTunnelBuildRecords(msg.GetData())
	if err != nil {
		return err
	}
	msg.Records = records
	return nil
}

// ReadTunnelBuildMessage parses a bare TunnelBuild payload (post-I2NP-header,
// as handed to a Dispatcher Handler) into its eight cleartext build request
// records.
func ReadTunnelBuildMessage(payload []byte) (TunnelBuild, error) {
	return parseTunnelBuildRecords(payload)
}

func parseTunnelBuildRecords(data []byte) (TunnelBuild, error) {
	var records TunnelBuild
	if len(data) != 8*528 {
		return records, oops.Errorf("invalid TunnelBuild data size: expected %d bytes, got %d", 8*528, len(data))
	}
	for i := 0; i < 8; i++ {
		record, err := ReadBuildRequestRecord(data[i*528 : (i+1)*528])
		if err != nil {
			return records, oops.Wrapf(err, "failed to parse build request record %d", i)
		}
		records[i] = record
	}
	return records, nil
}

// Compile-time interface satisfaction checks
var (
	_ TunnelBuilder = (*TunnelBuild)(nil)
	_ TunnelBuilder = (*TunnelBuildMessage)(nil)
	_ I2NPMessage   = (*TunnelBuildMessage)(nil)
)
