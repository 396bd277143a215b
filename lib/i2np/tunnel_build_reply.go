package i2np

import (
	"crypto/sha256"
	"fmt"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// TunnelBuildReply is eight BuildResponseRecords, the reply to a
// TunnelBuild request — https://geti2p.net/spec/i2np#tunnelbuildreply.

// TunnelBuildReply constants for processing responses
const (
	TUNNEL_BUILD_REPLY_SUCCESS   = 0x00 // Tunnel hop accepted the request
	TUNNEL_BUILD_REPLY_REJECT    = 0x01 // General rejection
	TUNNEL_BUILD_REPLY_OVERLOAD  = 0x02 // Router is overloaded
	TUNNEL_BUILD_REPLY_BANDWIDTH = 0x03 // Insufficient bandwidth
	TUNNEL_BUILD_REPLY_INVALID   = 0x04 // Invalid request data
	TUNNEL_BUILD_REPLY_EXPIRED   = 0x05 // Request has expired
)

type TunnelBuildReply [8]BuildResponseRecord

// ReadTunnelBuildReply parses a bare TunnelBuildReply payload (the
// 8*528-byte body, post-I2NP-header) into its eight response records.
func ReadTunnelBuildReply(payload []byte) (TunnelBuildReply, error) {
	var reply TunnelBuildReply
	if len(payload) != 8*StandardBuildRecordSize {
		return reply, oops.Errorf("invalid TunnelBuildReply size: expected %d bytes, got %d", 8*StandardBuildRecordSize, len(payload))
	}
	for i := 0; i < 8; i++ {
		record, err := ReadBuildResponseRecord(payload[i*StandardBuildRecordSize : (i+1)*StandardBuildRecordSize])
		if err != nil {
			return reply, oops.Wrapf(err, "failed to parse build response record %d", i)
		}
		reply[i] = record
	}
	return reply, nil
}

// GetReplyRecords returns the build response records
func (t *TunnelBuildReply) GetReplyRecords() []BuildResponseRecord {
	return t[:]
}

// ProcessReply validates each hop's response record and maps its reply
// code to a per-hop accept/reject outcome, returning nil only if all eight
// hops accepted.
func (t *TunnelBuildReply) ProcessReply() error {
	successCount := 0
	var firstError error
	for i, record := range t {
		success, err := t.processHopResponse(i, record)
		if err != nil {
			log.WithFields(logger.Fields{"at": "TunnelBuildReply.ProcessReply", "hop_index": i, "error": err}).
				Warn("failed to process hop response")
			if firstError == nil {
				firstError = err
			}
			continue
		}
		if success {
			successCount++
		}
	}

	if successCount == len(t) {
		return nil
	}
	if firstError != nil {
		return fmt.Errorf("tunnel build failed: %w", firstError)
	}
	return fmt.Errorf("tunnel build failed: only %d of %d hops accepted", successCount, len(t))
}

// processHopResponse validates a single hop's response record and maps
// its reply code to an accept/reject outcome.
func (t *TunnelBuildReply) processHopResponse(hopIndex int, record BuildResponseRecord) (bool, error) {
	if err := t.validateResponseRecord(record); err != nil {
		return false, fmt.Errorf("hop %d: invalid response record: %w", hopIndex, err)
	}

	switch record.Reply {
	case TUNNEL_BUILD_REPLY_SUCCESS:
		return true, nil
	case TUNNEL_BUILD_REPLY_REJECT:
		return false, fmt.Errorf("hop %d: rejected request", hopIndex)
	case TUNNEL_BUILD_REPLY_OVERLOAD:
		return false, fmt.Errorf("hop %d: router overloaded", hopIndex)
	case TUNNEL_BUILD_REPLY_BANDWIDTH:
		return false, fmt.Errorf("hop %d: insufficient bandwidth", hopIndex)
	case TUNNEL_BUILD_REPLY_INVALID:
		return false, fmt.Errorf("hop %d: invalid request data", hopIndex)
	case TUNNEL_BUILD_REPLY_EXPIRED:
		return false, fmt.Errorf("hop %d: request expired", hopIndex)
	default:
		return false, fmt.Errorf("hop %d: unknown reply code %d", hopIndex, record.Reply)
	}
}

// validateResponseRecord rejects an all-zero hash outright, then verifies
// the hash covers the record's random data and reply byte.
func (t *TunnelBuildReply) validateResponseRecord(record BuildResponseRecord) error {
	allZeros := true
	for _, b := range record.Hash {
		if b != 0 {
			allZeros = false
			break
		}
	}
	if allZeros {
		return fmt.Errorf("response record has empty hash")
	}

	data := make([]byte, 496)
	copy(data[0:495], record.RandomData[:])
	data[495] = record.Reply

	if computed := sha256.Sum256(data); computed != record.Hash {
		return fmt.Errorf("response record hash verification failed")
	}
	return nil
}

var _ TunnelReplyHandler = (*TunnelBuildReply)(nil)
