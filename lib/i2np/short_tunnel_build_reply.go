package i2np

import (
	"crypto/sha256"
	"fmt"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// ShortTunnelBuildReply is the reply to a ShortTunnelBuild, one
// BuildResponseRecord per hop — https://geti2p.net/spec/i2np#shorttunnelbuildreply
// (added 0.9.51).
type ShortTunnelBuildReply struct {
	Count                int
	BuildResponseRecords []BuildResponseRecord
	RawRecordData        [][]byte // Original encrypted bytes before parsing
}

// GetResponseRecords returns the build response records (legacy method name)
func (s *ShortTunnelBuildReply) GetResponseRecords() []BuildResponseRecord {
	return s.BuildResponseRecords
}

// GetReplyRecords returns the build response records (TunnelReplyHandler interface)
func (s *ShortTunnelBuildReply) GetReplyRecords() []BuildResponseRecord {
	return s.BuildResponseRecords
}

// GetRawReplyRecords returns the original encrypted record bytes.
func (s *ShortTunnelBuildReply) GetRawReplyRecords() [][]byte {
	return s.RawRecordData
}

// GetRecordCount returns the number of response records
func (s *ShortTunnelBuildReply) GetRecordCount() int {
	return s.Count
}

// ProcessReply validates every hop's response record (SHA-256 integrity
// check, then reply code) and reports success only if all hops accepted.
func (s *ShortTunnelBuildReply) ProcessReply() error {
	recordCount := len(s.BuildResponseRecords)
	if s.Count != recordCount {
		return fmt.Errorf("count mismatch: Count field is %d but have %d records", s.Count, recordCount)
	}
	if recordCount == 0 {
		return fmt.Errorf("tunnel build failed: no response records")
	}

	successCount := 0
	var firstError error
	for i, record := range s.BuildResponseRecords {
		accepted, err := hopAccepted(i, record)
		if err != nil {
			log.WithFields(logger.Fields{"at": "ShortTunnelBuildReply.ProcessReply", "hop_index": i, "error": err}).
				Warn("failed to process hop response")
			if firstError == nil {
				firstError = err
			}
			continue
		}
		if accepted {
			successCount++
		}
	}

	log.WithFields(logger.Fields{"at": "ShortTunnelBuildReply.ProcessReply", "success_count": successCount, "total_hops": recordCount}).
		Debug("processed short tunnel build reply")

	if successCount == recordCount {
		return nil
	}
	failedHops := recordCount - successCount
	if firstError != nil {
		return fmt.Errorf("short tunnel build failed: %d of %d hops rejected, first error: %w", failedHops, recordCount, firstError)
	}
	return fmt.Errorf("short tunnel build failed: %d of %d hops rejected", failedHops, recordCount)
}

// hopAccepted verifies a single hop's response record integrity and
// reports whether it accepted the tunnel build request.
func hopAccepted(hopIndex int, record BuildResponseRecord) (bool, error) {
	dataToHash := make([]byte, 496)
	copy(dataToHash[:495], record.RandomData[:])
	dataToHash[495] = record.Reply
	computedHash := sha256.Sum256(dataToHash)
	if record.Hash != computedHash {
		return false, fmt.Errorf("record %d hash mismatch: provided %x, computed %x", hopIndex, record.Hash[:8], computedHash[:8])
	}
	return record.Reply == TUNNEL_BUILD_REPLY_SUCCESS, nil
}

// NewShortTunnelBuildReply creates a new ShortTunnelBuildReply
func NewShortTunnelBuildReply(records []BuildResponseRecord) *ShortTunnelBuildReply {
	return &ShortTunnelBuildReply{
		Count:                len(records),
		BuildResponseRecords: records,
	}
}

// ReadShortTunnelBuildReply parses a bare ShortTunnelBuildReply payload
// (count byte plus that many 528-byte response records) off the wire.
func ReadShortTunnelBuildReply(payload []byte) (*ShortTunnelBuildReply, error) {
	if len(payload) < 1 {
		return nil, oops.Errorf("short tunnel build reply payload too short")
	}
	count := int(payload[0])
	want := 1 + count*StandardBuildRecordSize
	if len(payload) != want {
		return nil, oops.Errorf("invalid ShortTunnelBuildReply size: expected %d bytes for %d records, got %d", want, count, len(payload))
	}
	records := make([]BuildResponseRecord, count)
	raw := make([][]byte, count)
	offset := 1
	for i := 0; i < count; i++ {
		chunk := payload[offset : offset+StandardBuildRecordSize]
		record, err := ReadBuildResponseRecord(chunk)
		if err != nil {
			return nil, oops.Wrapf(err, "failed to parse short build response record %d", i)
		}
		records[i] = record
		raw[i] = append([]byte(nil), chunk...)
		offset += StandardBuildRecordSize
	}
	return &ShortTunnelBuildReply{Count: count, BuildResponseRecords: records, RawRecordData: raw}, nil
}

// Compile-time interface satisfaction check
var _ TunnelReplyHandler = (*ShortTunnelBuildReply)(nil)
