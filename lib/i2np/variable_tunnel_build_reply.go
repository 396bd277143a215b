package i2np

import (
	"fmt"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// VariableTunnelBuildReply is VariableTunnelBuild's reply: a count byte
// followed by that many 528-byte BuildResponseRecords
// (https://geti2p.net/spec/i2np#variabletunnelbuildreply).
type VariableTunnelBuildReply struct {
	Count                int
	BuildResponseRecords []BuildResponseRecord
}

// GetReplyRecords returns the build response records
func (v *VariableTunnelBuildReply) GetReplyRecords() []BuildResponseRecord {
	return v.BuildResponseRecords
}

// GetRecordCount returns the number of response records
func (v *VariableTunnelBuildReply) GetRecordCount() int {
	return v.Count
}

// ProcessReply validates every hop's response record and reports success
// only if all hops accepted, the same integrity-then-reply-code check
// ShortTunnelBuildReply.ProcessReply performs.
func (v *VariableTunnelBuildReply) ProcessReply() error {
	recordCount := len(v.BuildResponseRecords)
	if v.Count != recordCount {
		return fmt.Errorf("count mismatch: Count field is %d but have %d records", v.Count, recordCount)
	}
	if recordCount == 0 {
		return fmt.Errorf("tunnel build failed: no response records")
	}

	successCount := 0
	var firstError error
	for i, record := range v.BuildResponseRecords {
		accepted, err := hopAccepted(i, record)
		if err != nil {
			log.WithFields(logger.Fields{"at": "VariableTunnelBuildReply.ProcessReply", "hop_index": i, "error": err}).
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

	if successCount == recordCount {
		return nil
	}
	failedHops := recordCount - successCount
	if firstError != nil {
		return fmt.Errorf("variable tunnel build failed: %d of %d hops rejected, first error: %w", failedHops, recordCount, firstError)
	}
	return fmt.Errorf("variable tunnel build failed: %d of %d hops rejected", failedHops, recordCount)
}

// ReadVariableTunnelBuildReply parses a bare VariableTunnelBuildReply
// payload (count byte plus that many 528-byte response records) off the
// wire.
func ReadVariableTunnelBuildReply(payload []byte) (*VariableTunnelBuildReply, error) {
	if len(payload) < 1 {
		return nil, oops.Errorf("variable tunnel build reply payload too short")
	}
	count := int(payload[0])
	want := 1 + count*StandardBuildRecordSize
	if len(payload) != want {
		return nil, oops.Errorf("invalid VariableTunnelBuildReply size: expected %d bytes for %d records, got %d", want, count, len(payload))
	}
	records := make([]BuildResponseRecord, count)
	offset := 1
	for i := 0; i < count; i++ {
		record, err := ReadBuildResponseRecord(payload[offset : offset+StandardBuildRecordSize])
		if err != nil {
			return nil, oops.Wrapf(err, "failed to parse variable build response record %d", i)
		}
		records[i] = record
		offset += StandardBuildRecordSize
	}
	return &VariableTunnelBuildReply{Count: count, BuildResponseRecords: records}, nil
}

// Compile-time interface satisfaction check
var _ TunnelReplyHandler = (*VariableTunnelBuildReply)(nil)
