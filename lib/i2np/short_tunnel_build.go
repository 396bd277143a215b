package i2np

import "github.com/samber/oops"

// ShortTunnelBuild is the modern (0.9.51+) tunnel build message: a 1-byte
// count followed by that many cleartext build request records
// (https://geti2p.net/spec/i2np#shorttunnelbuild). Encrypted on-wire short
// records are variable-length ECIES; this type, like TunnelBuild, only
// carries the cleartext form.
type ShortTunnelBuild struct {
	Count               int
	BuildRequestRecords []BuildRequestRecord
}

// GetBuildRecords returns the build request records
func (s *ShortTunnelBuild) GetBuildRecords() []BuildRequestRecord {
	return s.BuildRequestRecords
}

// GetRecordCount returns the number of build records
func (s *ShortTunnelBuild) GetRecordCount() int {
	return s.Count
}

// NewShortTunnelBuilder creates a new ShortTunnelBuild and returns it as TunnelBuilder interface.
// This is the modern, preferred format for tunnel building (added in I2P 0.9.51).
func NewShortTunnelBuilder(records []BuildRequestRecord) TunnelBuilder {
	return &ShortTunnelBuild{
		Count:               len(records),
		BuildRequestRecords: records,
	}
}

// Bytes serializes the ShortTunnelBuild message to wire format.
// Format: [count:1][records...]
// Note: This returns the cleartext records. Encryption must be applied by the caller.
func (s *ShortTunnelBuild) Bytes() []byte {
	// 1 byte for count + 222 bytes per record (cleartext)
	size := 1 + (s.Count * 222)
	data := make([]byte, size)

	// Write count
	data[0] = byte(s.Count)

	// Write each record
	offset := 1
	for _, record := range s.BuildRequestRecords {
		recordBytes := record.Bytes()
		copy(data[offset:offset+222], recordBytes)
		offset += 222
	}

	return data
}

// ReadShortTunnelBuild parses a bare ShortTunnelBuild payload (count byte
// plus that many 222-byte cleartext records) as written by Bytes.
func ReadShortTunnelBuild(payload []byte) (*ShortTunnelBuild, error) {
	if len(payload) < 1 {
		return nil, oops.Errorf("short tunnel build payload too short")
	}
	count := int(payload[0])
	want := 1 + count*222
	if len(payload) != want {
		return nil, oops.Errorf("invalid ShortTunnelBuild size: expected %d bytes for %d records, got %d", want, count, len(payload))
	}
	records := make([]BuildRequestRecord, count)
	offset := 1
	for i := 0; i < count; i++ {
		record, err := ReadBuildRequestRecord(payload[offset : offset+222])
		if err != nil {
			return nil, oops.Wrapf(err, "failed to parse short build request record %d", i)
		}
		records[i] = record
		offset += 222
	}
	return &ShortTunnelBuild{Count: count, BuildRequestRecords: records}, nil
}

// Compile-time interface satisfaction check
var _ TunnelBuilder = (*ShortTunnelBuild)(nil)
