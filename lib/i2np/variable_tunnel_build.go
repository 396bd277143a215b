package i2np

import "github.com/samber/oops"

// VariableTunnelBuild is a leading count byte followed by that many
// build request records (https://geti2p.net/spec/i2np#variabletunnelbuild).
// Records are carried in their 222-byte cleartext form, 1 + count*222
// bytes total; unlike TunnelBuild they are not padded to 528-byte slots.
type VariableTunnelBuild struct {
	Count               int
	BuildRequestRecords []BuildRequestRecord
}

// GetBuildRecords returns the build request records
func (v *VariableTunnelBuild) GetBuildRecords() []BuildRequestRecord {
	return v.BuildRequestRecords
}

// GetRecordCount returns the number of build records
func (v *VariableTunnelBuild) GetRecordCount() int {
	return v.Count
}

// NewVariableTunnelBuilder creates a new VariableTunnelBuild and returns it as TunnelBuilder interface
func NewVariableTunnelBuilder(records []BuildRequestRecord) TunnelBuilder {
	return &VariableTunnelBuild{
		Count:               len(records),
		BuildRequestRecords: records,
	}
}

// Bytes serializes to wire format: [count:1][222-byte cleartext records...].
func (v *VariableTunnelBuild) Bytes() []byte {
	data := make([]byte, 1+v.Count*222)
	data[0] = byte(v.Count)
	offset := 1
	for _, record := range v.BuildRequestRecords {
		copy(data[offset:offset+222], record.Bytes())
		offset += 222
	}
	return data
}

// ReadVariableTunnelBuild parses a bare VariableTunnelBuild payload (count
// byte plus that many 222-byte cleartext records) as written by Bytes.
func ReadVariableTunnelBuild(payload []byte) (*VariableTunnelBuild, error) {
	if len(payload) < 1 {
		return nil, oops.Errorf("variable tunnel build payload too short")
	}
	count := int(payload[0])
	want := 1 + count*222
	if len(payload) != want {
		return nil, oops.Errorf("invalid VariableTunnelBuild size: expected %d bytes for %d records, got %d", want, count, len(payload))
	}
	records := make([]BuildRequestRecord, count)
	offset := 1
	for i := 0; i < count; i++ {
		record, err := ReadBuildRequestRecord(payload[offset : offset+222])
		if err != nil {
			return nil, oops.Wrapf(err, "failed to parse variable build request record %d", i)
		}
		records[i] = record
		offset += 222
	}
	return &VariableTunnelBuild{Count: count, BuildRequestRecords: records}, nil
}

// Compile-time interface satisfaction check
var _ TunnelBuilder = (*VariableTunnelBuild)(nil)
