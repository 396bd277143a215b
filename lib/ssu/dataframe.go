package ssu

import "encoding/binary"

// Fragment is one piece of an I2NP message carried in a SSU Data packet
// (spec §4.C "Fragmentation"): a 7-bit frag_num, an is_last flag, and up
// to ~512 bytes of payload, addressed by a 32-bit msg_id.
type Fragment struct {
	MsgID   uint32
	FragNum uint8 // 0..127
	IsLast  bool
	Payload []byte
}

// Ack cites a previously received message's fragment bitmap so its
// sender can retire acknowledged fragments (spec §4.C "ACK scheduling").
type Ack struct {
	MsgID  uint32
	Bitmap uint32
}

// EncodeDataFrame serializes a SSU Data payload (the plaintext handed to
// ssuwire.Encode for PayloadData): a count-prefixed ACK list followed by
// a count-prefixed fragment list.
//
//	[ack_count:1][ack...][frag_count:1][fragment...]
//	ack    ::= msg_id:4 ‖ bitmap:4
//	fragment ::= msg_id:4 ‖ frag_num_and_flags:1 ‖ size:2 ‖ data:size
func EncodeDataFrame(acks []Ack, fragments []Fragment) []byte {
	out := make([]byte, 0, 1+len(acks)*8+1)
	out = append(out, byte(len(acks)))
	for _, a := range acks {
		var buf [8]byte
		binary.BigEndian.PutUint32(buf[0:4], a.MsgID)
		binary.BigEndian.PutUint32(buf[4:8], a.Bitmap)
		out = append(out, buf[:]...)
	}
	out = append(out, byte(len(fragments)))
	for _, f := range fragments {
		var hdr [7]byte
		binary.BigEndian.PutUint32(hdr[0:4], f.MsgID)
		flag := f.FragNum & 0x7f
		if f.IsLast {
			flag |= 0x80
		}
		hdr[4] = flag
		binary.BigEndian.PutUint16(hdr[5:7], uint16(len(f.Payload)))
		out = append(out, hdr[:]...)
		out = append(out, f.Payload...)
	}
	return out
}

// DecodeDataFrame parses the layout EncodeDataFrame produces.
func DecodeDataFrame(raw []byte) (acks []Ack, fragments []Fragment, err error) {
	if len(raw) < 1 {
		return nil, nil, ErrShortDataFrame
	}
	pos := 0
	ackCount := int(raw[pos])
	pos++
	for i := 0; i < ackCount; i++ {
		if pos+8 > len(raw) {
			return nil, nil, ErrShortDataFrame
		}
		acks = append(acks, Ack{
			MsgID:  binary.BigEndian.Uint32(raw[pos : pos+4]),
			Bitmap: binary.BigEndian.Uint32(raw[pos+4 : pos+8]),
		})
		pos += 8
	}
	if pos >= len(raw) {
		return nil, nil, ErrShortDataFrame
	}
	fragCount := int(raw[pos])
	pos++
	for i := 0; i < fragCount; i++ {
		if pos+7 > len(raw) {
			return nil, nil, ErrShortDataFrame
		}
		msgID := binary.BigEndian.Uint32(raw[pos : pos+4])
		flag := raw[pos+4]
		size := int(binary.BigEndian.Uint16(raw[pos+5 : pos+7]))
		pos += 7
		if pos+size > len(raw) {
			return nil, nil, ErrShortDataFrame
		}
		payload := make([]byte, size)
		copy(payload, raw[pos:pos+size])
		pos += size
		fragments = append(fragments, Fragment{
			MsgID:   msgID,
			FragNum: flag & 0x7f,
			IsLast:  flag&0x80 != 0,
			Payload: payload,
		})
	}
	return acks, fragments, nil
}
