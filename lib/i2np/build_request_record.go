package i2np

import (
	"encoding/binary"
	"time"


	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/session_key"
	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// BuildRequestRecord is a tunnel build hop's cleartext request, 222 bytes:
// receive_tunnel(4) our_ident(32) next_tunnel(4) next_ident(32) layer_key(32)
// iv_key(32) reply_key(32) reply_iv(16) flag(1) request_time(4)
// send_message_id(4) padding(29). On the wire it's ElGamal+AES encrypted to
// 528 bytes (16-byte toPeer + 512 bytes ElGamal-2048 ciphertext); see
// build_record_crypto.go for that layer.
// https://geti2p.net/spec/i2np#struct-buildrequestrecord
type (
	BuildRequestRecordElGamalAES [528]byte
	BuildRequestRecordElGamal    [528]byte
)

type BuildRequestRecord struct {
	ReceiveTunnel TunnelID
	OurIdent      common.Hash
	NextTunnel    TunnelID
	NextIdent     common.Hash
	LayerKey      session_key.SessionKey
	IVKey         session_key.SessionKey
	ReplyKey      session_key.SessionKey
	ReplyIV       [16]byte
	Flag          int
	RequestTime   time.Time
	SendMessageID int
	Padding       [29]byte
}

// ReadBuildRequestRecord parses the 222-byte cleartext build request
// record at the fixed field offsets the wire format specifies.
func ReadBuildRequestRecord(data []byte) (BuildRequestRecord, error) {
	record := BuildRequestRecord{}
	if len(data) < 222 {
		return record, ERR_BUILD_REQUEST_RECORD_NOT_ENOUGH_DATA
	}

	record.ReceiveTunnel = TunnelID(common.Integer(data[0:4]).Int())
	copy(record.OurIdent[:], data[4:36])
	record.NextTunnel = TunnelID(common.Integer(data[36:40]).Int())
	copy(record.NextIdent[:], data[40:72])
	copy(record.LayerKey[:], data[72:104])
	copy(record.IVKey[:], data[104:136])
	copy(record.ReplyKey[:], data[136:168])
	copy(record.ReplyIV[:], data[168:184])
	record.Flag = common.Integer([]byte{data[184]}).Int()
	record.RequestTime = time.Unix(0, 0).Add(time.Duration(common.Integer(data[185:189]).Int()) * time.Hour)
	record.SendMessageID = common.Integer(data[189:193]).Int()
	copy(record.Padding[:], data[193:222])

	log.WithFields(logger.Fields{"at": "i2np.ReadBuildRequestRecord", "receive_tunnel": record.ReceiveTunnel, "next_tunnel": record.NextTunnel}).
		Debug("parsed build request record")
	return record, nil
}

// Bytes serializes the record back to its 222-byte cleartext wire format,
// the inverse of ReadBuildRequestRecord.
func (b *BuildRequestRecord) Bytes() []byte {
	data := make([]byte, 222)
	binary.BigEndian.PutUint32(data[0:4], uint32(b.ReceiveTunnel))
	copy(data[4:36], b.OurIdent[:])
	binary.BigEndian.PutUint32(data[36:40], uint32(b.NextTunnel))
	copy(data[40:72], b.NextIdent[:])
	copy(data[72:104], b.LayerKey[:])
	copy(data[104:136], b.IVKey[:])
	copy(data[136:168], b.ReplyKey[:])
	copy(data[168:184], b.ReplyIV[:])
	data[184] = byte(b.Flag)
	binary.BigEndian.PutUint32(data[185:189], uint32(b.RequestTime.Sub(time.Unix(0, 0))/time.Hour))
	binary.BigEndian.PutUint32(data[189:193], uint32(b.SendMessageID))
	copy(data[193:222], b.Padding[:])
	return data
}

// GetReceiveTunnel returns the receive tunnel ID
func (b *BuildRequestRecord) GetReceiveTunnel() TunnelID {
	return b.ReceiveTunnel
}

// GetNextTunnel returns the next tunnel ID
func (b *BuildRequestRecord) GetNextTunnel() TunnelID {
	return b.NextTunnel
}

// GetOurIdent returns our identity hash
func (b *BuildRequestRecord) GetOurIdent() common.Hash {
	return b.OurIdent
}

// GetNextIdent returns the next identity hash
func (b *BuildRequestRecord) GetNextIdent() common.Hash {
	return b.NextIdent
}

// GetReplyKey returns the reply session key
func (b *BuildRequestRecord) GetReplyKey() session_key.SessionKey {
	return b.ReplyKey
}

// GetLayerKey returns the layer session key
func (b *BuildRequestRecord) GetLayerKey() session_key.SessionKey {
	return b.LayerKey
}

// GetIVKey returns the IV session key
func (b *BuildRequestRecord) GetIVKey() session_key.SessionKey {
	return b.IVKey
}

// Compile-time interface satisfaction checks
var (
	_ TunnelIdentifier   = (*BuildRequestRecord)(nil)
	_ HashProvider       = (*BuildRequestRecord)(nil)
	_ SessionKeyProvider = (*BuildRequestRecord)(nil)
)
