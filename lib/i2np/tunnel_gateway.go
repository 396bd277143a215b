package i2np

import (
	"encoding/binary"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// TunnelGatway carries data into a tunnel at its gateway hop: 4-byte
// TunnelID, 2-byte length, then that many bytes of payload
// (https://geti2p.net/spec/i2np#struct-tunnelgateway).
type TunnelGatway struct {
	*BaseI2NPMessage
	TunnelID TunnelID
	Length   int
	Data     []byte
}

// NewTunnelGatewayMessage creates a new TunnelGateway message
func NewTunnelGatewayMessage(tunnelID TunnelID, payload []byte) *TunnelGatway {
	log.WithFields(logger.Fields{
		"at":          "NewTunnelGatewayMessage",
		"tunnel_id":   tunnelID,
		"payload_len": len(payload),
	}).Debug("Creating TunnelGateway message")

	msg := &TunnelGatway{
		BaseI2NPMessage: NewBaseI2NPMessage(I2NP_MESSAGE_TYPE_TUNNEL_GATEWAY),
		TunnelID:        tunnelID,
		Length:          len(payload),
		Data:            payload,
	}

	// Serialize: tunnelId (4 bytes) + length (2 bytes) + data
	data := make([]byte, 4+2+len(payload))
	binary.BigEndian.PutUint32(data[0:4], uint32(tunnelID))
	binary.BigEndian.PutUint16(data[4:6], uint16(len(payload)))
	copy(data[6:], payload)

	msg.SetData(data)
	return msg
}

// UnmarshalBinary deserializes a TunnelGateway message
func (t *TunnelGatway) UnmarshalBinary(data []byte) error {
	// First unmarshal the base message
	if err := t.BaseI2NPMessage.UnmarshalBinary(data); err != nil {
		log.WithFields(logger.Fields{
			"at":     "TunnelGatway.UnmarshalBinary",
			"reason": "base message unmarshal failed",
		}).WithError(err).Error("Failed to unmarshal TunnelGateway")
		return err
	}

	// Extract the data payload and parse it
	messageData := t.BaseI2NPMessage.GetData()
	if len(messageData) < 6 {
		log.WithFields(logger.Fields{
			"at":       "TunnelGatway.UnmarshalBinary",
			"expected": 6,
			"actual":   len(messageData),
			"reason":   "payload too short",
		}).Error("Invalid TunnelGateway payload")
		return oops.Errorf("tunnel gateway message payload too short: %d bytes", len(messageData))
	}

	t.TunnelID = TunnelID(binary.BigEndian.Uint32(messageData[0:4]))
	t.Length = int(binary.BigEndian.Uint16(messageData[4:6]))

	if len(messageData) < 6+t.Length {
		log.WithFields(logger.Fields{
			"at":        "TunnelGatway.UnmarshalBinary",
			"tunnel_id": t.TunnelID,
			"expected":  6 + t.Length,
			"actual":    len(messageData),
			"reason":    "payload truncated",
		}).Error("TunnelGateway payload truncated")
		return oops.Errorf("tunnel gateway message payload truncated: expected %d bytes, got %d",
			6+t.Length, len(messageData))
	}

	t.Data = make([]byte, t.Length)
	copy(t.Data, messageData[6:6+t.Length])

	log.WithFields(logger.Fields{
		"at":        "TunnelGatway.UnmarshalBinary",
		"tunnel_id": t.TunnelID,
		"data_len":  t.Length,
	}).Debug("Successfully unmarshaled TunnelGateway")

	return nil
}

// ReadTunnelGateway parses a bare TunnelGateway payload (post-I2NP-header,
// as handed to a Dispatcher Handler).
func ReadTunnelGateway(payload []byte) (*TunnelGatway, error) {
	if len(payload) < 6 {
		return nil, oops.Errorf("tunnel gateway message payload too short: %d bytes", len(payload))
	}
	msg := &TunnelGatway{
		BaseI2NPMessage: NewBaseI2NPMessage(I2NP_MESSAGE_TYPE_TUNNEL_GATEWAY),
		TunnelID:        TunnelID(binary.BigEndian.Uint32(payload[0:4])),
		Length:          int(binary.BigEndian.Uint16(payload[4:6])),
	}
	if len(payload) < 6+msg.Length {
		return nil, oops.Errorf("tunnel gateway message payload truncated: expected %d bytes, got %d", 6+msg.Length, len(payload))
	}
	msg.Data = make([]byte, msg.Length)
	copy(msg.Data, payload[6:6+msg.Length])
	return msg, nil
}
