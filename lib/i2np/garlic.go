package i2np

import (
	"encoding/binary"
	"time"

	"github.com/go-i2p/common/certificate"
	"github.com/samber/oops"
)

// GarlicElGamal is the ElGamal-encrypted wire form of a Garlic message:
// a 4-byte length prefix followed by that many bytes of ciphertext
// (https://geti2p.net/spec/i2np#struct-garlic). Decrypting it (see
// elg.PrivateKey.Decrypt) yields the cleartext num/clove/certificate/
// message_id/expiration layout DeserializeGarlic parses.
type GarlicElGamal struct {
	Length uint32
	Data   []byte
}

// NewGarlicElGamal creates a new GarlicElGamal from raw bytes
func NewGarlicElGamal(bytes []byte) (*GarlicElGamal, error) {
	if len(bytes) < 4 {
		return nil, oops.Errorf("insufficient data for GarlicElGamal: need at least 4 bytes for length, got %d", len(bytes))
	}

	length := binary.BigEndian.Uint32(bytes[0:4])

	if len(bytes) < int(4+length) {
		return nil, oops.Errorf("insufficient data for GarlicElGamal: length indicates %d bytes but only %d available", length, len(bytes)-4)
	}

	data := make([]byte, length)
	copy(data, bytes[4:4+length])

	return &GarlicElGamal{
		Length: length,
		Data:   data,
	}, nil
}

// Bytes serializes the GarlicElGamal to bytes
func (g *GarlicElGamal) Bytes() ([]byte, error) {
	if g == nil {
		return nil, oops.Errorf("cannot serialize nil GarlicElGamal")
	}

	result := make([]byte, 4+len(g.Data))
	binary.BigEndian.PutUint32(result[0:4], g.Length)
	copy(result[4:], g.Data)

	return result, nil
}

// GarlicClove is a single wrapped message inside a Garlic, together with
// the delivery instructions that say how the unwrapped message should be
// forwarded once decrypted.
//
// I2NPMessage holds the parsed wrapped message when the clove was built
// locally via GarlicBuilder.AddClove; cloves produced by DeserializeGarlic
// leave it nil and carry the message's raw on-wire bytes in RawMessage
// instead, since a clove's inner I2NP type isn't known until a dispatcher
// re-parses it (spec §4.D Garlic handler).
type GarlicClove struct {
	DeliveryInstructions GarlicCloveDeliveryInstructions
	I2NPMessage           I2NPMessage
	RawMessage            []byte
	CloveID               int
	Expiration            time.Time
	Certificate           certificate.Certificate
}

type Garlic struct {
	Count       int
	Cloves      []GarlicClove
	Certificate certificate.Certificate
	MessageID   int
	Expiration  time.Time
}

// GetCloves returns the garlic cloves
func (g *Garlic) GetCloves() []GarlicClove {
	return g.Cloves
}

// GetCloveCount returns the number of cloves
func (g *Garlic) GetCloveCount() int {
	return g.Count
}

// Compile-time interface satisfaction check
var _ GarlicProcessor = (*Garlic)(nil)
