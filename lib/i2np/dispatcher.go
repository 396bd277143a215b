package i2np

import (
	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// Handler processes one parsed I2NP message body. from is the sending
// router's identity hash, already known to the transport from the
// established session the message arrived on. Handlers never block the
// dispatcher's caller indefinitely (spec §5 "Suspension points").
type Handler func(from common.Hash, header I2NPNTCPHeader, payload []byte) error

// Dispatcher routes parsed I2NP messages to registered handlers by type
// (spec §4.D). It owns a `map[type]handler` populated at construction
// time and never fails the connection on an unknown type or a malformed
// individual message — those are dropped and logged (spec §7
// "Recoverable locally").
type Dispatcher struct {
	handlers map[int]Handler
	expiry   *ExpirationValidator
}

// NewDispatcher creates an empty Dispatcher; callers register handlers
// via Register before Dispatch is ever called. Expiration is checked with
// the default-tolerance ExpirationValidator; use WithExpirationValidator to
// override it (e.g. to disable the check or inject a clock in tests).
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[int]Handler),
		expiry:   NewExpirationValidator(),
	}
}

// WithExpirationValidator replaces the dispatcher's expiration check.
func (d *Dispatcher) WithExpirationValidator(v *ExpirationValidator) *Dispatcher {
	d.expiry = v
	return d
}

// Register binds a handler to an I2NP message type. A second Register
// call for the same type replaces the first, matching the teacher's
// "last registration wins" convention for bootstrap-time wiring.
func (d *Dispatcher) Register(msgType int, h Handler) {
	d.handlers[msgType] = h
}

// Dispatch parses the standard 16-byte I2NP header from raw, verifies
// its checksum and expiration, and invokes the registered handler for its
// type. Unknown types are logged at Debug and dropped without error
// (spec §4.D "Unknown types are logged and dropped; they never fail the
// connection"). from identifies the peer the message arrived from, or the
// zero hash for messages with no established-session origin.
func (d *Dispatcher) Dispatch(from common.Hash, raw []byte) error {
	header, payload, err := parseHeader(raw)
	if err != nil {
		log.WithFields(logger.Fields{"at": "Dispatcher.Dispatch", "error": err.Error()}).
			Debug("dropping malformed i2np message")
		return nil
	}

	if err := d.expiry.ValidateExpiration(header.Expiration); err != nil {
		log.WithFields(logger.Fields{
			"at":     "Dispatcher.Dispatch",
			"type":   header.Type,
			"msg_id": header.MessageID,
			"error":  err.Error(),
		}).Debug("dropping expired i2np message")
		return nil
	}

	h, ok := d.handlers[header.Type]
	if !ok {
		log.WithFields(logger.Fields{"at": "Dispatcher.Dispatch", "type": header.Type}).
			Debug("no handler registered for i2np message type, dropping")
		return nil
	}

	if err := h(from, header, payload); err != nil {
		log.WithFields(logger.Fields{
			"at":     "Dispatcher.Dispatch",
			"type":   header.Type,
			"msg_id": header.MessageID,
			"error":  err.Error(),
		}).Error("i2np handler returned an error, discarding message")
	}
	return nil
}

// parseHeader extracts and checksum-verifies the standard 16-byte I2NP
// header (spec §4.D), returning the parsed fields and the payload slice.
func parseHeader(raw []byte) (I2NPNTCPHeader, []byte, error) {
	msg := &BaseI2NPMessage{}
	if err := msg.UnmarshalBinary(raw); err != nil {
		return I2NPNTCPHeader{}, nil, oops.Wrapf(err, "i2np: header parse")
	}
	return I2NPNTCPHeader{
		Type:       msg.Type(),
		MessageID:  msg.MessageID(),
		Expiration: msg.Expiration(),
		Size:       len(msg.GetData()),
		Data:       msg.GetData(),
	}, msg.GetData(), nil
}
