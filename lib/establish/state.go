// Package establish implements the SSU four-way handshake state machine
// (spec §4.B): a strict per-endpoint state machine whose transitions are
// triggered only by decrypted inbound packets or by the local side's
// decision to initiate.
package establish

import (
	"net"
	"time"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/router_identity"
	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// Direction records which side of the handshake the local router plays.
type Direction int

const (
	Inbound Direction = iota
	Outbound
)

func (d Direction) String() string {
	if d == Inbound {
		return "inbound"
	}
	return "outbound"
}

// Phase is a state in the handshake state machine (spec §4.B diagram).
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseRequestSent
	PhaseRequestReceived
	PhaseCreatedSent
	PhaseCreatedReceived
	PhaseConfirmedSent
	PhaseConfirmedReceived
	PhaseEstablished
	PhaseFailure
)

func (p Phase) String() string {
	switch p {
	case PhaseRequestSent:
		return "REQUEST_SENT"
	case PhaseRequestReceived:
		return "REQUEST_RECEIVED"
	case PhaseCreatedSent:
		return "CREATED_SENT"
	case PhaseCreatedReceived:
		return "CREATED_RECEIVED"
	case PhaseConfirmedSent:
		return "CONFIRMED_SENT"
	case PhaseConfirmedReceived:
		return "CONFIRMED_RECEIVED"
	case PhaseEstablished:
		return "ESTABLISHED"
	case PhaseFailure:
		return "FAILURE"
	default:
		return "UNKNOWN"
	}
}

// Endpoint is a remote (ip, udp_port) pair, used as the establishment
// table's key (spec §3 "Establishment state").
type Endpoint struct {
	IP   string // net.IP.String(); comparable, usable as a map key
	Port uint16
}

func NewEndpoint(ip net.IP, port uint16) Endpoint {
	return Endpoint{IP: ip.String(), Port: port}
}

// HandshakeTimeout is the deadline (spec §4.B) after which an in-progress
// establishment is terminal.
const HandshakeTimeout = 10 * time.Second

// State is one in-progress handshake, keyed by Endpoint (spec §3).
type State struct {
	TheirEndpoint  Endpoint
	TheirIdentity  *router_identity.RouterIdentity
	Direction      Direction
	Phase          Phase
	dh             dhPrivate
	DHX            [DHKeySize]byte
	DHY            [DHKeySize]byte
	SessionKey     [32]byte
	MacKey         [32]byte
	IntroKey       [32]byte // the responder's published introduction key, used for the first packet only
	SignedOnTime   uint32
	Deadline       time.Time
	RelayTag       uint32
	createdAt      time.Time

	// epoch is bumped when the state fails. This package arms no timer of
	// its own: deadlines are checked by Manager.ExpireDeadlines under the
	// state-table mutex, and timer is stopped on failure only if set.
	epoch   uint64
	timer   *time.Timer
}

// newState creates a fresh establishment state armed with the handshake
// deadline.
func newState(ep Endpoint, dir Direction) *State {
	return &State{
		TheirEndpoint: ep,
		Direction:     dir,
		Phase:         PhaseUnknown,
		Deadline:      time.Now().Add(HandshakeTimeout),
		createdAt:     time.Now(),
	}
}

// Epoch returns the state's current cancellation epoch.
func (s *State) Epoch() uint64 { return s.epoch }

// bumpEpoch invalidates any timer callback captured against the previous
// epoch and returns the new one.
func (s *State) bumpEpoch() uint64 {
	s.epoch++
	return s.epoch
}

// TheirHash returns the remote router's identity hash once known, or the
// zero hash before the identity has arrived (e.g. for the failure signal
// on an outbound handshake that never got far enough to learn it).
//
// Per spec §3 "Router identity", hash = SHA-256(enc_pub ‖ sign_pub ‖
// cert_bytes) — exactly the identity's marshaled wire bytes, so hashing
// RouterIdentity.Bytes() is equivalent to hashing the tuple directly.
func (s *State) TheirHash() common.Hash {
	if s.TheirIdentity == nil {
		return common.Hash{}
	}
	return common.HashData(s.TheirIdentity.Bytes())
}
