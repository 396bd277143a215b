package peer

import (
	"sync"
	"time"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/router_identity"
	"github.com/go-i2p/logger"
)

// MaxInboundMessageStates bounds concurrent reassembly buffers per peer
// (spec §5 "Max InboundMessageStates per peer: 32").
const MaxInboundMessageStates = 32

// MaxConsecutiveMacFailures / MacFailureWindow implement the "terminates a
// session" rule of spec §7: repeated MAC failures (>3 within 30 s).
const (
	MaxConsecutiveMacFailures = 3
	MacFailureWindow          = 30 * time.Second
)

// Endpoint mirrors establish.Endpoint without importing it, keeping peer
// free of a dependency on the handshake package (spec §9 "specify each
// component's dependencies explicitly").
type Endpoint struct {
	IP   string
	Port uint16
}

// State is the per-peer post-handshake object (spec §3 "Peer state"):
// session keys plus inbound/outbound message reassembly tables.
type State struct {
	mu sync.Mutex

	Endpoint Endpoint
	Identity *router_identity.RouterIdentity
	Hash     common.Hash

	CurrentSessionKey [32]byte
	CurrentMacKey     [32]byte
	NextSessionKey    *[32]byte

	inbound  map[uint32]*InboundMessageState
	outbound map[uint32]*OutboundMessageState

	lastActivity time.Time

	macFailures    []time.Time
	onDisconnected func(common.Hash)
}

// NewState creates a PeerState transferred in from a successful
// establishment (spec §3 "Lifecycles": "Establishment states live...
// until success (transferred into a PeerState)").
func NewState(ep Endpoint, identity *router_identity.RouterIdentity, hash common.Hash, sessionKey, macKey [32]byte, onDisconnected func(common.Hash)) *State {
	return &State{
		Endpoint:          ep,
		Identity:          identity,
		Hash:              hash,
		CurrentSessionKey: sessionKey,
		CurrentMacKey:     macKey,
		inbound:           make(map[uint32]*InboundMessageState),
		outbound:          make(map[uint32]*OutboundMessageState),
		lastActivity:      time.Now(),
		onDisconnected:    onDisconnected,
	}
}

// Touch records activity for keepalive/idle-timeout accounting.
func (s *State) Touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// LastActivity returns the time of the most recent Touch.
func (s *State) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// InboundState returns (creating if absent) the reassembly state for
// msgID, enforcing the per-peer bound (spec §5).
func (s *State) InboundState(msgID uint32) (*InboundMessageState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.inbound[msgID]; ok {
		return st, nil
	}
	if len(s.inbound) >= MaxInboundMessageStates {
		return nil, ErrTooManyInbound
	}
	st := NewInboundMessageState(msgID, func() {
		s.mu.Lock()
		delete(s.inbound, msgID)
		s.mu.Unlock()
	})
	s.inbound[msgID] = st
	return st, nil
}

// CompleteInbound removes and discards the inbound state for msgID once
// its message has been assembled and handed off.
func (s *State) CompleteInbound(msgID uint32) {
	s.mu.Lock()
	st, ok := s.inbound[msgID]
	if ok {
		delete(s.inbound, msgID)
	}
	s.mu.Unlock()
	if ok {
		st.Discard()
	}
}

// NewOutbound registers a new OutboundMessageState for msgID.
func (s *State) NewOutbound(msgID uint32, payload []byte, send FragmentSender) *OutboundMessageState {
	var st *OutboundMessageState
	st = NewOutboundMessageState(msgID, payload, send, func() {
		s.mu.Lock()
		delete(s.outbound, msgID)
		s.mu.Unlock()
		if s.onDisconnected != nil {
			s.onDisconnected(s.Hash)
		}
	})
	s.mu.Lock()
	s.outbound[msgID] = st
	s.mu.Unlock()
	return st
}

// AckOutbound applies an ACK bitmap to the named outbound message,
// removing it from the table once complete.
func (s *State) AckOutbound(msgID uint32, bitmap uint32) {
	s.mu.Lock()
	st, ok := s.outbound[msgID]
	s.mu.Unlock()
	if !ok {
		return
	}
	if st.Ack(bitmap) {
		s.mu.Lock()
		delete(s.outbound, msgID)
		s.mu.Unlock()
	}
}

// RecordMacFailure logs one authentication failure and reports whether
// the session has now crossed the "terminates a session" threshold of
// spec §7 (more than 3 within 30 s).
func (s *State) RecordMacFailure() (exceeded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	cutoff := now.Add(-MacFailureWindow)
	kept := s.macFailures[:0]
	for _, t := range s.macFailures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	s.macFailures = kept
	return len(s.macFailures) > MaxConsecutiveMacFailures
}

// Table is the process-wide collection of established PeerStates, keyed
// by router hash (spec §3 "PeerState exists from handshake success to
// session teardown").
type Table struct {
	mu    sync.RWMutex
	peers map[common.Hash]*State
}

func NewTable() *Table {
	return &Table{peers: make(map[common.Hash]*State)}
}

func (t *Table) Insert(s *State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peers[s.Hash] = s
}

func (t *Table) Get(hash common.Hash) (*State, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.peers[hash]
	return s, ok
}

func (t *Table) Remove(hash common.Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.peers, hash)
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.peers)
}

// PruneIdle disconnects peers that have been silent longer than idle,
// matching the teacher's keepalive-driven teardown pattern.
func (t *Table) PruneIdle(idle time.Duration) []common.Hash {
	t.mu.Lock()
	defer t.mu.Unlock()
	var dead []common.Hash
	cutoff := time.Now().Add(-idle)
	for h, s := range t.peers {
		if s.LastActivity().Before(cutoff) {
			dead = append(dead, h)
			delete(t.peers, h)
		}
	}
	if len(dead) > 0 {
		log.WithFields(logger.Fields{
			"at":    "Table.PruneIdle",
			"count": len(dead),
		}).Debug("pruned idle peer sessions")
	}
	return dead
}
