// Package peer implements per-peer post-handshake state (spec §4.C): the
// fragment reassembly tables, ACK bookkeeping and retransmission backoff
// that turn a raw SSU data stream into complete I2NP messages.
package peer

import (
	"sync"
	"time"

	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// ReassemblyTimeout bounds how long an incomplete InboundMessageState is
// kept before being discarded (spec §3 "InboundMessageState exists... or
// 60 s timeout", §5 "Fragment buffers are bounded by the 60 s reassembly
// TTL").
const ReassemblyTimeout = 60 * time.Second

// MaxFragments is the largest frag_num + 1 a message may carry (spec
// §4.C "divided into ≤16-fragment sequences").
const MaxFragments = 16

// InboundMessageState accumulates fragments of one inbound I2NP message,
// keyed by msg_id at the PeerState level (spec §3 "InboundMessageState").
type InboundMessageState struct {
	mu sync.Mutex

	MsgID        uint32
	fragments    map[uint8][]byte
	gotLast      bool
	lastFragment uint8
	ackBitmap    uint32 // bit i set => fragment i received (§4.C rule 4)
	byteTotal    int

	createdAt time.Time
	epoch     uint64
	timer     *time.Timer
	onExpire  func()
}

// NewInboundMessageState creates a fresh reassembly buffer for msgID and
// arms the 60 s discard timer. onExpire is invoked (outside any lock) if
// the timer fires before the message is fully assembled and removed by
// the caller.
func NewInboundMessageState(msgID uint32, onExpire func()) *InboundMessageState {
	s := &InboundMessageState{
		MsgID:     msgID,
		fragments: make(map[uint8][]byte),
		createdAt: time.Now(),
		onExpire:  onExpire,
	}
	s.armTimer()
	return s
}

func (s *InboundMessageState) armTimer() {
	epoch := s.epoch
	s.timer = time.AfterFunc(ReassemblyTimeout, func() {
		s.mu.Lock()
		expired := epoch == s.epoch
		s.mu.Unlock()
		if expired && s.onExpire != nil {
			s.onExpire()
		}
	})
}

// Discard invalidates the in-flight timer callback (spec §5
// "Cancellation"). Called once the state is consumed (assembled or
// explicitly discarded) so a racing timer fire becomes a no-op.
func (s *InboundMessageState) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	if s.timer != nil {
		s.timer.Stop()
	}
}

// AddFragment inserts one fragment. Per spec §4.C and Open Question (a):
// a duplicate frag_num is a silent no-op that keeps the first copy
// (first-wins); byte_total only accumulates on first insertion of each
// index (invariant 1, concrete scenario 5). A fragment whose frag_num
// exceeds the already-seen last_fragment once got_last is true is
// dropped (rule 1) and reports ErrFragmentOutOfRange so the caller can
// log it without tearing down the session (§7 recoverable-locally).
func (s *InboundMessageState) AddFragment(fragNum uint8, isLast bool, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gotLast && fragNum > s.lastFragment {
		return ErrFragmentOutOfRange
	}
	if _, dup := s.fragments[fragNum]; dup {
		// First-wins: keep the existing copy, do not overwrite, do not
		// recount byte_total.
		return nil
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	s.fragments[fragNum] = buf
	s.byteTotal += len(buf)
	s.ackBitmap |= 1 << fragNum

	if isLast {
		s.gotLast = true
		s.lastFragment = fragNum
	}
	return nil
}

// AllFragmentsReceived reports whether every fragment in [0, last_fragment]
// has arrived (spec §4.C rule 3).
func (s *InboundMessageState) AllFragmentsReceived() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allFragmentsReceivedLocked()
}

func (s *InboundMessageState) allFragmentsReceivedLocked() bool {
	if !s.gotLast {
		return false
	}
	for i := uint8(0); i <= s.lastFragment; i++ {
		if _, ok := s.fragments[i]; !ok {
			return false
		}
	}
	return true
}

// Assemble concatenates fragments 0..last_fragment in ascending order.
// Only callable once AllFragmentsReceived holds (spec §3 invariant).
func (s *InboundMessageState) Assemble() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.allFragmentsReceivedLocked() {
		return nil, ErrNotAssemblable
	}
	out := make([]byte, 0, s.byteTotal)
	for i := uint8(0); i <= s.lastFragment; i++ {
		out = append(out, s.fragments[i]...)
	}
	return out, nil
}

// AckBitmap returns the current fragment-receipt bitmap to cite in the
// next outbound data packet (spec §4.C "ACK scheduling").
func (s *InboundMessageState) AckBitmap() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ackBitmap
}

// ByteTotal returns the number of bytes accumulated across all distinct
// fragments inserted so far.
func (s *InboundMessageState) ByteTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byteTotal
}

// CreatedAt returns the state's creation timestamp, used by the owning
// PeerState to find the oldest entry under pressure (§5 resource bound).
func (s *InboundMessageState) CreatedAt() time.Time {
	return s.createdAt
}
