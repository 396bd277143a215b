package peer

import (
	"sync"
	"time"

	"github.com/go-i2p/logger"
)

// RetransmitInitialDelay, RetransmitMaxDelay and MaxRetransmitAttempts pin
// the backoff schedule spec §4.C leaves as "not present in the shown
// source... chosen plausibly" (§9 Open Question (c)): 500 ms doubling to
// 16 s, 8 attempts before the session is declared dead.
const (
	RetransmitInitialDelay = 500 * time.Millisecond
	RetransmitMaxDelay     = 16 * time.Second
	MaxRetransmitAttempts  = 8
)

// FragmentSender transmits one already-encoded fragment on the wire; the
// OutboundMessageState never touches the socket directly, matching the
// "no lock held across an I/O submission" rule (spec §5).
type FragmentSender func(fragNum uint8, isLast bool, data []byte) error

// OutboundMessageState tracks one outbound I2NP message's fragments and
// drives retransmission of whichever remain un-acked (spec §4.C "ACK
// scheduling").
type OutboundMessageState struct {
	mu sync.Mutex

	MsgID     uint32
	fragments [][]byte
	acked     []bool
	attempts  []int

	send      FragmentSender
	onDead    func() // invoked once, outside the lock, on retransmit exhaustion
	deadFired bool

	epoch  uint64
	timers []*time.Timer
}

// NewOutboundMessageState splits payload into ≤512-byte fragments (spec
// §4.C "each ≤ ~512 B payload") and begins the retransmit cycle.
func NewOutboundMessageState(msgID uint32, payload []byte, send FragmentSender, onDead func()) *OutboundMessageState {
	const maxFragPayload = 512
	var frags [][]byte
	if len(payload) == 0 {
		frags = [][]byte{{}}
	}
	for off := 0; off < len(payload); off += maxFragPayload {
		end := off + maxFragPayload
		if end > len(payload) {
			end = len(payload)
		}
		frags = append(frags, payload[off:end])
	}
	if len(frags) > MaxFragments {
		frags = frags[:MaxFragments]
		log.WithFields(logger.Fields{
			"at":     "NewOutboundMessageState",
			"msg_id": msgID,
		}).Warn("message truncated to MaxFragments on send")
	}

	s := &OutboundMessageState{
		MsgID:     msgID,
		fragments: frags,
		acked:     make([]bool, len(frags)),
		attempts:  make([]int, len(frags)),
		timers:    make([]*time.Timer, len(frags)),
		send:      send,
		onDead:    onDead,
	}
	s.sendAllLocked()
	return s
}

func (s *OutboundMessageState) sendAllLocked() {
	for i := range s.fragments {
		if !s.acked[i] {
			s.sendFragmentLocked(uint8(i))
		}
	}
}

func (s *OutboundMessageState) sendFragmentLocked(i uint8) {
	isLast := int(i) == len(s.fragments)-1
	if err := s.send(i, isLast, s.fragments[i]); err != nil {
		log.WithFields(logger.Fields{
			"at":        "OutboundMessageState.sendFragment",
			"msg_id":    s.MsgID,
			"frag_num":  i,
			"error":     err.Error(),
		}).Debug("fragment send failed, will retry on next retransmit timer")
	}
	s.attempts[i]++
	s.armRetransmitLocked(i)
}

func (s *OutboundMessageState) armRetransmitLocked(i uint8) {
	epoch := s.epoch
	delay := backoffDelay(s.attempts[i])
	s.timers[i] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if epoch != s.epoch || int(i) >= len(s.acked) || s.acked[i] {
			return
		}
		if s.attempts[i] >= MaxRetransmitAttempts {
			if !s.deadFired {
				s.deadFired = true
				if s.onDead != nil {
					go s.onDead()
				}
			}
			return
		}
		s.sendFragmentLocked(i)
	})
}

func backoffDelay(attempt int) time.Duration {
	d := RetransmitInitialDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= RetransmitMaxDelay {
			return RetransmitMaxDelay
		}
	}
	return d
}

// Ack marks fragments named in bitmap as received by the peer. Once every
// fragment is acked the message is complete and its timers are stopped.
func (s *OutboundMessageState) Ack(bitmap uint32) (complete bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.fragments {
		if bitmap&(1<<uint(i)) != 0 {
			s.acked[i] = true
			if s.timers[i] != nil {
				s.timers[i].Stop()
			}
		}
	}
	complete = true
	for _, a := range s.acked {
		if !a {
			complete = false
		}
	}
	return complete
}

// Discard stops all pending retransmit timers without firing onDead.
func (s *OutboundMessageState) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	for _, t := range s.timers {
		if t != nil {
			t.Stop()
		}
	}
}
