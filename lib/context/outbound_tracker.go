package context

import (
	"sync"

	"github.com/go-i2p/logger"
)

// OutboundMessageTracker correlates inbound DeliveryStatus messages (I2NP
// type 4) back to the message ID a caller is waiting on the confirmation
// for, the same message-ID-keyed bookkeeping
// original_source/i2np/DeliveryStatus.h's consumers do around an
// OutboundMessageStatus table.
type OutboundMessageTracker struct {
	mu      sync.Mutex
	waiters map[int]chan struct{}
}

// NewOutboundMessageTracker returns an empty tracker.
func NewOutboundMessageTracker() *OutboundMessageTracker {
	return &OutboundMessageTracker{waiters: make(map[int]chan struct{})}
}

// Await registers interest in messageID's delivery confirmation and
// returns a channel that closes once Confirm(messageID) is called.
func (t *OutboundMessageTracker) Await(messageID int) <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.waiters[messageID]
	if !ok {
		ch = make(chan struct{})
		t.waiters[messageID] = ch
	}
	return ch
}

// Confirm signals delivery of messageID to any waiter registered via
// Await, and forgets the waiter. A confirmation with no registered
// waiter is a no-op — the caller may not have cared about this message.
func (t *OutboundMessageTracker) Confirm(messageID int) {
	t.mu.Lock()
	ch, ok := t.waiters[messageID]
	if ok {
		delete(t.waiters, messageID)
	}
	t.mu.Unlock()
	if !ok {
		return
	}
	close(ch)
	log.WithFields(logger.Fields{"at": "OutboundMessageTracker.Confirm", "message_id": messageID}).
		Debug("confirmed outbound message delivery")
}

// Cancel forgets a registered waiter without confirming it, for callers
// that give up waiting (e.g. on their own timeout).
func (t *OutboundMessageTracker) Cancel(messageID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.waiters, messageID)
}
