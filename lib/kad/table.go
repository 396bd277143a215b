package kad

import (
	"container/list"
	"sort"
	"sync"

	common "github.com/go-i2p/common/data"
)

// BucketSize is k in the spec's Kademlia table (§3, "typical k=20").
const BucketSize = 20

// numBuckets is one bucket per possible shared-prefix length of a 256-bit
// hash (0 through 256 inclusive).
const numBuckets = 257

// Table is the in-memory Kademlia routing table: buckets indexed by the
// XOR-distance prefix between a stored hash and the local router's own
// hash, each holding up to BucketSize entries in least-recently-seen
// order (spec §3 "Kademlia table").
type Table struct {
	mu      sync.RWMutex
	self    common.Hash
	buckets [numBuckets]*list.List // each element is common.Hash
}

// NewTable creates an empty table centered on the local router's hash.
func NewTable(self common.Hash) *Table {
	t := &Table{self: self}
	for i := range t.buckets {
		t.buckets[i] = list.New()
	}
	return t
}

func (t *Table) bucketIndex(h common.Hash) int {
	return SharedPrefixLen(t.self, h)
}

// Insert adds or refreshes a hash, moving it to the most-recently-seen
// end of its bucket. If the bucket is already full, the least-recently-
// seen entry is evicted to make room, so a full bucket keeps newly seen
// peers rather than long-lived ones (the reverse of standard Kademlia's
// "prefer long-lived peers" policy).
func (t *Table) Insert(h common.Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b := t.buckets[t.bucketIndex(h)]
	for e := b.Front(); e != nil; e = e.Next() {
		if e.Value.(common.Hash) == h {
			b.MoveToBack(e)
			return
		}
	}
	if b.Len() >= BucketSize {
		b.Remove(b.Front())
	}
	b.PushBack(h)
}

// Remove deletes a hash from the table, if present.
func (t *Table) Remove(h common.Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b := t.buckets[t.bucketIndex(h)]
	for e := b.Front(); e != nil; e = e.Next() {
		if e.Value.(common.Hash) == h {
			b.Remove(e)
			return
		}
	}
}

// ClosestN returns up to n stored hashes sorted by ascending XOR distance
// to key (spec §3 "Closest-n queries", invariant 4).
func (t *Table) ClosestN(key Key, n int) []common.Hash {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var target common.Hash
	copy(target[:], key[:])

	all := make([]common.Hash, 0, n*2)
	for _, b := range t.buckets {
		for e := b.Front(); e != nil; e = e.Next() {
			all = append(all, e.Value.(common.Hash))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		di := XORDistance(all[i], target)
		dj := XORDistance(all[j], target)
		return distanceLess(di, dj)
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// Len returns the total number of stored hashes across all buckets.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, b := range t.buckets {
		n += b.Len()
	}
	return n
}

// Contains reports whether h is currently stored.
func (t *Table) Contains(h common.Hash) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	b := t.buckets[t.bucketIndex(h)]
	for e := b.Front(); e != nil; e = e.Next() {
		if e.Value.(common.Hash) == h {
			return true
		}
	}
	return false
}
