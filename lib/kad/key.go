// Package kad implements the Kademlia-style peer table and the iterative
// search manager of spec §3 "Kademlia table"/"Kademlia key" and §4.E.
package kad

import (
	"crypto/sha256"
	"fmt"
	"math/bits"
	"time"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// Key is a 32-byte daily-rotated Kademlia key (spec §3 "Kademlia key").
type Key [32]byte

// DailyKey derives today's Kademlia key for a router hash: SHA-256(hash
// ‖ yyyymmdd_ascii), recomputed at UTC midnight.
func DailyKey(hash common.Hash, now time.Time) Key {
	day := now.UTC().Format("20060102")
	h := sha256.New()
	h.Write(hash[:])
	h.Write([]byte(day))
	var out Key
	copy(out[:], h.Sum(nil))
	return out
}

// NextMidnightUTC returns the next UTC-midnight instant strictly after now,
// the point at which every daily key must be recomputed (spec §3).
func NextMidnightUTC(now time.Time) time.Time {
	u := now.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, 1)
}

// XORDistance computes the bitwise-XOR distance between two hashes, used
// both for bucket placement and for closest-N ranking (spec §3
// "Kademlia table").
func XORDistance(a, b common.Hash) [32]byte {
	var d [32]byte
	for i := range a {
		d[i] = a[i] ^ b[i]
	}
	return d
}

// SharedPrefixLen returns the number of leading bits the two hashes share,
// i.e. the bucket index XORDistance would fall into (distance 0 => 256).
func SharedPrefixLen(a, b common.Hash) int {
	d := XORDistance(a, b)
	total := 0
	for _, byt := range d {
		if byt == 0 {
			total += 8
			continue
		}
		total += bits.LeadingZeros8(byt)
		break
	}
	return total
}

// distanceLess reports whether distance x is strictly closer than y (lexicographic
// compare of the XOR distance byte strings — equivalent to numeric compare
// since both are the same fixed width, big-endian).
func distanceLess(x, y [32]byte) bool {
	for i := range x {
		if x[i] != y[i] {
			return x[i] < y[i]
		}
	}
	return false
}

func (k Key) String() string {
	return fmt.Sprintf("%x", k[:8])
}
