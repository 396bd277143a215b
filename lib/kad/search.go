package kad

import (
	"context"
	"sync"
	"time"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Alpha is the bounded-parallelism factor for iterative lookups (spec
// §4.E "bounded parallelism α=3").
const Alpha = 3

// SearchTimeout is the per-goal deadline (spec §4.E "10 s timeout").
const SearchTimeout = 10 * time.Second

// MaxSearchStates bounds total concurrently live searches (spec §5).
const MaxSearchStates = 256

var (
	ErrSearchExists    = oops.Errorf("kad: a search for this goal already exists")
	ErrTooManySearches = oops.Errorf("kad: MaxSearchStates exceeded")
	ErrNoSuchSearch    = oops.Errorf("kad: no search in progress for this goal")
)

// SuccessSignal is emitted on Manager.Success when a search's goal was
// found (spec §6 "searchSuccess(kademlia_key, value)").
type SuccessSignal struct {
	Goal  Key
	Value []byte
}

// Transport is the narrow dependency the search manager needs from the
// SSU establishment/session layers (spec §9 "specify each component's
// dependencies explicitly" — not a reference to a god RouterContext).
type Transport interface {
	// SendDatabaseLookup sends a DatabaseLookup(goal) to the router
	// identified by `to`. It must not block on the network.
	SendDatabaseLookup(to common.Hash, goal Key) error
	// EnsureConnected reports true if a session with `to` is already
	// established. If false, it has asked the establishment manager to
	// connect; the search manager will resume via Connected/
	// ConnectionFailure once that handshake settles.
	EnsureConnected(to common.Hash) bool
}

// SearchState tracks one in-flight iterative lookup (spec §3
// "SearchState"). At most one SearchState exists per Goal (uniqueness
// invariant, §8 invariant 2).
type SearchState struct {
	Goal        Key
	Current     common.Hash
	Next        common.Hash
	Tried       map[common.Hash]bool
	Outstanding map[common.Hash]bool
	StartTime   time.Time

	// BestTriedDistance is the XOR distance to Goal of the closest hash in
	// Tried so far, used to detect convergence (spec §4.E termination b).
	// Nil until the first reply is processed.
	BestTriedDistance *[32]byte

	epoch uint64
	timer *time.Timer
}

// Manager drives iterative DatabaseLookup/DatabaseStore exchanges (spec
// §4.E). State mutation is serialized by one mutex; signal emission
// happens after Unlock (spec §5 "Concurrency").
type Manager struct {
	mu        sync.Mutex
	byGoal    map[Key]*SearchState
	byCurrent map[common.Hash]Key
	byNext    map[common.Hash]Key

	table     *Table
	transport Transport
	sem       *semaphore.Weighted

	success chan SuccessSignal
	failure chan Key
}

// NewManager wires a search Manager around the local Kademlia table and
// the transport used to actually send lookups.
func NewManager(table *Table, transport Transport) *Manager {
	return &Manager{
		byGoal:    make(map[Key]*SearchState),
		byCurrent: make(map[common.Hash]Key),
		byNext:    make(map[common.Hash]Key),
		table:     table,
		transport: transport,
		sem:       semaphore.NewWeighted(MaxSearchStates),
		success:   make(chan SuccessSignal, 32),
		failure:   make(chan Key, 32),
	}
}

// Success is the channel the caller listens on for resolved searches.
func (m *Manager) Success() <-chan SuccessSignal { return m.success }

// Failure is the channel the caller listens on for abandoned searches.
func (m *Manager) Failure() <-chan Key { return m.failure }

// CreateSearch starts an iterative lookup for goal, beginning at start
// (spec §4.E "createSearch(goal, start)").
func (m *Manager) CreateSearch(goal Key, start common.Hash) error {
	if !m.sem.TryAcquire(1) {
		return ErrTooManySearches
	}

	m.mu.Lock()
	if _, exists := m.byGoal[goal]; exists {
		m.mu.Unlock()
		m.sem.Release(1)
		return ErrSearchExists
	}
	s := &SearchState{
		Goal:        goal,
		Current:     start,
		Next:        start,
		Tried:       make(map[common.Hash]bool),
		Outstanding: map[common.Hash]bool{start: true},
		StartTime:   time.Now(),
	}
	m.byGoal[goal] = s
	m.byCurrent[start] = goal
	m.byNext[start] = goal
	m.armTimeoutLocked(s)
	m.mu.Unlock()

	m.dispatchRound([]common.Hash{start}, s, goal)
	return nil
}

func (m *Manager) armTimeoutLocked(s *SearchState) {
	epoch := s.epoch
	goal := s.Goal
	s.timer = time.AfterFunc(SearchTimeout, func() {
		m.mu.Lock()
		cur, ok := m.byGoal[goal]
		expired := ok && cur.epoch == epoch
		if expired {
			m.removeLocked(goal)
		}
		m.mu.Unlock()
		if expired {
			log.WithFields(logger.Fields{"at": "Manager.timeout", "goal": goal.String()}).Debug("search timed out")
			m.failure <- goal
		}
	})
}

// removeLocked deletes all three indices for goal. Caller holds m.mu.
func (m *Manager) removeLocked(goal Key) {
	s, ok := m.byGoal[goal]
	if !ok {
		return
	}
	s.epoch++
	if s.timer != nil {
		s.timer.Stop()
	}
	delete(m.byGoal, goal)
	if m.byCurrent[s.Current] == goal {
		delete(m.byCurrent, s.Current)
	}
	if m.byNext[s.Next] == goal {
		delete(m.byNext, s.Next)
	}
	m.sem.Release(1)
}

// dispatchRound fans candidate hashes out to Transport with bounded
// parallelism α (spec §4.E), one goroutine per send, and waits for all
// of them to return; the timeout context is not passed to the sends, so
// a blocking Transport delays the caller.
func (m *Manager) dispatchRound(candidates []common.Hash, s *SearchState, goal Key) {
	if len(candidates) > Alpha {
		candidates = candidates[:Alpha]
	}
	ctx, cancel := context.WithTimeout(context.Background(), SearchTimeout)
	defer cancel()
	g, _ := errgroup.WithContext(ctx)
	for _, h := range candidates {
		h := h
		g.Go(func() error {
			if !m.transport.EnsureConnected(h) {
				// Resumes later via Manager.Connected/ConnectionFailure.
				return nil
			}
			return m.transport.SendDatabaseLookup(h, goal)
		})
	}
	if err := g.Wait(); err != nil {
		log.WithFields(logger.Fields{"at": "Manager.dispatchRound", "goal": goal.String(), "error": err.Error()}).
			Debug("one or more lookup sends failed")
	}
}

// SearchReply handles an inbound DatabaseSearchReply (spec §4.E
// "searchReply(from, query, hashes)").
func (m *Manager) SearchReply(from common.Hash, query Key, hashes []common.Hash) {
	m.mu.Lock()
	s, ok := m.byGoal[query]
	if !ok {
		m.mu.Unlock()
		log.WithFields(logger.Fields{"at": "Manager.SearchReply", "goal": query.String(), "error": ErrNoSuchSearch.Error()}).
			Debug("dropping reply for unknown search")
		return
	}

	s.Tried[from] = true
	delete(s.Outstanding, from)
	if m.byCurrent[s.Current] == query {
		delete(m.byCurrent, s.Current)
	}

	var target common.Hash
	copy(target[:], s.Goal[:])
	fromDistance := XORDistance(from, target)
	if s.BestTriedDistance == nil || distanceLess(fromDistance, *s.BestTriedDistance) {
		s.BestTriedDistance = &fromDistance
	}

	candidates := m.selectUnqueriedLocked(s, hashes)
	converged := len(candidates) == 0
	if !converged {
		// Convergence (spec §4.E termination b): the closest unqueried
		// candidate is no closer to the goal than the closest hash
		// already tried.
		closestCandidateDistance := XORDistance(candidates[0], target)
		converged = !distanceLess(closestCandidateDistance, *s.BestTriedDistance)
	}
	if converged {
		m.removeLocked(query)
		m.mu.Unlock()
		log.WithFields(logger.Fields{"at": "Manager.SearchReply", "goal": query.String()}).Debug("search converged")
		m.failure <- query
		return
	}

	s.Current = from
	s.Next = candidates[0]
	m.byCurrent[from] = query
	m.byNext[candidates[0]] = query
	for _, c := range candidates {
		s.Outstanding[c] = true
	}

	// Reset the timeout on progress.
	if s.timer != nil {
		s.timer.Stop()
	}
	m.armTimeoutLocked(s)
	m.mu.Unlock()

	m.dispatchRound(candidates, s, query)
}

// selectUnqueriedLocked merges the replied hashes with the local bucket's
// view and returns up to Alpha closest-to-goal hashes not already tried.
// Caller holds m.mu.
func (m *Manager) selectUnqueriedLocked(s *SearchState, replied []common.Hash) []common.Hash {
	seen := make(map[common.Hash]bool, len(replied))
	pool := make([]common.Hash, 0, len(replied)+BucketSize)
	for _, h := range replied {
		if !seen[h] {
			seen[h] = true
			pool = append(pool, h)
		}
	}
	for _, h := range m.table.ClosestN(s.Goal, BucketSize) {
		if !seen[h] {
			seen[h] = true
			pool = append(pool, h)
		}
	}

	var target common.Hash
	copy(target[:], s.Goal[:])
	var candidates []common.Hash
	for _, h := range pool {
		if s.Tried[h] || s.Outstanding[h] {
			continue
		}
		candidates = append(candidates, h)
	}
	// sort ascending by distance to goal
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0; j-- {
			di := XORDistance(candidates[j], target)
			dj := XORDistance(candidates[j-1], target)
			if distanceLess(di, dj) {
				candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
			} else {
				break
			}
		}
	}
	if len(candidates) > Alpha {
		candidates = candidates[:Alpha]
	}
	return candidates
}

// DatabaseStore handles an inbound DatabaseStore for key (spec §4.E
// "databaseStore(from, key, is_router_info)"): if a search for key
// exists, emits success and cancels it.
func (m *Manager) DatabaseStore(from common.Hash, key Key, value []byte) {
	m.mu.Lock()
	_, ok := m.byGoal[key]
	if ok {
		m.removeLocked(key)
	}
	m.mu.Unlock()
	if ok {
		m.success <- SuccessSignal{Goal: key, Value: value}
	}
}

// Connected resumes any search blocked on rh becoming reachable (spec
// §4.E "connected(rh)").
func (m *Manager) Connected(rh common.Hash) {
	m.mu.Lock()
	goal, isCurrent := m.byCurrent[rh]
	if !isCurrent {
		goal, isCurrent = m.byNext[rh]
	}
	if !isCurrent {
		m.mu.Unlock()
		return
	}
	s := m.byGoal[goal]
	m.mu.Unlock()
	if s != nil {
		m.dispatchRound([]common.Hash{rh}, s, goal)
	}
}

// ConnectionFailure advances any search past rh becoming unreachable
// (spec §4.E "connectionFailure(rh)"). If all α outstanding requests for
// the search have now failed, the search terminates (§4.E termination c).
func (m *Manager) ConnectionFailure(rh common.Hash) {
	m.mu.Lock()
	goal, ok := m.byCurrent[rh]
	if !ok {
		goal, ok = m.byNext[rh]
	}
	if !ok {
		m.mu.Unlock()
		return
	}
	s := m.byGoal[goal]
	if s == nil {
		m.mu.Unlock()
		return
	}
	delete(s.Outstanding, rh)
	allFailed := len(s.Outstanding) == 0
	if allFailed {
		m.removeLocked(goal)
	}
	m.mu.Unlock()
	if allFailed {
		m.failure <- goal
	}
}

// Count returns the number of currently live searches, for tests and
// observability.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byGoal)
}
