package establish

import (
	"net"
	"sync"
	"time"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/router_identity"
	"github.com/go-i2p/go-i2p/lib/crypto/dsa"
	"github.com/go-i2p/go-i2p/lib/ssuwire"
	"github.com/go-i2p/logger"
	"golang.org/x/time/rate"
)

// Signal is emitted on Manager.Established when a handshake completes
// (spec §6 "established(router_hash, inbound?)").
type Signal struct {
	Hash     common.Hash
	Inbound  bool
}

// Established carries the session keys the caller (the peer/session layer)
// should use from now on, handed off out-of-band from the success signal
// so the signal channel itself stays a small, comparable value.
type Established struct {
	Signal
	Endpoint   Endpoint
	Identity   *router_identity.RouterIdentity
	SessionKey [32]byte
	MacKey     [32]byte
}

// Manager implements the SSU establishment state machine (spec §4.B). All
// state mutation happens under one mutex (spec §5 "Shared state"); signal
// emission happens after the lock is released, via bounded channels rather
// than hidden global dispatch (spec §9 "Signal/slot graph").
type Manager struct {
	mu     sync.Mutex
	states map[Endpoint]*State

	rateMu   sync.Mutex
	ipLimits map[string]*rate.Limiter

	ourSigningKey dsa.PrivateKey
	ourIdentity   *router_identity.RouterIdentity
	ourIP         net.IP
	ourPort       uint16

	established chan Established
	failure     chan common.Hash
}

// NewManager wires a Manager around the local router's signing key and
// published identity — the two pieces of local state every handshake
// needs to sign or verify against.
func NewManager(signingKey dsa.PrivateKey, identity *router_identity.RouterIdentity, ourIP net.IP, ourPort uint16) *Manager {
	return &Manager{
		states:        make(map[Endpoint]*State),
		ipLimits:      make(map[string]*rate.Limiter),
		ourSigningKey: signingKey,
		ourIdentity:   identity,
		ourIP:         ourIP,
		ourPort:       ourPort,
		established:   make(chan Established, 32),
		failure:       make(chan common.Hash, 32),
	}
}

// Established is the channel the caller listens on for successful
// handshakes.
func (m *Manager) Established() <-chan Established { return m.established }

// Failure is the channel the caller listens on for failed handshakes.
func (m *Manager) Failure() <-chan common.Hash { return m.failure }

func (m *Manager) limiterFor(ip string) *rate.Limiter {
	m.rateMu.Lock()
	defer m.rateMu.Unlock()
	l, ok := m.ipLimits[ip]
	if !ok {
		// burst 1: "max concurrent establishments per remote IP: 1" (spec §5).
		l = rate.NewLimiter(rate.Every(HandshakeTimeout), 1)
		m.ipLimits[ip] = l
	}
	return l
}

// Connect initiates an outbound handshake to ep, whose published
// introduction key and router identity are already known (from its
// RouterInfo, fetched by the caller out of the external router database).
// theirIdentity is stashed on the new State immediately, so
// handleSessionCreated can verify the responder's signature without the
// caller having to remember to call SetTheirIdentity separately.
// It returns the SessionRequest packet ready for the UDP layer to send.
func (m *Manager) Connect(ep Endpoint, introKey [32]byte, theirIdentity *router_identity.RouterIdentity, now time.Time) ([]byte, error) {
	m.mu.Lock()
	if _, exists := m.states[ep]; exists {
		m.mu.Unlock()
		return nil, ErrAlreadyEstablishing
	}
	if !m.limiterFor(ep.IP).Allow() {
		m.mu.Unlock()
		return nil, ErrRateLimited
	}

	st := newState(ep, Outbound)
	priv, x, err := generateDH()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	st.dh = priv
	st.DHX = x
	st.IntroKey = introKey
	st.TheirIdentity = theirIdentity
	st.Phase = PhaseRequestSent
	m.states[ep] = st
	m.mu.Unlock()

	ip := net.ParseIP(ep.IP)
	req := SessionRequest{X: x, BobIP: ip}
	packet, err := ssuwire.Encode(ssuwire.PayloadSessionRequest, req.MarshalBinary(),
		ssuwire.SessionKey(introKey), ssuwire.MacKey(introKey), ip, ep.Port, now)
	if err != nil {
		m.fail(ep, WrapError(err, "encode SessionRequest"))
		return nil, err
	}
	log.WithFields(logger.Fields{"endpoint": ep, "phase": st.Phase.String()}).Debug("establish: sent session request")
	return packet, nil
}

// HandlePacket feeds one decrypted, type-identified inbound handshake
// packet into the state machine for ep, returning an outbound reply packet
// when the state machine produces one (nil otherwise).
//
// ourIntroKey is this router's own published introduction key, used to
// decrypt/encrypt the very first packet of an inbound handshake before any
// DH-derived key exists.
func (m *Manager) HandlePacket(ep Endpoint, payloadType byte, plaintext []byte, ourIntroKey [32]byte, now time.Time) ([]byte, error) {
	switch payloadType {
	case ssuwire.PayloadSessionRequest:
		return m.handleSessionRequest(ep, plaintext, ourIntroKey, now)
	case ssuwire.PayloadSessionCreated:
		return m.handleSessionCreated(ep, plaintext, now)
	case ssuwire.PayloadSessionConfirmed:
		return m.handleSessionConfirmed(ep, plaintext, now)
	default:
		return nil, ErrUnexpectedPhase
	}
}

func (m *Manager) handleSessionRequest(ep Endpoint, plaintext []byte, ourIntroKey [32]byte, now time.Time) ([]byte, error) {
	req, err := UnmarshalSessionRequest(plaintext)
	if err != nil {
		return nil, WrapError(err, "parse SessionRequest")
	}

	m.mu.Lock()
	if _, exists := m.states[ep]; exists {
		m.mu.Unlock()
		return nil, ErrAlreadyEstablishing
	}
	if !m.limiterFor(ep.IP).Allow() {
		m.mu.Unlock()
		return nil, ErrRateLimited
	}
	st := newState(ep, Inbound)
	priv, y, err := generateDH()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	st.dh = priv
	st.DHX = req.X
	st.DHY = y
	st.IntroKey = ourIntroKey
	st.SessionKey, st.MacKey = deriveKeys(priv.sharedSecret(req.X))
	st.Phase = PhaseRequestReceived
	st.SignedOnTime = uint32(now.Unix())
	m.states[ep] = st
	m.mu.Unlock()

	ip := net.ParseIP(ep.IP)
	material := canonicalSignedMaterial(req.X, y, ip, ep.Port, m.ourIP, m.ourPort, 0, st.SignedOnTime)
	sig, err := m.ourSigningKey.Sign(material)
	if err != nil {
		m.fail(ep, WrapError(err, "sign SessionCreated"))
		return nil, err
	}
	encSig, err := encryptSignature(st.SessionKey, sig)
	if err != nil {
		m.fail(ep, err)
		return nil, err
	}

	reply := SessionCreated{
		Y:                  y,
		AliceIP:            ip,
		AlicePort:          ep.Port,
		BobIP:              m.ourIP,
		BobPort:            m.ourPort,
		SignedOnTime:       st.SignedOnTime,
		EncryptedSignature: encSig,
	}
	st.Phase = PhaseCreatedSent
	log.WithFields(logger.Fields{"endpoint": ep, "phase": st.Phase.String()}).Debug("establish: sent session created")

	return ssuwire.Encode(ssuwire.PayloadSessionCreated, reply.MarshalBinary(),
		ssuwire.SessionKey(ourIntroKey), ssuwire.MacKey(ourIntroKey), ip, ep.Port, now)
}

func (m *Manager) handleSessionCreated(ep Endpoint, plaintext []byte, now time.Time) ([]byte, error) {
	m.mu.Lock()
	st, ok := m.states[ep]
	if !ok {
		m.mu.Unlock()
		return nil, ErrUnknownEndpoint
	}
	if st.Phase != PhaseRequestSent {
		m.mu.Unlock()
		m.fail(ep, ErrUnexpectedPhase)
		return nil, ErrUnexpectedPhase
	}
	m.mu.Unlock()

	created, err := UnmarshalSessionCreated(plaintext)
	if err != nil {
		m.fail(ep, WrapError(err, "parse SessionCreated"))
		return nil, err
	}

	sessionKey, macKey := deriveKeys(st.dh.sharedSecret(created.Y))
	sig, err := decryptSignature(sessionKey, created.EncryptedSignature)
	if err != nil {
		m.fail(ep, WrapError(err, "decrypt SessionCreated signature"))
		return nil, err
	}

	// Connect (or SetTheirIdentity) stored the responder's identity, taken
	// from its RouterInfo, on State; without it the signature cannot be
	// verified and the handshake fails.
	if st.TheirIdentity == nil {
		m.fail(ep, ErrSignatureFailed)
		return nil, ErrSignatureFailed
	}
	theirSigningKey, err := signingKeyOf(st.TheirIdentity)
	if err != nil {
		m.fail(ep, err)
		return nil, err
	}
	material := canonicalSignedMaterial(st.DHX, created.Y, m.ourIP, m.ourPort, created.BobIP, created.BobPort, created.RelayTag, created.SignedOnTime)
	if err := theirSigningKey.Verify(material, sig); err != nil {
		m.fail(ep, ErrSignatureFailed)
		return nil, ErrSignatureFailed
	}

	m.mu.Lock()
	st.DHY = created.Y
	st.SessionKey = sessionKey
	st.MacKey = macKey
	st.SignedOnTime = uint32(now.Unix())
	st.Phase = PhaseCreatedReceived
	m.mu.Unlock()

	ourIdentBytes := m.ourIdentity.Bytes()
	confirmMaterial := canonicalSignedMaterial(st.DHX, created.Y, m.ourIP, m.ourPort, created.BobIP, created.BobPort, created.RelayTag, st.SignedOnTime)
	sig2, err := m.ourSigningKey.Sign(confirmMaterial)
	if err != nil {
		m.fail(ep, err)
		return nil, err
	}
	confirmed := SessionConfirmed{IdentityBytes: ourIdentBytes, SignedOnTime: st.SignedOnTime, Signature: sig2}

	m.mu.Lock()
	st.Phase = PhaseConfirmedSent
	m.mu.Unlock()
	log.WithFields(logger.Fields{"endpoint": ep, "phase": st.Phase.String()}).Debug("establish: sent session confirmed")

	packet, err := ssuwire.Encode(ssuwire.PayloadSessionConfirmed, confirmed.MarshalBinary(),
		ssuwire.SessionKey(sessionKey), ssuwire.MacKey(macKey), created.BobIP, created.BobPort, now)
	if err != nil {
		m.fail(ep, err)
		return nil, err
	}

	m.succeed(ep)
	return packet, nil
}

func (m *Manager) handleSessionConfirmed(ep Endpoint, plaintext []byte, now time.Time) ([]byte, error) {
	m.mu.Lock()
	st, ok := m.states[ep]
	if !ok {
		m.mu.Unlock()
		return nil, ErrUnknownEndpoint
	}
	if st.Phase != PhaseCreatedSent {
		m.mu.Unlock()
		m.fail(ep, ErrUnexpectedPhase)
		return nil, ErrUnexpectedPhase
	}
	m.mu.Unlock()

	confirmed, err := UnmarshalSessionConfirmed(plaintext)
	if err != nil {
		m.fail(ep, WrapError(err, "parse SessionConfirmed"))
		return nil, err
	}
	identity, _, err := router_identity.ReadRouterIdentity(confirmed.IdentityBytes)
	if err != nil {
		m.fail(ep, WrapError(err, "parse initiator identity"))
		return nil, err
	}
	theirSigningKey, err := signingKeyOf(&identity)
	if err != nil {
		m.fail(ep, err)
		return nil, err
	}

	ip := net.ParseIP(ep.IP)
	material := canonicalSignedMaterial(st.DHX, st.DHY, ip, ep.Port, m.ourIP, m.ourPort, 0, confirmed.SignedOnTime)
	if err := theirSigningKey.Verify(material, confirmed.Signature); err != nil {
		m.fail(ep, ErrSignatureFailed)
		return nil, ErrSignatureFailed
	}

	m.mu.Lock()
	st.TheirIdentity = &identity
	st.Phase = PhaseConfirmedReceived
	m.mu.Unlock()

	m.succeed(ep)
	return nil, nil
}

// succeed transfers a handshake to ESTABLISHED, removes its state-table
// entry, and emits the success signal outside the lock (spec §5 "Signals
// ... must be emitted outside all locks").
func (m *Manager) succeed(ep Endpoint) {
	m.mu.Lock()
	st, ok := m.states[ep]
	if !ok {
		m.mu.Unlock()
		return
	}
	st.Phase = PhaseEstablished
	delete(m.states, ep)
	m.mu.Unlock()

	log.WithFields(logger.Fields{"endpoint": ep, "direction": st.Direction.String()}).Debug("establish: handshake succeeded")
	m.established <- Established{
		Signal:     Signal{Hash: st.TheirHash(), Inbound: st.Direction == Inbound},
		Endpoint:   ep,
		Identity:   st.TheirIdentity,
		SessionKey: st.SessionKey,
		MacKey:     st.MacKey,
	}
}

// fail tears down a handshake: the state is destroyed, its timer
// cancelled (via epoch bump), and the failure signal emitted outside the
// lock (spec §4.B "Failure semantics").
func (m *Manager) fail(ep Endpoint, err error) {
	m.mu.Lock()
	st, ok := m.states[ep]
	if !ok {
		m.mu.Unlock()
		return
	}
	st.Phase = PhaseFailure
	st.bumpEpoch()
	if st.timer != nil {
		st.timer.Stop()
	}
	hash := st.TheirHash()
	delete(m.states, ep)
	m.mu.Unlock()

	log.WithFields(logger.Fields{"endpoint": ep, "error": err.Error()}).Debug("establish: handshake failed")
	m.failure <- hash
}

// ExpireDeadlines scans for in-progress states past their handshake
// deadline and fails them (spec §4.B "Any phase: deadline(10s) ... ->
// FAILURE"). The caller is expected to invoke this periodically from its
// single event loop (spec §5).
func (m *Manager) ExpireDeadlines(now time.Time) {
	m.mu.Lock()
	var expired []Endpoint
	for ep, st := range m.states {
		if now.After(st.Deadline) {
			expired = append(expired, ep)
		}
	}
	m.mu.Unlock()

	for _, ep := range expired {
		m.fail(ep, ErrTimeout)
	}
}

// PendingCount reports the number of in-progress handshakes, for tests and
// diagnostics.
func (m *Manager) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}

// SetTheirIdentity overrides the responder's identity on an in-progress
// outbound state. Connect already stashes the identity it was given, so
// this is only needed if the caller learns or corrects it afterward.
func (m *Manager) SetTheirIdentity(ep Endpoint, identity *router_identity.RouterIdentity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.states[ep]; ok {
		st.TheirIdentity = identity
	}
}

func signingKeyOf(identity *router_identity.RouterIdentity) (dsa.PublicKey, error) {
	var pk dsa.PublicKey
	raw := identity.SigningPublicKey().Bytes()
	if len(raw) < len(pk) {
		return pk, ErrSignatureFailed
	}
	copy(pk[:], raw[len(raw)-len(pk):])
	return pk, nil
}
