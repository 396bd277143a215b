package ssu

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/router_identity"
	"github.com/go-i2p/go-i2p/lib/establish"
	"github.com/go-i2p/go-i2p/lib/i2np"
	"github.com/go-i2p/go-i2p/lib/peer"
	"github.com/go-i2p/go-i2p/lib/ssuwire"
	"github.com/go-i2p/logger"
)

// IdleSessionTimeout is how long a peer session may sit silent before the
// transport prunes it (spec §4.C "keepalive").
const IdleSessionTimeout = 5 * time.Minute

// housekeepInterval governs how often the event loop checks handshake
// deadlines and idle sessions (spec §5 "timer expiry" suspension point).
const housekeepInterval = 1 * time.Second

// readBufferSize is comfortably larger than any legal SSU datagram.
const readBufferSize = 2048

// Transport owns the UDP socket and runs the single event loop that
// decrypts/parses inbound datagrams and routes them to the establishment
// manager or an established peer's reassembly state (spec §2 "Data
// flow", §5 "Scheduling model").
type Transport struct {
	conn   net.PacketConn
	ourIP  net.IP
	ourPort uint16
	introKey [32]byte

	establishMgr *establish.Manager
	peers        *peer.Table
	dispatcher   *i2np.Dispatcher

	epMu      sync.RWMutex
	epToHash  map[establish.Endpoint]common.Hash

	// OnEstablished/OnFailure let a higher layer (lib/context) observe the
	// same handshake outcomes this transport already consumes, without a
	// second reader racing it for values off establishMgr's channels.
	OnEstablished func(establish.Established)
	OnFailure     func(common.Hash)

	closed int32
}

// NewTransport wires a Transport around an already-bound socket and the
// establishment/peer/dispatch layers it drives (spec §9 "specify each
// component's dependencies explicitly").
func NewTransport(conn net.PacketConn, ourIP net.IP, ourPort uint16, introKey [32]byte,
	establishMgr *establish.Manager, peers *peer.Table, dispatcher *i2np.Dispatcher) *Transport {
	return &Transport{
		conn:         conn,
		ourIP:        ourIP,
		ourPort:      ourPort,
		introKey:     introKey,
		establishMgr: establishMgr,
		peers:        peers,
		dispatcher:   dispatcher,
		epToHash:     make(map[establish.Endpoint]common.Hash),
	}
}

// Connect initiates an outbound handshake to ep (spec §4.B "OUTBOUND
// initiator"). theirIdentity is the responder's full router identity, as
// published in the RouterInfo the caller resolved ep and introKey from.
func (t *Transport) Connect(ep establish.Endpoint, introKey [32]byte, theirIdentity *router_identity.RouterIdentity) error {
	packet, err := t.establishMgr.Connect(ep, introKey, theirIdentity, time.Now())
	if err != nil {
		return WrapError(err, "connect")
	}
	return t.writeTo(packet, ep)
}

func (t *Transport) writeTo(packet []byte, ep establish.Endpoint) error {
	addr := &net.UDPAddr{IP: net.ParseIP(ep.IP), Port: int(ep.Port)}
	_, err := t.conn.WriteTo(packet, addr)
	return err
}

// Run is the single event loop (spec §5 "Scheduling model"): it never
// returns until the socket is closed or stop is closed. Every inbound
// datagram is handled on this one goroutine; handshake deadlines, idle
// pruning and handshake outcomes are handled on the housekeeping
// goroutine that Run starts.
func (t *Transport) Run(stop <-chan struct{}) {
	go t.houseKeeper(stop)

	buf := make([]byte, readBufferSize)
	for {
		select {
		case <-stop:
			return
		default:
		}
		if atomic.LoadInt32(&t.closed) == 1 {
			return
		}
		n, addr, err := t.conn.ReadFrom(buf)
		if err != nil {
			log.WithFields(logger.Fields{"at": "Transport.Run", "error": err.Error()}).
				Debug("udp read error, continuing")
			continue
		}
		t.handleDatagram(addr, append([]byte(nil), buf[:n]...))
	}
}

func (t *Transport) houseKeeper(stop <-chan struct{}) {
	ticker := time.NewTicker(housekeepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.establishMgr.ExpireDeadlines(time.Now())
			t.peers.PruneIdle(IdleSessionTimeout)
		case established := <-t.establishMgr.Established():
			t.onEstablished(established)
			if t.OnEstablished != nil {
				t.OnEstablished(established)
			}
		case failedHash := <-t.establishMgr.Failure():
			log.WithFields(logger.Fields{"at": "Transport.houseKeeper", "hash": failedHash}).
				Debug("handshake failed")
			if t.OnFailure != nil {
				t.OnFailure(failedHash)
			}
		}
	}
}

func (t *Transport) onEstablished(e establish.Established) {
	ep := peer.Endpoint{IP: e.Endpoint.IP, Port: e.Endpoint.Port}
	state := peer.NewState(ep, e.Identity, e.Hash, e.SessionKey, e.MacKey, t.onPeerDisconnected)
	t.peers.Insert(state)

	t.epMu.Lock()
	t.epToHash[e.Endpoint] = e.Hash
	t.epMu.Unlock()

	log.WithFields(logger.Fields{"at": "Transport.onEstablished", "hash": e.Hash, "inbound": e.Inbound}).
		Debug("peer session established")
}

func (t *Transport) onPeerDisconnected(hash common.Hash) {
	if p, ok := t.peers.Get(hash); ok {
		t.epMu.Lock()
		delete(t.epToHash, establish.Endpoint{IP: p.Endpoint.IP, Port: p.Endpoint.Port})
		t.epMu.Unlock()
	}
	t.peers.Remove(hash)
	log.WithFields(logger.Fields{"at": "Transport.onPeerDisconnected", "hash": hash}).Debug("peer disconnected")
}

func endpointOf(addr net.Addr) establish.Endpoint {
	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		return establish.Endpoint{}
	}
	return establish.NewEndpoint(udpAddr.IP, uint16(udpAddr.Port))
}

// handleDatagram decrypts/parses one inbound UDP datagram and routes it
// (spec §2 "Data flow"): to an established peer's reassembly state if one
// exists for this endpoint's hash, otherwise into the establishment
// manager.
func (t *Transport) handleDatagram(addr net.Addr, raw []byte) {
	ep := endpointOf(addr)
	now := time.Now()

	if peerState := t.peerForEndpoint(ep); peerState != nil {
		t.handleEstablishedDatagram(peerState, ep, raw, now)
		return
	}

	payloadType, plaintext, err := ssuwire.Decode(raw, ssuwire.SessionKey(t.introKey), ssuwire.MacKey(t.introKey), t.ourIP, t.ourPort, now)
	if err != nil {
		log.WithFields(logger.Fields{"at": "Transport.handleDatagram", "endpoint": ep, "error": err.Error()}).
			Debug("dropping undecodable handshake datagram")
		return
	}

	reply, err := t.establishMgr.HandlePacket(ep, payloadType, plaintext, t.introKey, now)
	if err != nil {
		log.WithFields(logger.Fields{"at": "Transport.handleDatagram", "endpoint": ep, "error": err.Error()}).
			Debug("handshake packet rejected")
		return
	}
	if reply != nil {
		if werr := t.writeTo(reply, ep); werr != nil {
			log.WithFields(logger.Fields{"at": "Transport.handleDatagram", "error": werr.Error()}).
				Debug("failed to send handshake reply")
		}
	}
}

// peerForEndpoint looks up an established session by remote endpoint.
// peer.Table itself is hash-keyed (spec §3 "Peer state"), so the
// transport keeps a small endpoint->hash side index populated on
// establishment and torn down on disconnect.
func (t *Transport) peerForEndpoint(ep establish.Endpoint) *peer.State {
	t.epMu.RLock()
	hash, ok := t.epToHash[ep]
	t.epMu.RUnlock()
	if !ok {
		return nil
	}
	p, _ := t.peers.Get(hash)
	return p
}

func (t *Transport) handleEstablishedDatagram(p *peer.State, ep establish.Endpoint, raw []byte, now time.Time) {
	payloadType, plaintext, err := ssuwire.Decode(raw, ssuwire.SessionKey(p.CurrentSessionKey), ssuwire.MacKey(p.CurrentMacKey), t.ourIP, t.ourPort, now)
	if err != nil {
		if err == ssuwire.ErrBadMac {
			if p.RecordMacFailure() {
				t.onPeerDisconnected(p.Hash)
			}
		}
		log.WithFields(logger.Fields{"at": "Transport.handleEstablishedDatagram", "hash": p.Hash, "error": err.Error()}).
			Debug("dropping undecodable peer datagram")
		return
	}
	p.Touch()

	if payloadType != ssuwire.PayloadData {
		log.WithFields(logger.Fields{"at": "Transport.handleEstablishedDatagram", "type": payloadType}).
			Debug("non-data payload on established session, ignoring")
		return
	}

	acks, fragments, err := DecodeDataFrame(plaintext)
	if err != nil {
		log.WithFields(logger.Fields{"at": "Transport.handleEstablishedDatagram", "error": err.Error()}).
			Debug("dropping malformed data frame")
		return
	}

	for _, a := range acks {
		p.AckOutbound(a.MsgID, a.Bitmap)
	}
	for _, f := range fragments {
		t.handleFragment(p, f)
	}
}

func (t *Transport) handleFragment(p *peer.State, f Fragment) {
	inbound, err := p.InboundState(f.MsgID)
	if err != nil {
		log.WithFields(logger.Fields{"at": "Transport.handleFragment", "hash": p.Hash, "error": err.Error()}).
			Debug("dropping fragment, inbound state limit reached")
		return
	}
	if err := inbound.AddFragment(f.FragNum, f.IsLast, f.Payload); err != nil {
		log.WithFields(logger.Fields{"at": "Transport.handleFragment", "error": err.Error()}).Debug("fragment rejected")
		return
	}
	if !inbound.AllFragmentsReceived() {
		return
	}
	assembled, err := inbound.Assemble()
	p.CompleteInbound(f.MsgID)
	if err != nil {
		log.WithFields(logger.Fields{"at": "Transport.handleFragment", "error": err.Error()}).Debug("assemble failed")
		return
	}
	if err := t.dispatcher.Dispatch(p.Hash, assembled); err != nil {
		log.WithFields(logger.Fields{"at": "Transport.handleFragment", "error": err.Error()}).Error("dispatch failed")
	}
}

// SendI2NP fragments and schedules an outbound I2NP message to an
// established peer (spec §2 "Outbound is symmetric").
func (t *Transport) SendI2NP(hash common.Hash, msgID uint32, payload []byte) error {
	p, ok := t.peers.Get(hash)
	if !ok {
		return ErrNoSession
	}
	ep := establish.Endpoint{IP: p.Endpoint.IP, Port: p.Endpoint.Port}
	p.NewOutbound(msgID, payload, func(fragNum uint8, isLast bool, data []byte) error {
		frame := EncodeDataFrame(nil, []Fragment{{MsgID: msgID, FragNum: fragNum, IsLast: isLast, Payload: data}})
		packet, err := ssuwire.Encode(ssuwire.PayloadData, frame, ssuwire.SessionKey(p.CurrentSessionKey), ssuwire.MacKey(p.CurrentMacKey), net.ParseIP(ep.IP), ep.Port, time.Now())
		if err != nil {
			return err
		}
		return t.writeTo(packet, ep)
	})
	return nil
}

// Close stops the event loop and releases the socket.
func (t *Transport) Close() error {
	atomic.StoreInt32(&t.closed, 1)
	return t.conn.Close()
}
