// Package context wires together the handshake, session, dispatch, and
// search layers into the single RouterContext object a running router
// embeds (spec §3 "Lifecycles", and the SUPPLEMENTED FEATURES note on
// original_source/RouterContext.cpp's constructor).
package context

import (
	"net"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/router_identity"
	"github.com/go-i2p/logger"

	"github.com/go-i2p/go-i2p/lib/crypto/dsa"
	"github.com/go-i2p/go-i2p/lib/crypto/elg"
	"github.com/go-i2p/go-i2p/lib/establish"
	"github.com/go-i2p/go-i2p/lib/i2np"
	"github.com/go-i2p/go-i2p/lib/kad"
	"github.com/go-i2p/go-i2p/lib/peer"
	"github.com/go-i2p/go-i2p/lib/routerdb"
	"github.com/go-i2p/go-i2p/lib/ssu"
)

var log = logger.GetGoI2PLogger()

// RouterContext owns exactly one RouterIdentity, one Kademlia table, and
// the four collaborating managers a running router needs: the SSU
// establishment state machine, the per-peer session table, the I2NP
// dispatcher, and the iterative search manager (spec §3 "Lifecycles";
// original_source/RouterContext.cpp wires the same five collaborators in
// its constructor).
type RouterContext struct {
	Identity *router_identity.RouterIdentity
	Hash     common.Hash

	DB         routerdb.Database
	Table      *kad.Table
	Establish  *establish.Manager
	Peers      *peer.Table
	Dispatcher *i2np.Dispatcher
	Search     *kad.Manager
	Transport  *ssu.Transport

	// EncryptionKey is this router's private ElGamal key, loaded per spec
	// §6 alongside the signing key. It decrypts the outer layer of
	// inbound Garlic messages in handleGarlic (spec §4.D).
	EncryptionKey elg.PrivateKey

	// TunnelHandler receives the tunnel-build and tunnel-data I2NP
	// message types (18/19/21-26); the tunnel data plane itself is an
	// external collaborator (spec §1 non-goal). Defaults to a no-op
	// implementation; callers that build a real tunnel pool replace it
	// before Run.
	TunnelHandler i2np.TunnelHandler

	// OutboundTracker correlates DeliveryStatus (type 4) confirmations
	// back to callers awaiting them.
	OutboundTracker *OutboundMessageTracker

	// LocalDestination receives the payload of every inbound Data
	// message (type 20) addressed to this router. Defaults to a no-op
	// that logs and drops; callers wire it to their client protocol
	// layer, which is otherwise out of this core's scope.
	LocalDestination func(from common.Hash, payload []byte)

	introKey [32]byte
}

// New loads the local router's private keys and published introduction key
// from db, wires every collaborator, seeds the Kademlia table from
// db.GetAllHashes() (the RouterContext.cpp bootstrap step spec.md's prose
// omits), and returns a RouterContext ready to have Run called on it.
func New(db routerdb.Database, identity *router_identity.RouterIdentity, conn net.PacketConn, ourIP net.IP, ourPort uint16) (*RouterContext, error) {
	self := common.HashData(identity.Bytes())

	signingKey, err := loadSigningKey(db)
	if err != nil {
		return nil, WrapError(err, "load signing key")
	}

	encryptionKey, err := loadEncryptionKey(db)
	if err != nil {
		return nil, WrapError(err, "load encryption key")
	}

	introKey, err := loadIntroductionKey(db)
	if err != nil {
		return nil, WrapError(err, "load introduction key")
	}

	establishMgr := establish.NewManager(signingKey, identity, ourIP, ourPort)
	peers := peer.NewTable()
	dispatcher := i2np.NewDispatcher()
	table := kad.NewTable(self)

	transport := ssu.NewTransport(conn, ourIP, ourPort, introKey, establishMgr, peers, dispatcher)

	rc := &RouterContext{
		Identity:        identity,
		Hash:            self,
		DB:              db,
		Table:           table,
		Establish:       establishMgr,
		Peers:           peers,
		Dispatcher:      dispatcher,
		Transport:       transport,
		EncryptionKey:   encryptionKey,
		TunnelHandler:   noopTunnelHandler{},
		OutboundTracker: NewOutboundMessageTracker(),
		LocalDestination: func(from common.Hash, payload []byte) {
			log.WithFields(logger.Fields{"at": "RouterContext.LocalDestination", "from": from, "payload_len": len(payload)}).
				Debug("dropping data message, no client protocol layer wired")
		},
		introKey: introKey,
	}

	searchXport := newSearchTransport(self, transport, peers, establishMgr, db)
	rc.Search = kad.NewManager(table, searchXport)

	transport.OnEstablished = func(e establish.Established) { rc.Search.Connected(e.Hash) }
	transport.OnFailure = func(h common.Hash) { rc.Search.ConnectionFailure(h) }

	rc.registerDatabaseHandlers()
	rc.registerGarlicHandler()
	rc.registerDeliveryStatusHandler()
	rc.registerDataHandler()
	rc.registerTunnelHandlers()

	if err := rc.seedTable(); err != nil {
		return nil, WrapError(err, "seed kademlia table")
	}

	return rc, nil
}

func loadSigningKey(db routerdb.Database) (dsa.PrivateKey, error) {
	pem, err := db.GetConfigValue(routerdb.KeyPrivateSigningKey)
	if err != nil {
		return dsa.PrivateKey{}, ErrMissingSigningKey
	}
	pk, err := routerdb.LoadPKCS8(pem, false)
	if err != nil {
		return dsa.PrivateKey{}, err
	}
	key, ok := pk.DSA()
	if !ok {
		return dsa.PrivateKey{}, ErrWrongKeyKind
	}
	return key, nil
}

func loadEncryptionKey(db routerdb.Database) (elg.PrivateKey, error) {
	pem, err := db.GetConfigValue(routerdb.KeyPrivateEncryptionKey)
	if err != nil {
		return elg.PrivateKey{}, ErrMissingEncryptionKey
	}
	pk, err := routerdb.LoadPKCS8(pem, true)
	if err != nil {
		return elg.PrivateKey{}, err
	}
	key, ok := pk.ElGamal()
	if !ok {
		return elg.PrivateKey{}, ErrWrongKeyKind
	}
	return key, nil
}

func loadIntroductionKey(db routerdb.Database) ([32]byte, error) {
	var key [32]byte
	raw, err := db.GetConfigValue(routerdb.KeyIntroductionKey)
	if err != nil {
		return key, err
	}
	if len(raw) != 32 {
		return key, ErrWrongKeyKind
	}
	copy(key[:], raw)
	return key, nil
}

func (rc *RouterContext) seedTable() error {
	hashes, err := rc.DB.GetAllHashes()
	if err != nil {
		return err
	}
	for _, h := range hashes {
		rc.Table.Insert(h)
	}
	log.WithFields(logger.Fields{"at": "RouterContext.seedTable", "count": len(hashes)}).
		Debug("seeded kademlia table from router database")
	return nil
}

// Run starts the transport's event loop; it blocks until stop is closed.
// The transport's own housekeeping goroutine drives Search.Connected/
// ConnectionFailure via the OnEstablished/OnFailure hooks wired in New.
func (rc *RouterContext) Run(stop <-chan struct{}) {
	rc.Transport.Run(stop)
}

// Close releases the transport's socket.
func (rc *RouterContext) Close() error {
	return rc.Transport.Close()
}
