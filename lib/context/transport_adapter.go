package context

import (
	"errors"
	"strings"

	"github.com/go-i2p/common/base64"
	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/router_info"

	"github.com/go-i2p/go-i2p/lib/establish"
	"github.com/go-i2p/go-i2p/lib/i2np"
	"github.com/go-i2p/go-i2p/lib/kad"
	"github.com/go-i2p/go-i2p/lib/peer"
	"github.com/go-i2p/go-i2p/lib/ssu"
	"github.com/go-i2p/logger"
)

// errNoSSUAddress means a candidate's RouterInfo carries no usable SSU
// RouterAddress (host, port, and 32-byte intro key all present).
var errNoSSUAddress = errors.New("no usable SSU address in routerinfo")

// errBadPort means a RouterAddress's "port" option isn't a plain decimal
// string.
var errBadPort = errors.New("invalid port in routerinfo")

// searchTransport is the narrow kad.Transport view onto an already-wired
// ssu.Transport, carrying only what the search manager is allowed to see
// (spec §9 "specify each component's dependencies explicitly"): it cannot
// reach the RouterContext as a whole, only send lookups and ask whether a
// peer is connected.
type searchTransport struct {
	self      common.Hash
	transport *ssu.Transport
	peers     *peer.Table
	establish *establish.Manager
	db        lookupResolver
}

// lookupResolver is the minimal routerdb access the adapter needs to turn a
// hash into dialing information when no session exists yet.
type lookupResolver interface {
	GetRouterInfo(hash common.Hash) ([]byte, error)
}

func newSearchTransport(self common.Hash, transport *ssu.Transport, peers *peer.Table, mgr *establish.Manager, db lookupResolver) *searchTransport {
	return &searchTransport{self: self, transport: transport, peers: peers, establish: mgr, db: db}
}

// SendDatabaseLookup implements kad.Transport.
func (a *searchTransport) SendDatabaseLookup(to common.Hash, goal kad.Key) error {
	msg := i2np.NewDatabaseLookup(common.Hash(goal), a.self)
	raw, err := msg.MarshalBinary()
	if err != nil {
		return err
	}
	return a.transport.SendI2NP(to, uint32(msg.MessageID()), raw)
}

// EnsureConnected implements kad.Transport: it reports whether a session
// already exists, and if not, resolves the peer's published RouterInfo and
// starts a handshake so the search can resume via Connected/
// ConnectionFailure once it settles.
func (a *searchTransport) EnsureConnected(to common.Hash) bool {
	if _, ok := a.peers.Get(to); ok {
		return true
	}

	raw, err := a.db.GetRouterInfo(to)
	if err != nil {
		log.WithFields(logger.Fields{"at": "searchTransport.EnsureConnected", "hash": to, "error": err.Error()}).
			Debug("no routerinfo for candidate, cannot dial")
		return false
	}
	info, _, err := router_info.ReadRouterInfo(raw)
	if err != nil {
		log.WithFields(logger.Fields{"at": "searchTransport.EnsureConnected", "hash": to, "error": err.Error()}).
			Debug("malformed routerinfo for candidate, cannot dial")
		return false
	}

	ep, introKey, err := ssuEndpointOf(&info)
	if err != nil {
		log.WithFields(logger.Fields{"at": "searchTransport.EnsureConnected", "hash": to, "error": err.Error()}).
			Debug("candidate has no usable SSU address, cannot dial")
		return false
	}

	identity := info.RouterIdentity()
	if err := a.transport.Connect(ep, introKey, identity); err != nil {
		log.WithFields(logger.Fields{"at": "searchTransport.EnsureConnected", "hash": to, "endpoint": ep, "error": err.Error()}).
			Debug("failed to start handshake for candidate")
		return false
	}
	return false
}

// ssuEndpointOf picks the first SSU RouterAddress out of info and extracts
// the dialing endpoint and introduction key from its options, per
// https://geti2p.net/spec/common-structures#routeraddress.
func ssuEndpointOf(info *router_info.RouterInfo) (establish.Endpoint, [32]byte, error) {
	var introKey [32]byte
	for _, addr := range info.RouterAddresses() {
		style, err := addr.TransportStyle().Data()
		if err != nil || !strings.EqualFold(style, "ssu") {
			continue
		}

		host, err := addr.Host()
		if err != nil || host == nil {
			continue
		}
		port, err := addr.Port()
		if err != nil || port == "" {
			continue
		}

		keyStr, err := addr.Options().Values().Get(mustI2PString("key")).Data()
		if err != nil || keyStr == "" {
			continue
		}
		keyBytes, err := base64.DecodeString(keyStr)
		if err != nil || len(keyBytes) != len(introKey) {
			continue
		}
		copy(introKey[:], keyBytes)

		portNum, err := parsePort(port)
		if err != nil {
			continue
		}
		return establish.NewEndpoint(host, portNum), introKey, nil
	}
	return establish.Endpoint{}, introKey, errNoSSUAddress
}

func mustI2PString(s string) common.I2PString {
	str, _ := common.ToI2PString(s)
	return str
}

func parsePort(s string) (uint16, error) {
	var n uint16
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, errBadPort
		}
		n = n*10 + uint16(c-'0')
	}
	return n, nil
}
