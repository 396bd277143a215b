package context

import (
	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/logger"

	"github.com/go-i2p/go-i2p/lib/i2np"
	"github.com/go-i2p/go-i2p/lib/kad"
)

// registerDatabaseHandlers wires the three netdb I2NP message types into
// the search manager, the other half of the iterative lookup loop whose
// outbound side lives in searchTransport (spec §4.E).
func (rc *RouterContext) registerDatabaseHandlers() {
	rc.Dispatcher.Register(i2np.I2NP_MESSAGE_TYPE_DATABASE_SEARCH_REPLY, rc.handleDatabaseSearchReply)
	rc.Dispatcher.Register(i2np.I2NP_MESSAGE_TYPE_DATABASE_STORE, rc.handleDatabaseStore)
	rc.Dispatcher.Register(i2np.I2NP_MESSAGE_TYPE_DATABASE_LOOKUP, rc.handleDatabaseLookup)
}

// registerGarlicHandler wires the Garlic message type: the outer
// ElGamal layer is decrypted with this router's EncryptionKey, the
// cleartext is parsed into its cloves, and each clove addressed to LOCAL
// delivery is re-dispatched as if it had arrived on the wire directly
// (spec §4.D). Cloves addressed to ROUTER or TUNNEL delivery are outside
// this core's scope and are logged and dropped.
func (rc *RouterContext) registerGarlicHandler() {
	rc.Dispatcher.Register(i2np.I2NP_MESSAGE_TYPE_GARLIC, rc.handleGarlic)
}

func (rc *RouterContext) handleGarlic(from common.Hash, _ i2np.I2NPNTCPHeader, payload []byte) error {
	enc, err := i2np.NewGarlicElGamal(payload)
	if err != nil {
		return err
	}
	if len(enc.Data) != 514 {
		log.WithFields(logger.Fields{"at": "RouterContext.handleGarlic", "ciphertext_len": len(enc.Data)}).
			Debug("dropping garlic message with non-single-block ciphertext, hybrid AES layer not wired")
		return nil
	}
	cleartext, err := rc.EncryptionKey.Decrypt(enc.Data)
	if err != nil {
		return err
	}
	garlic, err := i2np.DeserializeGarlic(cleartext, 0)
	if err != nil {
		return err
	}
	for i, clove := range garlic.Cloves {
		deliveryType := (clove.DeliveryInstructions.Flag >> 5) & 0x03
		if deliveryType != byte(i2np.LOCAL) {
			log.WithFields(logger.Fields{"at": "RouterContext.handleGarlic", "clove_index": i, "delivery_type": deliveryType}).
				Debug("dropping garlic clove addressed to router/tunnel delivery, data plane not wired")
			continue
		}
		if err := rc.Dispatcher.Dispatch(from, clove.RawMessage); err != nil {
			log.WithFields(logger.Fields{"at": "RouterContext.handleGarlic", "clove_index": i, "error": err.Error()}).
				Debug("failed to redispatch garlic clove")
		}
	}
	return nil
}

// registerDeliveryStatusHandler wires the DeliveryStatus message type
// into the outbound message tracker: every DeliveryStatus confirms the
// message ID it names, regardless of who is (or isn't) waiting on it.
func (rc *RouterContext) registerDeliveryStatusHandler() {
	rc.Dispatcher.Register(i2np.I2NP_MESSAGE_TYPE_DELIVERY_STATUS, rc.handleDeliveryStatus)
}

func (rc *RouterContext) handleDeliveryStatus(_ common.Hash, _ i2np.I2NPNTCPHeader, payload []byte) error {
	status, err := i2np.ReadDeliveryStatusMessage(payload)
	if err != nil {
		return err
	}
	rc.OutboundTracker.Confirm(status.StatusMessageID)
	return nil
}

// registerDataHandler wires the Data message type to LocalDestination, a
// settable callback for delivering application payloads that arrived
// addressed to this router (spec §1 non-goal: application streaming
// itself is out of scope, but handing the bytes off to a local consumer
// is not). The default callback logs and drops.
func (rc *RouterContext) registerDataHandler() {
	rc.Dispatcher.Register(i2np.I2NP_MESSAGE_TYPE_DATA, rc.handleData)
}

func (rc *RouterContext) handleData(from common.Hash, _ i2np.I2NPNTCPHeader, payload []byte) error {
	msg, err := i2np.ReadDataMessage(payload)
	if err != nil {
		return err
	}
	rc.LocalDestination(from, msg.Payload)
	return nil
}

// registerTunnelHandlers wires the eight tunnel-build and tunnel-data I2NP
// message types to rc.TunnelHandler (spec §4.D). The tunnel data plane
// itself is an external collaborator (spec §1 non-goal); the default
// TunnelHandler just logs and drops.
func (rc *RouterContext) registerTunnelHandlers() {
	rc.Dispatcher.Register(i2np.I2NP_MESSAGE_TYPE_TUNNEL_DATA, rc.handleTunnelData)
	rc.Dispatcher.Register(i2np.I2NP_MESSAGE_TYPE_TUNNEL_GATEWAY, rc.handleTunnelGateway)
	rc.Dispatcher.Register(i2np.I2NP_MESSAGE_TYPE_TUNNEL_BUILD, rc.handleTunnelBuild)
	rc.Dispatcher.Register(i2np.I2NP_MESSAGE_TYPE_TUNNEL_BUILD_REPLY, rc.handleTunnelBuildReply)
	rc.Dispatcher.Register(i2np.I2NP_MESSAGE_TYPE_VARIABLE_TUNNEL_BUILD, rc.handleVariableTunnelBuild)
	rc.Dispatcher.Register(i2np.I2NP_MESSAGE_TYPE_VARIABLE_TUNNEL_BUILD_REPLY, rc.handleVariableTunnelBuildReply)
	rc.Dispatcher.Register(i2np.I2NP_MESSAGE_TYPE_SHORT_TUNNEL_BUILD, rc.handleShortTunnelBuild)
	rc.Dispatcher.Register(i2np.I2NP_MESSAGE_TYPE_SHORT_TUNNEL_BUILD_REPLY, rc.handleShortTunnelBuildReply)
}

func (rc *RouterContext) handleTunnelData(_ common.Hash, _ i2np.I2NPNTCPHeader, payload []byte) error {
	msg, err := i2np.ReadTunnelDataMessage(payload)
	if err != nil {
		return err
	}
	return rc.TunnelHandler.HandleTunnelData(msg)
}

func (rc *RouterContext) handleTunnelGateway(_ common.Hash, _ i2np.I2NPNTCPHeader, payload []byte) error {
	msg, err := i2np.ReadTunnelGateway(payload)
	if err != nil {
		return err
	}
	return rc.TunnelHandler.HandleTunnelGateway(msg)
}

func (rc *RouterContext) handleTunnelBuild(_ common.Hash, _ i2np.I2NPNTCPHeader, payload []byte) error {
	records, err := i2np.ReadTunnelBuildMessage(payload)
	if err != nil {
		return err
	}
	return rc.TunnelHandler.HandleTunnelBuildRequest(&records)
}

func (rc *RouterContext) handleTunnelBuildReply(_ common.Hash, _ i2np.I2NPNTCPHeader, payload []byte) error {
	reply, err := i2np.ReadTunnelBuildReply(payload)
	if err != nil {
		return err
	}
	return rc.TunnelHandler.HandleTunnelBuildReply(&reply)
}

func (rc *RouterContext) handleVariableTunnelBuild(_ common.Hash, _ i2np.I2NPNTCPHeader, payload []byte) error {
	msg, err := i2np.ReadVariableTunnelBuild(payload)
	if err != nil {
		return err
	}
	return rc.TunnelHandler.HandleVariableTunnelBuildRequest(msg)
}

func (rc *RouterContext) handleVariableTunnelBuildReply(_ common.Hash, _ i2np.I2NPNTCPHeader, payload []byte) error {
	msg, err := i2np.ReadVariableTunnelBuildReply(payload)
	if err != nil {
		return err
	}
	return rc.TunnelHandler.HandleVariableTunnelBuildReply(msg)
}

func (rc *RouterContext) handleShortTunnelBuild(_ common.Hash, _ i2np.I2NPNTCPHeader, payload []byte) error {
	msg, err := i2np.ReadShortTunnelBuild(payload)
	if err != nil {
		return err
	}
	return rc.TunnelHandler.HandleShortTunnelBuildRequest(msg)
}

func (rc *RouterContext) handleShortTunnelBuildReply(_ common.Hash, _ i2np.I2NPNTCPHeader, payload []byte) error {
	msg, err := i2np.ReadShortTunnelBuildReply(payload)
	if err != nil {
		return err
	}
	return rc.TunnelHandler.HandleShortTunnelBuildReply(msg)
}

func (rc *RouterContext) handleDatabaseSearchReply(from common.Hash, _ i2np.I2NPNTCPHeader, payload []byte) error {
	reply, err := i2np.ReadDatabaseSearchReply(payload)
	if err != nil {
		return err
	}
	rc.Search.SearchReply(from, kad.Key(reply.Key), reply.PeerHashes)
	return nil
}

func (rc *RouterContext) handleDatabaseStore(from common.Hash, _ i2np.I2NPNTCPHeader, payload []byte) error {
	store, err := i2np.ReadDatabaseStore(payload)
	if err != nil {
		return err
	}
	rc.Table.Insert(from)
	if err := rc.DB.SetRouterInfo(store.Key, store.Data); err != nil {
		log.WithFields(logger.Fields{"at": "RouterContext.handleDatabaseStore", "error": err.Error()}).
			Debug("failed to persist stored router info")
	}
	rc.Search.DatabaseStore(from, kad.Key(store.Key), store.Data)
	return nil
}

// handleDatabaseLookup answers a peer's lookup from the local table and
// router database, replying with the closest known hashes (spec §4.D/§4.E;
// responding with a DatabaseSearchReply is the standard negative/delegate
// response when this router doesn't hold the exact entry itself).
func (rc *RouterContext) handleDatabaseLookup(from common.Hash, _ i2np.I2NPNTCPHeader, payload []byte) error {
	lookup, err := i2np.ReadDatabaseLookup(payload)
	if err != nil {
		return err
	}
	closest := rc.Table.ClosestN(kad.Key(lookup.Key), kad.BucketSize)
	reply := i2np.NewDatabaseSearchReply(lookup.Key, rc.Hash, closest)
	raw, err := reply.MarshalBinary()
	if err != nil {
		return err
	}
	return rc.Transport.SendI2NP(from, uint32(reply.MessageID()), raw)
}
