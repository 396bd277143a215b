package context

import (
	"github.com/go-i2p/logger"

	"github.com/go-i2p/go-i2p/lib/i2np"
)

// noopTunnelHandler is the default i2np.TunnelHandler: the tunnel data
// plane is out of this core's scope (spec §1 non-goal), so every callback
// just logs at Debug and returns nil, matching the dispatcher's own
// "never fail the connection on an unhandled message" convention.
type noopTunnelHandler struct{}

func (noopTunnelHandler) HandleTunnelData(msg *i2np.TunnelDataMessage) error {
	log.WithFields(logger.Fields{"at": "noopTunnelHandler.HandleTunnelData", "tunnel_id": msg.TunnelID}).
		Debug("dropping tunnel data message, no tunnel data plane wired")
	return nil
}

func (noopTunnelHandler) HandleTunnelGateway(msg *i2np.TunnelGatway) error {
	log.WithFields(logger.Fields{"at": "noopTunnelHandler.HandleTunnelGateway", "tunnel_id": msg.TunnelID}).
		Debug("dropping tunnel gateway message, no tunnel data plane wired")
	return nil
}

func (noopTunnelHandler) HandleTunnelBuildRequest(msg *i2np.TunnelBuild) error {
	log.WithFields(logger.Fields{"at": "noopTunnelHandler.HandleTunnelBuildRequest"}).
		Debug("dropping tunnel build request, no tunnel pool wired")
	return nil
}

func (noopTunnelHandler) HandleTunnelBuildReply(msg *i2np.TunnelBuildReply) error {
	log.WithFields(logger.Fields{"at": "noopTunnelHandler.HandleTunnelBuildReply"}).
		Debug("dropping tunnel build reply, no tunnel pool wired")
	return nil
}

func (noopTunnelHandler) HandleVariableTunnelBuildRequest(msg *i2np.VariableTunnelBuild) error {
	log.WithFields(logger.Fields{"at": "noopTunnelHandler.HandleVariableTunnelBuildRequest"}).
		Debug("dropping variable tunnel build request, no tunnel pool wired")
	return nil
}

func (noopTunnelHandler) HandleVariableTunnelBuildReply(msg *i2np.VariableTunnelBuildReply) error {
	log.WithFields(logger.Fields{"at": "noopTunnelHandler.HandleVariableTunnelBuildReply"}).
		Debug("dropping variable tunnel build reply, no tunnel pool wired")
	return nil
}

func (noopTunnelHandler) HandleShortTunnelBuildRequest(msg *i2np.ShortTunnelBuild) error {
	log.WithFields(logger.Fields{"at": "noopTunnelHandler.HandleShortTunnelBuildRequest"}).
		Debug("dropping short tunnel build request, no tunnel pool wired")
	return nil
}

func (noopTunnelHandler) HandleShortTunnelBuildReply(msg *i2np.ShortTunnelBuildReply) error {
	log.WithFields(logger.Fields{"at": "noopTunnelHandler.HandleShortTunnelBuildReply"}).
		Debug("dropping short tunnel build reply, no tunnel pool wired")
	return nil
}

var _ i2np.TunnelHandler = noopTunnelHandler{}
