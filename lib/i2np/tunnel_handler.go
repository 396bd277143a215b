package i2np

// TunnelID identifies a single-hop tunnel endpoint. The tunnel data plane
// itself lives outside this module; this package only marshals and
// dispatches the I2NP messages that carry tunnel identifiers.
type TunnelID uint32

// TunnelHandler is the single collaborator the Dispatcher calls into for
// tunnel-build and tunnel-data message types (18, 19, 21-26). The tunnel
// pool, hop selection, and data-plane relaying are an external concern.
type TunnelHandler interface {
	HandleTunnelData(msg *TunnelDataMessage) error
	HandleTunnelGateway(msg *TunnelGatway) error
	HandleTunnelBuildRequest(msg *TunnelBuild) error
	HandleTunnelBuildReply(msg *TunnelBuildReply) error
	HandleVariableTunnelBuildRequest(msg *VariableTunnelBuild) error
	HandleVariableTunnelBuildReply(msg *VariableTunnelBuildReply) error
	HandleShortTunnelBuildRequest(msg *ShortTunnelBuild) error
	HandleShortTunnelBuildReply(msg *ShortTunnelBuildReply) error
}
