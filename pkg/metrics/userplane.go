package metrics

// UserPlaneMetrics provides observability for packet forwarding: tunnel
// population, per-direction traffic volume, QoS drops, and session-management
// message outcomes.
//
// This interface is optional - pass nil to disable metrics collection with
// zero overhead.
type UserPlaneMetrics interface {
	// RecordPacket records one processed packet.
	//
	// Parameters:
	//   - direction: "uplink" or "downlink"
	//   - status: "forwarded", "queued", or "dropped"
	//   - bytes: packet size in bytes
	RecordPacket(direction string, status string, bytes int)

	// SetActiveTunnels updates the gauge of currently established tunnels.
	SetActiveTunnels(count int)

	// SetActiveSessions updates the gauge of established forwarding sessions.
	SetActiveSessions(count int)

	// SetAllocatedAddresses updates the gauge of UE addresses currently
	// leased from the pool.
	SetAllocatedAddresses(count int)

	// RecordSessionMessage counts a session-management request by message
	// type and response cause.
	RecordSessionMessage(messageType int, cause int)
}
