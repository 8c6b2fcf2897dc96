package pfcp

// GTP-U traffic directions. The names travel on the wire in
// process-packet requests.
const (
	DirectionUplink   = "uplink"
	DirectionDownlink = "downlink"
)

// Packet processing outcomes.
const (
	PacketOutcomeSuccess = "SUCCESS"
	PacketOutcomeDropped = "DROPPED"
)

// GTPUHeader is the simulated GTP-U header (TS 29.281 §5.1). Version is
// always 1 and the message type 255 (G-PDU) unless set otherwise.
type GTPUHeader struct {
	Version        int    `json:"version,omitempty"`
	MessageType    int    `json:"message_type,omitempty"`
	TEID           string `json:"teid"`
	Length         int    `json:"length"`
	SequenceNumber int    `json:"sequence_number,omitempty"`
}

// GTPUPacketRequest submits one packet for processing on a tunnel.
// Payload stands in for the encapsulated user data; only its length
// matters to QoS enforcement.
type GTPUPacketRequest struct {
	TunnelID  string     `json:"tunnel_id"`
	Direction string     `json:"direction,omitempty"`
	Header    GTPUHeader `json:"header"`
	Payload   string     `json:"payload"`
}

// GTPUPacketResponse reports the outcome of processing one packet.
type GTPUPacketResponse struct {
	Status    string `json:"status"`
	TunnelID  string `json:"tunnel_id"`
	Direction string `json:"direction"`
	Processed bool   `json:"processed"`
}

// IPv6PrefixRequest asks for a dedicated IPv6 prefix allocation.
type IPv6PrefixRequest struct {
	UEID         string `json:"ue_id,omitempty"`
	PrefixLength int    `json:"prefix_length,omitempty"`
}

// IPv6PrefixResponse returns the allocated prefix and first address.
type IPv6PrefixResponse struct {
	Status           string `json:"status"`
	UEID             string `json:"ue_id,omitempty"`
	AllocatedPrefix  string `json:"allocated_prefix"`
	AllocatedAddress string `json:"allocated_address"`
}

// QOSUpdateRequest patches the enforcement parameters of one installed
// QER, addressed by session and rule id.
type QOSUpdateRequest struct {
	SessionID     string         `json:"session_id"`
	QERID         int            `json:"qer_id"`
	QOSParameters map[string]any `json:"qos_parameters"`
}

// QOSUpdateResponse acknowledges an enforcement update.
type QOSUpdateResponse struct {
	Status            string         `json:"status"`
	QOSKey            string         `json:"qos_key"`
	UpdatedParameters map[string]any `json:"updated_parameters,omitempty"`
}
