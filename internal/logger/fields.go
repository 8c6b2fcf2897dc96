package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// These keys are shared by every network function so logs from the whole
// fabric can be aggregated and queried consistently.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Network Function Identity
	// ========================================================================
	KeyNFType       = "nf_type"        // NF type: NRF, AMF, SMF, UPF, ...
	KeyNFInstanceID = "nf_instance_id" // NF instance UUID
	KeyNFStatus     = "nf_status"      // REGISTERED, SUSPENDED, UNDISCOVERABLE
	KeyTargetNF     = "target_nf"      // NF type of an outbound call target
	KeyPeerURL      = "peer_url"       // Resolved base URL of a peer NF

	// ========================================================================
	// Procedure & SBI Operation
	// ========================================================================
	KeyProcedure = "procedure" // Procedure name: REGISTRATION, 5G_AKA, PFCP_ESTABLISH, ...
	KeyService   = "service"   // SBI service name: nnrf-disc, nausf-auth, ...
	KeyMethod    = "method"    // HTTP method
	KeyPath      = "path"      // HTTP path
	KeyStatus    = "status"    // HTTP status code
	KeyCause     = "cause"     // Protocol cause string (NAS/NGAP/PFCP)

	// ========================================================================
	// Subscriber Identity
	// ========================================================================
	KeySupi = "supi" // Permanent subscriber id (imsi-...)
	KeySuci = "suci" // Concealed subscriber id
	KeyGuti = "guti" // Temporary id allocated by AMF
	KeyGpsi = "gpsi" // External subscriber id
	KeyPei  = "pei"  // Equipment id

	// ========================================================================
	// PDU Session
	// ========================================================================
	KeyPduSessionID = "pdu_session_id"
	KeySessionKey   = "session_key" // supi:pduSessionId
	KeyDnn          = "dnn"
	KeySst          = "sst"
	KeySd           = "sd"
	KeyUeIP         = "ue_ip"

	// ========================================================================
	// PFCP (N4)
	// ========================================================================
	KeySeid    = "seid"
	KeySmfSeid = "smf_seid"
	KeyUpfSeid = "upf_seid"
	KeyPdrID   = "pdr_id"
	KeyFarID   = "far_id"
	KeyQerID   = "qer_id"
	KeyUrrID   = "urr_id"

	// ========================================================================
	// GTP-U (N3)
	// ========================================================================
	KeyTeid      = "teid"
	KeyTunnelID  = "tunnel_id"
	KeyDirection = "direction" // uplink, downlink

	// ========================================================================
	// RAN Identifiers
	// ========================================================================
	KeyRanUeNgapID   = "ran_ue_ngap_id"
	KeyAmfUeNgapID   = "amf_ue_ngap_id"
	KeyCuUeF1apID    = "cu_ue_f1ap_id"
	KeyDuUeF1apID    = "du_ue_f1ap_id"
	KeyCRnti         = "c_rnti"
	KeyProcedureCode = "procedure_code" // NGAP/F1AP procedure code
	KeyCellID        = "cell_id"

	// ========================================================================
	// Authentication
	// ========================================================================
	KeyAuthCtxID      = "auth_ctx_id"
	KeyServingNetwork = "serving_network"
	KeyAuthResult     = "auth_result"

	// ========================================================================
	// QoS
	// ========================================================================
	KeyQfi      = "qfi"
	KeyFiveQi   = "five_qi"
	KeyPriority = "priority"
	KeyMbrUl    = "mbr_ul"
	KeyMbrDl    = "mbr_dl"

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyClientIP   = "client_ip"
	KeyRequestID  = "request_id"
	KeyAttempt    = "attempt"

	// ========================================================================
	// Traffic Counters
	// ========================================================================
	KeySessions = "sessions"
	KeyTunnels  = "tunnels"
	KeyPackets  = "packets"
	KeyBytesUl  = "bytes_ul"
	KeyBytesDl  = "bytes_dl"
	KeyDropped  = "dropped"
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// NFType returns a slog.Attr for the network function type
func NFType(t string) slog.Attr {
	return slog.String(KeyNFType, t)
}

// NFInstanceID returns a slog.Attr for the NF instance UUID
func NFInstanceID(id string) slog.Attr {
	return slog.String(KeyNFInstanceID, id)
}

// NFStatus returns a slog.Attr for the registration status of a profile
func NFStatus(s string) slog.Attr {
	return slog.String(KeyNFStatus, s)
}

// TargetNF returns a slog.Attr for the NF type of an outbound call target
func TargetNF(t string) slog.Attr {
	return slog.String(KeyTargetNF, t)
}

// PeerURL returns a slog.Attr for a peer NF base URL
func PeerURL(u string) slog.Attr {
	return slog.String(KeyPeerURL, u)
}

// Procedure returns a slog.Attr for the procedure name
func Procedure(name string) slog.Attr {
	return slog.String(KeyProcedure, name)
}

// Service returns a slog.Attr for an SBI service name
func Service(name string) slog.Attr {
	return slog.String(KeyService, name)
}

// Method returns a slog.Attr for an HTTP method
func Method(m string) slog.Attr {
	return slog.String(KeyMethod, m)
}

// Path returns a slog.Attr for an HTTP path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Status returns a slog.Attr for an HTTP status code
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// Cause returns a slog.Attr for a protocol cause string
func Cause(c string) slog.Attr {
	return slog.String(KeyCause, c)
}

// Supi returns a slog.Attr for the permanent subscriber id
func Supi(s string) slog.Attr {
	return slog.String(KeySupi, s)
}

// Suci returns a slog.Attr for the concealed subscriber id
func Suci(s string) slog.Attr {
	return slog.String(KeySuci, s)
}

// Guti returns a slog.Attr for the temporary subscriber id
func Guti(g string) slog.Attr {
	return slog.String(KeyGuti, g)
}

// PduSessionID returns a slog.Attr for a PDU session id (1..15)
func PduSessionID(id int) slog.Attr {
	return slog.Int(KeyPduSessionID, id)
}

// SessionKey returns a slog.Attr for the canonical supi:pduSessionId key
func SessionKey(k string) slog.Attr {
	return slog.String(KeySessionKey, k)
}

// Dnn returns a slog.Attr for the data network name
func Dnn(d string) slog.Attr {
	return slog.String(KeyDnn, d)
}

// UeIP returns a slog.Attr for an allocated UE address
func UeIP(ip string) slog.Attr {
	return slog.String(KeyUeIP, ip)
}

// Seid returns a slog.Attr for a PFCP session endpoint id
func Seid(s string) slog.Attr {
	return slog.String(KeySeid, s)
}

// SmfSeid returns a slog.Attr for the SMF-side SEID
func SmfSeid(s string) slog.Attr {
	return slog.String(KeySmfSeid, s)
}

// UpfSeid returns a slog.Attr for the UPF-side SEID
func UpfSeid(s string) slog.Attr {
	return slog.String(KeyUpfSeid, s)
}

// PdrID returns a slog.Attr for a packet detection rule id
func PdrID(id uint16) slog.Attr {
	return slog.Any(KeyPdrID, id)
}

// FarID returns a slog.Attr for a forwarding action rule id
func FarID(id uint16) slog.Attr {
	return slog.Any(KeyFarID, id)
}

// QerID returns a slog.Attr for a QoS enforcement rule id
func QerID(id uint16) slog.Attr {
	return slog.Any(KeyQerID, id)
}

// Teid returns a slog.Attr for a GTP-U tunnel endpoint id
func Teid(t string) slog.Attr {
	return slog.String(KeyTeid, t)
}

// TunnelID returns a slog.Attr for a GTP-U tunnel record id
func TunnelID(id string) slog.Attr {
	return slog.String(KeyTunnelID, id)
}

// Direction returns a slog.Attr for a traffic direction
func Direction(d string) slog.Attr {
	return slog.String(KeyDirection, d)
}

// RanUeNgapID returns a slog.Attr for the RAN-allocated NGAP UE id
func RanUeNgapID(id uint64) slog.Attr {
	return slog.Uint64(KeyRanUeNgapID, id)
}

// AmfUeNgapID returns a slog.Attr for the AMF-allocated NGAP UE id
func AmfUeNgapID(id uint64) slog.Attr {
	return slog.Uint64(KeyAmfUeNgapID, id)
}

// CuUeF1apID returns a slog.Attr for the CU-allocated F1AP UE id
func CuUeF1apID(id uint64) slog.Attr {
	return slog.Uint64(KeyCuUeF1apID, id)
}

// DuUeF1apID returns a slog.Attr for the DU-allocated F1AP UE id
func DuUeF1apID(id uint64) slog.Attr {
	return slog.Uint64(KeyDuUeF1apID, id)
}

// CRnti returns a slog.Attr for a cell radio network temporary id
func CRnti(id uint32) slog.Attr {
	return slog.Any(KeyCRnti, id)
}

// ProcedureCode returns a slog.Attr for an NGAP/F1AP procedure code
func ProcedureCode(code int) slog.Attr {
	return slog.Int(KeyProcedureCode, code)
}

// CellID returns a slog.Attr for an NR cell identity
func CellID(id string) slog.Attr {
	return slog.String(KeyCellID, id)
}

// AuthCtxID returns a slog.Attr for a 5G-AKA authentication context id
func AuthCtxID(id string) slog.Attr {
	return slog.String(KeyAuthCtxID, id)
}

// ServingNetwork returns a slog.Attr for the serving network name
func ServingNetwork(n string) slog.Attr {
	return slog.String(KeyServingNetwork, n)
}

// AuthResult returns a slog.Attr for the 5G-AKA outcome
func AuthResult(r string) slog.Attr {
	return slog.String(KeyAuthResult, r)
}

// Qfi returns a slog.Attr for a QoS flow identifier
func Qfi(q uint8) slog.Attr {
	return slog.Any(KeyQfi, q)
}

// FiveQi returns a slog.Attr for a 5G QoS identifier
func FiveQi(q int) slog.Attr {
	return slog.Int(KeyFiveQi, q)
}

// Priority returns a slog.Attr for a scheduling priority level
func Priority(p int) slog.Attr {
	return slog.Int(KeyPriority, p)
}

// MbrUl returns a slog.Attr for an uplink maximum bit rate in bps
func MbrUl(bps uint64) slog.Attr {
	return slog.Uint64(KeyMbrUl, bps)
}

// MbrDl returns a slog.Attr for a downlink maximum bit rate in bps
func MbrDl(bps uint64) slog.Attr {
	return slog.Uint64(KeyMbrDl, bps)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ClientIP returns a slog.Attr for the client address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// RequestID returns a slog.Attr for the request correlation id
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Attempt returns a slog.Attr for a retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// Sessions returns a slog.Attr for a session count
func Sessions(n int) slog.Attr {
	return slog.Int(KeySessions, n)
}

// Tunnels returns a slog.Attr for a tunnel count
func Tunnels(n int) slog.Attr {
	return slog.Int(KeyTunnels, n)
}

// Packets returns a slog.Attr for a packet count
func Packets(n uint64) slog.Attr {
	return slog.Uint64(KeyPackets, n)
}

// BytesUl returns a slog.Attr for uplink byte totals
func BytesUl(n uint64) slog.Attr {
	return slog.Uint64(KeyBytesUl, n)
}

// BytesDl returns a slog.Attr for downlink byte totals
func BytesDl(n uint64) slog.Attr {
	return slog.Uint64(KeyBytesDl, n)
}

// Dropped returns a slog.Attr for dropped packet counts
func Dropped(n uint64) slog.Attr {
	return slog.Uint64(KeyDropped, n)
}
