package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for signalling operations.
// These follow OpenTelemetry semantic conventions where applicable.
// Interface-specific keys use their 3GPP protocol name as prefix.
const (
	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	// ========================================================================
	// Network function attributes
	// ========================================================================
	AttrNFType       = "nf.type"
	AttrNFInstanceID = "nf.instance_id"
	AttrTargetNF     = "nf.target_type"

	// ========================================================================
	// SBI attributes
	// ========================================================================
	AttrSBIService = "sbi.service" // nnrf-nfm, nausf-auth, ...
	AttrSBIMethod  = "sbi.method"
	AttrSBIStatus  = "sbi.status"

	// ========================================================================
	// Subscriber attributes
	// ========================================================================
	AttrSupi = "ue.supi"
	AttrSuci = "ue.suci"
	AttrGuti = "ue.guti"

	// ========================================================================
	// NAS attributes
	// ========================================================================
	AttrNASMessageType = "nas.message_type"
	AttrNASCause       = "nas.cause"

	// ========================================================================
	// NGAP / F1AP attributes
	// ========================================================================
	AttrNGAPProcedureCode = "ngap.procedure_code"
	AttrRanUeNgapID       = "ngap.ran_ue_ngap_id"
	AttrAmfUeNgapID       = "ngap.amf_ue_ngap_id"
	AttrF1APProcedureCode = "f1ap.procedure_code"
	AttrCuUeF1apID        = "f1ap.cu_ue_f1ap_id"
	AttrDuUeF1apID        = "f1ap.du_ue_f1ap_id"

	// ========================================================================
	// Session attributes
	// ========================================================================
	AttrPduSessionID = "session.pdu_session_id"
	AttrDnn          = "session.dnn"
	AttrUeIP         = "session.ue_ip"

	// ========================================================================
	// PFCP attributes
	// ========================================================================
	AttrPFCPMessageType = "pfcp.message_type"
	AttrPFCPCause       = "pfcp.cause"
	AttrSeid            = "pfcp.seid"

	// ========================================================================
	// GTP-U / QoS attributes
	// ========================================================================
	AttrTeid      = "gtpu.teid"
	AttrTunnelID  = "gtpu.tunnel_id"
	AttrDirection = "gtpu.direction"
	AttrQfi       = "qos.qfi"
	AttrFiveQi    = "qos.five_qi"

	// ========================================================================
	// Authentication attributes
	// ========================================================================
	AttrAuthCtxID  = "auth.ctx_id"
	AttrAuthResult = "auth.result"
)

// Span names for operations.
// Format: <interface>.<operation> for signalling spans
// Format: <component>.<operation> for internal operations
const (
	// ========================================================================
	// NAS procedure spans (UE <-> AMF)
	// ========================================================================
	SpanNASRegistration       = "nas.REGISTRATION_REQUEST"
	SpanNASAuthResponse       = "nas.AUTHENTICATION_RESPONSE"
	SpanNASSecurityMode       = "nas.SECURITY_MODE_COMPLETE"
	SpanNASPduSessionRequest  = "nas.PDU_SESSION_ESTABLISHMENT_REQUEST"
	SpanNASDeregistration     = "nas.DEREGISTRATION_REQUEST"

	// ========================================================================
	// SBI service operation spans
	// ========================================================================
	SpanNRFRegister  = "nnrf-nfm.register"
	SpanNRFDiscover  = "nnrf-disc.search"
	SpanNRFToken     = "oauth2.token"
	SpanAusfAuth     = "nausf-auth.ue-authentications"
	SpanAusfConfirm  = "nausf-auth.5g-aka-confirmation"
	SpanUdmAuthData  = "nudm-ueau.generate-auth-data"
	SpanUdmRegister  = "nudm-uecm.amf-registration"
	SpanUdmSdm       = "nudm-sdm.get"
	SpanPcfSmPolicy  = "npcf-smpolicycontrol.sm-policies"
	SpanSmfSmContext = "nsmf-pdusession.sm-contexts"

	// ========================================================================
	// N2 / F1 signalling spans
	// ========================================================================
	SpanNGAPInitialUE   = "ngap.INITIAL_UE_MESSAGE"
	SpanNGAPNGSetup     = "ngap.NG_SETUP"
	SpanNGAPHandover    = "ngap.HANDOVER_REQUEST"
	SpanF1APInitialRRC  = "f1ap.INITIAL_UL_RRC_MESSAGE_TRANSFER"
	SpanF1APUECtxSetup  = "f1ap.UE_CONTEXT_SETUP"

	// ========================================================================
	// N4 / user-plane spans
	// ========================================================================
	SpanPFCPEstablish = "pfcp.SESSION_ESTABLISHMENT"
	SpanPFCPModify    = "pfcp.SESSION_MODIFICATION"
	SpanPFCPDelete    = "pfcp.SESSION_DELETION"
	SpanGTPUPacket    = "gtpu.process_packet"

	// ========================================================================
	// Radio stack spans (DU internals)
	// ========================================================================
	SpanMACSchedule = "mac.schedule"
	SpanRLCTransmit = "rlc.transmit"
	SpanPDCPProcess = "pdcp.process"
	SpanPHYPrach    = "phy.prach"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// NFType returns an attribute for the network function type
func NFType(t string) attribute.KeyValue {
	return attribute.String(AttrNFType, t)
}

// NFInstanceID returns an attribute for the NF instance UUID
func NFInstanceID(id string) attribute.KeyValue {
	return attribute.String(AttrNFInstanceID, id)
}

// TargetNF returns an attribute for an outbound call's target NF type
func TargetNF(t string) attribute.KeyValue {
	return attribute.String(AttrTargetNF, t)
}

// SBIService returns an attribute for the SBI service name
func SBIService(name string) attribute.KeyValue {
	return attribute.String(AttrSBIService, name)
}

// SBIStatus returns an attribute for an SBI response status code
func SBIStatus(code int) attribute.KeyValue {
	return attribute.Int(AttrSBIStatus, code)
}

// Supi returns an attribute for the permanent subscriber id
func Supi(supi string) attribute.KeyValue {
	return attribute.String(AttrSupi, supi)
}

// Suci returns an attribute for the concealed subscriber id
func Suci(suci string) attribute.KeyValue {
	return attribute.String(AttrSuci, suci)
}

// NASMessageType returns an attribute for the NAS message type
func NASMessageType(t string) attribute.KeyValue {
	return attribute.String(AttrNASMessageType, t)
}

// NGAPProcedureCode returns an attribute for an NGAP procedure code
func NGAPProcedureCode(code int) attribute.KeyValue {
	return attribute.Int(AttrNGAPProcedureCode, code)
}

// F1APProcedureCode returns an attribute for an F1AP procedure code
func F1APProcedureCode(code int) attribute.KeyValue {
	return attribute.Int(AttrF1APProcedureCode, code)
}

// RanUeNgapID returns an attribute for the RAN-side NGAP UE id
func RanUeNgapID(id uint64) attribute.KeyValue {
	return attribute.Int64(AttrRanUeNgapID, int64(id))
}

// AmfUeNgapID returns an attribute for the AMF-side NGAP UE id
func AmfUeNgapID(id uint64) attribute.KeyValue {
	return attribute.Int64(AttrAmfUeNgapID, int64(id))
}

// PduSessionID returns an attribute for a PDU session id
func PduSessionID(id int) attribute.KeyValue {
	return attribute.Int(AttrPduSessionID, id)
}

// Dnn returns an attribute for the data network name
func Dnn(dnn string) attribute.KeyValue {
	return attribute.String(AttrDnn, dnn)
}

// UeIP returns an attribute for an allocated UE address
func UeIP(ip string) attribute.KeyValue {
	return attribute.String(AttrUeIP, ip)
}

// PFCPMessageType returns an attribute for a PFCP message type
func PFCPMessageType(t int) attribute.KeyValue {
	return attribute.Int(AttrPFCPMessageType, t)
}

// PFCPCause returns an attribute for a PFCP cause value
func PFCPCause(c int) attribute.KeyValue {
	return attribute.Int(AttrPFCPCause, c)
}

// Seid returns an attribute for a PFCP session endpoint id
func Seid(seid string) attribute.KeyValue {
	return attribute.String(AttrSeid, seid)
}

// Teid returns an attribute for a GTP-U tunnel endpoint id
func Teid(teid string) attribute.KeyValue {
	return attribute.String(AttrTeid, teid)
}

// TunnelID returns an attribute for a GTP-U tunnel record id
func TunnelID(id string) attribute.KeyValue {
	return attribute.String(AttrTunnelID, id)
}

// Direction returns an attribute for a traffic direction
func Direction(d string) attribute.KeyValue {
	return attribute.String(AttrDirection, d)
}

// Qfi returns an attribute for a QoS flow identifier
func Qfi(q int) attribute.KeyValue {
	return attribute.Int(AttrQfi, q)
}

// FiveQi returns an attribute for a 5G QoS identifier
func FiveQi(q int) attribute.KeyValue {
	return attribute.Int(AttrFiveQi, q)
}

// AuthCtxID returns an attribute for a 5G-AKA context id
func AuthCtxID(id string) attribute.KeyValue {
	return attribute.String(AttrAuthCtxID, id)
}

// AuthResult returns an attribute for a 5G-AKA outcome
func AuthResult(r string) attribute.KeyValue {
	return attribute.String(AttrAuthResult, r)
}

// StartNASSpan starts a span for a NAS procedure.
// This is a convenience function that sets common attributes.
func StartNASSpan(ctx context.Context, procedure, supi string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		NASMessageType(procedure),
	}
	if supi != "" {
		allAttrs = append(allAttrs, Supi(supi))
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "nas."+procedure, trace.WithAttributes(allAttrs...))
}

// StartSBISpan starts a span for an SBI service operation toward another NF.
func StartSBISpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		SBIService(service),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, service+"."+operation, trace.WithAttributes(allAttrs...))
}

// StartPFCPSpan starts a span for a PFCP session operation.
func StartPFCPSpan(ctx context.Context, operation, seid string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{}
	if seid != "" {
		allAttrs = append(allAttrs, Seid(seid))
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "pfcp."+operation, trace.WithAttributes(allAttrs...))
}

// StartRANSpan starts a span for an NGAP or F1AP procedure.
func StartRANSpan(ctx context.Context, protocol, procedure string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, protocol+"."+procedure, trace.WithAttributes(attrs...))
}
