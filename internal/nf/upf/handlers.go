package upf

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/telemetry"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/pfcp"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

const sessionsPath = "/pfcp/v1/sessions"

// Routes mounts the N4 session routes, the GTP-U processing surface, the
// address and QoS management endpoints, and the status endpoints.
func (s *Service) Routes(r chi.Router) {
	r.Route(sessionsPath, func(r chi.Router) {
		r.Post("/", s.handleSessionEstablishment)
		r.Patch("/{seid}", s.handleSessionModification)
		r.Delete("/{seid}", s.handleSessionDeletion)
	})

	r.Post("/gtp-u/process-packet", s.handleProcessPacket)
	r.Post("/ipv6/allocate-prefix", s.handleAllocatePrefix)

	r.Get("/qos/parameters", s.handleQOSParameters)
	r.Post("/qos/update", s.handleQOSUpdate)

	r.Get("/upf/status", s.handleStatus)
	r.Get("/upf/statistics", s.handleStatistics)
	r.Get("/upf_service", s.handleServiceInfo)
}

// handleSessionEstablishment is the N4 session establishment request
// (TS 29.244 §7.4.3.1). Missing mandatory IEs answer 200 with a PFCP
// failure cause; only pool exhaustion surfaces as an HTTP error.
func (s *Service) handleSessionEstablishment(w http.ResponseWriter, r *http.Request) {
	var req pfcp.SessionEstablishmentRequest
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	if req.SEID == "" || len(req.CreatePDR) == 0 || len(req.CreateFAR) == 0 {
		s.userPlane.RecordSessionMessage(int(pfcp.MessageTypeSessionEstablishmentRequest), int(pfcp.CauseMandatoryIEMissing))
		sbi.WriteJSONOK(w, pfcp.SessionEstablishmentResponse{
			MessageType: pfcp.MessageTypeSessionEstablishmentResponse,
			Cause:       pfcp.CauseMandatoryIEMissing,
		})
		return
	}

	_, span := telemetry.StartPFCPSpan(r.Context(), "SessionEstablishment", req.SEID)
	defer span.End()

	sess, err := s.state.Establish(&req)
	if err != nil {
		if errors.Is(err, ErrPoolExhausted) {
			logger.Warn("Session establishment rejected, pool exhausted",
				logger.SmfSeid(req.SEID),
				logger.Err(err),
			)
			s.userPlane.RecordSessionMessage(int(pfcp.MessageTypeSessionEstablishmentRequest), int(pfcp.CauseNoResourcesAvailable))
			sbi.ServiceUnavailable(w, "UE address pool exhausted", sbi.CauseInsufficientRes)
			return
		}
		logger.Error("Session establishment failed", logger.SmfSeid(req.SEID), logger.Err(err))
		sbi.InternalServerError(w, "session establishment failed")
		return
	}

	s.updateGauges()
	s.userPlane.RecordSessionMessage(int(pfcp.MessageTypeSessionEstablishmentRequest), int(pfcp.CauseRequestAccepted))

	createdPDRs := make([]pfcp.CreatedPDR, 0, len(req.CreatePDR))
	for _, pdr := range req.CreatePDR {
		createdPDRs = append(createdPDRs, pfcp.CreatedPDR{PDRID: pdr.PDRID})
	}

	logger.Info("PFCP session established",
		logger.UpfSeid(sess.UPFSEID),
		logger.SmfSeid(sess.SMFSEID),
		logger.UeIP(sess.AllocatedIPs.IPv4),
		logger.Tunnels(len(sess.TunnelIDs)),
	)

	alloc := sess.AllocatedIPs
	sbi.WriteJSONOK(w, pfcp.SessionEstablishmentResponse{
		MessageType:            pfcp.MessageTypeSessionEstablishmentResponse,
		Cause:                  pfcp.CauseRequestAccepted,
		UPFSEID:                &pfcp.FTEID{TEID: sess.UPFSEID, IPv4Address: s.cfg.SBI.Host},
		AllocatedUEIPAddresses: &alloc,
		CreatedPDR:             createdPDRs,
		LoadControlInformation: &pfcp.LoadControlInformation{
			SequenceNumber: 1,
			LoadMetric:     50,
		},
		OverloadControlInformation: &pfcp.OverloadControlInformation{
			SequenceNumber:  1,
			ReductionMetric: 0,
		},
	})
}

// handleSessionModification merges rule updates into an established
// session (TS 29.244 §7.4.4.1).
func (s *Service) handleSessionModification(w http.ResponseWriter, r *http.Request) {
	seid := chi.URLParam(r, "seid")

	var req pfcp.SessionModificationRequest
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	applied, err := s.state.Modify(seid, &req)
	if err != nil {
		s.userPlane.RecordSessionMessage(int(pfcp.MessageTypeSessionModificationRequest), int(pfcp.CauseSessionContextNotFound))
		sbi.NotFoundCause(w, "PFCP session "+seid+" not found", sbi.CauseContextNotFound)
		return
	}

	s.userPlane.RecordSessionMessage(int(pfcp.MessageTypeSessionModificationRequest), int(pfcp.CauseRequestAccepted))
	logger.Info("PFCP session modified",
		logger.UpfSeid(seid),
		"modifications", applied,
	)
	sbi.WriteJSONOK(w, pfcp.SessionModificationResponse{
		MessageType:          pfcp.MessageTypeSessionModificationResponse,
		Cause:                pfcp.CauseRequestAccepted,
		ModificationsApplied: applied,
	})
}

// handleSessionDeletion tears a session down (TS 29.244 §7.4.5.1),
// returning leased addresses and dropping tunnels, rules, and counters.
func (s *Service) handleSessionDeletion(w http.ResponseWriter, r *http.Request) {
	seid := chi.URLParam(r, "seid")

	final, ok := s.state.Release(seid)
	if !ok {
		s.userPlane.RecordSessionMessage(int(pfcp.MessageTypeSessionDeletionRequest), int(pfcp.CauseSessionContextNotFound))
		sbi.NotFoundCause(w, "PFCP session "+seid+" not found", sbi.CauseContextNotFound)
		return
	}

	s.updateGauges()
	s.userPlane.RecordSessionMessage(int(pfcp.MessageTypeSessionDeletionRequest), int(pfcp.CauseRequestAccepted))
	logger.Info("PFCP session deleted",
		logger.UpfSeid(seid),
		logger.BytesUl(final.BytesUL),
		logger.BytesDl(final.BytesDL),
	)
	sbi.WriteJSONOK(w, pfcp.SessionDeletionResponse{
		MessageType: pfcp.MessageTypeSessionDeletionResponse,
		Cause:       pfcp.CauseRequestAccepted,
	})
}

// handleProcessPacket runs one simulated GTP-U packet through the tunnel's
// QoS enforcement (TS 29.281). Dropped packets still answer 200.
func (s *Service) handleProcessPacket(w http.ResponseWriter, r *http.Request) {
	var req pfcp.GTPUPacketRequest
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}
	if req.TunnelID == "" {
		sbi.BadRequestCause(w, "tunnel_id is required", sbi.CauseMandatoryIEMissing)
		return
	}

	direction := req.Direction
	if direction == "" {
		direction = pfcp.DirectionUplink
	}
	size := len(req.Payload)

	outcome, err := s.state.ProcessPacket(req.TunnelID, direction, size)
	if err != nil {
		sbi.NotFoundCause(w, "GTP tunnel "+req.TunnelID+" not found", sbi.CauseContextNotFound)
		return
	}

	s.userPlane.RecordPacket(direction, outcome, size)

	status := pfcp.PacketOutcomeSuccess
	if outcome == outcomeDropped {
		status = pfcp.PacketOutcomeDropped
		logger.Debug("Packet dropped by rate limiting",
			logger.TunnelID(req.TunnelID),
			logger.Direction(direction),
		)
	}

	sbi.WriteJSONOK(w, pfcp.GTPUPacketResponse{
		Status:    status,
		TunnelID:  req.TunnelID,
		Direction: direction,
		Processed: outcome != outcomeDropped,
	})
}

// handleAllocatePrefix delegates a dedicated IPv6 /64 to a UE.
func (s *Service) handleAllocatePrefix(w http.ResponseWriter, r *http.Request) {
	var req pfcp.IPv6PrefixRequest
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	addr, prefix, err := s.state.AllocateIPv6Prefix()
	if err != nil {
		sbi.ServiceUnavailable(w, "no IPv6 prefixes available", sbi.CauseInsufficientRes)
		return
	}

	s.updateGauges()
	logger.Info("IPv6 prefix delegated", "ueId", req.UEID, "prefix", prefix)
	sbi.WriteJSONOK(w, pfcp.IPv6PrefixResponse{
		Status:           "SUCCESS",
		UEID:             req.UEID,
		AllocatedPrefix:  prefix,
		AllocatedAddress: addr,
	})
}

// handleQOSParameters lists every installed enforcement rule.
func (s *Service) handleQOSParameters(w http.ResponseWriter, r *http.Request) {
	rules := s.state.QOSRules()
	sbi.WriteJSONOK(w, map[string]any{
		"total_qos_rules": len(rules),
		"qos_parameters":  rules,
	})
}

// handleQOSUpdate patches one installed rule by session and QER id.
func (s *Service) handleQOSUpdate(w http.ResponseWriter, r *http.Request) {
	var req pfcp.QOSUpdateRequest
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		sbi.BadRequestCause(w, "session_id is required", sbi.CauseMandatoryIEMissing)
		return
	}

	updated, err := s.state.UpdateQOSRule(req.SessionID, req.QERID, req.QOSParameters)
	if err != nil {
		sbi.NotFoundCause(w, "QoS rule "+ruleKey(req.SessionID, req.QERID)+" not found", sbi.CauseContextNotFound)
		return
	}

	key := ruleKey(req.SessionID, req.QERID)
	logger.Info("QoS rule updated",
		"qosKey", key,
		logger.FiveQi(updated.FiveQI),
		logger.MbrUl(updated.MBRUplink),
		logger.MbrDl(updated.MBRDownlink),
	)
	sbi.WriteJSONOK(w, pfcp.QOSUpdateResponse{
		Status:            "SUCCESS",
		QOSKey:            key,
		UpdatedParameters: req.QOSParameters,
	})
}

// handleStatus reports the pool and session population.
func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessions, tunnels, v4, v6 := s.state.Counts()
	ipv4Pool, ipv6Pool := s.state.Pools()

	sbi.WriteJSONOK(w, map[string]any{
		"nfInstanceId":            s.instanceID,
		"nfType":                  "UPF",
		"name":                    s.name,
		"status":                  "OPERATIONAL",
		"activeSessions":          sessions,
		"activeGtpTunnels":        tunnels,
		"allocatedIpv4Addresses":  v4,
		"allocatedIpv6Prefixes":   v6,
		"qosRules":                s.state.RuleCount(),
		"ipv4Pool":                ipv4Pool,
		"ipv6Pool":                ipv6Pool,
		"supportedFeatures":       "0x" + strconv.FormatUint(supportedFeatures, 16),
		"supportedPduSessionTypes": []string{pfcp.PDNTypeIPv4, pfcp.PDNTypeIPv6, pfcp.PDNTypeIPv4v6},
	})
}

// handleStatistics reports aggregate and per-session traffic counters.
func (s *Service) handleStatistics(w http.ResponseWriter, r *http.Request) {
	totals := s.state.Totals()
	sessions := s.state.SessionStatistics()

	sbi.WriteJSONOK(w, map[string]any{
		"total_sessions":     totals.Sessions,
		"total_tunnels":      totals.Tunnels,
		"total_packets_ul":   totals.PacketsUL,
		"total_packets_dl":   totals.PacketsDL,
		"total_bytes_ul":     totals.BytesUL,
		"total_bytes_dl":     totals.BytesDL,
		"total_dropped_ul":   totals.DroppedUL,
		"total_dropped_dl":   totals.DroppedDL,
		"session_statistics": sessions,
	})
}

// handleServiceInfo is the legacy service-information endpoint.
func (s *Service) handleServiceInfo(w http.ResponseWriter, r *http.Request) {
	sbi.WriteJSONOK(w, map[string]any{
		"message":    "UPF service response",
		"compliance": "3GPP TS 29.244, TS 29.281",
		"status":     "OPERATIONAL",
		"features":   []string{"IPv6", "QoS enforcement", "GTP-U simulation"},
	})
}
