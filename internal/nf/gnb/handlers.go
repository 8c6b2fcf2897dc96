package gnb

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/telemetry"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/ngap"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

const (
	procedureInitialUEMessage = "INITIAL_UE_MESSAGE"
	procedureDownlinkNAS      = "DOWNLINK_NAS_TRANSPORT"
	procedureUplinkNAS        = "UPLINK_NAS_TRANSPORT"
	procedureUEContextSetup   = "UE_CONTEXT_SETUP"
	procedureResourceSetup    = "PDU_SESSION_RESOURCE_SETUP"
	procedureHandover         = "HANDOVER"
)

// Routes mounts the RAN side of NGAP and the introspection surfaces.
func (s *Service) Routes(r chi.Router) {
	r.Route("/ngap", func(r chi.Router) {
		r.Post("/initial-ue-message", s.handleInitialUEMessage)
		r.Post("/downlink-nas-transport", s.handleDownlinkNASTransport)
		r.Post("/ue-context-setup-request", s.handleUEContextSetupRequest)
		r.Post("/pdu-session-resource-setup-request", s.handlePDUSessionResourceSetup)
		r.Post("/handover-request", s.handleHandoverRequest)
		r.Post("/uplink-nas-transport", s.handleUplinkNASTransport)
	})

	r.Get("/gnb/status", s.handleStatus)
	r.Get("/gnb/ue-contexts", s.handleUEContexts)
	r.Get("/gnb/cell-contexts", s.handleCellContexts)

	// Pre-NGAP path kept for older drivers.
	r.Get("/gnb_status", s.handleStatus)
}

// initialUEMessage is the UE-originated trigger carrying the first NAS
// payload.
type initialUEMessage struct {
	NASPDU string `json:"nas_pdu"`
}

// handleInitialUEMessage allocates a RAN UE context and forwards the
// Initial UE Message to the AMF (TS 38.413 §8.6.1).
func (s *Service) handleInitialUEMessage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req initialUEMessage
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}
	if req.NASPDU == "" {
		req.NASPDU = "default-nas-message"
	}

	ue := s.state.AllocateUEContext()

	ctx, span := telemetry.StartRANSpan(r.Context(), "ngap", "InitialUEMessage", telemetry.RanUeNgapID(ue.RANUENGAPID))
	defer span.End()
	r = r.WithContext(ctx)

	pdu := s.buildInitialUEMessage(ue.RANUENGAPID, req.NASPDU)

	client, err := s.amfClient(r.Context())
	if err != nil {
		s.procedures.RecordProcedure(procedureInitialUEMessage, "failure", time.Since(start))
		sbi.ServiceUnavailable(w, "AMF not available", sbi.CauseInsufficientRes)
		return
	}

	var amfResp map[string]any
	if err := client.Post(r.Context(), "/ngap/initial-ue-message", pdu, &amfResp); err != nil {
		logger.Error("Initial UE Message delivery failed",
			logger.RanUeNgapID(ue.RANUENGAPID),
			logger.Err(err),
		)
		s.procedures.RecordProcedure(procedureInitialUEMessage, "failure", time.Since(start))
		if apiErr, isAPI := sbi.AsAPIError(err); isAPI {
			sbi.WriteProblemDetails(w, &sbi.Problem{
				Title:  "Initial UE Message rejected",
				Status: apiErr.StatusCode,
				Detail: apiErr.Detail,
				Cause:  apiErr.Cause,
			})
			return
		}
		if s.registry != nil {
			s.registry.Invalidate(models.NFTypeAMF)
		}
		sbi.BadGateway(w, "failed to deliver Initial UE Message to AMF")
		return
	}

	s.procedures.RecordProcedure(procedureInitialUEMessage, "success", time.Since(start))
	logger.Info("Initial UE Message sent", logger.RanUeNgapID(ue.RANUENGAPID))

	sbi.WriteJSONOK(w, map[string]any{
		"status":      "SUCCESS",
		"ranUeNgapId": ue.RANUENGAPID,
		"message":     "Initial UE Message sent to AMF",
	})
}

// buildInitialUEMessage assembles the NGAP envelope (TS 38.413 §9.2.5.1)
// with the serving cell as user location.
func (s *Service) buildInitialUEMessage(ranUENGAPID uint64, nasPDU string) *ngap.PDU {
	cell := s.state.CellSnapshot()[0]

	return ngap.NewInitiatingMessage(ngap.ProcedureCodeInitialUEMessage, ngap.CriticalityIgnore, ngap.IEs{
		ngap.IERANUENGAPID: ranUENGAPID,
		ngap.IENASPDU:      nasPDU,
		ngap.IEUserLocationInformation: map[string]any{
			"userLocationInformationNR": map[string]any{
				"nR-CGI": cell.NRCGI,
				"tAI": map[string]any{
					"pLMNIdentity": cell.NRCGI.PLMNID,
					"tAC":          s.supportedTAs[0].TAC,
				},
			},
		},
		ngap.IERRCEstablishmentCause: "mo-Data",
		ngap.IEUEContextRequest:      "requested",
	})
}

// handleDownlinkNASTransport takes AMF-originated NAS (TS 38.413 §8.6.2),
// binding the AMF-side id on first receipt.
func (s *Service) handleDownlinkNASTransport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var pdu ngap.PDU
	if !sbi.DecodeJSON(w, r, &pdu) {
		return
	}

	msg := pdu.InitiatingMessage
	if msg == nil {
		sbi.BadRequestCause(w, "expected a Downlink NAS Transport initiating message", sbi.CauseMandatoryIEMissing)
		return
	}

	ies := msg.Value.ProtocolIEs
	ranUEID, ok := ies.Int(ngap.IERANUENGAPID)
	if !ok {
		sbi.BadRequestCause(w, "RAN-UE-NGAP-ID is required", sbi.CauseMandatoryIEMissing)
		return
	}
	amfUEID, _ := ies.Int(ngap.IEAMFUENGAPID)

	if !s.state.BindAMFUENGAPID(uint64(ranUEID), uint64(amfUEID)) {
		s.procedures.RecordProcedure(procedureDownlinkNAS, "failure", time.Since(start))
		sbi.BadRequestCause(w, "no UE context for the RAN-UE-NGAP-ID", sbi.CauseContextNotFound)
		return
	}

	logger.Info("Downlink NAS delivered",
		logger.RanUeNgapID(uint64(ranUEID)),
		logger.AmfUeNgapID(uint64(amfUEID)),
	)
	s.procedures.RecordProcedure(procedureDownlinkNAS, "success", time.Since(start))

	sbi.WriteJSONOK(w, map[string]any{
		"status":  "SUCCESS",
		"message": "NAS message delivered to UE",
	})
}

// handleUEContextSetupRequest installs the security context pushed by the
// AMF (TS 38.413 §8.3.1). An unknown RAN-side id yields an unsuccessful
// outcome with cause Unknown-local-UE-NGAP-ID.
func (s *Service) handleUEContextSetupRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var pdu ngap.PDU
	if !sbi.DecodeJSON(w, r, &pdu) {
		return
	}

	msg := pdu.InitiatingMessage
	if msg == nil {
		sbi.BadRequestCause(w, "expected a UE Context Setup initiating message", sbi.CauseMandatoryIEMissing)
		return
	}

	ies := msg.Value.ProtocolIEs
	ranUEID, _ := ies.Int(ngap.IERANUENGAPID)
	amfUEID, _ := ies.Int(ngap.IEAMFUENGAPID)

	sec := &SecurityContext{
		SecurityKey:            ies.String(ngap.IESecurityKey),
		UESecurityCapabilities: ies.Map(ngap.IEUESecurityCapabilities),
	}

	if !s.state.SetupSecurity(uint64(ranUEID), uint64(amfUEID), sec) {
		s.procedures.RecordProcedure(procedureUEContextSetup, "failure", time.Since(start))
		sbi.WriteJSONOK(w, ngap.NewUnsuccessfulOutcome(ngap.ProcedureCodeUEContextSetup, ngap.CriticalityReject, ngap.IEs{
			ngap.IEAMFUENGAPID: amfUEID,
			ngap.IERANUENGAPID: ranUEID,
			ngap.IECause:       ngap.RadioNetworkCause(ngap.CauseUnknownLocalUENGAPID),
		}))
		return
	}

	logger.Info("UE context setup complete",
		logger.RanUeNgapID(uint64(ranUEID)),
		logger.AmfUeNgapID(uint64(amfUEID)),
	)
	s.procedures.RecordProcedure(procedureUEContextSetup, "success", time.Since(start))

	sbi.WriteJSONOK(w, ngap.NewSuccessfulOutcome(ngap.ProcedureCodeUEContextSetup, ngap.CriticalityReject, ngap.IEs{
		ngap.IEAMFUENGAPID: amfUEID,
		ngap.IERANUENGAPID: ranUEID,
	}))
}

// handlePDUSessionResourceSetup records session resources on the UE
// context (TS 38.413 §8.2.1). With no UE context every item fails.
func (s *Service) handlePDUSessionResourceSetup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var pdu ngap.PDU
	if !sbi.DecodeJSON(w, r, &pdu) {
		return
	}

	msg := pdu.InitiatingMessage
	if msg == nil {
		sbi.BadRequestCause(w, "expected a PDU Session Resource Setup initiating message", sbi.CauseMandatoryIEMissing)
		return
	}

	ies := msg.Value.ProtocolIEs
	ranUEID, _ := ies.Int(ngap.IERANUENGAPID)
	amfUEID, _ := ies.Int(ngap.IEAMFUENGAPID)

	var setupList, failedList []map[string]any
	for _, item := range ies.List(ngap.IESetupListSUReq) {
		entry, _ := item.(map[string]any)
		sessionID, hasID := ngap.IEs(entry).Int("pduSessionID")

		if hasID && s.state.AddPDUSession(uint64(ranUEID), sessionID) {
			setupList = append(setupList, map[string]any{
				"pduSessionID": sessionID,
				"pduSessionResourceSetupResponseTransfer": "successful-setup-response",
			})
			continue
		}
		failedList = append(failedList, map[string]any{
			"pduSessionID": sessionID,
			"cause":        ngap.RadioNetworkCause(ngap.CauseUnspecified),
		})
	}

	responseIEs := ngap.IEs{
		ngap.IEAMFUENGAPID: amfUEID,
		ngap.IERANUENGAPID: ranUEID,
	}
	if len(setupList) > 0 {
		responseIEs[ngap.IESetupListSURes] = setupList
	}
	if len(failedList) > 0 {
		responseIEs[ngap.IEFailedListSURes] = failedList
	}

	outcome := "success"
	if len(failedList) > 0 {
		outcome = "partial"
	}
	s.procedures.RecordProcedure(procedureResourceSetup, outcome, time.Since(start))

	logger.Info("PDU session resources set up",
		logger.RanUeNgapID(uint64(ranUEID)),
		"established", len(setupList),
		"failed", len(failedList),
	)

	sbi.WriteJSONOK(w, ngap.NewSuccessfulOutcome(ngap.ProcedureCodePDUSessionResourceSetup, ngap.CriticalityReject, responseIEs))
}

// handleHandoverRequest admits a UE arriving by handover (TS 38.413
// §8.4.2): a fresh RAN-side id, a CONNECTED context bound to the same
// AMF-side id, and an acknowledge with the transparent container.
func (s *Service) handleHandoverRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var pdu ngap.PDU
	if !sbi.DecodeJSON(w, r, &pdu) {
		return
	}

	msg := pdu.InitiatingMessage
	if msg == nil {
		sbi.BadRequestCause(w, "expected a Handover Request initiating message", sbi.CauseMandatoryIEMissing)
		return
	}

	ies := msg.Value.ProtocolIEs
	amfUEID, ok := ies.Int(ngap.IEAMFUENGAPID)
	if !ok {
		s.procedures.RecordProcedure(procedureHandover, "failure", time.Since(start))
		sbi.WriteJSONOK(w, ngap.NewUnsuccessfulOutcome(ngap.ProcedureCodeHandoverPreparationFailure, ngap.CriticalityReject, ngap.IEs{
			ngap.IECause: ngap.RadioNetworkCause(ngap.CauseHandoverTargetNotAllowed),
		}))
		return
	}

	target := s.state.AllocateConnected(uint64(amfUEID))
	s.procedures.RecordProcedure(procedureHandover, "success", time.Since(start))

	logger.Info("Handover admitted",
		logger.AmfUeNgapID(uint64(amfUEID)),
		logger.RanUeNgapID(target.RANUENGAPID),
		"handoverType", ies.String(ngap.IEHandoverType),
	)

	sbi.WriteJSONOK(w, ngap.NewSuccessfulOutcome(ngap.ProcedureCodeHandoverRequestAcknowledge, ngap.CriticalityReject, ngap.IEs{
		ngap.IEAMFUENGAPID:             amfUEID,
		ngap.IERANUENGAPID:             target.RANUENGAPID,
		ngap.IETargetToSourceContainer: "handover-command-data",
	}))
}

// uplinkNASRequest carries UE-originated NAS on an established
// association.
type uplinkNASRequest struct {
	RANUENGAPID uint64 `json:"ranUeNgapId"`
	NASPDU      string `json:"nasPdu"`
}

// handleUplinkNASTransport wraps uplink NAS in the NGAP envelope and
// forwards it to the AMF (TS 38.413 §8.6.3).
func (s *Service) handleUplinkNASTransport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req uplinkNASRequest
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	ue, ok := s.state.Get(req.RANUENGAPID)
	if !ok || ue.AMFUENGAPID == 0 {
		sbi.NotFoundCause(w, "no bound UE context for the RAN-UE-NGAP-ID", sbi.CauseContextNotFound)
		return
	}

	cell := s.state.CellSnapshot()[0]
	pdu := ngap.NewInitiatingMessage(ngap.ProcedureCodeUplinkNASTransport, ngap.CriticalityIgnore, ngap.IEs{
		ngap.IEAMFUENGAPID: ue.AMFUENGAPID,
		ngap.IERANUENGAPID: ue.RANUENGAPID,
		ngap.IENASPDU:      req.NASPDU,
		ngap.IEUserLocationInformation: map[string]any{
			"userLocationInformationNR": map[string]any{
				"nR-CGI": cell.NRCGI,
				"tAI": map[string]any{
					"pLMNIdentity": cell.NRCGI.PLMNID,
					"tAC":          s.supportedTAs[0].TAC,
				},
			},
		},
	})

	client, err := s.amfClient(r.Context())
	if err != nil {
		s.procedures.RecordProcedure(procedureUplinkNAS, "failure", time.Since(start))
		sbi.ServiceUnavailable(w, "AMF not available", sbi.CauseInsufficientRes)
		return
	}

	var amfResp map[string]any
	if err := client.Post(r.Context(), "/ngap/uplink-nas-transport", pdu, &amfResp); err != nil {
		s.procedures.RecordProcedure(procedureUplinkNAS, "failure", time.Since(start))
		if apiErr, isAPI := sbi.AsAPIError(err); isAPI {
			sbi.WriteProblemDetails(w, &sbi.Problem{
				Title:  "Uplink NAS Transport rejected",
				Status: apiErr.StatusCode,
				Detail: apiErr.Detail,
				Cause:  apiErr.Cause,
			})
			return
		}
		if s.registry != nil {
			s.registry.Invalidate(models.NFTypeAMF)
		}
		sbi.BadGateway(w, "failed to deliver Uplink NAS Transport to AMF")
		return
	}

	s.procedures.RecordProcedure(procedureUplinkNAS, "success", time.Since(start))
	sbi.WriteJSONOK(w, map[string]any{
		"status":  "SUCCESS",
		"message": "Uplink NAS Transport sent to AMF",
	})
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	total, connected, sessions, cells := s.state.Counts()
	sbi.WriteJSONOK(w, map[string]any{
		"status":          "OPERATIONAL",
		"nfInstanceId":    s.instanceID,
		"amfConnected":    s.state.AMFConnected(),
		"globalGnbId":     s.globalRANNodeID(),
		"totalUes":        total,
		"connectedUes":    connected,
		"pduSessions":     sessions,
		"servedCells":     cells,
		"supportedTaList": s.supportedTAs,
	})
}

func (s *Service) handleUEContexts(w http.ResponseWriter, r *http.Request) {
	contexts := s.state.UESnapshot()

	out := make(map[uint64]any, len(contexts))
	for _, ctx := range contexts {
		out[ctx.RANUENGAPID] = map[string]any{
			"ranUeNgapId":  ctx.RANUENGAPID,
			"amfUeNgapId":  ctx.AMFUENGAPID,
			"ueState":      ctx.State,
			"pduSessions":  len(ctx.PDUSessions),
			"lastActivity": ctx.LastActivity,
		}
	}

	sbi.WriteJSONOK(w, map[string]any{
		"totalUes":   len(contexts),
		"ueContexts": out,
	})
}

func (s *Service) handleCellContexts(w http.ResponseWriter, r *http.Request) {
	cells := s.state.CellSnapshot()

	out := make(map[string]any, len(cells))
	for _, cell := range cells {
		out[cell.CellID] = map[string]any{
			"nrCgi":     cell.NRCGI,
			"cellState": cell.CellState,
			"load":      cell.Load,
		}
	}

	sbi.WriteJSONOK(w, map[string]any{
		"totalCells":   len(cells),
		"cellContexts": out,
	})
}
