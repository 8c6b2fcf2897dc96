package amf

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/telemetry"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/nas"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/ngap"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

const (
	procedureRegistration   = "REGISTRATION"
	procedureAuthentication = "AUTHENTICATION"
	procedureSecurityMode   = "SECURITY_MODE"
	procedurePDUSession     = "PDU_SESSION_FORWARD"
	procedureDeregistration = "DEREGISTRATION"
)

// Statuses the NAS endpoints answer with.
const (
	statusAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	statusRegistrationAccept     = "REGISTRATION_ACCEPT"
	statusRegistrationComplete   = "REGISTRATION_COMPLETE"
	statusAuthenticationSuccess  = "AUTHENTICATION_SUCCESS"
	statusAuthenticationFailure  = "AUTHENTICATION_FAILURE"
	statusDeregistrationAccept   = "DEREGISTRATION_ACCEPT"
	statusSessionAccept          = "PDU_SESSION_ESTABLISHMENT_ACCEPT"
)

// Routes mounts the NAS endpoints, the AMF side of NGAP, and the
// introspection surfaces.
func (s *Service) Routes(r chi.Router) {
	r.Route("/nas", func(r chi.Router) {
		r.Post("/registration-request", s.handleRegistrationRequest)
		r.Post("/authentication-response", s.handleAuthenticationResponse)
		r.Post("/security-mode-complete", s.handleSecurityModeComplete)
		r.Post("/pdu-session-establishment-request", s.handlePDUSessionEstablishment)
		r.Post("/deregistration-request", s.handleDeregistration)
	})

	r.Route("/ngap", func(r chi.Router) {
		r.Post("/ng-setup", s.handleNGSetup)
		r.Post("/initial-ue-message", s.handleInitialUEMessage)
		r.Post("/uplink-nas-transport", s.handleUplinkNASTransport)
	})

	r.Get("/heartbeat", s.handleHeartbeat)
	r.Get("/amf/status", s.handleStatus)
	r.Get("/amf/ue-contexts", s.handleUEContexts)
}

// handleRegistrationRequest runs the registration procedure of
// TS 23.502 §4.2.2.2: de-conceal the identity, challenge the UE through
// the AUSF when one is reachable, otherwise accept directly.
func (s *Service) handleRegistrationRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req nas.RegistrationRequest
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}
	if req.SUCI == "" {
		sbi.BadRequestCause(w, "suci is required", sbi.CauseMandatoryIEMissing)
		return
	}

	supi := DeconcealSUCI(req.SUCI)

	ctx, span := telemetry.StartNASSpan(r.Context(), "RegistrationRequest", supi, telemetry.Suci(req.SUCI))
	defer span.End()
	r = r.WithContext(ctx)

	s.state.UpsertRegistration(&UEContext{
		SUPI:                 supi,
		SUCI:                 req.SUCI,
		RegistrationType:     req.RegistrationType,
		UESecurityCapability: req.UESecurityCapability,
		RequestedNSSAI:       req.RequestedNSSAI,
	})

	logger.Info("Registration request",
		logger.Suci(req.SUCI),
		logger.Supi(supi),
		"registrationType", req.RegistrationType,
	)

	// Initial and emergency registrations authenticate first.
	if req.RegistrationType == nas.RegistrationTypeInitial || req.RegistrationType == nas.RegistrationTypeEmergency {
		if authCtx := s.initiateAuthentication(r.Context(), supi); authCtx != nil && authCtx.AuthenticationVector != nil {
			challenge := nas.AuthenticationRequest{
				Header: nas.NewHeader(nas.MessageTypeAuthenticationRequest),
				NGKSI:  1,
				ABBA:   "0000",
				RAND:   authCtx.AuthenticationVector.RAND,
				AUTN:   authCtx.AuthenticationVector.AUTN,
			}

			s.state.Transition(supi, StateAuthPending, func(ctx *UEContext) {
				ctx.AuthCtxID = authCtxID(authCtx)
			})
			s.procedures.RecordProcedure(procedureRegistration, "challenge", time.Since(start))

			sbi.WriteJSONOK(w, map[string]any{
				"status":      statusAuthenticationRequired,
				"nas_message": challenge,
				"links":       authCtx.Links,
			})
			return
		}
		logger.Warn("No authentication server reachable, accepting directly", logger.Supi(supi))
	}

	accept := s.buildRegistrationAccept(supi, req.RequestedNSSAI)
	s.state.Transition(supi, StateRegistered, func(ctx *UEContext) {
		ctx.GUTI = accept.MobileIdentity
		ctx.AllowedNSSAI = accept.AllowedNSSAI
		ctx.RejectedNSSAI = accept.RejectedNSSAI
	})

	udmRegistered := s.registerWithUDM(r.Context(), supi)
	s.procedures.RecordProcedure(procedureRegistration, "success", time.Since(start))

	logger.Info("Registration accepted",
		logger.Supi(supi),
		logger.Guti(accept.MobileIdentity),
		"udmRegistered", udmRegistered,
	)

	sbi.WriteJSONOK(w, map[string]any{
		"status":         statusRegistrationAccept,
		"nas_message":    accept,
		"guti":           accept.MobileIdentity,
		"udm_registered": udmRegistered,
	})
}

// authenticationResponse is the UE's answer to the 5G-AKA challenge.
type authenticationResponse struct {
	SUPI          string `json:"supi"`
	AuthResponse  string `json:"authResponse"`
	AuthContextID string `json:"authContextId"`
}

// handleAuthenticationResponse confirms the challenge with the AUSF. A
// verified response advances the UE to the security mode procedure; a
// failed one reports MAC failure (TS 24.501 §5.4.1.3.7).
func (s *Service) handleAuthenticationResponse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var resp authenticationResponse
	if !sbi.DecodeJSON(w, r, &resp) {
		return
	}
	if resp.SUPI == "" || resp.AuthResponse == "" || resp.AuthContextID == "" {
		sbi.BadRequestCause(w, "supi, authResponse and authContextId are required", sbi.CauseMandatoryIEMissing)
		return
	}

	ctx, span := telemetry.StartNASSpan(r.Context(), "AuthenticationResponse", resp.SUPI, telemetry.AuthCtxID(resp.AuthContextID))
	defer span.End()
	r = r.WithContext(ctx)

	ue, ok := s.state.Get(resp.SUPI)
	if !ok {
		sbi.NotFoundCause(w, "UE context for "+resp.SUPI+" not found", sbi.CauseContextNotFound)
		return
	}
	if ue.State != StateAuthPending {
		sbi.Forbidden(w, "UE "+resp.SUPI+" has no authentication in progress")
		return
	}

	result, err := s.confirmAuthentication(r.Context(), resp.AuthContextID, resp.AuthResponse)
	if err != nil {
		logger.Error("AUSF confirmation failed", logger.Supi(resp.SUPI), logger.Err(err))
		s.procedures.RecordProcedure(procedureAuthentication, "failure", time.Since(start))
		sbi.BadGateway(w, "authentication server not reachable: "+err.Error())
		return
	}

	if result.AuthResult != models.AuthResultSuccess {
		s.state.Transition(resp.SUPI, StateDeregistered, nil)
		s.procedures.RecordProcedure(procedureAuthentication, "failure", time.Since(start))
		logger.Warn("Authentication failed", logger.Supi(resp.SUPI), logger.AuthResult(result.AuthResult))

		sbi.WriteJSONOK(w, map[string]any{
			"status": statusAuthenticationFailure,
			"cause":  int(nas.MMCauseMACFailure),
		})
		return
	}

	smc := nas.SecurityModeCommand{
		Header: nas.NewHeader(nas.MessageTypeSecurityModeCommand),
		SelectedNASSecurityAlgorithms: nas.SecurityAlgorithms{
			Ciphering: nas.AlgCiphering128NEA1,
			Integrity: nas.AlgIntegrity128NIA1,
		},
		NGKSI:                          1,
		ReplayedUESecurityCapabilities: ue.UESecurityCapability,
		IMEISVRequest:                  1,
	}

	s.state.Transition(resp.SUPI, StateSecPending, func(ctx *UEContext) {
		ctx.Security = &SecurityContext{
			KSEAF:      result.KSEAF,
			Algorithms: smc.SelectedNASSecurityAlgorithms,
			NGKSI:      smc.NGKSI,
		}
	})
	s.procedures.RecordProcedure(procedureAuthentication, "success", time.Since(start))

	logger.Info("Authentication succeeded", logger.Supi(resp.SUPI))
	sbi.WriteJSONOK(w, map[string]any{
		"status":      statusAuthenticationSuccess,
		"nas_message": smc,
	})
}

// securityModeComplete closes the security mode procedure.
type securityModeComplete struct {
	SUPI   string `json:"supi"`
	IMEISV string `json:"imeisv,omitempty"`
}

// handleSecurityModeComplete finalizes registration: the UE moves to
// REGISTERED, gets its GUTI, and the serving-AMF registration lands at
// the subscriber store.
func (s *Service) handleSecurityModeComplete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req securityModeComplete
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	ue, ok := s.state.Get(req.SUPI)
	if !ok {
		sbi.NotFoundCause(w, "UE context for "+req.SUPI+" not found", sbi.CauseContextNotFound)
		return
	}
	if ue.State != StateSecPending {
		sbi.Forbidden(w, "UE "+req.SUPI+" has no security mode procedure in progress")
		return
	}

	accept := s.buildRegistrationAccept(req.SUPI, ue.RequestedNSSAI)
	s.state.Transition(req.SUPI, StateRegistered, func(ctx *UEContext) {
		ctx.GUTI = accept.MobileIdentity
		ctx.AllowedNSSAI = accept.AllowedNSSAI
		ctx.RejectedNSSAI = accept.RejectedNSSAI
		ctx.IMEISV = req.IMEISV
	})

	udmRegistered := s.registerWithUDM(r.Context(), req.SUPI)
	s.procedures.RecordProcedure(procedureSecurityMode, "success", time.Since(start))

	logger.Info("Security mode complete, UE registered",
		logger.Supi(req.SUPI),
		logger.Guti(accept.MobileIdentity),
		"udmRegistered", udmRegistered,
	)

	sbi.WriteJSONOK(w, map[string]any{
		"status":         statusRegistrationComplete,
		"nas_message":    accept,
		"udm_registered": udmRegistered,
	})
}

// pduSessionEstablishment wraps the 5GSM message with the originating
// identity, which the NAS payload itself does not carry.
type pduSessionEstablishment struct {
	nas.PDUSessionEstablishmentRequest
	SUPI string `json:"supi"`
}

// handlePDUSessionEstablishment forwards the 5GSM request to the SMF
// (TS 24.501 §8.3.1) and records the resulting session on the UE
// context. An unreachable SMF degrades to a locally accepted session.
func (s *Service) handlePDUSessionEstablishment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req pduSessionEstablishment
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}
	if req.SUPI == "" || req.PDUSessionID < 1 || req.PDUSessionID > 15 || req.PTI == 0 {
		sbi.BadRequestCause(w, "supi, pdu_session_id (1..15) and pti are required", sbi.CauseMandatoryIEMissing)
		return
	}

	ue, ok := s.state.Get(req.SUPI)
	if !ok {
		sbi.NotFoundCause(w, "UE context for "+req.SUPI+" not found", sbi.CauseContextNotFound)
		return
	}
	if ue.State != StateRegistered {
		sbi.Forbidden(w, "UE "+req.SUPI+" is not registered")
		return
	}

	ref := &PDUSessionRef{
		PDUSessionID: req.PDUSessionID,
		PTI:          req.PTI,
		State:        "CREATING",
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.createSMContext(r.Context(), req.SUPI, req.PDUSessionID)
	if err == nil && created.Status == models.SessionStatusCreated {
		ref.State = models.SessionStatusActive
		ref.UEIPAddress = created.UEIPAddress
		if created.SMContext != nil {
			ref.SMContextRef = created.SMContext.ContextID
		}
		s.state.AddPDUSession(req.SUPI, ref)
		s.procedures.RecordProcedure(procedurePDUSession, "success", time.Since(start))

		logger.Info("PDU session established",
			logger.Supi(req.SUPI),
			logger.PduSessionID(req.PDUSessionID),
			logger.UeIP(created.UEIPAddress),
		)

		sbi.WriteJSONOK(w, map[string]any{
			"status":          statusSessionAccept,
			"pdu_session_id":  req.PDUSessionID,
			"session_context": created,
		})
		return
	}

	if err != nil {
		logger.Warn("SMF unavailable, accepting session locally",
			logger.Supi(req.SUPI),
			logger.PduSessionID(req.PDUSessionID),
			logger.Err(err),
		)
	} else {
		logger.Warn("SMF rejected session, accepting locally",
			logger.Supi(req.SUPI),
			logger.PduSessionID(req.PDUSessionID),
			logger.Cause(created.Cause),
		)
	}

	// Degraded mode keeps the UE serviceable without a session anchor.
	ref.State = models.SessionStatusActive
	ref.UEIPAddress = "192.168.1.100"
	s.state.AddPDUSession(req.SUPI, ref)
	s.procedures.RecordProcedure(procedurePDUSession, "degraded", time.Since(start))

	sbi.WriteJSONOK(w, map[string]any{
		"status":         statusSessionAccept,
		"pdu_session_id": req.PDUSessionID,
		"allocated_ip":   ref.UEIPAddress,
	})
}

// deregistrationRequest is the UE-originated deregistration.
type deregistrationRequest struct {
	SUPI string `json:"supi"`
}

// handleDeregistration moves the UE back to DEREGISTERED and clears the
// serving-AMF registration at the subscriber store, best effort.
func (s *Service) handleDeregistration(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req deregistrationRequest
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	if !s.state.Transition(req.SUPI, StateDeregistered, func(ctx *UEContext) {
		ctx.Security = nil
		ctx.GUTI = ""
	}) {
		sbi.NotFoundCause(w, "UE context for "+req.SUPI+" not found", sbi.CauseContextNotFound)
		return
	}

	s.deregisterWithUDM(r.Context(), req.SUPI)
	s.procedures.RecordProcedure(procedureDeregistration, "success", time.Since(start))

	logger.Info("UE deregistered", logger.Supi(req.SUPI))
	sbi.WriteJSONOK(w, map[string]any{
		"status": statusDeregistrationAccept,
	})
}

// handleNGSetup answers the RAN's NG Setup Request (TS 38.413 §8.7.1)
// with the served GUAMI and PLMN support lists.
func (s *Service) handleNGSetup(w http.ResponseWriter, r *http.Request) {
	var pdu ngap.PDU
	if !sbi.DecodeJSON(w, r, &pdu) {
		return
	}

	msg := pdu.InitiatingMessage
	if msg == nil || msg.ProcedureCode != ngap.ProcedureCodeNGSetup {
		sbi.BadRequestCause(w, "expected an NG Setup initiating message", sbi.CauseMandatoryIEMissing)
		return
	}

	ies := msg.Value.ProtocolIEs
	nodeName := ies.String(ngap.IERANNodeName)
	if nodeName == "" {
		nodeName = "ran-node"
	}
	s.state.RecordRANConnection(nodeName, ies.Map(ngap.IEGlobalRANNodeID))

	logger.Info("NG Setup from RAN node", "ranNodeName", nodeName)

	response := ngap.NewSuccessfulOutcome(ngap.ProcedureCodeNGSetup, ngap.CriticalityReject, ngap.IEs{
		ngap.IEAMFName:             s.name,
		ngap.IEServedGUAMIList:     []models.GUAMI{s.guami},
		ngap.IEPLMNSupportList:     s.plmnSupportList(),
		ngap.IERelativeAMFCapacity: 100,
	})
	sbi.WriteJSONOK(w, response)
}

// handleInitialUEMessage accepts the RAN's Initial UE Message
// (TS 38.413 §8.6.1) and binds an AMF-side NGAP id to the association.
func (s *Service) handleInitialUEMessage(w http.ResponseWriter, r *http.Request) {
	var pdu ngap.PDU
	if !sbi.DecodeJSON(w, r, &pdu) {
		return
	}

	msg := pdu.InitiatingMessage
	if msg == nil || msg.ProcedureCode != ngap.ProcedureCodeInitialUEMessage {
		sbi.BadRequestCause(w, "expected an Initial UE Message", sbi.CauseMandatoryIEMissing)
		return
	}

	ies := msg.Value.ProtocolIEs
	ranUEID, ok := ies.Int(ngap.IERANUENGAPID)
	if !ok {
		sbi.BadRequestCause(w, "RAN-UE-NGAP-ID is required", sbi.CauseMandatoryIEMissing)
		return
	}

	amfUEID := s.state.AllocateAMFUENGAPID(uint64(ranUEID))
	logger.Info("Initial UE message",
		logger.RanUeNgapID(uint64(ranUEID)),
		logger.AmfUeNgapID(amfUEID),
	)

	sbi.WriteJSONOK(w, map[string]any{
		"status":      "SUCCESS",
		"ranUeNgapId": ranUEID,
		"amfUeNgapId": amfUEID,
		"nasPdu":      ies.String(ngap.IENASPDU),
	})
}

// handleUplinkNASTransport accepts uplink NAS carried on an existing
// NGAP association (TS 38.413 §8.6.3).
func (s *Service) handleUplinkNASTransport(w http.ResponseWriter, r *http.Request) {
	var pdu ngap.PDU
	if !sbi.DecodeJSON(w, r, &pdu) {
		return
	}

	ies := pdu.IEs()
	amfUEID, ok := ies.Int(ngap.IEAMFUENGAPID)
	if !ok || !s.state.KnownAMFUENGAPID(uint64(amfUEID)) {
		sbi.NotFoundCause(w, "unknown AMF-UE-NGAP-ID", sbi.CauseContextNotFound)
		return
	}

	sbi.WriteJSONOK(w, map[string]any{
		"status":      "SUCCESS",
		"amfUeNgapId": amfUEID,
	})
}

// handleHeartbeat answers RAN liveness probes.
func (s *Service) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	s.state.TouchHeartbeat()
	sbi.WriteJSONOK(w, map[string]any{"status": "OK"})
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	total, registered, sessions, security, rans := s.state.Counts()
	sbi.WriteJSONOK(w, map[string]any{
		"status":            "OPERATIONAL",
		"nfInstanceId":      s.instanceID,
		"registeredUes":     registered,
		"totalUes":          total,
		"activePduSessions": sessions,
		"securityContexts":  security,
		"ranConnections":    rans,
		"guami":             s.guami,
		"servedPlmns":       s.plmnSupportList(),
	})
}

func (s *Service) handleUEContexts(w http.ResponseWriter, r *http.Request) {
	contexts := s.state.Snapshot()

	out := make(map[string]any, len(contexts))
	for _, ctx := range contexts {
		out[ctx.SUPI] = map[string]any{
			"supi":              ctx.SUPI,
			"registrationState": ctx.State,
			"guti":              ctx.GUTI,
			"allowedNssai":      ctx.AllowedNSSAI,
			"pduSessions":       len(ctx.PDUSessions),
		}
	}

	sbi.WriteJSONOK(w, map[string]any{
		"totalUes":   len(contexts),
		"ueContexts": out,
	})
}

// buildRegistrationAccept negotiates the NSSAI against the served PLMN
// list and assembles the Registration Accept (TS 24.501 §8.2.7).
func (s *Service) buildRegistrationAccept(supi string, requested []models.SNSSAI) nas.RegistrationAccept {
	var allowed, rejected []models.SNSSAI
	if len(requested) > 0 {
		for _, snssai := range requested {
			if s.slicesSupported(snssai) {
				allowed = append(allowed, snssai)
			} else {
				rejected = append(rejected, snssai)
			}
		}
	} else {
		allowed = []models.SNSSAI{{SST: 1, SD: "010203"}}
	}

	plmn := models.PLMNID{MCC: s.cfg.PLMN.MCC, MNC: s.cfg.PLMN.MNC}
	return nas.RegistrationAccept{
		Header:             nas.NewHeader(nas.MessageTypeRegistrationAccept),
		RegistrationResult: nas.RegistrationResult5GSAllowed,
		MobileIdentity:     GUTI(s.guami, supi),
		TAIList: []nas.TrackingAreaListEntry{
			{
				TypeOfList:       "00",
				NumberOfElements: 1,
				PLMNID:           plmn,
				TAC:              s.cfg.RAN.TAC,
			},
		},
		AllowedNSSAI:  allowed,
		RejectedNSSAI: rejected,
		NetworkFeatureSupport: &nas.NetworkFeatureSupport{
			IMSVoPS3GPP:  true,
			IMSVoPSN3GPP: true,
			EMC3GPP:      true,
			EMCN3GPP:     true,
			EMF3GPP:      true,
			EMFN3GPP:     true,
		},
	}
}

// slicesSupported checks the requested slice type against the served
// PLMN list. The SST alone decides; differentiators follow the slice.
func (s *Service) slicesSupported(snssai models.SNSSAI) bool {
	for _, entry := range s.plmnSupportList() {
		for _, served := range entry.SNSSAIList {
			if served.SST == snssai.SST {
				return true
			}
		}
	}
	return false
}

// initiateAuthentication starts a 5G-AKA run at the AUSF. Nil when no
// authentication server answers.
func (s *Service) initiateAuthentication(ctx context.Context, supi string) *models.UEAuthenticationCtx {
	client, err := s.ausfClient(ctx)
	if err != nil {
		logger.Debug("No authentication server available", logger.Err(err))
		return nil
	}

	var authCtx models.UEAuthenticationCtx
	err = client.Post(ctx, "/nausf-auth/v1/ue-authentications", models.AuthenticationInfo{
		SUPIOrSUCI:         supi,
		ServingNetworkName: s.servingNetwork,
	}, &authCtx)
	if err != nil {
		logger.Warn("Authentication initiation failed", logger.Supi(supi), logger.Err(err))
		if _, isAPI := sbi.AsAPIError(err); !isAPI && s.registry != nil {
			s.registry.Invalidate(models.NFTypeAUSF)
		}
		return nil
	}
	return &authCtx
}

// confirmAuthentication sends the UE response to the AUSF confirmation
// endpoint.
func (s *Service) confirmAuthentication(ctx context.Context, authCtxID, resStar string) (*models.ConfirmationDataResponse, error) {
	client, err := s.ausfClient(ctx)
	if err != nil {
		return nil, err
	}

	var result models.ConfirmationDataResponse
	err = client.Put(ctx, "/nausf-auth/v1/ue-authentications/"+authCtxID+"/5g-aka-confirmation",
		models.ConfirmationData{ResStar: resStar}, &result)
	if err != nil {
		if _, isAPI := sbi.AsAPIError(err); !isAPI && s.registry != nil {
			s.registry.Invalidate(models.NFTypeAUSF)
		}
		return nil, err
	}
	return &result, nil
}

// registerWithUDM records this AMF as the serving AMF (TS 29.503
// §6.2.6.2.2). Best effort.
func (s *Service) registerWithUDM(ctx context.Context, supi string) bool {
	client, err := s.udmClient(ctx)
	if err != nil {
		logger.Debug("No subscriber store available", logger.Err(err))
		return false
	}

	var result models.RegistrationResult
	err = client.Post(ctx, "/nudm-uecm/v1/"+supi+"/registrations/amf-3gpp-access",
		models.AMF3GPPAccessRegistration{
			AMFInstanceID:          s.instanceID,
			DeregCallbackURI:       s.deregCallbackURI(supi),
			GUAMI:                  &s.guami,
			RATType:                "NR",
			InitialRegistrationInd: true,
		}, &result)
	if err != nil {
		logger.Warn("Serving-AMF registration failed", logger.Supi(supi), logger.Err(err))
		if _, isAPI := sbi.AsAPIError(err); !isAPI && s.registry != nil {
			s.registry.Invalidate(models.NFTypeUDM)
		}
		return false
	}
	return true
}

// deregisterWithUDM clears the serving-AMF registration. Best effort.
func (s *Service) deregisterWithUDM(ctx context.Context, supi string) {
	client, err := s.udmClient(ctx)
	if err != nil {
		return
	}
	if err := client.Delete(ctx, "/nudm-uecm/v1/"+supi+"/registrations/amf-3gpp-access", nil); err != nil {
		logger.Warn("Serving-AMF deregistration failed", logger.Supi(supi), logger.Err(err))
	}
}

// createSMContext forwards the session request to the SMF.
func (s *Service) createSMContext(ctx context.Context, supi string, pduSessionID int) (*models.SMContextCreatedData, error) {
	client, err := s.smfClient(ctx)
	if err != nil {
		return nil, err
	}

	var created models.SMContextCreatedData
	err = client.Post(ctx, "/nsmf-pdusession/v1/sm-contexts", models.SMContextCreateData{
		SUPI:           supi,
		PDUSessionID:   pduSessionID,
		DNN:            "internet",
		SNSSAI:         &models.SNSSAI{SST: 1, SD: "010203"},
		ANType:         "3GPP_ACCESS",
		PDUSessionType: "IPV4",
		SSCMode:        "SSC_MODE_1",
		ServingNFID:    s.instanceID,
		GUAMI:          &s.guami,
	}, &created)
	if err != nil {
		if _, isAPI := sbi.AsAPIError(err); !isAPI && s.registry != nil {
			s.registry.Invalidate(models.NFTypeSMF)
		}
		return nil, err
	}
	return &created, nil
}

// authCtxID extracts the confirmation context id from the _links map.
func authCtxID(authCtx *models.UEAuthenticationCtx) string {
	link, ok := authCtx.Links["5g-aka"]
	if !ok {
		return ""
	}
	parts := strings.Split(strings.TrimSuffix(link.Href, "/5g-aka-confirmation"), "/")
	return parts[len(parts)-1]
}
