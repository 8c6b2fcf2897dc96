package smf

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/telemetry"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/pfcp"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

const (
	procedureSessionEstablish = "PDU_SESSION_ESTABLISHMENT"
	procedureSessionRelease   = "PDU_SESSION_RELEASE"

	smContextsPath = "/nsmf-pdusession/v1/sm-contexts"

	// n3TEID is the tunnel endpoint the user plane is told to use on the
	// N3 reference point. One shared tunnel id is enough for emulation.
	n3TEID = "1001"

	// defaultFlowMBR is the 100 Mbps both-way rate of the default QoS
	// flow (QFI 9).
	defaultFlowMBR = 100_000_000
)

// Routes mounts the Nsmf_PDUSession routes plus the session list and
// legacy service-information endpoints.
func (s *Service) Routes(r chi.Router) {
	r.Route(smContextsPath, func(r chi.Router) {
		r.Post("/", s.handleCreateSMContext)
		r.Delete("/{smContextRef}", s.handleReleaseSMContext)
	})

	r.Get("/smf/sessions", s.handleSessions)
	r.Get("/smf_service", s.handleServiceInfo)
}

// handleCreateSMContext is the Create SM Context operation of
// TS 29.502 §5.2.2.2.1: allocate the UE address, establish the N4 session
// on the user plane, optionally fetch an SM policy, and answer the AMF
// with N2 SM information.
func (s *Service) handleCreateSMContext(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var create models.SMContextCreateData
	if !sbi.DecodeJSON(w, r, &create) {
		return
	}

	if missing := s.missingFields(&create); len(missing) > 0 {
		sbi.WriteProblemDetails(w, &sbi.Problem{
			Title:         "Bad Request",
			Status:        http.StatusBadRequest,
			Detail:        "Missing required fields: " + strings.Join(missing, ", "),
			Cause:         sbi.CauseMandatoryIEMissing,
			InvalidParams: invalidParams(missing),
		})
		return
	}

	ctx, span := telemetry.StartSBISpan(r.Context(), "nsmf-pdusession", "CreateSMContext",
		telemetry.Supi(create.SUPI), telemetry.PduSessionID(create.PDUSessionID), telemetry.Dnn(create.DNN))
	defer span.End()
	r = r.WithContext(ctx)

	ueIP := AllocateUEIP(create.PDUSessionID)
	smfSEID := fmt.Sprintf("smf-seid-%d", create.PDUSessionID)

	logger.Info("Create SM context request",
		logger.Supi(create.SUPI),
		logger.PduSessionID(create.PDUSessionID),
		logger.Dnn(create.DNN),
		logger.UeIP(ueIP),
	)

	n4, err := s.establishUserPlaneSession(r.Context(), &create, smfSEID, ueIP)
	if err != nil {
		s.procedures.RecordProcedure(procedureSessionEstablish, "failure", time.Since(start))
		s.writeUserPlaneError(w, err)
		return
	}
	if !n4.Cause.Accepted() {
		logger.Warn("User plane rejected session",
			logger.Supi(create.SUPI),
			logger.PduSessionID(create.PDUSessionID),
			"pfcpCause", n4.Cause.String(),
		)
		s.procedures.RecordProcedure(procedureSessionEstablish, "failure", time.Since(start))
		sbi.WriteJSONOK(w, models.SMContextCreatedData{
			Status:       "REJECTED",
			Cause:        models.CauseSessionEstablishmentRejected,
			PDUSessionID: create.PDUSessionID,
		})
		return
	}

	sess := &SessionContext{
		SUPI:           create.SUPI,
		PDUSessionID:   create.PDUSessionID,
		DNN:            create.DNN,
		SNSSAI:         *create.SNSSAI,
		ANType:         create.ANType,
		PDUSessionType: create.PDUSessionType,
		UEIPAddress:    ueIP,
		State:          models.SessionStatusActive,
		SMFSEID:        smfSEID,
		N3TunnelInfo:   n4.UPFSEID,
		CreatedAt:      time.Now().UTC(),
	}
	if n4.UPFSEID != nil {
		sess.UPFSEID = n4.UPFSEID.TEID
	}

	// Policy is best effort: a missing PCF never fails establishment.
	sess.PolicyDecision = s.fetchSMPolicy(r.Context(), &create, ueIP)

	key := s.state.Add(sess)
	s.procedures.RecordProcedure(procedureSessionEstablish, "success", time.Since(start))

	logger.Info("SM context created",
		logger.SessionKey(key),
		logger.UpfSeid(sess.UPFSEID),
		logger.SmfSeid(smfSEID),
	)

	w.Header().Set("Location", smContextsPath+"/"+key)
	sbi.WriteJSONCreated(w, models.SMContextCreatedData{
		Status:       models.SessionStatusCreated,
		Cause:        models.CauseSessionEstablishmentAccepted,
		PDUSessionID: create.PDUSessionID,
		UEIPAddress:  ueIP,
		N2SMInfo: &models.N2SMInfo{
			PDUSessionID: create.PDUSessionID,
			QOSFlowSetupRequestList: []models.QOSFlowSetupRequestItem{
				{
					QFI: 9,
					QOSCharacteristics: &models.QOSCharacteristics{
						FiveQI:   9,
						Priority: 80,
					},
				},
			},
			N2InfoContent: "base64-encoded-ngap-pdu-session-resource-setup-request",
		},
		SMContext: &models.SMContextRef{
			ContextID:   key,
			UEIPAddress: ueIP,
		},
	})
}

// missingFields runs the struct validation and maps failures back to the
// JSON field names of the mandatory attributes.
func (s *Service) missingFields(create *models.SMContextCreateData) []string {
	err := s.validate.Struct(create)
	if err == nil {
		return nil
	}

	jsonNames := map[string]string{
		"SUPI":         "supi",
		"PDUSessionID": "pduSessionId",
		"DNN":          "dnn",
		"SNSSAI":       "sNssai",
		"ANType":       "anType",
	}

	var missing []string
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			if name, ok := jsonNames[fe.Field()]; ok {
				missing = append(missing, name)
			}
		}
	}
	return missing
}

func invalidParams(missing []string) []sbi.InvalidParam {
	params := make([]sbi.InvalidParam, 0, len(missing))
	for _, name := range missing {
		params = append(params, sbi.InvalidParam{Param: name, Reason: "required"})
	}
	return params
}

// establishUserPlaneSession sends the N4 session establishment request:
// one uplink PDR on the UE address, one forwarding FAR toward the core
// with a GTP-U outer header, and the default-flow QER.
func (s *Service) establishUserPlaneSession(ctx context.Context, create *models.SMContextCreateData, smfSEID, ueIP string) (*pfcp.SessionEstablishmentResponse, error) {
	client, err := s.upfClient(ctx)
	if err != nil {
		return nil, err
	}

	req := pfcp.NewSessionEstablishmentRequest(smfSEID)
	req.NodeID = s.nodeID
	req.CreatePDR = []pfcp.CreatePDR{
		{
			PDRID:      1,
			Precedence: 200,
			PDI: pfcp.PDI{
				SourceInterface: pfcp.InterfaceAccess,
				UEIPAddress:     ueIP,
				NetworkInstance: create.DNN,
				FTEID:           &pfcp.FTEID{TEID: n3TEID, IPv4Address: s.cfg.SBI.Host},
			},
			FARID: 1,
		},
	}
	req.CreateFAR = []pfcp.CreateFAR{
		{
			FARID:       1,
			ApplyAction: pfcp.ApplyActionForward,
			ForwardingParameters: &pfcp.ForwardingParameters{
				DestinationInterface: pfcp.InterfaceCore,
				OuterHeaderCreation: &pfcp.OuterHeaderCreation{
					Description: "GTP-U/UDP/IPv4",
					TEID:        n3TEID,
				},
			},
		},
	}
	req.CreateQER = []pfcp.CreateQER{
		{
			QERID:       1,
			QFI:         9,
			UplinkMBR:   defaultFlowMBR,
			DownlinkMBR: defaultFlowMBR,
		},
	}

	var resp pfcp.SessionEstablishmentResponse
	if err := client.Post(ctx, "/pfcp/v1/sessions", req, &resp); err != nil {
		if _, isAPI := sbi.AsAPIError(err); !isAPI && s.registry != nil {
			s.registry.Invalidate(models.NFTypeUPF)
		}
		return nil, err
	}
	return &resp, nil
}

// writeUserPlaneError maps an N4 failure onto the AMF-facing response:
// the user plane's own resource exhaustion passes through, everything
// else is a bad gateway.
func (s *Service) writeUserPlaneError(w http.ResponseWriter, err error) {
	logger.Error("N4 session establishment failed", logger.Err(err))

	if apiErr, ok := sbi.AsAPIError(err); ok && apiErr.StatusCode == http.StatusServiceUnavailable {
		sbi.ServiceUnavailable(w, "user plane rejected the session: "+apiErr.Detail, sbi.CauseInsufficientRes)
		return
	}
	sbi.BadGateway(w, "user plane not reachable: "+err.Error())
}

// fetchSMPolicy creates the SM policy association when a policy function
// is discoverable. Returns nil when none is.
func (s *Service) fetchSMPolicy(ctx context.Context, create *models.SMContextCreateData, ueIP string) *models.SMPolicyDecision {
	client, err := s.pcfClient(ctx)
	if err != nil {
		logger.Debug("No policy function available", logger.Err(err))
		return nil
	}

	var decision models.SMPolicyDecision
	err = client.Post(ctx, "/npcf-smpolicycontrol/v1/sm-policies", models.SMPolicyContextData{
		SUPI:           create.SUPI,
		PDUSessionID:   create.PDUSessionID,
		PDUSessionType: create.PDUSessionType,
		DNN:            create.DNN,
		AccessType:     create.ANType,
		IPv4Address:    ueIP,
		SliceInfo:      create.SNSSAI,
	}, &decision)
	if err != nil {
		logger.Warn("SM policy association failed",
			logger.Supi(create.SUPI),
			logger.Err(err),
		)
		if _, isAPI := sbi.AsAPIError(err); !isAPI && s.registry != nil {
			s.registry.Invalidate(models.NFTypePCF)
		}
		return nil
	}

	logger.Info("SM policy association created",
		logger.Supi(create.SUPI),
		"pccRules", len(decision.PCCRules),
	)
	return &decision
}

// handleReleaseSMContext releases a PDU session (TS 29.502 §5.2.2.4):
// the N4 session is deleted on the user plane and the context moves to
// RELEASED. A repeated release replays the stored outcome.
func (s *Service) handleReleaseSMContext(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ref := chi.URLParam(r, "smContextRef")

	ctx, found, released := s.state.Release(ref)
	if !found {
		sbi.NotFoundCause(w, "SM context "+ref+" not found", sbi.CauseContextNotFound)
		return
	}

	if released {
		s.deleteUserPlaneSession(r.Context(), ctx.UPFSEID)
		s.procedures.RecordProcedure(procedureSessionRelease, "success", time.Since(start))
		logger.Info("SM context released",
			logger.SessionKey(ref),
			logger.UpfSeid(ctx.UPFSEID),
		)
	}

	sbi.WriteJSONOK(w, models.SMContextReleasedData{
		Status:       models.SessionStatusReleased,
		PDUSessionID: ctx.PDUSessionID,
	})
}

// deleteUserPlaneSession tears the N4 session down, best effort. The SM
// context is released either way.
func (s *Service) deleteUserPlaneSession(ctx context.Context, upfSEID string) {
	if upfSEID == "" {
		return
	}
	client, err := s.upfClient(ctx)
	if err != nil {
		logger.Warn("User plane unavailable for session deletion", logger.Err(err))
		return
	}

	var resp pfcp.SessionDeletionResponse
	if err := client.Delete(ctx, "/pfcp/v1/sessions/"+upfSEID, &resp); err != nil {
		logger.Warn("N4 session deletion failed",
			logger.UpfSeid(upfSEID),
			logger.Err(err),
		)
	}
}

// handleSessions lists the active session references.
func (s *Service) handleSessions(w http.ResponseWriter, r *http.Request) {
	keys := s.state.ActiveKeys()
	sbi.WriteJSONOK(w, map[string]any{
		"activeSessions": len(keys),
		"sessions":       keys,
	})
}

// handleServiceInfo is the legacy service-information endpoint.
func (s *Service) handleServiceInfo(w http.ResponseWriter, r *http.Request) {
	total, active, released := s.state.Counts()
	sbi.WriteJSONOK(w, map[string]any{
		"message":          "SMF service response",
		"compliance":       "3GPP TS 29.502",
		"status":           "OPERATIONAL",
		"totalSessions":    total,
		"activeSessions":   active,
		"releasedSessions": released,
	})
}
