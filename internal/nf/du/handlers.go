package du

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/f1ap"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

const (
	procedureF1Setup      = "F1_SETUP"
	procedureInitialULRRC = "INITIAL_UL_RRC_MESSAGE_TRANSFER"
	procedureMACPDU       = "MAC_PDU"
	procedureRLCSDU       = "RLC_SDU"
	procedurePDCPSDU      = "PDCP_SDU"
	procedurePRACH        = "PRACH"
)

// Routes mounts the DU side of F1AP and the protocol stack endpoints.
func (s *Service) Routes(r chi.Router) {
	r.Route("/f1ap", func(r chi.Router) {
		r.Post("/f1-setup-response", s.handleF1Setup)
		r.Post("/initial-ul-rrc-message", s.handleInitialULRRCMessage)
	})

	r.Route("/mac", func(r chi.Router) {
		r.Post("/process-pdu", s.handleMACPDU)
		r.Post("/harq-feedback", s.handleHARQFeedback)
		r.Get("/schedule", s.handleSchedule)
	})

	r.Route("/rlc", func(r chi.Router) {
		r.Post("/process-sdu", s.handleRLCSDU)
		r.Post("/receive-pdu", s.handleRLCReceive)
	})

	r.Route("/pdcp", func(r chi.Router) {
		r.Post("/process-sdu", s.handlePDCPSDU)
		r.Post("/receive-pdu", s.handlePDCPReceive)
	})

	r.Post("/phy/process-prach", s.handlePRACH)

	r.Get("/du/status", s.handleStatus)
	r.Get("/du/ue-contexts", s.handleUEContexts)
}

// handleF1Setup answers the CU's F1 Setup Request (TS 38.463 §9.2.1.2)
// with the DU identity and RRC version, and marks the F1 connection up.
func (s *Service) handleF1Setup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var pdu f1ap.PDU
	if !sbi.DecodeJSON(w, r, &pdu) {
		return
	}
	if pdu.InitiatingMessage == nil || pdu.InitiatingMessage.ProcedureCode != f1ap.ProcedureCodeF1Setup {
		s.procedures.RecordProcedure(procedureF1Setup, "failure", time.Since(start))
		sbi.BadRequestCause(w, "expected an F1 Setup initiating message", sbi.CauseMandatoryIEMissing)
		return
	}

	s.state.SetCUConnected(true)
	s.procedures.RecordProcedure(procedureF1Setup, "success", time.Since(start))
	logger.Info("F1 Setup accepted", "cuName", pdu.IEs().String(f1ap.IEGNBCUName))

	sbi.WriteJSONOK(w, map[string]any{
		"status":                       "SUCCESS",
		"gnb_du_id":                    s.duID,
		"gnb_du_name":                  s.name,
		"cells_failed_to_be_activated": []any{},
		"gnb_du_rrc_version":           "16.6.0",
	})
}

// handleInitialULRRCMessage admits a UE and forwards the Initial UL RRC
// Message Transfer to the CU (TS 38.463 §8.4.1).
func (s *Service) handleInitialULRRCMessage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		RRCContainer string `json:"rrcContainer"`
	}
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}
	if req.RRCContainer == "" {
		req.RRCContainer = "rrc-setup-request"
	}

	ue := s.state.AllocateUEContext()

	pdu := f1ap.NewInitiatingMessage(f1ap.ProcedureCodeInitialULRRCMessageTransfer, f1ap.CriticalityIgnore, f1ap.IEs{
		f1ap.IEGNBDUUEF1APID: ue.DUUEF1APID,
		f1ap.IENRCGI: map[string]any{
			"plmnIdentity":   models.PLMNID{MCC: s.cfg.PLMN.MCC, MNC: s.cfg.PLMN.MNC},
			"nrCellIdentity": strings.Repeat("0", 28) + "00000001",
		},
		f1ap.IECRNTI:        ue.CRNTI,
		f1ap.IERRCContainer: req.RRCContainer,
	})

	client, err := s.cuClient(r.Context())
	if err != nil {
		s.procedures.RecordProcedure(procedureInitialULRRC, "failure", time.Since(start))
		sbi.ServiceUnavailable(w, "CU not available", sbi.CauseInsufficientRes)
		return
	}

	var cuResp f1ap.PDU
	if err := client.Post(r.Context(), "/f1ap/initial-ul-rrc-message", pdu, &cuResp); err != nil {
		logger.Error("Initial UL RRC message delivery failed",
			"duUeF1apId", ue.DUUEF1APID,
			logger.Err(err),
		)
		s.procedures.RecordProcedure(procedureInitialULRRC, "failure", time.Since(start))
		if apiErr, isAPI := sbi.AsAPIError(err); isAPI {
			sbi.WriteProblemDetails(w, &sbi.Problem{
				Title:  "Initial UL RRC message rejected",
				Status: apiErr.StatusCode,
				Detail: apiErr.Detail,
				Cause:  apiErr.Cause,
			})
			return
		}
		if s.registry != nil {
			s.registry.Invalidate(models.NFTypeCU)
		}
		sbi.BadGateway(w, "failed to deliver Initial UL RRC message to CU")
		return
	}

	s.procedures.RecordProcedure(procedureInitialULRRC, "success", time.Since(start))
	logger.Info("Initial UL RRC message sent",
		"duUeF1apId", ue.DUUEF1APID,
		"cRnti", ue.CRNTI,
	)

	sbi.WriteJSONOK(w, map[string]any{
		"status":            "SUCCESS",
		"gnb_du_ue_f1ap_id": ue.DUUEF1APID,
		"c_rnti":            ue.CRNTI,
	})
}

// handleMACPDU multiplexes a MAC payload onto the logical channel's RLC
// entity (TS 38.321).
func (s *Service) handleMACPDU(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		UEID    uint64 `json:"ue_id"`
		LCID    int    `json:"lcid"`
		Payload string `json:"payload"`
	}
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	if _, ok := s.state.Get(req.UEID); !ok {
		s.procedures.RecordProcedure(procedureMACPDU, "failure", time.Since(start))
		sbi.NotFoundCause(w, "UE context not found", sbi.CauseContextNotFound)
		return
	}

	entityID := AMEntityID(req.UEID, req.LCID)
	if !s.rlc.Has(entityID) {
		s.procedures.RecordProcedure(procedureMACPDU, "failure", time.Since(start))
		sbi.BadRequestCause(w, "no RLC entity for the logical channel", sbi.CauseInvalidParameter)
		return
	}

	pdu, err := s.rlc.TransmitAMPDU(entityID, req.Payload)
	if err != nil {
		s.procedures.RecordProcedure(procedureMACPDU, "failure", time.Since(start))
		sbi.BadRequestCause(w, err.Error(), sbi.CauseInvalidParameter)
		return
	}

	s.procedures.RecordProcedure(procedureMACPDU, "success", time.Since(start))
	sbi.WriteJSONOK(w, map[string]any{
		"status":  "SUCCESS",
		"rlc_sn":  pdu.Header.SN,
		"message": "MAC PDU processed and forwarded to RLC",
	})
}

// handleHARQFeedback applies HARQ feedback to the UE's process.
func (s *Service) handleHARQFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UEID        uint64 `json:"ue_id"`
		HARQProcess int    `json:"harq_process"`
		ACK         bool   `json:"ack"`
	}
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	if _, ok := s.state.Get(req.UEID); !ok {
		sbi.NotFoundCause(w, "UE context not found", sbi.CauseContextNotFound)
		return
	}

	retxCount, dropped := s.mac.ProcessHARQFeedback(req.UEID, req.HARQProcess, req.ACK)
	sbi.WriteJSONOK(w, map[string]any{
		"status":     "SUCCESS",
		"retx_count": retxCount,
		"dropped":    dropped,
	})
}

// handleSchedule returns the grant sets from the latest scheduling pass.
func (s *Service) handleSchedule(w http.ResponseWriter, r *http.Request) {
	ulGrants, dlAssignments := s.mac.Latest()
	sbi.WriteJSONOK(w, map[string]any{
		"ul_grants":      ulGrants,
		"dl_assignments": dlAssignments,
	})
}

// handleRLCSDU transmits an SDU on the bearer's AM entity (TS 38.322).
func (s *Service) handleRLCSDU(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		UEID     uint64 `json:"ue_id"`
		BearerID int    `json:"bearer_id"`
		SDU      string `json:"sdu"`
	}
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	pdu, err := s.rlc.TransmitAMPDU(AMEntityID(req.UEID, req.BearerID), req.SDU)
	if err != nil {
		s.procedures.RecordProcedure(procedureRLCSDU, "failure", time.Since(start))
		sbi.NotFoundCause(w, err.Error(), sbi.CauseContextNotFound)
		return
	}

	s.procedures.RecordProcedure(procedureRLCSDU, "success", time.Since(start))
	sbi.WriteJSONOK(w, map[string]any{
		"status":  "SUCCESS",
		"rlc_sn":  pdu.Header.SN,
		"message": "RLC SDU processed",
	})
}

// handleRLCReceive runs the receive side of the AM entity: in-sequence
// PDUs are delivered, in-window PDUs ahead of VR(R) are buffered.
func (s *Service) handleRLCReceive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UEID     uint64 `json:"ue_id"`
		BearerID int    `json:"bearer_id"`
		RLCPDU   RLCPDU `json:"rlc_pdu"`
	}
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	sdus, delivered, err := s.rlc.ReceiveAMPDU(AMEntityID(req.UEID, req.BearerID), req.RLCPDU)
	if err != nil {
		sbi.NotFoundCause(w, err.Error(), sbi.CauseContextNotFound)
		return
	}

	if !delivered {
		sbi.WriteJSONOK(w, map[string]any{
			"status":  "BUFFERED",
			"message": "RLC PDU outside in-sequence delivery, buffered",
		})
		return
	}
	sbi.WriteJSONOK(w, map[string]any{
		"status": "DELIVERED",
		"sdu":    sdus[0],
		"sdus":   sdus,
	})
}

// handlePDCPSDU transmits an SDU on the bearer's PDCP entity
// (TS 38.323).
func (s *Service) handlePDCPSDU(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		UEID     uint64 `json:"ue_id"`
		BearerID int    `json:"bearer_id"`
		SDU      string `json:"sdu"`
	}
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	pdu, err := s.pdcp.Transmit(PDCPEntityID(req.UEID, req.BearerID), req.SDU)
	if err != nil {
		s.procedures.RecordProcedure(procedurePDCPSDU, "failure", time.Since(start))
		sbi.NotFoundCause(w, err.Error(), sbi.CauseContextNotFound)
		return
	}

	s.procedures.RecordProcedure(procedurePDCPSDU, "success", time.Since(start))
	sbi.WriteJSONOK(w, map[string]any{
		"status":  "SUCCESS",
		"pdcp_sn": pdu.Header.SN,
		"message": "PDCP SDU processed",
	})
}

// handlePDCPReceive runs the receive side of the PDCP entity. A PDU
// failing the integrity check is rejected.
func (s *Service) handlePDCPReceive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UEID     uint64  `json:"ue_id"`
		BearerID int     `json:"bearer_id"`
		PDCPPDU  PDCPPDU `json:"pdcp_pdu"`
	}
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	entityID := PDCPEntityID(req.UEID, req.BearerID)
	if !s.pdcp.Has(entityID) {
		sbi.NotFoundCause(w, "PDCP entity not found", sbi.CauseContextNotFound)
		return
	}

	sdu, err := s.pdcp.Receive(entityID, req.PDCPPDU)
	if err != nil {
		sbi.WriteJSONOK(w, map[string]any{
			"status":  "DISCARDED",
			"message": "integrity verification failed",
		})
		return
	}
	sbi.WriteJSONOK(w, map[string]any{
		"status": "DELIVERED",
		"sdu":    sdu,
	})
}

// handlePRACH answers a PRACH preamble with a random access response
// (TS 38.211 §5.3.2).
func (s *Service) handlePRACH(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		PreambleIndex int `json:"preamble_index"`
	}
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	rar := s.phy.ProcessPRACH(req.PreambleIndex)
	s.procedures.RecordProcedure(procedurePRACH, "success", time.Since(start))
	logger.Info("PRACH processed",
		"preambleIndex", rar.PreambleIndex,
		"tempCRnti", rar.TempCRNTI,
	)

	sbi.WriteJSONOK(w, map[string]any{
		"status":                 "SUCCESS",
		"random_access_response": rar,
		"message":                "PRACH processed",
	})
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	frame, slot := s.phy.Position()
	sbi.WriteJSONOK(w, map[string]any{
		"status":       "OPERATIONAL",
		"nfInstanceId": s.instanceID,
		"cuConnected":  s.state.CUConnected(),
		"connectedUes": s.state.Count(),
		"currentFrame": frame,
		"currentSlot":  slot,
		"macEntities":  s.state.Count(),
		"rlcEntities":  s.rlc.Count(),
		"pdcpEntities": s.pdcp.Count(),
	})
}

func (s *Service) handleUEContexts(w http.ResponseWriter, r *http.Request) {
	ues := s.state.UESnapshot()
	contexts := make([]map[string]any, 0, len(ues))
	for _, ue := range ues {
		contexts = append(contexts, map[string]any{
			"duUeF1apId":   ue.DUUEF1APID,
			"cRnti":        ue.CRNTI,
			"cellIndex":    ue.CellIndex,
			"rrcState":     ue.RRCState,
			"macState":     ue.MACState,
			"lastActivity": ue.LastActivity,
		})
	}
	sbi.WriteJSONOK(w, map[string]any{
		"totalUes":   len(contexts),
		"ueContexts": contexts,
	})
}
