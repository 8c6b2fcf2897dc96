package cu

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/f1ap"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

const (
	procedureInitialULRRC   = "INITIAL_UL_RRC_MESSAGE_TRANSFER"
	procedureUEContextSetup = "UE_CONTEXT_SETUP"
	procedureDLRRCTransfer  = "DL_RRC_MESSAGE_TRANSFER"
	procedureF1Setup        = "F1_SETUP"
	procedureRRCSetup       = "RRC_SETUP"
)

// Routes mounts the CU side of F1AP and the introspection surfaces.
func (s *Service) Routes(r chi.Router) {
	r.Route("/f1ap", func(r chi.Router) {
		r.Post("/initial-ul-rrc-message", s.handleInitialULRRCMessage)
		r.Post("/ue-context-setup-response", s.handleUEContextSetupResponse)
		r.Post("/dl-rrc-message-transfer", s.handleDLRRCMessageTransfer)
		r.Post("/f1-setup-request", s.handleF1SetupRequest)
	})

	r.Post("/rrc/create-setup", s.handleCreateRRCSetup)

	r.Get("/cu/status", s.handleStatus)
	r.Get("/cu/ue-contexts", s.handleUEContexts)
}

// handleInitialULRRCMessage terminates the Initial UL RRC Message
// Transfer from the DU (TS 38.463 §8.4.1): it admits the UE, builds the
// RRCSetup, and answers with a DL RRC Message Transfer carrying it.
func (s *Service) handleInitialULRRCMessage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var pdu f1ap.PDU
	if !sbi.DecodeJSON(w, r, &pdu) {
		return
	}
	if pdu.InitiatingMessage == nil {
		s.procedures.RecordProcedure(procedureInitialULRRC, "failure", time.Since(start))
		sbi.BadRequestCause(w, "initiatingMessage is required", sbi.CauseMandatoryIEMissing)
		return
	}

	ies := pdu.IEs()
	duUEID, ok := ies.Int(f1ap.IEGNBDUUEF1APID)
	if !ok {
		s.procedures.RecordProcedure(procedureInitialULRRC, "failure", time.Since(start))
		sbi.BadRequestCause(w, "gNB-DU-UE-F1AP-ID is required", sbi.CauseMandatoryIEMissing)
		return
	}
	cRNTI, _ := ies.Int(f1ap.IECRNTI)

	ue := s.state.AllocateUEContext(uint64(duUEID), cRNTI)

	rrcSetup := BuildRRCSetup(1, ue.DUUEF1APID)
	container, err := json.Marshal(rrcSetup)
	if err != nil {
		s.procedures.RecordProcedure(procedureInitialULRRC, "failure", time.Since(start))
		sbi.WriteProblemDetails(w, &sbi.Problem{
			Title:  "Internal Server Error",
			Status: http.StatusInternalServerError,
			Detail: "failed to encode RRC container",
		})
		return
	}

	s.procedures.RecordProcedure(procedureInitialULRRC, "success", time.Since(start))
	logger.Info("Initial UL RRC message admitted",
		"cuUeF1apId", ue.CUUEF1APID,
		"duUeF1apId", ue.DUUEF1APID,
		"cRnti", cRNTI,
	)

	response := f1ap.NewInitiatingMessage(f1ap.ProcedureCodeDLRRCMessageTransfer, f1ap.CriticalityIgnore, f1ap.IEs{
		f1ap.IEGNBCUUEF1APID: ue.CUUEF1APID,
		f1ap.IEGNBDUUEF1APID: ue.DUUEF1APID,
		f1ap.IESRBID:         1,
		f1ap.IESRBSToBeSetupList: []any{
			map[string]any{
				"srbId":                 1,
				"duplicationActivation": "active",
			},
		},
		f1ap.IERRCContainer: string(container),
	})
	sbi.WriteJSONOK(w, response)
}

// handleUEContextSetupResponse records the DU-side id from the UE
// Context Setup Response (TS 38.463 §8.3.1).
func (s *Service) handleUEContextSetupResponse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var pdu f1ap.PDU
	if !sbi.DecodeJSON(w, r, &pdu) {
		return
	}
	if pdu.SuccessfulOutcome == nil {
		s.procedures.RecordProcedure(procedureUEContextSetup, "failure", time.Since(start))
		sbi.BadRequestCause(w, "successfulOutcome is required", sbi.CauseMandatoryIEMissing)
		return
	}

	ies := pdu.IEs()
	cuUEID, cuOK := ies.Int(f1ap.IEGNBCUUEF1APID)
	duUEID, duOK := ies.Int(f1ap.IEGNBDUUEF1APID)
	if !cuOK || !duOK {
		s.procedures.RecordProcedure(procedureUEContextSetup, "failure", time.Since(start))
		sbi.BadRequestCause(w, "gNB-CU-UE-F1AP-ID and gNB-DU-UE-F1AP-ID are required", sbi.CauseMandatoryIEMissing)
		return
	}

	if !s.state.BindDUUEF1APID(uint64(cuUEID), uint64(duUEID)) {
		s.procedures.RecordProcedure(procedureUEContextSetup, "failure", time.Since(start))
		sbi.NotFoundCause(w, "unknown gNB-CU-UE-F1AP-ID", sbi.CauseContextNotFound)
		return
	}

	s.procedures.RecordProcedure(procedureUEContextSetup, "success", time.Since(start))
	logger.Info("UE context setup completed",
		"cuUeF1apId", cuUEID,
		"duUeF1apId", duUEID,
	)

	sbi.WriteJSONOK(w, map[string]any{
		"status":     "SUCCESS",
		"cuUeF1apId": cuUEID,
		"duUeF1apId": duUEID,
		"ueState":    RRCStateConnected,
		"message":    "UE context setup completed",
	})
}

// handleDLRRCMessageTransfer builds a DL RRC Message Transfer for an
// established UE, for drivers injecting downlink RRC traffic.
func (s *Service) handleDLRRCMessageTransfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		GNBCUUEF1APID uint64 `json:"gnbCuUeF1apId"`
		SRBID         int    `json:"srbId"`
		RRCContainer  string `json:"rrcContainer"`
	}
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	ue, ok := s.state.Get(req.GNBCUUEF1APID)
	if !ok {
		s.procedures.RecordProcedure(procedureDLRRCTransfer, "failure", time.Since(start))
		sbi.NotFoundCause(w, "unknown gNB-CU-UE-F1AP-ID", sbi.CauseContextNotFound)
		return
	}

	srbID := req.SRBID
	if srbID == 0 {
		srbID = 1
	}
	container := req.RRCContainer
	if container == "" {
		container = "dl-rrc-message"
	}

	pdu := f1ap.NewInitiatingMessage(f1ap.ProcedureCodeDLRRCMessageTransfer, f1ap.CriticalityIgnore, f1ap.IEs{
		f1ap.IEGNBCUUEF1APID: ue.CUUEF1APID,
		f1ap.IEGNBDUUEF1APID: ue.DUUEF1APID,
		f1ap.IESRBID:         srbID,
		f1ap.IERRCContainer:  container,
	})

	s.procedures.RecordProcedure(procedureDLRRCTransfer, "success", time.Since(start))
	sbi.WriteJSONOK(w, map[string]any{
		"status":  "SUCCESS",
		"message": "DL RRC message transfer initiated",
		"f1apPdu": pdu,
	})
}

// handleF1SetupRequest triggers the F1 Setup procedure toward the DU and
// returns the request PDU that was sent.
func (s *Service) handleF1SetupRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	pdu := s.buildF1SetupRequest()
	s.establishF1Connection(r.Context())

	outcome := "failure"
	if s.state.DUConnected() {
		outcome = "success"
	}
	s.procedures.RecordProcedure(procedureF1Setup, outcome, time.Since(start))

	sbi.WriteJSONOK(w, map[string]any{
		"status":      "SUCCESS",
		"duConnected": s.state.DUConnected(),
		"f1apPdu":     pdu,
	})
}

// handleCreateRRCSetup returns an RRCSetup message for the given
// transaction, without sending anything to the DU.
func (s *Service) handleCreateRRCSetup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		RRCTransactionID int    `json:"rrcTransactionId"`
		GNBDUUEF1APID    uint64 `json:"gnbDuUeF1apId"`
	}
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}
	if req.RRCTransactionID == 0 {
		req.RRCTransactionID = 1
	}

	s.procedures.RecordProcedure(procedureRRCSetup, "success", time.Since(start))
	sbi.WriteJSONOK(w, map[string]any{
		"status":     "SUCCESS",
		"rrcMessage": BuildRRCSetup(req.RRCTransactionID, req.GNBDUUEF1APID),
	})
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	total, connected, cells := s.state.Counts()
	sbi.WriteJSONOK(w, map[string]any{
		"status":       "OPERATIONAL",
		"nfInstanceId": s.instanceID,
		"duConnected":  s.state.DUConnected(),
		"totalUes":     total,
		"connectedUes": connected,
		"servedCells":  cells,
		"rrcVersion":   rrcVersion,
	})
}

func (s *Service) handleUEContexts(w http.ResponseWriter, r *http.Request) {
	ues := s.state.UESnapshot()
	contexts := make([]map[string]any, 0, len(ues))
	for _, ue := range ues {
		contexts = append(contexts, map[string]any{
			"cuUeF1apId":    ue.CUUEF1APID,
			"duUeF1apId":    ue.DUUEF1APID,
			"cRnti":         ue.CRNTI,
			"servCellIndex": ue.ServCellIndex,
			"rrcState":      ue.RRCState,
			"lastActivity":  ue.LastActivity,
		})
	}
	sbi.WriteJSONOK(w, map[string]any{
		"totalUes":   len(contexts),
		"ueContexts": contexts,
	})
}
