package pcf

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

const (
	procedurePolicyCreate = "SM_POLICY_CREATE"
	procedurePolicyUpdate = "SM_POLICY_UPDATE"

	smPoliciesPath = "/npcf-smpolicycontrol/v1/sm-policies"
)

// Routes mounts the Npcf policy control routes plus the catalog
// management and status endpoints.
func (s *Service) Routes(r chi.Router) {
	r.Route(smPoliciesPath, func(r chi.Router) {
		r.Post("/", s.handleCreateSMPolicy)
		r.Route("/{smPolicyId}", func(r chi.Router) {
			r.Get("/", s.handleGetSMPolicy)
			r.Patch("/", s.handleUpdateSMPolicy)
			r.Delete("/", s.handleDeleteSMPolicy)
		})
	})

	r.Post("/npcf-am-policy-control/v1/policies", s.handleCreateAMPolicy)

	r.Route("/pcf", func(r chi.Router) {
		r.Get("/pcc-rules", s.handleListRules)
		r.Post("/pcc-rules", s.handleCreateRule)
		r.Get("/qos-data", s.handleListQOSData)
		r.Post("/qos-data", s.handleCreateQOSData)
		r.Get("/status", s.handleStatus)
	})
}

// handleCreateSMPolicy opens an SM policy association and returns the
// derived decision. The association id travels in the Location header.
func (s *Service) handleCreateSMPolicy(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var ctx models.SMPolicyContextData
	if !sbi.DecodeJSON(w, r, &ctx) {
		return
	}

	if ctx.SUPI == "" {
		sbi.BadRequestCause(w, "supi is required", sbi.CauseMandatoryIEMissing)
		return
	}
	if ctx.PDUSessionID <= 0 {
		sbi.BadRequestCause(w, "pduSessionId is required", sbi.CauseMandatoryIEMissing)
		return
	}
	if ctx.DNN == "" {
		sbi.BadRequestCause(w, "dnn is required", sbi.CauseMandatoryIEMissing)
		return
	}
	if ctx.NotificationURI == "" {
		sbi.BadRequestCause(w, "notificationUri is required", sbi.CauseMandatoryIEMissing)
		return
	}

	assocID := uuid.NewString()
	decision := s.state.BuildDecision(ctx)
	s.state.CreateAssociation(assocID, ctx, decision)
	s.procedures.RecordProcedure(procedurePolicyCreate, "success", time.Since(start))

	logger.Info("SM policy association created",
		logger.Supi(ctx.SUPI),
		logger.PduSessionID(ctx.PDUSessionID),
		logger.Dnn(ctx.DNN),
		"assocId", assocID,
		"pccRules", len(decision.PCCRules),
	)

	w.Header().Set("Location", smPoliciesPath+"/"+assocID)
	sbi.WriteJSONCreated(w, decision)
}

// handleGetSMPolicy returns an association's current decision.
func (s *Service) handleGetSMPolicy(w http.ResponseWriter, r *http.Request) {
	assocID := chi.URLParam(r, "smPolicyId")

	decision, ok := s.state.Decision(assocID)
	if !ok {
		sbi.NotFoundCause(w, "SM policy association "+assocID+" not found", sbi.CauseContextNotFound)
		return
	}
	sbi.WriteJSONOK(w, decision)
}

// smPolicyUpdateRequest accepts both the TS 29.512 field names and the
// flat triggers/context_updates shape session-management tooling sends.
type smPolicyUpdateRequest struct {
	models.SMPolicyUpdateContextData
	Triggers       []string              `json:"triggers"`
	ContextUpdates *legacyContextUpdates `json:"context_updates"`
}

type legacyContextUpdates struct {
	AppID           string           `json:"app_id"`
	QOSRequirements *models.QOSData  `json:"qos_requirements"`
	QOSNotification *qosNotification `json:"qos_notification"`
}

type qosNotification struct {
	CongestionLevel string `json:"congestion_level"`
}

// normalized folds both accepted request shapes into one trigger list
// and patch.
func (req *smPolicyUpdateRequest) normalized() ([]string, UpdatePatch) {
	triggers := req.RepPolicyCtrlReqTriggers
	if len(triggers) == 0 {
		triggers = req.Triggers
	}

	patch := UpdatePatch{
		RequestedQOS: req.RequestedQOS,
		AppID:        req.AppID,
	}
	for _, report := range req.QNCReports {
		if report.NotifType == "NOT_GUARANTEED" {
			patch.HighCongestion = true
		}
	}
	if legacy := req.ContextUpdates; legacy != nil {
		if patch.AppID == "" {
			patch.AppID = legacy.AppID
		}
		if patch.RequestedQOS == nil {
			patch.RequestedQOS = legacy.QOSRequirements
		}
		if legacy.QOSNotification != nil && legacy.QOSNotification.CongestionLevel == "high" {
			patch.HighCongestion = true
		}
	}
	return triggers, patch
}

// handleUpdateSMPolicy applies reported triggers to an association's
// decision.
func (s *Service) handleUpdateSMPolicy(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	assocID := chi.URLParam(r, "smPolicyId")

	var req smPolicyUpdateRequest
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	if _, ok := s.state.Decision(assocID); !ok {
		sbi.NotFoundCause(w, "SM policy association "+assocID+" not found", sbi.CauseContextNotFound)
		return
	}

	triggers, patch := req.normalized()
	for _, trigger := range triggers {
		if !ValidTrigger(trigger) {
			sbi.BadRequestCause(w, "unknown policy control trigger "+trigger, sbi.CauseInvalidParameter)
			return
		}
	}

	decision, ok := s.state.ApplyTriggers(assocID, triggers, patch)
	if !ok {
		sbi.NotFoundCause(w, "SM policy association "+assocID+" not found", sbi.CauseContextNotFound)
		return
	}
	s.procedures.RecordProcedure(procedurePolicyUpdate, "success", time.Since(start))

	logger.Info("SM policy association updated",
		"assocId", assocID,
		"triggers", triggers,
		"pccRules", len(decision.PCCRules),
	)
	sbi.WriteJSONOK(w, decision)
}

// handleDeleteSMPolicy terminates an association.
func (s *Service) handleDeleteSMPolicy(w http.ResponseWriter, r *http.Request) {
	assocID := chi.URLParam(r, "smPolicyId")

	if !s.state.DeleteAssociation(assocID) {
		sbi.NotFoundCause(w, "SM policy association "+assocID+" not found", sbi.CauseContextNotFound)
		return
	}
	logger.Info("SM policy association deleted", "assocId", assocID)
	sbi.WriteJSONOK(w, map[string]string{"message": "SM Policy Association deleted successfully"})
}

// handleCreateAMPolicy opens an AM policy association with the seeded
// presence-reporting configuration.
func (s *Service) handleCreateAMPolicy(w http.ResponseWriter, r *http.Request) {
	var amContext map[string]any
	if !sbi.DecodeJSON(w, r, &amContext) {
		return
	}

	assocID := uuid.NewString()
	policy := s.state.CreateAMPolicy(assocID)

	logger.Info("AM policy association created", "assocId", assocID)
	sbi.WriteJSONOK(w, map[string]any{
		"policyAssociationId": assocID,
		"amPolicyData":        policy,
	})
}

// handleListRules returns the PCC rule catalog.
func (s *Service) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules := s.state.CatalogRules()
	sbi.WriteJSONOK(w, map[string]any{
		"total_rules": len(rules),
		"pcc_rules":   rules,
	})
}

// handleCreateRule adds a rule to the catalog.
func (s *Service) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var rule models.PCCRule
	if !sbi.DecodeJSON(w, r, &rule) {
		return
	}
	if rule.PCCRuleID == "" {
		sbi.BadRequestCause(w, "pccRuleId is required", sbi.CauseMandatoryIEMissing)
		return
	}
	if !s.state.AddRule(rule) {
		sbi.Conflict(w, "PCC rule "+rule.PCCRuleID+" already exists")
		return
	}
	logger.Info("PCC rule created", "pccRuleId", rule.PCCRuleID)
	sbi.WriteJSONOK(w, map[string]string{
		"message": "PCC rule created successfully",
		"rule_id": rule.PCCRuleID,
	})
}

// handleListQOSData returns the QoS data catalog.
func (s *Service) handleListQOSData(w http.ResponseWriter, r *http.Request) {
	qosData := s.state.CatalogQOS()
	sbi.WriteJSONOK(w, map[string]any{
		"total_qos_data": len(qosData),
		"qos_data":       qosData,
	})
}

// handleCreateQOSData adds QoS data to the catalog.
func (s *Service) handleCreateQOSData(w http.ResponseWriter, r *http.Request) {
	var data models.QOSData
	if !sbi.DecodeJSON(w, r, &data) {
		return
	}
	if data.QOSID == "" {
		sbi.BadRequestCause(w, "qosId is required", sbi.CauseMandatoryIEMissing)
		return
	}
	if !s.state.AddQOSData(data) {
		sbi.Conflict(w, "QoS data "+data.QOSID+" already exists")
		return
	}
	logger.Info("QoS data created", "qosId", data.QOSID)
	sbi.WriteJSONOK(w, map[string]string{
		"message": "QoS data created successfully",
		"qos_id":  data.QOSID,
	})
}

// handleStatus reports association and catalog sizes.
func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	associations, amPolicies, rules, qosData := s.state.Counts()
	sbi.WriteJSONOK(w, map[string]any{
		"nfInstanceId":             s.instanceID,
		"nfType":                   models.NFTypePCF,
		"name":                     s.name,
		"status":                   "OPERATIONAL",
		"activePolicyAssociations": associations,
		"amPolicyAssociations":     amPolicies,
		"totalPccRules":            rules,
		"totalQosData":             qosData,
		"supportedFeatures":        supportedFeatures,
	})
}
