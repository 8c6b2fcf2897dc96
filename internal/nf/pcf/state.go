// Package pcf implements the policy control function: SM policy
// associations with a seeded PCC-rule and QoS-data catalog (TS 29.512),
// trigger-driven decision updates, and AM policy associations
// (TS 29.514).
package pcf

import (
	"strings"
	"sync"
	"time"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
)

const (
	supportedFeatures  = "0x1f"
	revalidationWindow = 24 * time.Hour
)

// validTriggers is the full TS 29.512 trigger vocabulary accepted on
// update. defaultTriggers is the subset armed on every created
// association.
var validTriggers = map[string]bool{
	models.TriggerPLMNChange:        true,
	models.TriggerResourceMO:        true,
	models.TriggerAccessTypeChange:  true,
	models.TriggerUEIPChange:        true,
	models.TriggerANChargingCorr:    true,
	models.TriggerUsageReport:       true,
	models.TriggerAppStart:          true,
	models.TriggerAppStop:           true,
	models.TriggerDefaultQoSChange:  true,
	models.TriggerSessionAMBRChange: true,
	models.TriggerQoSNotification:   true,
	models.TriggerResourceAllocated: true,
	models.TriggerRAIChange:         true,
	models.TriggerPCCRuleUpdate:     true,
	"UE_MAC_CH":                     true,
	"AN_INFO":                       true,
	"CM_SES_FAIL":                   true,
	"PS_DA_OFF":                     true,
	"NO_CREDIT":                     true,
	"REALLO_OF_CREDIT":              true,
	"PRA_CH":                        true,
	"SAREA_CH":                      true,
	"SCNN_CH":                       true,
	"RE_TIMEOUT":                    true,
	"RES_RELEASE":                   true,
	"RFSP_CH":                       true,
}

var defaultTriggers = []string{
	models.TriggerPLMNChange,
	models.TriggerResourceMO,
	models.TriggerAccessTypeChange,
	models.TriggerUEIPChange,
	models.TriggerANChargingCorr,
	models.TriggerUsageReport,
	models.TriggerAppStart,
	models.TriggerAppStop,
	models.TriggerDefaultQoSChange,
	models.TriggerSessionAMBRChange,
	models.TriggerQoSNotification,
	models.TriggerResourceAllocated,
	models.TriggerRAIChange,
	models.TriggerPCCRuleUpdate,
}

// ValidTrigger reports whether name is a known trigger.
func ValidTrigger(name string) bool {
	return validTriggers[name]
}

// UpdatePatch is the normalized context patch accompanying a policy
// update.
type UpdatePatch struct {
	RequestedQOS   *models.QOSData
	AppID          string
	HighCongestion bool
}

// Association ties a decision to the session context it was created for.
type Association struct {
	AssocID   string                     `json:"assocId"`
	Context   models.SMPolicyContextData `json:"context"`
	CreatedAt time.Time                  `json:"createdAt"`
}

// AMPolicyData is the access-and-mobility policy issued per association
// (TS 29.514). The emulation seeds one presence reporting area.
type AMPolicyData struct {
	PRAInfos  map[string]PresenceInfo `json:"praInfos,omitempty"`
	SubscCats []string                `json:"subscCats,omitempty"`
}

// PresenceInfo describes one presence reporting area.
type PresenceInfo struct {
	PRAID         string `json:"praId"`
	PresenceState string `json:"presenceState,omitempty"`
}

// State holds the rule catalog and the live policy associations.
type State struct {
	mu           sync.RWMutex
	catalogRules map[string]models.PCCRule
	catalogQOS   map[string]models.QOSData
	associations map[string]*Association
	decisions    map[string]*models.SMPolicyDecision
	amPolicies   map[string]AMPolicyData
}

// NewState creates a store seeded with the default catalog.
func NewState() *State {
	s := &State{
		catalogRules: make(map[string]models.PCCRule),
		catalogQOS:   make(map[string]models.QOSData),
		associations: make(map[string]*Association),
		decisions:    make(map[string]*models.SMPolicyDecision),
		amPolicies:   make(map[string]AMPolicyData),
	}
	s.seedCatalog()
	return s
}

// seedCatalog provisions the QoS data and PCC rules for the four service
// classes: best-effort internet, IMS signalling, conversational video and
// low-latency gaming.
func (s *State) seedCatalog() {
	for _, qos := range []models.QOSData{
		{
			QOSID:  "qos_internet",
			FiveQI: 9,
			ARP: &models.ARP{
				PriorityLevel:           8,
				PreemptionCapability:    models.PreemptionNotPreempt,
				PreemptionVulnerability: models.PreemptionNotPreemptable,
			},
			PriorityLevel: 8,
		},
		{
			QOSID:         "qos_ims",
			FiveQI:        5,
			GBRUplink:     "128 Kbps",
			GBRDownlink:   "128 Kbps",
			MaxBRUplink:   "256 Kbps",
			MaxBRDownlink: "256 Kbps",
			ARP: &models.ARP{
				PriorityLevel:           1,
				PreemptionCapability:    models.PreemptionMayPreempt,
				PreemptionVulnerability: models.PreemptionNotPreemptable,
			},
			PriorityLevel: 1,
			QOSFlowUsage:  "IMS_SIG",
		},
		{
			QOSID:         "qos_video",
			FiveQI:        2,
			GBRUplink:     "2 Mbps",
			GBRDownlink:   "10 Mbps",
			MaxBRUplink:   "5 Mbps",
			MaxBRDownlink: "25 Mbps",
			ARP: &models.ARP{
				PriorityLevel:           4,
				PreemptionCapability:    models.PreemptionNotPreempt,
				PreemptionVulnerability: models.PreemptionPreemptable,
			},
			PriorityLevel:       4,
			AveragingWindow:     2000,
			MaxPacketLossRateUL: 1,
			MaxPacketLossRateDL: 1,
		},
		{
			QOSID:         "qos_gaming",
			FiveQI:        83,
			GBRUplink:     "500 Kbps",
			GBRDownlink:   "1 Mbps",
			MaxBRUplink:   "1 Mbps",
			MaxBRDownlink: "2 Mbps",
			ARP: &models.ARP{
				PriorityLevel:           7,
				PreemptionCapability:    models.PreemptionNotPreempt,
				PreemptionVulnerability: models.PreemptionPreemptable,
			},
			PriorityLevel: 7,
		},
	} {
		s.catalogQOS[qos.QOSID] = qos
	}

	for _, rule := range []models.PCCRule{
		{
			PCCRuleID:     "rule_internet_default",
			Precedence:    1000,
			PCCRuleStatus: "ACTIVE",
			FlowInfos: []models.FlowInformation{
				{FlowDescription: "permit out ip from any to assigned", FlowDirection: models.FlowDirectionDownlink},
				{FlowDescription: "permit in ip from any to assigned", FlowDirection: models.FlowDirectionUplink},
			},
			RefQOSData: []string{"qos_internet"},
		},
		{
			PCCRuleID:     "rule_ims_signalling",
			Precedence:    100,
			PCCRuleStatus: "ACTIVE",
			FlowInfos: []models.FlowInformation{
				{FlowDescription: "permit out 17 from any 5060 to assigned", FlowDirection: models.FlowDirectionBidirectional},
			},
			RefQOSData: []string{"qos_ims"},
		},
		{
			PCCRuleID:     "rule_video_streaming",
			Precedence:    200,
			PCCRuleStatus: "ACTIVE",
			AppID:         "video_streaming_app",
			FlowInfos: []models.FlowInformation{
				{FlowDescription: "permit out tcp from any 80,443 to assigned", FlowDirection: models.FlowDirectionDownlink},
			},
			RefQOSData: []string{"qos_video"},
		},
		{
			PCCRuleID:     "rule_gaming",
			Precedence:    300,
			PCCRuleStatus: "ACTIVE",
			AppID:         "gaming_app",
			FlowInfos: []models.FlowInformation{
				{FlowDescription: "permit out udp from any 7000-8000 to assigned", FlowDirection: models.FlowDirectionBidirectional},
			},
			RefQOSData: []string{"qos_gaming"},
		},
	} {
		s.catalogRules[rule.PCCRuleID] = rule
	}
}

// BuildDecision derives the SM policy decision for a session context:
// the default internet rule always, plus the service rule the DNN
// selects. The decision is a pure function of the context, so repeating
// a create yields the same rule set.
func (s *State) BuildDecision(ctx models.SMPolicyContextData) *models.SMPolicyDecision {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make(map[string]models.PCCRule)
	qos := make(map[string]models.QOSData)
	s.include(rules, qos, "rule_internet_default")

	switch {
	case ctx.DNN == "ims":
		s.include(rules, qos, "rule_ims_signalling")
	case strings.Contains(ctx.DNN, "video"):
		s.include(rules, qos, "rule_video_streaming")
	case strings.Contains(ctx.DNN, "gaming"):
		s.include(rules, qos, "rule_gaming")
	}

	revalidation := time.Now().UTC().Add(revalidationWindow)
	return &models.SMPolicyDecision{
		PCCRules:              rules,
		QOSDecisions:          qos,
		PolicyCtrlReqTriggers: append([]string(nil), defaultTriggers...),
		RevalidationTime:      &revalidation,
		SUPI:                  ctx.SUPI,
		SuppFeat:              supportedFeatures,
		Online:                true,
		Offline:               true,
	}
}

// include copies a catalog rule and its referenced QoS data into the
// decision maps.
func (s *State) include(rules map[string]models.PCCRule, qos map[string]models.QOSData, ruleID string) {
	rule, ok := s.catalogRules[ruleID]
	if !ok {
		return
	}
	rules[ruleID] = rule
	for _, qosID := range rule.RefQOSData {
		if data, ok := s.catalogQOS[qosID]; ok {
			qos[qosID] = data
		}
	}
}

// CreateAssociation stores a new association and its decision.
func (s *State) CreateAssociation(assocID string, ctx models.SMPolicyContextData, decision *models.SMPolicyDecision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.associations[assocID] = &Association{
		AssocID:   assocID,
		Context:   ctx,
		CreatedAt: time.Now().UTC(),
	}
	s.decisions[assocID] = decision
}

// Decision returns a snapshot of an association's current decision.
func (s *State) Decision(assocID string) (models.SMPolicyDecision, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	decision, ok := s.decisions[assocID]
	if !ok {
		return models.SMPolicyDecision{}, false
	}
	return copyDecision(decision), true
}

// ApplyTriggers dispatches the reported triggers against an association's
// decision and refreshes its revalidation time. Triggers with no
// decision impact are accepted and ignored.
func (s *State) ApplyTriggers(assocID string, triggers []string, patch UpdatePatch) (models.SMPolicyDecision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	decision, ok := s.decisions[assocID]
	if !ok {
		return models.SMPolicyDecision{}, false
	}

	for _, trigger := range triggers {
		switch trigger {
		case models.TriggerResourceMO:
			applyRequestedQOS(decision, patch.RequestedQOS)
		case models.TriggerAppStart:
			s.installAppRule(decision, patch.AppID)
		case models.TriggerAppStop:
			removeAppRule(decision, patch.AppID)
		case models.TriggerQoSNotification:
			if patch.HighCongestion {
				throttleBestEffort(decision)
			}
		}
	}

	revalidation := time.Now().UTC().Add(revalidationWindow)
	decision.RevalidationTime = &revalidation
	return copyDecision(decision), true
}

// applyRequestedQOS installs a conversational-voice QoS decision when the
// requested 5QI asks for one.
func applyRequestedQOS(decision *models.SMPolicyDecision, requested *models.QOSData) {
	if requested == nil || requested.FiveQI != 1 {
		return
	}
	decision.QOSDecisions["qos_voice"] = models.QOSData{
		QOSID:       "qos_voice",
		FiveQI:      1,
		GBRUplink:   "64 Kbps",
		GBRDownlink: "64 Kbps",
		ARP: &models.ARP{
			PriorityLevel:           2,
			PreemptionCapability:    models.PreemptionNotPreempt,
			PreemptionVulnerability: models.PreemptionNotPreemptable,
		},
	}
}

// installAppRule adds the catalog rule keyed by the application id along
// with its referenced QoS data.
func (s *State) installAppRule(decision *models.SMPolicyDecision, appID string) {
	if appID == "" {
		return
	}
	for ruleID, rule := range s.catalogRules {
		if rule.AppID != appID {
			continue
		}
		decision.PCCRules[ruleID] = rule
		for _, qosID := range rule.RefQOSData {
			if data, ok := s.catalogQOS[qosID]; ok {
				decision.QOSDecisions[qosID] = data
			}
		}
	}
}

// removeAppRule drops the application's rule. Referenced QoS entries go
// with it only when no remaining rule still points at them, so every
// refQosData entry keeps resolving.
func removeAppRule(decision *models.SMPolicyDecision, appID string) {
	if appID == "" {
		return
	}
	var orphaned []string
	for ruleID, rule := range decision.PCCRules {
		if rule.AppID != appID {
			continue
		}
		delete(decision.PCCRules, ruleID)
		orphaned = append(orphaned, rule.RefQOSData...)
	}
	for _, qosID := range orphaned {
		if !qosReferenced(decision, qosID) {
			delete(decision.QOSDecisions, qosID)
		}
	}
}

func qosReferenced(decision *models.SMPolicyDecision, qosID string) bool {
	for _, rule := range decision.PCCRules {
		for _, ref := range rule.RefQOSData {
			if ref == qosID {
				return true
			}
		}
	}
	return false
}

// throttleBestEffort caps every best-effort (5QI 9) decision at
// 500 Kbps up / 1 Mbps down.
func throttleBestEffort(decision *models.SMPolicyDecision) {
	for qosID, data := range decision.QOSDecisions {
		if data.FiveQI != 9 {
			continue
		}
		data.MaxBRUplink = "500 Kbps"
		data.MaxBRDownlink = "1 Mbps"
		decision.QOSDecisions[qosID] = data
	}
}

// DeleteAssociation removes an association and its decision. Reports
// whether it existed.
func (s *State) DeleteAssociation(assocID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.decisions[assocID]
	delete(s.associations, assocID)
	delete(s.decisions, assocID)
	return ok
}

// CreateAMPolicy seeds and stores an AM policy association.
func (s *State) CreateAMPolicy(assocID string) AMPolicyData {
	policy := AMPolicyData{
		PRAInfos: map[string]PresenceInfo{
			"pra_001": {PRAID: "pra_001", PresenceState: "IN_AREA"},
		},
		SubscCats: []string{"premium", "standard"},
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.amPolicies[assocID] = policy
	return policy
}

// CatalogRules returns a copy of the PCC rule catalog.
func (s *State) CatalogRules() map[string]models.PCCRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.PCCRule, len(s.catalogRules))
	for id, rule := range s.catalogRules {
		out[id] = rule
	}
	return out
}

// CatalogQOS returns a copy of the QoS data catalog.
func (s *State) CatalogQOS() map[string]models.QOSData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.QOSData, len(s.catalogQOS))
	for id, data := range s.catalogQOS {
		out[id] = data
	}
	return out
}

// AddRule inserts a catalog rule. Reports false when the id is taken.
func (s *State) AddRule(rule models.PCCRule) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.catalogRules[rule.PCCRuleID]; exists {
		return false
	}
	s.catalogRules[rule.PCCRuleID] = rule
	return true
}

// AddQOSData inserts catalog QoS data. Reports false when the id is
// taken.
func (s *State) AddQOSData(data models.QOSData) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.catalogQOS[data.QOSID]; exists {
		return false
	}
	s.catalogQOS[data.QOSID] = data
	return true
}

// Counts returns the association and catalog sizes.
func (s *State) Counts() (associations, amPolicies, rules, qosData int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.associations), len(s.amPolicies), len(s.catalogRules), len(s.catalogQOS)
}

func copyDecision(d *models.SMPolicyDecision) models.SMPolicyDecision {
	out := *d
	out.PCCRules = make(map[string]models.PCCRule, len(d.PCCRules))
	for id, rule := range d.PCCRules {
		out.PCCRules[id] = rule
	}
	out.QOSDecisions = make(map[string]models.QOSData, len(d.QOSDecisions))
	for id, data := range d.QOSDecisions {
		out.QOSDecisions[id] = data
	}
	out.PolicyCtrlReqTriggers = append([]string(nil), d.PolicyCtrlReqTriggers...)
	if d.RevalidationTime != nil {
		t := *d.RevalidationTime
		out.RevalidationTime = &t
	}
	return out
}
