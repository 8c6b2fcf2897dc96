package models

import "time"

// Policy control request triggers the PCF arms on created associations
// (TS 29.512 §5.6.3.6). The update endpoint dispatches on these.
const (
	TriggerPLMNChange        = "PLMN_CH"
	TriggerResourceMO        = "RES_MO_RE"
	TriggerAccessTypeChange  = "AC_TY_CH"
	TriggerUEIPChange        = "UE_IP_CH"
	TriggerANChargingCorr    = "AN_CH_COR"
	TriggerUsageReport       = "US_RE"
	TriggerAppStart          = "APP_STA"
	TriggerAppStop           = "APP_STO"
	TriggerDefaultQoSChange  = "DEF_QOS_CH"
	TriggerSessionAMBRChange = "SE_AMBR_CH"
	TriggerQoSNotification   = "QOS_NOTIF"
	TriggerResourceAllocated = "SUCC_RESOURCE_ALLO"
	TriggerRAIChange         = "RAI_CH"
	TriggerPCCRuleUpdate     = "PCC_UPD"
)

// FlowInformation describes one packet filter of a PCC rule.
type FlowInformation struct {
	FlowDescription string `json:"flowDescription,omitempty"`
	PacketFilterID  string `json:"packFiltId,omitempty"`
	FlowDirection   string `json:"flowDirection,omitempty"`
}

// Flow directions used in FlowInformation.
const (
	FlowDirectionDownlink      = "DOWNLINK"
	FlowDirectionUplink        = "UPLINK"
	FlowDirectionBidirectional = "BIDIRECTIONAL"
)

// QOSData is one QoS decision referenced by PCC rules (TS 29.512
// §5.6.2.8). Bit rates are human-readable strings ("2 Mbps").
type QOSData struct {
	QOSID               string `json:"qosId"`
	FiveQI              int    `json:"fiveqi,omitempty"`
	MaxBRUplink         string `json:"maxbrUl,omitempty"`
	MaxBRDownlink       string `json:"maxbrDl,omitempty"`
	GBRUplink           string `json:"gbrUl,omitempty"`
	GBRDownlink         string `json:"gbrDl,omitempty"`
	ARP                 *ARP   `json:"arp,omitempty"`
	QNC                 bool   `json:"qnc,omitempty"`
	PriorityLevel       int    `json:"priorityLevel,omitempty"`
	AveragingWindow     int    `json:"averWindow,omitempty"`
	MaxPacketLossRateUL int    `json:"maxPacketLossRateUl,omitempty"`
	MaxPacketLossRateDL int    `json:"maxPacketLossRateDl,omitempty"`
	QOSFlowUsage        string `json:"qosFlowUsage,omitempty"`
}

// PCCRule is a policy and charging control rule (TS 29.512 §5.6.2.6).
// RefQOSData names entries in the decision's QOSDecisions map.
type PCCRule struct {
	PCCRuleID     string            `json:"pccRuleId"`
	FlowInfos     []FlowInformation `json:"flowInfos,omitempty"`
	AppID         string            `json:"appId,omitempty"`
	PCCRuleStatus string            `json:"pccRuleStatus,omitempty"`
	Precedence    int               `json:"precedence,omitempty"`
	RefQOSData    []string          `json:"refQosData,omitempty"`
}

// SMPolicyContextData is the body creating an SM policy association
// (TS 29.512 §5.6.2.2).
type SMPolicyContextData struct {
	SUPI            string            `json:"supi"`
	PDUSessionID    int               `json:"pduSessionId"`
	PDUSessionType  string            `json:"pduSessionType"`
	DNN             string            `json:"dnn"`
	NotificationURI string            `json:"notificationUri"`
	AccessType      string            `json:"accessType"`
	RATType         string            `json:"ratType,omitempty"`
	ServingNetwork  map[string]string `json:"servingNetwork,omitempty"`
	IPv4Address     string            `json:"ipv4Address,omitempty"`
	SubsSessAMBR    *AMBR             `json:"subsSessAmbr,omitempty"`
	SubsDefQOS      *QOSData          `json:"subsDefQos,omitempty"`
	SliceInfo       *SNSSAI           `json:"sliceInfo,omitempty"`
	Online          bool              `json:"online,omitempty"`
	Offline         bool              `json:"offline,omitempty"`
}

// SMPolicyDecision is the PCF's answer: installed PCC rules, QoS
// decisions and armed triggers (TS 29.512 §5.6.2.4).
type SMPolicyDecision struct {
	PCCRules              map[string]PCCRule `json:"pccRules,omitempty"`
	QOSDecisions          map[string]QOSData `json:"qosDecs,omitempty"`
	PolicyCtrlReqTriggers []string           `json:"policyCtrlReqTriggers,omitempty"`
	RevalidationTime      *time.Time         `json:"revalidationTime,omitempty"`
	SUPI                  string             `json:"supi,omitempty"`
	SuppFeat              string             `json:"suppFeat,omitempty"`
	Online                bool               `json:"online,omitempty"`
	Offline               bool               `json:"offline,omitempty"`
	RelCause              string             `json:"relCause,omitempty"`
}

// SMPolicyUpdateContextData reports changed conditions on an existing
// association. RepPolicyCtrlReqTriggers names the triggers that fired.
type SMPolicyUpdateContextData struct {
	RepPolicyCtrlReqTriggers []string          `json:"repPolicyCtrlReqTriggers"`
	RequestedQOS             *QOSData          `json:"reqQos,omitempty"`
	AppID                    string            `json:"appId,omitempty"`
	QNCReports               []QOSNotifControl `json:"qncReports,omitempty"`
	UEIPv4Address            string            `json:"ipv4Address,omitempty"`
}

// QOSNotifControl reports a GBR QoS notification event.
type QOSNotifControl struct {
	NotifType string   `json:"notifType"`
	Flows     []string `json:"flows,omitempty"`
}
