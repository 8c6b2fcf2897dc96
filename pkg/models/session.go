package models

// PDU session status and cause values exchanged between AMF, SMF and RAN.
const (
	SessionStatusCreated  = "CREATED"
	SessionStatusActive   = "ACTIVE"
	SessionStatusReleased = "RELEASED"

	CauseSessionEstablishmentAccepted = "PDU_SESSION_ESTABLISHMENT_ACCEPTED"
	CauseSessionEstablishmentRejected = "PDU_SESSION_ESTABLISHMENT_REJECTED"
)

// SMContextCreateData creates a PDU session (TS 29.502 §6.1.6.2.2). The
// first five fields are mandatory; validation failures list the missing
// ones.
type SMContextCreateData struct {
	SUPI           string  `json:"supi" validate:"required"`
	PDUSessionID   int     `json:"pduSessionId" validate:"required,min=1,max=15"`
	DNN            string  `json:"dnn" validate:"required"`
	SNSSAI         *SNSSAI `json:"sNssai" validate:"required"`
	ANType         string  `json:"anType" validate:"required"`
	PDUSessionType string  `json:"pduSessionType,omitempty"`
	SSCMode        string  `json:"sscMode,omitempty"`
	GPSI           string  `json:"gpsi,omitempty"`
	ServingNFID    string  `json:"servingNfId,omitempty"`
	GUAMI          *GUAMI  `json:"guami,omitempty"`
}

// QOSCharacteristics is the per-flow QoS summary inside N2 SM information.
type QOSCharacteristics struct {
	FiveQI   int `json:"5qi"`
	Priority int `json:"priority"`
}

// QOSFlowSetupRequestItem asks the RAN to set up one QoS flow.
type QOSFlowSetupRequestItem struct {
	QFI                int                 `json:"qfi"`
	QOSCharacteristics *QOSCharacteristics `json:"qosCharacteristics,omitempty"`
}

// N2SMInfo is the N2 payload the AMF relays to the RAN on session setup.
// N2InfoContent stands in for the encoded NGAP PDU.
type N2SMInfo struct {
	PDUSessionID            int                       `json:"pduSessionId"`
	QOSFlowSetupRequestList []QOSFlowSetupRequestItem `json:"qosFlowSetupRequestList,omitempty"`
	N2InfoContent           string                    `json:"n2InfoContent,omitempty"`
}

// SMContextRef points at a created SM context.
type SMContextRef struct {
	ContextID   string `json:"contextId"`
	UEIPAddress string `json:"ueIpAddress,omitempty"`
}

// SMContextCreatedData is the successful creation response
// (TS 29.502 §6.1.6.2.3).
type SMContextCreatedData struct {
	Status       string        `json:"status"`
	Cause        string        `json:"cause,omitempty"`
	PDUSessionID int           `json:"pduSessionId"`
	UEIPAddress  string        `json:"ueIpAddress,omitempty"`
	N2SMInfo     *N2SMInfo     `json:"n2SmInfo,omitempty"`
	SMContext    *SMContextRef `json:"smContext,omitempty"`
}

// SMContextReleasedData closes a released SM context.
type SMContextReleasedData struct {
	Status       string `json:"status"`
	PDUSessionID int    `json:"pduSessionId"`
}
