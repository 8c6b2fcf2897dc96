// Package ngap models the N2 application protocol between the gNB and
// the AMF (TS 38.413) as JSON. A PDU is a tagged union over the three
// outcome arms; protocol IEs keep their TS 38.413 names and are carried
// as a flexible map with typed accessors.
package ngap

// ProcedureCode identifies the elementary procedure (TS 38.413 §9.4).
type ProcedureCode int

const (
	ProcedureCodeHandoverRequired           ProcedureCode = 0
	ProcedureCodeHandoverRequest            ProcedureCode = 1
	ProcedureCodeHandoverRequestAcknowledge ProcedureCode = 2
	ProcedureCodeHandoverPreparationFailure ProcedureCode = 3
	ProcedureCodeDownlinkNASTransport       ProcedureCode = 4
	ProcedureCodeErrorIndication            ProcedureCode = 5
	ProcedureCodeUEContextSetup             ProcedureCode = 14
	ProcedureCodeInitialUEMessage           ProcedureCode = 15
	ProcedureCodeUEContextModification      ProcedureCode = 16
	ProcedureCodePaging                     ProcedureCode = 20
	ProcedureCodeNGSetup                    ProcedureCode = 21
	ProcedureCodeReset                      ProcedureCode = 22
	ProcedureCodePDUSessionResourceSetup    ProcedureCode = 29
	ProcedureCodePDUSessionResourceModify   ProcedureCode = 30
	ProcedureCodePDUSessionResourceRelease  ProcedureCode = 31
	ProcedureCodeUEContextRelease           ProcedureCode = 41
	ProcedureCodeUplinkNASTransport         ProcedureCode = 46
)

// Criticality tells the receiver how to treat unsupported content.
type Criticality string

const (
	CriticalityReject Criticality = "reject"
	CriticalityIgnore Criticality = "ignore"
	CriticalityNotify Criticality = "notify"
)

// Protocol IE names used by the procedures this emulator implements.
// The dashes are part of the TS 38.413 identifiers.
const (
	IERANUENGAPID             = "RAN-UE-NGAP-ID"
	IEAMFUENGAPID             = "AMF-UE-NGAP-ID"
	IENASPDU                  = "NAS-PDU"
	IECause                   = "Cause"
	IEUserLocationInformation = "UserLocationInformation"
	IERRCEstablishmentCause   = "RRCEstablishmentCause"
	IEUEContextRequest        = "UEContextRequest"
	IEGlobalRANNodeID         = "GlobalRANNodeID"
	IERANNodeName             = "RANNodeName"
	IESupportedTAList         = "SupportedTAList"
	IEDefaultPagingDRX        = "DefaultPagingDRX"
	IEAMFName                 = "AMFName"
	IEServedGUAMIList         = "ServedGUAMIList"
	IEPLMNSupportList         = "PLMNSupportList"
	IERelativeAMFCapacity     = "RelativeAMFCapacity"
	IESecurityKey             = "SecurityKey"
	IEUESecurityCapabilities  = "UESecurityCapabilities"
	IEHandoverType            = "HandoverType"
	IESetupListSUReq          = "PDUSessionResourceSetupListSUReq"
	IESetupListSURes          = "PDUSessionResourceSetupListSURes"
	IEFailedListSURes         = "PDUSessionResourceFailedToSetupListSURes"
	IETargetToSourceContainer = "TargetToSource-TransparentContainer"
	IEUERetentionInformation  = "UERetentionInformation"
)

// Value wraps the protocol IEs of one message.
type Value struct {
	ProtocolIEs IEs `json:"protocolIEs"`
}

// IEs is the protocol IE map. JSON numbers arrive as float64; the
// accessors normalize them.
type IEs map[string]any

// Int returns the IE as an int. The second result is false when the IE
// is absent or not numeric.
func (ies IEs) Int(key string) (int, bool) {
	switch v := ies[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// String returns the IE as a string, or "" when absent.
func (ies IEs) String(key string) string {
	s, _ := ies[key].(string)
	return s
}

// Map returns the IE as a nested object, or nil when absent.
func (ies IEs) Map(key string) map[string]any {
	m, _ := ies[key].(map[string]any)
	return m
}

// List returns the IE as a JSON array, or nil when absent.
func (ies IEs) List(key string) []any {
	l, _ := ies[key].([]any)
	return l
}

// Message is one elementary procedure message.
type Message struct {
	ProcedureCode ProcedureCode `json:"procedureCode"`
	Criticality   Criticality   `json:"criticality"`
	Value         Value         `json:"value"`
}

// PDU is the NGAP envelope: exactly one of the three arms is set.
type PDU struct {
	InitiatingMessage   *Message `json:"initiatingMessage,omitempty"`
	SuccessfulOutcome   *Message `json:"successfulOutcome,omitempty"`
	UnsuccessfulOutcome *Message `json:"unsuccessfulOutcome,omitempty"`
}

// NewInitiatingMessage builds a PDU with the initiating arm set.
func NewInitiatingMessage(code ProcedureCode, criticality Criticality, ies IEs) *PDU {
	return &PDU{InitiatingMessage: &Message{
		ProcedureCode: code,
		Criticality:   criticality,
		Value:         Value{ProtocolIEs: ies},
	}}
}

// NewSuccessfulOutcome builds a PDU with the successful arm set.
func NewSuccessfulOutcome(code ProcedureCode, criticality Criticality, ies IEs) *PDU {
	return &PDU{SuccessfulOutcome: &Message{
		ProcedureCode: code,
		Criticality:   criticality,
		Value:         Value{ProtocolIEs: ies},
	}}
}

// NewUnsuccessfulOutcome builds a PDU with the unsuccessful arm set.
func NewUnsuccessfulOutcome(code ProcedureCode, criticality Criticality, ies IEs) *PDU {
	return &PDU{UnsuccessfulOutcome: &Message{
		ProcedureCode: code,
		Criticality:   criticality,
		Value:         Value{ProtocolIEs: ies},
	}}
}

// Message returns whichever arm is set. Nil when the PDU is empty.
func (p *PDU) Message() *Message {
	switch {
	case p.InitiatingMessage != nil:
		return p.InitiatingMessage
	case p.SuccessfulOutcome != nil:
		return p.SuccessfulOutcome
	case p.UnsuccessfulOutcome != nil:
		return p.UnsuccessfulOutcome
	default:
		return nil
	}
}

// IEs returns the protocol IEs of the set arm, or nil for an empty PDU.
func (p *PDU) IEs() IEs {
	if m := p.Message(); m != nil {
		return m.Value.ProtocolIEs
	}
	return nil
}

// IsSuccess reports whether the PDU carries a successful outcome.
func (p *PDU) IsSuccess() bool {
	return p.SuccessfulOutcome != nil
}

// RadioNetworkCause builds the Cause IE value for a radio network layer
// cause string.
func RadioNetworkCause(cause string) map[string]any {
	return map[string]any{"radioNetwork": cause}
}

// Radio network causes this emulator emits.
const (
	CauseUnknownLocalUENGAPID     = "Unknown-local-UE-NGAP-ID"
	CauseHandoverTargetNotAllowed = "handover-target-not-allowed"
	CauseUnspecified              = "unspecified"
)
