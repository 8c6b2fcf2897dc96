// Package f1ap models the F1 application protocol between the CU and
// the DU (TS 38.463) as JSON, mirroring the ngap envelope: a tagged
// union over the three outcome arms with TS-named protocol IEs.
package f1ap

// ProcedureCode identifies the elementary procedure (TS 38.463 §9.4).
type ProcedureCode int

const (
	ProcedureCodeF1Setup                     ProcedureCode = 0
	ProcedureCodeGNBDUConfigurationUpdate    ProcedureCode = 1
	ProcedureCodeGNBCUConfigurationUpdate    ProcedureCode = 2
	ProcedureCodeCellsToBeActivated          ProcedureCode = 3
	ProcedureCodeUEContextSetup              ProcedureCode = 4
	ProcedureCodeUEContextRelease            ProcedureCode = 5
	ProcedureCodeUEContextModification       ProcedureCode = 6
	ProcedureCodeInitialULRRCMessageTransfer ProcedureCode = 7
	ProcedureCodeDLRRCMessageTransfer        ProcedureCode = 8
	ProcedureCodeULRRCMessageTransfer        ProcedureCode = 9
	ProcedureCodePaging                      ProcedureCode = 10
	ProcedureCodeNotify                      ProcedureCode = 11
)

// Criticality tells the receiver how to treat unsupported content.
type Criticality string

const (
	CriticalityReject Criticality = "reject"
	CriticalityIgnore Criticality = "ignore"
	CriticalityNotify Criticality = "notify"
)

// Protocol IE names used by the F1 procedures this emulator implements.
const (
	IEGNBCUUEF1APID          = "gNB-CU-UE-F1AP-ID"
	IEGNBDUUEF1APID          = "gNB-DU-UE-F1AP-ID"
	IEGNBDUID                = "gNB-DU-ID"
	IEGNBDUName              = "gNB-DU-Name"
	IEGNBCUName              = "gNB-CU-Name"
	IECRNTI                  = "C-RNTI"
	IENRCGI                  = "NR-CGI"
	IERRCContainer           = "RRC-Container"
	IESRBID                  = "SRB-ID"
	IEDRBID                  = "DRB-ID"
	IECause                  = "Cause"
	IEServedCellsToAddList   = "Served-Cells-To-Add-List"
	IECellsToBeActivatedList = "Cells-to-be-Activated-List"
	IEDuplicationActivation  = "DuplicationActivation"
	IETransactionID          = "TransactionID"
	IESRBSToBeSetupList      = "SRBs-ToBeSetup-List"
	IEGNBDURRCVersion        = "gNB-DU-RRC-Version"
)

// Value wraps the protocol IEs of one message.
type Value struct {
	ProtocolIEs IEs `json:"protocolIEs"`
}

// IEs is the protocol IE map with accessors normalizing JSON numbers.
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

// Message is one elementary procedure message.
type Message struct {
	ProcedureCode ProcedureCode `json:"procedureCode"`
	Criticality   Criticality   `json:"criticality"`
	Value         Value         `json:"value"`
}

// PDU is the F1AP envelope: exactly one of the three arms is set.
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

// RRC message types carried in RRC containers (TS 38.331).
const (
	RRCMessageDLCCCH = "DL-CCCH-Message"
	RRCMessageDLDCCH = "DL-DCCH-Message"
	RRCMessageULCCCH = "UL-CCCH-Message"
	RRCMessageULDCCH = "UL-DCCH-Message"
)
