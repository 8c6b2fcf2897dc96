// Package pfcp defines the JSON rendition of the N4 packet forwarding
// control protocol (TS 29.244) spoken between the SMF and the UPF, plus
// the GTP-U shapes (TS 29.281) the UPF exposes for user-plane simulation.
// Message and cause codes keep their 3GPP numeric values; IE field names
// use the camelCase convention of the SBI payloads.
package pfcp

import "fmt"

// MessageType is the PFCP message type (TS 29.244 §7.3).
type MessageType int

const (
	MessageTypeHeartbeatRequest  MessageType = 1
	MessageTypeHeartbeatResponse MessageType = 2

	MessageTypeAssociationSetupRequest  MessageType = 5
	MessageTypeAssociationSetupResponse MessageType = 6

	MessageTypeSessionEstablishmentRequest  MessageType = 50
	MessageTypeSessionEstablishmentResponse MessageType = 51
	MessageTypeSessionModificationRequest   MessageType = 52
	MessageTypeSessionModificationResponse  MessageType = 53
	MessageTypeSessionDeletionRequest       MessageType = 54
	MessageTypeSessionDeletionResponse      MessageType = 55
	MessageTypeSessionReportRequest         MessageType = 56
	MessageTypeSessionReportResponse        MessageType = 57
)

// String returns the TS 29.244 name of the message type.
func (m MessageType) String() string {
	switch m {
	case MessageTypeHeartbeatRequest:
		return "HEARTBEAT_REQUEST"
	case MessageTypeHeartbeatResponse:
		return "HEARTBEAT_RESPONSE"
	case MessageTypeAssociationSetupRequest:
		return "ASSOCIATION_SETUP_REQUEST"
	case MessageTypeAssociationSetupResponse:
		return "ASSOCIATION_SETUP_RESPONSE"
	case MessageTypeSessionEstablishmentRequest:
		return "SESSION_ESTABLISHMENT_REQUEST"
	case MessageTypeSessionEstablishmentResponse:
		return "SESSION_ESTABLISHMENT_RESPONSE"
	case MessageTypeSessionModificationRequest:
		return "SESSION_MODIFICATION_REQUEST"
	case MessageTypeSessionModificationResponse:
		return "SESSION_MODIFICATION_RESPONSE"
	case MessageTypeSessionDeletionRequest:
		return "SESSION_DELETION_REQUEST"
	case MessageTypeSessionDeletionResponse:
		return "SESSION_DELETION_RESPONSE"
	case MessageTypeSessionReportRequest:
		return "SESSION_REPORT_REQUEST"
	case MessageTypeSessionReportResponse:
		return "SESSION_REPORT_RESPONSE"
	default:
		return fmt.Sprintf("MESSAGE_TYPE_%d", int(m))
	}
}

// Cause is the PFCP cause value (TS 29.244 §8.2.1).
type Cause int

const (
	CauseRequestAccepted Cause = 1

	CauseRequestRejected                Cause = 64
	CauseSessionContextNotFound         Cause = 65
	CauseMandatoryIEMissing             Cause = 66
	CauseConditionalIEMissing           Cause = 67
	CauseInvalidLength                  Cause = 68
	CauseMandatoryIEIncorrect           Cause = 69
	CauseInvalidForwardingPolicy        Cause = 70
	CauseInvalidFTEIDAllocationOption   Cause = 71
	CauseNoEstablishedPFCPAssociation   Cause = 72
	CauseRuleCreationModificationFailed Cause = 73
	CausePFCPEntityInCongestion         Cause = 74
	CauseNoResourcesAvailable           Cause = 75
	CauseServiceNotSupported            Cause = 76
	CauseSystemFailure                  Cause = 77
)

// Accepted reports whether the cause signals success.
func (c Cause) Accepted() bool {
	return c == CauseRequestAccepted
}

// String returns the TS 29.244 name of the cause.
func (c Cause) String() string {
	switch c {
	case CauseRequestAccepted:
		return "REQUEST_ACCEPTED"
	case CauseRequestRejected:
		return "REQUEST_REJECTED"
	case CauseSessionContextNotFound:
		return "SESSION_CONTEXT_NOT_FOUND"
	case CauseMandatoryIEMissing:
		return "MANDATORY_IE_MISSING"
	case CauseConditionalIEMissing:
		return "CONDITIONAL_IE_MISSING"
	case CauseInvalidLength:
		return "INVALID_LENGTH"
	case CauseMandatoryIEIncorrect:
		return "MANDATORY_IE_INCORRECT"
	case CauseInvalidForwardingPolicy:
		return "INVALID_FORWARDING_POLICY"
	case CauseInvalidFTEIDAllocationOption:
		return "INVALID_F_TEID_ALLOCATION_OPTION"
	case CauseNoEstablishedPFCPAssociation:
		return "NO_ESTABLISHED_PFCP_ASSOCIATION"
	case CauseRuleCreationModificationFailed:
		return "RULE_CREATION_MODIFICATION_FAILURE"
	case CausePFCPEntityInCongestion:
		return "PFCP_ENTITY_IN_CONGESTION"
	case CauseNoResourcesAvailable:
		return "NO_RESOURCES_AVAILABLE"
	case CauseServiceNotSupported:
		return "SERVICE_NOT_SUPPORTED"
	case CauseSystemFailure:
		return "SYSTEM_FAILURE"
	default:
		return fmt.Sprintf("CAUSE_%d", int(c))
	}
}

// Interface and action values used in PDRs and FARs.
const (
	InterfaceAccess = "ACCESS"
	InterfaceCore   = "CORE"

	ApplyActionForward = "FORWARD"
	ApplyActionDrop    = "DROP"
	ApplyActionBuffer  = "BUFFER"
)

// PDN types carried in establishment requests.
const (
	PDNTypeIPv4   = "IPV4"
	PDNTypeIPv6   = "IPV6"
	PDNTypeIPv4v6 = "IPV4V6"
)

// FTEID is a fully qualified tunnel endpoint: a TEID plus the transport
// address it lives on. The same shape carries the UPF's F-SEID in
// responses.
type FTEID struct {
	TEID        string `json:"teid"`
	IPv4Address string `json:"ipv4Address,omitempty"`
	IPv6Address string `json:"ipv6Address,omitempty"`
}

// PDI is the packet detection information of a PDR (TS 29.244 §7.5.2.2).
type PDI struct {
	SourceInterface string `json:"sourceInterface"`
	FTEID           *FTEID `json:"fTeid,omitempty"`
	UEIPAddress     string `json:"ueIpAddress,omitempty"`
	NetworkInstance string `json:"networkInstance,omitempty"`
	QFI             int    `json:"qfi,omitempty"`
}

// CreatePDR installs one packet detection rule.
type CreatePDR struct {
	PDRID              int    `json:"pdrId"`
	Precedence         int    `json:"precedence"`
	PDI                PDI    `json:"pdi"`
	OuterHeaderRemoval string `json:"outerHeaderRemoval,omitempty"`
	FARID              int    `json:"farId,omitempty"`
	QERIDs             []int  `json:"qerId,omitempty"`
	URRIDs             []int  `json:"urrId,omitempty"`
}

// OuterHeaderCreation describes the encapsulation a FAR applies.
type OuterHeaderCreation struct {
	Description string `json:"description"`
	TEID        string `json:"teid,omitempty"`
	IPv4Address string `json:"ipv4Address,omitempty"`
	IPv6Address string `json:"ipv6Address,omitempty"`
	PortNumber  int    `json:"portNumber,omitempty"`
}

// ForwardingParameters steers matched traffic.
type ForwardingParameters struct {
	DestinationInterface string               `json:"destinationInterface"`
	NetworkInstance      string               `json:"networkInstance,omitempty"`
	OuterHeaderCreation  *OuterHeaderCreation `json:"outerHeaderCreation,omitempty"`
}

// CreateFAR installs one forwarding action rule.
type CreateFAR struct {
	FARID                int                   `json:"farId"`
	ApplyAction          string                `json:"applyAction"`
	ForwardingParameters *ForwardingParameters `json:"forwardingParameters,omitempty"`
}

// CreateQER installs one QoS enforcement rule. Bit rates are bits per
// second; zero means unlimited. The same shape is accepted in updateQer
// where non-zero rates replace the installed ones.
type CreateQER struct {
	QERID           int    `json:"qerId"`
	QFI             int    `json:"qfi,omitempty"`
	GateStatus      string `json:"gateStatus,omitempty"`
	UplinkMBR       uint64 `json:"uplinkMBR,omitempty"`
	DownlinkMBR     uint64 `json:"downlinkMBR,omitempty"`
	UplinkGBR       uint64 `json:"uplinkGBR,omitempty"`
	DownlinkGBR     uint64 `json:"downlinkGBR,omitempty"`
	AveragingWindow int    `json:"averagingWindow,omitempty"`
}

// CreateURR installs one usage reporting rule. Measurement method and
// reporting triggers keep their numeric TS 29.244 encodings.
type CreateURR struct {
	URRID             int    `json:"urrId"`
	MeasurementMethod int    `json:"measurementMethod,omitempty"`
	ReportingTriggers int    `json:"reportingTriggers,omitempty"`
	MeasurementPeriod int    `json:"measurementPeriod,omitempty"`
	VolumeThreshold   uint64 `json:"volumeThreshold,omitempty"`
}

// SessionEstablishmentRequest creates a PFCP session. SEID is the
// sender's session endpoint id; the UPF allocates its own and returns it
// as UPFSEID.
type SessionEstablishmentRequest struct {
	MessageType MessageType `json:"messageType"`
	SEID        string      `json:"seid"`
	NodeID      string      `json:"nodeId,omitempty"`
	PDNType     string      `json:"pdnType,omitempty"`
	CreatePDR   []CreatePDR `json:"createPDR"`
	CreateFAR   []CreateFAR `json:"createFAR"`
	CreateQER   []CreateQER `json:"createQER,omitempty"`
	CreateURR   []CreateURR `json:"createURR,omitempty"`
}

// NewSessionEstablishmentRequest returns a request with the message type
// set.
func NewSessionEstablishmentRequest(seid string) *SessionEstablishmentRequest {
	return &SessionEstablishmentRequest{
		MessageType: MessageTypeSessionEstablishmentRequest,
		SEID:        seid,
	}
}

// AllocatedUEIPAddresses reports the address allocations of a session.
type AllocatedUEIPAddresses struct {
	IPv4       string `json:"ipv4,omitempty"`
	IPv6       string `json:"ipv6,omitempty"`
	IPv6Prefix string `json:"ipv6Prefix,omitempty"`
}

// CreatedPDR acknowledges one installed rule.
type CreatedPDR struct {
	PDRID int `json:"pdrId"`
}

// LoadControlInformation advertises the UPF's load (TS 29.244 §8.2.49).
type LoadControlInformation struct {
	SequenceNumber int `json:"loadControlSequenceNumber"`
	LoadMetric     int `json:"loadMetric"`
}

// OverloadControlInformation advertises overload mitigation state.
type OverloadControlInformation struct {
	SequenceNumber  int `json:"overloadControlSequenceNumber"`
	ReductionMetric int `json:"overloadReductionMetric"`
}

// SessionEstablishmentResponse answers an establishment request. Non
// accepted causes travel with HTTP 200; only transport-level failures
// surface as HTTP errors.
type SessionEstablishmentResponse struct {
	MessageType                MessageType                 `json:"messageType"`
	Cause                      Cause                       `json:"cause"`
	UPFSEID                    *FTEID                      `json:"upFSeid,omitempty"`
	AllocatedUEIPAddresses     *AllocatedUEIPAddresses     `json:"allocatedUeIpAddresses,omitempty"`
	CreatedPDR                 []CreatedPDR                `json:"createdPdr,omitempty"`
	LoadControlInformation     *LoadControlInformation     `json:"loadControlInformation,omitempty"`
	OverloadControlInformation *OverloadControlInformation `json:"overloadControlInformation,omitempty"`
	FailedRuleID               int                         `json:"failedRuleId,omitempty"`
}

// SessionModificationRequest updates installed rules by id. Absent
// fields leave the installed rule untouched.
type SessionModificationRequest struct {
	MessageType MessageType `json:"messageType,omitempty"`
	UpdatePDR   []CreatePDR `json:"updatePdr,omitempty"`
	UpdateFAR   []CreateFAR `json:"updateFar,omitempty"`
	UpdateQER   []CreateQER `json:"updateQer,omitempty"`
}

// SessionModificationResponse answers a modification request.
type SessionModificationResponse struct {
	MessageType          MessageType `json:"messageType"`
	Cause                Cause       `json:"cause"`
	ModificationsApplied []string    `json:"modificationsApplied,omitempty"`
}

// SessionDeletionResponse answers a deletion request.
type SessionDeletionResponse struct {
	MessageType MessageType `json:"messageType"`
	Cause       Cause       `json:"cause"`
}
