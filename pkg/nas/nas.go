// Package nas defines the JSON renditions of the non-access-stratum
// messages exchanged between UE and AMF (3GPP TS 24.501).
//
// Messages travel as plain JSON objects with the TS 24.501 field names in
// snake_case. Only the plain variant of the header exists here: integrity
// protection and ciphering are negotiated during the security mode
// procedure but never applied to the carried payloads.
package nas

import (
	"fmt"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
)

// Extended protocol discriminator values (TS 24.501 section 9.2).
const (
	EPD5GSM = 0x2E // 5GS session management
	EPD5GMM = 0x7E // 5GS mobility management
)

// SecurityHeaderPlain marks a NAS message without integrity protection.
const SecurityHeaderPlain = 0

// MessageType identifies a NAS message (TS 24.501 tables 9.7.1 and 9.7.2).
type MessageType int

// 5GS mobility management message types.
const (
	MessageTypeRegistrationRequest         MessageType = 0x41
	MessageTypeRegistrationAccept          MessageType = 0x42
	MessageTypeRegistrationComplete        MessageType = 0x43
	MessageTypeRegistrationReject          MessageType = 0x44
	MessageTypeDeregistrationRequestUEOrig MessageType = 0x45
	MessageTypeDeregistrationAcceptUEOrig  MessageType = 0x46
	MessageTypeDeregistrationRequestUETerm MessageType = 0x47
	MessageTypeDeregistrationAcceptUETerm  MessageType = 0x48
	MessageTypeServiceRequest              MessageType = 0x4C
	MessageTypeServiceReject               MessageType = 0x4D
	MessageTypeServiceAccept               MessageType = 0x4E
	MessageTypeConfigurationUpdateCommand  MessageType = 0x54
	MessageTypeConfigurationUpdateComplete MessageType = 0x55
	MessageTypeAuthenticationRequest       MessageType = 0x56
	MessageTypeAuthenticationResponse      MessageType = 0x57
	MessageTypeAuthenticationReject        MessageType = 0x58
	MessageTypeAuthenticationFailure       MessageType = 0x59
	MessageTypeAuthenticationResult        MessageType = 0x5A
	MessageTypeIdentityRequest             MessageType = 0x5B
	MessageTypeIdentityResponse            MessageType = 0x5C
	MessageTypeSecurityModeCommand         MessageType = 0x5D
	MessageTypeSecurityModeComplete        MessageType = 0x5E
	MessageTypeSecurityModeReject          MessageType = 0x5F
)

// 5GS session management message types.
const (
	MessageTypePDUSessionEstablishmentRequest      MessageType = 0xC1
	MessageTypePDUSessionEstablishmentAccept       MessageType = 0xC2
	MessageTypePDUSessionEstablishmentReject       MessageType = 0xC3
	MessageTypePDUSessionAuthenticationCommand     MessageType = 0xC5
	MessageTypePDUSessionAuthenticationComplete    MessageType = 0xC6
	MessageTypePDUSessionAuthenticationResult      MessageType = 0xC7
	MessageTypePDUSessionModificationRequest       MessageType = 0xC9
	MessageTypePDUSessionModificationReject        MessageType = 0xCA
	MessageTypePDUSessionModificationCommand       MessageType = 0xCB
	MessageTypePDUSessionModificationComplete      MessageType = 0xCC
	MessageTypePDUSessionModificationCommandReject MessageType = 0xCD
	MessageTypePDUSessionReleaseRequest            MessageType = 0xD1
	MessageTypePDUSessionReleaseReject             MessageType = 0xD2
	MessageTypePDUSessionReleaseCommand            MessageType = 0xD3
	MessageTypePDUSessionReleaseComplete           MessageType = 0xD4
)

// SessionManagement reports whether t belongs to the 5GSM message space.
func (t MessageType) SessionManagement() bool { return t >= MessageTypePDUSessionEstablishmentRequest }

var messageTypeNames = map[MessageType]string{
	MessageTypeRegistrationRequest:                 "REGISTRATION_REQUEST",
	MessageTypeRegistrationAccept:                  "REGISTRATION_ACCEPT",
	MessageTypeRegistrationComplete:                "REGISTRATION_COMPLETE",
	MessageTypeRegistrationReject:                  "REGISTRATION_REJECT",
	MessageTypeDeregistrationRequestUEOrig:         "DEREGISTRATION_REQUEST_UE_ORIGINATING",
	MessageTypeDeregistrationAcceptUEOrig:          "DEREGISTRATION_ACCEPT_UE_ORIGINATING",
	MessageTypeDeregistrationRequestUETerm:         "DEREGISTRATION_REQUEST_UE_TERMINATED",
	MessageTypeDeregistrationAcceptUETerm:          "DEREGISTRATION_ACCEPT_UE_TERMINATED",
	MessageTypeServiceRequest:                      "SERVICE_REQUEST",
	MessageTypeServiceReject:                       "SERVICE_REJECT",
	MessageTypeServiceAccept:                       "SERVICE_ACCEPT",
	MessageTypeConfigurationUpdateCommand:          "CONFIGURATION_UPDATE_COMMAND",
	MessageTypeConfigurationUpdateComplete:         "CONFIGURATION_UPDATE_COMPLETE",
	MessageTypeAuthenticationRequest:               "AUTHENTICATION_REQUEST",
	MessageTypeAuthenticationResponse:              "AUTHENTICATION_RESPONSE",
	MessageTypeAuthenticationReject:                "AUTHENTICATION_REJECT",
	MessageTypeAuthenticationFailure:               "AUTHENTICATION_FAILURE",
	MessageTypeAuthenticationResult:                "AUTHENTICATION_RESULT",
	MessageTypeIdentityRequest:                     "IDENTITY_REQUEST",
	MessageTypeIdentityResponse:                    "IDENTITY_RESPONSE",
	MessageTypeSecurityModeCommand:                 "SECURITY_MODE_COMMAND",
	MessageTypeSecurityModeComplete:                "SECURITY_MODE_COMPLETE",
	MessageTypeSecurityModeReject:                  "SECURITY_MODE_REJECT",
	MessageTypePDUSessionEstablishmentRequest:      "PDU_SESSION_ESTABLISHMENT_REQUEST",
	MessageTypePDUSessionEstablishmentAccept:       "PDU_SESSION_ESTABLISHMENT_ACCEPT",
	MessageTypePDUSessionEstablishmentReject:       "PDU_SESSION_ESTABLISHMENT_REJECT",
	MessageTypePDUSessionAuthenticationCommand:     "PDU_SESSION_AUTHENTICATION_COMMAND",
	MessageTypePDUSessionAuthenticationComplete:    "PDU_SESSION_AUTHENTICATION_COMPLETE",
	MessageTypePDUSessionAuthenticationResult:      "PDU_SESSION_AUTHENTICATION_RESULT",
	MessageTypePDUSessionModificationRequest:       "PDU_SESSION_MODIFICATION_REQUEST",
	MessageTypePDUSessionModificationReject:        "PDU_SESSION_MODIFICATION_REJECT",
	MessageTypePDUSessionModificationCommand:       "PDU_SESSION_MODIFICATION_COMMAND",
	MessageTypePDUSessionModificationComplete:      "PDU_SESSION_MODIFICATION_COMPLETE",
	MessageTypePDUSessionModificationCommandReject: "PDU_SESSION_MODIFICATION_COMMAND_REJECT",
	MessageTypePDUSessionReleaseRequest:            "PDU_SESSION_RELEASE_REQUEST",
	MessageTypePDUSessionReleaseReject:             "PDU_SESSION_RELEASE_REJECT",
	MessageTypePDUSessionReleaseCommand:            "PDU_SESSION_RELEASE_COMMAND",
	MessageTypePDUSessionReleaseComplete:           "PDU_SESSION_RELEASE_COMPLETE",
}

func (t MessageType) String() string {
	if s, ok := messageTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("MESSAGE_TYPE_0x%02X", int(t))
}

// MMCause is a 5GS mobility management cause (TS 24.501 section 9.11.3.2).
type MMCause int

const (
	MMCauseIllegalUE                       MMCause = 3
	MMCauseIllegalME                       MMCause = 6
	MMCauseServicesNotAllowed              MMCause = 7
	MMCauseUEIdentityCannotBeDerived       MMCause = 9
	MMCauseImplicitlyDeregistered          MMCause = 10
	MMCausePLMNNotAllowed                  MMCause = 11
	MMCauseTrackingAreaNotAllowed          MMCause = 12
	MMCauseRoamingNotAllowed               MMCause = 13
	MMCauseNoSuitableCells                 MMCause = 15
	MMCauseMACFailure                      MMCause = 20
	MMCauseSynchFailure                    MMCause = 21
	MMCauseCongestion                      MMCause = 22
	MMCauseUESecurityCapabilitiesMismatch  MMCause = 23
	MMCauseSecurityModeRejected            MMCause = 24
	MMCauseNon5GAuthenticationUnacceptable MMCause = 26
	MMCauseN1ModeNotAllowed                MMCause = 27
	MMCauseRestrictedServiceArea           MMCause = 28
)

// SMCause is a 5GS session management cause (TS 24.501 section 9.11.4.2).
type SMCause int

const (
	SMCauseOperatorDeterminedBarring         SMCause = 8
	SMCauseInsufficientResources             SMCause = 26
	SMCauseMissingOrUnknownDNN               SMCause = 27
	SMCauseUnknownPDUSessionType             SMCause = 28
	SMCauseUserAuthenticationFailed          SMCause = 29
	SMCauseRequestRejectedUnspecified        SMCause = 31
	SMCauseServiceOptionNotSupported         SMCause = 32
	SMCauseServiceOptionNotSubscribed        SMCause = 33
	SMCauseServiceOptionOutOfOrder           SMCause = 34
	SMCausePTIAlreadyInUse                   SMCause = 35
	SMCauseRegularDeactivation               SMCause = 36
	SMCauseReactivationRequested             SMCause = 39
	SMCauseSemanticErrorInTFTOperation       SMCause = 41
	SMCauseSyntacticalErrorInTFTOperation    SMCause = 42
	SMCauseInvalidPDUSessionIdentity         SMCause = 43
	SMCauseSemanticErrorsInPacketFilter      SMCause = 44
	SMCauseSyntacticalErrorInPacketFilter    SMCause = 45
	SMCausePDUSessionTypeIPv4OnlyAllowed     SMCause = 50
	SMCausePDUSessionTypeIPv6OnlyAllowed     SMCause = 51
	SMCausePDUSessionDoesNotExist            SMCause = 54
	SMCauseInsufficientResourcesForSliceDNN  SMCause = 67
	SMCauseNotSupportedSSCMode               SMCause = 68
	SMCauseInsufficientResourcesForSlice     SMCause = 69
	SMCauseMissingOrUnknownDNNInSlice        SMCause = 70
	SMCauseInvalidPTIValue                   SMCause = 81
	SMCauseIntegrityProtectionDataRateTooLow SMCause = 82
	SMCauseSemanticErrorInQOSOperation       SMCause = 83
	SMCauseSyntacticalErrorInQOSOperation    SMCause = 84
	SMCauseInvalidMappedEPSBearerIdentity    SMCause = 85
)

// Header is the plain NAS header carried on every message.
type Header struct {
	ExtendedProtocolDiscriminator int         `json:"extended_protocol_discriminator"`
	SecurityHeaderType            int         `json:"security_header_type"`
	MessageType                   MessageType `json:"message_type"`
}

// NewHeader builds a plain header for t, picking the protocol
// discriminator from the message type space.
func NewHeader(t MessageType) Header {
	epd := EPD5GMM
	if t.SessionManagement() {
		epd = EPD5GSM
	}
	return Header{
		ExtendedProtocolDiscriminator: epd,
		SecurityHeaderType:            SecurityHeaderPlain,
		MessageType:                   t,
	}
}

// RegistrationRequest is the UE-originated registration message
// (TS 24.501 section 8.2.6).
type RegistrationRequest struct {
	Header                Header          `json:"header"`
	NGKSI                 int             `json:"ngksi" validate:"min=0,max=7"`
	RegistrationType      int             `json:"registration_type"`
	SUCI                  string          `json:"suci" validate:"required"`
	UESecurityCapability  map[string]any  `json:"ue_security_capability"`
	RequestedNSSAI        []models.SNSSAI `json:"requested_nssai,omitempty"`
	LastVisitedTAI        map[string]any  `json:"last_visited_tai,omitempty"`
	S1UENetworkCapability map[string]any  `json:"s1_ue_network_capability,omitempty"`
	UplinkDataStatus      map[string]any  `json:"uplink_data_status,omitempty"`
	PDUSessionStatus      map[string]any  `json:"pdu_session_status,omitempty"`
	MICOIndication        *bool           `json:"mico_indication,omitempty"`
	UEStatus              map[string]any  `json:"ue_status,omitempty"`
}

// Registration types carried in RegistrationRequest.
const (
	RegistrationTypeInitial   = 1
	RegistrationTypeMobility  = 2
	RegistrationTypeEmergency = 3
	RegistrationTypePeriodic  = 4
)

// RegistrationResult5GSAllowed reports 3GPP access allowed in a
// RegistrationAccept.
const RegistrationResult5GSAllowed = 1

// TrackingAreaListEntry is one element of the TAI list handed to the UE.
type TrackingAreaListEntry struct {
	TypeOfList       string        `json:"typeOfList"`
	NumberOfElements int           `json:"numberOfElements"`
	PLMNID           models.PLMNID `json:"plmnId"`
	TAC              string        `json:"tac"`
}

// NetworkFeatureSupport advertises IMS voice and emergency service
// availability per access type.
type NetworkFeatureSupport struct {
	IMSVoPS3GPP  bool `json:"ims_vops_3gpp"`
	IMSVoPSN3GPP bool `json:"ims_vops_n3gpp"`
	EMC3GPP      bool `json:"emc_3gpp"`
	EMCN3GPP     bool `json:"emc_n3gpp"`
	EMF3GPP      bool `json:"emf_3gpp"`
	EMFN3GPP     bool `json:"emf_n3gpp"`
}

// RegistrationAccept closes a successful registration and carries the
// allocated 5G-GUTI (TS 24.501 section 8.2.7).
type RegistrationAccept struct {
	Header                       Header                  `json:"header"`
	RegistrationResult           int                     `json:"registration_result"`
	MobileIdentity               string                  `json:"mobile_identity"`
	TAIList                      []TrackingAreaListEntry `json:"tai_list,omitempty"`
	AllowedNSSAI                 []models.SNSSAI         `json:"allowed_nssai,omitempty"`
	RejectedNSSAI                []models.SNSSAI         `json:"rejected_nssai,omitempty"`
	ConfiguredNSSAI              []models.SNSSAI         `json:"configured_nssai,omitempty"`
	NetworkFeatureSupport        *NetworkFeatureSupport  `json:"network_feature_support,omitempty"`
	PDUSessionStatus             map[string]any          `json:"pdu_session_status,omitempty"`
	PDUSessionReactivationResult map[string]any          `json:"pdu_session_reactivation_result,omitempty"`
}

// AuthenticationRequest carries the 5G-AKA challenge to the UE
// (TS 24.501 section 8.2.1).
type AuthenticationRequest struct {
	Header     Header `json:"header"`
	NGKSI      int    `json:"ngksi" validate:"min=0,max=7"`
	ABBA       string `json:"abba"`
	RAND       string `json:"authentication_parameter_rand"`
	AUTN       string `json:"authentication_parameter_autn"`
	EAPMessage string `json:"eap_message,omitempty"`
}

// SecurityAlgorithms names the ciphering and integrity algorithms
// selected for the NAS security context.
type SecurityAlgorithms struct {
	Ciphering int `json:"typeOfCipheringAlgorithm"`
	Integrity int `json:"typeOfIntegrityProtectionAlgorithm"`
}

// Algorithm identifiers used in SecurityAlgorithms.
const (
	AlgCiphering128NEA1 = 1
	AlgIntegrity128NIA1 = 1
)

// SecurityModeCommand activates the selected NAS security context
// (TS 24.501 section 8.2.25).
type SecurityModeCommand struct {
	Header                           Header             `json:"header"`
	SelectedNASSecurityAlgorithms    SecurityAlgorithms `json:"selected_nas_security_algorithms"`
	NGKSI                            int                `json:"ngksi" validate:"min=0,max=7"`
	ReplayedUESecurityCapabilities   map[string]any     `json:"replayed_ue_security_capabilities"`
	IMEISVRequest                    int                `json:"imeisv_request,omitempty"`
	SelectedEPSNASSecurityAlgorithms map[string]any     `json:"selected_eps_nas_security_algorithms,omitempty"`
	ReplayedS1UESecurityCapabilities map[string]any     `json:"replayed_s1_ue_security_capabilities,omitempty"`
}

// PDUSessionEstablishmentRequest is the UE-originated 5GSM message that
// opens a PDU session (TS 24.501 section 8.3.1).
type PDUSessionEstablishmentRequest struct {
	Header                    Header         `json:"header"`
	PDUSessionID              int            `json:"pdu_session_id" validate:"required,min=1,max=15"`
	PTI                       int            `json:"pti" validate:"required,min=1,max=255"`
	PDUSessionType            int            `json:"pdu_session_type"`
	SSCMode                   int            `json:"ssc_mode"`
	Capability5GSM            map[string]any `json:"capability_5gsm"`
	MaxSupportedPacketFilters *int           `json:"maximum_number_of_supported_packet_filters,omitempty"`
	AlwaysOnRequested         *bool          `json:"always_on_pdu_session_requested,omitempty"`
	SMPDUDNRequestContainer   string         `json:"sm_pdu_dn_request_container,omitempty"`
	ExtendedPCO               map[string]any `json:"extended_protocol_configuration_options,omitempty"`
}
