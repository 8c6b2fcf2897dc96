package models

import "time"

// NSSAIInfo groups the default and subscribed slices of a UE.
type NSSAIInfo struct {
	DefaultSingleNSSAIs []SNSSAI `json:"defaultSingleNssais,omitempty"`
	SingleNSSAIs        []SNSSAI `json:"singleNssais,omitempty"`
}

// AccessAndMobilitySubscriptionData is the per-SUPI AM subscription
// (TS 29.503 §6.1.6.2.3).
type AccessAndMobilitySubscriptionData struct {
	GPSIs            []string   `json:"gpsis,omitempty"`
	SubscribedUEAMBR *AMBR      `json:"subscribedUeAmbr,omitempty"`
	NSSAI            *NSSAIInfo `json:"nssai,omitempty"`
	RATRestrictions  []string   `json:"ratRestrictions,omitempty"`
	UEUsageType      int        `json:"ueUsageType,omitempty"`
	RFSPIndex        int        `json:"rfspIndex,omitempty"`
}

// PDUSessionTypes lists the default and allowed session types of a DNN.
type PDUSessionTypes struct {
	DefaultSessionType  string   `json:"defaultSessionType"`
	AllowedSessionTypes []string `json:"allowedSessionTypes,omitempty"`
}

// SSCModes lists the default and allowed session and service continuity
// modes of a DNN.
type SSCModes struct {
	DefaultSSCMode  string   `json:"defaultSscMode"`
	AllowedSSCModes []string `json:"allowedSscModes,omitempty"`
}

// QOSProfile is the subscribed default QoS of a DNN configuration.
type QOSProfile struct {
	FiveQI        int  `json:"5qi"`
	ARP           *ARP `json:"arp,omitempty"`
	PriorityLevel int  `json:"priorityLevel,omitempty"`
}

// DNNConfiguration is the subscription data for one data network
// (TS 29.503 §6.1.6.2.9).
type DNNConfiguration struct {
	PDUSessionTypes *PDUSessionTypes `json:"pduSessionTypes,omitempty"`
	SSCModes        *SSCModes        `json:"sscModes,omitempty"`
	QOSProfile      *QOSProfile      `json:"5gQosProfile,omitempty"`
	SessionAMBR     *AMBR            `json:"sessionAmbr,omitempty"`
}

// SessionManagementSubscriptionData is the per-SUPI SM subscription
// (TS 29.503 §6.1.6.2.8). DNNConfigurations is keyed by DNN.
type SessionManagementSubscriptionData struct {
	SingleNSSAI       *SNSSAI                     `json:"singleNssai,omitempty"`
	DNNConfigurations map[string]DNNConfiguration `json:"dnnConfigurations,omitempty"`
}

// AuthenticationSubscription holds the long-term credentials of a UE.
// EncPermanentKey carries the permanent key K hex-encoded; the emulator
// stores it in the clear.
type AuthenticationSubscription struct {
	AuthenticationMethod          string `json:"authenticationMethod"`
	EncPermanentKey               string `json:"encPermanentKey,omitempty"`
	SequenceNumber                string `json:"sequenceNumber,omitempty"`
	AuthenticationManagementField string `json:"authenticationManagementField,omitempty"`
	AlgorithmID                   string `json:"algorithmId,omitempty"`
}

// AMF3GPPAccessRegistration records which AMF currently serves a UE on
// 3GPP access (TS 29.503 §6.2.6.2.2). Registering a new AMF replaces the
// previous registration for the SUPI.
type AMF3GPPAccessRegistration struct {
	AMFInstanceID          string     `json:"amfInstanceId"`
	DeregCallbackURI       string     `json:"deregCallbackUri"`
	GUAMI                  *GUAMI     `json:"guami,omitempty"`
	RATType                string     `json:"ratType,omitempty"`
	PEI                    string     `json:"pei,omitempty"`
	IMSVoPS                string     `json:"imsVoPs,omitempty"`
	InitialRegistrationInd bool       `json:"initialRegistrationInd,omitempty"`
	RegistrationTime       *time.Time `json:"registrationTime,omitempty"`
}

// RegistrationResult is returned when an AMF registration is created.
type RegistrationResult struct {
	RegistrationID string                     `json:"registrationId"`
	Registration   *AMF3GPPAccessRegistration `json:"registration,omitempty"`
}

// AuthEvent records one authentication attempt against a SUPI.
type AuthEvent struct {
	NFInstanceID       string    `json:"nfInstanceId"`
	Success            bool      `json:"success"`
	TimeStamp          time.Time `json:"timeStamp"`
	AuthType           string    `json:"authType"`
	ServingNetworkName string    `json:"servingNetworkName"`
}
