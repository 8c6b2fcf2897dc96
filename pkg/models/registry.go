package models

import (
	"fmt"
	"time"
)

// NFType enumerates the network function types known to the registry
// (TS 29.510 §6.1.6.3.3).
type NFType string

const (
	NFTypeNRF   NFType = "NRF"
	NFTypeUDM   NFType = "UDM"
	NFTypeAMF   NFType = "AMF"
	NFTypeSMF   NFType = "SMF"
	NFTypeAUSF  NFType = "AUSF"
	NFTypeNEF   NFType = "NEF"
	NFTypePCF   NFType = "PCF"
	NFTypeSMSF  NFType = "SMSF"
	NFTypeNSSF  NFType = "NSSF"
	NFTypeUDR   NFType = "UDR"
	NFTypeLMF   NFType = "LMF"
	NFTypeGMLC  NFType = "GMLC"
	NFTypeUPF   NFType = "UPF"
	NFTypeN3IWF NFType = "N3IWF"
	NFTypeAF    NFType = "AF"
	NFTypeUDSF  NFType = "UDSF"
	NFTypeBSF   NFType = "BSF"
	NFTypeCHF   NFType = "CHF"

	// RAN nodes register with the same registry in this emulation.
	NFTypeGNB NFType = "GNB"
	NFTypeCU  NFType = "CU"
	NFTypeDU  NFType = "DU"
)

// AllNFTypes lists every type the registry accepts, in declaration order.
var AllNFTypes = []NFType{
	NFTypeNRF, NFTypeUDM, NFTypeAMF, NFTypeSMF, NFTypeAUSF, NFTypeNEF,
	NFTypePCF, NFTypeSMSF, NFTypeNSSF, NFTypeUDR, NFTypeLMF, NFTypeGMLC,
	NFTypeUPF, NFTypeN3IWF, NFTypeAF, NFTypeUDSF, NFTypeBSF, NFTypeCHF,
	NFTypeGNB, NFTypeCU, NFTypeDU,
}

// IsValid reports whether t is one of the known NF types.
func (t NFType) IsValid() bool {
	for _, known := range AllNFTypes {
		if t == known {
			return true
		}
	}
	return false
}

// NFStatus is the registration state of a profile. Only REGISTERED
// profiles are returned by discovery.
type NFStatus string

const (
	NFStatusRegistered     NFStatus = "REGISTERED"
	NFStatusSuspended      NFStatus = "SUSPENDED"
	NFStatusUndiscoverable NFStatus = "UNDISCOVERABLE"
)

// IPEndPoint is a single transport endpoint of an NF service.
type IPEndPoint struct {
	IPv4Address string `json:"ipv4Address,omitempty"`
	IPv6Address string `json:"ipv6Address,omitempty"`
	Transport   string `json:"transport,omitempty"`
	Port        int    `json:"port,omitempty"`
}

// NFServiceVersion describes one supported API version of a service.
type NFServiceVersion struct {
	APIVersionInURI string `json:"apiVersionInUri"`
	APIFullVersion  string `json:"apiFullVersion,omitempty"`
}

// NFService is one service instance exposed by an NF (TS 29.510 §6.1.6.2.3).
type NFService struct {
	ServiceInstanceID string             `json:"serviceInstanceId"`
	ServiceName       string             `json:"serviceName"`
	Versions          []NFServiceVersion `json:"versions"`
	Scheme            string             `json:"scheme"`
	NFServiceStatus   NFStatus           `json:"nfServiceStatus"`
	IPEndPoints       []IPEndPoint       `json:"ipEndPoints,omitempty"`
	AllowedNFTypes    []NFType           `json:"allowedNfTypes,omitempty"`
	Priority          int                `json:"priority,omitempty"`
	Capacity          int                `json:"capacity,omitempty"`
	Load              int                `json:"load,omitempty"`
	SupportedFeatures string             `json:"supportedFeatures,omitempty"`
}

// SUPIRange bounds a contiguous range of subscriber identities.
type SUPIRange struct {
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

// IdentityRange bounds a contiguous range of GPSIs or external group ids.
type IdentityRange struct {
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

// UDMInfo is the UDM-specific part of an NF profile.
type UDMInfo struct {
	GroupID                        string          `json:"groupId,omitempty"`
	SUPIRanges                     []SUPIRange     `json:"supiRanges,omitempty"`
	GPSIRanges                     []IdentityRange `json:"gpsiRanges,omitempty"`
	ExternalGroupIdentifiersRanges []IdentityRange `json:"externalGroupIdentifiersRanges,omitempty"`
	RoutingIndicators              []string        `json:"routingIndicators,omitempty"`
}

// AUSFInfo is the AUSF-specific part of an NF profile.
type AUSFInfo struct {
	GroupID           string      `json:"groupId,omitempty"`
	SUPIRanges        []SUPIRange `json:"supiRanges,omitempty"`
	RoutingIndicators []string    `json:"routingIndicators,omitempty"`
}

// PCFInfo is the PCF-specific part of an NF profile.
type PCFInfo struct {
	DNNList     []string        `json:"dnnList,omitempty"`
	SUPIRanges  []SUPIRange     `json:"supiRanges,omitempty"`
	GPSIRanges  []IdentityRange `json:"gpsiRanges,omitempty"`
	RxDiamHost  string          `json:"rxDiamHost,omitempty"`
	RxDiamRealm string          `json:"rxDiamRealm,omitempty"`
}

// AMFInfo is the AMF-specific part of an NF profile.
type AMFInfo struct {
	AMFSetID    string  `json:"amfSetId,omitempty"`
	AMFRegionID string  `json:"amfRegionId,omitempty"`
	GUAMIList   []GUAMI `json:"guamiList,omitempty"`
	TAIList     []TAI   `json:"taiList,omitempty"`
}

// SNSSAISMFInfoItem pairs a slice with the DNNs an SMF serves on it.
type SNSSAISMFInfoItem struct {
	SNSSAI         SNSSAI           `json:"sNssai"`
	DNNSMFInfoList []DNNSMFInfoItem `json:"dnnSmfInfoList,omitempty"`
}

// DNNSMFInfoItem names one DNN served by an SMF.
type DNNSMFInfoItem struct {
	DNN string `json:"dnn"`
}

// SMFInfo is the SMF-specific part of an NF profile.
type SMFInfo struct {
	SNSSAISMFInfoList []SNSSAISMFInfoItem `json:"sNssaiSmfInfoList,omitempty"`
	TAIList           []TAI               `json:"taiList,omitempty"`
	PGWFQDN           string              `json:"pgwFqdn,omitempty"`
	AccessType        []string            `json:"accessType,omitempty"`
	Priority          int                 `json:"priority,omitempty"`
}

// IPv4AddressRange bounds a pool of UE IPv4 addresses.
type IPv4AddressRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// IPv6PrefixRange bounds a pool of UE IPv6 prefixes.
type IPv6PrefixRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DNNUPFInfoItem describes the user-plane resources a UPF offers for one DNN.
type DNNUPFInfoItem struct {
	DNN               string             `json:"dnn"`
	PDUSessionTypes   []string           `json:"pduSessionTypes,omitempty"`
	IPv4AddressRanges []IPv4AddressRange `json:"ipv4AddressRanges,omitempty"`
	IPv6PrefixRanges  []IPv6PrefixRange  `json:"ipv6PrefixRanges,omitempty"`
}

// SNSSAIUPFInfoItem pairs a slice with the DNN resources on it.
type SNSSAIUPFInfoItem struct {
	SNSSAI         SNSSAI           `json:"sNssai"`
	DNNUPFInfoList []DNNUPFInfoItem `json:"dnnUpfInfoList,omitempty"`
}

// InterfaceUPFInfoItem describes one N3/N6/N9 interface of a UPF.
type InterfaceUPFInfoItem struct {
	InterfaceType         string   `json:"interfaceType"`
	NetworkInstance       string   `json:"networkInstance,omitempty"`
	IPv4EndpointAddresses []string `json:"ipv4EndpointAddresses,omitempty"`
	IPv6EndpointAddresses []string `json:"ipv6EndpointAddresses,omitempty"`
	EndpointFQDN          string   `json:"endpointFqdn,omitempty"`
}

// UPFInfo is the UPF-specific part of an NF profile.
type UPFInfo struct {
	SNSSAIUPFInfoList    []SNSSAIUPFInfoItem    `json:"sNssaiUpfInfoList,omitempty"`
	SMFServingArea       []string               `json:"smfServingArea,omitempty"`
	InterfaceUPFInfoList []InterfaceUPFInfoItem `json:"interfaceUpfInfoList,omitempty"`
	PDUSessionTypes      []string               `json:"pduSessionTypes,omitempty"`
}

// NFProfile is a registered network function instance (TS 29.510 §6.1.6.2.2).
// The registry keys profiles by NFInstanceID; discovery evaluates the filter
// fields (type, status, slices, PLMNs, allowed types, service names) and
// orders by Priority ascending then Capacity descending.
type NFProfile struct {
	NFInstanceID   string      `json:"nfInstanceId"`
	NFInstanceName string      `json:"nfInstanceName,omitempty"`
	NFType         NFType      `json:"nfType"`
	NFStatus       NFStatus    `json:"nfStatus"`
	HeartBeatTimer int         `json:"heartBeatTimer,omitempty"`
	PLMNList       []PLMNID    `json:"plmnList,omitempty"`
	SNSSAIs        []SNSSAI    `json:"sNssais,omitempty"`
	FQDN           string      `json:"fqdn,omitempty"`
	IPv4Addresses  []string    `json:"ipv4Addresses,omitempty"`
	IPv6Addresses  []string    `json:"ipv6Addresses,omitempty"`
	AllowedPLMNs   []PLMNID    `json:"allowedPlmns,omitempty"`
	AllowedNFTypes []NFType    `json:"allowedNfTypes,omitempty"`
	Priority       int         `json:"priority,omitempty"`
	Capacity       int         `json:"capacity,omitempty"`
	Load           int         `json:"load,omitempty"`
	Locality       string      `json:"locality,omitempty"`
	UDMInfo        *UDMInfo    `json:"udmInfo,omitempty"`
	AUSFInfo       *AUSFInfo   `json:"ausfInfo,omitempty"`
	PCFInfo        *PCFInfo    `json:"pcfInfo,omitempty"`
	AMFInfo        *AMFInfo    `json:"amfInfo,omitempty"`
	SMFInfo        *SMFInfo    `json:"smfInfo,omitempty"`
	UPFInfo        *UPFInfo    `json:"upfInfo,omitempty"`
	NFServices     []NFService `json:"nfServices,omitempty"`
	NFSetIDList    []string    `json:"nfSetIdList,omitempty"`
	RecoveryTime   *time.Time  `json:"recoveryTime,omitempty"`
}

// HasService reports whether the profile exposes a service with the
// given name.
func (p *NFProfile) HasService(serviceName string) bool {
	for _, svc := range p.NFServices {
		if svc.ServiceName == serviceName {
			return true
		}
	}
	return false
}

// AllowsNFType reports whether requester may consume this profile. An
// empty allow list permits every type.
func (p *NFProfile) AllowsNFType(requester NFType) bool {
	if len(p.AllowedNFTypes) == 0 {
		return true
	}
	for _, allowed := range p.AllowedNFTypes {
		if allowed == requester {
			return true
		}
	}
	return false
}

// ServesSNSSAI reports whether the profile serves the given slice.
// A profile without an sNssais list serves every slice.
func (p *NFProfile) ServesSNSSAI(s SNSSAI) bool {
	if len(p.SNSSAIs) == 0 {
		return true
	}
	for _, have := range p.SNSSAIs {
		if have.Equal(s) {
			return true
		}
	}
	return false
}

// ServesPLMN reports whether the profile serves the given PLMN.
// A profile without a plmnList serves every PLMN.
func (p *NFProfile) ServesPLMN(plmn PLMNID) bool {
	if len(p.PLMNList) == 0 {
		return true
	}
	for _, have := range p.PLMNList {
		if have.Equal(plmn) {
			return true
		}
	}
	return false
}

// BaseURL derives the HTTP base URL for reaching the NF: the first IP
// endpoint of the first service when present, otherwise the first profile
// IPv4 address, otherwise the FQDN. Returns "" when nothing is addressable.
func (p *NFProfile) BaseURL() string {
	for _, svc := range p.NFServices {
		scheme := svc.Scheme
		if scheme == "" {
			scheme = "http"
		}
		for _, ep := range svc.IPEndPoints {
			if ep.IPv4Address != "" && ep.Port != 0 {
				return fmt.Sprintf("%s://%s:%d", scheme, ep.IPv4Address, ep.Port)
			}
		}
	}
	if len(p.IPv4Addresses) > 0 {
		return "http://" + p.IPv4Addresses[0]
	}
	if p.FQDN != "" {
		return "http://" + p.FQDN
	}
	return ""
}

// SearchResult is the discovery response (TS 29.510 §6.2.6.2.2).
type SearchResult struct {
	ValidityPeriod       int         `json:"validityPeriod,omitempty"`
	NFInstances          []NFProfile `json:"nfInstances"`
	SearchID             string      `json:"searchId,omitempty"`
	NumNFInstComplete    int         `json:"numNfInstComplete,omitempty"`
	NRFSupportedFeatures string      `json:"nrfSupportedFeatures,omitempty"`
}

// SubscriptionData records one NF-status subscription (TS 29.510 §6.1.6.2.16).
type SubscriptionData struct {
	NFStatusNotificationURI string     `json:"nfStatusNotificationUri"`
	SubscriptionID          string     `json:"subscriptionId,omitempty"`
	ValidityTime            *time.Time `json:"validityTime,omitempty"`
	ReqNotifEvents          []string   `json:"reqNotifEvents,omitempty"`
	PLMNID                  *PLMNID    `json:"plmnId,omitempty"`
	NFInstanceID            string     `json:"nfInstanceId,omitempty"`
	NFType                  NFType     `json:"nfType,omitempty"`
}

// PatchItem is one JSON-Patch style operation applied to a stored
// profile, as used by heartbeat and load updates.
type PatchItem struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// GrantTypeClientCredentials is the only grant the registry token
// endpoint accepts.
const GrantTypeClientCredentials = "client_credentials"

// ScopeNRFDefault is the scope granted when a token request names none.
const ScopeNRFDefault = "nnrf-nfm nnrf-disc"

// AccessTokenRequest is the body of POST /oauth2/token. Only the
// client_credentials grant is supported.
type AccessTokenRequest struct {
	GrantType string `json:"grant_type"`
	Scope     string `json:"scope,omitempty"`
}

// AccessTokenResponse is an issued OAuth2-style bearer token.
type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// LegacyRegistration is the minimal body accepted on the ungated
// POST /register compatibility endpoint.
type LegacyRegistration struct {
	NFType string `json:"nf_type"`
	IP     string `json:"ip"`
	Port   int    `json:"port"`
}

// LegacyDiscovery is the GET /discover/{nfType} compatibility response.
type LegacyDiscovery struct {
	NFType string `json:"nf_type"`
	IP     string `json:"ip"`
	Port   int    `json:"port"`
}
