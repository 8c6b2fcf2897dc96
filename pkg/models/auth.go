package models

// Authentication method and result values used across UDM, AUSF and AMF.
const (
	AuthMethod5GAKA = "5G_AKA"

	AuthResultSuccess = "AUTHENTICATION_SUCCESS"
	AuthResultFailure = "AUTHENTICATION_FAILURE"
	AuthResultOngoing = "AUTHENTICATION_ONGOING"
)

// AuthenticationInfo starts a UE authentication (TS 29.509 §6.1.6.2.2).
// SUPIOrSUCI accepts either the permanent identity or a concealed one.
type AuthenticationInfo struct {
	SUPIOrSUCI         string `json:"supiOrSuci"`
	ServingNetworkName string `json:"servingNetworkName"`
}

// AuthenticationInfoRequest asks the UDM for a fresh vector
// (TS 29.503 §6.3.6.2.2).
type AuthenticationInfoRequest struct {
	ServingNetworkName string `json:"servingNetworkName"`
	AUSFInstanceID     string `json:"ausfInstanceId,omitempty"`
}

// AuthenticationVector is a 5G-AKA vector. The UDM populates XRES; the
// AUSF stores the expected response under HXRESStar. Consumers accept
// either field.
type AuthenticationVector struct {
	RAND      string `json:"rand"`
	AUTN      string `json:"autn"`
	XRES      string `json:"xres,omitempty"`
	HXRESStar string `json:"hxresStar,omitempty"`
	KAUSF     string `json:"kausf"`
}

// ExpectedResponse returns whichever expected-response field is set,
// preferring HXRESStar.
func (v *AuthenticationVector) ExpectedResponse() string {
	if v.HXRESStar != "" {
		return v.HXRESStar
	}
	return v.XRES
}

// Link is one hypermedia reference in a _links map.
type Link struct {
	Href string `json:"href"`
}

// UEAuthenticationCtx is the 201 response to starting an authentication
// (TS 29.509 §6.1.6.2.3). Links carries the "5g-aka" confirmation URI.
type UEAuthenticationCtx struct {
	AuthType             string                `json:"authType"`
	AuthenticationVector *AuthenticationVector `json:"authenticationVector,omitempty"`
	SUPI                 string                `json:"supi,omitempty"`
	Links                map[string]Link       `json:"_links,omitempty"`
}

// ConfirmationData carries the UE response to the challenge.
type ConfirmationData struct {
	ResStar string `json:"resStar"`
}

// ConfirmationDataResponse closes an authentication. KSEAF and the echoed
// vector are present only on success.
type ConfirmationDataResponse struct {
	AuthResult           string                `json:"authResult"`
	SUPI                 string                `json:"supi,omitempty"`
	KSEAF                string                `json:"kseaf,omitempty"`
	AuthenticationVector *AuthenticationVector `json:"authenticationVector,omitempty"`
}
