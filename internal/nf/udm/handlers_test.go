package udm

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
)

func testConfig() *config.Config {
	return &config.Config{
		ShutdownTimeout: time.Second,
		SBI:             config.SBIConfig{Host: "127.0.0.1", Port: 9004},
		PLMN:            config.PLMNConfig{MCC: "001", MNC: "01"},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc, err := New(testConfig())
	require.NoError(t, err)

	r := chi.NewRouter()
	svc.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func registrationBody() models.AMF3GPPAccessRegistration {
	return models.AMF3GPPAccessRegistration{
		AMFInstanceID:    "amf-001",
		DeregCallbackURI: "http://127.0.0.1:9001/namf-comm/v1/dereg-notify",
		GUAMI: &models.GUAMI{
			PLMNID:      models.PLMNID{MCC: "001", MNC: "01"},
			AMFRegionID: "01",
			AMFSetID:    "001",
			AMFPointer:  "01",
		},
		InitialRegistrationInd: true,
	}
}

func TestAMFRegistrationLifecycle(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/nudm-uecm/v1/imsi-001010000000001/registrations/amf-3gpp-access"

	resp := doJSON(t, http.MethodPost, base, registrationBody())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created models.RegistrationResult
	decodeInto(t, resp, &created)
	assert.NotEmpty(t, created.RegistrationID)
	require.NotNil(t, created.Registration)
	assert.Equal(t, "amf-001", created.Registration.AMFInstanceID)
	assert.Equal(t, "NR", created.Registration.RATType, "ratType should default to NR")
	assert.NotNil(t, created.Registration.RegistrationTime)

	resp = doJSON(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reg models.AMF3GPPAccessRegistration
	decodeInto(t, resp, &reg)
	assert.Equal(t, "amf-001", reg.AMFInstanceID)

	// Partial update touches only the supplied field.
	resp = doJSON(t, http.MethodPatch, base, map[string]string{"amfInstanceId": "amf-002"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, base, nil)
	decodeInto(t, resp, &reg)
	assert.Equal(t, "amf-002", reg.AMFInstanceID)
	assert.Equal(t, registrationBody().DeregCallbackURI, reg.DeregCallbackURI)

	resp = doJSON(t, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, base, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Deregistration is idempotent.
	resp = doJSON(t, http.MethodDelete, base, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegistrationValidation(t *testing.T) {
	srv := newTestServer(t)

	unknown := doJSON(t, http.MethodPost,
		srv.URL+"/nudm-uecm/v1/imsi-999990000000001/registrations/amf-3gpp-access", registrationBody())
	unknown.Body.Close()
	assert.Equal(t, http.StatusNotFound, unknown.StatusCode)

	body := registrationBody()
	body.AMFInstanceID = ""
	missing := doJSON(t, http.MethodPost,
		srv.URL+"/nudm-uecm/v1/imsi-001010000000001/registrations/amf-3gpp-access", body)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusBadRequest, missing.StatusCode)
	assert.Equal(t, "application/problem+json", missing.Header.Get("Content-Type"))
}

func TestSubscriberData(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/nudm-sdm/v1/imsi-001010000000001"

	t.Run("am-data", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, base+"/am-data", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var am models.AccessAndMobilitySubscriptionData
		decodeInto(t, resp, &am)
		assert.Equal(t, []string{"msisdn-001010000000001"}, am.GPSIs)
		require.NotNil(t, am.SubscribedUEAMBR)
		assert.Equal(t, "1 Gbps", am.SubscribedUEAMBR.Uplink)
	})

	t.Run("sm-data", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, base+"/sm-data", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var sm models.SessionManagementSubscriptionData
		decodeInto(t, resp, &sm)
		require.Contains(t, sm.DNNConfigurations, "internet")
		assert.Equal(t, 9, sm.DNNConfigurations["internet"].QOSProfile.FiveQI)
	})

	t.Run("sm-data narrowed by dnn", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, base+"/sm-data?dnn=internet", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var sm models.SessionManagementSubscriptionData
		decodeInto(t, resp, &sm)
		assert.Len(t, sm.DNNConfigurations, 1)
	})

	t.Run("unknown dnn", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, base+"/sm-data?dnn=corp", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("nssai", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, base+"/nssai", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var nssai models.NSSAIInfo
		decodeInto(t, resp, &nssai)
		require.Len(t, nssai.DefaultSingleNSSAIs, 1)
		assert.Equal(t, 1, nssai.DefaultSingleNSSAIs[0].SST)
		assert.Len(t, nssai.SingleNSSAIs, 2)
	})

	t.Run("unknown subscriber", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/nudm-sdm/v1/imsi-999990000000001/am-data", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGenerateAuthData(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL + "/nudm-ueau/v1/imsi-001010000000001/security-information/generate-auth-data"

	req := models.AuthenticationInfoRequest{
		ServingNetworkName: "5G:mnc001.mcc001.3gppnetwork.org",
		AUSFInstanceID:     "ausf-001",
	}

	resp := doJSON(t, http.MethodPost, url, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		AuthenticationVector models.AuthenticationVector `json:"authenticationVector"`
		SUPI                 string                      `json:"supi"`
	}
	decodeInto(t, resp, &result)
	assert.Equal(t, "imsi-001010000000001", result.SUPI)
	assert.Len(t, result.AuthenticationVector.RAND, 32)
	assert.Len(t, result.AuthenticationVector.XRES, 16)
	assert.Len(t, result.AuthenticationVector.AUTN, 32)
	assert.Len(t, result.AuthenticationVector.KAUSF, 64)

	// The attempt lands in the status surface's event history.
	status := doJSON(t, http.MethodGet, srv.URL+"/udm/status", nil)
	require.Equal(t, http.StatusOK, status.StatusCode)

	var s struct {
		AuthenticationEvents map[string][]models.AuthEvent `json:"authenticationEvents"`
	}
	decodeInto(t, status, &s)
	events := s.AuthenticationEvents["imsi-001010000000001"]
	require.Len(t, events, 1)
	assert.Equal(t, "ausf-001", events[0].NFInstanceID)
	assert.True(t, events[0].Success)

	missing := doJSON(t, http.MethodPost, url, models.AuthenticationInfoRequest{})
	missing.Body.Close()
	assert.Equal(t, http.StatusBadRequest, missing.StatusCode)

	unknown := doJSON(t, http.MethodPost,
		srv.URL+"/nudm-ueau/v1/imsi-999990000000001/security-information/generate-auth-data", req)
	unknown.Body.Close()
	assert.Equal(t, http.StatusNotFound, unknown.StatusCode)
}

func TestStatusSurfaces(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/udm/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]any
	decodeInto(t, resp, &status)
	assert.Equal(t, "OPERATIONAL", status["status"])
	assert.Equal(t, float64(4), status["subscriberCount"])
	assert.Len(t, status["subscribers"], 4)

	legacy := doJSON(t, http.MethodGet, srv.URL+"/udm_service", nil)
	require.Equal(t, http.StatusOK, legacy.StatusCode)

	var svc map[string]any
	decodeInto(t, legacy, &svc)
	assert.Equal(t, "UDM service response", svc["message"])
	assert.Len(t, svc["supported_services"], 5)
}

func TestProfile(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)

	profile := svc.Profile()
	require.NotNil(t, profile)
	assert.Equal(t, models.NFTypeUDM, profile.NFType)
	assert.Equal(t, models.NFStatusRegistered, profile.NFStatus)

	names := make([]string, 0, len(profile.NFServices))
	for _, service := range profile.NFServices {
		names = append(names, service.ServiceName)
	}
	assert.Equal(t, []string{"nudm-uecm", "nudm-sdm", "nudm-ueau"}, names)

	require.NotNil(t, profile.UDMInfo)
	assert.Equal(t, "udm-group-001", profile.UDMInfo.GroupID)
	require.Len(t, profile.UDMInfo.SUPIRanges, 1)
	assert.Equal(t, "001010000000001", profile.UDMInfo.SUPIRanges[0].Start)
}
