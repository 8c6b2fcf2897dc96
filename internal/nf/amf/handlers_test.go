package amf

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/nas"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/ngap"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

var gutiPattern = regexp.MustCompile(`^4[0-9A-F]{20}$`)

func testConfig(ausfURL, udmURL, smfURL string) *config.Config {
	return &config.Config{
		ShutdownTimeout: time.Second,
		SBI: config.SBIConfig{
			Host:          "127.0.0.1",
			Port:          9001,
			ClientTimeout: 2 * time.Second,
		},
		PLMN:  config.PLMNConfig{MCC: "001", MNC: "01"},
		RAN:   config.RANConfig{TAC: "000001"},
		Peers: config.PeersConfig{AUSF: ausfURL, UDM: udmURL, SMF: smfURL},
	}
}

func newTestServer(t *testing.T, ausfURL, udmURL, smfURL string) *httptest.Server {
	t.Helper()

	svc, err := New(testConfig(ausfURL, udmURL, smfURL))
	require.NoError(t, err)

	r := chi.NewRouter()
	svc.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// authServer fakes the AUSF challenge/confirmation pair.
type authServer struct {
	mu         sync.Mutex
	confirmed  string
	authResult string
}

func newAuthServer(t *testing.T) (*authServer, *httptest.Server) {
	t.Helper()

	ausf := &authServer{authResult: models.AuthResultSuccess}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(models.UEAuthenticationCtx{
				AuthType: models.AuthMethod5GAKA,
				AuthenticationVector: &models.AuthenticationVector{
					RAND: "00112233445566778899aabbccddeeff",
					AUTN: "aabbccddeeff80000123456789abcdef",
				},
				Links: map[string]models.Link{
					"5g-aka": {Href: "/nausf-auth/v1/ue-authentications/ctx-7/5g-aka-confirmation"},
				},
			})
		case r.Method == http.MethodPut:
			ausf.mu.Lock()
			parts := strings.Split(r.URL.Path, "/")
			ausf.confirmed = parts[len(parts)-2]
			result := ausf.authResult
			ausf.mu.Unlock()

			_ = json.NewEncoder(w).Encode(models.ConfirmationDataResponse{
				AuthResult: result,
				KSEAF:      "kseaf-abc",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return ausf, srv
}

func newSubscriberStore(t *testing.T) (*int, *httptest.Server) {
	t.Helper()

	registrations := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			registrations++
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(models.RegistrationResult{RegistrationID: "reg-1"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "DEREGISTERED"})
	}))
	t.Cleanup(srv.Close)
	return &registrations, srv
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

func registrationRequest(suci string) nas.RegistrationRequest {
	return nas.RegistrationRequest{
		Header:           nas.NewHeader(nas.MessageTypeRegistrationRequest),
		NGKSI:            0,
		RegistrationType: nas.RegistrationTypeInitial,
		SUCI:             suci,
		UESecurityCapability: map[string]any{
			"nea": []any{"NEA0", "NEA1"},
			"nia": []any{"NIA1", "NIA2"},
		},
	}
}

// Full registration: challenge, confirmation, security mode, final accept.
func TestRegistrationWithAuthentication(t *testing.T) {
	ausf, ausfSrv := newAuthServer(t)
	udmRegs, udmSrv := newSubscriberStore(t)
	srv := newTestServer(t, ausfSrv.URL, udmSrv.URL, "")

	resp := doJSON(t, http.MethodPost, srv.URL+"/nas/registration-request",
		registrationRequest("suci-0-001-01-0000-0-0-0000000001"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var challenge struct {
		Status     string                    `json:"status"`
		NASMessage nas.AuthenticationRequest `json:"nas_message"`
		Links      map[string]models.Link    `json:"links"`
	}
	decodeInto(t, resp, &challenge)
	assert.Equal(t, "AUTHENTICATION_REQUIRED", challenge.Status)
	assert.Equal(t, nas.MessageTypeAuthenticationRequest, challenge.NASMessage.Header.MessageType)
	assert.Equal(t, 1, challenge.NASMessage.NGKSI)
	assert.Equal(t, "0000", challenge.NASMessage.ABBA)
	assert.NotEmpty(t, challenge.NASMessage.RAND)
	assert.Contains(t, challenge.Links, "5g-aka")

	resp = doJSON(t, http.MethodPost, srv.URL+"/nas/authentication-response", map[string]any{
		"supi":          "imsi-0000000001",
		"authResponse":  "res-star-value",
		"authContextId": "ctx-7",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var smcResp struct {
		Status     string                  `json:"status"`
		NASMessage nas.SecurityModeCommand `json:"nas_message"`
	}
	decodeInto(t, resp, &smcResp)
	assert.Equal(t, "AUTHENTICATION_SUCCESS", smcResp.Status)
	assert.Equal(t, nas.MessageTypeSecurityModeCommand, smcResp.NASMessage.Header.MessageType)
	assert.Equal(t, nas.AlgCiphering128NEA1, smcResp.NASMessage.SelectedNASSecurityAlgorithms.Ciphering)
	assert.Equal(t, nas.AlgIntegrity128NIA1, smcResp.NASMessage.SelectedNASSecurityAlgorithms.Integrity)

	ausf.mu.Lock()
	assert.Equal(t, "ctx-7", ausf.confirmed)
	ausf.mu.Unlock()

	resp = doJSON(t, http.MethodPost, srv.URL+"/nas/security-mode-complete", map[string]any{
		"supi":   "imsi-0000000001",
		"imeisv": "3534900698731412",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var complete struct {
		Status        string                 `json:"status"`
		NASMessage    nas.RegistrationAccept `json:"nas_message"`
		UDMRegistered bool                   `json:"udm_registered"`
	}
	decodeInto(t, resp, &complete)
	assert.Equal(t, "REGISTRATION_COMPLETE", complete.Status)
	assert.Regexp(t, gutiPattern, complete.NASMessage.MobileIdentity)
	assert.True(t, complete.UDMRegistered)
	assert.Equal(t, 1, *udmRegs)
}

// Without a reachable AUSF the AMF accepts directly.
func TestRegistrationDirectAcceptFallback(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	udmRegs, udmSrv := newSubscriberStore(t)
	srv := newTestServer(t, dead.URL, udmSrv.URL, "")

	resp := doJSON(t, http.MethodPost, srv.URL+"/nas/registration-request",
		registrationRequest("suci-0-001-01-0000-0-0-0000000042"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var accept struct {
		Status        string                 `json:"status"`
		NASMessage    nas.RegistrationAccept `json:"nas_message"`
		GUTI          string                 `json:"guti"`
		UDMRegistered bool                   `json:"udm_registered"`
	}
	decodeInto(t, resp, &accept)
	assert.Equal(t, "REGISTRATION_ACCEPT", accept.Status)
	assert.Regexp(t, gutiPattern, accept.GUTI)
	assert.Equal(t, accept.GUTI, accept.NASMessage.MobileIdentity)
	assert.True(t, accept.UDMRegistered)
	assert.Equal(t, 1, *udmRegs)

	// Default slice when none requested.
	require.Len(t, accept.NASMessage.AllowedNSSAI, 1)
	assert.Equal(t, 1, accept.NASMessage.AllowedNSSAI[0].SST)
}

func TestRegistrationNSSAINegotiation(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	_, udmSrv := newSubscriberStore(t)
	srv := newTestServer(t, dead.URL, udmSrv.URL, "")

	req := registrationRequest("suci-0-001-01-0000-0-0-0000000007")
	req.RequestedNSSAI = []models.SNSSAI{
		{SST: 1, SD: "010203"},
		{SST: 2, SD: "020304"},
		{SST: 9, SD: "ffffff"},
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/nas/registration-request", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var accept struct {
		NASMessage nas.RegistrationAccept `json:"nas_message"`
	}
	decodeInto(t, resp, &accept)
	assert.Len(t, accept.NASMessage.AllowedNSSAI, 2)
	require.Len(t, accept.NASMessage.RejectedNSSAI, 1)
	assert.Equal(t, 9, accept.NASMessage.RejectedNSSAI[0].SST)
}

func TestAuthenticationFailureReportsMACFailure(t *testing.T) {
	ausf, ausfSrv := newAuthServer(t)
	_, udmSrv := newSubscriberStore(t)
	srv := newTestServer(t, ausfSrv.URL, udmSrv.URL, "")

	resp := doJSON(t, http.MethodPost, srv.URL+"/nas/registration-request",
		registrationRequest("suci-0-001-01-0000-0-0-0000000001"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	ausf.mu.Lock()
	ausf.authResult = models.AuthResultFailure
	ausf.mu.Unlock()

	resp = doJSON(t, http.MethodPost, srv.URL+"/nas/authentication-response", map[string]any{
		"supi":          "imsi-0000000001",
		"authResponse":  "wrong-res",
		"authContextId": "ctx-7",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var failure struct {
		Status string `json:"status"`
		Cause  int    `json:"cause"`
	}
	decodeInto(t, resp, &failure)
	assert.Equal(t, "AUTHENTICATION_FAILURE", failure.Status)
	assert.Equal(t, int(nas.MMCauseMACFailure), failure.Cause)
}

func TestAuthenticationResponseMissingFields(t *testing.T) {
	_, ausfSrv := newAuthServer(t)
	srv := newTestServer(t, ausfSrv.URL, "", "")

	resp := doJSON(t, http.MethodPost, srv.URL+"/nas/authentication-response", map[string]any{
		"supi": "imsi-0000000001",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var problem sbi.Problem
	decodeInto(t, resp, &problem)
	assert.Equal(t, sbi.CauseMandatoryIEMissing, problem.Cause)
}

// NAS procedures only advance from the state that started them: a
// security-mode-complete sent before authentication finished, or
// replayed after registration, is rejected.
func TestSecurityModeCompleteRequiresPendingProcedure(t *testing.T) {
	_, ausfSrv := newAuthServer(t)
	_, udmSrv := newSubscriberStore(t)
	srv := newTestServer(t, ausfSrv.URL, udmSrv.URL, "")

	resp := doJSON(t, http.MethodPost, srv.URL+"/nas/registration-request",
		registrationRequest("suci-0-001-01-0000-0-0-0000000001"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Still AUTH_PENDING, security mode never started.
	resp = doJSON(t, http.MethodPost, srv.URL+"/nas/security-mode-complete", map[string]any{
		"supi": "imsi-0000000001",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/nas/authentication-response", map[string]any{
		"supi":          "imsi-0000000001",
		"authResponse":  "res-star-value",
		"authContextId": "ctx-7",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/nas/security-mode-complete", map[string]any{
		"supi": "imsi-0000000001",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Registered now; a replay must not re-run the procedure.
	resp = doJSON(t, http.MethodPost, srv.URL+"/nas/security-mode-complete", map[string]any{
		"supi": "imsi-0000000001",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// A replayed confirmation is refused the same way.
	resp = doJSON(t, http.MethodPost, srv.URL+"/nas/authentication-response", map[string]any{
		"supi":          "imsi-0000000001",
		"authResponse":  "res-star-value",
		"authContextId": "ctx-7",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPDUSessionEstablishmentForwardsToSMF(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	_, udmSrv := newSubscriberStore(t)

	var smfMu sync.Mutex
	var smfReq models.SMContextCreateData
	smfSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		smfMu.Lock()
		_ = json.NewDecoder(r.Body).Decode(&smfReq)
		smfMu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.SMContextCreatedData{
			Status:       models.SessionStatusCreated,
			Cause:        models.CauseSessionEstablishmentAccepted,
			PDUSessionID: 1,
			UEIPAddress:  "10.2.0.1",
			SMContext:    &models.SMContextRef{ContextID: "imsi-0000000042:1"},
		})
	}))
	t.Cleanup(smfSrv.Close)

	srv := newTestServer(t, dead.URL, udmSrv.URL, smfSrv.URL)

	resp := doJSON(t, http.MethodPost, srv.URL+"/nas/registration-request",
		registrationRequest("suci-0-001-01-0000-0-0-0000000042"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/nas/pdu-session-establishment-request", map[string]any{
		"supi":           "imsi-0000000042",
		"header":         nas.NewHeader(nas.MessageTypePDUSessionEstablishmentRequest),
		"pdu_session_id": 1,
		"pti":            1,
		"capability_5gsm": map[string]any{
			"reflectiveQos": false,
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Status         string                      `json:"status"`
		PDUSessionID   int                         `json:"pdu_session_id"`
		SessionContext models.SMContextCreatedData `json:"session_context"`
	}
	decodeInto(t, resp, &result)
	assert.Equal(t, "PDU_SESSION_ESTABLISHMENT_ACCEPT", result.Status)
	assert.Equal(t, 1, result.PDUSessionID)
	assert.Equal(t, "10.2.0.1", result.SessionContext.UEIPAddress)

	smfMu.Lock()
	defer smfMu.Unlock()
	assert.Equal(t, "imsi-0000000042", smfReq.SUPI)
	assert.Equal(t, "internet", smfReq.DNN)
	assert.Equal(t, "3GPP_ACCESS", smfReq.ANType)
}

func TestPDUSessionEstablishmentLocalFallback(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	_, udmSrv := newSubscriberStore(t)
	srv := newTestServer(t, dead.URL, udmSrv.URL, dead.URL)

	resp := doJSON(t, http.MethodPost, srv.URL+"/nas/registration-request",
		registrationRequest("suci-0-001-01-0000-0-0-0000000042"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/nas/pdu-session-establishment-request", map[string]any{
		"supi":            "imsi-0000000042",
		"pdu_session_id":  2,
		"pti":             1,
		"capability_5gsm": map[string]any{},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Status      string `json:"status"`
		AllocatedIP string `json:"allocated_ip"`
	}
	decodeInto(t, resp, &result)
	assert.Equal(t, "PDU_SESSION_ESTABLISHMENT_ACCEPT", result.Status)
	assert.Equal(t, "192.168.1.100", result.AllocatedIP)
}

func TestPDUSessionRequiresRegisteredUE(t *testing.T) {
	srv := newTestServer(t, "", "", "")

	resp := doJSON(t, http.MethodPost, srv.URL+"/nas/pdu-session-establishment-request", map[string]any{
		"supi":            "imsi-0000000099",
		"pdu_session_id":  1,
		"pti":             1,
		"capability_5gsm": map[string]any{},
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestDeregistration(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	_, udmSrv := newSubscriberStore(t)
	srv := newTestServer(t, dead.URL, udmSrv.URL, "")

	resp := doJSON(t, http.MethodPost, srv.URL+"/nas/registration-request",
		registrationRequest("suci-0-001-01-0000-0-0-0000000042"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/nas/deregistration-request", map[string]any{
		"supi": "imsi-0000000042",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Status string `json:"status"`
	}
	decodeInto(t, resp, &result)
	assert.Equal(t, "DEREGISTRATION_ACCEPT", result.Status)

	resp = doJSON(t, http.MethodGet, srv.URL+"/amf/ue-contexts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var contexts struct {
		UEContexts map[string]struct {
			RegistrationState string `json:"registrationState"`
			GUTI              string `json:"guti"`
		} `json:"ueContexts"`
	}
	decodeInto(t, resp, &contexts)
	assert.Equal(t, "DEREGISTERED", contexts.UEContexts["imsi-0000000042"].RegistrationState)
	assert.Empty(t, contexts.UEContexts["imsi-0000000042"].GUTI)
}

func TestNGSetup(t *testing.T) {
	srv := newTestServer(t, "", "", "")

	pdu := ngap.NewInitiatingMessage(ngap.ProcedureCodeNGSetup, ngap.CriticalityReject, ngap.IEs{
		ngap.IERANNodeName: "gNB-001",
		ngap.IEGlobalRANNodeID: map[string]any{
			"globalGNB-ID": map[string]any{"gNB-ID": "000001"},
		},
		ngap.IESupportedTAList:  []any{map[string]any{"tac": "000001"}},
		ngap.IEDefaultPagingDRX: "v128",
	})

	resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/ng-setup", pdu)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result ngap.PDU
	decodeInto(t, resp, &result)
	require.True(t, result.IsSuccess())
	assert.Equal(t, ngap.ProcedureCodeNGSetup, result.SuccessfulOutcome.ProcedureCode)
	ies := result.IEs()
	assert.Equal(t, "AMF-001", ies.String(ngap.IEAMFName))
	assert.NotNil(t, ies[ngap.IEServedGUAMIList])
	capacity, ok := ies.Int(ngap.IERelativeAMFCapacity)
	require.True(t, ok)
	assert.Equal(t, 100, capacity)
}

func TestInitialUEMessageAllocatesAMFID(t *testing.T) {
	srv := newTestServer(t, "", "", "")

	send := func(ranID int) uint64 {
		pdu := ngap.NewInitiatingMessage(ngap.ProcedureCodeInitialUEMessage, ngap.CriticalityIgnore, ngap.IEs{
			ngap.IERANUENGAPID: ranID,
			ngap.IENASPDU:      "registration-request-payload",
		})
		resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/initial-ue-message", pdu)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			AMFUENGAPID uint64 `json:"amfUeNgapId"`
		}
		decodeInto(t, resp, &result)
		return result.AMFUENGAPID
	}

	first := send(1)
	second := send(2)
	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)
}

func TestUplinkNASTransportUnknownAssociation(t *testing.T) {
	srv := newTestServer(t, "", "", "")

	pdu := ngap.NewInitiatingMessage(ngap.ProcedureCodeUplinkNASTransport, ngap.CriticalityIgnore, ngap.IEs{
		ngap.IEAMFUENGAPID: 999,
		ngap.IERANUENGAPID: 1,
		ngap.IENASPDU:      "payload",
	})
	resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/uplink-nas-transport", pdu)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestHeartbeatAndStatus(t *testing.T) {
	srv := newTestServer(t, "", "", "")

	resp := doJSON(t, http.MethodGet, srv.URL+"/heartbeat", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/amf/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := map[string]any{}
	decodeInto(t, resp, &status)
	assert.Equal(t, "OPERATIONAL", status["status"])
	assert.NotNil(t, status["guami"])
}

func TestGUTIDeterministic(t *testing.T) {
	guami := models.GUAMI{
		PLMNID:      models.PLMNID{MCC: "001", MNC: "01"},
		AMFRegionID: "01",
		AMFSetID:    "001",
		AMFPointer:  "01",
	}

	a := GUTI(guami, "imsi-001010000000001")
	b := GUTI(guami, "imsi-001010000000001")
	c := GUTI(guami, "imsi-001010000000002")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, gutiPattern, a)
	assert.True(t, strings.HasPrefix(a, "4001010001001"))
}

func TestDeconcealSUCI(t *testing.T) {
	assert.Equal(t, "imsi-0000000001", DeconcealSUCI("suci-0-001-01-0000-0-0-0000000001"))
	assert.Equal(t, "imsi-001010000000001", DeconcealSUCI("imsi-001010000000001"))
}
