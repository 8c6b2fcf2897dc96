package amf

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/nf/ausf"
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/nf/udm"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/nas"
)

// Registration against real sibling functions: the authentication
// server and the subscriber store run their own routers instead of
// test fakes.

func startAuthFunction(t *testing.T, udmURL string) *httptest.Server {
	t.Helper()

	svc, err := ausf.New(&config.Config{
		ShutdownTimeout: time.Second,
		SBI: config.SBIConfig{
			Host:          "127.0.0.1",
			Port:          9003,
			ClientTimeout: 2 * time.Second,
		},
		PLMN:  config.PLMNConfig{MCC: "001", MNC: "01"},
		Peers: config.PeersConfig{UDM: udmURL},
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	svc.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func startSubscriberFunction(t *testing.T) *httptest.Server {
	t.Helper()

	svc, err := udm.New(&config.Config{
		ShutdownTimeout: time.Second,
		SBI:             config.SBIConfig{Host: "127.0.0.1", Port: 9004},
		PLMN:            config.PLMNConfig{MCC: "001", MNC: "01"},
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	svc.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// expectedChallengeResponse mirrors the authentication server's
// store-less derivation, so the test can play a UE that owns the
// subscription.
func expectedChallengeResponse(supi, rand, autn string) string {
	sum := sha256.Sum256([]byte(supi + rand + autn))
	return hex.EncodeToString(sum[:])[:16]
}

func TestRegistrationAcrossAuthAndSubscriberFunctions(t *testing.T) {
	// The auth server runs store-less so its expected response is
	// derivable from the challenge alone.
	deadStore := httptest.NewServer(http.NotFoundHandler())
	deadStore.Close()

	ausfSrv := startAuthFunction(t, deadStore.URL)
	udmSrv := startSubscriberFunction(t)
	srv := newTestServer(t, ausfSrv.URL, udmSrv.URL, "")

	const (
		suci = "suci-0-001-01-0000-0-0-001010000000001"
		supi = "imsi-001010000000001"
	)

	resp := doJSON(t, http.MethodPost, srv.URL+"/nas/registration-request",
		registrationRequest(suci))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var challenge struct {
		Status     string                    `json:"status"`
		NASMessage nas.AuthenticationRequest `json:"nas_message"`
		Links      map[string]models.Link    `json:"links"`
	}
	decodeInto(t, resp, &challenge)
	require.Equal(t, "AUTHENTICATION_REQUIRED", challenge.Status)
	require.NotEmpty(t, challenge.NASMessage.RAND)
	require.NotEmpty(t, challenge.NASMessage.AUTN)
	require.Contains(t, challenge.Links, "5g-aka")

	resp = doJSON(t, http.MethodPost, srv.URL+"/nas/authentication-response", map[string]any{
		"supi": supi,
		"authResponse": expectedChallengeResponse(supi,
			challenge.NASMessage.RAND, challenge.NASMessage.AUTN),
		"authContextId": authCtxIDFromLinks(challenge.Links),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var smc struct {
		Status string `json:"status"`
	}
	decodeInto(t, resp, &smc)
	require.Equal(t, "AUTHENTICATION_SUCCESS", smc.Status)

	resp = doJSON(t, http.MethodPost, srv.URL+"/nas/security-mode-complete", map[string]any{
		"supi":   supi,
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

	// The subscriber store holds the serving-AMF registration.
	resp = doJSON(t, http.MethodGet,
		udmSrv.URL+"/nudm-uecm/v1/"+supi+"/registrations/amf-3gpp-access", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestRegistrationWrongResponseFailsAcrossAuthFunction(t *testing.T) {
	deadStore := httptest.NewServer(http.NotFoundHandler())
	deadStore.Close()

	ausfSrv := startAuthFunction(t, deadStore.URL)
	udmSrv := startSubscriberFunction(t)
	srv := newTestServer(t, ausfSrv.URL, udmSrv.URL, "")

	resp := doJSON(t, http.MethodPost, srv.URL+"/nas/registration-request",
		registrationRequest("suci-0-001-01-0000-0-0-001010000000002"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var challenge struct {
		Status string                 `json:"status"`
		Links  map[string]models.Link `json:"links"`
	}
	decodeInto(t, resp, &challenge)
	require.Equal(t, "AUTHENTICATION_REQUIRED", challenge.Status)

	resp = doJSON(t, http.MethodPost, srv.URL+"/nas/authentication-response", map[string]any{
		"supi":          "imsi-001010000000002",
		"authResponse":  "not-the-expected-response",
		"authContextId": authCtxIDFromLinks(challenge.Links),
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

// authCtxIDFromLinks pulls the confirmation context id out of the
// challenge links the way a UE-side driver would.
func authCtxIDFromLinks(links map[string]models.Link) string {
	return authCtxID(&models.UEAuthenticationCtx{Links: links})
}
