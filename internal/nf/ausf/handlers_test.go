package ausf

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
)

const testSNN = "5G:mnc001.mcc001.3gppnetwork.org"

func testConfig(udmURL string) *config.Config {
	return &config.Config{
		ShutdownTimeout: time.Second,
		SBI: config.SBIConfig{
			Host:          "127.0.0.1",
			Port:          9003,
			ClientTimeout: 2 * time.Second,
		},
		PLMN:  config.PLMNConfig{MCC: "001", MNC: "01"},
		Peers: config.PeersConfig{UDM: udmURL},
	}
}

func newTestServer(t *testing.T, udmURL string) *httptest.Server {
	t.Helper()

	svc, err := New(testConfig(udmURL))
	require.NoError(t, err)

	r := chi.NewRouter()
	svc.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// subscriberStore fakes the UDM generate-auth-data endpoint and records
// what the AUSF asked for.
type subscriberStore struct {
	mu       sync.Mutex
	lastPath string
	lastReq  models.AuthenticationInfoRequest
	vector   models.AuthenticationVector
}

func newSubscriberStore(t *testing.T) (*subscriberStore, *httptest.Server) {
	t.Helper()

	store := &subscriberStore{
		vector: models.AuthenticationVector{
			RAND:  "00112233445566778899aabbccddeeff",
			AUTN:  "aabbccddeeff80000123456789abcdef",
			XRES:  "res-star-expected",
			KAUSF: "kausf-from-store",
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store.mu.Lock()
		store.lastPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&store.lastReq)
		vector := store.vector
		store.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"authenticationVector": vector,
			"supi":                 strings.Split(strings.TrimPrefix(r.URL.Path, "/nudm-ueau/v1/"), "/")[0],
		})
	}))
	t.Cleanup(srv.Close)
	return store, srv
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

func startAuthentication(t *testing.T, srv *httptest.Server, supiOrSuci string) (models.UEAuthenticationCtx, string) {
	t.Helper()

	resp := doJSON(t, http.MethodPost, srv.URL+authenticationsPath, models.AuthenticationInfo{
		SUPIOrSUCI:         supiOrSuci,
		ServingNetworkName: testSNN,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	location := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, authenticationsPath+"/"), "Location = %q", location)

	var ctx models.UEAuthenticationCtx
	decodeInto(t, resp, &ctx)
	return ctx, location
}

func TestAuthenticationWithSubscriberStore(t *testing.T) {
	store, udm := newSubscriberStore(t)
	srv := newTestServer(t, udm.URL)

	ctx, location := startAuthentication(t, srv, "suci-0-001-01-0000-0-0-001010000000001")

	assert.Equal(t, models.AuthMethod5GAKA, ctx.AuthType)
	assert.Equal(t, testSUPI, ctx.SUPI, "SUCI should be de-concealed before the store lookup")

	require.NotNil(t, ctx.AuthenticationVector)
	assert.Equal(t, "res-star-expected", ctx.AuthenticationVector.HXRESStar,
		"store xres should be normalized under hxresStar")
	assert.Empty(t, ctx.AuthenticationVector.XRES)
	assert.Equal(t, "kausf-from-store", ctx.AuthenticationVector.KAUSF)

	require.Contains(t, ctx.Links, "5g-aka")
	assert.Equal(t, location+"/5g-aka-confirmation", ctx.Links["5g-aka"].Href)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Contains(t, store.lastPath, "/nudm-ueau/v1/"+testSUPI+"/")
	assert.Equal(t, testSNN, store.lastReq.ServingNetworkName)
	assert.NotEmpty(t, store.lastReq.AUSFInstanceID)
}

func TestAuthenticationFallbackVector(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:1")

	ctx, _ := startAuthentication(t, srv, testSUPI)

	require.NotNil(t, ctx.AuthenticationVector)
	v := ctx.AuthenticationVector
	assert.Len(t, v.RAND, 32)
	assert.Len(t, v.AUTN, 32)
	assert.Len(t, v.HXRESStar, 16)
	assert.Len(t, v.KAUSF, 64)
	assert.Equal(t, hashHex(testSUPI+v.RAND+v.AUTN)[:16], v.HXRESStar,
		"locally derived vector should follow the documented derivation")
}

func TestConfirmationSuccess(t *testing.T) {
	_, udm := newSubscriberStore(t)
	srv := newTestServer(t, udm.URL)

	_, location := startAuthentication(t, srv, testSUPI)
	confirmURL := srv.URL + location + "/5g-aka-confirmation"

	resp := doJSON(t, http.MethodPut, confirmURL, models.ConfirmationData{ResStar: "res-star-expected"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.ConfirmationDataResponse
	decodeInto(t, resp, &result)
	assert.Equal(t, models.AuthResultSuccess, result.AuthResult)
	assert.Equal(t, testSUPI, result.SUPI)
	assert.Equal(t, deriveKSEAF("kausf-from-store", testSNN), result.KSEAF)
	require.NotNil(t, result.AuthenticationVector)
	assert.Equal(t, "res-star-expected", result.AuthenticationVector.HXRESStar)

	// A second confirmation replays the stored outcome even when the
	// response no longer matches.
	resp = doJSON(t, http.MethodPut, confirmURL, models.ConfirmationData{ResStar: "tampered"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var replay models.ConfirmationDataResponse
	decodeInto(t, resp, &replay)
	assert.Equal(t, models.AuthResultSuccess, replay.AuthResult)
	assert.Equal(t, result.KSEAF, replay.KSEAF)
}

func TestConfirmationFailure(t *testing.T) {
	_, udm := newSubscriberStore(t)
	srv := newTestServer(t, udm.URL)

	_, location := startAuthentication(t, srv, testSUPI)

	resp := doJSON(t, http.MethodPut, srv.URL+location+"/5g-aka-confirmation",
		models.ConfirmationData{ResStar: "wrong-answer"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.ConfirmationDataResponse
	decodeInto(t, resp, &result)
	assert.Equal(t, models.AuthResultFailure, result.AuthResult)
	assert.Empty(t, result.SUPI, "failed confirmation must not leak the identity")
	assert.Empty(t, result.KSEAF)
	assert.Nil(t, result.AuthenticationVector)

	var ctx map[string]any
	decodeInto(t, doJSON(t, http.MethodGet, srv.URL+location, nil), &ctx)
	assert.Equal(t, CtxStatusFailure, ctx["status"])
	assert.NotEmpty(t, ctx["completedAt"])
}

func TestConfirmationValidation(t *testing.T) {
	_, udm := newSubscriberStore(t)
	srv := newTestServer(t, udm.URL)

	resp := doJSON(t, http.MethodPut, srv.URL+authenticationsPath+"/no-such-ctx/5g-aka-confirmation",
		models.ConfirmationData{ResStar: "anything"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	resp.Body.Close()

	_, location := startAuthentication(t, srv, testSUPI)
	resp = doJSON(t, http.MethodPut, srv.URL+location+"/5g-aka-confirmation", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+authenticationsPath,
		models.AuthenticationInfo{ServingNetworkName: testSNN})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+authenticationsPath,
		models.AuthenticationInfo{SUPIOrSUCI: testSUPI})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestContextManagement(t *testing.T) {
	_, udm := newSubscriberStore(t)
	srv := newTestServer(t, udm.URL)

	_, location := startAuthentication(t, srv, testSUPI)

	var ctx map[string]any
	decodeInto(t, doJSON(t, http.MethodGet, srv.URL+location, nil), &ctx)
	assert.Equal(t, strings.TrimPrefix(location, authenticationsPath+"/"), ctx["authCtxId"])
	assert.Equal(t, CtxStatusOngoing, ctx["status"])
	assert.Equal(t, testSUPI, ctx["supi"])
	assert.NotContains(t, ctx, "completedAt")

	resp := doJSON(t, http.MethodDelete, srv.URL+location, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+location, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, srv.URL+location, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestStatusSurfaces(t *testing.T) {
	_, udm := newSubscriberStore(t)
	srv := newTestServer(t, udm.URL)

	_, okLoc := startAuthentication(t, srv, testSUPI)
	_, failLoc := startAuthentication(t, srv, "imsi-001010000000002")
	doJSON(t, http.MethodPut, srv.URL+okLoc+"/5g-aka-confirmation",
		models.ConfirmationData{ResStar: "res-star-expected"}).Body.Close()
	doJSON(t, http.MethodPut, srv.URL+failLoc+"/5g-aka-confirmation",
		models.ConfirmationData{ResStar: "nope"}).Body.Close()

	var status map[string]any
	decodeInto(t, doJSON(t, http.MethodGet, srv.URL+"/ausf/status", nil), &status)
	assert.Equal(t, "OPERATIONAL", status["status"])
	assert.Equal(t, float64(2), status["authenticationContexts"])
	assert.Equal(t, float64(0), status["ongoingAuthentications"])
	assert.Equal(t, float64(1), status["successfulAuthentications"])
	assert.Equal(t, float64(1), status["failedAuthentications"])
	assert.Equal(t, 0.5, status["successRate"])

	var info map[string]any
	decodeInto(t, doJSON(t, http.MethodGet, srv.URL+"/ausf_service", nil), &info)
	assert.Equal(t, "3GPP TS 29.509", info["compliance"])
	assert.Len(t, info["supported_auth_types"], 2)
}

func TestProfile(t *testing.T) {
	svc, err := New(testConfig(""))
	require.NoError(t, err)

	profile := svc.Profile()
	require.NotNil(t, profile)
	assert.Equal(t, models.NFTypeAUSF, profile.NFType)
	require.Len(t, profile.NFServices, 1)
	assert.Equal(t, "nausf-auth", profile.NFServices[0].ServiceName)

	require.NotNil(t, profile.AUSFInfo)
	assert.Equal(t, "ausf-group-001", profile.AUSFInfo.GroupID)
	require.Len(t, profile.AUSFInfo.SUPIRanges, 1)
	assert.Equal(t, "001010000000001", profile.AUSFInfo.SUPIRanges[0].Start)
	assert.Equal(t, []string{"0001"}, profile.AUSFInfo.RoutingIndicators)
}
