package pcf

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
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
		SBI:             config.SBIConfig{Host: "127.0.0.1", Port: 9007},
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

func createPolicy(t *testing.T, srv *httptest.Server, dnn string) (models.SMPolicyDecision, string) {
	t.Helper()

	resp := doJSON(t, http.MethodPost, srv.URL+smPoliciesPath, sessionContext(dnn))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	location := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, smPoliciesPath+"/"), "Location = %q", location)

	var decision models.SMPolicyDecision
	decodeInto(t, resp, &decision)
	return decision, location
}

func TestCreateSMPolicy(t *testing.T) {
	srv := newTestServer(t)

	decision, _ := createPolicy(t, srv, "internet")

	require.Len(t, decision.PCCRules, 1)
	assert.Contains(t, decision.PCCRules, "rule_internet_default")
	require.Len(t, decision.QOSDecisions, 1)
	assert.Equal(t, 9, decision.QOSDecisions["qos_internet"].FiveQI)

	assert.Contains(t, decision.PolicyCtrlReqTriggers, models.TriggerAppStart)
	assert.Contains(t, decision.PolicyCtrlReqTriggers, models.TriggerQoSNotification)
	assert.True(t, decision.Online)
	assert.True(t, decision.Offline)
	assert.Equal(t, supportedFeatures, decision.SuppFeat)
	require.NotNil(t, decision.RevalidationTime)
}

func TestCreateSMPolicyForIMS(t *testing.T) {
	srv := newTestServer(t)

	decision, _ := createPolicy(t, srv, "ims")

	require.Len(t, decision.PCCRules, 2)
	assert.Contains(t, decision.PCCRules, "rule_ims_signalling")
	ims := decision.QOSDecisions["qos_ims"]
	assert.Equal(t, 5, ims.FiveQI)
	assert.Equal(t, "128 Kbps", ims.GBRUplink)
}

func TestCreateSMPolicyValidation(t *testing.T) {
	srv := newTestServer(t)

	for name, ctx := range map[string]models.SMPolicyContextData{
		"missing supi":            {PDUSessionID: 1, DNN: "internet", NotificationURI: "http://cb"},
		"missing pduSessionId":    {SUPI: "imsi-1", DNN: "internet", NotificationURI: "http://cb"},
		"missing dnn":             {SUPI: "imsi-1", PDUSessionID: 1, NotificationURI: "http://cb"},
		"missing notificationUri": {SUPI: "imsi-1", PDUSessionID: 1, DNN: "internet"},
	} {
		t.Run(name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+smPoliciesPath, ctx)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
			resp.Body.Close()
		})
	}
}

func TestPolicyAppStartStop(t *testing.T) {
	srv := newTestServer(t)
	_, location := createPolicy(t, srv, "internet")

	resp := doJSON(t, http.MethodPatch, srv.URL+location, map[string]any{
		"triggers":        []string{"APP_STA"},
		"context_updates": map[string]any{"app_id": "video_streaming_app"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decision models.SMPolicyDecision
	decodeInto(t, resp, &decision)
	assert.Contains(t, decision.PCCRules, "rule_video_streaming")
	assert.Equal(t, 2, decision.QOSDecisions["qos_video"].FiveQI)

	resp = doJSON(t, http.MethodPatch, srv.URL+location, map[string]any{
		"triggers":        []string{"APP_STO"},
		"context_updates": map[string]any{"app_id": "video_streaming_app"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &decision)
	assert.NotContains(t, decision.PCCRules, "rule_video_streaming")
	assert.NotContains(t, decision.QOSDecisions, "qos_video")
}

func TestPolicyUpdateReportShape(t *testing.T) {
	srv := newTestServer(t)
	_, location := createPolicy(t, srv, "internet")

	resp := doJSON(t, http.MethodPatch, srv.URL+location, models.SMPolicyUpdateContextData{
		RepPolicyCtrlReqTriggers: []string{models.TriggerResourceMO},
		RequestedQOS:             &models.QOSData{QOSID: "requested", FiveQI: 1},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decision models.SMPolicyDecision
	decodeInto(t, resp, &decision)
	require.Contains(t, decision.QOSDecisions, "qos_voice")
	assert.Equal(t, 1, decision.QOSDecisions["qos_voice"].FiveQI)

	resp = doJSON(t, http.MethodPatch, srv.URL+location, models.SMPolicyUpdateContextData{
		RepPolicyCtrlReqTriggers: []string{models.TriggerQoSNotification},
		QNCReports:               []models.QOSNotifControl{{NotifType: "NOT_GUARANTEED"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &decision)
	assert.Equal(t, "500 Kbps", decision.QOSDecisions["qos_internet"].MaxBRUplink)
	assert.Equal(t, "1 Mbps", decision.QOSDecisions["qos_internet"].MaxBRDownlink)
}

func TestPolicyUpdateErrors(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPatch, srv.URL+smPoliciesPath+"/no-such-assoc", map[string]any{
		"triggers": []string{"APP_STA"},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	_, location := createPolicy(t, srv, "internet")
	resp = doJSON(t, http.MethodPatch, srv.URL+location, map[string]any{
		"triggers": []string{"NOT_A_TRIGGER"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	resp.Body.Close()
}

func TestPolicyLifecycle(t *testing.T) {
	srv := newTestServer(t)
	_, location := createPolicy(t, srv, "internet")

	resp := doJSON(t, http.MethodGet, srv.URL+location, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, srv.URL+location, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result map[string]string
	decodeInto(t, resp, &result)
	assert.Contains(t, result["message"], "deleted")

	resp = doJSON(t, http.MethodGet, srv.URL+location, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, srv.URL+location, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCatalogEndpoints(t *testing.T) {
	srv := newTestServer(t)

	var rules map[string]any
	decodeInto(t, doJSON(t, http.MethodGet, srv.URL+"/pcf/pcc-rules", nil), &rules)
	assert.Equal(t, float64(4), rules["total_rules"])

	resp := doJSON(t, http.MethodPost, srv.URL+"/pcf/pcc-rules", models.PCCRule{
		PCCRuleID:  "rule_iot",
		Precedence: 500,
		RefQOSData: []string{"qos_internet"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/pcf/pcc-rules", models.PCCRule{PCCRuleID: "rule_iot"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/pcf/qos-data", models.QOSData{QOSID: "qos_iot", FiveQI: 6})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/pcf/qos-data", models.QOSData{QOSID: "qos_iot"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	var status map[string]any
	decodeInto(t, doJSON(t, http.MethodGet, srv.URL+"/pcf/status", nil), &status)
	assert.Equal(t, "OPERATIONAL", status["status"])
	assert.Equal(t, float64(5), status["totalPccRules"])
	assert.Equal(t, float64(5), status["totalQosData"])
}

func TestAMPolicy(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/npcf-am-policy-control/v1/policies", map[string]any{
		"supi": "imsi-001010000000001",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		PolicyAssociationID string       `json:"policyAssociationId"`
		AMPolicyData        AMPolicyData `json:"amPolicyData"`
	}
	decodeInto(t, resp, &result)
	assert.NotEmpty(t, result.PolicyAssociationID)
	require.Contains(t, result.AMPolicyData.PRAInfos, "pra_001")
	assert.Equal(t, "IN_AREA", result.AMPolicyData.PRAInfos["pra_001"].PresenceState)
	assert.Equal(t, []string{"premium", "standard"}, result.AMPolicyData.SubscCats)
}

func TestProfile(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)

	profile := svc.Profile()
	require.NotNil(t, profile)
	assert.Equal(t, models.NFTypePCF, profile.NFType)

	var names []string
	for _, nfService := range profile.NFServices {
		names = append(names, nfService.ServiceName)
	}
	assert.Equal(t, []string{"npcf-smpolicycontrol", "npcf-ampolicycontrol"}, names)

	require.NotNil(t, profile.PCFInfo)
	assert.Equal(t, []string{"internet", "ims", "video", "gaming"}, profile.PCFInfo.DNNList)
	assert.Equal(t, "pcf.mnc001.mcc001.3gppnetwork.org", profile.PCFInfo.RxDiamHost)
	assert.Equal(t, "mnc001.mcc001.3gppnetwork.org", profile.PCFInfo.RxDiamRealm)
}
