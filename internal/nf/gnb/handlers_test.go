package gnb

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/ngap"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

func testConfig(amfURL string) *config.Config {
	return &config.Config{
		ShutdownTimeout: time.Second,
		SBI: config.SBIConfig{
			Host:          "127.0.0.1",
			Port:          38412,
			ClientTimeout: 2 * time.Second,
		},
		PLMN:  config.PLMNConfig{MCC: "001", MNC: "01"},
		RAN:   config.RANConfig{GnbID: "000001", TAC: "000001"},
		Peers: config.PeersConfig{AMF: amfURL},
	}
}

func newTestServer(t *testing.T, amfURL string) (*Service, *httptest.Server) {
	t.Helper()

	svc, err := New(testConfig(amfURL))
	require.NoError(t, err)

	r := chi.NewRouter()
	svc.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return svc, srv
}

// coreNode fakes the AMF's NGAP endpoints and records delivered PDUs.
type coreNode struct {
	mu      sync.Mutex
	initial []ngap.PDU
	uplink  []ngap.PDU
}

func newCoreNode(t *testing.T) (*coreNode, *httptest.Server) {
	t.Helper()

	amf := &coreNode{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var pdu ngap.PDU
		_ = json.NewDecoder(r.Body).Decode(&pdu)

		amf.mu.Lock()
		switch r.URL.Path {
		case "/ngap/initial-ue-message":
			amf.initial = append(amf.initial, pdu)
		case "/ngap/uplink-nas-transport":
			amf.uplink = append(amf.uplink, pdu)
		}
		amf.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "SUCCESS"})
	}))
	t.Cleanup(srv.Close)
	return amf, srv
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

func sendInitialUE(t *testing.T, srv *httptest.Server, nasPDU string) uint64 {
	t.Helper()

	resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/initial-ue-message", map[string]any{
		"nas_pdu": nasPDU,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Status      string `json:"status"`
		RANUENGAPID uint64 `json:"ranUeNgapId"`
	}
	decodeInto(t, resp, &result)
	require.Equal(t, "SUCCESS", result.Status)
	return result.RANUENGAPID
}

func TestInitialUEMessageForwardsEnvelope(t *testing.T) {
	amf, amfSrv := newCoreNode(t)
	_, srv := newTestServer(t, amfSrv.URL)

	first := sendInitialUE(t, srv, "registration-request-payload")
	second := sendInitialUE(t, srv, "registration-request-payload")
	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)

	amf.mu.Lock()
	defer amf.mu.Unlock()
	require.Len(t, amf.initial, 2)

	pdu := amf.initial[0]
	require.NotNil(t, pdu.InitiatingMessage)
	assert.Equal(t, ngap.ProcedureCodeInitialUEMessage, pdu.InitiatingMessage.ProcedureCode)
	assert.Equal(t, ngap.CriticalityIgnore, pdu.InitiatingMessage.Criticality)

	ies := pdu.IEs()
	ranID, ok := ies.Int(ngap.IERANUENGAPID)
	require.True(t, ok)
	assert.Equal(t, 1, ranID)
	assert.Equal(t, "registration-request-payload", ies.String(ngap.IENASPDU))
	assert.Equal(t, "mo-Data", ies.String(ngap.IERRCEstablishmentCause))
	assert.Equal(t, "requested", ies.String(ngap.IEUEContextRequest))

	location := ies.Map(ngap.IEUserLocationInformation)
	nr, _ := location["userLocationInformationNR"].(map[string]any)
	require.NotNil(t, nr["nR-CGI"])
	require.NotNil(t, nr["tAI"])
}

func TestInitialUEMessageNoAMF(t *testing.T) {
	_, srv := newTestServer(t, "")

	resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/initial-ue-message", map[string]any{
		"nas_pdu": "payload",
	})
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()
}

func TestInitialUEMessageAMFUnreachable(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	_, srv := newTestServer(t, dead.URL)

	resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/initial-ue-message", map[string]any{
		"nas_pdu": "payload",
	})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()
}

func TestDownlinkNASTransportBindsAMFID(t *testing.T) {
	_, amfSrv := newCoreNode(t)
	svc, srv := newTestServer(t, amfSrv.URL)

	ranID := sendInitialUE(t, srv, "payload")

	pdu := ngap.NewInitiatingMessage(ngap.ProcedureCodeDownlinkNASTransport, ngap.CriticalityIgnore, ngap.IEs{
		ngap.IERANUENGAPID: ranID,
		ngap.IEAMFUENGAPID: 100,
		ngap.IENASPDU:      "registration-accept",
	})
	resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/downlink-nas-transport", pdu)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	ue, ok := svc.state.Get(ranID)
	require.True(t, ok)
	assert.Equal(t, uint64(100), ue.AMFUENGAPID)

	// A later transport must not rebind the id.
	rebind := ngap.NewInitiatingMessage(ngap.ProcedureCodeDownlinkNASTransport, ngap.CriticalityIgnore, ngap.IEs{
		ngap.IERANUENGAPID: ranID,
		ngap.IEAMFUENGAPID: 999,
	})
	resp = doJSON(t, http.MethodPost, srv.URL+"/ngap/downlink-nas-transport", rebind)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	ue, _ = svc.state.Get(ranID)
	assert.Equal(t, uint64(100), ue.AMFUENGAPID)
}

func TestDownlinkNASTransportUnknownContext(t *testing.T) {
	_, srv := newTestServer(t, "")

	pdu := ngap.NewInitiatingMessage(ngap.ProcedureCodeDownlinkNASTransport, ngap.CriticalityIgnore, ngap.IEs{
		ngap.IERANUENGAPID: 42,
		ngap.IEAMFUENGAPID: 1,
	})
	resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/downlink-nas-transport", pdu)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var problem sbi.Problem
	decodeInto(t, resp, &problem)
	assert.Equal(t, sbi.CauseContextNotFound, problem.Cause)
}

func TestUEContextSetup(t *testing.T) {
	_, amfSrv := newCoreNode(t)
	svc, srv := newTestServer(t, amfSrv.URL)

	ranID := sendInitialUE(t, srv, "payload")

	pdu := ngap.NewInitiatingMessage(ngap.ProcedureCodeUEContextSetup, ngap.CriticalityReject, ngap.IEs{
		ngap.IERANUENGAPID:            ranID,
		ngap.IEAMFUENGAPID:            7,
		ngap.IESecurityKey:            "kgnb-hex",
		ngap.IEUESecurityCapabilities: map[string]any{"nea": []any{"NEA1"}},
	})
	resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/ue-context-setup-request", pdu)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var outcome ngap.PDU
	decodeInto(t, resp, &outcome)
	require.True(t, outcome.IsSuccess())
	echoed, _ := outcome.IEs().Int(ngap.IERANUENGAPID)
	assert.Equal(t, int(ranID), echoed)

	ue, ok := svc.state.Get(ranID)
	require.True(t, ok)
	assert.Equal(t, UEStateConnected, ue.State)
	require.NotNil(t, ue.Security)
	assert.Equal(t, "kgnb-hex", ue.Security.SecurityKey)
}

func TestUEContextSetupUnknownUE(t *testing.T) {
	_, srv := newTestServer(t, "")

	pdu := ngap.NewInitiatingMessage(ngap.ProcedureCodeUEContextSetup, ngap.CriticalityReject, ngap.IEs{
		ngap.IERANUENGAPID: 42,
		ngap.IEAMFUENGAPID: 7,
	})
	resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/ue-context-setup-request", pdu)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var outcome ngap.PDU
	decodeInto(t, resp, &outcome)
	require.NotNil(t, outcome.UnsuccessfulOutcome)

	cause := outcome.IEs().Map(ngap.IECause)
	assert.Equal(t, ngap.CauseUnknownLocalUENGAPID, cause["radioNetwork"])
}

func TestPDUSessionResourceSetup(t *testing.T) {
	_, amfSrv := newCoreNode(t)
	svc, srv := newTestServer(t, amfSrv.URL)

	ranID := sendInitialUE(t, srv, "payload")

	pdu := ngap.NewInitiatingMessage(ngap.ProcedureCodePDUSessionResourceSetup, ngap.CriticalityReject, ngap.IEs{
		ngap.IERANUENGAPID: ranID,
		ngap.IEAMFUENGAPID: 7,
		ngap.IESetupListSUReq: []any{
			map[string]any{"pduSessionID": 1},
			map[string]any{"pduSessionID": 2},
		},
	})
	resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/pdu-session-resource-setup-request", pdu)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var outcome ngap.PDU
	decodeInto(t, resp, &outcome)
	require.True(t, outcome.IsSuccess())

	setup := outcome.IEs().List(ngap.IESetupListSURes)
	assert.Len(t, setup, 2)
	assert.Nil(t, outcome.IEs().List(ngap.IEFailedListSURes))

	ue, _ := svc.state.Get(ranID)
	assert.Len(t, ue.PDUSessions, 2)
}

func TestPDUSessionResourceSetupUnknownUE(t *testing.T) {
	_, srv := newTestServer(t, "")

	pdu := ngap.NewInitiatingMessage(ngap.ProcedureCodePDUSessionResourceSetup, ngap.CriticalityReject, ngap.IEs{
		ngap.IERANUENGAPID: 42,
		ngap.IEAMFUENGAPID: 7,
		ngap.IESetupListSUReq: []any{
			map[string]any{"pduSessionID": 1},
		},
	})
	resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/pdu-session-resource-setup-request", pdu)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var outcome ngap.PDU
	decodeInto(t, resp, &outcome)
	failed := outcome.IEs().List(ngap.IEFailedListSURes)
	require.Len(t, failed, 1)
	assert.Nil(t, outcome.IEs().List(ngap.IESetupListSURes))
}

func TestHandoverRequest(t *testing.T) {
	svc, srv := newTestServer(t, "")

	pdu := ngap.NewInitiatingMessage(ngap.ProcedureCodeHandoverRequest, ngap.CriticalityReject, ngap.IEs{
		ngap.IEAMFUENGAPID:  55,
		ngap.IEHandoverType: "intra5gs",
	})
	resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/handover-request", pdu)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var outcome ngap.PDU
	decodeInto(t, resp, &outcome)
	require.True(t, outcome.IsSuccess())
	assert.Equal(t, ngap.ProcedureCodeHandoverRequestAcknowledge, outcome.SuccessfulOutcome.ProcedureCode)
	assert.Equal(t, "handover-command-data", outcome.IEs().String(ngap.IETargetToSourceContainer))

	targetID, ok := outcome.IEs().Int(ngap.IERANUENGAPID)
	require.True(t, ok)

	ue, found := svc.state.Get(uint64(targetID))
	require.True(t, found)
	assert.Equal(t, UEStateConnected, ue.State)
	assert.Equal(t, uint64(55), ue.AMFUENGAPID)
}

func TestHandoverRequestMissingAMFID(t *testing.T) {
	_, srv := newTestServer(t, "")

	pdu := ngap.NewInitiatingMessage(ngap.ProcedureCodeHandoverRequest, ngap.CriticalityReject, ngap.IEs{
		ngap.IEHandoverType: "intra5gs",
	})
	resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/handover-request", pdu)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var outcome ngap.PDU
	decodeInto(t, resp, &outcome)
	require.NotNil(t, outcome.UnsuccessfulOutcome)
	assert.Equal(t, ngap.ProcedureCodeHandoverPreparationFailure, outcome.UnsuccessfulOutcome.ProcedureCode)

	cause := outcome.IEs().Map(ngap.IECause)
	assert.Equal(t, ngap.CauseHandoverTargetNotAllowed, cause["radioNetwork"])
}

func TestUplinkNASTransport(t *testing.T) {
	amf, amfSrv := newCoreNode(t)
	_, srv := newTestServer(t, amfSrv.URL)

	ranID := sendInitialUE(t, srv, "payload")

	bind := ngap.NewInitiatingMessage(ngap.ProcedureCodeDownlinkNASTransport, ngap.CriticalityIgnore, ngap.IEs{
		ngap.IERANUENGAPID: ranID,
		ngap.IEAMFUENGAPID: 100,
	})
	resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/downlink-nas-transport", bind)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/ngap/uplink-nas-transport", map[string]any{
		"ranUeNgapId": ranID,
		"nasPdu":      "authentication-response",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	amf.mu.Lock()
	defer amf.mu.Unlock()
	require.Len(t, amf.uplink, 1)

	ies := amf.uplink[0].IEs()
	amfID, _ := ies.Int(ngap.IEAMFUENGAPID)
	assert.Equal(t, 100, amfID)
	assert.Equal(t, "authentication-response", ies.String(ngap.IENASPDU))
}

func TestUplinkNASTransportUnboundContext(t *testing.T) {
	_, amfSrv := newCoreNode(t)
	_, srv := newTestServer(t, amfSrv.URL)

	// Context exists but the AMF side never bound.
	ranID := sendInitialUE(t, srv, "payload")

	resp := doJSON(t, http.MethodPost, srv.URL+"/ngap/uplink-nas-transport", map[string]any{
		"ranUeNgapId": ranID,
		"nasPdu":      "payload",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/ngap/uplink-nas-transport", map[string]any{
		"ranUeNgapId": 999,
		"nasPdu":      "payload",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestStatusAndCellContexts(t *testing.T) {
	_, srv := newTestServer(t, "")

	resp := doJSON(t, http.MethodGet, srv.URL+"/gnb/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := map[string]any{}
	decodeInto(t, resp, &status)
	assert.Equal(t, "OPERATIONAL", status["status"])
	assert.Equal(t, false, status["amfConnected"])
	assert.Equal(t, float64(1), status["servedCells"])

	resp = doJSON(t, http.MethodGet, srv.URL+"/gnb/cell-contexts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cells struct {
		TotalCells   int `json:"totalCells"`
		CellContexts map[string]struct {
			NRCGI struct {
				NRCellIdentity string `json:"nrCellIdentity"`
			} `json:"nrCgi"`
			CellState string `json:"cellState"`
		} `json:"cellContexts"`
	}
	decodeInto(t, resp, &cells)
	assert.Equal(t, 1, cells.TotalCells)
	cell := cells.CellContexts["000000001"]
	assert.Equal(t, "ACTIVE", cell.CellState)
	assert.Len(t, cell.NRCGI.NRCellIdentity, 36)
}
