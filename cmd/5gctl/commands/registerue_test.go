package commands

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drcoopertbbt/BF3-5G-Demo/cmd/5gctl/cmdutil"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

func amfClient(t *testing.T, handler http.Handler) *sbi.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return sbi.NewClient("AMF", srv.URL, 2*time.Second, nil)
}

func writeJSON(t *testing.T, w http.ResponseWriter, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestDriveRegistrationDirectAccept(t *testing.T) {
	registerSUCI = "suci-0-001-01-0000-0-0-0000000042"

	mux := http.NewServeMux()
	mux.HandleFunc("/nas/registration-request", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"status": "REGISTRATION_ACCEPT",
			"guti":   "5g-guti-00101-cafe00-1a2b3c4d",
		})
	})

	outcome, err := driveRegistration(context.Background(), amfClient(t, mux))
	require.NoError(t, err)
	assert.Equal(t, "REGISTRATION_ACCEPT", outcome.Status)
	assert.Equal(t, "imsi-0000000042", outcome.SUPI)
	assert.Equal(t, "5g-guti-00101-cafe00-1a2b3c4d", outcome.GUTI)
}

func TestDriveRegistrationWithChallenge(t *testing.T) {
	registerSUCI = "suci-0-001-01-0000-0-0-0000000001"
	registerRes = ""
	registerIMEISV = "3534900698731412"

	var gotAuth struct {
		SUPI          string `json:"supi"`
		AuthResponse  string `json:"authResponse"`
		AuthContextID string `json:"authContextId"`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/nas/registration-request", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"status": "AUTHENTICATION_REQUIRED",
			"nas_message": map[string]any{
				"authentication_parameter_rand": "aabb",
				"authentication_parameter_autn": "ccdd",
			},
			"links": map[string]any{
				"5g-aka": map[string]any{
					"href": "http://ausf/nausf-auth/v1/ue-authentications/ctx-42/5g-aka-confirmation",
				},
			},
		})
	})
	mux.HandleFunc("/nas/authentication-response", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotAuth))
		writeJSON(t, w, map[string]any{"status": "AUTHENTICATION_SUCCESS"})
	})
	mux.HandleFunc("/nas/security-mode-complete", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"status":      "REGISTRATION_COMPLETE",
			"nas_message": map[string]any{"mobile_identity": "5g-guti-00101-cafe00-0000002a"},
		})
	})

	outcome, err := driveRegistration(context.Background(), amfClient(t, mux))
	require.NoError(t, err)
	assert.Equal(t, "REGISTRATION_COMPLETE", outcome.Status)
	assert.Equal(t, "5g-guti-00101-cafe00-0000002a", outcome.GUTI)

	assert.Equal(t, "imsi-0000000001", gotAuth.SUPI)
	assert.Equal(t, "ctx-42", gotAuth.AuthContextID)
	assert.Equal(t, fallbackChallengeResponse("imsi-0000000001", "aabb", "ccdd"), gotAuth.AuthResponse)
}

func TestDriveRegistrationAuthenticationFailure(t *testing.T) {
	registerSUCI = "suci-0-001-01-0000-0-0-0000000002"
	registerRes = "wrong"

	mux := http.NewServeMux()
	mux.HandleFunc("/nas/registration-request", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"status":      "AUTHENTICATION_REQUIRED",
			"nas_message": map[string]any{"authentication_parameter_rand": "aa"},
			"links":       map[string]any{"5g-aka": map[string]any{"href": "u/ctx-1/5g-aka-confirmation"}},
		})
	})
	mux.HandleFunc("/nas/authentication-response", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"status": "AUTHENTICATION_FAILURE", "cause": 20})
	})

	outcome, err := driveRegistration(context.Background(), amfClient(t, mux))
	require.NoError(t, err)
	assert.Equal(t, "AUTHENTICATION_FAILURE", outcome.Status)
	assert.Contains(t, outcome.Detail, "cause 20")
}

func TestSupiFromSUCI(t *testing.T) {
	assert.Equal(t, "imsi-0000000001", supiFromSUCI("suci-0-001-01-0000-0-0-0000000001"))
	assert.Equal(t, "imsi-001010000000001", supiFromSUCI("imsi-001010000000001"))
}

func TestFallbackChallengeResponseIsStable(t *testing.T) {
	first := fallbackChallengeResponse("imsi-1", "rand", "autn")
	assert.Len(t, first, 16)
	assert.Equal(t, first, fallbackChallengeResponse("imsi-1", "rand", "autn"))
	assert.NotEqual(t, first, fallbackChallengeResponse("imsi-2", "rand", "autn"))
}

func TestConfirmationContextID(t *testing.T) {
	links := map[string]models.Link{
		"5g-aka": {Href: "http://ausf/nausf-auth/v1/ue-authentications/ctx-9/5g-aka-confirmation"},
	}
	assert.Equal(t, "ctx-9", confirmationContextID(links))
	assert.Equal(t, "", confirmationContextID(nil))
}

func TestPollFunctionReportsDown(t *testing.T) {
	cmdutil.Flags.Timeout = time.Second

	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	row := pollFunction(context.Background(), networkFunction{Name: "AMF", URL: dead.URL})
	assert.Equal(t, "DOWN", row.Status)

	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"status":       "healthy",
			"nfType":       "AMF",
			"nfInstanceId": "id-1",
			"uptime":       "90s",
		})
	}))
	defer up.Close()

	row = pollFunction(context.Background(), networkFunction{Name: "AMF", URL: up.URL})
	assert.Equal(t, "UP", row.Status)
	assert.Equal(t, "id-1", row.InstanceID)
	assert.Equal(t, "1m 30s", row.Uptime)
}
