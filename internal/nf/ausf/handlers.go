package ausf

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/telemetry"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

const (
	procedure5GAKA = "5G_AKA"

	authenticationsPath = "/nausf-auth/v1/ue-authentications"
)

// Routes mounts the Nausf_UEAuthentication routes plus the status and
// legacy service-information endpoints.
func (s *Service) Routes(r chi.Router) {
	r.Route(authenticationsPath, func(r chi.Router) {
		r.Post("/", s.handleStartAuthentication)
		r.Route("/{authCtxId}", func(r chi.Router) {
			r.Get("/", s.handleGetContext)
			r.Delete("/", s.handleDeleteContext)
			r.Put("/5g-aka-confirmation", s.handleConfirmation)
		})
	})

	r.Get("/ausf/status", s.handleStatus)
	r.Get("/ausf_service", s.handleServiceInfo)
}

// handleStartAuthentication opens a 5G-AKA run: de-conceal the identity,
// obtain a vector, and hand the AMF the challenge plus the confirmation
// link.
func (s *Service) handleStartAuthentication(w http.ResponseWriter, r *http.Request) {
	var info models.AuthenticationInfo
	if !sbi.DecodeJSON(w, r, &info) {
		return
	}

	if info.SUPIOrSUCI == "" {
		sbi.BadRequestCause(w, "supiOrSuci is required", sbi.CauseMandatoryIEMissing)
		return
	}
	if info.ServingNetworkName == "" {
		sbi.BadRequestCause(w, "servingNetworkName is required", sbi.CauseMandatoryIEMissing)
		return
	}

	supi := deconcealSUCI(info.SUPIOrSUCI)

	ctx, span := telemetry.StartSBISpan(r.Context(), "nausf-auth", "UEAuthentications", telemetry.Supi(supi))
	defer span.End()
	r = r.WithContext(ctx)

	vector, source, err := s.obtainVector(r.Context(), supi, info.ServingNetworkName)
	if err != nil {
		logger.Error("Vector generation failed", logger.Supi(supi), logger.Err(err))
		sbi.InternalServerError(w, "could not generate authentication vector")
		return
	}

	// The expected response always travels under HXRESStar inside the
	// context, whatever field the vector source populated.
	vector.HXRESStar = vector.ExpectedResponse()
	vector.XRES = ""

	authCtxID := uuid.NewString()
	s.state.Add(authCtxID, &AuthContext{
		SUPI:               supi,
		ServingNetworkName: info.ServingNetworkName,
		AuthType:           models.AuthMethod5GAKA,
		Vector:             *vector,
		Status:             CtxStatusOngoing,
		CreatedAt:          time.Now().UTC(),
	})

	location := authenticationsPath + "/" + authCtxID
	logger.Info("5G-AKA authentication started",
		logger.Supi(supi),
		logger.AuthCtxID(authCtxID),
		logger.ServingNetwork(info.ServingNetworkName),
		"vectorSource", source,
	)

	w.Header().Set("Location", location)
	sbi.WriteJSONCreated(w, models.UEAuthenticationCtx{
		AuthType:             models.AuthMethod5GAKA,
		AuthenticationVector: vector,
		SUPI:                 supi,
		Links: map[string]models.Link{
			"5g-aka": {Href: location + "/5g-aka-confirmation"},
		},
	})
}

// obtainVector asks the subscriber store for a vector and derives one
// locally when the store cannot serve. The source tag says which path
// produced it.
func (s *Service) obtainVector(ctx context.Context, supi, servingNetworkName string) (*models.AuthenticationVector, string, error) {
	vector, err := s.vectorFromUDM(ctx, supi, servingNetworkName)
	if err == nil {
		return vector, "udm", nil
	}

	logger.Warn("Subscriber store unavailable, deriving local vector",
		logger.Supi(supi),
		logger.Err(err),
	)
	vector, err = fallbackVector(supi)
	if err != nil {
		return nil, "", err
	}
	return vector, "local", nil
}

// vectorFromUDM fetches a fresh vector from the subscriber store. A
// transport-level failure invalidates the cached store address so the
// next attempt re-discovers.
func (s *Service) vectorFromUDM(ctx context.Context, supi, servingNetworkName string) (*models.AuthenticationVector, error) {
	client, err := s.udmClient(ctx)
	if err != nil {
		return nil, err
	}

	var result struct {
		AuthenticationVector *models.AuthenticationVector `json:"authenticationVector"`
		SUPI                 string                       `json:"supi"`
	}
	err = client.Post(ctx,
		"/nudm-ueau/v1/"+supi+"/security-information/generate-auth-data",
		models.AuthenticationInfoRequest{
			ServingNetworkName: servingNetworkName,
			AUSFInstanceID:     s.instanceID,
		},
		&result,
	)
	if err != nil {
		if _, isAPI := sbi.AsAPIError(err); !isAPI && s.registry != nil {
			s.registry.Invalidate(models.NFTypeUDM)
		}
		return nil, err
	}
	if result.AuthenticationVector == nil {
		return nil, fmt.Errorf("subscriber store returned no vector for %s", supi)
	}
	return result.AuthenticationVector, nil
}

// handleConfirmation closes a 5G-AKA run with the UE response. A context
// that already reached a terminal status replays its stored outcome.
func (s *Service) handleConfirmation(w http.ResponseWriter, r *http.Request) {
	authCtxID := chi.URLParam(r, "authCtxId")

	var confirmation models.ConfirmationData
	if !sbi.DecodeJSON(w, r, &confirmation) {
		return
	}
	if confirmation.ResStar == "" {
		sbi.BadRequestCause(w, "resStar is required", sbi.CauseMandatoryIEMissing)
		return
	}

	result := s.state.Confirm(authCtxID, confirmation.ResStar)
	if !result.Found {
		sbi.NotFoundCause(w, "authentication context "+authCtxID+" not found", sbi.CauseContextNotFound)
		return
	}

	if !result.Replayed {
		outcome := "failure"
		authResult := "failure"
		if result.Ctx.Status == CtxStatusSuccess {
			outcome    = "success"
			authResult = "success"
		}
		s.procedures.RecordAuthResult(authResult)
		s.procedures.RecordProcedure(procedure5GAKA, outcome, time.Since(result.Ctx.CreatedAt))
	}

	response := models.ConfirmationDataResponse{AuthResult: models.AuthResultFailure}
	if result.Ctx.Status == CtxStatusSuccess {
		vector := result.Ctx.Vector
		response = models.ConfirmationDataResponse{
			AuthResult:           models.AuthResultSuccess,
			SUPI:                 result.Ctx.SUPI,
			KSEAF:                result.Ctx.KSEAF,
			AuthenticationVector: &vector,
		}
	}

	logger.Info("5G-AKA confirmation",
		logger.AuthCtxID(authCtxID),
		logger.Supi(result.Ctx.SUPI),
		logger.AuthResult(response.AuthResult),
		"replayed", result.Replayed,
	)
	sbi.WriteJSONOK(w, response)
}

// handleGetContext returns the observable part of an authentication
// context. The vector and keys stay server-side.
func (s *Service) handleGetContext(w http.ResponseWriter, r *http.Request) {
	authCtxID := chi.URLParam(r, "authCtxId")

	ctx, ok := s.state.Get(authCtxID)
	if !ok {
		sbi.NotFoundCause(w, "authentication context "+authCtxID+" not found", sbi.CauseContextNotFound)
		return
	}

	body := map[string]any{
		"authCtxId":          authCtxID,
		"authType":           ctx.AuthType,
		"status":             ctx.Status,
		"supi":               ctx.SUPI,
		"servingNetworkName": ctx.ServingNetworkName,
		"createdAt":          ctx.CreatedAt.Format(time.RFC3339),
	}
	if ctx.CompletedAt != nil {
		body["completedAt"] = ctx.CompletedAt.Format(time.RFC3339)
	}
	sbi.WriteJSONOK(w, body)
}

// handleDeleteContext discards an authentication context.
func (s *Service) handleDeleteContext(w http.ResponseWriter, r *http.Request) {
	authCtxID := chi.URLParam(r, "authCtxId")

	if !s.state.Delete(authCtxID) {
		sbi.NotFoundCause(w, "authentication context "+authCtxID+" not found", sbi.CauseContextNotFound)
		return
	}
	logger.Info("Authentication context deleted", logger.AuthCtxID(authCtxID))
	sbi.WriteJSONOK(w, map[string]string{"message": "Authentication context deleted"})
}

// handleStatus reports the context population and authentication outcome
// rates.
func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	total, ongoing, succeeded, failed := s.state.Counts()

	successRate := 0.0
	if completed := succeeded + failed; completed > 0 {
		successRate = float64(succeeded) / float64(completed)
	}

	sbi.WriteJSONOK(w, map[string]any{
		"nfInstanceId":              s.instanceID,
		"nfType":                    models.NFTypeAUSF,
		"name":                      s.name,
		"status":                    "OPERATIONAL",
		"supportedAuthTypes":        supportedAuthTypes,
		"authenticationContexts":    total,
		"ongoingAuthentications":    ongoing,
		"successfulAuthentications": succeeded,
		"failedAuthentications":     failed,
		"successRate":               successRate,
	})
}

// handleServiceInfo is the legacy service-information endpoint.
func (s *Service) handleServiceInfo(w http.ResponseWriter, r *http.Request) {
	sbi.WriteJSONOK(w, map[string]any{
		"message":              "AUSF service response",
		"compliance":           "3GPP TS 29.509",
		"status":               "OPERATIONAL",
		"supported_auth_types": supportedAuthTypes,
	})
}
