package udm

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

const procedureVectorGeneration = "AUTH_VECTOR_GENERATION"

// Routes mounts the Nudm service routes: UE context management, the
// subscriber data surface, authentication data generation, and the status
// and legacy service-information endpoints.
func (s *Service) Routes(r chi.Router) {
	r.Route("/nudm-uecm/v1/{supi}/registrations/amf-3gpp-access", func(r chi.Router) {
		r.Post("/", s.handleRegisterAMF)
		r.Get("/", s.handleGetRegistration)
		r.Patch("/", s.handleUpdateRegistration)
		r.Delete("/", s.handleDeregisterAMF)
	})

	r.Route("/nudm-sdm/v1/{supi}", func(r chi.Router) {
		r.Get("/am-data", s.handleAMData)
		r.Get("/sm-data", s.handleSMData)
		r.Get("/nssai", s.handleNSSAI)
	})

	r.Post("/nudm-ueau/v1/{supi}/security-information/generate-auth-data", s.handleGenerateAuthData)

	r.Get("/udm/status", s.handleStatus)
	r.Get("/udm_service", s.handleServiceInfo)
}

// handleRegisterAMF stores which AMF serves the UE. A second registration
// replaces the previous one, which is the implicit deregistration of the
// old AMF.
func (s *Service) handleRegisterAMF(w http.ResponseWriter, r *http.Request) {
	supi := chi.URLParam(r, "supi")

	var reg models.AMF3GPPAccessRegistration
	if !sbi.DecodeJSON(w, r, &reg) {
		return
	}

	if !s.state.HasSubscriber(supi) {
		sbi.NotFoundCause(w, "unknown subscriber "+supi, sbi.CauseContextNotFound)
		return
	}
	if reg.AMFInstanceID == "" {
		sbi.BadRequestCause(w, "amfInstanceId is required", sbi.CauseMandatoryIEMissing)
		return
	}
	if reg.DeregCallbackURI == "" {
		sbi.BadRequestCause(w, "deregCallbackUri is required", sbi.CauseMandatoryIEMissing)
		return
	}
	if reg.GUAMI == nil {
		sbi.BadRequestCause(w, "guami is required", sbi.CauseMandatoryIEMissing)
		return
	}
	if reg.RATType == "" {
		reg.RATType = "NR"
	}
	if reg.RegistrationTime == nil {
		now := time.Now().UTC()
		reg.RegistrationTime = &now
	}

	replaced := s.state.SetRegistration(supi, &reg)
	_, activeUEs, _, _ := s.state.Counts()
	s.procedures.SetRegisteredUEs(activeUEs)

	logger.Info("AMF registered for subscriber",
		logger.Supi(supi),
		"amf_instance_id", reg.AMFInstanceID,
		"replaced", replaced,
	)

	sbi.WriteJSONOK(w, models.RegistrationResult{
		RegistrationID: uuid.NewString(),
		Registration:   &reg,
	})
}

func (s *Service) handleGetRegistration(w http.ResponseWriter, r *http.Request) {
	supi := chi.URLParam(r, "supi")

	reg, ok := s.state.Registration(supi)
	if !ok {
		sbi.NotFoundCause(w, "no AMF registration for "+supi, sbi.CauseContextNotFound)
		return
	}
	sbi.WriteJSONOK(w, reg)
}

// handleUpdateRegistration applies a partial update to the stored
// registration. Only fields present in the body change.
func (s *Service) handleUpdateRegistration(w http.ResponseWriter, r *http.Request) {
	supi := chi.URLParam(r, "supi")

	patch, err := io.ReadAll(r.Body)
	if err != nil {
		sbi.BadRequest(w, "reading request body: "+err.Error())
		return
	}

	found, err := s.state.MergeRegistration(supi, patch)
	if !found {
		sbi.NotFoundCause(w, "no AMF registration for "+supi, sbi.CauseContextNotFound)
		return
	}
	if err != nil {
		sbi.BadRequestCause(w, err.Error(), sbi.CauseInvalidParameter)
		return
	}

	logger.Debug("AMF registration updated", logger.Supi(supi))
	sbi.WriteJSONOK(w, map[string]string{"message": "AMF registration updated successfully"})
}

// handleDeregisterAMF clears the serving AMF and moves the UE context to
// DEREGISTERED. Deregistering twice is not an error.
func (s *Service) handleDeregisterAMF(w http.ResponseWriter, r *http.Request) {
	supi := chi.URLParam(r, "supi")

	if !s.state.HasSubscriber(supi) {
		sbi.NotFoundCause(w, "unknown subscriber "+supi, sbi.CauseContextNotFound)
		return
	}

	existed := s.state.DeleteRegistration(supi)
	_, activeUEs, _, _ := s.state.Counts()
	s.procedures.SetRegisteredUEs(activeUEs)

	logger.Info("AMF deregistered for subscriber", logger.Supi(supi), "had_registration", existed)
	sbi.WriteJSONOK(w, map[string]string{"message": "AMF deregistration successful"})
}

func (s *Service) handleAMData(w http.ResponseWriter, r *http.Request) {
	supi := chi.URLParam(r, "supi")

	am, ok := s.state.AMData(supi)
	if !ok {
		sbi.NotFoundCause(w, "no subscription data for "+supi, sbi.CauseContextNotFound)
		return
	}
	sbi.WriteJSONOK(w, am)
}

// handleSMData returns session-management data, narrowed to one DNN when
// the dnn query parameter is present.
func (s *Service) handleSMData(w http.ResponseWriter, r *http.Request) {
	supi := chi.URLParam(r, "supi")

	sm, ok := s.state.SMData(supi)
	if !ok {
		sbi.NotFoundCause(w, "no subscription data for "+supi, sbi.CauseContextNotFound)
		return
	}

	if dnn := r.URL.Query().Get("dnn"); dnn != "" {
		cfg, provisioned := sm.DNNConfigurations[dnn]
		if !provisioned {
			sbi.NotFoundCause(w, "DNN "+dnn+" not provisioned for "+supi, sbi.CauseContextNotFound)
			return
		}
		sm = &models.SessionManagementSubscriptionData{
			SingleNSSAI:       sm.SingleNSSAI,
			DNNConfigurations: map[string]models.DNNConfiguration{dnn: cfg},
		}
	}

	sbi.WriteJSONOK(w, sm)
}

func (s *Service) handleNSSAI(w http.ResponseWriter, r *http.Request) {
	supi := chi.URLParam(r, "supi")

	am, ok := s.state.AMData(supi)
	if !ok || am.NSSAI == nil {
		sbi.NotFoundCause(w, "no slice selection data for "+supi, sbi.CauseContextNotFound)
		return
	}
	sbi.WriteJSONOK(w, am.NSSAI)
}

// handleGenerateAuthData derives a fresh 5G-AKA vector for the AUSF and
// records the attempt in the subscriber's authentication history.
func (s *Service) handleGenerateAuthData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	supi := chi.URLParam(r, "supi")

	var req models.AuthenticationInfoRequest
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}
	if req.ServingNetworkName == "" {
		sbi.BadRequestCause(w, "servingNetworkName is required", sbi.CauseMandatoryIEMissing)
		return
	}

	vector, ok, err := s.state.GenerateVector(supi, req.ServingNetworkName)
	if !ok {
		s.procedures.RecordProcedure(procedureVectorGeneration, "failure", time.Since(start))
		sbi.NotFoundCause(w, "no authentication subscription for "+supi, sbi.CauseContextNotFound)
		return
	}
	if err != nil {
		s.procedures.RecordProcedure(procedureVectorGeneration, "failure", time.Since(start))
		logger.Error("Vector derivation failed", logger.Supi(supi), logger.Err(err))
		sbi.InternalServerError(w, "vector derivation failed")
		return
	}

	s.state.RecordAuthEvent(supi, models.AuthEvent{
		NFInstanceID:       req.AUSFInstanceID,
		Success:            true,
		TimeStamp:          time.Now().UTC(),
		AuthType:           models.AuthMethod5GAKA,
		ServingNetworkName: req.ServingNetworkName,
	})
	s.procedures.RecordProcedure(procedureVectorGeneration, "success", time.Since(start))

	logger.Info("Authentication vector generated",
		logger.Supi(supi),
		logger.ServingNetwork(req.ServingNetworkName),
	)

	sbi.WriteJSONOK(w, map[string]any{
		"authenticationVector": vector,
		"supi":                 supi,
	})
}

// handleStatus exposes the subscriber roster, the live UE contexts, and the
// per-SUPI authentication history.
func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	subscribers, activeUEs, registrations, _ := s.state.Counts()

	sbi.WriteJSONOK(w, map[string]any{
		"nfInstanceId":         s.instanceID,
		"nfType":               models.NFTypeUDM,
		"name":                 s.name,
		"status":               "OPERATIONAL",
		"supportedServices":    supportedServices,
		"subscribers":          s.state.Subscribers(),
		"subscriberCount":      subscribers,
		"registeredUes":        activeUEs,
		"amfRegistrations":     registrations,
		"ueContexts":           s.state.UEContexts(),
		"authenticationEvents": s.state.AuthEvents(),
	})
}

// handleServiceInfo is the flat service announcement kept for callers of
// the pre-SBA API.
func (s *Service) handleServiceInfo(w http.ResponseWriter, r *http.Request) {
	sbi.WriteJSONOK(w, map[string]any{
		"message":            "UDM service response",
		"compliance":         "3GPP TS 29.503",
		"status":             "OPERATIONAL",
		"supported_services": supportedServices,
	})
}
