package nrf

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

// subscriptionValidity is the default lifetime of a status subscription
// created without an explicit validityTime.
const subscriptionValidity = 24 * time.Hour

// Routes mounts the repository service routes: the token endpoint, the
// token-gated management and discovery surfaces, and the ungated legacy
// register/discover pair.
func (s *Service) Routes(r chi.Router) {
	r.Post("/oauth2/token", s.handleToken)

	r.Route("/nnrf-nfm/v1", func(r chi.Router) {
		r.Use(sbi.RequireToken(s.gate, "nnrf-nfm"))
		r.Route("/nf-instances", func(r chi.Router) {
			r.Get("/", s.handleListInstances)
			r.Put("/{nfInstanceID}", s.handleRegister)
			r.Get("/{nfInstanceID}", s.handleGetInstance)
			r.Patch("/{nfInstanceID}", s.handleUpdateInstance)
			r.Delete("/{nfInstanceID}", s.handleDeregister)
		})
		r.Post("/subscriptions", s.handleSubscribe)
	})

	r.Route("/nnrf-disc/v1", func(r chi.Router) {
		r.Use(sbi.RequireToken(s.gate, "nnrf-disc"))
		r.Get("/nf-instances", s.handleSearch)
	})

	r.Post("/register", s.handleLegacyRegister)
	r.Get("/discover/{nfType}", s.handleLegacyDiscover)
}

// handleToken implements the client-credentials token grant. Issuance is
// not itself token-gated.
func (s *Service) handleToken(w http.ResponseWriter, r *http.Request) {
	var req models.AccessTokenRequest
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	if req.GrantType != models.GrantTypeClientCredentials {
		sbi.BadRequestCause(w, "unsupported grant_type "+strconv.Quote(req.GrantType), sbi.CauseInvalidParameter)
		return
	}

	scope := req.Scope
	if scope == "" {
		scope = models.ScopeNRFDefault
	}

	clientID := "nf-client-" + uuid.NewString()[:8]
	token, _, err := s.tokens.IssueToken(clientID, scope)
	if err != nil {
		logger.Error("Token issuance failed", logger.Err(err))
		sbi.InternalServerError(w, "token issuance failed")
		return
	}

	s.procedures.RecordTokenIssued()
	logger.Info("Access token issued", "client_id", clientID, "scope", scope)

	sbi.WriteJSONOK(w, models.AccessTokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokens.TokenTTL().Seconds()),
		Scope:       scope,
	})
}

// handleRegister stores a profile under the path instance id. Responds 201
// on first registration, 200 on replacement.
func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	instanceID := chi.URLParam(r, "nfInstanceID")

	var profile models.NFProfile
	if !sbi.DecodeJSON(w, r, &profile) {
		return
	}

	if profile.NFInstanceID != instanceID {
		sbi.BadRequestCause(w, "nfInstanceId in body does not match request path", sbi.CauseInvalidParameter)
		return
	}
	if !profile.NFType.IsValid() {
		sbi.BadRequestCause(w, "unknown nfType "+strconv.Quote(string(profile.NFType)), sbi.CauseInvalidParameter)
		return
	}
	if profile.NFStatus == "" {
		profile.NFStatus = models.NFStatusRegistered
	}
	if profile.RecoveryTime == nil {
		now := time.Now().UTC()
		profile.RecoveryTime = &now
	}

	existed := s.state.Upsert(&profile)

	logger.Info("NF instance registered",
		logger.NFInstanceID(instanceID),
		logger.NFType(string(profile.NFType)),
		logger.NFStatus(string(profile.NFStatus)),
	)

	if existed {
		sbi.WriteJSONOK(w, &profile)
	} else {
		sbi.WriteJSONCreated(w, &profile)
	}
}

func (s *Service) handleGetInstance(w http.ResponseWriter, r *http.Request) {
	instanceID := chi.URLParam(r, "nfInstanceID")

	profile, ok := s.state.Get(instanceID)
	if !ok {
		sbi.NotFoundCause(w, "NF instance "+instanceID+" is not registered", sbi.CauseContextNotFound)
		return
	}
	sbi.WriteJSONOK(w, &profile)
}

// handleListInstances lists registered profiles, optionally narrowed by
// the nf-type query parameter. Unknown types yield an empty list rather
// than an error so legacy-registered types remain listable.
func (s *Service) handleListInstances(w http.ResponseWriter, r *http.Request) {
	nfType := models.NFType(strings.ToUpper(r.URL.Query().Get("nf-type")))
	sbi.WriteJSONOK(w, s.state.List(nfType))
}

// handleUpdateInstance applies heartbeat-style JSON-Patch updates to a
// registered profile.
func (s *Service) handleUpdateInstance(w http.ResponseWriter, r *http.Request) {
	instanceID := chi.URLParam(r, "nfInstanceID")

	var items []models.PatchItem
	if !sbi.DecodeJSON(w, r, &items) {
		return
	}

	if !s.state.Patch(instanceID, items) {
		sbi.NotFoundCause(w, "NF instance "+instanceID+" is not registered", sbi.CauseContextNotFound)
		return
	}

	logger.Debug("NF instance updated", logger.NFInstanceID(instanceID), "operations", len(items))
	sbi.WriteJSONOK(w, map[string]string{"message": "NF instance updated"})
}

func (s *Service) handleDeregister(w http.ResponseWriter, r *http.Request) {
	instanceID := chi.URLParam(r, "nfInstanceID")

	if !s.state.Delete(instanceID) {
		sbi.NotFoundCause(w, "NF instance "+instanceID+" is not registered", sbi.CauseContextNotFound)
		return
	}

	logger.Info("NF instance deregistered", logger.NFInstanceID(instanceID))
	sbi.WriteNoContent(w)
}

// handleSearch implements directed discovery. Filters arrive as query
// parameters; snssais and target-plmn-list are JSON-encoded arrays.
func (s *Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := SearchQuery{
		TargetNFType:    models.NFType(strings.ToUpper(q.Get("target-nf-type"))),
		RequesterNFType: models.NFType(strings.ToUpper(q.Get("requester-nf-type"))),
	}

	if names := q.Get("service-names"); names != "" {
		query.ServiceNames = strings.Split(names, ",")
	}

	if raw := q.Get("snssais"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &query.SNSSAIs); err != nil {
			sbi.WriteProblemDetails(w, &sbi.Problem{
				Title:         "Bad Request",
				Status:        http.StatusBadRequest,
				Detail:        "snssais must be a JSON array of S-NSSAI objects",
				Cause:         sbi.CauseInvalidParameter,
				InvalidParams: []sbi.InvalidParam{{Param: "snssais", Reason: err.Error()}},
			})
			return
		}
	}

	if raw := q.Get("target-plmn-list"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &query.PLMNs); err != nil {
			sbi.WriteProblemDetails(w, &sbi.Problem{
				Title:         "Bad Request",
				Status:        http.StatusBadRequest,
				Detail:        "target-plmn-list must be a JSON array of PLMN ids",
				Cause:         sbi.CauseInvalidParameter,
				InvalidParams: []sbi.InvalidParam{{Param: "target-plmn-list", Reason: err.Error()}},
			})
			return
		}
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			sbi.BadRequestCause(w, "limit must be a positive integer", sbi.CauseInvalidParameter)
			return
		}
		query.Limit = limit
	}

	// The dnn parameter is accepted for interface compatibility but does
	// not narrow results: profiles do not carry per-DNN discovery keys.
	matches := s.state.Search(query)

	logger.Info("NF discovery completed",
		logger.TargetNF(string(query.TargetNFType)),
		"requester_nf_type", string(query.RequesterNFType),
		"matches", len(matches),
	)

	sbi.WriteJSONOK(w, models.SearchResult{
		ValidityPeriod:       3600,
		NFInstances:          matches,
		SearchID:             uuid.NewString(),
		NumNFInstComplete:    len(matches),
		NRFSupportedFeatures: supportedFeatures,
	})
}

// handleSubscribe records a status-change subscription.
func (s *Service) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var sub models.SubscriptionData
	if !sbi.DecodeJSON(w, r, &sub) {
		return
	}

	if sub.NFStatusNotificationURI == "" {
		sbi.WriteProblemDetails(w, &sbi.Problem{
			Title:         "Bad Request",
			Status:        http.StatusBadRequest,
			Detail:        "nfStatusNotificationUri is required",
			Cause:         sbi.CauseMandatoryIEMissing,
			InvalidParams: []sbi.InvalidParam{{Param: "nfStatusNotificationUri", Reason: "required"}},
		})
		return
	}

	sub.SubscriptionID = uuid.NewString()
	if sub.ValidityTime == nil {
		validity := time.Now().UTC().Add(subscriptionValidity)
		sub.ValidityTime = &validity
	}

	s.state.AddSubscription(&sub)

	logger.Info("Status subscription created",
		"subscription_id", sub.SubscriptionID,
		"notification_uri", sub.NFStatusNotificationURI,
	)

	sbi.WriteJSONCreated(w, &sub)
}

// handleLegacyRegister accepts the minimal {nf_type, ip, port} payload and
// synthesizes a modern profile from it. The type string is stored
// uppercased and is not restricted to the standard registry types, so RAN
// nodes can announce themselves here.
func (s *Service) handleLegacyRegister(w http.ResponseWriter, r *http.Request) {
	var req models.LegacyRegistration
	if !sbi.DecodeJSON(w, r, &req) {
		return
	}

	if req.NFType == "" {
		sbi.BadRequestCause(w, "nf_type is required", sbi.CauseMandatoryIEMissing)
		return
	}
	if req.IP == "" {
		req.IP = "127.0.0.1"
	}
	if req.Port == 0 {
		req.Port = 8080
	}

	nfType := models.NFType(strings.ToUpper(req.NFType))
	serviceName := "n" + strings.ToLower(req.NFType) + "-service"

	profile := &models.NFProfile{
		NFInstanceID:  uuid.NewString(),
		NFType:        nfType,
		NFStatus:      models.NFStatusRegistered,
		IPv4Addresses: []string{req.IP},
		NFServices: []models.NFService{{
			ServiceInstanceID: strings.ToLower(req.NFType) + "-service-001",
			ServiceName:       serviceName,
			Versions:          []models.NFServiceVersion{{APIVersionInURI: "v1"}},
			Scheme:            "http",
			NFServiceStatus:   models.NFStatusRegistered,
			IPEndPoints:       []models.IPEndPoint{{IPv4Address: req.IP, Port: req.Port}},
		}},
	}

	recovery := time.Now().UTC()
	profile.RecoveryTime = &recovery
	s.state.Upsert(profile)

	logger.Info("Legacy NF registration stored",
		logger.NFType(string(nfType)),
		"ip", req.IP,
		"port", req.Port,
	)

	sbi.WriteJSONOK(w, map[string]string{"message": req.NFType + " registered successfully"})
}

// handleLegacyDiscover returns the first addressable instance of the
// requested type in the legacy {nf_type, ip, port} shape.
func (s *Service) handleLegacyDiscover(w http.ResponseWriter, r *http.Request) {
	requested := chi.URLParam(r, "nfType")
	nfType := models.NFType(strings.ToUpper(requested))

	for _, profile := range s.state.List(nfType) {
		for _, svc := range profile.NFServices {
			for _, ep := range svc.IPEndPoints {
				if ep.IPv4Address == "" || ep.Port == 0 {
					continue
				}
				sbi.WriteJSONOK(w, map[string]any{
					"nf_type": requested,
					"ip":      ep.IPv4Address,
					"port":    ep.Port,
				})
				return
			}
		}
	}

	sbi.NotFoundCause(w, "no "+string(nfType)+" instance registered", sbi.CauseContextNotFound)
}
