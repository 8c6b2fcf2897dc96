package ausf

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics"
	metricsprom "github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics/prometheus"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/nrfclient"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

var supportedAuthTypes = []string{models.AuthMethod5GAKA, "EAP_AKA_PRIME"}

// Service is the AUSF network function.
type Service struct {
	cfg        *config.Config
	state      *State
	registry   *nrfclient.Client
	instanceID string
	name       string
	procedures metrics.ProcedureMetrics
}

// New creates the AUSF service.
func New(cfg *config.Config) (*Service, error) {
	instanceID := cfg.NF.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	name := cfg.NF.Name
	if name == "" {
		name = "AUSF-001"
	}

	return &Service{
		cfg:        cfg,
		state:      NewState(),
		instanceID: instanceID,
		name:       name,
		procedures: metricsprom.NewProcedureMetrics(),
	}, nil
}

// SetRegistry hands the service the registry client it uses for
// subscriber-store discovery. Called once before Start.
func (s *Service) SetRegistry(c *nrfclient.Client) {
	s.registry = c
}

// udmClient returns a client for the subscriber store, preferring registry
// discovery and falling back to the statically configured peer.
func (s *Service) udmClient(ctx context.Context) (*sbi.Client, error) {
	if s.registry != nil {
		return s.registry.ClientFor(ctx, models.NFTypeUDM)
	}
	if url := s.cfg.Peers.URLFor("UDM"); url != "" {
		return sbi.NewClient("UDM", url, s.cfg.SBI.ClientTimeout, nil), nil
	}
	return nil, fmt.Errorf("no UDM peer configured")
}

// Type returns the network function type.
func (s *Service) Type() models.NFType {
	return models.NFTypeAUSF
}

// InstanceID returns the NF instance identifier.
func (s *Service) InstanceID() string {
	return s.instanceID
}

// Profile returns the registry profile announcing the Nausf_UEAuthentication
// service.
func (s *Service) Profile() *models.NFProfile {
	plmn := models.PLMNID{MCC: s.cfg.PLMN.MCC, MNC: s.cfg.PLMN.MNC}

	return &models.NFProfile{
		NFInstanceID:   s.instanceID,
		NFType:         models.NFTypeAUSF,
		NFStatus:       models.NFStatusRegistered,
		HeartBeatTimer: int(s.cfg.NRF.HeartbeatInterval.Seconds()),
		PLMNList:       []models.PLMNID{plmn},
		SNSSAIs:        []models.SNSSAI{{SST: 1, SD: "010203"}},
		IPv4Addresses:  []string{s.cfg.SBI.Host},
		NFServices: []models.NFService{
			{
				ServiceInstanceID: "nausf-auth-001",
				ServiceName:       "nausf-auth",
				Versions: []models.NFServiceVersion{
					{APIVersionInURI: "v1", APIFullVersion: "1.0.0"},
				},
				Scheme:          "http",
				NFServiceStatus: models.NFStatusRegistered,
				IPEndPoints: []models.IPEndPoint{
					{IPv4Address: s.cfg.SBI.Host, Port: s.cfg.SBI.Port},
				},
			},
		},
		AUSFInfo: &models.AUSFInfo{
			GroupID: "ausf-group-001",
			SUPIRanges: []models.SUPIRange{
				{Start: "001010000000001", End: "001010000099999"},
			},
			RoutingIndicators: []string{"0001"},
		},
	}
}

// HealthDetails reports the context population for the health endpoint.
func (s *Service) HealthDetails() map[string]any {
	total, ongoing, _, _ := s.state.Counts()
	return map[string]any{
		"activeContexts":         total,
		"ongoingAuthentications": ongoing,
	}
}

// Start brings the service up.
func (s *Service) Start(ctx context.Context) error {
	logger.Info("AUSF ready",
		logger.NFInstanceID(s.instanceID),
		"supportedAuthTypes", supportedAuthTypes,
	)
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop(ctx context.Context) error {
	return nil
}
