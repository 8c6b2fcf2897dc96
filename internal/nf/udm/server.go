package udm

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics"
	metricsprom "github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics/prometheus"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
)

// supportedServices lists the Nudm services this instance announces.
var supportedServices = []string{
	"nudm-uecm", "nudm-sdm", "nudm-ueau", "nudm-ee", "nudm-pp",
}

// rosterSize is how many test subscribers are provisioned at boot.
const rosterSize = 4

// defaultRoster returns the SUPIs provisioned at boot:
// imsi-001010000000001 through imsi-001010000000004.
func defaultRoster() []string {
	supis := make([]string, 0, rosterSize)
	for i := 1; i <= rosterSize; i++ {
		supis = append(supis, fmt.Sprintf("imsi-00101%010d", i))
	}
	return supis
}

// Service is the unified data management function: the subscriber database,
// UE context management, and the authentication vector source.
type Service struct {
	cfg        *config.Config
	state      *State
	instanceID string
	name       string
	procedures metrics.ProcedureMetrics
}

// New creates the subscriber store and provisions the test roster.
func New(cfg *config.Config) (*Service, error) {
	instanceID := cfg.NF.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	name := cfg.NF.Name
	if name == "" {
		name = "UDM-001"
	}

	s := &Service{
		cfg:        cfg,
		state:      NewState(),
		instanceID: instanceID,
		name:       name,
		procedures: metricsprom.NewProcedureMetrics(),
	}

	for _, supi := range defaultRoster() {
		if err := s.state.Seed(supi); err != nil {
			return nil, fmt.Errorf("seeding subscriber %s: %w", supi, err)
		}
	}

	return s, nil
}

// Type returns the network function type.
func (s *Service) Type() models.NFType { return models.NFTypeUDM }

// InstanceID returns the instance id announced to the registry.
func (s *Service) InstanceID() string { return s.instanceID }

// Profile returns the registry profile: the Nudm services on the SBI
// endpoint plus the subscriber ranges this store serves.
func (s *Service) Profile() *models.NFProfile {
	endpoints := []models.IPEndPoint{{
		IPv4Address: s.cfg.SBI.Host,
		Port:        s.cfg.SBI.Port,
	}}

	service := func(name string) models.NFService {
		return models.NFService{
			ServiceInstanceID: name + "-001",
			ServiceName:       name,
			Versions:          []models.NFServiceVersion{{APIVersionInURI: "v1"}},
			Scheme:            "http",
			NFServiceStatus:   models.NFStatusRegistered,
			IPEndPoints:       endpoints,
		}
	}

	return &models.NFProfile{
		NFInstanceID:   s.instanceID,
		NFInstanceName: s.name,
		NFType:         models.NFTypeUDM,
		NFStatus:       models.NFStatusRegistered,
		HeartBeatTimer: int(s.cfg.NRF.HeartbeatInterval.Seconds()),
		PLMNList:       []models.PLMNID{{MCC: s.cfg.PLMN.MCC, MNC: s.cfg.PLMN.MNC}},
		SNSSAIs:        []models.SNSSAI{{SST: 1, SD: "010203"}},
		NFServices: []models.NFService{
			service("nudm-uecm"),
			service("nudm-sdm"),
			service("nudm-ueau"),
		},
		UDMInfo: &models.UDMInfo{
			GroupID:                        "udm-group-001",
			SUPIRanges:                     []models.SUPIRange{{Start: "001010000000001", End: "001010000099999"}},
			GPSIRanges:                     []models.IdentityRange{{Start: "001010000000001", End: "001010000099999"}},
			ExternalGroupIdentifiersRanges: []models.IdentityRange{{Start: "group001", End: "group999"}},
			RoutingIndicators:              []string{"0001"},
		},
	}
}

// HealthDetails contributes subscriber population counts to /health.
func (s *Service) HealthDetails() map[string]any {
	subscribers, activeUEs, _, _ := s.state.Counts()
	return map[string]any{
		"subscribers":   subscribers,
		"registeredUes": activeUEs,
	}
}

// Start logs the provisioned roster. The store has no background work.
func (s *Service) Start(ctx context.Context) error {
	subscribers, _, _, _ := s.state.Counts()
	logger.Info("Subscriber roster provisioned", "subscribers", subscribers)
	return nil
}

// Stop is a no-op: subscriber state is in-memory only.
func (s *Service) Stop(ctx context.Context) error { return nil }
