package pcf

import (
	"context"

	"github.com/google/uuid"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics"
	metricsprom "github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics/prometheus"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
)

// Service is the PCF network function.
type Service struct {
	cfg        *config.Config
	state      *State
	instanceID string
	name       string
	procedures metrics.ProcedureMetrics
}

// New creates the PCF service with the default catalog seeded.
func New(cfg *config.Config) (*Service, error) {
	instanceID := cfg.NF.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	name := cfg.NF.Name
	if name == "" {
		name = "PCF-001"
	}

	return &Service{
		cfg:        cfg,
		state:      NewState(),
		instanceID: instanceID,
		name:       name,
		procedures: metricsprom.NewProcedureMetrics(),
	}, nil
}

// Type returns the network function type.
func (s *Service) Type() models.NFType {
	return models.NFTypePCF
}

// InstanceID returns the NF instance identifier.
func (s *Service) InstanceID() string {
	return s.instanceID
}

// Profile returns the registry profile announcing the SM and AM policy
// control services.
func (s *Service) Profile() *models.NFProfile {
	plmn := models.PLMNID{MCC: s.cfg.PLMN.MCC, MNC: s.cfg.PLMN.MNC}

	service := func(name string) models.NFService {
		return models.NFService{
			ServiceInstanceID: name + "-001",
			ServiceName:       name,
			Versions: []models.NFServiceVersion{
				{APIVersionInURI: "v1", APIFullVersion: "1.0.0"},
			},
			Scheme:          "http",
			NFServiceStatus: models.NFStatusRegistered,
			IPEndPoints: []models.IPEndPoint{
				{IPv4Address: s.cfg.SBI.Host, Port: s.cfg.SBI.Port},
			},
		}
	}

	return &models.NFProfile{
		NFInstanceID:   s.instanceID,
		NFType:         models.NFTypePCF,
		NFStatus:       models.NFStatusRegistered,
		HeartBeatTimer: int(s.cfg.NRF.HeartbeatInterval.Seconds()),
		PLMNList:       []models.PLMNID{plmn},
		SNSSAIs:        []models.SNSSAI{{SST: 1, SD: "010203"}},
		IPv4Addresses:  []string{s.cfg.SBI.Host},
		NFServices: []models.NFService{
			service("npcf-smpolicycontrol"),
			service("npcf-ampolicycontrol"),
		},
		PCFInfo: &models.PCFInfo{
			DNNList: []string{"internet", "ims", "video", "gaming"},
			SUPIRanges: []models.SUPIRange{
				{Start: "001010000000001", End: "001010000099999"},
			},
			GPSIRanges: []models.IdentityRange{
				{Start: "001010000000001", End: "001010000099999"},
			},
			RxDiamHost:  "pcf." + plmn.Domain(),
			RxDiamRealm: plmn.Domain(),
		},
	}
}

// HealthDetails reports the live association count.
func (s *Service) HealthDetails() map[string]any {
	associations, _, _, _ := s.state.Counts()
	return map[string]any{"activePolicies": associations}
}

// Start brings the service up.
func (s *Service) Start(ctx context.Context) error {
	_, _, rules, qosData := s.state.Counts()
	logger.Info("Policy catalog provisioned",
		logger.NFInstanceID(s.instanceID),
		"pccRules", rules,
		"qosData", qosData,
	)
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop(ctx context.Context) error {
	return nil
}
