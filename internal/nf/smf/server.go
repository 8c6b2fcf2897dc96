package smf

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics"
	metricsprom "github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics/prometheus"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/nrfclient"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

// Service is the SMF network function.
type Service struct {
	cfg        *config.Config
	state      *State
	registry   *nrfclient.Client
	instanceID string
	name       string
	nodeID     string
	validate   *validator.Validate
	procedures metrics.ProcedureMetrics
}

// New creates the SMF service.
func New(cfg *config.Config) (*Service, error) {
	instanceID := cfg.NF.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	name := cfg.NF.Name
	if name == "" {
		name = "SMF-001"
	}

	plmn := models.PLMNID{MCC: cfg.PLMN.MCC, MNC: cfg.PLMN.MNC}

	return &Service{
		cfg:        cfg,
		state:      NewState(),
		instanceID: instanceID,
		name:       name,
		nodeID:     "smf." + plmn.Domain(),
		validate:   validator.New(),
		procedures: metricsprom.NewProcedureMetrics(),
	}, nil
}

// SetRegistry hands the service the registry client it uses for user-plane
// and policy discovery. Called once before Start.
func (s *Service) SetRegistry(c *nrfclient.Client) {
	s.registry = c
}

// upfClient returns a client for the user plane, preferring registry
// discovery and falling back to the statically configured peer.
func (s *Service) upfClient(ctx context.Context) (*sbi.Client, error) {
	return s.peerClient(ctx, models.NFTypeUPF, "UPF")
}

// pcfClient returns a client for the policy function.
func (s *Service) pcfClient(ctx context.Context) (*sbi.Client, error) {
	return s.peerClient(ctx, models.NFTypePCF, "PCF")
}

func (s *Service) peerClient(ctx context.Context, target models.NFType, peer string) (*sbi.Client, error) {
	if s.registry != nil {
		return s.registry.ClientFor(ctx, target)
	}
	if url := s.cfg.Peers.URLFor(peer); url != "" {
		return sbi.NewClient(peer, url, s.cfg.SBI.ClientTimeout, nil), nil
	}
	return nil, fmt.Errorf("no %s peer configured", peer)
}

// Type returns the network function type.
func (s *Service) Type() models.NFType {
	return models.NFTypeSMF
}

// InstanceID returns the NF instance identifier.
func (s *Service) InstanceID() string {
	return s.instanceID
}

// Profile returns the registry profile announcing the Nsmf_PDUSession
// service.
func (s *Service) Profile() *models.NFProfile {
	plmn := models.PLMNID{MCC: s.cfg.PLMN.MCC, MNC: s.cfg.PLMN.MNC}

	return &models.NFProfile{
		NFInstanceID:   s.instanceID,
		NFType:         models.NFTypeSMF,
		NFStatus:       models.NFStatusRegistered,
		HeartBeatTimer: int(s.cfg.NRF.HeartbeatInterval.Seconds()),
		PLMNList:       []models.PLMNID{plmn},
		SNSSAIs:        []models.SNSSAI{{SST: 1, SD: "010203"}},
		IPv4Addresses:  []string{s.cfg.SBI.Host},
		NFServices: []models.NFService{
			{
				ServiceInstanceID: "nsmf-pdusession-001",
				ServiceName:       "nsmf-pdusession",
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
		SMFInfo: &models.SMFInfo{
			SNSSAISMFInfoList: []models.SNSSAISMFInfoItem{
				{
					SNSSAI:         models.SNSSAI{SST: 1, SD: "010203"},
					DNNSMFInfoList: []models.DNNSMFInfoItem{{DNN: "internet"}},
				},
			},
			TAIList:    []models.TAI{{PLMNID: plmn, TAC: s.cfg.RAN.TAC}},
			AccessType: []string{"3GPP_ACCESS"},
		},
	}
}

// HealthDetails reports the session population for the health endpoint.
func (s *Service) HealthDetails() map[string]any {
	total, active, released := s.state.Counts()
	return map[string]any{
		"totalSessions":    total,
		"activeSessions":   active,
		"releasedSessions": released,
	}
}

// Start brings the service up.
func (s *Service) Start(ctx context.Context) error {
	logger.Info("SMF ready",
		logger.NFInstanceID(s.instanceID),
		"nodeId", s.nodeID,
	)
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop(ctx context.Context) error {
	return nil
}
