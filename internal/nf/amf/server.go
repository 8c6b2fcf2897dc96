package amf

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

// PLMNSupportItem pairs a PLMN with the slices served on it, as carried
// in the NG Setup Response (TS 38.413 §9.3.1.87).
type PLMNSupportItem struct {
	PLMNID     models.PLMNID   `json:"plmnId"`
	SNSSAIList []models.SNSSAI `json:"snssaiList"`
}

// Service is the AMF network function.
type Service struct {
	cfg            *config.Config
	state          *State
	registry       *nrfclient.Client
	instanceID     string
	name           string
	guami          models.GUAMI
	servingNetwork string
	procedures     metrics.ProcedureMetrics
}

// New creates the AMF service.
func New(cfg *config.Config) (*Service, error) {
	instanceID := cfg.NF.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	name := cfg.NF.Name
	if name == "" {
		name = "AMF-001"
	}

	plmn := models.PLMNID{MCC: cfg.PLMN.MCC, MNC: cfg.PLMN.MNC}

	return &Service{
		cfg:        cfg,
		state:      NewState(),
		instanceID: instanceID,
		name:       name,
		guami: models.GUAMI{
			PLMNID:      plmn,
			AMFRegionID: "01",
			AMFSetID:    "001",
			AMFPointer:  "01",
		},
		servingNetwork: "5G:" + plmn.Domain(),
		procedures:     metricsprom.NewProcedureMetrics(),
	}, nil
}

// SetRegistry hands the service the registry client it uses for peer
// discovery. Called once before Start.
func (s *Service) SetRegistry(c *nrfclient.Client) {
	s.registry = c
}

func (s *Service) ausfClient(ctx context.Context) (*sbi.Client, error) {
	return s.peerClient(ctx, models.NFTypeAUSF, "AUSF")
}

func (s *Service) udmClient(ctx context.Context) (*sbi.Client, error) {
	return s.peerClient(ctx, models.NFTypeUDM, "UDM")
}

func (s *Service) smfClient(ctx context.Context) (*sbi.Client, error) {
	return s.peerClient(ctx, models.NFTypeSMF, "SMF")
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

// plmnSupportList returns the PLMNs and slices this AMF serves.
func (s *Service) plmnSupportList() []PLMNSupportItem {
	plmn := models.PLMNID{MCC: s.cfg.PLMN.MCC, MNC: s.cfg.PLMN.MNC}
	return []PLMNSupportItem{
		{
			PLMNID: plmn,
			SNSSAIList: []models.SNSSAI{
				{SST: 1, SD: "010203"},
				{SST: 2, SD: "020304"},
			},
		},
	}
}

// deregCallbackURI is the address the subscriber store notifies on a
// network-initiated deregistration.
func (s *Service) deregCallbackURI(supi string) string {
	return fmt.Sprintf("http://%s:%d/namf-comm/v1/ue-contexts/%s/dereg-notify",
		s.cfg.SBI.Host, s.cfg.SBI.Port, supi)
}

// Type returns the network function type.
func (s *Service) Type() models.NFType {
	return models.NFTypeAMF
}

// InstanceID returns the NF instance identifier.
func (s *Service) InstanceID() string {
	return s.instanceID
}

// Profile returns the registry profile announcing the Namf_Communication
// service.
func (s *Service) Profile() *models.NFProfile {
	plmn := models.PLMNID{MCC: s.cfg.PLMN.MCC, MNC: s.cfg.PLMN.MNC}

	return &models.NFProfile{
		NFInstanceID:   s.instanceID,
		NFType:         models.NFTypeAMF,
		NFStatus:       models.NFStatusRegistered,
		HeartBeatTimer: int(s.cfg.NRF.HeartbeatInterval.Seconds()),
		PLMNList:       []models.PLMNID{plmn},
		SNSSAIs:        []models.SNSSAI{{SST: 1, SD: "010203"}},
		IPv4Addresses:  []string{s.cfg.SBI.Host},
		NFServices: []models.NFService{
			{
				ServiceInstanceID: "namf-comm-001",
				ServiceName:       "namf-comm",
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
		AMFInfo: &models.AMFInfo{
			AMFSetID:    s.guami.AMFSetID,
			AMFRegionID: s.guami.AMFRegionID,
			GUAMIList:   []models.GUAMI{s.guami},
			TAIList:     []models.TAI{{PLMNID: plmn, TAC: s.cfg.RAN.TAC}},
		},
	}
}

// HealthDetails reports the UE population for the health endpoint.
func (s *Service) HealthDetails() map[string]any {
	total, registered, sessions, _, _ := s.state.Counts()
	return map[string]any{
		"totalUes":          total,
		"registeredUes":     registered,
		"activePduSessions": sessions,
	}
}

// Start brings the service up.
func (s *Service) Start(ctx context.Context) error {
	logger.Info("AMF ready",
		logger.NFInstanceID(s.instanceID),
		logger.ServingNetwork(s.servingNetwork),
	)
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop(ctx context.Context) error {
	return nil
}
