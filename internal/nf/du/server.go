package du

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics"
	metricsprom "github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics/prometheus"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/nrfclient"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/worker"
)

// slotDuration is the PHY tick period.
const slotDuration = time.Millisecond

// preProvisionedUEs is how many UEs get SRB1/SRB2 and DRB5 entities at
// boot.
const preProvisionedUEs = 4

// Service is the gNB distributed unit.
type Service struct {
	cfg        *config.Config
	state      *State
	rlc        *RLCLayer
	pdcp       *PDCPLayer
	mac        *MACScheduler
	phy        *PHYLayer
	registry   *nrfclient.Client
	instanceID string
	name       string
	duID       int
	procedures metrics.ProcedureMetrics
	workers    *worker.Group
}

// New creates the DU service with protocol entities pre-provisioned for
// the first UEs: RLC AM and PDCP on SRB1/SRB2, PDCP with ROHC on DRB5.
func New(cfg *config.Config) (*Service, error) {
	instanceID := cfg.NF.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	name := cfg.NF.Name
	if name == "" {
		name = "gNB-DU-001"
	}

	s := &Service{
		cfg:        cfg,
		state:      NewState(),
		rlc:        NewRLCLayer(),
		pdcp:       NewPDCPLayer(),
		mac:        NewMACScheduler(),
		phy:        NewPHYLayer(),
		instanceID: instanceID,
		name:       name,
		duID:       1,
		procedures: metricsprom.NewProcedureMetrics(),
		workers:    worker.NewGroup(),
	}

	for ueID := uint64(1); ueID <= preProvisionedUEs; ueID++ {
		s.rlc.CreateAMEntity(ueID, 1)
		s.rlc.CreateAMEntity(ueID, 2)
		s.pdcp.CreateEntity(ueID, 1, BearerTypeSRB)
		s.pdcp.CreateEntity(ueID, 2, BearerTypeSRB)
		s.pdcp.CreateEntity(ueID, 5, BearerTypeDRB)
	}

	return s, nil
}

// SetRegistry hands the service the registry client it uses for peer
// discovery. Called once before Start.
func (s *Service) SetRegistry(c *nrfclient.Client) {
	s.registry = c
}

func (s *Service) cuClient(ctx context.Context) (*sbi.Client, error) {
	if s.registry != nil {
		return s.registry.ClientFor(ctx, models.NFTypeCU)
	}
	if url := s.cfg.Peers.URLFor("CU"); url != "" {
		return sbi.NewClient("CU", url, s.cfg.SBI.ClientTimeout, nil), nil
	}
	return nil, fmt.Errorf("no CU peer configured")
}

// Type returns the network function type.
func (s *Service) Type() models.NFType {
	return models.NFTypeDU
}

// InstanceID returns the NF instance identifier.
func (s *Service) InstanceID() string {
	return s.instanceID
}

// Profile returns the registry profile for the DU.
func (s *Service) Profile() *models.NFProfile {
	plmn := models.PLMNID{MCC: s.cfg.PLMN.MCC, MNC: s.cfg.PLMN.MNC}

	return &models.NFProfile{
		NFInstanceID:   s.instanceID,
		NFType:         models.NFTypeDU,
		NFStatus:       models.NFStatusRegistered,
		HeartBeatTimer: int(s.cfg.NRF.HeartbeatInterval.Seconds()),
		PLMNList:       []models.PLMNID{plmn},
		SNSSAIs:        []models.SNSSAI{{SST: 1, SD: "010203"}},
		IPv4Addresses:  []string{s.cfg.SBI.Host},
		NFServices: []models.NFService{
			{
				ServiceInstanceID: "f1ap-du-001",
				ServiceName:       "f1ap-du",
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
	}
}

// HealthDetails reports the F1 connection, UE population, and protocol
// entity counts.
func (s *Service) HealthDetails() map[string]any {
	frame, slot := s.phy.Position()
	return map[string]any{
		"f1Connection": s.state.CUConnected(),
		"activeUes":    s.state.Count(),
		"rlcEntities":  s.rlc.Count(),
		"pdcpEntities": s.pdcp.Count(),
		"currentFrame": frame,
		"currentSlot":  slot,
	}
}

// Start registers the slot worker: every tick generates the PHY grid,
// runs MAC scheduling over the active UEs, and advances the frame/slot
// counters.
func (s *Service) Start(ctx context.Context) error {
	s.workers.Add(worker.NewPeriodic(worker.Config{
		Name:     "phy-slot",
		Interval: slotDuration,
	}, func(ctx context.Context) {
		s.phy.Tick()
		ues := s.state.UESnapshot()
		s.mac.ScheduleUplink(ues)
		s.mac.ScheduleDownlink(ues)
	}))
	s.workers.Start(ctx)

	logger.Info("DU ready",
		logger.NFInstanceID(s.instanceID),
		"gnbDuId", s.duID,
		"preProvisionedUes", preProvisionedUEs,
	)
	return nil
}

// Stop shuts the background workers down.
func (s *Service) Stop(ctx context.Context) error {
	s.workers.Stop(s.cfg.ShutdownTimeout)
	return nil
}
