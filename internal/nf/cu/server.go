package cu

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/f1ap"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics"
	metricsprom "github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics/prometheus"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/nrfclient"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/worker"
)

// rrcVersion is the release announced over F1 (TS 38.463 §9.3.1.70).
const rrcVersion = "16.6.0"

// Service is the gNB centralized unit.
type Service struct {
	cfg        *config.Config
	state      *State
	registry   *nrfclient.Client
	instanceID string
	name       string
	procedures metrics.ProcedureMetrics
	workers    *worker.Group
}

// New creates the CU service with one served cell.
func New(cfg *config.Config) (*Service, error) {
	instanceID := cfg.NF.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	name := cfg.NF.Name
	if name == "" {
		name = "gNB-CU-001"
	}

	plmn := models.PLMNID{MCC: cfg.PLMN.MCC, MNC: cfg.PLMN.MNC}
	cellIdentity := cfg.RAN.NRCellID
	if cellIdentity == "" {
		cellIdentity = strings.Repeat("0", 28) + "00000001"
	}

	cell := ServedCell{
		CellID: "000000001",
		NRCGI:  NRCGI{PLMNID: plmn, NRCellIdentity: cellIdentity},
		NRPCI:  1,
		TAC:    cfg.RAN.TAC,
		NRMode: "FDD",
	}

	return &Service{
		cfg:        cfg,
		state:      NewState(cell),
		instanceID: instanceID,
		name:       name,
		procedures: metricsprom.NewProcedureMetrics(),
		workers:    worker.NewGroup(),
	}, nil
}

// SetRegistry hands the service the registry client it uses for peer
// discovery. Called once before Start.
func (s *Service) SetRegistry(c *nrfclient.Client) {
	s.registry = c
}

func (s *Service) duClient(ctx context.Context) (*sbi.Client, error) {
	if s.registry != nil {
		return s.registry.ClientFor(ctx, models.NFTypeDU)
	}
	if url := s.cfg.Peers.URLFor("DU"); url != "" {
		return sbi.NewClient("DU", url, s.cfg.SBI.ClientTimeout, nil), nil
	}
	return nil, fmt.Errorf("no DU peer configured")
}

// Type returns the network function type.
func (s *Service) Type() models.NFType {
	return models.NFTypeCU
}

// InstanceID returns the NF instance identifier.
func (s *Service) InstanceID() string {
	return s.instanceID
}

// Profile returns the registry profile for the CU.
func (s *Service) Profile() *models.NFProfile {
	plmn := models.PLMNID{MCC: s.cfg.PLMN.MCC, MNC: s.cfg.PLMN.MNC}

	return &models.NFProfile{
		NFInstanceID:   s.instanceID,
		NFType:         models.NFTypeCU,
		NFStatus:       models.NFStatusRegistered,
		HeartBeatTimer: int(s.cfg.NRF.HeartbeatInterval.Seconds()),
		PLMNList:       []models.PLMNID{plmn},
		SNSSAIs:        []models.SNSSAI{{SST: 1, SD: "010203"}},
		IPv4Addresses:  []string{s.cfg.SBI.Host},
		NFServices: []models.NFService{
			{
				ServiceInstanceID: "f1ap-cu-001",
				ServiceName:       "f1ap-cu",
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

// HealthDetails reports the F1 connection and UE population.
func (s *Service) HealthDetails() map[string]any {
	total, connected, cells := s.state.Counts()
	return map[string]any{
		"f1Connection": s.state.DUConnected(),
		"activeUes":    total,
		"connectedUes": connected,
		"servedCells":  cells,
	}
}

// buildF1SetupRequest assembles the F1 Setup Request (TS 38.463 §9.2.1.1)
// announcing the served cell and RRC version.
func (s *Service) buildF1SetupRequest() *f1ap.PDU {
	cell := s.state.CellSnapshot()[0]

	return f1ap.NewInitiatingMessage(f1ap.ProcedureCodeF1Setup, f1ap.CriticalityReject, f1ap.IEs{
		f1ap.IEGNBDUID:   1,
		f1ap.IEGNBDUName: "DU-001",
		f1ap.IEGNBCUName: s.name,
		f1ap.IEServedCellsToAddList: []any{
			map[string]any{
				"servedCellInformation": map[string]any{
					"nrCgi":       cell.NRCGI,
					"nrPci":       cell.NRPCI,
					"fiveGsTac":   cell.TAC,
					"servedPlmns": []any{map[string]any{"plmnIdentity": cell.NRCGI.PLMNID}},
					"nrMode":      cell.NRMode,
				},
				"gnbDuSystemInformation": map[string]any{
					"mibMessage":  "mib-contents-placeholder",
					"sib1Message": "sib1-contents-placeholder",
				},
			},
		},
		f1ap.IEGNBDURRCVersion: map[string]any{
			"latestRRCVersionEnhanced": rrcVersion,
		},
	})
}

// establishF1Connection runs the F1 Setup procedure toward the DU.
func (s *Service) establishF1Connection(ctx context.Context) {
	client, err := s.duClient(ctx)
	if err != nil {
		logger.Debug("No DU available for F1 Setup", logger.Err(err))
		return
	}

	var response map[string]any
	if err := client.Post(ctx, "/f1ap/f1-setup-response", s.buildF1SetupRequest(), &response); err != nil {
		logger.Warn("F1 Setup failed", logger.Err(err))
		if _, isAPI := sbi.AsAPIError(err); !isAPI && s.registry != nil {
			s.registry.Invalidate(models.NFTypeDU)
		}
		return
	}

	s.state.SetDUConnected(true)
	logger.Info("F1 Setup successful", "duName", response["gnb_du_name"])
}

// Start registers the F1 setup worker. It retries until the DU answers
// and re-establishes after the flag is cleared.
func (s *Service) Start(ctx context.Context) error {
	s.workers.Add(worker.NewPeriodic(worker.Config{
		Name:      "du-f1-setup",
		Interval:  s.cfg.RAN.HeartbeatInterval,
		Immediate: true,
	}, func(ctx context.Context) {
		if !s.state.DUConnected() {
			s.establishF1Connection(ctx)
		}
	}))
	s.workers.Start(ctx)

	logger.Info("CU ready",
		logger.NFInstanceID(s.instanceID),
		"rrcVersion", rrcVersion,
	)
	return nil
}

// Stop shuts the background workers down.
func (s *Service) Stop(ctx context.Context) error {
	s.workers.Stop(s.cfg.ShutdownTimeout)
	return nil
}
