package gnb

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics"
	metricsprom "github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics/prometheus"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/ngap"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/nrfclient"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/worker"
)

// SupportedTAItem is one tracking area announced in NG Setup
// (TS 38.413 §9.3.1.31).
type SupportedTAItem struct {
	TAC               string          `json:"tac"`
	BroadcastPLMNList []models.PLMNID `json:"broadcastPlmnList"`
}

// Service is the gNodeB.
type Service struct {
	cfg          *config.Config
	state        *State
	registry     *nrfclient.Client
	instanceID   string
	name         string
	gnbID        string
	supportedTAs []SupportedTAItem
	pagingDRX    string
	procedures   metrics.ProcedureMetrics
	workers      *worker.Group
}

// New creates the gNB service with one served NR cell.
func New(cfg *config.Config) (*Service, error) {
	instanceID := cfg.NF.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	name := cfg.NF.Name
	if name == "" {
		name = "gNB-001"
	}
	gnbID := cfg.RAN.GnbID
	if gnbID == "" {
		gnbID = "000001"
	}

	plmn := models.PLMNID{MCC: cfg.PLMN.MCC, MNC: cfg.PLMN.MNC}
	cellIdentity := cfg.RAN.NRCellID
	if cellIdentity == "" {
		// 36-bit identity: gNB id in the upper bits, cell 1 below.
		cellIdentity = strings.Repeat("0", 28) + "00000001"
	}

	cell := CellContext{
		CellID:    "000000001",
		NRCGI:     NRCGI{PLMNID: plmn, NRCellIdentity: cellIdentity},
		CellState: "ACTIVE",
	}

	return &Service{
		cfg:        cfg,
		state:      NewState(cell),
		instanceID: instanceID,
		name:       name,
		gnbID:      gnbID,
		supportedTAs: []SupportedTAItem{
			{TAC: cfg.RAN.TAC, BroadcastPLMNList: []models.PLMNID{plmn}},
		},
		pagingDRX:  "v128",
		procedures: metricsprom.NewProcedureMetrics(),
		workers:    worker.NewGroup(),
	}, nil
}

// SetRegistry hands the service the registry client it uses for peer
// discovery. Called once before Start.
func (s *Service) SetRegistry(c *nrfclient.Client) {
	s.registry = c
}

func (s *Service) amfClient(ctx context.Context) (*sbi.Client, error) {
	if s.registry != nil {
		return s.registry.ClientFor(ctx, models.NFTypeAMF)
	}
	if url := s.cfg.Peers.URLFor("AMF"); url != "" {
		return sbi.NewClient("AMF", url, s.cfg.SBI.ClientTimeout, nil), nil
	}
	return nil, fmt.Errorf("no AMF peer configured")
}

// globalRANNodeID builds the GlobalRANNodeID IE (TS 38.413 §9.3.1.5).
func (s *Service) globalRANNodeID() map[string]any {
	return map[string]any{
		"globalGNB-ID": map[string]any{
			"pLMNIdentity": models.PLMNID{MCC: s.cfg.PLMN.MCC, MNC: s.cfg.PLMN.MNC},
			"gNB-ID":       map[string]any{"gNB-ID": s.gnbID},
		},
	}
}

// Type returns the network function type.
func (s *Service) Type() models.NFType {
	return models.NFTypeGNB
}

// InstanceID returns the NF instance identifier.
func (s *Service) InstanceID() string {
	return s.instanceID
}

// Profile returns the registry profile for the RAN node.
func (s *Service) Profile() *models.NFProfile {
	plmn := models.PLMNID{MCC: s.cfg.PLMN.MCC, MNC: s.cfg.PLMN.MNC}

	return &models.NFProfile{
		NFInstanceID:   s.instanceID,
		NFType:         models.NFTypeGNB,
		NFStatus:       models.NFStatusRegistered,
		HeartBeatTimer: int(s.cfg.NRF.HeartbeatInterval.Seconds()),
		PLMNList:       []models.PLMNID{plmn},
		SNSSAIs:        []models.SNSSAI{{SST: 1, SD: "010203"}},
		IPv4Addresses:  []string{s.cfg.SBI.Host},
		NFServices: []models.NFService{
			{
				ServiceInstanceID: "ngap-001",
				ServiceName:       "ngap",
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

// HealthDetails reports the NG connection and UE population.
func (s *Service) HealthDetails() map[string]any {
	total, connected, _, cells := s.state.Counts()
	return map[string]any{
		"ngConnection": s.state.AMFConnected(),
		"activeUes":    total,
		"connectedUes": connected,
		"servedCells":  cells,
	}
}

// establishNGConnection runs the NG Setup procedure (TS 38.413 §8.7.1).
func (s *Service) establishNGConnection(ctx context.Context) {
	client, err := s.amfClient(ctx)
	if err != nil {
		logger.Debug("No AMF available for NG Setup", logger.Err(err))
		return
	}

	request := ngap.NewInitiatingMessage(ngap.ProcedureCodeNGSetup, ngap.CriticalityReject, ngap.IEs{
		ngap.IEGlobalRANNodeID:        s.globalRANNodeID(),
		ngap.IERANNodeName:            s.name,
		ngap.IESupportedTAList:        s.supportedTAs,
		ngap.IEDefaultPagingDRX:       s.pagingDRX,
		ngap.IEUERetentionInformation: "ues-retained",
	})

	var response ngap.PDU
	if err := client.Post(ctx, "/ngap/ng-setup", request, &response); err != nil {
		logger.Warn("NG Setup failed", logger.Err(err))
		if _, isAPI := sbi.AsAPIError(err); !isAPI && s.registry != nil {
			s.registry.Invalidate(models.NFTypeAMF)
		}
		return
	}
	if !response.IsSuccess() {
		logger.Warn("NG Setup rejected by AMF")
		return
	}

	s.state.SetAMFConnected(true)
	logger.Info("NG Setup successful", "amfName", response.IEs().String(ngap.IEAMFName))
}

// Start registers the AMF liveness worker. The first run performs NG
// Setup; later runs probe the heartbeat endpoint and re-run NG Setup when
// the connection flag was cleared.
func (s *Service) Start(ctx context.Context) error {
	s.workers.Add(worker.NewPeriodic(worker.Config{
		Name:      "amf-heartbeat",
		Interval:  s.cfg.RAN.HeartbeatInterval,
		Immediate: true,
	}, func(ctx context.Context) {
		if !s.state.AMFConnected() {
			s.establishNGConnection(ctx)
			return
		}

		client, err := s.amfClient(ctx)
		if err != nil {
			s.state.SetAMFConnected(false)
			return
		}
		var probe map[string]any
		if err := client.Get(ctx, "/heartbeat", &probe); err != nil {
			logger.Warn("AMF heartbeat failed", logger.Err(err))
			s.state.SetAMFConnected(false)
			if _, isAPI := sbi.AsAPIError(err); !isAPI && s.registry != nil {
				s.registry.Invalidate(models.NFTypeAMF)
			}
		}
	}))
	s.workers.Start(ctx)

	logger.Info("gNB ready",
		logger.NFInstanceID(s.instanceID),
		"gnbId", s.gnbID,
		"tac", s.cfg.RAN.TAC,
	)
	return nil
}

// Stop shuts the background workers down.
func (s *Service) Stop(ctx context.Context) error {
	s.workers.Stop(s.cfg.ShutdownTimeout)
	return nil
}
