package upf

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/bytesize"
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics"
	metricsprom "github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics/prometheus"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/nrfclient"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/worker"
)

// supportedFeatures is the UP function features bitmap announced in the
// status endpoint (TS 29.244 §8.2.25).
const supportedFeatures uint64 = 0x0003

// drainBatch bounds how many queued packets one drain pass forwards.
const drainBatch = 256

// Service is the UPF network function.
type Service struct {
	cfg        *config.Config
	state      *State
	registry   *nrfclient.Client
	instanceID string
	name       string
	userPlane  metrics.UserPlaneMetrics
	workers    *worker.Group
}

// New creates the UPF service.
func New(cfg *config.Config) (*Service, error) {
	instanceID := cfg.NF.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	name := cfg.NF.Name
	if name == "" {
		name = "UPF-001"
	}

	state, err := NewState(cfg.UserPlane)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:        cfg,
		state:      state,
		instanceID: instanceID,
		name:       name,
		userPlane:  metricsprom.NewUserPlaneMetrics(),
		workers:    worker.NewGroup(),
	}, nil
}

// SetRegistry hands the service the registry client. Called once before
// Start.
func (s *Service) SetRegistry(c *nrfclient.Client) {
	s.registry = c
}

// Type returns the network function type.
func (s *Service) Type() models.NFType {
	return models.NFTypeUPF
}

// InstanceID returns the NF instance identifier.
func (s *Service) InstanceID() string {
	return s.instanceID
}

// Profile returns the registry profile announcing the user-plane session
// service with the pool ranges and N3/N6 interfaces.
func (s *Service) Profile() *models.NFProfile {
	plmn := models.PLMNID{MCC: s.cfg.PLMN.MCC, MNC: s.cfg.PLMN.MNC}
	_, ipv6Pool := s.state.Pools()
	rangeStart, rangeEnd := s.state.ipv4.hostRange()
	pduSessionTypes := []string{"IPV4", "IPV6", "IPV4V6"}

	return &models.NFProfile{
		NFInstanceID:   s.instanceID,
		NFType:         models.NFTypeUPF,
		NFStatus:       models.NFStatusRegistered,
		HeartBeatTimer: int(s.cfg.NRF.HeartbeatInterval.Seconds()),
		PLMNList:       []models.PLMNID{plmn},
		SNSSAIs:        []models.SNSSAI{{SST: 1, SD: "010203"}},
		IPv4Addresses:  []string{s.cfg.SBI.Host},
		NFServices: []models.NFService{
			{
				ServiceInstanceID: "nupf-pdu-session-001",
				ServiceName:       "nupf-pdu-session",
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
		UPFInfo: &models.UPFInfo{
			SNSSAIUPFInfoList: []models.SNSSAIUPFInfoItem{
				{
					SNSSAI: models.SNSSAI{SST: 1, SD: "010203"},
					DNNUPFInfoList: []models.DNNUPFInfoItem{
						{
							DNN:             "internet",
							PDUSessionTypes: pduSessionTypes,
							IPv4AddressRanges: []models.IPv4AddressRange{
								{Start: rangeStart, End: rangeEnd},
							},
							IPv6PrefixRanges: []models.IPv6PrefixRange{
								{Start: ipv6Pool, End: ipv6Pool},
							},
						},
					},
				},
			},
			InterfaceUPFInfoList: []models.InterfaceUPFInfoItem{
				{
					InterfaceType:         "N3",
					NetworkInstance:       "access." + plmn.Domain(),
					IPv4EndpointAddresses: []string{s.cfg.SBI.Host},
				},
				{
					InterfaceType:         "N6",
					NetworkInstance:       "internet." + plmn.Domain(),
					IPv4EndpointAddresses: []string{s.cfg.SBI.Host},
				},
			},
			PDUSessionTypes: pduSessionTypes,
		},
	}
}

// HealthDetails reports the session population for the health endpoint.
func (s *Service) HealthDetails() map[string]any {
	sessions, tunnels, _, _ := s.state.Counts()
	return map[string]any{
		"activeSessions": sessions,
		"activeTunnels":  tunnels,
	}
}

// updateGauges refreshes the population gauges after state changes.
func (s *Service) updateGauges() {
	sessions, tunnels, v4, v6 := s.state.Counts()
	s.userPlane.SetActiveSessions(sessions)
	s.userPlane.SetActiveTunnels(tunnels)
	s.userPlane.SetAllocatedAddresses(v4 + v6)
}

// Start brings up the background workers: the queue drain loop, the
// periodic statistics log, and the QoS drop monitor.
func (s *Service) Start(ctx context.Context) error {
	up := s.cfg.UserPlane

	s.workers.Add(worker.NewPeriodic(worker.Config{
		Name:     "queue-drain",
		Interval: up.DrainInterval,
	}, func(ctx context.Context) {
		drained := s.state.DrainQueued(drainBatch)
		for _, pkt := range drained {
			s.userPlane.RecordPacket(pkt.Direction, outcomeForwarded, pkt.Size)
		}
		if len(drained) > 0 {
			logger.Debug("Queued packets forwarded", logger.Packets(uint64(len(drained))))
		}
	}))

	s.workers.Add(worker.NewPeriodic(worker.Config{
		Name:     "traffic-stats",
		Interval: up.StatsInterval,
	}, func(ctx context.Context) {
		totals := s.state.Totals()
		logger.Info("User plane statistics",
			logger.Sessions(totals.Sessions),
			logger.Tunnels(totals.Tunnels),
			logger.BytesUl(totals.BytesUL),
			logger.BytesDl(totals.BytesDL),
			slog.String("volume", bytesize.ByteSize(totals.BytesUL+totals.BytesDL).String()),
			logger.Dropped(totals.DroppedUL+totals.DroppedDL),
		)
	}))

	s.workers.Add(worker.NewPeriodic(worker.Config{
		Name:     "qos-monitor",
		Interval: up.MonitorInterval,
	}, func(ctx context.Context) {
		for _, tunnelID := range s.state.SweepDrops(up.DropWarnThreshold) {
			logger.Warn("High packet drop rate on tunnel", logger.TunnelID(tunnelID))
		}
	}))

	s.workers.Start(ctx)

	ipv4Pool, ipv6Pool := s.state.Pools()
	logger.Info("UPF ready",
		logger.NFInstanceID(s.instanceID),
		"ipv4Pool", ipv4Pool,
		"ipv6Pool", ipv6Pool,
		"defaultMbr", s.cfg.UserPlane.DefaultMBR.String(),
	)
	return nil
}

// Stop shuts the background workers down.
func (s *Service) Stop(ctx context.Context) error {
	s.workers.Stop(s.cfg.ShutdownTimeout)
	return nil
}
