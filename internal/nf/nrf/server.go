package nrf

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics"
	metricsprom "github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics/prometheus"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/worker"
)

const (
	// supportedFeatures is the feature bitmap advertised in search results.
	supportedFeatures = "0x1f"

	// sweepInterval paces the background sweep that refreshes population
	// gauges and expires stale subscriptions.
	sweepInterval = 15 * time.Second
)

// Service is the repository function. It owns the registry state and the
// token service whose tokens gate the management and discovery surfaces.
type Service struct {
	cfg        *config.Config
	state      *State
	tokens     *sbi.TokenService
	gate       *sbi.TokenService
	instanceID string
	procedures metrics.ProcedureMetrics
	workers    *worker.Group
}

// New creates the repository service. When no signing secret is configured
// a random per-boot secret is generated, so issued tokens do not survive a
// restart.
func New(cfg *config.Config) (*Service, error) {
	instanceID := cfg.NF.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generating token secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
	}

	tokens, err := sbi.NewTokenService(sbi.TokenConfig{
		Secret:   secret,
		Issuer:   instanceID,
		TokenTTL: cfg.Auth.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	gate := tokens
	if !cfg.Auth.IsEnabled() {
		logger.Warn("Token enforcement disabled, management and discovery are ungated")
		gate = nil
	}

	s := &Service{
		cfg:        cfg,
		state:      NewState(),
		tokens:     tokens,
		gate:       gate,
		instanceID: instanceID,
		procedures: metricsprom.NewProcedureMetrics(),
		workers:    worker.NewGroup(),
	}

	s.workers.Add(worker.NewPeriodic(worker.Config{
		Name:      "registry-sweep",
		Interval:  sweepInterval,
		Immediate: true,
	}, s.sweep))

	return s, nil
}

// Type returns the network function type.
func (s *Service) Type() models.NFType { return models.NFTypeNRF }

// InstanceID returns the per-boot registry instance id, which is also the
// issuer claim of every token it signs.
func (s *Service) InstanceID() string { return s.instanceID }

// Profile returns nil: the repository does not register with itself.
func (s *Service) Profile() *models.NFProfile { return nil }

// HealthDetails contributes registry population counts to /health.
func (s *Service) HealthDetails() map[string]any {
	profiles, subscriptions := s.state.Counts()
	return map[string]any{
		"registeredNfs":       profiles,
		"activeSubscriptions": subscriptions,
	}
}

// Start launches the background sweep.
func (s *Service) Start(ctx context.Context) error {
	s.workers.Start(ctx)
	return nil
}

// Stop halts background work. Registry state is in-memory only, so there
// is nothing to flush.
func (s *Service) Stop(ctx context.Context) error {
	s.workers.Stop(s.cfg.ShutdownTimeout)
	return nil
}

// sweep refreshes the per-type population gauges and drops expired status
// subscriptions.
func (s *Service) sweep(ctx context.Context) {
	for nfType, count := range s.state.CountsByType() {
		s.procedures.SetRegisteredNFs(string(nfType), count)
	}

	if removed := s.state.ExpireSubscriptions(time.Now()); removed > 0 {
		logger.Debug("Expired status subscriptions", "removed", removed)
	}
}
