// Package nrfclient keeps one network function's relationship with the
// registry: registration upkeep, peer discovery with a small cache, and
// access token acquisition for the gated registry surfaces.
//
// Every function except the registry itself owns exactly one Client. Peer
// base URLs resolved through discovery are cached until the shorter of the
// configured TTL and the registry's advertised validity period; callers
// invalidate an entry when a request to the cached address fails, which
// forces a fresh search on the next call.
package nrfclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
)

const defaultCacheTTL = 30 * time.Second

// Options configures a Client.
type Options struct {
	// URL is the registry base URL.
	URL string

	// Requester is the calling function's type, sent as the
	// requester-nf-type discovery filter.
	Requester models.NFType

	// Timeout bounds each registry call and the calls of peer clients
	// built through ClientFor. Zero means the transport default.
	Timeout time.Duration

	// CacheTTL bounds discovery result reuse. Zero means 30s.
	CacheTTL time.Duration

	// Fallback supplies a static URL for a function type when discovery
	// yields nothing. May be nil.
	Fallback func(nfType models.NFType) string

	// Metrics instruments outbound calls. May be nil.
	Metrics metrics.SBIMetrics
}

// Client is the registry-facing side of a network function.
type Client struct {
	nrf         *sbi.Client
	requester   models.NFType
	cacheTTL    time.Duration
	peerTimeout time.Duration
	sbiMetrics  metrics.SBIMetrics
	fallback    func(models.NFType) string

	mu       sync.Mutex
	cache    map[models.NFType]*cacheEntry
	token    string
	tokenExp time.Time
}

type cacheEntry struct {
	profile models.NFProfile
	baseURL string
	expires time.Time
}

// New creates a registry client.
func New(opts Options) *Client {
	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	return &Client{
		nrf:         sbi.NewClient("NRF", opts.URL, opts.Timeout, opts.Metrics),
		requester:   opts.Requester,
		cacheTTL:    cacheTTL,
		peerTimeout: opts.Timeout,
		sbiMetrics:  opts.Metrics,
		fallback:    opts.Fallback,
		cache:       make(map[models.NFType]*cacheEntry),
	}
}

// Token returns an access token for the gated registry surfaces, fetching
// a fresh one when the cached token is missing or close to expiry.
func (c *Client) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, exp := c.token, c.tokenExp
	c.mu.Unlock()

	if token != "" && time.Now().Before(exp) {
		return token, nil
	}

	req := models.AccessTokenRequest{
		GrantType: models.GrantTypeClientCredentials,
		Scope:     models.ScopeNRFDefault,
	}
	var resp models.AccessTokenResponse
	if err := c.nrf.Post(ctx, "/oauth2/token", req, &resp); err != nil {
		return "", fmt.Errorf("failed to obtain registry token: %w", err)
	}

	// Renew a tenth early so in-flight requests never straddle expiry.
	ttl := time.Duration(resp.ExpiresIn) * time.Second
	c.mu.Lock()
	c.token = resp.AccessToken
	c.tokenExp = time.Now().Add(ttl - ttl/10)
	c.mu.Unlock()

	logger.Debug("Obtained registry access token",
		logger.NFType(string(c.requester)),
		"expires_in", resp.ExpiresIn)

	return resp.AccessToken, nil
}

// gated returns a registry client carrying a current access token.
func (c *Client) gated(ctx context.Context) (*sbi.Client, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}
	return c.nrf.WithToken(token), nil
}

// Register creates or replaces this function's profile in the registry.
func (c *Client) Register(ctx context.Context, profile *models.NFProfile) error {
	nrf, err := c.gated(ctx)
	if err != nil {
		return err
	}

	path := "/nnrf-nfm/v1/nf-instances/" + profile.NFInstanceID
	if err := nrf.Put(ctx, path, profile, profile); err != nil {
		return fmt.Errorf("failed to register %s with registry: %w", profile.NFType, err)
	}

	logger.Info("Registered with registry",
		logger.NFType(string(profile.NFType)),
		logger.NFInstanceID(profile.NFInstanceID))
	return nil
}

// Deregister removes this function's profile from the registry.
func (c *Client) Deregister(ctx context.Context, instanceID string) error {
	nrf, err := c.gated(ctx)
	if err != nil {
		return err
	}

	if err := nrf.Delete(ctx, "/nnrf-nfm/v1/nf-instances/"+instanceID, nil); err != nil {
		return fmt.Errorf("failed to deregister from registry: %w", err)
	}

	logger.Info("Deregistered from registry", logger.NFInstanceID(instanceID))
	return nil
}

// Heartbeat refreshes this function's registration, reporting its status
// and current load.
func (c *Client) Heartbeat(ctx context.Context, instanceID string, load int) error {
	nrf, err := c.gated(ctx)
	if err != nil {
		return err
	}

	ops := []models.PatchItem{
		{Op: "replace", Path: "/nfStatus", Value: string(models.NFStatusRegistered)},
		{Op: "replace", Path: "/load", Value: load},
	}
	path := "/nnrf-nfm/v1/nf-instances/" + instanceID
	if err := nrf.Patch(ctx, path, ops, nil); err != nil {
		return fmt.Errorf("registry heartbeat failed: %w", err)
	}

	logger.Debug("Registry heartbeat sent", logger.NFInstanceID(instanceID))
	return nil
}

// DiscoveryOptions are the filters of a discovery search. Zero fields are
// omitted from the query.
type DiscoveryOptions struct {
	TargetNFType    models.NFType
	RequesterNFType models.NFType // defaults to the client's own type
	ServiceNames    []string
	SNSSAIs         []models.SNSSAI
	PLMNList        []models.PLMNID
	DNN             string
	Limit           int
}

func (o DiscoveryOptions) query(defaultRequester models.NFType) string {
	q := url.Values{}
	if o.TargetNFType != "" {
		q.Set("target-nf-type", string(o.TargetNFType))
	}
	requester := o.RequesterNFType
	if requester == "" {
		requester = defaultRequester
	}
	if requester != "" {
		q.Set("requester-nf-type", string(requester))
	}
	if len(o.ServiceNames) > 0 {
		q.Set("service-names", strings.Join(o.ServiceNames, ","))
	}
	if len(o.SNSSAIs) > 0 {
		raw, _ := json.Marshal(o.SNSSAIs)
		q.Set("snssais", string(raw))
	}
	if len(o.PLMNList) > 0 {
		raw, _ := json.Marshal(o.PLMNList)
		q.Set("target-plmn-list", string(raw))
	}
	if o.DNN != "" {
		q.Set("dnn", o.DNN)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	return q.Encode()
}

// Discover searches the registry for instances matching opts.
func (c *Client) Discover(ctx context.Context, opts DiscoveryOptions) (*models.SearchResult, error) {
	nrf, err := c.gated(ctx)
	if err != nil {
		return nil, err
	}

	var result models.SearchResult
	path := "/nnrf-disc/v1/nf-instances?" + opts.query(c.requester)
	if err := nrf.Get(ctx, path, &result); err != nil {
		return nil, fmt.Errorf("discovery of %s failed: %w", opts.TargetNFType, err)
	}
	return &result, nil
}

// Resolve returns the base URL of the highest-priority registered
// instance of target, consulting the cache first. When discovery yields
// nothing the static fallback, if any, is used.
func (c *Client) Resolve(ctx context.Context, target models.NFType) (string, error) {
	c.mu.Lock()
	if entry, ok := c.cache[target]; ok && time.Now().Before(entry.expires) {
		baseURL := entry.baseURL
		c.mu.Unlock()
		return baseURL, nil
	}
	c.mu.Unlock()

	result, err := c.Discover(ctx, DiscoveryOptions{TargetNFType: target, Limit: 1})
	if err == nil && len(result.NFInstances) > 0 {
		profile := result.NFInstances[0]
		if baseURL := profile.BaseURL(); baseURL != "" {
			ttl := c.cacheTTL
			if v := time.Duration(result.ValidityPeriod) * time.Second; v > 0 && v < ttl {
				ttl = v
			}
			c.mu.Lock()
			c.cache[target] = &cacheEntry{
				profile: profile,
				baseURL: baseURL,
				expires: time.Now().Add(ttl),
			}
			c.mu.Unlock()

			logger.Debug("Discovered peer",
				logger.TargetNF(string(target)),
				logger.PeerURL(baseURL),
				logger.NFInstanceID(profile.NFInstanceID))
			return baseURL, nil
		}
	}

	if c.fallback != nil {
		if baseURL := c.fallback(target); baseURL != "" {
			logger.Warn("Discovery yielded nothing, using static peer URL",
				logger.TargetNF(string(target)),
				logger.PeerURL(baseURL),
				logger.Err(err))
			return baseURL, nil
		}
	}

	if err != nil {
		return "", err
	}
	return "", fmt.Errorf("no %s instance registered", target)
}

// Invalidate drops the cached instance of target so the next Resolve runs
// a fresh discovery. Callers invoke it after a request to the cached
// address fails.
func (c *Client) Invalidate(target models.NFType) {
	c.mu.Lock()
	delete(c.cache, target)
	c.mu.Unlock()
}

// ClientFor resolves target and returns an SBI client bound to it.
func (c *Client) ClientFor(ctx context.Context, target models.NFType) (*sbi.Client, error) {
	baseURL, err := c.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	return sbi.NewClient(string(target), baseURL, c.peerTimeout, c.sbiMetrics), nil
}
