// Package nrf implements the network repository function: the NF profile
// registry and directed discovery of TS 29.510, status subscriptions, the
// OAuth2-style token endpoint, and the legacy register/discover surface.
package nrf

import (
	"sort"
	"sync"
	"time"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
)

// State holds the registry stores. Both maps are guarded by mu; reads copy
// profile values out so serialization never races a concurrent patch.
type State struct {
	mu            sync.RWMutex
	profiles      map[string]*models.NFProfile
	subscriptions map[string]*models.SubscriptionData
}

// NewState creates an empty registry.
func NewState() *State {
	return &State{
		profiles:      make(map[string]*models.NFProfile),
		subscriptions: make(map[string]*models.SubscriptionData),
	}
}

// Upsert stores or replaces a profile, reporting whether the instance was
// already registered.
func (s *State) Upsert(profile *models.NFProfile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.profiles[profile.NFInstanceID]
	s.profiles[profile.NFInstanceID] = profile
	return existed
}

// Get returns a copy of the profile registered under instanceID.
func (s *State) Get(instanceID string) (models.NFProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[instanceID]
	if !ok {
		return models.NFProfile{}, false
	}
	return *p, true
}

// List returns every registered profile, optionally filtered by NF type,
// ordered by instance id for stable output.
func (s *State) List(nfType models.NFType) []models.NFProfile {
	s.mu.RLock()
	out := make([]models.NFProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if nfType != "" && p.NFType != nfType {
			continue
		}
		out = append(out, *p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].NFInstanceID < out[j].NFInstanceID })
	return out
}

// Patch applies JSON-Patch style operations to a registered profile.
// Only "replace" of /nfStatus and /load are supported; other operations
// are ignored. Returns false when the instance is unknown.
func (s *State) Patch(instanceID string, items []models.PatchItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[instanceID]
	if !ok {
		return false
	}

	for _, item := range items {
		if item.Op != "replace" {
			continue
		}
		switch item.Path {
		case "/nfStatus":
			if v, ok := item.Value.(string); ok {
				p.NFStatus = models.NFStatus(v)
			}
		case "/load":
			if v, ok := item.Value.(float64); ok {
				p.Load = int(v)
			}
		}
	}
	return true
}

// Delete removes a profile, reporting whether it existed.
func (s *State) Delete(instanceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.profiles[instanceID]
	delete(s.profiles, instanceID)
	return ok
}

// SearchQuery carries the discovery filters of one search request.
type SearchQuery struct {
	TargetNFType    models.NFType
	RequesterNFType models.NFType
	ServiceNames    []string
	SNSSAIs         []models.SNSSAI
	PLMNs           []models.PLMNID
	Limit           int
}

// Search returns the REGISTERED profiles matching every present filter,
// ordered by priority ascending then capacity descending.
//
// A profile that omits a filterable attribute matches any value of that
// filter: an empty allowedNfTypes admits all requesters, an empty sNssais
// list serves every slice, and a profile without services passes the
// service-name filter.
func (s *State) Search(q SearchQuery) []models.NFProfile {
	s.mu.RLock()
	matched := make([]models.NFProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if q.matches(p) {
			matched = append(matched, *p)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority < matched[j].Priority
		}
		return matched[i].Capacity > matched[j].Capacity
	})

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched
}

func (q SearchQuery) matches(p *models.NFProfile) bool {
	if p.NFStatus != models.NFStatusRegistered {
		return false
	}
	if q.TargetNFType != "" && p.NFType != q.TargetNFType {
		return false
	}
	if q.RequesterNFType != "" && !p.AllowsNFType(q.RequesterNFType) {
		return false
	}
	if len(q.ServiceNames) > 0 && len(p.NFServices) > 0 && !hasAnyService(p, q.ServiceNames) {
		return false
	}
	if len(q.SNSSAIs) > 0 && !servesAnySNSSAI(p, q.SNSSAIs) {
		return false
	}
	if len(q.PLMNs) > 0 && !servesAnyPLMN(p, q.PLMNs) {
		return false
	}
	return true
}

func hasAnyService(p *models.NFProfile, names []string) bool {
	for _, name := range names {
		if p.HasService(name) {
			return true
		}
	}
	return false
}

func servesAnySNSSAI(p *models.NFProfile, snssais []models.SNSSAI) bool {
	for _, snssai := range snssais {
		if p.ServesSNSSAI(snssai) {
			return true
		}
	}
	return false
}

func servesAnyPLMN(p *models.NFProfile, plmns []models.PLMNID) bool {
	for _, plmn := range plmns {
		if p.ServesPLMN(plmn) {
			return true
		}
	}
	return false
}

// AddSubscription stores a status subscription under its assigned id.
func (s *State) AddSubscription(sub *models.SubscriptionData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[sub.SubscriptionID] = sub
}

// ExpireSubscriptions drops subscriptions whose validity has passed and
// returns how many were removed.
func (s *State) ExpireSubscriptions(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sub := range s.subscriptions {
		if sub.ValidityTime != nil && sub.ValidityTime.Before(now) {
			delete(s.subscriptions, id)
			removed++
		}
	}
	return removed
}

// Counts returns the registry population: registered profiles and live
// subscriptions.
func (s *State) Counts() (profiles, subscriptions int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles), len(s.subscriptions)
}

// CountsByType returns the number of registered instances per NF type.
func (s *State) CountsByType() map[models.NFType]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.NFType]int, len(s.profiles))
	for _, p := range s.profiles {
		counts[p.NFType]++
	}
	return counts
}
