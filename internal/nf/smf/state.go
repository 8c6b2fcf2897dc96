// Package smf implements the session management function: the
// Nsmf_PDUSession service of TS 29.502 driving N4 session establishment
// toward the user plane (TS 29.244) and, when a policy function is
// reachable, SM policy association per TS 29.512.
package smf

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/pfcp"
)

// SessionContext is one PDU session, keyed by "supi:pduSessionId".
type SessionContext struct {
	SUPI           string
	PDUSessionID   int
	DNN            string
	SNSSAI         models.SNSSAI
	ANType         string
	PDUSessionType string
	UEIPAddress    string
	State          string
	SMFSEID        string
	UPFSEID        string
	N3TunnelInfo   *pfcp.FTEID
	PolicyDecision *models.SMPolicyDecision
	CreatedAt      time.Time
	ReleasedAt     *time.Time
}

// SessionKey is the canonical context reference of one PDU session.
func SessionKey(supi string, pduSessionID int) string {
	return fmt.Sprintf("%s:%d", supi, pduSessionID)
}

// State holds the PDU session contexts.
type State struct {
	mu       sync.RWMutex
	sessions map[string]*SessionContext
}

// NewState creates an empty session store.
func NewState() *State {
	return &State{sessions: make(map[string]*SessionContext)}
}

// Add stores a session under its canonical key, replacing any previous
// context for the same UE and session id.
func (s *State) Add(ctx *SessionContext) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := SessionKey(ctx.SUPI, ctx.PDUSessionID)
	s.sessions[key] = ctx
	return key
}

// Get returns a snapshot of the session with the given reference.
func (s *State) Get(ref string) (SessionContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, ok := s.sessions[ref]
	if !ok {
		return SessionContext{}, false
	}
	return *ctx, true
}

// Release marks a session released and returns its final snapshot. An
// already released session reports released=false so the caller skips the
// user-plane teardown.
func (s *State) Release(ref string) (ctx SessionContext, found, released bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[ref]
	if !ok {
		return SessionContext{}, false, false
	}
	if stored.State == models.SessionStatusReleased {
		return *stored, true, false
	}

	now := time.Now().UTC()
	stored.State = models.SessionStatusReleased
	stored.ReleasedAt = &now
	return *stored, true, true
}

// ActiveKeys returns the sorted references of every non-released session.
func (s *State) ActiveKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.sessions))
	for key, ctx := range s.sessions {
		if ctx.State != models.SessionStatusReleased {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Counts returns the session totals by state.
func (s *State) Counts() (total, active, released int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ctx := range s.sessions {
		if ctx.State == models.SessionStatusReleased {
			released++
		} else {
			active++
		}
	}
	return len(s.sessions), active, released
}

// AllocateUEIP derives the deterministic UE IPv4 address of a session id.
// The second octet follows the session id, so concurrent sessions of one
// UE land in distinct /8-internal subnets.
func AllocateUEIP(pduSessionID int) string {
	return fmt.Sprintf("10.%d.0.1", (pduSessionID%254)+1)
}
