// Package ausf implements the authentication server function: the two-step
// 5G-AKA procedure of TS 33.501 driven over the Nausf_UEAuthentication
// service of TS 29.509. Vectors come from the subscriber store, with a
// local derivation standing in when the store cannot be reached.
package ausf

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
)

// Authentication context statuses. SUCCESS and FAILURE are terminal.
const (
	CtxStatusOngoing = "ONGOING"
	CtxStatusSuccess = "SUCCESS"
	CtxStatusFailure = "FAILURE"
)

// AuthContext is one authentication attempt. Vector carries the expected
// response normalized under HXRESStar regardless of the vector source.
type AuthContext struct {
	SUPI               string
	ServingNetworkName string
	AuthType           string
	Vector             models.AuthenticationVector
	KSEAF              string
	Status             string
	CreatedAt          time.Time
	CompletedAt        *time.Time
}

// ConfirmResult is the outcome of applying a UE confirmation to a context.
// Replayed means the context was already terminal and the stored outcome
// was returned without re-verification.
type ConfirmResult struct {
	Found    bool
	Replayed bool
	Ctx      AuthContext
}

// State holds the authentication contexts keyed by authCtxId.
type State struct {
	mu       sync.RWMutex
	contexts map[string]*AuthContext
}

// NewState creates an empty context store.
func NewState() *State {
	return &State{contexts: make(map[string]*AuthContext)}
}

// Add stores a new context under the given id.
func (s *State) Add(authCtxID string, ctx *AuthContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[authCtxID] = ctx
}

// Get returns a snapshot of the context with the given id.
func (s *State) Get(authCtxID string) (AuthContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx, ok := s.contexts[authCtxID]
	if !ok {
		return AuthContext{}, false
	}
	return *ctx, true
}

// Confirm verifies the UE response against the stored expected response
// and moves the context to its terminal status. A context that is already
// terminal is never re-verified and never changes status; the stored
// outcome is returned with Replayed set.
func (s *State) Confirm(authCtxID, resStar string) ConfirmResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.contexts[authCtxID]
	if !ok {
		return ConfirmResult{}
	}
	if ctx.Status != CtxStatusOngoing {
		return ConfirmResult{Found: true, Replayed: true, Ctx: *ctx}
	}

	now := time.Now().UTC()
	ctx.CompletedAt = &now
	if resStar == ctx.Vector.HXRESStar {
		ctx.Status = CtxStatusSuccess
		ctx.KSEAF = deriveKSEAF(ctx.Vector.KAUSF, ctx.ServingNetworkName)
	} else {
		ctx.Status = CtxStatusFailure
	}
	return ConfirmResult{Found: true, Ctx: *ctx}
}

// Delete removes a context. Reports whether it existed.
func (s *State) Delete(authCtxID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.contexts[authCtxID]
	delete(s.contexts, authCtxID)
	return ok
}

// Counts returns the context totals by status.
func (s *State) Counts() (total, ongoing, succeeded, failed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ctx := range s.contexts {
		switch ctx.Status {
		case CtxStatusOngoing:
			ongoing++
		case CtxStatusSuccess:
			succeeded++
		case CtxStatusFailure:
			failed++
		}
	}
	return len(s.contexts), ongoing, succeeded, failed
}

// deconcealSUCI maps a concealed identity to its SUPI. Real de-concealment
// needs the home network key; the emulation keeps the trailing digit block
// of the SUCI intact, so the SUPI is recovered from the final
// dash-separated segment.
func deconcealSUCI(supiOrSuci string) string {
	if !strings.HasPrefix(supiOrSuci, "suci-") {
		return supiOrSuci
	}
	parts := strings.Split(supiOrSuci, "-")
	return "imsi-" + parts[len(parts)-1]
}

// fallbackVector synthesizes a local 5G-AKA vector when the subscriber
// store cannot provide one: AUTN is sqn||amf||mac from fresh randomness,
// and the expected response and KAUSF hash the SUPI in place of the
// permanent key.
func fallbackVector(supi string) (*models.AuthenticationVector, error) {
	buf := make([]byte, 30)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generating vector material: %w", err)
	}
	challenge := hex.EncodeToString(buf[:16])
	sqn := hex.EncodeToString(buf[16:22])
	mac := hex.EncodeToString(buf[22:30])
	autn := sqn + "8000" + mac

	return &models.AuthenticationVector{
		RAND:      challenge,
		AUTN:      autn,
		HXRESStar: hashHex(supi + challenge + autn)[:16],
		KAUSF:     hashHex(supi + challenge + "KAUSF"),
	}, nil
}

// deriveKSEAF derives the security anchor key from KAUSF and the serving
// network name.
func deriveKSEAF(kausf, servingNetworkName string) string {
	return hashHex(kausf + servingNetworkName + "KSEAF")
}

// hashHex is the emulation-grade hash family standing in for the 5G key
// derivation functions: hex-encoded SHA-256 of the concatenated inputs.
func hashHex(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
