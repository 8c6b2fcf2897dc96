// Package amf implements the access and mobility management function:
// the NAS procedures of TS 24.501 (registration, authentication, security
// mode, session establishment forwarding) and the AMF side of NGAP
// (TS 38.413) toward the RAN.
package amf

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/nas"
)

// Registration states of the per-SUPI mobility management FSM.
const (
	StateDeregistered = "DEREGISTERED"
	StateAuthPending  = "AUTH_PENDING"
	StateSecPending   = "SEC_PENDING"
	StateRegistered   = "REGISTERED"
)

// SecurityContext is the NAS security context established by the
// security mode procedure.
type SecurityContext struct {
	KSEAF      string
	Algorithms nas.SecurityAlgorithms
	NGKSI      int
}

// PDUSessionRef tracks one PDU session anchored at the SMF.
type PDUSessionRef struct {
	PDUSessionID int
	PTI          int
	State        string
	UEIPAddress  string
	SMContextRef string
	CreatedAt    time.Time
}

// UEContext is the mobility management context of one UE.
type UEContext struct {
	SUPI                 string
	SUCI                 string
	RegistrationType     int
	UESecurityCapability map[string]any
	RequestedNSSAI       []models.SNSSAI
	AllowedNSSAI         []models.SNSSAI
	RejectedNSSAI        []models.SNSSAI
	State                string
	GUTI                 string
	AuthCtxID            string
	Security             *SecurityContext
	IMEISV               string
	PDUSessions          map[int]*PDUSessionRef
	RegisteredAt         time.Time
}

// ranBinding pairs the RAN and AMF sides of one NGAP UE association.
type ranBinding struct {
	RANUENGAPID uint64
	AMFUENGAPID uint64
	BoundAt     time.Time
}

// ranConnection records an NG-connected RAN node.
type ranConnection struct {
	NodeName    string
	GlobalID    map[string]any
	ConnectedAt time.Time
}

// State holds the AMF's UE contexts and NGAP associations.
type State struct {
	mu            sync.RWMutex
	ues           map[string]*UEContext
	bindings      map[uint64]*ranBinding
	rans          map[string]*ranConnection
	nextAMFUEID   uint64
	lastHeartbeat time.Time
}

// NewState creates an empty context store.
func NewState() *State {
	return &State{
		ues:      make(map[string]*UEContext),
		bindings: make(map[uint64]*ranBinding),
		rans:     make(map[string]*ranConnection),
	}
}

// UpsertRegistration creates or replaces the UE context for a fresh
// registration attempt. The context starts in DEREGISTERED until the
// procedure advances it.
func (s *State) UpsertRegistration(ctx *UEContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.PDUSessions == nil {
		ctx.PDUSessions = make(map[int]*PDUSessionRef)
	}
	ctx.State = StateDeregistered
	s.ues[ctx.SUPI] = ctx
}

// Get returns a snapshot of the UE context.
func (s *State) Get(supi string) (UEContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, ok := s.ues[supi]
	if !ok {
		return UEContext{}, false
	}
	return *ctx, true
}

// Transition moves a UE to the given registration state and applies
// mutate under the lock. Returns false when the SUPI is unknown.
func (s *State) Transition(supi, state string, mutate func(*UEContext)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.ues[supi]
	if !ok {
		return false
	}
	ctx.State = state
	if state == StateRegistered {
		ctx.RegisteredAt = time.Now().UTC()
	}
	if mutate != nil {
		mutate(ctx)
	}
	return true
}

// AddPDUSession records a session ref on a registered UE.
func (s *State) AddPDUSession(supi string, ref *PDUSessionRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.ues[supi]
	if !ok {
		return false
	}
	ctx.PDUSessions[ref.PDUSessionID] = ref
	return true
}

// AllocateAMFUENGAPID binds a fresh AMF-side NGAP id to the RAN-side one.
func (s *State) AllocateAMFUENGAPID(ranUENGAPID uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAMFUEID++
	s.bindings[s.nextAMFUEID] = &ranBinding{
		RANUENGAPID: ranUENGAPID,
		AMFUENGAPID: s.nextAMFUEID,
		BoundAt:     time.Now().UTC(),
	}
	return s.nextAMFUEID
}

// KnownAMFUENGAPID reports whether the AMF allocated the given id.
func (s *State) KnownAMFUENGAPID(id uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.bindings[id]
	return ok
}

// RecordRANConnection stores an NG-connected RAN node under its name.
func (s *State) RecordRANConnection(name string, globalID map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rans[name] = &ranConnection{
		NodeName:    name,
		GlobalID:    globalID,
		ConnectedAt: time.Now().UTC(),
	}
}

// TouchHeartbeat records RAN liveness probes.
func (s *State) TouchHeartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastHeartbeat = time.Now().UTC()
}

// Counts returns UE totals by state plus session and association counts.
func (s *State) Counts() (total, registered, sessions, securityContexts, rans int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ctx := range s.ues {
		if ctx.State == StateRegistered {
			registered++
		}
		if ctx.Security != nil {
			securityContexts++
		}
		sessions += len(ctx.PDUSessions)
	}
	return len(s.ues), registered, sessions, securityContexts, len(s.rans)
}

// Snapshot returns per-SUPI context summaries, sorted by SUPI.
func (s *State) Snapshot() []UEContext {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]UEContext, 0, len(s.ues))
	for _, ctx := range s.ues {
		out = append(out, *ctx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SUPI < out[j].SUPI })
	return out
}

// DeconcealSUCI maps a concealed identity to its SUPI: the trailing digit
// run of the SUCI names the MSIN in this emulation.
func DeconcealSUCI(suci string) string {
	if !strings.HasPrefix(suci, "suci-") {
		return suci
	}
	parts := strings.Split(suci, "-")
	return "imsi-" + parts[len(parts)-1]
}

// GUTI derives the 5G-GUTI of a SUPI (TS 23.003 §2.10.2.1): the "4"
// type marker, the GUAMI digits, and a 32-bit FNV-1a hash of the IMSI as
// the 5G-TMSI. Deterministic across processes.
func GUTI(guami models.GUAMI, supi string) string {
	imsi := strings.TrimPrefix(supi, "imsi-")

	mnc := guami.PLMNID.MNC
	if len(mnc) == 2 {
		mnc = "0" + mnc
	}
	guamiDigits := guami.PLMNID.MCC + mnc + guami.AMFSetID + "0" + guami.AMFRegionID

	h := fnv.New32a()
	h.Write([]byte(imsi))
	return fmt.Sprintf("4%s%08X", guamiDigits, h.Sum32())
}
