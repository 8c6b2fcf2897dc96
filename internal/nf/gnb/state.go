// Package gnb implements the gNodeB: the RAN side of NGAP toward the AMF
// (TS 38.413) with RAN UE context and served-cell bookkeeping.
package gnb

import (
	"sort"
	"sync"
	"time"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
)

// UE states on the RAN side.
const (
	UEStateIdle      = "IDLE"
	UEStateConnected = "CONNECTED"
)

// SecurityContext holds what the AMF pushed down in UE Context Setup.
type SecurityContext struct {
	SecurityKey            string
	UESecurityCapabilities map[string]any
}

// PDUSessionEntry is one radio-side PDU session resource.
type PDUSessionEntry struct {
	PDUSessionID int
	State        string
	SetupAt      time.Time
}

// UEContext is one RAN UE NGAP association.
type UEContext struct {
	RANUENGAPID  uint64
	AMFUENGAPID  uint64 // 0 until the AMF side binds
	State        string
	Security     *SecurityContext
	PDUSessions  map[int]*PDUSessionEntry
	LastActivity time.Time
}

// NRCGI is the NR cell global identity (TS 38.413 §9.3.1.7).
type NRCGI struct {
	PLMNID         models.PLMNID `json:"plmnIdentity"`
	NRCellIdentity string        `json:"nrCellIdentity"`
}

// CellContext is one served NR cell.
type CellContext struct {
	CellID    string
	NRCGI     NRCGI
	CellState string
	Load      int
}

// State holds the gNB's UE and cell contexts.
type State struct {
	mu           sync.RWMutex
	ues          map[uint64]*UEContext
	cells        map[string]*CellContext
	nextRANUEID  uint64
	amfConnected bool
}

// NewState creates the context store with one served cell.
func NewState(cell CellContext) *State {
	s := &State{
		ues:   make(map[uint64]*UEContext),
		cells: make(map[string]*CellContext),
	}
	c := cell
	s.cells[cell.CellID] = &c
	return s
}

// AllocateUEContext creates an IDLE UE context under a fresh RAN-UE-NGAP-ID.
func (s *State) AllocateUEContext() *UEContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allocateLocked(UEStateIdle, 0)
}

// AllocateConnected creates a CONNECTED context already bound to the given
// AMF-UE-NGAP-ID, used by the handover target path.
func (s *State) AllocateConnected(amfUENGAPID uint64) *UEContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allocateLocked(UEStateConnected, amfUENGAPID)
}

func (s *State) allocateLocked(state string, amfUENGAPID uint64) *UEContext {
	s.nextRANUEID++
	ctx := &UEContext{
		RANUENGAPID:  s.nextRANUEID,
		AMFUENGAPID:  amfUENGAPID,
		State:        state,
		PDUSessions:  make(map[int]*PDUSessionEntry),
		LastActivity: time.Now().UTC(),
	}
	s.ues[ctx.RANUENGAPID] = ctx
	return ctx
}

// Get returns a snapshot of the UE context.
func (s *State) Get(ranUENGAPID uint64) (UEContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, ok := s.ues[ranUENGAPID]
	if !ok {
		return UEContext{}, false
	}
	return *ctx, true
}

// BindAMFUENGAPID records the AMF-side id on first receipt. Returns false
// when the RAN-side id is unknown.
func (s *State) BindAMFUENGAPID(ranUENGAPID, amfUENGAPID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.ues[ranUENGAPID]
	if !ok {
		return false
	}
	if ctx.AMFUENGAPID == 0 {
		ctx.AMFUENGAPID = amfUENGAPID
	}
	ctx.LastActivity = time.Now().UTC()
	return true
}

// SetupSecurity installs the security context and moves the UE to
// CONNECTED. Returns false when the RAN-side id is unknown.
func (s *State) SetupSecurity(ranUENGAPID, amfUENGAPID uint64, sec *SecurityContext) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.ues[ranUENGAPID]
	if !ok {
		return false
	}
	ctx.AMFUENGAPID = amfUENGAPID
	ctx.Security = sec
	ctx.State = UEStateConnected
	ctx.LastActivity = time.Now().UTC()
	return true
}

// AddPDUSession records an ACTIVE session resource on the UE context.
func (s *State) AddPDUSession(ranUENGAPID uint64, pduSessionID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.ues[ranUENGAPID]
	if !ok {
		return false
	}
	ctx.PDUSessions[pduSessionID] = &PDUSessionEntry{
		PDUSessionID: pduSessionID,
		State:        "ACTIVE",
		SetupAt:      time.Now().UTC(),
	}
	ctx.LastActivity = time.Now().UTC()
	return true
}

// SetAMFConnected flips the NG connection flag.
func (s *State) SetAMFConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.amfConnected = connected
}

// AMFConnected reports the NG connection flag.
func (s *State) AMFConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.amfConnected
}

// Counts returns UE totals by state plus session and cell counts.
func (s *State) Counts() (total, connected, sessions, cells int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ctx := range s.ues {
		if ctx.State == UEStateConnected {
			connected++
		}
		sessions += len(ctx.PDUSessions)
	}
	return len(s.ues), connected, sessions, len(s.cells)
}

// UESnapshot returns UE context copies ordered by RAN-UE-NGAP-ID.
func (s *State) UESnapshot() []UEContext {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]UEContext, 0, len(s.ues))
	for _, ctx := range s.ues {
		out = append(out, *ctx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RANUENGAPID < out[j].RANUENGAPID })
	return out
}

// CellSnapshot returns served-cell copies ordered by cell id.
func (s *State) CellSnapshot() []CellContext {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CellContext, 0, len(s.cells))
	for _, cell := range s.cells {
		out = append(out, *cell)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CellID < out[j].CellID })
	return out
}
