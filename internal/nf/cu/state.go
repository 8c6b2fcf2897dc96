// Package cu implements the gNB centralized unit: RRC message
// construction (TS 38.331) and the CU side of F1AP toward the DU
// (TS 38.463).
package cu

import (
	"sort"
	"sync"
	"time"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
)

// RRC states on the CU side.
const (
	RRCStateIdle      = "IDLE"
	RRCStateConnected = "CONNECTED"
)

// UEContext is one F1AP UE association seen from the CU.
type UEContext struct {
	CUUEF1APID    uint64
	DUUEF1APID    uint64 // 0 until the DU side binds
	CRNTI         int
	ServCellIndex int
	RRCState      string
	LastActivity  time.Time
}

// NRCGI is the NR cell global identity.
type NRCGI struct {
	PLMNID         models.PLMNID `json:"plmnIdentity"`
	NRCellIdentity string        `json:"nrCellIdentity"`
}

// ServedCell describes one cell the CU serves over F1.
type ServedCell struct {
	CellID string
	NRCGI  NRCGI
	NRPCI  int
	TAC    string
	NRMode string
}

// State holds the CU's UE contexts and served cells.
type State struct {
	mu          sync.RWMutex
	ues         map[uint64]*UEContext
	cells       map[string]*ServedCell
	nextCUUEID  uint64
	duConnected bool
}

// NewState creates the context store with one served cell.
func NewState(cell ServedCell) *State {
	s := &State{
		ues:   make(map[uint64]*UEContext),
		cells: make(map[string]*ServedCell),
	}
	c := cell
	s.cells[cell.CellID] = &c
	return s
}

// AllocateUEContext creates a CONNECTED UE context under a fresh
// gNB-CU-UE-F1AP-ID, bound to the DU side ids from the initial transfer.
func (s *State) AllocateUEContext(duUEF1APID uint64, cRNTI int) *UEContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCUUEID++
	ctx := &UEContext{
		CUUEF1APID:   s.nextCUUEID,
		DUUEF1APID:   duUEF1APID,
		CRNTI:        cRNTI,
		RRCState:     RRCStateConnected,
		LastActivity: time.Now().UTC(),
	}
	s.ues[ctx.CUUEF1APID] = ctx
	return ctx
}

// Get returns a snapshot of the UE context.
func (s *State) Get(cuUEF1APID uint64) (UEContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, ok := s.ues[cuUEF1APID]
	if !ok {
		return UEContext{}, false
	}
	return *ctx, true
}

// BindDUUEF1APID records the DU-side id from the UE Context Setup
// Response. Returns false when the CU-side id is unknown.
func (s *State) BindDUUEF1APID(cuUEF1APID, duUEF1APID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.ues[cuUEF1APID]
	if !ok {
		return false
	}
	ctx.DUUEF1APID = duUEF1APID
	ctx.RRCState = RRCStateConnected
	ctx.LastActivity = time.Now().UTC()
	return true
}

// SetDUConnected flips the F1 connection flag.
func (s *State) SetDUConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duConnected = connected
}

// DUConnected reports the F1 connection flag.
func (s *State) DUConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duConnected
}

// Counts returns UE totals by RRC state plus the served cell count.
func (s *State) Counts() (total, connected, cells int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ctx := range s.ues {
		if ctx.RRCState == RRCStateConnected {
			connected++
		}
	}
	return len(s.ues), connected, len(s.cells)
}

// UESnapshot returns UE context copies ordered by gNB-CU-UE-F1AP-ID.
func (s *State) UESnapshot() []UEContext {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]UEContext, 0, len(s.ues))
	for _, ctx := range s.ues {
		out = append(out, *ctx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CUUEF1APID < out[j].CUUEF1APID })
	return out
}

// CellSnapshot returns served-cell copies ordered by cell id.
func (s *State) CellSnapshot() []ServedCell {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ServedCell, 0, len(s.cells))
	for _, cell := range s.cells {
		out = append(out, *cell)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CellID < out[j].CellID })
	return out
}
