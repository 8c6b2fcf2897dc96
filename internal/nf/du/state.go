// Package du implements the gNB distributed unit: the DU side of F1AP
// toward the CU (TS 38.463) over a simulated MAC/RLC/PDCP/PHY protocol
// stack (TS 38.321, 38.322, 38.323, 38.201).
package du

import (
	"sort"
	"sync"
	"time"
)

// RRC states on the DU side.
const (
	RRCStateIdle      = "IDLE"
	RRCStateConnected = "CONNECTED"
)

// UEContext is one F1AP UE association seen from the DU.
type UEContext struct {
	DUUEF1APID   uint64
	CRNTI        int
	CellIndex    int
	RRCState     string
	MACState     string
	LastActivity time.Time
}

// State holds the DU's UE contexts.
type State struct {
	mu          sync.RWMutex
	ues         map[uint64]*UEContext
	nextDUUEID  uint64
	cuConnected bool
}

// NewState creates an empty context store.
func NewState() *State {
	return &State{ues: make(map[uint64]*UEContext)}
}

// AllocateUEContext creates a MAC-active UE context under a fresh
// gNB-DU-UE-F1AP-ID with the C-RNTI derived from it.
func (s *State) AllocateUEContext() *UEContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextDUUEID++
	ctx := &UEContext{
		DUUEF1APID:   s.nextDUUEID,
		CRNTI:        0x1000 + int(s.nextDUUEID),
		RRCState:     RRCStateIdle,
		MACState:     MACStateActive,
		LastActivity: time.Now().UTC(),
	}
	s.ues[ctx.DUUEF1APID] = ctx
	return ctx
}

// Get returns a snapshot of the UE context.
func (s *State) Get(duUEF1APID uint64) (UEContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, ok := s.ues[duUEF1APID]
	if !ok {
		return UEContext{}, false
	}
	return *ctx, true
}

// SetCUConnected flips the F1 connection flag.
func (s *State) SetCUConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cuConnected = connected
}

// CUConnected reports the F1 connection flag.
func (s *State) CUConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cuConnected
}

// Count returns the number of UE contexts.
func (s *State) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ues)
}

// UESnapshot returns UE context copies ordered by gNB-DU-UE-F1AP-ID.
func (s *State) UESnapshot() []UEContext {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]UEContext, 0, len(s.ues))
	for _, ctx := range s.ues {
		out = append(out, *ctx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DUUEF1APID < out[j].DUUEF1APID })
	return out
}
