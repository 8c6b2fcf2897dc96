package du

import "sync"

// MAC states of a UE.
const (
	MACStateActive   = "ACTIVE"
	MACStateInactive = "INACTIVE"
)

// ResourceAllocation is one PRB allocation.
type ResourceAllocation struct {
	StartRB     int `json:"start_rb"`
	NumRB       int `json:"num_rb"`
	MCS         int `json:"mcs"`
	HARQProcess int `json:"harq_process"`
}

// PowerControl is the uplink power control block of a grant.
type PowerControl struct {
	TPCCommand int     `json:"tpc_command"`
	Alpha      float64 `json:"alpha"`
	P0Nominal  int     `json:"p0_nominal"`
}

// ULGrant is one uplink grant (TS 38.321 §5.4).
type ULGrant struct {
	UEID               uint64             `json:"ue_id"`
	ResourceAllocation ResourceAllocation `json:"resource_allocation"`
	TimingAdvance      int                `json:"timing_advance"`
	PowerControl       PowerControl       `json:"power_control"`
}

// PDCCHAllocation is the control channel assignment of a DL grant.
type PDCCHAllocation struct {
	CCEIndex         int    `json:"cce_index"`
	AggregationLevel int    `json:"aggregation_level"`
	DCIFormat        string `json:"dci_format"`
}

// DLAssignment is one downlink assignment (TS 38.321 §5.3).
type DLAssignment struct {
	UEID               uint64             `json:"ue_id"`
	ResourceAllocation ResourceAllocation `json:"resource_allocation"`
	PDCCHAllocation    PDCCHAllocation    `json:"pdcch_allocation"`
}

// harqProcess tracks retransmissions for one HARQ process id.
type harqProcess struct {
	retxCount int
	maxRetx   int
	pending   bool
}

// MACScheduler allocates deterministic per-UE resources each slot and
// tracks HARQ feedback (TS 38.321).
type MACScheduler struct {
	mu            sync.Mutex
	currentTTI    uint64
	ulGrants      map[uint64]ULGrant
	dlAssignments map[uint64]DLAssignment
	harq          map[uint64]map[int]*harqProcess
}

// NewMACScheduler creates an empty scheduler.
func NewMACScheduler() *MACScheduler {
	return &MACScheduler{
		ulGrants:      make(map[uint64]ULGrant),
		dlAssignments: make(map[uint64]DLAssignment),
		harq:          make(map[uint64]map[int]*harqProcess),
	}
}

// ScheduleUplink grants resources to every MAC-active UE (TS 38.321
// §5.4). The latest grant set is retained for inspection.
func (m *MACScheduler) ScheduleUplink(ues []UEContext) map[uint64]ULGrant {
	grants := make(map[uint64]ULGrant)
	for _, ue := range ues {
		if ue.MACState != MACStateActive {
			continue
		}
		grants[ue.DUUEF1APID] = ULGrant{
			UEID: ue.DUUEF1APID,
			ResourceAllocation: ResourceAllocation{
				StartRB:     int(ue.DUUEF1APID*10) % 100,
				NumRB:       10,
				MCS:         16,
				HARQProcess: int(ue.DUUEF1APID % 8),
			},
			PowerControl: PowerControl{Alpha: 0.7, P0Nominal: -106},
		}
	}

	m.mu.Lock()
	m.ulGrants = grants
	m.currentTTI++
	m.mu.Unlock()
	return grants
}

// ScheduleDownlink assigns resources to every MAC-active UE (TS 38.321
// §5.3).
func (m *MACScheduler) ScheduleDownlink(ues []UEContext) map[uint64]DLAssignment {
	assignments := make(map[uint64]DLAssignment)
	for _, ue := range ues {
		if ue.MACState != MACStateActive {
			continue
		}
		assignments[ue.DUUEF1APID] = DLAssignment{
			UEID: ue.DUUEF1APID,
			ResourceAllocation: ResourceAllocation{
				StartRB:     int(ue.DUUEF1APID*12) % 100,
				NumRB:       12,
				MCS:         20,
				HARQProcess: int(ue.DUUEF1APID % 8),
			},
			PDCCHAllocation: PDCCHAllocation{
				CCEIndex:         int(ue.DUUEF1APID % 8),
				AggregationLevel: 4,
				DCIFormat:        "1_1",
			},
		}
	}

	m.mu.Lock()
	m.dlAssignments = assignments
	m.mu.Unlock()
	return assignments
}

// Latest returns the grant sets from the most recent scheduling pass.
func (m *MACScheduler) Latest() (map[uint64]ULGrant, map[uint64]DLAssignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ulGrants, m.dlAssignments
}

// ProcessHARQFeedback applies an ACK or NACK to the UE's HARQ process
// (TS 38.321 §5.4.1). An ACK clears the process; the fourth consecutive
// NACK drops the pending data.
func (m *MACScheduler) ProcessHARQFeedback(ueID uint64, process int, ack bool) (retxCount int, dropped bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.harq[ueID] == nil {
		m.harq[ueID] = make(map[int]*harqProcess)
	}
	state, ok := m.harq[ueID][process]
	if !ok {
		state = &harqProcess{maxRetx: 4, pending: true}
		m.harq[ueID][process] = state
	}

	if ack {
		state.retxCount = 0
		state.pending = false
		return 0, false
	}

	state.retxCount++
	if state.retxCount >= state.maxRetx {
		state.pending = false
		return state.retxCount, true
	}
	return state.retxCount, false
}
