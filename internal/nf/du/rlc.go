package du

import (
	"fmt"
	"sync"
	"time"
)

// RLC modes (TS 38.322 §4.2.1).
const (
	RLCModeTM = "TM"
	RLCModeUM = "UM"
	RLCModeAM = "AM"
)

// RLCHeader is the AM PDU header (TS 38.322 §6.2.2.4).
type RLCHeader struct {
	SN   int    `json:"sn"`
	SO   *int   `json:"so,omitempty"`
	SI   string `json:"si"`
	Poll bool   `json:"p"`
}

// RLCPDU is one RLC data PDU.
type RLCPDU struct {
	Header    RLCHeader `json:"header"`
	Payload   string    `json:"payload"`
	Mode      string    `json:"mode"`
	BearerID  int       `json:"bearer_id"`
	Timestamp time.Time `json:"timestamp"`
}

// amEntity holds the AM state variables of TS 38.322 §7.1. Sequence
// numbers live in a 12-bit space.
type amEntity struct {
	txWindow map[int]RLCPDU
	rxWindow map[int]RLCPDU

	bearerID int

	vtS  int // send state
	vtA  int // acknowledgment state
	vrR  int // receive state
	vrMR int // maximum receive state

	pollSN          int
	byteWithoutPoll int
	pduWithoutPoll  int

	tPollRetransmit  int // ms
	tReassembly      int // ms
	tStatusProhibit  int // ms
	maxRetxThreshold int
	snFieldLength    int // bits
}

// RLCLayer manages the AM entities keyed "am_<ue>_<bearer>".
type RLCLayer struct {
	mu sync.Mutex
	am map[string]*amEntity
}

// NewRLCLayer creates an empty entity store.
func NewRLCLayer() *RLCLayer {
	return &RLCLayer{am: make(map[string]*amEntity)}
}

// AMEntityID is the store key for a UE's bearer.
func AMEntityID(ueID uint64, bearerID int) string {
	return fmt.Sprintf("am_%d_%d", ueID, bearerID)
}

// CreateAMEntity provisions an AM entity with the default timer profile
// (TS 38.322 §5.2). Returns the entity id.
func (l *RLCLayer) CreateAMEntity(ueID uint64, bearerID int) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := AMEntityID(ueID, bearerID)
	l.am[id] = &amEntity{
		bearerID:         bearerID,
		txWindow:         make(map[int]RLCPDU),
		rxWindow:         make(map[int]RLCPDU),
		vrMR:             2048,
		pollSN:           -1,
		tPollRetransmit:  250,
		tReassembly:      200,
		tStatusProhibit:  10,
		maxRetxThreshold: 4,
		snFieldLength:    12,
	}
	return id
}

// TransmitAMPDU builds the next PDU for the entity (TS 38.322 §5.2.2):
// the poll bit is set once enough PDUs went out unpolled, the PDU is
// retained in the tx window, and VT(S) advances modulo the SN space.
func (l *RLCLayer) TransmitAMPDU(entityID, sdu string) (RLCPDU, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entity, ok := l.am[entityID]
	if !ok {
		return RLCPDU{}, fmt.Errorf("AM entity %s not found", entityID)
	}

	pdu := RLCPDU{
		Header: RLCHeader{
			SN:   entity.vtS,
			SI:   "COMPLETE",
			Poll: entity.pduWithoutPoll >= 4,
		},
		Payload:   sdu,
		Mode:      RLCModeAM,
		BearerID:  entity.bearerID,
		Timestamp: time.Now().UTC(),
	}

	entity.txWindow[entity.vtS] = pdu
	entity.vtS = (entity.vtS + 1) % (1 << entity.snFieldLength)
	entity.pduWithoutPoll++

	return pdu, nil
}

// ReceiveAMPDU accepts a PDU on the receive side (TS 38.322 §5.2.3).
// A PDU landing exactly on VR(R) is delivered along with every buffered
// PDU the gap was holding back, in SN order; out-of-order PDUs inside
// the window are buffered and return false.
func (l *RLCLayer) ReceiveAMPDU(entityID string, pdu RLCPDU) ([]string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entity, ok := l.am[entityID]
	if !ok {
		return nil, false, fmt.Errorf("AM entity %s not found", entityID)
	}

	sn := pdu.Header.SN
	if !inReceiveWindow(sn, entity.vrR, entity.vrMR) {
		return nil, false, nil
	}
	entity.rxWindow[sn] = pdu

	if sn != entity.vrR {
		return nil, false, nil
	}

	snSpace := 1 << entity.snFieldLength
	var sdus []string
	for {
		next, ok := entity.rxWindow[entity.vrR]
		if !ok {
			break
		}
		delete(entity.rxWindow, entity.vrR)
		sdus = append(sdus, next.Payload)
		entity.vrR = (entity.vrR + 1) % snSpace
	}
	return sdus, true, nil
}

// Count returns the number of provisioned AM entities.
func (l *RLCLayer) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.am)
}

// Has reports whether the entity exists.
func (l *RLCLayer) Has(entityID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.am[entityID]
	return ok
}

// inReceiveWindow checks SN membership in the possibly wrapped
// [VR(R), VR(MR)) window.
func inReceiveWindow(sn, vrR, vrMR int) bool {
	if vrR <= vrMR {
		return vrR <= sn && sn < vrMR
	}
	return sn >= vrR || sn < vrMR
}
