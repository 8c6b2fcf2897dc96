package du

import (
	"sync"
	"time"
)

// slotsPerFrame for numerology 1 with a 10 ms frame and 0.5 ms slots
// (TS 38.211 §4.3.2).
const slotsPerFrame = 20

// IQSample is one constellation point.
type IQSample struct {
	I float64 `json:"i"`
	Q float64 `json:"q"`
}

// ResourceBlock is 14 OFDM symbols of 12 subcarriers each.
type ResourceBlock struct {
	RBIndex    int          `json:"rb_index"`
	Symbols    [][]IQSample `json:"symbols"`
	Modulation string       `json:"modulation"`
}

// Slot is one generated PHY slot grid.
type Slot struct {
	SlotNumber     int             `json:"slot_number"`
	Symbols        int             `json:"symbols"`
	ResourceBlocks []ResourceBlock `json:"resource_blocks"`
	Timestamp      time.Time       `json:"timestamp"`
}

// RARULGrant is the uplink grant inside a random access response.
type RARULGrant struct {
	FrequencyHopping bool `json:"frequency_hopping"`
	MCS              int  `json:"mcs"`
	TPC              int  `json:"tpc"`
	CSIRequest       bool `json:"csi_request"`
}

// RandomAccessResponse answers a PRACH preamble (TS 38.211 §5.3.2).
type RandomAccessResponse struct {
	PreambleIndex int        `json:"preamble_index"`
	TimingAdvance int        `json:"timing_advance"`
	TempCRNTI     int        `json:"temp_c_rnti"`
	ULGrant       RARULGrant `json:"ul_grant"`
}

// PHYLayer tracks the frame/slot position and generates slot grids for
// a 100 MHz carrier at 3.5 GHz (TS 38.201).
type PHYLayer struct {
	mu           sync.Mutex
	currentFrame uint64
	currentSlot  int
	slots        map[int]Slot

	numerology       int
	carrierFrequency int // MHz
	bandwidth        int // MHz
	numRB            int
}

// NewPHYLayer creates the layer at frame 0, slot 0.
func NewPHYLayer() *PHYLayer {
	return &PHYLayer{
		slots:            make(map[int]Slot),
		numerology:       1,
		carrierFrequency: 3500,
		bandwidth:        100,
		numRB:            273,
	}
}

// GenerateSlot builds the slot grid: up to 100 resource blocks of 14
// QPSK symbols, constellation point chosen by index parity.
func (p *PHYLayer) GenerateSlot(slotNumber int) Slot {
	numRB := p.numRB
	if numRB > 100 {
		numRB = 100
	}

	slot := Slot{
		SlotNumber:     slotNumber,
		Symbols:        14,
		ResourceBlocks: make([]ResourceBlock, 0, numRB),
		Timestamp:      time.Now().UTC(),
	}

	for rb := 0; rb < numRB; rb++ {
		block := ResourceBlock{
			RBIndex:    rb,
			Symbols:    make([][]IQSample, 0, 14),
			Modulation: "QPSK",
		}
		for symbol := 0; symbol < 14; symbol++ {
			subcarriers := make([]IQSample, 0, 12)
			for sc := 0; sc < 12; sc++ {
				if (symbol+sc+rb)%2 == 0 {
					subcarriers = append(subcarriers, IQSample{I: 0.707, Q: 0.707})
				} else {
					subcarriers = append(subcarriers, IQSample{I: -0.707, Q: -0.707})
				}
			}
			block.Symbols = append(block.Symbols, subcarriers)
		}
		slot.ResourceBlocks = append(slot.ResourceBlocks, block)
	}
	return slot
}

// Tick generates the current slot grid and advances the slot counter,
// incrementing the frame on wrap. Returns the slot number that was
// processed.
func (p *PHYLayer) Tick() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	processed := p.currentSlot
	p.slots[processed] = p.GenerateSlot(processed)

	p.currentSlot = (p.currentSlot + 1) % slotsPerFrame
	if p.currentSlot == 0 {
		p.currentFrame++
	}
	return processed
}

// Position returns the current frame and slot.
func (p *PHYLayer) Position() (frame uint64, slot int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentFrame, p.currentSlot
}

// ProcessPRACH answers a preamble with a random access response whose
// temporary C-RNTI is derived from the preamble index.
func (p *PHYLayer) ProcessPRACH(preambleIndex int) RandomAccessResponse {
	return RandomAccessResponse{
		PreambleIndex: preambleIndex,
		TempCRNTI:     0x1000 + preambleIndex,
		ULGrant:       RARULGrant{},
	}
}
