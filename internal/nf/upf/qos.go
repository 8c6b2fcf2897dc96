package upf

import (
	"sort"
	"time"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/pfcp"
)

// QOSParameters is one installed enforcement rule. Bit rates are bits per
// second; zero means no rate limit in that direction. Field names follow
// the enhanced user-plane surface.
type QOSParameters struct {
	FiveQI             int    `json:"fiveqi"`
	PriorityLevel      int    `json:"priority_level"`
	PacketDelayBudget  int    `json:"packet_delay_budget,omitempty"`
	PacketErrorRate    string `json:"packet_error_rate,omitempty"`
	MaxDataBurstVolume int    `json:"maximum_data_burst_volume,omitempty"`
	MBRUplink          uint64 `json:"maximum_bitrate_ul,omitempty"`
	MBRDownlink        uint64 `json:"maximum_bitrate_dl,omitempty"`
	GBRUplink          uint64 `json:"guaranteed_bitrate_ul,omitempty"`
	GBRDownlink        uint64 `json:"guaranteed_bitrate_dl,omitempty"`
	AveragingWindow    int    `json:"averaging_window,omitempty"`
}

// fiveQIPriority is the standardized 5QI to priority-level mapping of
// TS 23.501 table 5.7.4-1. Lower values are scheduled first.
var fiveQIPriority = map[int]int{
	1: 20, 2: 40, 3: 30, 4: 50, 5: 10, 6: 60, 7: 70, 8: 80, 9: 90,
	65: 7, 66: 20, 67: 15, 75: 25, 79: 65, 80: 68, 82: 19, 83: 22, 84: 24, 85: 21,
}

// priorityFor5QI returns the scheduling priority of a 5QI, defaulting to
// the lowest standardized priority for unknown values.
func priorityFor5QI(fiveQI int) int {
	if p, ok := fiveQIPriority[fiveQI]; ok {
		return p
	}
	return 90
}

// defaultQOSCatalog returns the standardized QoS characteristics seeded at
// startup, keyed by 5QI (TS 23.501 table 5.7.4-1, GBR and non-GBR rows).
func defaultQOSCatalog() map[int]QOSParameters {
	return map[int]QOSParameters{
		1:  {FiveQI: 1, PriorityLevel: 20, PacketDelayBudget: 100, PacketErrorRate: "1E-2"},
		2:  {FiveQI: 2, PriorityLevel: 40, PacketDelayBudget: 150, PacketErrorRate: "1E-3"},
		3:  {FiveQI: 3, PriorityLevel: 30, PacketDelayBudget: 50, PacketErrorRate: "1E-3"},
		4:  {FiveQI: 4, PriorityLevel: 50, PacketDelayBudget: 300, PacketErrorRate: "1E-6"},
		5:  {FiveQI: 5, PriorityLevel: 10, PacketDelayBudget: 100, PacketErrorRate: "1E-6"},
		6:  {FiveQI: 6, PriorityLevel: 60, PacketDelayBudget: 300, PacketErrorRate: "1E-6"},
		7:  {FiveQI: 7, PriorityLevel: 70, PacketDelayBudget: 100, PacketErrorRate: "1E-3"},
		8:  {FiveQI: 8, PriorityLevel: 80, PacketDelayBudget: 300, PacketErrorRate: "1E-6"},
		9:  {FiveQI: 9, PriorityLevel: 90, PacketDelayBudget: 300, PacketErrorRate: "1E-6"},
		65: {FiveQI: 65, PriorityLevel: 7, PacketDelayBudget: 75, PacketErrorRate: "1E-2"},
		66: {FiveQI: 66, PriorityLevel: 20, PacketDelayBudget: 100, PacketErrorRate: "1E-2"},
		67: {FiveQI: 67, PriorityLevel: 15, PacketDelayBudget: 100, PacketErrorRate: "1E-3"},
		75: {FiveQI: 75, PriorityLevel: 25, PacketDelayBudget: 50, PacketErrorRate: "1E-2"},
		79: {FiveQI: 79, PriorityLevel: 65, PacketDelayBudget: 50, PacketErrorRate: "1E-2", MaxDataBurstVolume: 255},
		80: {FiveQI: 80, PriorityLevel: 68, PacketDelayBudget: 10, PacketErrorRate: "1E-6", MaxDataBurstVolume: 1354},
		82: {FiveQI: 82, PriorityLevel: 19, PacketDelayBudget: 10, PacketErrorRate: "1E-4", MaxDataBurstVolume: 255},
		83: {FiveQI: 83, PriorityLevel: 22, PacketDelayBudget: 10, PacketErrorRate: "1E-4", MaxDataBurstVolume: 1354},
		84: {FiveQI: 84, PriorityLevel: 24, PacketDelayBudget: 30, PacketErrorRate: "1E-5", MaxDataBurstVolume: 1354},
		85: {FiveQI: 85, PriorityLevel: 21, PacketDelayBudget: 5, PacketErrorRate: "1E-5", MaxDataBurstVolume: 255},
	}
}

// tokenBucket meters one tunnel direction. Capacity and refill rate are
// both MBR/8 bytes, so a full second of idle time restores the full burst
// allowance.
type tokenBucket struct {
	tokens     uint64
	maxTokens  uint64
	refillRate uint64 // bytes per second
	lastRefill time.Time
}

func newTokenBucket(bytesPerSecond uint64, now time.Time) *tokenBucket {
	return &tokenBucket{
		tokens:     bytesPerSecond,
		maxTokens:  bytesPerSecond,
		refillRate: bytesPerSecond,
		lastRefill: now,
	}
}

// take refills by wall-clock elapsed time, then consumes size bytes when
// enough tokens are available. lastRefill only advances when whole bytes
// were credited, so sub-byte intervals are not lost.
func (b *tokenBucket) take(size int, now time.Time) bool {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		refill := uint64(elapsed * float64(b.refillRate))
		if refill > 0 {
			b.tokens += refill
			if b.tokens > b.maxTokens {
				b.tokens = b.maxTokens
			}
			b.lastRefill = now
		}
	}

	if b.tokens >= uint64(size) {
		b.tokens -= uint64(size)
		return true
	}
	return false
}

// QueuedPacket is one packet held for deferred forwarding.
type QueuedPacket struct {
	TunnelID  string
	Direction string
	Size      int
}

// scheduler applies token-bucket rate limiting per tunnel direction and
// priority queuing for flows without a rate limit. Callers hold the state
// lock.
type scheduler struct {
	buckets map[string]*tokenBucket
	queues  map[int][]QueuedPacket
}

func newScheduler() *scheduler {
	return &scheduler{
		buckets: make(map[string]*tokenBucket),
		queues:  make(map[int][]QueuedPacket),
	}
}

// enforce decides the fate of one packet. Flows with an MBR in the packet
// direction go through a token bucket; flows without one are queued by
// 5QI priority for the drain loop. Nil parameters mean no enforcement.
func (q *scheduler) enforce(tunnelID string, params *QOSParameters, direction string, size int, now time.Time) string {
	if params == nil {
		return outcomeForwarded
	}

	mbr := params.MBRUplink
	if direction == pfcp.DirectionDownlink {
		mbr = params.MBRDownlink
	}

	if mbr > 0 {
		key := tunnelID + "_" + direction
		bucket, ok := q.buckets[key]
		if !ok {
			bucket = newTokenBucket(mbr/8, now)
			q.buckets[key] = bucket
		}
		if bucket.take(size, now) {
			return outcomeForwarded
		}
		return outcomeDropped
	}

	priority := priorityFor5QI(params.FiveQI)
	q.queues[priority] = append(q.queues[priority], QueuedPacket{
		TunnelID:  tunnelID,
		Direction: direction,
		Size:      size,
	})
	return outcomeQueued
}

// drain pops up to limit queued packets, highest priority (lowest value)
// first.
func (q *scheduler) drain(limit int) []QueuedPacket {
	if limit <= 0 || len(q.queues) == 0 {
		return nil
	}

	priorities := make([]int, 0, len(q.queues))
	for p := range q.queues {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)

	var drained []QueuedPacket
	for _, p := range priorities {
		queue := q.queues[p]
		for len(queue) > 0 && len(drained) < limit {
			drained = append(drained, queue[0])
			queue = queue[1:]
		}
		if len(queue) == 0 {
			delete(q.queues, p)
		} else {
			q.queues[p] = queue
		}
		if len(drained) >= limit {
			break
		}
	}
	return drained
}

// resetBuckets discards the buckets of the given tunnels so the next
// packet rebuilds them from the current rule. Called after MBR changes.
func (q *scheduler) resetBuckets(tunnelIDs []string) {
	for _, id := range tunnelIDs {
		delete(q.buckets, id+"_"+pfcp.DirectionUplink)
		delete(q.buckets, id+"_"+pfcp.DirectionDownlink)
	}
}

// removeTunnel drops the buckets and queued packets of one tunnel.
func (q *scheduler) removeTunnel(tunnelID string) {
	delete(q.buckets, tunnelID+"_"+pfcp.DirectionUplink)
	delete(q.buckets, tunnelID+"_"+pfcp.DirectionDownlink)

	for p, queue := range q.queues {
		kept := queue[:0]
		for _, pkt := range queue {
			if pkt.TunnelID != tunnelID {
				kept = append(kept, pkt)
			}
		}
		if len(kept) == 0 {
			delete(q.queues, p)
		} else {
			q.queues[p] = kept
		}
	}
}

// queuedCount reports the total queue depth.
func (q *scheduler) queuedCount() int {
	n := 0
	for _, queue := range q.queues {
		n += len(queue)
	}
	return n
}
