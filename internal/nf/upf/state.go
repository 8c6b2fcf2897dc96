// Package upf implements the user plane function: the N4 session store of
// TS 29.244 with IPv4 address leasing and IPv6 prefix delegation, GTP-U
// tunnel bookkeeping per TS 29.281, and QoS enforcement through per-tunnel
// token buckets and 5QI priority queues.
package upf

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/pfcp"
)

// Packet processing outcomes. Queued packets are forwarded later by the
// drain loop.
const (
	outcomeForwarded = "forwarded"
	outcomeQueued    = "queued"
	outcomeDropped   = "dropped"
)

const (
	sessionStateActive = "ACTIVE"
	tunnelStateActive  = "ACTIVE"
)

var (
	ErrPoolExhausted   = errors.New("address pool exhausted")
	ErrSessionNotFound = errors.New("pfcp session not found")
	ErrTunnelNotFound  = errors.New("gtp tunnel not found")
	ErrRuleNotFound    = errors.New("qos rule not found")
)

// TrafficStats counts the traffic of one tunnel. Dropped counters are
// zeroed by the monitoring sweep after each window.
type TrafficStats struct {
	PacketsUL    uint64    `json:"packets_ul"`
	PacketsDL    uint64    `json:"packets_dl"`
	BytesUL      uint64    `json:"bytes_ul"`
	BytesDL      uint64    `json:"bytes_dl"`
	DroppedUL    uint64    `json:"dropped_packets_ul"`
	DroppedDL    uint64    `json:"dropped_packets_dl"`
	LastActivity time.Time `json:"last_activity"`
}

// Tunnel is one GTP-U tunnel: the local endpoint from the PDR's F-TEID and
// the remote endpoint from the matching FAR's outer header creation.
type Tunnel struct {
	ID         string
	SEID       string
	LocalTEID  string
	LocalIPv4  string
	LocalIPv6  string
	RemoteTEID string
	RemoteIPv4 string
	RemoteIPv6 string
	State      string
	CreatedAt  time.Time
	Stats      TrafficStats

	qosKey string
}

// Session is one established PFCP session with its installed rules.
type Session struct {
	UPFSEID      string
	SMFSEID      string
	NodeID       string
	PDNType      string
	AllocatedIPs pfcp.AllocatedUEIPAddresses
	PDRs         map[int]pfcp.CreatePDR
	FARs         map[int]pfcp.CreateFAR
	QERs         map[int]pfcp.CreateQER
	URRs         map[int]pfcp.CreateURR
	TunnelIDs    []string
	State        string
	CreatedAt    time.Time
	LastModified time.Time
}

// TrafficTotals aggregates the traffic of every tunnel.
type TrafficTotals struct {
	Sessions  int    `json:"total_sessions"`
	Tunnels   int    `json:"total_tunnels"`
	PacketsUL uint64 `json:"total_packets_ul"`
	PacketsDL uint64 `json:"total_packets_dl"`
	BytesUL   uint64 `json:"total_bytes_ul"`
	BytesDL   uint64 `json:"total_bytes_dl"`
	DroppedUL uint64 `json:"total_dropped_ul"`
	DroppedDL uint64 `json:"total_dropped_dl"`
}

// State holds the sessions, tunnels, address pools, and QoS rules. One
// mutex guards everything; the scheduler is only touched under it.
type State struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	tunnels  map[string]*Tunnel
	qosRules map[string]*QOSParameters
	ipv4     *ipv4Pool
	ipv6     *ipv6Pool
	sched    *scheduler

	defaultMBR uint64 // bits per second, applied when a session has no QER
}

// NewState builds the session store from the user-plane configuration,
// seeding the standardized 5QI catalog.
func NewState(cfg config.UserPlaneConfig) (*State, error) {
	v4, err := newIPv4Pool(cfg.IPv4Pool)
	if err != nil {
		return nil, err
	}
	v6, err := newIPv6Pool(cfg.IPv6Prefix)
	if err != nil {
		return nil, err
	}

	rules := make(map[string]*QOSParameters)
	for fiveQI, params := range defaultQOSCatalog() {
		p := params
		rules[strconv.Itoa(fiveQI)] = &p
	}

	return &State{
		sessions:   make(map[string]*Session),
		tunnels:    make(map[string]*Tunnel),
		qosRules:   rules,
		ipv4:       v4,
		ipv6:       v6,
		sched:      newScheduler(),
		defaultMBR: cfg.DefaultMBR.Uint64(),
	}, nil
}

// ruleKey is the enforcement key of one installed QER.
func ruleKey(seid string, qerID int) string {
	return seid + "_" + strconv.Itoa(qerID)
}

// Establish creates a session: UE addresses are leased per the PDN type,
// a tunnel is built for every PDR carrying an F-TEID, and QERs become
// enforcement rules. Returns a snapshot of the stored session.
func (s *State) Establish(req *pfcp.SessionEstablishmentRequest) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pdnType := req.PDNType
	if pdnType == "" {
		pdnType = pfcp.PDNTypeIPv4
	}

	var alloc pfcp.AllocatedUEIPAddresses
	if pdnType == pfcp.PDNTypeIPv4 || pdnType == pfcp.PDNTypeIPv4v6 {
		ip, ok := s.ipv4.allocate()
		if !ok {
			return Session{}, fmt.Errorf("IPv4: %w", ErrPoolExhausted)
		}
		alloc.IPv4 = ip
	}
	if pdnType == pfcp.PDNTypeIPv6 || pdnType == pfcp.PDNTypeIPv4v6 {
		addr, prefix, ok := s.ipv6.allocate()
		if !ok {
			s.ipv4.release(alloc.IPv4)
			return Session{}, fmt.Errorf("IPv6: %w", ErrPoolExhausted)
		}
		alloc.IPv6 = addr
		alloc.IPv6Prefix = prefix
	}

	now := time.Now().UTC()
	sess := &Session{
		UPFSEID:      uuid.NewString(),
		SMFSEID:      req.SEID,
		NodeID:       req.NodeID,
		PDNType:      pdnType,
		AllocatedIPs: alloc,
		PDRs:         make(map[int]pfcp.CreatePDR),
		FARs:         make(map[int]pfcp.CreateFAR),
		QERs:         make(map[int]pfcp.CreateQER),
		URRs:         make(map[int]pfcp.CreateURR),
		State:        sessionStateActive,
		CreatedAt:    now,
		LastModified: now,
	}

	qosKey := s.installQERs(sess.UPFSEID, req.CreateQER)

	for _, qer := range req.CreateQER {
		sess.QERs[qer.QERID] = qer
	}
	for _, far := range req.CreateFAR {
		sess.FARs[far.FARID] = far
	}
	for _, urr := range req.CreateURR {
		sess.URRs[urr.URRID] = urr
	}
	for _, pdr := range req.CreatePDR {
		sess.PDRs[pdr.PDRID] = pdr
		if pdr.PDI.FTEID == nil {
			continue
		}
		far, ok := sess.FARs[pdr.FARID]
		if !ok {
			continue
		}
		tunnel := newTunnel(sess.UPFSEID, pdr.PDI.FTEID, far, qosKey, now)
		s.tunnels[tunnel.ID] = tunnel
		sess.TunnelIDs = append(sess.TunnelIDs, tunnel.ID)
	}

	s.sessions[sess.UPFSEID] = sess
	return snapshotSession(sess), nil
}

// installQERs turns the session's QERs into enforcement rules and returns
// the key governing the session's tunnels: the lowest QER id, or a rule
// synthesized from the configured default MBR when no QER was sent.
func (s *State) installQERs(seid string, qers []pfcp.CreateQER) string {
	if len(qers) == 0 {
		if s.defaultMBR == 0 {
			return ""
		}
		key := ruleKey(seid, 0)
		s.qosRules[key] = &QOSParameters{
			FiveQI:        9,
			PriorityLevel: priorityFor5QI(9),
			MBRUplink:     s.defaultMBR,
			MBRDownlink:   s.defaultMBR,
		}
		return key
	}

	lowest := qers[0].QERID
	for _, qer := range qers {
		fiveQI := qer.QFI
		if fiveQI == 0 {
			fiveQI = 9
		}
		s.qosRules[ruleKey(seid, qer.QERID)] = &QOSParameters{
			FiveQI:          fiveQI,
			PriorityLevel:   priorityFor5QI(fiveQI),
			MBRUplink:       qer.UplinkMBR,
			MBRDownlink:     qer.DownlinkMBR,
			GBRUplink:       qer.UplinkGBR,
			GBRDownlink:     qer.DownlinkGBR,
			AveragingWindow: qer.AveragingWindow,
		}
		if qer.QERID < lowest {
			lowest = qer.QERID
		}
	}
	return ruleKey(seid, lowest)
}

func newTunnel(seid string, fteid *pfcp.FTEID, far pfcp.CreateFAR, qosKey string, now time.Time) *Tunnel {
	tunnel := &Tunnel{
		ID:        uuid.NewString(),
		SEID:      seid,
		LocalTEID: fteid.TEID,
		LocalIPv4: fteid.IPv4Address,
		LocalIPv6: fteid.IPv6Address,
		State:     tunnelStateActive,
		CreatedAt: now,
		Stats:     TrafficStats{LastActivity: now},
		qosKey:    qosKey,
	}
	if far.ForwardingParameters != nil && far.ForwardingParameters.OuterHeaderCreation != nil {
		ohc := far.ForwardingParameters.OuterHeaderCreation
		tunnel.RemoteTEID = ohc.TEID
		tunnel.RemoteIPv4 = ohc.IPv4Address
		tunnel.RemoteIPv6 = ohc.IPv6Address
	}
	return tunnel
}

// Modify merges rule updates into an established session. QER bit-rate
// changes write through to the enforcement rule and reset the session's
// token buckets so the next packet meters at the new rate.
func (s *State) Modify(seid string, req *pfcp.SessionModificationRequest) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[seid]
	if !ok {
		return nil, ErrSessionNotFound
	}

	var applied []string
	for _, pdr := range req.UpdatePDR {
		if _, ok := sess.PDRs[pdr.PDRID]; !ok {
			continue
		}
		sess.PDRs[pdr.PDRID] = pdr
		applied = append(applied, fmt.Sprintf("PDR %d updated", pdr.PDRID))
	}
	for _, far := range req.UpdateFAR {
		if _, ok := sess.FARs[far.FARID]; !ok {
			continue
		}
		sess.FARs[far.FARID] = far
		applied = append(applied, fmt.Sprintf("FAR %d updated", far.FARID))
	}
	for _, qer := range req.UpdateQER {
		stored, ok := sess.QERs[qer.QERID]
		if !ok {
			continue
		}
		mergeQER(&stored, qer)
		sess.QERs[qer.QERID] = stored
		applied = append(applied, fmt.Sprintf("QER %d updated", qer.QERID))

		if params, ok := s.qosRules[ruleKey(seid, qer.QERID)]; ok {
			if qer.UplinkMBR > 0 {
				params.MBRUplink = qer.UplinkMBR
			}
			if qer.DownlinkMBR > 0 {
				params.MBRDownlink = qer.DownlinkMBR
			}
			if qer.UplinkGBR > 0 {
				params.GBRUplink = qer.UplinkGBR
			}
			if qer.DownlinkGBR > 0 {
				params.GBRDownlink = qer.DownlinkGBR
			}
			s.sched.resetBuckets(sess.TunnelIDs)
		}
	}

	sess.LastModified = time.Now().UTC()
	return applied, nil
}

// mergeQER overlays the non-zero fields of an update onto the stored rule.
func mergeQER(stored *pfcp.CreateQER, update pfcp.CreateQER) {
	if update.QFI != 0 {
		stored.QFI = update.QFI
	}
	if update.GateStatus != "" {
		stored.GateStatus = update.GateStatus
	}
	if update.UplinkMBR > 0 {
		stored.UplinkMBR = update.UplinkMBR
	}
	if update.DownlinkMBR > 0 {
		stored.DownlinkMBR = update.DownlinkMBR
	}
	if update.UplinkGBR > 0 {
		stored.UplinkGBR = update.UplinkGBR
	}
	if update.DownlinkGBR > 0 {
		stored.DownlinkGBR = update.DownlinkGBR
	}
	if update.AveragingWindow != 0 {
		stored.AveragingWindow = update.AveragingWindow
	}
}

// Release deletes a session: leased addresses return to their pools, its
// tunnels and enforcement rules are dropped, and its final traffic totals
// are returned.
func (s *State) Release(seid string) (TrafficStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[seid]
	if !ok {
		return TrafficStats{}, false
	}

	s.ipv4.release(sess.AllocatedIPs.IPv4)
	if sess.AllocatedIPs.IPv6 != "" {
		s.ipv6.release(sess.AllocatedIPs.IPv6)
	}

	var final TrafficStats
	for _, tunnelID := range sess.TunnelIDs {
		if tunnel, ok := s.tunnels[tunnelID]; ok {
			accumulate(&final, tunnel.Stats)
			delete(s.tunnels, tunnelID)
		}
		s.sched.removeTunnel(tunnelID)
	}

	for key := range s.qosRules {
		if strings.HasPrefix(key, seid+"_") {
			delete(s.qosRules, key)
		}
	}

	delete(s.sessions, seid)
	return final, true
}

// ProcessPacket accounts one packet on a tunnel and runs it through QoS
// enforcement. Returns the packet outcome.
func (s *State) ProcessPacket(tunnelID, direction string, size int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tunnel, ok := s.tunnels[tunnelID]
	if !ok {
		return "", ErrTunnelNotFound
	}

	now := time.Now().UTC()
	if direction == pfcp.DirectionDownlink {
		tunnel.Stats.PacketsDL++
		tunnel.Stats.BytesDL += uint64(size)
	} else {
		tunnel.Stats.PacketsUL++
		tunnel.Stats.BytesUL += uint64(size)
	}
	tunnel.Stats.LastActivity = now

	outcome := s.sched.enforce(tunnelID, s.qosRules[tunnel.qosKey], direction, size, now)
	if outcome == outcomeDropped {
		if direction == pfcp.DirectionDownlink {
			tunnel.Stats.DroppedDL++
		} else {
			tunnel.Stats.DroppedUL++
		}
	}
	return outcome, nil
}

// DrainQueued forwards up to limit queued packets in priority order.
func (s *State) DrainQueued(limit int) []QueuedPacket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.drain(limit)
}

// AllocateIPv6Prefix delegates a /64 outside any session, for UEs that
// request a dedicated prefix.
func (s *State) AllocateIPv6Prefix() (addr, prefix string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr, prefix, ok := s.ipv6.allocate()
	if !ok {
		return "", "", fmt.Errorf("IPv6: %w", ErrPoolExhausted)
	}
	return addr, prefix, nil
}

// QOSRules returns a snapshot of every installed enforcement rule,
// including the seeded 5QI catalog.
func (s *State) QOSRules() map[string]QOSParameters {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make(map[string]QOSParameters, len(s.qosRules))
	for key, params := range s.qosRules {
		rules[key] = *params
	}
	return rules
}

// UpdateQOSRule patches one installed rule by session and QER id. Bit-rate
// changes reset the owning session's token buckets.
func (s *State) UpdateQOSRule(sessionID string, qerID int, updates map[string]any) (QOSParameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ruleKey(sessionID, qerID)
	params, ok := s.qosRules[key]
	if !ok {
		return QOSParameters{}, ErrRuleNotFound
	}

	rateChanged := false
	for name, value := range updates {
		switch name {
		case "fiveqi":
			params.FiveQI = toInt(value)
			params.PriorityLevel = priorityFor5QI(params.FiveQI)
		case "priority_level":
			params.PriorityLevel = toInt(value)
		case "packet_delay_budget":
			params.PacketDelayBudget = toInt(value)
		case "packet_error_rate":
			if s, ok := value.(string); ok {
				params.PacketErrorRate = s
			}
		case "maximum_data_burst_volume":
			params.MaxDataBurstVolume = toInt(value)
		case "maximum_bitrate_ul":
			params.MBRUplink = toUint64(value)
			rateChanged = true
		case "maximum_bitrate_dl":
			params.MBRDownlink = toUint64(value)
			rateChanged = true
		case "guaranteed_bitrate_ul":
			params.GBRUplink = toUint64(value)
		case "guaranteed_bitrate_dl":
			params.GBRDownlink = toUint64(value)
		case "averaging_window":
			params.AveragingWindow = toInt(value)
		}
	}

	if rateChanged {
		if sess, ok := s.sessions[sessionID]; ok {
			s.sched.resetBuckets(sess.TunnelIDs)
		}
	}
	return *params, nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func toUint64(v any) uint64 {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0
		}
		return uint64(n)
	case int:
		if n < 0 {
			return 0
		}
		return uint64(n)
	}
	return 0
}

// Counts reports the population gauges.
func (s *State) Counts() (sessions, tunnels, ipv4Allocated, ipv6Allocated int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), len(s.tunnels), s.ipv4.allocatedCount(), s.ipv6.allocatedCount()
}

// RuleCount reports the number of installed enforcement rules.
func (s *State) RuleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.qosRules)
}

// Pools reports the configured pool blocks.
func (s *State) Pools() (ipv4, ipv6 string) {
	return s.ipv4.String(), s.ipv6.String()
}

// Totals aggregates the traffic counters of every tunnel.
func (s *State) Totals() TrafficTotals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := TrafficTotals{
		Sessions: len(s.sessions),
		Tunnels:  len(s.tunnels),
	}
	for _, tunnel := range s.tunnels {
		totals.PacketsUL += tunnel.Stats.PacketsUL
		totals.PacketsDL += tunnel.Stats.PacketsDL
		totals.BytesUL += tunnel.Stats.BytesUL
		totals.BytesDL += tunnel.Stats.BytesDL
		totals.DroppedUL += tunnel.Stats.DroppedUL
		totals.DroppedDL += tunnel.Stats.DroppedDL
	}
	return totals
}

// SessionStatistics aggregates per-session traffic across each session's
// tunnels, keyed by UPF SEID.
func (s *State) SessionStatistics() map[string]TrafficStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]TrafficStats, len(s.sessions))
	for seid, sess := range s.sessions {
		var agg TrafficStats
		for _, tunnelID := range sess.TunnelIDs {
			if tunnel, ok := s.tunnels[tunnelID]; ok {
				accumulate(&agg, tunnel.Stats)
			}
		}
		stats[seid] = agg
	}
	return stats
}

func accumulate(dst *TrafficStats, src TrafficStats) {
	dst.PacketsUL += src.PacketsUL
	dst.PacketsDL += src.PacketsDL
	dst.BytesUL += src.BytesUL
	dst.BytesDL += src.BytesDL
	dst.DroppedUL += src.DroppedUL
	dst.DroppedDL += src.DroppedDL
	if src.LastActivity.After(dst.LastActivity) {
		dst.LastActivity = src.LastActivity
	}
}

// SweepDrops returns the tunnels whose drop count exceeded the threshold
// this window, then zeroes every nonzero drop counter.
func (s *State) SweepDrops(threshold int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var violating []string
	for id, tunnel := range s.tunnels {
		if tunnel.Stats.DroppedUL > uint64(threshold) || tunnel.Stats.DroppedDL > uint64(threshold) {
			violating = append(violating, id)
		}
		tunnel.Stats.DroppedUL = 0
		tunnel.Stats.DroppedDL = 0
	}
	sort.Strings(violating)
	return violating
}

func snapshotSession(sess *Session) Session {
	snapshot := *sess
	snapshot.TunnelIDs = append([]string(nil), sess.TunnelIDs...)
	return snapshot
}
