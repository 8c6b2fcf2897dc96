package upf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/bitrate"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/pfcp"
)

func testUserPlaneConfig() config.UserPlaneConfig {
	return config.UserPlaneConfig{
		IPv4Pool:   "192.168.100.0/24",
		IPv6Prefix: "2001:db8:5::/48",
	}
}

func newTestState(t *testing.T, cfg config.UserPlaneConfig) *State {
	t.Helper()
	state, err := NewState(cfg)
	require.NoError(t, err)
	return state
}

// establishmentRequest builds a request with one uplink PDR, one
// forwarding FAR, and optionally one QER.
func establishmentRequest(seid string, qers ...pfcp.CreateQER) *pfcp.SessionEstablishmentRequest {
	req := pfcp.NewSessionEstablishmentRequest(seid)
	req.NodeID = "smf.test"
	req.CreatePDR = []pfcp.CreatePDR{
		{
			PDRID:      1,
			Precedence: 200,
			PDI: pfcp.PDI{
				SourceInterface: pfcp.InterfaceAccess,
				FTEID:           &pfcp.FTEID{TEID: "0x1001", IPv4Address: "192.168.200.10"},
				NetworkInstance: "internet",
			},
			FARID: 1,
		},
	}
	req.CreateFAR = []pfcp.CreateFAR{
		{
			FARID:       1,
			ApplyAction: pfcp.ApplyActionForward,
			ForwardingParameters: &pfcp.ForwardingParameters{
				DestinationInterface: pfcp.InterfaceCore,
				OuterHeaderCreation: &pfcp.OuterHeaderCreation{
					Description: "GTP-U/UDP/IPv4",
					TEID:        "0x2001",
					IPv4Address: "10.20.30.40",
				},
			},
		},
	}
	req.CreateQER = qers
	return req
}

func TestEstablishAllocatesAddressAndTunnel(t *testing.T) {
	state := newTestState(t, testUserPlaneConfig())

	sess, err := state.Establish(establishmentRequest("smf-seid-1"))
	require.NoError(t, err)

	assert.NotEmpty(t, sess.UPFSEID)
	assert.Equal(t, "smf-seid-1", sess.SMFSEID)
	assert.Equal(t, "192.168.100.1", sess.AllocatedIPs.IPv4)
	assert.Empty(t, sess.AllocatedIPs.IPv6)
	require.Len(t, sess.TunnelIDs, 1)

	sessions, tunnels, v4, v6 := state.Counts()
	assert.Equal(t, 1, sessions)
	assert.Equal(t, 1, tunnels)
	assert.Equal(t, 1, v4)
	assert.Equal(t, 0, v6)
}

func TestEstablishDualStack(t *testing.T) {
	state := newTestState(t, testUserPlaneConfig())

	req := establishmentRequest("smf-seid-1")
	req.PDNType = pfcp.PDNTypeIPv4v6
	sess, err := state.Establish(req)
	require.NoError(t, err)

	assert.Equal(t, "192.168.100.1", sess.AllocatedIPs.IPv4)
	assert.Equal(t, "2001:db8:5::1", sess.AllocatedIPs.IPv6)
	assert.Equal(t, "2001:db8:5::/64", sess.AllocatedIPs.IPv6Prefix)
}

// A /30 block carries exactly two leases, so the third establishment must
// fail and a release must make room again.
func TestIPv4PoolExhaustion(t *testing.T) {
	cfg := testUserPlaneConfig()
	cfg.IPv4Pool = "10.0.0.0/30"
	state := newTestState(t, cfg)

	first, err := state.Establish(establishmentRequest("seid-a"))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", first.AllocatedIPs.IPv4)

	second, err := state.Establish(establishmentRequest("seid-b"))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", second.AllocatedIPs.IPv4)

	_, err = state.Establish(establishmentRequest("seid-c"))
	require.ErrorIs(t, err, ErrPoolExhausted)

	_, ok := state.Release(first.UPFSEID)
	require.True(t, ok)

	third, err := state.Establish(establishmentRequest("seid-c"))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", third.AllocatedIPs.IPv4)
}

func TestReleaseCleansEverything(t *testing.T) {
	state := newTestState(t, testUserPlaneConfig())

	sess, err := state.Establish(establishmentRequest("seid-1", pfcp.CreateQER{
		QERID: 1, QFI: 9, UplinkMBR: 100_000_000, DownlinkMBR: 100_000_000,
	}))
	require.NoError(t, err)

	baseline := state.RuleCount()
	_, ok := state.Release(sess.UPFSEID)
	require.True(t, ok)

	sessions, tunnels, v4, _ := state.Counts()
	assert.Zero(t, sessions)
	assert.Zero(t, tunnels)
	assert.Zero(t, v4)
	assert.Equal(t, baseline-1, state.RuleCount())

	_, ok = state.Release(sess.UPFSEID)
	assert.False(t, ok)
}

func TestProcessPacketUnknownTunnel(t *testing.T) {
	state := newTestState(t, testUserPlaneConfig())
	_, err := state.ProcessPacket("no-such-tunnel", pfcp.DirectionUplink, 100)
	require.ErrorIs(t, err, ErrTunnelNotFound)
}

// The bucket holds MBR/8 bytes and refills at the same rate, so the bytes
// forwarded in a burst never exceed the capacity plus the wall-clock
// refill, with one packet of slack.
func TestTokenBucketSoundness(t *testing.T) {
	state := newTestState(t, testUserPlaneConfig())

	const mbr = 1_000_000 // 1 Mbps -> 125000 bytes/s
	sess, err := state.Establish(establishmentRequest("seid-1", pfcp.CreateQER{
		QERID: 1, QFI: 9, UplinkMBR: mbr, DownlinkMBR: mbr,
	}))
	require.NoError(t, err)
	tunnelID := sess.TunnelIDs[0]

	const (
		packets    = 2000
		packetSize = 1000
	)

	start := time.Now()
	forwarded := 0
	for i := 0; i < packets; i++ {
		outcome, err := state.ProcessPacket(tunnelID, pfcp.DirectionDownlink, packetSize)
		require.NoError(t, err)
		if outcome == outcomeForwarded {
			forwarded++
		}
	}
	elapsed := time.Since(start).Seconds()

	capacity := float64(mbr / 8)
	budget := capacity + elapsed*capacity + packetSize
	assert.LessOrEqual(t, float64(forwarded*packetSize), budget,
		"forwarded bytes exceed the bucket budget")
	assert.Less(t, forwarded, packets, "rate limiting never dropped anything")

	totals := state.Totals()
	assert.Equal(t, uint64(packets), totals.PacketsDL)
	assert.Equal(t, uint64(packets-forwarded), totals.DroppedDL)
}

// Flows without a rate limit are queued by 5QI priority and drained
// highest priority first.
func TestPriorityQueueDrainOrder(t *testing.T) {
	state := newTestState(t, testUserPlaneConfig())

	bestEffort, err := state.Establish(establishmentRequest("seid-be", pfcp.CreateQER{QERID: 1, QFI: 9}))
	require.NoError(t, err)
	signalling, err := state.Establish(establishmentRequest("seid-ims", pfcp.CreateQER{QERID: 1, QFI: 5}))
	require.NoError(t, err)

	outcome, err := state.ProcessPacket(bestEffort.TunnelIDs[0], pfcp.DirectionUplink, 100)
	require.NoError(t, err)
	assert.Equal(t, outcomeQueued, outcome)

	outcome, err = state.ProcessPacket(signalling.TunnelIDs[0], pfcp.DirectionUplink, 100)
	require.NoError(t, err)
	assert.Equal(t, outcomeQueued, outcome)

	drained := state.DrainQueued(10)
	require.Len(t, drained, 2)
	// 5QI 5 (priority 10) drains before 5QI 9 (priority 90)
	assert.Equal(t, signalling.TunnelIDs[0], drained[0].TunnelID)
	assert.Equal(t, bestEffort.TunnelIDs[0], drained[1].TunnelID)

	assert.Empty(t, state.DrainQueued(10))
}

// Raising the MBR through session modification resets the token buckets
// so the next packet meters at the new rate.
func TestModifyQERWritesThroughToBuckets(t *testing.T) {
	state := newTestState(t, testUserPlaneConfig())

	sess, err := state.Establish(establishmentRequest("seid-1", pfcp.CreateQER{
		QERID: 1, QFI: 9, UplinkMBR: 8000, DownlinkMBR: 8000, // 1000 bytes/s
	}))
	require.NoError(t, err)
	require.Contains(t, sess.QERs, 1)
	tunnelID := sess.TunnelIDs[0]

	outcome, err := state.ProcessPacket(tunnelID, pfcp.DirectionUplink, 800)
	require.NoError(t, err)
	assert.Equal(t, outcomeForwarded, outcome)

	// Larger than the bucket capacity, dropped no matter the refill.
	outcome, err = state.ProcessPacket(tunnelID, pfcp.DirectionUplink, 1500)
	require.NoError(t, err)
	assert.Equal(t, outcomeDropped, outcome)

	applied, err := state.Modify(sess.UPFSEID, &pfcp.SessionModificationRequest{
		UpdateQER: []pfcp.CreateQER{{QERID: 1, UplinkMBR: 80_000_000, DownlinkMBR: 80_000_000}},
	})
	require.NoError(t, err)
	assert.Contains(t, applied, "QER 1 updated")

	outcome, err = state.ProcessPacket(tunnelID, pfcp.DirectionUplink, 1000)
	require.NoError(t, err)
	assert.Equal(t, outcomeForwarded, outcome)
}

func TestModifyUnknownSession(t *testing.T) {
	state := newTestState(t, testUserPlaneConfig())
	_, err := state.Modify("missing", &pfcp.SessionModificationRequest{})
	require.ErrorIs(t, err, ErrSessionNotFound)
}

// Sessions established without a QER fall back to the configured default
// MBR instead of running unmetered.
func TestDefaultMBRAppliedWithoutQER(t *testing.T) {
	cfg := testUserPlaneConfig()
	cfg.DefaultMBR = 8000 * bitrate.Bps // 1000 bytes/s
	state := newTestState(t, cfg)

	sess, err := state.Establish(establishmentRequest("seid-1"))
	require.NoError(t, err)
	tunnelID := sess.TunnelIDs[0]

	outcome, err := state.ProcessPacket(tunnelID, pfcp.DirectionDownlink, 900)
	require.NoError(t, err)
	assert.Equal(t, outcomeForwarded, outcome)

	// Larger than the bucket capacity, dropped no matter the refill.
	outcome, err = state.ProcessPacket(tunnelID, pfcp.DirectionDownlink, 1500)
	require.NoError(t, err)
	assert.Equal(t, outcomeDropped, outcome)
}

func TestSweepDropsZeroesCounters(t *testing.T) {
	cfg := testUserPlaneConfig()
	cfg.DefaultMBR = 8 * bitrate.Bps // 1 byte/s, everything drops
	state := newTestState(t, cfg)

	sess, err := state.Establish(establishmentRequest("seid-1"))
	require.NoError(t, err)
	tunnelID := sess.TunnelIDs[0]

	for i := 0; i < 150; i++ {
		_, err := state.ProcessPacket(tunnelID, pfcp.DirectionUplink, 1000)
		require.NoError(t, err)
	}

	violating := state.SweepDrops(100)
	assert.Equal(t, []string{tunnelID}, violating)

	// Counters were zeroed, so a second sweep is quiet.
	assert.Empty(t, state.SweepDrops(100))
	assert.Zero(t, state.Totals().DroppedUL)
}

func TestUpdateQOSRule(t *testing.T) {
	state := newTestState(t, testUserPlaneConfig())

	sess, err := state.Establish(establishmentRequest("seid-1", pfcp.CreateQER{
		QERID: 1, QFI: 9, UplinkMBR: 1000, DownlinkMBR: 1000,
	}))
	require.NoError(t, err)

	updated, err := state.UpdateQOSRule(sess.UPFSEID, 1, map[string]any{
		"fiveqi":             float64(5),
		"maximum_bitrate_dl": float64(2_000_000),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.FiveQI)
	assert.Equal(t, 10, updated.PriorityLevel)
	assert.Equal(t, uint64(2_000_000), updated.MBRDownlink)

	_, err = state.UpdateQOSRule("missing", 1, map[string]any{})
	require.ErrorIs(t, err, ErrRuleNotFound)
}

func TestIPv6PrefixDelegation(t *testing.T) {
	state := newTestState(t, testUserPlaneConfig())

	addr, prefix, err := state.AllocateIPv6Prefix()
	require.NoError(t, err)
	assert.Equal(t, "2001:db8:5::1", addr)
	assert.Equal(t, "2001:db8:5::/64", prefix)

	addr2, prefix2, err := state.AllocateIPv6Prefix()
	require.NoError(t, err)
	assert.Equal(t, "2001:db8:5:1::1", addr2)
	assert.Equal(t, "2001:db8:5:1::/64", prefix2)
}
