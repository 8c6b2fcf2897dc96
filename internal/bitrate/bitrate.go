package bitrate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// BitRate represents a data rate in bits per second that can be unmarshaled
// from human-readable strings like "100Mbps", "1 Gbps", "500Kbps", or plain
// numbers.
//
// Supported formats:
//   - Plain numbers: 1000000, 100000000
//   - Decimal units (×1000): K/Kbps, M/Mbps, G/Gbps, T/Tbps
//   - Bits per second: bps
//
// The optional space between number and unit matches the session AMBR
// rendering used on the wire ("1 Gbps", "200 Mbps").
type BitRate uint64

// Common bit rate constants
const (
	Bps  BitRate = 1
	Kbps BitRate = 1000
	Mbps BitRate = 1000 * Kbps
	Gbps BitRate = 1000 * Mbps
	Tbps BitRate = 1000 * Gbps
)

// bitRatePattern matches a number followed by an optional unit suffix
var bitRatePattern = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*([a-z]*)\s*$`)

// unitMultipliers maps unit suffixes to their bit-per-second multipliers
var unitMultipliers = map[string]BitRate{
	"":     Bps,
	"bps":  Bps,
	"k":    Kbps,
	"kbps": Kbps,
	"m":    Mbps,
	"mbps": Mbps,
	"g":    Gbps,
	"gbps": Gbps,
	"t":    Tbps,
	"tbps": Tbps,
}

// ParseBitRate parses a human-readable bit rate string into a BitRate value.
// It accepts formats like "100Mbps", "1 Gbps", "500Kbps", "1000000", etc.
func ParseBitRate(s string) (BitRate, error) {
	// Handle empty string
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("empty bit rate string")
	}

	matches := bitRatePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid bit rate format: %q", s)
	}

	// Parse the numeric part
	numStr := matches[1]
	unit := strings.ToLower(matches[2])

	// Check if it's a floating point number
	if strings.Contains(numStr, ".") {
		num, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in bit rate: %q", numStr)
		}

		multiplier, ok := unitMultipliers[unit]
		if !ok {
			return 0, fmt.Errorf("unknown bit rate unit: %q", matches[2])
		}

		return BitRate(num * float64(multiplier)), nil
	}

	// Parse as integer
	num, err := strconv.ParseUint(numStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in bit rate: %q", numStr)
	}

	multiplier, ok := unitMultipliers[unit]
	if !ok {
		return 0, fmt.Errorf("unknown bit rate unit: %q", matches[2])
	}

	return BitRate(num) * multiplier, nil
}

// UnmarshalText implements encoding.TextUnmarshaler for BitRate.
// This allows BitRate to be used directly in structs with mapstructure.
func (r *BitRate) UnmarshalText(text []byte) error {
	rate, err := ParseBitRate(string(text))
	if err != nil {
		return err
	}
	*r = rate
	return nil
}

// String renders the rate with the largest unit that divides it evenly,
// in the "1 Gbps" form carried in session AMBR and QoS payloads.
func (r BitRate) String() string {
	switch {
	case r >= Tbps && r%Tbps == 0:
		return fmt.Sprintf("%d Tbps", r/Tbps)
	case r >= Gbps && r%Gbps == 0:
		return fmt.Sprintf("%d Gbps", r/Gbps)
	case r >= Mbps && r%Mbps == 0:
		return fmt.Sprintf("%d Mbps", r/Mbps)
	case r >= Kbps && r%Kbps == 0:
		return fmt.Sprintf("%d Kbps", r/Kbps)
	default:
		return fmt.Sprintf("%d bps", uint64(r))
	}
}

// Uint64 returns the BitRate as a uint64 in bits per second.
func (r BitRate) Uint64() uint64 {
	return uint64(r)
}

// BytesPerSecond returns the rate in bytes per second, used to size and
// refill token buckets that meter byte-counted traffic.
func (r BitRate) BytesPerSecond() uint64 {
	return uint64(r) / 8
}
