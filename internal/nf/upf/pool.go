package upf

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// ipv4Pool leases single UE addresses out of one CIDR block. The network
// and broadcast addresses are never handed out, so a /30 carries exactly
// two leases.
type ipv4Pool struct {
	prefix    netip.Prefix
	allocated map[netip.Addr]struct{}
}

func newIPv4Pool(cidr string) (*ipv4Pool, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("parsing IPv4 pool %q: %w", cidr, err)
	}
	if !prefix.Addr().Is4() {
		return nil, fmt.Errorf("IPv4 pool %q is not an IPv4 block", cidr)
	}
	return &ipv4Pool{
		prefix:    prefix.Masked(),
		allocated: make(map[netip.Addr]struct{}),
	}, nil
}

// allocate leases the lowest free host address. Returns false when the
// block is exhausted.
func (p *ipv4Pool) allocate() (string, bool) {
	for addr := p.prefix.Addr().Next(); p.prefix.Contains(addr); addr = addr.Next() {
		if !p.prefix.Contains(addr.Next()) {
			// broadcast address
			break
		}
		if _, taken := p.allocated[addr]; taken {
			continue
		}
		p.allocated[addr] = struct{}{}
		return addr.String(), true
	}
	return "", false
}

// release returns a leased address to the pool. Unknown addresses are
// ignored.
func (p *ipv4Pool) release(ip string) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return
	}
	delete(p.allocated, addr)
}

func (p *ipv4Pool) allocatedCount() int {
	return len(p.allocated)
}

func (p *ipv4Pool) String() string {
	return p.prefix.String()
}

// hostRange returns the first and last leasable addresses of the block.
func (p *ipv4Pool) hostRange() (start, end string) {
	first := p.prefix.Addr().Next()
	last := first
	for addr := first; p.prefix.Contains(addr); addr = addr.Next() {
		if !p.prefix.Contains(addr.Next()) {
			// addr is the broadcast address
			break
		}
		last = addr
	}
	return first.String(), last.String()
}

// ipv6Pool delegates /64 prefixes out of one larger block. Each lease is
// the first host address of its /64, the shape SLAAC-capable UEs expect.
type ipv6Pool struct {
	prefix     netip.Prefix
	baseHi     uint64
	maxSubnets uint64
	allocated  map[uint64]struct{}
}

func newIPv6Pool(cidr string) (*ipv6Pool, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("parsing IPv6 pool %q: %w", cidr, err)
	}
	if !prefix.Addr().Is6() || prefix.Addr().Is4In6() {
		return nil, fmt.Errorf("IPv6 pool %q is not an IPv6 block", cidr)
	}
	if prefix.Bits() > 64 {
		return nil, fmt.Errorf("IPv6 pool %q is smaller than a /64", cidr)
	}
	prefix = prefix.Masked()

	a16 := prefix.Addr().As16()
	shift := 64 - prefix.Bits()
	maxSubnets := uint64(1) << uint(shift)
	if shift >= 64 {
		maxSubnets = ^uint64(0)
	}

	return &ipv6Pool{
		prefix:     prefix,
		baseHi:     binary.BigEndian.Uint64(a16[:8]),
		maxSubnets: maxSubnets,
		allocated:  make(map[uint64]struct{}),
	}, nil
}

// allocate leases the lowest free /64 and returns its first host address
// plus the prefix itself.
func (p *ipv6Pool) allocate() (addr, subnet string, ok bool) {
	for i := uint64(0); i < p.maxSubnets; i++ {
		if _, taken := p.allocated[i]; taken {
			continue
		}
		p.allocated[i] = struct{}{}

		var a16 [16]byte
		binary.BigEndian.PutUint64(a16[:8], p.baseHi+i)
		subnetAddr := netip.AddrFrom16(a16)
		a16[15] = 1
		host := netip.AddrFrom16(a16)

		return host.String(), netip.PrefixFrom(subnetAddr, 64).String(), true
	}
	return "", "", false
}

// release returns the /64 holding the given address to the pool.
func (p *ipv6Pool) release(ip string) {
	addr, err := netip.ParseAddr(ip)
	if err != nil || !p.prefix.Contains(addr) {
		return
	}
	a16 := addr.As16()
	delete(p.allocated, binary.BigEndian.Uint64(a16[:8])-p.baseHi)
}

func (p *ipv6Pool) allocatedCount() int {
	return len(p.allocated)
}

func (p *ipv6Pool) String() string {
	return p.prefix.String()
}
