// Package ipaddr provides the Address value type shared by every probe
// module: an IPv4 or IPv6 address with equality and ordering from its
// canonical byte form.
package ipaddr

import (
	"bytes"
	"net"
	"net/netip"
)

// Address wraps net.IP in its canonical (4-byte or 16-byte) form.
type Address struct {
	ip net.IP
}

// FromNetIP builds an Address from a net.IP, canonicalizing IPv4-in-IPv6 to
// 4-byte form so equality/ordering are well-defined.
func FromNetIP(ip net.IP) Address {
	if v4 := ip.To4(); v4 != nil {
		return Address{ip: v4}
	}
	return Address{ip: ip.To16()}
}

// Parse parses a textual IP address.
func Parse(s string) (Address, bool) {
	a, err := netip.ParseAddr(s)
	if err != nil {
		return Address{}, false
	}
	return FromNetIP(net.IP(a.AsSlice())), true
}

// IsValid reports whether the Address holds a non-nil IP.
func (a Address) IsValid() bool { return a.ip != nil }

// String renders the address in its standard textual form.
func (a Address) String() string {
	if a.ip == nil {
		return ""
	}
	return a.ip.String()
}

// NetIP exposes the underlying net.IP.
func (a Address) NetIP() net.IP { return a.ip }

// Is4 reports whether the address is in 4-byte (IPv4) form.
func (a Address) Is4() bool { return len(a.ip) == net.IPv4len }

// Equal reports byte-wise equality of the canonical form.
func (a Address) Equal(b Address) bool { return a.ip.Equal(b.ip) }

// Compare orders addresses by their canonical byte form; IPv4 addresses sort
// before IPv6 addresses.
func Compare(a, b Address) int {
	if la, lb := len(a.ip), len(b.ip); la != lb {
		if la < lb {
			return -1
		}
		return 1
	}
	return bytes.Compare(a.ip, b.ip)
}

// Uint32 returns the big-endian uint32 form of a 4-byte address. ok is false
// for non-IPv4 addresses.
func (a Address) Uint32() (v uint32, ok bool) {
	if !a.Is4() {
		return 0, false
	}
	return uint32(a.ip[0])<<24 | uint32(a.ip[1])<<16 | uint32(a.ip[2])<<8 | uint32(a.ip[3]), true
}
