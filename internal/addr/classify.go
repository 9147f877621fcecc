/*
 * NETCAP - Traffic Analysis Framework
 * Copyright (c) 2017-2020 Philipp Mieden <dreadl0ck [at] protonmail [dot] ch>
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Package addr implements the address classifier (C2): direction, locality,
// loopback/bogon detection, and the broadcast/multicast scope rules.
package addr

import (
	"net/netip"

	"github.com/GyulyVGC/sniffnet-core/types"
)

// Classify determines the traffic direction and type for a packet given its
// source/destination addresses and the set of addresses bound to the
// capturing interface.
//
// Outgoing wins if src is one of the interface's addresses; otherwise the
// direction is Incoming, which also covers a packet merely observed in
// promiscuous mode. The traffic type always comes from dst: multicast for
// ff00::/8 or 224.0.0.0/4, broadcast only for 255.255.255.255 (directed
// subnet broadcasts are not detected), unicast otherwise.
func Classify(src, dst netip.Addr, ifaceAddrs []netip.Addr) (types.TrafficDirection, types.TrafficType) {
	for _, a := range ifaceAddrs {
		if a == src {
			return types.DirectionOutgoing, trafficTypeOf(dst, ifaceAddrs)
		}
	}
	for _, a := range ifaceAddrs {
		if a == dst {
			return types.DirectionIncoming, trafficTypeOf(dst, ifaceAddrs)
		}
	}

	return types.DirectionIncoming, trafficTypeOf(dst, ifaceAddrs)
}

func trafficTypeOf(dst netip.Addr, ifaceAddrs []netip.Addr) types.TrafficType {
	if IsMulticast(dst) {
		return types.TrafficMulticast
	}
	if isBroadcast(dst) {
		return types.TrafficBroadcast
	}
	return types.TrafficUnicast
}

// IsMulticast reports whether ip falls in ff00::/8 (IPv6) or 224.0.0.0/4
// (IPv4).
func IsMulticast(ip netip.Addr) bool {
	if ip.Is4() {
		return ip.As4()[0] >= 224 && ip.As4()[0] <= 239
	}
	if ip.Is6() {
		return ip.As16()[0] == 0xff
	}
	return false
}

// isBroadcast implements the spec's documented (and intentionally narrow)
// rule: all four IPv4 octets equal to 255. Directed-broadcast detection
// (last host in the interface's subnet) is an open question the spec marks
// TODO rather than requiring.
func isBroadcast(ip netip.Addr) bool {
	if !ip.Is4() {
		return false
	}
	b := ip.As4()
	return b[0] == 255 && b[1] == 255 && b[2] == 255 && b[3] == 255
}

// LocalityOf reports whether both endpoints of a connection are private
// (RFC1918/ULA/link-local), in which case the connection is local, or
// remote otherwise.
func LocalityOf(a, b netip.Addr) types.Locality {
	if isPrivate(a) && isPrivate(b) {
		return types.LocalityLocal
	}
	return types.LocalityRemote
}

// IsPrivate reports whether ip falls in a private/local-use range
// (RFC1918/ULA/link-local/loopback), the per-address test underlying
// LocalityOf and a host's "local subnet" flag.
func IsPrivate(ip netip.Addr) bool {
	return isPrivate(ip)
}

func isPrivate(ip netip.Addr) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}
	if ip.Is4() {
		b := ip.As4()
		switch {
		case b[0] == 10:
			return true
		case b[0] == 172 && b[1] >= 16 && b[1] <= 31:
			return true
		case b[0] == 192 && b[1] == 168:
			return true
		}
		return false
	}
	if ip.Is6() {
		// Unique Local Address: fc00::/7
		return ip.As16()[0]&0xfe == 0xfc
	}
	return false
}

// IsLoopback reports whether ip is a loopback address (127.0.0.0/8 or ::1).
func IsLoopback(ip netip.Addr) bool {
	return ip.IsLoopback()
}
