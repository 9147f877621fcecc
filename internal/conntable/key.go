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

// Package conntable implements the connection table (C3): an
// insertion-ordered mapping from connection fingerprint to per-connection
// aggregate.
package conntable

import (
	"net/netip"

	"github.com/GyulyVGC/sniffnet-core/types"
)

// Key is the connection fingerprint: (address A, port A, address B, port B,
// transport kind). Two packets with swapped endpoints map to the same key
// only when captured in the same direction — direction lives on the
// aggregate, never on the key.
type Key struct {
	AddrA     netip.Addr
	PortA     uint16
	AddrB     netip.Addr
	PortB     uint16
	Transport types.TransportKind
}

// KeyFromHeaders builds the fingerprint directly from decoded headers,
// substituting the sentinel port for connectionless transports.
func KeyFromHeaders(srcIP, dstIP netip.Addr, srcPort, dstPort uint16, transport types.TransportKind) Key {
	if transport.IsConnectionless() {
		srcPort = types.SentinelPort
		dstPort = types.SentinelPort
	}
	return Key{
		AddrA:     srcIP,
		PortA:     srcPort,
		AddrB:     dstIP,
		PortB:     dstPort,
		Transport: transport,
	}
}
