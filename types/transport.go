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

package types

// TransportKind identifies the transport (or transport-like) protocol
// carried by a packet. ICMP and ARP are connectionless and carry no ports.
type TransportKind int32

const (
	TransportUnknown TransportKind = iota
	TransportTCP
	TransportUDP
	TransportICMPv4
	TransportICMPv6
	TransportARP
)

func (t TransportKind) String() string {
	switch t {
	case TransportTCP:
		return "TCP"
	case TransportUDP:
		return "UDP"
	case TransportICMPv4:
		return "ICMPv4"
	case TransportICMPv6:
		return "ICMPv6"
	case TransportARP:
		return "ARP"
	default:
		return "Unknown"
	}
}

// IsConnectionless reports whether the transport kind carries no port pair,
// in which case the connection fingerprint uses the sentinel port.
func (t TransportKind) IsConnectionless() bool {
	return t == TransportICMPv4 || t == TransportICMPv6 || t == TransportARP
}

// SentinelPort is used in place of a port number for connectionless
// transports (ICMP, ARP) when building a connection fingerprint.
const SentinelPort uint16 = 0

// IPVersion is the filterable IP version of a packet.
type IPVersion int32

const (
	IPVersionEither IPVersion = iota
	IPVersionV4
	IPVersionV6
)
