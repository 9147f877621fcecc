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

// Package hosttable implements the host and service tables (C4): mappings
// from a resolved host identity, and from a service identifier, to
// aggregate traffic counters.
package hosttable

import (
	"time"

	"github.com/GyulyVGC/sniffnet-core/types"
)

// ASN is the autonomous system a resolved address belongs to.
type ASN struct {
	Number uint32
	Name   string
}

// Host is the derived, user-facing entity that one or more IP addresses
// collapse into once resolved. Two IPs map to the same host when their
// rDNS name collapses to the same registrable domain and their ASN
// matches.
type Host struct {
	CountryCode string // empty if unknown
	ASN         ASN    // ASN.Number == 0 means unresolved
	Domain      string // empty if rDNS never resolved
}

// Key identifies a Host's bucket in the host table: the pair the spec
// defines host-equality over. Two addresses that resolve to the same
// (domain, ASN number) are the same host regardless of differing country
// codes (which normally agree with the ASN anyway).
type Key struct {
	Domain    string
	ASNNumber uint32
}

func (h Host) Key() Key {
	return Key{Domain: h.Domain, ASNNumber: h.ASN.Number}
}

// DataInfoHost wraps a Host with the counters and flags the UI needs: how
// much traffic it has carried, whether the user starred it, its locality
// flags, and the traffic-type scope of packets exchanged with it.
type DataInfoHost struct {
	Host Host

	Packets uint64
	Bytes   uint64

	FirstSeen time.Time
	LastSeen  time.Time

	Favorite bool

	IsLoopback   bool
	IsLocalSubnet bool
	IsBogon      bool

	TrafficType types.TrafficType
}
