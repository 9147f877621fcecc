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

// Package pipeline implements the pipeline worker (C7) and tick scheduler
// (C12): a single-producer capture loop that decodes, classifies,
// filters, and accumulates packets into per-epoch deltas, flushing them
// as TickRun messages on packet-timestamp-driven epoch boundaries.
package pipeline

import (
	"net/netip"
	"time"

	"github.com/GyulyVGC/sniffnet-core/internal/conntable"
	"github.com/GyulyVGC/sniffnet-core/internal/hosttable"
	"github.com/GyulyVGC/sniffnet-core/internal/enrich"
	"github.com/GyulyVGC/sniffnet-core/types"
)

// ConnDelta is the per-connection contribution of one epoch: enough to
// upsert into the authoritative connection table without re-deriving
// anything from raw packets.
type ConnDelta struct {
	SrcMAC, DstMAC string
	Direction      types.TrafficDirection
	Service        types.Service
	Subtype        types.ICMPSubtype
	Packets        uint64
	Bytes          uint64
	LastSeen       time.Time
}

// HostDelta is the per-host contribution of one epoch, produced only for
// hosts that have already completed resolution (via a HostMessage).
type HostDelta struct {
	Host        hosttable.Host
	Packets     uint64
	Bytes       uint64
	TrafficType types.TrafficType
	Loopback    bool
	LocalSubnet bool
	Bogon       bool
	LastSeen    time.Time
}

// SvcDelta is the per-service contribution of one epoch.
type SvcDelta struct {
	Packets  uint64
	Bytes    uint64
	LastSeen time.Time
}

// InfoTraffic is the unit of communication between the pipeline worker
// and the tick aggregator (C8): created fresh each epoch, drained by the
// aggregator on merge.
type InfoTraffic struct {
	ObservedPackets uint64
	ObservedBytes   uint64

	FilteredPackets uint64
	FilteredBytes   uint64

	OutgoingPackets uint64
	OutgoingBytes   uint64
	IncomingPackets uint64
	IncomingBytes   uint64

	DroppedPackets uint64

	Connections map[conntable.Key]*ConnDelta
	Hosts       map[hosttable.Key]*HostDelta
	Services    map[types.ServiceKey]*SvcDelta

	LastPacketTimestamp time.Time

	// BlacklistedPeers lists every distinct peer address this epoch that
	// matched the loaded IP blacklist, for the notification engine's (C10)
	// blacklist alert. Deduplicated per epoch: a peer exchanging many
	// packets appears here once.
	BlacklistedPeers []netip.Addr
}

// NewInfoTraffic returns a fresh, empty delta batch.
func NewInfoTraffic() *InfoTraffic {
	return &InfoTraffic{
		Connections: make(map[conntable.Key]*ConnDelta),
		Hosts:       make(map[hosttable.Key]*HostDelta),
		Services:    make(map[types.ServiceKey]*SvcDelta),
	}
}

// TickRun is emitted at every epoch boundary (§4.6). NoMorePackets is set
// on the final tick before the worker exits.
type TickRun struct {
	CaptureID     int64
	Delta         *InfoTraffic
	HostMessages  []enrich.HostMessage
	NoMorePackets bool
}

// OfflineGap is emitted between two epochs of an offline capture whose
// packet timestamps skip two or more seconds, so the chart engine can
// draw a true gap instead of a flat interpolated line.
type OfflineGap struct {
	CaptureID  int64
	GapSeconds int
}

// PendingHosts is emitted whenever an address newly enters resolution
// (not_seen -> pending): distinct from a HostMessage, which is only
// posted once resolution completes. A presentation layer uses it to
// show a "resolving..." indicator for addresses that have not yet
// produced a host entry.
type PendingHosts struct {
	CaptureID int64
	Addresses []netip.Addr
}
