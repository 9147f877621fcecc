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

package conntable

import (
	"time"

	"github.com/GyulyVGC/sniffnet-core/types"
)

// ProgramInfo is the (possibly absent) process attributed to a connection by
// the program-by-port enrichment pipeline (C6).
type ProgramInfo struct {
	Name string
	PID  int32
}

// Aggregate is everything owned by one connection fingerprint: counters,
// timestamps, guessed service, and enrichment results. Index is assigned
// once at insertion and never changes.
type Aggregate struct {
	Index int

	SrcMAC, DstMAC string

	Transport types.TransportKind
	Service   types.Service
	Direction types.TrafficDirection

	Packets uint64
	Bytes   uint64

	FirstSeen time.Time
	LastSeen  time.Time

	// ICMPHistogram counts packets per (type, code) pair; populated only
	// for ICMPv4/ICMPv6/ARP transports.
	ICMPHistogram map[types.ICMPSubtype]uint64

	Program *ProgramInfo
}

func newAggregate(index int, key Key, srcMAC, dstMAC string, direction types.TrafficDirection, service types.Service, subtype types.ICMPSubtype, nBytes uint64, ts time.Time) *Aggregate {
	return newAggregateMany(index, key, srcMAC, dstMAC, direction, service, subtype, 1, nBytes, ts)
}

func newAggregateMany(index int, key Key, srcMAC, dstMAC string, direction types.TrafficDirection, service types.Service, subtype types.ICMPSubtype, nPackets, nBytes uint64, ts time.Time) *Aggregate {
	a := &Aggregate{
		Index:         index,
		SrcMAC:        srcMAC,
		DstMAC:        dstMAC,
		Transport:     key.Transport,
		Service:       service,
		Direction:     direction,
		Packets:       nPackets,
		Bytes:         nBytes,
		FirstSeen:     ts,
		LastSeen:      ts,
		ICMPHistogram: make(map[types.ICMPSubtype]uint64),
	}
	if key.Transport.IsConnectionless() {
		a.ICMPHistogram[subtype] = nPackets
	}
	return a
}

func (a *Aggregate) absorb(subtype types.ICMPSubtype, nBytes uint64, ts time.Time) {
	a.absorbMany(subtype, 1, nBytes, ts)
}

func (a *Aggregate) absorbMany(subtype types.ICMPSubtype, nPackets, nBytes uint64, ts time.Time) {
	a.Packets += nPackets
	a.Bytes += nBytes
	if ts.After(a.LastSeen) {
		a.LastSeen = ts
	}
	if ts.Before(a.FirstSeen) {
		a.FirstSeen = ts
	}
	if a.Transport.IsConnectionless() {
		a.ICMPHistogram[subtype] += nPackets
	}
}
