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

// Package aggregate implements the tick aggregator (C8): the UI-thread-
// private authoritative traffic model, merged from pipeline deltas at
// each epoch boundary.
package aggregate

import (
	"sync"
	"time"

	"github.com/GyulyVGC/sniffnet-core/internal/conntable"
	"github.com/GyulyVGC/sniffnet-core/internal/hosttable"
	"github.com/GyulyVGC/sniffnet-core/internal/pipeline"
)

// Totals holds the model-wide counters accumulated across every merge
// since the last Reset.
type Totals struct {
	ObservedPackets uint64
	ObservedBytes   uint64

	FilteredPackets uint64
	FilteredBytes   uint64

	OutgoingPackets uint64
	OutgoingBytes   uint64
	IncomingPackets uint64
	IncomingBytes   uint64

	DroppedPackets uint64

	LastPacketTimestamp time.Time
}

// Model is the authoritative traffic model: one instance lives for the
// duration of a capture. It is deliberately not safe for concurrent
// mutation from multiple goroutines beyond the single UI-thread merge
// call documented by the concurrency model (§5: "authoritative traffic
// model: UI-thread private; never locked") — the embedded tables do carry
// their own mutexes only because the search/sort layer (C11) and favorite-
// toggling read them from outside the merge path.
type Model struct {
	mu sync.RWMutex

	Connections *conntable.Table
	Hosts       *hosttable.HostTable
	Services    *hosttable.ServiceTable

	totals Totals
}

// New returns an empty authoritative model.
func New() *Model {
	return &Model{
		Connections: conntable.New(),
		Hosts:       hosttable.NewHostTable(),
		Services:    hosttable.NewServiceTable(),
	}
}

// Reset discards every tracked connection, host, and service and zeroes
// the running totals, as done at the start of a new capture.
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Connections.Reset()
	m.Hosts.Reset()
	m.Services.Reset()
	m.totals = Totals{}
}

// Totals returns a snapshot of the model-wide counters.
func (m *Model) Totals() Totals {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totals
}

// Merge folds one pipeline delta into the authoritative model: per-
// connection, per-host, and per-service upserts, plus totals
// accumulation (§4.7). It returns the same delta unchanged so the caller
// can hand it straight to the notification engine (C10) and chart series
// engine (C9), which both consume the delta rather than the merged
// model.
func (m *Model) Merge(delta *pipeline.InfoTraffic) *pipeline.InfoTraffic {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, cd := range delta.Connections {
		m.Connections.UpsertMany(key, cd.SrcMAC, cd.DstMAC, cd.Direction, cd.Service, cd.Subtype, cd.Packets, cd.Bytes, cd.LastSeen)
	}

	for _, hd := range delta.Hosts {
		m.Hosts.Upsert(hd.Host, hd.Packets, hd.Bytes, hd.LastSeen, hd.TrafficType, hd.Loopback, hd.LocalSubnet, hd.Bogon)
	}

	for svcKey, sd := range delta.Services {
		m.Services.Upsert(svcKey, sd.Packets, sd.Bytes, sd.LastSeen)
	}

	m.totals.ObservedPackets += delta.ObservedPackets
	m.totals.ObservedBytes += delta.ObservedBytes
	m.totals.FilteredPackets += delta.FilteredPackets
	m.totals.FilteredBytes += delta.FilteredBytes
	m.totals.OutgoingPackets += delta.OutgoingPackets
	m.totals.OutgoingBytes += delta.OutgoingBytes
	m.totals.IncomingPackets += delta.IncomingPackets
	m.totals.IncomingBytes += delta.IncomingBytes
	m.totals.DroppedPackets += delta.DroppedPackets
	if delta.LastPacketTimestamp.After(m.totals.LastPacketTimestamp) {
		m.totals.LastPacketTimestamp = delta.LastPacketTimestamp
	}

	return delta
}
