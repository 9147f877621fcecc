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

package hosttable

import (
	"sync"
	"time"

	"github.com/GyulyVGC/sniffnet-core/types"
)

// HostTable maps a resolved host identity to its aggregate. A host
// appears here only once its representative address has completed
// resolution at least once (C6 posts the first insert via a HostMessage).
type HostTable struct {
	mu    sync.Mutex
	items map[Key]*DataInfoHost
}

// NewHostTable returns an empty host table.
func NewHostTable() *HostTable {
	return &HostTable{items: make(map[Key]*DataInfoHost)}
}

// Upsert inserts or merges a delta into the host bucket identified by
// host.Key(). trafficType/locality flags are only applied on first
// insertion; the running counters and timestamps are mutated in place.
func (t *HostTable) Upsert(host Host, nPackets, nBytes uint64, ts time.Time, trafficType types.TrafficType, loopback, localSubnet, bogon bool) *DataInfoHost {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := host.Key()
	if info, ok := t.items[key]; ok {
		info.Packets += nPackets
		info.Bytes += nBytes
		if ts.After(info.LastSeen) {
			info.LastSeen = ts
		}
		if ts.Before(info.FirstSeen) {
			info.FirstSeen = ts
		}
		return info
	}

	info := &DataInfoHost{
		Host:          host,
		Packets:       nPackets,
		Bytes:         nBytes,
		FirstSeen:     ts,
		LastSeen:      ts,
		IsLoopback:    loopback,
		IsLocalSubnet: localSubnet,
		IsBogon:       bogon,
		TrafficType:   trafficType,
	}
	t.items[key] = info
	return info
}

// Get returns the aggregate for a host identity, if resolved.
func (t *HostTable) Get(key Key) (*DataInfoHost, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	info, ok := t.items[key]
	return info, ok
}

// SetFavorite toggles the starred flag on a resolved host.
func (t *HostTable) SetFavorite(key Key, favorite bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	info, ok := t.items[key]
	if !ok {
		return false
	}
	info.Favorite = favorite
	return true
}

// All returns a snapshot of every resolved host, for the search/sort layer.
func (t *HostTable) All() []*DataInfoHost {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*DataInfoHost, 0, len(t.items))
	for _, info := range t.items {
		out = append(out, info)
	}
	return out
}

// Len reports the number of resolved hosts.
func (t *HostTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Reset discards every resolved host, as done between captures.
func (t *HostTable) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = make(map[Key]*DataInfoHost)
}
