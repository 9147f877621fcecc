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
	"sync"
	"time"

	"github.com/GyulyVGC/sniffnet-core/types"
)

// Entry pairs a fingerprint with its aggregate, as returned by IterRecent.
type Entry struct {
	Key       Key
	Aggregate *Aggregate
}

// Table is the insertion-ordered connection table. The zero value is not
// usable; construct with New. Safe for concurrent use: the tick
// aggregator's merge path writes through UpsertMany, the UI/search layer
// calls GetByIndex and IterRecent from a different goroutine.
type Table struct {
	mu      sync.Mutex
	byKey   map[Key]*Aggregate
	byIndex []*Aggregate
	keys    []Key
}

// New returns an empty connection table.
func New() *Table {
	return &Table{
		byKey: make(map[Key]*Aggregate),
	}
}

// Upsert inserts a new aggregate for key (assigning the next insertion
// index) or mutates the existing one in place. MACs/direction/service are
// only consulted on insertion; absorb() handles the running counters and
// the ICMP subtype tally, so subtype is consulted on every call.
func (t *Table) Upsert(key Key, srcMAC, dstMAC string, direction types.TrafficDirection, service types.Service, subtype types.ICMPSubtype, nBytes uint64, ts time.Time) *Aggregate {
	t.mu.Lock()
	defer t.mu.Unlock()

	if agg, ok := t.byKey[key]; ok {
		agg.absorb(subtype, nBytes, ts)
		return agg
	}

	index := len(t.byIndex)
	agg := newAggregate(index, key, srcMAC, dstMAC, direction, service, subtype, nBytes, ts)
	t.byKey[key] = agg
	t.byIndex = append(t.byIndex, agg)
	t.keys = append(t.keys, key)
	return agg
}

// UpsertMany is Upsert for a delta that already accumulated several
// packets within one epoch (the tick aggregator's merge path), avoiding
// a call per packet.
func (t *Table) UpsertMany(key Key, srcMAC, dstMAC string, direction types.TrafficDirection, service types.Service, subtype types.ICMPSubtype, nPackets, nBytes uint64, ts time.Time) *Aggregate {
	t.mu.Lock()
	defer t.mu.Unlock()

	if agg, ok := t.byKey[key]; ok {
		agg.absorbMany(subtype, nPackets, nBytes, ts)
		return agg
	}

	index := len(t.byIndex)
	agg := newAggregateMany(index, key, srcMAC, dstMAC, direction, service, subtype, nPackets, nBytes, ts)
	t.byKey[key] = agg
	t.byIndex = append(t.byIndex, agg)
	t.keys = append(t.keys, key)
	return agg
}

// GetByIndex returns the aggregate at insertion position i in O(1), for
// opening a connection's detail view by stable index. ok is false if i is
// out of range.
func (t *Table) GetByIndex(i int) (Key, *Aggregate, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i < 0 || i >= len(t.byIndex) {
		return Key{}, nil, false
	}
	return t.keys[i], t.byIndex[i], true
}

// Get looks up the aggregate for an exact fingerprint.
func (t *Table) Get(key Key) (*Aggregate, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	agg, ok := t.byKey[key]
	return agg, ok
}

// Len returns the number of distinct connections tracked.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.byIndex)
}

// IterRecent returns a snapshot of every entry satisfying predicate, in
// insertion order. Intended for the search/sort layer (C11); never called
// from the capture loop, since it takes the table-wide lock for the
// duration of the snapshot copy.
func (t *Table) IterRecent(predicate func(Key, *Aggregate) bool) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, 0, len(t.byIndex))
	for i, agg := range t.byIndex {
		if predicate == nil || predicate(t.keys[i], agg) {
			out = append(out, Entry{Key: t.keys[i], Aggregate: agg})
		}
	}
	return out
}

// Reset discards every tracked connection, as done between captures.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.byKey = make(map[Key]*Aggregate)
	t.byIndex = nil
	t.keys = nil
}
