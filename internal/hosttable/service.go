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

// DataInfoService is the per-service aggregate: every connection guessed
// to carry a given (service, transport) pair contributes its counters
// here, regardless of which hosts or connections it also belongs to.
type DataInfoService struct {
	Key types.ServiceKey

	Packets uint64
	Bytes   uint64

	FirstSeen time.Time
	LastSeen  time.Time
}

// ServiceTable maps a ServiceKey to its aggregate.
type ServiceTable struct {
	mu    sync.Mutex
	items map[types.ServiceKey]*DataInfoService
}

// NewServiceTable returns an empty service table.
func NewServiceTable() *ServiceTable {
	return &ServiceTable{items: make(map[types.ServiceKey]*DataInfoService)}
}

// Upsert inserts or merges a delta into the bucket for key.
func (t *ServiceTable) Upsert(key types.ServiceKey, nPackets, nBytes uint64, ts time.Time) *DataInfoService {
	t.mu.Lock()
	defer t.mu.Unlock()

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

	info := &DataInfoService{Key: key, Packets: nPackets, Bytes: nBytes, FirstSeen: ts, LastSeen: ts}
	t.items[key] = info
	return info
}

// Get returns the aggregate for a service key, if any traffic has been
// attributed to it.
func (t *ServiceTable) Get(key types.ServiceKey) (*DataInfoService, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	info, ok := t.items[key]
	return info, ok
}

// All returns a snapshot of every service bucket.
func (t *ServiceTable) All() []*DataInfoService {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*DataInfoService, 0, len(t.items))
	for _, info := range t.items {
		out = append(out, info)
	}
	return out
}

// Reset discards every service bucket, as done between captures.
func (t *ServiceTable) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = make(map[types.ServiceKey]*DataInfoService)
}
