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

package enrich

import (
	"net/netip"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/GyulyVGC/sniffnet-core/internal/hosttable"
)

// resolvedCacheSize bounds the addresses-resolved cache. One capture
// rarely needs more distinct peers resolved than this; eviction simply
// means the rare evicted address is re-resolved, not a correctness bug.
const resolvedCacheSize = 4096

// ResolvedCache remembers the Host an address already resolved to within
// the current capture, so a second connection to the same peer never
// triggers a second rDNS/geo/ASN lookup. It is reset at the start of
// every new capture (lifetimes match the spec's "lives for one capture").
type ResolvedCache struct {
	cache *lru.Cache[netip.Addr, hosttable.Host]
}

// NewResolvedCache returns an empty cache.
func NewResolvedCache() *ResolvedCache {
	c, _ := lru.New[netip.Addr, hosttable.Host](resolvedCacheSize)
	return &ResolvedCache{cache: c}
}

// Get returns the cached host for addr, if resolved earlier this capture.
func (c *ResolvedCache) Get(addr netip.Addr) (hosttable.Host, bool) {
	return c.cache.Get(addr)
}

// Put records the resolved host for addr.
func (c *ResolvedCache) Put(addr netip.Addr, host hosttable.Host) {
	c.cache.Add(addr, host)
}

// Reset discards every cached resolution, as done between captures.
func (c *ResolvedCache) Reset() {
	c.cache.Purge()
}
