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

// Package enrich implements the enrichment dispatcher (C6): rDNS+geo+ASN
// resolution, program-by-port lookup, and blacklist matching, each lazy,
// keyed, and cancellable by capture id.
package enrich

import (
	"context"
	"net/netip"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GyulyVGC/sniffnet-core/internal/hosttable"
	"github.com/GyulyVGC/sniffnet-core/types"
)

// AccumulatedDelta is the traffic contributed by packets to/from a
// pending (not-yet-resolved) address. It accumulates across every packet
// seen for that address until resolution completes, at which point it is
// merged wholesale into the host table.
type AccumulatedDelta struct {
	Packets     uint64
	Bytes       uint64
	TrafficType types.TrafficType
	FirstSeen   time.Time
	LastSeen    time.Time
}

func (d *AccumulatedDelta) absorb(nPackets, nBytes uint64, trafficType types.TrafficType, ts time.Time) {
	d.Packets += nPackets
	d.Bytes += nBytes
	d.TrafficType = trafficType
	if d.FirstSeen.IsZero() || ts.Before(d.FirstSeen) {
		d.FirstSeen = ts
	}
	if ts.After(d.LastSeen) {
		d.LastSeen = ts
	}
}

// HostMessage is posted to the pipeline worker once an address finishes
// resolving: the resolved host, the address that triggered resolution,
// its rDNS name, and every packet that arrived while resolution was
// pending.
type HostMessage struct {
	Host    hosttable.Host
	Address netip.Addr
	RDNS    string
	Delta   AccumulatedDelta
}

type resolveState int

const (
	stateNotSeen resolveState = iota
	statePending
	stateResolved
)

// Dispatcher runs the rDNS+geo+ASN pipeline. Guarantee: at most one
// resolution goroutine is ever in flight per address per capture;
// concurrent packets to the same unresolved address accumulate into one
// pending delta instead of each launching their own lookup.
type Dispatcher struct {
	resolver *Resolver
	geodb    *GeoDB
	cache    *ResolvedCache

	captureID atomic.Int64

	mu      sync.Mutex
	state   map[netip.Addr]resolveState
	pending map[netip.Addr]*AccumulatedDelta

	out chan HostMessage
}

// NewDispatcher wires a resolver and geo database into a dispatcher.
// Either may be nil: a nil resolver leaves the rdns name as the address
// literal, and a nil geodb leaves the country and ASN Host fields zero,
// matching the spec's "best effort" framing.
func NewDispatcher(resolver *Resolver, geodb *GeoDB) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		geodb:    geodb,
		cache:    NewResolvedCache(),
		state:    make(map[netip.Addr]resolveState),
		pending:  make(map[netip.Addr]*AccumulatedDelta),
		out:      make(chan HostMessage, 256),
	}
}

// Messages returns the channel HostMessage values are posted to.
func (d *Dispatcher) Messages() <-chan HostMessage {
	return d.out
}

// BeginCapture invalidates every resolution currently in flight: it bumps
// the capture id, so late results compare their captured snapshot against
// the new value and silently discard themselves. It also clears per-
// capture state (addresses-resolved cache, pending deltas).
func (d *Dispatcher) BeginCapture() {
	d.captureID.Add(1)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = make(map[netip.Addr]resolveState)
	d.pending = make(map[netip.Addr]*AccumulatedDelta)
	d.cache.Reset()
}

// Observe registers nPackets/nBytes of traffic to addr. If addr is
// already resolved this capture, the resolved host is immediately posted
// with this call's delta rather than launching redundant work. Otherwise
// the delta accumulates against the pending (or newly launched) lookup.
// The returned bool reports whether this call is the one that newly
// transitioned addr from not_seen to pending, so the caller can surface a
// PendingHosts notification exactly once per address.
func (d *Dispatcher) Observe(ctx context.Context, addr netip.Addr, nPackets, nBytes uint64, trafficType types.TrafficType, ts time.Time) bool {
	if host, ok := d.cache.Get(addr); ok {
		d.out <- HostMessage{
			Host:    host,
			Address: addr,
			Delta: AccumulatedDelta{
				Packets: nPackets, Bytes: nBytes,
				TrafficType: trafficType, FirstSeen: ts, LastSeen: ts,
			},
		}
		return false
	}

	d.mu.Lock()
	delta, exists := d.pending[addr]
	if !exists {
		delta = &AccumulatedDelta{}
		d.pending[addr] = delta
	}
	delta.absorb(nPackets, nBytes, trafficType, ts)
	alreadyPending := d.state[addr] == statePending
	d.state[addr] = statePending
	d.mu.Unlock()

	if alreadyPending {
		return false
	}

	snapshot := d.captureID.Load()
	go d.resolve(ctx, addr, snapshot)
	return true
}

func (d *Dispatcher) resolve(ctx context.Context, addr netip.Addr, captureID int64) {
	rdns := addr.String()
	if d.resolver != nil {
		if name, err := d.resolver.Lookup(ctx, addr); err == nil || name != "" {
			rdns = name
		}
	}

	host := hosttable.Host{Domain: registrableDomain(rdns)}
	if d.geodb != nil {
		host.CountryCode = d.geodb.CountryCode(addr)
		host.ASN = d.geodb.ASN(addr)
	}

	if d.captureID.Load() != captureID {
		return // capture ended or restarted; discard stale result
	}

	d.mu.Lock()
	delta := d.pending[addr]
	delete(d.pending, addr)
	d.state[addr] = stateResolved
	d.mu.Unlock()

	d.cache.Put(addr, host)

	msg := HostMessage{Host: host, Address: addr, RDNS: rdns}
	if delta != nil {
		msg.Delta = *delta
	}

	if d.captureID.Load() != captureID {
		return
	}
	d.out <- msg
}

// registrableDomain collapses an rDNS name down to its registrable
// domain (last two labels), the granularity the spec's host-equality rule
// operates at. IP-literal fallbacks (no PTR record) pass through
// unchanged, since they have no labels to collapse and are not domains.
func registrableDomain(rdns string) string {
	if _, err := netip.ParseAddr(rdns); err == nil {
		return rdns
	}
	labels := strings.Split(strings.TrimSuffix(rdns, "."), ".")
	if len(labels) < 2 {
		return rdns
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
