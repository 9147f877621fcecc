package conntable

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GyulyVGC/sniffnet-core/types"
)

func mkKey(a, b string, pa, pb uint16) Key {
	return Key{
		AddrA:     netip.MustParseAddr(a),
		PortA:     pa,
		AddrB:     netip.MustParseAddr(b),
		PortB:     pb,
		Transport: types.TransportTCP,
	}
}

func TestUpsertAssignsStableInsertionIndex(t *testing.T) {
	tbl := New()
	now := time.Now()

	k1 := mkKey("10.0.0.1", "10.0.0.2", 1111, 80)
	k2 := mkKey("10.0.0.1", "10.0.0.3", 2222, 80)
	k3 := mkKey("10.0.0.1", "10.0.0.4", 3333, 80)

	tbl.Upsert(k1, "mac1", "mac2", types.DirectionOutgoing, types.ServiceHTTP, types.ICMPSubtype{}, 100, now)
	tbl.Upsert(k2, "mac1", "mac3", types.DirectionOutgoing, types.ServiceHTTP, types.ICMPSubtype{}, 200, now)
	tbl.Upsert(k3, "mac1", "mac4", types.DirectionOutgoing, types.ServiceHTTP, types.ICMPSubtype{}, 300, now)

	// Mutate K1 and K3 repeatedly; K2's index must remain 1 regardless.
	for i := 0; i < 5; i++ {
		tbl.Upsert(k1, "mac1", "mac2", types.DirectionOutgoing, types.ServiceHTTP, types.ICMPSubtype{}, 10, now.Add(time.Duration(i)*time.Second))
		tbl.Upsert(k3, "mac1", "mac4", types.DirectionOutgoing, types.ServiceHTTP, types.ICMPSubtype{}, 10, now.Add(time.Duration(i)*time.Second))
	}

	gotKey, agg, ok := tbl.GetByIndex(1)
	require.True(t, ok)
	assert.Equal(t, k2, gotKey)
	assert.Equal(t, 1, agg.Index)
	assert.EqualValues(t, 200, agg.Bytes)
}

func TestUpsertAccumulatesCounters(t *testing.T) {
	tbl := New()
	now := time.Now()
	k := mkKey("192.168.1.1", "192.168.1.2", 1234, 443)

	tbl.Upsert(k, "m1", "m2", types.DirectionOutgoing, types.ServiceHTTPS, types.ICMPSubtype{}, 500, now)
	tbl.Upsert(k, "m1", "m2", types.DirectionOutgoing, types.ServiceHTTPS, types.ICMPSubtype{}, 250, now.Add(time.Second))

	agg, ok := tbl.Get(k)
	require.True(t, ok)
	assert.EqualValues(t, 2, agg.Packets)
	assert.EqualValues(t, 750, agg.Bytes)
	assert.Equal(t, now.Add(time.Second), agg.LastSeen)
}

func TestConnectionlessTransportUsesSentinelPortAndHistogram(t *testing.T) {
	src := netip.MustParseAddr("10.0.0.1")
	dst := netip.MustParseAddr("10.0.0.2")
	key := KeyFromHeaders(src, dst, 9999, 1, types.TransportICMPv4)

	assert.Equal(t, types.SentinelPort, key.PortA)
	assert.Equal(t, types.SentinelPort, key.PortB)

	tbl := New()
	now := time.Now()
	subtype := types.ICMPSubtype{Type: 8, Code: 0}
	tbl.Upsert(key, "m1", "m2", types.DirectionOutgoing, types.ServiceUnknown, subtype, 64, now)
	tbl.Upsert(key, "m1", "m2", types.DirectionOutgoing, types.ServiceUnknown, subtype, 64, now)

	agg, ok := tbl.Get(key)
	require.True(t, ok)
	assert.EqualValues(t, 2, agg.ICMPHistogram[subtype])
}

func TestIterRecentAppliesPredicateInInsertionOrder(t *testing.T) {
	tbl := New()
	now := time.Now()
	k1 := mkKey("10.0.0.1", "10.0.0.2", 1, 80)
	k2 := mkKey("10.0.0.1", "10.0.0.3", 2, 443)
	tbl.Upsert(k1, "m1", "m2", types.DirectionOutgoing, types.ServiceHTTP, types.ICMPSubtype{}, 10, now)
	tbl.Upsert(k2, "m1", "m3", types.DirectionOutgoing, types.ServiceHTTPS, types.ICMPSubtype{}, 10, now)

	entries := tbl.IterRecent(func(k Key, a *Aggregate) bool {
		return a.Service == types.ServiceHTTPS
	})
	require.Len(t, entries, 1)
	assert.Equal(t, k2, entries[0].Key)
}

func TestUpsertManyAccumulatesMultiplePacketsInOneCall(t *testing.T) {
	tbl := New()
	now := time.Now()
	k := mkKey("192.168.1.1", "192.168.1.2", 1234, 443)
	subtype := types.ICMPSubtype{}

	tbl.UpsertMany(k, "m1", "m2", types.DirectionOutgoing, types.ServiceHTTPS, subtype, 5, 1000, now)
	tbl.UpsertMany(k, "m1", "m2", types.DirectionOutgoing, types.ServiceHTTPS, subtype, 3, 300, now.Add(time.Second))

	agg, ok := tbl.Get(k)
	require.True(t, ok)
	assert.EqualValues(t, 8, agg.Packets)
	assert.EqualValues(t, 1300, agg.Bytes)
	assert.Equal(t, 0, agg.Index)
}

func TestResetClearsTable(t *testing.T) {
	tbl := New()
	now := time.Now()
	k := mkKey("10.0.0.1", "10.0.0.2", 1, 80)
	tbl.Upsert(k, "m1", "m2", types.DirectionOutgoing, types.ServiceHTTP, types.ICMPSubtype{}, 10, now)
	require.Equal(t, 1, tbl.Len())

	tbl.Reset()
	assert.Equal(t, 0, tbl.Len())
	_, _, ok := tbl.GetByIndex(0)
	assert.False(t, ok)
}
