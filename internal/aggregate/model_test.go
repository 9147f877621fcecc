package aggregate

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GyulyVGC/sniffnet-core/internal/conntable"
	"github.com/GyulyVGC/sniffnet-core/internal/hosttable"
	"github.com/GyulyVGC/sniffnet-core/internal/pipeline"
	"github.com/GyulyVGC/sniffnet-core/types"
)

func mkConnKey(a, b string, pa, pb uint16) conntable.Key {
	return conntable.KeyFromHeaders(netip.MustParseAddr(a), netip.MustParseAddr(b), pa, pb, types.TransportTCP)
}

func TestMergeUpsertsConnectionsHostsAndServices(t *testing.T) {
	m := New()
	now := time.Now()

	key := mkConnKey("10.0.0.1", "10.0.0.2", 1111, 443)
	hostKey := hosttable.Key{Domain: "example.com", ASNNumber: 15169}
	svcKey := types.ServiceKey{Service: types.ServiceHTTPS, Transport: types.TransportTCP}

	delta := pipeline.NewInfoTraffic()
	delta.ObservedPackets = 3
	delta.ObservedBytes = 900
	delta.FilteredPackets = 3
	delta.FilteredBytes = 900
	delta.OutgoingPackets = 3
	delta.OutgoingBytes = 900
	delta.LastPacketTimestamp = now

	delta.Connections[key] = &pipeline.ConnDelta{
		SrcMAC: "m1", DstMAC: "m2",
		Direction: types.DirectionOutgoing, Service: types.ServiceHTTPS,
		Packets: 3, Bytes: 900, LastSeen: now,
	}
	delta.Hosts[hostKey] = &pipeline.HostDelta{
		Host:        hosttable.Host{Domain: "example.com", ASN: hosttable.ASN{Number: 15169}},
		Packets:     3, Bytes: 900, TrafficType: types.TrafficUnicast, LastSeen: now,
	}
	delta.Services[svcKey] = &pipeline.SvcDelta{Packets: 3, Bytes: 900, LastSeen: now}

	m.Merge(delta)

	agg, ok := m.Connections.Get(key)
	require.True(t, ok)
	assert.EqualValues(t, 3, agg.Packets)
	assert.EqualValues(t, 900, agg.Bytes)

	host, ok := m.Hosts.Get(hostKey)
	require.True(t, ok)
	assert.EqualValues(t, 3, host.Packets)

	svc, ok := m.Services.Get(svcKey)
	require.True(t, ok)
	assert.EqualValues(t, 900, svc.Bytes)

	totals := m.Totals()
	assert.EqualValues(t, 3, totals.ObservedPackets)
	assert.EqualValues(t, 900, totals.ObservedBytes)
	assert.EqualValues(t, 3, totals.OutgoingPackets)
	assert.Equal(t, now, totals.LastPacketTimestamp)
}

func TestMergeAccumulatesTotalsAcrossEpochs(t *testing.T) {
	m := New()
	now := time.Now()

	d1 := pipeline.NewInfoTraffic()
	d1.ObservedPackets = 5
	d1.FilteredPackets = 4
	d1.LastPacketTimestamp = now
	m.Merge(d1)

	d2 := pipeline.NewInfoTraffic()
	d2.ObservedPackets = 2
	d2.FilteredPackets = 2
	d2.LastPacketTimestamp = now.Add(time.Second)
	m.Merge(d2)

	totals := m.Totals()
	assert.EqualValues(t, 7, totals.ObservedPackets)
	assert.EqualValues(t, 6, totals.FilteredPackets)
	assert.Equal(t, now.Add(time.Second), totals.LastPacketTimestamp)
}

func TestResetClearsModelAndTotals(t *testing.T) {
	m := New()
	now := time.Now()

	key := mkConnKey("10.0.0.1", "10.0.0.2", 1, 80)
	delta := pipeline.NewInfoTraffic()
	delta.ObservedPackets = 1
	delta.Connections[key] = &pipeline.ConnDelta{Packets: 1, Bytes: 10, LastSeen: now}
	m.Merge(delta)

	require.Equal(t, 1, m.Connections.Len())
	m.Reset()

	assert.Equal(t, 0, m.Connections.Len())
	assert.Equal(t, 0, m.Hosts.Len())
	assert.EqualValues(t, 0, m.Totals().ObservedPackets)
}
