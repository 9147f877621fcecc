package search

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GyulyVGC/sniffnet-core/internal/conntable"
	"github.com/GyulyVGC/sniffnet-core/internal/hosttable"
	"github.com/GyulyVGC/sniffnet-core/types"
)

func entry(index int, addrA, addrB string, portA, portB uint16, packets, bytesN uint64, lastSeen time.Time) conntable.Entry {
	key := conntable.Key{
		AddrA: netip.MustParseAddr(addrA), PortA: portA,
		AddrB: netip.MustParseAddr(addrB), PortB: portB,
		Transport: types.TransportTCP,
	}
	return conntable.Entry{
		Key: key,
		Aggregate: &conntable.Aggregate{
			Index: index, Transport: types.TransportTCP,
			Packets: packets, Bytes: bytesN, LastSeen: lastSeen,
		},
	}
}

func TestQueryNeutralSortPreservesInsertionOrder(t *testing.T) {
	base := time.Now()
	entries := []conntable.Entry{
		entry(0, "10.0.0.1", "1.1.1.1", 1000, 443, 5, 500, base),
		entry(1, "10.0.0.2", "8.8.8.8", 1001, 53, 50, 50000, base.Add(time.Second)),
		entry(2, "10.0.0.3", "9.9.9.9", 1002, 80, 1, 100, base.Add(2*time.Second)),
	}

	page := Query(entries, nil, nil, Filter{}, SortSpec{Column: SortNeutral}, 1)
	require.Len(t, page.Records, 3)
	assert.Equal(t, 0, page.Records[0].Aggregate.Index)
	assert.Equal(t, 1, page.Records[1].Aggregate.Index)
	assert.Equal(t, 2, page.Records[2].Aggregate.Index)
}

func TestQuerySortByBytesDescending(t *testing.T) {
	base := time.Now()
	entries := []conntable.Entry{
		entry(0, "10.0.0.1", "1.1.1.1", 1000, 443, 5, 500, base),
		entry(1, "10.0.0.2", "8.8.8.8", 1001, 53, 50, 50000, base),
		entry(2, "10.0.0.3", "9.9.9.9", 1002, 80, 1, 100, base),
	}

	page := Query(entries, nil, nil, Filter{}, SortSpec{Column: SortBytes, Direction: SortDescending}, 1)
	require.Len(t, page.Records, 3)
	assert.Equal(t, uint64(50000), page.Records[0].Aggregate.Bytes)
	assert.Equal(t, uint64(500), page.Records[1].Aggregate.Bytes)
	assert.Equal(t, uint64(100), page.Records[2].Aggregate.Bytes)
}

func TestQueryFiltersByAddressSubstring(t *testing.T) {
	base := time.Now()
	entries := []conntable.Entry{
		entry(0, "10.0.0.1", "1.1.1.1", 1000, 443, 5, 500, base),
		entry(1, "10.0.0.2", "8.8.8.8", 1001, 53, 50, 50000, base),
	}

	page := Query(entries, nil, nil, Filter{AddressSubstring: "8.8.8.8"}, SortSpec{}, 1)
	require.Len(t, page.Records, 1)
	assert.Equal(t, 1, page.Records[0].Aggregate.Index)
}

func TestQueryFiltersByPortSubstring(t *testing.T) {
	base := time.Now()
	entries := []conntable.Entry{
		entry(0, "10.0.0.1", "1.1.1.1", 1000, 443, 5, 500, base),
		entry(1, "10.0.0.2", "8.8.8.8", 1001, 53, 50, 50000, base),
	}

	page := Query(entries, nil, nil, Filter{PortSubstring: "443"}, SortSpec{}, 1)
	require.Len(t, page.Records, 1)
	assert.Equal(t, uint16(443), page.Records[0].Key.PortB)
}

func TestQueryFiltersByFavoritesOnly(t *testing.T) {
	base := time.Now()
	entries := []conntable.Entry{
		entry(0, "10.0.0.1", "1.1.1.1", 1000, 443, 5, 500, base),
		entry(1, "10.0.0.2", "8.8.8.8", 1001, 53, 50, 50000, base),
	}
	resolve := func(addrString string) (hosttable.Host, bool) {
		if addrString == "8.8.8.8" {
			return hosttable.Host{Domain: "dns.google"}, true
		}
		return hosttable.Host{}, false
	}
	favoriteOf := func(key hosttable.Key) bool { return key.Domain == "dns.google" }

	page := Query(entries, resolve, favoriteOf, Filter{FavoritesOnly: true}, SortSpec{}, 1)
	require.Len(t, page.Records, 1)
	assert.Equal(t, 1, page.Records[0].Aggregate.Index)
	assert.True(t, page.Records[0].Favorite)
}

func TestQueryAgglomerateSumsTheFullFilteredSetNotJustThePage(t *testing.T) {
	base := time.Now()
	var entries []conntable.Entry
	for i := 0; i < 25; i++ {
		entries = append(entries, entry(i, "10.0.0.1", "1.1.1.1", uint16(1000+i), 443, 1, 10, base))
	}

	page := Query(entries, nil, nil, Filter{}, SortSpec{}, 1)
	assert.Len(t, page.Records, PageSize)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, uint64(25), page.Agglomerate.Packets)
	assert.Equal(t, uint64(250), page.Agglomerate.Bytes)

	page2 := Query(entries, nil, nil, Filter{}, SortSpec{}, 2)
	assert.Len(t, page2.Records, 5)
}
