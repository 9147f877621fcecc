package hosttable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GyulyVGC/sniffnet-core/types"
)

func TestHostUpsertMergesByDomainAndASN(t *testing.T) {
	tbl := NewHostTable()
	now := time.Now()

	h1 := Host{Domain: "example.com", ASN: ASN{Number: 64512, Name: "Example Net"}, CountryCode: "US"}
	h2 := Host{Domain: "example.com", ASN: ASN{Number: 64512, Name: "Example Net"}, CountryCode: "US"}

	tbl.Upsert(h1, 1, 100, now, types.TrafficUnicast, false, false, false)
	tbl.Upsert(h2, 2, 50, now.Add(time.Second), types.TrafficUnicast, false, false, false)

	assert.Equal(t, 1, tbl.Len())
	info, ok := tbl.Get(h1.Key())
	require.True(t, ok)
	assert.EqualValues(t, 3, info.Packets)
	assert.EqualValues(t, 150, info.Bytes)
}

func TestHostDifferentASNIsDifferentHost(t *testing.T) {
	tbl := NewHostTable()
	now := time.Now()
	h1 := Host{Domain: "example.com", ASN: ASN{Number: 1}}
	h2 := Host{Domain: "example.com", ASN: ASN{Number: 2}}

	tbl.Upsert(h1, 1, 10, now, types.TrafficUnicast, false, false, false)
	tbl.Upsert(h2, 1, 10, now, types.TrafficUnicast, false, false, false)

	assert.Equal(t, 2, tbl.Len())
}

func TestServiceTableUpsert(t *testing.T) {
	tbl := NewServiceTable()
	now := time.Now()
	key := types.ServiceKey{Service: types.ServiceHTTPS, Transport: types.TransportTCP}

	tbl.Upsert(key, 1, 500, now)
	tbl.Upsert(key, 2, 300, now.Add(time.Second))

	info, ok := tbl.Get(key)
	require.True(t, ok)
	assert.EqualValues(t, 3, info.Packets)
	assert.EqualValues(t, 800, info.Bytes)
}
