package filter

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(s string) netip.Addr { return netip.MustParseAddr(s) }

func TestParseAddressCollectionEmptyIsUnrestricted(t *testing.T) {
	c, err := ParseAddressCollection("")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestParseAddressCollectionIPsAndRanges(t *testing.T) {
	c, err := ParseAddressCollection("1.1.1.1, 2.2.2.2, 3.3.3.3 - 5.5.5.5, 10.0.0.1-10.0.0.255,9.9.9.9")
	require.NoError(t, err)
	assert.Equal(t, []netip.Addr{addr("1.1.1.1"), addr("2.2.2.2"), addr("9.9.9.9")}, c.IPs)
	require.Len(t, c.Ranges, 2)
	assert.Equal(t, AddrRange{Lo: addr("3.3.3.3"), Hi: addr("5.5.5.5")}, c.Ranges[0])
	assert.Equal(t, AddrRange{Lo: addr("10.0.0.1"), Hi: addr("10.0.0.255")}, c.Ranges[1])
}

func TestParseAddressCollectionSingleAddressRange(t *testing.T) {
	c, err := ParseAddressCollection("  1.1.1.1 -1.1.1.1")
	require.NoError(t, err)
	assert.Empty(t, c.IPs)
	assert.Equal(t, []AddrRange{{Lo: addr("1.1.1.1"), Hi: addr("1.1.1.1")}}, c.Ranges)
}

func TestParseAddressCollectionInvalidCases(t *testing.T) {
	_, err := ParseAddressCollection("1.1.1.1,2.2.2.2,3.3.3.3-5.5.5.5,10.0.0.1-10.0.0.255,9.9.9")
	assert.Error(t, err)

	_, err = ParseAddressCollection("1.1.1.1-aa::ff")
	assert.Error(t, err)

	_, err = ParseAddressCollection("aa::ff-1.1.1.1")
	assert.Error(t, err)

	_, err = ParseAddressCollection("1.1.1.1-1.1.0.1")
	assert.Error(t, err)
}

func TestAddressCollectionContains(t *testing.T) {
	c, err := ParseAddressCollection("1.1.1.1,2.2.2.2,3.3.3.3-5.5.5.5,10.0.0.1-10.0.0.255,9.9.9.9")
	require.NoError(t, err)

	assert.True(t, c.Contains(addr("1.1.1.1")))
	assert.True(t, c.Contains(addr("4.0.0.0")))
	assert.True(t, c.Contains(addr("10.0.0.128")))
	assert.False(t, c.Contains(addr("10.0.0.0")))
	assert.False(t, c.Contains(addr("2.2.2.1")))
}

func TestAddressCollectionRangeDoesNotCrossFamily(t *testing.T) {
	c, err := ParseAddressCollection("0.0.0.0-255.255.255.255")
	require.NoError(t, err)
	assert.False(t, c.Contains(addr("::")))
	assert.False(t, c.Contains(addr("1111::2222")))
}

func TestAddressCollectionIPv6Range(t *testing.T) {
	c, err := ParseAddressCollection("2001:db8:1234:0000:0000:0000:0000:0000-2001:db8:1234:ffff:ffff:ffff:ffff:ffff,daa::aad")
	require.NoError(t, err)
	assert.True(t, c.Contains(addr("2001:db8:1234:ffff:ffff:ffff:ffff:eeee")))
	assert.True(t, c.Contains(addr("daa::aad")))
	assert.False(t, c.Contains(addr("2000:db8:1234:0000:0000:0000:0000:0000")))
}

func TestPortCollectionParseAndContains(t *testing.T) {
	pc, err := ParsePortCollection("80,443,1000-2000")
	require.NoError(t, err)
	assert.True(t, pc.Contains(80))
	assert.True(t, pc.Contains(1500))
	assert.False(t, pc.Contains(999))
}

func TestStructuralMatches(t *testing.T) {
	addrs, err := ParseAddressCollection("8.8.8.8")
	require.NoError(t, err)
	s := Structural{Addresses: addrs}

	h := Header{SrcIP: addr("1.1.1.1"), DstIP: addr("8.8.8.8")}
	assert.True(t, s.Matches(h))

	h2 := Header{SrcIP: addr("1.1.1.1"), DstIP: addr("9.9.9.9")}
	assert.False(t, s.Matches(h2))
}
